package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/draftline/draftline/domain"
)

func TestOllamaExtract(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Fatalf("unexpected method: %s", r.Method)
		}

		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if req.Model != "llama3.1" || req.Stream {
			t.Fatalf("unexpected request: %+v", req)
		}
		if req.Options.Temperature != 0.2 || req.Options.TopP != 0.9 {
			t.Fatalf("unexpected sampling options: %+v", req.Options)
		}

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"response":"Sure, here is the task:\n{\"title\":\"Fix checkout crash\",\"description\":\"Checkout crashes on submit\",\"priority\":\"high\",\"tags\":[\"checkout\"],\"attachments\":[\"trace.log\"]}"}`)
	}))
	defer server.Close()

	o := NewOllama(server.URL, "llama3.1", time.Second)
	draft, err := o.Extract(context.Background(), domain.SourceManual, []string{"checkout crashes"}, nil)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if draft.Title != "Fix checkout crash" {
		t.Fatalf("unexpected title: %q", draft.Title)
	}
	if draft.Priority != domain.PriorityHigh {
		t.Fatalf("unexpected priority: %q", draft.Priority)
	}
	if len(draft.Tags) != 1 || draft.Tags[0] != "checkout" {
		t.Fatalf("unexpected tags: %+v", draft.Tags)
	}
	if len(draft.Attachments) != 1 || draft.Attachments[0] != "trace.log" {
		t.Fatalf("unexpected attachments: %+v", draft.Attachments)
	}
}

func TestOllamaExtractNoJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"response":"I cannot help with that."}`)
	}))
	defer server.Close()

	o := NewOllama(server.URL, "llama3.1", time.Second)
	_, err := o.Extract(context.Background(), domain.SourceManual, []string{"hi"}, nil)
	if !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse, got %v", err)
	}
}

func TestOllamaExtractTrailingProse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"response":"{\"title\":\"x\"} hope that helps!"}`)
	}))
	defer server.Close()

	o := NewOllama(server.URL, "llama3.1", time.Second)
	_, err := o.Extract(context.Background(), domain.SourceManual, []string{"hi"}, nil)
	if !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse, got %v", err)
	}
}

func TestOllamaExtractServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, "model not loaded")
	}))
	defer server.Close()

	o := NewOllama(server.URL, "llama3.1", time.Second)
	_, err := o.Extract(context.Background(), domain.SourceManual, []string{"hi"}, nil)
	if err == nil {
		t.Fatalf("expected error")
	}
}

func TestOllamaExtractNormalizes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"response":"{\"priority\":\"urgent\",\"tags\":[\"a\",\"b\",\"c\",\"d\",\"e\",\"f\",\"g\",\"h\"]}"}`)
	}))
	defer server.Close()

	o := NewOllama(server.URL, "llama3.1", time.Second)
	draft, err := o.Extract(context.Background(), domain.SourceManual,
		[]string{"first", "second"}, []string{"pic.jpg"})
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if draft.Title != PlaceholderTitle {
		t.Fatalf("expected placeholder title, got %q", draft.Title)
	}
	if draft.Description != "first\nsecond" {
		t.Fatalf("unexpected description: %q", draft.Description)
	}
	if draft.Priority != domain.PriorityMedium {
		t.Fatalf("invalid priority should normalize to Medium, got %q", draft.Priority)
	}
	if len(draft.Tags) != domain.MaxTags {
		t.Fatalf("expected %d tags, got %d", domain.MaxTags, len(draft.Tags))
	}
	if len(draft.Attachments) != 1 || draft.Attachments[0] != "pic.jpg" {
		t.Fatalf("attachments should default to inputs, got %+v", draft.Attachments)
	}
}
