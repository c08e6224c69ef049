package store

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/draftline/draftline/domain"
)

// MemoryStore keeps drafts in memory for the process lifetime. There is
// no eviction; a restart starts empty with the id counter back at 1.
type MemoryStore struct {
	mu     sync.Mutex
	nextID int64
	drafts map[string]*domain.Draft
	order  []string
}

// NewMemoryStore creates an empty draft registry.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextID: 1,
		drafts: make(map[string]*domain.Draft),
	}
}

// Create assigns the next sequential id and stores a copy of the draft.
func (s *MemoryStore) Create(ctx context.Context, draft *domain.Draft) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := strconv.FormatInt(s.nextID, 10)
	s.nextID++

	draft.ID = id
	if draft.Status == "" {
		draft.Status = domain.DraftStatusPending
	}
	if draft.CreatedAt.IsZero() {
		draft.CreatedAt = time.Now().UTC()
	}
	if draft.Sender == "" {
		draft.Sender = "unknown"
	}
	if draft.Messages == nil {
		draft.Messages = []string{}
	}
	if draft.Attachments == nil {
		draft.Attachments = []string{}
	}

	s.drafts[id] = clone(draft)
	s.order = append(s.order, id)
	return id, nil
}

// Get returns a copy of the draft, or nil when the id is unknown.
func (s *MemoryStore) Get(ctx context.Context, id string) (*domain.Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	draft, ok := s.drafts[id]
	if !ok {
		return nil, nil
	}
	return clone(draft), nil
}

// List returns drafts in insertion order, optionally filtered by source.
func (s *MemoryStore) List(ctx context.Context, source domain.Source) ([]domain.Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	drafts := make([]domain.Draft, 0, len(s.order))
	for _, id := range s.order {
		draft := s.drafts[id]
		if source != "" && draft.Source != source {
			continue
		}
		drafts = append(drafts, *clone(draft))
	}
	return drafts, nil
}

// Update replaces an existing draft in place.
func (s *MemoryStore) Update(ctx context.Context, draft *domain.Draft) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.drafts[draft.ID]; !ok {
		return ErrNotFound
	}
	s.drafts[draft.ID] = clone(draft)
	return nil
}

// Close releases nothing; it exists to satisfy the Store lifecycle.
func (s *MemoryStore) Close() error {
	return nil
}

// clone deep-copies a draft so callers never share slices or the
// extracted task with the registry.
func clone(d *domain.Draft) *domain.Draft {
	out := *d
	out.Messages = copySlice(d.Messages)
	out.Attachments = copySlice(d.Attachments)
	if d.Draft != nil {
		task := *d.Draft
		task.Tags = copySlice(d.Draft.Tags)
		task.Attachments = copySlice(d.Draft.Attachments)
		out.Draft = &task
	}
	return &out
}

func copySlice(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
