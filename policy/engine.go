// Package policy decides how inbound webhook drafts are triaged before
// they reach a human reviewer.
package policy

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/open-policy-agent/opa/v1/rego"
)

// Triage decisions returned by the policy.
const (
	DecisionReview   = "review"
	DecisionAutoFile = "auto_file"
	DecisionDiscard  = "discard"
)

// Input describes an inbound draft for policy evaluation.
type Input struct {
	Source      string   `json:"source"`
	Sender      string   `json:"sender"`
	Priority    string   `json:"priority"`
	Tags        []string `json:"tags"`
	Messages    []string `json:"messages"`
	Attachments []string `json:"attachments"`
}

// Engine is the OPA policy engine.
type Engine struct {
	query rego.PreparedEvalQuery
}

// NewEngine creates a new policy engine with the given policy content.
func NewEngine(ctx context.Context, policyContent string) (*Engine, error) {
	r := rego.New(
		rego.Query("data.triage.decision"),
		rego.Module("triage.rego", policyContent),
	)

	query, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare rego: %w", err)
	}

	return &Engine{query: query}, nil
}

// Evaluate returns the triage decision for a draft. Unknown or missing
// results fall back to review so a policy mistake can never drop work
// silently.
func (e *Engine) Evaluate(ctx context.Context, input Input) (string, error) {
	if input.Tags == nil {
		input.Tags = []string{}
	}
	if input.Messages == nil {
		input.Messages = []string{}
	}
	if input.Attachments == nil {
		input.Attachments = []string{}
	}

	raw, err := json.Marshal(input)
	if err != nil {
		return DecisionReview, fmt.Errorf("failed to marshal input: %w", err)
	}
	var in interface{}
	if err := json.Unmarshal(raw, &in); err != nil {
		return DecisionReview, fmt.Errorf("failed to convert input: %w", err)
	}

	results, err := e.query.Eval(ctx, rego.EvalInput(in))
	if err != nil {
		return DecisionReview, fmt.Errorf("failed to evaluate policy: %w", err)
	}

	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return DecisionReview, nil
	}

	if s, ok := results[0].Expressions[0].Value.(string); ok {
		switch s {
		case DecisionReview, DecisionAutoFile, DecisionDiscard:
			return s, nil
		}
	}

	return DecisionReview, nil
}

// DefaultPolicy parks every draft for human review, except webhook
// payloads carrying neither text nor media, which are discarded.
const DefaultPolicy = `
package triage

default decision := "review"

decision := "discard" if {
	count(input.messages) == 0
	count(input.attachments) == 0
}
`
