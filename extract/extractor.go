// Package extract derives structured task drafts from raw chat messages.
package extract

import (
	"context"

	"go.uber.org/zap"

	"github.com/draftline/draftline/domain"
)

// Extractor produces a task draft from raw messages and attachments.
type Extractor interface {
	Extract(ctx context.Context, source domain.Source, messages, attachments []string) (*domain.TaskDraft, error)
}

// Chain tries the AI extractor first and falls back to the heuristic on
// any failure. It never returns an error; the heuristic path is total.
type Chain struct {
	ai        Extractor
	heuristic *Heuristic
	logger    *zap.Logger
}

// NewChain creates the extraction chain. ai may be nil, which leaves the
// heuristic extractor as the only strategy.
func NewChain(ai Extractor, logger *zap.Logger) *Chain {
	return &Chain{
		ai:        ai,
		heuristic: NewHeuristic(),
		logger:    logger,
	}
}

// Extract runs the chain.
func (c *Chain) Extract(ctx context.Context, source domain.Source, messages, attachments []string) (*domain.TaskDraft, error) {
	if c.ai != nil {
		draft, err := c.ai.Extract(ctx, source, messages, attachments)
		if err == nil {
			return draft, nil
		}
		c.logger.Warn("ai extraction failed, using heuristic", zap.Error(err))
	}
	return c.heuristic.Extract(ctx, source, messages, attachments)
}
