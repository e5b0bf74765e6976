// Package usage enforces per-owner daily AI chat quotas.
package usage

import (
	"context"
	"fmt"
	"time"

	"github.com/starford/notechat/internal/apperr"
	"github.com/starford/notechat/internal/storage"
)

// Limits are daily ceilings. Zero disables a limit.
type Limits struct {
	Messages int
	Tokens   int
}

// LimitError is returned by Check when a quota is exhausted. Its message is
// safe to show to the user.
type LimitError struct {
	Message string
}

func (e *LimitError) Error() string { return e.Message }

// Unwrap lets callers match apperr.ErrLimitReached.
func (e *LimitError) Unwrap() error { return apperr.ErrLimitReached }

// Limiter checks and records usage in a storage.UsageStore.
type Limiter struct {
	store  storage.UsageStore
	limits Limits
	now    func() time.Time
}

// NewLimiter creates a Limiter.
func NewLimiter(store storage.UsageStore, limits Limits) *Limiter {
	return &Limiter{store: store, limits: limits, now: time.Now}
}

// Day formats t as the UTC calendar day used to bucket usage.
func Day(t time.Time) string {
	return t.UTC().Format(time.DateOnly)
}

// Check returns a *LimitError when owner has reached today's message or
// token limit.
func (l *Limiter) Check(ctx context.Context, owner string) error {
	if l.limits.Messages <= 0 && l.limits.Tokens <= 0 {
		return nil
	}
	u, err := l.store.GetUsage(ctx, owner, Day(l.now()))
	if err != nil {
		return fmt.Errorf("usage: check: %w", err)
	}
	if l.limits.Messages > 0 && u.MessageCount >= l.limits.Messages {
		return &LimitError{Message: "Daily AI chat message limit reached."}
	}
	if l.limits.Tokens > 0 && u.TokenCount >= l.limits.Tokens {
		return &LimitError{Message: "Daily AI chat token limit reached."}
	}
	return nil
}

// Record counts one chat message and its tokens for today.
func (l *Limiter) Record(ctx context.Context, owner string, tokens int) error {
	if err := l.store.AddUsage(ctx, owner, Day(l.now()), 1, tokens); err != nil {
		return fmt.Errorf("usage: record: %w", err)
	}
	return nil
}
