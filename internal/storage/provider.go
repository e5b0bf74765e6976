// Package storage defines the persistence abstractions for notes, chat
// history and usage counters, and their SQLite implementation.
package storage

import (
	"context"

	"github.com/starford/notechat/internal/models"
)

// Sort selects the ordering of List results. Ties fall back to insertion order,
// newest first.
type Sort int

const (
	// SortCreated orders by creation time, newest first.
	SortCreated Sort = iota
	// SortModified orders by last modification, newest first.
	SortModified
)

// ListOptions filters a note listing.
type ListOptions struct {
	Deleted   bool  // list the soft-deleted partition instead of live notes
	Completed *bool // nil means either
	Sort      Sort
	Limit     int // zero means no limit
}

// NoteFields carries the columns of an insert or partial update. Nil fields
// are left untouched on update.
type NoteFields struct {
	Title     *string
	Content   *string
	Completed *bool
}

// NoteStore is the notes collection. Every call is scoped to one owner.
// Mutations bump lastModified; Update, SoftDelete and Restore return
// apperr.ErrNotFound when no row in the expected partition matches.
type NoteStore interface {
	List(ctx context.Context, owner string, opts ListOptions) ([]models.Note, error)
	Count(ctx context.Context, owner string, opts ListOptions) (int, error)
	Get(ctx context.Context, owner, id string) (*models.Note, error)
	Insert(ctx context.Context, owner string, f NoteFields) (*models.Note, error)
	Update(ctx context.Context, owner, id string, f NoteFields) error
	SoftDelete(ctx context.Context, owner, id string) error
	SoftDeleteAll(ctx context.Context, owner string) (int, error)
	Restore(ctx context.Context, owner, id string) error
}

// MessageStore keeps the conversation history fed back into the prompt.
type MessageStore interface {
	AppendMessage(ctx context.Context, msg *models.ChatMessage) error
	// RecentMessages returns up to limit messages, oldest first.
	RecentMessages(ctx context.Context, owner string, limit int) ([]models.ChatMessage, error)
}

// UsageStore keeps per-owner daily AI usage counters.
type UsageStore interface {
	GetUsage(ctx context.Context, owner, day string) (models.Usage, error)
	AddUsage(ctx context.Context, owner, day string, messages, tokens int) error
}

// Verify *DB satisfies every store interface at compile time.
var (
	_ NoteStore    = (*DB)(nil)
	_ MessageStore = (*DB)(nil)
	_ UsageStore   = (*DB)(nil)
)

// Ptr returns a pointer to v, for building NoteFields.
func Ptr[T any](v T) *T {
	return &v
}
