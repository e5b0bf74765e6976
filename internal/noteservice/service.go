// Package noteservice implements direct note CRUD for the REST API, outside
// the chat pipeline.
package noteservice

import (
	"context"
	"strings"

	"github.com/starford/notechat/internal/action"
	"github.com/starford/notechat/internal/apperr"
	"github.com/starford/notechat/internal/checksum"
	"github.com/starford/notechat/internal/models"
	"github.com/starford/notechat/internal/storage"
)

// NoteDetail is a note with its checksum.
type NoteDetail struct {
	models.Note
	Checksum string `json:"checksum"`
}

// ListFilter narrows ListNotes.
type ListFilter struct {
	Deleted bool
	// Status is "", "completed" or "uncompleted".
	Status string
	Limit  int
}

// Changes is a partial update. Nil fields are left untouched.
type Changes struct {
	Title     *string
	Content   *string
	Completed *bool
}

// Notifier is told about every note change.
type Notifier func(owner string, kind action.Kind, noteID string)

// Service coordinates note storage for the REST layer.
type Service struct {
	store  storage.NoteStore
	notify Notifier
}

// NewService creates a new note service. notify may be nil.
func NewService(store storage.NoteStore, notify Notifier) *Service {
	return &Service{store: store, notify: notify}
}

func detail(n *models.Note) *NoteDetail {
	return &NoteDetail{Note: *n, Checksum: checksum.Note(*n)}
}

func (s *Service) changed(owner string, kind action.Kind, id string) {
	if s.notify != nil {
		s.notify(owner, kind, id)
	}
}

// ListNotes returns owner's notes, newest first.
func (s *Service) ListNotes(ctx context.Context, owner string, f ListFilter) ([]NoteDetail, error) {
	opts := storage.ListOptions{Deleted: f.Deleted, Limit: f.Limit}
	switch f.Status {
	case action.StatusCompleted:
		opts.Completed = storage.Ptr(true)
	case action.StatusUncompleted:
		opts.Completed = storage.Ptr(false)
	}
	notes, err := s.store.List(ctx, owner, opts)
	if err != nil {
		return nil, err
	}
	out := make([]NoteDetail, len(notes))
	for i := range notes {
		out[i] = *detail(&notes[i])
	}
	return out, nil
}

// GetNote returns a single note, deleted or not.
func (s *Service) GetNote(ctx context.Context, owner, id string) (*NoteDetail, error) {
	n, err := s.store.Get(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	return detail(n), nil
}

// CreateNote validates the title and inserts a new note. The title rule
// applies to the raw value, as it does for chat actions; the stored title is
// trimmed.
func (s *Service) CreateNote(ctx context.Context, owner, title, content string) (*NoteDetail, error) {
	if err := action.CheckTitle(title); err != nil {
		return nil, err
	}
	title = strings.TrimSpace(title)
	n, err := s.store.Insert(ctx, owner, storage.NoteFields{Title: &title, Content: &content})
	if err != nil {
		return nil, err
	}
	s.changed(owner, action.KindCreateNote, n.ID)
	return detail(n), nil
}

// UpdateNote applies c to a live note. A non-empty ifMatch must equal the
// note's current checksum or apperr.ErrConflict is returned.
func (s *Service) UpdateNote(ctx context.Context, owner, id string, c Changes, ifMatch string) (*NoteDetail, error) {
	existing, err := s.store.Get(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	if existing.IsDeleted {
		return nil, apperr.ErrNotFound
	}
	if ifMatch != "" && ifMatch != checksum.Note(*existing) {
		return nil, apperr.ErrConflict
	}
	if c.Title != nil {
		if err := action.CheckTitle(*c.Title); err != nil {
			return nil, err
		}
		c.Title = storage.Ptr(strings.TrimSpace(*c.Title))
	}

	if err := s.store.Update(ctx, owner, id, storage.NoteFields{Title: c.Title, Content: c.Content, Completed: c.Completed}); err != nil {
		return nil, err
	}
	kind := action.KindUpdateNote
	if c.Title == nil && c.Content == nil && c.Completed != nil {
		kind = action.KindUncompleteNote
		if *c.Completed {
			kind = action.KindCompleteNote
		}
	}
	s.changed(owner, kind, id)
	return s.GetNote(ctx, owner, id)
}

// DeleteNote soft-deletes a live note.
func (s *Service) DeleteNote(ctx context.Context, owner, id string) error {
	if err := s.store.SoftDelete(ctx, owner, id); err != nil {
		return err
	}
	s.changed(owner, action.KindDeleteNote, id)
	return nil
}

// RestoreNote brings a soft-deleted note back.
func (s *Service) RestoreNote(ctx context.Context, owner, id string) (*NoteDetail, error) {
	if err := s.store.Restore(ctx, owner, id); err != nil {
		return nil, err
	}
	s.changed(owner, action.KindRestoreNote, id)
	return s.GetNote(ctx, owner, id)
}
