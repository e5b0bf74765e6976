package executor

import (
	"context"
	"errors"

	"github.com/starford/notechat/internal/action"
	"github.com/starford/notechat/internal/apperr"
	"github.com/starford/notechat/internal/matcher"
	"github.com/starford/notechat/internal/models"
	"github.com/starford/notechat/internal/storage"
)

// resolve turns the descriptor's id or match into one note in the partition
// the kind operates on. ok is false when res already holds the final outcome.
func (e *Executor) resolve(ctx context.Context, owner string, d action.Descriptor) (note *models.Note, res Result, ok bool) {
	deleted := d.Kind.SearchesDeleted()

	if !d.ID.Empty() {
		n, err := e.notes.Get(ctx, owner, d.ID.String())
		switch {
		case errors.Is(err, apperr.ErrNotFound):
			return nil, rejected(noNoteWithID(d.ID.String())), false
		case err != nil:
			return nil, e.storeFailure(owner, d.Kind, err), false
		case n.IsDeleted != deleted:
			return nil, rejected(noNoteWithID(d.ID.String())), false
		}
		return n, Result{}, true
	}

	candidates, err := e.notes.List(ctx, owner, storage.ListOptions{Deleted: deleted})
	if err != nil {
		return nil, e.storeFailure(owner, d.Kind, err), false
	}

	found := matcher.Search(candidates, d.Match.String(), matcher.Options{Deleted: deleted, Limit: e.limit})
	switch len(found.Matches) {
	case 0:
		return nil, rejected(noMatch(d.Kind, d.Match.String())), false
	case 1:
		return &found.Matches[0], Result{}, true
	}

	session := newSession(d, found.Matches)
	return nil, Result{
		Message: disambiguation(d.Match.String(), session.Options),
		State:   StateDisambiguating,
		Session: session,
	}, false
}
