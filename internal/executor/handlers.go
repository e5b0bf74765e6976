package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/starford/notechat/internal/action"
	"github.com/starford/notechat/internal/apperr"
	"github.com/starford/notechat/internal/matcher"
	"github.com/starford/notechat/internal/models"
	"github.com/starford/notechat/internal/prompt"
	"github.com/starford/notechat/internal/storage"
)

// dispatch performs the store operation for d. Targeted kinds arrive with
// target already resolved.
func (e *Executor) dispatch(ctx context.Context, owner string, d action.Descriptor, target *models.Note) (Result, error) {
	switch d.Kind {
	case action.KindCreateNote:
		return e.create(ctx, owner, d), nil
	case action.KindUpdateNote:
		return e.update(ctx, owner, d, target), nil
	case action.KindDeleteNote:
		return e.mutate(owner, d.Kind, target, func() error {
			return e.notes.SoftDelete(ctx, owner, target.ID)
		}), nil
	case action.KindCompleteNote, action.KindUncompleteNote:
		done := d.Kind == action.KindCompleteNote
		return e.mutate(owner, d.Kind, target, func() error {
			return e.notes.Update(ctx, owner, target.ID, storage.NoteFields{Completed: &done})
		}), nil
	case action.KindRestoreNote:
		return e.mutate(owner, d.Kind, target, func() error {
			return e.notes.Restore(ctx, owner, target.ID)
		}), nil
	case action.KindSearchNotes:
		return e.search(ctx, owner, d), nil
	case action.KindCountNotes:
		return e.count(ctx, owner, d), nil
	case action.KindAskNote:
		return e.ask(ctx, owner, d)
	case action.KindDeleteAllNotes:
		return e.deleteAll(ctx, owner), nil
	case action.KindRestoreLastNote:
		return e.restoreLast(ctx, owner), nil
	case action.KindListCompleted:
		return e.listCompleted(ctx, owner), nil
	}
	return rejected(unknownAction(d.Kind)), nil
}

func (e *Executor) storeFailure(owner string, kind action.Kind, err error) Result {
	e.logger.Warn("executor: store failure",
		slog.String("owner", owner),
		slog.String("kind", string(kind)),
		slog.String("error", err.Error()))
	res := executed(kind, failed(kind, err))
	res.Failed = true
	return res
}

func (e *Executor) create(ctx context.Context, owner string, d action.Descriptor) Result {
	title := d.Title.String()
	content := d.Content.String()
	n, err := e.notes.Insert(ctx, owner, storage.NoteFields{Title: &title, Content: &content})
	if err != nil {
		return e.storeFailure(owner, d.Kind, err)
	}
	res := executed(d.Kind, created(n.Title))
	res.NoteID = n.ID
	return res
}

func (e *Executor) update(ctx context.Context, owner string, d action.Descriptor, target *models.Note) Result {
	var f storage.NoteFields
	if !d.Title.Empty() {
		title := d.Title.String()
		f.Title = &title
	}
	if !d.Content.Empty() {
		content := d.Content.String()
		f.Content = &content
	}
	return e.mutate(owner, d.Kind, target, func() error {
		return e.notes.Update(ctx, owner, target.ID, f)
	})
}

// mutate runs op against a resolved note and reports it by title.
func (e *Executor) mutate(owner string, kind action.Kind, target *models.Note, op func() error) Result {
	if err := op(); err != nil {
		return e.storeFailure(owner, kind, err)
	}
	res := executed(kind, mutated(kind, target.Title))
	res.NoteID = target.ID
	return res
}

func (e *Executor) search(ctx context.Context, owner string, d action.Descriptor) Result {
	candidates, err := e.notes.List(ctx, owner, storage.ListOptions{})
	if err != nil {
		return e.storeFailure(owner, d.Kind, err)
	}
	query := d.Query.String()
	found := matcher.Search(candidates, query, matcher.Options{Limit: e.limit})
	if len(found.Matches) == 0 {
		return executed(d.Kind, nothingFound(query))
	}
	return executed(d.Kind, foundNotes(found.Matches))
}

func (e *Executor) count(ctx context.Context, owner string, d action.Descriptor) Result {
	if title := d.Match.String(); title != "" {
		candidates, err := e.notes.List(ctx, owner, storage.ListOptions{})
		if err != nil {
			return e.storeFailure(owner, d.Kind, err)
		}
		return executed(d.Kind, countTitled(len(exactTitle(candidates, title)), title))
	}

	opts := storage.ListOptions{}
	status := strings.ToLower(d.Status.String())
	if status != "" {
		done := status == action.StatusCompleted
		opts.Completed = &done
	}
	n, err := e.notes.Count(ctx, owner, opts)
	if err != nil {
		return e.storeFailure(owner, d.Kind, err)
	}
	return executed(d.Kind, countStatus(n, status))
}

func exactTitle(notes []models.Note, title string) []models.Note {
	want := matcher.Normalize(title)
	var out []models.Note
	for _, n := range notes {
		if matcher.Normalize(n.Title) == want {
			out = append(out, n)
		}
	}
	return out
}

func (e *Executor) ask(ctx context.Context, owner string, d action.Descriptor) (Result, error) {
	candidates, err := e.notes.List(ctx, owner, storage.ListOptions{})
	if err != nil {
		return e.storeFailure(owner, d.Kind, err), nil
	}
	title := d.Match.String()
	matches := exactTitle(candidates, title)
	if len(matches) == 0 {
		return rejected(noNoteTitled(title)), nil
	}
	if e.oracle == nil {
		return Result{}, fmt.Errorf("%w: no oracle configured", apperr.ErrOracleFailure)
	}

	answer, err := e.oracle.Complete(ctx, prompt.Ask(matches[0], d.Question.String()))
	if err != nil {
		if !errors.Is(err, apperr.ErrOracleFailure) {
			err = fmt.Errorf("%w: %w", apperr.ErrOracleFailure, err)
		}
		return Result{}, fmt.Errorf("executor: ask note: %w", err)
	}
	return executed(d.Kind, strings.TrimSpace(answer.Text)), nil
}

func (e *Executor) deleteAll(ctx context.Context, owner string) Result {
	n, err := e.notes.SoftDeleteAll(ctx, owner)
	if err != nil {
		return e.storeFailure(owner, action.KindDeleteAllNotes, err)
	}
	return executed(action.KindDeleteAllNotes, deletedAll(n))
}

func (e *Executor) restoreLast(ctx context.Context, owner string) Result {
	kind := action.KindRestoreLastNote
	last, err := e.notes.List(ctx, owner, storage.ListOptions{Deleted: true, Sort: storage.SortModified, Limit: 1})
	if err != nil {
		return e.storeFailure(owner, kind, err)
	}
	if len(last) == 0 {
		return rejected(nothingToRestore)
	}
	if err := e.notes.Restore(ctx, owner, last[0].ID); err != nil {
		return e.storeFailure(owner, kind, err)
	}
	res := executed(kind, mutated(kind, last[0].Title))
	res.NoteID = last[0].ID
	return res
}

func (e *Executor) listCompleted(ctx context.Context, owner string) Result {
	done := true
	notes, err := e.notes.List(ctx, owner, storage.ListOptions{Completed: &done, Sort: storage.SortModified})
	if err != nil {
		return e.storeFailure(owner, action.KindListCompleted, err)
	}
	return executed(action.KindListCompleted, completedList(notes))
}
