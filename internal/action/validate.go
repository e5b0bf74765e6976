package action

import (
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/notechat/internal/apperr"
	"github.com/starford/notechat/internal/models"
)

// Count filters accepted by count_notes.
const (
	StatusCompleted   = "completed"
	StatusUncompleted = "uncompleted"
)

// ValidationError is a user-facing rejection. No store access happens for a
// rejected descriptor.
type ValidationError struct {
	Kind   Kind
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("Cannot %s: %s.", verbs[e.Kind], e.Reason)
}

var verbs = map[Kind]string{
	KindCreateNote:      "create note",
	KindUpdateNote:      "update note",
	KindDeleteNote:      "delete note",
	KindCompleteNote:    "complete note",
	KindUncompleteNote:  "uncomplete note",
	KindSearchNotes:     "search notes",
	KindCountNotes:      "count notes",
	KindAskNote:         "answer about note",
	KindDeleteAllNotes:  "delete all notes",
	KindRestoreLastNote: "restore note",
	KindRestoreNote:     "restore note",
	KindListCompleted:   "list completed notes",
	KindChooseNote:      "choose note",
}

var titleRules = []validation.Rule{
	validation.RuneLength(0, models.MaxTitleLength),
}

// CheckTitle enforces the title rule: at least one non-whitespace character
// and no more than models.MaxTitleLength runes.
func CheckTitle(title string) error {
	if err := validation.Validate(strings.TrimSpace(title), validation.Required); err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrInvalidTitle, err)
	}
	if err := validation.Validate(title, titleRules...); err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrInvalidTitle, err)
	}
	return nil
}

// Validate runs the per-kind field checks. It returns nil or a *ValidationError.
// Unknown kinds are not rejected here; the executor reports them separately.
func Validate(d Descriptor) error {
	reject := func(reason string) error {
		return &ValidationError{Kind: d.Kind, Reason: reason}
	}

	switch d.Kind {
	case KindCreateNote:
		if CheckTitle(string(d.Title)) != nil {
			return reject("Invalid title")
		}

	case KindUpdateNote:
		if d.ID.Empty() && d.Match.Empty() {
			return reject("Missing id or match")
		}
		// A blank title means "keep the current one".
		if d.Title != "" && CheckTitle(string(d.Title)) != nil {
			return reject("Invalid title")
		}

	case KindDeleteNote, KindCompleteNote, KindUncompleteNote, KindRestoreNote:
		if d.ID.Empty() && d.Match.Empty() {
			return reject("Missing id or match")
		}

	case KindSearchNotes:
		if err := validation.Validate(d.Query.String(), validation.Required); err != nil {
			return reject("Missing query")
		}

	case KindCountNotes:
		if err := validation.Validate(strings.ToLower(d.Status.String()),
			validation.In(StatusCompleted, StatusUncompleted)); err != nil {
			return reject("Invalid status")
		}

	case KindAskNote:
		if d.Match.Empty() || d.Question.Empty() {
			return reject("Missing note title or question")
		}

	case KindChooseNote:
		if len(d.Options) == 0 || d.OriginalAction == nil {
			return reject("Nothing to choose from")
		}
	}
	return nil
}

var affirmatives = map[string]struct{}{
	"yes": {}, "y": {}, "yep": {}, "yeah": {}, "true": {}, "sure": {},
	"ok": {}, "okay": {}, "confirm": {}, "confirmed": {}, "i confirm": {},
	"do it": {}, "delete all": {}, "yes delete all": {}, "yes delete all notes": {},
	"yes delete everything": {},
}

// Confirmed reports whether confirm is a recognised affirmative phrase.
func Confirmed(confirm Text) bool {
	s := strings.ToLower(confirm.String())
	s = strings.Map(func(r rune) rune {
		switch r {
		case ',', '.', '!', '"', '\'':
			return -1
		}
		return r
	}, s)
	_, ok := affirmatives[strings.Join(strings.Fields(s), " ")]
	return ok
}
