// Package action defines the structured intents extracted from model output
// and the per-kind validation applied before any store access.
package action

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Kind identifies an action in the closed vocabulary understood by the executor.
type Kind string

const (
	KindCreateNote      Kind = "create_note"
	KindUpdateNote      Kind = "update_note"
	KindDeleteNote      Kind = "delete_note"
	KindCompleteNote    Kind = "complete_note"
	KindUncompleteNote  Kind = "uncomplete_note"
	KindSearchNotes     Kind = "search_notes"
	KindCountNotes      Kind = "count_notes"
	KindAskNote         Kind = "ask_note"
	KindDeleteAllNotes  Kind = "delete_all_notes"
	KindRestoreLastNote Kind = "restore_last_deleted_note"
	KindRestoreNote     Kind = "restore_note_from_notes_table"
	KindListCompleted   Kind = "list_completed_notes"
	KindChooseNote      Kind = "choose_note"
)

// Kinds lists every supported kind in vocabulary order.
var Kinds = []Kind{
	KindCreateNote,
	KindUpdateNote,
	KindDeleteNote,
	KindCompleteNote,
	KindUncompleteNote,
	KindSearchNotes,
	KindCountNotes,
	KindAskNote,
	KindDeleteAllNotes,
	KindRestoreLastNote,
	KindRestoreNote,
	KindListCompleted,
	KindChooseNote,
}

// Known reports whether k belongs to the vocabulary.
func (k Kind) Known() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// Targeted reports whether the kind acts on one note identified by id or match.
func (k Kind) Targeted() bool {
	switch k {
	case KindUpdateNote, KindDeleteNote, KindCompleteNote, KindUncompleteNote, KindRestoreNote:
		return true
	}
	return false
}

// Mutates reports whether a successful execution changes the store.
func (k Kind) Mutates() bool {
	switch k {
	case KindCreateNote, KindUpdateNote, KindDeleteNote, KindCompleteNote, KindUncompleteNote,
		KindDeleteAllNotes, KindRestoreLastNote, KindRestoreNote:
		return true
	}
	return false
}

// SearchesDeleted reports whether the kind resolves its target among soft-deleted notes.
func (k Kind) SearchesDeleted() bool {
	return k == KindRestoreNote
}

// Text is a scalar field that also accepts JSON numbers, booleans and null,
// since models routinely emit {"id": 3} or {"confirm": true}.
type Text string

// UnmarshalJSON implements json.Unmarshaler.
func (t *Text) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return err
	}
	switch x := v.(type) {
	case nil:
		*t = ""
	case string:
		*t = Text(x)
	case json.Number:
		*t = Text(x.String())
	case bool:
		if x {
			*t = "true"
		} else {
			*t = "false"
		}
	default:
		return fmt.Errorf("action: unsupported scalar %s", b)
	}
	return nil
}

// String returns the value with surrounding whitespace removed.
func (t Text) String() string {
	return strings.TrimSpace(string(t))
}

// Empty reports whether the value is blank.
func (t Text) Empty() bool {
	return t.String() == ""
}

// Option is one numbered candidate offered while disambiguating.
type Option struct {
	Number int    `json:"number"`
	ID     string `json:"id"`
	Title  string `json:"title"`
}

// Descriptor is a single structured intent. Fields not used by Kind are ignored.
type Descriptor struct {
	Kind     Kind `json:"action"`
	Title    Text `json:"title,omitempty"`
	Content  Text `json:"content,omitempty"`
	ID       Text `json:"id,omitempty"`
	Match    Text `json:"match,omitempty"`
	Query    Text `json:"query,omitempty"`
	Status   Text `json:"status,omitempty"`
	Question Text `json:"question,omitempty"`
	Confirm  Text `json:"confirm,omitempty"`

	// choose_note only.
	Choice         Text        `json:"choice,omitempty"`
	Options        []Option    `json:"options,omitempty"`
	OriginalAction *Descriptor `json:"originalAction,omitempty"`
}

// WithTarget returns a copy of d aimed at a concrete id with its match cleared.
func (d Descriptor) WithTarget(id string) Descriptor {
	d.ID = Text(id)
	d.Match = ""
	return d
}
