package action

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/starford/notechat/internal/apperr"
)

func TestCheckTitle_Property(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		title := rapid.StringMatching(`[ \tA-Za-z0-9é]{0,70}`).Draw(t, "title")
		err := CheckTitle(title)
		invalid := strings.TrimSpace(title) == "" || utf8.RuneCountInString(title) > 50
		if invalid && err == nil {
			t.Fatalf("title %q accepted", title)
		}
		if !invalid && err != nil {
			t.Fatalf("title %q rejected: %v", title, err)
		}
		if err != nil && !errors.Is(err, apperr.ErrInvalidTitle) {
			t.Fatalf("error %v does not wrap ErrInvalidTitle", err)
		}
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		d    Descriptor
		want string
	}{
		{"create ok", Descriptor{Kind: KindCreateNote, Title: "Buy milk"}, ""},
		{"create blank", Descriptor{Kind: KindCreateNote, Title: "   "}, "Cannot create note: Invalid title."},
		{"create too long", Descriptor{Kind: KindCreateNote, Title: Text(strings.Repeat("a", 51))}, "Cannot create note: Invalid title."},
		{"update by match", Descriptor{Kind: KindUpdateNote, Match: "Hey", Content: "x"}, ""},
		{"update missing target", Descriptor{Kind: KindUpdateNote, Title: "x"}, "Cannot update note: Missing id or match."},
		{"update bad title", Descriptor{Kind: KindUpdateNote, ID: "1", Title: " "}, "Cannot update note: Invalid title."},
		{"delete missing target", Descriptor{Kind: KindDeleteNote}, "Cannot delete note: Missing id or match."},
		{"complete by id", Descriptor{Kind: KindCompleteNote, ID: "abc"}, ""},
		{"restore missing", Descriptor{Kind: KindRestoreNote}, "Cannot restore note: Missing id or match."},
		{"search missing query", Descriptor{Kind: KindSearchNotes, Query: "  "}, "Cannot search notes: Missing query."},
		{"count plain", Descriptor{Kind: KindCountNotes}, ""},
		{"count status", Descriptor{Kind: KindCountNotes, Status: "Completed"}, ""},
		{"count bad status", Descriptor{Kind: KindCountNotes, Status: "pending"}, "Cannot count notes: Invalid status."},
		{"ask missing question", Descriptor{Kind: KindAskNote, Match: "Recipes"}, "Cannot answer about note: Missing note title or question."},
		{"choose without options", Descriptor{Kind: KindChooseNote, Choice: "1"}, "Cannot choose note: Nothing to choose from."},
		{"unknown passes", Descriptor{Kind: "fly"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.d)
			if tt.want == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.want, err.Error())
		})
	}
}

func TestConfirmed(t *testing.T) {
	for _, s := range []string{"yes", "YES!", " Yes, delete all ", "true", "confirm"} {
		assert.True(t, Confirmed(Text(s)), s)
	}
	for _, s := range []string{"", "no", "maybe", "yes please wait"} {
		assert.False(t, Confirmed(Text(s)), s)
	}
}

func TestDescriptor_UnmarshalScalars(t *testing.T) {
	var d Descriptor
	err := json.Unmarshal([]byte(`{"action":"delete_all_notes","confirm":true,"id":42,"title":null}`), &d)
	require.NoError(t, err)
	assert.Equal(t, KindDeleteAllNotes, d.Kind)
	assert.Equal(t, Text("true"), d.Confirm)
	assert.Equal(t, "42", d.ID.String())
	assert.True(t, d.Title.Empty())
	assert.True(t, Confirmed(d.Confirm))
}

func TestKindPredicates(t *testing.T) {
	assert.True(t, KindRestoreNote.Targeted())
	assert.True(t, KindRestoreNote.SearchesDeleted())
	assert.False(t, KindSearchNotes.Mutates())
	assert.True(t, KindDeleteAllNotes.Mutates())
	assert.False(t, Kind("fly").Known())
}
