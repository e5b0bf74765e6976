package executor

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/starford/notechat/internal/action"
	"github.com/starford/notechat/internal/models"
)

// Session is a pending disambiguation: the numbered candidates and the
// action waiting for the user to pick one. It lives until the next user turn.
type Session struct {
	Kind           action.Kind       `json:"action"`
	Options        []action.Option   `json:"options"`
	OriginalAction action.Descriptor `json:"originalAction"`
}

func newSession(d action.Descriptor, matches []models.Note) *Session {
	opts := make([]action.Option, len(matches))
	for i, n := range matches {
		opts[i] = action.Option{Number: i + 1, ID: n.ID, Title: n.Title}
	}
	orig := d
	orig.Match = ""
	return &Session{Kind: action.KindChooseNote, Options: opts, OriginalAction: orig}
}

// Encode serialises the session for storage alongside the assistant message.
func (s *Session) Encode() (string, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("executor: encode session: %w", err)
	}
	return string(b), nil
}

// DecodeSession parses a session written by Encode.
func DecodeSession(raw string) (*Session, error) {
	var s Session
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return nil, fmt.Errorf("executor: decode session: %w", err)
	}
	if len(s.Options) == 0 {
		return nil, fmt.Errorf("executor: decode session: no options")
	}
	return &s, nil
}

// Reply builds the choose_note descriptor for the user's answer.
func (s *Session) Reply(text string) action.Descriptor {
	orig := s.OriginalAction
	return action.Descriptor{
		Kind:           action.KindChooseNote,
		Choice:         action.Text(text),
		Options:        s.Options,
		OriginalAction: &orig,
	}
}

// IsChoice reports whether text is a bare integer, the only reply a
// pending session accepts without consulting the model.
func IsChoice(text string) bool {
	_, err := strconv.Atoi(strings.TrimSpace(text))
	return err == nil
}

func choose(d action.Descriptor) (action.Descriptor, Result, bool) {
	n, err := strconv.Atoi(d.Choice.String())
	if err == nil {
		for _, opt := range d.Options {
			if opt.Number == n {
				return d.OriginalAction.WithTarget(opt.ID), Result{}, true
			}
		}
	}
	return action.Descriptor{}, rejected(invalidChoice(len(d.Options))), false
}
