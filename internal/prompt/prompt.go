// Package prompt assembles the text sent to the language model.
package prompt

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync/atomic"
	"text/template"

	"github.com/starford/notechat/internal/models"
)

//go:embed system.tmpl
var defaultSystem string

// ActionFormats is the vocabulary shown to the model, one JSON shape per line.
var ActionFormats = []string{
	`{"action": "create_note", "title": "...", "content": "..."}`,
	`{"action": "update_note", "id": "...", "match": "...", "title": "...", "content": "..."}`,
	`{"action": "delete_note", "id": "...", "match": "..."}`,
	`{"action": "complete_note", "id": "...", "match": "..."}`,
	`{"action": "uncomplete_note", "id": "...", "match": "..."}`,
	`{"action": "search_notes", "query": "..."}`,
	`{"action": "count_notes", "match": "...", "status": "completed"}`,
	`{"action": "ask_note", "match": "...", "question": "..."}`,
	`{"action": "delete_all_notes", "confirm": "yes"}`,
	`{"action": "restore_last_deleted_note"}`,
	`{"action": "restore_note_from_notes_table", "match": "..."}`,
	`{"action": "list_completed_notes"}`,
}

type systemData struct {
	Actions []string
	Notes   string
}

// Builder renders chat prompts from the current system template.
// The template can be swapped at runtime with Load or Watch.
type Builder struct {
	system atomic.Pointer[template.Template]
}

// NewBuilder returns a Builder using the built-in system template.
func NewBuilder() *Builder {
	b := &Builder{}
	b.system.Store(template.Must(parse(defaultSystem)))
	return b
}

func parse(text string) (*template.Template, error) {
	return template.New("system").Parse(text)
}

// Load replaces the system template with the contents of path. On error the
// current template is kept.
func (b *Builder) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("prompt: read template: %w", err)
	}
	tmpl, err := parse(string(data))
	if err != nil {
		return fmt.Errorf("prompt: parse template: %w", err)
	}
	b.system.Store(tmpl)
	return nil
}

// Chat renders the full completion prompt: system instructions with a
// snapshot of the owner's notes, the prior conversation, and the new message.
func (b *Builder) Chat(notes []models.Note, history []models.ChatMessage, message string) (string, error) {
	if notes == nil {
		notes = []models.Note{}
	}
	snapshot, err := json.MarshalIndent(notes, "", "  ")
	if err != nil {
		return "", fmt.Errorf("prompt: marshal notes: %w", err)
	}

	var buf bytes.Buffer
	if err := b.system.Load().Execute(&buf, systemData{Actions: ActionFormats, Notes: string(snapshot)}); err != nil {
		return "", fmt.Errorf("prompt: render system: %w", err)
	}

	buf.WriteString("\n")
	for _, m := range history {
		buf.WriteString(speaker(m.Role))
		buf.WriteString(": ")
		buf.WriteString(m.Content)
		buf.WriteString("\n")
	}
	fmt.Fprintf(&buf, "User: %s\nAssistant:", message)
	return buf.String(), nil
}

func speaker(role string) string {
	if role == models.RoleUser {
		return "User"
	}
	return "Assistant"
}

var askTemplate = template.Must(template.New("ask").Parse(
	`Answer the user's question using only the note below. If the note does not contain the answer, say so.

Note title: {{.Title}}
Note content:
{{.Content}}

Question: {{.Question}}
Answer:`))

// Ask renders the prompt for a question about a single note.
func Ask(note models.Note, question string) string {
	var sb strings.Builder
	_ = askTemplate.Execute(&sb, struct {
		Title, Content, Question string
	}{note.Title, note.Content, strings.TrimSpace(question)})
	return sb.String()
}
