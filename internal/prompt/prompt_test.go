package prompt

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/starford/notechat/internal/models"
)

func TestChat_Layout(t *testing.T) {
	b := NewBuilder()
	notes := []models.Note{{ID: "n1", Title: "Buy milk", Content: "2 litres"}}
	history := []models.ChatMessage{
		{Role: models.RoleUser, Content: "hi"},
		{Role: models.RoleAssistant, Content: "hello"},
	}

	out, err := b.Chat(notes, history, "create a note")
	require.NoError(t, err)

	assert.Contains(t, out, `"title": "Buy milk"`)
	assert.Contains(t, out, `{"action": "restore_last_deleted_note"}`)
	assert.True(t, strings.HasSuffix(out, "User: hi\nAssistant: hello\nUser: create a note\nAssistant:"), out)
}

func TestChat_EmptyNotes(t *testing.T) {
	out, err := NewBuilder().Chat(nil, nil, "x")
	require.NoError(t, err)
	assert.Contains(t, out, "Current user notes:\n[]")
}

func TestAsk(t *testing.T) {
	out := Ask(models.Note{Title: "Recipe", Content: "flour, eggs"}, "  what do I need? ")
	assert.Contains(t, out, "Note title: Recipe")
	assert.Contains(t, out, "flour, eggs")
	assert.Contains(t, out, "Question: what do I need?\nAnswer:")
}

func TestLoad_KeepsPreviousOnError(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.tmpl")
	bad := filepath.Join(dir, "bad.tmpl")
	require.NoError(t, os.WriteFile(good, []byte("custom {{.Notes}}"), 0o644))
	require.NoError(t, os.WriteFile(bad, []byte("broken {{.Notes"), 0o644))

	b := NewBuilder()
	require.NoError(t, b.Load(good))
	assert.Error(t, b.Load(bad))

	out, err := b.Chat(nil, nil, "x")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "custom []"), out)
}

func TestWatch_Reloads(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "system.tmpl")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0o644))

	b := NewBuilder()
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- b.Watch(ctx, path, logger) }()

	render := func() string {
		out, _ := b.Chat(nil, nil, "x")
		return out
	}
	require.Eventually(t, func() bool { return strings.HasPrefix(render(), "v1") }, 2*time.Second, 20*time.Millisecond)

	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("v2"), 0o644))
	assert.Eventually(t, func() bool { return strings.HasPrefix(render(), "v2") }, 5*time.Second, 50*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}
