package storage

import (
	"context"
	"errors"
	"os"
	"slices"
	"testing"
	"time"

	"github.com/starford/notechat/internal/apperr"
	"github.com/starford/notechat/internal/models"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp("", "notechat-storage-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	db, err := Open(f.Name(), WithClock(func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func insert(t *testing.T, db *DB, owner, title string) *models.Note {
	t.Helper()
	n, err := db.Insert(context.Background(), owner, NoteFields{Title: Ptr(title), Content: Ptr(title + " body")})
	if err != nil {
		t.Fatalf("Insert(%q): %v", title, err)
	}
	return n
}

func titles(ns []models.Note) []string {
	out := make([]string, len(ns))
	for i, n := range ns {
		out[i] = n.Title
	}
	return out
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	for _, table := range []string{"notes", "chat_messages", "ai_usage"} {
		var count int
		if err := db.conn.QueryRow(`SELECT count(*) FROM ` + table).Scan(&count); err != nil {
			t.Fatalf("%s table missing: %v", table, err)
		}
	}
}

func TestInsertAndGet(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	n := insert(t, db, "alice", "Groceries")

	got, err := db.Get(ctx, "alice", n.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Title != "Groceries" || got.Content != "Groceries body" || got.Completed || got.IsDeleted {
		t.Errorf("unexpected note: %+v", got)
	}
	if !got.CreatedAt.Equal(got.LastModified) {
		t.Errorf("createdAt %v != lastModified %v", got.CreatedAt, got.LastModified)
	}

	if _, err := db.Get(ctx, "bob", n.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Get other owner: err = %v, want ErrNotFound", err)
	}
}

func TestInsertRequiresTitle(t *testing.T) {
	db := testDB(t)
	if _, err := db.Insert(context.Background(), "alice", NoteFields{}); !errors.Is(err, apperr.ErrInvalidTitle) {
		t.Errorf("err = %v, want ErrInvalidTitle", err)
	}
}

func TestListOrderAndFilters(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	a := insert(t, db, "alice", "A")
	insert(t, db, "alice", "B")
	insert(t, db, "alice", "C")
	insert(t, db, "bob", "Z")

	got, err := db.List(ctx, "alice", ListOptions{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if want := []string{"C", "B", "A"}; !slices.Equal(titles(got), want) {
		t.Errorf("List = %v, want %v", titles(got), want)
	}

	if err := db.Update(ctx, "alice", a.ID, NoteFields{Completed: Ptr(true)}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, _ = db.List(ctx, "alice", ListOptions{Sort: SortModified, Limit: 2})
	if want := []string{"A", "C"}; !slices.Equal(titles(got), want) {
		t.Errorf("List by modified = %v, want %v", titles(got), want)
	}

	got, _ = db.List(ctx, "alice", ListOptions{Completed: Ptr(true)})
	if want := []string{"A"}; !slices.Equal(titles(got), want) {
		t.Errorf("List completed = %v, want %v", titles(got), want)
	}

	n, err := db.Count(ctx, "alice", ListOptions{Completed: Ptr(false)})
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 2 {
		t.Errorf("Count uncompleted = %d, want 2", n)
	}
}

func TestSoftDeleteAndRestore(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	n := insert(t, db, "alice", "Trip")

	if err := db.SoftDelete(ctx, "alice", n.ID); err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}
	if err := db.SoftDelete(ctx, "alice", n.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("second SoftDelete: err = %v, want ErrNotFound", err)
	}
	if err := db.Update(ctx, "alice", n.ID, NoteFields{Title: Ptr("x")}); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Update deleted: err = %v, want ErrNotFound", err)
	}

	live, _ := db.Count(ctx, "alice", ListOptions{})
	deleted, _ := db.List(ctx, "alice", ListOptions{Deleted: true})
	if live != 0 || len(deleted) != 1 || !deleted[0].IsDeleted {
		t.Fatalf("after delete: live=%d deleted=%+v", live, deleted)
	}

	if err := db.Restore(ctx, "bob", n.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Restore other owner: err = %v, want ErrNotFound", err)
	}
	if err := db.Restore(ctx, "alice", n.ID); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	got, _ := db.Get(ctx, "alice", n.ID)
	if got.IsDeleted || got.Title != "Trip" {
		t.Errorf("after restore: %+v", got)
	}
}

func TestSoftDeleteAllIsOwnerScoped(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	insert(t, db, "alice", "A")
	insert(t, db, "alice", "B")
	insert(t, db, "bob", "C")

	n, err := db.SoftDeleteAll(ctx, "alice")
	if err != nil {
		t.Fatalf("SoftDeleteAll: %v", err)
	}
	if n != 2 {
		t.Errorf("deleted = %d, want 2", n)
	}
	if c, _ := db.Count(ctx, "bob", ListOptions{}); c != 1 {
		t.Errorf("bob live notes = %d, want 1", c)
	}
	if c, _ := db.Count(ctx, "alice", ListOptions{Deleted: true}); c != 2 {
		t.Errorf("alice deleted notes = %d, want 2", c)
	}
}

func TestMessagesOldestFirst(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	for _, c := range []string{"one", "two", "three"} {
		if err := db.AppendMessage(ctx, &models.ChatMessage{OwnerID: "alice", Role: models.RoleUser, Content: c}); err != nil {
			t.Fatalf("AppendMessage: %v", err)
		}
	}
	_ = db.AppendMessage(ctx, &models.ChatMessage{OwnerID: "bob", Role: models.RoleUser, Content: "other"})

	msgs, err := db.RecentMessages(ctx, "alice", 2)
	if err != nil {
		t.Fatalf("RecentMessages: %v", err)
	}
	if len(msgs) != 2 || msgs[0].Content != "two" || msgs[1].Content != "three" {
		t.Errorf("RecentMessages = %+v", msgs)
	}
	all, _ := db.RecentMessages(ctx, "alice", 0)
	if len(all) != 3 {
		t.Errorf("full history len = %d, want 3", len(all))
	}
}

func TestUsageAccumulates(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	u, err := db.GetUsage(ctx, "alice", "2025-01-01")
	if err != nil {
		t.Fatalf("GetUsage: %v", err)
	}
	if u.MessageCount != 0 || u.TokenCount != 0 {
		t.Errorf("empty usage = %+v", u)
	}

	_ = db.AddUsage(ctx, "alice", "2025-01-01", 1, 100)
	_ = db.AddUsage(ctx, "alice", "2025-01-01", 1, 50)
	_ = db.AddUsage(ctx, "alice", "2025-01-02", 1, 7)

	u, _ = db.GetUsage(ctx, "alice", "2025-01-01")
	if u.MessageCount != 2 || u.TokenCount != 150 {
		t.Errorf("usage = %+v, want 2 messages 150 tokens", u)
	}
}
