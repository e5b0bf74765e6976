package sse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestSubscribeUnsubscribe(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	if b.ClientCount("") != 0 {
		t.Fatalf("expected 0 clients")
	}
	ch := b.Subscribe("alice")
	_ = b.Subscribe("bob")
	if n := b.ClientCount("alice"); n != 1 {
		t.Fatalf("alice clients = %d, want 1", n)
	}
	if n := b.ClientCount(""); n != 2 {
		t.Fatalf("all clients = %d, want 2", n)
	}
	b.Unsubscribe(ch)
	if b.ClientCount("alice") != 0 {
		t.Fatalf("expected 0 alice clients after unsub")
	}
}

func TestPublishIsOwnerScoped(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	alice := b.Subscribe("alice")
	bob := b.Subscribe("bob")

	b.Publish(Event{Owner: "alice", Type: "note.create_note", Data: map[string]string{"id": "n1"}})

	select {
	case msg := <-alice:
		s := string(msg)
		if !strings.Contains(s, "event: note.create_note") {
			t.Errorf("missing event type in %q", s)
		}
		if !strings.Contains(s, `"id":"n1"`) {
			t.Errorf("missing data in %q", s)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
	}

	// Round-trip through the loop so the publish has been fully handled.
	b.ClientCount("")
	select {
	case msg := <-bob:
		t.Fatalf("bob received %q", msg)
	default:
	}
}

func TestPublishNoteEvent_RefreshThrottle(t *testing.T) {
	b := NewBroker(500 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe("alice")
	other := b.Subscribe("bob")

	b.PublishNoteEvent("alice", "create_note", "a")
	b.PublishNoteEvent("alice", "update_note", "b")
	// Bob's throttle window is independent.
	b.PublishNoteEvent("bob", "delete_note", "c")

	time.Sleep(50 * time.Millisecond)
	refresh, notes := drain(ch)
	if notes != 2 {
		t.Errorf("note events = %d, want 2", notes)
	}
	if refresh != 1 {
		t.Errorf("refresh events = %d, want 1 (throttled)", refresh)
	}
	if refresh, notes := drain(other); refresh != 1 || notes != 1 {
		t.Errorf("bob refresh=%d notes=%d, want 1 and 1", refresh, notes)
	}
}

func drain(ch chan []byte) (refresh, notes int) {
	for {
		select {
		case msg := <-ch:
			if strings.Contains(string(msg), "notes.refresh") {
				refresh++
			} else {
				notes++
			}
		default:
			return
		}
	}
}

type syncRecorder struct {
	*httptest.ResponseRecorder
	mu sync.Mutex
}

func (r *syncRecorder) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ResponseRecorder.Write(p)
}

func (r *syncRecorder) body() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ResponseRecorder.Body.String()
}

func TestStream(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/api/events", nil).WithContext(ctx)
	w := &syncRecorder{ResponseRecorder: httptest.NewRecorder()}

	done := make(chan struct{})
	go func() {
		b.Stream(w, req, "alice")
		close(done)
	}()

	deadline := time.Now().Add(time.Second)
	for b.ClientCount("alice") != 1 {
		if time.Now().After(deadline) {
			t.Fatal("handler never subscribed")
		}
		time.Sleep(10 * time.Millisecond)
	}

	b.Publish(Event{Owner: "alice", Type: "note.update_note", Data: map[string]string{"id": "x"}})
	b.Publish(Event{Owner: "bob", Type: "note.delete_note", Data: map[string]string{"id": "y"}})
	time.Sleep(50 * time.Millisecond)

	cancel()
	<-done

	body := w.body()
	if !strings.Contains(body, "event: note.update_note") {
		t.Errorf("missing alice event in body: %q", body)
	}
	if strings.Contains(body, "note.delete_note") {
		t.Errorf("bob's event leaked into alice's stream: %q", body)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	b := NewBroker(0)
	ch := b.Subscribe("alice")
	b.Close()
	b.Close()
	if _, ok := <-ch; ok {
		t.Error("client channel still open after Close")
	}
	b.Publish(Event{Owner: "alice", Type: "x"})
	if n := b.ClientCount(""); n != 0 {
		t.Errorf("ClientCount after close = %d", n)
	}
}
