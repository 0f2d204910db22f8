package sse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// drain collects every message already queued for ch.
func drain(ch chan []byte) []string {
	time.Sleep(50 * time.Millisecond)
	var out []string
	for {
		select {
		case msg := <-ch:
			out = append(out, string(msg))
		default:
			return out
		}
	}
}

func countType(msgs []string, typ string) int {
	n := 0
	for _, m := range msgs {
		if strings.Contains(m, "\nevent: "+typ+"\n") {
			n++
		}
	}
	return n
}

func TestSubscribeUnsubscribe(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients")
	}
	ch := b.Subscribe()
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}
	b.Unsubscribe(ch)
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after unsub")
	}
}

func TestPublishDelivery(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.Publish(Event{Type: "entry.generated", Data: map[string]string{"id": "a"}})

	select {
	case msg := <-ch:
		s := string(msg)
		if !strings.Contains(s, "event: entry.generated") {
			t.Errorf("missing event type in %q", s)
		}
		if !strings.Contains(s, `"id":"a"`) {
			t.Errorf("missing data in %q", s)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
	}
}

func TestPublishBuild_Events(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.PublishBuild(BuildSummary{
		Generated: []string{"a", "b"},
		Feed:      []string{"a"},
		Removed:   []string{"gone"},
	})
	msgs := drain(ch)

	if n := countType(msgs, "entry.generated"); n != 2 {
		t.Errorf("entry.generated = %d, want 2", n)
	}
	if n := countType(msgs, "entry.removed"); n != 1 {
		t.Errorf("entry.removed = %d, want 1", n)
	}
	if n := countType(msgs, "build.completed"); n != 1 {
		t.Errorf("build.completed = %d, want 1", n)
	}
	if n := countType(msgs, "timeline.updated"); n != 1 {
		t.Errorf("timeline.updated = %d, want 1", n)
	}
}

func TestEventIDsIncrease(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.Publish(Event{Type: "a", Data: 1})
	b.Publish(Event{Type: "b", Data: 2})
	msgs := drain(ch)

	if len(msgs) != 2 || !strings.HasPrefix(msgs[0], "id: 1\n") || !strings.HasPrefix(msgs[1], "id: 2\n") {
		t.Errorf("msgs = %q", msgs)
	}
}

func TestSubscribeAfter_ReplaysMissed(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()
	first := b.Subscribe()
	defer b.Unsubscribe(first)

	b.Publish(Event{Type: "a", Data: 1})
	b.Publish(Event{Type: "b", Data: 2})
	b.Publish(Event{Type: "c", Data: 3})
	if got := drain(first); len(got) != 3 {
		t.Fatalf("first subscriber got %d messages", len(got))
	}

	late := b.SubscribeAfter(1)
	defer b.Unsubscribe(late)
	msgs := drain(late)
	if len(msgs) != 2 || !strings.HasPrefix(msgs[0], "id: 2\n") || !strings.HasPrefix(msgs[1], "id: 3\n") {
		t.Errorf("replayed = %q", msgs)
	}

	fresh := b.Subscribe()
	defer b.Unsubscribe(fresh)
	if got := drain(fresh); len(got) != 0 {
		t.Errorf("fresh subscriber replayed %q", got)
	}
}

func TestSSEHandler_KeepAlive(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()
	b.keepAlive = 20 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/api/events", nil).WithContext(ctx)
	w := httptest.NewRecorder()
	b.ServeHTTP(w, req)

	if !strings.Contains(w.Body.String(), ": ping\n\n") {
		t.Errorf("no keep-alive in %q", w.Body.String())
	}
}

func TestPublishBuild_TimelineThrottle(t *testing.T) {
	b := NewBroker(500 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	// Second feed change within the interval must not repeat timeline.updated.
	b.PublishBuild(BuildSummary{Generated: []string{"a"}, Feed: []string{"a"}})
	b.PublishBuild(BuildSummary{Generated: []string{"b"}, Feed: []string{"b"}})
	// Content-only change never touches the timeline.
	b.PublishBuild(BuildSummary{Generated: []string{"c"}})
	msgs := drain(ch)

	if n := countType(msgs, "build.completed"); n != 3 {
		t.Errorf("build.completed = %d, want 3", n)
	}
	if n := countType(msgs, "timeline.updated"); n != 1 {
		t.Errorf("timeline.updated = %d, want 1 (throttled)", n)
	}
}

func TestPublishBuild_Failure(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.PublishBuild(BuildSummary{Error: "parser: blog.org:3: unterminated block"})
	msgs := drain(ch)

	if len(msgs) != 1 || countType(msgs, "build.failed") != 1 {
		t.Fatalf("msgs = %q, want a single build.failed", msgs)
	}
	if !strings.Contains(msgs[0], "unterminated block") {
		t.Errorf("missing error in %q", msgs[0])
	}
}

func TestSSEHandler(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()

	// Start handler in background.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
	req = req.WithContext(ctx)
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		b.ServeHTTP(w, req)
		close(done)
	}()

	// Give handler time to subscribe.
	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client from handler")
	}

	b.PublishBuild(BuildSummary{Generated: []string{"x"}})
	time.Sleep(50 * time.Millisecond)

	// Cancel context to disconnect.
	cancel()
	<-done

	body := w.Body.String()
	if !strings.Contains(body, "event: build.completed") {
		t.Errorf("handler output missing event: %q", body)
	}

	// Client should be cleaned up.
	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 0 {
		t.Errorf("client not cleaned up after disconnect")
	}
}

func TestPublishDropsOnFullBuffer(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	// Fill buffer (capacity 64) and then one more should not block.
	for i := 0; i < 70; i++ {
		b.Publish(Event{Type: "test", Data: map[string]string{"i": "x"}})
	}
}

func TestCloseClosesSubscribersAndStopsOperations(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	ch := b.Subscribe()
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}

	b.Close()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected subscriber channel to be closed")
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for channel close")
	}

	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after close")
	}

	// Should be safe no-op after close.
	b.Publish(Event{Type: "entry.generated", Data: map[string]string{"id": "x"}})
	b.PublishBuild(BuildSummary{Generated: []string{"x"}})
}
