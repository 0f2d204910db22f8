package build

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/starford/orgblog/internal/testutil"
)

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

func TestWatch_RebuildsOnChange(t *testing.T) {
	root, store := testutil.TestBlog(t)
	testutil.WriteFile(t, store, "blog.org", testutil.Entry{Title: "One", ID: "one"}.String())

	c := newCoordinator(t, store)
	paths := Paths{Inputs: []string{"blog.org"}, Previous: "prev.yaml", New: "cur.yaml", Rotate: true}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var reports []*Report
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = c.Watch(ctx, root, paths, 50*time.Millisecond, func(r *Report, err error) {
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				reports = append(reports, r)
			}
		})
	}()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	testutil.WriteFile(t, store, "blog.org",
		testutil.Entry{Title: "One", ID: "one"}.String()+testutil.Entry{Title: "Two", ID: "two"}.String())

	eventually(t, 3*time.Second, 50*time.Millisecond, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(reports) > 0 && reports[len(reports)-1].Stats.Entries == 2
	}, "watcher did not rebuild after input change")

	cancel()
	<-done
}

func TestWatch_IgnoresOtherFiles(t *testing.T) {
	root, store := testutil.TestBlog(t)
	testutil.WriteFile(t, store, "blog.org", testutil.Entry{Title: "One", ID: "one"}.String())

	c := newCoordinator(t, store)
	paths := Paths{Inputs: []string{"blog.org"}, Previous: "prev.yaml", New: "cur.yaml"}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	runs := 0
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = c.Watch(ctx, root, paths, 50*time.Millisecond, func(*Report, error) {
			mu.Lock()
			runs++
			mu.Unlock()
		})
	}()

	time.Sleep(100 * time.Millisecond)
	testutil.WriteFile(t, store, "notes.txt", "unrelated")
	time.Sleep(300 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if runs != 0 {
		t.Errorf("runs = %d, want 0", runs)
	}
	cancel()
	<-done
}
