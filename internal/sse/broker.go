// Package sse implements a Server-Sent Events broker that announces finished
// builds to connected clients.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"
)

// Event represents an SSE event to broadcast.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// BuildSummary is the client-facing outcome of one rebuild.
type BuildSummary struct {
	Generated []string `json:"generated"`
	Feed      []string `json:"feed"`
	Bumped    []string `json:"bumped"`
	Removed   []string `json:"removed"`
	Anomalies int      `json:"anomalies"`
	// Error is set when the rebuild failed; the other fields are then empty.
	Error string `json:"error,omitempty"`
}

// Broker manages SSE client connections and broadcasts events.
//
// Concurrency model: a single internal event loop (goroutine) owns mutable state
// (clients + timeline throttle timestamp). Public methods communicate with this
// loop through channels, so no mutexes are required.
type Broker struct {
	timelineMin time.Duration
	keepAlive   time.Duration

	subscribeCh   chan subscription
	unsubscribeCh chan chan []byte
	publishCh     chan Event
	buildCh       chan BuildSummary
	countReqCh    chan chan int

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewBroker creates a new SSE broker with the given timeline throttle interval.
func NewBroker(timelineThrottle time.Duration) *Broker {
	if timelineThrottle <= 0 {
		timelineThrottle = 2 * time.Second
	}

	b := &Broker{
		timelineMin:   timelineThrottle,
		keepAlive:     15 * time.Second,
		subscribeCh:   make(chan subscription),
		unsubscribeCh: make(chan chan []byte),
		publishCh:     make(chan Event, 256),
		buildCh:       make(chan BuildSummary, 16),
		countReqCh:    make(chan chan int),
		stopCh:        make(chan struct{}),
		stopped:       make(chan struct{}),
	}

	go b.run()
	return b
}

// historySize is the number of past messages kept for reconnecting clients.
const historySize = 64

type subscription struct {
	ch    chan []byte
	after uint64
}

type message struct {
	id  uint64
	raw []byte
}

func (b *Broker) run() {
	defer close(b.stopped)

	clients := make(map[chan []byte]struct{})
	var (
		lastTimeline time.Time
		lastID       uint64
		history      []message
	)

	broadcast := func(event Event) {
		payload, err := json.Marshal(event.Data)
		if err != nil {
			return
		}
		lastID++
		raw := []byte(fmt.Sprintf("id: %d\nevent: %s\ndata: %s\n\n", lastID, event.Type, payload))
		history = append(history, message{id: lastID, raw: raw})
		if len(history) > historySize {
			history = history[len(history)-historySize:]
		}

		for ch := range clients {
			select {
			case ch <- raw:
			default:
				// Client buffer full; skip to avoid blocking broker loop.
			}
		}
	}

	for {
		select {
		case <-b.stopCh:
			for ch := range clients {
				close(ch)
			}
			return

		case sub := <-b.subscribeCh:
			clients[sub.ch] = struct{}{}
			if sub.after == 0 {
				continue
			}
			for _, m := range history {
				if m.id <= sub.after {
					continue
				}
				select {
				case sub.ch <- m.raw:
				default:
				}
			}

		case ch := <-b.unsubscribeCh:
			if _, ok := clients[ch]; ok {
				delete(clients, ch)
				close(ch)
			}

		case event := <-b.publishCh:
			broadcast(event)

		case sum := <-b.buildCh:
			if sum.Error != "" {
				broadcast(Event{Type: "build.failed", Data: map[string]string{"error": sum.Error}})
				continue
			}
			for _, id := range sum.Generated {
				broadcast(Event{Type: "entry.generated", Data: map[string]string{"id": id}})
			}
			for _, id := range sum.Removed {
				broadcast(Event{Type: "entry.removed", Data: map[string]string{"id": id}})
			}
			broadcast(Event{Type: "build.completed", Data: sum})

			if len(sum.Feed) == 0 && len(sum.Removed) == 0 {
				continue
			}
			now := time.Now()
			if now.Sub(lastTimeline) >= b.timelineMin {
				lastTimeline = now
				broadcast(Event{Type: "timeline.updated", Data: map[string]string{}})
			}

		case resp := <-b.countReqCh:
			resp <- len(clients)
		}
	}
}

// Close gracefully stops broker loop and closes all client channels.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Subscribe adds a new client and returns its channel.
func (b *Broker) Subscribe() chan []byte {
	return b.SubscribeAfter(0)
}

// SubscribeAfter adds a client that first receives the retained messages
// with an id above lastID. Zero replays nothing.
func (b *Broker) SubscribeAfter(lastID uint64) chan []byte {
	ch := make(chan []byte, historySize)
	if b.closed.Load() {
		close(ch)
		return ch
	}

	select {
	case b.subscribeCh <- subscription{ch: ch, after: lastID}:
	case <-b.stopped:
		close(ch)
	}

	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	if b.closed.Load() {
		return
	}
	select {
	case b.unsubscribeCh <- ch:
	case <-b.stopped:
	}
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	if b.closed.Load() {
		return 0
	}

	resp := make(chan int, 1)
	select {
	case b.countReqCh <- resp:
	case <-b.stopped:
		return 0
	}

	select {
	case n := <-resp:
		return n
	case <-b.stopped:
		return 0
	}
}

// Publish sends an event to all connected clients.
func (b *Broker) Publish(event Event) {
	if b.closed.Load() {
		return
	}
	select {
	case b.publishCh <- event:
	case <-b.stopped:
	}
}

// PublishBuild announces a finished rebuild: one event per generated and
// removed entry, a build.completed (or build.failed) summary and a throttled
// timeline.updated when the feed changed.
func (b *Broker) PublishBuild(sum BuildSummary) {
	if b.closed.Load() {
		return
	}
	select {
	case b.buildCh <- sum:
	case <-b.stopped:
	}
}

// ServeHTTP is the SSE endpoint handler (GET /api/events). A client sending
// Last-Event-ID gets the events it missed while reconnecting. Idle
// connections get a comment line every keep-alive interval so proxies do not
// close them between rebuilds.
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	lastID, _ := strconv.ParseUint(r.Header.Get("Last-Event-ID"), 10, 64)
	ch := b.SubscribeAfter(lastID)
	defer b.Unsubscribe(ch)

	ping := time.NewTicker(b.keepAlive)
	defer ping.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ping.C:
			_, _ = w.Write([]byte(": ping\n\n"))
			flusher.Flush()
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}
