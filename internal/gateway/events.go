package gateway

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/flemzord/oddjob/internal/job"
)

const (
	subscriberBuffer = 64
	writeTimeout     = 5 * time.Second
)

// EventMessage is the JSON frame sent to websocket subscribers.
type EventMessage struct {
	Type       string        `json:"type"` // "started" or "finished"
	Job        string        `json:"job"`
	Firing     bool          `json:"firing"`
	Outcome    job.Outcome   `json:"outcome,omitempty"`
	Error      string        `json:"error,omitempty"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at,omitzero"`
	Duration   time.Duration `json:"duration,omitempty"`
}

// Hub is a job.Observer that fans job events out to subscribers. Slow
// subscribers lose events instead of blocking the jobs.
type Hub struct {
	mu      sync.Mutex
	subs    map[chan EventMessage]struct{}
	dropped int64
}

var _ job.Observer = (*Hub)(nil)

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[chan EventMessage]struct{})}
}

// JobStarted implements job.Observer.
func (h *Hub) JobStarted(e job.Event) {
	h.publish(EventMessage{Type: "started", Job: e.Job, Firing: e.Firing, StartedAt: e.StartedAt})
}

// JobFinished implements job.Observer.
func (h *Hub) JobFinished(e job.Event) {
	msg := EventMessage{
		Type:       "finished",
		Job:        e.Job,
		Firing:     e.Firing,
		Outcome:    e.Outcome,
		StartedAt:  e.StartedAt,
		FinishedAt: e.FinishedAt,
		Duration:   e.Duration(),
	}
	if e.Err != nil {
		msg.Error = e.Err.Error()
	}
	h.publish(msg)
}

func (h *Hub) publish(msg EventMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- msg:
		default:
			h.dropped++
		}
	}
}

// Subscribe registers a subscriber. The returned cancel func unregisters it
// and closes the channel.
func (h *Hub) Subscribe() (<-chan EventMessage, func()) {
	ch := make(chan EventMessage, subscriberBuffer)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			h.mu.Unlock()
			close(ch)
		})
	}
}

// Subscribers returns the number of active subscribers.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Dropped returns how many events were not delivered to a full subscriber.
func (h *Hub) Dropped() int64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.dropped
}

// serveEvents upgrades to a websocket and streams events until the client
// goes away or ctx (the gateway's run context) ends.
func serveEvents(ctx context.Context, hub *Hub, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			logger.Warn("gateway: websocket accept failed", "error", err)
			return
		}
		defer func() { _ = conn.Close(websocket.StatusInternalError, "unexpected close") }()

		events, unsubscribe := hub.Subscribe()
		defer unsubscribe()

		// Clients only listen; CloseRead handles control frames and reports
		// disconnection through the returned context.
		connCtx := conn.CloseRead(r.Context())

		for {
			select {
			case <-ctx.Done():
				_ = conn.Close(websocket.StatusGoingAway, "server shutting down")
				return
			case <-connCtx.Done():
				return
			case msg, ok := <-events:
				if !ok {
					return
				}
				data, err := json.Marshal(msg)
				if err != nil {
					continue
				}
				writeCtx, cancel := context.WithTimeout(connCtx, writeTimeout)
				err = conn.Write(writeCtx, websocket.MessageText, data)
				cancel()
				if err != nil {
					logger.Debug("gateway: websocket write failed", "error", err)
					return
				}
			}
		}
	}
}
