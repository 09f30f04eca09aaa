// Package live pushes settled progress summaries to websocket observers.
package live

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/Atul17-std/pokemon-tracker/internal/tracker"
)

const (
	writeTimeout = 5 * time.Second
	sendBuffer   = 8
)

// Message is the frame sent to observers.
type Message struct {
	Type    string          `json:"type"`
	Summary tracker.Summary `json:"summary"`
}

type peer struct {
	send chan tracker.Summary
}

// Hub fans out summaries to connected websocket clients. It implements
// tracker.Observer and http.Handler.
type Hub struct {
	mu      sync.Mutex
	peers   map[*peer]struct{}
	current func() tracker.Summary
	onCount func(int)
	origins []string
}

// Option configures a Hub.
type Option func(*Hub)

// WithClientCounter is called with the number of connected clients whenever
// it changes.
func WithClientCounter(fn func(int)) Option {
	return func(h *Hub) {
		h.onCount = fn
	}
}

// WithOriginPatterns allows cross-origin connections from the given hosts.
func WithOriginPatterns(patterns ...string) Option {
	return func(h *Hub) {
		h.origins = patterns
	}
}

// NewHub creates a hub. current supplies the summary sent on connect.
func NewHub(current func() tracker.Summary, opts ...Option) *Hub {
	h := &Hub{
		peers:   make(map[*peer]struct{}),
		current: current,
		onCount: func(int) {},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Notify queues s for every client without blocking. A client that has
// fallen behind loses its oldest queued summary.
func (h *Hub) Notify(s tracker.Summary) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for p := range h.peers {
		select {
		case p.send <- s:
			continue
		default:
		}
		select {
		case <-p.send:
		default:
		}
		select {
		case p.send <- s:
		default:
		}
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.peers)
}

// ServeHTTP upgrades the request and streams summaries until the client
// disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: h.origins})
	if err != nil {
		slog.Warn("websocket accept failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	defer conn.CloseNow()

	// Clients only listen; CloseRead handles control frames and cancels ctx
	// when the connection goes away.
	ctx := conn.CloseRead(r.Context())

	p := &peer{send: make(chan tracker.Summary, sendBuffer)}
	h.add(p)
	defer h.remove(p)

	if err := write(ctx, conn, h.current()); err != nil {
		slog.Debug("websocket initial write failed", "error", err)
		return
	}

	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "")
			return
		case s := <-p.send:
			if err := write(ctx, conn, s); err != nil {
				slog.Debug("websocket write failed", "error", err)
				return
			}
		}
	}
}

func write(ctx context.Context, conn *websocket.Conn, s tracker.Summary) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return wsjson.Write(ctx, conn, Message{Type: "summary", Summary: s})
}

func (h *Hub) add(p *peer) {
	h.mu.Lock()
	h.peers[p] = struct{}{}
	n := len(h.peers)
	h.mu.Unlock()
	h.onCount(n)
}

func (h *Hub) remove(p *peer) {
	h.mu.Lock()
	delete(h.peers, p)
	n := len(h.peers)
	h.mu.Unlock()
	h.onCount(n)
}
