// Copyright 2026 The taskhub Authors
// SPDX-License-Identifier: Apache-2.0

// Package hub implements the in-process notification hub: an identity-scoped
// publish/subscribe registry that fans events out to every live connection of
// one identity. Delivery is best-effort; the hub is a fan-out mechanism, not
// a durable queue. Events published to an identity with no live connection
// are dropped silently, as are events a slow connection cannot buffer.
package hub

import (
	"sync"

	"go.uber.org/zap"

	"github.com/multitechword/taskhub"
)

// DefaultBufferSize is the default per-connection event buffer.
const DefaultBufferSize = 64

// Event is one notification delivered to a connection.
type Event struct {
	Kind    taskhub.EventKind `json:"event"`
	Payload any               `json:"payload"`
}

// Conn is a live connection handle registered under one identity. Events are
// consumed from the Events channel; the channel is closed when the connection
// is unsubscribed.
type Conn struct {
	identityID string
	events     chan Event
	closeOnce  sync.Once
}

// IdentityID returns the identity the connection is registered under.
func (c *Conn) IdentityID() string {
	return c.identityID
}

// Events returns the channel delivering events to this connection.
func (c *Conn) Events() <-chan Event {
	return c.events
}

func (c *Conn) close() {
	c.closeOnce.Do(func() {
		close(c.events)
	})
}

// Hub is the subscriber registry. The channel identity equals the recipient
// identity's ID; there is no topic hierarchy. A single identity may hold any
// number of simultaneous connections, and all of them receive each event.
type Hub struct {
	mu      sync.RWMutex
	conns   map[string]map[*Conn]struct{}
	bufSize int
	logger  *zap.Logger
}

// Option configures a Hub.
type Option func(*Hub)

// WithBufferSize overrides the per-connection event buffer size.
func WithBufferSize(n int) Option {
	return func(h *Hub) {
		if n > 0 {
			h.bufSize = n
		}
	}
}

// WithLogger attaches a logger for dropped-event diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(h *Hub) {
		h.logger = logger
	}
}

// New creates an empty hub.
func New(opts ...Option) *Hub {
	h := &Hub{
		conns:   make(map[string]map[*Conn]struct{}),
		bufSize: DefaultBufferSize,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Subscribe registers a new connection under the given identity and returns
// its handle.
func (h *Hub) Subscribe(identityID string) *Conn {
	conn := &Conn{
		identityID: identityID,
		events:     make(chan Event, h.bufSize),
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.conns[identityID]
	if !ok {
		set = make(map[*Conn]struct{})
		h.conns[identityID] = set
	}
	set[conn] = struct{}{}

	return conn
}

// Unsubscribe removes a connection from whatever channel it was registered
// under and closes its event channel. Safe to call more than once.
func (h *Hub) Unsubscribe(conn *Conn) {
	if conn == nil {
		return
	}

	h.mu.Lock()
	if set, ok := h.conns[conn.identityID]; ok {
		delete(set, conn)
		if len(set) == 0 {
			delete(h.conns, conn.identityID)
		}
	}
	h.mu.Unlock()

	conn.close()
}

// Publish delivers an event to every live connection of the given identity.
// It never blocks: a connection whose buffer is full misses the event.
func (h *Hub) Publish(identityID string, kind taskhub.EventKind, payload any) {
	event := Event{Kind: kind, Payload: payload}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for conn := range h.conns[identityID] {
		select {
		case conn.events <- event:
		default:
			h.logger.Debug("dropping event for slow connection",
				zap.String("identity", identityID),
				zap.String("event", string(kind)),
			)
		}
	}
}

// Connections returns the number of live connections for an identity.
func (h *Hub) Connections(identityID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns[identityID])
}

// Size returns the number of identities with at least one live connection.
func (h *Hub) Size() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}
