// Package events publishes domain events after tracker mutations commit.
// When no NATS URL is configured the NoopPublisher is used and events are
// dropped, keeping the service self-contained.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
)

// Event types published by the tracker.
const (
	StreakStarted   = "streak.started"
	StreakCompleted = "streak.completed"
	StreakSkipped   = "streak.skipped"
	StreakEnded     = "streak.ended"
	GoalCreated     = "goal.created"
	GoalsRecomputed = "goals.recomputed"
	ClockAdvanced   = "clock.advanced"
	ClockReset      = "clock.reset"
	StateReset      = "state.reset"
)

// Event is a committed state change.
type Event struct {
	Type     string    `json:"type"`
	Day      int       `json:"day"`
	StreakID string    `json:"streak_id,omitempty"`
	GoalID   string    `json:"goal_id,omitempty"`
	At       time.Time `json:"at"`
	Data     any       `json:"data,omitempty"`
}

// Publisher delivers events to interested parties.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}

// NoopPublisher discards every event.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Event) error { return nil }
func (NoopPublisher) Close() error                         { return nil }

// natsConn is the subset of *nats.Conn used by NATSPublisher.
type natsConn interface {
	Publish(subject string, data []byte) error
	Drain() error
}

// NATSPublisher publishes JSON events on "<prefix>.<type>" subjects.
type NATSPublisher struct {
	conn   natsConn
	prefix string

	mu     sync.Mutex
	closed bool
}

// NewNATSPublisher connects to url and publishes under prefix.
func NewNATSPublisher(url, prefix string) (*NATSPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("finquest"),
		nats.MaxReconnects(5),
		nats.ReconnectWait(time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	return newNATSPublisher(nc, prefix), nil
}

func newNATSPublisher(conn natsConn, prefix string) *NATSPublisher {
	return &NATSPublisher{conn: conn, prefix: prefix}
}

// Subject returns the subject an event type is published on.
func (p *NATSPublisher) Subject(eventType string) string {
	if p.prefix == "" {
		return eventType
	}
	return p.prefix + "." + eventType
}

// Publish encodes ev as JSON and publishes it.
// NATS publish does not take a context, so cancellation is checked first.
func (p *NATSPublisher) Publish(ctx context.Context, ev Event) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled before publish: %w", err)
	}

	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return nats.ErrConnectionClosed
	}

	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return p.conn.Publish(p.Subject(ev.Type), data)
}

// Close drains pending messages and closes the connection.
func (p *NATSPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true
	return p.conn.Drain()
}
