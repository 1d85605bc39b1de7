package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

// Topic carries every session event; consumers filter on Event.Type.
const Topic = "exam.session.events"

// Event types emitted by the session core.
const (
	TypeCheckedIn      = "exam.checked_in"
	TypeBreakStarted   = "exam.break_started"
	TypeBreakEnded     = "exam.break_ended"
	TypeSubmitted      = "exam.submitted"
	TypeIncidentLogged = "exam.incident_logged"
)

// Submission reasons carried on TypeSubmitted events.
const (
	ReasonEarly     = "early"
	ReasonEndOfTime = "end_of_time"
)

// Event is the envelope published for every observable session transition.
type Event struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Source    string         `json:"source"`
	Version   string         `json:"version"`
	Timestamp time.Time      `json:"timestamp"`
	Data      map[string]any `json:"data,omitempty"`
}

// Publisher publishes session events. Implementations must be safe for
// concurrent use.
type Publisher interface {
	Publish(ctx context.Context, eventType string, data map[string]any) error
	Close() error
}

// NewEvent fills the envelope for a session event.
func NewEvent(eventType string, data map[string]any) Event {
	return Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Source:    "exam-session-service",
		Version:   "1.0",
		Timestamp: time.Now(),
		Data:      data,
	}
}

// Bus is an in-process publisher/subscriber over watermill's GoChannel.
// Transport stays inside the process: cross-machine brokers are out of scope
// for a single-room session.
type Bus struct {
	pubsub *gochannel.GoChannel
	logger *slog.Logger
}

func NewBus(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{
		pubsub: gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, watermill.NopLogger{}),
		logger: logger,
	}
}

func (b *Bus) Publish(ctx context.Context, eventType string, data map[string]any) error {
	evt := NewEvent(eventType, data)
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to marshal event %s: %w", eventType, err)
	}
	msg := message.NewMessage(evt.ID, payload)
	msg.SetContext(ctx)
	if err := b.pubsub.Publish(Topic, msg); err != nil {
		return fmt.Errorf("failed to publish event %s: %w", eventType, err)
	}
	return nil
}

// Subscribe returns the raw event stream for the session topic.
func (b *Bus) Subscribe(ctx context.Context) (<-chan *message.Message, error) {
	return b.pubsub.Subscribe(ctx, Topic)
}

// RunAuditLogger consumes the event stream and mirrors every event to the
// structured log until ctx is cancelled.
func (b *Bus) RunAuditLogger(ctx context.Context) error {
	messages, err := b.Subscribe(ctx)
	if err != nil {
		return fmt.Errorf("failed to subscribe audit logger: %w", err)
	}
	go func() {
		for msg := range messages {
			var evt Event
			if err := json.Unmarshal(msg.Payload, &evt); err != nil {
				b.logger.Error("Dropping malformed session event", "message_id", msg.UUID, "error", err)
				msg.Ack()
				continue
			}
			b.logger.Info("Session event", "event_id", evt.ID, "type", evt.Type, "data", evt.Data)
			msg.Ack()
		}
	}()
	return nil
}

func (b *Bus) Close() error {
	return b.pubsub.Close()
}

// MemoryPublisher records events for tests.
type MemoryPublisher struct {
	mu     sync.Mutex
	events []Event
}

func NewMemoryPublisher() *MemoryPublisher {
	return &MemoryPublisher{}
}

func (m *MemoryPublisher) Publish(_ context.Context, eventType string, data map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, NewEvent(eventType, data))
	return nil
}

func (m *MemoryPublisher) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Event, len(m.events))
	copy(out, m.events)
	return out
}

func (m *MemoryPublisher) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = nil
}

func (m *MemoryPublisher) Close() error { return nil }

// NopPublisher discards all events.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, map[string]any) error { return nil }
func (NopPublisher) Close() error                                          { return nil }
