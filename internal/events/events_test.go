package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

func TestBusPublishSubscribe(t *testing.T) {
	bus := NewBus(nil)
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	messages, err := bus.Subscribe(ctx)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	if err := bus.Publish(ctx, TypeCheckedIn, map[string]any{"student_id": 5}); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	select {
	case msg := <-messages:
		var evt Event
		if err := json.Unmarshal(msg.Payload, &evt); err != nil {
			t.Fatalf("unmarshal payload: %v", err)
		}
		msg.Ack()
		if evt.Type != TypeCheckedIn {
			t.Errorf("type = %q, want %q", evt.Type, TypeCheckedIn)
		}
		if evt.Source != "exam-session-service" || evt.ID == "" {
			t.Errorf("envelope = %+v", evt)
		}
		if got, ok := evt.Data["student_id"].(float64); !ok || int(got) != 5 {
			t.Errorf("data = %v", evt.Data)
		}
	case <-time.After(time.Second):
		t.Fatal("no event delivered within 1s")
	}
}

func TestMemoryPublisherRecords(t *testing.T) {
	pub := NewMemoryPublisher()

	_ = pub.Publish(context.Background(), TypeBreakStarted, map[string]any{"student_id": 1})
	_ = pub.Publish(context.Background(), TypeBreakEnded, map[string]any{"student_id": 1})

	evts := pub.Events()
	if len(evts) != 2 {
		t.Fatalf("recorded %d events, want 2", len(evts))
	}
	if evts[0].Type != TypeBreakStarted || evts[1].Type != TypeBreakEnded {
		t.Errorf("event order = %q, %q", evts[0].Type, evts[1].Type)
	}

	pub.Clear()
	if len(pub.Events()) != 0 {
		t.Error("Clear did not empty the recorder")
	}
}
