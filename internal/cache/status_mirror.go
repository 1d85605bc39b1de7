// Package cache mirrors live session counters into Redis so external
// dashboards can poll room status without touching the service. The mirror
// is write-only observability: the session never reads state back from it.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/campus-ops/exam-session-service/internal/session"
)

// statusTTL keeps stale rooms from lingering after the service stops.
const statusTTL = 30 * time.Second

// Status is the JSON document stored per room.
type Status struct {
	CourseNum    string    `json:"course_num"`
	RoomNum      string    `json:"room_num"`
	TotalPresent int       `json:"total_present"`
	OnBreak      int       `json:"on_break"`
	Submitted    int       `json:"submitted"`
	SeatsFree    int       `json:"seats_free"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// StatusMirror publishes session status snapshots under a key prefix. A nil
// Redis client disables the mirror entirely.
type StatusMirror struct {
	client *redis.Client
	prefix string
	logger *slog.Logger
}

func NewStatusMirror(client *redis.Client, prefix string, logger *slog.Logger) *StatusMirror {
	if logger == nil {
		logger = slog.Default()
	}
	if prefix == "" {
		prefix = "exam-session"
	}
	return &StatusMirror{client: client, prefix: prefix, logger: logger}
}

// Enabled reports whether a Redis client is configured.
func (m *StatusMirror) Enabled() bool {
	return m != nil && m.client != nil
}

func (m *StatusMirror) key(room string) string {
	return fmt.Sprintf("%s:status:%s", m.prefix, room)
}

// Publish writes the current counters for the snapshot's room.
func (m *StatusMirror) Publish(ctx context.Context, snap session.Snapshot) error {
	if !m.Enabled() {
		return nil
	}

	status := Status{
		CourseNum:    snap.Meta.CourseNum,
		RoomNum:      snap.Meta.RoomNum,
		TotalPresent: snap.TotalPresent,
		OnBreak:      len(snap.OnBreak),
		UpdatedAt:    time.Now(),
	}
	for _, st := range snap.Students {
		if st.Submitted {
			status.Submitted++
		}
	}
	for _, row := range snap.SeatGrid {
		for _, occupied := range row {
			if !occupied {
				status.SeatsFree++
			}
		}
	}

	payload, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("failed to marshal session status: %w", err)
	}
	if err := m.client.Set(ctx, m.key(snap.Meta.RoomNum), payload, statusTTL).Err(); err != nil {
		return fmt.Errorf("failed to mirror session status: %w", err)
	}
	return nil
}

// Run republishes the status on every tick until ctx is cancelled. snapshot
// is called outside the session lock's critical path on each iteration.
func (m *StatusMirror) Run(ctx context.Context, interval time.Duration, snapshot func() session.Snapshot) {
	if !m.Enabled() {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := m.Publish(ctx, snapshot()); err != nil {
				m.logger.Warn("Status mirror publish failed", "error", err)
			}
		}
	}
}
