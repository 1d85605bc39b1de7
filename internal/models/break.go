package models

import (
	"fmt"
	"time"
)

// BreakInProgress is the sentinel rendered for any time or duration query
// against a break that has not been closed yet.
const BreakInProgress = "Break in progress"

// Break records one contiguous absence interval for a student. StartedAt is
// fixed at creation; EndedAt is captured once, by the first Close call.
type Break struct {
	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at"`
	Ended     bool      `json:"ended"`
}

// NewBreak opens a break starting at the given wall-clock time.
func NewBreak(start time.Time) Break {
	return Break{StartedAt: start}
}

// Close ends the break at the given time. Only the first call takes effect;
// closing an already closed break leaves the recorded end time unchanged.
func (b *Break) Close(end time.Time) {
	if b.Ended {
		return
	}
	b.EndedAt = end
	b.Ended = true
}

// FormattedStart renders the break start as HH:MM:SS local time.
func (b Break) FormattedStart() string {
	return b.StartedAt.Format("15:04:05")
}

// FormattedEnd renders the break end as HH:MM:SS local time, or the
// in-progress sentinel while the break is still open.
func (b Break) FormattedEnd() string {
	if !b.Ended {
		return BreakInProgress
	}
	return b.EndedAt.Format("15:04:05")
}

// Duration renders the closed break's length as zero-padded HH:MM:SS with
// whole-second granularity. Open breaks yield the in-progress sentinel.
func (b Break) Duration() string {
	if !b.Ended {
		return BreakInProgress
	}
	secs := int(b.EndedAt.Sub(b.StartedAt).Seconds())
	return FormatClockDuration(secs)
}

// FormatClockDuration renders a second count as zero-padded HH:MM:SS.
func FormatClockDuration(secs int) string {
	return fmt.Sprintf("%02d:%02d:%02d", secs/3600, (secs%3600)/60, secs%60)
}
