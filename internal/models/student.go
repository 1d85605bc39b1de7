package models

import (
	"fmt"
	"time"
)

// ExamInProgress is the sentinel rendered when the submission time of a
// not-yet-submitted student is queried.
const ExamInProgress = "Exam in progress"

// SeatAssignment identifies an occupied cell of the room's seat grid.
// Row and Col are 1-based for display.
type SeatAssignment struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (s SeatAssignment) String() string {
	return fmt.Sprintf("Row: %d, Column: %d", s.Row, s.Col)
}

// Abbrev renders the compact form used in report tables.
func (s SeatAssignment) Abbrev() string {
	return fmt.Sprintf("R%d C%d", s.Row, s.Col)
}

// Student is a roster entry with live attendance, seating, submission and
// break state. Seat is set iff Attended is true; SubmittedAt is set iff
// Submitted is true. Eligibility rules (e.g. no break after submission) are
// enforced by the session layer, not here.
type Student struct {
	Identity
	Seat        *SeatAssignment `json:"seat,omitempty"`
	ExamVersion int             `json:"exam_version"` // 0 = unassigned
	Attended    bool            `json:"attended"`
	Submitted   bool            `json:"submitted"`
	SubmittedAt time.Time       `json:"submitted_at,omitzero"`
	Breaks      []Break         `json:"breaks"`
}

// NewStudent builds an absent, unsubmitted roster entry.
func NewStudent(id int, name, dob, photoRef string) Student {
	return Student{Identity: Identity{ID: id, Name: name, DateOfBirth: dob, PhotoRef: photoRef}}
}

// Submit marks the exam submitted and captures the submission time. Only the
// first call takes effect; resubmission is a no-op.
func (s *Student) Submit(at time.Time) {
	if s.Submitted {
		return
	}
	s.Submitted = true
	s.SubmittedAt = at
}

// FormattedSubmissionTime renders the submission time as HH:MM:SS local
// time, or a sentinel while the exam is still in progress.
func (s *Student) FormattedSubmissionTime() string {
	if !s.Submitted {
		return ExamInProgress
	}
	return s.SubmittedAt.Format("15:04:05")
}

// LeaveForBreak appends a new open break starting at the given time.
func (s *Student) LeaveForBreak(at time.Time) {
	s.Breaks = append(s.Breaks, NewBreak(at))
}

// ReturnFromBreak closes the most recently appended break. No-op when the
// student has no recorded breaks.
func (s *Student) ReturnFromBreak(at time.Time) {
	if len(s.Breaks) == 0 {
		return
	}
	s.Breaks[len(s.Breaks)-1].Close(at)
}

// LastBreak returns the most recently appended break, or nil.
func (s *Student) LastBreak() *Break {
	if len(s.Breaks) == 0 {
		return nil
	}
	return &s.Breaks[len(s.Breaks)-1]
}
