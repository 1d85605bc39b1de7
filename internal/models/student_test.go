package models

import (
	"testing"
	"time"
)

func TestStudentSubmitIdempotent(t *testing.T) {
	s := NewStudent(5, "Dana Whitfield", "2003-07-21", "photos/5.png")
	if s.Submitted || !s.SubmittedAt.IsZero() {
		t.Fatal("fresh student must not be submitted")
	}
	if got := s.FormattedSubmissionTime(); got != ExamInProgress {
		t.Errorf("FormattedSubmissionTime before submit = %q, want %q", got, ExamInProgress)
	}

	first := time.Date(2025, 3, 19, 11, 20, 0, 0, time.Local)
	s.Submit(first)
	if !s.Submitted || !s.SubmittedAt.Equal(first) {
		t.Fatalf("submit not recorded: submitted=%v at=%v", s.Submitted, s.SubmittedAt)
	}

	s.Submit(first.Add(10 * time.Minute))
	if !s.SubmittedAt.Equal(first) {
		t.Errorf("resubmission moved timestamp to %v, want %v", s.SubmittedAt, first)
	}
}

func TestStudentBreakSequence(t *testing.T) {
	s := NewStudent(7, "Omar Reyes", "2002-11-02", "photos/7.png")

	// Returning with no recorded breaks is a no-op.
	s.ReturnFromBreak(time.Now())
	if len(s.Breaks) != 0 {
		t.Fatalf("expected no breaks, got %d", len(s.Breaks))
	}

	t0 := time.Date(2025, 3, 19, 9, 40, 0, 0, time.Local)
	s.LeaveForBreak(t0)
	s.ReturnFromBreak(t0.Add(5 * time.Minute))
	s.LeaveForBreak(t0.Add(30 * time.Minute))

	if len(s.Breaks) != 2 {
		t.Fatalf("expected 2 breaks, got %d", len(s.Breaks))
	}
	if !s.Breaks[0].Ended {
		t.Error("first break should be closed")
	}
	if s.Breaks[1].Ended {
		t.Error("second break should still be open")
	}
	if last := s.LastBreak(); last == nil || !last.StartedAt.Equal(t0.Add(30*time.Minute)) {
		t.Errorf("LastBreak = %+v, want open break started at %v", last, t0.Add(30*time.Minute))
	}
}

func TestSeatAssignmentLabels(t *testing.T) {
	seat := SeatAssignment{Row: 3, Col: 12}
	if got := seat.String(); got != "Row: 3, Column: 12" {
		t.Errorf("String() = %q", got)
	}
	if got := seat.Abbrev(); got != "R3 C12" {
		t.Errorf("Abbrev() = %q", got)
	}
}

func TestProctorRoleValid(t *testing.T) {
	tests := []struct {
		role ProctorRole
		want bool
	}{
		{RoleTA, true},
		{RoleCourseInstructor, true},
		{ProctorRole("Janitor"), false},
		{ProctorRole(""), false},
	}
	for _, tt := range tests {
		if got := tt.role.Valid(); got != tt.want {
			t.Errorf("Valid(%q) = %v, want %v", tt.role, got, tt.want)
		}
	}
}
