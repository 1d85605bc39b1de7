package validator

import (
	"errors"
	"testing"
	"time"

	"github.com/campus-ops/exam-session-service/internal/session"
)

func validMeta() session.Meta {
	start := time.Date(2025, 3, 24, 9, 0, 0, 0, time.Local)
	return session.Meta{
		TermNum:      2,
		TermName:     "Winter",
		CourseNum:    "3307",
		RoomNum:      "NS-145",
		Capacity:     20,
		MaxRow:       4,
		MaxCol:       5,
		NumVersions:  3,
		VersionCodes: []int{101, 102, 103},
		StartTime:    start,
		EndTime:      start.Add(3 * time.Hour),
	}
}

func TestValidateExamMeta(t *testing.T) {
	v := New()

	if errs := v.ValidateExamMeta(validMeta()); len(errs) != 0 {
		t.Fatalf("valid meta rejected: %v", errs)
	}

	tests := []struct {
		name   string
		mutate func(*session.Meta)
		field  string
	}{
		{"zero capacity", func(m *session.Meta) { m.Capacity = 0 }, "capacity"},
		{"zero rows", func(m *session.Meta) { m.MaxRow = 0 }, "seat_grid"},
		{"zero versions", func(m *session.Meta) { m.NumVersions = 0 }, "num_versions"},
		{"too few codes", func(m *session.Meta) { m.VersionCodes = []int{101} }, "version_codes"},
		{"end before start", func(m *session.Meta) { m.EndTime = m.StartTime.Add(-time.Hour) }, "end_time"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta := validMeta()
			tt.mutate(&meta)
			errs := v.ValidateExamMeta(meta)
			if len(errs) == 0 {
				t.Fatal("expected a validation error")
			}
			found := false
			for _, e := range errs {
				if e.Field == tt.field {
					found = true
				}
			}
			if !found {
				t.Errorf("no error for field %q: %v", tt.field, errs)
			}
		})
	}
}

func TestValidateStruct(t *testing.T) {
	v := New()

	type payload struct {
		StudentID int    `validate:"required,gt=0"`
		Role      string `validate:"required,proctor_role"`
	}

	if err := v.Validate(payload{StudentID: 1, Role: "TA"}); err != nil {
		t.Fatalf("valid payload rejected: %v", err)
	}

	err := v.Validate(payload{Role: "Janitor"})
	if err == nil {
		t.Fatal("expected validation failure")
	}
	var verrs ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("error type = %T", err)
	}
	if len(verrs) != 2 {
		t.Errorf("got %d field errors, want 2: %v", len(verrs), verrs)
	}
}
