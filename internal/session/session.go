package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/campus-ops/exam-session-service/internal/events"
	"github.com/campus-ops/exam-session-service/internal/models"
)

// Break requests are only honored inside the window
// [start+earliestBreakOffset, end-latestBreakMargin].
const (
	earliestBreakOffset = 30 * time.Minute
	latestBreakMargin   = 15 * time.Minute
)

// Meta is the immutable exam configuration read by the loader.
type Meta struct {
	SourcePath   string    `json:"source_path"`
	TermNum      int       `json:"term_num"`
	TermName     string    `json:"term_name"`
	CourseNum    string    `json:"course_num"`
	RoomNum      string    `json:"room_num"`
	Capacity     int       `json:"capacity"`
	MaxRow       int       `json:"max_row"`
	MaxCol       int       `json:"max_col"`
	NumVersions  int       `json:"num_versions"`
	VersionCodes []int     `json:"version_codes"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
}

// Session owns the room layout, the roster and the live exam state for one
// proctored exam. All operations are serialized behind a single coarse lock:
// nearly every one of them reads and writes shared roster and seat state, so
// the whole session is the natural mutual-exclusion boundary.
type Session struct {
	mu   sync.Mutex
	meta Meta

	seatGrid [][]bool
	students map[int]*models.Student
	proctors map[int]*models.Proctor
	// roster holds student ids in load order; reports and listings follow it.
	roster       []int
	proctorOrder []int

	incidents []string
	onBreak   map[int]struct{}
	// totalPresent counts successful check-ins. It is monotonic and is never
	// reconciled against the live attended count; an undo-check-in feature
	// would make the two drift. See DESIGN.md.
	totalPresent int

	now       func() time.Time
	logger    *slog.Logger
	publisher events.Publisher
}

// New builds an empty session for the given exam configuration.
func New(meta Meta, logger *slog.Logger, publisher events.Publisher) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	grid := make([][]bool, meta.MaxRow)
	for i := range grid {
		grid[i] = make([]bool, meta.MaxCol)
	}
	return &Session{
		meta:      meta,
		seatGrid:  grid,
		students:  make(map[int]*models.Student),
		proctors:  make(map[int]*models.Proctor),
		onBreak:   make(map[int]struct{}),
		now:       time.Now,
		logger:    logger,
		publisher: publisher,
	}
}

// Meta returns the exam configuration.
func (s *Session) Meta() Meta {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.meta
	m.VersionCodes = append([]int(nil), s.meta.VersionCodes...)
	return m
}

// AddStudent appends a roster entry. Entries with a negative id or an id
// already on the roster are skipped; ids must stay >= 0 so the version
// assignment in CheckIn can index by id mod numVersions.
func (s *Session) AddStudent(st models.Student) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st.ID < 0 {
		return
	}
	if _, ok := s.students[st.ID]; ok {
		return
	}
	s.students[st.ID] = &st
	s.roster = append(s.roster, st.ID)
}

// AddProctor registers a proctor, skipping negative and duplicate ids.
func (s *Session) AddProctor(p models.Proctor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID < 0 {
		return
	}
	if _, ok := s.proctors[p.ID]; ok {
		return
	}
	s.proctors[p.ID] = &p
	s.proctorOrder = append(s.proctorOrder, p.ID)
}

// ===== CHECK-IN =====

// CheckIn marks a student present: the first unoccupied seat in row-major
// order is assigned, the exam version is derived from the student id, and
// the monotonic present counter is bumped. Nothing is mutated on failure.
func (s *Session) CheckIn(ctx context.Context, studentID int) (models.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.students[studentID]
	if !ok {
		return models.Student{}, fmt.Errorf("%w: %d", ErrStudentNotFound, studentID)
	}
	if st.Attended {
		return models.Student{}, ErrAlreadyCheckedIn
	}

	seat, ok := s.firstFreeSeat()
	if !ok {
		return models.Student{}, ErrNoSeatAvailable
	}
	s.seatGrid[seat.Row-1][seat.Col-1] = true
	st.Seat = &seat
	st.ExamVersion = s.meta.VersionCodes[studentID%s.meta.NumVersions]
	st.Attended = true
	s.totalPresent++

	s.logger.Info("Student checked in",
		"student_id", studentID,
		"seat", seat.Abbrev(),
		"exam_version", st.ExamVersion,
		"total_present", s.totalPresent)
	s.publish(ctx, events.TypeCheckedIn, map[string]any{
		"student_id": studentID,
		"seat":       seat.Abbrev(),
		"version":    st.ExamVersion,
	})
	return cloneStudent(st), nil
}

func (s *Session) firstFreeSeat() (models.SeatAssignment, bool) {
	for row := 0; row < s.meta.MaxRow; row++ {
		for col := 0; col < s.meta.MaxCol; col++ {
			if !s.seatGrid[row][col] {
				return models.SeatAssignment{Row: row + 1, Col: col + 1}, true
			}
		}
	}
	return models.SeatAssignment{}, false
}

// ===== WASHROOM BREAK =====

// BreakResult describes the outcome of a successful break toggle.
type BreakResult struct {
	Returning bool         `json:"returning"`
	Message   string       `json:"message"`
	Break     models.Break `json:"break"`
}

// RequestBreak toggles a student's washroom-break state. The request is
// gated by the session-relative window [start+30m, end-15m]; inside it, a
// student currently on break is returned and anyone else leaves.
func (s *Session) RequestBreak(ctx context.Context, studentID int) (BreakResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	earliest := s.meta.StartTime.Add(earliestBreakOffset)
	latest := s.meta.EndTime.Add(-latestBreakMargin)

	if now.Before(earliest) {
		return BreakResult{}, tooEarlyError(int(earliest.Sub(now).Seconds()))
	}
	if now.After(latest) {
		return BreakResult{}, ErrBreakTooLate
	}

	st, ok := s.students[studentID]
	if !ok || !st.Attended || st.Submitted {
		return BreakResult{}, ErrBreakIneligible
	}

	if _, on := s.onBreak[studentID]; on {
		st.ReturnFromBreak(now)
		delete(s.onBreak, studentID)
		br := st.LastBreak()
		res := BreakResult{
			Returning: true,
			Break:     *br,
			Message: fmt.Sprintf("Student: %s (%d) Returned from break.\n\nYou left at %s\nYou returned at %s\nTotal time of %s",
				st.Name, studentID, br.FormattedStart(), br.FormattedEnd(), br.Duration()),
		}
		s.logger.Info("Student returned from break", "student_id", studentID, "duration", br.Duration())
		s.publish(ctx, events.TypeBreakEnded, map[string]any{
			"student_id": studentID,
			"duration":   br.Duration(),
		})
		return res, nil
	}

	st.LeaveForBreak(now)
	s.onBreak[studentID] = struct{}{}
	br := st.LastBreak()
	res := BreakResult{
		Break: *br,
		Message: fmt.Sprintf("Student: %s (%d) Leaving for break.\n\nYou leave at %s",
			st.Name, studentID, br.FormattedStart()),
	}
	s.logger.Info("Student left for break", "student_id", studentID, "start", br.FormattedStart())
	s.publish(ctx, events.TypeBreakStarted, map[string]any{"student_id": studentID})
	return res, nil
}

// ===== SUBMISSION =====

// EarlySubmission submits the exam for one student. It reports false, with
// no mutation, unless the student exists, is attended and has not submitted.
func (s *Session) EarlySubmission(ctx context.Context, studentID int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.students[studentID]
	if !ok || !st.Attended || st.Submitted {
		return false
	}
	st.Submit(s.now())
	s.logger.Info("Early submission recorded", "student_id", studentID, "submitted_at", st.FormattedSubmissionTime())
	s.publish(ctx, events.TypeSubmitted, map[string]any{
		"student_id": studentID,
		"reason":     events.ReasonEarly,
	})
	return true
}

// EndOfTimeSubmission submits every attended student who has not yet
// submitted. Called once when the exam clock expires; reports how many
// submissions it recorded.
func (s *Session) EndOfTimeSubmission(ctx context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	submitted := 0
	for _, id := range s.roster {
		st := s.students[id]
		if !st.Attended || st.Submitted {
			continue
		}
		st.Submit(now)
		submitted++
		s.publish(ctx, events.TypeSubmitted, map[string]any{
			"student_id": id,
			"reason":     events.ReasonEndOfTime,
		})
	}
	s.logger.Info("End-of-time submission completed", "submitted", submitted)
	return submitted
}

// ===== INCIDENTS =====

// WriteIncident appends a formatted incident record. Existence of the
// student and proctor is the caller's responsibility, checked before
// invocation.
func (s *Session) WriteIncident(ctx context.Context, studentID, proctorID int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record := fmt.Sprintf("Student: %d; Proctor: %d; Message: %s", studentID, proctorID, message)
	s.incidents = append(s.incidents, record)
	s.logger.Info("Incident logged", "student_id", studentID, "proctor_id", proctorID)
	s.publish(ctx, events.TypeIncidentLogged, map[string]any{
		"student_id": studentID,
		"proctor_id": proctorID,
	})
}

// ===== LOOKUPS =====

// Student returns a copy of the roster entry with the given id.
func (s *Session) Student(id int) (models.Student, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.students[id]
	if !ok {
		return models.Student{}, false
	}
	return cloneStudent(st), true
}

func (s *Session) HasStudent(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.students[id]
	return ok
}

func (s *Session) HasProctor(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.proctors[id]
	return ok
}

func (s *Session) IsOnBreak(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, on := s.onBreak[id]
	return on
}

func (s *Session) TotalPresent() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalPresent
}

// Incidents returns the incident log in insertion order.
func (s *Session) Incidents() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.incidents...)
}

// Snapshot is a point-in-time copy of the whole session, consumed by the
// report aggregator and the read-only HTTP endpoints.
type Snapshot struct {
	Meta         Meta             `json:"meta"`
	Students     []models.Student `json:"students"`
	Proctors     []models.Proctor `json:"proctors"`
	Incidents    []string         `json:"incidents"`
	SeatGrid     [][]bool         `json:"seat_grid"`
	OnBreak      []int            `json:"on_break"`
	TotalPresent int              `json:"total_present"`
}

// Snapshot copies the session state. Students and proctors keep roster load
// order.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Meta:         s.meta,
		Students:     make([]models.Student, 0, len(s.roster)),
		Proctors:     make([]models.Proctor, 0, len(s.proctorOrder)),
		Incidents:    append([]string(nil), s.incidents...),
		SeatGrid:     make([][]bool, len(s.seatGrid)),
		TotalPresent: s.totalPresent,
	}
	snap.Meta.VersionCodes = append([]int(nil), s.meta.VersionCodes...)
	for _, id := range s.roster {
		snap.Students = append(snap.Students, cloneStudent(s.students[id]))
		if _, on := s.onBreak[id]; on {
			snap.OnBreak = append(snap.OnBreak, id)
		}
	}
	for _, id := range s.proctorOrder {
		snap.Proctors = append(snap.Proctors, *s.proctors[id])
	}
	for i, row := range s.seatGrid {
		snap.SeatGrid[i] = append([]bool(nil), row...)
	}
	return snap
}

func (s *Session) publish(ctx context.Context, eventType string, data map[string]any) {
	if err := s.publisher.Publish(ctx, eventType, data); err != nil {
		s.logger.Error("Failed to publish session event", "type", eventType, "error", err)
	}
}

// cloneStudent copies a roster entry, detaching the breaks slice so callers
// hold a short-lived read-only view rather than a live reference.
func cloneStudent(st *models.Student) models.Student {
	out := *st
	out.Breaks = append([]models.Break(nil), st.Breaks...)
	if st.Seat != nil {
		seat := *st.Seat
		out.Seat = &seat
	}
	return out
}
