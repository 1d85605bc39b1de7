package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campus-ops/exam-session-service/internal/events"
	"github.com/campus-ops/exam-session-service/internal/metrics"
	"github.com/campus-ops/exam-session-service/internal/session"
	"github.com/campus-ops/exam-session-service/internal/utils"
)

// StudentHandler serves the per-student operations: check-in, washroom
// break and early submission.
type StudentHandler struct {
	BaseHandler
	store   *session.Store
	metrics *metrics.Metrics
}

func NewStudentHandler(store *session.Store, m *metrics.Metrics, logger utils.Logger) *StudentHandler {
	return &StudentHandler{
		BaseHandler: NewBaseHandler(logger),
		store:       store,
		metrics:     m,
	}
}

// GetStudent returns one roster entry.
func (h *StudentHandler) GetStudent(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	sess, err := h.store.Current()
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	st, ok := sess.Student(id)
	if !ok {
		h.handleServiceError(c, session.ErrStudentNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"student":  st,
		"on_break": sess.IsOnBreak(id),
	})
}

// CheckIn marks the student present and assigns a seat and exam version.
func (h *StudentHandler) CheckIn(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	sess, err := h.store.Current()
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "Check-in requested", "student_id", id)
	st, err := sess.CheckIn(c.Request.Context(), id)
	h.metrics.CheckIns.WithLabelValues(checkInOutcome(err)).Inc()
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"student":       st,
		"seat":          st.Seat.String(),
		"exam_version":  st.ExamVersion,
		"total_present": sess.TotalPresent(),
	})
}

func checkInOutcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, session.ErrStudentNotFound):
		return "not_found"
	case errors.Is(err, session.ErrAlreadyCheckedIn):
		return "already_checked_in"
	case errors.Is(err, session.ErrNoSeatAvailable):
		return "no_seat"
	default:
		return "error"
	}
}

// RequestBreak toggles the student's washroom-break state.
func (h *StudentHandler) RequestBreak(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	sess, err := h.store.Current()
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "Break requested", "student_id", id)
	res, err := sess.RequestBreak(c.Request.Context(), id)
	h.metrics.BreakRequests.WithLabelValues(breakOutcome(res, err)).Inc()
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func breakOutcome(res session.BreakResult, err error) string {
	switch {
	case err == nil && res.Returning:
		return "returned"
	case err == nil:
		return "left"
	case errors.Is(err, session.ErrBreakTooEarly):
		return "too_early"
	case errors.Is(err, session.ErrBreakTooLate):
		return "too_late"
	case errors.Is(err, session.ErrBreakIneligible):
		return "ineligible"
	default:
		return "error"
	}
}

// Submit records an early submission for one student.
func (h *StudentHandler) Submit(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	sess, err := h.store.Current()
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	if !sess.HasStudent(id) {
		h.handleServiceError(c, session.ErrStudentNotFound)
		return
	}

	h.LogRequest(c, "Early submission requested", "student_id", id)
	if !sess.EarlySubmission(c.Request.Context(), id) {
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "Student has not checked in or has already submitted",
		})
		return
	}
	h.metrics.Submissions.WithLabelValues(events.ReasonEarly).Inc()

	st, _ := sess.Student(id)
	c.JSON(http.StatusOK, gin.H{
		"student_id":   id,
		"submitted_at": st.FormattedSubmissionTime(),
	})
}
