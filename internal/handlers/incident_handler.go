package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campus-ops/exam-session-service/internal/metrics"
	"github.com/campus-ops/exam-session-service/internal/session"
	"github.com/campus-ops/exam-session-service/internal/utils"
	"github.com/campus-ops/exam-session-service/internal/validator"
)

// IncidentHandler records and lists proctor incident reports.
type IncidentHandler struct {
	BaseHandler
	store     *session.Store
	validator *validator.Validator
	metrics   *metrics.Metrics
}

func NewIncidentHandler(store *session.Store, v *validator.Validator, m *metrics.Metrics, logger utils.Logger) *IncidentHandler {
	return &IncidentHandler{
		BaseHandler: NewBaseHandler(logger),
		store:       store,
		validator:   v,
		metrics:     m,
	}
}

type IncidentRequest struct {
	StudentID int    `json:"student_id" validate:"required,gt=0"`
	ProctorID int    `json:"proctor_id" validate:"required,gt=0"`
	Message   string `json:"message" validate:"required"`
}

// CreateIncident validates the referenced ids and appends an incident
// record to the session log.
func (h *IncidentHandler) CreateIncident(c *gin.Context) {
	var req IncidentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}
	if err := h.validator.Validate(req); err != nil {
		h.handleServiceError(c, err)
		return
	}

	sess, err := h.store.Current()
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	if !sess.HasStudent(req.StudentID) {
		h.handleServiceError(c, session.ErrStudentNotFound)
		return
	}
	if !sess.HasProctor(req.ProctorID) {
		h.handleServiceError(c, session.ErrProctorNotFound)
		return
	}

	sess.WriteIncident(c.Request.Context(), req.StudentID, req.ProctorID, req.Message)
	h.metrics.Incidents.Inc()
	h.LogRequest(c, "Incident recorded", "student_id", req.StudentID, "proctor_id", req.ProctorID)
	c.JSON(http.StatusCreated, SuccessResponse{Message: "Incident recorded"})
}

// ListIncidents returns the incident log in insertion order.
func (h *IncidentHandler) ListIncidents(c *gin.Context) {
	sess, err := h.store.Current()
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"incidents": sess.Incidents()})
}
