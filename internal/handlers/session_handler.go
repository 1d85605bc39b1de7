package handlers

import (
	"errors"
	"io/fs"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/campus-ops/exam-session-service/internal/events"
	"github.com/campus-ops/exam-session-service/internal/loader"
	"github.com/campus-ops/exam-session-service/internal/metrics"
	"github.com/campus-ops/exam-session-service/internal/report"
	"github.com/campus-ops/exam-session-service/internal/session"
	"github.com/campus-ops/exam-session-service/internal/utils"
)

// SessionHandler serves the session-wide operations: loading exam data,
// status reads, end-of-time submission and report generation.
type SessionHandler struct {
	BaseHandler
	store   *session.Store
	loader  *loader.Loader
	metrics *metrics.Metrics

	defaultDataPath   string
	defaultReportPath string
}

func NewSessionHandler(
	store *session.Store,
	ldr *loader.Loader,
	m *metrics.Metrics,
	defaultDataPath, defaultReportPath string,
	logger utils.Logger,
) *SessionHandler {
	return &SessionHandler{
		BaseHandler:       NewBaseHandler(logger),
		store:             store,
		loader:            ldr,
		metrics:           m,
		defaultDataPath:   defaultDataPath,
		defaultReportPath: defaultReportPath,
	}
}

type LoadSessionRequest struct {
	// Path of the exam data file. Falls back to the configured default.
	Path string `json:"path"`
}

type LoadSessionResponse struct {
	Meta     session.Meta `json:"meta"`
	Students int          `json:"students"`
	Proctors int          `json:"proctors"`
}

// LoadSession parses an exam data file and installs it as the live session,
// replacing any previously loaded one.
func (h *SessionHandler) LoadSession(c *gin.Context) {
	var req LoadSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	path := req.Path
	if path == "" {
		path = h.defaultDataPath
	}
	if path == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "No exam data path provided or configured"})
		return
	}

	h.LogRequest(c, "Loading exam data", "path", path)
	sess, err := h.loader.LoadFile(path)
	if err != nil {
		h.handleLoadError(c, err)
		return
	}
	h.store.Set(sess)

	snap := sess.Snapshot()
	c.JSON(http.StatusOK, LoadSessionResponse{
		Meta:     snap.Meta,
		Students: len(snap.Students),
		Proctors: len(snap.Proctors),
	})
}

func (h *SessionHandler) handleLoadError(c *gin.Context, err error) {
	if errors.Is(err, fs.ErrNotExist) {
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Exam data file not found", Details: err.Error()})
		return
	}
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Message: "Failed to load exam data",
		Details: err.Error(),
	})
}

type SessionStatusResponse struct {
	Meta         session.Meta `json:"meta"`
	TotalPresent int          `json:"total_present"`
	OnBreak      int          `json:"on_break"`
	Submitted    int          `json:"submitted"`
	Incidents    int          `json:"incidents"`
	RosterSize   int          `json:"roster_size"`
}

// GetSession returns the live session counters.
func (h *SessionHandler) GetSession(c *gin.Context) {
	sess, err := h.store.Current()
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	snap := sess.Snapshot()
	resp := SessionStatusResponse{
		Meta:         snap.Meta,
		TotalPresent: snap.TotalPresent,
		OnBreak:      len(snap.OnBreak),
		Incidents:    len(snap.Incidents),
		RosterSize:   len(snap.Students),
	}
	for _, st := range snap.Students {
		if st.Submitted {
			resp.Submitted++
		}
	}
	c.JSON(http.StatusOK, resp)
}

type SeatMapResponse struct {
	MaxRow int      `json:"max_row"`
	MaxCol int      `json:"max_col"`
	Grid   [][]bool `json:"grid"`
}

// GetSeatMap returns the occupancy grid, true meaning taken.
func (h *SessionHandler) GetSeatMap(c *gin.Context) {
	sess, err := h.store.Current()
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	snap := sess.Snapshot()
	c.JSON(http.StatusOK, SeatMapResponse{
		MaxRow: snap.Meta.MaxRow,
		MaxCol: snap.Meta.MaxCol,
		Grid:   snap.SeatGrid,
	})
}

// SubmitAll records a submission for every attended student who has not
// submitted yet. Invoked by the operator when the exam clock expires.
func (h *SessionHandler) SubmitAll(c *gin.Context) {
	sess, err := h.store.Current()
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "End-of-time submission requested")
	submitted := sess.EndOfTimeSubmission(c.Request.Context())
	h.metrics.Submissions.WithLabelValues(events.ReasonEndOfTime).Add(float64(submitted))
	c.JSON(http.StatusOK, gin.H{"submitted": submitted})
}

type GenerateReportRequest struct {
	Format string `json:"format" binding:"omitempty,oneof=text xlsx"`
	// Path without extension; the renderer appends .txt or .xlsx.
	Path string `json:"path"`
}

type GenerateReportResponse struct {
	Path           string `json:"path"`
	Format         string `json:"format"`
	TotalPresent   int    `json:"total_present"`
	TotalSubmitted int    `json:"total_submitted"`
	TotalBreaks    int    `json:"total_breaks"`
}

// GenerateReport aggregates the session and writes the report file.
func (h *SessionHandler) GenerateReport(c *gin.Context) {
	var req GenerateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}
	if req.Format == "" {
		req.Format = "text"
	}
	if req.Path == "" {
		req.Path = h.defaultReportPath
	}

	sess, err := h.store.Current()
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	r := report.Aggregate(sess.Snapshot())
	path, err := h.writeReport(r, req.Format, req.Path)
	if err != nil {
		h.logger.Error("Report generation failed", "format", req.Format, "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Failed to write report",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Report generated", "path", path, "format", req.Format)
	c.JSON(http.StatusOK, GenerateReportResponse{
		Path:           path,
		Format:         req.Format,
		TotalPresent:   r.TotalPresent,
		TotalSubmitted: r.TotalSubmitted,
		TotalBreaks:    r.TotalBreaks,
	})
}

func (h *SessionHandler) writeReport(r report.Report, format, base string) (string, error) {
	if format == "xlsx" {
		path := base + ".xlsx"
		return path, r.WriteXLSX(path)
	}
	path := base + ".txt"
	f, err := os.Create(path)
	if err != nil {
		return path, err
	}
	defer f.Close()
	return path, r.WriteText(f)
}
