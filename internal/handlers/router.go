package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/campus-ops/exam-session-service/internal/config"
	"github.com/campus-ops/exam-session-service/internal/loader"
	"github.com/campus-ops/exam-session-service/internal/metrics"
	"github.com/campus-ops/exam-session-service/internal/session"
	"github.com/campus-ops/exam-session-service/internal/utils"
	"github.com/campus-ops/exam-session-service/internal/validator"
)

type HandlerManager struct {
	authHandler     *AuthHandler
	sessionHandler  *SessionHandler
	studentHandler  *StudentHandler
	incidentHandler *IncidentHandler
	metrics         *metrics.Metrics
}

func NewHandlerManager(
	store *session.Store,
	ldr *loader.Loader,
	v *validator.Validator,
	m *metrics.Metrics,
	cfg config.Config,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		authHandler:     NewAuthHandler(cfg.AdminUser, cfg.AdminPass, logger),
		sessionHandler:  NewSessionHandler(store, ldr, m, cfg.ExamDataPath, cfg.ReportPath, logger),
		studentHandler:  NewStudentHandler(store, m, logger),
		incidentHandler: NewIncidentHandler(store, v, m, logger),
		metrics:         m,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", HealthCheck)
	router.GET("/metrics", gin.WrapH(hm.metrics.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.POST("/login", hm.authHandler.Login)

		sessionGroup := v1.Group("/session")
		{
			sessionGroup.GET("", hm.sessionHandler.GetSession)
			sessionGroup.POST("/load", hm.sessionHandler.LoadSession)
			sessionGroup.GET("/seat-map", hm.sessionHandler.GetSeatMap)
			sessionGroup.POST("/submit-all", hm.sessionHandler.SubmitAll)
			sessionGroup.POST("/report", hm.sessionHandler.GenerateReport)
		}

		students := v1.Group("/students")
		{
			students.GET("/:id", hm.studentHandler.GetStudent)
			students.POST("/:id/check-in", hm.studentHandler.CheckIn)
			students.POST("/:id/break", hm.studentHandler.RequestBreak)
			students.POST("/:id/submit", hm.studentHandler.Submit)
		}

		incidents := v1.Group("/incidents")
		{
			incidents.POST("", hm.incidentHandler.CreateIncident)
			incidents.GET("", hm.incidentHandler.ListIncidents)
		}
	}
}

// HealthCheck endpoint
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "exam-session-service",
	})
}
