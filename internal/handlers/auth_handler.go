package handlers

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campus-ops/exam-session-service/internal/utils"
)

// AuthHandler implements the placeholder operator login. Credentials come
// from configuration and default to the historical fixed pair; there are no
// per-user accounts.
type AuthHandler struct {
	BaseHandler
	username string
	password string
}

func NewAuthHandler(username, password string, logger utils.Logger) *AuthHandler {
	return &AuthHandler{
		BaseHandler: NewBaseHandler(logger),
		username:    username,
		password:    password,
	}
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login checks the operator credentials.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	userOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(h.username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(req.Password), []byte(h.password)) == 1
	if !userOK || !passOK {
		h.logger.Warn("Login rejected", "username", req.Username)
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Invalid username or password"})
		return
	}

	h.LogRequest(c, "Operator logged in", "username", req.Username)
	c.JSON(http.StatusOK, SuccessResponse{Message: "Login successful"})
}
