package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/trotyl/uestc-sdk-go/internal/models"
	appErrors "github.com/trotyl/uestc-sdk-go/pkg/errors"
	"github.com/trotyl/uestc-sdk-go/pkg/response"
)

type sessionService interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.SessionResponse, error)
	Current() *models.User
	Logout()
}

// SessionHandler exposes registration of the session identity.
type SessionHandler struct {
	sessions sessionService
}

// NewSessionHandler constructs SessionHandler.
func NewSessionHandler(sessions sessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// Register godoc
// @Summary Confirm a student with the portal
// @Tags Session
// @Accept json
// @Produce json
// @Param payload body models.RegisterRequest true "Portal credential"
// @Success 201 {object} response.Envelope
// @Router /session [post]
func (h *SessionHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	resp, err := h.sessions.Register(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, resp)
}

// Current godoc
// @Summary Current session identity
// @Tags Session
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /session [get]
func (h *SessionHandler) Current(c *gin.Context) {
	user := h.sessions.Current()
	if user == nil {
		response.Error(c, appErrors.ErrAuthorizationRequired)
		return
	}
	response.JSON(c, http.StatusOK, user)
}

// Logout godoc
// @Summary End the session identity
// @Tags Session
// @Security BearerAuth
// @Success 204
// @Router /session [delete]
func (h *SessionHandler) Logout(c *gin.Context) {
	h.sessions.Logout()
	response.NoContent(c)
}
