package handlers

import (
	"errors"
	"log/slog"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/column-task-api/internal/constants"
	"github.com/yukikurage/column-task-api/internal/dto"
	apierrors "github.com/yukikurage/column-task-api/internal/errors"
	"github.com/yukikurage/column-task-api/internal/middleware"
	"github.com/yukikurage/column-task-api/internal/services"
)

// AuthHandler coordinates authentication-related HTTP handlers.
type AuthHandler struct {
	authService *services.AuthService
	logger      *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// Login authenticates the configured user and initializes the session.
func (h *AuthHandler) Login(c *gin.Context) {
	type LoginRequest struct {
		Username string `json:"username" form:"username" binding:"required"`
		Password string `json:"password" form:"password" binding:"required"`
	}

	var req LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		apierrors.BadRequest(c, "Username and password are required")
		return
	}

	username, err := h.authService.Login(services.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		h.respondAuthError(c, err)
		return
	}

	session := sessions.Default(c)
	session.Set(constants.ContextKeyUsername, username)
	if err := session.Save(); err != nil {
		h.logger.Error("failed to save session", slog.String("error", err.Error()))
		apierrors.InternalError(c, "Failed to save session")
		return
	}

	apierrors.Success(c, "Logged in", dto.UserDTO{Username: username})
}

// Logout removes the authentication session.
func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
	if err := session.Save(); err != nil {
		h.logger.Error("failed to clear session", slog.String("error", err.Error()))
		apierrors.InternalError(c, "Failed to logout")
		return
	}

	apierrors.Success(c, "Logged out successfully", nil)
}

// GetCurrentUser returns the authenticated user.
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	username, exists := middleware.GetUsername(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	apierrors.Success(c, "", dto.UserDTO{Username: username})
}

func (h *AuthHandler) respondAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidCredentials):
		apierrors.InvalidCredentials(c)
	default:
		h.logger.Error("login failed", slog.String("error", err.Error()))
		apierrors.InternalError(c, "Internal server error")
	}
}
