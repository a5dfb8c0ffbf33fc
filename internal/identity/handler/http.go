package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"session-auth-service/internal/identity/service"
	"session-auth-service/internal/server/middleware"
)

// Handler exposes the auth lifecycle over HTTP: register, login, token
// refresh, logout, and change-password. Routing glue only; all rules live in
// the auth service.
type Handler struct {
	auth *service.AuthService
}

// NewHandler returns an auth HTTP handler backed by the given service.
func NewHandler(auth *service.AuthService) *Handler {
	return &Handler{auth: auth}
}

// Register mounts the auth routes. Logout and change-password require a
// Bearer token; the caller passes the configured auth middleware.
func (h *Handler) Register(r gin.IRouter, authRequired gin.HandlerFunc) {
	grp := r.Group("/auth")
	grp.POST("/register", h.register)
	grp.POST("/login", h.login)
	grp.POST("/token", h.refreshToken)

	protected := grp.Group("", authRequired)
	protected.DELETE("/logout", h.logout)
	protected.POST("/change-password", h.changePassword)
}

type registerRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type userResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}
	user, err := h.auth.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, userResponse{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
	})
}

type loginRequest struct {
	Username string `json:"username" form:"username" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

// login accepts the credential pair form-encoded or as JSON; ShouldBind picks
// the binding from the Content-Type.
func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}
	pair, err := h.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, pair)
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

func (h *Handler) refreshToken(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}
	pair, err := h.auth.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, pair)
}

func (h *Handler) logout(c *gin.Context) {
	id, ok := middleware.GetIdentity(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Not authenticated"})
		return
	}
	if err := h.auth.Logout(c.Request.Context(), id.SessionID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type changePasswordRequest struct {
	OldPassword       string `json:"old_password" binding:"required"`
	NewPassword       string `json:"new_password" binding:"required"`
	RepeatNewPassword string `json:"repeat_new_password" binding:"required"`
}

func (h *Handler) changePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}
	id, ok := middleware.GetIdentity(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Not authenticated"})
		return
	}
	err := h.auth.ChangePassword(
		c.Request.Context(), id.User, id.SessionID,
		req.OldPassword, req.NewPassword, req.RepeatNewPassword,
	)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"detail": "Password changed successfully"})
}

// respondError maps service sentinel errors to HTTP statuses. Anything else
// is a storage or infrastructure failure and never reaches the client as-is.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrDuplicateAccount),
		errors.Is(err, service.ErrWrongPassword),
		errors.Is(err, service.ErrPasswordMismatch),
		errors.Is(err, service.ErrPasswordUnchanged):
		c.JSON(http.StatusBadRequest, gin.H{"detail": detailMessage(err)})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusNotFound, gin.H{"detail": detailMessage(err)})
	case errors.Is(err, service.ErrInvalidRefreshToken):
		c.JSON(http.StatusUnauthorized, gin.H{"detail": detailMessage(err)})
	default:
		log.Printf("auth handler: internal error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
	}
}

// detailMessage capitalizes the sentinel's message for the response body.
func detailMessage(err error) string {
	msg := err.Error()
	if msg == "" {
		return msg
	}
	if msg[0] >= 'a' && msg[0] <= 'z' {
		return string(msg[0]-'a'+'A') + msg[1:]
	}
	return msg
}
