package handler

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"session-auth-service/internal/audit"
	auditrepo "session-auth-service/internal/audit/repository"
	"session-auth-service/internal/server/middleware"
	userrepo "session-auth-service/internal/user/repository"
)

const (
	defaultAuditPageSize = 50
	maxAuditPageSize     = 100
)

// TxRunner runs a function inside one transaction.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Handler exposes the authenticated user's profile: read it, deactivate it,
// and list its audit trail.
type Handler struct {
	users    userrepo.Repository
	auditLog auditrepo.Repository
	tx       TxRunner
	auditor  audit.EventLogger
}

// NewHandler returns a user HTTP handler. auditLog and auditor may be nil;
// the audit-log route is then not mounted and events are not recorded.
func NewHandler(users userrepo.Repository, auditLog auditrepo.Repository, tx TxRunner, auditor audit.EventLogger) *Handler {
	return &Handler{users: users, auditLog: auditLog, tx: tx, auditor: auditor}
}

// Register mounts the user routes; all of them require a Bearer token.
func (h *Handler) Register(r gin.IRouter, authRequired gin.HandlerFunc) {
	grp := r.Group("/user", authRequired)
	grp.GET("", h.me)
	grp.DELETE("/delete", h.deactivate)
	if h.auditLog != nil {
		grp.GET("/audit-logs", h.auditLogs)
	}
}

type profileResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	IsActive bool   `json:"is_active"`
}

func (h *Handler) me(c *gin.Context) {
	id, ok := middleware.GetIdentity(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Not authenticated"})
		return
	}
	u := id.User
	c.JSON(http.StatusOK, profileResponse{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		IsActive: u.IsActive,
	})
}

// deactivate soft-deletes the caller's account. Lookups filter on is_active,
// so every session of the user stops authenticating immediately; the rows
// stay in place.
func (h *Handler) deactivate(c *gin.Context) {
	ctx := c.Request.Context()
	id, ok := middleware.GetIdentity(ctx)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Not authenticated"})
		return
	}
	u := id.User
	err := h.tx.RunInTx(ctx, func(ctx context.Context) error {
		return h.users.Deactivate(ctx, u.ID, time.Now().UTC())
	})
	if err != nil {
		log.Printf("user handler: deactivate: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
		return
	}
	if h.auditor != nil {
		h.auditor.LogEvent(ctx, u.ID, "account_deactivate", "user", "")
	}
	c.JSON(http.StatusOK, profileResponse{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		IsActive: false,
	})
}

type auditLogResponse struct {
	ID        string    `json:"id"`
	Action    string    `json:"action"`
	Resource  string    `json:"resource"`
	IP        string    `json:"ip"`
	Metadata  string    `json:"metadata,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// auditLogs lists the caller's own audit trail, newest first.
func (h *Handler) auditLogs(c *gin.Context) {
	ctx := c.Request.Context()
	id, ok := middleware.GetIdentity(ctx)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Not authenticated"})
		return
	}
	limit := int32(defaultAuditPageSize)
	if v, err := strconv.ParseInt(c.DefaultQuery("limit", ""), 10, 32); err == nil && v > 0 {
		limit = int32(v)
	}
	if limit > maxAuditPageSize {
		limit = maxAuditPageSize
	}
	var offset int32
	if v, err := strconv.ParseInt(c.DefaultQuery("offset", ""), 10, 32); err == nil && v > 0 {
		offset = int32(v)
	}

	entries, err := h.auditLog.ListByUser(ctx, id.User.ID, limit, offset)
	if err != nil {
		log.Printf("user handler: list audit logs: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
		return
	}
	out := make([]auditLogResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, auditLogResponse{
			ID:        e.ID,
			Action:    e.Action,
			Resource:  e.Resource,
			IP:        e.IP,
			Metadata:  e.Metadata,
			CreatedAt: e.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"audit_logs": out})
}
