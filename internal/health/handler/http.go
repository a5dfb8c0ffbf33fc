package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Pinger reports backing-store reachability; *sql.DB implements it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Handler serves the health endpoint.
type Handler struct {
	db Pinger
}

// NewHandler returns a health HTTP handler. db may be nil; the endpoint then
// reports ok without a store check.
func NewHandler(db Pinger) *Handler {
	return &Handler{db: db}
}

// Register mounts the health route. No auth.
func (h *Handler) Register(r gin.IRouter) {
	r.GET("/health", h.check)
}

func (h *Handler) check(c *gin.Context) {
	if h.db != nil {
		if err := h.db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
