package middleware

import (
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"

	"session-auth-service/internal/telemetry"
)

// httpRequestMetadata is the JSON shape stored in Event.Metadata for http_request events.
type httpRequestMetadata struct {
	Method     string `json:"method"`
	Path       string `json:"path"`
	StatusCode int    `json:"status_code"`
	DurationMs int64  `json:"duration_ms"`
	ClientIP   string `json:"client_ip"`
}

// Telemetry emits an http_request event after each request. Best-effort and
// fire-and-forget: the response is never delayed or failed by the emit.
// If emitter is nil, the middleware no-ops. skipPaths is the set of route
// paths to not emit (e.g. /health).
func Telemetry(emitter telemetry.EventEmitter, skipPaths map[string]bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if emitter == nil || skipPaths[c.FullPath()] {
			return
		}
		ctx := c.Request.Context()
		meta := httpRequestMetadata{
			Method:     c.Request.Method,
			Path:       c.Request.URL.Path,
			StatusCode: c.Writer.Status(),
			DurationMs: time.Since(start).Milliseconds(),
			ClientIP:   ClientIP(ctx),
		}
		metaJSON, _ := json.Marshal(meta)
		event := &telemetry.Event{
			EventType: "http_request",
			Source:    "http_middleware",
			Metadata:  metaJSON,
			CreatedAt: time.Now().UTC(),
		}
		if id, ok := GetIdentity(ctx); ok && id != nil {
			if id.User != nil {
				event.UserID = id.User.ID
			}
			event.SessionID = id.SessionID
		}
		telemetry.EmitAsync(emitter, event)
	}
}
