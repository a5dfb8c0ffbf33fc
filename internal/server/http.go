package server

import (
	"github.com/gin-gonic/gin"

	"session-auth-service/internal/audit"
	auditrepo "session-auth-service/internal/audit/repository"
	healthhandler "session-auth-service/internal/health/handler"
	identityhandler "session-auth-service/internal/identity/handler"
	identityservice "session-auth-service/internal/identity/service"
	"session-auth-service/internal/security"
	"session-auth-service/internal/server/middleware"
	sessionrepo "session-auth-service/internal/session/repository"
	"session-auth-service/internal/telemetry"
	userhandler "session-auth-service/internal/user/handler"
	userrepo "session-auth-service/internal/user/repository"
)

// Deps holds the dependencies the HTTP router wires into handlers and middleware.
type Deps struct {
	// Auth is the auth service for register/login/refresh/logout/change-password.
	Auth *identityservice.AuthService
	// Tokens verifies Bearer tokens on protected routes.
	Tokens *security.TokenProvider
	// UserRepo resolves token claims to an active user; also serves /user routes.
	UserRepo userrepo.Repository
	// SessionRepo resolves a Bearer token to its active ledger session.
	SessionRepo sessionrepo.Repository
	// Tx runs handler-level mutations in one transaction.
	Tx userhandler.TxRunner
	// Auditor records auth events. May be nil.
	Auditor audit.EventLogger
	// AuditRepo backs the caller's audit-log listing. May be nil.
	AuditRepo auditrepo.Repository
	// Emitter receives http_request telemetry events. May be nil.
	Emitter telemetry.EventEmitter
	// HealthPinger is used by the health endpoint (e.g. *sql.DB). May be nil.
	HealthPinger healthhandler.Pinger
}

// NewRouter builds the gin engine: base middleware, then every route group.
//
// Route → handler mapping:
//   - /auth/*  → internal/identity/handler
//   - /user/*  → internal/user/handler
//   - /health  → internal/health/handler
func NewRouter(deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.ClientInfo())
	r.Use(middleware.Telemetry(deps.Emitter, map[string]bool{"/health": true}))

	authRequired := middleware.AuthRequired(deps.Tokens, deps.UserRepo, deps.SessionRepo)

	identityhandler.NewHandler(deps.Auth).Register(r, authRequired)
	userhandler.NewHandler(deps.UserRepo, deps.AuditRepo, deps.Tx, deps.Auditor).Register(r, authRequired)
	healthhandler.NewHandler(deps.HealthPinger).Register(r)

	return r
}
