package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"session-auth-service/internal/audit"
	auditrepo "session-auth-service/internal/audit/repository"
	"session-auth-service/internal/config"
	"session-auth-service/internal/db"
	identityservice "session-auth-service/internal/identity/service"
	"session-auth-service/internal/security"
	"session-auth-service/internal/server"
	"session-auth-service/internal/server/middleware"
	sessionrepo "session-auth-service/internal/session/repository"
	"session-auth-service/internal/telemetry"
	telemetryotel "session-auth-service/internal/telemetry/otel"
	userrepo "session-auth-service/internal/user/repository"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	secret, err := security.LoadSecret(cfg.JWTSecretKey)
	if err != nil {
		log.Fatalf("jwt secret: %v", err)
	}

	tokens, err := security.NewTokenProvider(secret, cfg.JWTAlgorithm, cfg.AccessTTL(), cfg.RefreshTTL())
	if err != nil {
		log.Fatalf("token provider: %v", err)
	}

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()

	ctx := context.Background()
	providers, err := telemetryotel.NewProviders(ctx, cfg.OTLPEndpoint, "session-auth-service", cfg.OTLPInsecure)
	if err != nil {
		log.Fatalf("telemetry: %v", err)
	}
	providers.SetGlobal()

	var emitter telemetry.EventEmitter
	if cfg.OTLPEndpoint != "" {
		emitter = telemetryotel.NewEventEmitter(providers.LoggerProvider)
	}

	users := userrepo.NewPostgresRepository(conn)
	sessions := sessionrepo.NewPostgresRepository(conn)
	auditLogs := auditrepo.NewPostgresRepository(conn)
	auditor := audit.NewLogger(auditLogs, middleware.ClientIP)
	tx := db.NewTxManager(conn)
	hasher := security.NewHasher(cfg.BcryptCost)

	auth := identityservice.NewAuthService(users, sessions, tx, hasher, tokens, auditor)

	router := server.NewRouter(server.Deps{
		Auth:         auth,
		Tokens:       tokens,
		UserRepo:     users,
		SessionRepo:  sessions,
		Tx:           tx,
		Auditor:      auditor,
		AuditRepo:    auditLogs,
		Emitter:      emitter,
		HealthPinger: conn,
	})

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}

	go func() {
		log.Printf("HTTP server listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}

	// Give in-flight async telemetry emits time to finish before the providers go away.
	time.Sleep(telemetry.ShutdownDrainDuration)
	if err := providers.Shutdown(shutdownCtx); err != nil {
		log.Printf("telemetry shutdown: %v", err)
	}
	log.Println("HTTP server stopped")
}
