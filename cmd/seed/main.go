// seed inserts a development user for local testing. Idempotent: exits
// cleanly when the seed user already exists.
package main

import (
	"context"
	"log"
	"time"

	"session-auth-service/internal/config"
	"session-auth-service/internal/db"
	"session-auth-service/internal/security"
	userdomain "session-auth-service/internal/user/domain"
	userrepo "session-auth-service/internal/user/repository"
)

const (
	defaultSeedUsername = "devuser"
	defaultSeedEmail    = "dev@example.com"
	defaultSeedPassword = "password123"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}

	username := cfg.SeedUsername
	if username == "" {
		username = defaultSeedUsername
	}
	email := cfg.SeedEmail
	if email == "" {
		email = defaultSeedEmail
	}
	password := cfg.SeedPassword
	if password == "" {
		password = defaultSeedPassword
	}

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()

	ctx := context.Background()
	users := userrepo.NewPostgresRepository(conn)

	existing, err := users.GetActiveByIdentifier(ctx, email)
	if err != nil {
		log.Fatalf("seed check: %v", err)
	}
	if existing != nil {
		log.Printf("Seed already applied (%s exists). Skipping.", email)
		return
	}

	hasher := security.NewHasher(cfg.BcryptCost)
	hash, err := hasher.Hash(password)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	now := time.Now().UTC()
	user := &userdomain.User{
		Username:       username,
		Email:          email,
		HashedPassword: hash,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := users.Create(ctx, user); err != nil {
		log.Fatalf("create seed user: %v", err)
	}
	log.Printf("Seeded user %s (id %d)", email, user.ID)
}
