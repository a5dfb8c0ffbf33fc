package repository

import (
	"context"
	"time"

	"session-auth-service/internal/session/domain"
)

// Repository defines persistence for the session ledger. Every lookup filters
// on is_active, so a deactivated session is never observed as usable.
type Repository interface {
	GetActiveByID(ctx context.Context, id string) (*domain.Session, error)
	GetActiveByUserAndRefresh(ctx context.Context, userID int64, refreshToken string) (*domain.Session, error)
	GetActiveByUserAndAccess(ctx context.Context, userID int64, accessToken string) (*domain.Session, error)
	Create(ctx context.Context, s *domain.Session) error
	// UpdateAccessToken replaces the session's access token in place; the
	// refresh token and id never change.
	UpdateAccessToken(ctx context.Context, id string, accessToken string, at time.Time) error
	Deactivate(ctx context.Context, id string) error
	// DeactivateAllForUserExcept deactivates every active session of the user
	// but keepID in a single statement, so it cannot race a concurrent login.
	DeactivateAllForUserExcept(ctx context.Context, userID int64, keepID string) error
}
