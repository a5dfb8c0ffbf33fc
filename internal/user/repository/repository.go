package repository

import (
	"context"
	"time"

	"session-auth-service/internal/user/domain"
)

// Repository defines persistence for users. Rows are soft-deleted via
// is_active; nothing here removes a user physically.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	// GetActiveByIdentifier resolves an active user by username or email.
	GetActiveByIdentifier(ctx context.Context, identifier string) (*domain.User, error)
	// GetActiveByClaims resolves an active user matching id, username, and
	// email exactly; a stale token for a renamed account matches nothing.
	GetActiveByClaims(ctx context.Context, id int64, username, email string) (*domain.User, error)
	// Create inserts the user and assigns its generated id. Uniqueness
	// violations surface as raw store errors for the caller to translate.
	Create(ctx context.Context, u *domain.User) error
	UpdatePassword(ctx context.Context, id int64, hashedPassword string, at time.Time) error
	Deactivate(ctx context.Context, id int64, at time.Time) error
}
