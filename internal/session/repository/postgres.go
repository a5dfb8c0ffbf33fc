package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"session-auth-service/internal/db"
	"session-auth-service/internal/session/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a session repository that uses the given db
// for persistence. Queries run on the transaction carried by ctx when one is open.
func NewPostgresRepository(database *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: database}
}

const sessionColumns = `id, user_id, access_token, refresh_token, is_active, last_update`

// GetActiveByID returns the active session for id, or nil if none.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetActiveByID(ctx context.Context, id string) (*domain.Session, error) {
	row := db.Conn(ctx, r.db).QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE id = $1 AND is_active`, id)
	return scanSession(row)
}

// GetActiveByUserAndRefresh returns the user's active session holding exactly
// this refresh token, or nil. A logged-out session never matches, which is
// what makes its refresh token unusable despite a still-valid signature.
func (r *PostgresRepository) GetActiveByUserAndRefresh(ctx context.Context, userID int64, refreshToken string) (*domain.Session, error) {
	row := db.Conn(ctx, r.db).QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions
		 WHERE user_id = $1 AND refresh_token = $2 AND is_active`, userID, refreshToken)
	return scanSession(row)
}

// GetActiveByUserAndAccess returns the user's active session whose current
// access token equals accessToken, or nil. A rotated-away access token stops
// matching the moment the ledger row is updated.
func (r *PostgresRepository) GetActiveByUserAndAccess(ctx context.Context, userID int64, accessToken string) (*domain.Session, error) {
	row := db.Conn(ctx, r.db).QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions
		 WHERE user_id = $1 AND access_token = $2 AND is_active`, userID, accessToken)
	return scanSession(row)
}

// Create persists the session. The session must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, s *domain.Session) error {
	_, err := db.Conn(ctx, r.db).ExecContext(ctx,
		`INSERT INTO sessions (id, user_id, access_token, refresh_token, is_active, last_update)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		s.ID, s.UserID, s.AccessToken, s.RefreshToken, s.IsActive, s.LastUpdate)
	return err
}

// UpdateAccessToken replaces the session's access token and last-update in
// place. The refresh token and id are untouched.
func (r *PostgresRepository) UpdateAccessToken(ctx context.Context, id string, accessToken string, at time.Time) error {
	_, err := db.Conn(ctx, r.db).ExecContext(ctx,
		`UPDATE sessions SET access_token = $2, last_update = $3 WHERE id = $1`,
		id, accessToken, at)
	return err
}

// Deactivate marks the session inactive. Already-inactive or unknown ids are
// a no-op, which keeps logout idempotent.
func (r *PostgresRepository) Deactivate(ctx context.Context, id string) error {
	_, err := db.Conn(ctx, r.db).ExecContext(ctx,
		`UPDATE sessions SET is_active = FALSE, last_update = now() WHERE id = $1 AND is_active`, id)
	return err
}

// DeactivateAllForUserExcept deactivates every active session of the user
// except keepID as one bulk conditional update.
func (r *PostgresRepository) DeactivateAllForUserExcept(ctx context.Context, userID int64, keepID string) error {
	_, err := db.Conn(ctx, r.db).ExecContext(ctx,
		`UPDATE sessions SET is_active = FALSE, last_update = now()
		 WHERE user_id = $1 AND id <> $2 AND is_active`, userID, keepID)
	return err
}

func scanSession(row *sql.Row) (*domain.Session, error) {
	var s domain.Session
	err := row.Scan(&s.ID, &s.UserID, &s.AccessToken, &s.RefreshToken, &s.IsActive, &s.LastUpdate)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}
