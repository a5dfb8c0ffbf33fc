package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"session-auth-service/internal/db"
	"session-auth-service/internal/user/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a user repository that uses the given db for
// persistence. Queries run on the transaction carried by ctx when one is open.
func NewPostgresRepository(database *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: database}
}

const userColumns = `id, username, email, hashed_password, is_active, created_at, updated_at`

// GetByID returns the user for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	row := db.Conn(ctx, r.db).QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// GetActiveByIdentifier returns the active user whose username or email
// equals identifier, or nil if none matches.
func (r *PostgresRepository) GetActiveByIdentifier(ctx context.Context, identifier string) (*domain.User, error) {
	row := db.Conn(ctx, r.db).QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users
		 WHERE (username = $1 OR email = $1) AND is_active`, identifier)
	return scanUser(row)
}

// GetActiveByClaims returns the active user matching id, username, and email
// exactly, or nil if none matches.
func (r *PostgresRepository) GetActiveByClaims(ctx context.Context, id int64, username, email string) (*domain.User, error) {
	row := db.Conn(ctx, r.db).QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users
		 WHERE id = $1 AND username = $2 AND email = $3 AND is_active`,
		id, username, email)
	return scanUser(row)
}

// Create inserts the user and assigns the generated id. A unique-constraint
// violation comes back as the raw driver error; callers classify it with
// db.IsUniqueViolation.
func (r *PostgresRepository) Create(ctx context.Context, u *domain.User) error {
	return db.Conn(ctx, r.db).QueryRowContext(ctx,
		`INSERT INTO users (username, email, hashed_password, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		u.Username, u.Email, u.HashedPassword, u.IsActive, u.CreatedAt, u.UpdatedAt,
	).Scan(&u.ID)
}

// UpdatePassword replaces the user's stored hash. Returns an error if the update fails.
func (r *PostgresRepository) UpdatePassword(ctx context.Context, id int64, hashedPassword string, at time.Time) error {
	_, err := db.Conn(ctx, r.db).ExecContext(ctx,
		`UPDATE users SET hashed_password = $2, updated_at = $3 WHERE id = $1`,
		id, hashedPassword, at)
	return err
}

// Deactivate clears the user's active flag (logical delete). Returns an error if the update fails.
func (r *PostgresRepository) Deactivate(ctx context.Context, id int64, at time.Time) error {
	_, err := db.Conn(ctx, r.db).ExecContext(ctx,
		`UPDATE users SET is_active = FALSE, updated_at = $2 WHERE id = $1`,
		id, at)
	return err
}

func scanUser(row *sql.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.HashedPassword, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}
