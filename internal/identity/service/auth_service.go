package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"session-auth-service/internal/audit"
	"session-auth-service/internal/db"
	"session-auth-service/internal/security"
	sessiondomain "session-auth-service/internal/session/domain"
	userdomain "session-auth-service/internal/user/domain"
)

// Sentinel errors for the auth service; the handler maps them to HTTP statuses.
var (
	ErrDuplicateAccount    = errors.New("an account with this username or email has already been registered")
	ErrInvalidCredentials  = errors.New("invalid username or password")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrWrongPassword       = errors.New("the current password was entered incorrectly")
	ErrPasswordMismatch    = errors.New("the new password does not match the repeated password")
	ErrPasswordUnchanged   = errors.New("the new password must not match the old password")
)

// TokenPair is the credential pair returned by Login and Refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// UserRepo is the minimal user repository needed by the auth service.
type UserRepo interface {
	GetActiveByIdentifier(ctx context.Context, identifier string) (*userdomain.User, error)
	GetActiveByClaims(ctx context.Context, id int64, username, email string) (*userdomain.User, error)
	Create(ctx context.Context, u *userdomain.User) error
	UpdatePassword(ctx context.Context, id int64, hashedPassword string, at time.Time) error
}

// SessionRepo is the minimal session repository needed by the auth service.
type SessionRepo interface {
	GetActiveByUserAndRefresh(ctx context.Context, userID int64, refreshToken string) (*sessiondomain.Session, error)
	Create(ctx context.Context, s *sessiondomain.Session) error
	UpdateAccessToken(ctx context.Context, id string, accessToken string, at time.Time) error
	Deactivate(ctx context.Context, id string) error
	DeactivateAllForUserExcept(ctx context.Context, userID int64, keepID string) error
}

// TxRunner runs a function inside one transaction; *db.TxManager implements it.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// AuthService implements register, login, refresh, logout, and change-password
// over the user directory and the session ledger. Every mutating operation
// runs inside one transaction and commits atomically.
type AuthService struct {
	users    UserRepo
	sessions SessionRepo
	tx       TxRunner
	hasher   *security.Hasher
	tokens   *security.TokenProvider
	auditor  audit.EventLogger
}

// NewAuthService returns an AuthService with the given dependencies.
// auditor may be nil; auth events are then not recorded.
func NewAuthService(
	users UserRepo,
	sessions SessionRepo,
	tx TxRunner,
	hasher *security.Hasher,
	tokens *security.TokenProvider,
	auditor audit.EventLogger,
) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		tx:       tx,
		hasher:   hasher,
		tokens:   tokens,
		auditor:  auditor,
	}
}

// Register hashes the password and creates an active user. A uniqueness
// violation from the store is translated to ErrDuplicateAccount; there is no
// racy pre-check, the constraint is the check.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*userdomain.User, error) {
	hashed, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	user := &userdomain.User{
		Username:       username,
		Email:          email,
		HashedPassword: hashed,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		return s.users.Create(ctx, user)
	})
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrDuplicateAccount
		}
		return nil, err
	}
	s.logEvent(ctx, user.ID, "register", "user", "")
	return user, nil
}

// Login authenticates an active user by username or email and mints a fresh
// session: a short-lived access token, a long-lived refresh token, and one
// new ledger row holding both. An unknown identifier and a wrong password
// return the identical error. Repeated logins create independent concurrent
// sessions.
func (s *AuthService) Login(ctx context.Context, identifier, password string) (*TokenPair, error) {
	if identifier == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	var (
		pair   *TokenPair
		sessID string
		userID int64
	)
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		user, err := s.users.GetActiveByIdentifier(ctx, identifier)
		if err != nil {
			return err
		}
		if user == nil || s.hasher.Compare(user.HashedPassword, password) != nil {
			return ErrInvalidCredentials
		}
		userID = user.ID
		pair, sessID, err = s.createSession(ctx, user)
		return err
	})
	if err != nil {
		s.logEvent(ctx, 0, "login_failure", "session", fmt.Sprintf(`{"identifier":%q}`, identifier))
		return nil, err
	}
	s.logEvent(ctx, userID, "login", "session", fmt.Sprintf(`{"session_id":%q}`, sessID))
	return pair, nil
}

// createSession issues both tokens for user and persists a new active ledger row.
func (s *AuthService) createSession(ctx context.Context, user *userdomain.User) (*TokenPair, string, error) {
	accessToken, _, err := s.tokens.IssueAccess(user.ID, user.Username, user.Email)
	if err != nil {
		return nil, "", err
	}
	refreshToken, _, err := s.tokens.IssueRefresh(user.ID, user.Username, user.Email)
	if err != nil {
		return nil, "", err
	}
	sess := &sessiondomain.Session{
		ID:           uuid.New().String(),
		UserID:       user.ID,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		IsActive:     true,
		LastUpdate:   time.Now().UTC(),
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, "", err
	}
	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
	}, sess.ID, nil
}

// Refresh rotates the access token of the session bound to refreshToken.
// The refresh token itself is reused unchanged; only the ledger row's access
// token and last-update move. Every failure collapses to ErrInvalidRefreshToken:
// bad signature, expiry, malformed claims, no active user matching all three
// claim fields, or no active session holding exactly this refresh token.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if refreshToken == "" {
		return nil, ErrInvalidRefreshToken
	}
	claims, err := s.tokens.Verify(refreshToken)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}
	var (
		pair   *TokenPair
		sessID string
		userID int64
	)
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		user, err := s.users.GetActiveByClaims(ctx, claims.UserID, claims.Username, claims.Email)
		if err != nil {
			return err
		}
		if user == nil {
			return ErrInvalidRefreshToken
		}
		sess, err := s.sessions.GetActiveByUserAndRefresh(ctx, user.ID, refreshToken)
		if err != nil {
			return err
		}
		if sess == nil {
			return ErrInvalidRefreshToken
		}
		accessToken, _, err := s.tokens.IssueAccess(user.ID, user.Username, user.Email)
		if err != nil {
			return err
		}
		if err := s.sessions.UpdateAccessToken(ctx, sess.ID, accessToken, time.Now().UTC()); err != nil {
			return err
		}
		userID = user.ID
		sessID = sess.ID
		pair = &TokenPair{
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
			TokenType:    "Bearer",
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logEvent(ctx, userID, "token_refresh", "session", fmt.Sprintf(`{"session_id":%q}`, sessID))
	return pair, nil
}

// Logout deactivates the calling session. sessionID comes from the
// authenticated request, never from the client. Logging out an already
// inactive or unknown session is a silent no-op.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		return s.sessions.Deactivate(ctx, sessionID)
	})
	if err != nil {
		return err
	}
	s.logEvent(ctx, 0, "logout", "session", fmt.Sprintf(`{"session_id":%q}`, sessionID))
	return nil
}

// ChangePassword replaces the authenticated user's hash and signs out every
// other active session of that user; the calling session stays valid. Any
// precondition failure leaves all state untouched.
func (s *AuthService) ChangePassword(ctx context.Context, user *userdomain.User, sessionID, oldPassword, newPassword, repeatNewPassword string) error {
	if newPassword != repeatNewPassword {
		return ErrPasswordMismatch
	}
	if oldPassword == newPassword {
		return ErrPasswordUnchanged
	}
	if s.hasher.Compare(user.HashedPassword, oldPassword) != nil {
		return ErrWrongPassword
	}
	hashed, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.users.UpdatePassword(ctx, user.ID, hashed, time.Now().UTC()); err != nil {
			return err
		}
		return s.sessions.DeactivateAllForUserExcept(ctx, user.ID, sessionID)
	})
	if err != nil {
		return err
	}
	s.logEvent(ctx, user.ID, "password_change", "user", fmt.Sprintf(`{"kept_session_id":%q}`, sessionID))
	return nil
}

// logEvent records an auth event, best-effort. No-op without an auditor.
// Call only after RunInTx has returned; inside it the audit INSERT would join
// the transaction and a failed insert would fail the whole unit of work.
func (s *AuthService) logEvent(ctx context.Context, userID int64, action, resource, metadata string) {
	if s.auditor == nil {
		return
	}
	s.auditor.LogEvent(ctx, userID, action, resource, metadata)
}
