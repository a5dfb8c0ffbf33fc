package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken is returned when a token is malformed, has a bad
	// signature, or carries a claim set that does not match the fixed shape.
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken is returned when a token's signature is fine but its
	// expiry has passed. Callers that treat both identically may collapse
	// it into ErrInvalidToken.
	ErrExpiredToken = errors.New("expired token")
)

// Claims is the fixed claim shape carried by access and refresh tokens:
// {id, username, email, exp}. Access and refresh tokens differ only in
// expiry horizon.
type Claims struct {
	UserID   int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	jwt.RegisteredClaims
}

// TokenProvider issues and verifies HMAC-signed JWTs with a process-wide
// secret and a fixed algorithm (HS256, HS384, or HS512).
type TokenProvider struct {
	secret     []byte
	method     jwt.SigningMethod
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenProvider returns a TokenProvider signing with the given secret and
// algorithm identifier. A missing secret or a non-HMAC algorithm is a
// configuration error and fails here, never per request.
func NewTokenProvider(secret []byte, algorithm string, accessTTL, refreshTTL time.Duration) (*TokenProvider, error) {
	if len(secret) == 0 {
		return nil, errors.New("security: signing secret is empty")
	}
	method := jwt.GetSigningMethod(algorithm)
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, errors.New("security: algorithm must be HS256, HS384, or HS512")
	}
	return &TokenProvider{
		secret:     secret,
		method:     method,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}, nil
}

// IssueAccess issues a short-lived access token carrying {id, username, email}.
// Returns the compact token string and its expiry.
func (p *TokenProvider) IssueAccess(userID int64, username, email string) (string, time.Time, error) {
	return p.issue(userID, username, email, p.accessTTL)
}

// IssueRefresh issues a long-lived refresh token with the same claim shape.
func (p *TokenProvider) IssueRefresh(userID int64, username, email string) (string, time.Time, error) {
	return p.issue(userID, username, email, p.refreshTTL)
}

func (p *TokenProvider) issue(userID int64, username, email string, ttl time.Duration) (string, time.Time, error) {
	expiresAt := time.Now().UTC().Add(ttl)
	claims := Claims{
		UserID:   userID,
		Username: username,
		Email:    email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err := jwt.NewWithClaims(p.method, claims).SignedString(p.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

// Verify checks the token's signature and expiry and validates the claim
// shape. A payload missing any of id/username/email/exp, or carrying a wrong
// type, is rejected exactly like a signature failure; only an expired but
// otherwise valid token yields ErrExpiredToken.
func (p *TokenProvider) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return p.secret, nil
	}, jwt.WithValidMethods([]string{p.method.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.UserID <= 0 || claims.Username == "" || claims.Email == "" || claims.ExpiresAt == nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
