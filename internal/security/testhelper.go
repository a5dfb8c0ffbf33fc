package security

import "time"

// testSecret is a fixed HMAC secret for unit tests only. Do not use in production.
const testSecret = "unit-test-signing-secret-0123456789"

// NewTestTokenProvider returns a TokenProvider signing HS256 with a fixed
// test secret. For unit tests only.
func NewTestTokenProvider() (*TokenProvider, error) {
	return NewTokenProvider([]byte(testSecret), "HS256", 15*time.Minute, 24*time.Hour)
}
