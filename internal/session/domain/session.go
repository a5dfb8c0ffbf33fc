package domain

import "time"

// Session is one server-side ledger row per login. RefreshToken is fixed at
// creation for the session's whole life; AccessToken is replaced in place on
// refresh and must always be the most recently issued one for this session.
// IsActive false is terminal; rows are never physically deleted.
type Session struct {
	ID           string
	UserID       int64
	AccessToken  string
	RefreshToken string
	IsActive     bool
	LastUpdate   time.Time
}
