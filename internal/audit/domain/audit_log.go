package domain

import "time"

// AuditLog represents one auth event. UserID 0 means the actor is unknown
// (e.g. a failed login).
type AuditLog struct {
	ID        string
	UserID    int64
	Action    string
	Resource  string
	IP        string
	Metadata  string
	CreatedAt time.Time
}
