package audit

import (
	"context"
	"errors"
	"testing"

	"session-auth-service/internal/audit/domain"
)

type mockAuditRepo struct {
	entries   []*domain.AuditLog
	createErr error
}

func (m *mockAuditRepo) Create(ctx context.Context, entry *domain.AuditLog) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.entries = append(m.entries, entry)
	return nil
}

func (m *mockAuditRepo) ListByUser(ctx context.Context, userID int64, limit, offset int32) ([]*domain.AuditLog, error) {
	return nil, nil
}

func TestLogger_LogEvent(t *testing.T) {
	repo := &mockAuditRepo{}
	l := NewLogger(repo, func(context.Context) string { return "10.1.2.3" })

	l.LogEvent(context.Background(), 7, "login", "session", `{"session_id":"s1"}`)

	if len(repo.entries) != 1 {
		t.Fatalf("want 1 entry, got %d", len(repo.entries))
	}
	e := repo.entries[0]
	if e.ID == "" {
		t.Error("entry ID should be set")
	}
	if e.UserID != 7 || e.Action != "login" || e.Resource != "session" {
		t.Errorf("entry = %+v", e)
	}
	if e.IP != "10.1.2.3" {
		t.Errorf("IP = %q, want extractor value", e.IP)
	}
	if e.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}
}

func TestLogger_NilIPExtractor(t *testing.T) {
	repo := &mockAuditRepo{}
	l := NewLogger(repo, nil)
	l.LogEvent(context.Background(), 0, "login_failure", "session", "")
	if len(repo.entries) != 1 {
		t.Fatalf("want 1 entry, got %d", len(repo.entries))
	}
	if repo.entries[0].IP != "unknown" {
		t.Errorf("IP = %q, want unknown", repo.entries[0].IP)
	}
}

func TestLogger_CreateErrorIsSwallowed(t *testing.T) {
	repo := &mockAuditRepo{createErr: errors.New("db down")}
	l := NewLogger(repo, nil)
	// Must not panic or surface the error.
	l.LogEvent(context.Background(), 1, "logout", "session", "")
	if len(repo.entries) != 0 {
		t.Error("no entry should be recorded on error")
	}
}
