package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	auditdomain "session-auth-service/internal/audit/domain"
	"session-auth-service/internal/server/middleware"
	userdomain "session-auth-service/internal/user/domain"
)

type fakeUsers struct {
	mu          sync.Mutex
	byID        map[int64]*userdomain.User
	failNextTx  bool
	deactivated []int64
}

func newFakeUsers(users ...*userdomain.User) *fakeUsers {
	f := &fakeUsers{byID: make(map[int64]*userdomain.User)}
	for _, u := range users {
		cp := *u
		f.byID[u.ID] = &cp
	}
	return f
}

func (f *fakeUsers) GetByID(_ context.Context, id int64) (*userdomain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.byID[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeUsers) GetActiveByIdentifier(context.Context, string) (*userdomain.User, error) {
	return nil, nil
}

func (f *fakeUsers) GetActiveByClaims(context.Context, int64, string, string) (*userdomain.User, error) {
	return nil, nil
}

func (f *fakeUsers) Create(context.Context, *userdomain.User) error { return nil }

func (f *fakeUsers) UpdatePassword(context.Context, int64, string, time.Time) error { return nil }

func (f *fakeUsers) Deactivate(_ context.Context, id int64, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNextTx {
		return errors.New("store down")
	}
	if u, ok := f.byID[id]; ok {
		u.IsActive = false
	}
	f.deactivated = append(f.deactivated, id)
	return nil
}

type passTx struct{}

func (passTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// identityStub injects an authenticated identity, standing in for the real
// auth middleware.
func identityStub(u *userdomain.User, sessionID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := middleware.WithIdentity(c.Request.Context(), &middleware.Identity{
			User:      u,
			SessionID: sessionID,
		})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

type fakeAuditLogs struct {
	entries []*auditdomain.AuditLog
}

func (f *fakeAuditLogs) Create(_ context.Context, a *auditdomain.AuditLog) error {
	f.entries = append(f.entries, a)
	return nil
}

func (f *fakeAuditLogs) ListByUser(_ context.Context, userID int64, limit, offset int32) ([]*auditdomain.AuditLog, error) {
	var out []*auditdomain.AuditLog
	for _, e := range f.entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	if int(offset) >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if int(limit) < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func newRouter(users *fakeUsers, auth gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(users, &fakeAuditLogs{}, passTx{}, nil).Register(r, auth)
	return r
}

func TestMe(t *testing.T) {
	u := &userdomain.User{ID: 5, Username: "alice", Email: "alice@example.com", HashedPassword: "x", IsActive: true}
	r := newRouter(newFakeUsers(u), identityStub(u, "sess-1"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/user", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp["id"] != float64(5) || resp["username"] != "alice" || resp["is_active"] != true {
		t.Errorf("body = %v", resp)
	}
	if _, ok := resp["hashed_password"]; ok {
		t.Error("response leaks password hash")
	}
}

func TestDeactivate(t *testing.T) {
	u := &userdomain.User{ID: 5, Username: "alice", Email: "alice@example.com", IsActive: true}
	users := newFakeUsers(u)
	r := newRouter(users, identityStub(u, "sess-1"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/user/delete", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp["is_active"] != false {
		t.Errorf("is_active = %v, want false", resp["is_active"])
	}

	stored, _ := users.GetByID(context.Background(), 5)
	if stored.IsActive {
		t.Error("user still active in store")
	}
}

func TestDeactivateStoreFailure(t *testing.T) {
	u := &userdomain.User{ID: 5, Username: "alice", Email: "alice@example.com", IsActive: true}
	users := newFakeUsers(u)
	users.failNextTx = true
	r := newRouter(users, identityStub(u, "sess-1"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/user/delete", nil))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
}

func TestAuditLogs(t *testing.T) {
	u := &userdomain.User{ID: 5, Username: "alice", Email: "alice@example.com", IsActive: true}
	logs := &fakeAuditLogs{entries: []*auditdomain.AuditLog{
		{ID: "e1", UserID: 5, Action: "login", Resource: "session", IP: "10.0.0.1", CreatedAt: time.Now().UTC()},
		{ID: "e2", UserID: 5, Action: "logout", Resource: "session", IP: "10.0.0.1", CreatedAt: time.Now().UTC()},
		{ID: "e3", UserID: 9, Action: "login", Resource: "session", IP: "10.0.0.2", CreatedAt: time.Now().UTC()},
	}}
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(newFakeUsers(u), logs, passTx{}, nil).Register(r, identityStub(u, "sess-1"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/user/audit-logs?limit=10", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp struct {
		AuditLogs []map[string]any `json:"audit_logs"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.AuditLogs) != 2 {
		t.Fatalf("entries = %d, want only the caller's 2", len(resp.AuditLogs))
	}
}

func TestUserRoutesRequireIdentity(t *testing.T) {
	u := &userdomain.User{ID: 5, Username: "alice", IsActive: true}
	// No identity middleware at all: handlers must refuse, not panic.
	r := newRouter(newFakeUsers(u), func(c *gin.Context) { c.Next() })

	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodGet, "/user", nil),
		httptest.NewRequest(http.MethodDelete, "/user/delete", nil),
	} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s %s status = %d, want 401", req.Method, req.URL.Path, w.Code)
		}
	}
}
