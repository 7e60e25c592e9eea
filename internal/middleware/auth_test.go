package middleware

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mkarpenko/campushub/internal/auth"
	"github.com/mkarpenko/campushub/internal/database"
	"github.com/mkarpenko/campushub/internal/store"
)

func setupAuthMiddleware(t *testing.T) (*auth.Manager, http.Handler, *sql.DB) {
	t.Helper()

	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	users := store.NewUserStore(db)
	sessions := store.NewSessionStore(db)
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	manager := auth.NewManager(users, sessions, tokens, slog.New(slog.DiscardHandler))

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth.UserID(r.Context()) == 0 {
			t.Error("identity missing from request context")
		}
		w.WriteHeader(http.StatusOK)
	})
	return manager, RequireAuth(manager)(next), db
}

func TestRequireAuthValidCookie(t *testing.T) {
	manager, handler, _ := setupAuthMiddleware(t)

	if _, err := manager.Register("alice", "alice@example.com", "pw"); err != nil {
		t.Fatalf("register: %v", err)
	}
	res, err := manager.Authenticate("alice", "pw", "d", "ip")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: res.Token})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestRequireAuthMissingCookie(t *testing.T) {
	_, handler, _ := setupAuthMiddleware(t)

	req := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestRequireAuthBadToken(t *testing.T) {
	_, handler, _ := setupAuthMiddleware(t)

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "garbage"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestRequireAuthStoreFailure(t *testing.T) {
	manager, handler, db := setupAuthMiddleware(t)

	if _, err := manager.Register("alice", "alice@example.com", "pw"); err != nil {
		t.Fatalf("register: %v", err)
	}
	res, err := manager.Authenticate("alice", "pw", "d", "ip")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}

	// The token is still signature-valid, but the user lookup behind it
	// now fails. That is a server-side outage, not a bad credential.
	db.Close()

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: res.Token})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["kind"] != "store_unavailable" {
		t.Errorf("kind = %q, want %q", body["kind"], "store_unavailable")
	}
}
