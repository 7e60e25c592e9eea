package store

import (
	"testing"

	"github.com/mkarpenko/campushub/internal/database"
)

func setupSessionTestDB(t *testing.T) (*SessionStore, *UserStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewSessionStore(db), NewUserStore(db)
}

func createTestUser(t *testing.T, us *UserStore) int64 {
	t.Helper()
	u, err := us.Create("alice", "alice@example.com", "hash")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u.ID
}

func TestSessionCreateAndGet(t *testing.T) {
	ss, us := setupSessionTestDB(t)
	userID := createTestUser(t, us)

	created, err := ss.Create(userID, "token-1", "firefox", "10.0.0.1")
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if created.UserID != userID {
		t.Errorf("user_id = %d, want %d", created.UserID, userID)
	}
	if created.Device != "firefox" {
		t.Errorf("device = %q, want %q", created.Device, "firefox")
	}

	got, err := ss.GetByToken("token-1")
	if err != nil {
		t.Fatalf("get by token: %v", err)
	}
	if got == nil || got.ID != created.ID {
		t.Fatalf("got %+v, want session %d", got, created.ID)
	}
}

func TestSessionGetByTokenNotFound(t *testing.T) {
	ss, _ := setupSessionTestDB(t)

	got, err := ss.GetByToken("missing")
	if err != nil {
		t.Fatalf("get by token: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for unknown token, got %+v", got)
	}
}

func TestSessionListByUserID(t *testing.T) {
	ss, us := setupSessionTestDB(t)
	userID := createTestUser(t, us)

	for _, token := range []string{"t1", "t2", "t3"} {
		if _, err := ss.Create(userID, token, "device", "ip"); err != nil {
			t.Fatalf("create session %s: %v", token, err)
		}
	}

	sessions, err := ss.ListByUserID(userID)
	if err != nil {
		t.Fatalf("list sessions: %v", err)
	}
	if len(sessions) != 3 {
		t.Fatalf("sessions = %d, want 3", len(sessions))
	}
	// Oldest first.
	if sessions[0].Token != "t1" || sessions[2].Token != "t3" {
		t.Errorf("sessions out of order: %q, %q, %q", sessions[0].Token, sessions[1].Token, sessions[2].Token)
	}
}

func TestSessionDeleteByToken(t *testing.T) {
	ss, us := setupSessionTestDB(t)
	userID := createTestUser(t, us)

	if _, err := ss.Create(userID, "token-1", "device", "ip"); err != nil {
		t.Fatalf("create session: %v", err)
	}

	if err := ss.DeleteByToken("token-1"); err != nil {
		t.Fatalf("delete session: %v", err)
	}

	got, err := ss.GetByToken("token-1")
	if err != nil {
		t.Fatalf("get by token: %v", err)
	}
	if got != nil {
		t.Error("session should be gone after delete")
	}

	// Deleting again is a no-op.
	if err := ss.DeleteByToken("token-1"); err != nil {
		t.Fatalf("second delete: %v", err)
	}
}

func TestSessionCountByUserID(t *testing.T) {
	ss, us := setupSessionTestDB(t)
	userID := createTestUser(t, us)

	count, err := ss.CountByUserID(userID)
	if err != nil {
		t.Fatalf("count sessions: %v", err)
	}
	if count != 0 {
		t.Errorf("count = %d, want 0", count)
	}

	if _, err := ss.Create(userID, "t1", "d", "ip"); err != nil {
		t.Fatalf("create session: %v", err)
	}
	if _, err := ss.Create(userID, "t2", "d", "ip"); err != nil {
		t.Fatalf("create session: %v", err)
	}

	count, err = ss.CountByUserID(userID)
	if err != nil {
		t.Fatalf("count sessions: %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
}
