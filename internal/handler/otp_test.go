package handler

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mkarpenko/campushub/internal/database"
	"github.com/mkarpenko/campushub/internal/otp"
	"github.com/mkarpenko/campushub/internal/store"
)

func newOTPTestServer(t *testing.T) (*httptest.Server, *otp.Store, *store.UserStore) {
	t.Helper()

	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	users := store.NewUserStore(db)
	codes := otp.NewStore()
	h := NewOTPHandler(codes, users, nil, slog.New(slog.DiscardHandler))

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/otp/request", h.Request)
	mux.HandleFunc("POST /api/otp/verify", h.Verify)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, codes, users
}

func TestOTPRequestNoEnumeration(t *testing.T) {
	srv, codes, users := newOTPTestServer(t)

	if _, err := users.Create("alice", "alice@example.com", "hash"); err != nil {
		t.Fatalf("create user: %v", err)
	}

	// Registered and unregistered emails get identical acknowledgements.
	var bodies [2]map[string]any
	for i, email := range []string{"alice@example.com", "stranger@example.com"} {
		resp := postJSON(t, srv.URL+"/api/otp/request", map[string]string{"email": email})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("request status = %d, want 200", resp.StatusCode)
		}
		bodies[i] = decodeBody(t, resp)
	}
	if bodies[0]["message"] != bodies[1]["message"] {
		t.Errorf("responses differ: %v vs %v", bodies[0], bodies[1])
	}

	// Only the registered email actually got a code.
	if codes.Len() != 1 {
		t.Errorf("pending codes = %d, want 1", codes.Len())
	}
}

func TestOTPVerifyMarksEmailVerified(t *testing.T) {
	srv, codes, users := newOTPTestServer(t)

	created, err := users.Create("alice", "alice@example.com", "hash")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	code, err := codes.Issue("alice@example.com")
	if err != nil {
		t.Fatalf("issue code: %v", err)
	}

	resp := postJSON(t, srv.URL+"/api/otp/verify", map[string]string{
		"email": "alice@example.com", "code": code,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("verify status = %d, want 200", resp.StatusCode)
	}
	resp.Body.Close()

	u, err := users.GetByID(created.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if !u.EmailVerified {
		t.Error("email_verified should be true after OTP verify")
	}
}

func TestOTPVerifyBadCode(t *testing.T) {
	srv, codes, _ := newOTPTestServer(t)

	code, err := codes.Issue("alice@example.com")
	if err != nil {
		t.Fatalf("issue code: %v", err)
	}
	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}

	resp := postJSON(t, srv.URL+"/api/otp/verify", map[string]string{
		"email": "alice@example.com", "code": wrong,
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("verify status = %d, want 400", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["kind"] != "code_invalid" {
		t.Errorf("kind = %v, want code_invalid", body["kind"])
	}
}

func TestOTPVerifyMissingFields(t *testing.T) {
	srv, _, _ := newOTPTestServer(t)

	resp := postJSON(t, srv.URL+"/api/otp/verify", map[string]string{"email": "a@example.com"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["kind"] != "validation_error" {
		t.Errorf("kind = %v, want validation_error", body["kind"])
	}
}
