package auth

import (
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

func TestTokenIssueVerifyRoundTrip(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)

	token, err := tm.Issue(42)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	if token == "" {
		t.Fatal("issued token is empty")
	}

	userID, err := tm.Verify(token)
	if err != nil {
		t.Fatalf("verify token: %v", err)
	}
	if userID != 42 {
		t.Errorf("user id = %d, want 42", userID)
	}
}

func TestTokenVerifyEmpty(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)

	if _, err := tm.Verify(""); err != ErrUnauthenticated {
		t.Errorf("err = %v, want ErrUnauthenticated", err)
	}
}

func TestTokenVerifyGarbage(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)

	if _, err := tm.Verify("not.a.token"); err != ErrUnauthenticated {
		t.Errorf("err = %v, want ErrUnauthenticated", err)
	}
}

func TestTokenVerifyWrongSecret(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)
	other := NewTokenManager("other-secret", time.Hour)

	token, err := tm.Issue(1)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	if _, err := other.Verify(token); err != ErrUnauthenticated {
		t.Errorf("err = %v, want ErrUnauthenticated", err)
	}
}

func TestTokenVerifyExpired(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)
	tm.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, err := tm.Issue(1)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	if _, err := NewTokenManager("test-secret", time.Hour).Verify(token); err != ErrUnauthenticated {
		t.Errorf("err = %v, want ErrUnauthenticated", err)
	}
}

func TestTokenVerifyRejectsUnsignedAlg(t *testing.T) {
	claims := jwt.RegisteredClaims{
		Subject:   "1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, claims)
	raw, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none token: %v", err)
	}

	tm := NewTokenManager("test-secret", time.Hour)
	if _, err := tm.Verify(raw); err != ErrUnauthenticated {
		t.Errorf("err = %v, want ErrUnauthenticated", err)
	}
}

func TestTokenDefaultTTL(t *testing.T) {
	tm := NewTokenManager("test-secret", 0)
	if tm.ttl != time.Hour {
		t.Errorf("ttl = %v, want 1h", tm.ttl)
	}
}

func TestTokenIssueEmptySecret(t *testing.T) {
	tm := NewTokenManager("", time.Hour)
	if _, err := tm.Issue(1); err == nil {
		t.Fatal("expected error with empty secret")
	}
}
