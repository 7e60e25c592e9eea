// Package otp issues and checks short-lived email verification codes. Codes
// live in memory only: each entry carries its own expiry checked on lookup,
// attempts are capped, and the table has a hard capacity with oldest-first
// eviction, so the map cannot grow without bound.
package otp

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"
)

const (
	codeTTL     = 15 * time.Minute
	maxAttempts = 5
	maxEntries  = 10_000
)

var (
	ErrCodeInvalid     = errors.New("code is invalid or has expired")
	ErrTooManyAttempts = errors.New("too many incorrect attempts")
)

type entry struct {
	code      string
	expiresAt time.Time
	attempts  int
	createdAt time.Time
}

// Store holds pending verification codes keyed by email. One code per email:
// issuing a new code replaces any pending one.
type Store struct {
	mu      sync.Mutex
	entries map[string]*entry
	cap     int
	ttl     time.Duration
	now     func() time.Time
}

func NewStore() *Store {
	return &Store{
		entries: make(map[string]*entry),
		cap:     maxEntries,
		ttl:     codeTTL,
		now:     time.Now,
	}
}

// Issue generates a 6-digit code for the email and returns it. Any previous
// pending code for the same email is replaced.
func (s *Store) Issue(email string) (string, error) {
	code, err := generateCode()
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if _, exists := s.entries[email]; !exists && len(s.entries) >= s.cap {
		s.evictOldestLocked()
	}
	s.entries[email] = &entry{
		code:      code,
		expiresAt: now.Add(s.ttl),
		createdAt: now,
	}
	return code, nil
}

// Verify checks the code for the email. The entry is deleted on success, on
// expiry, and after the attempt cap; a wrong code before the cap keeps the
// entry and bumps the counter.
func (s *Store) Verify(email, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[email]
	if !ok {
		return ErrCodeInvalid
	}
	if s.now().After(e.expiresAt) {
		delete(s.entries, email)
		return ErrCodeInvalid
	}

	if e.code != code {
		e.attempts++
		if e.attempts >= maxAttempts {
			delete(s.entries, email)
			return ErrTooManyAttempts
		}
		return ErrCodeInvalid
	}

	delete(s.entries, email)
	return nil
}

// Len reports the number of pending codes.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *Store) evictOldestLocked() {
	var oldestKey string
	var oldestAt time.Time
	for key, e := range s.entries {
		if oldestKey == "" || e.createdAt.Before(oldestAt) {
			oldestKey = key
			oldestAt = e.createdAt
		}
	}
	if oldestKey != "" {
		delete(s.entries, oldestKey)
	}
}

// generateCode returns a 6-digit numeric code (100000-999999).
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
