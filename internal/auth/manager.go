package auth

import (
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/mkarpenko/campushub/internal/model"
	"github.com/mkarpenko/campushub/internal/store"
)

const bcryptCost = 10

// Manager orchestrates registration, authentication, session issuance, and
// session teardown over the credential and session stores.
type Manager struct {
	users    *store.UserStore
	sessions *store.SessionStore
	tokens   *TokenManager
	logger   *slog.Logger
}

func NewManager(users *store.UserStore, sessions *store.SessionStore, tokens *TokenManager, logger *slog.Logger) *Manager {
	return &Manager{
		users:    users,
		sessions: sessions,
		tokens:   tokens,
		logger:   logger,
	}
}

// LoginResult is the outcome of a successful Authenticate call. ActiveSessions
// lists sessions that already existed before this login; it is advisory only.
type LoginResult struct {
	Token          string
	User           *model.User
	ActiveSessions []model.Session
}

// Register creates a new account. The password is bcrypt-hashed before it
// touches the store; the stored hash is never returned to callers.
func (m *Manager) Register(username, email, password string) (*model.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	// The password is checked trimmed but hashed as given.
	if username == "" || email == "" || strings.TrimSpace(password) == "" {
		return nil, fmt.Errorf("%w: username, email, and password are required", ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := m.users.Create(username, email, string(hash))
	if err != nil {
		if store.IsUniqueViolation(err) {
			return nil, ErrDuplicateAccount
		}
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	m.logger.Info("account registered", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// Authenticate verifies credentials and issues a fresh session. If other
// sessions already exist for the user they are reported in the result, but a
// new session is created regardless — multiple concurrent sessions per user
// are allowed, and the listing is informational only. The existing-sessions
// read and the insert are not transactional; a racing login just yields one
// more session, which is fine under this model.
func (m *Manager) Authenticate(username, password, device, ip string) (*LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", ErrValidation)
	}

	user, err := m.users.GetByUsername(username)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := m.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	existing, err := m.sessions.ListByUserID(user.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	if len(existing) > 0 {
		m.logger.Info("login with existing sessions", "user_id", user.ID, "active", len(existing))
	}

	if _, err := m.sessions.Create(user.ID, token, device, ip); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	return &LoginResult{
		Token:          token,
		User:           user,
		ActiveSessions: existing,
	}, nil
}

// Terminate deletes the session matching the token. A token with no matching
// row — already logged out, never valid, or empty — is still success; only a
// store failure errors.
func (m *Manager) Terminate(token string) error {
	if token == "" {
		return nil
	}
	if err := m.sessions.DeleteByToken(token); err != nil {
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return nil
}

// Authorize resolves a token to its user. Only the signature and the embedded
// expiry are checked; the session store is not consulted, so a terminated
// session's token stays usable until it expires on its own.
func (m *Manager) Authorize(token string) (*model.User, error) {
	userID, err := m.tokens.Verify(token)
	if err != nil {
		return nil, err
	}

	user, err := m.users.GetByID(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	if user == nil {
		return nil, ErrUnauthenticated
	}
	return user, nil
}
