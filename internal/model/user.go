package model

import "time"

// User is a registered portal account. PasswordHash never crosses the HTTP
// boundary — it is excluded from JSON entirely.
type User struct {
	ID            int64     `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"-"`
	EmailVerified bool      `json:"email_verified"`
	CreatedAt     time.Time `json:"created_at"`
}
