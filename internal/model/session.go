package model

import "time"

// Session is one authenticated device/browser instance for a user. The token
// column stores the signed JWT issued at login; logout deletes the row by exact
// token match. Rows have no expiry of their own — the token carries it.
type Session struct {
	ID        int64     `json:"id"`
	Token     string    `json:"-"`
	UserID    int64     `json:"user_id"`
	Device    string    `json:"device,omitempty"`
	IPAddress string    `json:"ip_address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
