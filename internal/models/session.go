package models

import "time"

// User is the display identity stored alongside the token.
type User struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	ID    string `json:"id,omitempty"`
}

// Session is the authenticated identity passed to every data-fetching call.
type Session struct {
	Token     string    `json:"token"`
	User      User      `json:"user"`
	ExpiresAt time.Time `json:"expires_at,omitempty"` // zero for opaque tokens
}

// Expired reports whether the token's expiry has passed at now.
func (s *Session) Expired(now time.Time) bool {
	if s == nil {
		return true
	}
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// BearerHeader is the Authorization header value.
func (s *Session) BearerHeader() string {
	return "Bearer " + s.Token
}
