package domain

import "time"

// Session is the server-side record behind the browser's auth-token cookie.
// UpstreamToken is forwarded to the task service and never leaves the server.
type Session struct {
	ID            string    `json:"id"`
	UserID        int64     `json:"user_id"`
	Username      string    `json:"username"`
	UpstreamToken string    `json:"upstream_token,omitempty"`
	Remember      bool      `json:"remember"`
	CreatedAt     time.Time `json:"created_at"`
	ExpiresAt     time.Time `json:"expires_at"`
}

func (s *Session) IsExpired(reference time.Time) bool {
	if s == nil {
		return true
	}
	if reference.IsZero() {
		reference = time.Now()
	}
	return !s.ExpiresAt.After(reference)
}

// Identity returns the user the session belongs to.
func (s *Session) Identity() Identity {
	if s == nil {
		return Identity{}
	}
	return Identity{ID: s.UserID, Username: s.Username}
}
