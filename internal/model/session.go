package model

import "time"

// Session is the server-side half of an admin login. The signed token handed to
// the browser carries Session.ID as its "jti"; the token is only honoured while
// this row exists and is active.
type Session struct {
	ID        string     `json:"id"`
	AdminID   string     `json:"adminId"`
	CreatedAt time.Time  `json:"createdAt"`
	ExpiresAt time.Time  `json:"expiresAt"`
	RevokedAt *time.Time `json:"revokedAt,omitempty"`
}

// Active reports whether the session can still authorize requests at now.
func (s *Session) Active(now time.Time) bool {
	return s.RevokedAt == nil && now.Before(s.ExpiresAt)
}
