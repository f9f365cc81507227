package model

import "time"

// Session is a server side login. ID is the hex SHA-256 of the cookie token,
// so a leaked table cannot be replayed as cookies.
type Session struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	ExpiresAt time.Time `db:"expires_at"`
	CreatedAt time.Time `db:"created_at"`
}

func (s *Session) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
