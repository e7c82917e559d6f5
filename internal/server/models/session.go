package models

import "time"

// Session is a time-bounded authorization grant binding a bearer token to
// a user. A session is valid iff now < ExpiresAt and the row still exists;
// logout deletes all of the owner's rows.
type Session struct {
	ID        string
	UserID    string
	Token     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Valid reports whether the session has not yet expired at the given time.
func (s *Session) Valid(now time.Time) bool {
	return now.Before(s.ExpiresAt)
}
