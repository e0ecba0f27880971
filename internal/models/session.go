package models

import "github.com/golang-jwt/jwt/v5"

// Session is the per-request aggregate every query receives explicitly.
// User already carries any profile and role override.
type Session struct {
	ID          string        `json:"id"`
	User        User          `json:"user"`
	Preferences PreferenceSet `json:"preferences"`
	Settings    AppSettings   `json:"settings"`
}

// SessionClaims is the signed session token payload.
type SessionClaims struct {
	SessionID string `json:"sid"`
	UserID    string `json:"uid"`
	jwt.RegisteredClaims
}

// SessionToken is returned when a session starts.
type SessionToken struct {
	Token     string  `json:"token"`
	ExpiresAt int64   `json:"expires_at"`
	Session   Session `json:"session"`
}
