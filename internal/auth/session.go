// Package auth implements the session controller: sign-in, registration,
// password reset, profile update and sign-out against a hosted identity
// provider, plus a session-change subscription surface.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session is the authenticated identity of the current user. It is owned
// exclusively by the Controller; everything else only reads it.
type Session struct {
	UID          string    `json:"uid"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"display_name"`
	IDToken      string    `json:"id_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at,omitzero"`
}

// Clone returns a copy of the session, or nil for a nil receiver.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}

// IDClaims is the subset of ID-token claims the client cares about.
type IDClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	jwt.RegisteredClaims
}

// claimsFromToken extracts claims from a provider-issued ID token without
// verifying the signature. The token came straight from the provider over
// TLS; only the claim payload is needed here.
func claimsFromToken(idToken string) (*IDClaims, error) {
	parser := jwt.NewParser()
	claims := &IDClaims{}
	if _, _, err := parser.ParseUnverified(idToken, claims); err != nil {
		return nil, fmt.Errorf("parse id token: %w", err)
	}
	if claims.UserID == "" {
		claims.UserID = claims.Subject
	}
	return claims, nil
}
