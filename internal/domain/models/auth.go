package models

import "github.com/golang-jwt/jwt/v5"

// SessionClaims represents the JWT claims issued by the ScholarVault API
// on login: the user id in sub, the email and the expiry.
type SessionClaims struct {
	jwt.RegisteredClaims        // Standard JWT claims (sub, exp, iat, ...)
	Email                string `json:"email"`
}

// GetUserID returns the user ID from the JWT subject claim.
func (c *SessionClaims) GetUserID() string {
	return c.Subject
}
