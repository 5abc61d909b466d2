package auth

import "scholarvault/internal/domain/models"

// TokenVerifier defines the interface for session token inspection.
// This abstraction lets the session manager work the same whether or not
// signatures can be checked locally.
type TokenVerifier interface {
	// VerifyToken parses a token string and returns its claims.
	// Returns domain.ErrUnauthorized if the token is malformed, expired,
	// or (for verifying implementations) carries an invalid signature.
	VerifyToken(tokenString string) (*models.SessionClaims, error)

	// Close releases any resources held by the verifier (e.g., HTTP connections for JWKS).
	Close() error
}
