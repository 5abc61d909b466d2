package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"scholarvault/internal/domain"
	"scholarvault/internal/domain/models"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

// JWKSVerifier implements TokenVerifier using the API's published JWKS.
type JWKSVerifier struct {
	jwks   keyfunc.Keyfunc
	logger *slog.Logger
}

// NewJWKSVerifier creates a verifier that fetches public keys from jwksURL.
// The JWKS keys are cached and refreshed based on HTTP cache headers.
func NewJWKSVerifier(ctx context.Context, jwksURL string, logger *slog.Logger) (*JWKSVerifier, error) {
	if jwksURL == "" {
		return nil, errors.New("JWKS URL cannot be empty")
	}

	jwks, err := keyfunc.NewDefaultCtx(ctx, []string{jwksURL})
	if err != nil {
		return nil, fmt.Errorf("failed to create JWKS client: %w", err)
	}

	logger.Info("JWT verifier initialized", "jwks_url", jwksURL)
	return newJWKSVerifier(jwks, logger), nil
}

func newJWKSVerifier(jwks keyfunc.Keyfunc, logger *slog.Logger) *JWKSVerifier {
	return &JWKSVerifier{jwks: jwks, logger: logger}
}

// VerifyToken validates the signature and expiry and extracts the claims.
func (v *JWKSVerifier) VerifyToken(tokenString string) (*models.SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.SessionClaims{}, v.jwks.Keyfunc,
		jwt.WithValidMethods([]string{"RS256", "ES256"}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		v.logger.Debug("token verification failed", "error", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	if !token.Valid {
		return nil, domain.ErrUnauthorized
	}

	claims, ok := token.Claims.(*models.SessionClaims)
	if !ok {
		v.logger.Error("failed to extract claims from token")
		return nil, domain.ErrUnauthorized
	}
	if claims.Subject == "" {
		v.logger.Debug("token missing subject claim")
		return nil, fmt.Errorf("%w: token has no subject", domain.ErrUnauthorized)
	}

	return claims, nil
}

// Close is a no-op; keyfunc v3 manages its own refresh goroutine through
// the context passed at construction.
func (v *JWKSVerifier) Close() error {
	v.logger.Info("JWT verifier closed")
	return nil
}

// ClaimsReader implements TokenVerifier without a signature check. The API
// server is the trust boundary; the client only needs the user id and the
// expiry to decide whether a stored token is worth presenting.
type ClaimsReader struct {
	parser    *jwt.Parser
	validator *jwt.Validator
	logger    *slog.Logger
}

func NewClaimsReader(logger *slog.Logger) *ClaimsReader {
	return &ClaimsReader{
		parser:    jwt.NewParser(),
		validator: jwt.NewValidator(jwt.WithExpirationRequired()),
		logger:    logger,
	}
}

// VerifyToken decodes the claims and enforces exp.
func (r *ClaimsReader) VerifyToken(tokenString string) (*models.SessionClaims, error) {
	claims := &models.SessionClaims{}
	if _, _, err := r.parser.ParseUnverified(tokenString, claims); err != nil {
		r.logger.Debug("token parse failed", "error", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}

	// ParseUnverified skips claim validation
	if err := r.validator.Validate(claims); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: token has no subject", domain.ErrUnauthorized)
	}
	return claims, nil
}

func (r *ClaimsReader) Close() error { return nil }
