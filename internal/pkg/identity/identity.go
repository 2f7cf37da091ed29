// Package identity verifies bearer credentials issued by the external identity provider.
package identity

import (
	"context"
	"errors"
	"strings"
)

var (
	ErrTokenInvalid  = errors.New("invalid token")
	ErrTokenExpired  = errors.New("token expired")
	ErrInvalidFormat = errors.New("invalid authorization header format")
)

// Identity is the verified subject of an ID token.
type Identity struct {
	UID           string
	Email         string
	EmailVerified bool
	Name          string
}

// Verifier verifies an ID token and returns the identity it was issued for.
type Verifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*Identity, error)
}

const bearerPrefix = "Bearer "

// ExtractBearerToken extracts the token from an Authorization header.
// The "Bearer " prefix is required.
func ExtractBearerToken(authHeader string) (string, error) {
	if !strings.HasPrefix(authHeader, bearerPrefix) {
		return "", ErrInvalidFormat
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, bearerPrefix))
	if token == "" {
		return "", ErrInvalidFormat
	}
	return token, nil
}

func claimString(claims map[string]interface{}, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}

func claimBool(claims map[string]interface{}, key string) bool {
	v, _ := claims[key].(bool)
	return v
}
