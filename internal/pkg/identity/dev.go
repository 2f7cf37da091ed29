package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DevConfig defines the settings of the local HS256 token issuer
type DevConfig struct {
	SecretKey   string
	TokenIssuer string
	TokenTTL    time.Duration
}

// DevVerifier issues and verifies HS256 tokens. It stands in for Firebase when
// no credentials are configured.
type DevVerifier struct {
	config DevConfig
}

// NewDevVerifier creates a new DevVerifier
func NewDevVerifier(config DevConfig) *DevVerifier {
	if config.TokenTTL <= 0 {
		config.TokenTTL = 24 * time.Hour
	}
	return &DevVerifier{config: config}
}

// DevClaims mirrors the subset of Firebase ID token claims the API relies on.
type DevClaims struct {
	Email         string `json:"email,omitempty"`
	EmailVerified bool   `json:"email_verified,omitempty"`
	Name          string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// Issue creates a signed token whose subject is uid.
func (v *DevVerifier) Issue(uid, email, name string) (string, error) {
	if uid == "" {
		return "", fmt.Errorf("uid is required")
	}

	now := time.Now()
	claims := &DevClaims{
		Email:         email,
		EmailVerified: email != "",
		Name:          name,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(v.config.TokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    v.config.TokenIssuer,
			Subject:   uid,
			ID:        uuid.New().String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(v.config.SecretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// VerifyIDToken validates a token produced by Issue.
func (v *DevVerifier) VerifyIDToken(_ context.Context, idToken string) (*Identity, error) {
	if idToken == "" {
		return nil, ErrTokenInvalid
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if v.config.TokenIssuer != "" {
		opts = append(opts, jwt.WithIssuer(v.config.TokenIssuer))
	}

	token, err := jwt.ParseWithClaims(idToken, &DevClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(v.config.SecretKey), nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	claims, ok := token.Claims.(*DevClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, ErrTokenInvalid
	}

	return &Identity{
		UID:           claims.Subject,
		Email:         claims.Email,
		EmailVerified: claims.EmailVerified,
		Name:          claims.Name,
	}, nil
}
