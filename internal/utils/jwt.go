package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	jwtSecret   []byte
	jwtIssuer   string
	jwtAudience string
)

// Claims are the access-token claims issued by the hosted auth provider.
// The subject is the user's UUID.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// UserID returns the token subject.
func (c *Claims) UserID() string {
	return c.Subject
}

func SetJWTSecret(secret string) {
	jwtSecret = []byte(secret)
}

// SetJWTExpectations restricts accepted tokens to an issuer and audience.
// Empty values disable the check.
func SetJWTExpectations(issuer, audience string) {
	jwtIssuer = issuer
	jwtAudience = audience
}

// ParseToken verifies an HS256 access token and returns its claims.
func ParseToken(tokenString string) (*Claims, error) {
	if len(jwtSecret) == 0 {
		return nil, errors.New("jwt secret not configured")
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired()}
	if jwtIssuer != "" {
		opts = append(opts, jwt.WithIssuer(jwtIssuer))
	}
	if jwtAudience != "" {
		opts = append(opts, jwt.WithAudience(jwtAudience))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return jwtSecret, nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return nil, fmt.Errorf("invalid subject: %w", err)
	}
	return claims, nil
}

// GenerateToken signs a token the way the auth provider does. Only used
// by tests and the dev-token CLI command.
func GenerateToken(subject, email string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Email: email,
		Role:  "authenticated",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    jwtIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	if jwtAudience != "" {
		claims.Audience = jwt.ClaimStrings{jwtAudience}
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(jwtSecret)
}
