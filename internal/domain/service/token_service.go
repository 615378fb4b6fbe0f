package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenSubject is the identity a session token is issued for.
type TokenSubject struct {
	ID       uuid.UUID
	Username string
	Email    string
}

// Claims defines the custom claims carried by session tokens.
type Claims struct {
	AccountID uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	jwt.RegisteredClaims
}

// Identity returns the subject encoded in the claims.
func (c *Claims) Identity() TokenSubject {
	return TokenSubject{
		ID:       c.AccountID,
		Username: c.Username,
		Email:    c.Email,
	}
}

// TokenService defines the interface for issuing and validating session tokens.
type TokenService interface {
	// Issue signs a token for the subject using the configured TTL.
	Issue(subject TokenSubject) (string, error)

	// IssueWithTTL signs a token for the subject that expires after ttl.
	IssueWithTTL(subject TokenSubject, ttl time.Duration) (string, error)

	// Validate checks signature and expiry and returns the claims.
	Validate(tokenString string) (*Claims, error)

	// TTL returns the configured token lifetime.
	TTL() time.Duration
}
