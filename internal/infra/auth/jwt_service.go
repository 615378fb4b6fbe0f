package auth

import (
	"strings"
	"time"

	"authgate/config"
	"authgate/internal/domain/service"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ErrMissingSecret is returned at construction when no signing secret is configured.
var ErrMissingSecret = errors.New("jwt signing secret must be provided")

// jwtService is a concrete implementation of the TokenService interface using HS256 JWTs.
type jwtService struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewJWTService refuses to build a signer without a secret.
func NewJWTService(cfg *config.Config) (service.TokenService, error) {
	if cfg == nil || strings.TrimSpace(cfg.Auth.Secret) == "" {
		return nil, ErrMissingSecret
	}

	ttl := cfg.Auth.TokenTTL
	if ttl <= 0 {
		ttl = config.DefaultTokenTTL
	}

	return &jwtService{
		secret: []byte(cfg.Auth.Secret),
		issuer: cfg.Env.ServiceName,
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// Issue signs a token for the subject using the configured TTL.
func (s *jwtService) Issue(subject service.TokenSubject) (string, error) {
	return s.IssueWithTTL(subject, s.ttl)
}

// IssueWithTTL signs a token for the subject that expires after ttl.
func (s *jwtService) IssueWithTTL(subject service.TokenSubject, ttl time.Duration) (string, error) {
	now := s.now()
	claims := service.Claims{
		AccountID: subject.ID,
		Username:  subject.Username,
		Email:     subject.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			Subject:   subject.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", errors.Wrap(err, "failed to sign token")
	}

	return signed, nil
}

// Validate checks signature, algorithm and expiry and returns the claims.
func (s *jwtService) Validate(tokenString string) (*service.Claims, error) {
	claims := &service.Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(_ *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to validate token")
	}
	if !token.Valid {
		return nil, errors.New("token is not valid")
	}
	if claims.AccountID == uuid.Nil || claims.Subject != claims.AccountID.String() {
		return nil, errors.New("token subject does not match account id")
	}

	return claims, nil
}

// TTL returns the configured token lifetime.
func (s *jwtService) TTL() time.Duration {
	return s.ttl
}
