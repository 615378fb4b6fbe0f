// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"
	"time"

	"authgate/internal/domain/entity"

	"github.com/google/uuid"
)

// --- Input DTOs ---

// SignupInput defines the data required to register a new account.
type SignupInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string // optional
	LastName  string // optional
}

// LoginInput defines the data required to log in.
type LoginInput struct {
	Email    string
	Password string
}

// --- Output DTOs ---

// AccountView is the only account shape that leaves the service.
type AccountView struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
}

// NewAccountView whitelists the public fields of an account.
func NewAccountView(account *entity.Account) AccountView {
	return AccountView{
		ID:       account.ID,
		Username: account.Username,
		Email:    account.Email,
	}
}

// AuthOutput is returned by a successful signup or login.
type AuthOutput struct {
	Account  AccountView
	Token    string
	TokenTTL time.Duration
}

// AuthUsecase defines the credential operations the delivery layer depends on.
type AuthUsecase interface {
	// Signup registers a new account and issues a session token.
	Signup(ctx context.Context, input SignupInput) (*AuthOutput, error)

	// Login verifies credentials, records the login and issues a session token.
	Login(ctx context.Context, input LoginInput) (*AuthOutput, error)

	// Authenticate resolves a session token to the account it was issued for.
	Authenticate(ctx context.Context, token string) (*AccountView, error)
}
