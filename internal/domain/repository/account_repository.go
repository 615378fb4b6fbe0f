// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"
	"fmt"
	"time"

	"authgate/internal/domain/entity"
	"authgate/internal/errors"

	"github.com/google/uuid"
)

// ErrAccountNotFound is returned when no account matches a lookup.
var ErrAccountNotFound = errors.New("account not found")

// Unique fields reported by DuplicateKeyError.
const (
	FieldEmail    = "email"
	FieldUsername = "username"
)

// DuplicateKeyError reports a unique-index violation raised by storage.
// Field is empty when the violated index could not be identified.
type DuplicateKeyError struct {
	Field      string
	Constraint string
	Err        error
}

func (e *DuplicateKeyError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("duplicate key (constraint %q)", e.Constraint)
	}

	return fmt.Sprintf("duplicate %s (constraint %q)", e.Field, e.Constraint)
}

func (e *DuplicateKeyError) Unwrap() error {
	return e.Err
}

// AccountRepository defines the persistence operations for accounts.
type AccountRepository interface {
	// FindByID retrieves a single account by its ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Account, error)

	// FindByEmailOrUsername returns any account holding either identifier.
	// Inputs must already be normalized.
	FindByEmailOrUsername(ctx context.Context, email, username string) (*entity.Account, error)

	// FindByEmail retrieves an account together with its password hash.
	FindByEmail(ctx context.Context, email string) (*entity.Account, error)

	// Create persists a new account. A unique-index violation is returned as *DuplicateKeyError.
	Create(ctx context.Context, account *entity.Account) error

	// UpdateLastLogin sets the last login timestamp of an account.
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}
