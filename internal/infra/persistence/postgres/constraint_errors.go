package postgres

import (
	"authgate/internal/domain/repository"
	"authgate/internal/errors"
	"authgate/internal/infra/persistence/model"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// asDuplicateKeyError recognises unique-index violations from the pgx driver
// and from GORM's translated errors.
func asDuplicateKeyError(err error) (*repository.DuplicateKeyError, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return &repository.DuplicateKeyError{
			Field:      fieldForConstraint(pgErr.ConstraintName),
			Constraint: pgErr.ConstraintName,
			Err:        err,
		}, true
	}

	// TranslateError drops the constraint name, so the field stays unknown.
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return &repository.DuplicateKeyError{Err: err}, true
	}

	return nil, false
}

func fieldForConstraint(constraint string) string {
	switch constraint {
	case model.AccountEmailIndex:
		return repository.FieldEmail
	case model.AccountUsernameIndex:
		return repository.FieldUsername
	default:
		return ""
	}
}

func isNotNullConstraintViolation(err error) bool {
	var pgErr *pgconn.PgError

	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.NotNullViolation
}

func isCheckConstraintViolation(err error) bool {
	if errors.Is(err, gorm.ErrCheckConstraintViolated) {
		return true
	}

	var pgErr *pgconn.PgError

	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.CheckViolation
}
