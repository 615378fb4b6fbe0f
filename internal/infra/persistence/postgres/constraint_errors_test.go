package postgres

import (
	"testing"

	"authgate/internal/domain/repository"
	"authgate/internal/infra/persistence/model"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestAsDuplicateKeyError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantOK    bool
		wantField string
	}{
		{
			name:      "email index",
			err:       errors.Wrap(&pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: model.AccountEmailIndex}, "insert"),
			wantOK:    true,
			wantField: repository.FieldEmail,
		},
		{
			name:      "username index",
			err:       &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: model.AccountUsernameIndex},
			wantOK:    true,
			wantField: repository.FieldUsername,
		},
		{
			name:      "unknown index",
			err:       &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "accounts_pkey"},
			wantOK:    true,
			wantField: "",
		},
		{
			name:      "translated by gorm",
			err:       gorm.ErrDuplicatedKey,
			wantOK:    true,
			wantField: "",
		},
		{
			name:   "other pg error",
			err:    &pgconn.PgError{Code: pgerrcode.NotNullViolation},
			wantOK: false,
		},
		{
			name:   "plain error",
			err:    errors.New("connection refused"),
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dupErr, ok := asDuplicateKeyError(tt.err)
			assert.Equal(t, tt.wantOK, ok)
			if !tt.wantOK {
				assert.Nil(t, dupErr)

				return
			}
			require.NotNil(t, dupErr)
			assert.Equal(t, tt.wantField, dupErr.Field)
			assert.True(t, errors.Is(dupErr, tt.err))
		})
	}
}

func TestConstraintClassifiers(t *testing.T) {
	assert.True(t, isNotNullConstraintViolation(&pgconn.PgError{Code: pgerrcode.NotNullViolation}))
	assert.False(t, isNotNullConstraintViolation(errors.New("boom")))
	assert.True(t, isCheckConstraintViolation(&pgconn.PgError{Code: pgerrcode.CheckViolation}))
	assert.True(t, isCheckConstraintViolation(gorm.ErrCheckConstraintViolated))
	assert.False(t, isCheckConstraintViolation(errors.New("boom")))
}
