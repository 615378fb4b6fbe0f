package validator

import (
	"strings"
	"testing"

	domainerrors "authgate/internal/domain/errors"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signupPayload struct {
	Username  string `json:"username" validate:"min=3,max=20"`
	Email     string `json:"email" validate:"email"`
	Password  string `json:"password" validate:"min=6,maxbytes=72"`
	FirstName string `json:"firstName,omitempty" validate:"omitempty,min=2,max=50"`
	Nickname  string `json:"nickname" validate:"required"`
}

func validPayload() signupPayload {
	return signupPayload{
		Username: "jane_doe",
		Email:    "jane@x.com",
		Password: "secret1",
		Nickname: "jd",
	}
}

func TestValidate_Valid(t *testing.T) {
	require.NoError(t, New().Validate(validPayload()))
}

func TestValidate_FieldMessages(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(p *signupPayload)
		wantField string
		wantMsg   string
	}{
		{
			name:      "short username",
			mutate:    func(p *signupPayload) { p.Username = "ab" },
			wantField: "username",
			wantMsg:   "Username must be at least 3 characters long",
		},
		{
			name:      "long username",
			mutate:    func(p *signupPayload) { p.Username = strings.Repeat("a", 21) },
			wantField: "username",
			wantMsg:   "Username cannot exceed 20 characters",
		},
		{
			name:      "bad email",
			mutate:    func(p *signupPayload) { p.Email = "nope" },
			wantField: "email",
			wantMsg:   "Invalid email format",
		},
		{
			name:      "short password",
			mutate:    func(p *signupPayload) { p.Password = "12345" },
			wantField: "password",
			wantMsg:   "Password must be at least 6 characters long",
		},
		{
			name:      "password over bcrypt limit",
			mutate:    func(p *signupPayload) { p.Password = strings.Repeat("é", 40) },
			wantField: "password",
			wantMsg:   "Password cannot exceed 72 bytes",
		},
		{
			name:      "short first name",
			mutate:    func(p *signupPayload) { p.FirstName = "J" },
			wantField: "firstName",
			wantMsg:   "First name must be at least 2 characters",
		},
		{
			name:      "generic required",
			mutate:    func(p *signupPayload) { p.Nickname = "" },
			wantField: "nickname",
			wantMsg:   "nickname is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := validPayload()
			tt.mutate(&payload)

			err := New().Validate(payload)

			var vErr *domainerrors.ValidationError
			require.True(t, errors.As(err, &vErr))
			require.Len(t, vErr.Fields(), 1)
			assert.Equal(t, tt.wantField, vErr.Fields()[0].Field)
			assert.Equal(t, tt.wantMsg, vErr.Fields()[0].Message)
		})
	}
}

func TestValidate_ReportsEveryField(t *testing.T) {
	err := New().Validate(signupPayload{Nickname: "jd"})

	var vErr *domainerrors.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, []string{
		"Username must be at least 3 characters long",
		"Invalid email format",
		"Password must be at least 6 characters long",
	}, vErr.Messages())
}

func TestValidate_NonStruct(t *testing.T) {
	err := New().Validate("not a struct")

	require.Error(t, err)
	var vErr *domainerrors.ValidationError
	assert.False(t, errors.As(err, &vErr))
}
