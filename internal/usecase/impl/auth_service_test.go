package impl

import (
	"context"
	"net/http"
	"testing"
	"time"

	"authgate/internal/domain/entity"
	domainerrors "authgate/internal/domain/errors"
	"authgate/internal/domain/repository"
	"authgate/internal/domain/service"
	"authgate/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func isEvent(eventType service.AccountEventType) interface{} {
	return mock.MatchedBy(func(e *service.AccountEvent) bool {
		return e.Type == eventType && e.EventID != ""
	})
}

func requireAppError(t *testing.T, err error, httpCode int, message string) {
	t.Helper()

	var appErr domainerrors.AppError
	require.True(t, errors.As(err, &appErr), "expected an AppError, got %v", err)
	assert.Equal(t, httpCode, appErr.HTTPCode())
	assert.Equal(t, message, appErr.Message())
}

func TestAuthService_Signup_Success(t *testing.T) {
	fx := createTestAuthService(t)
	ctx := context.Background()

	txRepo := fx.expectTx(t, ctx)
	txRepo.EXPECT().
		FindByEmailOrUsername(ctx, "jane@x.com", "jane_doe").
		Return(nil, repository.ErrAccountNotFound)
	fx.hasher.EXPECT().Hash("secret1").Return("digest", nil)

	var created *entity.Account
	txRepo.EXPECT().
		Create(ctx, mock.AnythingOfType("*entity.Account")).
		Run(func(_ context.Context, account *entity.Account) {
			created = account
		}).
		Return(nil)

	fx.tokenService.EXPECT().
		Issue(mock.AnythingOfType("service.TokenSubject")).
		Return("signed-token", nil)
	fx.tokenService.EXPECT().TTL().Return(time.Hour)
	fx.publisher.EXPECT().PublishAccountEvent(ctx, isEvent(service.AccountEventRegistered)).Return(nil)

	output, err := fx.service.Signup(ctx, usecase.SignupInput{
		Username: "  Jane_Doe ",
		Email:    " JANE@x.com ",
		Password: "secret1",
	})

	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, "digest", created.PasswordHash)
	assert.Equal(t, "jane", created.FirstName)
	assert.Equal(t, "User", created.LastName)
	assert.Equal(t, entity.RoleUser, created.Role)

	assert.Equal(t, usecase.AccountView{ID: created.ID, Username: "jane_doe", Email: "jane@x.com"}, output.Account)
	assert.Equal(t, "signed-token", output.Token)
	assert.Equal(t, time.Hour, output.TokenTTL)
}

func TestAuthService_Signup_IssuesTokenForCreatedAccount(t *testing.T) {
	fx := createTestAuthService(t)
	ctx := context.Background()

	txRepo := fx.expectTx(t, ctx)
	txRepo.EXPECT().FindByEmailOrUsername(ctx, "john@x.com", "john").Return(nil, repository.ErrAccountNotFound)
	fx.hasher.EXPECT().Hash("secret1").Return("digest", nil)

	var created *entity.Account
	txRepo.EXPECT().
		Create(ctx, mock.AnythingOfType("*entity.Account")).
		Run(func(_ context.Context, account *entity.Account) { created = account }).
		Return(nil)

	var subject service.TokenSubject
	fx.tokenService.EXPECT().
		Issue(mock.AnythingOfType("service.TokenSubject")).
		Run(func(s service.TokenSubject) { subject = s }).
		Return("signed-token", nil)
	fx.tokenService.EXPECT().TTL().Return(time.Hour)
	fx.publisher.EXPECT().PublishAccountEvent(ctx, isEvent(service.AccountEventRegistered)).Return(nil)

	_, err := fx.service.Signup(ctx, usecase.SignupInput{
		Username:  "john",
		Email:     "john@x.com",
		Password:  "secret1",
		FirstName: "Johnny",
		LastName:  "Appleseed",
	})

	require.NoError(t, err)
	assert.Equal(t, "Johnny", created.FirstName)
	assert.Equal(t, "Appleseed", created.LastName)
	assert.Equal(t, service.TokenSubject{ID: created.ID, Username: "john", Email: "john@x.com"}, subject)
}

func TestAuthService_Signup_MissingFields(t *testing.T) {
	tests := []struct {
		name  string
		input usecase.SignupInput
	}{
		{name: "no username", input: usecase.SignupInput{Email: "a@x.com", Password: "secret1"}},
		{name: "blank username", input: usecase.SignupInput{Username: "   ", Email: "a@x.com", Password: "secret1"}},
		{name: "no email", input: usecase.SignupInput{Username: "abc", Password: "secret1"}},
		{name: "no password", input: usecase.SignupInput{Username: "abc", Email: "a@x.com"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := createTestAuthService(t)

			output, err := fx.service.Signup(context.Background(), tt.input)

			assert.Nil(t, output)
			assert.ErrorIs(t, err, domainerrors.ErrSignupFieldsMissing)
			requireAppError(t, err, http.StatusBadRequest, "Email, password, and username are required")
		})
	}
}

func TestAuthService_Signup_Conflicts(t *testing.T) {
	tests := []struct {
		name     string
		existing *entity.Account
		wantErr  error
		wantMsg  string
	}{
		{
			name:     "email in use",
			existing: &entity.Account{ID: uuid.New(), Email: "jane@x.com", Username: "someone"},
			wantErr:  domainerrors.ErrEmailInUse,
			wantMsg:  "Email already in use",
		},
		{
			name:     "username taken",
			existing: &entity.Account{ID: uuid.New(), Email: "other@x.com", Username: "jane_doe"},
			wantErr:  domainerrors.ErrUsernameTaken,
			wantMsg:  "Username already taken",
		},
		{
			name:     "both collide reports email",
			existing: &entity.Account{ID: uuid.New(), Email: "jane@x.com", Username: "jane_doe"},
			wantErr:  domainerrors.ErrEmailInUse,
			wantMsg:  "Email already in use",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := createTestAuthService(t)
			ctx := context.Background()

			txRepo := fx.expectTx(t, ctx)
			txRepo.EXPECT().FindByEmailOrUsername(ctx, "jane@x.com", "jane_doe").Return(tt.existing, nil)

			output, err := fx.service.Signup(ctx, usecase.SignupInput{
				Username: "jane_doe",
				Email:    "jane@x.com",
				Password: "secret1",
			})

			assert.Nil(t, output)
			assert.ErrorIs(t, err, tt.wantErr)
			requireAppError(t, err, http.StatusConflict, tt.wantMsg)
		})
	}
}

func TestAuthService_Signup_ConcurrentDuplicateMapsToConflict(t *testing.T) {
	tests := []struct {
		name    string
		field   string
		wantErr error
		wantMsg string
	}{
		{name: "email index", field: repository.FieldEmail, wantErr: domainerrors.ErrEmailInUse, wantMsg: "Email already in use"},
		{name: "username index", field: repository.FieldUsername, wantErr: domainerrors.ErrUsernameTaken, wantMsg: "Username already taken"},
		{name: "unknown index", field: "", wantErr: domainerrors.ErrAccountExists, wantMsg: "Username or email already exists"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := createTestAuthService(t)
			ctx := context.Background()

			txRepo := fx.expectTx(t, ctx)
			txRepo.EXPECT().FindByEmailOrUsername(ctx, "jane@x.com", "jane_doe").Return(nil, repository.ErrAccountNotFound)
			fx.hasher.EXPECT().Hash("secret1").Return("digest", nil)
			txRepo.EXPECT().
				Create(ctx, mock.AnythingOfType("*entity.Account")).
				Return(&repository.DuplicateKeyError{Field: tt.field, Constraint: "uq_accounts_x", Err: errors.New("23505")})

			output, err := fx.service.Signup(ctx, usecase.SignupInput{
				Username: "jane_doe",
				Email:    "jane@x.com",
				Password: "secret1",
			})

			assert.Nil(t, output)
			assert.ErrorIs(t, err, tt.wantErr)
			requireAppError(t, err, http.StatusConflict, tt.wantMsg)
		})
	}
}

func TestAuthService_Signup_ValidationFailure(t *testing.T) {
	fx := createTestAuthService(t)
	ctx := context.Background()

	txRepo := fx.expectTx(t, ctx)
	txRepo.EXPECT().FindByEmailOrUsername(ctx, "not-an-email", "ab").Return(nil, repository.ErrAccountNotFound)
	fx.hasher.EXPECT().Hash("secret1").Return("digest", nil)

	output, err := fx.service.Signup(ctx, usecase.SignupInput{
		Username: "ab",
		Email:    "not-an-email",
		Password: "secret1",
	})

	assert.Nil(t, output)

	var vErr *domainerrors.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Contains(t, vErr.Messages(), "Please enter a valid email")
	assert.Contains(t, vErr.Messages(), "Username must be at least 3 characters")
}

func TestAuthService_Signup_HashFailure(t *testing.T) {
	fx := createTestAuthService(t)
	ctx := context.Background()

	txRepo := fx.expectTx(t, ctx)
	txRepo.EXPECT().FindByEmailOrUsername(ctx, "jane@x.com", "jane_doe").Return(nil, repository.ErrAccountNotFound)
	fx.hasher.EXPECT().Hash("secret1").Return("", errors.New("entropy exhausted"))

	output, err := fx.service.Signup(ctx, usecase.SignupInput{
		Username: "jane_doe",
		Email:    "jane@x.com",
		Password: "secret1",
	})

	assert.Nil(t, output)
	assert.ErrorIs(t, err, domainerrors.ErrPasswordHashFailed)
	requireAppError(t, err, http.StatusInternalServerError, domainerrors.GenericInternalMessage)
	txRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthService_Signup_TokenFailure(t *testing.T) {
	fx := createTestAuthService(t)
	ctx := context.Background()

	txRepo := fx.expectTx(t, ctx)
	txRepo.EXPECT().FindByEmailOrUsername(ctx, "jane@x.com", "jane_doe").Return(nil, repository.ErrAccountNotFound)
	fx.hasher.EXPECT().Hash("secret1").Return("digest", nil)
	txRepo.EXPECT().Create(ctx, mock.AnythingOfType("*entity.Account")).Return(nil)
	fx.tokenService.EXPECT().
		Issue(mock.AnythingOfType("service.TokenSubject")).
		Return("", errors.New("signing failed"))

	output, err := fx.service.Signup(ctx, usecase.SignupInput{
		Username: "jane_doe",
		Email:    "jane@x.com",
		Password: "secret1",
	})

	assert.Nil(t, output)
	assert.ErrorIs(t, err, domainerrors.ErrTokenIssueFailed)
	requireAppError(t, err, http.StatusInternalServerError, domainerrors.GenericInternalMessage)
	fx.publisher.AssertNotCalled(t, "PublishAccountEvent", mock.Anything, mock.Anything)
}

func TestAuthService_Signup_PublishFailureIsIgnored(t *testing.T) {
	fx := createTestAuthService(t)
	ctx := context.Background()

	txRepo := fx.expectTx(t, ctx)
	txRepo.EXPECT().FindByEmailOrUsername(ctx, "jane@x.com", "jane_doe").Return(nil, repository.ErrAccountNotFound)
	fx.hasher.EXPECT().Hash("secret1").Return("digest", nil)
	txRepo.EXPECT().Create(ctx, mock.AnythingOfType("*entity.Account")).Return(nil)
	fx.tokenService.EXPECT().Issue(mock.AnythingOfType("service.TokenSubject")).Return("signed-token", nil)
	fx.tokenService.EXPECT().TTL().Return(time.Hour)
	fx.publisher.EXPECT().
		PublishAccountEvent(ctx, isEvent(service.AccountEventRegistered)).
		Return(errors.New("broker down"))

	output, err := fx.service.Signup(ctx, usecase.SignupInput{
		Username: "jane_doe",
		Email:    "jane@x.com",
		Password: "secret1",
	})

	require.NoError(t, err)
	assert.Equal(t, "signed-token", output.Token)
}

func TestAuthService_Login_Success(t *testing.T) {
	fx := createTestAuthService(t)
	ctx := context.Background()

	account := entity.NewAccount("jane_doe", "jane@x.com", "digest", "", "")
	fx.accountRepo.EXPECT().FindByEmail(ctx, "jane@x.com").Return(account, nil)
	fx.hasher.EXPECT().Check("secret1", "digest").Return(true)

	var loginAt time.Time
	fx.accountRepo.EXPECT().
		UpdateLastLogin(ctx, account.ID, mock.AnythingOfType("time.Time")).
		Run(func(_ context.Context, _ uuid.UUID, at time.Time) { loginAt = at }).
		Return(nil)
	fx.tokenService.EXPECT().Issue(service.TokenSubject{ID: account.ID, Username: "jane_doe", Email: "jane@x.com"}).Return("signed-token", nil)
	fx.tokenService.EXPECT().TTL().Return(time.Hour)
	fx.publisher.EXPECT().PublishAccountEvent(ctx, isEvent(service.AccountEventLoggedIn)).Return(nil)

	before := time.Now()
	output, err := fx.service.Login(ctx, usecase.LoginInput{Email: " Jane@X.com", Password: "secret1"})
	after := time.Now()

	require.NoError(t, err)
	assert.Equal(t, "signed-token", output.Token)
	assert.Equal(t, usecase.NewAccountView(account), output.Account)
	assert.WithinRange(t, loginAt, before, after)
	require.NotNil(t, account.LastLogin)
	assert.Equal(t, loginAt, *account.LastLogin)
}

func TestAuthService_Login_MissingFields(t *testing.T) {
	tests := []struct {
		name  string
		input usecase.LoginInput
	}{
		{name: "no email", input: usecase.LoginInput{Password: "secret1"}},
		{name: "no password", input: usecase.LoginInput{Email: "jane@x.com"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := createTestAuthService(t)

			output, err := fx.service.Login(context.Background(), tt.input)

			assert.Nil(t, output)
			assert.ErrorIs(t, err, domainerrors.ErrLoginFieldsMissing)
			requireAppError(t, err, http.StatusBadRequest, "Email and password are required")
		})
	}
}

func TestAuthService_Login_FailuresAreIndistinguishable(t *testing.T) {
	ctx := context.Background()

	unknown := createTestAuthService(t)
	unknown.accountRepo.EXPECT().FindByEmail(ctx, "ghost@x.com").Return(nil, repository.ErrAccountNotFound)
	unknown.hasher.EXPECT().DummyHash().Return("dummy-digest")
	unknown.hasher.EXPECT().Check("secret1", "dummy-digest").Return(false)

	_, unknownErr := unknown.service.Login(ctx, usecase.LoginInput{Email: "ghost@x.com", Password: "secret1"})

	wrong := createTestAuthService(t)
	account := entity.NewAccount("jane_doe", "jane@x.com", "digest", "", "")
	wrong.accountRepo.EXPECT().FindByEmail(ctx, "jane@x.com").Return(account, nil)
	wrong.hasher.EXPECT().Check("secret1", "digest").Return(false)

	_, wrongErr := wrong.service.Login(ctx, usecase.LoginInput{Email: "jane@x.com", Password: "secret1"})

	for _, err := range []error{unknownErr, wrongErr} {
		assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
		requireAppError(t, err, http.StatusUnauthorized, "Incorrect email or password")
	}
	assert.Nil(t, account.LastLogin)
}

func TestAuthService_Login_RepositoryError(t *testing.T) {
	fx := createTestAuthService(t)
	ctx := context.Background()

	dbErr := domainerrors.NewDatabaseExecuteError(errors.New("connection refused"), "failed to find account by email")
	fx.accountRepo.EXPECT().FindByEmail(ctx, "jane@x.com").Return(nil, dbErr)

	output, err := fx.service.Login(ctx, usecase.LoginInput{Email: "jane@x.com", Password: "secret1"})

	assert.Nil(t, output)
	assert.NotErrorIs(t, err, domainerrors.ErrInvalidCredentials)
	requireAppError(t, err, http.StatusInternalServerError, domainerrors.GenericInternalMessage)
}

func TestAuthService_Login_LastLoginFailure(t *testing.T) {
	fx := createTestAuthService(t)
	ctx := context.Background()

	account := entity.NewAccount("jane_doe", "jane@x.com", "digest", "", "")
	fx.accountRepo.EXPECT().FindByEmail(ctx, "jane@x.com").Return(account, nil)
	fx.hasher.EXPECT().Check("secret1", "digest").Return(true)
	fx.accountRepo.EXPECT().
		UpdateLastLogin(ctx, account.ID, mock.AnythingOfType("time.Time")).
		Return(domainerrors.NewDatabaseExecuteError(errors.New("timeout"), "failed to update last login"))

	output, err := fx.service.Login(ctx, usecase.LoginInput{Email: "jane@x.com", Password: "secret1"})

	assert.Nil(t, output)
	requireAppError(t, err, http.StatusInternalServerError, domainerrors.GenericInternalMessage)
	fx.tokenService.AssertNotCalled(t, "Issue", mock.Anything)
}

func TestAuthService_Authenticate(t *testing.T) {
	ctx := context.Background()
	accountID := uuid.New()

	t.Run("empty token", func(t *testing.T) {
		fx := createTestAuthService(t)

		_, err := fx.service.Authenticate(ctx, "")

		assert.ErrorIs(t, err, domainerrors.ErrAuthenticationRequired)
	})

	t.Run("rejected token", func(t *testing.T) {
		fx := createTestAuthService(t)
		fx.tokenService.EXPECT().Validate("bad").Return(nil, errors.New("token is expired"))

		_, err := fx.service.Authenticate(ctx, "bad")

		assert.ErrorIs(t, err, domainerrors.ErrTokenInvalid)
		requireAppError(t, err, http.StatusUnauthorized, "Invalid or expired token")
	})

	t.Run("account removed", func(t *testing.T) {
		fx := createTestAuthService(t)
		fx.tokenService.EXPECT().Validate("good").Return(&service.Claims{AccountID: accountID}, nil)
		fx.accountRepo.EXPECT().FindByID(ctx, accountID).Return(nil, repository.ErrAccountNotFound)

		_, err := fx.service.Authenticate(ctx, "good")

		assert.ErrorIs(t, err, domainerrors.ErrTokenInvalid)
	})

	t.Run("valid token", func(t *testing.T) {
		fx := createTestAuthService(t)
		fx.tokenService.EXPECT().Validate("good").Return(&service.Claims{AccountID: accountID}, nil)
		fx.accountRepo.EXPECT().FindByID(ctx, accountID).Return(&entity.Account{
			ID:           accountID,
			Username:     "jane_doe",
			Email:        "jane@x.com",
			PasswordHash: "digest",
		}, nil)

		view, err := fx.service.Authenticate(ctx, "good")

		require.NoError(t, err)
		assert.Equal(t, &usecase.AccountView{ID: accountID, Username: "jane_doe", Email: "jane@x.com"}, view)
	})
}
