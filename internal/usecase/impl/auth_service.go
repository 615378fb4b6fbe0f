// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"
	"strings"
	"time"

	deliverycontext "authgate/internal/delivery/context"
	"authgate/internal/domain/entity"
	domainerrors "authgate/internal/domain/errors"
	"authgate/internal/domain/repository"
	"authgate/internal/domain/service"
	"authgate/internal/errors"
	"authgate/internal/usecase"

	"github.com/google/uuid"
	"go.uber.org/fx"
)

// authService implements the AuthUsecase interface.
type authService struct {
	txManager    repository.TransactionManager
	accountRepo  repository.AccountRepository
	hasher       service.PasswordHasher
	tokenService service.TokenService
	publisher    service.EventPublisher
	logger       *slog.Logger
	now          func() time.Time
}

// AuthServiceParams holds dependencies for AuthService, injected by Fx.
type AuthServiceParams struct {
	fx.In

	TxManager    repository.TransactionManager
	AccountRepo  repository.AccountRepository
	Hasher       service.PasswordHasher
	TokenService service.TokenService
	Publisher    service.EventPublisher
	Logger       *slog.Logger
}

// NewAuthService is the constructor for authService. It receives all dependencies as interfaces.
func NewAuthService(params AuthServiceParams) usecase.AuthUsecase {
	return &authService{
		txManager:    params.TxManager,
		accountRepo:  params.AccountRepo,
		hasher:       params.Hasher,
		tokenService: params.TokenService,
		publisher:    params.Publisher,
		logger:       params.Logger,
		now:          time.Now,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *authService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Signup registers a new account. The uniqueness check and the insert share one
// transaction; concurrent duplicates are still caught by the unique indexes.
func (srv *authService) Signup(ctx context.Context, input usecase.SignupInput) (*usecase.AuthOutput, error) {
	if strings.TrimSpace(input.Username) == "" || strings.TrimSpace(input.Email) == "" || input.Password == "" {
		return nil, domainerrors.ErrSignupFieldsMissing.WrapMessage("signup rejected")
	}

	username := entity.NormalizeUsername(input.Username)
	email := entity.NormalizeEmail(input.Email)
	logger := srv.log(ctx).With(slog.String("username", username), slog.String("email", email))

	logger.Info("Starting signup")

	var account *entity.Account
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		accountRepo := repoFactory.AccountRepo()

		existing, err := accountRepo.FindByEmailOrUsername(ctx, email, username)
		if err == nil {
			return conflictFor(existing, email)
		}
		if !errors.Is(err, repository.ErrAccountNotFound) {
			return errors.Wrap(err, "failed to check account uniqueness")
		}

		digest, err := srv.hasher.Hash(input.Password)
		if err != nil {
			logger.Error("Failed to hash password", slog.Any("error", err))

			return errors.Wrap(domainerrors.ErrPasswordHashFailed, err.Error())
		}

		candidate := entity.NewAccount(username, email, digest, input.FirstName, input.LastName)
		if err := candidate.Validate(); err != nil {
			return err
		}

		if err := accountRepo.Create(ctx, candidate); err != nil {
			return mapCreateError(err)
		}

		account = candidate

		return nil
	})
	if err != nil {
		srv.logOutcome(logger, "Signup failed", err)

		return nil, err
	}

	output, err := srv.issue(ctx, account)
	if err != nil {
		logger.Error("Failed to issue token after signup", slog.String("account_id", account.ID.String()), slog.Any("error", err))

		return nil, err
	}

	logger.Info("Signup completed", slog.String("account_id", account.ID.String()))
	srv.publish(ctx, service.AccountEventRegistered, account)

	return output, nil
}

// Login verifies credentials. Unknown emails and wrong passwords produce the same error,
// and an unknown email still pays for one hash comparison.
func (srv *authService) Login(ctx context.Context, input usecase.LoginInput) (*usecase.AuthOutput, error) {
	if strings.TrimSpace(input.Email) == "" || input.Password == "" {
		return nil, domainerrors.ErrLoginFieldsMissing.WrapMessage("login rejected")
	}

	email := entity.NormalizeEmail(input.Email)
	logger := srv.log(ctx).With(slog.String("email", email))

	account, err := srv.accountRepo.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrAccountNotFound) {
		srv.hasher.Check(input.Password, srv.hasher.DummyHash())
		logger.Warn("Login failed: unknown email")

		return nil, domainerrors.ErrInvalidCredentials.WrapMessage("account not found")
	}
	if err != nil {
		logger.Error("Failed to load account for login", slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to load account for login")
	}

	if !srv.hasher.Check(input.Password, account.PasswordHash) {
		logger.Warn("Login failed: password mismatch", slog.String("account_id", account.ID.String()))

		return nil, domainerrors.ErrInvalidCredentials.WrapMessage("password mismatch")
	}

	loginAt := srv.now()
	if err := srv.accountRepo.UpdateLastLogin(ctx, account.ID, loginAt); err != nil {
		logger.Error("Failed to record last login", slog.String("account_id", account.ID.String()), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to record last login")
	}
	account.RecordLogin(loginAt)

	output, err := srv.issue(ctx, account)
	if err != nil {
		logger.Error("Failed to issue token after login", slog.String("account_id", account.ID.String()), slog.Any("error", err))

		return nil, err
	}

	logger.Info("Login succeeded", slog.String("account_id", account.ID.String()))
	srv.publish(ctx, service.AccountEventLoggedIn, account)

	return output, nil
}

// Authenticate resolves a session token to a still-existing account.
func (srv *authService) Authenticate(ctx context.Context, token string) (*usecase.AccountView, error) {
	if token == "" {
		return nil, domainerrors.ErrAuthenticationRequired.WrapMessage("no session token")
	}

	claims, err := srv.tokenService.Validate(token)
	if err != nil {
		srv.log(ctx).Debug("Rejected session token", slog.Any("error", err))

		return nil, domainerrors.ErrTokenInvalid.WrapMessage(err.Error())
	}

	account, err := srv.accountRepo.FindByID(ctx, claims.AccountID)
	if errors.Is(err, repository.ErrAccountNotFound) {
		return nil, domainerrors.ErrTokenInvalid.WrapMessage("token account no longer exists")
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load token account")
	}

	view := usecase.NewAccountView(account)

	return &view, nil
}

func (srv *authService) issue(ctx context.Context, account *entity.Account) (*usecase.AuthOutput, error) {
	view := usecase.NewAccountView(account)

	token, err := srv.tokenService.Issue(service.TokenSubject{
		ID:       view.ID,
		Username: view.Username,
		Email:    view.Email,
	})
	if err != nil {
		return nil, errors.Wrap(domainerrors.ErrTokenIssueFailed, err.Error())
	}

	return &usecase.AuthOutput{
		Account:  view,
		Token:    token,
		TokenTTL: srv.tokenService.TTL(),
	}, nil
}

// publish is best effort: the account change is already committed.
func (srv *authService) publish(ctx context.Context, eventType service.AccountEventType, account *entity.Account) {
	if srv.publisher == nil {
		return
	}

	event := &service.AccountEvent{
		RequestID:  deliverycontext.GetRequestIDFromContext(ctx),
		EventID:    uuid.NewString(),
		Type:       eventType,
		AccountID:  account.ID.String(),
		Username:   account.Username,
		Email:      account.Email,
		OccurredAt: srv.now().UTC(),
	}

	if err := srv.publisher.PublishAccountEvent(ctx, event); err != nil {
		srv.log(ctx).Warn("Failed to publish account event",
			slog.String("type", string(eventType)),
			slog.String("account_id", event.AccountID),
			slog.Any("error", err),
		)
	}
}

// logOutcome logs client errors at warn and everything else at error.
func (srv *authService) logOutcome(logger *slog.Logger, msg string, err error) {
	if appErr, ok := errors.Find[domainerrors.AppError](err); ok && appErr.HTTPCode() < 500 {
		logger.Warn(msg, slog.String("code", appErr.ErrorCode()), slog.String("reason", appErr.Message()))

		return
	}

	logger.Error(msg, slog.Any("error", err))
}

// conflictFor reports the email collision first.
func conflictFor(existing *entity.Account, email string) error {
	if existing.Email == email {
		return domainerrors.ErrEmailInUse.WrapMessage("uniqueness check")
	}

	return domainerrors.ErrUsernameTaken.WrapMessage("uniqueness check")
}

// mapCreateError turns a unique-index violation raised by a concurrent signup
// into the same conflict the uniqueness check would have produced.
func mapCreateError(err error) error {
	dupErr, ok := errors.Find[*repository.DuplicateKeyError](err)
	if !ok {
		return errors.Wrap(err, "failed to create account")
	}

	switch dupErr.Field {
	case repository.FieldEmail:
		return domainerrors.ErrEmailInUse.WrapMessage(dupErr.Error())
	case repository.FieldUsername:
		return domainerrors.ErrUsernameTaken.WrapMessage(dupErr.Error())
	default:
		return domainerrors.ErrAccountExists.WrapMessage(dupErr.Error())
	}
}
