package postgres

import (
	"context"
	"time"

	"authgate/config"
	"authgate/internal/domain/entity"
	domainerrors "authgate/internal/domain/errors"
	"authgate/internal/domain/repository"
	"authgate/internal/errors"
	"authgate/internal/infra/persistence/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// accountRepository implements repository.AccountRepository using GORM.
type accountRepository struct {
	db      *gorm.DB
	timeout time.Duration
}

// NewAccountRepository is the Fx constructor bound to the shared connection pool.
func NewAccountRepository(db *gorm.DB, cfg *config.Config) repository.AccountRepository {
	return newAccountRepository(db, operationTimeout(cfg))
}

func newAccountRepository(db *gorm.DB, timeout time.Duration) *accountRepository {
	return &accountRepository{db: db, timeout: timeout}
}

func operationTimeout(cfg *config.Config) time.Duration {
	if cfg == nil || cfg.Storage.OperationTimeout <= 0 {
		return config.DefaultOperationTimeout
	}

	return cfg.Storage.OperationTimeout
}

// withTimeout bounds a single repository call.
func (repo *accountRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if repo.timeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, repo.timeout)
}

// FindByID retrieves a single account by its ID.
func (repo *accountRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Account, error) {
	ctx, cancel := repo.withTimeout(ctx)
	defer cancel()

	var accountM model.AccountModel
	if err := repo.db.WithContext(ctx).Where("id = ?", id).Take(&accountM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrAccountNotFound
		}

		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to find account by id")
	}

	return toAccountDomain(&accountM), nil
}

// FindByEmailOrUsername returns the account holding the email when one exists,
// otherwise the account holding the username.
func (repo *accountRepository) FindByEmailOrUsername(ctx context.Context, email, username string) (*entity.Account, error) {
	ctx, cancel := repo.withTimeout(ctx)
	defer cancel()

	// Both columns are unique, so at most two rows can match.
	var accountMs []model.AccountModel
	err := repo.db.WithContext(ctx).
		Where("email = ?", email).
		Or("username = ?", username).
		Limit(2).
		Find(&accountMs).Error
	if err != nil {
		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to find account by email or username")
	}

	if len(accountMs) == 0 {
		return nil, repository.ErrAccountNotFound
	}

	for i := range accountMs {
		if accountMs[i].Email == email {
			return toAccountDomain(&accountMs[i]), nil
		}
	}

	return toAccountDomain(&accountMs[0]), nil
}

// FindByEmail retrieves an account, including its password hash, by email.
func (repo *accountRepository) FindByEmail(ctx context.Context, email string) (*entity.Account, error) {
	ctx, cancel := repo.withTimeout(ctx)
	defer cancel()

	var accountM model.AccountModel
	if err := repo.db.WithContext(ctx).Where("email = ?", email).Take(&accountM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrAccountNotFound
		}

		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to find account by email")
	}

	return toAccountDomain(&accountM), nil
}

// Create persists a new account.
func (repo *accountRepository) Create(ctx context.Context, account *entity.Account) error {
	ctx, cancel := repo.withTimeout(ctx)
	defer cancel()

	accountM := fromAccountDomain(account)

	if err := repo.db.WithContext(ctx).Create(accountM).Error; err != nil {
		if dupErr, ok := asDuplicateKeyError(err); ok {
			return dupErr
		}
		if isNotNullConstraintViolation(err) {
			return domainerrors.NewDatabaseExecuteError(err, "missing required account information")
		}
		if isCheckConstraintViolation(err) {
			return domainerrors.NewDatabaseExecuteError(err, "account violates a check constraint")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create account")
	}

	account.CreatedAt = accountM.CreatedAt
	account.UpdatedAt = accountM.UpdatedAt

	return nil
}

// UpdateLastLogin sets last_login and bumps updated_at.
func (repo *accountRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	ctx, cancel := repo.withTimeout(ctx)
	defer cancel()

	result := repo.db.WithContext(ctx).
		Model(&model.AccountModel{}).
		Where("id = ?", id).
		Update("last_login", at)
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to update last login")
	}
	if result.RowsAffected == 0 {
		return repository.ErrAccountNotFound
	}

	return nil
}

// --- Mapper Functions ---

func toAccountDomain(data *model.AccountModel) *entity.Account {
	if data == nil {
		return nil
	}

	return &entity.Account{
		ID:           data.ID,
		Email:        data.Email,
		Username:     data.Username,
		PasswordHash: data.PasswordHash,
		FirstName:    data.FirstName,
		LastName:     data.LastName,
		Profile: entity.Profile{
			Bio:     data.Bio,
			Picture: data.ProfilePicture,
		},
		Role:      entity.Role(data.Role),
		IsActive:  data.IsActive,
		LastLogin: data.LastLogin,
		CreatedAt: data.CreatedAt,
		UpdatedAt: data.UpdatedAt,
	}
}

func fromAccountDomain(data *entity.Account) *model.AccountModel {
	if data == nil {
		return nil
	}

	return &model.AccountModel{
		ID:             data.ID,
		Email:          data.Email,
		Username:       data.Username,
		PasswordHash:   data.PasswordHash,
		FirstName:      data.FirstName,
		LastName:       data.LastName,
		Bio:            data.Profile.Bio,
		ProfilePicture: data.Profile.Picture,
		Role:           data.Role.String(),
		IsActive:       data.IsActive,
		LastLogin:      data.LastLogin,
		CreatedAt:      data.CreatedAt,
		UpdatedAt:      data.UpdatedAt,
	}
}
