package impl

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"authgate/internal/domain/repository"
	mockRepo "authgate/internal/mocks/repository"
	mockSvc "authgate/internal/mocks/service"
	"authgate/internal/usecase"

	"github.com/stretchr/testify/mock"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// authServiceFixtures holds all test dependencies for auth service tests.
type authServiceFixtures struct {
	service      usecase.AuthUsecase
	txManager    *mockRepo.MockTransactionManager
	accountRepo  *mockRepo.MockAccountRepository
	hasher       *mockSvc.MockPasswordHasher
	tokenService *mockSvc.MockTokenService
	publisher    *mockSvc.MockEventPublisher
}

func createTestAuthService(t *testing.T) authServiceFixtures {
	txManager := mockRepo.NewMockTransactionManager(t)
	accountRepo := mockRepo.NewMockAccountRepository(t)
	hasher := mockSvc.NewMockPasswordHasher(t)
	tokenService := mockSvc.NewMockTokenService(t)
	publisher := mockSvc.NewMockEventPublisher(t)

	service := NewAuthService(AuthServiceParams{
		TxManager:    txManager,
		AccountRepo:  accountRepo,
		Hasher:       hasher,
		TokenService: tokenService,
		Publisher:    publisher,
		Logger:       newDiscardLogger(),
	})

	return authServiceFixtures{
		service:      service,
		txManager:    txManager,
		accountRepo:  accountRepo,
		hasher:       hasher,
		tokenService: tokenService,
		publisher:    publisher,
	}
}

// expectTx runs the transactional callback against a fresh repository mock
// and returns that mock so the caller can set expectations on it.
func (fx authServiceFixtures) expectTx(t *testing.T, ctx context.Context) *mockRepo.MockAccountRepository {
	t.Helper()

	txRepo := mockRepo.NewMockAccountRepository(t)
	factory := mockRepo.NewMockRepositoryFactory(t)
	factory.EXPECT().AccountRepo().Return(txRepo)

	fx.txManager.EXPECT().
		Execute(ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		RunAndReturn(func(_ context.Context, fn func(repository.RepositoryFactory) error) error {
			return fn(factory)
		})

	return txRepo
}
