package usecases_test

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"wealthline.backend/internal/domain/entities"
	"wealthline.backend/internal/infrastructure/mailer"
	"wealthline.backend/pkg/utils"
)

// Mock UnitOfWork
type MockUnitOfWork struct {
	mock.Mock
}

func (m *MockUnitOfWork) Do(ctx context.Context, f func(context.Context) error) error {
	m.Called(ctx, f)
	return f(ctx)
}

// Mock UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *entities.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error {
	args := m.Called(ctx, id, hash)
	return args.Error(0)
}

func (m *MockUserRepository) MarkEmailConfirmed(ctx context.Context, id uuid.UUID, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

// Mock ProfileRepository
type MockProfileRepository struct {
	mock.Mock
}

func (m *MockProfileRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Profile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Profile), args.Error(1)
}

func (m *MockProfileRepository) Upsert(ctx context.Context, profile *entities.Profile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *MockProfileRepository) ApplyChanges(ctx context.Context, id uuid.UUID, changes entities.ProfileChanges, status entities.KYCStatus) error {
	args := m.Called(ctx, id, changes, status)
	return args.Error(0)
}

func (m *MockProfileRepository) List(ctx context.Context, p utils.PaginationParams) ([]*entities.Profile, int64, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*entities.Profile), args.Get(1).(int64), args.Error(2)
}

// Mock BalanceRepository
type MockBalanceRepository struct {
	mock.Mock
}

func (m *MockBalanceRepository) GetByUser(ctx context.Context, userID uuid.UUID) (*entities.Balance, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Balance), args.Error(1)
}

func (m *MockBalanceRepository) Set(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, at time.Time) error {
	args := m.Called(ctx, userID, amount, at)
	return args.Error(0)
}

func (m *MockBalanceRepository) EnsureExists(ctx context.Context, userID uuid.UUID, at time.Time) error {
	args := m.Called(ctx, userID, at)
	return args.Error(0)
}

// Mock PlanRepository
type MockPlanRepository struct {
	mock.Mock
}

func (m *MockPlanRepository) Create(ctx context.Context, plan *entities.Plan) error {
	args := m.Called(ctx, plan)
	return args.Error(0)
}

func (m *MockPlanRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Plan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Plan), args.Error(1)
}

func (m *MockPlanRepository) ListByMinAmount(ctx context.Context) ([]*entities.Plan, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Plan), args.Error(1)
}

func (m *MockPlanRepository) ListNewest(ctx context.Context) ([]*entities.Plan, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Plan), args.Error(1)
}

// Mock UserPlanRepository
type MockUserPlanRepository struct {
	mock.Mock
}

func (m *MockUserPlanRepository) GetActiveByUser(ctx context.Context, userID uuid.UUID) (*entities.ActivePlan, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.ActivePlan), args.Error(1)
}

func (m *MockUserPlanRepository) Activate(ctx context.Context, up *entities.UserPlan) error {
	args := m.Called(ctx, up)
	return args.Error(0)
}

func (m *MockUserPlanRepository) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

// Mock InvestmentRepository
type MockInvestmentRepository struct {
	mock.Mock
}

func (m *MockInvestmentRepository) Create(ctx context.Context, inv *entities.Investment) error {
	args := m.Called(ctx, inv)
	return args.Error(0)
}

func (m *MockInvestmentRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*entities.Investment, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Investment), args.Error(1)
}

// Mock AdminRepository
type MockAdminRepository struct {
	mock.Mock
}

func (m *MockAdminRepository) Exists(ctx context.Context, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

type staticAdminChecker map[uuid.UUID]bool

func (s staticAdminChecker) IsAdmin(_ context.Context, userID uuid.UUID) bool {
	return s[userID]
}

type captureMailer struct {
	mu   sync.Mutex
	sent []mailer.Message
	err  error
}

func (c *captureMailer) Send(_ context.Context, msg mailer.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.sent = append(c.sent, msg)
	return nil
}

func (c *captureMailer) last() mailer.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.sent) == 0 {
		return mailer.Message{}
	}
	return c.sent[len(c.sent)-1]
}

type publishedEvent struct {
	key     string
	payload any
}

type capturePublisher struct {
	events []publishedEvent
	err    error
}

func (c *capturePublisher) Publish(_ context.Context, key string, payload any) error {
	c.events = append(c.events, publishedEvent{key: key, payload: payload})
	return c.err
}

type memBlobStore struct {
	objects map[string][]byte
	err     error
}

func newMemBlobStore() *memBlobStore {
	return &memBlobStore{objects: map[string][]byte{}}
}

func (m *memBlobStore) Upload(_ context.Context, bucket, path string, data []byte) error {
	if m.err != nil {
		return m.err
	}
	m.objects[bucket+"/"+path] = data
	return nil
}

func (m *memBlobStore) SignedURL(bucket, path string, ttl time.Duration) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return "https://files.test/" + bucket + "/" + path + "?ttl=" + ttl.String(), nil
}
