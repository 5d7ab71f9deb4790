package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/arisanku/savings-engine/internal/domain"
)

// MockTxManager runs the transactional function directly; call expectations
// still apply so tests can assert the transaction boundary was used.
type MockTxManager struct {
	mock.Mock
}

func (m *MockTxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx, fn)
	if args.Error(0) != nil {
		return args.Error(0)
	}
	return fn(ctx)
}

type MockCampaignRepository struct {
	mock.Mock
}

func (m *MockCampaignRepository) Create(ctx context.Context, campaign *domain.GroupCampaign) error {
	args := m.Called(ctx, campaign)
	return args.Error(0)
}

func (m *MockCampaignRepository) AddParticipants(ctx context.Context, campaignID uuid.UUID, userIDs []uuid.UUID) error {
	args := m.Called(ctx, campaignID, userIDs)
	return args.Error(0)
}

func (m *MockCampaignRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.GroupCampaign, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GroupCampaign), args.Error(1)
}

func (m *MockCampaignRepository) FindByName(ctx context.Context, groupID uuid.UUID, name string) (*domain.GroupCampaign, error) {
	args := m.Called(ctx, groupID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GroupCampaign), args.Error(1)
}

func (m *MockCampaignRepository) FindActiveByGroup(ctx context.Context, groupID uuid.UUID) (*domain.GroupCampaign, error) {
	args := m.Called(ctx, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GroupCampaign), args.Error(1)
}

func (m *MockCampaignRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockCampaignRepository) IncrementTotalSaved(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error {
	args := m.Called(ctx, id, amount)
	return args.Error(0)
}

func (m *MockCampaignRepository) MarkDistributed(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockCampaignRepository) ListScheduledDue(ctx context.Context, now time.Time) ([]*domain.GroupCampaign, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.GroupCampaign), args.Error(1)
}

func (m *MockCampaignRepository) ListMaturedUndistributed(ctx context.Context, now time.Time) ([]*domain.GroupCampaign, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.GroupCampaign), args.Error(1)
}

func (m *MockCampaignRepository) SaveDistribution(ctx context.Context, details *domain.DistributionDetails) error {
	args := m.Called(ctx, details)
	return args.Error(0)
}

func (m *MockCampaignRepository) GetDistribution(ctx context.Context, campaignID uuid.UUID) (*domain.DistributionDetails, error) {
	args := m.Called(ctx, campaignID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DistributionDetails), args.Error(1)
}

type MockContributionRepository struct {
	mock.Mock
}

func (m *MockContributionRepository) BulkCreate(ctx context.Context, contributions []*domain.Contribution) error {
	args := m.Called(ctx, contributions)
	return args.Error(0)
}

func (m *MockContributionRepository) ListByCampaign(ctx context.Context, campaignID uuid.UUID) ([]*domain.Contribution, error) {
	args := m.Called(ctx, campaignID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Contribution), args.Error(1)
}

func (m *MockContributionRepository) NextPending(ctx context.Context, campaignID, userID uuid.UUID) (*domain.Contribution, error) {
	args := m.Called(ctx, campaignID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Contribution), args.Error(1)
}

func (m *MockContributionRepository) MarkPaid(ctx context.Context, id uuid.UUID, amountPaid decimal.Decimal, isLate bool, penalty decimal.Decimal, paidOn time.Time) (bool, error) {
	args := m.Called(ctx, id, amountPaid, isLate, penalty, paidOn)
	return args.Bool(0), args.Error(1)
}

func (m *MockContributionRepository) FailExpired(ctx context.Context, campaignID uuid.UUID, forfeit decimal.Decimal) (int64, error) {
	args := m.Called(ctx, campaignID, forfeit)
	return args.Get(0).(int64), args.Error(1)
}

type MockWalletRepository struct {
	mock.Mock
}

func (m *MockWalletRepository) GetBalance(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockWalletRepository) Debit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) error {
	args := m.Called(ctx, userID, amount)
	return args.Error(0)
}

func (m *MockWalletRepository) Credit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) error {
	args := m.Called(ctx, userID, amount)
	return args.Error(0)
}

type MockSavingRepository struct {
	mock.Mock
}

func (m *MockSavingRepository) CreateIndividual(ctx context.Context, saving *domain.IndividualSaving) error {
	args := m.Called(ctx, saving)
	return args.Error(0)
}

func (m *MockSavingRepository) GetIndividualByID(ctx context.Context, id uuid.UUID) (*domain.IndividualSaving, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.IndividualSaving), args.Error(1)
}

func (m *MockSavingRepository) FindActiveIndividualByUser(ctx context.Context, userID uuid.UUID) (*domain.IndividualSaving, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.IndividualSaving), args.Error(1)
}

func (m *MockSavingRepository) UpdateIndividual(ctx context.Context, saving *domain.IndividualSaving) error {
	args := m.Called(ctx, saving)
	return args.Error(0)
}

func (m *MockSavingRepository) CreateFlexible(ctx context.Context, saving *domain.FlexibleSaving) error {
	args := m.Called(ctx, saving)
	return args.Error(0)
}

func (m *MockSavingRepository) GetFlexibleByID(ctx context.Context, id uuid.UUID) (*domain.FlexibleSaving, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FlexibleSaving), args.Error(1)
}

func (m *MockSavingRepository) FindActiveFlexibleByUser(ctx context.Context, userID uuid.UUID) (*domain.FlexibleSaving, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FlexibleSaving), args.Error(1)
}

func (m *MockSavingRepository) UpdateFlexible(ctx context.Context, saving *domain.FlexibleSaving) error {
	args := m.Called(ctx, saving)
	return args.Error(0)
}

type MockGroupRepository struct {
	mock.Mock
}

func (m *MockGroupRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Group, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Group), args.Error(1)
}

func (m *MockGroupRepository) IsActiveMember(ctx context.Context, groupID, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, groupID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockGroupRepository) ListActiveMemberIDs(ctx context.Context, groupID uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}
