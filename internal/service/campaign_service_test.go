package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/arisanku/savings-engine/internal/config"
	"github.com/arisanku/savings-engine/internal/domain"
	customError "github.com/arisanku/savings-engine/pkg/errors"
	"github.com/arisanku/savings-engine/tests/mocks"
)

type campaignFixture struct {
	campaigns     *mocks.MockCampaignRepository
	contributions *mocks.MockContributionRepository
	groups        *mocks.MockGroupRepository
	tx            *mocks.MockTxManager
	service       *CampaignService
}

func newCampaignFixture(now time.Time) *campaignFixture {
	f := &campaignFixture{
		campaigns:     &mocks.MockCampaignRepository{},
		contributions: &mocks.MockContributionRepository{},
		groups:        &mocks.MockGroupRepository{},
		tx:            &mocks.MockTxManager{},
	}

	cfg := &config.Config{
		Business: config.BusinessConfig{
			SettlementWindowDays: 10,
			MaxPenaltyRate:       "0.4",
			WalletCap:            "10000",
			CampaignTTL:          time.Hour,
		},
	}

	f.tx.On("WithinTx", mock.Anything, mock.Anything).Return(nil)

	f.service = &CampaignService{
		Campaigns:     f.campaigns,
		Contributions: f.contributions,
		Groups:        f.groups,
		Tx:            f.tx,
		config:        cfg,
		clock:         clockwork.NewFakeClockAt(now),
		logger:        zap.NewNop(),
	}

	return f
}

func campaignRequest() *domain.CreateCampaignRequest {
	return &domain.CreateCampaignRequest{
		Name:           "arisan-q1",
		StartDate:      time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
		SavingsDay:     15,
		DurationMonths: 3,
		AmountPerMonth: decimal.NewFromInt(100),
		PenaltyAmount:  decimal.NewFromInt(30),
	}
}

func TestCreateCampaign_Success(t *testing.T) {
	admin := uuid.New()
	groupID := uuid.New()
	members := []uuid.UUID{admin, uuid.New(), uuid.New()}
	now := time.Date(2024, time.December, 20, 9, 0, 0, 0, time.UTC)

	f := newCampaignFixture(now)
	request := campaignRequest()

	f.groups.On("GetByID", mock.Anything, groupID).Return(&domain.Group{ID: groupID, AdminID: admin}, nil)
	f.campaigns.On("FindByName", mock.Anything, groupID, request.Name).Return(nil, sql.ErrNoRows)
	f.campaigns.On("FindActiveByGroup", mock.Anything, groupID).Return(nil, sql.ErrNoRows)
	f.groups.On("ListActiveMemberIDs", mock.Anything, groupID).Return(members, nil)
	f.campaigns.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.campaigns.On("AddParticipants", mock.Anything, mock.Anything, members).Return(nil)

	var ledger []*domain.Contribution
	f.contributions.On("BulkCreate", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		ledger = args.Get(1).([]*domain.Contribution)
	}).Return(nil)

	campaign, err := f.service.CreateCampaign(context.Background(), groupID, admin, request)

	assert.NoError(t, err)
	assert.Equal(t, domain.CampaignStatusScheduled, campaign.Status)
	assert.Equal(t, members, campaign.Participants)
	assert.Equal(t, time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC), campaign.EndDate)

	// one pending row per participant per month
	assert.Len(t, ledger, len(members)*request.DurationMonths)
	for _, c := range ledger {
		assert.Equal(t, domain.ContributionStatusPending, c.Status)
		assert.Equal(t, 15, c.ScheduledDate.Day())
	}

	f.campaigns.AssertExpectations(t)
	f.contributions.AssertExpectations(t)
}

func TestCreateCampaign_ClampsSavingsDay(t *testing.T) {
	admin := uuid.New()
	groupID := uuid.New()
	now := time.Date(2024, time.December, 20, 9, 0, 0, 0, time.UTC)

	f := newCampaignFixture(now)
	request := campaignRequest()
	request.SavingsDay = 31

	f.groups.On("GetByID", mock.Anything, groupID).Return(&domain.Group{ID: groupID, AdminID: admin}, nil)
	f.campaigns.On("FindByName", mock.Anything, groupID, request.Name).Return(nil, sql.ErrNoRows)
	f.campaigns.On("FindActiveByGroup", mock.Anything, groupID).Return(nil, sql.ErrNoRows)
	f.groups.On("ListActiveMemberIDs", mock.Anything, groupID).Return([]uuid.UUID{admin}, nil)
	f.campaigns.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.campaigns.On("AddParticipants", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	var ledger []*domain.Contribution
	f.contributions.On("BulkCreate", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		ledger = args.Get(1).([]*domain.Contribution)
	}).Return(nil)

	_, err := f.service.CreateCampaign(context.Background(), groupID, admin, request)

	assert.NoError(t, err)
	assert.Len(t, ledger, 3)
	// short months clamp to their last day, the rest keep day 31
	assert.Equal(t, time.Date(2025, time.January, 31, 0, 0, 0, 0, time.UTC), ledger[0].ScheduledDate)
	assert.Equal(t, time.Date(2025, time.February, 28, 0, 0, 0, 0, time.UTC), ledger[1].ScheduledDate)
	assert.Equal(t, time.Date(2025, time.March, 31, 0, 0, 0, 0, time.UTC), ledger[2].ScheduledDate)
}

func TestCreateCampaign_DuplicateName(t *testing.T) {
	admin := uuid.New()
	groupID := uuid.New()
	now := time.Date(2024, time.December, 20, 9, 0, 0, 0, time.UTC)

	f := newCampaignFixture(now)
	request := campaignRequest()

	f.groups.On("GetByID", mock.Anything, groupID).Return(&domain.Group{ID: groupID, AdminID: admin}, nil)
	f.campaigns.On("FindByName", mock.Anything, groupID, request.Name).
		Return(&domain.GroupCampaign{ID: uuid.New()}, nil)

	_, err := f.service.CreateCampaign(context.Background(), groupID, admin, request)

	assert.ErrorIs(t, err, customError.ErrConflict)
	f.campaigns.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateCampaign_ActiveCampaignExists(t *testing.T) {
	admin := uuid.New()
	groupID := uuid.New()
	now := time.Date(2024, time.December, 20, 9, 0, 0, 0, time.UTC)

	f := newCampaignFixture(now)
	request := campaignRequest()

	f.groups.On("GetByID", mock.Anything, groupID).Return(&domain.Group{ID: groupID, AdminID: admin}, nil)
	f.campaigns.On("FindByName", mock.Anything, groupID, request.Name).Return(nil, sql.ErrNoRows)
	f.campaigns.On("FindActiveByGroup", mock.Anything, groupID).
		Return(&domain.GroupCampaign{ID: uuid.New(), Status: domain.CampaignStatusOngoing}, nil)

	_, err := f.service.CreateCampaign(context.Background(), groupID, admin, request)

	assert.ErrorIs(t, err, customError.ErrConflict)
}

func TestCreateCampaign_PenaltyAboveCap(t *testing.T) {
	admin := uuid.New()
	groupID := uuid.New()
	now := time.Date(2024, time.December, 20, 9, 0, 0, 0, time.UTC)

	f := newCampaignFixture(now)
	request := campaignRequest()
	// cap is 40% of 100
	request.PenaltyAmount = decimal.NewFromInt(41)

	f.groups.On("GetByID", mock.Anything, groupID).Return(&domain.Group{ID: groupID, AdminID: admin}, nil)

	_, err := f.service.CreateCampaign(context.Background(), groupID, admin, request)

	assert.ErrorIs(t, err, customError.ErrValidation)
}

func TestCreateCampaign_StartDateNotInFuture(t *testing.T) {
	admin := uuid.New()
	groupID := uuid.New()
	now := time.Date(2025, time.January, 1, 9, 0, 0, 0, time.UTC)

	f := newCampaignFixture(now)
	request := campaignRequest() // starts Jan 1, same day as now

	f.groups.On("GetByID", mock.Anything, groupID).Return(&domain.Group{ID: groupID, AdminID: admin}, nil)

	_, err := f.service.CreateCampaign(context.Background(), groupID, admin, request)

	assert.ErrorIs(t, err, customError.ErrValidation)
}

func TestCreateCampaign_NotAdmin(t *testing.T) {
	groupID := uuid.New()
	now := time.Date(2024, time.December, 20, 9, 0, 0, 0, time.UTC)

	f := newCampaignFixture(now)

	f.groups.On("GetByID", mock.Anything, groupID).
		Return(&domain.Group{ID: groupID, AdminID: uuid.New()}, nil)

	_, err := f.service.CreateCampaign(context.Background(), groupID, uuid.New(), campaignRequest())

	assert.ErrorIs(t, err, customError.ErrForbidden)
}

func TestGetCampaign_WrongGroup(t *testing.T) {
	groupID := uuid.New()
	now := time.Date(2025, time.January, 10, 9, 0, 0, 0, time.UTC)

	f := newCampaignFixture(now)
	campaign := &domain.GroupCampaign{ID: uuid.New(), GroupID: uuid.New()}

	f.campaigns.On("GetByID", mock.Anything, campaign.ID).Return(campaign, nil)

	_, _, err := f.service.GetCampaign(context.Background(), groupID, campaign.ID)

	assert.ErrorIs(t, err, customError.ErrNotFound)
	f.contributions.AssertNotCalled(t, "ListByCampaign", mock.Anything, mock.Anything)
}

func TestGetCampaign_ReturnsLedger(t *testing.T) {
	groupID := uuid.New()
	now := time.Date(2025, time.January, 10, 9, 0, 0, 0, time.UTC)

	f := newCampaignFixture(now)
	campaign := &domain.GroupCampaign{ID: uuid.New(), GroupID: groupID}
	ledger := []*domain.Contribution{
		{ID: uuid.New(), CampaignID: campaign.ID, Status: domain.ContributionStatusPending},
	}

	f.campaigns.On("GetByID", mock.Anything, campaign.ID).Return(campaign, nil)
	f.contributions.On("ListByCampaign", mock.Anything, campaign.ID).Return(ledger, nil)

	got, contributions, err := f.service.GetCampaign(context.Background(), groupID, campaign.ID)

	assert.NoError(t, err)
	assert.Equal(t, campaign.ID, got.ID)
	assert.Len(t, contributions, 1)
}
