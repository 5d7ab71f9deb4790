package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/arisanku/savings-engine/internal/config"
	"github.com/arisanku/savings-engine/internal/domain"
	"github.com/arisanku/savings-engine/internal/repository"
	"github.com/arisanku/savings-engine/internal/schedule"
	customError "github.com/arisanku/savings-engine/pkg/errors"
)

// CampaignService creates group campaigns and serves campaign reads.
type CampaignService struct {
	Campaigns     repository.CampaignRepository
	Contributions repository.ContributionRepository
	Groups        repository.GroupRepository
	Tx            repository.TxManager

	cache  *redis.Client
	config *config.Config
	clock  clockwork.Clock
	logger *zap.Logger
}

func NewCampaignService(
	campaigns repository.CampaignRepository,
	contributions repository.ContributionRepository,
	groups repository.GroupRepository,
	tx repository.TxManager,
	cache *redis.Client,
	cfg *config.Config,
	clock clockwork.Clock,
	logger *zap.Logger,
) *CampaignService {
	return &CampaignService{
		Campaigns:     campaigns,
		Contributions: contributions,
		Groups:        groups,
		Tx:            tx,
		cache:         cache,
		config:        cfg,
		clock:         clock,
		logger:        logger,
	}
}

// CreateCampaign validates the parameters, freezes the participant set to the
// group's active members and generates one pending contribution per
// participant per month, all in one transaction.
func (s *CampaignService) CreateCampaign(ctx context.Context, groupID, userID uuid.UUID, request *domain.CreateCampaignRequest) (*domain.GroupCampaign, error) {
	group, err := s.Groups.GetByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.NotFound("group not found")
		}
		return nil, customError.WrapDatabaseError(err)
	}

	if group.AdminID != userID {
		return nil, customError.Forbidden("only the group admin can create a campaign")
	}

	if request.SavingsDay < 1 || request.SavingsDay > 31 {
		return nil, customError.Validation("savings day must be between 1 and 31")
	}
	if request.DurationMonths < 1 {
		return nil, customError.Validation("duration must be at least 1 month")
	}
	if !request.AmountPerMonth.IsPositive() {
		return nil, customError.Validation("amount per month must be positive")
	}
	if request.PenaltyAmount.IsNegative() {
		return nil, customError.Validation("penalty amount cannot be negative")
	}

	maxPenalty := request.AmountPerMonth.Mul(s.config.MaxPenaltyRate())
	if request.PenaltyAmount.GreaterThan(maxPenalty) {
		return nil, customError.Validation(
			fmt.Sprintf("penalty amount cannot exceed 40%% of monthly savings (max: %s)", maxPenalty))
	}

	now := s.clock.Now().UTC()
	startDate := schedule.StartOfDay(request.StartDate)
	if !startDate.After(schedule.StartOfDay(now)) {
		return nil, customError.Validation("start date must be in the future")
	}

	if existing, err := s.Campaigns.FindByName(ctx, groupID, request.Name); err == nil && existing != nil {
		return nil, customError.Conflict("campaign name already used in this group")
	} else if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, customError.WrapDatabaseError(err)
	}

	if active, err := s.Campaigns.FindActiveByGroup(ctx, groupID); err == nil && active != nil {
		return nil, customError.Conflict("a campaign is already scheduled or ongoing for this group")
	} else if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, customError.WrapDatabaseError(err)
	}

	firstDate := schedule.FirstScheduledDate(startDate, request.SavingsDay)
	if !firstDate.After(schedule.StartOfDay(now)) {
		return nil, customError.Validation("first savings date must be after today")
	}

	participants, err := s.Groups.ListActiveMemberIDs(ctx, groupID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	campaign := &domain.GroupCampaign{
		ID:             uuid.New(),
		GroupID:        groupID,
		Name:           request.Name,
		StartDate:      startDate,
		EndDate:        schedule.AddMonths(startDate, request.DurationMonths),
		SavingsDay:     request.SavingsDay,
		DurationMonths: request.DurationMonths,
		AmountPerMonth: request.AmountPerMonth,
		PenaltyAmount:  request.PenaltyAmount,
		Status:         domain.CampaignStatusScheduled,
		CreatedBy:      userID,
		IsDistributed:  false,
		CreatedAt:      now,
		UpdatedAt:      now,
		Participants:   participants,
	}

	dates := schedule.MonthlyDates(firstDate, request.SavingsDay, request.DurationMonths)
	contributions := make([]*domain.Contribution, 0, len(participants)*len(dates))
	for _, participant := range participants {
		for _, scheduledDate := range dates {
			contributions = append(contributions, &domain.Contribution{
				ID:            uuid.New(),
				UserID:        participant,
				CampaignID:    campaign.ID,
				GroupID:       groupID,
				Year:          scheduledDate.Year(),
				Month:         int(scheduledDate.Month()),
				ScheduledDate: scheduledDate,
				Status:        domain.ContributionStatusPending,
				CreatedAt:     now,
			})
		}
	}

	err = s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.Campaigns.Create(ctx, campaign); err != nil {
			return customError.WrapDatabaseError(err)
		}
		if err := s.Campaigns.AddParticipants(ctx, campaign.ID, participants); err != nil {
			return customError.WrapDatabaseError(err)
		}
		if err := s.Contributions.BulkCreate(ctx, contributions); err != nil {
			return customError.WrapDatabaseError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("campaign created",
		zap.String("campaign_id", campaign.ID.String()),
		zap.String("group_id", groupID.String()),
		zap.Int("participants", len(participants)),
		zap.Int("contributions", len(contributions)),
	)

	return campaign, nil
}

// GetCampaign returns a campaign with its full contribution ledger. Campaign
// reads go through the Redis cache; the ledger is always read fresh.
func (s *CampaignService) GetCampaign(ctx context.Context, groupID, campaignID uuid.UUID) (*domain.GroupCampaign, []*domain.Contribution, error) {
	campaign, err := s.cachedCampaign(ctx, campaignID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, customError.NotFound("campaign not found")
		}
		return nil, nil, customError.WrapDatabaseError(err)
	}

	if campaign.GroupID != groupID {
		return nil, nil, customError.NotFound("campaign not found in this group")
	}

	contributions, err := s.Contributions.ListByCampaign(ctx, campaignID)
	if err != nil {
		return nil, nil, customError.WrapDatabaseError(err)
	}

	return campaign, contributions, nil
}

func (s *CampaignService) cachedCampaign(ctx context.Context, campaignID uuid.UUID) (*domain.GroupCampaign, error) {
	key := campaignCacheKey(campaignID)

	if s.cache != nil {
		if payload, err := s.cache.Get(ctx, key).Bytes(); err == nil {
			var campaign domain.GroupCampaign
			if err := json.Unmarshal(payload, &campaign); err == nil {
				return &campaign, nil
			}
		}
	}

	campaign, err := s.Campaigns.GetByID(ctx, campaignID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if payload, err := json.Marshal(campaign); err == nil {
			if err := s.cache.Set(ctx, key, payload, s.config.Business.CampaignTTL).Err(); err != nil {
				s.logger.Warn("failed to cache campaign", zap.Error(customError.WrapCacheError(err)))
			}
		}
	}

	return campaign, nil
}

// InvalidateCampaign drops a campaign from the cache after a mutation.
func (s *CampaignService) InvalidateCampaign(ctx context.Context, campaignID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, campaignCacheKey(campaignID)).Err(); err != nil {
		s.logger.Warn("failed to invalidate campaign cache", zap.Error(customError.WrapCacheError(err)))
	}
}

func campaignCacheKey(campaignID uuid.UUID) string {
	return fmt.Sprintf("campaign:%s", campaignID)
}
