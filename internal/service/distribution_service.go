package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/arisanku/savings-engine/internal/domain"
	"github.com/arisanku/savings-engine/internal/repository"
	customError "github.com/arisanku/savings-engine/pkg/errors"
)

// DistributionService performs the one-time terminal payout of a matured
// group campaign.
type DistributionService struct {
	Campaigns     repository.CampaignRepository
	Contributions repository.ContributionRepository
	Wallets       repository.WalletRepository
	Groups        repository.GroupRepository
	Tx            repository.TxManager

	clock     clockwork.Clock
	logger    *zap.Logger
	campaigns *CampaignService
}

func NewDistributionService(
	campaignRepo repository.CampaignRepository,
	contributionRepo repository.ContributionRepository,
	walletRepo repository.WalletRepository,
	groupRepo repository.GroupRepository,
	tx repository.TxManager,
	clock clockwork.Clock,
	logger *zap.Logger,
	campaignService *CampaignService,
) *DistributionService {
	return &DistributionService{
		Campaigns:     campaignRepo,
		Contributions: contributionRepo,
		Wallets:       walletRepo,
		Groups:        groupRepo,
		Tx:            tx,
		clock:         clock,
		logger:        logger,
		campaigns:     campaignService,
	}
}

// Distribute aggregates the campaign's ledger, pools forfeited penalties from
// non-compliant participants, splits the pool across fully compliant ones and
// credits every positive payout. The is_distributed flag is flipped with a
// conditional update inside the transaction, so at most one concurrent
// execution can commit; the rest see a conflict.
func (s *DistributionService) Distribute(ctx context.Context, groupID, campaignID, userID uuid.UUID) (*domain.DistributionDetails, error) {
	group, err := s.Groups.GetByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.NotFound("group not found")
		}
		return nil, customError.WrapDatabaseError(err)
	}
	if group.AdminID != userID {
		return nil, customError.Forbidden("only the group admin is allowed to distribute savings")
	}

	var details *domain.DistributionDetails
	err = s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		campaign, err := s.Campaigns.GetByID(ctx, campaignID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return customError.NotFound("campaign not found")
			}
			return customError.WrapDatabaseError(err)
		}
		if campaign.GroupID != groupID {
			return customError.Validation("campaign does not belong to the group")
		}
		if campaign.IsDistributed {
			return customError.Conflict("distribution has already been made")
		}

		// settlement stays open through the whole end day, so distribution
		// and its forfeiture of pending rows may only start the day after
		now := s.clock.Now().UTC()
		if !now.After(endOfDay(campaign.EndDate)) {
			return customError.Timing("campaign duration has not ended yet")
		}

		ok, err := s.Campaigns.MarkDistributed(ctx, campaignID)
		if err != nil {
			return customError.WrapDatabaseError(err)
		}
		if !ok {
			return customError.Conflict("distribution has already been made")
		}

		// close out whatever the reconciliation job has not reached yet, so
		// missed periods carry their forfeiture before aggregation
		if _, err := s.Contributions.FailExpired(ctx, campaignID, campaign.PenaltyAmount); err != nil {
			return customError.WrapDatabaseError(err)
		}

		contributions, err := s.Contributions.ListByCampaign(ctx, campaignID)
		if err != nil {
			return customError.WrapDatabaseError(err)
		}

		details = s.computePayouts(campaign, contributions, now)

		for userID, payout := range details.PayoutPerUser {
			// only positive payouts touch the wallet; a negative net (all
			// periods missed) stays recorded in the details
			if !payout.IsPositive() {
				continue
			}
			if err := s.Wallets.Credit(ctx, userID, payout); err != nil {
				return err
			}
		}

		if err := s.Campaigns.UpdateStatus(ctx, campaignID, domain.CampaignStatusCompleted); err != nil {
			return customError.WrapDatabaseError(err)
		}
		if err := s.Campaigns.SaveDistribution(ctx, details); err != nil {
			return customError.WrapDatabaseError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.campaigns.InvalidateCampaign(ctx, campaignID)

	s.logger.Info("campaign distributed",
		zap.String("campaign_id", campaignID.String()),
		zap.Int("participants", len(details.PayoutPerUser)),
	)

	return details, nil
}

// GetDistribution returns the recorded payout details of a distributed
// campaign.
func (s *DistributionService) GetDistribution(ctx context.Context, groupID, campaignID uuid.UUID) (*domain.DistributionDetails, error) {
	campaign, err := s.Campaigns.GetByID(ctx, campaignID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.NotFound("campaign not found")
		}
		return nil, customError.WrapDatabaseError(err)
	}
	if campaign.GroupID != groupID {
		return nil, customError.NotFound("campaign not found in this group")
	}
	if !campaign.IsDistributed {
		return nil, customError.NotFound("campaign has not been distributed yet")
	}

	details, err := s.Campaigns.GetDistribution(ctx, campaignID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.NotFound("distribution record not found")
		}
		return nil, customError.WrapDatabaseError(err)
	}

	return details, nil
}

// computePayouts aggregates the ledger into per-participant payouts.
func (s *DistributionService) computePayouts(campaign *domain.GroupCampaign, contributions []*domain.Contribution, now time.Time) *domain.DistributionDetails {
	contributed := make(map[uuid.UUID]decimal.Decimal, len(campaign.Participants))
	penalties := make(map[uuid.UUID]decimal.Decimal, len(campaign.Participants))
	unpaid := make(map[uuid.UUID]bool)

	for _, participant := range campaign.Participants {
		contributed[participant] = decimal.Zero
		penalties[participant] = decimal.Zero
	}

	for _, c := range contributions {
		if c.Status == domain.ContributionStatusPaid {
			contributed[c.UserID] = contributed[c.UserID].Add(c.AmountPaid)
		} else {
			// amounts recorded on unpaid rows are forfeited
			penalties[c.UserID] = penalties[c.UserID].Add(c.AmountPaid)
			unpaid[c.UserID] = true
		}
	}

	var compliant []uuid.UUID
	pool := decimal.Zero
	for _, participant := range campaign.Participants {
		if unpaid[participant] {
			if penalties[participant].IsPositive() {
				pool = pool.Add(penalties[participant])
			}
			continue
		}
		compliant = append(compliant, participant)
	}

	payouts := make(map[uuid.UUID]decimal.Decimal, len(campaign.Participants))
	for _, participant := range campaign.Participants {
		payout := contributed[participant]
		if penalties[participant].IsPositive() {
			payout = payout.Sub(penalties[participant])
		}
		payouts[participant] = payout
	}

	// floor division; the remainder is not distributed
	bonus := decimal.Zero
	if len(compliant) > 0 {
		bonus = pool.Div(decimal.NewFromInt(int64(len(compliant)))).Floor()
	}

	redistributed := make(map[uuid.UUID]decimal.Decimal, len(compliant))
	for _, participant := range compliant {
		payouts[participant] = payouts[participant].Add(bonus)
		redistributed[participant] = bonus
	}

	return &domain.DistributionDetails{
		CampaignID:           campaign.ID,
		DistributedAt:        now,
		PayoutPerUser:        payouts,
		PenaltyRedistributed: redistributed,
	}
}
