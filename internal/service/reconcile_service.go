package service

import (
	"context"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/arisanku/savings-engine/internal/domain"
	"github.com/arisanku/savings-engine/internal/repository"
	"github.com/arisanku/savings-engine/internal/schedule"
)

// ReconcileService is the periodic counterpart to the lazy state transitions
// performed during settlement. It runs from the scheduler binary.
type ReconcileService struct {
	Campaigns     repository.CampaignRepository
	Contributions repository.ContributionRepository
	Tx            repository.TxManager

	clock  clockwork.Clock
	logger *zap.Logger
}

func NewReconcileService(
	campaignRepo repository.CampaignRepository,
	contributionRepo repository.ContributionRepository,
	tx repository.TxManager,
	clock clockwork.Clock,
	logger *zap.Logger,
) *ReconcileService {
	return &ReconcileService{
		Campaigns:     campaignRepo,
		Contributions: contributionRepo,
		Tx:            tx,
		clock:         clock,
		logger:        logger,
	}
}

// ActivateDueCampaigns moves scheduled campaigns whose window has opened to
// ongoing, so campaign status is correct even before the first contribution
// arrives.
func (s *ReconcileService) ActivateDueCampaigns(ctx context.Context) error {
	now := s.clock.Now().UTC()

	campaigns, err := s.Campaigns.ListScheduledDue(ctx, now)
	if err != nil {
		return err
	}

	for _, campaign := range campaigns {
		if err := s.Campaigns.UpdateStatus(ctx, campaign.ID, domain.CampaignStatusOngoing); err != nil {
			s.logger.Error("failed to activate campaign",
				zap.String("campaign_id", campaign.ID.String()), zap.Error(err))
			continue
		}
		s.logger.Info("campaign activated", zap.String("campaign_id", campaign.ID.String()))
	}

	return nil
}

// CloseOutMaturedCampaigns marks the remaining pending contributions of every
// matured campaign as failed, recording the forfeited penalty on each row.
// Distribution repeats this inside its own transaction, so the job is purely
// an early pass.
func (s *ReconcileService) CloseOutMaturedCampaigns(ctx context.Context) error {
	now := s.clock.Now().UTC()

	// pending rows stay payable through the whole end day; only campaigns
	// whose end day has fully passed are closed out
	campaigns, err := s.Campaigns.ListMaturedUndistributed(ctx, schedule.StartOfDay(now))
	if err != nil {
		return err
	}

	for _, campaign := range campaigns {
		c := campaign
		err := s.Tx.WithinTx(ctx, func(ctx context.Context) error {
			failed, err := s.Contributions.FailExpired(ctx, c.ID, c.PenaltyAmount)
			if err != nil {
				return err
			}
			if failed > 0 {
				s.logger.Info("closed out missed contributions",
					zap.String("campaign_id", c.ID.String()),
					zap.Int64("failed", failed),
				)
			}
			return nil
		})
		if err != nil {
			s.logger.Error("failed to close out campaign",
				zap.String("campaign_id", c.ID.String()), zap.Error(err))
		}
	}

	return nil
}
