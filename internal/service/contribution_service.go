package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/arisanku/savings-engine/internal/config"
	"github.com/arisanku/savings-engine/internal/domain"
	"github.com/arisanku/savings-engine/internal/repository"
	"github.com/arisanku/savings-engine/internal/schedule"
	customError "github.com/arisanku/savings-engine/pkg/errors"
)

// ContributionService settles group campaign contributions.
type ContributionService struct {
	Campaigns     repository.CampaignRepository
	Contributions repository.ContributionRepository
	Wallets       repository.WalletRepository
	Groups        repository.GroupRepository
	Tx            repository.TxManager

	config    *config.Config
	clock     clockwork.Clock
	logger    *zap.Logger
	campaigns *CampaignService
}

func NewContributionService(
	campaignRepo repository.CampaignRepository,
	contributionRepo repository.ContributionRepository,
	walletRepo repository.WalletRepository,
	groupRepo repository.GroupRepository,
	tx repository.TxManager,
	cfg *config.Config,
	clock clockwork.Clock,
	logger *zap.Logger,
	campaignService *CampaignService,
) *ContributionService {
	return &ContributionService{
		Campaigns:     campaignRepo,
		Contributions: contributionRepo,
		Wallets:       walletRepo,
		Groups:        groupRepo,
		Tx:            tx,
		config:        cfg,
		clock:         clock,
		logger:        logger,
		campaigns:     campaignService,
	}
}

// Settle applies a participant's payment to their earliest pending
// contribution. The wallet debit, ledger mutation and campaign aggregate all
// commit in one transaction; any failure keeps none of them.
func (s *ContributionService) Settle(ctx context.Context, groupID, campaignID, userID uuid.UUID, amountPaid decimal.Decimal) (*domain.Contribution, error) {
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
	if campaign.IsTerminal() {
		return nil, customError.Conflict("this campaign is no longer accepting contributions")
	}

	now := s.clock.Now().UTC()
	if now.After(endOfDay(campaign.EndDate)) {
		return nil, customError.Timing("this campaign has ended, contributions are closed")
	}

	isMember, err := s.Groups.IsActiveMember(ctx, groupID, userID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	if !isMember {
		return nil, customError.Forbidden("you are not a member of this group")
	}
	if !campaign.HasParticipant(userID) {
		return nil, customError.Forbidden("you are not a participant of this campaign")
	}

	if !amountPaid.IsPositive() {
		return nil, customError.Validation("amount paid must be a positive number")
	}

	var settled *domain.Contribution
	err = s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		contribution, err := s.Contributions.NextPending(ctx, campaignID, userID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return customError.Conflict("no pending contribution found for this campaign")
			}
			return customError.WrapDatabaseError(err)
		}

		// the window comes from the obligation's stored period, never from
		// the caller's current date
		windowStart, windowEnd := schedule.Window(
			contribution.Year,
			time.Month(contribution.Month),
			campaign.SavingsDay,
			s.config.Business.SettlementWindowDays,
		)

		timing := schedule.Classify(now, windowStart, windowEnd)
		if timing == schedule.TooEarly {
			return customError.Timing(
				fmt.Sprintf("you can contribute starting %s", windowStart.Format("Mon Jan 2 2006")))
		}

		isLate := timing == schedule.Late
		penalty := decimal.Zero
		if isLate {
			penalty = campaign.PenaltyAmount
		}
		expected := campaign.AmountPerMonth.Add(penalty)

		if amountPaid.GreaterThan(expected) {
			return customError.Validation(
				fmt.Sprintf("overpayment detected, expected: %s but received: %s", expected, amountPaid))
		}
		if amountPaid.LessThan(expected) {
			return customError.Validation(
				fmt.Sprintf("insufficient amount, expected: %s but received: %s", expected, amountPaid))
		}

		balance, err := s.Wallets.GetBalance(ctx, userID)
		if err != nil {
			return customError.WrapDatabaseError(err)
		}
		if balance.LessThan(expected) {
			return customError.InsufficientFunds("insufficient wallet balance, please add amount to your wallet first")
		}

		if err := s.Wallets.Debit(ctx, userID, expected); err != nil {
			return err
		}

		ok, err := s.Contributions.MarkPaid(ctx, contribution.ID, expected, isLate, penalty, now)
		if err != nil {
			return customError.WrapDatabaseError(err)
		}
		if !ok {
			// a concurrent settlement won this row
			return customError.Conflict("contribution has already been settled")
		}

		if err := s.Campaigns.IncrementTotalSaved(ctx, campaignID, expected); err != nil {
			return customError.WrapDatabaseError(err)
		}

		if campaign.Status == domain.CampaignStatusScheduled &&
			!now.Before(schedule.StartOfDay(campaign.StartDate)) && !now.After(endOfDay(campaign.EndDate)) {
			if err := s.Campaigns.UpdateStatus(ctx, campaignID, domain.CampaignStatusOngoing); err != nil {
				return customError.WrapDatabaseError(err)
			}
		}

		paidOn := now
		contribution.AmountPaid = expected
		contribution.IsLate = isLate
		contribution.PenaltyApplied = penalty
		contribution.PaidOn = &paidOn
		contribution.Status = domain.ContributionStatusPaid
		settled = contribution
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.campaigns.InvalidateCampaign(ctx, campaignID)

	s.logger.Info("contribution settled",
		zap.String("campaign_id", campaignID.String()),
		zap.String("user_id", userID.String()),
		zap.String("amount", settled.AmountPaid.String()),
		zap.Bool("is_late", settled.IsLate),
	)

	return settled, nil
}

// endOfDay returns the last instant of t's calendar day in UTC.
func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), time.UTC)
}
