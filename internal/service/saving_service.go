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

	"github.com/arisanku/savings-engine/internal/domain"
	"github.com/arisanku/savings-engine/internal/repository"
	"github.com/arisanku/savings-engine/internal/schedule"
	customError "github.com/arisanku/savings-engine/pkg/errors"
)

// SavingService manages individual and flexible savings plans.
type SavingService struct {
	Savings repository.SavingRepository
	Wallets repository.WalletRepository
	Tx      repository.TxManager

	clock  clockwork.Clock
	logger *zap.Logger
}

func NewSavingService(
	savingRepo repository.SavingRepository,
	walletRepo repository.WalletRepository,
	tx repository.TxManager,
	clock clockwork.Clock,
	logger *zap.Logger,
) *SavingService {
	return &SavingService{
		Savings: savingRepo,
		Wallets: walletRepo,
		Tx:      tx,
		clock:   clock,
		logger:  logger,
	}
}

// CreateIndividual starts a monthly plan. The first contribution is debited
// immediately, so the plan is never created empty.
func (s *SavingService) CreateIndividual(ctx context.Context, userID uuid.UUID, request *domain.CreateIndividualSavingRequest) (*domain.IndividualSaving, error) {
	if !request.AmountPerMonth.IsPositive() {
		return nil, customError.Validation("amount per month must be positive")
	}
	if request.DurationMonths < 1 {
		return nil, customError.Validation("duration must be at least 1 month")
	}

	if active, err := s.Savings.FindActiveIndividualByUser(ctx, userID); err == nil && active != nil {
		return nil, customError.Conflict("you already have an active savings campaign")
	} else if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, customError.WrapDatabaseError(err)
	}

	now := s.clock.Now().UTC()
	saving := &domain.IndividualSaving{
		ID:             uuid.New(),
		UserID:         userID,
		Name:           request.Name,
		AmountPerMonth: request.AmountPerMonth,
		DurationMonths: request.DurationMonths,
		AmountSaved:    request.AmountPerMonth,
		StartDate:      now,
		EndDate:        schedule.AddMonths(schedule.StartOfDay(now), request.DurationMonths),
		LastSavedAt:    now,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	err := s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.Wallets.Debit(ctx, userID, request.AmountPerMonth); err != nil {
			return err
		}
		if err := s.Savings.CreateIndividual(ctx, saving); err != nil {
			return customError.WrapDatabaseError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return saving, nil
}

// ContributeIndividual posts one monthly contribution: at most one per
// calendar month, exact amount only.
func (s *SavingService) ContributeIndividual(ctx context.Context, userID, savingID uuid.UUID, amountPaid decimal.Decimal) (*domain.IndividualSaving, error) {
	saving, err := s.Savings.GetIndividualByID(ctx, savingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.NotFound("individual saving plan not found")
		}
		return nil, customError.WrapDatabaseError(err)
	}
	if saving.UserID != userID {
		return nil, customError.Forbidden("not allowed")
	}
	if !saving.IsActive {
		return nil, customError.Conflict("savings plan already ended")
	}

	now := s.clock.Now().UTC()
	if saving.LastSavedAt.Year() == now.Year() && saving.LastSavedAt.Month() == now.Month() {
		return nil, customError.Timing("already saved this month")
	}

	if !amountPaid.Equal(saving.AmountPerMonth) {
		return nil, customError.Validation(
			fmt.Sprintf("invalid amount, expected: %s but received: %s", saving.AmountPerMonth, amountPaid))
	}

	err = s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.Wallets.Debit(ctx, userID, saving.AmountPerMonth); err != nil {
			return err
		}

		saving.AmountSaved = saving.AmountSaved.Add(saving.AmountPerMonth)
		saving.LastSavedAt = now
		if err := s.Savings.UpdateIndividual(ctx, saving); err != nil {
			return customError.WrapDatabaseError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return saving, nil
}

// PayoutIndividual returns the accumulated savings to the wallet once the
// plan has matured. The active flag flips exactly once.
func (s *SavingService) PayoutIndividual(ctx context.Context, userID, savingID uuid.UUID) (*domain.IndividualSaving, error) {
	saving, err := s.Savings.GetIndividualByID(ctx, savingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.NotFound("individual saving plan not found")
		}
		return nil, customError.WrapDatabaseError(err)
	}
	if saving.UserID != userID {
		return nil, customError.Forbidden("not allowed")
	}
	if !saving.IsActive {
		return nil, customError.Conflict("savings plan has already been paid out")
	}

	now := s.clock.Now().UTC()
	if saving.EndDate.After(now) {
		return nil, customError.Timing("savings plan has not matured yet")
	}

	err = s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		if saving.AmountSaved.IsPositive() {
			if err := s.Wallets.Credit(ctx, userID, saving.AmountSaved); err != nil {
				return err
			}
		}

		saving.IsActive = false
		if err := s.Savings.UpdateIndividual(ctx, saving); err != nil {
			return customError.WrapDatabaseError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("individual plan paid out",
		zap.String("saving_id", savingID.String()),
		zap.String("amount", saving.AmountSaved.String()),
	)

	return saving, nil
}

// CreateFlexible starts a frequency-based plan. The target amount is fixed at
// creation and the first contribution is debited immediately.
func (s *SavingService) CreateFlexible(ctx context.Context, userID uuid.UUID, request *domain.CreateFlexibleSavingRequest) (*domain.FlexibleSaving, error) {
	if !request.AmountPerContribution.IsPositive() {
		return nil, customError.Validation("amount per contribution must be positive")
	}
	if request.Duration < 1 {
		return nil, customError.Validation("duration must be at least 1 period")
	}

	days, err := frequencyIntervalDays(request.Frequency)
	if err != nil {
		return nil, err
	}

	if active, err := s.Savings.FindActiveFlexibleByUser(ctx, userID); err == nil && active != nil {
		return nil, customError.Conflict("you already have an active flexible savings campaign")
	} else if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, customError.WrapDatabaseError(err)
	}

	now := s.clock.Now().UTC()
	var endDate time.Time
	if request.Frequency == domain.FrequencyMonthly {
		endDate = schedule.AddMonths(schedule.StartOfDay(now), request.Duration)
	} else {
		endDate = schedule.StartOfDay(now).AddDate(0, 0, days*request.Duration)
	}

	saving := &domain.FlexibleSaving{
		ID:                    uuid.New(),
		UserID:                userID,
		Name:                  request.Name,
		Frequency:             request.Frequency,
		AmountPerContribution: request.AmountPerContribution,
		Duration:              request.Duration,
		TotalAmount:           request.AmountPerContribution.Mul(decimal.NewFromInt(int64(request.Duration))),
		AmountSaved:           request.AmountPerContribution,
		StartDate:             now,
		EndDate:               endDate,
		LastSavedAt:           now,
		IsActive:              true,
		CreatedAt:             now,
		UpdatedAt:             now,
	}

	err = s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.Wallets.Debit(ctx, userID, request.AmountPerContribution); err != nil {
			return err
		}
		if err := s.Savings.CreateFlexible(ctx, saving); err != nil {
			return customError.WrapDatabaseError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return saving, nil
}

// ContributeFlexible posts one contribution, gated by the frequency-derived
// interval at day granularity. The plan deactivates the instant the target is
// reached.
func (s *SavingService) ContributeFlexible(ctx context.Context, userID, savingID uuid.UUID, amountPaid decimal.Decimal) (*domain.FlexibleSaving, error) {
	saving, err := s.Savings.GetFlexibleByID(ctx, savingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.NotFound("flexible saving plan not found")
		}
		return nil, customError.WrapDatabaseError(err)
	}
	if saving.UserID != userID {
		return nil, customError.Forbidden("you are not authorized to contribute to this plan")
	}
	if !saving.IsActive {
		return nil, customError.Conflict("this savings plan has already ended")
	}

	now := s.clock.Now().UTC()
	nextEligible := nextEligibleDate(saving.LastSavedAt, saving.Frequency)
	if schedule.StartOfDay(now).Before(nextEligible) {
		return nil, customError.Timing(
			fmt.Sprintf("you can make your next %s contribution on %s", saving.Frequency, nextEligible.Format("Mon Jan 2 2006")))
	}

	if !amountPaid.Equal(saving.AmountPerContribution) {
		return nil, customError.Validation(
			fmt.Sprintf("invalid amount, expected: %s but received: %s", saving.AmountPerContribution, amountPaid))
	}

	err = s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.Wallets.Debit(ctx, userID, saving.AmountPerContribution); err != nil {
			return err
		}

		saving.AmountSaved = saving.AmountSaved.Add(saving.AmountPerContribution)
		saving.LastSavedAt = now
		if saving.AmountSaved.GreaterThanOrEqual(saving.TotalAmount) {
			saving.IsActive = false
		}
		if err := s.Savings.UpdateFlexible(ctx, saving); err != nil {
			return customError.WrapDatabaseError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return saving, nil
}

// PayoutFlexible returns the accumulated savings once the plan matured or hit
// its target. Reaching the target deactivates the plan without paying it out,
// so the gate is the paid-out marker, not the active flag.
func (s *SavingService) PayoutFlexible(ctx context.Context, userID, savingID uuid.UUID) (*domain.FlexibleSaving, error) {
	saving, err := s.Savings.GetFlexibleByID(ctx, savingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.NotFound("flexible saving plan not found")
		}
		return nil, customError.WrapDatabaseError(err)
	}
	if saving.UserID != userID {
		return nil, customError.Forbidden("not authorized for this plan")
	}
	if saving.PaidOutAt != nil {
		return nil, customError.Conflict("savings plan has already been paid out")
	}

	now := s.clock.Now().UTC()
	targetReached := saving.AmountSaved.GreaterThanOrEqual(saving.TotalAmount)
	if saving.EndDate.After(now) && !targetReached {
		return nil, customError.Timing("savings plan has not matured yet")
	}

	err = s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		if saving.AmountSaved.IsPositive() {
			if err := s.Wallets.Credit(ctx, userID, saving.AmountSaved); err != nil {
				return err
			}
		}

		saving.IsActive = false
		saving.PaidOutAt = &now
		if err := s.Savings.UpdateFlexible(ctx, saving); err != nil {
			return customError.WrapDatabaseError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("flexible plan paid out",
		zap.String("saving_id", savingID.String()),
		zap.String("amount", saving.AmountSaved.String()),
	)

	return saving, nil
}

func frequencyIntervalDays(frequency string) (int, error) {
	switch frequency {
	case domain.FrequencyDaily:
		return 1, nil
	case domain.FrequencyWeekly:
		return 7, nil
	case domain.FrequencyBiWeekly:
		return 14, nil
	case domain.FrequencyMonthly:
		return 0, nil // calendar months, not a fixed day count
	default:
		return 0, customError.Validation("invalid frequency")
	}
}

// nextEligibleDate is day-granular so time-of-day never shifts eligibility.
func nextEligibleDate(lastSavedAt time.Time, frequency string) time.Time {
	last := schedule.StartOfDay(lastSavedAt)
	if frequency == domain.FrequencyMonthly {
		return schedule.AddMonths(last, 1)
	}
	days, _ := frequencyIntervalDays(frequency)
	return last.AddDate(0, 0, days)
}
