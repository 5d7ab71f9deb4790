package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/arisanku/savings-engine/internal/domain"
)

type contributionRepository struct {
	db *sqlx.DB
}

func NewContributionRepository(db *sqlx.DB) ContributionRepository {
	return &contributionRepository{db: db}
}

const contributionColumns = `id, user_id, campaign_id, group_id, year, month, scheduled_date,
	amount_paid, is_late, penalty_applied, paid_on, status, created_at`

func (r *contributionRepository) BulkCreate(ctx context.Context, contributions []*domain.Contribution) error {
	query := `
		INSERT INTO contributions (id, user_id, campaign_id, group_id, year, month, scheduled_date,
			amount_paid, is_late, penalty_applied, paid_on, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	q := queryer(ctx, r.db)
	for _, c := range contributions {
		_, err := q.ExecContext(ctx, query,
			c.ID,
			c.UserID,
			c.CampaignID,
			c.GroupID,
			c.Year,
			c.Month,
			c.ScheduledDate,
			c.AmountPaid,
			c.IsLate,
			c.PenaltyApplied,
			c.PaidOn,
			c.Status,
			c.CreatedAt,
		)
		if err != nil {
			return err
		}
	}

	return nil
}

func (r *contributionRepository) ListByCampaign(ctx context.Context, campaignID uuid.UUID) ([]*domain.Contribution, error) {
	query := `SELECT ` + contributionColumns + ` FROM contributions
		WHERE campaign_id = $1
		ORDER BY user_id, scheduled_date`

	var contributions []*domain.Contribution
	if err := sqlx.SelectContext(ctx, queryer(ctx, r.db), &contributions, query, campaignID); err != nil {
		return nil, err
	}
	return contributions, nil
}

func (r *contributionRepository) NextPending(ctx context.Context, campaignID, userID uuid.UUID) (*domain.Contribution, error) {
	// earliest pending first enforces strictly sequential period settlement
	query := `SELECT ` + contributionColumns + ` FROM contributions
		WHERE campaign_id = $1 AND user_id = $2 AND status = 'pending'
		ORDER BY scheduled_date
		LIMIT 1`

	var contribution domain.Contribution
	if err := sqlx.GetContext(ctx, queryer(ctx, r.db), &contribution, query, campaignID, userID); err != nil {
		return nil, err
	}
	return &contribution, nil
}

func (r *contributionRepository) MarkPaid(ctx context.Context, id uuid.UUID, amountPaid decimal.Decimal, isLate bool, penalty decimal.Decimal, paidOn time.Time) (bool, error) {
	// the status guard makes concurrent settlements of the same row mutually
	// exclusive: the loser sees zero rows affected
	query := `UPDATE contributions
		SET amount_paid = $2, is_late = $3, penalty_applied = $4, paid_on = $5, status = 'paid'
		WHERE id = $1 AND status = 'pending'`

	result, err := queryer(ctx, r.db).ExecContext(ctx, query, id, amountPaid, isLate, penalty, paidOn)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

func (r *contributionRepository) FailExpired(ctx context.Context, campaignID uuid.UUID, forfeit decimal.Decimal) (int64, error) {
	// the forfeited penalty recorded on failed rows is what funds the
	// redistribution pool at distribution time
	query := `UPDATE contributions
		SET status = 'failed', amount_paid = $2, penalty_applied = $2
		WHERE campaign_id = $1 AND status = 'pending'`

	result, err := queryer(ctx, r.db).ExecContext(ctx, query, campaignID, forfeit)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}
