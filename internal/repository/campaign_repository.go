package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/arisanku/savings-engine/internal/domain"
)

type campaignRepository struct {
	db *sqlx.DB
}

func NewCampaignRepository(db *sqlx.DB) CampaignRepository {
	return &campaignRepository{db: db}
}

const campaignColumns = `id, group_id, name, start_date, end_date, savings_day, duration_months,
	amount_per_month, penalty_amount, status, created_by, total_saved, is_distributed, created_at, updated_at`

func (r *campaignRepository) Create(ctx context.Context, campaign *domain.GroupCampaign) error {
	query := `
		INSERT INTO group_campaigns (id, group_id, name, start_date, end_date, savings_day, duration_months,
			amount_per_month, penalty_amount, status, created_by, total_saved, is_distributed, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := queryer(ctx, r.db).ExecContext(ctx, query,
		campaign.ID,
		campaign.GroupID,
		campaign.Name,
		campaign.StartDate,
		campaign.EndDate,
		campaign.SavingsDay,
		campaign.DurationMonths,
		campaign.AmountPerMonth,
		campaign.PenaltyAmount,
		campaign.Status,
		campaign.CreatedBy,
		campaign.TotalSaved,
		campaign.IsDistributed,
		campaign.CreatedAt,
		campaign.UpdatedAt,
	)

	return err
}

func (r *campaignRepository) AddParticipants(ctx context.Context, campaignID uuid.UUID, userIDs []uuid.UUID) error {
	query := `INSERT INTO campaign_participants (campaign_id, user_id) VALUES ($1, $2)`

	q := queryer(ctx, r.db)
	for _, userID := range userIDs {
		if _, err := q.ExecContext(ctx, query, campaignID, userID); err != nil {
			return err
		}
	}

	return nil
}

func (r *campaignRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.GroupCampaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM group_campaigns WHERE id = $1`

	var campaign domain.GroupCampaign
	if err := sqlx.GetContext(ctx, queryer(ctx, r.db), &campaign, query, id); err != nil {
		return nil, err
	}

	participants, err := r.listParticipants(ctx, id)
	if err != nil {
		return nil, err
	}
	campaign.Participants = participants

	return &campaign, nil
}

func (r *campaignRepository) listParticipants(ctx context.Context, campaignID uuid.UUID) ([]uuid.UUID, error) {
	query := `SELECT user_id FROM campaign_participants WHERE campaign_id = $1`

	var ids []uuid.UUID
	if err := sqlx.SelectContext(ctx, queryer(ctx, r.db), &ids, query, campaignID); err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *campaignRepository) FindByName(ctx context.Context, groupID uuid.UUID, name string) (*domain.GroupCampaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM group_campaigns WHERE group_id = $1 AND name = $2`

	var campaign domain.GroupCampaign
	if err := sqlx.GetContext(ctx, queryer(ctx, r.db), &campaign, query, groupID, name); err != nil {
		return nil, err
	}
	return &campaign, nil
}

func (r *campaignRepository) FindActiveByGroup(ctx context.Context, groupID uuid.UUID) (*domain.GroupCampaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM group_campaigns
		WHERE group_id = $1 AND status IN ('scheduled', 'ongoing')`

	var campaign domain.GroupCampaign
	if err := sqlx.GetContext(ctx, queryer(ctx, r.db), &campaign, query, groupID); err != nil {
		return nil, err
	}
	return &campaign, nil
}

func (r *campaignRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	query := `UPDATE group_campaigns SET status = $2, updated_at = $3 WHERE id = $1`

	_, err := queryer(ctx, r.db).ExecContext(ctx, query, id, status, time.Now())
	return err
}

func (r *campaignRepository) IncrementTotalSaved(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error {
	query := `UPDATE group_campaigns SET total_saved = total_saved + $2, updated_at = $3 WHERE id = $1`

	_, err := queryer(ctx, r.db).ExecContext(ctx, query, id, amount, time.Now())
	return err
}

func (r *campaignRepository) MarkDistributed(ctx context.Context, id uuid.UUID) (bool, error) {
	// conditional update is the mutual-exclusion primitive for distribution
	query := `UPDATE group_campaigns SET is_distributed = TRUE, updated_at = $2
		WHERE id = $1 AND is_distributed = FALSE`

	result, err := queryer(ctx, r.db).ExecContext(ctx, query, id, time.Now())
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

func (r *campaignRepository) ListScheduledDue(ctx context.Context, now time.Time) ([]*domain.GroupCampaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM group_campaigns
		WHERE status = 'scheduled' AND start_date <= $1 AND end_date >= $1`

	var campaigns []*domain.GroupCampaign
	if err := sqlx.SelectContext(ctx, queryer(ctx, r.db), &campaigns, query, now); err != nil {
		return nil, err
	}
	return campaigns, nil
}

func (r *campaignRepository) ListMaturedUndistributed(ctx context.Context, now time.Time) ([]*domain.GroupCampaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM group_campaigns
		WHERE is_distributed = FALSE AND end_date < $1 AND status IN ('scheduled', 'ongoing')`

	var campaigns []*domain.GroupCampaign
	if err := sqlx.SelectContext(ctx, queryer(ctx, r.db), &campaigns, query, now); err != nil {
		return nil, err
	}
	return campaigns, nil
}

func (r *campaignRepository) SaveDistribution(ctx context.Context, details *domain.DistributionDetails) error {
	q := queryer(ctx, r.db)

	insertDistribution := `INSERT INTO distributions (campaign_id, distributed_at) VALUES ($1, $2)`
	if _, err := q.ExecContext(ctx, insertDistribution, details.CampaignID, details.DistributedAt); err != nil {
		return err
	}

	insertPayout := `INSERT INTO distribution_payouts (campaign_id, user_id, payout, bonus)
		VALUES ($1, $2, $3, $4)`
	for userID, payout := range details.PayoutPerUser {
		bonus := details.PenaltyRedistributed[userID]
		if _, err := q.ExecContext(ctx, insertPayout, details.CampaignID, userID, payout, bonus); err != nil {
			return err
		}
	}

	return nil
}

func (r *campaignRepository) GetDistribution(ctx context.Context, campaignID uuid.UUID) (*domain.DistributionDetails, error) {
	q := queryer(ctx, r.db)

	var distributedAt time.Time
	if err := sqlx.GetContext(ctx, q, &distributedAt,
		`SELECT distributed_at FROM distributions WHERE campaign_id = $1`, campaignID); err != nil {
		return nil, err
	}

	var rows []struct {
		UserID uuid.UUID       `db:"user_id"`
		Payout decimal.Decimal `db:"payout"`
		Bonus  decimal.Decimal `db:"bonus"`
	}
	if err := sqlx.SelectContext(ctx, q, &rows,
		`SELECT user_id, payout, bonus FROM distribution_payouts WHERE campaign_id = $1`, campaignID); err != nil {
		return nil, err
	}

	details := &domain.DistributionDetails{
		CampaignID:           campaignID,
		DistributedAt:        distributedAt,
		PayoutPerUser:        make(map[uuid.UUID]decimal.Decimal, len(rows)),
		PenaltyRedistributed: make(map[uuid.UUID]decimal.Decimal),
	}
	for _, row := range rows {
		details.PayoutPerUser[row.UserID] = row.Payout
		if !row.Bonus.IsZero() {
			details.PenaltyRedistributed[row.UserID] = row.Bonus
		}
	}

	return details, nil
}
