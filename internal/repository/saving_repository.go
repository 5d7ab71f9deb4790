package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/arisanku/savings-engine/internal/domain"
)

type savingRepository struct {
	db *sqlx.DB
}

func NewSavingRepository(db *sqlx.DB) SavingRepository {
	return &savingRepository{db: db}
}

const individualColumns = `id, user_id, name, amount_per_month, duration_months, amount_saved,
	start_date, end_date, last_saved_at, is_active, created_at, updated_at`

func (r *savingRepository) CreateIndividual(ctx context.Context, saving *domain.IndividualSaving) error {
	query := `
		INSERT INTO individual_savings (id, user_id, name, amount_per_month, duration_months, amount_saved,
			start_date, end_date, last_saved_at, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := queryer(ctx, r.db).ExecContext(ctx, query,
		saving.ID,
		saving.UserID,
		saving.Name,
		saving.AmountPerMonth,
		saving.DurationMonths,
		saving.AmountSaved,
		saving.StartDate,
		saving.EndDate,
		saving.LastSavedAt,
		saving.IsActive,
		saving.CreatedAt,
		saving.UpdatedAt,
	)

	return err
}

func (r *savingRepository) GetIndividualByID(ctx context.Context, id uuid.UUID) (*domain.IndividualSaving, error) {
	query := `SELECT ` + individualColumns + ` FROM individual_savings WHERE id = $1`

	var saving domain.IndividualSaving
	if err := sqlx.GetContext(ctx, queryer(ctx, r.db), &saving, query, id); err != nil {
		return nil, err
	}
	return &saving, nil
}

func (r *savingRepository) FindActiveIndividualByUser(ctx context.Context, userID uuid.UUID) (*domain.IndividualSaving, error) {
	query := `SELECT ` + individualColumns + ` FROM individual_savings
		WHERE user_id = $1 AND is_active = TRUE`

	var saving domain.IndividualSaving
	if err := sqlx.GetContext(ctx, queryer(ctx, r.db), &saving, query, userID); err != nil {
		return nil, err
	}
	return &saving, nil
}

func (r *savingRepository) UpdateIndividual(ctx context.Context, saving *domain.IndividualSaving) error {
	query := `UPDATE individual_savings
		SET amount_saved = $2, last_saved_at = $3, is_active = $4, updated_at = $5
		WHERE id = $1`

	_, err := queryer(ctx, r.db).ExecContext(ctx, query,
		saving.ID,
		saving.AmountSaved,
		saving.LastSavedAt,
		saving.IsActive,
		time.Now(),
	)

	return err
}

const flexibleColumns = `id, user_id, name, frequency, amount_per_contribution, duration, total_amount,
	amount_saved, start_date, end_date, last_saved_at, paid_out_at, is_active, created_at, updated_at`

func (r *savingRepository) CreateFlexible(ctx context.Context, saving *domain.FlexibleSaving) error {
	query := `
		INSERT INTO flexible_savings (id, user_id, name, frequency, amount_per_contribution, duration,
			total_amount, amount_saved, start_date, end_date, last_saved_at, paid_out_at, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := queryer(ctx, r.db).ExecContext(ctx, query,
		saving.ID,
		saving.UserID,
		saving.Name,
		saving.Frequency,
		saving.AmountPerContribution,
		saving.Duration,
		saving.TotalAmount,
		saving.AmountSaved,
		saving.StartDate,
		saving.EndDate,
		saving.LastSavedAt,
		saving.PaidOutAt,
		saving.IsActive,
		saving.CreatedAt,
		saving.UpdatedAt,
	)

	return err
}

func (r *savingRepository) GetFlexibleByID(ctx context.Context, id uuid.UUID) (*domain.FlexibleSaving, error) {
	query := `SELECT ` + flexibleColumns + ` FROM flexible_savings WHERE id = $1`

	var saving domain.FlexibleSaving
	if err := sqlx.GetContext(ctx, queryer(ctx, r.db), &saving, query, id); err != nil {
		return nil, err
	}
	return &saving, nil
}

func (r *savingRepository) FindActiveFlexibleByUser(ctx context.Context, userID uuid.UUID) (*domain.FlexibleSaving, error) {
	query := `SELECT ` + flexibleColumns + ` FROM flexible_savings
		WHERE user_id = $1 AND is_active = TRUE`

	var saving domain.FlexibleSaving
	if err := sqlx.GetContext(ctx, queryer(ctx, r.db), &saving, query, userID); err != nil {
		return nil, err
	}
	return &saving, nil
}

func (r *savingRepository) UpdateFlexible(ctx context.Context, saving *domain.FlexibleSaving) error {
	query := `UPDATE flexible_savings
		SET amount_saved = $2, last_saved_at = $3, paid_out_at = $4, is_active = $5, updated_at = $6
		WHERE id = $1`

	_, err := queryer(ctx, r.db).ExecContext(ctx, query,
		saving.ID,
		saving.AmountSaved,
		saving.LastSavedAt,
		saving.PaidOutAt,
		saving.IsActive,
		time.Now(),
	)

	return err
}
