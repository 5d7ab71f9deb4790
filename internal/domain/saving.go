package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	FrequencyDaily    = "daily"
	FrequencyWeekly   = "weekly"
	FrequencyBiWeekly = "bi-weekly"
	FrequencyMonthly  = "monthly"
)

// IndividualSaving is a single-participant monthly savings plan. The first
// contribution is taken at creation; subsequent contributions are limited to
// one per calendar month.
type IndividualSaving struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	UserID         uuid.UUID       `json:"user_id" db:"user_id"`
	Name           string          `json:"name" db:"name"`
	AmountPerMonth decimal.Decimal `json:"amount_per_month" db:"amount_per_month"`
	DurationMonths int             `json:"duration_months" db:"duration_months"`
	AmountSaved    decimal.Decimal `json:"amount_saved" db:"amount_saved"`
	StartDate      time.Time       `json:"start_date" db:"start_date"`
	EndDate        time.Time       `json:"end_date" db:"end_date"`
	LastSavedAt    time.Time       `json:"last_saved_at" db:"last_saved_at"`
	IsActive       bool            `json:"is_active" db:"is_active"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at" db:"updated_at"`
}

// FlexibleSaving is a recurring plan with a frequency-derived contribution
// interval and a fixed target. It deactivates the moment the target is
// reached; the balance stays claimable until PaidOutAt is set.
type FlexibleSaving struct {
	ID                    uuid.UUID       `json:"id" db:"id"`
	UserID                uuid.UUID       `json:"user_id" db:"user_id"`
	Name                  string          `json:"name" db:"name"`
	Frequency             string          `json:"frequency" db:"frequency"`
	AmountPerContribution decimal.Decimal `json:"amount_per_contribution" db:"amount_per_contribution"`
	Duration              int             `json:"duration" db:"duration"`
	TotalAmount           decimal.Decimal `json:"total_amount" db:"total_amount"`
	AmountSaved           decimal.Decimal `json:"amount_saved" db:"amount_saved"`
	StartDate             time.Time       `json:"start_date" db:"start_date"`
	EndDate               time.Time       `json:"end_date" db:"end_date"`
	LastSavedAt           time.Time       `json:"last_saved_at" db:"last_saved_at"`
	PaidOutAt             *time.Time      `json:"paid_out_at,omitempty" db:"paid_out_at"`
	IsActive              bool            `json:"is_active" db:"is_active"`
	CreatedAt             time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at" db:"updated_at"`
}

type CreateIndividualSavingRequest struct {
	Name           string          `json:"name" validate:"required"`
	AmountPerMonth decimal.Decimal `json:"amount_per_month" validate:"required"`
	DurationMonths int             `json:"duration_months" validate:"required,min=1"`
}

type CreateFlexibleSavingRequest struct {
	Name                  string          `json:"name" validate:"required"`
	Frequency             string          `json:"frequency" validate:"required,oneof=daily weekly bi-weekly monthly"`
	AmountPerContribution decimal.Decimal `json:"amount_per_contribution" validate:"required"`
	Duration              int             `json:"duration" validate:"required,min=1"`
}
