package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	ContributionStatusPending = "pending"
	ContributionStatusPaid    = "paid"
	ContributionStatusFailed  = "failed"
)

// Contribution is one participant's obligation for one scheduled period of a
// group campaign. The (user, campaign, month, year) tuple is unique; a period
// settles at most once.
type Contribution struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	UserID         uuid.UUID       `json:"user_id" db:"user_id"`
	CampaignID     uuid.UUID       `json:"campaign_id" db:"campaign_id"`
	GroupID        uuid.UUID       `json:"group_id" db:"group_id"`
	Year           int             `json:"year" db:"year"`
	Month          int             `json:"month" db:"month"` // 1-12
	ScheduledDate  time.Time       `json:"scheduled_date" db:"scheduled_date"`
	AmountPaid     decimal.Decimal `json:"amount_paid" db:"amount_paid"`
	IsLate         bool            `json:"is_late" db:"is_late"`
	PenaltyApplied decimal.Decimal `json:"penalty_applied" db:"penalty_applied"`
	PaidOn         *time.Time      `json:"paid_on,omitempty" db:"paid_on"`
	Status         string          `json:"status" db:"status"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
}

type ContributeRequest struct {
	AmountPaid decimal.Decimal `json:"amount_paid" validate:"required"`
}
