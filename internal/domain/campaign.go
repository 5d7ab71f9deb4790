package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	CampaignStatusScheduled = "scheduled"
	CampaignStatusOngoing   = "ongoing"
	CampaignStatusCompleted = "completed"
	// CampaignStatusCancelled is reserved; no transition currently reaches it.
	CampaignStatusCancelled = "cancelled"
)

// GroupCampaign is a shared savings campaign owned by a group. Participants
// are frozen at creation time to the group's active members.
type GroupCampaign struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	GroupID        uuid.UUID       `json:"group_id" db:"group_id"`
	Name           string          `json:"name" db:"name"`
	StartDate      time.Time       `json:"start_date" db:"start_date"`
	EndDate        time.Time       `json:"end_date" db:"end_date"`
	SavingsDay     int             `json:"savings_day" db:"savings_day"`
	DurationMonths int             `json:"duration_months" db:"duration_months"`
	AmountPerMonth decimal.Decimal `json:"amount_per_month" db:"amount_per_month"`
	PenaltyAmount  decimal.Decimal `json:"penalty_amount" db:"penalty_amount"`
	Status         string          `json:"status" db:"status"`
	CreatedBy      uuid.UUID       `json:"created_by" db:"created_by"`
	TotalSaved     decimal.Decimal `json:"total_saved" db:"total_saved"`
	IsDistributed  bool            `json:"is_distributed" db:"is_distributed"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at" db:"updated_at"`

	// Participants is loaded from campaign_participants, not a column.
	Participants []uuid.UUID `json:"participants" db:"-"`
}

// HasParticipant reports whether userID is frozen into this campaign.
func (c *GroupCampaign) HasParticipant(userID uuid.UUID) bool {
	for _, id := range c.Participants {
		if id == userID {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the campaign can no longer advance.
func (c *GroupCampaign) IsTerminal() bool {
	return c.Status == CampaignStatusCompleted || c.Status == CampaignStatusCancelled
}

// DistributionDetails records the one-time terminal payout of a campaign.
type DistributionDetails struct {
	CampaignID           uuid.UUID                     `json:"campaign_id"`
	DistributedAt        time.Time                     `json:"distributed_at"`
	PayoutPerUser        map[uuid.UUID]decimal.Decimal `json:"payout_per_user"`
	PenaltyRedistributed map[uuid.UUID]decimal.Decimal `json:"penalty_redistributed"`
}

// DTOs for requests and responses

type CreateCampaignRequest struct {
	Name           string          `json:"name" validate:"required"`
	StartDate      time.Time       `json:"start_date" validate:"required"`
	SavingsDay     int             `json:"savings_day" validate:"required,min=1,max=31"`
	DurationMonths int             `json:"duration_months" validate:"required,min=1"`
	AmountPerMonth decimal.Decimal `json:"amount_per_month" validate:"required"`
	PenaltyAmount  decimal.Decimal `json:"penalty_amount"`
}

type CreateCampaignResponse struct {
	Campaign *GroupCampaign `json:"campaign"`
}

type CampaignDetailResponse struct {
	Campaign      *GroupCampaign  `json:"campaign"`
	Contributions []*Contribution `json:"contributions"`
}
