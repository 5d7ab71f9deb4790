package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/arisanku/savings-engine/internal/domain"
)

// TxManager runs a function inside a database transaction. The transaction is
// carried in the context, so every repository call made through fn joins it.
// Nested calls join the outer transaction.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// CampaignRepository defines data operations on group campaigns
type CampaignRepository interface {
	// Create inserts a new campaign
	Create(ctx context.Context, campaign *domain.GroupCampaign) error

	// AddParticipants freezes the participant set for a campaign
	AddParticipants(ctx context.Context, campaignID uuid.UUID, userIDs []uuid.UUID) error

	// GetByID retrieves a campaign with its participant set
	GetByID(ctx context.Context, id uuid.UUID) (*domain.GroupCampaign, error)

	// FindByName retrieves a campaign by name within a group
	FindByName(ctx context.Context, groupID uuid.UUID, name string) (*domain.GroupCampaign, error)

	// FindActiveByGroup retrieves the group's scheduled or ongoing campaign, if any
	FindActiveByGroup(ctx context.Context, groupID uuid.UUID) (*domain.GroupCampaign, error)

	// UpdateStatus advances a campaign's status
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error

	// IncrementTotalSaved adds a settled amount to the campaign's running total
	IncrementTotalSaved(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error

	// MarkDistributed flips is_distributed from false to true. Returns false
	// when another distribution already won the flag.
	MarkDistributed(ctx context.Context, id uuid.UUID) (bool, error)

	// ListScheduledDue lists scheduled campaigns whose start date has passed
	ListScheduledDue(ctx context.Context, now time.Time) ([]*domain.GroupCampaign, error)

	// ListMaturedUndistributed lists campaigns past their end date that have
	// not distributed yet
	ListMaturedUndistributed(ctx context.Context, now time.Time) ([]*domain.GroupCampaign, error)

	// SaveDistribution persists the distribution details
	SaveDistribution(ctx context.Context, details *domain.DistributionDetails) error

	// GetDistribution retrieves the distribution details for a campaign
	GetDistribution(ctx context.Context, campaignID uuid.UUID) (*domain.DistributionDetails, error)
}

// ContributionRepository defines data operations on the contribution ledger
type ContributionRepository interface {
	// BulkCreate inserts the full ledger for a campaign
	BulkCreate(ctx context.Context, contributions []*domain.Contribution) error

	// ListByCampaign retrieves every ledger row for a campaign
	ListByCampaign(ctx context.Context, campaignID uuid.UUID) ([]*domain.Contribution, error)

	// NextPending retrieves the participant's earliest pending contribution
	NextPending(ctx context.Context, campaignID, userID uuid.UUID) (*domain.Contribution, error)

	// MarkPaid settles a pending contribution. Returns false when the row was
	// no longer pending (first writer wins).
	MarkPaid(ctx context.Context, id uuid.UUID, amountPaid decimal.Decimal, isLate bool, penalty decimal.Decimal, paidOn time.Time) (bool, error)

	// FailExpired marks a campaign's remaining pending rows failed, recording
	// the forfeited penalty amount against each. Returns the row count.
	FailExpired(ctx context.Context, campaignID uuid.UUID, forfeit decimal.Decimal) (int64, error)
}

// WalletRepository defines atomic debit/credit on user wallets
type WalletRepository interface {
	// GetBalance retrieves a user's spendable balance
	GetBalance(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error)

	// Debit subtracts amount from the balance; fails with insufficient funds
	// when the balance cannot cover it
	Debit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) error

	// Credit adds amount to the balance
	Credit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) error
}

// SavingRepository defines data operations on individual and flexible plans
type SavingRepository interface {
	CreateIndividual(ctx context.Context, saving *domain.IndividualSaving) error
	GetIndividualByID(ctx context.Context, id uuid.UUID) (*domain.IndividualSaving, error)
	FindActiveIndividualByUser(ctx context.Context, userID uuid.UUID) (*domain.IndividualSaving, error)
	UpdateIndividual(ctx context.Context, saving *domain.IndividualSaving) error

	CreateFlexible(ctx context.Context, saving *domain.FlexibleSaving) error
	GetFlexibleByID(ctx context.Context, id uuid.UUID) (*domain.FlexibleSaving, error)
	FindActiveFlexibleByUser(ctx context.Context, userID uuid.UUID) (*domain.FlexibleSaving, error)
	UpdateFlexible(ctx context.Context, saving *domain.FlexibleSaving) error
}

// GroupRepository is the read side of the membership collaborator
type GroupRepository interface {
	// GetByID retrieves a group
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Group, error)

	// IsActiveMember reports whether the user is an active member of the group
	IsActiveMember(ctx context.Context, groupID, userID uuid.UUID) (bool, error)

	// ListActiveMemberIDs lists the group's active member ids
	ListActiveMemberIDs(ctx context.Context, groupID uuid.UUID) ([]uuid.UUID, error)
}
