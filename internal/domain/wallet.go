package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Wallet is a user's internal spendable balance. It funds every contribution
// and receives every payout. Balance never goes below zero.
type Wallet struct {
	UserID    uuid.UUID       `json:"user_id" db:"user_id"`
	Balance   decimal.Decimal `json:"balance" db:"wallet_balance"`
	UpdatedAt time.Time       `json:"updated_at" db:"updated_at"`
}
