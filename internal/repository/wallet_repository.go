package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	customError "github.com/arisanku/savings-engine/pkg/errors"
)

type walletRepository struct {
	db *sqlx.DB
}

func NewWalletRepository(db *sqlx.DB) WalletRepository {
	return &walletRepository{db: db}
}

func (r *walletRepository) GetBalance(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	query := `SELECT wallet_balance FROM users WHERE id = $1`

	var balance decimal.Decimal
	if err := sqlx.GetContext(ctx, queryer(ctx, r.db), &balance, query, userID); err != nil {
		return decimal.Zero, err
	}
	return balance, nil
}

func (r *walletRepository) Debit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return customError.Validation("debit amount must be positive")
	}

	// the balance guard re-checks inside the transaction, so a racing debit
	// can never take the balance negative
	query := `UPDATE users
		SET wallet_balance = wallet_balance - $2, updated_at = $3
		WHERE id = $1 AND wallet_balance >= $2`

	result, err := queryer(ctx, r.db).ExecContext(ctx, query, userID, amount, time.Now())
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return customError.InsufficientFunds("insufficient wallet balance, please add amount to your wallet first")
	}

	return nil
}

func (r *walletRepository) Credit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return customError.Validation("credit amount must be positive")
	}

	query := `UPDATE users
		SET wallet_balance = wallet_balance + $2, updated_at = $3
		WHERE id = $1`

	result, err := queryer(ctx, r.db).ExecContext(ctx, query, userID, amount, time.Now())
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return customError.NotFound("user not found")
	}

	return nil
}
