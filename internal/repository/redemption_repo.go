package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type RedemptionRepo struct {
	db *sql.DB
}

func NewRedemptionRepo(db *sql.DB) *RedemptionRepo {
	return &RedemptionRepo{db: db}
}

// RecordRedemption stores that promoID discounted orderID. Recording the same
// pair twice is a no-op so a retried order does not count double.
func (r *RedemptionRepo) RecordRedemption(ctx context.Context, tx *sql.Tx, promoID, orderID string, discount decimal.Decimal) error {
	query := `
		INSERT INTO promotion_redemptions (id, promotion_id, order_id, discount, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (promotion_id, order_id) DO NOTHING
	`
	_, err := tx.ExecContext(ctx, query, uuid.New(), promoID, orderID, discount)
	return err
}

func (r *RedemptionRepo) CountRedemptions(ctx context.Context, promoID string) (int, error) {
	if _, err := uuid.Parse(promoID); err != nil {
		return 0, nil
	}
	var n int
	query := `SELECT COUNT(*) FROM promotion_redemptions WHERE promotion_id = $1`
	if err := r.db.QueryRowContext(ctx, query, promoID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
