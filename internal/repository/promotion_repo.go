package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/Cheertaboi/Billing-system-promo-engine/internal/models"
)

type PromotionRepo struct {
	db       *sql.DB
	products *ProductRepo
}

func NewPromotionRepo(db *sql.DB, products *ProductRepo) *PromotionRepo {
	return &PromotionRepo{db: db, products: products}
}

// GetPromotion loads a fully populated promotion. It returns nil, nil when
// there is no such promotion.
func (r *PromotionRepo) GetPromotion(ctx context.Context, id string) (*models.Promotion, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}

	var (
		p   models.Promotion
		row promotionRow
	)
	query := `
		SELECT id, name, promo_type, active, bundle_price,
		       buy_product_id, get_product_id, min_quantity_per_set,
		       min_quantity, min_order_value, discount_kind, discount_value,
		       created_at, updated_at
		FROM promotions
		WHERE id = $1;
	`
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID,
		&p.Name,
		&row.PromoType,
		&p.Active,
		&row.BundlePrice,
		&row.BuyProductID,
		&row.GetProductID,
		&row.MinQuantityPerSet,
		&row.MinQuantity,
		&row.MinOrderValue,
		&row.DiscountKind,
		&row.DiscountValue,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	products, err := r.getPromotionProducts(ctx, id)
	if err != nil {
		return nil, err
	}

	var getProduct *models.Product
	if row.GetProductID.Valid {
		found, err := r.products.GetProducts(ctx, []string{row.GetProductID.String})
		if err != nil {
			return nil, fmt.Errorf("load get product: %w", err)
		}
		if gp, ok := found[row.GetProductID.String]; ok {
			getProduct = &gp
		}
	}

	rule, err := buildRule(row, products, getProduct)
	if err != nil {
		return nil, err
	}
	p.Rule = rule
	return &p, nil
}

func (r *PromotionRepo) getPromotionProducts(ctx context.Context, promoID string) ([]productRow, error) {
	query := `
		SELECT product_id, required_quantity
		FROM promotion_products
		WHERE promotion_id = $1
		ORDER BY position
	`
	rows, err := r.db.QueryContext(ctx, query, promoID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []productRow
	for rows.Next() {
		var pr productRow
		if err := rows.Scan(&pr.ProductID, &pr.RequiredQuantity); err != nil {
			return nil, err
		}
		products = append(products, pr)
	}
	return products, rows.Err()
}

// CreatePromotion inserts p and its product rows inside tx.
func (r *PromotionRepo) CreatePromotion(ctx context.Context, tx *sql.Tx, p *models.Promotion) error {
	row, products, err := flattenRule(p.Rule)
	if err != nil {
		return err
	}

	insert := `
		INSERT INTO promotions
		(id, name, promo_type, active, bundle_price, buy_product_id, get_product_id,
		 min_quantity_per_set, min_quantity, min_order_value, discount_kind, discount_value,
		 created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,NOW(),NOW())
		RETURNING created_at, updated_at
	`
	err = tx.QueryRowContext(ctx, insert,
		p.ID,
		p.Name,
		row.PromoType,
		p.Active,
		row.BundlePrice,
		row.BuyProductID,
		row.GetProductID,
		row.MinQuantityPerSet,
		row.MinQuantity,
		row.MinOrderValue,
		row.DiscountKind,
		row.DiscountValue,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert promotion: %w", productRefErr(err))
	}

	stmt := `INSERT INTO promotion_products (promotion_id, position, product_id, required_quantity) VALUES ($1, $2, $3, $4)`
	for i, pr := range products {
		if _, err := tx.ExecContext(ctx, stmt, p.ID, i, pr.ProductID, pr.RequiredQuantity); err != nil {
			return fmt.Errorf("insert promotion product: %w", productRefErr(err))
		}
	}
	return nil
}

// productRefErr reports a promotion that points at an unknown product as
// models.ErrProductNotFound.
func productRefErr(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23503" {
		return fmt.Errorf("%w: %s", models.ErrProductNotFound, pqErr.Detail)
	}
	return err
}
