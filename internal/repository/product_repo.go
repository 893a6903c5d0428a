package repository

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"github.com/Cheertaboi/Billing-system-promo-engine/internal/models"
)

type ProductRepo struct {
	db *sql.DB
}

func NewProductRepo(db *sql.DB) *ProductRepo {
	return &ProductRepo{db: db}
}

// GetProducts returns the products with the given ids keyed by id. Unknown ids
// are simply absent from the map.
func (r *ProductRepo) GetProducts(ctx context.Context, ids []string) (map[string]models.Product, error) {
	products := make(map[string]models.Product, len(ids))
	if len(ids) == 0 {
		return products, nil
	}

	query := `SELECT id, name, price FROM products WHERE id = ANY($1)`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price); err != nil {
			return nil, err
		}
		products[p.ID] = p
	}
	return products, rows.Err()
}
