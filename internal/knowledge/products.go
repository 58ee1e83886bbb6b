package knowledge

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/beforest/forest-guide/internal/pipeline/router"
)

// ProductCatalog reads structured catalog rows from Postgres.
type ProductCatalog struct {
	db *sql.DB
}

func NewProductCatalog(db *sql.DB) *ProductCatalog {
	return &ProductCatalog{db: db}
}

// LookupByBrand returns active rows for a brand, stable-ordered so summaries
// do not shuffle between redeliveries.
func (c *ProductCatalog) LookupByBrand(ctx context.Context, brand string, limit int) ([]router.Product, error) {
	const query = `
		SELECT name, category, availability, price_text
		FROM products
		WHERE brand = $1 AND active
		ORDER BY category, name
		LIMIT $2`

	rows, err := c.db.QueryContext(ctx, query, brand, limit)
	if err != nil {
		return nil, fmt.Errorf("lookup products for %s: %w", brand, err)
	}
	defer rows.Close()

	var out []router.Product
	for rows.Next() {
		var p router.Product
		if err := rows.Scan(&p.Name, &p.Category, &p.Availability, &p.PriceText); err != nil {
			return nil, fmt.Errorf("scan product row: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product rows: %w", err)
	}
	return out, nil
}
