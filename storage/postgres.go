package storage

import (
	"context"
	"fmt"

	"github.com/amirhf/imageSearch/services/search-web/models"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, dbURL string) (*PostgresStore, error) {
	config, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

const productsByIDsQuery = `
	SELECT
		product_id,
		COALESCE(gender, ''),
		COALESCE(category, ''),
		COALESCE(sub_category, ''),
		COALESCE(product_type, ''),
		COALESCE(colour, ''),
		COALESCE(usage, ''),
		COALESCE(product_title, ''),
		COALESCE(image, ''),
		COALESCE(image_url, '')
	FROM products
	WHERE product_id = ANY($1)
`

// ProductsByIDs loads the catalog rows for ids, returned in the order of ids.
// Unknown ids are skipped.
func (s *PostgresStore) ProductsByIDs(ctx context.Context, ids []int64) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}

	rows, err := s.pool.Query(ctx, productsByIDsQuery, ids)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		var p models.Product
		var imageFile string
		err := rows.Scan(
			&p.ProductID,
			&p.Gender,
			&p.Category,
			&p.SubCategory,
			&p.ProductType,
			&p.Colour,
			&p.Usage,
			&p.ProductTitle,
			&imageFile,
			&p.ImageURL,
		)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		p.ID = models.ProductIDString(p.ProductID)
		if imageFile != "" {
			p.Image = "/images/" + imageFile
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return OrderByIDs(products, ids), nil
}

// OrderByIDs sorts products to follow ids. Products whose id is not listed
// are dropped.
func OrderByIDs(products []models.Product, ids []int64) []models.Product {
	byID := make(map[int64]models.Product, len(products))
	for _, p := range products {
		byID[p.ProductID] = p
	}
	ordered := make([]models.Product, 0, len(products))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			ordered = append(ordered, p)
			delete(byID, id)
		}
	}
	return ordered
}
