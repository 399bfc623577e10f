package store

import (
	"context"
	"fmt"

	"log/slog"

	"github.com/m3rciful/topupbot/core/logger"
)

// Products returns the full catalog ordered by id.
func (s *Store) Products(ctx context.Context) ([]Product, error) {
	var list []Product
	if err := s.db.SelectContext(ctx, &list, `SELECT id, name, price FROM products ORDER BY id`); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return list, nil
}

// ProductByID fetches a single product or ErrNotFound.
func (s *Store) ProductByID(ctx context.Context, id int64) (Product, error) {
	var p Product
	err := s.db.GetContext(ctx, &p, `SELECT id, name, price FROM products WHERE id = $1`, id)
	if err != nil {
		if isNoRows(err) {
			return Product{}, ErrNotFound
		}
		return Product{}, fmt.Errorf("get product %d: %w", id, err)
	}
	return p, nil
}

// CreateProduct inserts a catalog row and returns its generated id.
func (s *Store) CreateProduct(ctx context.Context, name string, price float64) (int64, error) {
	var id int64
	err := s.db.GetContext(ctx, &id,
		`INSERT INTO products (name, price) VALUES ($1, $2) RETURNING id`, name, price)
	if err != nil {
		logger.Error(ctx, "service.catalog", "product.create.failed",
			slog.String("err", err.Error()),
		)
		return 0, fmt.Errorf("create product: %w", err)
	}
	logger.Info(ctx, "service.catalog", "product.created",
		slog.Int64("product_id", id),
		slog.Float64("price", price),
	)
	return id, nil
}

// UpdatePrice changes a product price in place.
func (s *Store) UpdatePrice(ctx context.Context, id int64, price float64) error {
	res, err := s.db.ExecContext(ctx, `UPDATE products SET price = $2 WHERE id = $1`, id, price)
	if err != nil {
		return fmt.Errorf("update price %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update price %d: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	logger.Info(ctx, "service.catalog", "product.price_updated",
		slog.Int64("product_id", id),
		slog.Float64("price", price),
	)
	return nil
}

// DeleteProduct removes the catalog row. Existing orders keep their snapshot total.
func (s *Store) DeleteProduct(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete product %d: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	logger.Info(ctx, "service.catalog", "product.deleted",
		slog.Int64("product_id", id),
	)
	return nil
}

// SeedDemo inserts the fixed demo catalog used by the adddemo command.
func (s *Store) SeedDemo(ctx context.Context) error {
	demo := []Product{
		{Name: "UC PUBG", Price: 0.99},
		{Name: "Diamonds Free Fire", Price: 0.79},
		{Name: "CP Call of Duty", Price: 1.49},
		{Name: "Robux", Price: 0.50},
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed demo: %w", err)
	}
	defer tx.Rollback()

	for _, p := range demo {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO products (name, price) VALUES ($1, $2)`, p.Name, p.Price); err != nil {
			return fmt.Errorf("seed demo %q: %w", p.Name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed demo: %w", err)
	}
	logger.Info(ctx, "service.catalog", "catalog.seeded",
		slog.Int("count", len(demo)),
	)
	return nil
}
