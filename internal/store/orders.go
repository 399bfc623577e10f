package store

import (
	"context"
	"fmt"

	"log/slog"

	"github.com/m3rciful/topupbot/core/logger"
)

// CreateOrder looks up the live product price and inserts a pending order
// with total = price * qty inside one transaction. Returns ErrNotFound when
// the product no longer exists.
func (s *Store) CreateOrder(ctx context.Context, userID, productID int64, qty int) (Order, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return Order{}, fmt.Errorf("create order: %w", err)
	}
	defer tx.Rollback()

	var p Product
	if err := tx.GetContext(ctx, &p, `SELECT id, name, price FROM products WHERE id = $1`, productID); err != nil {
		if isNoRows(err) {
			return Order{}, ErrNotFound
		}
		return Order{}, fmt.Errorf("create order: product lookup %d: %w", productID, err)
	}

	total := p.Price * float64(qty)
	var o Order
	err = tx.GetContext(ctx, &o, `
		INSERT INTO orders (user_id, product_id, qty, total, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, user_id, product_id, qty, total, status, payment_evidence_ref, created_at, updated_at`,
		userID, productID, qty, total, StatusPending)
	if err != nil {
		return Order{}, fmt.Errorf("create order: insert: %w", err)
	}
	o.ProductName = p.Name
	if err := tx.Commit(); err != nil {
		return Order{}, fmt.Errorf("create order: %w", err)
	}

	logger.Info(ctx, "service.orders", "order.created",
		slog.Int64("order_id", o.ID),
		slog.Int64("product_id", productID),
		slog.Int("qty", qty),
		slog.Float64("total", total),
	)
	return o, nil
}

// OrderByID fetches a single order or ErrNotFound.
func (s *Store) OrderByID(ctx context.Context, id int64) (Order, error) {
	var o Order
	err := s.db.GetContext(ctx, &o, `
		SELECT o.id, o.user_id, o.product_id, COALESCE(p.name, '') AS product_name,
		       o.qty, o.total, o.status, o.payment_evidence_ref, o.created_at, o.updated_at
		FROM orders o
		LEFT JOIN products p ON p.id = o.product_id
		WHERE o.id = $1`, id)
	if err != nil {
		if isNoRows(err) {
			return Order{}, ErrNotFound
		}
		return Order{}, fmt.Errorf("get order %d: %w", id, err)
	}
	return o, nil
}

// PendingOrderIDs returns pending order ids, most recent first.
func (s *Store) PendingOrderIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	err := s.db.SelectContext(ctx, &ids,
		`SELECT id FROM orders WHERE status = $1 ORDER BY id DESC`, StatusPending)
	if err != nil {
		return nil, fmt.Errorf("pending orders: %w", err)
	}
	return ids, nil
}

// SetStatus updates the order status and returns the owning user id so the
// caller knows whom to notify. ErrNotFound when the order does not exist.
func (s *Store) SetStatus(ctx context.Context, orderID int64, status string) (int64, error) {
	var ownerID int64
	err := s.db.GetContext(ctx, &ownerID, `
		UPDATE orders SET status = $2, updated_at = now()
		WHERE id = $1
		RETURNING user_id`, orderID, status)
	if err != nil {
		if isNoRows(err) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("set status %d: %w", orderID, err)
	}
	logger.Info(ctx, "service.orders", "order.status_changed",
		slog.Int64("order_id", orderID),
		slog.String("status_to", status),
		slog.Int64("owner_id", ownerID),
	)
	return ownerID, nil
}

// AttachEvidence stores the payment evidence reference. Last write wins.
func (s *Store) AttachEvidence(ctx context.Context, orderID int64, ref string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE orders SET payment_evidence_ref = $2, updated_at = now()
		WHERE id = $1`, orderID, ref)
	if err != nil {
		return fmt.Errorf("attach evidence %d: %w", orderID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("attach evidence %d: %w", orderID, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	logger.Info(ctx, "service.orders", "order.evidence_attached",
		slog.Int64("order_id", orderID),
	)
	return nil
}

// Stats aggregates counters for the admin stats command.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	err := s.db.GetContext(ctx, &st, `
		SELECT
			(SELECT count(*) FROM products)                                    AS products,
			(SELECT count(*) FROM orders)                                      AS orders,
			(SELECT count(*) FROM orders WHERE status = 'pending')             AS orders_pending,
			(SELECT count(*) FROM orders WHERE status = 'accepted')            AS orders_accepted,
			(SELECT count(*) FROM orders WHERE status = 'rejected')            AS orders_rejected`)
	if err != nil {
		return Stats{}, fmt.Errorf("stats: %w", err)
	}
	return st, nil
}
