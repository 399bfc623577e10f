package store

import (
	"database/sql"
	"time"
)

// Order status values. Accepted and rejected are terminal.
const (
	StatusPending  = "pending"
	StatusAccepted = "accepted"
	StatusRejected = "rejected"
)

// User mirrors the users table.
type User struct {
	UserID    int64  `db:"user_id"`
	Username  string `db:"username"`
	FirstName string `db:"first_name"`
	Lang      string `db:"lang"`
}

// Product mirrors the products table.
type Product struct {
	ID    int64   `db:"id"`
	Name  string  `db:"name"`
	Price float64 `db:"price"`
}

// Order mirrors the orders table. Total is a snapshot computed at creation
// time and is never recomputed when the product price changes.
type Order struct {
	ID        int64 `db:"id"`
	UserID    int64 `db:"user_id"`
	ProductID int64 `db:"product_id"`
	// ProductName is joined from the live catalog row; empty when the
	// product has since been deleted.
	ProductName string         `db:"product_name"`
	Qty         int            `db:"qty"`
	Total       float64        `db:"total"`
	Status      string         `db:"status"`
	EvidenceRef sql.NullString `db:"payment_evidence_ref"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

// HasEvidence reports whether payment evidence has been attached.
func (o Order) HasEvidence() bool {
	return o.EvidenceRef.Valid && o.EvidenceRef.String != ""
}

// Stats aggregates catalog and order counters for the admin report.
type Stats struct {
	Products       int `db:"products"`
	Orders         int `db:"orders"`
	OrdersPending  int `db:"orders_pending"`
	OrdersAccepted int `db:"orders_accepted"`
	OrdersRejected int `db:"orders_rejected"`
}
