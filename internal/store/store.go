// Package store implements the PostgreSQL persistence layer. All access goes
// through a Store built around an injected pgxpool.Pool; nothing in here
// touches global state.
package store

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"factory_inventory/internal/apperr"
)

// Store wraps a connection pool with the queries the service needs.
type Store struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// New creates a Store around the given pool.
func New(pool *pgxpool.Pool, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{pool: pool, logger: logger}
}

// Pool exposes the underlying pool for health checks and shutdown wiring.
func (s *Store) Pool() *pgxpool.Pool {
	return s.pool
}

// Material is a raw material tracked by the factory.
type Material struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Unit         string    `json:"unit"`
	MinStock     float64   `json:"min_stock"`
	CurrentStock float64   `json:"current_stock"`
	CategoryID   *int64    `json:"category_id,omitempty"`
	CategoryName *string   `json:"category_name,omitempty"`
	Img          *string   `json:"img,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Batch is one received lot of a material.
type Batch struct {
	ID            int64     `json:"id"`
	MaterialID    int64     `json:"material_id"`
	BatchCode     string    `json:"batch_code"`
	PurchasePrice float64   `json:"purchase_price"`
	VatApplicable bool      `json:"vat_applicable"`
	VatRate       float64   `json:"vat_rate"`
	QtyReceived   float64   `json:"qty_received"`
	QtyRemaining  float64   `json:"qty_remaining"`
	SupplierName  string    `json:"supplier_name"`
	CreatedAt     time.Time `json:"created_at"`
}

// LogEntry is one row of the append-only stock ledger. BatchCode and
// UserName come from LEFT JOINs and are empty when the reference is gone.
type LogEntry struct {
	ID         int64     `json:"id"`
	MaterialID int64     `json:"material_id"`
	BatchID    *int64    `json:"batch_id,omitempty"`
	Qty        float64   `json:"qty"`
	Action     string    `json:"action"` // in or out
	Reason     string    `json:"reason"`
	UserID     *int64    `json:"user_id,omitempty"`
	Note       string    `json:"note,omitempty"`
	BatchCode  string    `json:"batch_code,omitempty"`
	UserName   string    `json:"user_name,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// User is an account that can act on the system.
type User struct {
	ID           int64      `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Role         int        `json:"role"`
	IsActive     bool       `json:"is_active"`
	Img          *string    `json:"img,omitempty"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// Category is a material grouping.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

const uniqueViolation = "23505"

// isUniqueViolation reports whether err is a unique constraint violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// inTx runs fn inside a transaction, rolling back on error.
func (s *Store) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return apperr.Persistence("failed to start transaction", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return apperr.Persistence("failed to commit transaction", err)
	}
	return nil
}
