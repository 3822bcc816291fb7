package store

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"factory_inventory/internal/apperr"
)

// Integration tests run against a throwaway database named by
// TEST_DATABASE_URL and skip when it is unset. The schema is rebuilt from
// scratch on every call, so point the variable at a database you do not care
// about.
var testDDL = []string{
	`DROP TABLE IF EXISTS material_logs, material_batches, materials, categories, users CASCADE`,
	`CREATE TABLE users (
		id            BIGSERIAL PRIMARY KEY,
		name          TEXT NOT NULL,
		email         TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		role          INTEGER NOT NULL,
		is_active     BOOLEAN NOT NULL DEFAULT TRUE,
		img           TEXT,
		last_login    TIMESTAMPTZ,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE categories (
		id   BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE materials (
		id            BIGSERIAL PRIMARY KEY,
		name          TEXT NOT NULL UNIQUE,
		unit          TEXT NOT NULL,
		min_stock     DOUBLE PRECISION NOT NULL DEFAULT 0,
		current_stock DOUBLE PRECISION NOT NULL DEFAULT 0 CHECK (current_stock >= 0),
		category_id   BIGINT REFERENCES categories (id) ON DELETE SET NULL,
		img           TEXT,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE material_batches (
		id             BIGSERIAL PRIMARY KEY,
		material_id    BIGINT NOT NULL REFERENCES materials (id) ON DELETE CASCADE,
		batch_code     TEXT NOT NULL,
		purchase_price DOUBLE PRECISION NOT NULL,
		vat_applicable BOOLEAN NOT NULL,
		vat_rate       DOUBLE PRECISION NOT NULL,
		qty_received   DOUBLE PRECISION NOT NULL,
		qty_remaining  DOUBLE PRECISION NOT NULL,
		supplier_name  TEXT NOT NULL DEFAULT '',
		created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (material_id, batch_code)
	)`,
	`CREATE TABLE material_logs (
		id          BIGSERIAL PRIMARY KEY,
		material_id BIGINT NOT NULL REFERENCES materials (id) ON DELETE CASCADE,
		batch_id    BIGINT REFERENCES material_batches (id) ON DELETE SET NULL,
		qty         DOUBLE PRECISION NOT NULL,
		action      TEXT NOT NULL CHECK (action IN ('in', 'out')),
		reason      TEXT NOT NULL,
		user_id     BIGINT REFERENCES users (id) ON DELETE SET NULL,
		note        TEXT,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

func newTestStore(t *testing.T) (*Store, *pgxpool.Pool) {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	for _, stmt := range testDDL {
		_, err := pool.Exec(ctx, stmt)
		require.NoError(t, err)
	}

	return New(pool, nil), pool
}

func seedUser(t *testing.T, pool *pgxpool.Pool) int64 {
	t.Helper()
	var id int64
	err := pool.QueryRow(context.Background(),
		`INSERT INTO users (name, email, password_hash, role)
		 VALUES ('Tester', 'tester@example.com', 'x', 4) RETURNING id`).Scan(&id)
	require.NoError(t, err)
	return id
}

func seedMaterial(t *testing.T, pool *pgxpool.Pool, name string, stock float64) int64 {
	t.Helper()
	var id int64
	err := pool.QueryRow(context.Background(),
		`INSERT INTO materials (name, unit, current_stock) VALUES ($1, 'kg', $2) RETURNING id`,
		name, stock).Scan(&id)
	require.NoError(t, err)
	return id
}

func currentStock(t *testing.T, pool *pgxpool.Pool, materialID int64) float64 {
	t.Helper()
	var stock float64
	err := pool.QueryRow(context.Background(),
		`SELECT current_stock FROM materials WHERE id = $1`, materialID).Scan(&stock)
	require.NoError(t, err)
	return stock
}

func ledgerCount(t *testing.T, pool *pgxpool.Pool, materialID int64) int64 {
	t.Helper()
	var count int64
	err := pool.QueryRow(context.Background(),
		`SELECT COUNT(*) FROM material_logs WHERE material_id = $1`, materialID).Scan(&count)
	require.NoError(t, err)
	return count
}

func TestAdjustStockAppendsLedger(t *testing.T) {
	s, pool := newTestStore(t)
	ctx := context.Background()
	userID := seedUser(t, pool)
	materialID := seedMaterial(t, pool, "Resin", 10)

	newStock, err := s.AdjustStock(ctx, AdjustStockParams{
		MaterialID: materialID, Delta: -4, UserID: userID, Reason: "spillage",
	})
	require.NoError(t, err)
	assert.Equal(t, 6.0, newStock)

	newStock, err = s.AdjustStock(ctx, AdjustStockParams{
		MaterialID: materialID, Delta: 5, UserID: userID,
	})
	require.NoError(t, err)
	assert.Equal(t, 11.0, newStock)

	// A zero delta still passes the conditional update and logs as "out".
	newStock, err = s.AdjustStock(ctx, AdjustStockParams{
		MaterialID: materialID, Delta: 0, UserID: userID,
	})
	require.NoError(t, err)
	assert.Equal(t, 11.0, newStock)

	entries, err := s.MaterialLogs(ctx, materialID, 50, 0)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	// Newest first.
	assert.Equal(t, ActionOut, entries[0].Action)
	assert.Equal(t, 0.0, entries[0].Qty)
	assert.Equal(t, ActionIn, entries[1].Action)
	assert.Equal(t, 5.0, entries[1].Qty)
	assert.Equal(t, ActionOut, entries[2].Action)
	assert.Equal(t, 4.0, entries[2].Qty)
	assert.Equal(t, "spillage", entries[2].Reason)
	assert.Equal(t, ReasonManualAdjustment, entries[1].Reason)
}

func TestAdjustStockRefusesInsufficient(t *testing.T) {
	s, pool := newTestStore(t)
	ctx := context.Background()
	userID := seedUser(t, pool)
	materialID := seedMaterial(t, pool, "Solvent", 10)

	_, err := s.AdjustStock(ctx, AdjustStockParams{
		MaterialID: materialID, Delta: -15, UserID: userID,
	})
	assert.True(t, apperr.IsKind(err, apperr.KindInsufficientStock))

	// The refusal leaves no trace: stock unchanged, ledger empty.
	assert.Equal(t, 10.0, currentStock(t, pool, materialID))
	assert.Equal(t, int64(0), ledgerCount(t, pool, materialID))

	// Draining to exactly zero is allowed.
	newStock, err := s.AdjustStock(ctx, AdjustStockParams{
		MaterialID: materialID, Delta: -10, UserID: userID,
	})
	require.NoError(t, err)
	assert.Equal(t, 0.0, newStock)
}

func TestAdjustStockMaterialMissing(t *testing.T) {
	s, pool := newTestStore(t)
	userID := seedUser(t, pool)

	_, err := s.AdjustStock(context.Background(), AdjustStockParams{
		MaterialID: 424242, Delta: 1, UserID: userID,
	})
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestReceiveMaterialSequentialBatchCodes(t *testing.T) {
	s, pool := newTestStore(t)
	ctx := context.Background()
	userID := seedUser(t, pool)
	materialID := seedMaterial(t, pool, "Pigment", 0)

	first, err := s.ReceiveMaterial(ctx, ReceiveMaterialParams{
		MaterialID: materialID, PurchasePrice: 9.5, QtyReceived: 5,
		SupplierName: "Acme", UserID: userID,
	})
	require.NoError(t, err)
	assert.Equal(t, FormatBatchCode(materialID, 1), first.BatchCode)
	assert.Equal(t, 5.0, first.NewStock)

	second, err := s.ReceiveMaterial(ctx, ReceiveMaterialParams{
		MaterialID: materialID, PurchasePrice: 9.5, QtyReceived: 7,
		SupplierName: "Acme", UserID: userID,
	})
	require.NoError(t, err)
	assert.Equal(t, FormatBatchCode(materialID, 2), second.BatchCode)
	assert.Equal(t, 12.0, second.NewStock)
	assert.NotEqual(t, first.BatchID, second.BatchID)

	batches, err := s.MaterialBatches(ctx, materialID)
	require.NoError(t, err)
	require.Len(t, batches, 2)
	assert.Equal(t, batches[0].QtyReceived, batches[0].QtyRemaining)

	entries, err := s.MaterialLogs(ctx, materialID, 50, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, ActionIn, entries[0].Action)
	assert.Equal(t, ReasonBatchReceipt, entries[0].Reason)
	require.NotNil(t, entries[0].BatchID)
	assert.Equal(t, second.BatchID, *entries[0].BatchID)
}

func TestReceiveMaterialFailureLeavesNoTrace(t *testing.T) {
	s, pool := newTestStore(t)
	ctx := context.Background()
	userID := seedUser(t, pool)
	materialID := seedMaterial(t, pool, "Filler", 3)

	// Two pre-existing batches whose codes occupy the slot the next receipt
	// will compute (count 2 -> sequence 3), so every attempt collides.
	for _, seq := range []int64{3, 9} {
		_, err := pool.Exec(ctx,
			`INSERT INTO material_batches
			 (material_id, batch_code, purchase_price, vat_applicable, vat_rate,
			  qty_received, qty_remaining)
			 VALUES ($1, $2, 1, FALSE, 0, 1, 1)`,
			materialID, FormatBatchCode(materialID, seq))
		require.NoError(t, err)
	}

	_, err := s.ReceiveMaterial(ctx, ReceiveMaterialParams{
		MaterialID: materialID, PurchasePrice: 2, QtyReceived: 8, UserID: userID,
	})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindPersistence))

	// The failed receipt rolled back whole: no stock movement, no ledger
	// entry, no third batch.
	assert.Equal(t, 3.0, currentStock(t, pool, materialID))
	assert.Equal(t, int64(0), ledgerCount(t, pool, materialID))

	batches, berr := s.MaterialBatches(ctx, materialID)
	require.NoError(t, berr)
	assert.Len(t, batches, 2)
}

func TestMaterialLogsUnknownMaterial(t *testing.T) {
	s, _ := newTestStore(t)

	entries, err := s.MaterialLogs(context.Background(), 424242, 50, 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
