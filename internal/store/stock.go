package store

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/jackc/pgx/v5"

	"factory_inventory/internal/apperr"
)

// Ledger actions.
const (
	ActionIn  = "in"
	ActionOut = "out"
)

// Default ledger reasons.
const (
	ReasonManualAdjustment = "manual adjustment"
	ReasonBatchReceipt     = "batch receipt"
)

// AdjustStockParams describes a manual stock correction. Delta may be
// negative; Reason falls back to ReasonManualAdjustment when empty.
type AdjustStockParams struct {
	MaterialID int64
	Delta      float64
	UserID     int64
	Reason     string
}

// AdjustStock applies a signed stock delta and appends the matching ledger
// entry in one transaction. The update is conditional on the result staying
// non-negative, so concurrent adjustments cannot drive stock below zero.
func (s *Store) AdjustStock(ctx context.Context, params AdjustStockParams) (float64, error) {
	reason := params.Reason
	if reason == "" {
		reason = ReasonManualAdjustment
	}

	action := logAction(params.Delta)

	var newStock float64
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`UPDATE materials
			 SET current_stock = current_stock + $2
			 WHERE id = $1 AND current_stock + $2 >= 0
			 RETURNING current_stock`,
			params.MaterialID, params.Delta,
		).Scan(&newStock)
		if err != nil {
			if !errors.Is(err, pgx.ErrNoRows) {
				return apperr.Persistence("failed to adjust stock", err)
			}
			// Zero rows: either the material is gone or the delta would
			// go negative. Probe existence to tell the two apart.
			var exists bool
			if probeErr := tx.QueryRow(ctx,
				`SELECT EXISTS (SELECT 1 FROM materials WHERE id = $1)`,
				params.MaterialID,
			).Scan(&exists); probeErr != nil {
				return apperr.Persistence("failed to check material", probeErr)
			}
			if !exists {
				return apperr.NotFound("material", params.MaterialID)
			}
			return apperr.InsufficientStock(params.MaterialID)
		}

		_, err = tx.Exec(ctx,
			`INSERT INTO material_logs (material_id, qty, action, reason, user_id)
			 VALUES ($1, $2, $3, $4, $5)`,
			params.MaterialID, math.Abs(params.Delta), action, reason, params.UserID)
		if err != nil {
			return apperr.Persistence("failed to append ledger entry", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("stock adjusted",
		"material_id", params.MaterialID,
		"delta", params.Delta,
		"new_stock", newStock,
		"user_id", params.UserID,
	)

	return newStock, nil
}

// ReceiveMaterialParams describes an incoming batch.
type ReceiveMaterialParams struct {
	MaterialID    int64
	PurchasePrice float64
	VatApplicable bool
	VatRate       float64
	QtyReceived   float64
	SupplierName  string
	UserID        int64
}

// Receipt is the result of a successful batch receipt.
type Receipt struct {
	BatchID   int64   `json:"batch_id"`
	BatchCode string  `json:"batch_code"`
	NewStock  float64 `json:"new_stock"`
}

// receiveMaxAttempts bounds retries when a concurrent receipt races the
// batch code sequence. The material row lock serializes receipts on one
// material, so the unique constraint on (material_id, batch_code) should
// only ever fire across retries of an aborted transaction.
const receiveMaxAttempts = 3

// ReceiveMaterial registers a batch, appends the ledger entry and increments
// stock, all in one transaction. The batch code is RM + material id + the
// per-material sequence number, both zero-padded to four digits.
func (s *Store) ReceiveMaterial(ctx context.Context, params ReceiveMaterialParams) (Receipt, error) {
	var receipt Receipt

	var lastErr error
	for attempt := 1; attempt <= receiveMaxAttempts; attempt++ {
		err := s.inTx(ctx, func(tx pgx.Tx) error {
			// Lock the material row so concurrent receipts of the same
			// material serialize around the count below.
			var materialID int64
			err := tx.QueryRow(ctx,
				`SELECT id FROM materials WHERE id = $1 FOR UPDATE`,
				params.MaterialID,
			).Scan(&materialID)
			if err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return apperr.NotFound("material", params.MaterialID)
				}
				return apperr.Persistence("failed to lock material", err)
			}

			var count int64
			err = tx.QueryRow(ctx,
				`SELECT COUNT(*) FROM material_batches WHERE material_id = $1`,
				params.MaterialID,
			).Scan(&count)
			if err != nil {
				return apperr.Persistence("failed to count batches", err)
			}

			batchCode := FormatBatchCode(params.MaterialID, count+1)

			err = tx.QueryRow(ctx,
				`INSERT INTO material_batches
				 (material_id, batch_code, purchase_price, vat_applicable, vat_rate,
				  qty_received, qty_remaining, supplier_name)
				 VALUES ($1, $2, $3, $4, $5, $6, $6, $7)
				 RETURNING id`,
				params.MaterialID, batchCode, params.PurchasePrice,
				params.VatApplicable, params.VatRate,
				params.QtyReceived, params.SupplierName,
			).Scan(&receipt.BatchID)
			if err != nil {
				if isUniqueViolation(err) {
					return apperr.Wrap(apperr.KindConflict, "batch code collision", err)
				}
				return apperr.Persistence("failed to register batch", err)
			}
			receipt.BatchCode = batchCode

			_, err = tx.Exec(ctx,
				`INSERT INTO material_logs (material_id, batch_id, qty, action, reason, user_id, note)
				 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				params.MaterialID, receipt.BatchID, params.QtyReceived,
				ActionIn, ReasonBatchReceipt, params.UserID, params.SupplierName)
			if err != nil {
				return apperr.Persistence("failed to append ledger entry", err)
			}

			err = tx.QueryRow(ctx,
				`UPDATE materials SET current_stock = current_stock + $2
				 WHERE id = $1
				 RETURNING current_stock`,
				params.MaterialID, params.QtyReceived,
			).Scan(&receipt.NewStock)
			if err != nil {
				return apperr.Persistence("failed to increment stock", err)
			}
			return nil
		})
		if err == nil {
			s.logger.Info("material received",
				"material_id", params.MaterialID,
				"batch_code", receipt.BatchCode,
				"qty", params.QtyReceived,
				"user_id", params.UserID,
			)
			return receipt, nil
		}

		lastErr = err
		if !apperr.IsKind(err, apperr.KindConflict) {
			return Receipt{}, err
		}

		s.logger.Warn("retrying batch receipt after code collision",
			"material_id", params.MaterialID,
			"attempt", attempt,
		)
	}

	return Receipt{}, apperr.Persistence(
		fmt.Sprintf("failed to receive material after %d attempts", receiveMaxAttempts), lastErr)
}

// logAction maps a signed delta to a ledger direction. Only a strictly
// positive delta counts as "in"; zero logs as "out".
func logAction(delta float64) string {
	if delta > 0 {
		return ActionIn
	}
	return ActionOut
}

// FormatBatchCode builds a batch code from the material id and the
// per-material sequence number.
func FormatBatchCode(materialID, seq int64) string {
	return fmt.Sprintf("RM%04d%04d", materialID, seq)
}

// MaterialLogs returns the ledger for one material, newest first. Batch code
// and user name come from LEFT JOINs and are empty when the referenced row
// no longer exists. An unknown material yields an empty ledger, not an
// error; the read side never probes existence.
func (s *Store) MaterialLogs(ctx context.Context, materialID int64, limit, offset int32) ([]LogEntry, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT ml.id, ml.material_id, ml.batch_id, ml.qty, ml.action, ml.reason,
			ml.user_id, COALESCE(ml.note, ''),
			COALESCE(mb.batch_code, ''), COALESCE(u.name, ''), ml.created_at
		 FROM material_logs ml
		 LEFT JOIN material_batches mb ON ml.batch_id = mb.id
		 LEFT JOIN users u ON ml.user_id = u.id
		 WHERE ml.material_id = $1
		 ORDER BY ml.created_at DESC, ml.id DESC
		 LIMIT $2 OFFSET $3`,
		materialID, limit, offset)
	if err != nil {
		return nil, apperr.Persistence("failed to list ledger entries", err)
	}
	defer rows.Close()

	entries := make([]LogEntry, 0)
	for rows.Next() {
		var e LogEntry
		err := rows.Scan(&e.ID, &e.MaterialID, &e.BatchID, &e.Qty, &e.Action,
			&e.Reason, &e.UserID, &e.Note, &e.BatchCode, &e.UserName, &e.CreatedAt)
		if err != nil {
			return nil, apperr.Persistence("failed to scan ledger entry", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Persistence("failed to read ledger entries", err)
	}

	return entries, nil
}

// MaterialBatches returns all batches of one material, newest first.
func (s *Store) MaterialBatches(ctx context.Context, materialID int64) ([]Batch, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, material_id, batch_code, purchase_price, vat_applicable,
			vat_rate, qty_received, qty_remaining, supplier_name, created_at
		 FROM material_batches
		 WHERE material_id = $1
		 ORDER BY created_at DESC, id DESC`,
		materialID)
	if err != nil {
		return nil, apperr.Persistence("failed to list batches", err)
	}
	defer rows.Close()

	batches := make([]Batch, 0)
	for rows.Next() {
		var b Batch
		err := rows.Scan(&b.ID, &b.MaterialID, &b.BatchCode, &b.PurchasePrice,
			&b.VatApplicable, &b.VatRate, &b.QtyReceived, &b.QtyRemaining,
			&b.SupplierName, &b.CreatedAt)
		if err != nil {
			return nil, apperr.Persistence("failed to scan batch", err)
		}
		batches = append(batches, b)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Persistence("failed to read batches", err)
	}

	return batches, nil
}
