package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"factory_inventory/internal/apperr"
)

const materialColumns = `m.id, m.name, m.unit, m.min_stock, m.current_stock,
	m.category_id, c.name AS category_name, m.img, m.created_at`

const materialFrom = `FROM materials m LEFT JOIN categories c ON m.category_id = c.id`

func scanMaterial(row pgx.Row) (Material, error) {
	var m Material
	err := row.Scan(&m.ID, &m.Name, &m.Unit, &m.MinStock, &m.CurrentStock,
		&m.CategoryID, &m.CategoryName, &m.Img, &m.CreatedAt)
	return m, err
}

// ListMaterialsParams filters the material listing. Zero values mean
// "no filter" except Limit, which callers must set. InStock narrows the
// listing to materials with positive stock; there is no inverse filter.
type ListMaterialsParams struct {
	Query      string
	CategoryID *int64
	InStock    bool
	Limit      int32
	Offset     int32
}

// ListMaterials returns materials matching the given filters, newest first.
func (s *Store) ListMaterials(ctx context.Context, params ListMaterialsParams) ([]Material, error) {
	var (
		conds []string
		args  []any
	)

	if params.Query != "" {
		args = append(args, "%"+params.Query+"%")
		conds = append(conds, fmt.Sprintf("m.name ILIKE $%d", len(args)))
	}
	if params.CategoryID != nil {
		args = append(args, *params.CategoryID)
		conds = append(conds, fmt.Sprintf("m.category_id = $%d", len(args)))
	}
	if params.InStock {
		conds = append(conds, "m.current_stock > 0")
	}

	sql := "SELECT " + materialColumns + " " + materialFrom
	if len(conds) > 0 {
		sql += " WHERE " + strings.Join(conds, " AND ")
	}
	args = append(args, params.Limit)
	sql += fmt.Sprintf(" ORDER BY m.created_at DESC, m.id DESC LIMIT $%d", len(args))
	args = append(args, params.Offset)
	sql += fmt.Sprintf(" OFFSET $%d", len(args))

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, apperr.Persistence("failed to list materials", err)
	}
	defer rows.Close()

	materials := make([]Material, 0)
	for rows.Next() {
		m, err := scanMaterial(rows)
		if err != nil {
			return nil, apperr.Persistence("failed to scan material", err)
		}
		materials = append(materials, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Persistence("failed to read materials", err)
	}

	return materials, nil
}

// GetMaterial returns one material by id.
func (s *Store) GetMaterial(ctx context.Context, id int64) (Material, error) {
	sql := "SELECT " + materialColumns + " " + materialFrom + " WHERE m.id = $1"

	m, err := scanMaterial(s.pool.QueryRow(ctx, sql, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Material{}, apperr.NotFound("material", id)
		}
		return Material{}, apperr.Persistence("failed to get material", err)
	}
	return m, nil
}

// CreateMaterialParams holds the fields of a new material.
type CreateMaterialParams struct {
	Name       string
	Unit       string
	MinStock   float64
	CategoryID *int64
	Img        *string
}

// CreateMaterial inserts a material with zero starting stock.
func (s *Store) CreateMaterial(ctx context.Context, params CreateMaterialParams) (Material, error) {
	sql := `INSERT INTO materials (name, unit, min_stock, current_stock, category_id, img)
		VALUES ($1, $2, $3, 0, $4, $5)
		RETURNING id, created_at`

	m := Material{
		Name:       params.Name,
		Unit:       params.Unit,
		MinStock:   params.MinStock,
		CategoryID: params.CategoryID,
		Img:        params.Img,
	}
	err := s.pool.QueryRow(ctx, sql,
		params.Name, params.Unit, params.MinStock, params.CategoryID, params.Img,
	).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return Material{}, apperr.Newf(apperr.KindConflict, "material %q already exists", params.Name)
		}
		return Material{}, apperr.Persistence("failed to create material", err)
	}
	return m, nil
}

// UpdateMaterialParams holds the editable fields of a material.
// Stock levels are never edited here; they only move through the ledger.
type UpdateMaterialParams struct {
	Name       string
	Unit       string
	MinStock   float64
	CategoryID *int64
	Img        *string
}

// UpdateMaterial updates a material's descriptive fields.
func (s *Store) UpdateMaterial(ctx context.Context, id int64, params UpdateMaterialParams) (Material, error) {
	sql := `UPDATE materials
		SET name = $2, unit = $3, min_stock = $4, category_id = $5, img = $6
		WHERE id = $1`

	tag, err := s.pool.Exec(ctx, sql,
		id, params.Name, params.Unit, params.MinStock, params.CategoryID, params.Img)
	if err != nil {
		if isUniqueViolation(err) {
			return Material{}, apperr.Newf(apperr.KindConflict, "material %q already exists", params.Name)
		}
		return Material{}, apperr.Persistence("failed to update material", err)
	}
	if tag.RowsAffected() == 0 {
		return Material{}, apperr.NotFound("material", id)
	}

	return s.GetMaterial(ctx, id)
}

// DeleteMaterial removes a material. Ledger rows keep their material_id
// reference until the row goes; batches cascade with it.
func (s *Store) DeleteMaterial(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM materials WHERE id = $1`, id)
	if err != nil {
		return apperr.Persistence("failed to delete material", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("material", id)
	}
	return nil
}

// ListLowStock returns materials whose current stock is below their minimum.
func (s *Store) ListLowStock(ctx context.Context) ([]Material, error) {
	sql := "SELECT " + materialColumns + " " + materialFrom +
		" WHERE m.current_stock < m.min_stock ORDER BY m.current_stock / NULLIF(m.min_stock, 0) ASC NULLS FIRST, m.id"

	rows, err := s.pool.Query(ctx, sql)
	if err != nil {
		return nil, apperr.Persistence("failed to list low stock materials", err)
	}
	defer rows.Close()

	materials := make([]Material, 0)
	for rows.Next() {
		m, err := scanMaterial(rows)
		if err != nil {
			return nil, apperr.Persistence("failed to scan material", err)
		}
		materials = append(materials, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Persistence("failed to read materials", err)
	}

	return materials, nil
}
