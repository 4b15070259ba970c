package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/smartstock/smartstock-backend/pkg/database"
	"github.com/smartstock/smartstock-backend/pkg/errors"
)

// Material is a catalog entry describing a stockable item.
type Material struct {
	Code         string    `db:"code" json:"code"`
	Description  string    `db:"description" json:"description"`
	Unit         string    `db:"unit" json:"unit"`
	MaterialType *string   `db:"material_type" json:"material_type,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// MaterialRepository handles materiales persistence
type MaterialRepository struct {
	db *database.DB
}

// NewMaterialRepository creates a new material repository
func NewMaterialRepository(db *database.DB) *MaterialRepository {
	return &MaterialRepository{db: db}
}

// GetByCode returns a material by its code.
func (r *MaterialRepository) GetByCode(ctx context.Context, code string) (*Material, error) {
	var m Material
	query := `SELECT code, description, unit, material_type, created_at, updated_at FROM materiales WHERE code = $1`
	err := r.db.GetContext(ctx, &m, query, code)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("material")
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// LookupUnit returns the unit of measure for a material.
func (r *MaterialRepository) LookupUnit(ctx context.Context, code string) (string, error) {
	var unit string
	err := r.db.GetContext(ctx, &unit, `SELECT unit FROM materiales WHERE code = $1`, code)
	if err == sql.ErrNoRows {
		return "", errors.NotFound("material")
	}
	if err != nil {
		return "", err
	}
	return unit, nil
}

// List returns the whole catalog ordered by code.
func (r *MaterialRepository) List(ctx context.Context) ([]*Material, error) {
	materials := []*Material{}
	query := `SELECT code, description, unit, material_type, created_at, updated_at FROM materiales ORDER BY code`
	if err := r.db.SelectContext(ctx, &materials, query); err != nil {
		return nil, err
	}
	return materials, nil
}

// Create adds a material to the catalog.
func (r *MaterialRepository) Create(ctx context.Context, m *Material) error {
	query := `
		INSERT INTO materiales (code, description, unit, material_type)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at`
	err := r.db.QueryRowxContext(ctx, query, m.Code, m.Description, m.Unit, m.MaterialType).
		Scan(&m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}
	return nil
}

// Update changes a material's description, unit and type.
func (r *MaterialRepository) Update(ctx context.Context, m *Material) error {
	query := `
		UPDATE materiales
		SET description = $2, unit = $3, material_type = $4, updated_at = NOW()
		WHERE code = $1`
	result, err := r.db.ExecContext(ctx, query, m.Code, m.Description, m.Unit, m.MaterialType)
	if err != nil {
		return err
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("material")
	}
	return nil
}

// Delete removes a material from the catalog.
func (r *MaterialRepository) Delete(ctx context.Context, code string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM materiales WHERE code = $1`, code)
	if err != nil {
		return err
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("material")
	}
	return nil
}
