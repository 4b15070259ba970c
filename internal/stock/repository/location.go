package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/smartstock/smartstock-backend/pkg/database"
	"github.com/smartstock/smartstock-backend/pkg/errors"
)

// Location is a registered storage slot. Locations are never hard-deleted
// while referenced by stock; they are deactivated instead.
type Location struct {
	Code        string    `db:"code" json:"code"`
	Description string    `db:"description" json:"description"`
	Active      bool      `db:"active" json:"active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// LocationRepository handles ubicaciones persistence
type LocationRepository struct {
	db *database.DB
}

// NewLocationRepository creates a new location repository
func NewLocationRepository(db *database.DB) *LocationRepository {
	return &LocationRepository{db: db}
}

// IsActive reports whether a location exists and is active.
func (r *LocationRepository) IsActive(ctx context.Context, code string) (bool, error) {
	var active bool
	query := `SELECT active FROM ubicaciones WHERE code = $1`
	err := r.db.GetContext(ctx, &active, query, code)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return active, nil
}

// GetByCode returns a location by its code.
func (r *LocationRepository) GetByCode(ctx context.Context, code string) (*Location, error) {
	var loc Location
	query := `SELECT code, description, active, created_at, updated_at FROM ubicaciones WHERE code = $1`
	err := r.db.GetContext(ctx, &loc, query, code)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("location")
	}
	if err != nil {
		return nil, err
	}
	return &loc, nil
}

// List returns all locations, optionally including inactive ones.
func (r *LocationRepository) List(ctx context.Context, includeInactive bool) ([]*Location, error) {
	locations := []*Location{}
	query := `SELECT code, description, active, created_at, updated_at FROM ubicaciones`
	if !includeInactive {
		query += ` WHERE active = TRUE`
	}
	query += ` ORDER BY code`
	if err := r.db.SelectContext(ctx, &locations, query); err != nil {
		return nil, err
	}
	return locations, nil
}

// Create registers a new location.
func (r *LocationRepository) Create(ctx context.Context, loc *Location) error {
	query := `
		INSERT INTO ubicaciones (code, description, active)
		VALUES ($1, $2, $3)
		RETURNING created_at, updated_at`
	err := r.db.QueryRowxContext(ctx, query, loc.Code, loc.Description, loc.Active).
		Scan(&loc.CreatedAt, &loc.UpdatedAt)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}
	return nil
}

// Update changes a location's description and active flag.
func (r *LocationRepository) Update(ctx context.Context, loc *Location) error {
	query := `
		UPDATE ubicaciones
		SET description = $2, active = $3, updated_at = NOW()
		WHERE code = $1`
	result, err := r.db.ExecContext(ctx, query, loc.Code, loc.Description, loc.Active)
	if err != nil {
		return err
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("location")
	}
	return nil
}

// Deactivate marks a location inactive without removing it.
func (r *LocationRepository) Deactivate(ctx context.Context, code string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE ubicaciones SET active = FALSE, updated_at = NOW() WHERE code = $1`, code)
	if err != nil {
		return err
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("location")
	}
	return nil
}

// Delete removes a location outright. Callers must first verify the
// location holds no stock.
func (r *LocationRepository) Delete(ctx context.Context, code string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM ubicaciones WHERE code = $1`, code)
	if err != nil {
		return err
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("location")
	}
	return nil
}
