package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smartstock/smartstock-backend/pkg/database"
)

// Pallet is a tracked carrier with a human-readable unique identifier.
type Pallet struct {
	ID           int64            `db:"id" json:"id"`
	UID          string           `db:"uid" json:"uid"`
	MaterialCode *string          `db:"material_code" json:"material_code,omitempty"`
	Lot          string           `db:"lot" json:"lot,omitempty"`
	Quantity     *decimal.Decimal `db:"quantity" json:"quantity,omitempty"`
	Username     string           `db:"username" json:"username"`
	CreatedAt    time.Time        `db:"created_at" json:"created_at"`
}

// PalletRepository handles pallets persistence
type PalletRepository struct {
	db *database.DB
}

// NewPalletRepository creates a new pallet repository
func NewPalletRepository(db *database.DB) *PalletRepository {
	return &PalletRepository{db: db}
}

// NextUID computes the next sequential pallet identifier in UID:NNN form.
// The unique constraint on uid catches the rare concurrent allocation.
func (r *PalletRepository) NextUID(ctx context.Context) (string, error) {
	var max int
	query := `SELECT COALESCE(MAX(CAST(SUBSTRING(uid FROM 5) AS INTEGER)), 0) FROM pallets WHERE uid LIKE 'UID:%'`
	if err := r.db.GetContext(ctx, &max, query); err != nil {
		return "", err
	}
	return fmt.Sprintf("UID:%03d", max+1), nil
}

// Create registers a new pallet.
func (r *PalletRepository) Create(ctx context.Context, p *Pallet) error {
	query := `
		INSERT INTO pallets (uid, material_code, lot, quantity, username)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`
	err := r.db.QueryRowxContext(ctx, query,
		p.UID, p.MaterialCode, p.Lot, p.Quantity, p.Username,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}
	return nil
}

// List returns all pallets newest first.
func (r *PalletRepository) List(ctx context.Context) ([]*Pallet, error) {
	pallets := []*Pallet{}
	query := `SELECT id, uid, material_code, lot, quantity, username, created_at FROM pallets ORDER BY id DESC`
	if err := r.db.SelectContext(ctx, &pallets, query); err != nil {
		return nil, err
	}
	return pallets, nil
}
