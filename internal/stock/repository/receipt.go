package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smartstock/smartstock-backend/pkg/database"
)

// Receipt records a quantity of material received directly by a plant.
type Receipt struct {
	ID           int64           `db:"id" json:"id"`
	Plant        string          `db:"plant" json:"plant"`
	MaterialCode string          `db:"material_code" json:"material_code"`
	Quantity     decimal.Decimal `db:"quantity" json:"quantity"`
	Lot          string          `db:"lot" json:"lot,omitempty"`
	Username     string          `db:"username" json:"username"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
}

// ReceiptRepository handles recibos_planta persistence
type ReceiptRepository struct {
	db *database.DB
}

// NewReceiptRepository creates a new receipt repository
func NewReceiptRepository(db *database.DB) *ReceiptRepository {
	return &ReceiptRepository{db: db}
}

// Create appends a plant receipt.
func (r *ReceiptRepository) Create(ctx context.Context, receipt *Receipt) error {
	query := `
		INSERT INTO recibos_planta (plant, material_code, quantity, lot, username)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`
	return r.db.QueryRowxContext(ctx, query,
		receipt.Plant, receipt.MaterialCode, receipt.Quantity, receipt.Lot, receipt.Username,
	).Scan(&receipt.ID, &receipt.CreatedAt)
}

// List returns receipts newest first, optionally filtered by plant.
func (r *ReceiptRepository) List(ctx context.Context, plant string) ([]*Receipt, error) {
	receipts := []*Receipt{}
	query := `SELECT id, plant, material_code, quantity, lot, username, created_at FROM recibos_planta`
	args := []interface{}{}
	if plant != "" {
		query += ` WHERE plant = $1`
		args = append(args, plant)
	}
	query += ` ORDER BY id DESC`
	if err := r.db.SelectContext(ctx, &receipts, query, args...); err != nil {
		return nil, err
	}
	return receipts, nil
}
