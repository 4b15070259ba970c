package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/smartstock/smartstock-backend/pkg/database"
)

// StockEntry represents the quantity of one material at one location,
// optionally split by lot.
type StockEntry struct {
	ID           int64           `db:"id" json:"id"`
	MaterialCode string          `db:"material_code" json:"material_code"`
	Description  string          `db:"description" json:"description"`
	Quantity     decimal.Decimal `db:"quantity" json:"quantity"`
	Location     string          `db:"location" json:"location"`
	Lot          string          `db:"lot" json:"lot,omitempty"`
	Username     string          `db:"username" json:"username"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at"`
}

// StockRepository handles stock_ubicaciones persistence
type StockRepository struct {
	db *database.DB
}

// NewStockRepository creates a new stock repository
func NewStockRepository(db *database.DB) *StockRepository {
	return &StockRepository{db: db}
}

const stockColumns = `id, material_code, description, quantity, location, lot, username, updated_at`

// ListByLocationForUpdate returns all entries at a location, oldest first,
// locking the rows for the duration of the transaction.
func (r *StockRepository) ListByLocationForUpdate(ctx context.Context, tx *sqlx.Tx, location string) ([]*StockEntry, error) {
	var entries []*StockEntry
	query := `SELECT ` + stockColumns + `
		FROM stock_ubicaciones
		WHERE location = $1
		ORDER BY id
		FOR UPDATE`
	if err := tx.SelectContext(ctx, &entries, query, location); err != nil {
		return nil, err
	}
	return entries, nil
}

// GetTupleForUpdate returns the entry for an exact (material, location, lot)
// tuple with its row locked, or nil when no such row exists.
func (r *StockRepository) GetTupleForUpdate(ctx context.Context, tx *sqlx.Tx, materialCode, location, lot string) (*StockEntry, error) {
	var entry StockEntry
	query := `SELECT ` + stockColumns + `
		FROM stock_ubicaciones
		WHERE material_code = $1 AND location = $2 AND lot = $3
		ORDER BY id
		LIMIT 1
		FOR UPDATE`
	err := tx.GetContext(ctx, &entry, query, materialCode, location, lot)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// FirstForMaterialForUpdate returns the oldest entry for a material at a
// location regardless of lot, locked, or nil when none exists.
func (r *StockRepository) FirstForMaterialForUpdate(ctx context.Context, tx *sqlx.Tx, materialCode, location string) (*StockEntry, error) {
	var entry StockEntry
	query := `SELECT ` + stockColumns + `
		FROM stock_ubicaciones
		WHERE material_code = $1 AND location = $2
		ORDER BY id
		LIMIT 1
		FOR UPDATE`
	err := tx.GetContext(ctx, &entry, query, materialCode, location)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// InsertTx creates a new stock entry inside the transaction.
func (r *StockRepository) InsertTx(ctx context.Context, tx *sqlx.Tx, entry *StockEntry) error {
	query := `
		INSERT INTO stock_ubicaciones (material_code, description, quantity, location, lot, username)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, updated_at`
	return tx.QueryRowxContext(ctx, query,
		entry.MaterialCode, entry.Description, entry.Quantity,
		entry.Location, entry.Lot, entry.Username,
	).Scan(&entry.ID, &entry.UpdatedAt)
}

// AddQuantityTx applies a signed quantity delta to a locked row and returns
// the resulting quantity. The caller must already hold the row lock.
func (r *StockRepository) AddQuantityTx(ctx context.Context, tx *sqlx.Tx, id int64, delta decimal.Decimal, username string) (decimal.Decimal, error) {
	var quantity decimal.Decimal
	query := `
		UPDATE stock_ubicaciones
		SET quantity = quantity + $2, username = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING quantity`
	err := tx.QueryRowxContext(ctx, query, id, delta, username).Scan(&quantity)
	return quantity, err
}

// DeleteTx removes a stock entry. Used when a withdrawal or transfer drains
// the row to exactly zero.
func (r *StockRepository) DeleteTx(ctx context.Context, tx *sqlx.Tx, id int64) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM stock_ubicaciones WHERE id = $1`, id)
	return err
}

// ListByMaterial returns all entries for a material across locations.
func (r *StockRepository) ListByMaterial(ctx context.Context, materialCode string) ([]*StockEntry, error) {
	entries := []*StockEntry{}
	query := `SELECT ` + stockColumns + `
		FROM stock_ubicaciones
		WHERE material_code = $1
		ORDER BY location, id`
	if err := r.db.SelectContext(ctx, &entries, query, materialCode); err != nil {
		return nil, err
	}
	return entries, nil
}

// ListByLocation returns all entries at a location.
func (r *StockRepository) ListByLocation(ctx context.Context, location string) ([]*StockEntry, error) {
	entries := []*StockEntry{}
	query := `SELECT ` + stockColumns + `
		FROM stock_ubicaciones
		WHERE location = $1
		ORDER BY id`
	if err := r.db.SelectContext(ctx, &entries, query, location); err != nil {
		return nil, err
	}
	return entries, nil
}

// ListAll returns the whole ledger ordered by location.
func (r *StockRepository) ListAll(ctx context.Context) ([]*StockEntry, error) {
	entries := []*StockEntry{}
	query := `SELECT ` + stockColumns + `
		FROM stock_ubicaciones
		ORDER BY location, id`
	if err := r.db.SelectContext(ctx, &entries, query); err != nil {
		return nil, err
	}
	return entries, nil
}

// HasStockAtLocation reports whether any entry exists at the location.
func (r *StockRepository) HasStockAtLocation(ctx context.Context, location string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM stock_ubicaciones WHERE location = $1)`
	err := r.db.GetContext(ctx, &exists, query, location)
	return exists, err
}

// RenameUsernameTx re-attributes all stock entries owned by oldUsername.
// Part of the administrative rename transaction.
func (r *StockRepository) RenameUsernameTx(ctx context.Context, tx *sqlx.Tx, oldUsername, newUsername string) (int64, error) {
	result, err := tx.ExecContext(ctx,
		`UPDATE stock_ubicaciones SET username = $2, updated_at = NOW() WHERE username = $1`,
		oldUsername, newUsername,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
