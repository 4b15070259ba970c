package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/smartstock/smartstock-backend/pkg/database"
)

// Movement types as they appear in the audit trail.
const (
	MovementIngress  = "Entro"
	MovementWithdraw = "Salio"
	MovementTransfer = "Movimiento"
)

// Statuses recorded for ingress and withdrawal movements. Transfers carry
// a "<from> -> <to>" status instead.
const (
	StatusStored     = "Almacenado"
	StatusDispatched = "Despachado"
)

// MovementRecord is an immutable audit entry describing one ledger mutation.
type MovementRecord struct {
	ID           int64     `db:"id" json:"id"`
	MaterialCode string    `db:"material_code" json:"material_code"`
	Description  string    `db:"description" json:"description"`
	Delta        string    `db:"delta" json:"delta"`
	Unit         string    `db:"unit" json:"unit"`
	MovementType string    `db:"movement_type" json:"movement_type"`
	Status       string    `db:"status" json:"status"`
	Username     string    `db:"username" json:"username"`
	Shift        string    `db:"shift" json:"shift"`
	BusinessDate string    `db:"business_date" json:"business_date"`
	Lot          string    `db:"lot" json:"lot,omitempty"`
	Plant        *string   `db:"plant" json:"plant,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// MovementFilter narrows movement history queries.
type MovementFilter struct {
	MaterialCode string
	MovementType string
	Page         int
	PerPage      int
}

// MovementRepository handles historial_movimientos persistence
type MovementRepository struct {
	db *database.DB
}

// NewMovementRepository creates a new movement repository
func NewMovementRepository(db *database.DB) *MovementRepository {
	return &MovementRepository{db: db}
}

// Create appends one audit record. Records are never updated or deleted
// except by the administrative username rename.
func (r *MovementRepository) Create(ctx context.Context, rec *MovementRecord) error {
	query := `
		INSERT INTO historial_movimientos
			(material_code, description, delta, unit, movement_type, status, username, shift, business_date, lot, plant)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at`
	return r.db.QueryRowxContext(ctx, query,
		rec.MaterialCode, rec.Description, rec.Delta, rec.Unit, rec.MovementType,
		rec.Status, rec.Username, rec.Shift, rec.BusinessDate, rec.Lot, rec.Plant,
	).Scan(&rec.ID, &rec.CreatedAt)
}

// List returns movement history newest first with optional filters.
func (r *MovementRepository) List(ctx context.Context, filter MovementFilter) ([]*MovementRecord, int64, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PerPage < 1 {
		filter.PerPage = 50
	}

	where := ` WHERE 1=1`
	args := []interface{}{}

	if filter.MaterialCode != "" {
		args = append(args, filter.MaterialCode)
		where += ` AND material_code = $1`
	}
	if filter.MovementType != "" {
		args = append(args, filter.MovementType)
		if len(args) == 1 {
			where += ` AND movement_type = $1`
		} else {
			where += ` AND movement_type = $2`
		}
	}

	var total int64
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM historial_movimientos`+where, args...); err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.PerPage
	limitArgs := append(args, filter.PerPage, offset)
	query := `
		SELECT id, material_code, description, delta, unit, movement_type, status,
		       username, shift, business_date, lot, plant, created_at
		FROM historial_movimientos` + where

	switch len(args) {
	case 0:
		query += ` ORDER BY id DESC LIMIT $1 OFFSET $2`
	case 1:
		query += ` ORDER BY id DESC LIMIT $2 OFFSET $3`
	default:
		query += ` ORDER BY id DESC LIMIT $3 OFFSET $4`
	}

	records := []*MovementRecord{}
	if err := r.db.SelectContext(ctx, &records, query, limitArgs...); err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

// ListByUsername returns all records attributed to a user, newest first.
func (r *MovementRepository) ListByUsername(ctx context.Context, username string) ([]*MovementRecord, error) {
	records := []*MovementRecord{}
	query := `
		SELECT id, material_code, description, delta, unit, movement_type, status,
		       username, shift, business_date, lot, plant, created_at
		FROM historial_movimientos
		WHERE username = $1
		ORDER BY id DESC`
	if err := r.db.SelectContext(ctx, &records, query, username); err != nil {
		return nil, err
	}
	return records, nil
}

// RenameUsernameTx re-attributes all movement records owned by oldUsername.
// Part of the administrative rename transaction.
func (r *MovementRepository) RenameUsernameTx(ctx context.Context, tx *sqlx.Tx, oldUsername, newUsername string) (int64, error) {
	result, err := tx.ExecContext(ctx,
		`UPDATE historial_movimientos SET username = $2 WHERE username = $1`,
		oldUsername, newUsername,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
