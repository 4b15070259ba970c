package service

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/smartstock/smartstock-backend/internal/stock/repository"
	"github.com/smartstock/smartstock-backend/pkg/database"
	"github.com/smartstock/smartstock-backend/pkg/errors"
	"github.com/smartstock/smartstock-backend/pkg/logger"
)

// RenameService propagates administrative username renames across all stock
// attribution columns in one transaction, so the ledger and the audit trail
// never disagree about who owns a row.
type RenameService struct {
	db        *database.DB
	stock     *repository.StockRepository
	movements *repository.MovementRepository
	logger    *logger.Logger
}

// NewRenameService creates a new rename service
func NewRenameService(db *database.DB, stock *repository.StockRepository, movements *repository.MovementRepository, log *logger.Logger) *RenameService {
	return &RenameService{
		db:        db,
		stock:     stock,
		movements: movements,
		logger:    log.WithComponent("username-rename"),
	}
}

// PropagateUsername re-attributes stock entries and movement history from
// oldUsername to newUsername atomically.
func (s *RenameService) PropagateUsername(ctx context.Context, oldUsername, newUsername string) error {
	if oldUsername == "" || newUsername == "" {
		return errors.BadRequest("both old and new usernames are required")
	}
	if oldUsername == newUsername {
		return nil
	}

	var stockRows, movementRows int64
	err := s.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		var err error
		stockRows, err = s.stock.RenameUsernameTx(ctx, tx, oldUsername, newUsername)
		if err != nil {
			return err
		}
		movementRows, err = s.movements.RenameUsernameTx(ctx, tx, oldUsername, newUsername)
		return err
	})
	if err != nil {
		return err
	}

	s.logger.Info().
		Str("old_username", oldUsername).
		Str("new_username", newUsername).
		Int64("stock_rows", stockRows).
		Int64("movement_rows", movementRows).
		Msg("username rename propagated")
	return nil
}
