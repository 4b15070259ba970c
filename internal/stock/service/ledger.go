package service

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/smartstock/smartstock-backend/internal/stock/repository"
	"github.com/smartstock/smartstock-backend/pkg/actor"
	"github.com/smartstock/smartstock-backend/pkg/database"
	"github.com/smartstock/smartstock-backend/pkg/errors"
	"github.com/smartstock/smartstock-backend/pkg/logger"
	"github.com/smartstock/smartstock-backend/pkg/messaging"
)

// EventPublisher publishes domain events after successful mutations.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, payload interface{}) error
}

// Ledger is the stock-location ledger mutation engine. All mutations run in a
// single transaction with the touched rows locked, record an audit movement
// and publish a domain event after commit.
type Ledger struct {
	db        *database.DB
	stock     *repository.StockRepository
	materials *repository.MaterialRepository
	validator *LocationValidator
	recorder  *Recorder
	publisher EventPublisher
	ground    string
	logger    *logger.Logger
}

// NewLedger creates a new stock ledger service
func NewLedger(
	db *database.DB,
	stock *repository.StockRepository,
	materials *repository.MaterialRepository,
	validator *LocationValidator,
	recorder *Recorder,
	publisher EventPublisher,
	ground string,
	log *logger.Logger,
) *Ledger {
	return &Ledger{
		db:        db,
		stock:     stock,
		materials: materials,
		validator: validator,
		recorder:  recorder,
		publisher: publisher,
		ground:    ground,
		logger:    log.WithComponent("stock-ledger"),
	}
}

// IngressInput describes material entering the warehouse.
type IngressInput struct {
	MaterialCode string
	Location     string
	Quantity     decimal.Decimal
	Lot          string
	Actor        actor.Actor
}

// TransferInput describes moving stock between two locations. The material
// moved is whatever occupies the source location.
type TransferInput struct {
	FromLocation string
	ToLocation   string
	Quantity     decimal.Decimal
	Actor        actor.Actor
}

// TransferResult reports the post-transfer quantities at both ends.
type TransferResult struct {
	MaterialCode  string
	FromRemaining decimal.Decimal
	ToTotal       decimal.Decimal
}

// WithdrawInput describes material leaving the warehouse.
type WithdrawInput struct {
	MaterialCode string
	Location     string
	Quantity     decimal.Decimal
	Lot          string
	Actor        actor.Actor
}

// Ingress adds quantity at a location. At the receiving buffer every ingress
// creates a new row; elsewhere the quantity merges into the existing
// (material, location, lot) row, and a location holding a different material
// rejects the ingress.
func (l *Ledger) Ingress(ctx context.Context, in IngressInput) (decimal.Decimal, error) {
	if !in.Quantity.IsPositive() {
		return decimal.Zero, errors.BadRequest("quantity must be greater than zero")
	}

	material, err := l.materials.GetByCode(ctx, in.MaterialCode)
	if err != nil {
		return decimal.Zero, err
	}

	location, err := l.validator.Validate(ctx, in.Location)
	if err != nil {
		return decimal.Zero, err
	}

	username := in.Actor.String()
	var total decimal.Decimal

	err = l.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		if location == l.ground {
			entry := &repository.StockEntry{
				MaterialCode: material.Code,
				Description:  material.Description,
				Quantity:     in.Quantity,
				Location:     location,
				Lot:          in.Lot,
				Username:     username,
			}
			if err := l.stock.InsertTx(ctx, tx, entry); err != nil {
				return err
			}
			total = in.Quantity
			return nil
		}

		entries, err := l.stock.ListByLocationForUpdate(ctx, tx, location)
		if err != nil {
			return err
		}

		var existing *repository.StockEntry
		for _, e := range entries {
			if e.MaterialCode != material.Code {
				return errors.LocationOccupied(location, e.MaterialCode)
			}
			if e.Lot == in.Lot {
				existing = e
			}
		}

		if existing != nil {
			total, err = l.stock.AddQuantityTx(ctx, tx, existing.ID, in.Quantity, username)
			return err
		}

		entry := &repository.StockEntry{
			MaterialCode: material.Code,
			Description:  material.Description,
			Quantity:     in.Quantity,
			Location:     location,
			Lot:          in.Lot,
			Username:     username,
		}
		if err := l.stock.InsertTx(ctx, tx, entry); err != nil {
			return err
		}
		total = in.Quantity
		return nil
	})
	if err != nil {
		return decimal.Zero, mapLedgerError(err)
	}

	l.recorder.Record(ctx, Movement{
		MaterialCode: material.Code,
		Description:  material.Description,
		Delta:        "+" + in.Quantity.String(),
		MovementType: repository.MovementIngress,
		Status:       repository.StatusStored,
		Username:     username,
		Lot:          in.Lot,
	})

	l.publish(ctx, messaging.EventStockIngressed, messaging.StockIngressedEvent{
		MaterialCode: material.Code,
		Location:     location,
		Lot:          in.Lot,
		Quantity:     in.Quantity.String(),
		NewTotal:     total.String(),
		Username:     username,
	})

	return total, nil
}

// Transfer moves quantity from one location to another in a single
// transaction, so total stock is conserved. A source row drained to exactly
// zero is deleted.
func (l *Ledger) Transfer(ctx context.Context, in TransferInput) (*TransferResult, error) {
	if !in.Quantity.IsPositive() {
		return nil, errors.BadRequest("quantity must be greater than zero")
	}

	from, err := l.validator.Validate(ctx, in.FromLocation)
	if err != nil {
		return nil, err
	}
	to, err := l.validator.Validate(ctx, in.ToLocation)
	if err != nil {
		return nil, err
	}
	if from == to {
		return nil, errors.BadRequest("source and destination locations are the same")
	}

	username := in.Actor.String()
	result := &TransferResult{}
	var description, lot string

	err = l.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		sources, err := l.stock.ListByLocationForUpdate(ctx, tx, from)
		if err != nil {
			return err
		}
		if len(sources) == 0 {
			return errors.InsufficientStock("0", in.Quantity.String())
		}

		source := sources[0]
		if source.Quantity.LessThan(in.Quantity) {
			return errors.InsufficientStock(source.Quantity.String(), in.Quantity.String())
		}

		result.MaterialCode = source.MaterialCode
		description = source.Description
		lot = source.Lot

		remaining := source.Quantity.Sub(in.Quantity)
		if remaining.IsZero() {
			if err := l.stock.DeleteTx(ctx, tx, source.ID); err != nil {
				return err
			}
		} else {
			if _, err := l.stock.AddQuantityTx(ctx, tx, source.ID, in.Quantity.Neg(), username); err != nil {
				return err
			}
		}
		result.FromRemaining = remaining

		if to == l.ground {
			entry := &repository.StockEntry{
				MaterialCode: source.MaterialCode,
				Description:  source.Description,
				Quantity:     in.Quantity,
				Location:     to,
				Lot:          source.Lot,
				Username:     username,
			}
			if err := l.stock.InsertTx(ctx, tx, entry); err != nil {
				return err
			}
			result.ToTotal = in.Quantity
			return nil
		}

		destinations, err := l.stock.ListByLocationForUpdate(ctx, tx, to)
		if err != nil {
			return err
		}

		var existing *repository.StockEntry
		for _, e := range destinations {
			if e.MaterialCode != source.MaterialCode {
				return errors.LocationOccupied(to, e.MaterialCode)
			}
			if e.Lot == source.Lot {
				existing = e
			}
		}

		if existing != nil {
			result.ToTotal, err = l.stock.AddQuantityTx(ctx, tx, existing.ID, in.Quantity, username)
			return err
		}

		entry := &repository.StockEntry{
			MaterialCode: source.MaterialCode,
			Description:  source.Description,
			Quantity:     in.Quantity,
			Location:     to,
			Lot:          source.Lot,
			Username:     username,
		}
		if err := l.stock.InsertTx(ctx, tx, entry); err != nil {
			return err
		}
		result.ToTotal = in.Quantity
		return nil
	})
	if err != nil {
		return nil, mapLedgerError(err)
	}

	l.recorder.Record(ctx, Movement{
		MaterialCode: result.MaterialCode,
		Description:  description,
		Delta:        in.Quantity.String(),
		MovementType: repository.MovementTransfer,
		Status:       fmt.Sprintf("%s -> %s", from, to),
		Username:     username,
		Lot:          lot,
	})

	l.publish(ctx, messaging.EventStockTransferred, messaging.StockTransferredEvent{
		MaterialCode:  result.MaterialCode,
		FromLocation:  from,
		ToLocation:    to,
		Quantity:      in.Quantity.String(),
		FromRemaining: result.FromRemaining.String(),
		ToTotal:       result.ToTotal.String(),
		Username:      username,
	})

	return result, nil
}

// Withdraw removes quantity from a location. A row drained to exactly zero
// is deleted.
func (l *Ledger) Withdraw(ctx context.Context, in WithdrawInput) (decimal.Decimal, error) {
	if !in.Quantity.IsPositive() {
		return decimal.Zero, errors.BadRequest("quantity must be greater than zero")
	}

	location, err := l.validator.Validate(ctx, in.Location)
	if err != nil {
		return decimal.Zero, err
	}

	username := in.Actor.String()
	var remaining decimal.Decimal
	var description string

	err = l.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		var entry *repository.StockEntry
		var err error
		if in.Lot != "" {
			entry, err = l.stock.GetTupleForUpdate(ctx, tx, in.MaterialCode, location, in.Lot)
		} else {
			entry, err = l.stock.FirstForMaterialForUpdate(ctx, tx, in.MaterialCode, location)
		}
		if err != nil {
			return err
		}
		if entry == nil {
			return errors.InsufficientStock("0", in.Quantity.String())
		}
		if entry.Quantity.LessThan(in.Quantity) {
			return errors.InsufficientStock(entry.Quantity.String(), in.Quantity.String())
		}

		description = entry.Description
		remaining = entry.Quantity.Sub(in.Quantity)
		if remaining.IsZero() {
			return l.stock.DeleteTx(ctx, tx, entry.ID)
		}
		_, err = l.stock.AddQuantityTx(ctx, tx, entry.ID, in.Quantity.Neg(), username)
		return err
	})
	if err != nil {
		return decimal.Zero, mapLedgerError(err)
	}

	l.recorder.Record(ctx, Movement{
		MaterialCode: in.MaterialCode,
		Description:  description,
		Delta:        "-" + in.Quantity.String(),
		MovementType: repository.MovementWithdraw,
		Status:       repository.StatusDispatched,
		Username:     username,
		Lot:          in.Lot,
	})

	l.publish(ctx, messaging.EventStockWithdrawn, messaging.StockWithdrawnEvent{
		MaterialCode: in.MaterialCode,
		Location:     location,
		Lot:          in.Lot,
		Quantity:     in.Quantity.String(),
		Remaining:    remaining.String(),
		Username:     username,
	})

	return remaining, nil
}

// publish sends a domain event. Publish failures are logged, never propagated.
func (l *Ledger) publish(ctx context.Context, eventType string, payload interface{}) {
	if l.publisher == nil {
		return
	}
	if err := l.publisher.Publish(ctx, eventType, payload); err != nil {
		l.logger.Error().
			Err(err).
			Str("event_type", eventType).
			Msg("failed to publish stock event")
	}
}

// mapLedgerError translates driver-level errors into domain errors. Unique
// index and serialization failures surface as concurrency conflicts.
func mapLedgerError(err error) error {
	var appErr *errors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	if mapped := database.MapPQError(err); mapped != nil {
		return mapped
	}
	return err
}
