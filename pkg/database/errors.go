package database

import (
	"strings"

	"github.com/lib/pq"
	"github.com/smartstock/smartstock-backend/pkg/errors"
)

// MapPQError converts a PostgreSQL error to an AppError with meaningful messages.
// Returns nil if the error does not wrap a pq.Error.
func MapPQError(err error) *errors.AppError {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return nil
	}

	switch pqErr.Code {
	// Check constraint violation (23514)
	case "23514":
		return mapCheckConstraint(pqErr)

	// Unique constraint violation (23505)
	case "23505":
		return mapUniqueConstraint(pqErr)

	// Foreign key violation (23503)
	case "23503":
		return errors.BadRequest("referenced record does not exist")

	// Not null violation (23502)
	case "23502":
		col := pqErr.Column
		if col == "" {
			col = "required field"
		}
		return errors.Validation(map[string]string{
			col: "must not be empty",
		})

	// Serialization failure / deadlock (40001, 40P01): a concurrent ledger
	// operation won the race, the caller should retry.
	case "40001", "40P01":
		return errors.ConcurrencyConflict()

	default:
		return nil
	}
}

// mapCheckConstraint maps specific CHECK constraint names to user-friendly messages.
func mapCheckConstraint(pqErr *pq.Error) *errors.AppError {
	constraint := pqErr.Constraint

	switch {
	case strings.Contains(constraint, "quantity_non_negative"):
		return errors.Validation(map[string]string{
			"quantity": "must not be negative",
		})

	case strings.Contains(constraint, "movement_type_valid"):
		return errors.Validation(map[string]string{
			"movement_type": "must be one of: Entro, Salio, Movimiento",
		})

	default:
		return errors.BadRequest("data validation failed: " + constraint)
	}
}

// mapUniqueConstraint creates a meaningful error for unique constraint violations.
func mapUniqueConstraint(pqErr *pq.Error) *errors.AppError {
	constraint := pqErr.Constraint

	switch {
	// Two concurrent ingresses racing to create the same stock row
	case strings.Contains(constraint, "stock_ubicaciones_tuple"):
		return errors.ConcurrencyConflict()
	case strings.Contains(constraint, "username"):
		return errors.Conflict("a user with this username already exists")
	case strings.Contains(constraint, "pallets_uid"):
		return errors.Conflict("a pallet with this UID already exists")
	default:
		return errors.Conflict("a record with these values already exists")
	}
}
