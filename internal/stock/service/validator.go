package service

import (
	"context"
	"net/http"
	"strings"

	"github.com/smartstock/smartstock-backend/pkg/errors"
	"github.com/smartstock/smartstock-backend/pkg/logger"
)

// locationStore is the slice of the location repository the validator needs.
type locationStore interface {
	IsActive(ctx context.Context, code string) (bool, error)
}

// LocationValidator gates ledger mutations on the location registry.
//
// When strict is false the validator falls back to the legacy behavior: a
// registry lookup failure logs a warning and lets the mutation proceed. An
// inactive or unknown location is rejected in both modes.
type LocationValidator struct {
	locations locationStore
	strict    bool
	logger    *logger.Logger
}

// NewLocationValidator creates a new location validator
func NewLocationValidator(locations locationStore, strict bool, log *logger.Logger) *LocationValidator {
	return &LocationValidator{
		locations: locations,
		strict:    strict,
		logger:    log.WithComponent("location-validator"),
	}
}

// Normalize trims surrounding whitespace and uppercases a location code.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Validate normalizes the location code and checks it against the registry.
// It returns the normalized code.
func (v *LocationValidator) Validate(ctx context.Context, code string) (string, error) {
	normalized := Normalize(code)
	if normalized == "" {
		return "", errors.BadRequest("location code is required")
	}

	active, err := v.locations.IsActive(ctx, normalized)
	if err != nil {
		if v.strict {
			return "", errors.Wrap(err, "INTERNAL_ERROR", "location registry unavailable", http.StatusInternalServerError)
		}
		v.logger.Warn().
			Err(err).
			Str("location", normalized).
			Msg("location registry unavailable, proceeding without validation")
		return normalized, nil
	}

	if !active {
		return "", errors.LocationInvalid(normalized)
	}
	return normalized, nil
}
