package service

import (
	"context"
	"time"

	"github.com/smartstock/smartstock-backend/internal/stock/repository"
	"github.com/smartstock/smartstock-backend/pkg/errors"
	"github.com/smartstock/smartstock-backend/pkg/logger"
)

// movementStore is the slice of the movement repository the recorder needs.
type movementStore interface {
	Create(ctx context.Context, rec *repository.MovementRecord) error
}

// unitLookup resolves a material's unit of measure.
type unitLookup interface {
	LookupUnit(ctx context.Context, code string) (string, error)
}

// Movement describes one ledger mutation to be written to the audit trail.
// Shift, business date and unit are filled in by the recorder.
type Movement struct {
	MaterialCode string
	Description  string
	Delta        string
	MovementType string
	Status       string
	Username     string
	Lot          string
	Plant        *string
}

// Recorder writes the movement audit trail. Recording is best-effort: a
// failed write is logged and never fails the mutation that produced it.
type Recorder struct {
	movements   movementStore
	materials   unitLookup
	defaultUnit string
	logger      *logger.Logger
	now         func() time.Time
}

// NewRecorder creates a new movement recorder
func NewRecorder(movements movementStore, materials unitLookup, defaultUnit string, log *logger.Logger) *Recorder {
	return &Recorder{
		movements:   movements,
		materials:   materials,
		defaultUnit: defaultUnit,
		logger:      log.WithComponent("movement-recorder"),
		now:         time.Now,
	}
}

// ShiftFor maps a timestamp to its warehouse shift.
// Shifts run [00:00,08:00), [08:00,16:00) and [16:00,24:00).
func ShiftFor(t time.Time) string {
	switch {
	case t.Hour() < 8:
		return "Turno 1"
	case t.Hour() < 16:
		return "Turno 2"
	default:
		return "Turno 3"
	}
}

// BusinessDate formats a timestamp as the DD.MM.YYYY business date.
func BusinessDate(t time.Time) string {
	return t.Format("02.01.2006")
}

// Record appends one audit record. Errors are logged, never propagated.
func (r *Recorder) Record(ctx context.Context, m Movement) {
	unit := r.defaultUnit
	if m.MaterialCode != "" {
		resolved, err := r.materials.LookupUnit(ctx, m.MaterialCode)
		switch {
		case err == nil && resolved != "":
			unit = resolved
		case err != nil && !errors.Is(err, errors.ErrNotFound):
			r.logger.Warn().
				Err(err).
				Str("material", m.MaterialCode).
				Msg("unit lookup failed, using default unit")
		}
	}

	now := r.now()
	rec := &repository.MovementRecord{
		MaterialCode: m.MaterialCode,
		Description:  m.Description,
		Delta:        m.Delta,
		Unit:         unit,
		MovementType: m.MovementType,
		Status:       m.Status,
		Username:     m.Username,
		Shift:        ShiftFor(now),
		BusinessDate: BusinessDate(now),
		Lot:          m.Lot,
		Plant:        m.Plant,
	}

	if err := r.movements.Create(ctx, rec); err != nil {
		r.logger.Error().
			Err(err).
			Str("material", m.MaterialCode).
			Str("movement_type", m.MovementType).
			Msg("failed to record movement")
	}
}
