package handler

import (
	"net/http"

	"github.com/shopspring/decimal"
	"github.com/smartstock/smartstock-backend/internal/stock/repository"
	"github.com/smartstock/smartstock-backend/internal/stock/service"
	"github.com/smartstock/smartstock-backend/pkg/actor"
	"github.com/smartstock/smartstock-backend/pkg/errors"
	"github.com/smartstock/smartstock-backend/pkg/httputil"
	"github.com/smartstock/smartstock-backend/pkg/logger"
	"github.com/smartstock/smartstock-backend/pkg/messaging"
)

// ReceiptHandler handles plant receipt endpoints
type ReceiptHandler struct {
	receipts  *repository.ReceiptRepository
	recorder  *service.Recorder
	publisher service.EventPublisher
	logger    *logger.Logger
}

// NewReceiptHandler creates a new receipt handler
func NewReceiptHandler(receipts *repository.ReceiptRepository, recorder *service.Recorder, publisher service.EventPublisher, log *logger.Logger) *ReceiptHandler {
	return &ReceiptHandler{
		receipts:  receipts,
		recorder:  recorder,
		publisher: publisher,
		logger:    log,
	}
}

type receiptRequest struct {
	Plant    string          `json:"plant" validate:"required,max=50"`
	Code     string          `json:"code" validate:"required,max=50"`
	Quantity decimal.Decimal `json:"quantity"`
	Lot      string          `json:"lote"`
	User     actor.Actor     `json:"user"`
}

// Create records a quantity received directly by a plant
func (h *ReceiptHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req receiptRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(req); err != nil {
		httputil.Error(w, err)
		return
	}
	if !req.Quantity.IsPositive() {
		httputil.Error(w, errors.BadRequest("quantity must be greater than zero"))
		return
	}

	receipt := &repository.Receipt{
		Plant:        req.Plant,
		MaterialCode: req.Code,
		Quantity:     req.Quantity,
		Lot:          req.Lot,
		Username:     req.User.String(),
	}
	if err := h.receipts.Create(r.Context(), receipt); err != nil {
		httputil.Error(w, err)
		return
	}

	h.recorder.Record(r.Context(), service.Movement{
		MaterialCode: receipt.MaterialCode,
		Delta:        "-" + receipt.Quantity.String(),
		MovementType: repository.MovementWithdraw,
		Status:       repository.StatusDispatched,
		Username:     receipt.Username,
		Lot:          receipt.Lot,
		Plant:        &receipt.Plant,
	})

	if h.publisher != nil {
		if err := h.publisher.Publish(r.Context(), messaging.EventReceiptCreated, messaging.ReceiptCreatedEvent{
			ReceiptID:    receipt.ID,
			Plant:        receipt.Plant,
			MaterialCode: receipt.MaterialCode,
			Quantity:     receipt.Quantity.String(),
			Username:     receipt.Username,
		}); err != nil {
			h.logger.Error().Err(err).Str("plant", receipt.Plant).Msg("failed to publish receipt event")
		}
	}

	httputil.Created(w, receipt)
}

// List returns receipts, optionally filtered by plant
func (h *ReceiptHandler) List(w http.ResponseWriter, r *http.Request) {
	plant := r.URL.Query().Get("plant")

	receipts, err := h.receipts.List(r.Context(), plant)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, receipts)
}
