package handler

import (
	"net/http"

	"github.com/shopspring/decimal"
	"github.com/smartstock/smartstock-backend/internal/stock/repository"
	"github.com/smartstock/smartstock-backend/pkg/actor"
	"github.com/smartstock/smartstock-backend/pkg/httputil"
	"github.com/smartstock/smartstock-backend/pkg/logger"
)

// PalletHandler handles pallet endpoints
type PalletHandler struct {
	pallets *repository.PalletRepository
	logger  *logger.Logger
}

// NewPalletHandler creates a new pallet handler
func NewPalletHandler(pallets *repository.PalletRepository, log *logger.Logger) *PalletHandler {
	return &PalletHandler{
		pallets: pallets,
		logger:  log,
	}
}

type palletRequest struct {
	Code     *string          `json:"code"`
	Lot      string           `json:"lote"`
	Quantity *decimal.Decimal `json:"quantity"`
	User     actor.Actor      `json:"user"`
}

// Create allocates the next sequential UID and registers a pallet
func (h *PalletHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req palletRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	uid, err := h.pallets.NextUID(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	pallet := &repository.Pallet{
		UID:          uid,
		MaterialCode: req.Code,
		Lot:          req.Lot,
		Quantity:     req.Quantity,
		Username:     req.User.String(),
	}
	if err := h.pallets.Create(r.Context(), pallet); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, pallet)
}

// List returns all pallets newest first
func (h *PalletHandler) List(w http.ResponseWriter, r *http.Request) {
	pallets, err := h.pallets.List(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, pallets)
}
