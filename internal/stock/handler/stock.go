package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/smartstock/smartstock-backend/internal/stock/repository"
	"github.com/smartstock/smartstock-backend/internal/stock/service"
	"github.com/smartstock/smartstock-backend/pkg/actor"
	"github.com/smartstock/smartstock-backend/pkg/errors"
	"github.com/smartstock/smartstock-backend/pkg/httputil"
	"github.com/smartstock/smartstock-backend/pkg/logger"
)

// StockHandler handles stock ledger endpoints
type StockHandler struct {
	ledger *service.Ledger
	stock  *repository.StockRepository
	logger *logger.Logger
}

// NewStockHandler creates a new stock handler
func NewStockHandler(ledger *service.Ledger, stock *repository.StockRepository, log *logger.Logger) *StockHandler {
	return &StockHandler{
		ledger: ledger,
		stock:  stock,
		logger: log,
	}
}

type ingressRequest struct {
	Code     string          `json:"code" validate:"required"`
	Quantity decimal.Decimal `json:"quantity"`
	Position string          `json:"position" validate:"required"`
	Lot      string          `json:"lote"`
	User     actor.Actor     `json:"user"`
}

type ingressResponse struct {
	Total decimal.Decimal `json:"total"`
}

// Ingress adds stock at a location
func (h *StockHandler) Ingress(w http.ResponseWriter, r *http.Request) {
	var req ingressRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(req); err != nil {
		httputil.Error(w, err)
		return
	}
	if req.User.IsZero() {
		httputil.Error(w, errors.Validation(map[string]string{"User": "this field is required"}))
		return
	}

	total, err := h.ledger.Ingress(r.Context(), service.IngressInput{
		MaterialCode: req.Code,
		Location:     req.Position,
		Quantity:     req.Quantity,
		Lot:          req.Lot,
		Actor:        req.User,
	})
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, ingressResponse{Total: total})
}

type transferRequest struct {
	FromPosition string          `json:"fromPosition" validate:"required"`
	ToPosition   string          `json:"toPosition" validate:"required"`
	Quantity     decimal.Decimal `json:"quantity"`
	User         actor.Actor     `json:"user"`
}

type transferResponse struct {
	Material      string          `json:"material"`
	FromRemaining decimal.Decimal `json:"fromRestante"`
	ToTotal       decimal.Decimal `json:"toTotal"`
}

// Transfer moves stock between locations
func (h *StockHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	var req transferRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(req); err != nil {
		httputil.Error(w, err)
		return
	}
	if req.User.IsZero() {
		httputil.Error(w, errors.Validation(map[string]string{"User": "this field is required"}))
		return
	}

	result, err := h.ledger.Transfer(r.Context(), service.TransferInput{
		FromLocation: req.FromPosition,
		ToLocation:   req.ToPosition,
		Quantity:     req.Quantity,
		Actor:        req.User,
	})
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, transferResponse{
		Material:      result.MaterialCode,
		FromRemaining: result.FromRemaining,
		ToTotal:       result.ToTotal,
	})
}

type withdrawRequest struct {
	Code     string          `json:"code" validate:"required"`
	Position string          `json:"position" validate:"required"`
	Quantity decimal.Decimal `json:"quantity"`
	Lot      string          `json:"lote"`
	User     actor.Actor     `json:"user"`
}

type withdrawResponse struct {
	Remaining decimal.Decimal `json:"cantidadRestante"`
}

// Withdraw removes stock from a location
func (h *StockHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	var req withdrawRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(req); err != nil {
		httputil.Error(w, err)
		return
	}
	if req.User.IsZero() {
		httputil.Error(w, errors.Validation(map[string]string{"User": "this field is required"}))
		return
	}

	remaining, err := h.ledger.Withdraw(r.Context(), service.WithdrawInput{
		MaterialCode: req.Code,
		Location:     req.Position,
		Quantity:     req.Quantity,
		Lot:          req.Lot,
		Actor:        req.User,
	})
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, withdrawResponse{Remaining: remaining})
}

// List returns the whole ledger
func (h *StockHandler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := h.stock.ListAll(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, entries)
}

// ByMaterial returns all entries for one material across locations.
// A material with no stock yields an empty list, not an error.
func (h *StockHandler) ByMaterial(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	entries, err := h.stock.ListByMaterial(r.Context(), code)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, entries)
}

// ByLocation returns all entries at one location
func (h *StockHandler) ByLocation(w http.ResponseWriter, r *http.Request) {
	code := service.Normalize(chi.URLParam(r, "code"))

	entries, err := h.stock.ListByLocation(r.Context(), code)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, entries)
}
