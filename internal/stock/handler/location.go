package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/smartstock/smartstock-backend/internal/stock/repository"
	"github.com/smartstock/smartstock-backend/internal/stock/service"
	"github.com/smartstock/smartstock-backend/pkg/errors"
	"github.com/smartstock/smartstock-backend/pkg/httputil"
	"github.com/smartstock/smartstock-backend/pkg/logger"
	"github.com/smartstock/smartstock-backend/pkg/messaging"
)

// LocationHandler handles location registry endpoints
type LocationHandler struct {
	locations *repository.LocationRepository
	stock     *repository.StockRepository
	publisher service.EventPublisher
	ground    string
	logger    *logger.Logger
}

// NewLocationHandler creates a new location handler
func NewLocationHandler(locations *repository.LocationRepository, stock *repository.StockRepository, publisher service.EventPublisher, ground string, log *logger.Logger) *LocationHandler {
	return &LocationHandler{
		locations: locations,
		stock:     stock,
		publisher: publisher,
		ground:    ground,
		logger:    log,
	}
}

// List lists locations, active only unless include_inactive is set
func (h *LocationHandler) List(w http.ResponseWriter, r *http.Request) {
	includeInactive := r.URL.Query().Get("include_inactive") == "true"

	locations, err := h.locations.List(r.Context(), includeInactive)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, locations)
}

// Get returns one location by code
func (h *LocationHandler) Get(w http.ResponseWriter, r *http.Request) {
	code := service.Normalize(chi.URLParam(r, "code"))

	location, err := h.locations.GetByCode(r.Context(), code)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, location)
}

type createLocationRequest struct {
	Code        string `json:"code" validate:"required,max=50"`
	Description string `json:"description" validate:"max=255"`
}

// Create registers a new location
func (h *LocationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createLocationRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(req); err != nil {
		httputil.Error(w, err)
		return
	}

	location := &repository.Location{
		Code:        service.Normalize(req.Code),
		Description: req.Description,
		Active:      true,
	}
	if err := h.locations.Create(r.Context(), location); err != nil {
		httputil.Error(w, err)
		return
	}

	if h.publisher != nil {
		if err := h.publisher.Publish(r.Context(), messaging.EventLocationCreated, messaging.LocationCreatedEvent{
			Code:        location.Code,
			Description: location.Description,
		}); err != nil {
			h.logger.Error().Err(err).Str("location", location.Code).Msg("failed to publish location event")
		}
	}

	httputil.Created(w, location)
}

type updateLocationRequest struct {
	Description string `json:"description" validate:"max=255"`
	Active      bool   `json:"active"`
}

// Update changes a location's description and active flag
func (h *LocationHandler) Update(w http.ResponseWriter, r *http.Request) {
	code := service.Normalize(chi.URLParam(r, "code"))

	var req updateLocationRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(req); err != nil {
		httputil.Error(w, err)
		return
	}

	if code == h.ground && !req.Active {
		httputil.Error(w, errors.BadRequest("the receiving buffer cannot be deactivated"))
		return
	}

	location := &repository.Location{
		Code:        code,
		Description: req.Description,
		Active:      req.Active,
	}
	if err := h.locations.Update(r.Context(), location); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, location)
}

// Delete removes a location. A location still holding stock is deactivated
// instead, so existing ledger rows keep a valid reference. The receiving
// buffer can never be removed.
func (h *LocationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	code := service.Normalize(chi.URLParam(r, "code"))

	if code == h.ground {
		httputil.Error(w, errors.BadRequest("the receiving buffer cannot be removed"))
		return
	}

	hasStock, err := h.stock.HasStockAtLocation(r.Context(), code)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	if hasStock {
		if err := h.locations.Deactivate(r.Context(), code); err != nil {
			httputil.Error(w, err)
			return
		}
	} else {
		if err := h.locations.Delete(r.Context(), code); err != nil {
			httputil.Error(w, err)
			return
		}
	}

	if h.publisher != nil {
		if err := h.publisher.Publish(r.Context(), messaging.EventLocationDeactivated, messaging.LocationDeactivatedEvent{
			Code: code,
		}); err != nil {
			h.logger.Error().Err(err).Str("location", code).Msg("failed to publish location event")
		}
	}

	httputil.NoContent(w)
}
