package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/smartstock/smartstock-backend/internal/stock/repository"
	"github.com/smartstock/smartstock-backend/pkg/httputil"
	"github.com/smartstock/smartstock-backend/pkg/logger"
)

// MovementHandler handles movement history endpoints
type MovementHandler struct {
	movements *repository.MovementRepository
	logger    *logger.Logger
}

// NewMovementHandler creates a new movement handler
func NewMovementHandler(movements *repository.MovementRepository, log *logger.Logger) *MovementHandler {
	return &MovementHandler{
		movements: movements,
		logger:    log,
	}
}

// List returns movement history newest first with optional filters
func (h *MovementHandler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}

	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	if perPage < 1 || perPage > 200 {
		perPage = 50
	}

	filter := repository.MovementFilter{
		MaterialCode: r.URL.Query().Get("material"),
		MovementType: r.URL.Query().Get("tipo"),
		Page:         page,
		PerPage:      perPage,
	}

	records, total, err := h.movements.List(r.Context(), filter)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	totalPages := int(total) / perPage
	if int(total)%perPage > 0 {
		totalPages++
	}

	httputil.JSONWithMeta(w, http.StatusOK, records, &httputil.Meta{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
	})
}

// ByUsername returns all movements attributed to one user
func (h *MovementHandler) ByUsername(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	records, err := h.movements.ListByUsername(r.Context(), username)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, records)
}
