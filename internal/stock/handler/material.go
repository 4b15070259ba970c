package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/smartstock/smartstock-backend/internal/stock/repository"
	"github.com/smartstock/smartstock-backend/pkg/httputil"
	"github.com/smartstock/smartstock-backend/pkg/logger"
)

// MaterialHandler handles material catalog endpoints
type MaterialHandler struct {
	materials *repository.MaterialRepository
	logger    *logger.Logger
}

// NewMaterialHandler creates a new material handler
func NewMaterialHandler(materials *repository.MaterialRepository, log *logger.Logger) *MaterialHandler {
	return &MaterialHandler{
		materials: materials,
		logger:    log,
	}
}

// List returns the material catalog
func (h *MaterialHandler) List(w http.ResponseWriter, r *http.Request) {
	materials, err := h.materials.List(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, materials)
}

// Get returns one material by code
func (h *MaterialHandler) Get(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	material, err := h.materials.GetByCode(r.Context(), code)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, material)
}

type materialRequest struct {
	Code         string  `json:"code" validate:"required,max=50"`
	Description  string  `json:"description" validate:"required,max=255"`
	Unit         string  `json:"unit" validate:"max=20"`
	MaterialType *string `json:"material_type"`
}

// Create adds a material to the catalog
func (h *MaterialHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req materialRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(req); err != nil {
		httputil.Error(w, err)
		return
	}

	if req.Unit == "" {
		req.Unit = "UND"
	}

	material := &repository.Material{
		Code:         req.Code,
		Description:  req.Description,
		Unit:         req.Unit,
		MaterialType: req.MaterialType,
	}
	if err := h.materials.Create(r.Context(), material); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, material)
}

// Update changes a material's description, unit and type
func (h *MaterialHandler) Update(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	var req materialRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	req.Code = code
	if err := httputil.Validate(req); err != nil {
		httputil.Error(w, err)
		return
	}

	if req.Unit == "" {
		req.Unit = "UND"
	}

	material := &repository.Material{
		Code:         code,
		Description:  req.Description,
		Unit:         req.Unit,
		MaterialType: req.MaterialType,
	}
	if err := h.materials.Update(r.Context(), material); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, material)
}

// Delete removes a material from the catalog
func (h *MaterialHandler) Delete(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	if err := h.materials.Delete(r.Context(), code); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.NoContent(w)
}
