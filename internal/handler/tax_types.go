package handler

import (
	"net/http"

	"dailypos/internal/dto"
	"dailypos/internal/service"

	"github.com/gin-gonic/gin"
)

type TaxTypeHandler struct{ svc service.TaxTypeService }

func NewTaxTypeHandler(svc service.TaxTypeService) *TaxTypeHandler {
	return &TaxTypeHandler{svc: svc}
}

// List godoc
// @Summary List tax types
// @Tags tax-types
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.TaxTypeResponse
// @Router /tax-types [get]
func (h *TaxTypeHandler) List(c *gin.Context) {
	resp, err := h.svc.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Create godoc
// @Summary Create a tax type
// @Tags tax-types
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.TaxTypeRequest true "Tax type"
// @Success 201 {object} dto.TaxTypeResponse
// @Failure 400 {object} apierror.APIError
// @Router /tax-types [post]
func (h *TaxTypeHandler) Create(c *gin.Context) {
	var req dto.TaxTypeRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Update godoc
// @Summary Update a tax type (past orders keep their amounts)
// @Tags tax-types
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Tax type ID"
// @Param body body dto.TaxTypeRequest true "Tax type"
// @Success 200 {object} dto.TaxTypeResponse
// @Failure 404 {object} apierror.APIError
// @Router /tax-types/{id} [put]
func (h *TaxTypeHandler) Update(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.TaxTypeRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
