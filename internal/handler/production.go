package handler

import (
	"net/http"

	"pipeflow/internal/dto"
	"pipeflow/internal/middleware"
	"pipeflow/internal/service"

	"github.com/gin-gonic/gin"
)

type ProductionHandler struct {
	records service.RecordService
}

func NewProductionHandler(records service.RecordService) *ProductionHandler {
	return &ProductionHandler{records: records}
}

// Create godoc
// @Summary  Record produced quantity against a sub-order
// @Tags     production
// @Param    id   path string true "sub-order id"
// @Param    body body dto.ProductionRecordRequest true "record"
// @Success  201 {object} dto.ProductionRecordResponse
// @Failure  409 {object} apierror.CapacityError
// @Router   /sub-orders/{id}/production [post]
func (h *ProductionHandler) Create(c *gin.Context) {
	subOrderID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.ProductionRecordRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.records.AddProduction(c.Request.Context(), subOrderID, middleware.UserID(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Update godoc
// @Summary  Amend a production record (capacity re-checked)
// @Tags     production
// @Param    id   path string true "record id"
// @Param    body body dto.ProductionRecordRequest true "record"
// @Success  200 {object} dto.ProductionRecordResponse
// @Router   /production-records/{id} [put]
func (h *ProductionHandler) Update(c *gin.Context) {
	recordID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.ProductionRecordRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.records.UpdateProduction(c.Request.Context(), recordID, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Delete godoc
// @Summary  Delete a production record (rejected if shipped would exceed produced)
// @Tags     production
// @Param    id path string true "record id"
// @Success  204
// @Router   /production-records/{id} [delete]
func (h *ProductionHandler) Delete(c *gin.Context) {
	recordID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.records.DeleteProduction(c.Request.Context(), recordID); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
