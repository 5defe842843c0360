package handler

import (
	"net/http"

	"pipeflow/internal/dto"
	"pipeflow/internal/middleware"
	"pipeflow/internal/service"

	"github.com/gin-gonic/gin"
)

type ShippingHandler struct {
	records service.RecordService
}

func NewShippingHandler(records service.RecordService) *ShippingHandler {
	return &ShippingHandler{records: records}
}

// Create godoc
// @Summary  Record shipped quantity against a sub-order
// @Tags     shipping
// @Param    id   path string true "sub-order id"
// @Param    body body dto.ShippingRecordRequest true "record"
// @Success  201 {object} dto.ShippingRecordResponse
// @Failure  409 {object} apierror.CapacityError
// @Router   /sub-orders/{id}/shipping [post]
func (h *ShippingHandler) Create(c *gin.Context) {
	subOrderID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.ShippingRecordRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.records.AddShipping(c.Request.Context(), subOrderID, middleware.UserID(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Update godoc
// @Summary  Amend a shipping record (capacity re-checked)
// @Tags     shipping
// @Param    id   path string true "record id"
// @Param    body body dto.ShippingRecordRequest true "record"
// @Success  200 {object} dto.ShippingRecordResponse
// @Router   /shipping-records/{id} [put]
func (h *ShippingHandler) Update(c *gin.Context) {
	recordID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.ShippingRecordRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.records.UpdateShipping(c.Request.Context(), recordID, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Delete godoc
// @Summary  Delete a shipping record
// @Tags     shipping
// @Param    id path string true "record id"
// @Success  204
// @Router   /shipping-records/{id} [delete]
func (h *ShippingHandler) Delete(c *gin.Context) {
	recordID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.records.DeleteShipping(c.Request.Context(), recordID); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
