package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"design-order-backend/internal/models"
	"design-order-backend/internal/services"
)

// maxDeliverableSize bounds a single finished file.
const maxDeliverableSize = 100 << 20

type Fulfillment interface {
	UpdateStatus(ctx context.Context, orderID uuid.UUID, status models.OrderStatus) (*models.Order, error)
	Deliver(ctx context.Context, orderID uuid.UUID, blobs []models.FileBlob) (*models.DeliveryResponse, error)
}

type AdminHandler struct {
	fulfillment Fulfillment
	log         logrus.FieldLogger
}

func NewAdminHandler(fulfillment Fulfillment, log logrus.FieldLogger) *AdminHandler {
	return &AdminHandler{fulfillment: fulfillment, log: log}
}

// UpdateStatus godoc
// @Summary     Set fulfillment status
// @Tags        admin
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       order_id path string                     true "Order ID"
// @Param       request  body models.UpdateStatusRequest true "New status"
// @Success     200 {object} models.OrderResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /admin/orders/{order_id}/status [patch]
func (h *AdminHandler) UpdateStatus(c *gin.Context) {
	if h.fulfillment == nil {
		unavailable(c, "database")
		return
	}

	orderID, err := uuid.Parse(c.Param("order_id"))
	if err != nil {
		badRequest(c, "invalid order id")
		return
	}

	var req models.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "status is required")
		return
	}

	order, err := h.fulfillment.UpdateStatus(c.Request.Context(), orderID, req.Status)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	h.log.WithFields(logrus.Fields{
		"order_id": orderID,
		"status":   order.Status,
	}).Info("order status updated")
	c.JSON(http.StatusOK, toOrderResponse(order))
}

// Deliver godoc
// @Summary     Deliver finished files
// @Description Uploads the files in the multipart field "files", marks the order delivered and returns signed download links valid for one hour.
// @Tags        admin
// @Accept      multipart/form-data
// @Produce     json
// @Security    Bearer
// @Param       order_id path     string true "Order ID"
// @Param       files    formData file   true "Deliverables"
// @Success     200 {object} models.DeliveryResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Router      /admin/orders/{order_id}/deliver [post]
func (h *AdminHandler) Deliver(c *gin.Context) {
	if h.fulfillment == nil {
		unavailable(c, "database")
		return
	}

	orderID, err := uuid.Parse(c.Param("order_id"))
	if err != nil {
		badRequest(c, "invalid order id")
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		badRequest(c, "expected multipart form")
		return
	}

	blobs := make([]models.FileBlob, 0, len(form.File["files"]))
	for _, fh := range form.File["files"] {
		blob, err := readUpload(fh, maxDeliverableSize)
		if err != nil {
			respondError(c, h.log, err)
			return
		}
		blobs = append(blobs, blob)
	}

	resp, err := h.fulfillment.Deliver(c.Request.Context(), orderID, blobs)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

var _ Fulfillment = (*services.FulfillmentService)(nil)
