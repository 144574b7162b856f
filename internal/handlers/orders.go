package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"design-order-backend/internal/models"
	"design-order-backend/internal/services"
)

type OrderReader interface {
	GetOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
}

type OrderSearcher interface {
	ListOrdersByEmail(ctx context.Context, email string) ([]models.OrderSummary, error)
}

type URLSigner interface {
	SignedURL(ctx context.Context, path string, expiresIn time.Duration) (string, error)
}

type OrdersHandler struct {
	orders   OrderReader
	searcher OrderSearcher
	signer   URLSigner
	log      logrus.FieldLogger
}

// NewOrdersHandler serves order reads. Any collaborator may be nil; the
// routes that need it then answer 503. Without a signer delivered files are
// listed without download links.
func NewOrdersHandler(orders OrderReader, searcher OrderSearcher, signer URLSigner, log logrus.FieldLogger) *OrdersHandler {
	return &OrdersHandler{orders: orders, searcher: searcher, signer: signer, log: log}
}

// GetOrder godoc
// @Summary     Get an order
// @Description Returns the order row including payment, fulfillment and delivery state.
// @Tags        orders
// @Produce     json
// @Param       order_id path string true "Order ID"
// @Success     200 {object} models.OrderResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     503 {object} models.ErrorResponse
// @Router      /orders/{order_id} [get]
func (h *OrdersHandler) GetOrder(c *gin.Context) {
	if h.orders == nil {
		unavailable(c, "database")
		return
	}

	orderID, err := uuid.Parse(c.Param("order_id"))
	if err != nil {
		badRequest(c, "invalid order id")
		return
	}

	order, err := h.orders.GetOrder(c.Request.Context(), orderID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	resp := toOrderResponse(order)
	resp.DeliveryFiles = h.deliveryLinks(c.Request.Context(), order)
	c.JSON(http.StatusOK, resp)
}

// ListOrders godoc
// @Summary     Find orders by email
// @Description Lists the orders placed with an email address, newest first.
// @Tags        orders
// @Produce     json
// @Param       email query string true "Customer email"
// @Success     200 {object} models.OrderListResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     502 {object} models.ErrorResponse
// @Failure     503 {object} models.ErrorResponse
// @Router      /orders [get]
func (h *OrdersHandler) ListOrders(c *gin.Context) {
	if h.searcher == nil {
		unavailable(c, "order search")
		return
	}

	email := strings.TrimSpace(c.Query("email"))
	if email == "" {
		badRequest(c, "email is required")
		return
	}

	orders, err := h.searcher.ListOrdersByEmail(c.Request.Context(), email)
	if err != nil {
		h.log.WithError(err).Warn("order search failed")
		c.JSON(http.StatusBadGateway, models.ErrorResponse{
			Error:     "failed to search orders",
			Code:      "search_failed",
			Retryable: true,
		})
		return
	}
	if orders == nil {
		orders = []models.OrderSummary{}
	}
	c.JSON(http.StatusOK, models.OrderListResponse{Orders: orders})
}

// deliveryLinks swaps stored object paths for short-lived download links.
// Files whose link cannot be signed are listed without one.
func (h *OrdersHandler) deliveryLinks(ctx context.Context, order *models.Order) []models.FileMetadata {
	var files []models.FileMetadata
	if len(order.DeliveryFiles) == 0 {
		return nil
	}
	if err := json.Unmarshal(order.DeliveryFiles, &files); err != nil {
		h.log.WithError(err).WithField("order_id", order.ID).Warn("unreadable delivery files")
		return nil
	}

	for i := range files {
		path := files[i].URL
		files[i].URL = ""
		if h.signer == nil || path == "" {
			continue
		}
		url, err := h.signer.SignedURL(ctx, path, services.DeliveryLinkExpiry)
		if err != nil {
			h.log.WithError(err).WithField("order_id", order.ID).Warn("failed to sign delivery file")
			continue
		}
		files[i].URL = url
	}
	return files
}

func toOrderResponse(o *models.Order) models.OrderResponse {
	resp := models.OrderResponse{
		ID:                 o.ID.String(),
		Email:              o.Email,
		ProjectType:        o.ProjectType,
		ContentText:        o.ContentText,
		Dimensions:         o.Dimensions.String,
		ReferenceLinks:     []string(o.ReferenceLinks),
		IsExpress:          o.IsExpress,
		IncludeSourceFiles: o.IncludeSourceFiles,
		TotalPrice:         o.TotalPrice,
		Currency:           o.Currency,
		PaymentStatus:      o.PaymentStatus,
		Status:             o.Status,
		RevisionsUsed:      o.RevisionsUsed,
		RevisionsIncluded:  o.RevisionsIncluded,
		CreatedAt:          o.CreatedAt,
		UpdatedAt:          o.UpdatedAt,
	}
	if resp.ReferenceLinks == nil {
		resp.ReferenceLinks = []string{}
	}
	if o.DeliveryDeadline.Valid {
		t := o.DeliveryDeadline.Time
		resp.DeliveryDeadline = &t
	}
	if o.DeliveredAt.Valid {
		t := o.DeliveredAt.Time
		resp.DeliveredAt = &t
	}
	return resp
}
