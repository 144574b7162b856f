package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"design-order-backend/internal/checkout"
	"design-order-backend/internal/models"
	"design-order-backend/internal/wizard"
)

type CheckoutHandler struct {
	service  *checkout.Service
	lookup   *checkout.StatusLookup
	registry *wizard.Registry
	log      logrus.FieldLogger
}

// NewCheckoutHandler serves session creation and the success-page lookup.
// registry may be nil; when set, a paid lookup clears the draft that
// started the checkout if the caller still holds it.
func NewCheckoutHandler(service *checkout.Service, lookup *checkout.StatusLookup, registry *wizard.Registry, log logrus.FieldLogger) *CheckoutHandler {
	return &CheckoutHandler{service: service, lookup: lookup, registry: registry, log: log}
}

// CreateSession godoc
// @Summary     Create a checkout session
// @Description Prices the order server-side, opens a Stripe Checkout session and records a pending order.
// @Tags        checkout
// @Accept      json
// @Produce     json
// @Param       request body models.CheckoutRequest true "Order details"
// @Success     200 {object} models.CheckoutResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     502 {object} models.ErrorResponse
// @Router      /checkout/session [post]
func (h *CheckoutHandler) CreateSession(c *gin.Context) {
	var req models.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	resp, err := h.service.CreateSession(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetSession godoc
// @Summary     Checkout status
// @Description Resolves a Stripe session id or an order id to the order status shown after payment.
// @Tags        checkout
// @Produce     json
// @Param       session_id query string true "Checkout session id or order id"
// @Success     200 {object} models.SessionDetailsResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     502 {object} models.ErrorResponse
// @Router      /checkout/session [get]
func (h *CheckoutHandler) GetSession(c *gin.Context) {
	details, err := h.lookup.Lookup(c.Request.Context(), c.Query("session_id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	if details.PaymentStatus == string(models.PaymentPaid) && details.DraftID != "" {
		h.completeDraft(c, details.DraftID)
	}
	c.JSON(http.StatusOK, details)
}

// completeDraft clears the caller's draft once the checkout created from it
// is paid. A paid session from any other draft leaves the cookie's draft
// alone. Failure only leaves a stale draft behind, so it is logged and ignored.
func (h *CheckoutHandler) completeDraft(c *gin.Context, draftID string) {
	if h.registry == nil {
		return
	}
	id, err := c.Cookie(DraftCookie)
	if err != nil || id != draftID {
		return
	}
	if err := h.registry.Complete(c.Request.Context(), id); err != nil {
		h.log.WithError(err).WithField("draft_id", id).Warn("failed to clear paid draft")
	}
}
