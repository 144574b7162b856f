package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"design-order-backend/internal/models"
	"design-order-backend/internal/payments"
)

// maxWebhookBody bounds the payload read from Stripe.
const maxWebhookBody = 1 << 16

type WebhookParser interface {
	ParseWebhook(payload []byte, signature string) (*payments.Event, error)
}

type PaymentRecorder interface {
	HandlePaymentCompleted(ctx context.Context, sess *payments.Session) (*models.Order, error)
}

type WebhookHandler struct {
	parser   WebhookParser
	recorder PaymentRecorder
	log      logrus.FieldLogger
}

func NewWebhookHandler(parser WebhookParser, recorder PaymentRecorder, log logrus.FieldLogger) *WebhookHandler {
	return &WebhookHandler{parser: parser, recorder: recorder, log: log}
}

// HandleStripe godoc
// @Summary     Stripe webhook endpoint
// @Description Verifies the Stripe-Signature header. checkout.session.completed marks the order paid, sets its delivery deadline and sends the confirmation email. Other events are acknowledged.
// @Tags        webhooks
// @Accept      json
// @Produce     json
// @Param       Stripe-Signature header string true "Stripe webhook signature"
// @Success     200 {object} map[string]bool "received"
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /webhooks/stripe [post]
func (h *WebhookHandler) HandleStripe(c *gin.Context) {
	signature := c.GetHeader("Stripe-Signature")
	if signature == "" {
		badRequest(c, "no signature")
		return
	}

	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		badRequest(c, "failed to read body")
		return
	}

	event, err := h.parser.ParseWebhook(payload, signature)
	if err != nil {
		if errors.Is(err, payments.ErrWebhookSecret) {
			h.log.WithError(err).Error("stripe webhook received without a configured secret")
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "webhook not configured", Code: "not_configured"})
			return
		}
		h.log.WithError(err).Warn("rejected stripe webhook")
		respondError(c, h.log, err)
		return
	}

	log := h.log.WithFields(logrus.Fields{"event_id": event.ID, "event_type": event.Type})

	if event.Type == payments.EventCheckoutSessionCompleted {
		if h.recorder == nil {
			log.Error("payment received but order store is not configured")
			unavailable(c, "order store")
			return
		}
		if _, err := h.recorder.HandlePaymentCompleted(c.Request.Context(), event.Session); err != nil {
			log.WithError(err).Error("failed to record payment")
			respondError(c, h.log, err)
			return
		}
	} else {
		log.Debug("ignoring stripe event")
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
