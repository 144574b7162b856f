package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"design-order-backend/internal/checkout"
	"design-order-backend/internal/models"
	"design-order-backend/internal/payments"
	"design-order-backend/internal/schema"
	"design-order-backend/internal/services"
	"design-order-backend/internal/wizard"
)

type errorKind struct {
	target    error
	status    int
	code      string
	retryable bool
}

// errorKinds is checked in order; the first match wins.
var errorKinds = []errorKind{
	{wizard.ErrDraftUnavailable, http.StatusServiceUnavailable, "draft_unavailable", true},
	{wizard.ErrUnknownStep, http.StatusBadRequest, "unknown_step", false},
	{wizard.ErrStepNotReached, http.StatusBadRequest, "step_not_reached", false},
	{wizard.ErrStepMismatch, http.StatusConflict, "step_mismatch", false},
	{wizard.ErrNotEditingReferences, http.StatusConflict, "not_on_references_step", false},
	{wizard.ErrSubmissionPending, http.StatusConflict, "submission_pending", false},
	{wizard.ErrDraftReset, http.StatusConflict, "draft_reset", false},
	{wizard.ErrNoSuchEntry, http.StatusNotFound, "no_such_entry", false},

	{schema.ErrEmptyURL, http.StatusBadRequest, "empty_url", false},
	{schema.ErrInvalidURL, http.StatusBadRequest, "invalid_url", false},
	{schema.ErrDuplicateLink, http.StatusBadRequest, "duplicate_link", false},
	{schema.ErrTooManyLinks, http.StatusBadRequest, "too_many_links", false},
	{schema.ErrUnsupportedFileType, http.StatusBadRequest, "unsupported_file_type", false},
	{schema.ErrFileTooLarge, http.StatusBadRequest, "file_too_large", false},
	{schema.ErrDuplicateFile, http.StatusBadRequest, "duplicate_file", false},
	{schema.ErrTooManyFiles, http.StatusBadRequest, "too_many_files", false},

	{checkout.ErrMissingFields, http.StatusBadRequest, "missing_fields", false},
	{checkout.ErrMissingIdentifier, http.StatusBadRequest, "missing_identifier", false},
	{checkout.ErrCheckoutUnavailable, http.StatusBadGateway, "checkout_unavailable", true},
	{checkout.ErrPaymentProvider, http.StatusBadGateway, "payment_provider_error", true},
	{checkout.ErrNoCheckoutURL, http.StatusBadGateway, "no_checkout_url", true},
	{checkout.ErrLookupFailed, http.StatusBadGateway, "lookup_failed", true},
	{models.ErrOrderNotFound, http.StatusNotFound, "not_found", false},

	{payments.ErrInvalidSignature, http.StatusBadRequest, "invalid_signature", false},
	{services.ErrInvalidStatus, http.StatusBadRequest, "invalid_status", false},
	{services.ErrNoDeliveryFiles, http.StatusBadRequest, "no_delivery_files", false},
	{services.ErrMissingSessionID, http.StatusBadRequest, "missing_session_id", false},
	{services.ErrOrderNotPaid, http.StatusConflict, "order_not_paid", false},
}

// respondError writes err as a models.ErrorResponse. Unknown errors become a
// 500 and are logged; their text is not sent to the client.
func respondError(c *gin.Context, log logrus.FieldLogger, err error) {
	var fieldErrs schema.FieldErrors
	if errors.As(err, &fieldErrs) {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:  "validation failed",
			Code:   "validation_failed",
			Fields: fieldErrs,
		})
		return
	}

	for _, kind := range errorKinds {
		if !errors.Is(err, kind.target) {
			continue
		}
		if kind.status >= http.StatusInternalServerError {
			log.WithError(err).WithField("path", c.FullPath()).Warn("request failed upstream")
		}
		// Upstream error text stays in the log.
		msg := ""
		if !kind.retryable && err != kind.target {
			msg = err.Error()
		}
		c.JSON(kind.status, models.ErrorResponse{
			Error:     kind.target.Error(),
			Message:   msg,
			Code:      kind.code,
			Retryable: kind.retryable,
		})
		return
	}

	log.WithError(err).WithField("path", c.FullPath()).Error("unhandled error")
	c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Error: "internal server error",
		Code:  "internal",
	})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: msg, Code: "bad_request"})
}

func unavailable(c *gin.Context, what string) {
	c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{
		Error: what + " not available",
		Code:  "not_configured",
	})
}
