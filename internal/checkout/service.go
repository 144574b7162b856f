// Package checkout creates payment sessions for completed order drafts and
// reads their outcome back.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"design-order-backend/internal/models"
	"design-order-backend/internal/payments"
	"design-order-backend/internal/pricing"
	"design-order-backend/internal/schema"
)

var (
	ErrMissingFields     = errors.New("missing required fields")
	ErrMissingIdentifier = errors.New("missing session or order identifier")
	ErrNotFound          = models.ErrOrderNotFound
	ErrNoCheckoutURL     = errors.New("no checkout URL returned")
	ErrPaymentProvider   = errors.New("payment provider unavailable")
)

// metadataContentLimit caps the brief stored on the payment session.
const metadataContentLimit = 500

type PaymentProvider interface {
	CreateCheckoutSession(ctx context.Context, p payments.SessionParams) (*payments.Session, error)
	GetCheckoutSession(ctx context.Context, id string) (*payments.Session, error)
}

type OrderRepository interface {
	CreateOrder(ctx context.Context, order *models.Order) error
	GetOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	GetOrderBySessionID(ctx context.Context, sessionID string) (*models.Order, error)
}

type Service struct {
	provider PaymentProvider
	orders   OrderRepository
	appURL   string
	log      logrus.FieldLogger
	now      func() time.Time
}

// NewService builds the checkout service. orders may be nil when no database
// is configured; sessions are then created without an order row.
func NewService(provider PaymentProvider, orders OrderRepository, appURL string, log logrus.FieldLogger) *Service {
	return &Service{
		provider: provider,
		orders:   orders,
		appURL:   strings.TrimSuffix(appURL, "/"),
		log:      log,
		now:      time.Now,
	}
}

// CreateSession validates req, prices it and opens a checkout session. Prices
// are always computed here; the client total is display only.
func (s *Service) CreateSession(ctx context.Context, req models.CheckoutRequest) (*models.CheckoutResponse, error) {
	if req.Email == "" || req.ContentText == "" || req.ProjectType == "" {
		return nil, ErrMissingFields
	}
	if errs := schema.ValidateOrder(schema.CheckoutDraft(req)); !errs.OK() {
		return nil, errs
	}

	price := pricing.Compute(pricing.Selection{
		IsExpress:          req.IsExpress,
		IncludeSourceFiles: req.IncludeSourceFiles,
	})

	sess, err := s.provider.CreateCheckoutSession(ctx, payments.SessionParams{
		Email:      req.Email,
		Currency:   pricing.Currency,
		LineItems:  lineItems(req, price),
		SuccessURL: s.appURL + "/order/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:  s.appURL + "/order?canceled=true",
		Metadata:   sessionMetadata(req, price),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPaymentProvider, err)
	}
	if sess.URL == "" {
		return nil, ErrNoCheckoutURL
	}

	if s.orders != nil {
		order := newPendingOrder(req, price, sess.ID)
		if err := s.orders.CreateOrder(ctx, order); err != nil {
			return nil, fmt.Errorf("failed to record order: %w", err)
		}
		s.log.WithFields(logrus.Fields{
			"order_id":   order.ID,
			"session_id": sess.ID,
		}).Info("pending order created")
	}

	return &models.CheckoutResponse{SessionID: sess.ID, URL: sess.URL}, nil
}

// SessionDetails reads a checkout session back for the success page.
func (s *Service) SessionDetails(ctx context.Context, sessionID string) (*models.SessionDetailsResponse, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, ErrMissingIdentifier
	}

	sess, err := s.provider.GetCheckoutSession(ctx, sessionID)
	if errors.Is(err, payments.ErrSessionNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPaymentProvider, err)
	}

	isExpress := sess.Metadata["isExpress"] == "true"
	totalPrice, err := strconv.Atoi(sess.Metadata["totalPrice"])
	if err != nil {
		totalPrice = pricing.Total(pricing.Selection{
			IsExpress:          isExpress,
			IncludeSourceFiles: sess.Metadata["includeSourceFiles"] == "true",
		})
	}
	deliveryTime, err := strconv.Atoi(sess.Metadata["deliveryTime"])
	if err != nil {
		deliveryTime = pricing.DeliveryHours(isExpress)
	}

	details := &models.SessionDetailsResponse{
		SessionID:     sess.ID,
		Email:         sess.Email,
		ProjectType:   models.ProjectType(sess.Metadata["projectType"]),
		IsExpress:     isExpress,
		TotalPrice:    totalPrice,
		DeliveryTime:  deliveryTime,
		OrderID:       sess.Metadata["orderId"],
		PaymentStatus: sess.PaymentStatus,
		DraftID:       sess.Metadata["draftId"],
	}

	if details.OrderID == "" && s.orders != nil {
		order, err := s.orders.GetOrderBySessionID(ctx, sess.ID)
		if err == nil {
			details.OrderID = order.ID.String()
		} else if !errors.Is(err, ErrNotFound) {
			s.log.WithError(err).WithField("session_id", sess.ID).Warn("order lookup by session failed")
		}
	}

	return details, nil
}

func lineItems(req models.CheckoutRequest, price pricing.Breakdown) []payments.LineItem {
	tier := "Standard"
	if req.IsExpress {
		tier = "Express"
	}
	items := []payments.LineItem{{
		Name:        req.ProjectType.Label(),
		Description: fmt.Sprintf("Single design project - %s delivery", tier),
		AmountCents: pricing.Cents(price.Base),
	}}
	if req.IsExpress {
		items = append(items, payments.LineItem{
			Name:        "Express Delivery",
			Description: fmt.Sprintf("%dh delivery", pricing.ExpressDeliveryHours),
			AmountCents: pricing.Cents(price.Express),
		})
	}
	if req.IncludeSourceFiles {
		items = append(items, payments.LineItem{
			Name:        "Source Files",
			Description: "Original design files (PSD/AI/Figma)",
			AmountCents: pricing.Cents(price.SourceFiles),
		})
	}
	return items
}

func sessionMetadata(req models.CheckoutRequest, price pricing.Breakdown) map[string]string {
	content := []rune(req.ContentText)
	if len(content) > metadataContentLimit {
		content = content[:metadataContentLimit]
	}
	meta := map[string]string{
		"projectType":         string(req.ProjectType),
		"contentText":         string(content),
		"dimensions":          req.Dimensions,
		"isExpress":           strconv.FormatBool(req.IsExpress),
		"includeSourceFiles":  strconv.FormatBool(req.IncludeSourceFiles),
		"referenceLinksCount": strconv.Itoa(len(req.ReferenceLinks)),
		"uploadedFilesCount":  strconv.Itoa(len(req.UploadedFiles)),
		"basePrice":           strconv.Itoa(price.Base),
		"expressFee":          strconv.Itoa(price.Express),
		"sourceFilesFee":      strconv.Itoa(price.SourceFiles),
		"totalPrice":          strconv.Itoa(price.Total),
		"revisionsIncluded":   strconv.Itoa(pricing.RevisionsIncluded),
		"deliveryTime":        strconv.Itoa(pricing.DeliveryHours(req.IsExpress)),
	}
	if req.DraftID != "" {
		meta["draftId"] = req.DraftID
	}
	return meta
}
