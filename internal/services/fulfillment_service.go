package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"design-order-backend/internal/models"
	"design-order-backend/internal/notify"
	"design-order-backend/internal/payments"
	"design-order-backend/internal/pricing"
)

var (
	ErrInvalidStatus    = errors.New("invalid order status")
	ErrOrderNotPaid     = errors.New("order has not been paid")
	ErrNoDeliveryFiles  = errors.New("no delivery files provided")
	ErrMissingSessionID = errors.New("payment event has no session id")
)

// DeliveryLinkExpiry is how long signed deliverable links stay valid.
const DeliveryLinkExpiry = time.Hour

// confirmationTimeout bounds a background confirmation send, retries included.
const confirmationTimeout = 2 * time.Minute

type OrderStore interface {
	GetOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	GetOrderBySessionID(ctx context.Context, sessionID string) (*models.Order, error)
	MarkOrderPaid(ctx context.Context, sessionID, paymentID string, paidAt, deadline time.Time) (*models.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status models.OrderStatus) (*models.Order, error)
	MarkOrderDelivered(ctx context.Context, orderID uuid.UUID, files []models.FileMetadata, deliveredAt time.Time) (*models.Order, error)
}

type Mailer interface {
	Send(ctx context.Context, email notify.Email) (string, error)
}

type DeliverableStore interface {
	UploadDeliverable(ctx context.Context, orderID uuid.UUID, blob models.FileBlob) (models.FileMetadata, error)
	SignedURL(ctx context.Context, path string, expiresIn time.Duration) (string, error)
}

// FulfillmentService moves paid orders through production and delivery.
type FulfillmentService struct {
	orders      OrderStore
	mailer      Mailer
	files       DeliverableStore
	fromAddress string
	appURL      string
	log         logrus.FieldLogger
	now         func() time.Time
	pending     sync.WaitGroup
}

func NewFulfillmentService(
	orders OrderStore,
	mailer Mailer,
	files DeliverableStore,
	fromAddress, appURL string,
	log logrus.FieldLogger,
) *FulfillmentService {
	return &FulfillmentService{
		orders:      orders,
		mailer:      mailer,
		files:       files,
		fromAddress: fromAddress,
		appURL:      appURL,
		log:         log,
		now:         time.Now,
	}
}

// WithClock overrides the time source.
func (s *FulfillmentService) WithClock(now func() time.Time) *FulfillmentService {
	s.now = now
	return s
}

// HandlePaymentCompleted marks the order behind a completed checkout session
// as paid, sets its delivery deadline and sends the confirmation email. A
// session that was already recorded as paid is left alone.
func (s *FulfillmentService) HandlePaymentCompleted(ctx context.Context, sess *payments.Session) (*models.Order, error) {
	if sess == nil || sess.ID == "" {
		return nil, ErrMissingSessionID
	}
	log := s.log.WithField("session_id", sess.ID)

	order, err := s.orders.GetOrderBySessionID(ctx, sess.ID)
	if err != nil {
		return nil, err
	}
	if order.PaymentStatus == models.PaymentPaid {
		log.WithField("order_id", order.ID).Info("payment already recorded")
		return order, nil
	}

	paidAt := s.now()
	deadline := paidAt.Add(time.Duration(pricing.DeliveryHours(order.IsExpress)) * time.Hour)
	order, err = s.orders.MarkOrderPaid(ctx, sess.ID, sess.PaymentIntentID, paidAt, deadline)
	if err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{
		"order_id": order.ID,
		"deadline": deadline,
	}).Info("order paid")

	if s.mailer == nil {
		log.WithField("order_id", order.ID).Warn("email sender not configured, skipping confirmation")
		return order, nil
	}

	// The send outlives the webhook request so a slow mail provider cannot
	// push the response past the payment provider's timeout.
	s.pending.Add(1)
	go func(order models.Order) {
		defer s.pending.Done()
		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), confirmationTimeout)
		defer cancel()
		s.sendConfirmation(sendCtx, &order, deadline)
	}(*order)
	return order, nil
}

// Wait blocks until background confirmation emails have finished.
func (s *FulfillmentService) Wait() {
	s.pending.Wait()
}

// sendConfirmation never fails the caller; the payment is already recorded.
func (s *FulfillmentService) sendConfirmation(ctx context.Context, order *models.Order, deadline time.Time) {
	log := s.log.WithField("order_id", order.ID)

	confirmation := notify.Confirmation{Order: order, Deadline: deadline, AppURL: s.appURL}
	html, err := confirmation.Render()
	if err != nil {
		log.WithError(err).Error("failed to render confirmation email")
		return
	}

	id, err := s.mailer.Send(ctx, notify.Email{
		From:    s.fromAddress,
		To:      []string{order.Email},
		Subject: confirmation.Subject(),
		HTML:    html,
	})
	if err != nil {
		log.WithError(err).Error("failed to send confirmation email")
		return
	}
	log.WithField("email_id", id).Info("confirmation email sent")
}

func (s *FulfillmentService) UpdateStatus(ctx context.Context, orderID uuid.UUID, status models.OrderStatus) (*models.Order, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	return s.orders.UpdateOrderStatus(ctx, orderID, status)
}

// Deliver uploads the finished files, marks the order delivered and returns
// signed download links for them.
func (s *FulfillmentService) Deliver(ctx context.Context, orderID uuid.UUID, blobs []models.FileBlob) (*models.DeliveryResponse, error) {
	if len(blobs) == 0 {
		return nil, ErrNoDeliveryFiles
	}

	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.PaymentStatus != models.PaymentPaid {
		return nil, ErrOrderNotPaid
	}

	stored := make([]models.FileMetadata, 0, len(blobs))
	for _, blob := range blobs {
		meta, err := s.files.UploadDeliverable(ctx, orderID, blob)
		if err != nil {
			return nil, fmt.Errorf("failed to upload %s: %w", blob.Name, err)
		}
		stored = append(stored, meta)
	}

	order, err = s.orders.MarkOrderDelivered(ctx, orderID, stored, s.now())
	if err != nil {
		return nil, err
	}

	links := make([]models.FileMetadata, len(stored))
	for i, meta := range stored {
		url, err := s.files.SignedURL(ctx, meta.URL, DeliveryLinkExpiry)
		if err != nil {
			return nil, err
		}
		meta.URL = url
		links[i] = meta
	}

	s.log.WithFields(logrus.Fields{
		"order_id": orderID,
		"files":    len(links),
	}).Info("order delivered")

	return &models.DeliveryResponse{OrderID: order.ID.String(), Status: order.Status, Files: links}, nil
}
