package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"design-order-backend/internal/models"
	"design-order-backend/internal/pricing"
)

// ErrLookupFailed is a transient failure; the caller may retry.
var ErrLookupFailed = errors.New("failed to load order details")

type SessionReader interface {
	SessionDetails(ctx context.Context, sessionID string) (*models.SessionDetailsResponse, error)
}

type OrderReader interface {
	GetOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
}

// StatusLookup resolves a checkout session id or an order id to a status
// snapshot. It never returns partial data: any failure is an error.
type StatusLookup struct {
	sessions SessionReader
	orders   OrderReader
}

func NewStatusLookup(sessions SessionReader, orders OrderReader) *StatusLookup {
	return &StatusLookup{sessions: sessions, orders: orders}
}

func (l *StatusLookup) Lookup(ctx context.Context, id string) (*models.SessionDetailsResponse, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrMissingIdentifier
	}

	if orderID, err := uuid.Parse(id); err == nil {
		return l.lookupOrder(ctx, orderID)
	}

	details, err := l.sessions.SessionDetails(ctx, id)
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrMissingIdentifier) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLookupFailed, err)
	}
	return details, nil
}

func (l *StatusLookup) lookupOrder(ctx context.Context, orderID uuid.UUID) (*models.SessionDetailsResponse, error) {
	if l.orders == nil {
		return nil, fmt.Errorf("%w: order store not configured", ErrLookupFailed)
	}
	order, err := l.orders.GetOrder(ctx, orderID)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLookupFailed, err)
	}
	return &models.SessionDetailsResponse{
		SessionID:     order.StripeSessionID.String,
		Email:         order.Email,
		ProjectType:   order.ProjectType,
		IsExpress:     order.IsExpress,
		TotalPrice:    int(order.TotalPrice / 100),
		DeliveryTime:  pricing.DeliveryHours(order.IsExpress),
		OrderID:       order.ID.String(),
		PaymentStatus: string(order.PaymentStatus),
	}, nil
}
