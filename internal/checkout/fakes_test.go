package checkout_test

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"design-order-backend/internal/models"
	"design-order-backend/internal/payments"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

type fakeProvider struct {
	mu        sync.Mutex
	created   []payments.SessionParams
	createErr error
	url       string
	sessions  map[string]*payments.Session
	getErr    error
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{url: "https://checkout.stripe.test/c/pay/cs_test_1", sessions: map[string]*payments.Session{}}
}

func (f *fakeProvider) CreateCheckoutSession(_ context.Context, p payments.SessionParams) (*payments.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, p)
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &payments.Session{ID: "cs_test_1", URL: f.url, Email: p.Email, Metadata: p.Metadata}, nil
}

func (f *fakeProvider) GetCheckoutSession(_ context.Context, id string) (*payments.Session, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	s, ok := f.sessions[id]
	if !ok {
		return nil, payments.ErrSessionNotFound
	}
	return s, nil
}

type fakeOrders struct {
	mu      sync.Mutex
	orders  map[uuid.UUID]*models.Order
	err     error
	created int
}

func newFakeOrders() *fakeOrders {
	return &fakeOrders{orders: map[uuid.UUID]*models.Order{}}
}

func (f *fakeOrders) CreateOrder(_ context.Context, o *models.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.created++
	f.orders[o.ID] = o
	return nil
}

func (f *fakeOrders) GetOrder(_ context.Context, id uuid.UUID) (*models.Order, error) {
	if f.err != nil {
		return nil, f.err
	}
	o, ok := f.orders[id]
	if !ok {
		return nil, models.ErrOrderNotFound
	}
	return o, nil
}

func (f *fakeOrders) GetOrderBySessionID(_ context.Context, sessionID string) (*models.Order, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, o := range f.orders {
		if o.StripeSessionID.String == sessionID {
			return o, nil
		}
	}
	return nil, models.ErrOrderNotFound
}

var errBoom = errors.New("boom")
