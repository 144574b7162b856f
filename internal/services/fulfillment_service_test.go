package services_test

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"design-order-backend/internal/models"
	"design-order-backend/internal/notify"
	"design-order-backend/internal/payments"
	"design-order-backend/internal/services"
)

type memoryOrders struct {
	mu     sync.Mutex
	orders map[uuid.UUID]*models.Order
}

func newMemoryOrders(orders ...*models.Order) *memoryOrders {
	m := &memoryOrders{orders: map[uuid.UUID]*models.Order{}}
	for _, o := range orders {
		m.orders[o.ID] = o
	}
	return m
}

func (m *memoryOrders) GetOrder(_ context.Context, id uuid.UUID) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, models.ErrOrderNotFound
	}
	c := *o
	return &c, nil
}

func (m *memoryOrders) GetOrderBySessionID(_ context.Context, sessionID string) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.orders {
		if o.StripeSessionID.String == sessionID {
			c := *o
			return &c, nil
		}
	}
	return nil, models.ErrOrderNotFound
}

func (m *memoryOrders) MarkOrderPaid(_ context.Context, sessionID, paymentID string, paidAt, deadline time.Time) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.orders {
		if o.StripeSessionID.String == sessionID {
			o.PaymentStatus = models.PaymentPaid
			o.Status = models.OrderInProgress
			o.StripePaymentID = sql.NullString{String: paymentID, Valid: paymentID != ""}
			o.PaidAt = sql.NullTime{Time: paidAt, Valid: true}
			o.DeliveryDeadline = sql.NullTime{Time: deadline, Valid: true}
			c := *o
			return &c, nil
		}
	}
	return nil, models.ErrOrderNotFound
}

func (m *memoryOrders) UpdateOrderStatus(_ context.Context, id uuid.UUID, status models.OrderStatus) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, models.ErrOrderNotFound
	}
	o.Status = status
	c := *o
	return &c, nil
}

func (m *memoryOrders) MarkOrderDelivered(_ context.Context, id uuid.UUID, files []models.FileMetadata, at time.Time) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, models.ErrOrderNotFound
	}
	o.Status = models.OrderDelivered
	o.DeliveredAt = sql.NullTime{Time: at, Valid: true}
	c := *o
	return &c, nil
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []notify.Email
	err  error
}

func (r *recordingMailer) Send(_ context.Context, email notify.Email) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, email)
	return "email_1", r.err
}

// blockingMailer holds every send until release is closed.
type blockingMailer struct {
	release chan struct{}
	ctxErr  chan error
}

func (b *blockingMailer) Send(ctx context.Context, _ notify.Email) (string, error) {
	<-b.release
	b.ctxErr <- ctx.Err()
	return "email_1", nil
}

type memoryFiles struct {
	uploaded []string
	err      error
}

func (m *memoryFiles) UploadDeliverable(_ context.Context, orderID uuid.UUID, blob models.FileBlob) (models.FileMetadata, error) {
	if m.err != nil {
		return models.FileMetadata{}, m.err
	}
	path := "orders/" + orderID.String() + "/" + blob.Name
	m.uploaded = append(m.uploaded, path)
	return models.FileMetadata{Name: blob.Name, URL: path, Size: blob.Size, Type: blob.Type}, nil
}

func (m *memoryFiles) SignedURL(_ context.Context, path string, expiresIn time.Duration) (string, error) {
	return "https://signed.test/" + path + "?expires=" + expiresIn.String(), nil
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func pendingOrder(express bool) *models.Order {
	return &models.Order{
		ID:                uuid.New(),
		Email:             "a@b.com",
		ProjectType:       models.ProjectTypeLogo,
		ContentText:       "fifteen chars..",
		IsExpress:         express,
		TotalPrice:        5500,
		StripeSessionID:   sql.NullString{String: "cs_" + uuid.NewString(), Valid: true},
		PaymentStatus:     models.PaymentPending,
		Status:            models.OrderPending,
		RevisionsIncluded: 2,
	}
}

var fixedNow = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

func newService(orders services.OrderStore, mailer services.Mailer, files services.DeliverableStore) *services.FulfillmentService {
	return services.NewFulfillmentService(orders, mailer, files, "Studio <orders@studio.test>", "https://studio.test", quietLogger()).
		WithClock(func() time.Time { return fixedNow })
}

func TestHandlePaymentCompleted_SetsDeadline(t *testing.T) {
	tests := []struct {
		name    string
		express bool
		hours   int
	}{
		{name: "express", express: true, hours: 24},
		{name: "standard", express: false, hours: 48},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			order := pendingOrder(test.express)
			mailer := &recordingMailer{}
			svc := newService(newMemoryOrders(order), mailer, nil)

			paid, err := svc.HandlePaymentCompleted(context.Background(), &payments.Session{
				ID:              order.StripeSessionID.String,
				PaymentIntentID: "pi_1",
			})

			require.NoError(t, err)
			svc.Wait()
			assert.Equal(t, models.PaymentPaid, paid.PaymentStatus)
			assert.Equal(t, models.OrderInProgress, paid.Status)
			assert.Equal(t, "pi_1", paid.StripePaymentID.String)
			assert.Equal(t, fixedNow, paid.PaidAt.Time)
			assert.Equal(t, fixedNow.Add(time.Duration(test.hours)*time.Hour), paid.DeliveryDeadline.Time)

			require.Len(t, mailer.sent, 1)
			assert.Equal(t, []string{"a@b.com"}, mailer.sent[0].To)
			assert.Equal(t, "Order Confirmation #"+paid.ShortID(), mailer.sent[0].Subject)
			assert.Equal(t, "Studio <orders@studio.test>", mailer.sent[0].From)
		})
	}
}

func TestHandlePaymentCompleted_EmailFailureIsNotFatal(t *testing.T) {
	order := pendingOrder(false)
	mailer := &recordingMailer{err: errors.New("resend down")}
	svc := newService(newMemoryOrders(order), mailer, nil)

	paid, err := svc.HandlePaymentCompleted(context.Background(), &payments.Session{ID: order.StripeSessionID.String})

	require.NoError(t, err)
	svc.Wait()
	assert.Equal(t, models.PaymentPaid, paid.PaymentStatus)
	assert.Len(t, mailer.sent, 1)
}

func TestHandlePaymentCompleted_SendsConfirmationInBackground(t *testing.T) {
	order := pendingOrder(false)
	mailer := &blockingMailer{release: make(chan struct{}), ctxErr: make(chan error, 1)}
	svc := newService(newMemoryOrders(order), mailer, nil)

	ctx, cancel := context.WithCancel(context.Background())
	paid, err := svc.HandlePaymentCompleted(ctx, &payments.Session{ID: order.StripeSessionID.String})
	cancel()

	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, paid.PaymentStatus)

	close(mailer.release)
	svc.Wait()
	assert.NoError(t, <-mailer.ctxErr)
}

func TestHandlePaymentCompleted_WithoutMailer(t *testing.T) {
	order := pendingOrder(false)
	svc := newService(newMemoryOrders(order), nil, nil)

	_, err := svc.HandlePaymentCompleted(context.Background(), &payments.Session{ID: order.StripeSessionID.String})

	require.NoError(t, err)
}

func TestHandlePaymentCompleted_Idempotent(t *testing.T) {
	order := pendingOrder(true)
	mailer := &recordingMailer{}
	svc := newService(newMemoryOrders(order), mailer, nil)
	sess := &payments.Session{ID: order.StripeSessionID.String}

	_, err := svc.HandlePaymentCompleted(context.Background(), sess)
	require.NoError(t, err)
	_, err = svc.HandlePaymentCompleted(context.Background(), sess)
	require.NoError(t, err)
	svc.Wait()

	assert.Len(t, mailer.sent, 1)
}

func TestHandlePaymentCompleted_Errors(t *testing.T) {
	svc := newService(newMemoryOrders(), nil, nil)

	_, err := svc.HandlePaymentCompleted(context.Background(), &payments.Session{})
	assert.ErrorIs(t, err, services.ErrMissingSessionID)

	_, err = svc.HandlePaymentCompleted(context.Background(), &payments.Session{ID: "cs_unknown"})
	assert.ErrorIs(t, err, models.ErrOrderNotFound)
}

func TestUpdateStatus(t *testing.T) {
	order := pendingOrder(false)
	svc := newService(newMemoryOrders(order), nil, nil)

	updated, err := svc.UpdateStatus(context.Background(), order.ID, models.OrderReview)
	require.NoError(t, err)
	assert.Equal(t, models.OrderReview, updated.Status)

	_, err = svc.UpdateStatus(context.Background(), order.ID, "shipped")
	assert.ErrorIs(t, err, services.ErrInvalidStatus)

	_, err = svc.UpdateStatus(context.Background(), uuid.New(), models.OrderReview)
	assert.ErrorIs(t, err, models.ErrOrderNotFound)
}

func TestDeliver(t *testing.T) {
	order := pendingOrder(false)
	order.PaymentStatus = models.PaymentPaid
	files := &memoryFiles{}
	svc := newService(newMemoryOrders(order), nil, files)

	resp, err := svc.Deliver(context.Background(), order.ID, []models.FileBlob{
		{Name: "logo.svg", Type: "image/svg+xml", Size: 10, Data: []byte("<svg></svg>")},
		{Name: "source.zip", Type: "application/zip", Size: 20, Data: []byte("zip")},
	})

	require.NoError(t, err)
	assert.Equal(t, order.ID.String(), resp.OrderID)
	assert.Equal(t, models.OrderDelivered, resp.Status)
	require.Len(t, resp.Files, 2)
	assert.Equal(t, "https://signed.test/orders/"+order.ID.String()+"/logo.svg?expires=1h0m0s", resp.Files[0].URL)
	assert.Len(t, files.uploaded, 2)
}

func TestDeliver_Rejections(t *testing.T) {
	unpaid := pendingOrder(false)
	files := &memoryFiles{}
	svc := newService(newMemoryOrders(unpaid), nil, files)
	blob := []models.FileBlob{{Name: "a.png", Type: "image/png", Size: 1}}

	_, err := svc.Deliver(context.Background(), unpaid.ID, nil)
	assert.ErrorIs(t, err, services.ErrNoDeliveryFiles)

	_, err = svc.Deliver(context.Background(), unpaid.ID, blob)
	assert.ErrorIs(t, err, services.ErrOrderNotPaid)

	_, err = svc.Deliver(context.Background(), uuid.New(), blob)
	assert.ErrorIs(t, err, models.ErrOrderNotFound)

	assert.Empty(t, files.uploaded)
}
