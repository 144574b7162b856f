package handlers_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"design-order-backend/internal/handlers"
	"design-order-backend/internal/models"
)

type fakeSearcher struct {
	byEmail map[string][]models.OrderSummary
	err     error
}

func (f *fakeSearcher) ListOrdersByEmail(_ context.Context, email string) ([]models.OrderSummary, error) {
	return f.byEmail[email], f.err
}

type fakeSigner struct{}

func (fakeSigner) SignedURL(_ context.Context, path string, expiresIn time.Duration) (string, error) {
	return "https://files.test/" + path + "?expires=" + expiresIn.String(), nil
}

func ordersRouter(h *handlers.OrdersHandler) *gin.Engine {
	router := gin.New()
	router.GET("/api/v1/orders", h.ListOrders)
	router.GET("/api/v1/orders/:order_id", h.GetOrder)
	return router
}

func deliveredOrder(t *testing.T) *models.Order {
	t.Helper()
	files, err := json.Marshal([]models.FileMetadata{{Name: "logo.zip", URL: "orders/x/logo.zip", Size: 10, Type: "application/zip"}})
	require.NoError(t, err)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return &models.Order{
		ID:                uuid.New(),
		Email:             "a@b.com",
		ProjectType:       models.ProjectTypeLogo,
		ContentText:       "A minimal fox logo",
		ReferenceLinks:    pq.StringArray{"https://example.com"},
		IsExpress:         true,
		TotalPrice:        5500,
		Currency:          "eur",
		PaymentStatus:     models.PaymentPaid,
		Status:            models.OrderDelivered,
		DeliveryDeadline:  sql.NullTime{Time: now.Add(24 * time.Hour), Valid: true},
		DeliveredAt:       sql.NullTime{Time: now.Add(20 * time.Hour), Valid: true},
		DeliveryFiles:     files,
		RevisionsIncluded: 2,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

func TestOrders_GetOrder(t *testing.T) {
	order := deliveredOrder(t)
	reader := &fakeOrderReader{orders: map[uuid.UUID]*models.Order{order.ID: order}}
	c := &client{t: t, router: ordersRouter(handlers.NewOrdersHandler(reader, nil, fakeSigner{}, quietLogger()))}

	w := c.json(http.MethodGet, "/api/v1/orders/"+order.ID.String(), nil)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[models.OrderResponse](t, w)
	assert.Equal(t, order.ID.String(), resp.ID)
	assert.Equal(t, int64(5500), resp.TotalPrice)
	assert.Equal(t, models.OrderDelivered, resp.Status)
	assert.Equal(t, []string{"https://example.com"}, resp.ReferenceLinks)
	require.NotNil(t, resp.DeliveryDeadline)
	require.Len(t, resp.DeliveryFiles, 1)
	assert.Equal(t, "https://files.test/orders/x/logo.zip?expires=1h0m0s", resp.DeliveryFiles[0].URL)
}

func TestOrders_GetOrderWithoutSigner(t *testing.T) {
	order := deliveredOrder(t)
	reader := &fakeOrderReader{orders: map[uuid.UUID]*models.Order{order.ID: order}}
	c := &client{t: t, router: ordersRouter(handlers.NewOrdersHandler(reader, nil, nil, quietLogger()))}

	w := c.json(http.MethodGet, "/api/v1/orders/"+order.ID.String(), nil)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[models.OrderResponse](t, w)
	require.Len(t, resp.DeliveryFiles, 1)
	assert.Empty(t, resp.DeliveryFiles[0].URL)
}

func TestOrders_GetOrderErrors(t *testing.T) {
	tests := []struct {
		name   string
		reader handlers.OrderReader
		id     string
		status int
	}{
		{"no_database", nil, uuid.NewString(), http.StatusServiceUnavailable},
		{"bad_id", &fakeOrderReader{}, "not-a-uuid", http.StatusBadRequest},
		{"not_found", &fakeOrderReader{}, uuid.NewString(), http.StatusNotFound},
		{"db_error", &fakeOrderReader{err: errors.New("conn reset")}, uuid.NewString(), http.StatusInternalServerError},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			c := &client{t: t, router: ordersRouter(handlers.NewOrdersHandler(test.reader, nil, nil, quietLogger()))}

			w := c.json(http.MethodGet, "/api/v1/orders/"+test.id, nil)

			assert.Equal(t, test.status, w.Code, w.Body.String())
			assert.NotContains(t, w.Body.String(), "conn reset")
		})
	}
}

func TestOrders_ListOrders(t *testing.T) {
	searcher := &fakeSearcher{byEmail: map[string][]models.OrderSummary{
		"a@b.com": {{ID: "o2", Status: models.OrderInProgress}, {ID: "o1", Status: models.OrderDelivered}},
	}}
	c := &client{t: t, router: ordersRouter(handlers.NewOrdersHandler(nil, searcher, nil, quietLogger()))}

	w := c.json(http.MethodGet, "/api/v1/orders?email=a@b.com", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[models.OrderListResponse](t, w)
	require.Len(t, list.Orders, 2)
	assert.Equal(t, "o2", list.Orders[0].ID)

	w = c.json(http.MethodGet, "/api/v1/orders?email=nobody@b.com", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"orders":[]}`, w.Body.String())

	w = c.json(http.MethodGet, "/api/v1/orders", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOrders_ListOrdersFailure(t *testing.T) {
	searcher := &fakeSearcher{err: errors.New("postgrest: 500")}
	c := &client{t: t, router: ordersRouter(handlers.NewOrdersHandler(nil, searcher, nil, quietLogger()))}

	w := c.json(http.MethodGet, "/api/v1/orders?email=a@b.com", nil)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.True(t, decode[models.ErrorResponse](t, w).Retryable)
}
