package supabase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/supabase-community/postgrest-go"
	"github.com/supabase-community/supabase-go"

	"design-order-backend/internal/models"
)

// Client reads orders through the Supabase REST API. Row level security
// applies, so it only sees what the publishable key is allowed to see.
type Client struct {
	Supabase *supabase.Client
}

func NewClient(supabaseURL, publishableKey string) (*Client, error) {
	client, err := supabase.NewClient(supabaseURL, publishableKey, nil)
	if err != nil {
		return nil, err
	}
	return &Client{Supabase: client}, nil
}

type orderRow struct {
	ID               uuid.UUID            `json:"id"`
	ProjectType      models.ProjectType   `json:"project_type"`
	PaymentStatus    models.PaymentStatus `json:"payment_status"`
	OrderStatus      models.OrderStatus   `json:"order_status"`
	TotalPrice       int64                `json:"total_price"`
	DeliveryDeadline *time.Time           `json:"delivery_deadline"`
	CreatedAt        time.Time            `json:"created_at"`
}

// ListOrdersByEmail returns the customer's orders, newest first.
func (c *Client) ListOrdersByEmail(ctx context.Context, email string) ([]models.OrderSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var rows []orderRow
	_, err := c.Supabase.From("orders").
		Select("id,project_type,payment_status,order_status,total_price,delivery_deadline,created_at", "", false).
		Eq("customer_email", email).
		Order("created_at", &postgrest.OrderOpts{Ascending: false}).
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	orders := make([]models.OrderSummary, len(rows))
	for i, r := range rows {
		orders[i] = models.OrderSummary{
			ID:               r.ID.String(),
			ProjectType:      r.ProjectType,
			PaymentStatus:    r.PaymentStatus,
			Status:           r.OrderStatus,
			TotalPrice:       r.TotalPrice,
			DeliveryDeadline: r.DeliveryDeadline,
			CreatedAt:        r.CreatedAt,
		}
	}
	return orders, nil
}
