package supabase

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"design-order-backend/internal/models"
)

type DatabaseClient struct {
	db *sql.DB
}

func NewDatabaseClient(connectionString string) (*DatabaseClient, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DatabaseClient{db: db}, nil
}

// NewDatabaseClientFromDB wraps an existing handle.
func NewDatabaseClientFromDB(db *sql.DB) *DatabaseClient {
	return &DatabaseClient{db: db}
}

const orderColumns = `id, customer_email, project_type, content_text, dimensions, reference_links,
	uploaded_files, express_delivery, source_files, base_price, express_delivery_price,
	source_files_price, total_price, currency, stripe_checkout_session_id, stripe_payment_id,
	payment_status, order_status, delivery_deadline, paid_at, delivered_at, delivery_files,
	revisions_used, revisions_included, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*models.Order, error) {
	var (
		o                       models.Order
		uploaded, deliveryFiles []byte
	)
	err := row.Scan(
		&o.ID, &o.Email, &o.ProjectType, &o.ContentText, &o.Dimensions, &o.ReferenceLinks,
		&uploaded, &o.IsExpress, &o.IncludeSourceFiles, &o.BasePrice, &o.ExpressFee,
		&o.SourceFilesFee, &o.TotalPrice, &o.Currency, &o.StripeSessionID, &o.StripePaymentID,
		&o.PaymentStatus, &o.Status, &o.DeliveryDeadline, &o.PaidAt, &o.DeliveredAt, &deliveryFiles,
		&o.RevisionsUsed, &o.RevisionsIncluded, &o.CreatedAt, &o.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	o.UploadedFiles = uploaded
	o.DeliveryFiles = deliveryFiles
	return &o, nil
}

// CreateOrder inserts order and fills in its timestamps.
func (d *DatabaseClient) CreateOrder(ctx context.Context, order *models.Order) error {
	err := d.db.QueryRowContext(ctx, `
		INSERT INTO orders (id, customer_email, project_type, content_text, dimensions, reference_links,
			uploaded_files, express_delivery, source_files, base_price, express_delivery_price,
			source_files_price, total_price, currency, stripe_checkout_session_id, payment_status,
			order_status, delivery_files, revisions_used, revisions_included)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		RETURNING created_at, updated_at
	`, order.ID, order.Email, order.ProjectType, order.ContentText, order.Dimensions, order.ReferenceLinks,
		jsonOrEmpty(order.UploadedFiles), order.IsExpress, order.IncludeSourceFiles, order.BasePrice, order.ExpressFee,
		order.SourceFilesFee, order.TotalPrice, order.Currency, order.StripeSessionID, order.PaymentStatus,
		order.Status, jsonOrEmpty(order.DeliveryFiles), order.RevisionsUsed, order.RevisionsIncluded,
	).Scan(&order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

func (d *DatabaseClient) GetOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, err := scanOrder(d.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, orderID))
	if err != nil && !errors.Is(err, models.ErrOrderNotFound) {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return order, err
}

func (d *DatabaseClient) GetOrderBySessionID(ctx context.Context, sessionID string) (*models.Order, error) {
	order, err := scanOrder(d.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE stripe_checkout_session_id = $1`, sessionID))
	if err != nil && !errors.Is(err, models.ErrOrderNotFound) {
		return nil, fmt.Errorf("failed to get order by session: %w", err)
	}
	return order, err
}

// MarkOrderPaid records a completed payment for the order created with
// sessionID and starts work on it.
func (d *DatabaseClient) MarkOrderPaid(ctx context.Context, sessionID, paymentID string, paidAt, deadline time.Time) (*models.Order, error) {
	order, err := scanOrder(d.db.QueryRowContext(ctx, `
		UPDATE orders
		SET payment_status = $1, order_status = $2, stripe_payment_id = NULLIF($3, ''),
			paid_at = $4, delivery_deadline = $5, updated_at = NOW()
		WHERE stripe_checkout_session_id = $6
		RETURNING `+orderColumns,
		models.PaymentPaid, models.OrderInProgress, paymentID, paidAt, deadline, sessionID))
	if err != nil && !errors.Is(err, models.ErrOrderNotFound) {
		return nil, fmt.Errorf("failed to mark order paid: %w", err)
	}
	return order, err
}

func (d *DatabaseClient) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status models.OrderStatus) (*models.Order, error) {
	order, err := scanOrder(d.db.QueryRowContext(ctx, `
		UPDATE orders
		SET order_status = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING `+orderColumns, status, orderID))
	if err != nil && !errors.Is(err, models.ErrOrderNotFound) {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	return order, err
}

func (d *DatabaseClient) MarkOrderDelivered(ctx context.Context, orderID uuid.UUID, files []models.FileMetadata, deliveredAt time.Time) (*models.Order, error) {
	filesJSON, err := json.Marshal(files)
	if err != nil {
		return nil, fmt.Errorf("failed to encode delivery files: %w", err)
	}

	order, err := scanOrder(d.db.QueryRowContext(ctx, `
		UPDATE orders
		SET order_status = $1, delivered_at = $2, delivery_files = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING `+orderColumns, models.OrderDelivered, deliveredAt, filesJSON, orderID))
	if err != nil && !errors.Is(err, models.ErrOrderNotFound) {
		return nil, fmt.Errorf("failed to mark order delivered: %w", err)
	}
	return order, err
}

func (d *DatabaseClient) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

func (d *DatabaseClient) Close() error {
	return d.db.Close()
}

func jsonOrEmpty(raw json.RawMessage) []byte {
	if len(raw) == 0 {
		return []byte("[]")
	}
	return raw
}
