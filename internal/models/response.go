package models

import "time"

type ErrorResponse struct {
	Error     string            `json:"error"`
	Message   string            `json:"message,omitempty"`
	Code      string            `json:"code,omitempty"`
	Retryable bool              `json:"retryable,omitempty"`
	Fields    map[string]string `json:"fields,omitempty"`
}

type CheckoutResponse struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
}

// SessionDetailsResponse is the status snapshot shown after returning from
// the payment page.
type SessionDetailsResponse struct {
	SessionID     string      `json:"sessionId,omitempty"`
	Email         string      `json:"email"`
	ProjectType   ProjectType `json:"projectType"`
	IsExpress     bool        `json:"isExpress"`
	TotalPrice    int         `json:"totalPrice"`
	DeliveryTime  int         `json:"deliveryTime"`
	OrderID       string      `json:"orderId,omitempty"`
	PaymentStatus string      `json:"paymentStatus"`

	// DraftID is the wizard draft the session was created from, if any.
	DraftID string `json:"-"`
}

type OrderResponse struct {
	ID                 string         `json:"order_id"`
	Email              string         `json:"email"`
	ProjectType        ProjectType    `json:"project_type"`
	ContentText        string         `json:"content_text"`
	Dimensions         string         `json:"dimensions,omitempty"`
	ReferenceLinks     []string       `json:"reference_links"`
	IsExpress          bool           `json:"is_express"`
	IncludeSourceFiles bool           `json:"include_source_files"`
	TotalPrice         int64          `json:"total_price"`
	Currency           string         `json:"currency"`
	PaymentStatus      PaymentStatus  `json:"payment_status"`
	Status             OrderStatus    `json:"status"`
	DeliveryDeadline   *time.Time     `json:"delivery_deadline,omitempty"`
	DeliveredAt        *time.Time     `json:"delivered_at,omitempty"`
	DeliveryFiles      []FileMetadata `json:"delivery_files,omitempty"`
	RevisionsUsed      int            `json:"revisions_used"`
	RevisionsIncluded  int            `json:"revisions_included"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
}

type OrderListResponse struct {
	Orders []OrderSummary `json:"orders"`
}

type OrderSummary struct {
	ID               string        `json:"order_id"`
	ProjectType      ProjectType   `json:"project_type"`
	PaymentStatus    PaymentStatus `json:"payment_status"`
	Status           OrderStatus   `json:"status"`
	TotalPrice       int64         `json:"total_price"`
	DeliveryDeadline *time.Time    `json:"delivery_deadline,omitempty"`
	CreatedAt        time.Time     `json:"created_at"`
}

type DraftFile struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Size int64  `json:"size"`
}

// DraftResponse is the wizard state returned after every wizard call.
type DraftResponse struct {
	CurrentStep  int               `json:"currentStep"`
	Direction    string            `json:"direction"`
	StepName     string            `json:"stepName"`
	FormData     OrderDraft        `json:"formData"`
	PendingLinks []string          `json:"pendingLinks,omitempty"`
	PendingFiles []DraftFile       `json:"pendingFiles,omitempty"`
	TotalPrice   int               `json:"totalPrice"`
	Errors       map[string]string `json:"errors,omitempty"`
}

type DeliveryResponse struct {
	OrderID string         `json:"order_id"`
	Status  OrderStatus    `json:"status"`
	Files   []FileMetadata `json:"files"`
}

type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}
