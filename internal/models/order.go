package models

import (
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

var ErrOrderNotFound = errors.New("order not found")

type ProjectType string

const (
	ProjectTypeLogo   ProjectType = "logo"
	ProjectTypeBanner ProjectType = "banner"
	ProjectTypeSocial ProjectType = "social"
	ProjectTypePrint  ProjectType = "print"
	ProjectTypeOther  ProjectType = "other"
)

// ProjectTypes lists the selectable project types in display order.
var ProjectTypes = []ProjectType{
	ProjectTypeLogo,
	ProjectTypeBanner,
	ProjectTypeSocial,
	ProjectTypePrint,
	ProjectTypeOther,
}

func (p ProjectType) Valid() bool {
	for _, t := range ProjectTypes {
		if p == t {
			return true
		}
	}
	return false
}

// Label is the human readable name used in line items and emails.
func (p ProjectType) Label() string {
	switch p {
	case ProjectTypeLogo:
		return "Logo Design"
	case ProjectTypeBanner:
		return "Banner Design"
	case ProjectTypeSocial:
		return "Social Media Design"
	case ProjectTypePrint:
		return "Print Design"
	default:
		return "Custom Design"
	}
}

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderInProgress OrderStatus = "in_progress"
	OrderReview     OrderStatus = "review"
	OrderCompleted  OrderStatus = "completed"
	OrderDelivered  OrderStatus = "delivered"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderInProgress, OrderReview, OrderCompleted, OrderDelivered:
		return true
	}
	return false
}

// FileMetadata describes a file stored in a storage bucket.
type FileMetadata struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	Size int64  `json:"size"`
	Type string `json:"type"`
}

// Order is the persisted order row. Prices are in cents.
type Order struct {
	ID                 uuid.UUID
	Email              string
	ProjectType        ProjectType
	ContentText        string
	Dimensions         sql.NullString
	ReferenceLinks     pq.StringArray
	UploadedFiles      json.RawMessage
	IsExpress          bool
	IncludeSourceFiles bool
	BasePrice          int64
	ExpressFee         int64
	SourceFilesFee     int64
	TotalPrice         int64
	Currency           string
	StripeSessionID    sql.NullString
	StripePaymentID    sql.NullString
	PaymentStatus      PaymentStatus
	Status             OrderStatus
	DeliveryDeadline   sql.NullTime
	PaidAt             sql.NullTime
	DeliveredAt        sql.NullTime
	DeliveryFiles      json.RawMessage
	RevisionsUsed      int
	RevisionsIncluded  int
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// ShortID is the upper-cased id prefix shown to customers.
func (o *Order) ShortID() string {
	return strings.ToUpper(o.ID.String()[:8])
}
