package checkout

import (
	"database/sql"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"design-order-backend/internal/models"
	"design-order-backend/internal/pricing"
)

func newPendingOrder(req models.CheckoutRequest, price pricing.Breakdown, sessionID string) *models.Order {
	files := req.UploadedFiles
	if files == nil {
		files = []models.FileMetadata{}
	}
	filesJSON, _ := json.Marshal(files)

	links := req.ReferenceLinks
	if links == nil {
		links = []string{}
	}

	return &models.Order{
		ID:                 uuid.New(),
		Email:              req.Email,
		ProjectType:        req.ProjectType,
		ContentText:        req.ContentText,
		Dimensions:         sql.NullString{String: req.Dimensions, Valid: req.Dimensions != ""},
		ReferenceLinks:     pq.StringArray(links),
		UploadedFiles:      filesJSON,
		IsExpress:          req.IsExpress,
		IncludeSourceFiles: req.IncludeSourceFiles,
		BasePrice:          pricing.Cents(price.Base),
		ExpressFee:         pricing.Cents(price.Express),
		SourceFilesFee:     pricing.Cents(price.SourceFiles),
		TotalPrice:         pricing.Cents(price.Total),
		Currency:           pricing.Currency,
		StripeSessionID:    sql.NullString{String: sessionID, Valid: sessionID != ""},
		PaymentStatus:      models.PaymentPending,
		Status:             models.OrderPending,
		DeliveryFiles:      json.RawMessage("[]"),
		RevisionsIncluded:  pricing.RevisionsIncluded,
	}
}
