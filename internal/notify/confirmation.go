package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"design-order-backend/internal/models"
	"design-order-backend/internal/pricing"
)

// Confirmation is what the order confirmation email shows.
type Confirmation struct {
	Order    *models.Order
	Deadline time.Time
	AppURL   string
}

var confirmationTemplate = template.Must(template.New("confirmation").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>Order Confirmation</title>
</head>
<body style="margin:0;padding:0;font-family:Arial,sans-serif;background-color:#0a0a0a;color:#ffffff;">
  <table width="100%" cellpadding="0" cellspacing="0">
    <tr><td align="center" style="padding:40px 20px;">
      <table width="600" cellpadding="0" cellspacing="0" style="background-color:#1a1a1a;border-radius:12px;">
        <tr><td style="padding:40px;">
          <h2 style="margin:0 0 20px;">Order Confirmed!</h2>
          <p style="color:#a3a3a3;">Thank you for your order! Your payment has been received and we're excited to start working on your project.</p>
          <p style="color:#737373;margin:20px 0 0;">Order ID</p>
          <p style="color:#0ea5e9;font-weight:600;margin:5px 0 0;">#{{.ShortID}}</p>
          <p style="color:#737373;margin:20px 0 0;">Project Type</p>
          <p style="margin:5px 0 0;">{{.ProjectLabel}}</p>
          <p style="color:#737373;margin:20px 0 0;">Total Paid</p>
          <p style="color:#10b981;font-weight:600;margin:5px 0 0;">{{.Total}}</p>
          <p style="color:#737373;margin:20px 0 0;">Expected Delivery</p>
          <p style="margin:5px 0 0;">{{.Deadline}}</p>
          {{- if .Express}}
          <p style="color:#0ea5e9;margin:5px 0 0;">Express Delivery</p>
          {{- end}}
          <h3 style="margin:30px 0 15px;">What's Next?</h3>
          <ul style="color:#a3a3a3;">
            <li>Our team will start working on your project immediately</li>
            <li>You'll receive your design within {{.DeliveryHours}} hours</li>
            <li>You have {{.Revisions}} revision rounds included</li>
            <li>Track your order status using Order ID #{{.ShortID}}</li>
          </ul>
          <h3 style="margin:30px 0 15px;">Your Project Details</h3>
          <p style="color:#a3a3a3;white-space:pre-wrap;">{{.Content}}</p>
          {{- if .Dimensions}}
          <p style="color:#737373;">Dimensions: {{.Dimensions}}</p>
          {{- end}}
          {{- if .TrackURL}}
          <p style="text-align:center;margin:40px 0 20px;"><a href="{{.TrackURL}}" style="color:#ffffff;background:#0ea5e9;padding:14px 32px;border-radius:8px;text-decoration:none;">Track Your Order</a></p>
          {{- end}}
        </td></tr>
      </table>
    </td></tr>
  </table>
</body>
</html>`))

type confirmationView struct {
	ShortID       string
	ProjectLabel  string
	Total         string
	Deadline      string
	Express       bool
	DeliveryHours int
	Revisions     int
	Content       string
	Dimensions    string
	TrackURL      string
}

// Subject returns "Order Confirmation #XXXXXXXX".
func (c Confirmation) Subject() string {
	return "Order Confirmation #" + c.Order.ShortID()
}

func (c Confirmation) Render() (string, error) {
	o := c.Order
	view := confirmationView{
		ShortID:       o.ShortID(),
		ProjectLabel:  o.ProjectType.Label(),
		Total:         fmt.Sprintf("€%d.%02d", o.TotalPrice/100, o.TotalPrice%100),
		Deadline:      c.Deadline.UTC().Format("Monday, January 2, 2006 at 15:04 MST"),
		Express:       o.IsExpress,
		DeliveryHours: pricing.DeliveryHours(o.IsExpress),
		Revisions:     o.RevisionsIncluded,
		Content:       o.ContentText,
		Dimensions:    o.Dimensions.String,
	}
	if c.AppURL != "" {
		view.TrackURL = c.AppURL + "/dashboard?order=" + o.ID.String()
	}

	var buf bytes.Buffer
	if err := confirmationTemplate.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("failed to render confirmation: %w", err)
	}
	return buf.String(), nil
}
