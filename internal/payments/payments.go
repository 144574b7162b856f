// Package payments wraps the Stripe Checkout API behind the small surface the
// order service needs.
package payments

import "errors"

var (
	ErrSessionNotFound  = errors.New("checkout session not found")
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrWebhookSecret    = errors.New("webhook secret not configured")
)

// LineItem is one priced row on the checkout page. Amount is in cents.
type LineItem struct {
	Name        string
	Description string
	AmountCents int64
}

type SessionParams struct {
	Email      string
	Currency   string
	LineItems  []LineItem
	SuccessURL string
	CancelURL  string
	Metadata   map[string]string
}

// Session is the subset of a checkout session the service reads back.
type Session struct {
	ID              string
	URL             string
	Email           string
	PaymentStatus   string
	PaymentIntentID string
	Metadata        map[string]string
}

// Event is a verified webhook event.
type Event struct {
	ID      string
	Type    string
	Session *Session
}

const EventCheckoutSessionCompleted = "checkout.session.completed"
