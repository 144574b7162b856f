// Package pricing holds the price list and the total calculation shared by the
// order wizard and the checkout API.
package pricing

// Prices are whole euros.
const (
	BasePrice      = 25
	ExpressFee     = 30
	SourceFilesFee = 20
	Currency       = "EUR"

	// RevisionsIncluded is the number of revision rounds in every order.
	RevisionsIncluded = 2
)

// Delivery times in hours.
const (
	StandardDeliveryHours = 48
	ExpressDeliveryHours  = 24
)

// Selection is the part of an order that affects its price.
type Selection struct {
	IsExpress          bool
	IncludeSourceFiles bool
}

// Breakdown itemises a computed price.
type Breakdown struct {
	Base        int
	Express     int
	SourceFiles int
	Total       int
}

// Compute returns the itemised price for sel.
func Compute(sel Selection) Breakdown {
	b := Breakdown{Base: BasePrice}
	if sel.IsExpress {
		b.Express = ExpressFee
	}
	if sel.IncludeSourceFiles {
		b.SourceFiles = SourceFilesFee
	}
	b.Total = b.Base + b.Express + b.SourceFiles
	return b
}

// Total returns the order total for sel.
func Total(sel Selection) int {
	return Compute(sel).Total
}

// DeliveryHours returns the promised turnaround for the chosen tier.
func DeliveryHours(isExpress bool) int {
	if isExpress {
		return ExpressDeliveryHours
	}
	return StandardDeliveryHours
}

// Cents converts whole euros to the minor unit used by the payment provider.
func Cents(euros int) int64 {
	return int64(euros) * 100
}
