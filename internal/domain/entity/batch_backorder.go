package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// BatchBackorder tracks the shortfall of one item code inside a batch.
// FulfilledQty only grows and never passes ShortedQty; the row is open while it is below.
type BatchBackorder struct {
	ID              string
	BatchID         string
	ItemCode        string
	ShortedQty      decimal.Decimal
	FulfilledQty    decimal.Decimal
	Warehouse       string
	Note            string
	ResolvedBy      *string
	FulfillmentTime *time.Time
	CreatedAt       time.Time
}

// Remaining is what is still owed.
func (b *BatchBackorder) Remaining() decimal.Decimal {
	return b.ShortedQty.Sub(b.FulfilledQty)
}

// IsOpen reports whether part of the shortfall is still owed.
func (b *BatchBackorder) IsOpen() bool {
	return b.FulfilledQty.LessThan(b.ShortedQty)
}
