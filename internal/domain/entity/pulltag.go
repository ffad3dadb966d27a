package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Pulltag lifecycle states.
const (
	PulltagPending   = "pending"
	PulltagRequested = "requested"
	PulltagKitted    = "kitted"
	PulltagExported  = "exported"
)

// Backorder resolution states of a pulltag.
const (
	BackorderNone              = "none"
	BackorderPending           = "pending"
	BackorderPartiallyResolved = "partially resolved"
	BackorderResolved          = "resolved"
)

// Pulltag is one material request line for a job/lot/item.
// Once kitted, KittedQty + BackorderQty == Quantity.
type Pulltag struct {
	UID             string
	JobNumber       string
	LotNumber       string
	RoofType        string
	ItemCode        string
	CostCode        string
	Description     string
	UOM             string
	Quantity        decimal.Decimal // whole units, or two decimals for fractional items
	KittedQty       int64
	BackorderQty    decimal.Decimal
	BackorderStatus string
	Status          string
	BatchID         *string
	Warehouse       *string
	RequestedBy     *string
	RequestedOn     *time.Time
	KittedOn        *time.Time
	ResolvedOn      *time.Time
	ExportedOn      *time.Time
	UploadedOn      time.Time
	UpdatedBy       string
}

// JobLot identifies a lot inside a job.
type JobLot struct {
	JobNumber string `json:"job_number"`
	LotNumber string `json:"lot_number"`
}

func (k JobLot) String() string { return k.JobNumber + "/" + k.LotNumber }
