package entity

import "time"

// Item is a row of the items master.
type Item struct {
	ItemCode    string
	Description string
	UOM         string
}

// RoofTypeCode maps a roof type to one of the cost codes that identify it.
type RoofTypeCode struct {
	RoofType string
	CostCode string
}

// CommunityRule says which item a budget cost code generates for a community and roof type,
// and how much of it.
type CommunityRule struct {
	ID          string
	JobNumber   string
	RoofType    string
	CostCode    string
	ItemCode    string
	UOM         string
	ItemCodeQty string // raw rule text as stored, e.g. "Units Budget * 0.5"
	UpdatedAt   time.Time
}

// BudgetLine is one line item extracted from a budget PDF.
type BudgetLine struct {
	Community   string
	JobNumber   string
	LotNumber   string
	CostCode    string
	Description string
	UnitsBudget float64
	UOM         string
}
