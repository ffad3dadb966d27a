package dto

import "time"

// ItemRequest creates or updates an items master row.
type ItemRequest struct {
	ItemCode    string `json:"item_code" validate:"required"`
	Description string `json:"description"`
	UOM         string `json:"uom"`
}

// ItemResponse items master row.
type ItemResponse struct {
	ItemCode    string `json:"item_code"`
	Description string `json:"description"`
	UOM         string `json:"uom"`
}

// RoofTypeRequest is one roof type / cost code pair.
type RoofTypeRequest struct {
	RoofType string `json:"roof_type" validate:"required"`
	CostCode string `json:"cost_code" validate:"required"`
}

// RoofTypeResponse roof type / cost code pair.
type RoofTypeResponse struct {
	RoofType string `json:"roof_type"`
	CostCode string `json:"cost_code"`
}

// CommunityRuleRequest creates or replaces a community rule.
type CommunityRuleRequest struct {
	JobNumber   string `json:"job_number" validate:"required"`
	RoofType    string `json:"roof_type" validate:"required"`
	CostCode    string `json:"cost_code" validate:"required"`
	ItemCode    string `json:"item_code" validate:"required"`
	UOM         string `json:"uom"`
	ItemCodeQty string `json:"item_code_qty" validate:"required"`
}

// CommunityRuleResponse community rule with its parsed rule kind.
type CommunityRuleResponse struct {
	ID          string    `json:"id"`
	JobNumber   string    `json:"job_number"`
	RoofType    string    `json:"roof_type"`
	CostCode    string    `json:"cost_code"`
	ItemCode    string    `json:"item_code"`
	UOM         string    `json:"uom"`
	ItemCodeQty string    `json:"item_code_qty"`
	RuleKind    string    `json:"rule_kind"`
	UpdatedAt   time.Time `json:"updated_at"`
}
