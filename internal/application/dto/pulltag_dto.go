package dto

import (
	"github.com/jhoicas/roofing-ops/internal/domain/entity"
)

// RequestBatchRequest (job, lot) pairs to request.
type RequestBatchRequest struct {
	Pairs []entity.JobLot `json:"pairs" validate:"required,min=1"`
}

// BudgetWarning is a non-fatal generation problem.
type BudgetWarning struct {
	Kind      string `json:"kind"`
	JobNumber string `json:"job_number"`
	LotNumber string `json:"lot_number"`
	Message   string `json:"message"`
}

// PulltagResponse pulltag output.
type PulltagResponse struct {
	UID             string  `json:"uid"`
	JobNumber       string  `json:"job_number"`
	LotNumber       string  `json:"lot_number"`
	RoofType        string  `json:"roof_type"`
	ItemCode        string  `json:"item_code"`
	CostCode        string  `json:"cost_code"`
	Description     string  `json:"description"`
	UOM             string  `json:"uom"`
	Quantity        string  `json:"quantity"`
	KittedQty       int64   `json:"kitted_qty"`
	BackorderQty    string  `json:"backorder_qty"`
	BackorderStatus string  `json:"backorder_status"`
	Status          string  `json:"status"`
	BatchID         *string `json:"batch_id,omitempty"`
	Warehouse       *string `json:"warehouse,omitempty"`
}

// UploadResponse result of a budget upload.
type UploadResponse struct {
	DryRun   bool              `json:"dry_run"`
	Lines    int               `json:"lines"`
	Inserted int               `json:"inserted"`
	Pulltags []PulltagResponse `json:"pulltags"`
	Warnings []BudgetWarning   `json:"warnings"`
}

// ToPulltagResponse maps a pulltag.
func ToPulltagResponse(t *entity.Pulltag) PulltagResponse {
	return PulltagResponse{
		UID:             t.UID,
		JobNumber:       t.JobNumber,
		LotNumber:       t.LotNumber,
		RoofType:        t.RoofType,
		ItemCode:        t.ItemCode,
		CostCode:        t.CostCode,
		Description:     t.Description,
		UOM:             t.UOM,
		Quantity:        t.Quantity.String(),
		KittedQty:       t.KittedQty,
		BackorderQty:    t.BackorderQty.String(),
		BackorderStatus: t.BackorderStatus,
		Status:          t.Status,
		BatchID:         t.BatchID,
		Warehouse:       t.Warehouse,
	}
}
