package dto

import (
	"time"

	"github.com/jhoicas/roofing-ops/internal/domain/entity"
)

// KitBatchRequest per-item kitted totals for a batch.
type KitBatchRequest struct {
	Warehouse string `json:"warehouse" validate:"required"`
	Note      string `json:"note"`
	Items     []struct {
		ItemCode  string `json:"item_code"`
		KittedQty int64  `json:"kitted_qty"`
	} `json:"items" validate:"required,min=1"`
}

// ResolveBackorderRequest fulfillment quantities for a batch's open backorders.
type ResolveBackorderRequest struct {
	Warehouse string `json:"warehouse" validate:"required"`
	Lines     []struct {
		ItemCode string `json:"item_code"`
		Qty      int64  `json:"qty"`
		Note     string `json:"note"`
	} `json:"lines" validate:"required,min=1"`
}

// AddonRequest add-on kitting lines.
type AddonRequest struct {
	Warehouse string `json:"warehouse" validate:"required"`
	Note      string `json:"note"`
	Lines     []struct {
		ItemCode  string `json:"item_code"`
		CostCode  string `json:"cost_code"`
		JobNumber string `json:"job_number"`
		LotNumber string `json:"lot_number"`
		Quantity  int64  `json:"quantity"`
	} `json:"lines" validate:"required,min=1"`
}

// BatchBackorderResponse batch shortfall output.
type BatchBackorderResponse struct {
	ID              string     `json:"id"`
	BatchID         string     `json:"batch_id"`
	ItemCode        string     `json:"item_code"`
	ShortedQty      string     `json:"shorted_qty"`
	FulfilledQty    string     `json:"fulfilled_qty"`
	Remaining       string     `json:"remaining"`
	Warehouse       string     `json:"warehouse"`
	Note            string     `json:"note"`
	ResolvedBy      *string    `json:"resolved_by,omitempty"`
	FulfillmentTime *time.Time `json:"fulfillment_time,omitempty"`
}

// ToBatchBackorderResponses maps batch backorders.
func ToBatchBackorderResponses(bos []*entity.BatchBackorder) []BatchBackorderResponse {
	out := make([]BatchBackorderResponse, 0, len(bos))
	for _, b := range bos {
		out = append(out, BatchBackorderResponse{
			ID:              b.ID,
			BatchID:         b.BatchID,
			ItemCode:        b.ItemCode,
			ShortedQty:      b.ShortedQty.String(),
			FulfilledQty:    b.FulfilledQty.String(),
			Remaining:       b.Remaining().String(),
			Warehouse:       b.Warehouse,
			Note:            b.Note,
			ResolvedBy:      b.ResolvedBy,
			FulfillmentTime: b.FulfillmentTime,
		})
	}
	return out
}

// KittingLogResponse kitting log output.
type KittingLogResponse struct {
	ID            string    `json:"id"`
	PulltagUID    string    `json:"pulltag_uid"`
	BatchID       string    `json:"batch_id"`
	ItemCode      string    `json:"item_code"`
	CostCode      string    `json:"cost_code"`
	JobNumber     string    `json:"job_number"`
	LotNumber     string    `json:"lot_number"`
	Quantity      int64     `json:"quantity"`
	Note          string    `json:"note"`
	KittingType   string    `json:"kitting_type"`
	KittedBy      string    `json:"kitted_by"`
	KittedOn      time.Time `json:"kitted_on"`
	Warehouse     string    `json:"warehouse"`
	ExportBatchID *string   `json:"export_batch_id,omitempty"`
}

// ToKittingLogResponses maps kitting logs.
func ToKittingLogResponses(logs []*entity.KittingLog) []KittingLogResponse {
	out := make([]KittingLogResponse, 0, len(logs))
	for _, l := range logs {
		out = append(out, KittingLogResponse{
			ID: l.ID, PulltagUID: l.PulltagUID, BatchID: l.BatchID, ItemCode: l.ItemCode,
			CostCode: l.CostCode, JobNumber: l.JobNumber, LotNumber: l.LotNumber, Quantity: l.Quantity,
			Note: l.Note, KittingType: l.KittingType, KittedBy: l.KittedBy, KittedOn: l.KittedOn,
			Warehouse: l.Warehouse, ExportBatchID: l.ExportBatchID,
		})
	}
	return out
}
