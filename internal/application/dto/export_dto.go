package dto

import "time"

// ExportFilter kitting log selection; at least one field is required.
// Start is inclusive and End exclusive.
type ExportFilter struct {
	BatchIDs     []string   `json:"batch_ids"`
	Warehouses   []string   `json:"warehouses"`
	KittingTypes []string   `json:"kitting_types"`
	Start        *time.Time `json:"start"`
	End          *time.Time `json:"end"`
}

// ExportRequest Sage export.
type ExportRequest struct {
	Filter        ExportFilter `json:"filter"`
	Batch         string       `json:"batch" validate:"required"`
	KitDate       *time.Time   `json:"kit_date"`
	AcctDate      *time.Time   `json:"acct_date"`
	ExportBatchID string       `json:"export_batch_id"`
	Format        string       `json:"format" validate:"omitempty,oneof=txt xlsx"`
}

// MarkExportedRequest marks without producing a file.
type MarkExportedRequest struct {
	Filter        ExportFilter `json:"filter"`
	ExportBatchID string       `json:"export_batch_id"`
}
