package entity

import "time"

// Kitting event types.
const (
	KittingInitial   = "initial"
	KittingAddon     = "addon"
	KittingBackorder = "backorder"
)

// KittingLog is the append-only audit row of one allocation event against one pulltag.
// Only LastExportedOn/ExportBatchID are written after insert.
type KittingLog struct {
	ID             string
	PulltagUID     string
	BatchID        string
	ItemCode       string
	Description    string
	CostCode       string
	JobNumber      string
	LotNumber      string
	Quantity       int64
	Note           string
	KittingType    string
	KittedBy       string
	KittedOn       time.Time
	Warehouse      string
	LastExportedOn *time.Time
	ExportBatchID  *string
}

// AddonPulltagUID is the synthetic reference used by add-on kitting rows.
func AddonPulltagUID(itemCode, jobNumber, lotNumber string) string {
	return "addon::" + itemCode + "::" + jobNumber + "::" + lotNumber
}
