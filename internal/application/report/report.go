// Package report builds the printable summaries handed to warehouse and field staff.
package report

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/roofing-ops/internal/domain"
	"github.com/jhoicas/roofing-ops/internal/domain/entity"
	"github.com/jhoicas/roofing-ops/internal/domain/repository"
)

// Column is a table column; widths of a document add up to 12 grid units.
type Column struct {
	Header string
	Width  int
}

// Document is a titled table ready to render.
type Document struct {
	Title    string
	Subtitle string
	Columns  []Column
	Rows     [][]string
	Footer   string
	Code     string // optional scannable reference printed next to the title
}

// Renderer turns a document into a printable file.
type Renderer interface {
	Render(ctx context.Context, doc Document) ([]byte, error)
}

// Line is one kitted quantity in a summary.
type Line struct {
	JobNumber string
	LotNumber string
	CostCode  string
	ItemCode  string
	Quantity  int64
	KittedBy  string
	KittedOn  time.Time
}

const timeLayout = "01/02/06 15:04"

// KittingDocument lays out kitting lines ordered by lot, then item.
func KittingDocument(title, subtitle string, lines []Line) Document {
	sorted := append([]Line(nil), lines...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].LotNumber != sorted[j].LotNumber {
			return sorted[i].LotNumber < sorted[j].LotNumber
		}
		return sorted[i].ItemCode < sorted[j].ItemCode
	})

	var total int64
	rows := make([][]string, 0, len(sorted))
	for _, l := range sorted {
		rows = append(rows, []string{
			l.JobNumber, l.LotNumber, l.CostCode, l.ItemCode,
			fmt.Sprintf("%d", l.Quantity), l.KittedBy, l.KittedOn.Format(timeLayout),
		})
		total += l.Quantity
	}
	return Document{
		Title:    title,
		Subtitle: subtitle,
		Columns: []Column{
			{"Job", 2}, {"Lot", 1}, {"Cost", 1}, {"Item", 3}, {"Qty", 1}, {"By", 2}, {"Time", 2},
		},
		Rows:   rows,
		Footer: fmt.Sprintf("%d lines, %d units", len(rows), total),
	}
}

// RequestDocument lays out the pulltags of a request batch.
func RequestDocument(batchID string, tags []*entity.Pulltag) Document {
	rows := make([][]string, 0, len(tags))
	for _, t := range tags {
		rows = append(rows, []string{t.JobNumber, t.LotNumber, t.ItemCode, t.Quantity.String(), t.Status})
	}
	return Document{
		Title:    "Pulltag Request Summary",
		Subtitle: "Batch " + batchID,
		Columns:  []Column{{"Job", 3}, {"Lot", 2}, {"Item", 3}, {"Qty", 2}, {"Status", 2}},
		Rows:     rows,
		Footer:   fmt.Sprintf("%d pulltags", len(rows)),
		Code:     batchID,
	}
}

// LinesFromLogs maps kitting logs to summary lines.
func LinesFromLogs(logs []*entity.KittingLog) []Line {
	out := make([]Line, 0, len(logs))
	for _, l := range logs {
		out = append(out, Line{
			JobNumber: l.JobNumber,
			LotNumber: l.LotNumber,
			CostCode:  l.CostCode,
			ItemCode:  l.ItemCode,
			Quantity:  l.Quantity,
			KittedBy:  l.KittedBy,
			KittedOn:  l.KittedOn,
		})
	}
	return out
}

// UseCase renders stored data as summaries.
type UseCase struct {
	logs     repository.KittingLogRepository
	pulltags repository.PulltagRepository
	renderer Renderer
}

// NewUseCase builds the report use case.
func NewUseCase(logs repository.KittingLogRepository, pulltags repository.PulltagRepository, renderer Renderer) *UseCase {
	return &UseCase{logs: logs, pulltags: pulltags, renderer: renderer}
}

// Render renders an already built document.
func (uc *UseCase) Render(ctx context.Context, doc Document) ([]byte, error) {
	return uc.renderer.Render(ctx, doc)
}

// KittingSummary reprints the kitting logs matching filter.
func (uc *UseCase) KittingSummary(ctx context.Context, filter repository.KittingLogFilter) ([]byte, error) {
	if filter.IsEmpty() {
		return nil, domain.Invalid("add at least one filter")
	}
	logs, err := uc.logs.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("load kitting logs: %w", err)
	}
	if len(logs) == 0 {
		return nil, domain.ErrNotFound
	}
	title := "Kitting Summary"
	if len(filter.KittingTypes) == 1 {
		title = KindTitle(filter.KittingTypes[0])
	}
	doc := KittingDocument(title, "", LinesFromLogs(logs))
	if len(filter.BatchIDs) == 1 {
		doc.Subtitle = "Batch " + filter.BatchIDs[0]
		doc.Code = filter.BatchIDs[0]
	}
	return uc.renderer.Render(ctx, doc)
}

// RequestSummary reprints a request batch.
func (uc *UseCase) RequestSummary(ctx context.Context, batchID string) ([]byte, error) {
	tags, err := uc.pulltags.ListByBatch(ctx, batchID)
	if err != nil {
		return nil, fmt.Errorf("load batch: %w", err)
	}
	if len(tags) == 0 {
		return nil, domain.ErrNotFound
	}
	return uc.renderer.Render(ctx, RequestDocument(batchID, tags))
}

// KindTitle is the summary title for a kitting type.
func KindTitle(kind string) string {
	switch kind {
	case entity.KittingInitial:
		return "Warehouse Kitting Summary"
	case entity.KittingBackorder:
		return "Backorder Kitting Summary"
	case entity.KittingAddon:
		return "Add-On Kitting Summary"
	}
	return "Kitting Summary"
}
