// Package export marks kitting logs as exported and builds the accounting import files.
package export

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/roofing-ops/internal/domain"
	"github.com/jhoicas/roofing-ops/internal/domain/entity"
	"github.com/jhoicas/roofing-ops/internal/domain/repository"
)

// File formats.
const (
	FormatTXT  = "txt"
	FormatXLSX = "xlsx"
)

// WorkbookWriter renders export lines as a spreadsheet.
type WorkbookWriter interface {
	Write(ctx context.Context, h Header, lines []Line) ([]byte, error)
}

// File is a rendered export.
type File struct {
	Name          string
	ContentType   string
	Data          []byte
	Lines         int
	ExportBatchID string
}

// MarkResult counts what an export stamped.
type MarkResult struct {
	ExportBatchID string `json:"export_batch_id"`
	Logs          int64  `json:"logs"`
	Pulltags      int64  `json:"pulltags"`
}

// ExportInput is one export request.
type ExportInput struct {
	Filter        repository.KittingLogFilter
	Header        Header
	ExportBatchID string // minted when empty
	Format        string
	User          string
}

// UseCase runs accounting exports.
type UseCase struct {
	logs       repository.KittingLogRepository
	pulltags   repository.PulltagRepository
	items      repository.ItemRepository
	workbook   WorkbookWriter
	defaultUOM string
	log        zerolog.Logger
	now        func() time.Time
	newID      func(time.Time) string
}

// NewUseCase builds the export use case.
func NewUseCase(
	logs repository.KittingLogRepository,
	pulltags repository.PulltagRepository,
	items repository.ItemRepository,
	workbook WorkbookWriter,
	defaultUOM string,
	loc *time.Location,
	log zerolog.Logger,
) *UseCase {
	if loc == nil {
		loc = time.UTC
	}
	if defaultUOM == "" {
		defaultUOM = "EA"
	}
	return &UseCase{
		logs:       logs,
		pulltags:   pulltags,
		items:      items,
		workbook:   workbook,
		defaultUOM: defaultUOM,
		log:        log,
		now:        func() time.Time { return time.Now().In(loc) },
		newID:      NewExportBatchID,
	}
}

// NewExportBatchID mints an export batch id. Each call returns a new id.
func NewExportBatchID(at time.Time) string {
	return "EXP-" + at.Format("20060102") + "-" + uuid.NewString()[:8]
}

// Preview returns the lines an export with filter would contain.
func (uc *UseCase) Preview(ctx context.Context, filter repository.KittingLogFilter) ([]Line, error) {
	if filter.IsEmpty() {
		return nil, domain.Invalid("add at least one filter")
	}
	logs, err := uc.logs.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("load kitting logs: %w", err)
	}
	return uc.join(ctx, logs)
}

// MarkExported stamps the logs matching filter with the export batch id and moves the kitted
// pulltags they touched to exported. Re-running with the same filter re-stamps the same rows.
func (uc *UseCase) MarkExported(ctx context.Context, filter repository.KittingLogFilter, exportBatchID string) (*MarkResult, error) {
	if filter.IsEmpty() {
		return nil, domain.Invalid("add at least one filter")
	}
	logs, err := uc.logs.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("load kitting logs: %w", err)
	}
	return uc.mark(ctx, logs, exportBatchID)
}

func (uc *UseCase) mark(ctx context.Context, logs []*entity.KittingLog, exportBatchID string) (*MarkResult, error) {
	if len(logs) == 0 {
		return &MarkResult{}, nil
	}
	now := uc.now()
	if exportBatchID == "" {
		exportBatchID = uc.newID(now)
	}

	ids := make([]string, 0, len(logs))
	seen := map[repository.ItemKey]bool{}
	var keys []repository.ItemKey
	for _, l := range logs {
		ids = append(ids, l.ID)
		if l.KittingType == entity.KittingAddon {
			continue
		}
		k := repository.ItemKey{JobNumber: l.JobNumber, LotNumber: l.LotNumber, ItemCode: l.ItemCode}
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}

	res := &MarkResult{ExportBatchID: exportBatchID}
	n, err := uc.logs.StampExport(ctx, ids, exportBatchID, now)
	if err != nil {
		return nil, fmt.Errorf("stamp kitting logs: %w", err)
	}
	res.Logs = n
	if len(keys) > 0 {
		m, err := uc.pulltags.MarkExported(ctx, keys, now)
		if err != nil {
			uc.log.Error().Err(err).Str("export_batch_id", exportBatchID).Msg("mark pulltags exported failed")
			return res, &domain.RowError{Op: "mark pulltags exported", Ref: exportBatchID, Err: err}
		}
		res.Pulltags = m
	}
	return res, nil
}

// Export builds the import file for the logs matching the filter and marks them exported.
func (uc *UseCase) Export(ctx context.Context, in ExportInput) (*File, error) {
	if in.Filter.IsEmpty() {
		return nil, domain.Invalid("add at least one filter")
	}
	h, err := uc.header(in.Header)
	if err != nil {
		return nil, err
	}

	logs, err := uc.logs.List(ctx, in.Filter)
	if err != nil {
		return nil, fmt.Errorf("load kitting logs: %w", err)
	}
	if len(logs) == 0 {
		return nil, fmt.Errorf("no records match those filters: %w", domain.ErrNotFound)
	}
	lines, err := uc.join(ctx, logs)
	if err != nil {
		return nil, err
	}
	f, err := uc.render(ctx, h, lines, in.Format)
	if err != nil {
		return nil, err
	}

	res, err := uc.mark(ctx, logs, in.ExportBatchID)
	if err != nil {
		return nil, err
	}
	f.ExportBatchID = res.ExportBatchID

	uc.log.Info().Str("export_batch_id", res.ExportBatchID).Str("user", in.User).Str("format", f.ContentType).
		Int64("logs", res.Logs).Int64("pulltags", res.Pulltags).Msg("export generated")
	return f, nil
}

// Reprint rebuilds the file of a past export from its stored export batch id, without marking.
func (uc *UseCase) Reprint(ctx context.Context, exportBatchID string, h Header, format string) (*File, error) {
	if strings.TrimSpace(exportBatchID) == "" {
		return nil, domain.Invalid("export batch id is required")
	}
	if h.Batch == "" {
		h.Batch = exportBatchID
	}
	h, err := uc.header(h)
	if err != nil {
		return nil, err
	}
	logs, err := uc.logs.List(ctx, repository.KittingLogFilter{ExportBatchID: exportBatchID})
	if err != nil {
		return nil, fmt.Errorf("load kitting logs: %w", err)
	}
	if len(logs) == 0 {
		return nil, domain.ErrNotFound
	}
	lines, err := uc.join(ctx, logs)
	if err != nil {
		return nil, err
	}
	f, err := uc.render(ctx, h, lines, format)
	if err != nil {
		return nil, err
	}
	f.ExportBatchID = exportBatchID
	return f, nil
}

func (uc *UseCase) header(h Header) (Header, error) {
	h.Batch = strings.TrimSpace(h.Batch)
	if h.Batch == "" {
		return h, domain.Invalid("batch name is required")
	}
	today := uc.now()
	if h.KitDate.IsZero() {
		h.KitDate = today
	}
	if h.AcctDate.IsZero() {
		h.AcctDate = today
	}
	return h, nil
}

func (uc *UseCase) render(ctx context.Context, h Header, lines []Line, format string) (*File, error) {
	switch format {
	case "", FormatTXT:
		data, err := BuildSageTXT(h, lines)
		if err != nil {
			return nil, err
		}
		return &File{Name: FileName(h.Batch, FormatTXT), ContentType: "text/plain; charset=windows-1252", Data: data, Lines: len(lines)}, nil
	case FormatXLSX:
		data, err := uc.workbook.Write(ctx, h, lines)
		if err != nil {
			return nil, fmt.Errorf("build workbook: %w", err)
		}
		return &File{
			Name:        FileName(h.Batch, FormatXLSX),
			ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			Data:        data,
			Lines:       len(lines),
		}, nil
	}
	return nil, domain.Invalid("unknown export format", format)
}

// join adds uom and description from the items master; uom defaults to the configured unit.
func (uc *UseCase) join(ctx context.Context, logs []*entity.KittingLog) ([]Line, error) {
	codes := map[string]bool{}
	var list []string
	for _, l := range logs {
		if !codes[l.ItemCode] {
			codes[l.ItemCode] = true
			list = append(list, l.ItemCode)
		}
	}
	items, err := uc.items.ListByCodes(ctx, list)
	if err != nil {
		return nil, fmt.Errorf("load items: %w", err)
	}
	master := make(map[string]*entity.Item, len(items))
	for _, it := range items {
		master[it.ItemCode] = it
	}

	out := make([]Line, 0, len(logs))
	for _, l := range logs {
		line := Line{
			LogID:       l.ID,
			BatchID:     l.BatchID,
			JobNumber:   l.JobNumber,
			LotNumber:   l.LotNumber,
			ItemCode:    l.ItemCode,
			Quantity:    l.Quantity,
			UOM:         uc.defaultUOM,
			Description: l.Description,
			CostCode:    l.CostCode,
			Warehouse:   l.Warehouse,
			KittingType: l.KittingType,
			KittedOn:    l.KittedOn,
		}
		if it, ok := master[l.ItemCode]; ok {
			if it.UOM != "" {
				line.UOM = it.UOM
			}
			if it.Description != "" {
				line.Description = it.Description
			}
		}
		out = append(out, line)
	}
	return out, nil
}
