package http

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/roofing-ops/internal/application/dto"
	"github.com/jhoicas/roofing-ops/internal/domain"
	"github.com/jhoicas/roofing-ops/internal/domain/repository"
)

func toLogFilter(f dto.ExportFilter) repository.KittingLogFilter {
	return repository.KittingLogFilter{
		BatchIDs:     f.BatchIDs,
		Warehouses:   f.Warehouses,
		KittingTypes: f.KittingTypes,
		From:         f.Start,
		To:           f.End,
	}
}

// logFilterFromQuery reads batch_id, warehouse, kitting_type (comma separated) and start/end
// (RFC 3339 or YYYY-MM-DD) from the query string.
func logFilterFromQuery(c *fiber.Ctx) (repository.KittingLogFilter, error) {
	f := repository.KittingLogFilter{
		BatchIDs:      splitList(c.Query("batch_id")),
		Warehouses:    splitList(c.Query("warehouse")),
		KittingTypes:  splitList(c.Query("kitting_type")),
		ExportBatchID: strings.TrimSpace(c.Query("export_batch_id")),
	}
	var err error
	if f.From, err = queryTime(c, "start"); err != nil {
		return f, err
	}
	if f.To, err = queryTime(c, "end"); err != nil {
		return f, err
	}
	return f, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func queryTime(c *fiber.Ctx, key string) (*time.Time, error) {
	s := strings.TrimSpace(c.Query(key))
	if s == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, nil
		}
	}
	return nil, domain.Invalid("invalid "+key+" date", s)
}
