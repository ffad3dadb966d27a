package pulltag

import (
	"context"

	"github.com/jhoicas/roofing-ops/internal/domain/entity"
)

// BudgetParser extracts budget line items from an uploaded budget document.
type BudgetParser interface {
	Parse(ctx context.Context, data []byte) ([]entity.BudgetLine, error)
}
