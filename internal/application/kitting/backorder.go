package kitting

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/roofing-ops/internal/domain"
	"github.com/jhoicas/roofing-ops/internal/domain/entity"
	alloc "github.com/jhoicas/roofing-ops/internal/domain/kitting"
	"github.com/jhoicas/roofing-ops/internal/domain/repository"
)

// ResolveLine is a fulfillment quantity for one open backorder of the batch.
type ResolveLine struct {
	ItemCode string `json:"item_code"`
	Qty      int64  `json:"qty"`
	Note     string `json:"note"`
}

// ResolveInput is one backorder fulfillment submission.
type ResolveInput struct {
	BatchID   string
	Warehouse string
	User      string
	Lines     []ResolveLine
}

// ResolveResult is what a fulfillment submission wrote.
type ResolveResult struct {
	BatchID    string                   `json:"batch_id"`
	Warehouse  string                   `json:"warehouse"`
	KittedOn   time.Time                `json:"kitted_on"`
	Rows       []RowAllocation          `json:"rows"`
	Backorders []*entity.BatchBackorder `json:"backorders"`
}

type resolvePlan struct {
	line ResolveLine
	bo   *entity.BatchBackorder
	rows []*entity.Pulltag
}

// ResolveBackorder spreads each fulfilled quantity over the batch's open backordered rows of the
// item, proportionally to what each row still owes, then adds it to the batch backorder.
// Lines with a zero quantity are ignored. A quantity above what is still owed rejects the whole
// submission before any write.
func (uc *UseCase) ResolveBackorder(ctx context.Context, in ResolveInput) (*ResolveResult, error) {
	if err := uc.checkHeader(ctx, in.BatchID, in.Warehouse, in.User); err != nil {
		return nil, err
	}

	plans, err := uc.planResolve(ctx, in)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	res := &ResolveResult{BatchID: in.BatchID, Warehouse: in.Warehouse, KittedOn: now}
	for _, p := range plans {
		weights := make([]decimal.Decimal, len(p.rows))
		for i, t := range p.rows {
			weights[i] = t.BackorderQty
		}
		shares := alloc.Allocate(weights, p.line.Qty)

		for i, t := range p.rows {
			if shares[i] == 0 {
				continue
			}
			row, err := uc.resolveRow(ctx, in, p.line, t, shares[i], now)
			if err != nil {
				uc.log.Error().Err(err).Str("batch_id", in.BatchID).Str("uid", t.UID).Msg("backorder row failed")
				return res, err
			}
			res.Rows = append(res.Rows, row)
		}

		updated, err := uc.backorders.AddFulfillment(ctx, p.bo.ID, repository.Fulfillment{
			Qty:       decimal.NewFromInt(p.line.Qty),
			Note:      p.line.Note,
			Warehouse: in.Warehouse,
			User:      in.User,
			At:        now,
		})
		if err != nil {
			uc.log.Error().Err(err).Str("batch_id", in.BatchID).Str("item_code", p.line.ItemCode).Msg("update batch backorder failed")
			return res, &domain.RowError{Op: "update batch backorder", Ref: in.BatchID + "/" + p.line.ItemCode, Err: err}
		}
		res.Backorders = append(res.Backorders, updated)
	}

	uc.log.Info().Str("batch_id", in.BatchID).Str("user", in.User).Str("warehouse", in.Warehouse).
		Int("rows", len(res.Rows)).Int("items", len(plans)).Msg("backorders fulfilled")
	return res, nil
}

// planResolve validates every line and loads the rows it will touch.
func (uc *UseCase) planResolve(ctx context.Context, in ResolveInput) ([]resolvePlan, error) {
	var (
		plans    []resolvePlan
		problems []string
	)
	seen := map[string]bool{}
	for _, l := range in.Lines {
		l.ItemCode = strings.TrimSpace(l.ItemCode)
		switch {
		case l.ItemCode == "":
			problems = append(problems, "item code is required")
			continue
		case seen[l.ItemCode]:
			problems = append(problems, l.ItemCode+": entered twice")
			continue
		case l.Qty < 0:
			problems = append(problems, l.ItemCode+": negative quantity")
			continue
		}
		seen[l.ItemCode] = true
		if l.Qty == 0 {
			continue
		}

		bo, err := uc.backorders.GetByBatchItem(ctx, in.BatchID, l.ItemCode)
		if err != nil {
			return nil, fmt.Errorf("load batch backorder: %w", err)
		}
		if bo == nil || !bo.IsOpen() {
			return nil, fmt.Errorf("open backorder %s/%s: %w", in.BatchID, l.ItemCode, domain.ErrNotFound)
		}
		qty := decimal.NewFromInt(l.Qty)
		if qty.GreaterThan(bo.Remaining()) {
			problems = append(problems, fmt.Sprintf("%s: %d exceeds remaining %s", l.ItemCode, l.Qty, bo.Remaining()))
			continue
		}

		rows, err := uc.pulltags.ListOpenBackorders(ctx, in.BatchID, l.ItemCode)
		if err != nil {
			return nil, fmt.Errorf("load backordered pulltags: %w", err)
		}
		open := decimal.Zero
		for _, t := range rows {
			open = open.Add(t.BackorderQty)
		}
		if qty.GreaterThan(open) {
			problems = append(problems, fmt.Sprintf("%s: %d exceeds open pulltag backorder %s", l.ItemCode, l.Qty, open))
			continue
		}
		plans = append(plans, resolvePlan{line: l, bo: bo, rows: rows})
	}

	if len(problems) > 0 {
		return nil, domain.Invalid("backorder quantities rejected", problems...)
	}
	if len(plans) == 0 {
		return nil, domain.Invalid("nothing to submit")
	}
	return plans, nil
}

func (uc *UseCase) resolveRow(ctx context.Context, in ResolveInput, line ResolveLine, t *entity.Pulltag, share int64, now time.Time) (RowAllocation, error) {
	kitted := t.KittedQty + share
	backorder := t.BackorderQty.Sub(decimal.NewFromInt(share))
	status := entity.BackorderPartiallyResolved
	var resolvedOn *time.Time
	if backorder.IsZero() {
		status = entity.BackorderResolved
		resolvedOn = &now
	}

	err := uc.tx.RunRow(ctx, func(pulltags repository.PulltagRepository, logs repository.KittingLogRepository) error {
		ok, err := pulltags.ApplyBackorder(ctx, t.UID, t.BackorderQty, repository.BackorderUpdate{
			KittedQty:       kitted,
			BackorderQty:    backorder,
			BackorderStatus: status,
			ResolvedOn:      resolvedOn,
			UpdatedBy:       in.User,
		})
		if err != nil {
			return &domain.RowError{Op: "update pulltag", Ref: t.UID, Err: err}
		}
		if !ok {
			return &domain.RowError{Op: "update pulltag", Ref: t.UID, Err: fmt.Errorf("backorder changed: %w", domain.ErrConflict)}
		}
		if err := logs.Create(ctx, newLog(t, in.BatchID, share, line.Note, entity.KittingBackorder, in.User, in.Warehouse, now)); err != nil {
			return &domain.RowError{Op: "insert kitting log", Ref: t.UID, Err: err}
		}
		return nil
	})
	if err != nil {
		return RowAllocation{}, asRowError(err, "resolve row", t.UID)
	}

	return RowAllocation{
		UID:          t.UID,
		JobNumber:    t.JobNumber,
		LotNumber:    t.LotNumber,
		ItemCode:     t.ItemCode,
		CostCode:     t.CostCode,
		Description:  t.Description,
		Weight:       t.BackorderQty,
		Allocated:    share,
		KittedQty:    kitted,
		BackorderQty: backorder,
		Status:       status,
	}, nil
}

// OpenBackorders lists open batch backorders; an empty batchID lists every batch.
func (uc *UseCase) OpenBackorders(ctx context.Context, batchID string) ([]*entity.BatchBackorder, error) {
	return uc.backorders.ListOpen(ctx, batchID)
}
