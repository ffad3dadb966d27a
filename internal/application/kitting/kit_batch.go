// Package kitting applies warehouse fulfillment to requested pulltags.
package kitting

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/roofing-ops/internal/domain"
	"github.com/jhoicas/roofing-ops/internal/domain/entity"
	alloc "github.com/jhoicas/roofing-ops/internal/domain/kitting"
	"github.com/jhoicas/roofing-ops/internal/domain/repository"
)

// KitItem is the warehouse-entered total for one item code of the batch.
type KitItem struct {
	ItemCode  string `json:"item_code"`
	KittedQty int64  `json:"kitted_qty"`
}

// KitBatchInput is one kitting submission.
type KitBatchInput struct {
	BatchID   string
	Warehouse string
	User      string
	Note      string
	Items     []KitItem
}

// RowAllocation is what one pulltag row received.
type RowAllocation struct {
	UID          string          `json:"uid"`
	JobNumber    string          `json:"job_number"`
	LotNumber    string          `json:"lot_number"`
	ItemCode     string          `json:"item_code"`
	CostCode     string          `json:"cost_code"`
	Description  string          `json:"description"`
	Weight       decimal.Decimal `json:"weight"` // requested qty, or open backorder qty
	Allocated    int64           `json:"allocated"`
	KittedQty    int64           `json:"kitted_qty"`
	BackorderQty decimal.Decimal `json:"backorder_qty"`
	Status       string          `json:"backorder_status"`
}

// KitBatchResult is what a kitting submission wrote. On a store failure it holds the rows
// written before the failing one.
type KitBatchResult struct {
	BatchID    string                   `json:"batch_id"`
	Warehouse  string                   `json:"warehouse"`
	KittedOn   time.Time                `json:"kitted_on"`
	Rows       []RowAllocation          `json:"rows"`
	Backorders []*entity.BatchBackorder `json:"backorders"`
}

// UseCase kits batches, resolves backorders and logs add-on material.
type UseCase struct {
	pulltags   repository.PulltagRepository
	backorders repository.BatchBackorderRepository
	warehouses repository.WarehouseRepository
	items      repository.ItemRepository
	tx         RowTxRunner
	log        zerolog.Logger
	now        func() time.Time
}

// NewUseCase builds the kitting use case. Times are stamped in loc.
func NewUseCase(
	pulltags repository.PulltagRepository,
	backorders repository.BatchBackorderRepository,
	warehouses repository.WarehouseRepository,
	items repository.ItemRepository,
	tx RowTxRunner,
	loc *time.Location,
	log zerolog.Logger,
) *UseCase {
	if loc == nil {
		loc = time.UTC
	}
	return &UseCase{
		pulltags:   pulltags,
		backorders: backorders,
		warehouses: warehouses,
		items:      items,
		tx:         tx,
		log:        log,
		now:        func() time.Time { return time.Now().In(loc) },
	}
}

type itemGroup struct {
	code      string
	rows      []*entity.Pulltag
	requested decimal.Decimal
	kitted    int64
}

// KitBatch distributes each entered item total across the batch's requested rows of that item,
// proportionally to their requested quantity, and records any shortfall as a batch backorder.
//
// Every input problem is reported before the first write. Rows are then written one at a time
// in item-code order; the first store failure stops the run and is returned as a *domain.RowError
// together with the rows already written.
func (uc *UseCase) KitBatch(ctx context.Context, in KitBatchInput) (*KitBatchResult, error) {
	if err := uc.checkHeader(ctx, in.BatchID, in.Warehouse, in.User); err != nil {
		return nil, err
	}

	tags, err := uc.pulltags.ListByBatch(ctx, in.BatchID)
	if err != nil {
		return nil, fmt.Errorf("load batch: %w", err)
	}
	if len(tags) == 0 {
		return nil, fmt.Errorf("batch %s: %w", in.BatchID, domain.ErrNotFound)
	}

	groups := map[string]*itemGroup{}
	for _, t := range tags {
		if t.Status != entity.PulltagRequested {
			continue
		}
		g, ok := groups[t.ItemCode]
		if !ok {
			g = &itemGroup{code: t.ItemCode, requested: decimal.Zero}
			groups[t.ItemCode] = g
		}
		g.rows = append(g.rows, t)
		g.requested = g.requested.Add(t.Quantity)
	}
	if len(groups) == 0 {
		return nil, fmt.Errorf("batch %s has no requested pulltags: %w", in.BatchID, domain.ErrConflict)
	}

	if err := assignKitted(groups, in.Items); err != nil {
		return nil, err
	}

	codes := make([]string, 0, len(groups))
	for c := range groups {
		codes = append(codes, c)
	}
	sort.Strings(codes)

	now := uc.now()
	res := &KitBatchResult{BatchID: in.BatchID, Warehouse: in.Warehouse, KittedOn: now}
	for _, code := range codes {
		g := groups[code]
		weights := make([]decimal.Decimal, len(g.rows))
		for i, t := range g.rows {
			weights[i] = t.Quantity
		}
		shares := alloc.Allocate(weights, g.kitted)

		for i, t := range g.rows {
			row, err := uc.kitRow(ctx, in, t, shares[i], now)
			if err != nil {
				uc.log.Error().Err(err).Str("batch_id", in.BatchID).Str("uid", t.UID).Msg("kit row failed")
				return res, err
			}
			res.Rows = append(res.Rows, row)
		}

		shortfall := g.requested.Sub(decimal.NewFromInt(g.kitted))
		if !shortfall.IsPositive() {
			continue
		}
		bo := &entity.BatchBackorder{
			ID:           uuid.NewString(),
			BatchID:      in.BatchID,
			ItemCode:     code,
			ShortedQty:   shortfall,
			FulfilledQty: decimal.Zero,
			Warehouse:    in.Warehouse,
			Note:         in.Note,
			CreatedAt:    now,
		}
		created, err := uc.backorders.CreateIfAbsent(ctx, bo)
		if err != nil {
			uc.log.Error().Err(err).Str("batch_id", in.BatchID).Str("item_code", code).Msg("create batch backorder failed")
			return res, &domain.RowError{Op: "create batch backorder", Ref: in.BatchID + "/" + code, Err: err}
		}
		if created {
			res.Backorders = append(res.Backorders, bo)
		}
	}

	uc.log.Info().Str("batch_id", in.BatchID).Str("user", in.User).Str("warehouse", in.Warehouse).
		Int("rows", len(res.Rows)).Int("backorders", len(res.Backorders)).Msg("batch kitted")
	return res, nil
}

func (uc *UseCase) kitRow(ctx context.Context, in KitBatchInput, t *entity.Pulltag, share int64, now time.Time) (RowAllocation, error) {
	backorder := t.Quantity.Sub(decimal.NewFromInt(share))
	status := entity.BackorderNone
	if backorder.IsPositive() {
		status = entity.BackorderPending
	}

	err := uc.tx.RunRow(ctx, func(pulltags repository.PulltagRepository, logs repository.KittingLogRepository) error {
		ok, err := pulltags.MarkKitted(ctx, t.UID, repository.KitUpdate{
			KittedQty:       share,
			BackorderQty:    backorder,
			BackorderStatus: status,
			Warehouse:       in.Warehouse,
			KittedOn:        now,
			UpdatedBy:       in.User,
		})
		if err != nil {
			return &domain.RowError{Op: "update pulltag", Ref: t.UID, Err: err}
		}
		if !ok {
			return &domain.RowError{Op: "update pulltag", Ref: t.UID, Err: fmt.Errorf("no longer requested: %w", domain.ErrConflict)}
		}
		if err := logs.Create(ctx, newLog(t, in.BatchID, share, in.Note, entity.KittingInitial, in.User, in.Warehouse, now)); err != nil {
			return &domain.RowError{Op: "insert kitting log", Ref: t.UID, Err: err}
		}
		return nil
	})
	if err != nil {
		return RowAllocation{}, asRowError(err, "kit row", t.UID)
	}

	return RowAllocation{
		UID:          t.UID,
		JobNumber:    t.JobNumber,
		LotNumber:    t.LotNumber,
		ItemCode:     t.ItemCode,
		CostCode:     t.CostCode,
		Description:  t.Description,
		Weight:       t.Quantity,
		Allocated:    share,
		KittedQty:    share,
		BackorderQty: backorder,
		Status:       status,
	}, nil
}

// assignKitted validates the entered totals against the groups and stores them.
func assignKitted(groups map[string]*itemGroup, items []KitItem) error {
	var problems []string
	seen := map[string]bool{}
	for _, it := range items {
		code := strings.TrimSpace(it.ItemCode)
		g, ok := groups[code]
		switch {
		case !ok:
			problems = append(problems, code+": not requested in this batch")
		case seen[code]:
			problems = append(problems, code+": entered twice")
		case it.KittedQty < 0:
			problems = append(problems, code+": negative quantity")
		case decimal.NewFromInt(it.KittedQty).GreaterThan(g.requested):
			problems = append(problems, fmt.Sprintf("%s: kitted %d exceeds requested %s", code, it.KittedQty, g.requested))
		default:
			g.kitted = it.KittedQty
		}
		seen[code] = true
	}
	for code := range groups {
		if !seen[code] {
			problems = append(problems, code+": missing kitted quantity")
		}
	}
	if len(problems) > 0 {
		sort.Strings(problems)
		return domain.Invalid("kitting quantities rejected", problems...)
	}
	return nil
}

func (uc *UseCase) checkHeader(ctx context.Context, batchID, warehouse, user string) error {
	if strings.TrimSpace(batchID) == "" {
		return domain.Invalid("batch id is required")
	}
	if strings.TrimSpace(user) == "" {
		return domain.Invalid("user is required")
	}
	return uc.checkWarehouse(ctx, warehouse)
}

func (uc *UseCase) checkWarehouse(ctx context.Context, warehouse string) error {
	if strings.TrimSpace(warehouse) == "" {
		return domain.Invalid("warehouse is required")
	}
	w, err := uc.warehouses.GetByName(ctx, warehouse)
	if err != nil {
		return fmt.Errorf("load warehouse: %w", err)
	}
	if w == nil {
		return domain.Invalid("unknown warehouse", warehouse)
	}
	return nil
}

func newLog(t *entity.Pulltag, batchID string, qty int64, note, kind, user, warehouse string, at time.Time) *entity.KittingLog {
	return &entity.KittingLog{
		ID:          uuid.NewString(),
		PulltagUID:  t.UID,
		BatchID:     batchID,
		ItemCode:    t.ItemCode,
		Description: t.Description,
		CostCode:    t.CostCode,
		JobNumber:   t.JobNumber,
		LotNumber:   t.LotNumber,
		Quantity:    qty,
		Note:        note,
		KittingType: kind,
		KittedBy:    user,
		KittedOn:    at,
		Warehouse:   warehouse,
	}
}

// asRowError keeps a *domain.RowError as is and wraps anything else, e.g. a failed commit.
func asRowError(err error, op, ref string) error {
	var rowErr *domain.RowError
	if errors.As(err, &rowErr) {
		return err
	}
	return &domain.RowError{Op: op, Ref: ref, Err: err}
}
