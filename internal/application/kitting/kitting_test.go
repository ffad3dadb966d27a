package kitting

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/roofing-ops/internal/domain"
	"github.com/jhoicas/roofing-ops/internal/domain/entity"
	"github.com/jhoicas/roofing-ops/internal/testutil/memstore"
)

var fixedNow = time.Date(2025, 5, 6, 14, 0, 0, 0, time.UTC)

// ─── fixtures ───────────────────────────────────────────────────────────────

func requestedTag(uid, lot, item string, qty int64) *entity.Pulltag {
	batch := "B1"
	return &entity.Pulltag{
		UID: uid, JobNumber: "12345-01", LotNumber: lot, ItemCode: item, CostCode: "R100",
		Description: item + " desc", UOM: "EA", Quantity: decimal.NewFromInt(qty),
		BackorderQty: decimal.Zero, BackorderStatus: entity.BackorderNone,
		Status: entity.PulltagRequested, BatchID: &batch, UploadedOn: fixedNow.Add(-24 * time.Hour),
	}
}

func newFixture(t *testing.T, tags ...*entity.Pulltag) (*memstore.Store, *UseCase) {
	t.Helper()
	s := memstore.New()
	ctx := context.Background()
	require.NoError(t, s.Warehouses().Create(ctx, &entity.Warehouse{Name: "Main"}))
	require.NoError(t, s.Items().Create(ctx, &entity.Item{ItemCode: "SHINGLE-A", Description: "Architectural shingle", UOM: "BD"}))
	require.NoError(t, s.Pulltags().InsertMany(ctx, tags))

	uc := NewUseCase(s.Pulltags(), s.Backorders(), s.Warehouses(), s.Items(), s, time.UTC, zerolog.Nop())
	uc.now = func() time.Time { return fixedNow }
	return s, uc
}

func shingleBatch(t *testing.T) (*memstore.Store, *UseCase) {
	return newFixture(t,
		requestedTag("p1", "1", "SHINGLE-A", 10),
		requestedTag("p2", "2", "SHINGLE-A", 5),
		requestedTag("p3", "3", "SHINGLE-A", 5),
	)
}

func kit(uc *UseCase, items ...KitItem) (*KitBatchResult, error) {
	return uc.KitBatch(context.Background(), KitBatchInput{BatchID: "B1", Warehouse: "Main", User: "wh1", Items: items})
}

// ─── KitBatch ───────────────────────────────────────────────────────────────

func TestKitBatch_ProportionalWithShortfall(t *testing.T) {
	s, uc := shingleBatch(t)

	res, err := kit(uc, KitItem{ItemCode: "SHINGLE-A", KittedQty: 18})
	require.NoError(t, err)

	require.Len(t, res.Rows, 3)
	got := []int64{res.Rows[0].Allocated, res.Rows[1].Allocated, res.Rows[2].Allocated}
	assert.Equal(t, []int64{10, 4, 4}, got)

	p1, p2 := s.Pulltag("p1"), s.Pulltag("p2")
	assert.Equal(t, entity.PulltagKitted, p1.Status)
	assert.Equal(t, int64(10), p1.KittedQty)
	assert.True(t, p1.BackorderQty.IsZero())
	assert.Equal(t, entity.BackorderNone, p1.BackorderStatus)
	assert.Equal(t, int64(4), p2.KittedQty)
	assert.Equal(t, "1", p2.BackorderQty.String())
	assert.Equal(t, entity.BackorderPending, p2.BackorderStatus)
	assert.Equal(t, "Main", *p2.Warehouse)
	assert.True(t, p2.KittedOn.Equal(fixedNow))

	for _, uid := range []string{"p1", "p2", "p3"} {
		tag := s.Pulltag(uid)
		assert.True(t, decimal.NewFromInt(tag.KittedQty).Add(tag.BackorderQty).Equal(tag.Quantity), uid)
	}

	logs := s.AllLogs()
	require.Len(t, logs, 3)
	assert.Equal(t, entity.KittingInitial, logs[0].KittingType)
	assert.Equal(t, "Main", logs[0].Warehouse)
	assert.Equal(t, "wh1", logs[0].KittedBy)
	assert.Equal(t, int64(10), logs[0].Quantity)

	require.Len(t, res.Backorders, 1)
	bo := s.AllBackorders()
	require.Len(t, bo, 1)
	assert.Equal(t, "2", bo[0].ShortedQty.String())
	assert.True(t, bo[0].FulfilledQty.IsZero())
	assert.Equal(t, "SHINGLE-A", bo[0].ItemCode)
}

func TestKitBatch_FullKitCreatesNoBackorder(t *testing.T) {
	s, uc := shingleBatch(t)

	_, err := kit(uc, KitItem{ItemCode: "SHINGLE-A", KittedQty: 20})
	require.NoError(t, err)
	assert.Empty(t, s.AllBackorders())
	assert.Equal(t, entity.BackorderNone, s.Pulltag("p3").BackorderStatus)
}

func TestKitBatch_CannotRekit(t *testing.T) {
	s, uc := shingleBatch(t)

	_, err := kit(uc, KitItem{ItemCode: "SHINGLE-A", KittedQty: 18})
	require.NoError(t, err)
	calls := s.Calls("pulltags.MarkKitted")

	_, err = kit(uc, KitItem{ItemCode: "SHINGLE-A", KittedQty: 20})
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, calls, s.Calls("pulltags.MarkKitted"))
	assert.Equal(t, int64(10), s.Pulltag("p1").KittedQty)
	assert.Len(t, s.AllLogs(), 3)
}

func TestKitBatch_ValidationWritesNothing(t *testing.T) {
	tests := []struct {
		name  string
		items []KitItem
		row   string
	}{
		{"over requested", []KitItem{{ItemCode: "SHINGLE-A", KittedQty: 21}}, "SHINGLE-A: kitted 21 exceeds requested 20"},
		{"negative", []KitItem{{ItemCode: "SHINGLE-A", KittedQty: -1}}, "SHINGLE-A: negative quantity"},
		{"missing item", nil, "SHINGLE-A: missing kitted quantity"},
		{"unknown item", []KitItem{{ItemCode: "SHINGLE-A", KittedQty: 1}, {ItemCode: "FELT", KittedQty: 1}}, "FELT: not requested in this batch"},
		{"entered twice", []KitItem{{ItemCode: "SHINGLE-A", KittedQty: 1}, {ItemCode: "SHINGLE-A", KittedQty: 2}}, "SHINGLE-A: entered twice"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, uc := shingleBatch(t)

			_, err := kit(uc, tt.items...)
			var verr *domain.ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.Contains(t, verr.Rows, tt.row)
			assert.Zero(t, s.Calls("pulltags.MarkKitted"))
			assert.Empty(t, s.AllLogs())
			assert.Empty(t, s.AllBackorders())
		})
	}
}

func TestKitBatch_HeaderErrors(t *testing.T) {
	_, uc := shingleBatch(t)
	ctx := context.Background()

	_, err := uc.KitBatch(ctx, KitBatchInput{BatchID: "B1", Warehouse: "Nowhere", User: "wh1"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.KitBatch(ctx, KitBatchInput{BatchID: "", Warehouse: "Main", User: "wh1"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.KitBatch(ctx, KitBatchInput{BatchID: "B404", Warehouse: "Main", User: "wh1"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestKitBatch_StoreFailureStopsAtRow(t *testing.T) {
	s, uc := shingleBatch(t)
	s.FailOn("logs.Create", 2, errors.New("insert timeout"))

	res, err := kit(uc, KitItem{ItemCode: "SHINGLE-A", KittedQty: 18})
	require.Error(t, err)

	var rowErr *domain.RowError
	require.True(t, errors.As(err, &rowErr))
	assert.Equal(t, "p2", rowErr.Ref)
	assert.Equal(t, "insert kitting log", rowErr.Op)

	require.NotNil(t, res)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, "p1", res.Rows[0].UID)
	assert.Equal(t, entity.PulltagKitted, s.Pulltag("p1").Status)
	assert.Equal(t, entity.PulltagRequested, s.Pulltag("p2").Status, "row update rolled back with its log")
	assert.Equal(t, entity.PulltagRequested, s.Pulltag("p3").Status)
	assert.Len(t, s.AllLogs(), 1)
	assert.Empty(t, s.AllBackorders())
}

func TestKitBatch_ItemsProcessedInCodeOrder(t *testing.T) {
	s, uc := newFixture(t,
		requestedTag("s1", "1", "SHINGLE-A", 4),
		requestedTag("f1", "1", "FELT", 3),
	)

	res, err := kit(uc, KitItem{ItemCode: "SHINGLE-A", KittedQty: 4}, KitItem{ItemCode: "FELT", KittedQty: 1})
	require.NoError(t, err)
	require.Len(t, res.Rows, 2)
	assert.Equal(t, "FELT", res.Rows[0].ItemCode)
	assert.Equal(t, "SHINGLE-A", res.Rows[1].ItemCode)

	bo := s.AllBackorders()
	require.Len(t, bo, 1)
	assert.Equal(t, "FELT", bo[0].ItemCode)
	assert.Equal(t, "2", bo[0].ShortedQty.String())
}

// ─── ResolveBackorder ───────────────────────────────────────────────────────

func kittedShortBatch(t *testing.T) (*memstore.Store, *UseCase) {
	s, uc := shingleBatch(t)
	_, err := kit(uc, KitItem{ItemCode: "SHINGLE-A", KittedQty: 18})
	require.NoError(t, err)
	return s, uc
}

func resolve(uc *UseCase, lines ...ResolveLine) (*ResolveResult, error) {
	return uc.ResolveBackorder(context.Background(), ResolveInput{BatchID: "B1", Warehouse: "Main", User: "wh2", Lines: lines})
}

func TestResolveBackorder_FullResolution(t *testing.T) {
	s, uc := kittedShortBatch(t)

	res, err := resolve(uc, ResolveLine{ItemCode: "SHINGLE-A", Qty: 2, Note: "truck 2"})
	require.NoError(t, err)

	require.Len(t, res.Rows, 2)
	assert.Equal(t, "p2", res.Rows[0].UID)
	assert.Equal(t, "p3", res.Rows[1].UID)
	for _, uid := range []string{"p2", "p3"} {
		tag := s.Pulltag(uid)
		assert.Equal(t, int64(5), tag.KittedQty)
		assert.True(t, tag.BackorderQty.IsZero())
		assert.Equal(t, entity.BackorderResolved, tag.BackorderStatus)
		require.NotNil(t, tag.ResolvedOn)
		assert.Equal(t, entity.PulltagKitted, tag.Status)
	}

	require.Len(t, res.Backorders, 1)
	bo := res.Backorders[0]
	assert.Equal(t, "2", bo.FulfilledQty.String())
	require.NotNil(t, bo.ResolvedBy)
	assert.Equal(t, "wh2", *bo.ResolvedBy)
	require.NotNil(t, bo.FulfillmentTime)
	assert.False(t, bo.IsOpen())

	logs := s.AllLogs()
	require.Len(t, logs, 5)
	assert.Equal(t, entity.KittingBackorder, logs[3].KittingType)
	assert.Equal(t, "truck 2", logs[3].Note)
	assert.Equal(t, int64(1), logs[3].Quantity)
}

func TestResolveBackorder_PartialSkipsZeroRows(t *testing.T) {
	s, uc := kittedShortBatch(t)

	res, err := resolve(uc, ResolveLine{ItemCode: "SHINGLE-A", Qty: 1})
	require.NoError(t, err)

	require.Len(t, res.Rows, 1)
	assert.Equal(t, "p2", res.Rows[0].UID)
	assert.Equal(t, entity.BackorderResolved, s.Pulltag("p2").BackorderStatus)
	assert.Equal(t, entity.BackorderPending, s.Pulltag("p3").BackorderStatus)
	assert.Nil(t, s.Pulltag("p3").ResolvedOn)

	bo := res.Backorders[0]
	assert.Equal(t, "1", bo.FulfilledQty.String())
	assert.True(t, bo.IsOpen())
	assert.Nil(t, bo.ResolvedBy)
	assert.Len(t, s.AllLogs(), 4)
}

func TestResolveBackorder_PartiallyResolvedRow(t *testing.T) {
	s, uc := newFixture(t, requestedTag("p1", "1", "SHINGLE-A", 10))
	_, err := kit(uc, KitItem{ItemCode: "SHINGLE-A", KittedQty: 6})
	require.NoError(t, err)

	_, err = resolve(uc, ResolveLine{ItemCode: "SHINGLE-A", Qty: 3})
	require.NoError(t, err)

	tag := s.Pulltag("p1")
	assert.Equal(t, int64(9), tag.KittedQty)
	assert.Equal(t, "1", tag.BackorderQty.String())
	assert.Equal(t, entity.BackorderPartiallyResolved, tag.BackorderStatus)
	assert.Nil(t, tag.ResolvedOn)
}

func TestResolveBackorder_RejectsOverRemaining(t *testing.T) {
	s, uc := kittedShortBatch(t)
	logs := len(s.AllLogs())

	_, err := resolve(uc, ResolveLine{ItemCode: "SHINGLE-A", Qty: 3})
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"SHINGLE-A: 3 exceeds remaining 2"}, verr.Rows)
	assert.Len(t, s.AllLogs(), logs)
	assert.Zero(t, s.Calls("pulltags.ApplyBackorder"))
	assert.Zero(t, s.Calls("backorders.AddFulfillment"))
}

func TestResolveBackorder_NotFoundAndEmpty(t *testing.T) {
	_, uc := kittedShortBatch(t)

	_, err := resolve(uc, ResolveLine{ItemCode: "FELT", Qty: 1})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = resolve(uc, ResolveLine{ItemCode: "SHINGLE-A", Qty: 0})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = resolve(uc, ResolveLine{ItemCode: "SHINGLE-A", Qty: 2})
	require.NoError(t, err)
	_, err = resolve(uc, ResolveLine{ItemCode: "SHINGLE-A", Qty: 1})
	assert.ErrorIs(t, err, domain.ErrNotFound, "closed backorder")
}

func TestResolveBackorder_StoreFailure(t *testing.T) {
	s, uc := kittedShortBatch(t)
	s.FailOn("backorders.AddFulfillment", 1, errors.New("deadlock"))

	res, err := resolve(uc, ResolveLine{ItemCode: "SHINGLE-A", Qty: 2})
	var rowErr *domain.RowError
	require.True(t, errors.As(err, &rowErr))
	assert.Equal(t, "B1/SHINGLE-A", rowErr.Ref)
	assert.Len(t, res.Rows, 2, "pulltag rows stay written")
	assert.True(t, s.AllBackorders()[0].FulfilledQty.IsZero())
}

// ─── KitAddon ───────────────────────────────────────────────────────────────

func TestKitAddon(t *testing.T) {
	s, uc := newFixture(t)

	res, err := uc.KitAddon(context.Background(), AddonInput{
		Warehouse: "Main",
		User:      "wh1",
		Lines: []AddonLine{
			{ItemCode: "SHINGLE-A", CostCode: "R100", JobNumber: "12345-01", LotNumber: "7", Quantity: 2},
			{ItemCode: "SHINGLE-A", JobNumber: "12345-01", LotNumber: "", Quantity: 2},
			{ItemCode: "SHINGLE-A", JobNumber: "12345-01", LotNumber: "8", Quantity: 0},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Skipped)

	logs := s.AllLogs()
	require.Len(t, logs, 1)
	assert.Equal(t, "addon::SHINGLE-A::12345-01::7", logs[0].PulltagUID)
	assert.Equal(t, entity.KittingAddon, logs[0].KittingType)
	assert.Equal(t, "addon", logs[0].Note)
	assert.Equal(t, "Architectural shingle", logs[0].Description)
	assert.Equal(t, int64(2), logs[0].Quantity)
	assert.Empty(t, logs[0].BatchID)
}

func TestKitAddon_NothingToSubmit(t *testing.T) {
	_, uc := newFixture(t)
	_, err := uc.KitAddon(context.Background(), AddonInput{Warehouse: "Main", User: "wh1", Lines: []AddonLine{{ItemCode: "X"}}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
