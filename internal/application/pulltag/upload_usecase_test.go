package pulltag

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/roofing-ops/internal/domain"
	"github.com/jhoicas/roofing-ops/internal/domain/entity"
	"github.com/jhoicas/roofing-ops/internal/testutil/memstore"
)

type stubParser struct {
	lines []entity.BudgetLine
	err   error
}

func (p stubParser) Parse(ctx context.Context, data []byte) ([]entity.BudgetLine, error) {
	return p.lines, p.err
}

func seedReference(t *testing.T, s *memstore.Store) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, s.RoofTypes().Create(ctx, &entity.RoofTypeCode{RoofType: "Tile", CostCode: "R100"}))
	require.NoError(t, s.Items().Create(ctx, &entity.Item{ItemCode: "TILE-A", Description: "Concrete tile", UOM: "SQ"}))
	require.NoError(t, s.Communities().Upsert(ctx, &entity.CommunityRule{
		JobNumber: "12345", RoofType: "Tile", CostCode: "R100", ItemCode: "TILE-A", ItemCodeQty: "Units Budget * 0.5",
	}))
}

func newUploadUC(s *memstore.Store, parser BudgetParser) *UploadUseCase {
	uc := NewUploadUseCase(parser, s.Pulltags(), s.Items(), s.RoofTypes(), s.Communities(),
		GeneratorConfig{FractionalItems: []string{"NC134"}, JobPrefixLen: 5}, zerolog.Nop())
	uc.now = func() time.Time { return fixedNow }
	return uc
}

var budgetLines = []entity.BudgetLine{
	{JobNumber: "12345-01", LotNumber: "1", CostCode: "R100", UnitsBudget: 101},
	{JobNumber: "12345-01", LotNumber: "2", CostCode: "Z999", UnitsBudget: 5},
}

func TestUpload_InsertsPendingPulltags(t *testing.T) {
	s := memstore.New()
	seedReference(t, s)

	res, err := newUploadUC(s, stubParser{lines: budgetLines}).Upload(context.Background(), UploadInput{Data: []byte("%PDF"), User: "admin"})
	require.NoError(t, err)

	assert.Equal(t, 2, res.Lines)
	assert.Equal(t, 1, res.Inserted)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, "2", res.Warnings[0].LotNumber)

	stored := s.Pulltag(res.Pulltags[0].UID)
	require.NotNil(t, stored)
	assert.Equal(t, entity.PulltagPending, stored.Status)
	assert.Equal(t, "51", stored.Quantity.String())
	assert.Nil(t, stored.BatchID)
}

func TestUpload_DryRunWritesNothing(t *testing.T) {
	s := memstore.New()
	seedReference(t, s)

	res, err := newUploadUC(s, stubParser{lines: budgetLines}).Upload(context.Background(), UploadInput{Data: []byte("%PDF"), User: "admin", DryRun: true})
	require.NoError(t, err)

	assert.True(t, res.DryRun)
	assert.Len(t, res.Pulltags, 1)
	assert.Zero(t, res.Inserted)
	assert.Zero(t, s.Calls("pulltags.InsertMany"))
}

func TestUpload_Errors(t *testing.T) {
	s := memstore.New()
	seedReference(t, s)

	_, err := newUploadUC(s, stubParser{}).Upload(context.Background(), UploadInput{User: "admin"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = newUploadUC(s, stubParser{}).Upload(context.Background(), UploadInput{Data: []byte("x"), User: "admin"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "no lines")

	boom := errors.New("not a pdf")
	_, err = newUploadUC(s, stubParser{err: boom}).Upload(context.Background(), UploadInput{Data: []byte("x"), User: "admin"})
	assert.ErrorIs(t, err, boom)

	s.FailOn("pulltags.InsertMany", 1, errors.New("db down"))
	_, err = newUploadUC(s, stubParser{lines: budgetLines}).Upload(context.Background(), UploadInput{Data: []byte("x"), User: "admin"})
	assert.Error(t, err)
}
