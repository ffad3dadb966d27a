// Package pulltag creates pulltags from budgets and moves them into request batches.
package pulltag

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/roofing-ops/internal/domain"
	"github.com/jhoicas/roofing-ops/internal/domain/budget"
	"github.com/jhoicas/roofing-ops/internal/domain/entity"
	"github.com/jhoicas/roofing-ops/internal/domain/quantity"
	"github.com/jhoicas/roofing-ops/internal/domain/repository"
)

// GeneratorConfig carries the business settings of pulltag generation.
type GeneratorConfig struct {
	FractionalItems []string
	JobPrefixLen    int
	Location        *time.Location
}

// UploadInput is one budget submission.
type UploadInput struct {
	Data   []byte
	User   string
	DryRun bool
}

// UploadResult reports what a budget produced.
type UploadResult struct {
	Lines    int
	Pulltags []*entity.Pulltag
	Warnings []budget.Warning
	Inserted int
	DryRun   bool
}

// UploadUseCase turns budget documents into pending pulltags.
type UploadUseCase struct {
	parser      BudgetParser
	pulltags    repository.PulltagRepository
	items       repository.ItemRepository
	roofTypes   repository.RoofTypeRepository
	communities repository.CommunityRuleRepository
	policy      quantity.Policy
	prefixLen   int
	log         zerolog.Logger
	now         func() time.Time
}

// NewUploadUseCase builds the use case.
func NewUploadUseCase(
	parser BudgetParser,
	pulltags repository.PulltagRepository,
	items repository.ItemRepository,
	roofTypes repository.RoofTypeRepository,
	communities repository.CommunityRuleRepository,
	cfg GeneratorConfig,
	log zerolog.Logger,
) *UploadUseCase {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	return &UploadUseCase{
		parser:      parser,
		pulltags:    pulltags,
		items:       items,
		roofTypes:   roofTypes,
		communities: communities,
		policy:      quantity.NewPolicy(cfg.FractionalItems),
		prefixLen:   cfg.JobPrefixLen,
		log:         log,
		now:         func() time.Time { return time.Now().In(loc) },
	}
}

// Upload parses the document and generates its pulltags.
func (uc *UploadUseCase) Upload(ctx context.Context, in UploadInput) (*UploadResult, error) {
	if len(in.Data) == 0 {
		return nil, domain.Invalid("budget file is empty")
	}
	lines, err := uc.parser.Parse(ctx, in.Data)
	if err != nil {
		return nil, fmt.Errorf("parse budget: %w", err)
	}
	return uc.Generate(ctx, lines, in.User, in.DryRun)
}

// Generate runs pulltag generation on already parsed lines against the stored reference data.
// With dryRun nothing is written.
func (uc *UploadUseCase) Generate(ctx context.Context, lines []entity.BudgetLine, user string, dryRun bool) (*UploadResult, error) {
	if user == "" {
		return nil, domain.Invalid("user is required")
	}
	if len(lines) == 0 {
		return nil, domain.Invalid("budget has no line items")
	}

	ref, err := uc.reference(ctx)
	if err != nil {
		return nil, err
	}

	tags, warnings := budget.Generate(lines, ref, budget.Options{
		Policy:       uc.policy,
		JobPrefixLen: uc.prefixLen,
		User:         user,
		Now:          uc.now(),
	})
	res := &UploadResult{Lines: len(lines), Pulltags: tags, Warnings: warnings, DryRun: dryRun}

	for _, w := range warnings {
		uc.log.Warn().Str("kind", w.Kind).Str("job", w.JobNumber).Str("lot", w.LotNumber).Msg(w.Message)
	}
	if dryRun || len(tags) == 0 {
		return res, nil
	}

	if err := uc.pulltags.InsertMany(ctx, tags); err != nil {
		uc.log.Error().Err(err).Str("user", user).Int("pulltags", len(tags)).Msg("insert pulltags failed")
		return nil, fmt.Errorf("insert pulltags: %w", err)
	}
	res.Inserted = len(tags)
	uc.log.Info().Str("user", user).Int("lines", len(lines)).Int("pulltags", len(tags)).Int("warnings", len(warnings)).Msg("budget uploaded")
	return res, nil
}

func (uc *UploadUseCase) reference(ctx context.Context) (budget.Reference, error) {
	communities, err := uc.communities.ListAll(ctx)
	if err != nil {
		return budget.Reference{}, fmt.Errorf("load community rules: %w", err)
	}
	items, err := uc.items.ListAll(ctx)
	if err != nil {
		return budget.Reference{}, fmt.Errorf("load items master: %w", err)
	}
	roofTypes, err := uc.roofTypes.ListAll(ctx)
	if err != nil {
		return budget.Reference{}, fmt.Errorf("load roof types: %w", err)
	}
	return budget.Reference{Communities: communities, Items: items, RoofTypes: roofTypes}, nil
}
