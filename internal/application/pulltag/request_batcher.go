package pulltag

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

// Per-pair outcomes of a request submission.
const (
	PairNotFound         = "not_found"
	PairAlreadyKitted    = "already_kitted"
	PairAlreadyRequested = "already_requested"
	PairInvalidStatus    = "invalid_status"
	PairEligible         = "eligible"  // preview only
	PairSubmitted        = "submitted" // moved to requested
	PairConflict         = "conflict"  // was pending when read, gone when written
)

// PairResult is the outcome of one (job, lot) pair.
type PairResult struct {
	JobNumber string `json:"job_number"`
	LotNumber string `json:"lot_number"`
	Status    string `json:"status"`
	Rows      int64  `json:"rows"`
}

// SubmitResult is the outcome of a request submission.
// BatchID is empty when no pair was submitted.
type SubmitResult struct {
	BatchID   string       `json:"batch_id,omitempty"`
	Pairs     []PairResult `json:"pairs"`
	Submitted int          `json:"submitted"`
}

// RequestUseCase groups (job, lot) pairs into request batches.
type RequestUseCase struct {
	pulltags   repository.PulltagRepository
	log        zerolog.Logger
	now        func() time.Time
	newBatchID func(user string) string
}

// NewRequestUseCase builds the use case.
func NewRequestUseCase(pulltags repository.PulltagRepository, loc *time.Location, log zerolog.Logger) *RequestUseCase {
	if loc == nil {
		loc = time.UTC
	}
	return &RequestUseCase{
		pulltags:   pulltags,
		log:        log,
		now:        func() time.Time { return time.Now().In(loc) },
		newBatchID: NewBatchID,
	}
}

// NewBatchID returns "<user>-<8 hex chars>".
// Collisions are not detected.
func NewBatchID(user string) string {
	return user + "-" + uuid.NewString()[:8]
}

// Preview classifies the pairs without writing.
func (uc *RequestUseCase) Preview(ctx context.Context, pairs []entity.JobLot) ([]PairResult, error) {
	pairs, err := normalizePairs(pairs)
	if err != nil {
		return nil, err
	}
	return uc.classify(ctx, pairs)
}

// Submit moves every pending pair to requested under one new batch id.
// The status is re-read right before writing and each write only touches rows still pending,
// so a pair taken by another user in between is reported as a conflict.
func (uc *RequestUseCase) Submit(ctx context.Context, pairs []entity.JobLot, user string) (*SubmitResult, error) {
	if strings.TrimSpace(user) == "" {
		return nil, domain.Invalid("user is required")
	}
	pairs, err := normalizePairs(pairs)
	if err != nil {
		return nil, err
	}

	results, err := uc.classify(ctx, pairs)
	if err != nil {
		return nil, err
	}

	batchID := uc.newBatchID(user)
	now := uc.now()
	res := &SubmitResult{Pairs: results}
	for i := range results {
		r := &results[i]
		if r.Status != PairEligible {
			continue
		}
		key := entity.JobLot{JobNumber: r.JobNumber, LotNumber: r.LotNumber}
		n, err := uc.pulltags.MarkRequested(ctx, key, batchID, user, now)
		if err != nil {
			uc.log.Error().Err(err).Str("batch_id", batchID).Str("job_lot", key.String()).Msg("request pulltags failed")
			if res.Submitted > 0 {
				res.BatchID = batchID
			}
			return res, &domain.RowError{Op: "request pulltags", Ref: key.String(), Err: err}
		}
		if n == 0 {
			r.Status = PairConflict
			continue
		}
		r.Status, r.Rows = PairSubmitted, n
		res.Submitted++
	}

	if res.Submitted > 0 {
		res.BatchID = batchID
	}
	uc.log.Info().Str("batch_id", res.BatchID).Str("user", user).Int("pairs", len(pairs)).Int("submitted", res.Submitted).Msg("request batch submitted")
	return res, nil
}

func (uc *RequestUseCase) classify(ctx context.Context, pairs []entity.JobLot) ([]PairResult, error) {
	rows, err := uc.pulltags.ListByJobLots(ctx, pairs)
	if err != nil {
		return nil, fmt.Errorf("load pulltags: %w", err)
	}
	statuses := map[entity.JobLot]map[string]bool{}
	for _, t := range rows {
		k := entity.JobLot{JobNumber: t.JobNumber, LotNumber: t.LotNumber}
		if statuses[k] == nil {
			statuses[k] = map[string]bool{}
		}
		statuses[k][t.Status] = true
	}

	out := make([]PairResult, 0, len(pairs))
	for _, p := range pairs {
		r := PairResult{JobNumber: p.JobNumber, LotNumber: p.LotNumber}
		st := statuses[p]
		switch {
		case len(st) == 0:
			r.Status = PairNotFound
		case st[entity.PulltagKitted]:
			r.Status = PairAlreadyKitted
		case st[entity.PulltagRequested]:
			r.Status = PairAlreadyRequested
		case st[entity.PulltagPending]:
			r.Status = PairEligible
		default:
			r.Status = PairInvalidStatus
		}
		out = append(out, r)
	}
	return out, nil
}

// normalizePairs trims the pairs and rejects blanks and duplicates.
func normalizePairs(pairs []entity.JobLot) ([]entity.JobLot, error) {
	if len(pairs) == 0 {
		return nil, domain.Invalid("no entries to submit")
	}
	out := make([]entity.JobLot, 0, len(pairs))
	seen := map[entity.JobLot]bool{}
	var blank, dups []string
	for i, p := range pairs {
		k := entity.JobLot{JobNumber: strings.TrimSpace(p.JobNumber), LotNumber: strings.TrimSpace(p.LotNumber)}
		if k.JobNumber == "" || k.LotNumber == "" {
			blank = append(blank, fmt.Sprintf("row %d", i+1))
			continue
		}
		if seen[k] {
			dups = append(dups, k.String())
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	if len(dups) > 0 {
		return nil, domain.Invalid("duplicate job/lot pairs", dups...)
	}
	if len(blank) > 0 {
		return nil, domain.Invalid("job and lot are required", blank...)
	}
	return out, nil
}

// BatchPulltags returns the rows of a batch for reprinting its summary.
func (uc *RequestUseCase) BatchPulltags(ctx context.Context, batchID string) ([]*entity.Pulltag, error) {
	tags, err := uc.pulltags.ListByBatch(ctx, batchID)
	if err != nil {
		return nil, fmt.Errorf("load batch: %w", err)
	}
	if len(tags) == 0 {
		return nil, domain.ErrNotFound
	}
	return tags, nil
}

// RecentBatches lists the user's latest batch ids, newest first.
func (uc *RequestUseCase) RecentBatches(ctx context.Context, user string, limit int) ([]string, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	return uc.pulltags.RecentBatchesByUser(ctx, user, limit)
}

// FindBatch returns the batch a (job, lot) was requested under.
func (uc *RequestUseCase) FindBatch(ctx context.Context, key entity.JobLot) (string, error) {
	id, err := uc.pulltags.FindBatchByJobLot(ctx, key)
	if err != nil {
		return "", err
	}
	if id == "" {
		return "", domain.ErrNotFound
	}
	return id, nil
}

// KittableBatches lists batches that still have requested rows.
func (uc *RequestUseCase) KittableBatches(ctx context.Context) ([]string, error) {
	return uc.pulltags.ListKittableBatches(ctx)
}
