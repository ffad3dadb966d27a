package kitting

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jhoicas/roofing-ops/internal/domain"
	"github.com/jhoicas/roofing-ops/internal/domain/entity"
	"github.com/jhoicas/roofing-ops/internal/domain/repository"
)

// AddonLine is material kitted outside any pulltag.
type AddonLine struct {
	ItemCode  string `json:"item_code"`
	CostCode  string `json:"cost_code"`
	JobNumber string `json:"job_number"`
	LotNumber string `json:"lot_number"`
	Quantity  int64  `json:"quantity"`
}

// AddonInput is one add-on submission.
type AddonInput struct {
	Warehouse string
	User      string
	Note      string
	Lines     []AddonLine
}

// AddonResult lists the logs written and how many lines were skipped.
type AddonResult struct {
	Logs    []*entity.KittingLog `json:"logs"`
	Skipped int                  `json:"skipped"`
}

// KitAddon writes one add-on kitting log per complete line. Lines missing item, job or lot,
// or with a quantity <= 0, are skipped.
func (uc *UseCase) KitAddon(ctx context.Context, in AddonInput) (*AddonResult, error) {
	if strings.TrimSpace(in.User) == "" {
		return nil, domain.Invalid("user is required")
	}
	if err := uc.checkWarehouse(ctx, in.Warehouse); err != nil {
		return nil, err
	}
	note := in.Note
	if note == "" {
		note = entity.KittingAddon
	}

	var lines []AddonLine
	codes := map[string]bool{}
	res := &AddonResult{}
	for _, l := range in.Lines {
		l.ItemCode = strings.TrimSpace(l.ItemCode)
		l.JobNumber = strings.TrimSpace(l.JobNumber)
		l.LotNumber = strings.TrimSpace(l.LotNumber)
		if l.ItemCode == "" || l.JobNumber == "" || l.LotNumber == "" || l.Quantity <= 0 {
			res.Skipped++
			continue
		}
		lines = append(lines, l)
		codes[l.ItemCode] = true
	}
	if len(lines) == 0 {
		return nil, domain.Invalid("nothing to submit")
	}

	list := make([]string, 0, len(codes))
	for c := range codes {
		list = append(list, c)
	}
	items, err := uc.items.ListByCodes(ctx, list)
	if err != nil {
		return nil, fmt.Errorf("load items: %w", err)
	}
	descriptions := make(map[string]string, len(items))
	for _, it := range items {
		descriptions[it.ItemCode] = it.Description
	}

	now := uc.now()
	for _, l := range lines {
		log := &entity.KittingLog{
			ID:          uuid.NewString(),
			PulltagUID:  entity.AddonPulltagUID(l.ItemCode, l.JobNumber, l.LotNumber),
			ItemCode:    l.ItemCode,
			Description: descriptions[l.ItemCode],
			CostCode:    l.CostCode,
			JobNumber:   l.JobNumber,
			LotNumber:   l.LotNumber,
			Quantity:    l.Quantity,
			Note:        note,
			KittingType: entity.KittingAddon,
			KittedBy:    in.User,
			KittedOn:    now,
			Warehouse:   in.Warehouse,
		}
		err := uc.tx.RunRow(ctx, func(_ repository.PulltagRepository, logs repository.KittingLogRepository) error {
			return logs.Create(ctx, log)
		})
		if err != nil {
			uc.log.Error().Err(err).Str("uid", log.PulltagUID).Msg("add-on log failed")
			return res, &domain.RowError{Op: "insert kitting log", Ref: log.PulltagUID, Err: err}
		}
		res.Logs = append(res.Logs, log)
	}

	uc.log.Info().Str("user", in.User).Str("warehouse", in.Warehouse).Int("logs", len(res.Logs)).Int("skipped", res.Skipped).Msg("add-on kitted")
	return res, nil
}
