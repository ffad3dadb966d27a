// Package budget turns extracted budget lines into pending pulltags.
package budget

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/roofing-ops/internal/domain/entity"
	"github.com/jhoicas/roofing-ops/internal/domain/quantity"
)

// Reference is the configuration a generation run reads.
type Reference struct {
	Communities []*entity.CommunityRule
	Items       []*entity.Item
	RoofTypes   []*entity.RoofTypeCode // table order decides ties between roof types
}

// Options controls a generation run.
type Options struct {
	Policy       quantity.Policy
	JobPrefixLen int
	User         string
	Now          time.Time
	NewUID       func() string
}

// Warning kinds.
const (
	WarnNoRoofType  = "no_roof_type"
	WarnInvalidRule = "invalid_rule"
	WarnUnknownItem = "unknown_item"
)

// Warning is a non-fatal problem found while generating.
type Warning struct {
	Kind      string `json:"kind"`
	JobNumber string `json:"job_number"`
	LotNumber string `json:"lot_number"`
	Message   string `json:"message"`
}

type compiledRule struct {
	*entity.CommunityRule
	qty quantity.Rule
}

type ruleKey struct {
	roofType, costCode string
}

// Generate groups lines by (job, lot), detects each group's roof type and emits one pending
// pulltag per matching community rule. Groups with no roof type, rules that do not evaluate
// and items missing from the items master produce warnings instead of pulltags.
func Generate(lines []entity.BudgetLine, ref Reference, opts Options) ([]*entity.Pulltag, []Warning) {
	if opts.NewUID == nil {
		opts.NewUID = uuid.NewString
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	prefixLen := opts.JobPrefixLen
	if prefixLen <= 0 {
		prefixLen = 5
	}

	items := make(map[string]*entity.Item, len(ref.Items))
	for _, it := range ref.Items {
		items[strings.ToUpper(it.ItemCode)] = it
	}

	// roof types in table order, each with its cost code set
	var roofOrder []string
	roofCodes := map[string]map[string]struct{}{}
	for _, rt := range ref.RoofTypes {
		if _, ok := roofCodes[rt.RoofType]; !ok {
			roofOrder = append(roofOrder, rt.RoofType)
			roofCodes[rt.RoofType] = map[string]struct{}{}
		}
		roofCodes[rt.RoofType][strings.ToUpper(strings.TrimSpace(rt.CostCode))] = struct{}{}
	}

	rules := map[ruleKey][]compiledRule{}
	for _, r := range ref.Communities {
		k := ruleKey{
			roofType: strings.ToUpper(strings.TrimSpace(r.RoofType)),
			costCode: strings.ToUpper(strings.TrimSpace(r.CostCode)),
		}
		rules[k] = append(rules[k], compiledRule{CommunityRule: r, qty: quantity.Parse(r.ItemCodeQty)})
	}

	groups := map[entity.JobLot][]entity.BudgetLine{}
	var keys []entity.JobLot
	for _, l := range lines {
		k := entity.JobLot{JobNumber: strings.TrimSpace(l.JobNumber), LotNumber: strings.TrimSpace(l.LotNumber)}
		if _, ok := groups[k]; !ok {
			keys = append(keys, k)
		}
		groups[k] = append(groups[k], l)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].JobNumber != keys[j].JobNumber {
			return keys[i].JobNumber < keys[j].JobNumber
		}
		return keys[i].LotNumber < keys[j].LotNumber
	})

	var (
		out      []*entity.Pulltag
		warnings []Warning
	)
	for _, k := range keys {
		group := groups[k]
		codes := make(map[string]struct{}, len(group))
		for _, l := range group {
			codes[strings.ToUpper(strings.TrimSpace(l.CostCode))] = struct{}{}
		}

		roofType := ""
		for _, rt := range roofOrder {
			if intersects(roofCodes[rt], codes) {
				roofType = rt
				break
			}
		}
		if roofType == "" {
			warnings = append(warnings, Warning{
				Kind: WarnNoRoofType, JobNumber: k.JobNumber, LotNumber: k.LotNumber,
				Message: fmt.Sprintf("no roof type matched job %s lot %s", k.JobNumber, k.LotNumber),
			})
			continue
		}

		prefix := jobPrefix(k.JobNumber, prefixLen)
		for _, l := range group {
			costCode := strings.ToUpper(strings.TrimSpace(l.CostCode))
			matched := rules[ruleKey{roofType: strings.ToUpper(roofType), costCode: costCode}]
			for _, r := range matched {
				if !strings.HasPrefix(strings.TrimSpace(r.JobNumber), prefix) {
					continue
				}
				qty, ok := opts.Policy.Compute(decimal.NewFromFloat(l.UnitsBudget), r.qty, r.ItemCode)
				if !ok {
					warnings = append(warnings, Warning{
						Kind: WarnInvalidRule, JobNumber: k.JobNumber, LotNumber: k.LotNumber,
						Message: fmt.Sprintf("rule %q for item %s gave no quantity", r.ItemCodeQty, r.ItemCode),
					})
					continue
				}
				item, ok := items[strings.ToUpper(r.ItemCode)]
				if !ok {
					warnings = append(warnings, Warning{
						Kind: WarnUnknownItem, JobNumber: k.JobNumber, LotNumber: k.LotNumber,
						Message: fmt.Sprintf("item %s is not in the items master", r.ItemCode),
					})
					continue
				}
				out = append(out, &entity.Pulltag{
					UID:             opts.NewUID(),
					JobNumber:       k.JobNumber,
					LotNumber:       k.LotNumber,
					RoofType:        roofType,
					ItemCode:        item.ItemCode,
					CostCode:        costCode,
					Description:     item.Description,
					UOM:             item.UOM,
					Quantity:        qty,
					KittedQty:       0,
					BackorderQty:    decimal.Zero,
					BackorderStatus: entity.BackorderNone,
					Status:          entity.PulltagPending,
					UploadedOn:      opts.Now,
					UpdatedBy:       opts.User,
				})
			}
		}
	}
	return out, warnings
}

func jobPrefix(job string, n int) string {
	job = strings.TrimSpace(job)
	if len(job) <= n {
		return job
	}
	return job[:n]
}

func intersects(a, b map[string]struct{}) bool {
	for k := range b {
		if _, ok := a[k]; ok {
			return true
		}
	}
	return false
}
