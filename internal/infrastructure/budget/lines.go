package budget

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/jhoicas/roofing-ops/internal/domain/entity"
)

var (
	jobHeaderRe = regexp.MustCompile(`^(\d{5}-\d{3})\s`)
	lotHeaderRe = regexp.MustCompile(`^(\d{4})\s+[\d\s\w]+?\(\w+\)`)
	itemLineRe  = regexp.MustCompile(`^\s*([A-Za-z0-9()+"'#/\-]{2,})\s+(.+?)\s+([\d.]+)\s+(EA|SQ|BNDL|ROLL|PC|BUND|BOX)\s*$`)
)

// ParseLines walks the text lines of a budget report and returns its item lines.
//
// A "ddddd-ddd Community" line opens a job, a "dddd ... (X)" line opens a lot, and
// lines starting with "L" are lot subtotals. Item lines before the first lot are dropped.
func ParseLines(lines []string) []entity.BudgetLine {
	var (
		out       []entity.BudgetLine
		job       string
		community string
		lot       string
	)
	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if m := jobHeaderRe.FindStringSubmatch(line); m != nil {
			job = m[1]
			community = strings.TrimSpace(line[len(m[1]):])
		}
		if m := lotHeaderRe.FindStringSubmatch(raw); m != nil {
			lot = m[1]
		}
		if strings.HasPrefix(line, "L") {
			continue
		}
		m := itemLineRe.FindStringSubmatch(raw)
		if m == nil || lot == "" {
			continue
		}
		units, err := strconv.ParseFloat(m[3], 64)
		if err != nil {
			continue
		}
		out = append(out, entity.BudgetLine{
			Community:   community,
			JobNumber:   job,
			LotNumber:   lot,
			CostCode:    strings.ToUpper(strings.TrimSpace(m[1])),
			Description: strings.TrimSpace(m[2]),
			UnitsBudget: units,
			UOM:         m[4],
		})
	}
	return out
}
