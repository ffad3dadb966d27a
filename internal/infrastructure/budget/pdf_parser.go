// Package budget reads budget report PDFs into budget lines.
package budget

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"rsc.io/pdf"

	"github.com/jhoicas/roofing-ops/internal/application/pulltag"
	"github.com/jhoicas/roofing-ops/internal/domain"
	"github.com/jhoicas/roofing-ops/internal/domain/entity"
)

var _ pulltag.BudgetParser = (*PDFParser)(nil)

// PDFParser implements pulltag.BudgetParser on top of rsc.io/pdf.
type PDFParser struct {
	log zerolog.Logger
}

// NewPDFParser builds the parser.
func NewPDFParser(log zerolog.Logger) *PDFParser {
	return &PDFParser{log: log}
}

// Parse extracts every page's text lines and runs ParseLines over them.
func (p *PDFParser) Parse(ctx context.Context, data []byte) ([]entity.BudgetLine, error) {
	lines, err := ExtractLines(ctx, data)
	if err != nil {
		return nil, err
	}
	out := ParseLines(lines)
	p.log.Debug().Int("text_lines", len(lines)).Int("budget_lines", len(out)).Msg("budget pdf parsed")
	if len(out) == 0 {
		return nil, domain.Invalid("no budget lines found in the PDF")
	}
	return out, nil
}

// ExtractLines returns the text of each page as lines, top to bottom.
// rsc.io/pdf panics on some malformed files; that is reported as invalid input.
func ExtractLines(ctx context.Context, data []byte) (lines []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			lines, err = nil, domain.Invalid(fmt.Sprintf("unreadable PDF: %v", r))
		}
	}()
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, domain.Invalid("unreadable PDF: " + err.Error())
	}
	for i := 1; i <= r.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		lines = append(lines, pageLines(page.Content().Text)...)
	}
	return lines, nil
}

// pageLines groups glyphs sharing a baseline and joins them left to right,
// adding a space where the gap is wider than a fifth of the font size.
func pageLines(glyphs []pdf.Text) []string {
	rows := map[float64][]pdf.Text{}
	for _, g := range glyphs {
		y := math.Round(g.Y)
		rows[y] = append(rows[y], g)
	}
	ys := make([]float64, 0, len(rows))
	for y := range rows {
		ys = append(ys, y)
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(ys)))

	out := make([]string, 0, len(ys))
	for _, y := range ys {
		row := rows[y]
		sort.SliceStable(row, func(i, j int) bool { return row[i].X < row[j].X })
		var b strings.Builder
		for i, g := range row {
			if i > 0 {
				prev := row[i-1]
				if g.X-(prev.X+prev.W) > g.FontSize*0.2 {
					b.WriteByte(' ')
				}
			}
			b.WriteString(g.S)
		}
		if s := strings.TrimRight(b.String(), " "); s != "" {
			out = append(out, s)
		}
	}
	return out
}
