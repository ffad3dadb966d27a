// Package pdf renders report documents as A4 PDFs with Maroto v2.
//
// Page layout:
//
//	TITLE + subtitle          | QR of the reference
//	--------------------------------------------------
//	table header (blue band)
//	one row per line, zebra striped
//	--------------------------------------------------
//	footer totals             | printed at
package pdf

import (
	"context"
	"fmt"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/roofing-ops/internal/application/report"
)

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
	colorStripe  = &props.Color{Red: 235, Green: 241, Blue: 247}
)

var _ report.Renderer = (*SummaryRenderer)(nil)

// SummaryRenderer implements report.Renderer with Maroto v2.
type SummaryRenderer struct {
	author string
	loc    *time.Location
	now    func() time.Time
}

// NewSummaryRenderer builds the renderer; loc stamps the "printed" time.
func NewSummaryRenderer(author string, loc *time.Location) *SummaryRenderer {
	if loc == nil {
		loc = time.UTC
	}
	return &SummaryRenderer{author: author, loc: loc, now: time.Now}
}

// Render lays the document out and returns the PDF bytes.
func (g *SummaryRenderer) Render(_ context.Context, doc report.Document) ([]byte, error) {
	if err := checkColumns(doc); err != nil {
		return nil, err
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(doc.Title, true).
		WithAuthor(g.author, true).
		Build()

	m := maroto.New(cfg)
	m.AddRows(headerRow(doc))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(tableHeaderRow(doc.Columns))
	m.AddRows(tableRows(doc)...)
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(footerRow(doc.Footer, g.now().In(g.loc)))

	out, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generate document: %w", err)
	}
	return out.GetBytes(), nil
}

// checkColumns rejects tables that do not fit the 12 unit grid.
func checkColumns(doc report.Document) error {
	if len(doc.Columns) == 0 {
		return fmt.Errorf("pdf: document %q has no columns", doc.Title)
	}
	width := 0
	for _, c := range doc.Columns {
		width += c.Width
	}
	if width > 12 {
		return fmt.Errorf("pdf: columns of %q are %d units wide, max 12", doc.Title, width)
	}
	for i, r := range doc.Rows {
		if len(r) != len(doc.Columns) {
			return fmt.Errorf("pdf: row %d has %d cells, want %d", i, len(r), len(doc.Columns))
		}
	}
	return nil
}

func headerRow(doc report.Document) core.Row {
	titleCol := col.New(9).Add(
		text.New(doc.Title, props.Text{Style: fontstyle.Bold, Size: 14, Color: colorPrimary, Top: 1}),
		text.New(doc.Subtitle, props.Text{Size: 10, Top: 10, Color: colorGray}),
	)
	if doc.Code == "" {
		return row.New(20).Add(titleCol, col.New(3))
	}
	return row.New(20).Add(
		titleCol,
		col.New(3).Add(code.NewQr(doc.Code, props.Rect{Percent: 95, Center: true})),
	)
}

func tableHeaderRow(cols []report.Column) core.Row {
	cells := make([]core.Col, 0, len(cols))
	for _, c := range cols {
		cells = append(cells, col.New(c.Width).Add(text.New(c.Header, props.Text{
			Style: fontstyle.Bold, Size: 8, Color: colorWhite, Top: 2, Left: 1, Right: 1,
		})))
	}
	return row.New(8).Add(cells...).WithStyle(&props.Cell{BackgroundColor: colorPrimary})
}

func tableRows(doc report.Document) []core.Row {
	out := make([]core.Row, 0, len(doc.Rows))
	for i, r := range doc.Rows {
		cells := make([]core.Col, 0, len(r))
		for j, v := range r {
			a := align.Left
			if doc.Columns[j].Header == "Qty" {
				a = align.Right
			}
			cells = append(cells, col.New(doc.Columns[j].Width).Add(text.New(v, props.Text{
				Size: 8, Align: a, Top: 1, Left: 1, Right: 1,
			})))
		}
		rw := row.New(6).Add(cells...)
		if i%2 == 1 {
			rw.WithStyle(&props.Cell{BackgroundColor: colorStripe})
		}
		out = append(out, rw)
	}
	return out
}

func footerRow(footer string, printed time.Time) core.Row {
	return row.New(10).Add(
		col.New(8).Add(text.New(footer, props.Text{Style: fontstyle.Bold, Size: 9, Top: 2})),
		col.New(4).Add(text.New("Printed "+printed.Format("01/02/2006 15:04"), props.Text{
			Size: 8, Align: align.Right, Top: 2, Color: colorGray,
		})),
	)
}
