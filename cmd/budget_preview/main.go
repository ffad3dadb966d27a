// budget_preview prints the budget lines found in a budget report PDF, without touching the database.
//
// Usage: go run ./cmd/budget_preview [-raw] budget.pdf
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/jhoicas/roofing-ops/internal/infrastructure/budget"
)

func main() {
	raw := flag.Bool("raw", false, "print the extracted text lines instead of budget lines")
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: budget_preview [-raw] budget.pdf")
		os.Exit(2)
	}

	data, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "read PDF: %v\n", err)
		os.Exit(1)
	}
	lines, err := budget.ExtractLines(context.Background(), data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "extract text: %v\n", err)
		os.Exit(1)
	}
	if *raw {
		for _, l := range lines {
			fmt.Println(l)
		}
		return
	}

	parsed := budget.ParseLines(lines)
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "COMMUNITY\tJOB\tLOT\tCOST CODE\tDESCRIPTION\tUNITS\tUOM")
	for _, b := range parsed {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%g\t%s\n", b.Community, b.JobNumber, b.LotNumber, b.CostCode, b.Description, b.UnitsBudget, b.UOM)
	}
	w.Flush()
	fmt.Fprintf(os.Stderr, "%d text lines, %d budget lines\n", len(lines), len(parsed))
}
