package export

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// Header is the "I" record of a Sage import file.
type Header struct {
	Batch    string    `json:"batch"`
	KitDate  time.Time `json:"kit_date"`
	AcctDate time.Time `json:"acct_date"`
}

// Line is one exported kitting log joined with the items master.
type Line struct {
	LogID       string    `json:"id"`
	BatchID     string    `json:"batch_id"`
	JobNumber   string    `json:"job_number"`
	LotNumber   string    `json:"lot_number"`
	ItemCode    string    `json:"item_code"`
	Quantity    int64     `json:"quantity"`
	UOM         string    `json:"uom"`
	Description string    `json:"description"`
	CostCode    string    `json:"cost_code"`
	Warehouse   string    `json:"warehouse"`
	KittingType string    `json:"kitting_type"`
	KittedOn    time.Time `json:"kitted_on"`
}

const sageDate = "01-02-06"

// BuildSageTXT renders the Sage inventory import file, encoded as Windows-1252.
// Characters with no Windows-1252 form are replaced.
func BuildSageTXT(h Header, lines []Line) ([]byte, error) {
	kit := h.KitDate.Format(sageDate)
	acct := h.AcctDate.Format(sageDate)

	var b strings.Builder
	fmt.Fprintf(&b, "I,%s,%s,%s\n", h.Batch, kit, acct)
	for _, l := range lines {
		desc := strings.ReplaceAll(l.Description, `"`, "'")
		fmt.Fprintf(&b, "IL,%s,%s,%d,%s,\"%s\",1,,,%s,%s,%s,M,,%s\n",
			l.Warehouse, l.ItemCode, l.Quantity, l.UOM, desc, l.JobNumber, l.LotNumber, l.CostCode, kit)
	}

	out, err := encoding.ReplaceUnsupported(charmap.Windows1252.NewEncoder()).Bytes([]byte(b.String()))
	if err != nil {
		return nil, fmt.Errorf("encode sage file: %w", err)
	}
	return out, nil
}

var nonWord = regexp.MustCompile(`\W+`)

// FileName turns a batch name into a safe file name with the given extension.
func FileName(batch, ext string) string {
	name := nonWord.ReplaceAllString(strings.TrimSpace(batch), "_")
	if name == "" {
		name = "export"
	}
	return name + "." + ext
}
