package export

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSageTXT(t *testing.T) {
	h := Header{
		Batch:    "May kits",
		KitDate:  time.Date(2025, 5, 6, 0, 0, 0, 0, time.UTC),
		AcctDate: time.Date(2025, 5, 31, 0, 0, 0, 0, time.UTC),
	}
	lines := []Line{{
		Warehouse: "Main", ItemCode: "SHINGLE-A", Quantity: 18, UOM: "BD",
		Description: `Shingle 3/8" "Arch"`, JobNumber: "12345-01", LotNumber: "1", CostCode: "R100",
	}}

	out, err := BuildSageTXT(h, lines)
	require.NoError(t, err)
	assert.Equal(t,
		"I,May kits,05-06-25,05-31-25\n"+
			"IL,Main,SHINGLE-A,18,BD,\"Shingle 3/8' 'Arch'\",1,,,12345-01,1,R100,M,,05-06-25\n",
		string(out))
}

func TestBuildSageTXT_Windows1252(t *testing.T) {
	out, err := BuildSageTXT(Header{Batch: "B"}, []Line{{Description: "Tejado café ✓"}})
	require.NoError(t, err)
	assert.Contains(t, string(out), "caf\xe9")
	assert.NotContains(t, string(out), "✓")
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "May_kits_2025.txt", FileName(" May kits/2025 ", "txt"))
	assert.Equal(t, "export.xlsx", FileName("", "xlsx"))
}
