package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/udisondev/craftplan/internal/data"
	"github.com/udisondev/craftplan/internal/datatest"
	"github.com/udisondev/craftplan/internal/plan"
	"github.com/udisondev/craftplan/internal/resolver"
)

func newTestPlan(t *testing.T) *plan.Plan {
	t.Helper()

	snap := resolver.NewSnapshot(
		datatest.Index(t, data.BenchRecipes,
			datatest.Bench("x_budget", "X", data.BudgetLow, data.Cost{Currency: "Orb of Alteration", Amount: 4}),
		),
		datatest.Index(t, data.Bosses,
			&data.BossEntry{Base: data.Base{ID: "maven_crucible", Name: "Maven's Crucible", Aliases: []string{"maven"}}},
		),
	)
	b := plan.NewBuilder(resolver.New(snap, resolver.Options{}), plan.DefaultConfig())
	p, err := b.Build([]plan.Step{
		{Text: "Use the Maven", Alternatives: []plan.Step{{Text: "bench X", ReferenceType: "bench_recipe", ReferenceID: "x_budget"}}},
		{Text: "bench X", ReferenceType: "bench_recipe", ReferenceID: "x_budget"},
		{Text: "pray to RNG"},
	}, []data.RiskTier{data.RiskLow, data.RiskHigh}, []data.BudgetTier{data.BudgetLow, data.BudgetLuxury})
	require.NoError(t, err)
	return p
}

func TestPlanWorkbook(t *testing.T) {
	t.Parallel()

	p := newTestPlan(t)
	f, err := PlanWorkbook(p)
	require.NoError(t, err)
	defer f.Close()

	sheets := f.GetSheetList()
	require.Len(t, sheets, len(p.Routes()))
	assert.Equal(t, "1 primary", sheets[0])

	sheet := sheets[0]
	cell := func(axis string) string {
		t.Helper()
		v, err := f.GetCellValue(sheet, axis)
		require.NoError(t, err)
		return v
	}

	assert.Equal(t, "Step", cell("A1"))
	assert.Equal(t, "Resolution", cell("G1"))

	assert.Equal(t, "Use the Maven", cell("B2"))
	assert.Equal(t, "matched", cell("C2"))
	assert.Equal(t, "bosses", cell("D2"))
	assert.Equal(t, "Maven's Crucible", cell("E2"))

	assert.Equal(t, "X", cell("E3"))
	assert.Equal(t, "unmatched", cell("C4"))
	assert.NotEmpty(t, cell("G4"))

	// Matrix starts two rows below the last step.
	assert.Equal(t, "budget", cell("B6"))
	assert.Equal(t, "luxury", cell("C6"))
	assert.Equal(t, "low", cell("A7"))
	assert.Equal(t, "high", cell("A8"))
	assert.True(t, strings.HasPrefix(cell("C7"), "unsatisfiable: "), cell("C7"))
	assert.NotContains(t, cell("B8"), "unsatisfiable")
}

func TestWritePlanXLSX(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WritePlanXLSX(newTestPlan(t), &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	v, err := f.GetCellValue(f.GetSheetList()[0], "A1")
	require.NoError(t, err)
	assert.Equal(t, "Step", v)
}

func TestSheetName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		index int
		route string
		want  string
	}{
		{name: "plain", index: 0, route: "primary", want: "1 primary"},
		{name: "invalid chars", index: 2, route: "step 1 via a/b:c", want: "3 step 1 via a_b_c"},
		{name: "truncated", index: 9, route: strings.Repeat("x", 40), want: "10 " + strings.Repeat("x", 28)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := SheetName(tt.index, tt.route)
			assert.Equal(t, tt.want, got)
			assert.LessOrEqual(t, len([]rune(got)), maxSheetName)
		})
	}
}
