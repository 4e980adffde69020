package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/craftplan/internal/data"
)

func annotatedRoute(t *testing.T, steps ...Step) []Step {
	t.Helper()
	return NewAnnotator(newTestResolver(t), 0.6, 3).AnnotateSteps(steps)
}

func TestGenerateCompleteness(t *testing.T) {
	t.Parallel()

	res := newTestResolver(t)
	gen := NewTierGenerator(res.Snapshot(), DefaultTierConfig())
	route := annotatedRoute(t,
		Step{Text: "Run Maven's Crucible"},
		Step{Text: "bench X", ReferenceType: "bench_recipe", ReferenceID: "x_budget"},
		Step{Text: "pray to RNG"},
	)

	tests := []struct {
		name    string
		risks   []data.RiskTier
		budgets []data.BudgetTier
		want    int
	}{
		{"all tiers", data.RiskTiers, data.BudgetTiers, 9},
		{"defaults", nil, nil, 9},
		{"single pair", []data.RiskTier{data.RiskHigh}, []data.BudgetTier{data.BudgetLuxury}, 1},
		{"duplicates collapse", []data.RiskTier{data.RiskLow, data.RiskLow}, []data.BudgetTier{data.BudgetLow, data.BudgetLuxury}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			opts := gen.Generate(route, tt.risks, tt.budgets)
			require.Len(t, opts, tt.want)
			for _, o := range opts {
				if !o.Satisfiable {
					assert.NotEmpty(t, o.Reason, "%s/%s", o.Risk, o.Budget)
				}
				assert.Equal(t, []int{3}, o.Unpriced)
			}
		})
	}
}

func TestGenerateOrder(t *testing.T) {
	t.Parallel()

	res := newTestResolver(t)
	gen := NewTierGenerator(res.Snapshot(), DefaultTierConfig())

	risks := []data.RiskTier{data.RiskHigh, data.RiskLow}
	budgets := []data.BudgetTier{data.BudgetLuxury, data.BudgetLow}
	opts := gen.Generate(nil, risks, budgets)

	var got [][2]string
	for _, o := range opts {
		got = append(got, [2]string{o.Risk.String(), o.Budget.String()})
	}
	assert.Equal(t, [][2]string{
		{"high", "luxury"}, {"high", "budget"},
		{"low", "luxury"}, {"low", "budget"},
	}, got)
	for _, o := range opts {
		assert.True(t, o.Satisfiable, "empty route fits every tier")
	}
}

func TestGenerateLuxuryUnsatisfiableForModX(t *testing.T) {
	t.Parallel()

	res := newTestResolver(t)
	gen := NewTierGenerator(res.Snapshot(), DefaultTierConfig())
	route := annotatedRoute(t,
		Step{Text: "Run Maven's Crucible"},
		Step{Text: "bench X", ReferenceType: "bench_recipe", ReferenceID: "x_standard"},
	)

	opts := gen.Generate(route, nil, nil)
	for _, r := range data.RiskTiers {
		o := mustOption(t, opts, r, data.BudgetLuxury)
		assert.False(t, o.Satisfiable)
		assert.Contains(t, o.Reason, `mod "X"`)
		assert.Empty(t, o.Choices)
	}

	o := mustOption(t, opts, data.RiskHigh, data.BudgetLuxury)
	assert.Equal(t, `no luxury-tier option for mod "X" (step 2)`, o.Reason)

	o = mustOption(t, opts, data.RiskLow, data.BudgetStandard)
	assert.False(t, o.Satisfiable)
	assert.Equal(t, `no low-risk option within standard tier for "Maven's Crucible" (step 1)`, o.Reason)
}

func TestGenerateChoosesCheapestSibling(t *testing.T) {
	t.Parallel()

	res := newTestResolver(t)
	gen := NewTierGenerator(res.Snapshot(), DefaultTierConfig())
	route := annotatedRoute(t,
		Step{Text: "Run Maven's Crucible"},
		Step{Text: "bench X", ReferenceType: "bench_recipe", ReferenceID: "x_budget_pricey"},
	)
	opts := gen.Generate(route, nil, nil)

	o := mustOption(t, opts, data.RiskHigh, data.BudgetLow)
	require.True(t, o.Satisfiable, o.Reason)
	require.Len(t, o.Choices, 2)
	assert.Equal(t, "maven_crucible", o.Choices[0].ID)
	assert.Equal(t, "x_budget", o.Choices[1].ID, "cheaper sibling for the same mod")
	assert.Equal(t, 2, o.Choices[1].Step)
	assert.Equal(t, []data.Cost{{Currency: "Orb of Alteration", Amount: 4}}, o.EstimatedCost)
	assert.Equal(t, 4.0, o.Total)
	assert.Equal(t, data.RiskHigh, o.ObservedRisk)

	o = mustOption(t, opts, data.RiskHigh, data.BudgetStandard)
	require.True(t, o.Satisfiable, o.Reason)
	assert.Equal(t, "x_standard", o.Choices[1].ID)
	assert.Equal(t, []data.Cost{{Currency: "Chaos Orb", Amount: 2}}, o.EstimatedCost)
}

func TestGenerateCurrencyWeights(t *testing.T) {
	t.Parallel()

	res := newTestResolver(t)
	cfg := DefaultTierConfig()
	cfg.CurrencyWeights = map[string]float64{"chaos orb": 10, "Orb of Alteration": 0.5}
	gen := NewTierGenerator(res.Snapshot(), cfg)

	route := annotatedRoute(t,
		Step{Text: "a", ReferenceType: "bench_recipe", ReferenceID: "x_standard"},
		Step{Text: "b", ReferenceType: "bench_recipe", ReferenceID: "life_bench"},
	)

	o := mustOption(t, gen.Generate(route, nil, nil), data.RiskLow, data.BudgetStandard)
	require.False(t, o.Satisfiable, "life has no standard recipe")

	o = mustOption(t, gen.Generate(route[:1], nil, nil), data.RiskLow, data.BudgetStandard)
	require.True(t, o.Satisfiable, o.Reason)
	assert.Equal(t, 20.0, o.Total)

	o = mustOption(t, gen.Generate(route[:1], nil, nil), data.RiskLow, data.BudgetLow)
	require.True(t, o.Satisfiable, o.Reason)
	assert.Equal(t, 2.0, o.Total)
}

func TestGenerateStepRiskHint(t *testing.T) {
	t.Parallel()

	res := newTestResolver(t)
	gen := NewTierGenerator(res.Snapshot(), DefaultTierConfig())
	route := annotatedRoute(t,
		Step{Text: "bench", ReferenceType: "bench_recipe", ReferenceID: "life_bench", Risk: data.RiskHigh},
	)

	opts := gen.Generate(route, nil, []data.BudgetTier{data.BudgetLow})
	assert.False(t, mustOption(t, opts, data.RiskLow, data.BudgetLow).Satisfiable)
	assert.True(t, mustOption(t, opts, data.RiskHigh, data.BudgetLow).Satisfiable)
}

func TestGenerateEssenceRankBudget(t *testing.T) {
	t.Parallel()

	res := newTestResolver(t)
	gen := NewTierGenerator(res.Snapshot(), DefaultTierConfig())
	route := annotatedRoute(t,
		Step{Text: "essence", ReferenceType: "essence", ReferenceID: "deafening_wrath"},
	)

	opts := gen.Generate(route, []data.RiskTier{data.RiskLow}, nil)

	cheap := mustOption(t, opts, data.RiskLow, data.BudgetLow)
	require.True(t, cheap.Satisfiable, cheap.Reason)
	assert.Equal(t, "wailing_wrath", cheap.Choices[0].ID)

	lux := mustOption(t, opts, data.RiskLow, data.BudgetLuxury)
	require.True(t, lux.Satisfiable, lux.Reason)
	assert.Equal(t, "deafening_wrath", lux.Choices[0].ID)

	assert.False(t, mustOption(t, opts, data.RiskLow, data.BudgetStandard).Satisfiable)
}
