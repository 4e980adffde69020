package plan

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/udisondev/craftplan/internal/data"
	"github.com/udisondev/craftplan/internal/datatest"
	"github.com/udisondev/craftplan/internal/resolver"
)

// newTestResolver indexes a boss, essences and bench recipes for mods "X"
// and "Life". Mod "X" has no luxury-tier recipe.
func newTestResolver(t *testing.T) *resolver.Resolver {
	t.Helper()

	snap := resolver.NewSnapshot(
		datatest.Index(t, data.Bosses,
			&data.BossEntry{Base: data.Base{ID: "maven_crucible", Name: "Maven's Crucible", Aliases: []string{"maven", "the maven"}}},
		),
		datatest.Index(t, data.BenchRecipes,
			datatest.Bench("x_budget", "X", data.BudgetLow, data.Cost{Currency: "Orb of Alteration", Amount: 4}),
			datatest.Bench("x_budget_pricey", "X", data.BudgetLow, data.Cost{Currency: "Orb of Alteration", Amount: 9}),
			datatest.Bench("x_standard", "X", data.BudgetStandard, data.Cost{Currency: "Chaos Orb", Amount: 2}),
			datatest.Bench("life_bench", "Life", data.BudgetLow, data.Cost{Currency: "Orb of Transmutation", Amount: 1}),
		),
		datatest.Index(t, data.Mods,
			&data.ModEntry{Base: data.Base{ID: "life_mod", Name: "Life"}},
		),
		datatest.Index(t, data.Essences,
			&data.EssenceEntry{Base: data.Base{ID: "wailing_wrath", Name: "Wailing Essence of Wrath"}, Rank: 4, Family: "wrath essence"},
			&data.EssenceEntry{Base: data.Base{ID: "deafening_wrath", Name: "Deafening Essence of Wrath"}, Rank: 7, Family: "wrath essence"},
		),
	)
	return resolver.New(snap, resolver.Options{})
}

func newTestBuilder(t *testing.T) *Builder {
	t.Helper()
	return NewBuilder(newTestResolver(t), DefaultConfig())
}

func mustOption(t *testing.T, opts []TierOption, r data.RiskTier, b data.BudgetTier) TierOption {
	t.Helper()
	route := Route{Options: opts}
	o, ok := route.Option(r, b)
	require.True(t, ok, "option %s/%s missing", r, b)
	return o
}
