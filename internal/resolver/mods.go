package resolver

import (
	"fmt"

	"github.com/udisondev/craftplan/internal/data"
)

// ModAnalysis is what the datasets tell about one mod on one item base.
type ModAnalysis struct {
	Mod          *data.ModEntry            `json:"mod"`
	Tier         data.TierBreakdown        `json:"tier"`
	SpawnWeights data.SpawnWeightBreakdown `json:"spawn_weights"`
	Spawnable    bool                      `json:"spawnable"`
	BenchOptions []*data.BenchRecipeEntry  `json:"bench_options"`
}

// AnalyseMod resolves modID and combines its tier within its group, its
// spawn weights for baseTags and influences and the bench recipes adding it.
// The mods dataset must be loaded; without bench recipes BenchOptions is
// empty.
func (r *Resolver) AnalyseMod(modID string, baseTags, influences []string) (*ModAnalysis, error) {
	e, err := r.Resolve(Mod, modID)
	if err != nil {
		return nil, err
	}
	mod, ok := e.(*data.ModEntry)
	if !ok {
		return nil, fmt.Errorf("mod %s has unexpected type %T", modID, e)
	}
	mods, _ := r.snap.Index(data.Mods)

	b := data.SpawnWeights(mod, baseTags, influences)
	a := &ModAnalysis{
		Mod:          mod,
		Tier:         data.TierBreakdownOf(mods, mod),
		SpawnWeights: b,
		Spawnable:    b.Spawnable(),
		BenchOptions: []*data.BenchRecipeEntry{},
	}
	if recipes, ok := r.snap.Index(data.BenchRecipes); ok {
		if opts := data.BenchOptions(recipes, mod); len(opts) > 0 {
			a.BenchOptions = opts
		}
	}
	return a, nil
}
