package data

import (
	"cmp"
	"slices"
	"strings"
)

// SpawnWeightBreakdown is the spawn weight of a mod for one item base.
type SpawnWeightBreakdown struct {
	Relevant    []SpawnWeightEntry `json:"relevant_tags"`
	TotalWeight int                `json:"total_weight"`
	Disabled    []string           `json:"disabled_tags"`
}

// Spawnable reports whether any relevant tag has a positive weight.
func (b SpawnWeightBreakdown) Spawnable() bool {
	for _, w := range b.Relevant {
		if w.Weight > 0 {
			return true
		}
	}
	return false
}

// SpawnWeights computes which of mod's spawn weights apply to an item with
// baseTags and the given influences. Influences add "<tag>_<influence>" tags;
// the "default" tag always applies.
func SpawnWeights(mod *ModEntry, baseTags, influences []string) SpawnWeightBreakdown {
	check := make(map[string]struct{}, len(baseTags)*(1+len(influences))+1)
	for _, tag := range baseTags {
		check[tag] = struct{}{}
		for _, inf := range influences {
			check[tag+"_"+strings.ToLower(inf)] = struct{}{}
		}
	}
	check["default"] = struct{}{}

	var b SpawnWeightBreakdown
	for _, w := range mod.SpawnWeights {
		if _, ok := check[w.Tag]; ok {
			b.Relevant = append(b.Relevant, w)
			b.TotalWeight += max(w.Weight, 0)
		} else if w.Weight == 0 {
			b.Disabled = append(b.Disabled, w.Tag)
		}
	}
	slices.SortStableFunc(b.Relevant, func(x, y SpawnWeightEntry) int {
		return cmp.Compare(y.Weight, x.Weight)
	})
	return b
}
