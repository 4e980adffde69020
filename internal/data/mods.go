package data

import (
	"cmp"
	"slices"
)

// ModTier is one member of a mod group.
type ModTier struct {
	Tier          int       `json:"tier"`
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	RequiredLevel int       `json:"required_level"`
	Stats         []ModStat `json:"stats,omitempty"`
}

// TierBreakdown ranks a mod among the mods sharing its primary group.
type TierBreakdown struct {
	Group      string    `json:"group"`
	Tier       int       `json:"tier"`
	TotalTiers int       `json:"total_tiers"`
	Tiers      []ModTier `json:"tiers"`
}

// TierBreakdownOf ranks mod within its primary group, the first of its
// groups or its id when it has none. Members of mods are ordered by required
// level, then generation type, then id; tier 1 is the lowest required level.
// Tier is 0 when mod itself is not part of mods.
func TierBreakdownOf(mods *Index, mod *ModEntry) TierBreakdown {
	group := mod.GroupKey()

	var members []*ModEntry
	for _, e := range mods.entries {
		m, ok := e.(*ModEntry)
		if !ok {
			continue
		}
		if slices.Contains(m.Groups, group) || (len(m.Groups) == 0 && m.ID == group) {
			members = append(members, m)
		}
	}
	slices.SortFunc(members, func(a, b *ModEntry) int {
		return cmp.Or(
			cmp.Compare(a.RequiredLevel, b.RequiredLevel),
			cmp.Compare(a.GenerationType, b.GenerationType),
			cmp.Compare(a.ID, b.ID),
		)
	})

	b := TierBreakdown{Group: group, TotalTiers: len(members), Tiers: make([]ModTier, len(members))}
	for i, m := range members {
		b.Tiers[i] = ModTier{Tier: i + 1, ID: m.ID, Name: m.Name, RequiredLevel: m.RequiredLevel, Stats: m.Stats}
		if m.ID == mod.ID {
			b.Tier = i + 1
		}
	}
	return b
}

// BenchOptions returns the bench recipes that add mod, matched by mod id or
// display name, sorted by id.
func BenchOptions(recipes *Index, mod *ModEntry) []*BenchRecipeEntry {
	keys := []string{mod.ID}
	if mod.Name != "" && mod.Name != mod.ID {
		keys = append(keys, mod.Name)
	}

	var out []*BenchRecipeEntry
	for _, key := range keys {
		for _, e := range recipes.Group(key) {
			if r, ok := e.(*BenchRecipeEntry); ok {
				out = append(out, r)
			}
		}
	}
	slices.SortFunc(out, func(a, b *BenchRecipeEntry) int { return cmp.Compare(a.ID, b.ID) })
	return slices.CompactFunc(out, func(a, b *BenchRecipeEntry) bool { return a.ID == b.ID })
}
