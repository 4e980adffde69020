package data

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeEssences(t *testing.T) {
	t.Parallel()

	doc := `[
		{"identifier": "deafening_wrath", "name": "Deafening Essence of Wrath", "level": 82,
		 "mods": ["+(36-40)% to Lightning Resistance"], "future_field": {"x": 1}},
		{"id": "essence_of_horror", "name": "Essence of Horror", "tier": "", "cost": 3}
	]`

	entries, err := DecodeEntries(Essences, []byte(doc))
	require.NoError(t, err)
	require.Len(t, entries, 2)

	wrath, ok := entries[0].(*EssenceEntry)
	require.True(t, ok)
	assert.Equal(t, "deafening_wrath", wrath.ID)
	assert.Equal(t, 7, wrath.Rank)
	assert.Equal(t, "deafening", wrath.Tier)
	assert.Equal(t, "wrath essence", wrath.Family)
	assert.Equal(t, 82, wrath.MinAreaLevel)
	assert.Equal(t, []string{"+(36-40)% to Lightning Resistance"}, wrath.Mods)
	assert.Equal(t, []Cost{{Currency: "Deafening Essence of Wrath", Amount: 1}}, wrath.Costs())

	horror := entries[1].(*EssenceEntry)
	assert.Equal(t, 8, horror.Rank)
	assert.Equal(t, []Cost{{Currency: "unit", Amount: 3}}, horror.Costs())
}

func TestDecodeMissingField(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		ds    Dataset
		doc   string
		index int
		field string
	}{
		{"essence without name", Essences, `[{"id": "a", "name": "A"}, {"id": "b"}]`, 1, "name"},
		{"bench without id", BenchRecipes, `[{"name": "Life"}]`, 0, "id"},
		{"harvest without name or description", HarvestCrafts, `[{"id": "h1", "tags": ["fire"]}]`, 0, "name"},
		{"atlas boss without name", Bosses, `{"atlas_bosses": [{"encounter": "x"}]}`, 0, "name"},
		{"map boss without map", Bosses, `{"map_bosses": [{"tier": 16, "bosses": ["Drox"]}]}`, 0, "map"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := DecodeEntries(tt.ds, []byte(tt.doc))
			var missing *MissingFieldError
			require.True(t, errors.As(err, &missing), "got %v", err)
			assert.Equal(t, tt.ds, missing.Dataset)
			assert.Equal(t, tt.index, missing.Index)
			assert.Equal(t, tt.field, missing.Field)
		})
	}
}

func TestDecodeInvalidDocument(t *testing.T) {
	t.Parallel()

	_, err := DecodeEntries(Mods, []byte(`{"broken": `))
	assert.Error(t, err)

	_, err = DecodeEntries(Mods, []byte(`42`))
	assert.Error(t, err)

	_, err = DecodeEntries(BenchRecipes, []byte(`[{"id": "x", "name": "X", "risk_tier": "deadly"}]`))
	assert.Error(t, err)
}

func TestDecodeBossesCurated(t *testing.T) {
	t.Parallel()

	doc := `{
		"atlas_bosses": [
			{"name": "Maven's Crucible", "aliases": ["maven", "the maven"], "encounter": "Invitation",
			 "unlock": ["Witness 10 bosses"], "notes": ["Uber variant exists"]}
		],
		"map_bosses": [
			{"map": "Burial Chambers", "tier": 3, "bosses": ["Witch of the Cave"], "unlock": []}
		]
	}`

	entries, err := DecodeEntries(Bosses, []byte(doc))
	require.NoError(t, err)
	require.Len(t, entries, 2)

	maven := entries[0].(*BossEntry)
	assert.Equal(t, "maven_crucible", maven.ID)
	assert.Equal(t, []string{"maven", "the maven"}, maven.Aliases)
	assert.Equal(t, "Invitation", maven.Encounter)

	burial := entries[1].(*BossEntry)
	assert.Equal(t, "burial_chambers_map", burial.ID)
	assert.Equal(t, 3, burial.MapTier)
	assert.Equal(t, []string{"Witch of the Cave"}, burial.Keywords())
}

func TestDecodeModsKeyedObject(t *testing.T) {
	t.Parallel()

	doc := `{
		"IncreasedLife1": {"name": "Hale", "domain": "item", "generation_type": "prefix",
			"groups": ["IncreasedLife"], "required_level": 1,
			"stats": [{"id": "base_maximum_life", "min": 3, "max": 9}],
			"spawn_weights": [{"tag": "ring", "weight": 1000}, {"tag": "default", "weight": 0}]},
		"Unnamed2": {"groups": ["Other"]}
	}`

	entries, err := DecodeEntries(Mods, []byte(doc))
	require.NoError(t, err)
	require.Len(t, entries, 2)

	life := entries[0].(*ModEntry)
	assert.Equal(t, "IncreasedLife1", life.ID)
	assert.Equal(t, "Hale", life.Name)
	assert.Equal(t, "IncreasedLife", life.GroupKey())
	assert.Equal(t, []ModStat{{ID: "base_maximum_life", Min: 3, Max: 9}}, life.Stats)
	assert.Len(t, life.SpawnWeights, 2)

	assert.Equal(t, "Unnamed2", entries[1].Info().Name)
}

func TestDecodeBenchCosts(t *testing.T) {
	t.Parallel()

	doc := `[
		{"id": "life_t1", "display": "+(15-25) to maximum Life", "master": "Crafting Bench",
		 "bench_tier": 1, "item_classes": ["Ring", "Amulet"], "keywords": ["life"],
		 "actions": {"add_explicit_mod": "EinharMasterLife1"},
		 "costs": [{"currency": "Orb of Alteration", "amount": 4}], "budget_tier": "budget"},
		{"id": "life_t3", "name": "+(56-65) to maximum Life", "mod": "EinharMasterLife3",
		 "cost": {"Metadata/Items/Currency/CurrencyRerollRare": 3}, "risk": "low"}
	]`

	entries, err := DecodeEntries(BenchRecipes, []byte(doc))
	require.NoError(t, err)
	require.Len(t, entries, 2)

	t1 := entries[0].(*BenchRecipeEntry)
	assert.Equal(t, "+(15-25) to maximum Life", t1.Name)
	assert.Equal(t, "EinharMasterLife1", t1.Mod)
	assert.Equal(t, BudgetLow, t1.Budget)
	assert.Equal(t, []Cost{{Currency: "Orb of Alteration", Amount: 4}}, t1.Costs())
	assert.True(t, t1.SupportsItemClass("Ring"))
	assert.False(t, t1.SupportsItemClass("Body Armour"))

	t3 := entries[1].(*BenchRecipeEntry)
	assert.Equal(t, RiskLow, t3.Risk)
	assert.Equal(t, []Cost{{Currency: "CurrencyRerollRare", Amount: 3}}, t3.Costs())
}

func TestDecodeHarvestLifeforce(t *testing.T) {
	t.Parallel()

	doc := `[{"identifier": "reforge_fire", "description": ["Reforge a Rare item, including a Fire modifier"],
		"groups": ["Reforge"], "lifeforce": {"vivid": 50}}]`

	entries, err := DecodeEntries(HarvestCrafts, []byte(doc))
	require.NoError(t, err)
	require.Len(t, entries, 1)

	h := entries[0].(*HarvestCraftEntry)
	assert.Equal(t, "Reforge a Rare item, including a Fire modifier", h.Name)
	assert.Equal(t, "Reforge", h.GroupKey())
	assert.Equal(t, []Cost{{Currency: "vivid lifeforce", Amount: 50}}, h.Costs())
}

func TestDecodeSimulatorSections(t *testing.T) {
	t.Parallel()

	doc := []byte(`{
		"fossils": [{"id": "pristine", "name": "Pristine Fossil", "cost": 2}],
		"metaCraftingOdds": {"prefixes_cannot_be_changed": {"label": "Prefixes Cannot Be Changed", "odds": 1}},
		"other": true
	}`)

	fossils, err := DecodeEntries(SimulatorFossil, doc)
	require.NoError(t, err)
	require.Len(t, fossils, 1)
	f := fossils[0].(*SimulatorEntry)
	assert.Equal(t, SimulatorFossil, f.Dataset())
	assert.Equal(t, SectionFossil, f.Section)
	assert.JSONEq(t, `{"id": "pristine", "name": "Pristine Fossil", "cost": 2}`, string(f.Payload))

	meta, err := DecodeEntries(SimulatorMeta, doc)
	require.NoError(t, err)
	require.Len(t, meta, 1)
	assert.Equal(t, "prefixes_cannot_be_changed", meta[0].Info().ID)
	assert.Equal(t, "Prefixes Cannot Be Changed", meta[0].Info().Name)
	assert.Equal(t, 1.0, meta[0].(*SimulatorEntry).Odds)

	bench, err := DecodeEntries(SimulatorBench, doc)
	assert.ErrorIs(t, err, ErrSectionAbsent)
	assert.Nil(t, bench)
}

func TestSlug(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "maven_crucible", Slug("Maven's Crucible"))
	assert.Equal(t, "the_shaper", Slug("The Shaper"))
}
