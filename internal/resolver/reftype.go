package resolver

import "github.com/udisondev/craftplan/internal/data"

// ReferenceType is the caller-facing tag naming the dataset an explicit
// reference points into.
type ReferenceType string

// Simulator export sections.
const (
	Fossil  ReferenceType = "fossil"
	Harvest ReferenceType = "harvest"
	Bench   ReferenceType = "bench"
	Meta    ReferenceType = "meta"
)

// Native datasets.
const (
	Boss         ReferenceType = "boss"
	Essence      ReferenceType = "essence"
	HarvestCraft ReferenceType = "harvest_craft"
	BenchRecipe  ReferenceType = "bench_recipe"
	Mod          ReferenceType = "mod"
)

// ReferenceTypes lists every accepted tag.
var ReferenceTypes = []ReferenceType{
	Fossil, Harvest, Bench, Meta,
	Boss, Essence, HarvestCraft, BenchRecipe, Mod,
}

var referenceDatasets = map[ReferenceType]data.Dataset{
	Fossil:       data.SimulatorFossil,
	Harvest:      data.SimulatorHarvest,
	Bench:        data.SimulatorBench,
	Meta:         data.SimulatorMeta,
	Boss:         data.Bosses,
	Essence:      data.Essences,
	HarvestCraft: data.HarvestCrafts,
	BenchRecipe:  data.BenchRecipes,
	Mod:          data.Mods,
}

// ParseReferenceType validates a tag. Tags match exactly; anything outside
// the enumeration is rejected with *UnknownReferenceTypeError.
func ParseReferenceType(s string) (ReferenceType, error) {
	t := ReferenceType(s)
	if _, ok := referenceDatasets[t]; !ok {
		return "", &UnknownReferenceTypeError{Type: s}
	}
	return t, nil
}

// Dataset returns the dataset backing t, or false for an unknown tag.
func (t ReferenceType) Dataset() (data.Dataset, bool) {
	ds, ok := referenceDatasets[t]
	return ds, ok
}

// ReferenceTypeOf returns the tag addressing ds.
func ReferenceTypeOf(ds data.Dataset) ReferenceType {
	for t, d := range referenceDatasets {
		if d == ds {
			return t
		}
	}
	return ""
}
