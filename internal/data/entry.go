package data

import (
	"encoding/json"
	"fmt"
	"slices"
)

// Dataset names one curated reference collection. Each dataset is backed by
// exactly one Index.
type Dataset string

const (
	Bosses           Dataset = "bosses"
	Essences         Dataset = "essences"
	HarvestCrafts    Dataset = "harvest_crafts"
	BenchRecipes     Dataset = "bench_recipes"
	Mods             Dataset = "mods"
	SimulatorFossil  Dataset = "simulator_fossil"
	SimulatorHarvest Dataset = "simulator_harvest"
	SimulatorBench   Dataset = "simulator_bench"
	SimulatorMeta    Dataset = "simulator_meta"
)

// Datasets lists every dataset in a stable order.
var Datasets = []Dataset{
	Bosses, Essences, HarvestCrafts, BenchRecipes, Mods,
	SimulatorFossil, SimulatorHarvest, SimulatorBench, SimulatorMeta,
}

// ParseDataset validates a dataset name.
func ParseDataset(s string) (Dataset, error) {
	ds := Dataset(s)
	if !slices.Contains(Datasets, ds) {
		return "", fmt.Errorf("unknown dataset %q", s)
	}
	return ds, nil
}

// IsSimulator reports whether the dataset is a section of the simulator export.
func (d Dataset) IsSimulator() bool {
	_, ok := simulatorSections[d]
	return ok
}

// SimulatorSection is the reference type tag of a simulator export entry.
type SimulatorSection string

const (
	SectionFossil  SimulatorSection = "fossil"
	SectionHarvest SimulatorSection = "harvest"
	SectionBench   SimulatorSection = "bench"
	SectionMeta    SimulatorSection = "meta"
)

var simulatorSections = map[Dataset]SimulatorSection{
	SimulatorFossil:  SectionFossil,
	SimulatorHarvest: SectionHarvest,
	SimulatorBench:   SectionBench,
	SimulatorMeta:    SectionMeta,
}

// Cost is an amount of one currency.
type Cost struct {
	Currency string  `json:"currency"`
	Amount   float64 `json:"amount"`
}

// Base carries the fields every entry shares.
type Base struct {
	ID      string     `json:"id"`
	Name    string     `json:"name"`
	Aliases []string   `json:"aliases,omitempty"`
	Risk    RiskTier   `json:"risk_tier,omitzero"`
	Budget  BudgetTier `json:"budget_tier,omitzero"`
}

// Info returns the shared fields of an entry.
func (b Base) Info() Base { return b }

// Entry is one record of a dataset. The set of implementations is closed:
// variant-specific fields are reached through a type switch on the concrete
// *XxxEntry types.
type Entry interface {
	Info() Base
	Dataset() Dataset
	// GroupKey identifies interchangeable entries of the same dataset,
	// e.g. every bench recipe that adds the same mod.
	GroupKey() string
	// Costs is nil when the dataset carries no cost information for the entry.
	Costs() []Cost
	// Keywords are extra match texts besides name and aliases.
	Keywords() []string

	isEntry()
}

// BossEntry is an atlas encounter or a map boss.
type BossEntry struct {
	Base
	Encounter string   `json:"encounter,omitempty"`
	Unlock    []string `json:"unlock,omitempty"`
	Notes     []string `json:"notes,omitempty"`
	MapTier   int      `json:"map_tier,omitempty"`
	Bosses    []string `json:"bosses,omitempty"`
}

func (e *BossEntry) Dataset() Dataset   { return Bosses }
func (e *BossEntry) GroupKey() string   { return e.ID }
func (e *BossEntry) Costs() []Cost      { return nil }
func (e *BossEntry) Keywords() []string { return e.Bosses }
func (e *BossEntry) isEntry()           {}

// EssenceEntry is one tier of an essence.
type EssenceEntry struct {
	Base
	Tier                 string   `json:"tier"`
	Rank                 int      `json:"rank"`
	Family               string   `json:"family"`
	MinAreaLevel         int      `json:"min_area_level,omitempty"`
	ItemLevelRestriction int      `json:"item_level_restriction,omitempty"`
	SpawnLevelMin        int      `json:"spawn_level_min,omitempty"`
	SpawnLevelMax        int      `json:"spawn_level_max,omitempty"`
	Mods                 []string `json:"mods,omitempty"`
	Cost                 []Cost   `json:"cost,omitempty"`
}

func (e *EssenceEntry) Dataset() Dataset   { return Essences }
func (e *EssenceEntry) GroupKey() string   { return e.Family }
func (e *EssenceEntry) Keywords() []string { return nil }
func (e *EssenceEntry) isEntry()           {}

// Costs defaults to one essence of this kind when the dataset has no price.
func (e *EssenceEntry) Costs() []Cost {
	if len(e.Cost) > 0 {
		return e.Cost
	}
	return []Cost{{Currency: e.Name, Amount: 1}}
}

// HarvestCraftEntry is a Horticrafting/Harvest craft.
type HarvestCraftEntry struct {
	Base
	Descriptions []string `json:"descriptions,omitempty"`
	Groups       []string `json:"groups,omitempty"`
	Tags         []string `json:"tags,omitempty"`
	ItemClasses  []string `json:"item_classes,omitempty"`
	Cost         []Cost   `json:"cost,omitempty"`
}

func (e *HarvestCraftEntry) Dataset() Dataset   { return HarvestCrafts }
func (e *HarvestCraftEntry) Costs() []Cost      { return e.Cost }
func (e *HarvestCraftEntry) Keywords() []string { return nil }
func (e *HarvestCraftEntry) isEntry()           {}

func (e *HarvestCraftEntry) GroupKey() string {
	if len(e.Groups) > 0 {
		return e.Groups[0]
	}
	return e.ID
}

// BenchRecipeEntry is a crafting bench option.
type BenchRecipeEntry struct {
	Base
	Master      string   `json:"master"`
	BenchTier   int      `json:"bench_tier"`
	ItemClasses []string `json:"item_classes,omitempty"`
	Action      string   `json:"action,omitempty"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"keywords,omitempty"`
	Mod         string   `json:"mod,omitempty"`
	Cost        []Cost   `json:"costs,omitempty"`
}

func (e *BenchRecipeEntry) Dataset() Dataset   { return BenchRecipes }
func (e *BenchRecipeEntry) Costs() []Cost      { return e.Cost }
func (e *BenchRecipeEntry) Keywords() []string { return e.Tags }
func (e *BenchRecipeEntry) isEntry()           {}

func (e *BenchRecipeEntry) GroupKey() string {
	if e.Mod != "" {
		return e.Mod
	}
	return e.ID
}

// SupportsItemClass reports whether the recipe can be applied to class.
// An empty class list means every class.
func (e *BenchRecipeEntry) SupportsItemClass(class string) bool {
	return len(e.ItemClasses) == 0 || slices.Contains(e.ItemClasses, class)
}

// ModStat is one stat line of a mod.
type ModStat struct {
	ID  string `json:"id"`
	Min int    `json:"min"`
	Max int    `json:"max"`
}

// SpawnWeightEntry is the weight of a mod for one item tag.
type SpawnWeightEntry struct {
	Tag    string `json:"tag"`
	Weight int    `json:"weight"`
}

// ModEntry is an item modifier with its spawn weights.
type ModEntry struct {
	Base
	Domain         string             `json:"domain,omitempty"`
	GenerationType string             `json:"generation_type,omitempty"`
	Groups         []string           `json:"groups,omitempty"`
	RequiredLevel  int                `json:"required_level,omitempty"`
	Stats          []ModStat          `json:"stats,omitempty"`
	SpawnWeights   []SpawnWeightEntry `json:"spawn_weights,omitempty"`
}

func (e *ModEntry) Dataset() Dataset   { return Mods }
func (e *ModEntry) Costs() []Cost      { return nil }
func (e *ModEntry) Keywords() []string { return nil }
func (e *ModEntry) isEntry()           {}

func (e *ModEntry) GroupKey() string {
	if len(e.Groups) > 0 {
		return e.Groups[0]
	}
	return e.ID
}

// SimulatorEntry is one record of the crafting simulator export.
type SimulatorEntry struct {
	Base
	Section SimulatorSection `json:"reference_type"`
	Odds    float64          `json:"odds,omitempty"`
	Cost    []Cost           `json:"cost,omitempty"`
	Payload json.RawMessage  `json:"payload,omitempty"`
}

func (e *SimulatorEntry) Costs() []Cost      { return e.Cost }
func (e *SimulatorEntry) GroupKey() string   { return e.ID }
func (e *SimulatorEntry) Keywords() []string { return nil }
func (e *SimulatorEntry) isEntry()           {}

func (e *SimulatorEntry) Dataset() Dataset {
	for ds, sec := range simulatorSections {
		if sec == e.Section {
			return ds
		}
	}
	return SimulatorMeta
}

// NewEntry returns an empty entry of the variant stored in ds, for decoding
// a serialized entry back into its concrete type.
func NewEntry(ds Dataset) (Entry, error) {
	switch ds {
	case Bosses:
		return &BossEntry{}, nil
	case Essences:
		return &EssenceEntry{}, nil
	case HarvestCrafts:
		return &HarvestCraftEntry{}, nil
	case BenchRecipes:
		return &BenchRecipeEntry{}, nil
	case Mods:
		return &ModEntry{}, nil
	}
	if sec, ok := simulatorSections[ds]; ok {
		return &SimulatorEntry{Section: sec}, nil
	}
	return nil, fmt.Errorf("unknown dataset %q", ds)
}

// Key returns "dataset/id", unique across all datasets.
func Key(e Entry) string {
	return string(e.Dataset()) + "/" + e.Info().ID
}
