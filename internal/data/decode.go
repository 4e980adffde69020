package data

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/udisondev/craftplan/internal/normalize"
)

// Essence tier names in ascending strength. Rank 8 is reserved for the
// corruption-only essences.
var essenceTierRank = map[string]int{
	"whispering": 1,
	"muttering":  2,
	"weeping":    3,
	"wailing":    4,
	"screaming":  5,
	"shrieking":  6,
	"deafening":  7,
}

var corruptedEssences = map[string]struct{}{
	"horror": {}, "hysteria": {}, "insanity": {}, "delirium": {},
}

const corruptedEssenceRank = 8

// Section keys the simulator export has used over time.
var simulatorSectionKeys = map[SimulatorSection][]string{
	SectionFossil:  {"fossils", "Fossils", "fossil"},
	SectionHarvest: {"harvest", "harvestCrafts", "Harvest", "HarvestCrafts"},
	SectionBench:   {"bench", "benchRecipes", "Bench", "recipes", "craftingBench"},
	SectionMeta:    {"metaCraftingOdds", "meta", "metaCraft", "metaCrafting", "meta_crafting_odds"},
}

// DecodeEntries decodes one dataset document. Unknown fields are ignored;
// a missing mandatory field fails with *MissingFieldError.
//
// Simulator datasets take the whole simulator bundle and decode their section.
func DecodeEntries(ds Dataset, doc []byte) ([]Entry, error) {
	if !gjson.ValidBytes(doc) {
		return nil, fmt.Errorf("dataset %s: invalid JSON document", ds)
	}
	root := gjson.ParseBytes(doc)

	switch ds {
	case Bosses:
		return decodeBosses(root)
	case Essences:
		return decodeEach(ds, root, decodeEssence)
	case HarvestCrafts:
		return decodeEach(ds, root, decodeHarvest)
	case BenchRecipes:
		return decodeEach(ds, root, decodeBench)
	case Mods:
		return decodeEach(ds, root, decodeMod)
	case SimulatorFossil, SimulatorHarvest, SimulatorBench, SimulatorMeta:
		return decodeSimulator(ds, root)
	}
	return nil, fmt.Errorf("unknown dataset %q", ds)
}

type entryDecoder func(ds Dataset, pos int, key string, obj gjson.Result) (Entry, error)

// decodeEach accepts an array of objects or an object keyed by id.
func decodeEach(ds Dataset, section gjson.Result, decode entryDecoder) ([]Entry, error) {
	var (
		entries []Entry
		err     error
		pos     int
	)
	switch {
	case section.IsArray(), section.IsObject():
		section.ForEach(func(k, v gjson.Result) bool {
			key := ""
			if section.IsObject() {
				key = k.String()
			}
			var e Entry
			e, err = decode(ds, pos, key, v)
			if err != nil {
				return false
			}
			entries = append(entries, e)
			pos++
			return true
		})
	default:
		return nil, fmt.Errorf("dataset %s: expected array or object, got %s", ds, section.Type)
	}
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func decodeBase(ds Dataset, pos int, key string, obj gjson.Result, nameKeys ...string) (Base, error) {
	if !obj.IsObject() {
		return Base{}, fmt.Errorf("dataset %s: entry %d is not an object", ds, pos)
	}
	b := Base{
		ID:      firstString(obj, "id", "identifier", "key"),
		Name:    firstString(obj, nameKeys...),
		Aliases: stringList(obj, "aliases"),
	}
	if b.ID == "" {
		b.ID = key
	}
	if b.ID == "" {
		return Base{}, &MissingFieldError{Dataset: ds, Index: pos, Field: "id"}
	}

	var err error
	if b.Risk, err = ParseRisk(firstString(obj, "risk_tier", "risk_level", "risk")); err != nil {
		return Base{}, fmt.Errorf("dataset %s: entry %q: %w", ds, b.ID, err)
	}
	if b.Budget, err = ParseBudget(firstString(obj, "budget_tier", "budget")); err != nil {
		return Base{}, fmt.Errorf("dataset %s: entry %q: %w", ds, b.ID, err)
	}
	return b, nil
}

func requireName(ds Dataset, pos int, b Base) error {
	if b.Name == "" {
		return &MissingFieldError{Dataset: ds, Index: pos, Field: "name"}
	}
	return nil
}

// decodeBosses accepts a flat array of entries or the curated
// {"atlas_bosses": [...], "map_bosses": [...]} document, whose entries carry no
// ids and get one derived from their name.
func decodeBosses(root gjson.Result) ([]Entry, error) {
	atlas, maps := root.Get("atlas_bosses"), root.Get("map_bosses")
	if !root.IsObject() || (!atlas.Exists() && !maps.Exists()) {
		return decodeEach(Bosses, root, decodeBoss)
	}

	var entries []Entry
	pos := 0
	var err error
	atlas.ForEach(func(_, v gjson.Result) bool {
		name := v.Get("name").String()
		if name == "" {
			err = &MissingFieldError{Dataset: Bosses, Index: pos, Field: "name"}
			return false
		}
		var e Entry
		e, err = decodeBoss(Bosses, pos, Slug(name), v)
		if err != nil {
			return false
		}
		entries = append(entries, e)
		pos++
		return true
	})
	if err != nil {
		return nil, err
	}
	maps.ForEach(func(_, v gjson.Result) bool {
		mapName := v.Get("map").String()
		if mapName == "" {
			err = &MissingFieldError{Dataset: Bosses, Index: pos, Field: "map"}
			return false
		}
		boss := &BossEntry{
			Base: Base{
				ID:   Slug(mapName) + "_map",
				Name: mapName,
			},
			MapTier: int(v.Get("tier").Int()),
			Bosses:  stringList(v, "bosses"),
			Unlock:  stringList(v, "unlock"),
		}
		entries = append(entries, boss)
		pos++
		return true
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func decodeBoss(ds Dataset, pos int, key string, obj gjson.Result) (Entry, error) {
	b, err := decodeBase(ds, pos, key, obj, "name", "map")
	if err != nil {
		return nil, err
	}
	if err := requireName(ds, pos, b); err != nil {
		return nil, err
	}
	return &BossEntry{
		Base:      b,
		Encounter: obj.Get("encounter").String(),
		Unlock:    stringList(obj, "unlock"),
		Notes:     stringList(obj, "notes"),
		MapTier:   int(firstInt(obj, "map_tier", "tier")),
		Bosses:    stringList(obj, "bosses"),
	}, nil
}

func decodeEssence(ds Dataset, pos int, key string, obj gjson.Result) (Entry, error) {
	b, err := decodeBase(ds, pos, key, obj, "name")
	if err != nil {
		return nil, err
	}
	if err := requireName(ds, pos, b); err != nil {
		return nil, err
	}

	e := &EssenceEntry{
		Base:                 b,
		Tier:                 firstString(obj, "tier"),
		MinAreaLevel:         int(firstInt(obj, "level", "min_area_level", "drop_level")),
		ItemLevelRestriction: int(firstInt(obj, "item_level_restriction")),
		SpawnLevelMin:        int(firstInt(obj, "spawn_level_min")),
		SpawnLevelMax:        int(firstInt(obj, "spawn_level_max")),
		Mods:                 stringList(obj, "mods"),
		Cost:                 decodeCosts(obj),
	}
	e.Rank, e.Family = essenceRank(e.Name, e.Tier)
	if e.Tier == "" && e.Rank > 0 && e.Rank < corruptedEssenceRank {
		e.Tier = tierNameForRank(e.Rank)
	}
	return e, nil
}

// essenceRank derives the tier rank and the family key from an essence name
// such as "Deafening Essence of Wrath" (rank 7, family "wrath essence").
func essenceRank(name, tier string) (int, string) {
	tokens := normalize.Tokens(normalize.Key(name))
	tier = strings.ToLower(strings.TrimSpace(tier))
	rank := essenceTierRank[tier]
	if n, err := strconv.Atoi(tier); err == nil && n > 0 {
		rank = n
	}

	if len(tokens) > 0 {
		if r, ok := essenceTierRank[tokens[0]]; ok {
			if rank == 0 {
				rank = r
			}
			tokens = tokens[1:]
		}
	}
	for _, t := range tokens {
		if _, ok := corruptedEssences[t]; ok && rank == 0 {
			rank = corruptedEssenceRank
		}
	}
	return rank, strings.Join(tokens, " ")
}

func tierNameForRank(rank int) string {
	for name, r := range essenceTierRank {
		if r == rank {
			return name
		}
	}
	return ""
}

func decodeHarvest(ds Dataset, pos int, key string, obj gjson.Result) (Entry, error) {
	b, err := decodeBase(ds, pos, key, obj, "name")
	if err != nil {
		return nil, err
	}
	descriptions := stringList(obj, "description")
	if len(descriptions) == 0 {
		descriptions = stringList(obj, "descriptions")
	}
	if b.Name == "" && len(descriptions) > 0 {
		b.Name = descriptions[0]
	}
	if err := requireName(ds, pos, b); err != nil {
		return nil, err
	}
	return &HarvestCraftEntry{
		Base:         b,
		Descriptions: descriptions,
		Groups:       stringList(obj, "groups"),
		Tags:         stringList(obj, "tags"),
		ItemClasses:  stringList(obj, "item_classes"),
		Cost:         decodeCosts(obj),
	}, nil
}

func decodeBench(ds Dataset, pos int, key string, obj gjson.Result) (Entry, error) {
	b, err := decodeBase(ds, pos, key, obj, "name", "display")
	if err != nil {
		return nil, err
	}
	if err := requireName(ds, pos, b); err != nil {
		return nil, err
	}
	mod := firstString(obj, "mod", "mod_id", "actions.add_explicit_mod")
	return &BenchRecipeEntry{
		Base:        b,
		Master:      firstString(obj, "master"),
		BenchTier:   int(firstInt(obj, "bench_tier", "tier")),
		ItemClasses: stringList(obj, "item_classes"),
		Action:      firstString(obj, "action"),
		Description: firstString(obj, "description"),
		Tags:        stringList(obj, "keywords"),
		Mod:         mod,
		Cost:        decodeCosts(obj),
	}, nil
}

func decodeMod(ds Dataset, pos int, key string, obj gjson.Result) (Entry, error) {
	b, err := decodeBase(ds, pos, key, obj, "name")
	if err != nil {
		return nil, err
	}
	// Many mods are unnamed; the id is the only stable label they have.
	if b.Name == "" {
		b.Name = b.ID
	}

	m := &ModEntry{
		Base:           b,
		Domain:         firstString(obj, "domain"),
		GenerationType: firstString(obj, "generation_type"),
		Groups:         stringList(obj, "groups"),
		RequiredLevel:  int(firstInt(obj, "required_level")),
	}
	if len(m.Groups) == 0 {
		m.Groups = stringList(obj, "group")
	}
	obj.Get("stats").ForEach(func(_, s gjson.Result) bool {
		m.Stats = append(m.Stats, ModStat{
			ID:  s.Get("id").String(),
			Min: int(s.Get("min").Int()),
			Max: int(s.Get("max").Int()),
		})
		return true
	})
	obj.Get("spawn_weights").ForEach(func(_, w gjson.Result) bool {
		if tag := w.Get("tag").String(); tag != "" {
			m.SpawnWeights = append(m.SpawnWeights, SpawnWeightEntry{Tag: tag, Weight: int(w.Get("weight").Int())})
		}
		return true
	})
	return m, nil
}

func decodeSimulator(ds Dataset, root gjson.Result) ([]Entry, error) {
	section := simulatorSections[ds]
	var body gjson.Result
	for _, k := range simulatorSectionKeys[section] {
		if v := root.Get(k); v.Exists() {
			body = v
			break
		}
	}
	if !body.Exists() {
		return nil, fmt.Errorf("dataset %s: %w", ds, ErrSectionAbsent)
	}

	decode := func(ds Dataset, pos int, key string, v gjson.Result) (Entry, error) {
		if !v.IsObject() {
			// Scalar keyed values carry only an id.
			if key == "" {
				return nil, &MissingFieldError{Dataset: ds, Index: pos, Field: "id"}
			}
			return &SimulatorEntry{
				Base:    Base{ID: key, Name: key},
				Section: section,
				Payload: json.RawMessage(v.Raw),
			}, nil
		}
		b, err := decodeBase(ds, pos, key, v, "name", "label", "slug")
		if err != nil {
			return nil, err
		}
		if b.Name == "" {
			b.Name = b.ID
		}
		return &SimulatorEntry{
			Base:    b,
			Section: section,
			Odds:    firstFloat(v, "odds", "chance", "probability"),
			Cost:    decodeCosts(v),
			Payload: json.RawMessage(v.Raw),
		}, nil
	}
	return decodeEach(ds, body, decode)
}

// decodeCosts accepts "costs"/"cost" as [{currency, amount}], {currency: amount}
// or a bare number, plus a harvest "lifeforce" {color: amount} object.
func decodeCosts(obj gjson.Result) []Cost {
	var costs []Cost
	for _, k := range []string{"costs", "cost"} {
		v := obj.Get(k)
		switch {
		case v.IsArray():
			v.ForEach(func(_, c gjson.Result) bool {
				cur := firstString(c, "currency", "currency_id", "name")
				if cur != "" {
					costs = append(costs, Cost{Currency: cur, Amount: c.Get("amount").Float()})
				}
				return true
			})
		case v.IsObject():
			v.ForEach(func(cur, amount gjson.Result) bool {
				costs = append(costs, Cost{Currency: currencyName(cur.String()), Amount: amount.Float()})
				return true
			})
		case v.Type == gjson.Number:
			costs = append(costs, Cost{Currency: "unit", Amount: v.Float()})
		}
		if len(costs) > 0 {
			break
		}
	}
	obj.Get("lifeforce").ForEach(func(color, amount gjson.Result) bool {
		costs = append(costs, Cost{Currency: color.String() + " lifeforce", Amount: amount.Float()})
		return true
	})
	return costs
}

// currencyName turns a metadata path such as "Metadata/Items/Currency/CurrencyRerollRare"
// into its last segment.
func currencyName(id string) string {
	if i := strings.LastIndexByte(id, '/'); i >= 0 {
		return id[i+1:]
	}
	return id
}

// Slug derives a stable id from a display name: "Maven's Crucible" -> "maven_crucible".
func Slug(name string) string {
	return strings.ReplaceAll(normalize.Key(name), " ", "_")
}

func firstString(obj gjson.Result, keys ...string) string {
	for _, k := range keys {
		v := obj.Get(k)
		if !v.Exists() {
			continue
		}
		if v.IsArray() {
			if first := v.Get("0"); first.Exists() && first.String() != "" {
				return strings.TrimSpace(first.String())
			}
			continue
		}
		if s := strings.TrimSpace(v.String()); s != "" {
			return s
		}
	}
	return ""
}

func firstInt(obj gjson.Result, keys ...string) int64 {
	for _, k := range keys {
		if v := obj.Get(k); v.Exists() {
			return v.Int()
		}
	}
	return 0
}

func firstFloat(obj gjson.Result, keys ...string) float64 {
	for _, k := range keys {
		if v := obj.Get(k); v.Exists() {
			return v.Float()
		}
	}
	return 0
}

// stringList reads a string array, a single string or an object's string values.
func stringList(obj gjson.Result, key string) []string {
	v := obj.Get(key)
	switch {
	case !v.Exists():
		return nil
	case v.IsArray(), v.IsObject():
		var out []string
		v.ForEach(func(_, s gjson.Result) bool {
			if str := strings.TrimSpace(s.String()); str != "" && s.Type == gjson.String {
				out = append(out, str)
			}
			return true
		})
		return out
	default:
		if s := strings.TrimSpace(v.String()); s != "" {
			return []string{s}
		}
		return nil
	}
}
