package plan

import (
	"cmp"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/udisondev/craftplan/internal/data"
	"github.com/udisondev/craftplan/internal/resolver"
)

// TierConfig controls how entries are classified into tiers.
type TierConfig struct {
	// BudgetMax is the highest weighted cost still classified as budget.
	BudgetMax float64
	// StandardMax is the highest weighted cost still classified as standard.
	StandardMax float64
	// CurrencyWeights converts amounts of a currency into a common unit.
	// Keys are matched case-insensitively; missing currencies weigh 1.
	CurrencyWeights map[string]float64
	// DefaultRisk is the risk of entries without a dataset or caller tier.
	DefaultRisk map[data.Dataset]data.RiskTier
}

// DefaultTierConfig returns the built-in thresholds and risk defaults.
func DefaultTierConfig() TierConfig {
	return TierConfig{
		BudgetMax:       10,
		StandardMax:     100,
		CurrencyWeights: map[string]float64{},
		DefaultRisk: map[data.Dataset]data.RiskTier{
			data.Bosses:           data.RiskHigh,
			data.Essences:         data.RiskLow,
			data.HarvestCrafts:    data.RiskMedium,
			data.BenchRecipes:     data.RiskLow,
			data.Mods:             data.RiskLow,
			data.SimulatorFossil:  data.RiskMedium,
			data.SimulatorHarvest: data.RiskMedium,
			data.SimulatorBench:   data.RiskLow,
			data.SimulatorMeta:    data.RiskLow,
		},
	}
}

// TierGenerator builds the risk × budget table of a route.
// It reads the snapshot only and is safe for concurrent use.
type TierGenerator struct {
	snap    *resolver.Snapshot
	cfg     TierConfig
	weights map[string]float64
}

// NewTierGenerator returns a generator drawing sibling options from snap.
func NewTierGenerator(snap *resolver.Snapshot, cfg TierConfig) *TierGenerator {
	weights := make(map[string]float64, len(cfg.CurrencyWeights))
	for c, w := range cfg.CurrencyWeights {
		weights[strings.ToLower(c)] = w
	}
	if cfg.DefaultRisk == nil {
		cfg.DefaultRisk = DefaultTierConfig().DefaultRisk
	}
	return &TierGenerator{snap: snap, cfg: cfg, weights: weights}
}

// option is one way to carry out a step.
type option struct {
	entry      data.Entry
	confidence float64
	risk       data.RiskTier
	budget     data.BudgetTier // BudgetUnset fits every budget tier
	cost       []data.Cost
	total      float64
}

// Generate returns exactly one TierOption per requested (risk, budget) pair,
// risk tiers outer and budget tiers inner. Duplicate tiers are ignored and
// an empty list means every tier. A pair that some matched step cannot
// meet is returned unsatisfiable with the reason.
func (g *TierGenerator) Generate(route []Step, risks []data.RiskTier, budgets []data.BudgetTier) []TierOption {
	risks = normalizeTiers(risks, data.RiskTiers)
	budgets = normalizeTiers(budgets, data.BudgetTiers)

	perStep := make([][]option, len(route))
	var unpriced []int
	for i, s := range route {
		perStep[i] = g.stepOptions(s)
		if perStep[i] == nil {
			unpriced = append(unpriced, i+1)
		}
	}

	out := make([]TierOption, 0, len(risks)*len(budgets))
	for _, r := range risks {
		for _, b := range budgets {
			out = append(out, g.combine(perStep, r, b, unpriced))
		}
	}
	return out
}

func (g *TierGenerator) combine(perStep [][]option, risk data.RiskTier, budget data.BudgetTier, unpriced []int) TierOption {
	opt := TierOption{Risk: risk, Budget: budget, Unpriced: slices.Clone(unpriced)}

	var reasons []string
	for i, candidates := range perStep {
		if candidates == nil {
			continue
		}
		best, ok := pick(candidates, risk, budget)
		if !ok {
			reasons = append(reasons, infeasibleReason(candidates, risk, budget, i+1))
			continue
		}
		opt.Choices = append(opt.Choices, Choice{
			Step:    i + 1,
			Dataset: best.entry.Dataset(),
			ID:      best.entry.Info().ID,
			Name:    best.entry.Info().Name,
			Risk:    best.risk,
			Budget:  best.budget,
			Cost:    best.cost,
		})
	}

	if len(reasons) > 0 {
		opt.Reason = strings.Join(reasons, "; ")
		opt.Choices = nil
		return opt
	}

	opt.Satisfiable = true
	sums := make(map[string]float64)
	for _, c := range opt.Choices {
		for _, cost := range c.Cost {
			sums[cost.Currency] += cost.Amount
		}
		opt.ObservedRisk = max(opt.ObservedRisk, c.Risk)
	}
	for _, currency := range slices.Sorted(maps.Keys(sums)) {
		opt.EstimatedCost = append(opt.EstimatedCost, data.Cost{Currency: currency, Amount: sums[currency]})
	}
	opt.Total = g.weigh(opt.EstimatedCost)
	return opt
}

// pick returns the cheapest option fitting both tiers; ties go to the
// higher confidence, then the lower id.
func pick(candidates []option, risk data.RiskTier, budget data.BudgetTier) (option, bool) {
	var best option
	found := false
	for _, c := range candidates {
		if c.risk > risk || (c.budget != data.BudgetUnset && c.budget != budget) {
			continue
		}
		if !found || cheaper(c, best) {
			best, found = c, true
		}
	}
	return best, found
}

func cheaper(a, b option) bool {
	if c := cmp.Compare(a.total, b.total); c != 0 {
		return c < 0
	}
	if a.confidence != b.confidence {
		return a.confidence > b.confidence
	}
	return a.entry.Info().ID < b.entry.Info().ID
}

func infeasibleReason(candidates []option, risk data.RiskTier, budget data.BudgetTier, step int) string {
	subject := subjectOf(candidates[0].entry)
	for _, c := range candidates {
		if c.budget == data.BudgetUnset || c.budget == budget {
			return fmt.Sprintf("no %s-risk option within %s tier for %s (step %d)", risk, budget, subject, step)
		}
	}
	return fmt.Sprintf("no %s-tier option for %s (step %d)", budget, subject, step)
}

func subjectOf(e data.Entry) string {
	if b, ok := e.(*data.BenchRecipeEntry); ok && b.Mod != "" {
		return fmt.Sprintf("mod %q", b.Mod)
	}
	return fmt.Sprintf("%q", e.Info().Name)
}

// stepOptions returns the primary entry of s and its group siblings, or nil
// for a step without annotations.
func (g *TierGenerator) stepOptions(s Step) []option {
	primary, ok := s.Primary()
	if !ok {
		return nil
	}

	entries := []data.Entry{primary.Entry}
	if idx, ok := g.snap.Index(primary.Entry.Dataset()); ok {
		for _, sib := range idx.Group(primary.Entry.GroupKey()) {
			if sib.Info().ID != primary.Entry.Info().ID {
				entries = append(entries, sib)
			}
		}
	}

	out := make([]option, 0, len(entries))
	for _, e := range entries {
		cost := e.Costs()
		total := g.weigh(cost)
		out = append(out, option{
			entry:      e,
			confidence: primary.Confidence,
			risk:       g.riskOf(e, s.Risk),
			budget:     g.budgetOf(e, cost, total),
			cost:       cost,
			total:      total,
		})
	}
	return out
}

func (g *TierGenerator) riskOf(e data.Entry, hint data.RiskTier) data.RiskTier {
	if r := e.Info().Risk; r != data.RiskUnset {
		return r
	}
	if hint != data.RiskUnset {
		return hint
	}
	if r, ok := g.cfg.DefaultRisk[e.Dataset()]; ok && r != data.RiskUnset {
		return r
	}
	return data.RiskMedium
}

func (g *TierGenerator) budgetOf(e data.Entry, cost []data.Cost, total float64) data.BudgetTier {
	if b := e.Info().Budget; b != data.BudgetUnset {
		return b
	}
	if ess, ok := e.(*data.EssenceEntry); ok && len(ess.Cost) == 0 {
		return essenceBudget(ess.Rank)
	}
	if len(cost) == 0 {
		return data.BudgetUnset
	}
	switch {
	case total <= g.cfg.BudgetMax:
		return data.BudgetLow
	case total <= g.cfg.StandardMax:
		return data.BudgetStandard
	default:
		return data.BudgetLuxury
	}
}

// essenceBudget maps essence tiers: up to Wailing is budget, Screaming and
// Shrieking standard, Deafening and the corrupted essences luxury.
func essenceBudget(rank int) data.BudgetTier {
	switch {
	case rank <= 0:
		return data.BudgetUnset
	case rank <= 4:
		return data.BudgetLow
	case rank <= 6:
		return data.BudgetStandard
	default:
		return data.BudgetLuxury
	}
}

func (g *TierGenerator) weigh(costs []data.Cost) float64 {
	var total float64
	for _, c := range costs {
		w, ok := g.weights[strings.ToLower(c.Currency)]
		if !ok {
			w = 1
		}
		total += w * c.Amount
	}
	return total
}

func normalizeTiers[T comparable](requested, all []T) []T {
	if len(requested) == 0 {
		return slices.Clone(all)
	}
	out := make([]T, 0, len(requested))
	for _, t := range requested {
		if !slices.Contains(out, t) {
			out = append(out, t)
		}
	}
	return out
}
