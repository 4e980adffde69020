package plan

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/udisondev/craftplan/internal/data"
	"github.com/udisondev/craftplan/internal/resolver"
)

// ErrInvalidTier is returned by Build for a tier outside the enumeration.
var ErrInvalidTier = errors.New("invalid tier")

// Config tunes matching and route assembly.
type Config struct {
	MinConfidence  float64
	MaxAnnotations int
	// AlternativeDelta is how far below the top match a runner-up from
	// another dataset may score and still open an alternative route.
	AlternativeDelta float64
	// MaxRoutes caps the alternative routes of a plan.
	MaxRoutes int
	Tiers     TierConfig
}

// DefaultConfig returns the built-in matching settings.
func DefaultConfig() Config {
	return Config{
		MinConfidence:    0.6,
		MaxAnnotations:   3,
		AlternativeDelta: 0.1,
		MaxRoutes:        8,
		Tiers:            DefaultTierConfig(),
	}
}

// Builder turns caller steps into a Plan.
type Builder struct {
	annotator *Annotator
	tiers     *TierGenerator
	cfg       Config
}

// NewBuilder returns a builder reading through res.
func NewBuilder(res *resolver.Resolver, cfg Config) *Builder {
	return &Builder{
		annotator: NewAnnotator(res, cfg.MinConfidence, cfg.MaxAnnotations),
		tiers:     NewTierGenerator(res.Snapshot(), cfg.Tiers),
		cfg:       cfg,
	}
}

// Annotator returns the annotator the builder uses.
func (b *Builder) Annotator() *Annotator { return b.annotator }

// Build annotates steps, generates the tier table of the primary route and
// of every alternative route. Empty tier lists mean every tier. It fails
// only on an invalid tier; unmatched steps and infeasible tiers are
// reported inside the plan.
func (b *Builder) Build(steps []Step, risks []data.RiskTier, budgets []data.BudgetTier) (*Plan, error) {
	for _, r := range risks {
		if r < data.RiskLow || r > data.RiskHigh {
			return nil, fmt.Errorf("risk tier %d: %w", int(r), ErrInvalidTier)
		}
	}
	for _, bt := range budgets {
		if bt < data.BudgetLow || bt > data.BudgetLuxury {
			return nil, fmt.Errorf("budget tier %d: %w", int(bt), ErrInvalidTier)
		}
	}
	risks = normalizeTiers(risks, data.RiskTiers)
	budgets = normalizeTiers(budgets, data.BudgetTiers)

	annotated := b.annotator.AnnotateSteps(steps)

	p := &Plan{
		ID:          uuid.New(),
		CreatedAt:   time.Now().UTC(),
		RiskTiers:   risks,
		BudgetTiers: budgets,
		Primary:     b.route("primary", annotated, risks, budgets),
	}

	seen := map[string]struct{}{routeSignature(annotated): {}}
	for _, alt := range b.alternatives(annotated) {
		if len(p.Alternatives) >= b.cfg.MaxRoutes {
			break
		}
		sig := routeSignature(alt.steps)
		if _, dup := seen[sig]; dup {
			continue
		}
		seen[sig] = struct{}{}
		p.Alternatives = append(p.Alternatives, b.route(alt.name, alt.steps, risks, budgets))
	}

	slog.Debug("plan built",
		"id", p.ID,
		"steps", len(annotated),
		"routes", 1+len(p.Alternatives),
		"options", len(p.Primary.Options))
	return p, nil
}

func (b *Builder) route(name string, steps []Step, risks []data.RiskTier, budgets []data.BudgetTier) Route {
	return Route{Name: name, Steps: steps, Options: b.tiers.Generate(steps, risks, budgets)}
}

type candidateRoute struct {
	name  string
	steps []Step
}

// alternatives derives candidate routes from caller-supplied step
// alternatives, then from close runner-up matches in another dataset.
func (b *Builder) alternatives(steps []Step) []candidateRoute {
	var out []candidateRoute

	for i, s := range steps {
		for j, alt := range s.Alternatives {
			out = append(out, candidateRoute{
				name:  fmt.Sprintf("step %d alternative %d", i+1, j+1),
				steps: substitute(steps, i, alt),
			})
		}
	}

	for i, s := range steps {
		if s.HasReference() || len(s.Annotations) < 2 {
			continue
		}
		top := s.Annotations[0]
		for _, runner := range s.Annotations[1:] {
			if runner.Dataset == top.Dataset || top.Confidence-runner.Confidence > b.cfg.AlternativeDelta {
				continue
			}
			alt := s.clone()
			alt.Annotations = []Annotation{runner}
			alt.Alternatives = nil
			out = append(out, candidateRoute{
				name:  fmt.Sprintf("step %d via %s", i+1, runner.Dataset),
				steps: substitute(steps, i, alt),
			})
			break
		}
	}
	return out
}

func substitute(steps []Step, i int, s Step) []Step {
	out := make([]Step, len(steps))
	copy(out, steps)
	out[i] = s
	return out
}

// routeSignature identifies a route by the primary entry of each step.
func routeSignature(steps []Step) string {
	keys := make([]string, len(steps))
	for i, s := range steps {
		if a, ok := s.Primary(); ok {
			keys[i] = data.Key(a.Entry)
		} else {
			keys[i] = "?" + s.Text
		}
	}
	return strings.Join(keys, "\x1f")
}

// ParseTiers parses tier names as accepted by data.ParseRisk and
// data.ParseBudget. Blank names are rejected.
func ParseTiers(risks, budgets []string) ([]data.RiskTier, []data.BudgetTier, error) {
	rs := make([]data.RiskTier, 0, len(risks))
	for _, s := range risks {
		r, err := data.ParseRisk(s)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %w", ErrInvalidTier, err)
		}
		if r == data.RiskUnset {
			return nil, nil, fmt.Errorf("empty risk tier: %w", ErrInvalidTier)
		}
		rs = append(rs, r)
	}
	bs := make([]data.BudgetTier, 0, len(budgets))
	for _, s := range budgets {
		bt, err := data.ParseBudget(s)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %w", ErrInvalidTier, err)
		}
		if bt == data.BudgetUnset {
			return nil, nil, fmt.Errorf("empty budget tier: %w", ErrInvalidTier)
		}
		bs = append(bs, bt)
	}
	return rs, bs, nil
}
