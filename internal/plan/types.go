package plan

import (
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/udisondev/craftplan/internal/data"
	"github.com/udisondev/craftplan/internal/resolver"
)

// Status is the outcome of annotating a step.
type Status string

const (
	StatusMatched    Status = "matched"
	StatusUnmatched  Status = "unmatched"  // free text, nothing above the confidence floor
	StatusUnresolved Status = "unresolved" // explicit reference that could not be resolved
)

// Annotation links a step to a dataset entry.
type Annotation struct {
	Dataset    data.Dataset `json:"dataset"`
	Entry      data.Entry   `json:"entry"`
	Confidence float64      `json:"confidence"`
}

// UnmarshalJSON decodes Entry into the variant named by Dataset.
func (a *Annotation) UnmarshalJSON(b []byte) error {
	var raw struct {
		Dataset    data.Dataset    `json:"dataset"`
		Entry      json.RawMessage `json:"entry"`
		Confidence float64         `json:"confidence"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	e, err := data.NewEntry(raw.Dataset)
	if err != nil {
		return fmt.Errorf("decoding annotation: %w", err)
	}
	if len(raw.Entry) > 0 {
		if err := json.Unmarshal(raw.Entry, e); err != nil {
			return fmt.Errorf("decoding %s entry: %w", raw.Dataset, err)
		}
	}
	*a = Annotation{Dataset: raw.Dataset, Entry: e, Confidence: raw.Confidence}
	return nil
}

// Step is one crafting step. Text and the reference hints belong to the
// caller; Annotations, Status and Resolution are filled by the Annotator.
type Step struct {
	Text          string          `json:"text" yaml:"text"`
	ReferenceType string          `json:"reference_type,omitempty" yaml:"reference_type"`
	ReferenceID   string          `json:"reference_id,omitempty" yaml:"reference_id"`
	Risk          data.RiskTier   `json:"risk,omitzero" yaml:"risk"`
	Budget        data.BudgetTier `json:"budget,omitzero" yaml:"budget"`
	Alternatives  []Step          `json:"alternatives,omitempty" yaml:"alternatives"`

	Annotations []Annotation `json:"annotations,omitempty" yaml:"-"`
	Status      Status       `json:"status,omitempty" yaml:"-"`
	Resolution  string       `json:"resolution,omitempty" yaml:"-"`
}

// HasReference reports whether the caller pinned the step to an entry.
func (s Step) HasReference() bool {
	return s.ReferenceType != "" || s.ReferenceID != ""
}

// ValidateSteps checks the reference type tag of every step and alternative.
// The error names the offending step and wraps
// *resolver.UnknownReferenceTypeError. Steps without a tag are not checked.
func ValidateSteps(steps []Step) error {
	return validateSteps(steps, "step")
}

func validateSteps(steps []Step, prefix string) error {
	for i, s := range steps {
		pos := fmt.Sprintf("%s %d", prefix, i+1)
		if s.ReferenceType != "" {
			if _, err := resolver.ParseReferenceType(s.ReferenceType); err != nil {
				return fmt.Errorf("%s: %w", pos, err)
			}
		}
		if err := validateSteps(s.Alternatives, pos+" alternative"); err != nil {
			return err
		}
	}
	return nil
}

// Primary returns the highest-confidence annotation.
func (s Step) Primary() (Annotation, bool) {
	if len(s.Annotations) == 0 {
		return Annotation{}, false
	}
	return s.Annotations[0], true
}

func (s Step) clone() Step {
	out := s
	out.Annotations = slices.Clone(s.Annotations)
	if s.Alternatives != nil {
		out.Alternatives = make([]Step, len(s.Alternatives))
		for i, alt := range s.Alternatives {
			out.Alternatives[i] = alt.clone()
		}
	}
	return out
}

// Choice is the entry picked for one step of a TierOption.
type Choice struct {
	Step    int             `json:"step"` // 1-based
	Dataset data.Dataset    `json:"dataset"`
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Risk    data.RiskTier   `json:"risk"`
	Budget  data.BudgetTier `json:"budget,omitzero"`
	Cost    []data.Cost     `json:"cost,omitempty"`
}

// TierOption is one (risk, budget) combination of a route.
type TierOption struct {
	Risk          data.RiskTier   `json:"risk_tier"`
	Budget        data.BudgetTier `json:"budget_tier"`
	Satisfiable   bool            `json:"satisfiable"`
	Reason        string          `json:"reason,omitempty"`
	EstimatedCost []data.Cost     `json:"estimated_cost,omitempty"`
	Total         float64         `json:"total"`
	ObservedRisk  data.RiskTier   `json:"observed_risk,omitzero"`
	Choices       []Choice        `json:"choices,omitempty"`
	Unpriced      []int           `json:"unpriced_steps,omitempty"` // 1-based
}

// Route is one ordered sequence of steps with its tier table.
type Route struct {
	Name    string       `json:"name"`
	Steps   []Step       `json:"steps"`
	Options []TierOption `json:"options"`
}

// Option returns the option for (risk, budget).
func (r Route) Option(risk data.RiskTier, budget data.BudgetTier) (TierOption, bool) {
	for _, o := range r.Options {
		if o.Risk == risk && o.Budget == budget {
			return o, true
		}
	}
	return TierOption{}, false
}

// Plan is the result of Builder.Build.
type Plan struct {
	ID           uuid.UUID         `json:"id"`
	CreatedAt    time.Time         `json:"created_at"`
	RiskTiers    []data.RiskTier   `json:"risk_tiers"`
	BudgetTiers  []data.BudgetTier `json:"budget_tiers"`
	Primary      Route             `json:"primary"`
	Alternatives []Route           `json:"alternatives,omitempty"`
}

// Routes returns the primary route followed by the alternatives.
func (p *Plan) Routes() []Route {
	return append([]Route{p.Primary}, p.Alternatives...)
}
