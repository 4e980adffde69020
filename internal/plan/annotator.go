package plan

import (
	"fmt"

	"github.com/udisondev/craftplan/internal/data"
	"github.com/udisondev/craftplan/internal/resolver"
)

// Annotator attaches dataset entries to steps.
type Annotator struct {
	res            *resolver.Resolver
	minConfidence  float64
	maxAnnotations int
}

// NewAnnotator returns an annotator over res. Matches scoring below
// minConfidence are discarded; at most maxAnnotations are kept per step.
func NewAnnotator(res *resolver.Resolver, minConfidence float64, maxAnnotations int) *Annotator {
	if maxAnnotations <= 0 {
		maxAnnotations = 1
	}
	return &Annotator{res: res, minConfidence: minConfidence, maxAnnotations: maxAnnotations}
}

// Annotate returns an annotated copy of step; step itself is not modified.
//
// A step with an explicit reference gets exactly one annotation with
// confidence 1.0, or none and StatusUnresolved when the reference cannot be
// resolved. Other steps are matched by text. Resolution failures are
// reported on the step, never as errors.
func (a *Annotator) Annotate(step Step) Step {
	out := step.clone()
	out.Annotations = nil
	out.Resolution = ""

	if out.HasReference() {
		a.annotateReference(&out)
	} else {
		a.annotateText(&out)
	}

	for i, alt := range out.Alternatives {
		out.Alternatives[i] = a.Annotate(alt)
	}
	return out
}

// AnnotateSteps annotates each step, keeping order.
func (a *Annotator) AnnotateSteps(steps []Step) []Step {
	out := make([]Step, len(steps))
	for i, s := range steps {
		out[i] = a.Annotate(s)
	}
	return out
}

func (a *Annotator) annotateReference(s *Step) {
	refType, err := resolver.ParseReferenceType(s.ReferenceType)
	if err != nil {
		s.Status, s.Resolution = StatusUnresolved, err.Error()
		return
	}
	if s.ReferenceID == "" {
		s.Status, s.Resolution = StatusUnresolved, fmt.Sprintf("%s reference without an id", refType)
		return
	}

	e, err := a.res.Resolve(refType, s.ReferenceID)
	if err != nil {
		s.Status, s.Resolution = StatusUnresolved, err.Error()
		return
	}
	s.Annotations = []Annotation{{Dataset: e.Dataset(), Entry: e, Confidence: 1}}
	s.Status = StatusMatched
}

func (a *Annotator) annotateText(s *Step) {
	matches := a.res.ResolveFreeText(s.Text, a.minConfidence)
	if len(matches) == 0 {
		s.Status = StatusUnmatched
		s.Resolution = fmt.Sprintf("no dataset entry matches with confidence >= %.2f", a.minConfidence)
		return
	}

	matches = matches[:min(len(matches), a.maxAnnotations)]
	s.Annotations = make([]Annotation, len(matches))
	for i, m := range matches {
		s.Annotations[i] = annotationOf(m)
	}
	s.Status = StatusMatched
}

func annotationOf(m data.Match) Annotation {
	return Annotation{Dataset: m.Entry.Dataset(), Entry: m.Entry, Confidence: m.Score}
}
