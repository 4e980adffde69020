package resolver

import (
	"fmt"

	"github.com/udisondev/craftplan/internal/data"
	"github.com/udisondev/craftplan/internal/normalize"
)

// DefaultMaxResults caps ResolveFreeText when Options.MaxResults is unset.
const DefaultMaxResults = 10

// Options configures a Resolver.
type Options struct {
	// MaxResults caps the merged free-text result list.
	MaxResults int
}

// Resolver maps explicit references and free text to dataset entries over
// one Snapshot. It has no side effects and is safe for concurrent use.
type Resolver struct {
	snap       *Snapshot
	maxResults int
}

// New returns a resolver over snap. A nil snapshot behaves as one with no
// dataset loaded.
func New(snap *Snapshot, opts Options) *Resolver {
	if snap == nil {
		snap = NewSnapshot()
	}
	if opts.MaxResults <= 0 {
		opts.MaxResults = DefaultMaxResults
	}
	return &Resolver{snap: snap, maxResults: opts.MaxResults}
}

// Snapshot returns the snapshot the resolver reads.
func (r *Resolver) Snapshot() *Snapshot { return r.snap }

// Resolve returns the entry refType/refID points at.
//
// The id is tried exactly, then ignoring case, then as a display name or
// alias when that identifies a single entry. Failures are
// *UnknownReferenceTypeError, *DatasetNotLoadedError or an error wrapping
// ErrNotFound.
func (r *Resolver) Resolve(refType ReferenceType, refID string) (data.Entry, error) {
	ds, ok := refType.Dataset()
	if !ok {
		return nil, &UnknownReferenceTypeError{Type: string(refType)}
	}
	idx, ok := r.snap.Index(ds)
	if !ok {
		return nil, notLoaded(ds)
	}

	if e, ok := idx.LookupByID(refID); ok {
		return e, nil
	}
	if e, ok := idx.LookupFold(refID); ok {
		return e, nil
	}
	if ids := idx.AliasIDs(idx.Normalizer().Key(refID)); len(ids) == 1 {
		e, _ := idx.LookupByID(ids[0])
		return e, nil
	}
	return nil, fmt.Errorf("%s %q: %w", refType, refID, ErrNotFound)
}

// ResolveFreeText matches text against every loaded index and returns the
// merged matches scoring at least minConfidence, best first.
func (r *Resolver) ResolveFreeText(text string, minConfidence float64) []data.Match {
	keys := make(map[*normalize.Normalizer]string, 1)

	var merged []data.Match
	for _, ds := range r.snap.Datasets() {
		idx, _ := r.snap.Index(ds)

		key, ok := keys[idx.Normalizer()]
		if !ok {
			key = idx.Normalizer().Key(text)
			keys[idx.Normalizer()] = key
		}

		for _, m := range idx.FuzzyLookup(key, r.maxResults) {
			if m.Score >= minConfidence {
				merged = append(merged, m)
			}
		}
	}

	data.SortMatches(merged)
	if len(merged) > r.maxResults {
		merged = merged[:r.maxResults]
	}
	return merged
}
