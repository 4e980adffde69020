package data

import (
	"cmp"
	"log/slog"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"

	"github.com/udisondev/craftplan/internal/normalize"
)

const (
	// nearCredit is the credit an alias token earns when a query token is
	// within edit distance of it instead of equal.
	nearCredit = 0.8
	// nonExactCeiling keeps every non-exact score strictly below 1.0.
	nonExactCeiling   = 0.99
	containmentWeight = 0.75
	precisionWeight   = 0.25
	// minFuzzyTokenLen is the shortest query token that gets typo tolerance.
	minFuzzyTokenLen = 5
)

// Match is one scored fuzzy lookup result.
type Match struct {
	Entry Entry
	Score float64
}

type aliasRef struct {
	entry  int
	key    string
	tokens []string // significant, de-duplicated
}

// Index is an immutable lookup structure over one dataset.
// It is safe for concurrent use; a reload builds a new Index.
type Index struct {
	dataset Dataset
	norm    *normalize.Normalizer

	entries []Entry // sorted by id
	byID    map[string]int
	byFold  map[string]int // lower-cased id; -1 when ambiguous
	byAlias map[string][]int
	byGroup map[string][]int

	aliases []aliasRef
	byToken map[string][]int // token -> alias positions
	vocab   []string
}

// IndexOption configures NewIndex.
type IndexOption func(*Index)

// WithNormalizer sets the normalizer used to key aliases. The same normalizer
// must be used to build query keys.
func WithNormalizer(n *normalize.Normalizer) IndexOption {
	return func(idx *Index) {
		if n != nil {
			idx.norm = n
		}
	}
}

// NewIndex builds the index for one dataset. It fails only when two entries
// share an id (*DuplicateIDError) or an entry has no id (*MissingFieldError).
func NewIndex(ds Dataset, entries []Entry, opts ...IndexOption) (*Index, error) {
	idx := &Index{
		dataset: ds,
		norm:    normalize.Default(),
		byID:    make(map[string]int, len(entries)),
		byFold:  make(map[string]int, len(entries)),
		byAlias: make(map[string][]int, len(entries)),
		byGroup: make(map[string][]int),
		byToken: make(map[string][]int),
	}
	for _, opt := range opts {
		opt(idx)
	}

	seen := make(map[string]Entry, len(entries))
	for i, e := range entries {
		id := e.Info().ID
		if id == "" {
			return nil, &MissingFieldError{Dataset: ds, Index: i, Field: "id"}
		}
		if prev, dup := seen[id]; dup {
			return nil, &DuplicateIDError{Dataset: ds, ID: id, First: prev.Info().Name, Second: e.Info().Name}
		}
		seen[id] = e
	}

	idx.entries = slices.Clone(entries)
	slices.SortFunc(idx.entries, func(a, b Entry) int {
		return strings.Compare(a.Info().ID, b.Info().ID)
	})

	for i, e := range idx.entries {
		info := e.Info()
		idx.byID[info.ID] = i

		fold := strings.ToLower(info.ID)
		if _, ok := idx.byFold[fold]; ok {
			idx.byFold[fold] = -1
		} else {
			idx.byFold[fold] = i
		}

		if g := e.GroupKey(); g != "" {
			idx.byGroup[g] = append(idx.byGroup[g], i)
		}

		idx.addAliases(i, matchTexts(e))
	}

	idx.vocab = make([]string, 0, len(idx.byToken))
	for tok := range idx.byToken {
		idx.vocab = append(idx.vocab, tok)
	}
	slices.Sort(idx.vocab)

	slog.Debug("built dataset index",
		"dataset", ds,
		"entries", len(idx.entries),
		"aliases", len(idx.aliases),
		"tokens", len(idx.vocab))

	return idx, nil
}

func matchTexts(e Entry) []string {
	info := e.Info()
	texts := make([]string, 0, 1+len(info.Aliases)+len(e.Keywords()))
	texts = append(texts, info.Name)
	texts = append(texts, info.Aliases...)
	texts = append(texts, e.Keywords()...)
	return texts
}

func (idx *Index) addAliases(entry int, texts []string) {
	seen := make(map[string]struct{}, len(texts))
	for _, text := range texts {
		key := idx.norm.Key(text)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		idx.byAlias[key] = append(idx.byAlias[key], entry)

		tokens := uniqueTokens(normalize.Significant(normalize.Tokens(key)))
		pos := len(idx.aliases)
		idx.aliases = append(idx.aliases, aliasRef{entry: entry, key: key, tokens: tokens})
		for _, tok := range tokens {
			idx.byToken[tok] = append(idx.byToken[tok], pos)
		}
	}
}

func uniqueTokens(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if !slices.Contains(out, t) {
			out = append(out, t)
		}
	}
	return out
}

// Dataset returns the dataset this index serves.
func (idx *Index) Dataset() Dataset { return idx.dataset }

// Len returns the number of entries.
func (idx *Index) Len() int { return len(idx.entries) }

// Normalizer returns the normalizer the aliases were keyed with.
func (idx *Index) Normalizer() *normalize.Normalizer { return idx.norm }

// Entries returns all entries sorted by id. The slice is a copy.
func (idx *Index) Entries() []Entry { return slices.Clone(idx.entries) }

// LookupByID returns the entry with exactly this id.
func (idx *Index) LookupByID(id string) (Entry, bool) {
	i, ok := idx.byID[id]
	if !ok {
		return nil, false
	}
	return idx.entries[i], true
}

// LookupFold returns the entry whose id equals id ignoring case.
// Ids that differ only by case are ambiguous and not returned.
func (idx *Index) LookupFold(id string) (Entry, bool) {
	i, ok := idx.byFold[strings.ToLower(id)]
	if !ok || i < 0 {
		return nil, false
	}
	return idx.entries[i], true
}

// AliasIDs returns the ids of entries having key as a normalized alias.
func (idx *Index) AliasIDs(key string) []string {
	pos := idx.byAlias[key]
	ids := make([]string, 0, len(pos))
	for _, i := range pos {
		ids = append(ids, idx.entries[i].Info().ID)
	}
	return ids
}

// Group returns the entries sharing a group key, sorted by id.
func (idx *Index) Group(key string) []Entry {
	pos := idx.byGroup[key]
	out := make([]Entry, 0, len(pos))
	for _, i := range pos {
		out = append(out, idx.entries[i])
	}
	return out
}

// FuzzyLookup scores every entry against a normalized query key and returns
// at most maxResults matches (all when maxResults <= 0), best first.
//
// An alias equal to key scores 1.0. Otherwise the score is the token-set
// overlap between the query and the alias: alias tokens found in the query
// earn full credit, tokens within a small edit distance of a query token earn
// partial credit. Ties break on shorter entry name, then on id.
func (idx *Index) FuzzyLookup(key string, maxResults int) []Match {
	if key == "" || len(idx.entries) == 0 {
		return nil
	}

	best := make(map[int]float64)
	for _, i := range idx.byAlias[key] {
		best[i] = 1.0
	}

	query := uniqueTokens(normalize.Significant(normalize.Tokens(key)))
	exact := make(map[string]struct{}, len(query))
	for _, t := range query {
		exact[t] = struct{}{}
	}
	near := idx.nearTokens(query, exact)

	candidates := make(map[int]struct{})
	for t := range exact {
		for _, pos := range idx.byToken[t] {
			candidates[pos] = struct{}{}
		}
	}
	for t := range near {
		for _, pos := range idx.byToken[t] {
			candidates[pos] = struct{}{}
		}
	}

	for pos := range candidates {
		a := idx.aliases[pos]
		if best[a.entry] == 1.0 {
			continue
		}
		score := overlapScore(a.tokens, exact, near, len(query))
		if score > best[a.entry] {
			best[a.entry] = score
		}
	}

	matches := make([]Match, 0, len(best))
	for i, score := range best {
		if score <= 0 {
			continue
		}
		matches = append(matches, Match{Entry: idx.entries[i], Score: score})
	}
	SortMatches(matches)

	if maxResults > 0 && len(matches) > maxResults {
		matches = matches[:maxResults]
	}
	return matches
}

// nearTokens returns vocabulary tokens within edit distance of a query token
// that are not themselves query tokens.
func (idx *Index) nearTokens(query []string, exact map[string]struct{}) map[string]struct{} {
	near := make(map[string]struct{})
	for _, q := range query {
		qLen := utf8.RuneCountInString(q)
		if qLen < minFuzzyTokenLen {
			continue
		}
		limit := editLimit(qLen)
		for _, v := range idx.vocab {
			if _, ok := exact[v]; ok {
				continue
			}
			vLen := utf8.RuneCountInString(v)
			if vLen < minFuzzyTokenLen || abs(vLen-qLen) > limit {
				continue
			}
			if levenshtein.ComputeDistance(q, v) <= limit {
				near[v] = struct{}{}
			}
		}
	}
	return near
}

func overlapScore(aliasTokens []string, exact, near map[string]struct{}, queryLen int) float64 {
	if len(aliasTokens) == 0 || queryLen == 0 {
		return 0
	}
	var credit float64
	for _, t := range aliasTokens {
		if _, ok := exact[t]; ok {
			credit++
		} else if _, ok := near[t]; ok {
			credit += nearCredit
		}
	}
	if credit == 0 {
		return 0
	}
	containment := credit / float64(len(aliasTokens))
	precision := min(credit/float64(queryLen), 1)
	return nonExactCeiling * (containmentWeight*containment + precisionWeight*precision)
}

func editLimit(length int) int {
	if length <= 8 {
		return 1
	}
	return 2
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// SortMatches orders matches by descending score, then shorter entry name,
// then id, then dataset.
func SortMatches(matches []Match) {
	slices.SortFunc(matches, func(a, b Match) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		ai, bi := a.Entry.Info(), b.Entry.Info()
		if c := cmp.Compare(utf8.RuneCountInString(ai.Name), utf8.RuneCountInString(bi.Name)); c != 0 {
			return c
		}
		if c := strings.Compare(ai.ID, bi.ID); c != 0 {
			return c
		}
		return strings.Compare(string(a.Entry.Dataset()), string(b.Entry.Dataset()))
	})
}
