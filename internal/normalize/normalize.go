// Package normalize canonicalizes free-form crafting text into comparable keys.
//
// A key is lower-case, accent-free, punctuation-free text with single spaces
// between tokens and every known alias phrase rewritten to its canonical form.
// Key is idempotent: Key(Key(x)) == Key(x).
package normalize

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// maxPasses bounds phrase rewriting on top of one pass per token; every
// reorder removes an "of" and validated tables converge well inside it.
const maxPasses = 16

// builtinPhrases maps alias phrases to canonical phrases.
// Canonical forms must never contain a source phrase.
var builtinPhrases = map[string]string{
	"exa":            "exalted orb",
	"exalt":          "exalted orb",
	"exalts":         "exalted orb",
	"alt":            "alteration orb",
	"alts":           "alteration orb",
	"scour":          "scouring orb",
	"annul":          "annulment orb",
	"aug":            "augmentation orb",
	"augs":           "augmentation orb",
	"crafting bench": "bench",
	"craft bench":    "bench",
	"workbench":      "bench",
	"meta craft":     "metacraft",
	"meta crafting":  "metacraft",
	"the maven":      "maven",
}

// reorderNouns are nouns whose "<noun> of <x>" form is rewritten to "<x> <noun>",
// so "essence of horror" and "horror essence" share a key.
var reorderNouns = map[string]struct{}{
	"essence": {},
	"orb":     {},
}

var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "the": {}, "to": {}, "of": {},
	"use": {}, "using": {}, "run": {}, "apply": {}, "with": {},
	"on": {}, "in": {}, "into": {}, "for": {}, "your": {}, "then": {},
	"it": {}, "by": {}, "via": {}, "until": {},
}

// Normalizer rewrites text into keys using a fixed phrase table.
// A Normalizer is immutable and safe for concurrent use.
type Normalizer struct {
	phrases map[string][]string
	maxLen  int
}

var defaultNormalizer = mustNew(nil)

// Default returns the normalizer built from the built-in alias table.
func Default() *Normalizer { return defaultNormalizer }

// Key normalizes text with the default normalizer.
func Key(text string) string { return defaultNormalizer.Key(text) }

// New builds a normalizer from the built-in table extended by extra.
// Entries in extra override built-in ones with the same source phrase.
func New(extra map[string]string) (*Normalizer, error) {
	n := &Normalizer{phrases: make(map[string][]string, len(builtinPhrases)+len(extra))}

	add := func(from, to string) error {
		src := tokenize(from)
		dst := tokenize(to)
		if len(src) == 0 {
			return fmt.Errorf("alias %q normalizes to nothing", from)
		}
		n.phrases[strings.Join(src, " ")] = dst
		n.maxLen = max(n.maxLen, len(src))
		return nil
	}

	for from, to := range builtinPhrases {
		if err := add(from, to); err != nil {
			return nil, err
		}
	}
	for from, to := range extra {
		if err := add(from, to); err != nil {
			return nil, err
		}
	}

	if err := n.validate(); err != nil {
		return nil, err
	}
	return n, nil
}

func mustNew(extra map[string]string) *Normalizer {
	n, err := New(extra)
	if err != nil {
		panic("normalize: " + err.Error())
	}
	return n
}

// validate rejects tables whose canonical forms would be rewritten again.
func (n *Normalizer) validate() error {
	for src, dst := range n.phrases {
		for i := range dst {
			for j := i + 1; j <= len(dst) && j-i <= n.maxLen; j++ {
				if _, ok := n.phrases[strings.Join(dst[i:j], " ")]; ok {
					return fmt.Errorf("alias %q: canonical form %q contains alias %q",
						src, strings.Join(dst, " "), strings.Join(dst[i:j], " "))
				}
			}
			if dst[i] == "of" {
				return fmt.Errorf("alias %q: canonical form must not contain \"of\"", src)
			}
		}
	}
	return nil
}

// Key returns the canonical key for text. It never fails; text without any
// known alias normalizes to its cleaned form.
func (n *Normalizer) Key(text string) string {
	tokens := tokenize(text)
	for range len(tokens) + maxPasses {
		next, changed := n.rewrite(tokens)
		tokens = next
		if !changed {
			break
		}
	}
	return strings.Join(tokens, " ")
}

// rewrite performs one left-to-right pass of longest-match phrase replacement
// followed by "<noun> of <x>" reordering.
func (n *Normalizer) rewrite(tokens []string) ([]string, bool) {
	out := make([]string, 0, len(tokens)+2)
	changed := false

	for i := 0; i < len(tokens); {
		if dst, width := n.longestPhrase(tokens[i:]); width > 0 {
			out = append(out, dst...)
			i += width
			changed = true
			continue
		}
		if i+2 < len(tokens) && tokens[i+1] == "of" {
			if _, ok := reorderNouns[tokens[i]]; ok {
				out = append(out, tokens[i+2], tokens[i])
				i += 3
				changed = true
				continue
			}
		}
		out = append(out, tokens[i])
		i++
	}
	return out, changed
}

func (n *Normalizer) longestPhrase(tokens []string) ([]string, int) {
	for width := min(n.maxLen, len(tokens)); width > 0; width-- {
		if dst, ok := n.phrases[strings.Join(tokens[:width], " ")]; ok {
			return dst, width
		}
	}
	return nil, 0
}

// Tokens splits a key into its tokens.
func Tokens(key string) []string {
	return strings.Fields(key)
}

// Significant drops stop words. When every token is a stop word the input is
// returned unchanged so a query never degrades to nothing.
func Significant(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if _, stop := stopWords[t]; !stop {
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		return tokens
	}
	return out
}

// tokenize lower-cases, folds accents, drops possessive 's and splits on
// everything that is not a letter or digit.
func tokenize(text string) []string {
	text = foldAccents(strings.ToLower(text))

	var (
		tokens []string
		b      strings.Builder
	)
	flush := func() {
		if b.Len() > 0 {
			tokens = append(tokens, b.String())
			b.Reset()
		}
	}

	rs := []rune(text)
	for i := 0; i < len(rs); i++ {
		r := rs[i]
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case r == '\'' || r == '’' || r == '`':
			// possessive: maven's -> maven
			if i+1 < len(rs) && rs[i+1] == 's' && (i+2 == len(rs) || !isWordRune(rs[i+2])) {
				i++
			}
		default:
			flush()
		}
	}
	flush()
	return tokens
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func foldAccents(s string) string {
	ascii := true
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			ascii = false
			break
		}
	}
	if ascii {
		return s
	}
	// Chained transformers carry state, so each call builds its own.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return folded
}
