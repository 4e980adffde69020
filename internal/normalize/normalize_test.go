package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"only punctuation", "  -- !! ", ""},
		{"case and whitespace", "  Run   MAVEN  ", "run maven"},
		{"possessive", "Run Maven's Crucible", "run maven crucible"},
		{"curly possessive", "Maven’s Crucible", "maven crucible"},
		{"punctuation splits", "Prefix/Suffix-lock", "prefix suffix lock"},
		{"accents folded", "Évocation façade", "evocation facade"},
		{"essence reorder", "Essence of Horror", "horror essence"},
		{"already reordered", "horror essence", "horror essence"},
		{"tiered essence", "Deafening Essence of Wrath", "deafening wrath essence"},
		{"orb reorder", "Orb of Alteration", "alteration orb"},
		{"short alias", "spam alts", "spam alteration orb"},
		{"alias inside text", "slam an exa", "slam an exalted orb"},
		{"multi word alias", "use the crafting bench", "use the bench"},
		{"the maven", "fight The Maven", "fight maven"},
		{"unknown text unchanged", "blorp zzt", "blorp zzt"},
		{"digits kept", "T1 life", "t1 life"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Key(tt.in))
		})
	}
}

func TestKeyIdempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"Run Maven's Crucible",
		"Essence of Horror",
		"orb of essence of wrath",
		"essence of orb of alteration",
		"exa exa exa",
		"Use a Deafening Essence of Contempt, then bench craft 'of the Order'",
		"of of of essence of",
		"Ünïcödé   ÀCCÉNTS",
		"the maven the maven",
	}

	for _, in := range inputs {
		once := Key(in)
		assert.Equal(t, once, Key(once), "input %q", in)
	}
}

func TestNewWithExtraAliases(t *testing.T) {
	t.Parallel()

	n, err := New(map[string]string{"chaos spam": "chaos orb"})
	require.NoError(t, err)

	assert.Equal(t, "chaos orb", n.Key("Chaos Spam"))
	assert.Equal(t, "exalted orb", n.Key("exa"), "built-in aliases kept")
	assert.Equal(t, "chaos spam", Key("chaos spam"), "default normalizer unaffected")
}

func TestNewRejectsCyclicAliases(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		extra map[string]string
	}{
		{"canonical contains alias", map[string]string{"chaos": "chaos orb"}},
		{"canonical contains built-in alias", map[string]string{"spam": "spam exa"}},
		{"canonical contains of", map[string]string{"harvest reforge": "reforge of harvest"}},
		{"empty source", map[string]string{"!!": "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := New(tt.extra)
			assert.Error(t, err)
		})
	}
}

func TestSignificant(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"maven", "crucible"}, Significant(Tokens("run maven crucible")))
	assert.Equal(t, []string{"the", "run"}, Significant(Tokens("the run")), "all stop words kept")
	assert.Empty(t, Significant(nil))
}
