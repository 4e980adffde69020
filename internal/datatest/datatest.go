// Package datatest provides dataset fixtures for tests.
package datatest

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/udisondev/craftplan/internal/data"
)

// Index builds an index of entries and fails tb on error.
func Index(tb testing.TB, ds data.Dataset, entries ...data.Entry) *data.Index {
	tb.Helper()
	idx, err := data.NewIndex(ds, entries)
	require.NoError(tb, err, "building %s index", ds)
	return idx
}

// Bench returns a bench recipe adding mod at the given budget tier.
func Bench(id, mod string, budget data.BudgetTier, costs ...data.Cost) *data.BenchRecipeEntry {
	return &data.BenchRecipeEntry{
		Base:   data.Base{ID: id, Name: mod, Budget: budget},
		Master: "Crafting Bench",
		Mod:    mod,
		Cost:   costs,
	}
}
