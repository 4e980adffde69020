package data

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDataFile(t *testing.T, dir, name, body string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestLoadDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeDataFile(t, dir, "bosses.json", `{"atlas_bosses": [{"name": "Maven's Crucible", "aliases": ["maven"]}]}`)
	writeDataFile(t, dir, "bench_recipes.json", `[{"id": "life_t1", "name": "Life", "mod": "Life"}]`)
	writeDataFile(t, dir, SimulatorFile, `{"fossils": [{"id": "pristine", "name": "Pristine Fossil"}],
		"bench": {"of_the_order": {"name": "Prefixes Cannot Be Changed"}}}`)

	res, err := LoadDir(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Indices[Bosses].Len())
	assert.Equal(t, 1, res.Indices[BenchRecipes].Len())
	assert.Equal(t, 1, res.Indices[SimulatorFossil].Len())
	assert.Equal(t, 1, res.Indices[SimulatorBench].Len())
	_, ok := res.Indices[SimulatorMeta]
	assert.False(t, ok, "absent section leaves the dataset unloaded")

	_, ok = res.Indices[Essences]
	assert.False(t, ok, "missing file leaves the dataset unloaded")

	assert.Len(t, res.Digests, 3)

	digests, err := FileDigests(dir)
	require.NoError(t, err)
	assert.Equal(t, res.Digests, digests)
}

func TestLoadDirSimulatorWithoutFossils(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeDataFile(t, dir, SimulatorFile, `{"harvest": [{"id": "reforge_fire", "name": "Reforge Fire"}]}`)

	res, err := LoadDir(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Indices[SimulatorHarvest].Len())
	for _, ds := range []Dataset{SimulatorFossil, SimulatorBench, SimulatorMeta} {
		_, ok := res.Indices[ds]
		assert.False(t, ok, "dataset %s", ds)
	}
	assert.Contains(t, res.Digests, SimulatorFile)
}

func TestLoadDirFatalErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		file  string
		body  string
		check func(t *testing.T, err error)
	}{
		{
			name: "duplicate id",
			file: "essences.json",
			body: `[{"id": "x", "name": "Essence A"}, {"id": "x", "name": "Essence B"}]`,
			check: func(t *testing.T, err error) {
				var dup *DuplicateIDError
				assert.True(t, errors.As(err, &dup))
			},
		},
		{
			name: "missing field",
			file: "harvest_crafts.json",
			body: `[{"id": "h"}]`,
			check: func(t *testing.T, err error) {
				var missing *MissingFieldError
				assert.True(t, errors.As(err, &missing))
			},
		},
		{
			name: "malformed json",
			file: "mods.json",
			body: `{"a": [`,
			check: func(t *testing.T, err error) {
				assert.ErrorContains(t, err, "mods.json")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			writeDataFile(t, dir, "bosses.json", `[{"id": "shaper", "name": "The Shaper"}]`)
			writeDataFile(t, dir, tt.file, tt.body)

			res, err := LoadDir(context.Background(), dir)
			require.Error(t, err)
			assert.Nil(t, res)
			tt.check(t, err)
		})
	}
}

func TestLoadDirEmpty(t *testing.T) {
	t.Parallel()

	res, err := LoadDir(context.Background(), t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, res.Indices)
	assert.Empty(t, res.Digests)
}

func TestFileDigestsChange(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeDataFile(t, dir, "mods.json", `{}`)
	before, err := FileDigests(dir)
	require.NoError(t, err)

	writeDataFile(t, dir, "mods.json", `{"Life1": {"name": "Hale"}}`)
	after, err := FileDigests(dir)
	require.NoError(t, err)

	assert.NotEqual(t, before["mods.json"], after["mods.json"])
}
