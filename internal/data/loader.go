package data

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/sync/errgroup"
)

// SimulatorFile is the simulator export path relative to the data directory.
const SimulatorFile = "craft_of_exile/data.json"

// Files maps each dataset to its file relative to the data directory.
// The simulator sections share one file.
var Files = map[Dataset]string{
	Bosses:           "bosses.json",
	Essences:         "essences.json",
	HarvestCrafts:    "harvest_crafts.json",
	BenchRecipes:     "bench_recipes.json",
	Mods:             "mods.json",
	SimulatorFossil:  SimulatorFile,
	SimulatorHarvest: SimulatorFile,
	SimulatorBench:   SimulatorFile,
	SimulatorMeta:    SimulatorFile,
}

// Digest is the blake2b-256 sum of a dataset file.
type Digest [blake2b.Size256]byte

// LoadResult is every index that could be built from a data directory.
// Datasets whose file or simulator section is absent are missing from Indices.
type LoadResult struct {
	Indices map[Dataset]*Index
	Digests map[string]Digest // by file name relative to the data directory
}

// LoadDir reads and indexes every dataset file under dir. Files are parsed
// in parallel. A missing file or simulator section is skipped with a warning;
// unreadable files,
// invalid documents, missing required fields and duplicate ids are fatal.
func LoadDir(ctx context.Context, dir string, opts ...IndexOption) (*LoadResult, error) {
	res := &LoadResult{
		Indices: make(map[Dataset]*Index, len(Datasets)),
		Digests: make(map[string]Digest),
	}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for file, datasets := range filesToDatasets() {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			raw, err := os.ReadFile(filepath.Join(dir, file))
			if errors.Is(err, fs.ErrNotExist) {
				slog.Warn("dataset file not found, skipping", "file", file, "datasets", datasets)
				return nil
			}
			if err != nil {
				return fmt.Errorf("reading %s: %w", file, err)
			}
			sum := Digest(blake2b.Sum256(raw))

			built := make(map[Dataset]*Index, len(datasets))
			for _, ds := range datasets {
				entries, err := DecodeEntries(ds, raw)
				if errors.Is(err, ErrSectionAbsent) {
					slog.Warn("simulator section not found, skipping", "file", file, "dataset", ds)
					continue
				}
				if err != nil {
					return fmt.Errorf("decoding %s: %w", file, err)
				}
				idx, err := NewIndex(ds, entries, opts...)
				if err != nil {
					return fmt.Errorf("indexing %s: %w", file, err)
				}
				built[ds] = idx
			}

			mu.Lock()
			res.Digests[file] = sum
			for ds, idx := range built {
				res.Indices[ds] = idx
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, ds := range Datasets {
		if idx, ok := res.Indices[ds]; ok {
			slog.Info("loaded dataset", "dataset", ds, "count", idx.Len())
		}
	}
	return res, nil
}

// FileDigests hashes every dataset file present under dir without decoding it.
func FileDigests(dir string) (map[string]Digest, error) {
	digests := make(map[string]Digest)
	for file := range filesToDatasets() {
		raw, err := os.ReadFile(filepath.Join(dir, file))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", file, err)
		}
		digests[file] = Digest(blake2b.Sum256(raw))
	}
	return digests, nil
}

func filesToDatasets() map[string][]Dataset {
	out := make(map[string][]Dataset)
	for _, ds := range Datasets {
		file := Files[ds]
		out[file] = append(out[file], ds)
	}
	for file := range out {
		slices.Sort(out[file])
	}
	return out
}
