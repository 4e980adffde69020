package resolver

import (
	"maps"
	"time"

	"github.com/udisondev/craftplan/internal/data"
)

// Snapshot is the set of indices loaded at one point in time. It is never
// modified after construction; a reload publishes a new Snapshot.
type Snapshot struct {
	indices  map[data.Dataset]*data.Index
	digests  map[string]data.Digest
	loadedAt time.Time
}

// NewSnapshot groups already-built indices. A later index for the same
// dataset replaces an earlier one.
func NewSnapshot(indices ...*data.Index) *Snapshot {
	s := &Snapshot{
		indices:  make(map[data.Dataset]*data.Index, len(indices)),
		digests:  map[string]data.Digest{},
		loadedAt: time.Now(),
	}
	for _, idx := range indices {
		if idx != nil {
			s.indices[idx.Dataset()] = idx
		}
	}
	return s
}

// SnapshotFromLoad wraps the result of data.LoadDir.
func SnapshotFromLoad(res *data.LoadResult) *Snapshot {
	return &Snapshot{
		indices:  maps.Clone(res.Indices),
		digests:  maps.Clone(res.Digests),
		loadedAt: time.Now(),
	}
}

// Index returns the index of ds, or false when it was not loaded.
func (s *Snapshot) Index(ds data.Dataset) (*data.Index, bool) {
	idx, ok := s.indices[ds]
	return idx, ok
}

// Datasets returns the loaded datasets in data.Datasets order.
func (s *Snapshot) Datasets() []data.Dataset {
	out := make([]data.Dataset, 0, len(s.indices))
	for _, ds := range data.Datasets {
		if _, ok := s.indices[ds]; ok {
			out = append(out, ds)
		}
	}
	return out
}

// LoadedAt is when the snapshot was built.
func (s *Snapshot) LoadedAt() time.Time { return s.loadedAt }

// SameFiles reports whether digests describe exactly the files this
// snapshot was loaded from.
func (s *Snapshot) SameFiles(digests map[string]data.Digest) bool {
	return maps.Equal(s.digests, digests)
}
