package resolver

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/udisondev/craftplan/internal/data"
)

// Registry owns the current Snapshot of a data directory. The first call to
// Snapshot loads it; Reload replaces it atomically. Readers holding an older
// snapshot keep using it unchanged.
type Registry struct {
	dir     string
	opts    []data.IndexOption
	current atomic.Pointer[Snapshot]
	flight  singleflight.Group
}

// NewRegistry returns a registry over dir. Nothing is read until first use.
func NewRegistry(dir string, opts ...data.IndexOption) *Registry {
	return &Registry{dir: dir, opts: opts}
}

// Dir returns the data directory.
func (r *Registry) Dir() string { return r.dir }

// Current returns the published snapshot without loading; nil before the
// first load.
func (r *Registry) Current() *Snapshot { return r.current.Load() }

// Publish installs s as the current snapshot.
func (r *Registry) Publish(s *Snapshot) { r.current.Store(s) }

// Snapshot returns the current snapshot, loading the data directory on
// first use. Concurrent first callers share a single load.
func (r *Registry) Snapshot(ctx context.Context) (*Snapshot, error) {
	if s := r.current.Load(); s != nil {
		return s, nil
	}

	v, err, _ := r.flight.Do("load", func() (any, error) {
		if s := r.current.Load(); s != nil {
			return s, nil
		}
		s, err := r.load(ctx)
		if err != nil {
			return nil, err
		}
		r.current.Store(s)
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Snapshot), nil
}

// Reload rebuilds the snapshot from disk and publishes it. When every file
// digest matches the current snapshot nothing is rebuilt and changed is
// false. On error the current snapshot stays published.
func (r *Registry) Reload(ctx context.Context) (changed bool, err error) {
	v, err, _ := r.flight.Do("reload", func() (any, error) {
		digests, err := data.FileDigests(r.dir)
		if err != nil {
			return false, err
		}
		if cur := r.current.Load(); cur != nil && cur.SameFiles(digests) {
			slog.Info("datasets unchanged, reload skipped", "dir", r.dir)
			return false, nil
		}

		s, err := r.load(ctx)
		if err != nil {
			return false, err
		}
		r.current.Store(s)
		return true, nil
	})
	if err != nil {
		return false, err
	}
	return v.(bool), nil
}

func (r *Registry) load(ctx context.Context) (*Snapshot, error) {
	start := time.Now()
	res, err := data.LoadDir(ctx, r.dir, r.opts...)
	if err != nil {
		return nil, fmt.Errorf("loading datasets from %s: %w", r.dir, err)
	}
	s := SnapshotFromLoad(res)
	slog.Info("datasets loaded",
		"dir", r.dir,
		"datasets", len(res.Indices),
		"elapsed", time.Since(start))
	return s, nil
}
