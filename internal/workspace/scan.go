package workspace

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Layout describes the resolved workspace: its root and the absolute source
// roots package inference works from.
type Layout struct {
	Root        string
	SourceRoots []string
}

// Resolve determines the workspace layout for root: slate.toml (found by
// walking up from root) may pin source roots, otherwise the conventional
// defaults are probed. Candidate probing runs concurrently; only existing
// directories survive.
func Resolve(ctx context.Context, root string) (Layout, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return Layout{}, err
	}

	candidates := DefaultSourceRoots()
	if path, ok, err := FindConfig(abs); err != nil {
		return Layout{}, err
	} else if ok {
		cfg, err := LoadConfig(path)
		if err != nil {
			return Layout{}, err
		}
		if len(cfg.Workspace.SourceRoots) > 0 {
			candidates = cfg.Workspace.SourceRoots
		}
		// The config's directory wins over the caller's guess at the root.
		abs = filepath.Dir(path)
	}

	roots, err := probeRoots(ctx, abs, candidates)
	if err != nil {
		return Layout{}, err
	}
	return Layout{Root: abs, SourceRoots: roots}, nil
}

// probeRoots stats candidates under root concurrently and keeps existing
// directories, deepest path first so the innermost root matches first.
func probeRoots(ctx context.Context, root string, candidates []string) ([]string, error) {
	var mu sync.Mutex
	found := make([]string, 0, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, rel := range candidates {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			dir := rel
			if !filepath.IsAbs(dir) {
				dir = filepath.Join(root, rel)
			}
			if st, err := os.Stat(dir); err == nil && st.IsDir() {
				mu.Lock()
				found = append(found, dir)
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	sort.Slice(found, func(i, j int) bool {
		if len(found[i]) != len(found[j]) {
			return len(found[i]) > len(found[j])
		}
		return found[i] < found[j]
	})
	return found, nil
}
