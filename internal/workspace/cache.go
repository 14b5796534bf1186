package workspace

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"
)

// Current schema version - increment when layoutPayload format changes.
const layoutCacheSchemaVersion uint16 = 1

// LayoutCache persists resolved workspace layouts under the user cache dir
// so a server restart skips the source-root probe. Thread-safe.
type LayoutCache struct {
	mu  sync.RWMutex
	dir string
}

type layoutPayload struct {
	Schema      uint16
	Root        string
	SourceRoots []string
	ConfigMod   int64 // slate.toml mtime (unixnano), 0 when absent
}

// OpenLayoutCache initializes a layout cache at the standard XDG location.
func OpenLayoutCache(app string) (*LayoutCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	dir := filepath.Join(base, app)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &LayoutCache{dir: dir}, nil
}

func (c *LayoutCache) pathFor(root string) string {
	sum := sha256.Sum256([]byte(root))
	return filepath.Join(c.dir, "layouts", hex.EncodeToString(sum[:])+".mp")
}

// Put serializes a layout to the cache. start is the directory the layout
// was resolved from; when slate.toml rebased the root above it, an alias
// entry keyed by start is written too, so the next Get(start) still hits.
func (c *LayoutCache) Put(layout Layout, start string) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	payload := layoutPayload{
		Schema:      layoutCacheSchemaVersion,
		Root:        layout.Root,
		SourceRoots: layout.SourceRoots,
		ConfigMod:   configModTime(layout.Root),
	}
	data, err := msgpack.Marshal(&payload)
	if err != nil {
		return err
	}
	if err := c.writeEntry(c.pathFor(layout.Root), data); err != nil {
		return err
	}
	if start != "" && start != layout.Root {
		return c.writeEntry(c.pathFor(start), data)
	}
	return nil
}

func (c *LayoutCache) writeEntry(p string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, p)
}

// Get loads a cached layout for a start directory. The entry may be an
// alias whose root lies above start; freshness is checked against the
// stored root. The second result is false when the entry is missing,
// stale, or from another schema version.
func (c *LayoutCache) Get(start string) (Layout, bool) {
	if c == nil {
		return Layout{}, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	data, err := os.ReadFile(c.pathFor(start))
	if err != nil {
		return Layout{}, false
	}
	var payload layoutPayload
	if err := msgpack.Unmarshal(data, &payload); err != nil {
		return Layout{}, false
	}
	if payload.Schema != layoutCacheSchemaVersion || payload.Root == "" {
		return Layout{}, false
	}
	if st, err := os.Stat(payload.Root); err != nil || !st.IsDir() {
		return Layout{}, false
	}
	if payload.ConfigMod != configModTime(payload.Root) {
		return Layout{}, false
	}
	for _, dir := range payload.SourceRoots {
		if st, err := os.Stat(dir); err != nil || !st.IsDir() {
			return Layout{}, false
		}
	}
	return Layout{Root: payload.Root, SourceRoots: payload.SourceRoots}, true
}

func configModTime(root string) int64 {
	st, err := os.Stat(filepath.Join(root, ConfigFile))
	if err != nil {
		return 0
	}
	return st.ModTime().UnixNano()
}
