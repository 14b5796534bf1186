// Package workspace locates and describes the workspace slate operates in:
// the slate.toml config, the Scala source roots, and a small disk cache so
// repeated server starts skip the root scan.
package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// ConfigFile is the workspace marker and configuration file.
const ConfigFile = "slate.toml"

// Config mirrors slate.toml.
type Config struct {
	Workspace WorkspaceConfig `toml:"workspace"`
}

// WorkspaceConfig holds the [workspace] table.
type WorkspaceConfig struct {
	// SourceRoots are workspace-relative directories that act as package
	// roots. Empty means the conventional defaults.
	SourceRoots []string `toml:"source-roots"`
}

// DefaultSourceRoots are the conventional Scala build layouts tried when
// slate.toml does not pin roots explicitly. "." makes a bare directory of
// .scala files work out of the box.
func DefaultSourceRoots() []string {
	return []string{
		filepath.Join("src", "main", "scala"),
		filepath.Join("src", "test", "scala"),
		".",
	}
}

// FindConfig walks up from startDir looking for slate.toml. The second
// result is false when no config exists anywhere above startDir.
func FindConfig(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ConfigFile)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// LoadConfig parses a slate.toml file.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	return cfg, nil
}
