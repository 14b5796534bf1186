package newfile

import (
	"os"
	"path/filepath"
)

// FS is the narrow slice of the file system the provider touches. It exists
// so tests can substitute a deterministic fake for the real disk.
type FS interface {
	// Exists reports whether path is present, file or directory.
	Exists(path string) bool
	// IsDir reports whether path is an existing directory.
	IsDir(path string) bool
	// WriteFile writes data to path, creating parent directories as needed.
	WriteFile(path string, data []byte) error
}

type osFS struct{}

// OSFS returns the real file-system implementation.
func OSFS() FS { return osFS{} }

func (osFS) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (osFS) IsDir(path string) bool {
	st, err := os.Stat(path)
	return err == nil && st.IsDir()
}

func (osFS) WriteFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
