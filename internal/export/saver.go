package export

import (
	"fmt"
	"os"
	"path/filepath"
)

// Saver stores a rendered export under the given file name and returns where it went
type Saver interface {
	Save(name string, data []byte) (string, error)
}

// DirSaver writes exports into a directory, creating it if needed
type DirSaver struct {
	Dir string
}

// Save implements Saver
func (s DirSaver) Save(name string, data []byte) (string, error) {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}

	path := filepath.Join(s.Dir, filepath.Base(name))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}
