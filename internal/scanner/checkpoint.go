package scanner

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Checkpoint persists the scanner cursor so a restart can resume instead of
// re-scanning from the head.
type Checkpoint interface {
	Load() (height uint64, ok bool, err error)
	Save(height uint64) error
}

type FileCheckpoint struct {
	path string
}

func NewFileCheckpoint(path string) (*FileCheckpoint, error) {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return &FileCheckpoint{path: path}, nil
}

func (c *FileCheckpoint) Load() (uint64, bool, error) {
	b, err := os.ReadFile(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, false, nil
		}
		return 0, false, err
	}
	s := strings.TrimSpace(string(b))
	if s == "" {
		return 0, false, nil
	}
	h, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, false, err
	}
	return h, true, nil
}

func (c *FileCheckpoint) Save(height uint64) error {
	tmp := c.path + ".tmp"
	content := strconv.FormatUint(height, 10) + "\n"
	if err := os.WriteFile(tmp, []byte(content), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, c.path)
}
