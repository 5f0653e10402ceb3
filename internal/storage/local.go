package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var errKeyOutsideArchive = errors.New("archive key escapes the archive directory")

// LocalStore keeps archived transcripts and audio under a root directory,
// one subdirectory per archive date.
type LocalStore struct {
	root string
}

func NewLocalStore(root string) *LocalStore {
	return &LocalStore{root: root}
}

// resolve maps an archive key onto a path under root.
func (s *LocalStore) resolve(key string) (string, error) {
	rel := filepath.Clean(filepath.FromSlash(key))
	if filepath.IsAbs(rel) || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q", errKeyOutsideArchive, key)
	}
	return filepath.Join(s.root, rel), nil
}

// Save writes data under key. Readers never see a partially written file.
func (s *LocalStore) Save(ctx context.Context, key string, data []byte, contentType string) error {
	dst, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create archive dir: %w", err)
	}
	return replaceFile(dst, data)
}

func replaceFile(dst string, data []byte) (err error) {
	f, err := os.CreateTemp(filepath.Dir(dst), ".archive-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	defer func() {
		if err != nil {
			os.Remove(f.Name())
		}
	}()
	if _, err = f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", dst, err)
	}
	if err = f.Chmod(0o644); err != nil {
		f.Close()
		return fmt.Errorf("chmod %s: %w", dst, err)
	}
	if err = f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", dst, err)
	}
	if err = os.Rename(f.Name(), dst); err != nil {
		return fmt.Errorf("rename %s: %w", dst, err)
	}
	return nil
}

// Exists reports whether key has already been archived.
func (s *LocalStore) Exists(ctx context.Context, key string) bool {
	p, err := s.resolve(key)
	if err != nil {
		return false
	}
	fi, err := os.Stat(p)
	return err == nil && fi.Mode().IsRegular()
}

func (s *LocalStore) Type() string { return "local" }
