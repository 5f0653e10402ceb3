package storage

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/arguingbananas/eleven/internal/metrics"
)

// ArchiveKey returns the archive key for a produced file: {YYYY-MM-DD}/{base}.
// The date is taken in UTC.
func ArchiveKey(path string, now time.Time) string {
	return now.UTC().Format("2006-01-02") + "/" + filepath.Base(path)
}

// maxKeyVariants bounds the search for a free key before overwriting.
const maxKeyVariants = 100

// Archive copies the file at path into store under ArchiveKey and returns
// the key. When that key is already taken the file is stored as
// name-2.ext, name-3.ext and so on. A nil store is a no-op.
func Archive(ctx context.Context, store ArchiveStore, path string, now time.Time) (string, error) {
	if store == nil {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		metrics.ArchiveWritesTotal.WithLabelValues(store.Type(), "error").Inc()
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	key := freeKey(ctx, store, ArchiveKey(path, now))
	if err := store.Save(ctx, key, data, contentType(path)); err != nil {
		metrics.ArchiveWritesTotal.WithLabelValues(store.Type(), "error").Inc()
		return "", fmt.Errorf("archive %s: %w", key, err)
	}
	metrics.ArchiveWritesTotal.WithLabelValues(store.Type(), "ok").Inc()
	return key, nil
}

// freeKey returns key, or the first numbered variant of it not present in
// store. If every variant is taken, key itself is returned.
func freeKey(ctx context.Context, store ArchiveStore, key string) string {
	if !store.Exists(ctx, key) {
		return key
	}
	ext := filepath.Ext(key)
	stem := strings.TrimSuffix(key, ext)
	for n := 2; n <= maxKeyVariants; n++ {
		candidate := fmt.Sprintf("%s-%d%s", stem, n, ext)
		if !store.Exists(ctx, candidate) {
			return candidate
		}
	}
	return key
}

func contentType(path string) string {
	switch filepath.Ext(path) {
	case ".mp3":
		return "audio/mpeg"
	case ".wav":
		return "audio/wav"
	case ".pcm":
		return "audio/pcm"
	case ".ulaw":
		return "audio/basic"
	case ".txt":
		return "text/plain; charset=utf-8"
	case ".json":
		return "application/json"
	}
	return mime.TypeByExtension(filepath.Ext(path))
}
