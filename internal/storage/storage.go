package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/arguingbananas/eleven/internal/config"
)

// ArchiveStore abstracts archive storage backends for produced transcripts
// and audio.
type ArchiveStore interface {
	// Save stores data. key format: {YYYY-MM-DD}/{filename}
	Save(ctx context.Context, key string, data []byte, contentType string) error

	// Exists checks if an object exists in any backend.
	Exists(ctx context.Context, key string) bool

	// Type returns "local", "s3", or "tiered".
	Type() string
}

// New creates an ArchiveStore from config. It returns a nil store when
// neither archiveDir nor an S3 bucket is configured (archiving disabled).
// Returns an error if S3 is configured but unreachable.
func New(ctx context.Context, cfg config.S3Config, archiveDir string, log zerolog.Logger) (ArchiveStore, error) {
	if !cfg.Enabled() {
		if archiveDir == "" {
			return nil, nil
		}
		return NewLocalStore(archiveDir), nil
	}

	s3store, err := NewS3Store(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("S3 init failed: %w", err)
	}

	// Startup validation: verify credentials and bucket access
	hctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := s3store.HeadBucket(hctx); err != nil {
		return nil, fmt.Errorf("S3 startup check failed (bucket=%q endpoint=%q): %w",
			cfg.Bucket, cfg.Endpoint, err)
	}
	log.Debug().Str("bucket", cfg.Bucket).Str("endpoint", cfg.Endpoint).Msg("S3 connection verified")

	if archiveDir == "" {
		return s3store, nil
	}

	// Tiered mode: local primary + S3 backup
	return NewTieredStore(s3store, NewLocalStore(archiveDir), log), nil
}
