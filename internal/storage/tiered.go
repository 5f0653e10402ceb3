package storage

import (
	"context"

	"github.com/rs/zerolog"
)

// TieredStore writes to a local archive (source of truth) and backs the
// object up to S3.
type TieredStore struct {
	remote ArchiveStore
	local  ArchiveStore
	log    zerolog.Logger
}

// NewTieredStore creates a tiered local-primary + remote-backup store.
func NewTieredStore(remote, local ArchiveStore, log zerolog.Logger) *TieredStore {
	return &TieredStore{
		remote: remote,
		local:  local,
		log:    log.With().Str("component", "tiered-store").Logger(),
	}
}

// Save writes to local disk first (fatal on failure), then the remote
// backup (warning on failure).
func (s *TieredStore) Save(ctx context.Context, key string, data []byte, ct string) error {
	if err := s.local.Save(ctx, key, data, ct); err != nil {
		return err
	}
	if err := s.remote.Save(ctx, key, data, ct); err != nil {
		s.log.Warn().Err(err).Str("key", key).Str("store", s.remote.Type()).Msg("backup write failed")
	}
	return nil
}

func (s *TieredStore) Exists(ctx context.Context, key string) bool {
	if s.local.Exists(ctx, key) {
		return true
	}
	return s.remote.Exists(ctx, key)
}

func (s *TieredStore) Type() string { return "tiered" }
