package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/arguingbananas/eleven/internal/config"
	"github.com/arguingbananas/eleven/internal/speech"
	"github.com/arguingbananas/eleven/internal/storage"
)

// App is the runtime shared by every subcommand.
type App struct {
	ctx    context.Context
	cfg    *config.Config
	log    zerolog.Logger
	stdout io.Writer
	stderr io.Writer

	storeOnce sync.Once
	store     storage.ArchiveStore
}

// requireCredential checks the API key before any network call. A missing
// key is always fatal. A malformed key is fatal when strict, else a warning.
func (a *App) requireCredential(strict bool) error {
	err := a.cfg.CheckCredential(strict)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, config.ErrMissingCredential):
		return inputError(fmt.Errorf("%w: set ELEVENLABS_API_KEY or pass --api-key", err))
	case strict:
		return inputError(err)
	default:
		a.log.Warn().Msg("the provided API key does not match the expected format (should start with sk_)")
		return nil
	}
}

// executor builds the dual-path executor from config. A vendor client that
// cannot be constructed leaves the executor on raw HTTP only.
func (a *App) executor() (*speech.Executor, error) {
	auth, err := speech.ParseAuthScheme(a.cfg.HTTPAuth)
	if err != nil {
		return nil, inputError(err)
	}
	opts := speech.Options{
		APIKey:    a.cfg.APIKey,
		ForceHTTP: bool(a.cfg.ForceHTTP),
		BaseURL:   a.cfg.BaseURL,
		HTTPAuth:  auth,
		Log:       a.log,
	}
	if a.cfg.UseSDK {
		vc, err := speech.NewVendorClient(speech.VendorConfig{
			APIKey:   a.cfg.APIKey,
			BaseURL:  a.cfg.BaseURL,
			TTSModel: a.cfg.TTSModel,
		})
		if err != nil {
			a.log.Warn().Err(err).Msg("vendor client unavailable, using HTTP only")
		} else {
			opts.Vendor = vc
		}
	}
	return speech.NewExecutor(opts), nil
}

func (a *App) retryPolicy() speech.RetryPolicy {
	return speech.RetryPolicy{
		Attempts: a.cfg.RetryAttempts,
		Base:     a.cfg.RetryBase,
		Cap:      a.cfg.RetryCap,
	}
}

// archive copies a produced file to the archive store, if one is configured.
// Failures are warnings.
func (a *App) archive(path string) {
	a.storeOnce.Do(func() {
		store, err := storage.New(a.ctx, a.cfg.S3, a.cfg.ArchiveDir, a.log)
		if err != nil {
			a.log.Warn().Err(err).Msg("archive store unavailable")
			return
		}
		a.store = store
	})
	if a.store == nil {
		return
	}
	key, err := storage.Archive(a.ctx, a.store, path, time.Now())
	if err != nil {
		a.log.Warn().Err(err).Str("path", path).Msg("archive failed")
		return
	}
	a.log.Debug().Str("key", key).Str("store", a.store.Type()).Msg("archived")
}
