package speech

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"

	"github.com/arguingbananas/eleven/internal/metrics"
)

// RetryPolicy bounds the retry wrapper: Attempts total tries, waiting Base,
// 2*Base, 4*Base... between them, each wait capped at Cap.
type RetryPolicy struct {
	Attempts uint64
	Base     time.Duration
	Cap      time.Duration
}

// DefaultRetryPolicy is 4 attempts, 1s doubling backoff capped at 16s.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Attempts: 4, Base: time.Second, Cap: 16 * time.Second}
}

// Backoff returns a fresh backoff sequence for one Retry call.
func (p RetryPolicy) Backoff() retry.Backoff {
	base := p.Base
	if base <= 0 {
		base = time.Second
	}
	b := retry.NewExponential(base)
	if p.Cap > 0 {
		b = retry.WithCappedDuration(p.Cap, b)
	}
	var retries uint64
	if p.Attempts > 1 {
		retries = p.Attempts - 1
	}
	return retry.WithMaxRetries(retries, b)
}

// Retry calls fn until it succeeds or the policy is exhausted, retrying on
// any error. Each attempt is logged before it runs. When attempts run out
// the last error is returned unchanged; a cancelled ctx stops early with
// ctx.Err().
func Retry(ctx context.Context, p RetryPolicy, log zerolog.Logger, fn func(ctx context.Context, attempt int) error) error {
	attempt := 0
	return retry.Do(ctx, p.Backoff(), func(ctx context.Context) error {
		attempt++
		if attempt > 1 {
			metrics.RetriesTotal.Inc()
		}
		log.Info().Int("attempt", attempt).Uint64("max_attempts", p.Attempts).Msg("uploading")
		if err := fn(ctx, attempt); err != nil {
			log.Debug().Err(err).Int("attempt", attempt).Msg("attempt failed")
			return retry.RetryableError(err)
		}
		return nil
	})
}
