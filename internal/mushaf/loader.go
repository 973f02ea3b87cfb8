package mushaf

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/avast/retry-go"

	"hifztrack/internal/api"
	"hifztrack/internal/quran"
)

// loadAttempts bounds transport retries for one page load.
const loadAttempts = 3

// PageClient is the slice of the backend API the loader needs.
type PageClient interface {
	GetPageLayout(ctx context.Context, pageNumber int) (*quran.Page, error)
}

// LoadStatus is surfaced before each retry so the caller can show an
// interim "retrying" state.
type LoadStatus struct {
	PageNumber int
	Attempt    int
	Err        error
}

// Loader fetches page layouts with a bounded retry loop. Transport
// failures are retried with a delay proportional to the attempt count;
// application-level responses (page not found, server rejection) fail
// immediately.
type Loader struct {
	client    PageClient
	delayUnit time.Duration
	onRetry   func(status LoadStatus)
}

// LoaderConfig tunes the loader. Zero values fall back to defaults.
type LoaderConfig struct {
	DelayUnit time.Duration
	OnRetry   func(status LoadStatus)
}

func NewLoader(client PageClient, cfg LoaderConfig) *Loader {
	if cfg.DelayUnit <= 0 {
		cfg.DelayUnit = time.Second
	}
	return &Loader{
		client:    client,
		delayUnit: cfg.DelayUnit,
		onRetry:   cfg.OnRetry,
	}
}

// Load fetches one page. Cancelling the context abandons the load,
// including any pending backoff timer.
func (l *Loader) Load(ctx context.Context, pageNumber int) (*quran.Page, error) {
	var page *quran.Page
	var rejection error

	err := retry.Do(
		func() error {
			loaded, err := l.client.GetPageLayout(ctx, pageNumber)
			if err != nil {
				if api.IsApplicationError(err) {
					rejection = err
					return retry.Unrecoverable(err)
				}
				return err
			}
			page = loaded
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(loadAttempts),
		retry.DelayType(func(n uint, err error, config *retry.Config) time.Duration {
			return time.Duration(n+1) * l.delayUnit
		}),
		retry.OnRetry(func(n uint, err error) {
			slog.Default().Info("retrying page load",
				"pageNumber", pageNumber,
				"attempt", n+1,
				"error", err)
			if l.onRetry != nil {
				l.onRetry(LoadStatus{PageNumber: pageNumber, Attempt: int(n) + 1, Err: err})
			}
		}),
		retry.LastErrorOnly(true),
	)
	if rejection != nil {
		return nil, rejection
	}
	if err != nil {
		return nil, fmt.Errorf("client.GetPageLayout(%d) > %w", pageNumber, err)
	}
	return page, nil
}
