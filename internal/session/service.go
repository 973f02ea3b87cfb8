// Package session owns recitation session submission: payload assembly,
// validation, network delivery with bounded retry, and the durable offline
// queue that replays automatically once connectivity returns.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/avast/retry-go"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"hifztrack/internal/api"
	"hifztrack/internal/quran"
	"hifztrack/internal/store"
)

const (
	// submitAttempts bounds transport retries for one delivery: the first
	// attempt plus linear-backoff retries (1s, 2s) before queueing.
	submitAttempts = 3
	// maxDrainRetries caps delivery attempts per queued item across drains.
	maxDrainRetries = 3
)

// SubmitClient is the slice of the backend API the service needs.
type SubmitClient interface {
	CreateRecitation(ctx context.Context, submission api.Submission) (*api.CreatedRecitation, error)
	TestConnection(ctx context.Context) error
}

// QueueStore persists the offline queue.
type QueueStore interface {
	AppendQueueItem(item store.QueueItem) error
	QueueItems() ([]store.QueueItem, error)
	SetQueueRetryCount(id string, retryCount int) error
	DeleteQueueItem(id string) error
}

// Config tunes the service. Zero values fall back to defaults.
type Config struct {
	// RetryUnit is the linear backoff unit between transport retries.
	RetryUnit time.Duration
	// ProbeInterval is how often the connectivity prober polls the backend.
	ProbeInterval time.Duration
	// OnPermanentFailure receives queue items dropped after exhausting the
	// retry cap, with the final error.
	OnPermanentFailure func(item store.QueueItem, err error)
}

// Result reports how a submission was handled. Exactly one of Delivered or
// Queued is set on success.
type Result struct {
	Delivered bool
	Queued    bool
	Record    *api.CreatedRecitation
}

// Service is the offline-aware submission service. Construct with
// NewService, then call Start to attach the connectivity prober and Stop to
// tear it down; nothing happens implicitly at construction time.
type Service struct {
	client     SubmitClient
	queue      QueueStore
	validate   *validator.Validate
	translator ut.Translator

	retryUnit          time.Duration
	probeInterval      time.Duration
	onPermanentFailure func(item store.QueueItem, err error)

	online    atomic.Bool
	drainMu   sync.Mutex
	idCounter atomic.Int64
	now       func() time.Time

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewService creates a submission service. The service assumes it is online
// until the first probe or an explicit SetOnline says otherwise.
func NewService(client SubmitClient, queue QueueStore, cfg Config) (*Service, error) {
	validate, translator, err := newValidator()
	if err != nil {
		return nil, fmt.Errorf("newValidator > %w", err)
	}

	if cfg.RetryUnit <= 0 {
		cfg.RetryUnit = time.Second
	}
	if cfg.ProbeInterval <= 0 {
		cfg.ProbeInterval = 30 * time.Second
	}

	service := &Service{
		client:             client,
		queue:              queue,
		validate:           validate,
		translator:         translator,
		retryUnit:          cfg.RetryUnit,
		probeInterval:      cfg.ProbeInterval,
		onPermanentFailure: cfg.OnPermanentFailure,
		now:                time.Now,
	}
	service.online.Store(true)
	return service, nil
}

// Start launches the connectivity prober. The first probe runs immediately;
// afterwards the backend liveness endpoint is polled on the configured
// interval. Transition to online triggers a queue drain.
func (s *Service) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.probe(ctx)

		ticker := time.NewTicker(s.probeInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.probe(ctx)
			}
		}
	}()
}

// Stop cancels the prober and waits for in-flight background work.
func (s *Service) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

func (s *Service) probe(ctx context.Context) {
	err := s.client.TestConnection(ctx)
	// A server-side error still means the backend is reachable; only
	// transport failures flip the service offline.
	reachable := err == nil || api.IsApplicationError(err)
	s.setOnline(ctx, reachable)
}

// Online reports the last known connectivity state.
func (s *Service) Online() bool {
	return s.online.Load()
}

// SetOnline overrides the connectivity flag. Transitioning from offline to
// online drains the queue in the background.
func (s *Service) SetOnline(online bool) {
	s.setOnline(context.Background(), online)
}

func (s *Service) setOnline(ctx context.Context, online bool) {
	was := s.online.Swap(online)
	if online && !was {
		slog.Default().Info("connectivity restored, draining offline queue")
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			if err := s.DrainQueue(ctx); err != nil {
				slog.Default().Warn("queue drain failed", "error", err)
			}
		}()
	}
}

// CollectParams is the user-facing input gathered at submit time.
type CollectParams struct {
	PageNumber    int
	Mistakes      []int
	Rating        string
	Notes         string
	AudioRecorded bool
}

// Collect assembles the immutable submission payload: derives the surah
// name and juz from the page number, trims notes, and stamps the
// recitation date.
func (s *Service) Collect(params CollectParams) api.Submission {
	mistakes := params.Mistakes
	if mistakes == nil {
		mistakes = []int{}
	}
	return api.Submission{
		PageNumber:     params.PageNumber,
		SurahName:      quran.SurahFromPage(params.PageNumber),
		Juz:            quran.JuzFromPage(params.PageNumber),
		Rating:         params.Rating,
		ManualMistakes: mistakes,
		Notes:          strings.TrimSpace(params.Notes),
		RecitationDate: s.now().UTC().Format(time.RFC3339),
		AudioRecorded:  params.AudioRecorded,
	}
}

// Submit validates and delivers a session. Connectivity problems never fail
// the call: the submission falls back to the offline queue. Only validation
// failures and application-level rejections are returned as errors.
func (s *Service) Submit(ctx context.Context, submission api.Submission) (Result, error) {
	if err := s.Validate(submission); err != nil {
		return Result{}, err
	}

	if !s.Online() {
		s.Enqueue(submission)
		return Result{Queued: true}, nil
	}

	record, err := s.deliver(ctx, submission)
	if err != nil {
		if api.IsApplicationError(err) {
			return Result{}, err
		}
		slog.Default().Warn("submission failed after retries, queueing",
			"pageNumber", submission.PageNumber,
			"error", err)
		s.Enqueue(submission)
		return Result{Queued: true}, nil
	}
	return Result{Delivered: true, Record: record}, nil
}

// deliver attempts one network delivery with bounded linear backoff.
// Application-level rejections abort the retry loop immediately.
func (s *Service) deliver(ctx context.Context, submission api.Submission) (*api.CreatedRecitation, error) {
	var record *api.CreatedRecitation
	var rejection error

	err := retry.Do(
		func() error {
			created, err := s.client.CreateRecitation(ctx, submission)
			if err != nil {
				if api.IsApplicationError(err) {
					rejection = err
					return retry.Unrecoverable(err)
				}
				return err
			}
			record = created
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(submitAttempts),
		retry.DelayType(func(n uint, err error, config *retry.Config) time.Duration {
			return time.Duration(n+1) * s.retryUnit
		}),
		retry.LastErrorOnly(true),
	)
	if rejection != nil {
		return nil, rejection
	}
	if err != nil {
		return nil, fmt.Errorf("client.CreateRecitation > %w", err)
	}
	return record, nil
}

// Enqueue appends the submission to the durable offline queue. It never
// fails: a persistence problem is logged and the submission is still
// reported as queued so the caller does not retry a user-facing submit.
func (s *Service) Enqueue(submission api.Submission) {
	item := store.QueueItem{
		ID:         s.nextQueueID(),
		Payload:    submission,
		EnqueuedAt: s.now().UTC(),
		RetryCount: 0,
	}
	if err := s.queue.AppendQueueItem(item); err != nil {
		slog.Default().Warn("failed to persist offline queue item",
			"id", item.ID,
			"error", err)
		return
	}
	slog.Default().Info("submission queued for later delivery",
		"id", item.ID,
		"pageNumber", submission.PageNumber)
}

// nextQueueID derives a unique queue item id from the current time, with a
// counter suffix so two enqueues in the same nanosecond cannot collide.
func (s *Service) nextQueueID() string {
	return strconv.FormatInt(s.now().UnixNano(), 10) + "-" + strconv.FormatInt(s.idCounter.Add(1), 10)
}

// DrainQueue replays queued submissions. Items that deliver are removed;
// items that fail on transport keep their place with an incremented retry
// count until the cap, after which they are dropped and reported through
// the permanent-failure listener. Only one drain runs at a time.
func (s *Service) DrainQueue(ctx context.Context) error {
	if !s.drainMu.TryLock() {
		return nil
	}
	defer s.drainMu.Unlock()

	items, err := s.queue.QueueItems()
	if err != nil {
		return fmt.Errorf("queue.QueueItems > %w", err)
	}

	for _, item := range items {
		if _, err := s.deliver(ctx, item.Payload); err == nil {
			if err := s.queue.DeleteQueueItem(item.ID); err != nil {
				return fmt.Errorf("queue.DeleteQueueItem(%s) > %w", item.ID, err)
			}
			slog.Default().Info("queued submission delivered", "id", item.ID)
			continue
		} else if api.IsApplicationError(err) {
			// The server rejected the payload; a replay cannot fix it.
			if deleteErr := s.queue.DeleteQueueItem(item.ID); deleteErr != nil {
				return fmt.Errorf("queue.DeleteQueueItem(%s) > %w", item.ID, deleteErr)
			}
			s.reportPermanentFailure(item, err)
			continue
		} else {
			item.RetryCount++
			if item.RetryCount >= maxDrainRetries {
				if deleteErr := s.queue.DeleteQueueItem(item.ID); deleteErr != nil {
					return fmt.Errorf("queue.DeleteQueueItem(%s) > %w", item.ID, deleteErr)
				}
				s.reportPermanentFailure(item, err)
				continue
			}
			if err := s.queue.SetQueueRetryCount(item.ID, item.RetryCount); err != nil {
				return fmt.Errorf("queue.SetQueueRetryCount(%s) > %w", item.ID, err)
			}
		}
	}
	return nil
}

func (s *Service) reportPermanentFailure(item store.QueueItem, err error) {
	slog.Default().Error("dropping queued submission",
		"id", item.ID,
		"retryCount", item.RetryCount,
		"error", err)
	if s.onPermanentFailure != nil {
		s.onPermanentFailure(item, err)
	}
}

// ListQueued returns the queued submissions without mutating the queue.
func (s *Service) ListQueued() ([]store.QueueItem, error) {
	items, err := s.queue.QueueItems()
	if err != nil {
		return nil, fmt.Errorf("queue.QueueItems > %w", err)
	}
	return items, nil
}

// RemoveQueued explicitly discards a queued submission.
func (s *Service) RemoveQueued(id string) error {
	if err := s.queue.DeleteQueueItem(id); err != nil {
		return fmt.Errorf("queue.DeleteQueueItem(%s) > %w", id, err)
	}
	return nil
}
