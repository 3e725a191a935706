package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/openwater-etl/internal/domain"
	"github.com/couchcryptid/openwater-etl/internal/feed"
	"github.com/couchcryptid/openwater-etl/internal/observability"
	"github.com/jonboulle/clockwork"
)

// FeedFetcher downloads the complete feed document.
type FeedFetcher interface {
	Fetch(ctx context.Context) ([]byte, error)
}

// FeedParser turns a feed document into a Reading Store.
type FeedParser interface {
	Parse(r io.Reader) (feed.Result, error)
}

// RecipientSource lists the current report recipients.
type RecipientSource interface {
	Recipients(ctx context.Context) ([]domain.Recipient, error)
}

// Renderer builds one recipient's notification. It must be safe for
// concurrent use.
type Renderer interface {
	Render(r domain.Recipient, readings []domain.Reading) (domain.Notification, error)
}

// BatchLoader writes notifications to the destination.
type BatchLoader interface {
	LoadBatch(ctx context.Context, notifications []domain.Notification) error
}

// Options tunes the poll loop. Zero values select the defaults.
type Options struct {
	// Interval between runs. Zero runs once.
	Interval time.Duration
	// Clock drives the poll ticker.
	Clock clockwork.Clock
	// MaxPublishAttempts bounds sink retries per run. Default 5.
	MaxPublishAttempts int
	// InitialBackoff is the first retry delay, doubled per attempt up to
	// 5s. Default 200ms.
	InitialBackoff time.Duration
}

const maxBackoff = 5 * time.Second

// Summary describes one completed run.
type Summary struct {
	Records    int
	Readings   int
	Skipped    int
	Recipients int
	Published  int
}

// Pipeline orchestrates the fetch-scan-report-publish cycle.
type Pipeline struct {
	fetcher    FeedFetcher
	parser     FeedParser
	recipients RecipientSource
	renderer   Renderer
	loader     BatchLoader
	logger     *slog.Logger
	metrics    *observability.Metrics

	interval       time.Duration
	clock          clockwork.Clock
	maxAttempts    int
	initialBackoff time.Duration

	latest atomic.Pointer[domain.Store]
	ready  atomic.Bool
}

// New creates a Pipeline with the given stages and observability.
func New(f FeedFetcher, parser FeedParser, rs RecipientSource, r Renderer, l BatchLoader, logger *slog.Logger, metrics *observability.Metrics, opts Options) *Pipeline {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.MaxPublishAttempts <= 0 {
		opts.MaxPublishAttempts = 5
	}
	if opts.InitialBackoff <= 0 {
		opts.InitialBackoff = 200 * time.Millisecond
	}
	return &Pipeline{
		fetcher:        f,
		parser:         parser,
		recipients:     rs,
		renderer:       r,
		loader:         l,
		logger:         logger,
		metrics:        metrics,
		interval:       opts.Interval,
		clock:          opts.Clock,
		maxAttempts:    opts.MaxPublishAttempts,
		initialBackoff: opts.InitialBackoff,
	}
}

// CheckReadiness returns nil once a feed scan has completed, or an error
// describing why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("no feed scan has completed yet")
	}
	return nil
}

// Latest returns the store from the most recent successful scan, or nil.
func (p *Pipeline) Latest() *domain.Store {
	return p.latest.Load()
}

// Run executes one cycle immediately and then one per interval until the
// context is cancelled. With a zero interval it runs once and returns that
// run's error.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started", "interval", p.interval)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	err := p.runAndLog(ctx)
	if p.interval <= 0 {
		return err
	}

	ticker := p.clock.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		case <-ticker.Chan():
			_ = p.runAndLog(ctx)
		}
	}
}

func (p *Pipeline) runAndLog(ctx context.Context) error {
	start := time.Now()
	sum, err := p.RunOnce(ctx)
	if err != nil {
		if ctx.Err() == nil {
			p.logger.Error("pipeline run failed", "error", err)
		}
		return err
	}
	p.metrics.RunDuration.Observe(time.Since(start).Seconds())
	p.logger.Info("pipeline run complete",
		"readings", sum.Readings,
		"skipped", sum.Skipped,
		"recipients", sum.Recipients,
		"published", sum.Published,
	)
	return nil
}

// RunOnce fetches and scans the feed, publishes the new store for queries,
// then renders and loads one notification per recipient. A fetch failure
// aborts the run before scanning; the previous store stays current.
func (p *Pipeline) RunOnce(ctx context.Context) (Summary, error) {
	var sum Summary

	body, err := p.fetcher.Fetch(ctx)
	if err != nil {
		return sum, fmt.Errorf("fetch feed: %w", err)
	}

	res, err := p.parser.Parse(bytes.NewReader(body))
	if err != nil {
		return sum, fmt.Errorf("parse feed: %w", err)
	}
	p.recordScan(res)

	sum.Records = res.Records
	sum.Readings = res.Store.Len()
	sum.Skipped = len(res.Skipped)

	rs, err := p.recipients.Recipients(ctx)
	if err != nil {
		return sum, fmt.Errorf("load recipients: %w", err)
	}
	p.metrics.RecipientsLoaded.Set(float64(len(rs)))
	sum.Recipients = len(rs)

	batch := p.renderAll(res.Store, rs)
	if err := p.publish(ctx, batch); err != nil {
		return sum, err
	}
	sum.Published = len(batch)
	return sum, nil
}

func (p *Pipeline) recordScan(res feed.Result) {
	p.metrics.ReadingsExtracted.Add(float64(res.Store.Len()))
	p.metrics.LastScanReadings.Set(float64(res.Store.Len()))
	for _, s := range res.Skipped {
		p.metrics.RecordsSkipped.WithLabelValues(s.Reason()).Inc()
	}

	p.latest.Store(res.Store)
	p.ready.Store(true)
}

// renderAll renders every recipient's report concurrently. The store is
// immutable, so the goroutines share it without locking. Recipients whose
// report fails to render are logged and left out of the batch.
func (p *Pipeline) renderAll(store *domain.Store, rs []domain.Recipient) []domain.Notification {
	out := make([]domain.Notification, len(rs))
	errs := make([]error, len(rs))

	var wg sync.WaitGroup
	for i := range rs {
		wg.Go(func() {
			out[i], errs[i] = p.renderer.Render(rs[i], rs[i].Select(store))
		})
	}
	wg.Wait()

	batch := make([]domain.Notification, 0, len(rs))
	for i := range rs {
		if errs[i] != nil {
			p.logger.Warn("render failed, skipping recipient", "recipient", rs[i].Email, "error", errs[i])
			p.metrics.RenderErrors.Inc()
			continue
		}
		batch = append(batch, out[i])
	}
	return batch
}

// publish loads the batch, retrying with exponential backoff up to the
// configured number of attempts.
func (p *Pipeline) publish(ctx context.Context, batch []domain.Notification) error {
	if len(batch) == 0 {
		return nil
	}

	backoff := p.initialBackoff
	var err error
	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		if err = p.loader.LoadBatch(ctx, batch); err == nil {
			p.metrics.NotificationsProduced.Add(float64(len(batch)))
			return nil
		}

		p.metrics.PublishErrors.Inc()
		p.logger.Error("load batch failed", "error", err, "batch_size", len(batch), "attempt", attempt)

		if attempt == p.maxAttempts || !sleepWithContext(ctx, backoff) {
			break
		}
		backoff = nextBackoff(backoff, maxBackoff)
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return fmt.Errorf("publish notifications: %w", err)
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
