// Package scheduler runs the aggregation on startup and then periodically, committing
// every non-empty result to the snapshot store. Runs never overlap, a run triggered while
// another one is in flight is skipped.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/robfig/cron/v3"

	"github.com/umputun/newsdesk/pkg/aggregator"
	"github.com/umputun/newsdesk/pkg/domain"
)

//go:generate moq -out mocks/runner.go -pkg mocks -skip-ensure -fmt goimports . Runner
//go:generate moq -out mocks/committer.go -pkg mocks -skip-ensure -fmt goimports . Committer

// DefaultInterval between scheduled runs
const DefaultInterval = time.Hour

var (
	// ErrNoArticles is returned when a run produced nothing, the snapshot is not touched
	ErrNoArticles = errors.New("no articles scraped")
	// ErrRunInProgress is returned when a run is requested while another one is active
	ErrRunInProgress = errors.New("run already in progress")
)

// Runner aggregates articles from sources
type Runner interface {
	Run(ctx context.Context, sources []aggregator.Source) []domain.Article
}

// Committer persists aggregated articles
type Committer interface {
	Commit(articles []domain.Article) error
}

// Params for New
type Params struct {
	Aggregator Runner
	Store      Committer
	Sources    []aggregator.Source
	Interval   time.Duration
}

// Status describes the outcome of past runs
type Status struct {
	LastRun     time.Time `json:"last_run"`
	LastSuccess time.Time `json:"last_success"`
	LastError   string    `json:"last_error,omitempty"`
	Articles    int       `json:"articles"` // articles in the last committed snapshot
	Failures    int       `json:"failures"` // consecutive failed runs
	Running     bool      `json:"running"`
}

// Scheduler owns the periodic aggregation job
type Scheduler struct {
	agg      Runner
	store    Committer
	sources  []aggregator.Source
	interval time.Duration

	runMu sync.Mutex // held for the whole run

	statusMu sync.RWMutex
	status   Status

	cron   *cron.Cron
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New makes a Scheduler, zero interval means DefaultInterval
func New(p Params) *Scheduler {
	if p.Interval <= 0 {
		p.Interval = DefaultInterval
	}
	return &Scheduler{
		agg:      p.Aggregator,
		store:    p.Store,
		sources:  p.Sources,
		interval: p.Interval,
	}
}

// Start runs the aggregation right away in background and then every interval.
// The job stops on Stop or when ctx is canceled.
func (s *Scheduler) Start(ctx context.Context) error {
	ctx, s.cancel = context.WithCancel(ctx)

	logger := cronLogger{}
	s.cron = cron.New(cron.WithLogger(logger), cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)))
	if _, err := s.cron.AddFunc("@every "+s.interval.String(), func() { s.run(ctx) }); err != nil {
		s.cancel()
		return fmt.Errorf("schedule aggregation every %v: %w", s.interval, err)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run(ctx)
	}()

	s.cron.Start()
	lgr.Printf("[INFO] scheduler started, %d sources, interval %v", len(s.sources), s.interval)
	return nil
}

// Stop cancels the in-flight run and waits for it to finish
func (s *Scheduler) Stop() {
	lgr.Printf("[INFO] stopping scheduler...")
	if s.cancel != nil {
		s.cancel()
	}
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
	s.wg.Wait()
	lgr.Printf("[INFO] scheduler stopped")
}

// RunOnce performs a single aggregation and commits the result. Nothing is written if
// the run produced no articles or was canceled.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	if !s.runMu.TryLock() {
		return ErrRunInProgress
	}
	defer s.runMu.Unlock()

	st := time.Now()
	s.setRunning(st)
	lgr.Printf("[INFO] aggregation started, %d sources", len(s.sources))

	articles := s.agg.Run(ctx, s.sources)
	if err := ctx.Err(); err != nil {
		err = fmt.Errorf("aggregation canceled: %w", err)
		s.finish(0, err)
		return err
	}
	if len(articles) == 0 {
		lgr.Printf("[WARN] no articles scraped, keeping previous snapshot")
		s.finish(0, ErrNoArticles)
		return ErrNoArticles
	}

	if err := s.store.Commit(articles); err != nil {
		err = fmt.Errorf("commit snapshot: %w", err)
		lgr.Printf("[ERROR] %v", err)
		s.finish(0, err)
		return err
	}

	s.finish(len(articles), nil)
	lgr.Printf("[INFO] aggregation completed, %d articles in %v", len(articles), time.Since(st).Round(time.Millisecond))
	return nil
}

// Status returns a copy of the current status
func (s *Scheduler) Status() Status {
	s.statusMu.RLock()
	defer s.statusMu.RUnlock()
	return s.status
}

// run is the scheduled job, errors are logged by RunOnce or here
func (s *Scheduler) run(ctx context.Context) {
	err := s.RunOnce(ctx)
	switch {
	case err == nil, errors.Is(err, ErrNoArticles):
	case errors.Is(err, ErrRunInProgress):
		lgr.Printf("[INFO] previous aggregation still running, skip")
	case errors.Is(err, context.Canceled):
		lgr.Printf("[DEBUG] %v", err)
	default:
		lgr.Printf("[WARN] aggregation failed: %v", err)
	}
}

func (s *Scheduler) setRunning(ts time.Time) {
	s.statusMu.Lock()
	defer s.statusMu.Unlock()
	s.status.Running = true
	s.status.LastRun = ts
}

func (s *Scheduler) finish(articles int, err error) {
	s.statusMu.Lock()
	defer s.statusMu.Unlock()
	s.status.Running = false
	if err != nil {
		s.status.LastError = err.Error()
		s.status.Failures++
		return
	}
	s.status.LastError = ""
	s.status.Failures = 0
	s.status.LastSuccess = time.Now()
	s.status.Articles = articles
}

// cronLogger sends cron's own messages to lgr
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...any) {
	lgr.Printf("[DEBUG] cron: %s %v", msg, keysAndValues)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...any) {
	lgr.Printf("[ERROR] cron: %s: %v %v", msg, err, keysAndValues)
}
