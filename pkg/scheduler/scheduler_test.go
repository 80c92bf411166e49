package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/newsdesk/pkg/aggregator"
	"github.com/umputun/newsdesk/pkg/domain"
	"github.com/umputun/newsdesk/pkg/scheduler/mocks"
)

func testArticles(titles ...string) []domain.Article {
	res := make([]domain.Article, 0, len(titles))
	for _, t := range titles {
		res = append(res, domain.Article{ID: t, Title: t, DetailLink: "https://example.com/" + t})
	}
	return res
}

func TestNew(t *testing.T) {
	s := New(Params{})
	assert.Equal(t, DefaultInterval, s.interval)

	s = New(Params{Interval: 5 * time.Minute, Sources: []aggregator.Source{{Name: "a"}}})
	assert.Equal(t, 5*time.Minute, s.interval)
	assert.Len(t, s.sources, 1)
}

func TestScheduler_RunOnce(t *testing.T) {
	sources := []aggregator.Source{{Name: "gazette", URL: "https://gazette.example.com"}}

	t.Run("commits articles", func(t *testing.T) {
		runner := &mocks.RunnerMock{RunFunc: func(context.Context, []aggregator.Source) []domain.Article {
			return testArticles("a", "b")
		}}
		store := &mocks.CommitterMock{CommitFunc: func([]domain.Article) error { return nil }}
		s := New(Params{Aggregator: runner, Store: store, Sources: sources})

		require.NoError(t, s.RunOnce(context.Background()))

		require.Len(t, runner.RunCalls(), 1)
		assert.Equal(t, sources, runner.RunCalls()[0].Sources)
		require.Len(t, store.CommitCalls(), 1)
		assert.Equal(t, testArticles("a", "b"), store.CommitCalls()[0].Articles)

		st := s.Status()
		assert.Equal(t, 2, st.Articles)
		assert.Empty(t, st.LastError)
		assert.Zero(t, st.Failures)
		assert.False(t, st.Running)
		assert.False(t, st.LastRun.IsZero())
		assert.False(t, st.LastSuccess.Before(st.LastRun))
	})

	t.Run("zero articles keeps snapshot", func(t *testing.T) {
		runner := &mocks.RunnerMock{RunFunc: func(context.Context, []aggregator.Source) []domain.Article {
			return []domain.Article{}
		}}
		store := &mocks.CommitterMock{CommitFunc: func([]domain.Article) error { return nil }}
		s := New(Params{Aggregator: runner, Store: store, Sources: sources})

		err := s.RunOnce(context.Background())
		require.ErrorIs(t, err, ErrNoArticles)
		assert.Empty(t, store.CommitCalls())

		st := s.Status()
		assert.Equal(t, ErrNoArticles.Error(), st.LastError)
		assert.Equal(t, 1, st.Failures)
		assert.True(t, st.LastSuccess.IsZero())
	})

	t.Run("commit failure recorded", func(t *testing.T) {
		runner := &mocks.RunnerMock{RunFunc: func(context.Context, []aggregator.Source) []domain.Article {
			return testArticles("a")
		}}
		store := &mocks.CommitterMock{CommitFunc: func([]domain.Article) error { return errors.New("disk full") }}
		s := New(Params{Aggregator: runner, Store: store, Sources: sources})

		err := s.RunOnce(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "disk full")
		err = s.RunOnce(context.Background())
		require.Error(t, err)

		st := s.Status()
		assert.Contains(t, st.LastError, "commit snapshot: disk full")
		assert.Equal(t, 2, st.Failures)
		assert.Zero(t, st.Articles)

		// recovery resets failures
		store.CommitFunc = func([]domain.Article) error { return nil }
		require.NoError(t, s.RunOnce(context.Background()))
		st = s.Status()
		assert.Empty(t, st.LastError)
		assert.Zero(t, st.Failures)
		assert.Equal(t, 1, st.Articles)
	})

	t.Run("canceled run is not committed", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		runner := &mocks.RunnerMock{RunFunc: func(context.Context, []aggregator.Source) []domain.Article {
			cancel()
			return testArticles("partial")
		}}
		store := &mocks.CommitterMock{CommitFunc: func([]domain.Article) error { return nil }}
		s := New(Params{Aggregator: runner, Store: store})

		err := s.RunOnce(ctx)
		require.ErrorIs(t, err, context.Canceled)
		assert.Empty(t, store.CommitCalls())
	})

	t.Run("overlapping run skipped", func(t *testing.T) {
		started, release := make(chan struct{}), make(chan struct{})
		runner := &mocks.RunnerMock{RunFunc: func(context.Context, []aggregator.Source) []domain.Article {
			close(started)
			<-release
			return testArticles("a")
		}}
		store := &mocks.CommitterMock{CommitFunc: func([]domain.Article) error { return nil }}
		s := New(Params{Aggregator: runner, Store: store})

		done := make(chan error)
		go func() { done <- s.RunOnce(context.Background()) }()
		<-started
		assert.True(t, s.Status().Running)

		require.ErrorIs(t, s.RunOnce(context.Background()), ErrRunInProgress)
		close(release)
		require.NoError(t, <-done)
		assert.Len(t, runner.RunCalls(), 1)
		assert.Len(t, store.CommitCalls(), 1)
	})
}

func TestScheduler_StartStop(t *testing.T) {
	var runs atomic.Int32
	runner := &mocks.RunnerMock{RunFunc: func(context.Context, []aggregator.Source) []domain.Article {
		runs.Add(1)
		return testArticles("a")
	}}
	store := &mocks.CommitterMock{CommitFunc: func([]domain.Article) error { return nil }}
	s := New(Params{Aggregator: runner, Store: store, Interval: time.Hour})

	require.NoError(t, s.Start(context.Background()))
	require.Eventually(t, func() bool { return len(store.CommitCalls()) == 1 }, time.Second, 10*time.Millisecond,
		"first run happens on start, not after the interval")
	s.Stop()
	assert.Equal(t, int32(1), runs.Load())
}

func TestScheduler_StartRunsPeriodically(t *testing.T) {
	runner := &mocks.RunnerMock{RunFunc: func(context.Context, []aggregator.Source) []domain.Article {
		return testArticles("a")
	}}
	store := &mocks.CommitterMock{CommitFunc: func([]domain.Article) error { return nil }}
	s := New(Params{Aggregator: runner, Store: store, Interval: time.Second})

	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()
	require.Eventually(t, func() bool { return len(runner.RunCalls()) >= 2 }, 3*time.Second, 50*time.Millisecond)
}

func TestScheduler_StopCancelsRun(t *testing.T) {
	started := make(chan struct{})
	var sawCancel atomic.Bool
	runner := &mocks.RunnerMock{RunFunc: func(ctx context.Context, _ []aggregator.Source) []domain.Article {
		close(started)
		<-ctx.Done()
		sawCancel.Store(true)
		return testArticles("late")
	}}
	store := &mocks.CommitterMock{CommitFunc: func([]domain.Article) error { return nil }}
	s := New(Params{Aggregator: runner, Store: store})

	require.NoError(t, s.Start(context.Background()))
	<-started
	s.Stop()

	assert.True(t, sawCancel.Load())
	assert.Empty(t, store.CommitCalls())
	assert.Contains(t, s.Status().LastError, "canceled")
}

func TestCronLogger(t *testing.T) {
	l := cronLogger{}
	l.Info("start", "now", time.Now())
	l.Error(errors.New("failed"), "job", "id", 1)
}
