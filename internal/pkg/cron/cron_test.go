package cron

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cmlabs-hris/shiftops-backend-go/internal/domain/shift"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/repository/memory"
)

type fakeSnapshotStore struct {
	saved   []shift.Shift
	loaded  []shift.Shift
	saveErr error
	saves   int
}

func (f *fakeSnapshotStore) SaveAll(ctx context.Context, shifts []shift.Shift) error {
	f.saves++
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = shifts
	return nil
}

func (f *fakeSnapshotStore) LoadAll(ctx context.Context) ([]shift.Shift, error) {
	return f.loaded, nil
}

func TestSnapshotJobs_SyncAndRestore(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewShiftRepository()
	store := &fakeSnapshotStore{loaded: []shift.Shift{{ID: "a"}, {ID: "b"}}}
	jobs := NewSnapshotJobs(repo, store, zap.NewNop())

	require.NoError(t, jobs.Restore(ctx))
	all, err := repo.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, jobs.SyncShiftSnapshot(ctx))
	assert.Len(t, store.saved, 2)

	store.saveErr = errors.New("db down")
	assert.ErrorIs(t, jobs.SyncShiftSnapshot(ctx), store.saveErr)
}

func TestScheduler_RunOnceJoinsFailures(t *testing.T) {
	s := NewScheduler(zap.NewNop())
	var calls atomic.Int32
	s.AddJob("count", time.Hour, func(ctx context.Context) error {
		calls.Add(1)
		return nil
	})
	boom := errors.New("boom")
	s.AddJob("fail", time.Hour, func(ctx context.Context) error { return boom })

	err := s.RunOnce(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.ErrorContains(t, err, "fail")
	assert.Equal(t, int32(1), calls.Load())
}

func TestScheduler_TicksUntilStopped(t *testing.T) {
	s := NewScheduler(zap.NewNop())
	var calls atomic.Int32
	s.AddJob("count", 10*time.Millisecond, func(ctx context.Context) error {
		calls.Add(1)
		return nil
	})

	s.Start()
	s.Start()
	assert.Eventually(t, func() bool { return calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
	s.Stop()
	s.Stop()

	after := calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, calls.Load())
}

func TestScheduler_SkipsOverlappingRuns(t *testing.T) {
	s := NewScheduler(zap.NewNop())
	release := make(chan struct{})
	var calls atomic.Int32
	s.AddJob("slow", 5*time.Millisecond, func(ctx context.Context) error {
		calls.Add(1)
		select {
		case <-release:
		case <-ctx.Done():
		}
		return nil
	})

	j := s.jobs[0]
	j.timeout = time.Second
	j.running.Store(true)
	require.NoError(t, s.RunOnce(context.Background()))
	assert.Zero(t, calls.Load())
	j.running.Store(false)

	close(release)
	require.NoError(t, s.RunOnce(context.Background()))
	assert.Equal(t, int32(1), calls.Load())
}

func TestScheduler_RunIsBoundedByInterval(t *testing.T) {
	s := NewScheduler(zap.NewNop())
	s.AddJob("stuck", 20*time.Millisecond, func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	assert.ErrorIs(t, s.RunOnce(context.Background()), context.DeadlineExceeded)
}
