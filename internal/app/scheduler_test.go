package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Freeeeeet/coaching_booking/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeRetrier struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakeRetrier) RetryPending(_ context.Context, limit int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return 1, f.err
}

func (f *fakeRetrier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeMatcher struct {
	mu     sync.Mutex
	sinces []time.Time
	folder string
}

func (f *fakeMatcher) MatchInstructorRecordings(_ context.Context, _ int64, folderRef string, since time.Time) (*service.RecordingSweepResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sinces = append(f.sinces, since)
	f.folder = folderRef
	return &service.RecordingSweepResult{}, nil
}

func TestScheduler_RunsTasksImmediatelyAndStops(t *testing.T) {
	retrier := &fakeRetrier{}
	matcher := &fakeMatcher{}
	s := NewScheduler(retrier, matcher, RecordingSweep{InstructorID: 7, FolderRef: "folder"}, time.Hour, zap.NewNop())

	s.Start(context.Background())
	require.Eventually(t, func() bool { return retrier.count() == 1 }, time.Second, 10*time.Millisecond)

	s.Stop()
	s.Stop() // повторная остановка безопасна

	matcher.mu.Lock()
	defer matcher.mu.Unlock()
	require.Len(t, matcher.sinces, 1)
	assert.Equal(t, "folder", matcher.folder)
}

func TestScheduler_TicksUntilContextCancelled(t *testing.T) {
	retrier := &fakeRetrier{err: errors.New("db down")}
	s := NewScheduler(retrier, nil, RecordingSweep{}, 10*time.Millisecond, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)

	require.Eventually(t, func() bool { return retrier.count() >= 3 }, time.Second, 5*time.Millisecond)
	cancel()
	s.wg.Wait()
}

func TestScheduler_RecordingWindow(t *testing.T) {
	matcher := &fakeMatcher{}
	s := NewScheduler(&fakeRetrier{}, matcher, RecordingSweep{InstructorID: 7}, time.Hour, zap.NewNop())
	now := time.Date(2030, 3, 4, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	s.matchRecordings(context.Background())

	require.Len(t, matcher.sinces, 1)
	assert.Equal(t, now.Add(-24*time.Hour), matcher.sinces[0])
}
