package app

import (
	"context"
	"sync"
	"time"

	"github.com/Freeeeeet/coaching_booking/internal/service"
	"go.uber.org/zap"
)

const (
	reconciliationBatch = 50
	recordingLookback   = 24 * time.Hour
)

type reconciliationRetrier interface {
	RetryPending(ctx context.Context, limit int) (int, error)
}

// RecordingMatcher сопоставление записей встреч для одного инструктора
type RecordingMatcher interface {
	MatchInstructorRecordings(ctx context.Context, instructorID int64, folderRef string, since time.Time) (*service.RecordingSweepResult, error)
}

// RecordingSweep какого инструктора и какую папку просматривать
type RecordingSweep struct {
	InstructorID int64
	FolderRef    string
}

// Scheduler управляет фоновыми задачами: повтор отложенных возвратов
// и сопоставление записей встреч с бронированиями
type Scheduler struct {
	reconciliations reconciliationRetrier
	recordings      RecordingMatcher
	sweep           RecordingSweep
	interval        time.Duration
	logger          *zap.Logger
	now             func() time.Time

	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewScheduler recordings может быть nil - тогда сопоставление не запускается
func NewScheduler(
	reconciliations reconciliationRetrier,
	recordings RecordingMatcher,
	sweep RecordingSweep,
	interval time.Duration,
	logger *zap.Logger,
) *Scheduler {
	return &Scheduler{
		reconciliations: reconciliations,
		recordings:      recordings,
		sweep:           sweep,
		interval:        interval,
		logger:          logger,
		now:             time.Now,
		stopChan:        make(chan struct{}),
	}
}

func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("Starting background scheduler", zap.Duration("interval", s.interval))

	s.wg.Add(1)
	go s.runTask(ctx, "reconciliation", s.retryReconciliations)

	if s.recordings != nil {
		s.wg.Add(1)
		go s.runTask(ctx, "recording_match", s.matchRecordings)
	}
}

// Stop останавливает задачи и ждёт их завершения
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		s.logger.Info("Stopping background scheduler")
		close(s.stopChan)
	})
	s.wg.Wait()
}

func (s *Scheduler) runTask(ctx context.Context, name string, task func(context.Context)) {
	defer s.wg.Done()

	// Первый запуск сразу при старте
	task(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			task(ctx)
		case <-s.stopChan:
			s.logger.Info("Background task stopped", zap.String("task", name))
			return
		case <-ctx.Done():
			s.logger.Info("Background task cancelled", zap.String("task", name))
			return
		}
	}
}

func (s *Scheduler) retryReconciliations(ctx context.Context) {
	resolved, err := s.reconciliations.RetryPending(ctx, reconciliationBatch)
	if err != nil {
		s.logger.Error("Failed to retry credit reconciliations", zap.Error(err))
		return
	}
	if resolved > 0 {
		s.logger.Info("Credit reconciliations resolved", zap.Int("count", resolved))
	}
}

func (s *Scheduler) matchRecordings(ctx context.Context) {
	since := s.now().Add(-recordingLookback)

	result, err := s.recordings.MatchInstructorRecordings(ctx, s.sweep.InstructorID, s.sweep.FolderRef, since)
	if err != nil {
		s.logger.Error("Failed to match recordings",
			zap.Int64("instructor_id", s.sweep.InstructorID),
			zap.Error(err),
		)
		return
	}

	s.logger.Info("Recording sweep completed",
		zap.Int64("instructor_id", s.sweep.InstructorID),
		zap.Int("attached", len(result.Attached)),
		zap.Int("needs_confirmation", len(result.NeedsConfirmation)),
		zap.Int("unmatched", len(result.Unmatched)),
	)
}
