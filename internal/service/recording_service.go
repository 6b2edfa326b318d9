package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/coaching_booking/internal/model"
	"go.uber.org/zap"
)

// RecordingSweepResult итог сопоставления записей инструктора
type RecordingSweepResult struct {
	Attached          []model.MatchResult `json:"attached"`
	NeedsConfirmation []model.MatchResult `json:"needs_confirmation"`
	Unmatched         []model.MatchResult `json:"unmatched"`
}

// RecordingService привязывает записи занятий к бронированиям
type RecordingService struct {
	offerings    OfferingStore
	reservations ReservationStore
	source       RecordingSource
	notifier     Notifier
	defaultLoc   *time.Location
	now          Clock
	logger       *zap.Logger
}

func NewRecordingService(
	offerings OfferingStore,
	reservations ReservationStore,
	source RecordingSource,
	notifier Notifier,
	defaultLoc *time.Location,
	logger *zap.Logger,
) *RecordingService {
	if defaultLoc == nil {
		defaultLoc = time.UTC
	}
	return &RecordingService{
		offerings:    offerings,
		reservations: reservations,
		source:       source,
		notifier:     notifier,
		defaultLoc:   defaultLoc,
		now:          time.Now,
		logger:       logger,
	}
}

// MatchInstructorRecordings сопоставляет записи из папки с бронированиями
// без записи, начавшимися после since. Высокая уверенность - привязка сразу,
// средняя - запрос подтверждения инструктору, низкая - остаётся без привязки.
func (s *RecordingService) MatchInstructorRecordings(ctx context.Context, instructorID int64, folderRef string, since time.Time) (*RecordingSweepResult, error) {
	if s.source == nil {
		return nil, ErrRecordingSourceDisabled
	}

	recordings, err := s.source.ListRecordings(ctx, folderRef, since)
	if err != nil {
		return nil, fmt.Errorf("list recordings: %w", err)
	}

	result := &RecordingSweepResult{
		Attached:          []model.MatchResult{},
		NeedsConfirmation: []model.MatchResult{},
		Unmatched:         []model.MatchResult{},
	}
	if len(recordings) == 0 {
		return result, nil
	}

	// Запись может начаться чуть раньше бронирования
	reservations, err := s.reservations.ListWithoutRecording(ctx, instructorID, since.Add(-time.Hour), s.now())
	if err != nil {
		return nil, fmt.Errorf("list reservations without recording: %w", err)
	}

	offerings := make(map[int64]*model.Offering)
	zones := make(map[int64]*time.Location)
	for _, r := range reservations {
		if _, ok := zones[r.OfferingID]; ok {
			continue
		}
		offering := s.offering(ctx, offerings, r.OfferingID)
		if offering == nil {
			zones[r.OfferingID] = s.defaultLoc
			continue
		}
		zones[r.OfferingID] = offering.Location(s.defaultLoc)
	}

	for _, match := range MatchAllRecordings(recordings, reservations, zones) {
		switch {
		case match.Reservation == nil || match.Confidence == model.ConfidenceLow:
			result.Unmatched = append(result.Unmatched, match)

		case match.Confidence == model.ConfidenceHigh:
			score := match.Score
			attached, err := s.reservations.AttachRecording(ctx, match.Reservation.ID, match.Recording.FileRef, &score)
			if err != nil || !attached {
				s.logger.Warn("Failed to attach recording",
					zap.Int64("reservation_id", match.Reservation.ID),
					zap.String("file_ref", match.Recording.FileRef),
					zap.Bool("attached", attached),
					zap.Error(err),
				)
				result.Unmatched = append(result.Unmatched, match)
				continue
			}
			result.Attached = append(result.Attached, match)

		default:
			result.NeedsConfirmation = append(result.NeedsConfirmation, match)
			s.askConfirmation(ctx, offerings, match)
		}
	}

	s.logger.Info("Recordings matched",
		zap.Int64("instructor_id", instructorID),
		zap.Int("recordings", len(recordings)),
		zap.Int("attached", len(result.Attached)),
		zap.Int("needs_confirmation", len(result.NeedsConfirmation)),
		zap.Int("unmatched", len(result.Unmatched)),
	)

	return result, nil
}

// offering занятие из кеша; ошибки чтения логируются, тогда nil
func (s *RecordingService) offering(ctx context.Context, cache map[int64]*model.Offering, offeringID int64) *model.Offering {
	if offering, ok := cache[offeringID]; ok {
		return offering
	}

	offering, err := s.offerings.GetByID(ctx, offeringID)
	if err != nil {
		s.logger.Warn("Failed to load offering", zap.Int64("offering_id", offeringID), zap.Error(err))
		return nil
	}
	cache[offeringID] = offering
	return offering
}

func (s *RecordingService) askConfirmation(ctx context.Context, cache map[int64]*model.Offering, match model.MatchResult) {
	if s.notifier == nil {
		return
	}

	offering := s.offering(ctx, cache, match.Reservation.OfferingID)
	if offering == nil {
		return
	}

	if err := s.notifier.RecordingNeedsConfirmation(ctx, offering, match); err != nil {
		s.logger.Warn("Failed to request recording confirmation",
			zap.Int64("reservation_id", match.Reservation.ID),
			zap.Error(err),
		)
	}
}

// ConfirmMatch привязка записи, подтверждённая инструктором. chatID - чат, из которого
// пришло подтверждение, он должен совпадать с чатом инструктора занятия.
// Отменённые брони и брони с уже привязанной записью не меняются.
func (s *RecordingService) ConfirmMatch(ctx context.Context, reservationID int64, fileRef string, chatID int64) error {
	reservation, err := s.reservations.GetByID(ctx, reservationID)
	if err != nil {
		return fmt.Errorf("get reservation: %w", err)
	}
	if reservation == nil {
		return ErrReservationNotFound
	}

	offering, err := s.offerings.GetByID(ctx, reservation.OfferingID)
	if err != nil {
		return fmt.Errorf("get offering: %w", err)
	}
	if offering == nil || offering.InstructorChatID == nil || *offering.InstructorChatID != chatID {
		s.logger.Warn("Recording confirmation from foreign chat",
			zap.Int64("reservation_id", reservationID),
			zap.Int64("chat_id", chatID),
		)
		return ErrNotInstructor
	}

	if reservation.Status != model.ReservationStatusConfirmed {
		return ErrAlreadyCancelled
	}
	if reservation.RecordingFileRef != nil {
		return ErrRecordingAttached
	}

	attached, err := s.reservations.AttachRecording(ctx, reservationID, fileRef, nil)
	if err != nil {
		return fmt.Errorf("attach recording: %w", err)
	}
	if !attached {
		// успели отменить или привязать между чтением и записью
		return ErrRecordingAttached
	}

	s.logger.Info("Recording confirmed by instructor",
		zap.Int64("reservation_id", reservationID),
		zap.String("file_ref", fileRef),
	)
	return nil
}
