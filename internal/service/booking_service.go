package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Freeeeeet/coaching_booking/internal/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultSlotLockTTL         = 30 * time.Second
	defaultCompensationTimeout = 15 * time.Second
)

// BookingRequest запрос студента на запись в выбранный слот
type BookingRequest struct {
	StudentID    int64     `json:"student_id"`
	StudentName  string    `json:"student_name"`
	StudentEmail string    `json:"student_email"`
	OfferingID   int64     `json:"offering_id"`
	PackageID    int64     `json:"package_id"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
}

type BookingService struct {
	offerings           OfferingStore
	reservations        ReservationStore
	ledger              CreditLedger
	restorer            *creditRestorer
	calendar            CalendarClient
	locker              SlotLocker
	notifier            Notifier
	lockTTL             time.Duration
	compensationTimeout time.Duration
	now                 Clock
	logger              *zap.Logger
}

// NewBookingService создаёт координатор бронирования.
// calendar, locker и notifier могут быть nil.
func NewBookingService(
	offerings OfferingStore,
	reservations ReservationStore,
	ledger CreditLedger,
	reconciliations ReconciliationStore,
	calendar CalendarClient,
	locker SlotLocker,
	notifier Notifier,
	lockTTL time.Duration,
	logger *zap.Logger,
) *BookingService {
	if lockTTL <= 0 {
		lockTTL = defaultSlotLockTTL
	}
	return &BookingService{
		offerings:    offerings,
		reservations: reservations,
		ledger:       ledger,
		restorer: &creditRestorer{
			ledger:          ledger,
			reconciliations: reconciliations,
			logger:          logger,
		},
		calendar:            calendar,
		locker:              locker,
		notifier:            notifier,
		lockTTL:             lockTTL,
		compensationTimeout: defaultCompensationTimeout,
		now:                 time.Now,
		logger:              logger,
	}
}

// Book записывает студента в слот.
//
// Шаги: проверка, блокировка слота, списание кредита, событие в календаре,
// сохранение записи, уведомление. Сбой календаря не прерывает запись, запись
// остаётся без ссылки на встречу. Сбой сохранения откатывает списание и событие
// до того, как ошибка вернётся вызывающему.
func (s *BookingService) Book(ctx context.Context, req BookingRequest) (*model.Reservation, error) {
	offering, pkg, err := s.validate(ctx, req)
	if err != nil {
		return nil, err
	}

	saga := newBookingSaga(s.logger)
	saga.done(stepValidate, nil)

	// Блокировка слота
	if s.locker != nil {
		key := slotLockKey(offering.InstructorID, req.StartTime)
		acquired, err := s.locker.Lock(ctx, key, saga.id.String(), s.lockTTL)
		switch {
		case err != nil:
			// Блокировка best effort: пересечения всё равно отсекает ограничение в БД
			saga.logger.Warn("Slot lock unavailable, relying on storage constraint", zap.Error(err))
		case !acquired:
			return nil, ErrSlotConflict
		default:
			defer s.unlock(ctx, key, saga)
			saga.done(stepLock, nil)
		}
	}

	// Списание кредита
	if _, err := s.ledger.Spend(ctx, pkg.ID); err != nil {
		return nil, fmt.Errorf("spend credit: %w", err)
	}
	saga.done(stepSpendCredit, func(ctx context.Context) error {
		queued, err := s.restorer.restore(ctx, pkg.ID, saga.id, "booking failed after credit spend")
		if err != nil {
			return err
		}
		if queued {
			return errors.New("credit refund queued for reconciliation")
		}
		return nil
	})

	// Событие во внешнем календаре
	var eventRef *model.CalendarEventRef
	if s.calendar != nil && offering.CalendarID != "" {
		eventRef, err = s.createCalendarEvent(ctx, offering, req)
		if err != nil {
			saga.logger.Warn("Calendar event not created, booking continues without join link",
				zap.Int64("offering_id", offering.ID),
				zap.Error(err),
			)
		} else {
			calendarID, eventID := offering.CalendarID, eventRef.ID
			saga.done(stepCreateEvent, func(ctx context.Context) error {
				return s.calendar.DeleteEvent(ctx, calendarID, eventID)
			})
		}
	}

	// Сохранение записи
	reservation := &model.Reservation{
		StudentID:        req.StudentID,
		StudentName:      req.StudentName,
		StudentEmail:     req.StudentEmail,
		InstructorID:     offering.InstructorID,
		OfferingID:       offering.ID,
		PackageID:        &pkg.ID,
		StartTime:        req.StartTime,
		EndTime:          req.EndTime,
		Status:           model.ReservationStatusConfirmed,
		AttendanceStatus: model.AttendancePending,
	}
	if eventRef != nil {
		reservation.ExternalEventRef = eventRef.ID
		reservation.JoinLink = eventRef.JoinLink
	}

	if err := s.reservations.Create(ctx, reservation); err != nil {
		cause := fmt.Errorf("%w: %v", ErrReservationPersistFailed, err)
		if errors.Is(err, model.ErrReservationOverlap) {
			cause = fmt.Errorf("%w: %v", ErrSlotConflict, err)
		}

		compCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.compensationTimeout)
		defer cancel()
		compErr := saga.compensate(compCtx)

		bookingErr := saga.fail(stepPersist, compErr == nil, cause)
		saga.logger.Error("Reservation not persisted",
			zap.Int64("student_id", req.StudentID),
			zap.Int64("offering_id", offering.ID),
			zap.Bool("compensated", bookingErr.Compensated),
			zap.Error(err),
		)
		return nil, bookingErr
	}
	saga.done(stepPersist, nil)

	reservation.Offering = offering

	saga.logger.Info("Reservation booked",
		zap.Int64("reservation_id", reservation.ID),
		zap.Int64("student_id", req.StudentID),
		zap.Int64("offering_id", offering.ID),
		zap.Int64("package_id", pkg.ID),
		zap.Time("start_time", req.StartTime),
		zap.Bool("has_join_link", reservation.JoinLink != ""),
	)

	// Уведомление инструктору
	if s.notifier != nil {
		if err := s.notifier.ReservationConfirmed(ctx, offering, reservation); err != nil {
			saga.logger.Warn("Failed to notify instructor", zap.Error(err))
		} else {
			saga.done(stepNotify, nil)
		}
	}

	return reservation, nil
}

// validate не имеет побочных эффектов
func (s *BookingService) validate(ctx context.Context, req BookingRequest) (*model.Offering, *model.Package, error) {
	if _, err := model.NewInterval(req.StartTime, req.EndTime); err != nil {
		return nil, nil, ErrInvalidTimeRange
	}

	now := s.now()
	if req.StartTime.Before(now) {
		return nil, nil, ErrSlotInPast
	}

	offering, err := s.offerings.GetByID(ctx, req.OfferingID)
	if err != nil {
		return nil, nil, fmt.Errorf("get offering: %w", err)
	}
	if offering == nil {
		return nil, nil, ErrOfferingNotFound
	}
	if !offering.IsActive {
		return nil, nil, ErrOfferingInactive
	}

	pkg, err := s.ledger.Get(ctx, req.PackageID)
	if err != nil {
		return nil, nil, err
	}
	if pkg.StudentID != req.StudentID {
		return nil, nil, ErrPackageNotOwned
	}
	if pkg.InstructorID != offering.InstructorID || !pkg.CoversOffering(offering.ID) {
		return nil, nil, ErrPackageNotApplicable
	}
	if !pkg.IsActive(now) {
		return nil, nil, ErrInsufficientCredit
	}

	return offering, pkg, nil
}

func (s *BookingService) createCalendarEvent(ctx context.Context, offering *model.Offering, req BookingRequest) (*model.CalendarEventRef, error) {
	event := model.CalendarEvent{
		RequestID:   uuid.NewString(),
		Summary:     fmt.Sprintf("Coaching - %s", req.StudentName),
		Description: fmt.Sprintf("%s\nStudent: %s", offering.Title, req.StudentName),
		Start:       req.StartTime,
		End:         req.EndTime,
		Timezone:    offering.Timezone,
	}
	if req.StudentEmail != "" {
		event.Attendees = []string{req.StudentEmail}
	}

	ref, err := s.calendar.CreateEvent(ctx, offering.CalendarID, event)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExternalEventFailed, err)
	}
	return ref, nil
}

func (s *BookingService) unlock(ctx context.Context, key string, saga *bookingSaga) {
	unlockCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.locker.Unlock(unlockCtx, key, saga.id.String()); err != nil {
		saga.logger.Warn("Failed to release slot lock", zap.String("key", key), zap.Error(err))
	}
}

func slotLockKey(instructorID int64, start time.Time) string {
	return fmt.Sprintf("slot:%d:%d", instructorID, start.Unix())
}
