package service

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/coaching_booking/internal/model"
	"go.uber.org/zap"
)

type ReservationService struct {
	reservations ReservationStore
	logger       *zap.Logger
}

func NewReservationService(reservations ReservationStore, logger *zap.Logger) *ReservationService {
	return &ReservationService{
		reservations: reservations,
		logger:       logger,
	}
}

func (s *ReservationService) Get(ctx context.Context, id int64) (*model.Reservation, error) {
	reservation, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get reservation: %w", err)
	}
	if reservation == nil {
		return nil, ErrReservationNotFound
	}
	return reservation, nil
}

func (s *ReservationService) ListByStudent(ctx context.Context, studentID int64) ([]*model.Reservation, error) {
	return s.reservations.ListByStudent(ctx, studentID)
}

// MarkAttendance отметка посещаемости, только для подтверждённой записи
func (s *ReservationService) MarkAttendance(ctx context.Context, id int64, status model.AttendanceStatus) (*model.Reservation, error) {
	if !status.IsFinal() {
		return nil, ErrInvalidAttendance
	}

	reservation, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if reservation.Status != model.ReservationStatusConfirmed {
		return nil, ErrAlreadyCancelled
	}

	updated, err := s.reservations.UpdateAttendance(ctx, id, status)
	if err != nil {
		return nil, fmt.Errorf("update attendance: %w", err)
	}
	if !updated {
		return nil, ErrAlreadyCancelled
	}

	reservation.AttendanceStatus = status

	s.logger.Info("Attendance marked",
		zap.Int64("reservation_id", id),
		zap.String("status", string(status)),
	)

	return reservation, nil
}
