package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/coaching_booking/internal/model"
	"go.uber.org/zap"
)

type CancellationOutcome string

const (
	OutcomeRefunded  CancellationOutcome = "refunded"
	OutcomeForfeited CancellationOutcome = "forfeited"
)

// CancellationDecision какая ветка политики отмены сработала
type CancellationDecision struct {
	Outcome         CancellationOutcome `json:"outcome"`
	HoursUntilStart float64             `json:"hours_until_start"`
	ThresholdHours  *int                `json:"threshold_hours"`
}

// DecideCancellation: без порога - всегда возврат, иначе возврат только
// если до начала осталось не меньше порога
func DecideCancellation(start, now time.Time, thresholdHours *int) CancellationDecision {
	decision := CancellationDecision{
		Outcome:         OutcomeRefunded,
		HoursUntilStart: start.Sub(now).Hours(),
		ThresholdHours:  thresholdHours,
	}
	if thresholdHours != nil && decision.HoursUntilStart < float64(*thresholdHours) {
		decision.Outcome = OutcomeForfeited
	}
	return decision
}

// CancellationResult результат отмены
type CancellationResult struct {
	Reservation *model.Reservation   `json:"reservation"`
	Decision    CancellationDecision `json:"decision"`
	Refunded    bool                 `json:"refunded"`
	Package     *model.Package       `json:"package,omitempty"` // состояние пакета после возврата
}

type CancellationService struct {
	offerings    OfferingStore
	reservations ReservationStore
	calendar     CalendarClient
	notifier     Notifier
	now          Clock
	logger       *zap.Logger
}

func NewCancellationService(
	offerings OfferingStore,
	reservations ReservationStore,
	calendar CalendarClient,
	notifier Notifier,
	logger *zap.Logger,
) *CancellationService {
	return &CancellationService{
		offerings:    offerings,
		reservations: reservations,
		calendar:     calendar,
		notifier: notifier,
		now:      time.Now,
		logger:   logger,
	}
}

// Cancel отменяет запись. Смена статуса и возврат занятия идут одной транзакцией:
// при сбое не меняется ничего и отмену можно повторить, повторная успешная отмена
// вернёт ErrAlreadyCancelled и не вернёт кредит дважды.
func (s *CancellationService) Cancel(ctx context.Context, reservationID int64) (*CancellationResult, error) {
	reservation, err := s.reservations.GetByID(ctx, reservationID)
	if err != nil {
		return nil, fmt.Errorf("get reservation: %w", err)
	}
	if reservation == nil {
		return nil, ErrReservationNotFound
	}
	if reservation.Status == model.ReservationStatusCancelled {
		return nil, ErrAlreadyCancelled
	}

	offering, err := s.offerings.GetByID(ctx, reservation.OfferingID)
	if err != nil {
		return nil, fmt.Errorf("get offering: %w", err)
	}

	var threshold *int
	if offering != nil {
		threshold = offering.CancellationHours
	} else {
		s.logger.Warn("Offering missing for reservation, cancelling without threshold",
			zap.Int64("reservation_id", reservation.ID),
			zap.Int64("offering_id", reservation.OfferingID),
		)
	}

	now := s.now()
	decision := DecideCancellation(reservation.StartTime, now, threshold)

	var refundPackageID *int64
	if decision.Outcome == OutcomeRefunded {
		refundPackageID = reservation.PackageID
	}

	changed, pkg, err := s.reservations.CancelAndRefund(ctx, reservation.ID, now, refundPackageID)
	if err != nil {
		return nil, fmt.Errorf("cancel reservation: %w", err)
	}
	if !changed {
		return nil, ErrAlreadyCancelled
	}

	reservation.Status = model.ReservationStatusCancelled
	reservation.CancelledAt = &now
	reservation.Offering = offering

	result := &CancellationResult{
		Reservation: reservation,
		Decision:    decision,
		Refunded:    pkg != nil,
		Package:     pkg,
	}
	if refundPackageID != nil && pkg == nil {
		s.logger.Warn("Package missing, nothing refunded",
			zap.Int64("reservation_id", reservation.ID),
			zap.Int64("package_id", *refundPackageID),
		)
	}

	if s.calendar != nil && offering != nil && offering.CalendarID != "" && reservation.ExternalEventRef != "" {
		if err := s.calendar.DeleteEvent(ctx, offering.CalendarID, reservation.ExternalEventRef); err != nil {
			s.logger.Warn("Failed to cancel calendar event",
				zap.Int64("reservation_id", reservation.ID),
				zap.String("event_id", reservation.ExternalEventRef),
				zap.Error(err),
			)
		}
	}

	s.logger.Info("Reservation cancelled",
		zap.Int64("reservation_id", reservation.ID),
		zap.String("outcome", string(decision.Outcome)),
		zap.Float64("hours_until_start", decision.HoursUntilStart),
		zap.Bool("refunded", result.Refunded),
	)

	if s.notifier != nil && offering != nil {
		if err := s.notifier.ReservationCancelled(ctx, offering, result); err != nil {
			s.logger.Warn("Failed to notify instructor about cancellation", zap.Error(err))
		}
	}

	return result, nil
}
