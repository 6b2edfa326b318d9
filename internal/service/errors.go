package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Ошибки бронирования, проверяются через errors.Is
var (
	ErrInsufficientCredit       = errors.New("insufficient credit")
	ErrSlotConflict             = errors.New("slot conflict")
	ErrExternalEventFailed      = errors.New("external calendar event failed")
	ErrReservationPersistFailed = errors.New("reservation persist failed")

	ErrPackageNotFound      = errors.New("package not found")
	ErrPackageNotOwned      = errors.New("package belongs to another student")
	ErrPackageNotApplicable = errors.New("package does not cover this offering")
	ErrOfferingNotFound     = errors.New("offering not found")
	ErrOfferingInactive     = errors.New("offering is not active")
	ErrReservationNotFound  = errors.New("reservation not found")
	ErrAlreadyCancelled     = errors.New("reservation already cancelled")
	ErrInvalidTimeRange     = errors.New("invalid time range")
	ErrSlotInPast           = errors.New("slot is in the past")
	ErrInvalidAttendance    = errors.New("invalid attendance status")
	ErrInvalidPackage       = errors.New("invalid package parameters")

	ErrRecordingSourceDisabled = errors.New("recording source is not configured")
	ErrRecordingAttached       = errors.New("recording already attached")
	ErrNotInstructor           = errors.New("only the offering instructor can confirm recordings")
)

// BookingError ошибка саги бронирования с контекстом попытки.
// Unwrap отдаёт Cause, так что errors.Is(err, ErrSlotConflict) работает.
type BookingError struct {
	AttemptID   uuid.UUID
	Step        string // шаг, на котором произошёл сбой
	Compensated bool   // все компенсации выполнены
	Cause       error
}

func (e *BookingError) Error() string {
	state := "compensated"
	if !e.Compensated {
		state = "compensation pending"
	}
	return fmt.Sprintf("booking %s failed at %s (%s): %v", e.AttemptID, e.Step, state, e.Cause)
}

func (e *BookingError) Unwrap() error {
	return e.Cause
}

// IsClientError ошибка вызвана запросом пользователя, а не сбоем системы
func IsClientError(err error) bool {
	switch {
	case errors.Is(err, ErrInsufficientCredit),
		errors.Is(err, ErrSlotConflict),
		errors.Is(err, ErrPackageNotFound),
		errors.Is(err, ErrPackageNotOwned),
		errors.Is(err, ErrPackageNotApplicable),
		errors.Is(err, ErrOfferingNotFound),
		errors.Is(err, ErrOfferingInactive),
		errors.Is(err, ErrReservationNotFound),
		errors.Is(err, ErrAlreadyCancelled),
		errors.Is(err, ErrInvalidTimeRange),
		errors.Is(err, ErrSlotInPast),
		errors.Is(err, ErrInvalidAttendance),
		errors.Is(err, ErrInvalidPackage),
		errors.Is(err, ErrRecordingAttached),
		errors.Is(err, ErrNotInstructor):
		return true
	}
	return false
}

// IsNotFound ошибка отсутствующей сущности
func IsNotFound(err error) bool {
	return errors.Is(err, ErrPackageNotFound) ||
		errors.Is(err, ErrOfferingNotFound) ||
		errors.Is(err, ErrReservationNotFound)
}
