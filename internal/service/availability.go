package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/coaching_booking/internal/model"
	"go.uber.org/zap"
)

// BuildDaySlots строит часовые слоты дня по рабочим часам и занятым промежуткам.
// Функция чистая: входные данные не меняются, now передаётся явно.
// Слот в прошлом всегда past, даже если он пересекается с занятым промежутком.
func BuildDaySlots(hours model.WorkingHours, busy []model.BusyInterval, day, now time.Time) []model.Slot {
	slots := make([]model.Slot, 0)

	startHour, endHour, ok := hours.HourRange(int(day.Weekday()))
	if !ok {
		return slots
	}

	y, m, d := day.Date()
	loc := day.Location()

	for h := startHour; h < endHour; h++ {
		candidate := model.Interval{
			Start: time.Date(y, m, d, h, 0, 0, 0, loc),
			End:   time.Date(y, m, d, h+1, 0, 0, 0, loc),
		}

		slot := model.Slot{
			Time:   fmt.Sprintf("%02d:00", h),
			Start:  candidate.Start,
			End:    candidate.End,
			Status: model.SlotStatusAvailable,
		}

		if candidate.Start.Before(now) {
			slot.Status = model.SlotStatusPast
		} else if b, found := firstOverlap(candidate, busy); found {
			slot.Status = model.SlotStatusBusy
			slot.Kind = b.Kind
			slot.Title = b.Title
		}

		slots = append(slots, slot)
	}

	return slots
}

func firstOverlap(candidate model.Interval, busy []model.BusyInterval) (model.BusyInterval, bool) {
	for _, b := range busy {
		if candidate.Overlaps(b.Interval) {
			return b, true
		}
	}
	return model.BusyInterval{}, false
}

// AvailabilityService собирает данные для BuildDaySlots из хранилища и календаря
type AvailabilityService struct {
	offerings    OfferingStore
	reservations ReservationStore
	calendar     CalendarClient
	defaultLoc   *time.Location
	now          Clock
	logger       *zap.Logger
}

// NewAvailabilityService создаёт сервис доступности. calendar может быть nil.
func NewAvailabilityService(
	offerings OfferingStore,
	reservations ReservationStore,
	calendar CalendarClient,
	defaultLoc *time.Location,
	logger *zap.Logger,
) *AvailabilityService {
	if defaultLoc == nil {
		defaultLoc = time.UTC
	}
	return &AvailabilityService{
		offerings:    offerings,
		reservations: reservations,
		calendar:     calendar,
		defaultLoc:   defaultLoc,
		now:          time.Now,
		logger:       logger,
	}
}

// DaySlots возвращает слоты занятия на дату. Дата берётся в часовом поясе занятия.
func (s *AvailabilityService) DaySlots(ctx context.Context, offeringID int64, date time.Time) ([]model.Slot, error) {
	offering, err := s.offerings.GetByID(ctx, offeringID)
	if err != nil {
		return nil, fmt.Errorf("get offering: %w", err)
	}
	if offering == nil {
		return nil, ErrOfferingNotFound
	}

	loc := offering.Location(s.defaultLoc)
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, loc)
	dayEnd := day.AddDate(0, 0, 1)

	hours := offering.WorkingHours
	if len(hours) == 0 {
		hours = model.DefaultWorkingHours()
	}

	busy, err := s.readBusyIntervals(ctx, offering, day, dayEnd)
	if err != nil {
		return nil, err
	}

	return BuildDaySlots(hours, busy, day, s.now()), nil
}

// readBusyIntervals: сначала системные записи, затем внешний календарь.
// Порядок важен: Kind и Title слота берутся из первого пересечения.
func (s *AvailabilityService) readBusyIntervals(ctx context.Context, offering *model.Offering, from, to time.Time) ([]model.BusyInterval, error) {
	busy, err := s.reservations.ListBusy(ctx, offering.InstructorID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list busy reservations: %w", err)
	}

	if s.calendar == nil || offering.CalendarID == "" {
		return busy, nil
	}

	external, err := s.calendar.BusyIntervals(ctx, offering.CalendarID, from, to)
	if err != nil {
		s.logger.Warn("Calendar free/busy unavailable, using system reservations only",
			zap.Int64("offering_id", offering.ID),
			zap.String("calendar_id", offering.CalendarID),
			zap.Error(err),
		)
		return busy, nil
	}

	for _, iv := range external {
		busy = append(busy, model.BusyInterval{Interval: iv, Source: model.BusySourceCalendar})
	}

	return busy, nil
}
