package model

import (
	"errors"
	"time"
)

var (
	ErrInvalidInterval = errors.New("invalid interval: end must be after start")

	// ErrReservationOverlap хранилище отклонило запись из-за пересечения с другой
	ErrReservationOverlap = errors.New("reservation overlaps another confirmed reservation")
)

// Interval полуоткрытый промежуток времени [Start, End)
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewInterval проверяет что End строго после Start
func NewInterval(start, end time.Time) (Interval, error) {
	if start.IsZero() || end.IsZero() || !end.After(start) {
		return Interval{}, ErrInvalidInterval
	}
	return Interval{Start: start, End: end}, nil
}

// Overlaps - единственный предикат пересечения в системе.
// Соприкасающиеся границы не считаются пересечением.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start.Before(other.End) && other.Start.Before(i.End)
}

// Duration длительность промежутка
func (i Interval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}

type BusySource string

const (
	BusySourceSystem   BusySource = "system"   // подтверждённая запись в нашей БД
	BusySourceCalendar BusySource = "calendar" // free/busy внешнего календаря
)

// BusyInterval занятый промежуток с информацией о том, чем он занят
type BusyInterval struct {
	Interval
	Kind   OfferingType `json:"kind,omitempty"`
	Title  string       `json:"title,omitempty"`
	Source BusySource   `json:"source"`
}
