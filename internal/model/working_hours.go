package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// DayHours рабочие часы одного дня недели, время в формате "HH:MM"
type DayHours struct {
	Start     string `json:"start"`
	End       string `json:"end"`
	IsWorking bool   `json:"is_working"`
}

// WorkingHours рабочие часы по дням недели: 0 = Sunday, 6 = Saturday
type WorkingHours map[int]DayHours

// DefaultWorkingHours Пн-Пт 09:00-18:00, выходные нерабочие
func DefaultWorkingHours() WorkingHours {
	wh := make(WorkingHours, 7)
	for day := 0; day < 7; day++ {
		if day == 0 || day == 6 {
			wh[day] = DayHours{Start: "09:00", End: "18:00", IsWorking: false}
			continue
		}
		wh[day] = DayHours{Start: "09:00", End: "18:00", IsWorking: true}
	}
	return wh
}

// Validate проверяет дни недели, формат времени и что начало раньше конца
func (wh WorkingHours) Validate() error {
	for day, hours := range wh {
		if day < 0 || day > 6 {
			return fmt.Errorf("invalid weekday %d", day)
		}
		if !hours.IsWorking {
			continue
		}
		start, err := ParseClock(hours.Start)
		if err != nil {
			return fmt.Errorf("weekday %d start: %w", day, err)
		}
		end, err := ParseClock(hours.End)
		if err != nil {
			return fmt.Errorf("weekday %d end: %w", day, err)
		}
		if start >= end {
			return fmt.Errorf("weekday %d: start %s must be before end %s", day, hours.Start, hours.End)
		}
	}
	return nil
}

// HourRange возвращает [startHour, endHour) для дня недели.
// Минуты отбрасываются: 18:30 даёт 18.
func (wh WorkingHours) HourRange(weekday int) (int, int, bool) {
	hours, ok := wh[weekday]
	if !ok || !hours.IsWorking {
		return 0, 0, false
	}
	start, err := ParseClock(hours.Start)
	if err != nil {
		return 0, 0, false
	}
	end, err := ParseClock(hours.End)
	if err != nil {
		return 0, 0, false
	}
	return start / 60, end / 60, true
}

// ParseClock разбирает "HH:MM" в минуты от начала суток
func ParseClock(s string) (int, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 || len(parts[0]) != 2 || len(parts[1]) != 2 {
		return 0, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 24 {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 || (h == 24 && m != 0) {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	return h*60 + m, nil
}

// ParseWorkingHours читает JSON из хранилища и валидирует его.
// Ключи JSON - номера дней недели строкой ("0".."6").
func ParseWorkingHours(raw []byte) (WorkingHours, error) {
	if len(raw) == 0 {
		return DefaultWorkingHours(), nil
	}
	var wh WorkingHours
	if err := json.Unmarshal(raw, &wh); err != nil {
		return nil, fmt.Errorf("decode working hours: %w", err)
	}
	if len(wh) == 0 {
		return DefaultWorkingHours(), nil
	}
	if err := wh.Validate(); err != nil {
		return nil, err
	}
	return wh, nil
}
