package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OfferingType string

const (
	OfferingTypePrivate OfferingType = "private" // индивидуальное занятие
	OfferingTypeGroup   OfferingType = "group"   // групповое занятие
)

// Offering тип занятия, который инструктор открывает для записи
type Offering struct {
	ID                int64           `json:"id"`
	InstructorID      int64           `json:"instructor_id"`
	Title             string          `json:"title"`
	Type              OfferingType    `json:"type"`
	DurationMinutes   int             `json:"duration_minutes"`
	Price             decimal.Decimal `json:"price"`
	CancellationHours *int            `json:"cancellation_hours"` // nil - отмена всегда с возвратом
	CalendarID        string          `json:"calendar_id"`        // пусто - без внешнего календаря
	Timezone          string          `json:"timezone"`
	WorkingHours      WorkingHours    `json:"working_hours"`
	InstructorChatID  *int64          `json:"instructor_chat_id"` // чат инструктора в Telegram
	IsActive          bool            `json:"is_active"`
	CreatedAt         time.Time       `json:"created_at"`
}

// Location возвращает часовой пояс занятия или fallback, если он не задан или невалиден
func (o *Offering) Location(fallback *time.Location) *time.Location {
	if o.Timezone == "" {
		return fallback
	}
	loc, err := time.LoadLocation(o.Timezone)
	if err != nil {
		return fallback
	}
	return loc
}
