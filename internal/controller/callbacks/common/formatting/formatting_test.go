package formatting

import (
	"testing"
	"time"

	"github.com/Freeeeeet/coaching_booking/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestPluralizeSessions(t *testing.T) {
	cases := map[int]string{
		1:  "занятие",
		2:  "занятия",
		5:  "занятий",
		11: "занятий",
		21: "занятие",
		24: "занятия",
	}
	for count, want := range cases {
		assert.Equal(t, want, PluralizeSessions(count), count)
	}
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "55000 ₩", FormatPrice(decimal.RequireFromString("55000.00")))
	assert.Equal(t, "12.50 ₩", FormatPrice(decimal.RequireFromString("12.5")))
}

func TestFormatHoursAndDuration(t *testing.T) {
	assert.Equal(t, "24 ч", FormatHours(24))
	assert.Equal(t, "1.5 ч", FormatHours(1.5))
	assert.Equal(t, "1 ч 30 мин", FormatDuration(90))
	assert.Equal(t, "45 мин", FormatDuration(45))
}

func TestFormatDateWithWeekday(t *testing.T) {
	assert.Equal(t, "03.03.2030 (Воскресенье)", FormatDateWithWeekday(time.Date(2030, 3, 3, 12, 0, 0, 0, time.UTC)))
}

func TestStatusDisplays(t *testing.T) {
	assert.Equal(t, "Свободен", GetSlotStatusDisplay(model.SlotStatusAvailable).Text)
	assert.Equal(t, "Отменена", GetReservationStatusDisplay(model.ReservationStatusCancelled).Text)
	assert.Equal(t, "🟡", GetConfidenceDisplay(model.ConfidenceMedium).Emoji)
	assert.Equal(t, "Неизвестно", GetSlotStatusDisplay("weird").Text)
}
