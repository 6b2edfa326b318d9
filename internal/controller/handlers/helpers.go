package handlers

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Freeeeeet/coaching_booking/internal/controller/callbacks/common"
	"github.com/Freeeeeet/coaching_booking/internal/controller/callbacks/common/formatting"
	"github.com/Freeeeeet/coaching_booking/internal/model"
)

// ParseSlotsArgs разбирает "/slots 12 2030-03-04"
func ParseSlotsArgs(text string) (int64, time.Time, error) {
	fields := strings.Fields(text)
	if len(fields) != 3 {
		return 0, time.Time{}, common.ErrInvalidFormat
	}

	offeringID, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil || offeringID <= 0 {
		return 0, time.Time{}, common.ErrInvalidFormat
	}

	date, err := time.Parse("2006-01-02", fields[2])
	if err != nil {
		return 0, time.Time{}, common.ErrInvalidFormat
	}

	return offeringID, date, nil
}

// FormatSlots список слотов дня для сообщения
func FormatSlots(date time.Time, slots []model.Slot) string {
	if len(slots) == 0 {
		return fmt.Sprintf("📅 %s\n\nВ этот день занятий нет.", formatting.FormatDateWithWeekday(date))
	}

	var sb strings.Builder
	available := 0
	for _, slot := range slots {
		display := formatting.GetSlotStatusDisplay(slot.Status)
		fmt.Fprintf(&sb, "%s %s %s", display.Emoji, slot.Time, display.Text)
		if slot.Status == model.SlotStatusBusy && slot.Kind != "" {
			fmt.Fprintf(&sb, " (%s)", slot.Kind)
		}
		sb.WriteString("\n")
		if slot.Status == model.SlotStatusAvailable {
			available++
		}
	}

	return fmt.Sprintf("📅 %s\n\n%s\nСвободно: %d %s",
		formatting.FormatDateWithWeekday(date),
		sb.String(),
		available,
		formatting.PluralizeSlots(available),
	)
}
