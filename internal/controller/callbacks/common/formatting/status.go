package formatting

import "github.com/Freeeeeet/coaching_booking/internal/model"

// StatusDisplay emoji и текст статуса
type StatusDisplay struct {
	Emoji string
	Text  string
}

var unknownStatus = StatusDisplay{"❓", "Неизвестно"}

func GetSlotStatusDisplay(status model.SlotStatus) StatusDisplay {
	displays := map[model.SlotStatus]StatusDisplay{
		model.SlotStatusAvailable: {"🟢", "Свободен"},
		model.SlotStatusBusy:      {"🔴", "Занят"},
		model.SlotStatusPast:      {"⚫️", "Прошёл"},
	}

	if display, ok := displays[status]; ok {
		return display
	}
	return unknownStatus
}

func GetReservationStatusDisplay(status model.ReservationStatus) StatusDisplay {
	displays := map[model.ReservationStatus]StatusDisplay{
		model.ReservationStatusConfirmed: {"✅", "Подтверждена"},
		model.ReservationStatusCancelled: {"❌", "Отменена"},
	}

	if display, ok := displays[status]; ok {
		return display
	}
	return unknownStatus
}

func GetConfidenceDisplay(confidence model.MatchConfidence) StatusDisplay {
	displays := map[model.MatchConfidence]StatusDisplay{
		model.ConfidenceHigh:   {"🟢", "Высокая"},
		model.ConfidenceMedium: {"🟡", "Средняя"},
		model.ConfidenceLow:    {"🔴", "Низкая"},
	}

	if display, ok := displays[confidence]; ok {
		return display
	}
	return unknownStatus
}
