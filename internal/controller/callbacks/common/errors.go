package common

import (
	"errors"

	"github.com/Freeeeeet/coaching_booking/internal/service"
)

// Ошибки разбора callback и команд
var (
	ErrNoMessage     = errors.New("no message in callback")
	ErrInvalidFormat = errors.New("invalid callback format")
)

// UserMessage возвращает пользовательское сообщение для ошибки.
// Для конфликтов и нехватки кредитов подсказывает, что делать дальше.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, service.ErrSlotConflict):
		return "❌ Этот слот уже занят. Выберите другое время"
	case errors.Is(err, service.ErrInsufficientCredit):
		return "❌ В пакете не осталось занятий. Пополните пакет"
	case errors.Is(err, service.ErrSlotInPast):
		return "❌ Это время уже прошло"
	case errors.Is(err, service.ErrOfferingNotFound):
		return "❌ Занятие не найдено"
	case errors.Is(err, service.ErrOfferingInactive):
		return "❌ Запись на это занятие закрыта"
	case errors.Is(err, service.ErrReservationNotFound):
		return "❌ Бронирование не найдено"
	case errors.Is(err, service.ErrAlreadyCancelled):
		return "❌ Бронирование уже отменено"
	case errors.Is(err, service.ErrNotInstructor):
		return "❌ Подтвердить запись может только инструктор занятия"
	case errors.Is(err, service.ErrRecordingAttached):
		return "❌ К этому бронированию уже привязана запись"
	case errors.Is(err, service.ErrPackageNotFound),
		errors.Is(err, service.ErrPackageNotOwned),
		errors.Is(err, service.ErrPackageNotApplicable):
		return "❌ Пакет занятий не подходит для этой записи"
	case errors.Is(err, service.ErrReservationPersistFailed):
		return "❌ Не удалось сохранить запись, занятие возвращено в пакет. Попробуйте ещё раз"
	case errors.Is(err, ErrNoMessage):
		return "❌ Ошибка обработки сообщения"
	case errors.Is(err, ErrInvalidFormat):
		return "❌ Неверный формат данных"
	default:
		return "❌ Произошла ошибка"
	}
}
