package common

import (
	"fmt"
	"testing"

	"github.com/Freeeeeet/coaching_booking/internal/service"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestUserMessage(t *testing.T) {
	bookingErr := &service.BookingError{AttemptID: uuid.New(), Step: "persist", Cause: service.ErrSlotConflict}

	assert.Contains(t, UserMessage(bookingErr), "Выберите другое время")
	assert.Contains(t, UserMessage(fmt.Errorf("spend: %w", service.ErrInsufficientCredit)), "Пополните пакет")
	assert.Equal(t, UserMessage(service.ErrPackageNotOwned), UserMessage(service.ErrPackageNotApplicable))
	assert.Equal(t, "❌ Произошла ошибка", UserMessage(fmt.Errorf("boom")))
}
