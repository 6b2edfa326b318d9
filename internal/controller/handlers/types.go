package handlers

import (
	"context"
	"time"

	"github.com/Freeeeeet/coaching_booking/internal/model"
	"go.uber.org/zap"
)

type SlotFinder interface {
	DaySlots(ctx context.Context, offeringID int64, date time.Time) ([]model.Slot, error)
}

// Handlers содержит зависимости обработчиков команд
type Handlers struct {
	slots  SlotFinder
	logger *zap.Logger
}

func NewHandlers(slots SlotFinder, logger *zap.Logger) *Handlers {
	return &Handlers{
		slots:  slots,
		logger: logger,
	}
}
