package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

type sagaStep string

const (
	stepValidate    sagaStep = "validate"
	stepLock        sagaStep = "lock"
	stepSpendCredit sagaStep = "spend_credit"
	stepCreateEvent sagaStep = "create_event"
	stepPersist     sagaStep = "persist"
	stepNotify      sagaStep = "notify"
)

type compensation struct {
	step sagaStep
	run  func(ctx context.Context) error
}

// bookingSaga хранит выполненные шаги попытки бронирования и их компенсации.
//
//	spend_credit -> вернуть кредит
//	create_event -> удалить событие календаря
type bookingSaga struct {
	id            uuid.UUID
	completed     []sagaStep
	compensations []compensation
	logger        *zap.Logger
}

func newBookingSaga(logger *zap.Logger) *bookingSaga {
	id := uuid.New()
	return &bookingSaga{
		id:     id,
		logger: logger.With(zap.String("attempt_id", id.String())),
	}
}

// done отмечает шаг выполненным. undo может быть nil.
func (s *bookingSaga) done(step sagaStep, undo func(ctx context.Context) error) {
	s.completed = append(s.completed, step)
	if undo != nil {
		s.compensations = append(s.compensations, compensation{step: step, run: undo})
	}
}

// compensate выполняет компенсации в обратном порядке.
// Сбой одной компенсации не останавливает остальные.
func (s *bookingSaga) compensate(ctx context.Context) error {
	var errs error
	for i := len(s.compensations) - 1; i >= 0; i-- {
		c := s.compensations[i]
		if err := c.run(ctx); err != nil {
			s.logger.Error("Compensation failed", zap.String("step", string(c.step)), zap.Error(err))
			errs = multierr.Append(errs, fmt.Errorf("compensate %s: %w", c.step, err))
			continue
		}
		s.logger.Info("Compensation applied", zap.String("step", string(c.step)))
	}
	s.compensations = nil
	return errs
}

func (s *bookingSaga) fail(step sagaStep, compensated bool, cause error) *BookingError {
	return &BookingError{
		AttemptID:   s.id,
		Step:        string(step),
		Compensated: compensated,
		Cause:       cause,
	}
}
