package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// ReconciliationService повторяет возвраты кредитов, которые не прошли при компенсации
type ReconciliationService struct {
	ledger          CreditLedger
	reconciliations ReconciliationStore
	logger          *zap.Logger
}

func NewReconciliationService(ledger CreditLedger, reconciliations ReconciliationStore, logger *zap.Logger) *ReconciliationService {
	return &ReconciliationService{
		ledger:          ledger,
		reconciliations: reconciliations,
		logger:          logger,
	}
}

// RetryPending пытается вернуть кредиты из очереди, возвращает число успешных
func (s *ReconciliationService) RetryPending(ctx context.Context, limit int) (int, error) {
	pending, err := s.reconciliations.ListPending(ctx, limit)
	if err != nil {
		return 0, fmt.Errorf("list pending reconciliations: %w", err)
	}

	resolved := 0
	for _, rec := range pending {
		if _, err := s.ledger.Refund(ctx, rec.PackageID); err != nil {
			s.logger.Warn("Reconciliation refund failed",
				zap.Int64("reconciliation_id", rec.ID),
				zap.Int64("package_id", rec.PackageID),
				zap.Int("attempts", rec.Attempts+1),
				zap.Error(err),
			)
			if markErr := s.reconciliations.MarkFailed(ctx, rec.ID, err.Error()); markErr != nil {
				return resolved, fmt.Errorf("mark reconciliation failed: %w", markErr)
			}
			continue
		}

		// Если MarkDone не пройдёт, следующий прогон вернёт кредит повторно;
		// RefundOne не поднимает остаток выше total_sessions
		if err := s.reconciliations.MarkDone(ctx, rec.ID); err != nil {
			return resolved, fmt.Errorf("mark reconciliation done: %w", err)
		}
		resolved++

		s.logger.Info("Credit reconciled",
			zap.Int64("reconciliation_id", rec.ID),
			zap.Int64("package_id", rec.PackageID),
			zap.String("attempt_id", rec.AttemptID.String()),
		)
	}

	return resolved, nil
}
