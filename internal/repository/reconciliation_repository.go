package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/coaching_booking/internal/model"
	"github.com/Freeeeeet/coaching_booking/internal/repository/base"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ReconciliationRepository очередь отложенных возвратов кредитов
type ReconciliationRepository struct {
	*base.Repository
}

func NewReconciliationRepository(pool *pgxpool.Pool) *ReconciliationRepository {
	return &ReconciliationRepository{Repository: base.NewRepository(pool)}
}

func (r *ReconciliationRepository) Enqueue(ctx context.Context, rec *model.CreditReconciliation) error {
	query := `
		INSERT INTO credit_reconciliations (package_id, attempt_id, reason, status, last_error)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := r.QueryRow(ctx, query, rec.PackageID, rec.AttemptID, rec.Reason, model.ReconciliationPending, rec.LastError).
		Scan(&rec.ID, &rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("enqueue reconciliation: %w", err)
	}

	rec.Status = model.ReconciliationPending
	return nil
}

// ListPending старые первыми
func (r *ReconciliationRepository) ListPending(ctx context.Context, limit int) ([]*model.CreditReconciliation, error) {
	query := `
		SELECT id, package_id, attempt_id, reason, status, attempts, last_error, created_at, resolved_at
		FROM credit_reconciliations
		WHERE status = 'pending'
		ORDER BY created_at
		LIMIT $1
	`

	rows, err := r.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending reconciliations: %w", err)
	}
	defer rows.Close()

	var items []*model.CreditReconciliation
	for rows.Next() {
		var rec model.CreditReconciliation
		err := rows.Scan(
			&rec.ID,
			&rec.PackageID,
			&rec.AttemptID,
			&rec.Reason,
			&rec.Status,
			&rec.Attempts,
			&rec.LastError,
			&rec.CreatedAt,
			&rec.ResolvedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan reconciliation: %w", err)
		}
		items = append(items, &rec)
	}

	return items, rows.Err()
}

func (r *ReconciliationRepository) MarkDone(ctx context.Context, id int64) error {
	query := `
		UPDATE credit_reconciliations
		SET status = 'done', attempts = attempts + 1, resolved_at = NOW()
		WHERE id = $1
	`

	if _, err := r.ExecAffected(ctx, query, id); err != nil {
		return fmt.Errorf("mark reconciliation done: %w", err)
	}
	return nil
}

func (r *ReconciliationRepository) MarkFailed(ctx context.Context, id int64, lastError string) error {
	query := `
		UPDATE credit_reconciliations
		SET attempts = attempts + 1, last_error = $2
		WHERE id = $1
	`

	if _, err := r.ExecAffected(ctx, query, id, lastError); err != nil {
		return fmt.Errorf("mark reconciliation failed: %w", err)
	}
	return nil
}
