package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/coaching_booking/internal/model"
	"github.com/Freeeeeet/coaching_booking/internal/repository/base"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PackageRepository struct {
	*base.Repository
}

func NewPackageRepository(pool *pgxpool.Pool) *PackageRepository {
	return &PackageRepository{Repository: base.NewRepository(pool)}
}

const packageColumns = `
	id, student_id, instructor_id, offering_id, name, total_sessions,
	remaining_sessions, start_date, expires_at, created_at`

func scanPackage(row pgx.Row) (*model.Package, error) {
	var p model.Package
	err := row.Scan(
		&p.ID,
		&p.StudentID,
		&p.InstructorID,
		&p.OfferingID,
		&p.Name,
		&p.TotalSessions,
		&p.RemainingSessions,
		&p.StartDate,
		&p.ExpiresAt,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create создаёт пакет
func (r *PackageRepository) Create(ctx context.Context, p *model.Package) error {
	query := `
		INSERT INTO packages (student_id, instructor_id, offering_id, name, total_sessions,
			remaining_sessions, start_date, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`

	err := r.QueryRow(
		ctx, query,
		p.StudentID,
		p.InstructorID,
		p.OfferingID,
		p.Name,
		p.TotalSessions,
		p.RemainingSessions,
		p.StartDate,
		p.ExpiresAt,
	).Scan(&p.ID, &p.CreatedAt)

	if err != nil {
		return fmt.Errorf("create package: %w", err)
	}

	return nil
}

// GetByID получает пакет по ID
func (r *PackageRepository) GetByID(ctx context.Context, id int64) (*model.Package, error) {
	query := `SELECT` + packageColumns + ` FROM packages WHERE id = $1`

	p, err := scanPackage(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get package by id: %w", err)
	}

	return p, nil
}

// SpendOne атомарно списывает одно занятие. Условие в WHERE не даёт двум
// параллельным списаниям увести остаток ниже нуля или потратить истёкший пакет.
func (r *PackageRepository) SpendOne(ctx context.Context, id int64, now time.Time) (*model.Package, error) {
	query := `
		UPDATE packages
		SET remaining_sessions = remaining_sessions - 1
		WHERE id = $1
		  AND remaining_sessions > 0
		  AND (expires_at IS NULL OR expires_at > $2)
		RETURNING` + packageColumns

	p, err := scanPackage(r.QueryRow(ctx, query, id, now))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("spend package credit: %w", err)
	}

	return p, nil
}

// RefundOne возвращает одно занятие, не больше total_sessions
func (r *PackageRepository) RefundOne(ctx context.Context, id int64) (*model.Package, error) {
	return refundPackage(ctx, r.Pool(), id)
}

// refundPackage общий для пула и транзакции отмены
func refundPackage(ctx context.Context, q base.Querier, id int64) (*model.Package, error) {
	query := `
		UPDATE packages
		SET remaining_sessions = LEAST(remaining_sessions + 1, total_sessions)
		WHERE id = $1
		RETURNING` + packageColumns

	p, err := scanPackage(q.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("refund package credit: %w", err)
	}

	return p, nil
}

// ListActive пакеты студента у инструктора с остатком и не истёкшие на момент now
func (r *PackageRepository) ListActive(ctx context.Context, studentID, instructorID int64, now time.Time) ([]*model.Package, error) {
	query := `SELECT` + packageColumns + `
		FROM packages
		WHERE student_id = $1
		  AND instructor_id = $2
		  AND remaining_sessions > 0
		  AND (expires_at IS NULL OR expires_at > $3)
		ORDER BY expires_at NULLS LAST, id
	`

	rows, err := r.Query(ctx, query, studentID, instructorID, now)
	if err != nil {
		return nil, fmt.Errorf("list active packages: %w", err)
	}
	defer rows.Close()

	var packages []*model.Package
	for rows.Next() {
		p, err := scanPackage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan package: %w", err)
		}
		packages = append(packages, p)
	}

	return packages, rows.Err()
}
