package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Freeeeeet/coaching_booking/internal/model"
	"github.com/Freeeeeet/coaching_booking/internal/repository/base"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type OfferingRepository struct {
	*base.Repository
}

func NewOfferingRepository(pool *pgxpool.Pool) *OfferingRepository {
	return &OfferingRepository{Repository: base.NewRepository(pool)}
}

const offeringColumns = `
	id, instructor_id, title, type, duration_minutes, price, cancellation_hours,
	calendar_id, timezone, working_hours, instructor_chat_id, is_active, created_at`

func scanOffering(row pgx.Row) (*model.Offering, error) {
	var (
		o        model.Offering
		rawHours []byte
	)
	err := row.Scan(
		&o.ID,
		&o.InstructorID,
		&o.Title,
		&o.Type,
		&o.DurationMinutes,
		&o.Price,
		&o.CancellationHours,
		&o.CalendarID,
		&o.Timezone,
		&rawHours,
		&o.InstructorChatID,
		&o.IsActive,
		&o.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	// Рабочие часы проверяются на границе, дальше по коду идут только валидные
	hours, err := model.ParseWorkingHours(rawHours)
	if err != nil {
		return nil, fmt.Errorf("offering %d working hours: %w", o.ID, err)
	}
	o.WorkingHours = hours

	return &o, nil
}

// Create создаёт новое занятие
func (r *OfferingRepository) Create(ctx context.Context, o *model.Offering) error {
	if o.WorkingHours == nil {
		o.WorkingHours = model.DefaultWorkingHours()
	}
	if err := o.WorkingHours.Validate(); err != nil {
		return fmt.Errorf("validate working hours: %w", err)
	}
	rawHours, err := json.Marshal(o.WorkingHours)
	if err != nil {
		return fmt.Errorf("encode working hours: %w", err)
	}

	query := `
		INSERT INTO offerings (instructor_id, title, type, duration_minutes, price, cancellation_hours,
			calendar_id, timezone, working_hours, instructor_chat_id, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at
	`

	err = r.QueryRow(
		ctx, query,
		o.InstructorID,
		o.Title,
		o.Type,
		o.DurationMinutes,
		o.Price,
		o.CancellationHours,
		o.CalendarID,
		o.Timezone,
		rawHours,
		o.InstructorChatID,
		o.IsActive,
	).Scan(&o.ID, &o.CreatedAt)

	if err != nil {
		return fmt.Errorf("create offering: %w", err)
	}

	return nil
}

// GetByID получает занятие по ID
func (r *OfferingRepository) GetByID(ctx context.Context, id int64) (*model.Offering, error) {
	query := `SELECT` + offeringColumns + `
		FROM offerings
		WHERE id = $1
	`

	o, err := scanOffering(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get offering by id: %w", err)
	}

	return o, nil
}

// ListActive все активные занятия
func (r *OfferingRepository) ListActive(ctx context.Context) ([]*model.Offering, error) {
	query := `SELECT` + offeringColumns + `
		FROM offerings
		WHERE is_active = TRUE
		ORDER BY id
	`

	rows, err := r.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list active offerings: %w", err)
	}
	defer rows.Close()

	var offerings []*model.Offering
	for rows.Next() {
		o, err := scanOffering(rows)
		if err != nil {
			return nil, fmt.Errorf("scan offering: %w", err)
		}
		offerings = append(offerings, o)
	}

	return offerings, rows.Err()
}
