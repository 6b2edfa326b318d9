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

type ReservationRepository struct {
	*base.Repository
}

func NewReservationRepository(pool *pgxpool.Pool) *ReservationRepository {
	return &ReservationRepository{Repository: base.NewRepository(pool)}
}

const reservationColumns = `
	id, student_id, student_name, student_email, instructor_id, offering_id, package_id,
	start_time, end_time, external_event_ref, join_link, status, attendance_status,
	recording_file_ref, recording_match_score, cancelled_at, created_at, updated_at`

func scanReservation(row pgx.Row) (*model.Reservation, error) {
	var r model.Reservation
	err := row.Scan(
		&r.ID,
		&r.StudentID,
		&r.StudentName,
		&r.StudentEmail,
		&r.InstructorID,
		&r.OfferingID,
		&r.PackageID,
		&r.StartTime,
		&r.EndTime,
		&r.ExternalEventRef,
		&r.JoinLink,
		&r.Status,
		&r.AttendanceStatus,
		&r.RecordingFileRef,
		&r.RecordingScore,
		&r.CancelledAt,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func collectReservations(rows pgx.Rows) ([]*model.Reservation, error) {
	defer rows.Close()

	var reservations []*model.Reservation
	for rows.Next() {
		r, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		reservations = append(reservations, r)
	}
	return reservations, rows.Err()
}

// Create сохраняет запись. Пересечение с другой подтверждённой записью
// инструктора отсекает exclusion-ограничение, ошибка оборачивает model.ErrReservationOverlap.
func (r *ReservationRepository) Create(ctx context.Context, res *model.Reservation) error {
	query := `
		INSERT INTO reservations (student_id, student_name, student_email, instructor_id, offering_id,
			package_id, start_time, end_time, external_event_ref, join_link, status, attendance_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at, updated_at
	`

	err := r.QueryRow(
		ctx, query,
		res.StudentID,
		res.StudentName,
		res.StudentEmail,
		res.InstructorID,
		res.OfferingID,
		res.PackageID,
		res.StartTime,
		res.EndTime,
		res.ExternalEventRef,
		res.JoinLink,
		res.Status,
		res.AttendanceStatus,
	).Scan(&res.ID, &res.CreatedAt, &res.UpdatedAt)

	if err != nil {
		if base.IsConflict(err) {
			return fmt.Errorf("create reservation: %w", model.ErrReservationOverlap)
		}
		return fmt.Errorf("create reservation: %w", err)
	}

	return nil
}

// GetByID получает запись по ID
func (r *ReservationRepository) GetByID(ctx context.Context, id int64) (*model.Reservation, error) {
	query := `SELECT` + reservationColumns + ` FROM reservations WHERE id = $1`

	res, err := scanReservation(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get reservation by id: %w", err)
	}

	return res, nil
}

// ListByStudent все записи студента, новые первыми
func (r *ReservationRepository) ListByStudent(ctx context.Context, studentID int64) ([]*model.Reservation, error) {
	query := `SELECT` + reservationColumns + `
		FROM reservations
		WHERE student_id = $1
		ORDER BY start_time DESC
	`

	rows, err := r.Query(ctx, query, studentID)
	if err != nil {
		return nil, fmt.Errorf("get reservations by student: %w", err)
	}

	return collectReservations(rows)
}

// ListBusy подтверждённые записи инструктора, пересекающие [from, to),
// с типом и названием занятия
func (r *ReservationRepository) ListBusy(ctx context.Context, instructorID int64, from, to time.Time) ([]model.BusyInterval, error) {
	query := `
		SELECT r.start_time, r.end_time, o.type, o.title
		FROM reservations r
		JOIN offerings o ON o.id = r.offering_id
		WHERE r.instructor_id = $1
		  AND r.status = 'confirmed'
		  AND r.start_time < $3
		  AND r.end_time > $2
		ORDER BY r.start_time
	`

	rows, err := r.Query(ctx, query, instructorID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list busy intervals: %w", err)
	}
	defer rows.Close()

	var busy []model.BusyInterval
	for rows.Next() {
		b := model.BusyInterval{Source: model.BusySourceSystem}
		if err := rows.Scan(&b.Start, &b.End, &b.Kind, &b.Title); err != nil {
			return nil, fmt.Errorf("scan busy interval: %w", err)
		}
		busy = append(busy, b)
	}

	return busy, rows.Err()
}

// ListWithoutRecording подтверждённые записи инструктора без привязанной записи,
// начавшиеся в [from, to)
func (r *ReservationRepository) ListWithoutRecording(ctx context.Context, instructorID int64, from, to time.Time) ([]*model.Reservation, error) {
	query := `SELECT` + reservationColumns + `
		FROM reservations
		WHERE instructor_id = $1
		  AND status = 'confirmed'
		  AND recording_file_ref IS NULL
		  AND start_time >= $2
		  AND start_time < $3
		ORDER BY start_time
	`

	rows, err := r.Query(ctx, query, instructorID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list reservations without recording: %w", err)
	}

	return collectReservations(rows)
}

// CancelAndRefund в одной транзакции переводит confirmed в cancelled и, если задан
// packageID, возвращает одно занятие в пакет. false - запись не найдена или уже не confirmed,
// тогда пакет не трогается. Возвращённый пакет nil, если возврата не было.
func (r *ReservationRepository) CancelAndRefund(ctx context.Context, id int64, at time.Time, packageID *int64) (bool, *model.Package, error) {
	var (
		changed  bool
		refunded *model.Package
	)

	err := r.WithTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE reservations
			SET status = 'cancelled', cancelled_at = $2, updated_at = NOW()
			WHERE id = $1 AND status = 'confirmed'
		`, id, at)
		if err != nil {
			return fmt.Errorf("cancel reservation: %w", err)
		}

		changed = tag.RowsAffected() == 1
		if !changed || packageID == nil {
			return nil
		}

		refunded, err = refundPackage(ctx, tx, *packageID)
		return err
	})
	if err != nil {
		return false, nil, err
	}

	return changed, refunded, nil
}

// UpdateAttendance отметка посещаемости подтверждённой записи
func (r *ReservationRepository) UpdateAttendance(ctx context.Context, id int64, status model.AttendanceStatus) (bool, error) {
	query := `
		UPDATE reservations
		SET attendance_status = $2, updated_at = NOW()
		WHERE id = $1 AND status = 'confirmed'
	`

	affected, err := r.ExecAffected(ctx, query, id, status)
	if err != nil {
		return false, fmt.Errorf("update attendance: %w", err)
	}

	return affected == 1, nil
}

// AttachRecording привязывает файл к подтверждённой записи без записи.
// false - запись отменена, не найдена или уже привязана.
func (r *ReservationRepository) AttachRecording(ctx context.Context, id int64, fileRef string, score *float64) (bool, error) {
	query := `
		UPDATE reservations
		SET recording_file_ref = $2, recording_match_score = $3, updated_at = NOW()
		WHERE id = $1 AND status = 'confirmed' AND recording_file_ref IS NULL
	`

	affected, err := r.ExecAffected(ctx, query, id, fileRef, score)
	if err != nil {
		return false, fmt.Errorf("attach recording: %w", err)
	}

	return affected == 1, nil
}
