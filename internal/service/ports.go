package service

import (
	"context"
	"time"

	"github.com/Freeeeeet/coaching_booking/internal/model"
)

// Хранилища возвращают (nil, nil), если сущность не найдена.

type OfferingStore interface {
	GetByID(ctx context.Context, id int64) (*model.Offering, error)
}

type PackageStore interface {
	GetByID(ctx context.Context, id int64) (*model.Package, error)
	// SpendOne списывает одно занятие, только если пакет активен на момент now.
	// Возвращает nil, если списать нельзя.
	SpendOne(ctx context.Context, id int64, now time.Time) (*model.Package, error)
	// RefundOne возвращает одно занятие, не превышая total_sessions
	RefundOne(ctx context.Context, id int64) (*model.Package, error)
	Create(ctx context.Context, pkg *model.Package) error
	ListActive(ctx context.Context, studentID, instructorID int64, now time.Time) ([]*model.Package, error)
}

type ReservationStore interface {
	// Create возвращает ошибку, совместимую с model.ErrReservationOverlap,
	// если промежуток пересекается с другой подтверждённой записью инструктора
	Create(ctx context.Context, r *model.Reservation) error
	GetByID(ctx context.Context, id int64) (*model.Reservation, error)
	ListByStudent(ctx context.Context, studentID int64) ([]*model.Reservation, error)
	ListBusy(ctx context.Context, instructorID int64, from, to time.Time) ([]model.BusyInterval, error)
	ListWithoutRecording(ctx context.Context, instructorID int64, from, to time.Time) ([]*model.Reservation, error)
	// CancelAndRefund атомарно отменяет подтверждённую запись и возвращает занятие в пакет
	// (если packageID задан). false - статус уже другой, пакет не менялся.
	CancelAndRefund(ctx context.Context, id int64, at time.Time, packageID *int64) (bool, *model.Package, error)
	UpdateAttendance(ctx context.Context, id int64, status model.AttendanceStatus) (bool, error)
	// AttachRecording score nil - запись подтверждена инструктором вручную.
	// false - бронирование отменено или запись уже привязана.
	AttachRecording(ctx context.Context, id int64, fileRef string, score *float64) (bool, error)
}

type ReconciliationStore interface {
	Enqueue(ctx context.Context, rec *model.CreditReconciliation) error
	ListPending(ctx context.Context, limit int) ([]*model.CreditReconciliation, error)
	MarkDone(ctx context.Context, id int64) error
	MarkFailed(ctx context.Context, id int64, lastError string) error
}

// CalendarClient внешний календарь с видеовстречами
type CalendarClient interface {
	BusyIntervals(ctx context.Context, calendarID string, from, to time.Time) ([]model.Interval, error)
	CreateEvent(ctx context.Context, calendarID string, event model.CalendarEvent) (*model.CalendarEventRef, error)
	DeleteEvent(ctx context.Context, calendarID, eventID string) error
}

// RecordingSource хранилище видеозаписей занятий
type RecordingSource interface {
	ListRecordings(ctx context.Context, folderRef string, since time.Time) ([]model.RecordingCandidate, error)
}

// Notifier доставка уведомлений инструктору. Ошибки доставки не влияют на операции.
type Notifier interface {
	ReservationConfirmed(ctx context.Context, offering *model.Offering, r *model.Reservation) error
	ReservationCancelled(ctx context.Context, offering *model.Offering, result *CancellationResult) error
	RecordingNeedsConfirmation(ctx context.Context, offering *model.Offering, match model.MatchResult) error
}

// SlotLocker кратковременная блокировка слота на время бронирования.
// Unlock снимает блокировку, только если её значение всё ещё owner.
type SlotLocker interface {
	Lock(ctx context.Context, key, owner string, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, key, owner string) error
}

// Clock источник текущего времени
type Clock func() time.Time
