package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Freeeeeet/coaching_booking/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDecideCancellation(t *testing.T) {
	start := time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		now       time.Time
		threshold *int
		want      CancellationOutcome
	}{
		{"well before threshold", start.Add(-48 * time.Hour), intPtr(24), OutcomeRefunded},
		{"exactly at threshold", start.Add(-24 * time.Hour), intPtr(24), OutcomeRefunded},
		{"inside threshold", start.Add(-2 * time.Hour), intPtr(24), OutcomeForfeited},
		{"after start", start.Add(time.Hour), intPtr(24), OutcomeForfeited},
		{"no threshold", start.Add(-time.Minute), nil, OutcomeRefunded},
		{"zero threshold", start.Add(-time.Minute), intPtr(0), OutcomeRefunded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := DecideCancellation(start, tt.now, tt.threshold)
			assert.Equal(t, tt.want, decision.Outcome)
			assert.Equal(t, tt.threshold, decision.ThresholdHours)
		})
	}
}

type cancellationFixture struct {
	packages     *fakePackages
	reservations *fakeReservations
	calendar     *fakeCalendar
	notifier     *fakeNotifier
	svc          *CancellationService
}

func newCancellationFixture(t *testing.T, threshold *int, remaining int, now string) *cancellationFixture {
	t.Helper()

	offerings := &fakeOfferings{items: map[int64]*model.Offering{
		1: {ID: 1, InstructorID: 10, CancellationHours: threshold, CalendarID: "primary", IsActive: true},
	}}

	start := mustTime(t, "2024-03-04 10:00")
	f := &cancellationFixture{
		packages: newFakePackages(&model.Package{
			ID: 5, StudentID: 20, InstructorID: 10, TotalSessions: 3, RemainingSessions: remaining,
		}),
		reservations: newFakeReservations(&model.Reservation{
			ID:               7,
			StudentID:        20,
			InstructorID:     10,
			OfferingID:       1,
			PackageID:        int64Ptr(5),
			StartTime:        start,
			EndTime:          start.Add(time.Hour),
			ExternalEventRef: "evt-7",
			Status:           model.ReservationStatusConfirmed,
			AttendanceStatus: model.AttendancePending,
		}),
		calendar: &fakeCalendar{},
		notifier: &fakeNotifier{},
	}

	f.reservations.packages = f.packages
	f.svc = NewCancellationService(offerings, f.reservations, f.calendar, f.notifier, zap.NewNop())
	f.svc.now = fixedClock(mustTime(t, now))

	return f
}

// Scenario C: отмена за 2 часа при пороге 24 часа
func TestCancel_InsideThresholdForfeits(t *testing.T) {
	f := newCancellationFixture(t, intPtr(24), 1, "2024-03-04 08:00")

	result, err := f.svc.Cancel(context.Background(), 7)
	require.NoError(t, err)

	assert.Equal(t, OutcomeForfeited, result.Decision.Outcome)
	assert.InDelta(t, 2.0, result.Decision.HoursUntilStart, 0.001)
	assert.False(t, result.Refunded)
	assert.Equal(t, 1, f.packages.remaining(5), "forfeit never changes remaining")
	assert.Equal(t, model.ReservationStatusCancelled, result.Reservation.Status)
	assert.Equal(t, []string{"evt-7"}, f.calendar.deleted)
	require.Len(t, f.notifier.cancelled, 1)
	assert.Equal(t, OutcomeForfeited, f.notifier.cancelled[0].Decision.Outcome)
}

func TestCancel_BeforeThresholdRefundsOne(t *testing.T) {
	f := newCancellationFixture(t, intPtr(24), 1, "2024-03-02 10:00")

	result, err := f.svc.Cancel(context.Background(), 7)
	require.NoError(t, err)

	assert.Equal(t, OutcomeRefunded, result.Decision.Outcome)
	assert.True(t, result.Refunded)
	require.NotNil(t, result.Package)
	assert.Equal(t, 2, result.Package.RemainingSessions)
	assert.Equal(t, 2, f.packages.remaining(5))
}

func TestCancel_RefundCappedAtTotal(t *testing.T) {
	f := newCancellationFixture(t, nil, 3, "2024-03-04 09:59")

	result, err := f.svc.Cancel(context.Background(), 7)
	require.NoError(t, err)

	assert.Equal(t, OutcomeRefunded, result.Decision.Outcome)
	assert.Equal(t, 3, f.packages.remaining(5))
}

func TestCancel_SecondCallDoesNotRefundAgain(t *testing.T) {
	f := newCancellationFixture(t, intPtr(24), 1, "2024-03-01 10:00")
	ctx := context.Background()

	_, err := f.svc.Cancel(ctx, 7)
	require.NoError(t, err)

	_, err = f.svc.Cancel(ctx, 7)
	assert.ErrorIs(t, err, ErrAlreadyCancelled)
	assert.Equal(t, 2, f.packages.remaining(5))
}

func TestCancel_UnknownReservation(t *testing.T) {
	f := newCancellationFixture(t, nil, 1, "2024-03-01 10:00")

	_, err := f.svc.Cancel(context.Background(), 404)
	assert.ErrorIs(t, err, ErrReservationNotFound)
}

// Сбой БД во время отмены не должен терять занятие: статус остаётся прежним,
// и повторная отмена возвращает ровно одно занятие
func TestCancel_FailedTransactionCanBeRetried(t *testing.T) {
	f := newCancellationFixture(t, intPtr(24), 1, "2024-03-01 10:00")
	ctx := context.Background()

	f.reservations.cancelErr = errors.New("connection refused")
	_, err := f.svc.Cancel(ctx, 7)
	require.Error(t, err)

	stored, err := f.reservations.GetByID(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, model.ReservationStatusConfirmed, stored.Status)
	assert.Equal(t, 1, f.packages.remaining(5))
	assert.Empty(t, f.calendar.deleted)
	assert.Empty(t, f.notifier.cancelled)

	f.reservations.cancelErr = nil
	result, err := f.svc.Cancel(ctx, 7)
	require.NoError(t, err)
	assert.True(t, result.Refunded)
	assert.Equal(t, 2, f.packages.remaining(5))
}

func TestCancel_RefundFailureLeavesReservationConfirmed(t *testing.T) {
	f := newCancellationFixture(t, intPtr(24), 1, "2024-03-01 10:00")
	f.packages.refundErr = errors.New("packages table locked")

	_, err := f.svc.Cancel(context.Background(), 7)
	require.Error(t, err)

	stored, err := f.reservations.GetByID(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, model.ReservationStatusConfirmed, stored.Status)
	assert.Equal(t, 1, f.packages.remaining(5))
}

func TestCancel_ForfeitDoesNotTouchPackage(t *testing.T) {
	f := newCancellationFixture(t, intPtr(24), 1, "2024-03-04 09:00")
	f.packages.refundErr = errors.New("must not be called")

	result, err := f.svc.Cancel(context.Background(), 7)
	require.NoError(t, err)
	assert.False(t, result.Refunded)
	assert.Nil(t, result.Package)
}
