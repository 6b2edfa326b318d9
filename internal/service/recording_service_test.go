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

type fakeRecordingSource struct {
	recordings []model.RecordingCandidate
	err        error
}

func (f *fakeRecordingSource) ListRecordings(_ context.Context, _ string, _ time.Time) ([]model.RecordingCandidate, error) {
	return f.recordings, f.err
}

func TestMatchInstructorRecordings_AttachesHighLeavesLow(t *testing.T) {
	reservations := newFakeReservations(
		reservationAt(t, 1, "Kim Minji", "2024-03-04 10:00", "https://meet.google.com/abc-defg-hij"),
		reservationAt(t, 2, "Lee Jun", "2024-03-04 14:00", ""),
		reservationAt(t, 3, "Park Sora", "2024-03-05 09:00", ""),
	)
	source := &fakeRecordingSource{recordings: []model.RecordingCandidate{
		recordingAt(t, "exact", "abc-defg-hij.mp4", "2024-03-04 10:05"),
		// 40 минут -> 20, полное имя -> 30, итого 50
		recordingAt(t, "weak", "lee jun.mp4", "2024-03-04 14:40"),
		recordingAt(t, "unknown", "screen capture.mp4", "2024-03-08 18:00"),
	}}
	notifier := &fakeNotifier{}
	offerings := &fakeOfferings{items: map[int64]*model.Offering{1: {ID: 1, InstructorID: 10}}}

	svc := NewRecordingService(offerings, reservations, source, notifier, time.UTC, zap.NewNop())
	svc.now = fixedClock(mustTime(t, "2024-03-09 00:00"))

	result, err := svc.MatchInstructorRecordings(context.Background(), 10, "folder", mustTime(t, "2024-03-01 00:00"))
	require.NoError(t, err)

	require.Len(t, result.Attached, 1)
	assert.Equal(t, "exact", result.Attached[0].Recording.FileRef)
	attached, _ := reservations.GetByID(context.Background(), 1)
	require.NotNil(t, attached.RecordingFileRef)
	assert.Equal(t, "exact", *attached.RecordingFileRef)

	assert.Empty(t, result.NeedsConfirmation)
	assert.Len(t, result.Unmatched, 2)
	assert.Empty(t, notifier.confirmation)
}

func TestMatchInstructorRecordings_MediumAsksInstructor(t *testing.T) {
	reservations := newFakeReservations(
		reservationAt(t, 2, "Lee Jun", "2024-03-04 14:00", ""),
	)
	source := &fakeRecordingSource{recordings: []model.RecordingCandidate{
		// 20 минут -> 30, полное имя -> 30
		recordingAt(t, "medium", "lee jun.mp4", "2024-03-04 14:20"),
	}}
	notifier := &fakeNotifier{}
	offerings := &fakeOfferings{items: map[int64]*model.Offering{1: {ID: 1, InstructorID: 10, InstructorChatID: int64Ptr(555)}}}

	svc := NewRecordingService(offerings, reservations, source, notifier, time.UTC, zap.NewNop())

	result, err := svc.MatchInstructorRecordings(context.Background(), 10, "folder", mustTime(t, "2024-03-01 00:00"))
	require.NoError(t, err)

	require.Len(t, result.NeedsConfirmation, 1)
	assert.Equal(t, 60.0, result.NeedsConfirmation[0].Score)
	require.Len(t, notifier.confirmation, 1)
	assert.Equal(t, int64(2), notifier.confirmation[0].Reservation.ID)

	stored, _ := reservations.GetByID(context.Background(), 2)
	assert.Nil(t, stored.RecordingFileRef, "medium confidence is not attached automatically")

	require.NoError(t, svc.ConfirmMatch(context.Background(), 2, "medium", 555))
	stored, _ = reservations.GetByID(context.Background(), 2)
	require.NotNil(t, stored.RecordingFileRef)
	assert.Nil(t, stored.RecordingScore)
}

func TestMatchInstructorRecordings_SourceError(t *testing.T) {
	svc := NewRecordingService(&fakeOfferings{}, newFakeReservations(), &fakeRecordingSource{err: errors.New("drive down")}, nil, nil, zap.NewNop())

	_, err := svc.MatchInstructorRecordings(context.Background(), 10, "folder", time.Now())
	assert.Error(t, err)
}

func TestConfirmMatch_UnknownReservation(t *testing.T) {
	svc := NewRecordingService(&fakeOfferings{}, newFakeReservations(), &fakeRecordingSource{}, nil, nil, zap.NewNop())

	err := svc.ConfirmMatch(context.Background(), 99, "file", 555)
	assert.ErrorIs(t, err, ErrReservationNotFound)
}

func TestConfirmMatch_Guards(t *testing.T) {
	cancelled := reservationAt(t, 1, "Kim Minji", "2024-03-04 10:00", "")
	cancelled.Status = model.ReservationStatusCancelled
	attached := reservationAt(t, 2, "Lee Jun", "2024-03-04 14:00", "")
	existing := "older-file"
	attached.RecordingFileRef = &existing
	open := reservationAt(t, 3, "Park Sora", "2024-03-05 09:00", "")

	tests := []struct {
		name          string
		reservationID int64
		chatID        int64
		wantErr       error
	}{
		{"foreign chat", 3, 777, ErrNotInstructor},
		{"cancelled reservation", 1, 555, ErrAlreadyCancelled},
		{"recording already attached", 2, 555, ErrRecordingAttached},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reservations := newFakeReservations(cancelled, attached, open)
			offerings := &fakeOfferings{items: map[int64]*model.Offering{1: {ID: 1, InstructorID: 10, InstructorChatID: int64Ptr(555)}}}
			svc := NewRecordingService(offerings, reservations, &fakeRecordingSource{}, nil, nil, zap.NewNop())

			err := svc.ConfirmMatch(context.Background(), tt.reservationID, "new-file", tt.chatID)
			assert.ErrorIs(t, err, tt.wantErr)

			stored, _ := reservations.GetByID(context.Background(), tt.reservationID)
			if stored.RecordingFileRef != nil {
				assert.NotEqual(t, "new-file", *stored.RecordingFileRef)
			}
		})
	}
}

// Отметка времени в имени файла Meet читается в поясе занятия
func TestMatchInstructorRecordings_UsesOfferingTimezone(t *testing.T) {
	reservations := newFakeReservations(
		reservationAt(t, 1, "Lee Jun", "2030-03-04 01:00", ""), // 10:00 KST
	)
	source := &fakeRecordingSource{recordings: []model.RecordingCandidate{
		{FileRef: "stamped", DisplayName: "Meet Recording - 2030-03-04 10:03 lee jun.mp4"},
	}}
	offerings := &fakeOfferings{items: map[int64]*model.Offering{1: {ID: 1, InstructorID: 10, Timezone: "Asia/Seoul"}}}

	svc := NewRecordingService(offerings, reservations, source, nil, time.UTC, zap.NewNop())
	svc.now = fixedClock(mustTime(t, "2030-03-05 00:00"))

	result, err := svc.MatchInstructorRecordings(context.Background(), 10, "folder", mustTime(t, "2030-03-03 00:00"))
	require.NoError(t, err)

	require.Len(t, result.Attached, 1)
	assert.Equal(t, 80.0, result.Attached[0].Score)
}
