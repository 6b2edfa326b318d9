package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Freeeeeet/coaching_booking/internal/model"
)

type fakeOfferings struct {
	items map[int64]*model.Offering
}

func (f *fakeOfferings) GetByID(_ context.Context, id int64) (*model.Offering, error) {
	o, ok := f.items[id]
	if !ok {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

type fakePackages struct {
	mu        sync.Mutex
	items     map[int64]*model.Package
	nextID    int64
	refundErr error
	spends    int
}

func newFakePackages(pkgs ...*model.Package) *fakePackages {
	f := &fakePackages{items: make(map[int64]*model.Package), nextID: 100}
	for _, p := range pkgs {
		f.items[p.ID] = p
	}
	return f
}

func (f *fakePackages) GetByID(_ context.Context, id int64) (*model.Package, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.items[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (f *fakePackages) SpendOne(_ context.Context, id int64, now time.Time) (*model.Package, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.items[id]
	if !ok || !p.IsActive(now) {
		return nil, nil
	}
	p.RemainingSessions--
	f.spends++
	cp := *p
	return &cp, nil
}

func (f *fakePackages) RefundOne(_ context.Context, id int64) (*model.Package, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.refundErr != nil {
		return nil, f.refundErr
	}
	p, ok := f.items[id]
	if !ok {
		return nil, nil
	}
	if p.RemainingSessions < p.TotalSessions {
		p.RemainingSessions++
	}
	cp := *p
	return &cp, nil
}

func (f *fakePackages) Create(_ context.Context, pkg *model.Package) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	pkg.ID = f.nextID
	cp := *pkg
	f.items[pkg.ID] = &cp
	return nil
}

func (f *fakePackages) ListActive(_ context.Context, studentID, instructorID int64, now time.Time) ([]*model.Package, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Package
	for _, p := range f.items {
		if p.StudentID == studentID && p.InstructorID == instructorID && p.IsActive(now) {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakePackages) remaining(id int64) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.items[id].RemainingSessions
}

type fakeReservations struct {
	mu        sync.Mutex
	items     map[int64]*model.Reservation
	nextID    int64
	createErr error
	cancelErr error // сбой транзакции отмены: ничего не меняется
	busy      []model.BusyInterval
	packages  *fakePackages
}

func newFakeReservations(rs ...*model.Reservation) *fakeReservations {
	f := &fakeReservations{items: make(map[int64]*model.Reservation)}
	for _, r := range rs {
		f.items[r.ID] = r
		if r.ID > f.nextID {
			f.nextID = r.ID
		}
	}
	return f
}

func (f *fakeReservations) Create(_ context.Context, r *model.Reservation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	for _, existing := range f.items {
		if existing.InstructorID == r.InstructorID &&
			existing.Status == model.ReservationStatusConfirmed &&
			existing.Interval().Overlaps(r.Interval()) {
			return fmt.Errorf("create reservation: %w", model.ErrReservationOverlap)
		}
	}
	f.nextID++
	r.ID = f.nextID
	cp := *r
	f.items[r.ID] = &cp
	return nil
}

func (f *fakeReservations) GetByID(_ context.Context, id int64) (*model.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.items[id]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (f *fakeReservations) ListByStudent(_ context.Context, studentID int64) ([]*model.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Reservation
	for _, r := range f.items {
		if r.StudentID == studentID {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeReservations) ListBusy(_ context.Context, _ int64, _, _ time.Time) ([]model.BusyInterval, error) {
	return f.busy, nil
}

func (f *fakeReservations) ListWithoutRecording(_ context.Context, instructorID int64, _, _ time.Time) ([]*model.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Reservation
	for id := int64(1); id <= f.nextID; id++ {
		r, ok := f.items[id]
		if ok && r.InstructorID == instructorID && r.RecordingFileRef == nil {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeReservations) CancelAndRefund(ctx context.Context, id int64, at time.Time, packageID *int64) (bool, *model.Package, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cancelErr != nil {
		return false, nil, f.cancelErr
	}
	r, ok := f.items[id]
	if !ok || r.Status != model.ReservationStatusConfirmed {
		return false, nil, nil
	}

	var pkg *model.Package
	if packageID != nil && f.packages != nil {
		refunded, err := f.packages.RefundOne(ctx, *packageID)
		if err != nil {
			return false, nil, err
		}
		pkg = refunded
	}

	r.Status = model.ReservationStatusCancelled
	r.CancelledAt = &at
	return true, pkg, nil
}

func (f *fakeReservations) UpdateAttendance(_ context.Context, id int64, status model.AttendanceStatus) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.items[id]
	if !ok || r.Status != model.ReservationStatusConfirmed {
		return false, nil
	}
	r.AttendanceStatus = status
	return true, nil
}

func (f *fakeReservations) AttachRecording(_ context.Context, id int64, fileRef string, score *float64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.items[id]
	if !ok || r.Status != model.ReservationStatusConfirmed || r.RecordingFileRef != nil {
		return false, nil
	}
	r.RecordingFileRef = &fileRef
	r.RecordingScore = score
	return true, nil
}

func (f *fakeReservations) confirmedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.items {
		if r.Status == model.ReservationStatusConfirmed {
			n++
		}
	}
	return n
}

type fakeReconciliations struct {
	mu     sync.Mutex
	items  []*model.CreditReconciliation
	failed map[int64]string
}

func (f *fakeReconciliations) Enqueue(_ context.Context, rec *model.CreditReconciliation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec.ID = int64(len(f.items) + 1)
	f.items = append(f.items, rec)
	return nil
}

func (f *fakeReconciliations) ListPending(_ context.Context, limit int) ([]*model.CreditReconciliation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.CreditReconciliation
	for _, rec := range f.items {
		if rec.Status == model.ReconciliationPending && len(out) < limit {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeReconciliations) MarkDone(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[id-1].Status = model.ReconciliationDone
	return nil
}

func (f *fakeReconciliations) MarkFailed(_ context.Context, id int64, lastError string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failed == nil {
		f.failed = make(map[int64]string)
	}
	f.items[id-1].Attempts++
	f.failed[id] = lastError
	return nil
}

type fakeCalendar struct {
	mu        sync.Mutex
	createErr error
	busyErr   error
	busy      []model.Interval
	created   []model.CalendarEvent
	deleted   []string
}

func (f *fakeCalendar) BusyIntervals(_ context.Context, _ string, _, _ time.Time) ([]model.Interval, error) {
	if f.busyErr != nil {
		return nil, f.busyErr
	}
	return f.busy, nil
}

func (f *fakeCalendar) CreateEvent(_ context.Context, _ string, event model.CalendarEvent) (*model.CalendarEventRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, event)
	id := fmt.Sprintf("evt-%d", len(f.created))
	return &model.CalendarEventRef{
		ID:       id,
		JoinLink: "https://meet.google.com/abc-defg-hij",
	}, nil
}

func (f *fakeCalendar) DeleteEvent(_ context.Context, _ string, eventID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, eventID)
	return nil
}

type fakeNotifier struct {
	mu           sync.Mutex
	confirmed    []int64
	cancelled    []*CancellationResult
	confirmation []model.MatchResult
}

func (f *fakeNotifier) ReservationConfirmed(_ context.Context, _ *model.Offering, r *model.Reservation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.confirmed = append(f.confirmed, r.ID)
	return nil
}

func (f *fakeNotifier) ReservationCancelled(_ context.Context, _ *model.Offering, result *CancellationResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelled = append(f.cancelled, result)
	return nil
}

func (f *fakeNotifier) RecordingNeedsConfirmation(_ context.Context, _ *model.Offering, m model.MatchResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.confirmation = append(f.confirmation, m)
	return nil
}

type fakeLocker struct {
	mu   sync.Mutex
	held map[string]string
}

func (f *fakeLocker) Lock(_ context.Context, key, owner string, _ time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.held == nil {
		f.held = make(map[string]string)
	}
	if _, ok := f.held[key]; ok {
		return false, nil
	}
	f.held[key] = owner
	return true, nil
}

func (f *fakeLocker) Unlock(_ context.Context, key, owner string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.held[key] != owner {
		return fmt.Errorf("lock %s is not held by %s", key, owner)
	}
	delete(f.held, key)
	return nil
}

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

func intPtr(v int) *int { return &v }

func int64Ptr(v int64) *int64 { return &v }
