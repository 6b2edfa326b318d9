package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/coaching_booking/internal/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreditLedger учёт занятий в пакетах студента
type CreditLedger interface {
	Get(ctx context.Context, packageID int64) (*model.Package, error)
	// Spend списывает ровно одно занятие, если пакет активен, иначе ErrInsufficientCredit
	Spend(ctx context.Context, packageID int64) (*model.Package, error)
	// Refund возвращает одно занятие, не превышая total_sessions
	Refund(ctx context.Context, packageID int64) (*model.Package, error)
}

// PackageLedger CreditLedger поверх хранилища пакетов
type PackageLedger struct {
	packages PackageStore
	now      Clock
	logger   *zap.Logger
}

func NewPackageLedger(packages PackageStore, logger *zap.Logger) *PackageLedger {
	return &PackageLedger{
		packages: packages,
		now:      time.Now,
		logger:   logger,
	}
}

// Get получает пакет, ErrPackageNotFound если его нет
func (l *PackageLedger) Get(ctx context.Context, packageID int64) (*model.Package, error) {
	pkg, err := l.packages.GetByID(ctx, packageID)
	if err != nil {
		return nil, fmt.Errorf("get package: %w", err)
	}
	if pkg == nil {
		return nil, ErrPackageNotFound
	}
	return pkg, nil
}

// Spend списывает занятие одним условным UPDATE, поэтому параллельные списания
// не могут увести остаток ниже нуля
func (l *PackageLedger) Spend(ctx context.Context, packageID int64) (*model.Package, error) {
	pkg, err := l.packages.SpendOne(ctx, packageID, l.now())
	if err != nil {
		return nil, fmt.Errorf("spend credit: %w", err)
	}

	if pkg == nil {
		// Различаем "нет пакета" и "нечего списывать"
		if _, err := l.Get(ctx, packageID); err != nil {
			return nil, err
		}
		return nil, ErrInsufficientCredit
	}

	l.logger.Info("Credit spent",
		zap.Int64("package_id", pkg.ID),
		zap.Int("remaining", pkg.RemainingSessions),
	)

	return pkg, nil
}

func (l *PackageLedger) Refund(ctx context.Context, packageID int64) (*model.Package, error) {
	pkg, err := l.packages.RefundOne(ctx, packageID)
	if err != nil {
		return nil, fmt.Errorf("refund credit: %w", err)
	}
	if pkg == nil {
		return nil, ErrPackageNotFound
	}

	l.logger.Info("Credit refunded",
		zap.Int64("package_id", pkg.ID),
		zap.Int("remaining", pkg.RemainingSessions),
	)

	return pkg, nil
}

// GrantRequest выдача пакета студенту инструктором
type GrantRequest struct {
	StudentID    int64     `json:"student_id"`
	InstructorID int64     `json:"instructor_id"`
	OfferingID   *int64    `json:"offering_id"`
	Name         string    `json:"name"`
	Credits      int       `json:"credits"`
	StartDate    time.Time `json:"start_date"`
	ValidDays    int       `json:"valid_days"` // 0 - бессрочный
}

// Grant создаёт пакет с полным остатком
func (l *PackageLedger) Grant(ctx context.Context, req GrantRequest) (*model.Package, error) {
	if req.Credits <= 0 || req.StudentID == 0 || req.InstructorID == 0 || req.ValidDays < 0 {
		return nil, ErrInvalidPackage
	}

	start := req.StartDate
	if start.IsZero() {
		start = l.now()
	}

	pkg := &model.Package{
		StudentID:         req.StudentID,
		InstructorID:      req.InstructorID,
		OfferingID:        req.OfferingID,
		Name:              req.Name,
		TotalSessions:     req.Credits,
		RemainingSessions: req.Credits,
		StartDate:         start,
	}
	if req.ValidDays > 0 {
		expires := start.AddDate(0, 0, req.ValidDays)
		pkg.ExpiresAt = &expires
	}

	if err := l.packages.Create(ctx, pkg); err != nil {
		return nil, fmt.Errorf("create package: %w", err)
	}

	l.logger.Info("Package granted",
		zap.Int64("package_id", pkg.ID),
		zap.Int64("student_id", pkg.StudentID),
		zap.Int64("instructor_id", pkg.InstructorID),
		zap.Int("credits", pkg.TotalSessions),
	)

	return pkg, nil
}

// ActivePackages пакеты студента у инструктора, которые можно тратить сейчас.
// Истёкшие пакеты отфильтровываются при чтении и не удаляются.
func (l *PackageLedger) ActivePackages(ctx context.Context, studentID, instructorID int64) ([]*model.Package, error) {
	packages, err := l.packages.ListActive(ctx, studentID, instructorID, l.now())
	if err != nil {
		return nil, fmt.Errorf("list active packages: %w", err)
	}
	return packages, nil
}

// creditRestorer возвращает кредит, а при сбое ставит возврат в очередь сверки
type creditRestorer struct {
	ledger          CreditLedger
	reconciliations ReconciliationStore
	logger          *zap.Logger
}

// restore возвращает queued=true, если возврат не прошёл и отложен.
// Ошибка означает, что кредит не возвращён и не поставлен в очередь.
func (c *creditRestorer) restore(ctx context.Context, packageID int64, attemptID uuid.UUID, reason string) (bool, error) {
	_, refundErr := c.ledger.Refund(ctx, packageID)
	if refundErr == nil {
		return false, nil
	}

	c.logger.Error("Credit refund failed, queueing reconciliation",
		zap.Int64("package_id", packageID),
		zap.String("attempt_id", attemptID.String()),
		zap.Error(refundErr),
	)

	if c.reconciliations == nil {
		return false, fmt.Errorf("refund credit: %w", refundErr)
	}

	rec := &model.CreditReconciliation{
		PackageID: packageID,
		AttemptID: attemptID,
		Reason:    reason,
		Status:    model.ReconciliationPending,
		LastError: refundErr.Error(),
	}
	if err := c.reconciliations.Enqueue(ctx, rec); err != nil {
		return false, fmt.Errorf("refund credit: %w (enqueue reconciliation: %v)", refundErr, err)
	}

	return true, nil
}
