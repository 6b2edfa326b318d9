package model

import (
	"time"

	"github.com/google/uuid"
)

type ReconciliationStatus string

const (
	ReconciliationPending ReconciliationStatus = "pending"
	ReconciliationDone    ReconciliationStatus = "done"
)

// CreditReconciliation отложенный возврат кредита, если компенсация не прошла сразу
type CreditReconciliation struct {
	ID         int64                `json:"id"`
	PackageID  int64                `json:"package_id"`
	AttemptID  uuid.UUID            `json:"attempt_id"` // идентификатор саги бронирования или отмены
	Reason     string               `json:"reason"`
	Status     ReconciliationStatus `json:"status"`
	Attempts   int                  `json:"attempts"`
	LastError  string               `json:"last_error"`
	CreatedAt  time.Time            `json:"created_at"`
	ResolvedAt *time.Time           `json:"resolved_at"`
}
