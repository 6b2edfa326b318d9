package model

import "time"

// Package предоплаченный пакет занятий студента у инструктора
type Package struct {
	ID                int64      `json:"id"`
	StudentID         int64      `json:"student_id"`
	InstructorID      int64      `json:"instructor_id"`
	OfferingID        *int64     `json:"offering_id"` // nil - пакет подходит для любого занятия инструктора
	Name              string     `json:"name"`
	TotalSessions     int        `json:"total_sessions"`
	RemainingSessions int        `json:"remaining_sessions"`
	StartDate         time.Time  `json:"start_date"`
	ExpiresAt         *time.Time `json:"expires_at"`
	CreatedAt         time.Time  `json:"created_at"`
}

// IsExpired истёк ли срок действия пакета на момент now
func (p *Package) IsExpired(now time.Time) bool {
	return p.ExpiresAt != nil && !p.ExpiresAt.After(now)
}

// IsActive пакет можно тратить: есть остаток и срок не истёк
func (p *Package) IsActive(now time.Time) bool {
	return p.RemainingSessions > 0 && !p.IsExpired(now)
}

// CoversOffering подходит ли пакет для занятия
func (p *Package) CoversOffering(offeringID int64) bool {
	return p.OfferingID == nil || *p.OfferingID == offeringID
}
