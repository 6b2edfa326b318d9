package model

import (
	"regexp"
	"strings"
	"time"
)

type ReservationStatus string

const (
	ReservationStatusConfirmed ReservationStatus = "confirmed" // Подтверждена
	ReservationStatusCancelled ReservationStatus = "cancelled" // Отменена
)

type AttendanceStatus string

const (
	AttendancePending  AttendanceStatus = "pending"
	AttendanceAttended AttendanceStatus = "attended"
	AttendanceAbsent   AttendanceStatus = "absent"
	AttendanceLate     AttendanceStatus = "late"
)

// IsFinal отметка посещаемости, которую может поставить инструктор
func (s AttendanceStatus) IsFinal() bool {
	return s == AttendanceAttended || s == AttendanceAbsent || s == AttendanceLate
}

var meetCodePattern = regexp.MustCompile(`(?i)meet\.google\.com/([a-z-]+)`)

type Reservation struct {
	ID               int64             `json:"id"`
	StudentID        int64             `json:"student_id"`
	StudentName      string            `json:"student_name"`  // снимок на момент записи
	StudentEmail     string            `json:"student_email"` // снимок на момент записи
	InstructorID     int64             `json:"instructor_id"`
	OfferingID       int64             `json:"offering_id"`
	PackageID        *int64            `json:"package_id"`
	StartTime        time.Time         `json:"start_time"`
	EndTime          time.Time         `json:"end_time"`
	ExternalEventRef string            `json:"external_event_ref"`
	JoinLink         string            `json:"join_link"`
	Status           ReservationStatus `json:"status"`
	AttendanceStatus AttendanceStatus  `json:"attendance_status"`
	RecordingFileRef *string           `json:"recording_file_ref"`
	RecordingScore   *float64          `json:"recording_match_score"`
	CancelledAt      *time.Time        `json:"cancelled_at"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`

	// Дополнительные поля для удобства (не из БД)
	Offering *Offering `json:"offering,omitempty"`
}

// Interval промежуток занятия
func (r *Reservation) Interval() Interval {
	return Interval{Start: r.StartTime, End: r.EndTime}
}

// JoinCode код встречи из ссылки вида meet.google.com/abc-defg-hij
func (r *Reservation) JoinCode() string {
	m := meetCodePattern.FindStringSubmatch(r.JoinLink)
	if len(m) < 2 {
		return ""
	}
	return strings.ToLower(m[1])
}
