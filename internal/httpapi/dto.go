package httpapi

import (
	"time"

	"github.com/Freeeeeet/coaching_booking/internal/model"
	"github.com/Freeeeeet/coaching_booking/internal/service"
)

type SlotsResponse struct {
	OfferingID int64        `json:"offering_id"`
	Date       string       `json:"date"`
	Slots      []model.Slot `json:"slots"`
}

type GrantPackageRequest struct {
	StudentID    int64  `json:"student_id"`
	InstructorID int64  `json:"instructor_id"`
	OfferingID   *int64 `json:"offering_id"`
	Name         string `json:"name"`
	Credits      int    `json:"credits"`
	StartDate    string `json:"start_date"` // YYYY-MM-DD, пусто - сегодня
	ValidDays    int    `json:"valid_days"`
}

type PackagesResponse struct {
	Packages []*model.Package `json:"packages"`
}

type CreateReservationRequest struct {
	service.BookingRequest
}

type ReservationResponse struct {
	Reservation *model.Reservation `json:"reservation"`
}

type ReservationsResponse struct {
	Reservations []*model.Reservation `json:"reservations"`
}

type AttendanceRequest struct {
	Status model.AttendanceStatus `json:"status"`
}

type MatchRecordingsRequest struct {
	FolderRef string    `json:"folder_ref"`
	Since     time.Time `json:"since"`
}
