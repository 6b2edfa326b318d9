package httpapi

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/Freeeeeet/coaching_booking/internal/model"
	"github.com/Freeeeeet/coaching_booking/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

type SlotFinder interface {
	DaySlots(ctx context.Context, offeringID int64, date time.Time) ([]model.Slot, error)
}

type PackageGranter interface {
	Grant(ctx context.Context, req service.GrantRequest) (*model.Package, error)
	ActivePackages(ctx context.Context, studentID, instructorID int64) ([]*model.Package, error)
}

type Booker interface {
	Book(ctx context.Context, req service.BookingRequest) (*model.Reservation, error)
}

type Canceller interface {
	Cancel(ctx context.Context, reservationID int64) (*service.CancellationResult, error)
}

type ReservationReader interface {
	Get(ctx context.Context, id int64) (*model.Reservation, error)
	ListByStudent(ctx context.Context, studentID int64) ([]*model.Reservation, error)
	MarkAttendance(ctx context.Context, id int64, status model.AttendanceStatus) (*model.Reservation, error)
}

type RecordingMatcher interface {
	MatchInstructorRecordings(ctx context.Context, instructorID int64, folderRef string, since time.Time) (*service.RecordingSweepResult, error)
}

// Handler HTTP обработчики поверх сервисов бронирования
type Handler struct {
	slots        SlotFinder
	packages     PackageGranter
	booker       Booker
	canceller    Canceller
	reservations ReservationReader
	recordings   RecordingMatcher
	logger       *zap.Logger
}

func NewHandler(
	slots SlotFinder,
	packages PackageGranter,
	booker Booker,
	canceller Canceller,
	reservations ReservationReader,
	recordings RecordingMatcher,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		slots:        slots,
		packages:     packages,
		booker:       booker,
		canceller:    canceller,
		reservations: reservations,
		recordings:   recordings,
		logger:       logger,
	}
}

func (h *Handler) log(r *http.Request, op string) *zap.Logger {
	return h.logger.With(
		zap.String("op", op),
		zap.String("request_id", middleware.GetReqID(r.Context())),
	)
}

func idParam(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// fail пишет ошибку сервиса; клиентские ошибки логируются на Info
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	if service.IsClientError(err) {
		log.Info("Request rejected", zap.Error(err))
	} else {
		log.Error("Request failed", zap.Error(err))
	}
	respondError(w, r, err)
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// GetSlots GET /offerings/{id}/slots?date=YYYY-MM-DD
func (h *Handler) GetSlots(w http.ResponseWriter, r *http.Request) {
	log := h.log(r, "httpapi.GetSlots")

	offeringID, ok := idParam(r, "id")
	if !ok {
		respondBadRequest(w, r, "invalid offering id")
		return
	}

	rawDate := r.URL.Query().Get("date")
	date, err := time.Parse(dateLayout, rawDate)
	if err != nil {
		respondBadRequest(w, r, "date must be YYYY-MM-DD")
		return
	}

	slots, err := h.slots.DaySlots(r.Context(), offeringID, date)
	if err != nil {
		h.fail(w, r, log, err)
		return
	}

	respondJSON(w, r, http.StatusOK, SlotsResponse{OfferingID: offeringID, Date: rawDate, Slots: slots})
}

// GrantPackage POST /packages
func (h *Handler) GrantPackage(w http.ResponseWriter, r *http.Request) {
	log := h.log(r, "httpapi.GrantPackage")

	var req GrantPackageRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		log.Info("Failed to decode request body", zap.Error(err))
		respondBadRequest(w, r, "failed to decode request")
		return
	}

	grant := service.GrantRequest{
		StudentID:    req.StudentID,
		InstructorID: req.InstructorID,
		OfferingID:   req.OfferingID,
		Name:         req.Name,
		Credits:      req.Credits,
		ValidDays:    req.ValidDays,
	}
	if req.StartDate != "" {
		start, err := time.Parse(dateLayout, req.StartDate)
		if err != nil {
			respondBadRequest(w, r, "start_date must be YYYY-MM-DD")
			return
		}
		grant.StartDate = start
	}

	pkg, err := h.packages.Grant(r.Context(), grant)
	if err != nil {
		h.fail(w, r, log, err)
		return
	}

	respondJSON(w, r, http.StatusCreated, pkg)
}

// ListStudentPackages GET /students/{id}/packages?instructor_id=
func (h *Handler) ListStudentPackages(w http.ResponseWriter, r *http.Request) {
	log := h.log(r, "httpapi.ListStudentPackages")

	studentID, ok := idParam(r, "id")
	if !ok {
		respondBadRequest(w, r, "invalid student id")
		return
	}
	instructorID, err := strconv.ParseInt(r.URL.Query().Get("instructor_id"), 10, 64)
	if err != nil {
		respondBadRequest(w, r, "instructor_id is required")
		return
	}

	packages, err := h.packages.ActivePackages(r.Context(), studentID, instructorID)
	if err != nil {
		h.fail(w, r, log, err)
		return
	}
	if packages == nil {
		packages = []*model.Package{}
	}

	respondJSON(w, r, http.StatusOK, PackagesResponse{Packages: packages})
}

// ListStudentReservations GET /students/{id}/reservations
func (h *Handler) ListStudentReservations(w http.ResponseWriter, r *http.Request) {
	log := h.log(r, "httpapi.ListStudentReservations")

	studentID, ok := idParam(r, "id")
	if !ok {
		respondBadRequest(w, r, "invalid student id")
		return
	}

	reservations, err := h.reservations.ListByStudent(r.Context(), studentID)
	if err != nil {
		h.fail(w, r, log, err)
		return
	}
	if reservations == nil {
		reservations = []*model.Reservation{}
	}

	respondJSON(w, r, http.StatusOK, ReservationsResponse{Reservations: reservations})
}

// CreateReservation POST /reservations
func (h *Handler) CreateReservation(w http.ResponseWriter, r *http.Request) {
	log := h.log(r, "httpapi.CreateReservation")

	var req CreateReservationRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		log.Info("Failed to decode request body", zap.Error(err))
		respondBadRequest(w, r, "failed to decode request")
		return
	}

	if req.StudentID == 0 || req.OfferingID == 0 || req.PackageID == 0 {
		respondBadRequest(w, r, "student_id, offering_id and package_id are required")
		return
	}

	reservation, err := h.booker.Book(r.Context(), req.BookingRequest)
	if err != nil {
		h.fail(w, r, log, err)
		return
	}

	log.Info("Reservation created", zap.Int64("reservation_id", reservation.ID))
	respondJSON(w, r, http.StatusCreated, ReservationResponse{Reservation: reservation})
}

// GetReservation GET /reservations/{id}
func (h *Handler) GetReservation(w http.ResponseWriter, r *http.Request) {
	log := h.log(r, "httpapi.GetReservation")

	id, ok := idParam(r, "id")
	if !ok {
		respondBadRequest(w, r, "invalid reservation id")
		return
	}

	reservation, err := h.reservations.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, log, err)
		return
	}

	respondJSON(w, r, http.StatusOK, ReservationResponse{Reservation: reservation})
}

// CancelReservation POST /reservations/{id}/cancel
func (h *Handler) CancelReservation(w http.ResponseWriter, r *http.Request) {
	log := h.log(r, "httpapi.CancelReservation")

	id, ok := idParam(r, "id")
	if !ok {
		respondBadRequest(w, r, "invalid reservation id")
		return
	}

	result, err := h.canceller.Cancel(r.Context(), id)
	if err != nil {
		h.fail(w, r, log, err)
		return
	}

	respondJSON(w, r, http.StatusOK, result)
}

// MarkAttendance PUT /reservations/{id}/attendance
func (h *Handler) MarkAttendance(w http.ResponseWriter, r *http.Request) {
	log := h.log(r, "httpapi.MarkAttendance")

	id, ok := idParam(r, "id")
	if !ok {
		respondBadRequest(w, r, "invalid reservation id")
		return
	}

	var req AttendanceRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		respondBadRequest(w, r, "failed to decode request")
		return
	}

	reservation, err := h.reservations.MarkAttendance(r.Context(), id, req.Status)
	if err != nil {
		h.fail(w, r, log, err)
		return
	}

	respondJSON(w, r, http.StatusOK, ReservationResponse{Reservation: reservation})
}

// MatchRecordings POST /instructors/{id}/recordings/match
func (h *Handler) MatchRecordings(w http.ResponseWriter, r *http.Request) {
	log := h.log(r, "httpapi.MatchRecordings")

	instructorID, ok := idParam(r, "id")
	if !ok {
		respondBadRequest(w, r, "invalid instructor id")
		return
	}

	// тело необязательно
	var req MatchRecordingsRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil && !errors.Is(err, io.EOF) {
		respondBadRequest(w, r, "failed to decode request")
		return
	}
	if req.Since.IsZero() {
		req.Since = time.Now().Add(-24 * time.Hour)
	}

	result, err := h.recordings.MatchInstructorRecordings(r.Context(), instructorID, req.FolderRef, req.Since)
	if err != nil {
		h.fail(w, r, log, err)
		return
	}

	respondJSON(w, r, http.StatusOK, result)
}
