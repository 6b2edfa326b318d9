package httpapi

import (
	"errors"
	"net/http"

	"github.com/Freeeeeet/coaching_booking/internal/service"
	"github.com/go-chi/render"
)

type ErrCode string

const (
	CodeBadRequest         ErrCode = "BAD_REQUEST"
	CodeNotFound           ErrCode = "NOT_FOUND"
	CodeInsufficientCredit ErrCode = "INSUFFICIENT_CREDIT"
	CodeSlotConflict       ErrCode = "SLOT_CONFLICT"
	CodeAlreadyCancelled   ErrCode = "ALREADY_CANCELLED"
	CodePersistFailed      ErrCode = "PERSIST_FAILED"
	CodeRequestFailed      ErrCode = "REQUEST_FAILED"
	CodeUnavailable        ErrCode = "UNAVAILABLE"
)

type ErrorBody struct {
	Code    ErrCode `json:"code"`
	Message string  `json:"message"`
	// Заполняется для ошибок саги бронирования
	AttemptID string `json:"attempt_id,omitempty"`
}

type Response struct {
	Error ErrorBody `json:"error"`
}

func errorResponse(code ErrCode, msg string) Response {
	return Response{Error: ErrorBody{Code: code, Message: msg}}
}

// classify сопоставляет ошибку сервиса со статусом и кодом ответа
func classify(err error) (int, ErrCode, string) {
	switch {
	case errors.Is(err, service.ErrInsufficientCredit):
		return http.StatusPaymentRequired, CodeInsufficientCredit, "no credit left on the package, buy more credit"
	case errors.Is(err, service.ErrSlotConflict):
		return http.StatusConflict, CodeSlotConflict, "the slot is already taken, pick another slot"
	case errors.Is(err, service.ErrAlreadyCancelled):
		return http.StatusConflict, CodeAlreadyCancelled, "reservation is already cancelled"
	case service.IsNotFound(err):
		return http.StatusNotFound, CodeNotFound, err.Error()
	case service.IsClientError(err):
		return http.StatusBadRequest, CodeBadRequest, err.Error()
	case errors.Is(err, service.ErrRecordingSourceDisabled):
		return http.StatusServiceUnavailable, CodeUnavailable, err.Error()
	case errors.Is(err, service.ErrReservationPersistFailed):
		return http.StatusInternalServerError, CodePersistFailed, "reservation could not be saved, the credit was returned"
	default:
		return http.StatusInternalServerError, CodeRequestFailed, "internal error"
	}
}

func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status, code, msg := classify(err)
	resp := errorResponse(code, msg)

	var bookingErr *service.BookingError
	if errors.As(err, &bookingErr) {
		resp.Error.AttemptID = bookingErr.AttemptID.String()
	}

	render.Status(r, status)
	render.JSON(w, r, resp)
}

func respondBadRequest(w http.ResponseWriter, r *http.Request, msg string) {
	render.Status(r, http.StatusBadRequest)
	render.JSON(w, r, errorResponse(CodeBadRequest, msg))
}

func respondJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	render.Status(r, status)
	render.JSON(w, r, v)
}
