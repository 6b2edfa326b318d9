package callbacks

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Freeeeeet/coaching_booking/internal/controller/callbacks/common"
)

// Callback data из сообщения о найденной записи встречи
const (
	RecordingConfirm = "rec_ok:" // rec_ok:<reservation_id>:<file_ref>
	RecordingReject  = "rec_no:" // rec_no:<reservation_id>
	Noop             = "noop"
)

// RecordingCallback разобранный ответ инструктора
type RecordingCallback struct {
	Confirmed     bool
	ReservationID int64
	FileRef       string
}

func RecordingConfirmData(reservationID int64, fileRef string) string {
	return fmt.Sprintf("%s%d:%s", RecordingConfirm, reservationID, fileRef)
}

func RecordingRejectData(reservationID int64) string {
	return fmt.Sprintf("%s%d", RecordingReject, reservationID)
}

// ParseRecordingCallback разбирает rec_ok:/rec_no: данные.
// file_ref может содержать двоеточия, поэтому делим не больше чем на две части.
func ParseRecordingCallback(data string) (RecordingCallback, error) {
	switch {
	case strings.HasPrefix(data, RecordingConfirm):
		parts := strings.SplitN(strings.TrimPrefix(data, RecordingConfirm), ":", 2)
		if len(parts) != 2 || parts[1] == "" {
			return RecordingCallback{}, common.ErrInvalidFormat
		}
		id, err := strconv.ParseInt(parts[0], 10, 64)
		if err != nil {
			return RecordingCallback{}, common.ErrInvalidFormat
		}
		return RecordingCallback{Confirmed: true, ReservationID: id, FileRef: parts[1]}, nil

	case strings.HasPrefix(data, RecordingReject):
		id, err := strconv.ParseInt(strings.TrimPrefix(data, RecordingReject), 10, 64)
		if err != nil {
			return RecordingCallback{}, common.ErrInvalidFormat
		}
		return RecordingCallback{ReservationID: id}, nil
	}

	return RecordingCallback{}, common.ErrInvalidFormat
}
