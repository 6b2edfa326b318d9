package callbacks

import (
	"context"
	"strings"

	"github.com/Freeeeeet/coaching_booking/internal/controller/callbacks/common"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// RecordingConfirmer проверяет, что chatID принадлежит инструктору занятия
type RecordingConfirmer interface {
	ConfirmMatch(ctx context.Context, reservationID int64, fileRef string, chatID int64) error
}

// Handler обработчик нажатий на inline кнопки
type Handler struct {
	recordings RecordingConfirmer
	logger     *zap.Logger
}

func NewHandler(recordings RecordingConfirmer, logger *zap.Logger) *Handler {
	return &Handler{recordings: recordings, logger: logger}
}

// HandleCallbackQuery точка входа, совместимая с bot.HandlerFunc
func (h *Handler) HandleCallbackQuery(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery == nil {
		return
	}
	h.Route(ctx, b, update.CallbackQuery)
}

// Route распределяет callback query по обработчикам
func (h *Handler) Route(ctx context.Context, b common.Bot, callback *models.CallbackQuery) {
	data := callback.Data

	h.logger.Info("Routing callback",
		zap.String("data", data),
		zap.Int64("user_id", callback.From.ID),
	)

	switch {
	case data == Noop:
		h.answer(ctx, b, callback.ID, "")
	case strings.HasPrefix(data, RecordingConfirm), strings.HasPrefix(data, RecordingReject):
		h.handleRecording(ctx, b, callback)
	default:
		h.logger.Warn("Unknown callback", zap.String("data", data))
		h.answer(ctx, b, callback.ID, "")
	}
}

func (h *Handler) handleRecording(ctx context.Context, b common.Bot, callback *models.CallbackQuery) {
	parsed, err := ParseRecordingCallback(callback.Data)
	if err != nil {
		h.alert(ctx, b, callback.ID, common.UserMessage(err))
		return
	}

	if !parsed.Confirmed {
		h.logger.Info("Instructor rejected recording match", zap.Int64("reservation_id", parsed.ReservationID))
		h.answer(ctx, b, callback.ID, "Запись оставлена без привязки")
		h.editResult(ctx, b, callback, "🚫 Запись не привязана. Её можно привязать вручную.")
		return
	}

	if h.recordings == nil {
		h.alert(ctx, b, callback.ID, common.UserMessage(nil))
		return
	}

	if err := h.recordings.ConfirmMatch(ctx, parsed.ReservationID, parsed.FileRef, callback.From.ID); err != nil {
		h.logger.Warn("Failed to confirm recording match",
			zap.Int64("reservation_id", parsed.ReservationID),
			zap.String("file_ref", parsed.FileRef),
			zap.Int64("user_id", callback.From.ID),
			zap.Error(err),
		)
		h.alert(ctx, b, callback.ID, common.UserMessage(err))
		return
	}

	h.answer(ctx, b, callback.ID, "✅ Запись привязана")
	h.editResult(ctx, b, callback, "✅ Запись привязана к бронированию.")
}

// editResult заменяет текст сообщения с кнопками итогом
func (h *Handler) editResult(ctx context.Context, b common.Bot, callback *models.CallbackQuery, text string) {
	msg := common.GetMessageFromCallback(callback)
	if msg == nil {
		return
	}

	_, err := b.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:    msg.Chat.ID,
		MessageID: msg.ID,
		Text:      msg.Text + "\n\n" + text,
	})
	if err != nil {
		h.logger.Warn("Failed to edit callback message", zap.Error(err))
	}
}

func (h *Handler) answer(ctx context.Context, b common.Bot, callbackID, text string) {
	if err := common.AnswerCallback(ctx, b, callbackID, text); err != nil {
		h.logger.Warn("Failed to answer callback", zap.Error(err))
	}
}

func (h *Handler) alert(ctx context.Context, b common.Bot, callbackID, text string) {
	if err := common.AnswerCallbackAlert(ctx, b, callbackID, text); err != nil {
		h.logger.Warn("Failed to answer callback", zap.Error(err))
	}
}
