package controller

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Freeeeeet/coaching_booking/internal/controller/callbacks"
	"github.com/Freeeeeet/coaching_booking/internal/controller/callbacks/common/formatting"
	"github.com/Freeeeeet/coaching_booking/internal/controller/callbacks/common/keyboard"
	"github.com/Freeeeeet/coaching_booking/internal/model"
	"github.com/Freeeeeet/coaching_booking/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

type MessageSender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
}

// TelegramNotifier шлёт уведомления инструктору в чат, указанный у занятия.
// Занятия без chat id пропускаются.
type TelegramNotifier struct {
	sender   MessageSender
	fallback *time.Location
	logger   *zap.Logger
}

func NewTelegramNotifier(sender MessageSender, fallback *time.Location, logger *zap.Logger) *TelegramNotifier {
	if fallback == nil {
		fallback = time.UTC
	}
	return &TelegramNotifier{sender: sender, fallback: fallback, logger: logger}
}

func (n *TelegramNotifier) send(ctx context.Context, offering *model.Offering, text string, markup models.ReplyMarkup) error {
	if offering == nil || offering.InstructorChatID == nil {
		return nil
	}

	_, err := n.sender.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      *offering.InstructorChatID,
		Text:        text,
		ReplyMarkup: markup,
	})
	if err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	return nil
}

func (n *TelegramNotifier) ReservationConfirmed(ctx context.Context, offering *model.Offering, r *model.Reservation) error {
	if offering == nil {
		return nil
	}

	text := reservationConfirmedText(offering, r, offering.Location(n.fallback))
	if r.JoinLink == "" {
		return n.send(ctx, offering, text, nil)
	}

	markup, err := keyboard.NewBuilder().
		Row(keyboard.URLButton("🎥 Открыть встречу", r.JoinLink)).
		Build()
	if err != nil {
		return fmt.Errorf("build join keyboard: %w", err)
	}
	return n.send(ctx, offering, text, markup)
}

func (n *TelegramNotifier) ReservationCancelled(ctx context.Context, offering *model.Offering, result *service.CancellationResult) error {
	if offering == nil || result == nil || result.Reservation == nil {
		return nil
	}
	return n.send(ctx, offering, reservationCancelledText(offering, result, offering.Location(n.fallback)), nil)
}

func (n *TelegramNotifier) RecordingNeedsConfirmation(ctx context.Context, offering *model.Offering, match model.MatchResult) error {
	if offering == nil || match.Reservation == nil {
		return nil
	}

	markup, err := keyboard.NewBuilder().
		Row(
			keyboard.Button("✅ Привязать", callbacks.RecordingConfirmData(match.Reservation.ID, match.Recording.FileRef)),
			keyboard.Button("🚫 Не то", callbacks.RecordingRejectData(match.Reservation.ID)),
		).
		Build()
	if err != nil {
		// Слишком длинный file_ref: отправляем без кнопок, привязка вручную
		n.logger.Warn("Recording confirmation sent without buttons",
			zap.String("file_ref", match.Recording.FileRef),
			zap.Error(err),
		)
		return n.send(ctx, offering, recordingText(match, offering.Location(n.fallback)), nil)
	}

	return n.send(ctx, offering, recordingText(match, offering.Location(n.fallback)), markup)
}

func reservationConfirmedText(offering *model.Offering, r *model.Reservation, loc *time.Location) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "✅ Новая запись #%d\n\n", r.ID)
	fmt.Fprintf(&sb, "📚 %s\n", offering.Title)
	fmt.Fprintf(&sb, "👤 %s\n", studentLabel(r))
	fmt.Fprintf(&sb, "📅 %s %s\n",
		formatting.FormatDateWithWeekday(r.StartTime.In(loc)),
		formatting.FormatTimeRange(r.StartTime.In(loc), r.EndTime.In(loc)),
	)
	fmt.Fprintf(&sb, "⏱ %s\n", formatting.FormatDuration(int(r.EndTime.Sub(r.StartTime).Minutes())))
	return sb.String()
}

func reservationCancelledText(offering *model.Offering, result *service.CancellationResult, loc *time.Location) string {
	r := result.Reservation
	decision := result.Decision

	outcome := "занятие возвращено в пакет"
	if result.Package != nil {
		left := result.Package.RemainingSessions
		outcome += fmt.Sprintf(", осталось %d %s", left, formatting.PluralizeSessions(left))
	}
	if decision.Outcome == service.OutcomeForfeited {
		outcome = "занятие списано"
		if decision.ThresholdHours != nil {
			outcome += fmt.Sprintf(" (отмена позже чем за %s)", formatting.FormatHours(float64(*decision.ThresholdHours)))
		}
	}

	status := formatting.GetReservationStatusDisplay(r.Status)
	return fmt.Sprintf("%s %s запись #%d\n\n📚 %s\n👤 %s\n📅 %s\n💳 %s",
		status.Emoji,
		status.Text,
		r.ID,
		offering.Title,
		studentLabel(r),
		formatting.FormatDateTime(r.StartTime.In(loc)),
		outcome,
	)
}

func recordingText(match model.MatchResult, loc *time.Location) string {
	display := formatting.GetConfidenceDisplay(match.Confidence)
	r := match.Reservation

	recorded := "время неизвестно"
	if !match.Recording.CreatedTime.IsZero() {
		recorded = formatting.FormatDateTime(match.Recording.CreatedTime.In(loc))
	}

	return fmt.Sprintf("🎥 Найдена запись встречи\n\n📄 %s\n📅 %s\n\nПохоже на запись #%d (%s, %s)\nОжидаемое имя файла: %s\n%s Уверенность: %s, %.0f/100\n%s",
		match.Recording.DisplayName,
		recorded,
		r.ID,
		studentLabel(r),
		formatting.FormatDateTime(r.StartTime.In(loc)),
		service.ExpectedRecordingName(r, loc),
		display.Emoji,
		display.Text,
		match.Score,
		match.Reason,
	)
}

func studentLabel(r *model.Reservation) string {
	if r.StudentName != "" {
		return r.StudentName
	}
	return fmt.Sprintf("студент #%d", r.StudentID)
}

// LogNotifier используется, когда бот не настроен
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) ReservationConfirmed(_ context.Context, _ *model.Offering, r *model.Reservation) error {
	n.logger.Info("Reservation confirmed (notification disabled)", zap.Int64("reservation_id", r.ID))
	return nil
}

func (n *LogNotifier) ReservationCancelled(_ context.Context, _ *model.Offering, result *service.CancellationResult) error {
	if result == nil || result.Reservation == nil {
		return nil
	}
	n.logger.Info("Reservation cancelled (notification disabled)",
		zap.Int64("reservation_id", result.Reservation.ID),
		zap.String("outcome", string(result.Decision.Outcome)),
	)
	return nil
}

func (n *LogNotifier) RecordingNeedsConfirmation(_ context.Context, _ *model.Offering, match model.MatchResult) error {
	n.logger.Info("Recording needs confirmation (notification disabled)",
		zap.String("file_ref", match.Recording.FileRef),
		zap.Float64("score", match.Score),
	)
	return nil
}
