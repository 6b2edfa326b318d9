package handlers

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/coaching_booking/internal/controller/callbacks/common"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

const helpText = "📚 Справка по командам:\n\n" +
	"/start - Начать работу с ботом\n" +
	"/slots <id занятия> <ГГГГ-ММ-ДД> - Свободное время на дату\n" +
	"/help - Показать эту справку\n\n" +
	"Инструкторам бот присылает уведомления о записях и отменах, " +
	"а также просит подтвердить привязку записей встреч."

// HandleStart обрабатывает команду /start
func (h *Handlers) HandleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	h.sendMessage(ctx, b, update.Message.Chat.ID, startText(update.Message.From))
}

func startText(user *models.User) string {
	name := "!"
	if user != nil && user.FirstName != "" {
		name = ", " + user.FirstName + "!"
	}
	return fmt.Sprintf(
		"👋 Привет%s\n\n"+
			"Это бот записи на занятия с инструктором.\n"+
			"Ваш chat id: %s\n"+
			"Укажите его в настройках занятия, чтобы получать уведомления.\n\n"+
			"/help - Справка",
		name, chatIDText(user),
	)
}

func chatIDText(user *models.User) string {
	if user == nil {
		return "неизвестен"
	}
	return fmt.Sprintf("%d", user.ID)
}

// HandleHelp обрабатывает команду /help
func (h *Handlers) HandleHelp(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	h.sendMessage(ctx, b, update.Message.Chat.ID, helpText)
}

// HandleSlots обрабатывает /slots <offering_id> <YYYY-MM-DD>
func (h *Handlers) HandleSlots(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	h.sendMessage(ctx, b, update.Message.Chat.ID, h.slotsReply(ctx, update.Message.Text))
}

func (h *Handlers) slotsReply(ctx context.Context, text string) string {
	offeringID, date, err := ParseSlotsArgs(text)
	if err != nil {
		return "❌ Формат: /slots <id занятия> <ГГГГ-ММ-ДД>"
	}

	slots, err := h.slots.DaySlots(ctx, offeringID, date)
	if err != nil {
		h.logger.Error("Failed to load slots",
			zap.Int64("offering_id", offeringID),
			zap.Time("date", date),
			zap.Error(err),
		)
		return common.UserMessage(err)
	}

	return FormatSlots(date, slots)
}

func (h *Handlers) sendMessage(ctx context.Context, b common.Bot, chatID int64, text string) {
	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	if err != nil {
		h.logger.Error("Failed to send message",
			zap.Int64("chat_id", chatID),
			zap.Error(err),
		)
	}
}
