package common

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// Bot часть API бота, которой пользуются обработчики. *bot.Bot её реализует.
type Bot interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
	EditMessageText(ctx context.Context, params *bot.EditMessageTextParams) (*models.Message, error)
	AnswerCallbackQuery(ctx context.Context, params *bot.AnswerCallbackQueryParams) (bool, error)
}

// AnswerCallback отвечает на callback query (без alert)
func AnswerCallback(ctx context.Context, b Bot, callbackID string, text string) error {
	_, err := b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: callbackID,
		Text:            text,
	})
	return err
}

// AnswerCallbackAlert ответ во всплывающем окне
func AnswerCallbackAlert(ctx context.Context, b Bot, callbackID string, text string) error {
	_, err := b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: callbackID,
		Text:            text,
		ShowAlert:       true,
	})
	return err
}

func GetMessageFromCallback(callback *models.CallbackQuery) *models.Message {
	return callback.Message.Message
}
