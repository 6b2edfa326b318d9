package keyboard

import (
	"fmt"

	"github.com/go-telegram/bot/models"
)

// MaxCallbackData лимит Telegram на callback_data в байтах
const MaxCallbackData = 64

// Builder собирает inline клавиатуру и проверяет длину callback data
type Builder struct {
	rows [][]models.InlineKeyboardButton
	err  error
}

func NewBuilder() *Builder {
	return &Builder{}
}

// Row добавляет ряд кнопок; пустые ряды пропускаются
func (b *Builder) Row(buttons ...models.InlineKeyboardButton) *Builder {
	if len(buttons) == 0 {
		return b
	}
	for _, btn := range buttons {
		if len(btn.CallbackData) > MaxCallbackData && b.err == nil {
			b.err = fmt.Errorf("callback data %q exceeds %d bytes", btn.CallbackData, MaxCallbackData)
		}
	}
	b.rows = append(b.rows, buttons)
	return b
}

func Button(text, callbackData string) models.InlineKeyboardButton {
	return models.InlineKeyboardButton{
		Text:         text,
		CallbackData: callbackData,
	}
}

func URLButton(text, url string) models.InlineKeyboardButton {
	return models.InlineKeyboardButton{
		Text: text,
		URL:  url,
	}
}

// Build возвращает клавиатуру или первую ошибку валидации
func (b *Builder) Build() (*models.InlineKeyboardMarkup, error) {
	if b.err != nil {
		return nil, b.err
	}
	return &models.InlineKeyboardMarkup{InlineKeyboard: b.rows}, nil
}
