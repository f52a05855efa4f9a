package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"ocr-lens/api/internal/capture"
)

const (
	cbToggleView = "view_toggle"
	cbReset      = "reset"

	commandsText = "Commands: /view, /reset, /engine, /help"
	helpText     = "Send a photo and I will find the text in it.\n" + commandsText
)

// resultKeyboard offers the other view and a reset.
func resultKeyboard(current capture.View) tgbotapi.InlineKeyboardMarkup {
	label := "Show text"
	if current == capture.ViewText {
		label = "Show boxes"
	}
	return tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(label, cbToggleView),
		tgbotapi.NewInlineKeyboardButtonData("New photo", cbReset),
	))
}
