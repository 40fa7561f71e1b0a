package telegram

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"study-buddy/api/internal/tutor"
)

const modeCallbackPrefix = "mode:"

func makeModeKeyboard(current tutor.Mode) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, m := range tutor.Modes {
		label := m.Label()
		if m == current {
			label = "✅ " + label
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, modeCallbackPrefix+string(m)),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// parseModeCallback extracts the mode from "mode:<name>" callback data.
func parseModeCallback(data string) (tutor.Mode, bool) {
	name, ok := strings.CutPrefix(data, modeCallbackPrefix)
	if !ok {
		return "", false
	}
	m := tutor.Mode(strings.ToLower(strings.TrimSpace(name)))
	return m, m.Known()
}

func switchedText(m tutor.Mode) string {
	return "Switched to " + m.Label() + ". How can I help you?"
}

const helpText = `📚 I'm your study buddy. Send me a photo of a textbook page or just ask a question.

Commands:
/mode [chat|study|exam|coding] - how I answer
/lang <language> - reply language (e.g. English, Hindi, Hinglish)
/class <n> - your class
/subject <name> - your subject
/board <name> - your board (CBSE, ICSE, ...)
/engine [gpt|gemini] - language model
/scans - your recent scans
/health - check the bot`
