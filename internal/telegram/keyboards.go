package telegram

import (
	"fmt"

	"github.com/saharsb963/chess/internal/rules"
	"github.com/saharsb963/chess/internal/services"
)

const (
	menuChallenge   = "⚔️ New challenge"
	menuPlayBot     = "🤖 Play vs bot"
	menuLeaderboard = "🏆 Leaderboard"
	menuMyScore     = "📊 My score"
	menuHelp        = "❓ Help"
)

func MainMenuKeyboard() *ReplyKeyboardMarkup {
	return &ReplyKeyboardMarkup{
		Keyboard: [][]KeyboardButton{
			{{Text: menuChallenge}, {Text: menuPlayBot}},
			{{Text: menuLeaderboard}, {Text: menuMyScore}},
			{{Text: menuHelp}},
		},
		ResizeKeyboard: true,
	}
}

func WelcomeKeyboard() *InlineKeyboardMarkup {
	return &InlineKeyboardMarkup{
		InlineKeyboard: [][]InlineKeyboardButton{
			{{Text: "🤖 Play vs bot", CallbackData: "mode_bot"}},
		},
	}
}

func SubscribeKeyboard(channelURL string) *InlineKeyboardMarkup {
	return &InlineKeyboardMarkup{
		InlineKeyboard: [][]InlineKeyboardButton{
			{{Text: "🔔 Join the channel", URL: channelURL}},
			{{Text: "✅ Check subscription", CallbackData: "check_sub"}},
		},
	}
}

func ChallengeKeyboard(challengeID string) *InlineKeyboardMarkup {
	return &InlineKeyboardMarkup{
		InlineKeyboard: [][]InlineKeyboardButton{
			{{Text: "🎮 Accept the challenge!", CallbackData: "join_" + challengeID}},
		},
	}
}

// BoardKeyboard renders the 8x8 grid as inline buttons, row 0 at the top
// (rank 8). Every button taps back as cell_<gameID>_<row>_<col>.
func BoardKeyboard(view *services.GameView) *InlineKeyboardMarkup {
	rows := make([][]InlineKeyboardButton, 0, 8)
	for row := 0; row < 8; row++ {
		buttons := make([]InlineKeyboardButton, 0, 8)
		for col := 0; col < 8; col++ {
			cell := rules.Cell{Row: row, Col: col}
			buttons = append(buttons, InlineKeyboardButton{
				Text:         cellGlyph(view, cell),
				CallbackData: fmt.Sprintf("cell_%s_%d_%d", view.ID, row, col),
			})
		}
		rows = append(rows, buttons)
	}
	return &InlineKeyboardMarkup{InlineKeyboard: rows}
}
