package telegram

import (
	"fmt"
	"strings"

	"github.com/saharsb963/chess/internal/models"
	"github.com/saharsb963/chess/internal/rules"
	"github.com/saharsb963/chess/internal/services"
)

const (
	moveDot    = "🔵"
	captureDot = "🔴"
	emptyCell  = " "
)

var pieceGlyphs = map[rules.Color]map[rules.PieceKind]string{
	rules.White: {
		rules.Pawn:   "♙",
		rules.Knight: "♘",
		rules.Bishop: "♗",
		rules.Rook:   "♖",
		rules.Queen:  "♕",
		rules.King:   "♔",
	},
	rules.Black: {
		rules.Pawn:   "♟",
		rules.Knight: "♞",
		rules.Bishop: "♝",
		rules.Rook:   "♜",
		rules.Queen:  "♛",
		rules.King:   "♚",
	},
}

func cellGlyph(view *services.GameView, c rules.Cell) string {
	glyph := emptyCell
	piece, occupied := view.Board[c]
	if occupied {
		glyph = pieceGlyphs[piece.Owner][piece.Kind]
	}

	if view.Selection == nil {
		return glyph
	}
	for _, target := range view.Targets {
		if target != c {
			continue
		}
		if occupied && piece.Owner != moverColor(view) {
			return captureDot + glyph
		}
		return moveDot + glyph
	}
	return glyph
}

func moverColor(view *services.GameView) rules.Color {
	if view.Turn == 0 {
		return rules.White
	}
	return rules.Black
}

// statusText lists both participants, whose turn it is, and any
// check/checkmate/draw annotation.
func statusText(view *services.GameView) string {
	white, black := view.Players[0], view.Players[1]
	if view.Mode == models.ModeBot {
		black = "🤖 " + black
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🎮 <b>Players</b>\nWhite: %s\nBlack: %s\n\n", white, black)

	switch view.Outcome {
	case rules.OutcomeCheckmate:
		fmt.Fprintf(&b, "🏆 <b>Checkmate!</b> Winner: %s", view.WinnerName)
	case rules.OutcomeStalemate:
		b.WriteString("🤝 <b>Stalemate — draw!</b>")
	case rules.OutcomeDraw:
		b.WriteString("🤝 <b>Draw!</b>")
	default:
		mover := white
		if view.Turn == 1 {
			mover = black
		}
		fmt.Fprintf(&b, "Turn: <b>%s</b>", mover)
		if view.Selection != nil {
			fmt.Fprintf(&b, "\nSelected: <b>%s</b>", view.Selection.Name())
		}
		if view.InCheck {
			b.WriteString("\n\n🚨 <b>Check!</b>")
		}
	}
	return b.String()
}
