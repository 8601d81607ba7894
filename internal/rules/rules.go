// Package rules defines the board types and the oracle interface the session
// engine delegates move legality and terminal detection to. Positions travel
// through the rest of the system as FEN strings.
package rules

import (
	"errors"
	"fmt"
)

var ErrIllegalMove = errors.New("illegal move")

type Color int

const (
	White Color = iota
	Black
)

func (c Color) Other() Color {
	if c == White {
		return Black
	}
	return White
}

func (c Color) String() string {
	if c == White {
		return "white"
	}
	return "black"
}

type PieceKind int

const (
	NoKind PieceKind = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

type Piece struct {
	Kind  PieceKind
	Owner Color
}

// Cell addresses a board square as the display grid sees it: row 0 is rank 8
// (the top of the rendered board), col 0 is file a.
type Cell struct {
	Row int
	Col int
}

func (c Cell) Valid() bool {
	return c.Row >= 0 && c.Row < 8 && c.Col >= 0 && c.Col < 8
}

// Name returns the algebraic square name, e.g. "e4".
func (c Cell) Name() string {
	return fmt.Sprintf("%c%d", 'a'+byte(c.Col), 8-c.Row)
}

type Move struct {
	From      Cell
	To        Cell
	Promotion PieceKind // NoKind unless a pawn promotes
}

// uci encodes the move in UCI notation, e.g. "e2e4" or "e7e8q".
func (m Move) uci() string {
	s := m.From.Name() + m.To.Name()
	switch m.Promotion {
	case Queen:
		s += "q"
	case Rook:
		s += "r"
	case Bishop:
		s += "b"
	case Knight:
		s += "n"
	}
	return s
}

type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeCheckmate
	OutcomeStalemate
	OutcomeDraw // drawn terminal other than stalemate
)

// Oracle answers position questions for the session engine. Implementations
// must be safe for concurrent use; every method reparses the given FEN.
type Oracle interface {
	StartingPosition() string
	Turn(fen string) (Color, error)
	PieceAt(fen string, c Cell) (Piece, bool)
	Pieces(fen string) (map[Cell]Piece, error)
	LegalMoves(fen string) ([]Move, error)
	LegalTargets(fen string, from Cell) ([]Cell, error)
	// Apply validates the move against the position's legal-move set and
	// returns the resulting FEN, or ErrIllegalMove.
	Apply(fen string, m Move) (string, error)
	InCheck(fen string) bool
	Outcome(fen string) Outcome
}
