package rules

import (
	"fmt"
	"strings"

	nchess "github.com/corentings/chess/v2"
)

// LibraryOracle implements Oracle on top of corentings/chess. Each call
// reconstructs a game from the FEN, so the oracle itself holds no state.
type LibraryOracle struct{}

func NewLibraryOracle() *LibraryOracle {
	return &LibraryOracle{}
}

func (o *LibraryOracle) load(fen string) (*nchess.Game, error) {
	if fen == "" {
		return nchess.NewGame(), nil
	}
	option, err := nchess.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("parse fen: %w", err)
	}
	return nchess.NewGame(option), nil
}

func (o *LibraryOracle) StartingPosition() string {
	return nchess.NewGame().FEN()
}

func (o *LibraryOracle) Turn(fen string) (Color, error) {
	game, err := o.load(fen)
	if err != nil {
		return White, err
	}
	return colorOf(game.Position().Turn()), nil
}

func (o *LibraryOracle) PieceAt(fen string, c Cell) (Piece, bool) {
	if !c.Valid() {
		return Piece{}, false
	}
	game, err := o.load(fen)
	if err != nil {
		return Piece{}, false
	}
	p := game.Position().Board().Piece(squareOf(c))
	if p == nchess.NoPiece {
		return Piece{}, false
	}
	return Piece{Kind: kindOf(p.Type()), Owner: colorOf(p.Color())}, true
}

func (o *LibraryOracle) Pieces(fen string) (map[Cell]Piece, error) {
	game, err := o.load(fen)
	if err != nil {
		return nil, err
	}
	out := make(map[Cell]Piece)
	for sq, p := range game.Position().Board().SquareMap() {
		out[cellOf(sq)] = Piece{Kind: kindOf(p.Type()), Owner: colorOf(p.Color())}
	}
	return out, nil
}

func (o *LibraryOracle) LegalMoves(fen string) ([]Move, error) {
	game, err := o.load(fen)
	if err != nil {
		return nil, err
	}
	var moves []Move
	for _, mv := range game.ValidMoves() {
		moves = append(moves, Move{
			From:      cellOf(mv.S1()),
			To:        cellOf(mv.S2()),
			Promotion: kindOf(mv.Promo()),
		})
	}
	return moves, nil
}

func (o *LibraryOracle) LegalTargets(fen string, from Cell) ([]Cell, error) {
	moves, err := o.LegalMoves(fen)
	if err != nil {
		return nil, err
	}
	var targets []Cell
	seen := make(map[Cell]bool)
	for _, mv := range moves {
		if mv.From == from && !seen[mv.To] {
			seen[mv.To] = true
			targets = append(targets, mv.To)
		}
	}
	return targets, nil
}

func (o *LibraryOracle) Apply(fen string, m Move) (string, error) {
	game, err := o.load(fen)
	if err != nil {
		return "", err
	}
	pos := game.Position()
	mv, err := nchess.UCINotation{}.Decode(pos, m.uci())
	if err != nil {
		return "", ErrIllegalMove
	}
	if err := game.Move(mv, nil); err != nil {
		return "", ErrIllegalMove
	}
	return game.FEN(), nil
}

// InCheck reports whether the side to move has its king attacked. The library
// does not expose this directly, so the turn is handed to the other side: the
// king is attacked exactly when some reply of the opponent lands on its square.
func (o *LibraryOracle) InCheck(fen string) bool {
	game, err := o.load(fen)
	if err != nil {
		return false
	}
	pos := game.Position()

	var kingSq nchess.Square
	found := false
	for sq, p := range pos.Board().SquareMap() {
		if p.Type() == nchess.King && p.Color() == pos.Turn() {
			kingSq = sq
			found = true
			break
		}
	}
	if !found {
		return false
	}

	flipped, err := o.load(flipTurn(fen))
	if err != nil {
		return false
	}
	for _, mv := range flipped.ValidMoves() {
		if mv.S2() == kingSq {
			return true
		}
	}
	return false
}

// flipTurn gives the move to the other side and clears the en passant square,
// which only ever applies to the side that just lost the turn.
func flipTurn(fen string) string {
	fields := strings.Fields(fen)
	if len(fields) < 4 {
		return fen
	}
	if fields[1] == "w" {
		fields[1] = "b"
	} else {
		fields[1] = "w"
	}
	fields[3] = "-"
	return strings.Join(fields, " ")
}

func (o *LibraryOracle) Outcome(fen string) Outcome {
	game, err := o.load(fen)
	if err != nil {
		return OutcomeNone
	}
	switch game.Position().Status() {
	case nchess.Checkmate:
		return OutcomeCheckmate
	case nchess.Stalemate:
		return OutcomeStalemate
	}
	if game.Outcome() == nchess.Draw {
		return OutcomeDraw
	}
	return OutcomeNone
}

// squareOf maps a display cell (row 0 = rank 8) to a library square.
func squareOf(c Cell) nchess.Square {
	return nchess.Square((7-c.Row)*8 + c.Col)
}

func cellOf(sq nchess.Square) Cell {
	return Cell{Row: 7 - int(sq.Rank()), Col: int(sq.File())}
}

func colorOf(c nchess.Color) Color {
	if c == nchess.White {
		return White
	}
	return Black
}

func kindOf(t nchess.PieceType) PieceKind {
	switch t {
	case nchess.Pawn:
		return Pawn
	case nchess.Knight:
		return Knight
	case nchess.Bishop:
		return Bishop
	case nchess.Rook:
		return Rook
	case nchess.Queen:
		return Queen
	case nchess.King:
		return King
	}
	return NoKind
}
