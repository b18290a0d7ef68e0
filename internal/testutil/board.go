package testutil

import (
	"github.com/lgbarn/explosive-chess-go/internal/chess"
)

// Snapshot fixtures shared by the engine, game and ai tests.
const (
	// Kings only, White to move.
	BareKingsFEN = "4k3/8/8/8/8/8/8/4K3 w - - 0 1"

	// The white queen on d1 can take the black knight on d7, which stands
	// next to the black king on e8.
	QueenTakesKnightFEN = "4k3/3n4/8/8/8/8/8/3QK3 w - - 0 1"

	// Black pawn on b2 one step from promotion on b1.
	BlackPromotionFEN = "4k3/8/8/8/8/8/1p6/4K3 b - - 0 1"

	// White pawn on a7 may promote on a8 by pushing or capture the rook on b8.
	WhitePromotionFEN = "1r2k3/P7/8/8/8/8/8/4K3 w - - 0 1"

	// Black king on h8 is mated by the white queen on g7 guarded by the king.
	CheckmateFEN = "7k/6Q1/5K2/8/8/8/8/8 b - - 0 1"

	// Black king on a8 has no moves and is not in check.
	StalemateFEN = "k7/2Q5/1K6/8/8/8/8/8 b - - 0 1"
)

// PlaceBoard builds a board from algebraic square names, for tests that are
// clearer without a snapshot string. It panics on a malformed square.
func PlaceBoard(toMove chess.Colour, placements map[string]chess.Piece) chess.Board {
	board := chess.NewBoard()
	board.ToMove = toMove
	for name, piece := range placements {
		board = board.With(chess.MustSquare(name), piece)
	}
	return board
}

// Squares converts algebraic names to squares, preserving order.
func Squares(names ...string) []chess.Square {
	squares := make([]chess.Square, 0, len(names))
	for _, name := range names {
		squares = append(squares, chess.MustSquare(name))
	}
	return squares
}

// SquareNames converts squares back to algebraic names.
func SquareNames(squares []chess.Square) []string {
	names := make([]string, 0, len(squares))
	for _, sq := range squares {
		names = append(names, sq.String())
	}
	return names
}
