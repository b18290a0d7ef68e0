// Package engine implements the explosive chess rules: move generation,
// explosions, check and terminal detection, promotion and snapshot notation.
// Every function takes and returns chess.Board values; nothing here holds state.
package engine

import "github.com/lgbarn/explosive-chess-go/internal/chess"

type offset struct {
	dr int
	df int
}

var (
	knightOffsets = [...]offset{
		{2, 1}, {1, 2}, {-1, 2}, {-2, 1},
		{-2, -1}, {-1, -2}, {1, -2}, {2, -1},
	}
	kingOffsets = [...]offset{
		{1, 0}, {1, 1}, {0, 1}, {-1, 1},
		{-1, 0}, {-1, -1}, {0, -1}, {1, -1},
	}
	diagonalDirs = [...]offset{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
	straightDirs = [...]offset{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
)

// PseudoMoves returns the moves of the piece on sq that obey movement shape
// and blocking rules, without checking king safety. Pawn moves onto the last
// rank are expanded into one move per promotion kind.
func PseudoMoves(board chess.Board, sq chess.Square) []chess.Move {
	piece := board.Get(sq)
	if piece.IsEmpty() {
		return nil
	}

	switch piece.Kind {
	case chess.Pawn:
		return pawnMoves(board, sq, piece.Colour)
	case chess.Knight:
		return stepMoves(board, sq, piece.Colour, knightOffsets[:])
	case chess.King:
		return stepMoves(board, sq, piece.Colour, kingOffsets[:])
	case chess.Bishop:
		return slidingMoves(board, sq, piece.Colour, diagonalDirs[:], nil)
	case chess.Rook:
		return slidingMoves(board, sq, piece.Colour, straightDirs[:], nil)
	case chess.Queen:
		moves := slidingMoves(board, sq, piece.Colour, straightDirs[:], nil)
		return slidingMoves(board, sq, piece.Colour, diagonalDirs[:], moves)
	}
	return nil
}

// pawnMoves generates pushes, the double push from the starting rank and
// diagonal captures. En passant is not part of this variant.
func pawnMoves(board chess.Board, from chess.Square, colour chess.Colour) []chess.Move {
	var moves []chess.Move
	dir := colour.Forward()
	startRank := 1
	if colour == chess.Black {
		startRank = 6
	}

	if one, ok := from.Offset(dir, 0); ok && board.Get(one).IsEmpty() {
		moves = appendPawnMove(moves, from, one, colour, false)
		if from.Rank() == startRank {
			if two, ok := from.Offset(2*dir, 0); ok && board.Get(two).IsEmpty() {
				moves = append(moves, chess.Move{From: from, To: two})
			}
		}
	}

	for _, df := range []int{-1, 1} {
		target, ok := from.Offset(dir, df)
		if !ok {
			continue
		}
		victim := board.Get(target)
		if !victim.IsEmpty() && victim.Colour != colour {
			moves = appendPawnMove(moves, from, target, colour, true)
		}
	}
	return moves
}

// appendPawnMove adds a pawn move, expanding promotions.
func appendPawnMove(moves []chess.Move, from, to chess.Square, colour chess.Colour, capture bool) []chess.Move {
	if to.Rank() != promotionRank(colour) {
		return append(moves, chess.Move{From: from, To: to, Capture: capture})
	}
	for _, kind := range chess.PromotionKinds {
		moves = append(moves, chess.Move{From: from, To: to, Promotion: kind, Capture: capture})
	}
	return moves
}

// stepMoves generates knight and king moves from a fixed offset table.
func stepMoves(board chess.Board, from chess.Square, colour chess.Colour, offsets []offset) []chess.Move {
	var moves []chess.Move
	for _, o := range offsets {
		target, ok := from.Offset(o.dr, o.df)
		if !ok {
			continue
		}
		occupant := board.Get(target)
		if occupant.IsEmpty() {
			moves = append(moves, chess.Move{From: from, To: target})
		} else if occupant.Colour != colour {
			moves = append(moves, chess.Move{From: from, To: target, Capture: true})
		}
	}
	return moves
}

// slidingMoves ray-casts along dirs. A ray stops at the first occupied
// square, which is included only when it holds an enemy piece.
func slidingMoves(board chess.Board, from chess.Square, colour chess.Colour, dirs []offset, moves []chess.Move) []chess.Move {
	for _, d := range dirs {
		target, ok := from.Offset(d.dr, d.df)
		for ok {
			occupant := board.Get(target)
			if !occupant.IsEmpty() {
				if occupant.Colour != colour {
					moves = append(moves, chess.Move{From: from, To: target, Capture: true})
				}
				break // Blocked
			}
			moves = append(moves, chess.Move{From: from, To: target})
			target, ok = target.Offset(d.dr, d.df)
		}
	}
	return moves
}

// promotionRank returns the far rank for pawns of colour c.
func promotionRank(c chess.Colour) int {
	if c == chess.White {
		return chess.BoardSize - 1
	}
	return 0
}
