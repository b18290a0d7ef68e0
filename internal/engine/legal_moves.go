package engine

import "github.com/lgbarn/explosive-chess-go/internal/chess"

// LegalMoves returns the legal moves of the piece on sq. Only pieces of the
// side to move have legal moves, and a board missing either king has none.
func LegalMoves(board chess.Board, sq chess.Square) []chess.Move {
	piece := board.Get(sq)
	if piece.IsEmpty() || piece.Colour != board.ToMove || !bothKingsPresent(board) {
		return nil
	}
	return filterLegal(board, PseudoMoves(board, sq), nil)
}

// AllLegalMoves returns every legal move of the side to move, ordered by
// origin square (ranks then files) and then by generation order.
func AllLegalMoves(board chess.Board) []chess.Move {
	if !bothKingsPresent(board) {
		return nil
	}
	var moves []chess.Move
	for _, sq := range board.Occupied(board.ToMove) {
		moves = filterLegal(board, PseudoMoves(board, sq), moves)
	}
	return moves
}

// LegalDestinations returns the distinct destination squares reachable from
// sq, in generation order. Promotion variants collapse to one square.
func LegalDestinations(board chess.Board, sq chess.Square) []chess.Square {
	var squares []chess.Square
	seen := make(map[chess.Square]bool)
	for _, m := range LegalMoves(board, sq) {
		if !seen[m.To] {
			seen[m.To] = true
			squares = append(squares, m.To)
		}
	}
	return squares
}

// HasLegalMoves returns true if the side to move has at least one legal move.
func HasLegalMoves(board chess.Board) bool {
	if !bothKingsPresent(board) {
		return false
	}
	for _, sq := range board.Occupied(board.ToMove) {
		for _, m := range PseudoMoves(board, sq) {
			if tryMove(board, m) {
				return true
			}
		}
	}
	return false
}

// IsLegal reports whether m is legal on board.
func IsLegal(board chess.Board, m chess.Move) bool {
	for _, legal := range LegalMoves(board, m.From) {
		if legal == m {
			return true
		}
	}
	return false
}

func filterLegal(board chess.Board, pseudo, moves []chess.Move) []chess.Move {
	for _, m := range pseudo {
		if tryMove(board, m) {
			moves = append(moves, m)
		}
	}
	return moves
}

// tryMove runs the full move-and-explosion pipeline on a copy of the board
// and reports whether the mover's king survives and is not left in check.
func tryMove(board chess.Board, m chess.Move) bool {
	mover := board.Get(m.From).Colour
	next, blast := Apply(board, m)
	if blast.KingLost(mover) || !next.HasKing(mover) {
		return false
	}
	return !IsInCheck(next, mover)
}

func bothKingsPresent(board chess.Board) bool {
	return board.HasKing(chess.White) && board.HasKing(chess.Black)
}
