package engine

import "github.com/lgbarn/explosive-chess-go/internal/chess"

// IsInCheck returns true if the given colour's king is in check, i.e. some
// pseudo-move of the opponent lands on the king's square. A colour whose king
// has been destroyed is not in check.
func IsInCheck(board chess.Board, colour chess.Colour) bool {
	king, ok := board.KingSquare(colour)
	if !ok {
		return false
	}
	return isSquareAttacked(board, king, colour.Opposite())
}

// isSquareAttacked returns true if some piece of byColour has a pseudo-move
// landing on sq. The scan works outwards from sq, which is equivalent to
// generating every enemy pseudo-move but much cheaper.
func isSquareAttacked(board chess.Board, sq chess.Square, byColour chess.Colour) bool {
	// Check pawn attacks: a pawn attacks diagonally forward, so look one
	// rank behind sq from the attacker's point of view.
	pawn := chess.Piece{Kind: chess.Pawn, Colour: byColour}
	for _, df := range []int{-1, 1} {
		if from, ok := sq.Offset(-byColour.Forward(), df); ok && board.Get(from) == pawn {
			return true
		}
	}

	// Check knight attacks
	knight := chess.Piece{Kind: chess.Knight, Colour: byColour}
	for _, o := range knightOffsets {
		if from, ok := sq.Offset(o.dr, o.df); ok && board.Get(from) == knight {
			return true
		}
	}

	// Check king attacks
	king := chess.Piece{Kind: chess.King, Colour: byColour}
	for _, o := range kingOffsets {
		if from, ok := sq.Offset(o.dr, o.df); ok && board.Get(from) == king {
			return true
		}
	}

	// Check sliding pieces along diagonals and straight lines
	queen := chess.Piece{Kind: chess.Queen, Colour: byColour}
	bishop := chess.Piece{Kind: chess.Bishop, Colour: byColour}
	rook := chess.Piece{Kind: chess.Rook, Colour: byColour}
	if rayHits(board, sq, diagonalDirs[:], bishop, queen) {
		return true
	}
	return rayHits(board, sq, straightDirs[:], rook, queen)
}

// rayHits walks each direction from sq and reports whether the first
// occupied square holds one of the given sliders.
func rayHits(board chess.Board, sq chess.Square, dirs []offset, sliders ...chess.Piece) bool {
	for _, d := range dirs {
		target, ok := sq.Offset(d.dr, d.df)
		for ok {
			piece := board.Get(target)
			if !piece.IsEmpty() {
				for _, s := range sliders {
					if piece == s {
						return true
					}
				}
				break // Blocked
			}
			target, ok = target.Offset(d.dr, d.df)
		}
	}
	return false
}
