package engine

import "github.com/lgbarn/explosive-chess-go/internal/chess"

// Evaluate computes the status of board from scratch. A missing king takes
// precedence over check and mate detection.
func Evaluate(board chess.Board) chess.Status {
	whiteKing := board.HasKing(chess.White)
	blackKing := board.HasKing(chess.Black)
	switch {
	case !whiteKing && !blackKing:
		return chess.Status{State: chess.KingDestroyed, Winner: chess.NoColour}
	case !whiteKing:
		return chess.Status{State: chess.KingDestroyed, Winner: chess.Black}
	case !blackKing:
		return chess.Status{State: chess.KingDestroyed, Winner: chess.White}
	}

	colour := board.ToMove
	inCheck := IsInCheck(board, colour)
	if !HasLegalMoves(board) {
		if inCheck {
			return chess.Status{State: chess.Checkmate, Winner: colour.Opposite()}
		}
		return chess.Status{State: chess.Stalemate, Winner: chess.NoColour}
	}
	if inCheck {
		return chess.Status{State: chess.Check, Winner: chess.NoColour}
	}
	return chess.Status{State: chess.InProgress, Winner: chess.NoColour}
}

// IsCheckmate returns true if the position is checkmate for the side to move.
func IsCheckmate(board chess.Board) bool {
	return Evaluate(board).State == chess.Checkmate
}

// IsStalemate returns true if the position is stalemate for the side to move.
func IsStalemate(board chess.Board) bool {
	return Evaluate(board).State == chess.Stalemate
}
