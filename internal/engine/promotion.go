package engine

import (
	"fmt"
	"strings"

	"github.com/lgbarn/explosive-chess-go/internal/chess"
	"github.com/lgbarn/explosive-chess-go/internal/errors"
)

// IsPromotion reports whether m moves a pawn onto the far rank from its
// own side: rank 8 for White, rank 1 for Black.
func IsPromotion(board chess.Board, m chess.Move) bool {
	piece := board.Get(m.From)
	return piece.Kind == chess.Pawn && m.To.Valid() && m.To.Rank() == promotionRank(piece.Colour)
}

// ApplyPromotion replaces the pawn that m brought to the far rank with a
// piece of the chosen kind. board is the position after the pawn moved.
// When the square no longer holds that pawn (a capturing promotion whose
// blast already consumed it) the board is returned unchanged.
func ApplyPromotion(board chess.Board, m chess.Move, kind chess.PieceKind) (chess.Board, error) {
	if !kind.IsPromotable() {
		return board, fmt.Errorf("promote to %s: %w", kind, errors.ErrInvalidPromotion)
	}
	pawn := board.Get(m.To)
	if pawn.Kind != chess.Pawn || m.To.Rank() != promotionRank(pawn.Colour) {
		return board, nil
	}
	return board.With(m.To, chess.Piece{Kind: kind, Colour: pawn.Colour}), nil
}

// ParsePromotion parses a promotion choice such as "q", "Q" or "queen".
func ParsePromotion(s string) (chess.PieceKind, error) {
	needle := strings.ToLower(strings.TrimSpace(s))
	var kind chess.PieceKind
	switch needle {
	case "q", "queen":
		kind = chess.Queen
	case "r", "rook":
		kind = chess.Rook
	case "b", "bishop":
		kind = chess.Bishop
	case "n", "knight":
		kind = chess.Knight
	default:
		return chess.NoKind, fmt.Errorf("promotion %q: %w", s, errors.ErrInvalidPromotion)
	}
	return kind, nil
}
