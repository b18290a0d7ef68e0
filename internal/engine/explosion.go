package engine

import "github.com/lgbarn/explosive-chess-go/internal/chess"

// BlastSquares returns the explosion radius around center: center itself
// and every on-board square at Chebyshev distance 1, ranks then files.
func BlastSquares(center chess.Square) []chess.Square {
	return chess.Neighbourhood(center)
}

// ResolveExplosion detonates a capture on center. The centre square is
// always cleared (capturer and captured vanish together, even pawns). Every
// other occupied square in the radius is cleared unless it holds a pawn.
// Kings of either colour are destroyed like any other piece and flagged.
//
// There is exactly one blast: pieces removed here do not detonate.
func ResolveExplosion(board chess.Board, center chess.Square) (chess.Board, chess.ExplosionResult) {
	result := chess.ExplosionResult{Center: center}
	for _, sq := range BlastSquares(center) {
		piece := board.Get(sq)
		if piece.IsEmpty() {
			continue
		}
		if sq != center && piece.Kind == chess.Pawn {
			continue // Pawns are immune
		}
		board = board.Without(sq)
		result.Cleared = append(result.Cleared, sq)
		result.Destroyed = append(result.Destroyed, piece)
		if piece.Kind == chess.King {
			result.KingDestroyed[piece.Colour.Index()] = true
		}
	}
	return board, result
}

// ExposesKing reports whether a capture on center would destroy the king of
// colour c, without resolving the blast.
func ExposesKing(board chess.Board, center chess.Square, c chess.Colour) bool {
	king, ok := board.KingSquare(c)
	return ok && chess.Adjacent(center, king)
}
