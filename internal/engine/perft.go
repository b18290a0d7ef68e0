package engine

import "github.com/lgbarn/explosive-chess-go/internal/chess"

// Perft counts the leaf nodes of the legal move tree to the given depth.
// Boards that have lost a king have no children.
func Perft(board chess.Board, depth int) uint64 {
	if depth <= 0 {
		return 1
	}
	moves := AllLegalMoves(board)
	if depth == 1 {
		return uint64(len(moves))
	}
	var nodes uint64
	for _, m := range moves {
		next, _ := Apply(board, m)
		nodes += Perft(next, depth-1)
	}
	return nodes
}
