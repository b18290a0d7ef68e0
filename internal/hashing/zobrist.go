// Package hashing provides position keys and the evaluation cache used by
// the search.
package hashing

import (
	"math/rand"

	"github.com/lgbarn/explosive-chess-go/internal/chess"
)

// zobristSeed fixes the key tables so hashes are stable across runs.
const zobristSeed = 0x5eed_c4e55

var (
	pieceKeys [chess.NumSquares][2][7]uint64
	sideKey   uint64
)

func init() {
	r := rand.New(rand.NewSource(zobristSeed))
	for sq := range pieceKeys {
		for c := range pieceKeys[sq] {
			for k := range pieceKeys[sq][c] {
				pieceKeys[sq][c][k] = r.Uint64()
			}
		}
	}
	sideKey = r.Uint64()
}

// GenerateZobristHash returns the Zobrist key of board: placement and side
// to move. The clocks are not part of the key.
func GenerateZobristHash(board chess.Board) uint64 {
	var hash uint64
	for sq := chess.Square(0); sq < chess.NumSquares; sq++ {
		p := board.Squares[sq]
		if p.IsEmpty() {
			continue
		}
		hash ^= pieceKeys[sq][p.Colour.Index()][p.Kind]
	}
	if board.ToMove == chess.Black {
		hash ^= sideKey
	}
	return hash
}

// WeakHash is a cheap positional checksum used to detect Zobrist collisions.
func WeakHash(board chess.Board) uint32 {
	var hash uint32
	for sq := chess.Square(0); sq < chess.NumSquares; sq++ {
		p := board.Squares[sq]
		if p.IsEmpty() {
			continue
		}
		code := uint32(p.Kind) + 8*uint32(p.Colour.Index())
		hash = hash*31 + code*uint32(sq+1)
	}
	return hash*2 + uint32(board.ToMove.Index())
}
