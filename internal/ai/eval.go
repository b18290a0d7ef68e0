package ai

import (
	"github.com/chewxy/math32"

	"github.com/lgbarn/explosive-chess-go/internal/chess"
	"github.com/lgbarn/explosive-chess-go/internal/engine"
)

// Scores are in centipawns from White's point of view.
const (
	// MateScore is the score of a won terminal position at ply 0.
	MateScore = 1_000_000

	dangerAdjacent = 150
	dangerNear     = 60
	mobilityWeight = 2
)

var pieceValues = [...]int{
	chess.NoKind: 0,
	chess.Pawn:   100,
	chess.Knight: 320,
	chess.Bishop: 330,
	chess.Rook:   500,
	chess.Queen:  900,
	chess.King:   20000,
}

// PieceValue returns the material value of kind.
func PieceValue(kind chess.PieceKind) int {
	if kind < 0 || int(kind) >= len(pieceValues) {
		return 0
	}
	return pieceValues[kind]
}

// Material returns White's material minus Black's.
func Material(board chess.Board) int {
	score := 0
	for _, p := range board.Squares {
		if p.IsEmpty() {
			continue
		}
		score += sign(p.Colour) * PieceValue(p.Kind)
	}
	return score
}

// KingDanger returns the penalty for colour c: every enemy piece one square
// from c's king costs 150 and every enemy piece two squares away costs 60.
func KingDanger(board chess.Board, c chess.Colour) int {
	king, ok := board.KingSquare(c)
	if !ok {
		return 0
	}
	penalty := 0
	for _, sq := range board.Occupied(c.Opposite()) {
		switch chess.Chebyshev(king, sq) {
		case 1:
			penalty += dangerAdjacent
		case 2:
			penalty += dangerNear
		}
	}
	return penalty
}

// Mobility returns White's pseudo-move count minus Black's, weighted.
func Mobility(board chess.Board) int {
	score := 0
	for sq := chess.Square(0); sq < chess.NumSquares; sq++ {
		p := board.Get(sq)
		if p.IsEmpty() {
			continue
		}
		score += sign(p.Colour) * len(engine.PseudoMoves(board, sq))
	}
	return score * mobilityWeight
}

// StaticEval scores a board that still has both kings without searching.
func StaticEval(board chess.Board) int {
	score := Material(board) + Mobility(board)
	score -= KingDanger(board, chess.White)
	score += KingDanger(board, chess.Black)
	return score
}

// terminalScore scores a finished game reached at ply. Faster wins score
// higher and slower losses score higher.
func terminalScore(status chess.Status, ply int) int {
	switch status.Winner {
	case chess.White:
		return MateScore - ply
	case chess.Black:
		return -MateScore + ply
	}
	return 0
}

// BlastGain returns the material swing of m for the side making it: the
// value of enemy pieces the blast destroys (the captured piece included)
// minus the value of the mover's own pieces it destroys (the capturing
// piece included). Quiet moves gain nothing.
func BlastGain(board chess.Board, m chess.Move) int {
	mover := board.Get(m.From).Colour
	_, blast := engine.Apply(board, m)
	return blastGain(blast, mover)
}

func blastGain(blast *chess.ExplosionResult, mover chess.Colour) int {
	if blast == nil {
		return 0
	}
	gain := PieceValue(blast.Captured.Kind)
	for _, p := range blast.Destroyed {
		if p.Colour == mover {
			gain -= PieceValue(p.Kind)
		} else {
			gain += PieceValue(p.Kind)
		}
	}
	return gain
}

// WinProbability maps a White-relative score to White's expected result in
// [0, 1] on the usual logistic curve (400 centipawns per factor of ten).
func WinProbability(score int) float32 {
	s := float32(clamp(score, -4000, 4000))
	return 1 / (1 + math32.Pow(10, -s/400))
}

func sign(c chess.Colour) int {
	if c == chess.Black {
		return -1
	}
	return 1
}
