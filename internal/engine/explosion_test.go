package engine

import (
	"testing"

	"github.com/lgbarn/explosive-chess-go/internal/chess"
	"github.com/lgbarn/explosive-chess-go/internal/testutil"
)

func TestResolveExplosion(t *testing.T) {
	// The white queen has just landed on d4.
	board := testutil.PlaceBoard(chess.Black, map[string]chess.Piece{
		"d4": chess.W(chess.Queen),
		"e5": chess.B(chess.Pawn),
		"c3": chess.W(chess.Pawn),
		"d5": chess.B(chess.Rook),
		"e4": chess.W(chess.Knight),
		"c5": chess.B(chess.King),
		"a1": chess.W(chess.King),
		"d6": chess.B(chess.Bishop),
	})

	after, result := ResolveExplosion(board, chess.MustSquare("d4"))

	testutil.AssertEqual(t, testutil.SquareNames(result.Cleared), []string{"d4", "e4", "c5", "d5"})
	testutil.AssertEqual(t, result.Destroyed, []chess.Piece{
		chess.W(chess.Queen), chess.W(chess.Knight), chess.B(chess.King), chess.B(chess.Rook),
	})
	testutil.AssertEqual(t, result.KingDestroyed, [2]bool{false, true})
	testutil.AssertTrue(t, result.KingLost(chess.Black), "black king should be lost")
	testutil.AssertFalse(t, result.KingLost(chess.White), "white king should survive")

	// Pawns in the radius and pieces outside it are untouched.
	for _, name := range []string{"c3", "e5", "a1", "d6"} {
		sq := chess.MustSquare(name)
		if after.Get(sq) != board.Get(sq) {
			t.Errorf("%s = %v after blast, want %v", name, after.Get(sq), board.Get(sq))
		}
	}
	testutil.AssertEqual(t, after.ToMove, board.ToMove)
}

func TestResolveExplosion_CenterPawnIsCleared(t *testing.T) {
	board := testutil.PlaceBoard(chess.Black, map[string]chess.Piece{
		"d4": chess.W(chess.Pawn),
		"d3": chess.W(chess.Pawn),
		"a1": chess.W(chess.King),
		"h8": chess.B(chess.King),
	})

	after, result := ResolveExplosion(board, chess.MustSquare("d4"))

	testutil.AssertEqual(t, testutil.SquareNames(result.Cleared), []string{"d4"})
	testutil.AssertTrue(t, after.Get(chess.MustSquare("d4")).IsEmpty(), "center pawn should vanish")
	testutil.AssertEqual(t, after.Get(chess.MustSquare("d3")), chess.W(chess.Pawn))
}

func TestResolveExplosion_NoChainReaction(t *testing.T) {
	// The black queen on e5 is destroyed; the rook next to it on f6 is
	// outside the radius and must survive.
	board := testutil.PlaceBoard(chess.Black, map[string]chess.Piece{
		"d4": chess.W(chess.Rook),
		"e5": chess.B(chess.Queen),
		"f6": chess.B(chess.Rook),
		"a1": chess.W(chess.King),
		"h8": chess.B(chess.King),
	})

	after, result := ResolveExplosion(board, chess.MustSquare("d4"))

	testutil.AssertEqual(t, testutil.SquareNames(result.Cleared), []string{"d4", "e5"})
	testutil.AssertEqual(t, after.Get(chess.MustSquare("f6")), chess.B(chess.Rook))
}

func TestBlastSquares(t *testing.T) {
	tests := []struct {
		center string
		want   []string
	}{
		{"a1", []string{"a1", "b1", "a2", "b2"}},
		{"h8", []string{"g7", "h7", "g8", "h8"}},
		{"e4", []string{"d3", "e3", "f3", "d4", "e4", "f4", "d5", "e5", "f5"}},
		{"a5", []string{"a4", "b4", "a5", "b5", "a6", "b6"}},
	}

	for _, tt := range tests {
		got := testutil.SquareNames(BlastSquares(chess.MustSquare(tt.center)))
		testutil.AssertEqual(t, got, tt.want, "BlastSquares(%s)", tt.center)
	}
}

// Every blast clears exactly the center plus the non-pawn pieces within
// Chebyshev distance 1, for every center on several boards.
func TestResolveExplosion_RadiusProperty(t *testing.T) {
	fens := []string{
		InitialFEN,
		"r1bqkb1r/pppp1ppp/2n2n2/4p3/2B1P3/5N2/PPPP1PPP/RNBQK2R w - - 4 4",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
	}

	for _, fen := range fens {
		board, err := NewBoardFromFEN(fen)
		testutil.AssertNoError(t, err)

		for center := chess.Square(0); center < chess.NumSquares; center++ {
			after, result := ResolveExplosion(board, center)

			var want []chess.Square
			for sq := chess.Square(0); sq < chess.NumSquares; sq++ {
				piece := board.Get(sq)
				inRadius := chess.Chebyshev(sq, center) <= 1
				cleared := !piece.IsEmpty() && inRadius && (sq == center || piece.Kind != chess.Pawn)
				if cleared {
					want = append(want, sq)
					if !after.Get(sq).IsEmpty() {
						t.Errorf("%s: %s should be empty after blast on %s", fen, sq, center)
					}
				} else if after.Get(sq) != piece {
					t.Errorf("%s: %s changed by blast on %s", fen, sq, center)
				}
			}
			testutil.AssertEqual(t, result.Cleared, want, "%s blast on %s", fen, center)
		}
	}
}

func TestExposesKing(t *testing.T) {
	board := testutil.PlaceBoard(chess.White, map[string]chess.Piece{
		"e1": chess.W(chess.King),
		"e8": chess.B(chess.King),
	})

	testutil.AssertTrue(t, ExposesKing(board, chess.MustSquare("d2"), chess.White))
	testutil.AssertTrue(t, ExposesKing(board, chess.MustSquare("e1"), chess.White))
	testutil.AssertFalse(t, ExposesKing(board, chess.MustSquare("e3"), chess.White))
	testutil.AssertFalse(t, ExposesKing(board, chess.MustSquare("d2"), chess.Black))
}
