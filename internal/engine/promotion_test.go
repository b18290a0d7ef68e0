package engine

import (
	"testing"

	"github.com/lgbarn/explosive-chess-go/internal/chess"
	"github.com/lgbarn/explosive-chess-go/internal/errors"
	"github.com/lgbarn/explosive-chess-go/internal/testutil"
)

func TestIsPromotion(t *testing.T) {
	tests := []struct {
		name string
		fen  string
		from string
		to   string
		want bool
	}{
		{"black pawn to first rank", testutil.BlackPromotionFEN, "b2", "b1", true},
		{"white pawn to last rank", testutil.WhitePromotionFEN, "a7", "a8", true},
		{"white capture promotion", testutil.WhitePromotionFEN, "a7", "b8", true},
		{"opening push", InitialFEN, "e2", "e4", false},
		{"king on last rank", testutil.WhitePromotionFEN, "e1", "e2", false},
	}

	for _, tt := range tests {
		board := mustFEN(t, tt.fen)
		m := chess.Move{From: chess.MustSquare(tt.from), To: chess.MustSquare(tt.to)}
		if got := IsPromotion(board, m); got != tt.want {
			t.Errorf("%s: IsPromotion() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestApplyPromotion_BlackQueen(t *testing.T) {
	board := mustFEN(t, testutil.BlackPromotionFEN)
	m := chess.Move{From: chess.MustSquare("b2"), To: chess.MustSquare("b1")}

	promoted, err := ApplyPromotion(MovePiece(board, m), m, chess.Queen)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, promoted.Get(chess.MustSquare("b1")), chess.B(chess.Queen))
	testutil.AssertTrue(t, promoted.Get(chess.MustSquare("b2")).IsEmpty(), "b2 should be empty")
}

func TestApplyPromotion_InvalidKind(t *testing.T) {
	board := mustFEN(t, testutil.BlackPromotionFEN)
	m := chess.Move{From: chess.MustSquare("b2"), To: chess.MustSquare("b1")}
	moved := MovePiece(board, m)

	for _, kind := range []chess.PieceKind{chess.King, chess.Pawn, chess.NoKind} {
		got, err := ApplyPromotion(moved, m, kind)
		testutil.AssertErrorIs(t, err, errors.ErrInvalidPromotion, "promote to %s", kind)
		testutil.AssertEqual(t, got, moved)
	}
}

func TestApplyPromotion_PawnConsumed(t *testing.T) {
	// A capturing promotion whose blast already removed the pawn.
	board := testutil.PlaceBoard(chess.Black, map[string]chess.Piece{
		"e1": chess.W(chess.King),
		"e8": chess.B(chess.King),
	})
	m := chess.Move{From: chess.MustSquare("a7"), To: chess.MustSquare("b8")}

	got, err := ApplyPromotion(board, m, chess.Knight)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, got, board)
}

func TestParsePromotion(t *testing.T) {
	tests := []struct {
		input   string
		want    chess.PieceKind
		wantErr bool
	}{
		{"q", chess.Queen, false},
		{"Q", chess.Queen, false},
		{"queen", chess.Queen, false},
		{" rook ", chess.Rook, false},
		{"b", chess.Bishop, false},
		{"N", chess.Knight, false},
		{"knight", chess.Knight, false},
		{"k", chess.NoKind, true},
		{"pawn", chess.NoKind, true},
		{"", chess.NoKind, true},
	}

	for _, tt := range tests {
		got, err := ParsePromotion(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParsePromotion(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParsePromotion(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
