package engine

import (
	"fmt"

	"github.com/lgbarn/explosive-chess-go/internal/chess"
	"github.com/lgbarn/explosive-chess-go/internal/errors"
)

// MoveOutcome is the result of a validated, fully applied move.
type MoveOutcome struct {
	Before    chess.Board
	After     chess.Board
	Move      chess.Move
	Mover     chess.Colour
	Explosion *chess.ExplosionResult // nil for quiet moves
	Status    chess.Status
}

// Exploded returns the squares cleared by the move's blast, if any.
func (o MoveOutcome) Exploded() []chess.Square {
	if o.Explosion == nil {
		return nil
	}
	return o.Explosion.Cleared
}

// MovePiece relocates the piece on m.From to m.To and nothing else: no
// promotion, no explosion, side to move unchanged. It yields the
// intermediate board shown while a promotion choice is outstanding.
func MovePiece(board chess.Board, m chess.Move) chess.Board {
	piece := board.Get(m.From)
	return board.Without(m.From).With(m.To, piece)
}

// Apply runs the full pipeline for m on a copy of board: move the piece,
// promote when m carries a kind, detonate when the destination held an
// enemy piece, update the clocks and flip the side to move. Apply trusts m;
// callers validate first (see MakeMove). The explosion result is nil for
// quiet moves.
func Apply(board chess.Board, m chess.Move) (chess.Board, *chess.ExplosionResult) {
	piece := board.Get(m.From)
	target := board.Get(m.To)
	capture := !target.IsEmpty() && target.Colour != piece.Colour

	next := MovePiece(board, m)
	if m.Promotion != chess.NoKind {
		if promoted, err := ApplyPromotion(next, m, m.Promotion); err == nil {
			next = promoted
		}
	}

	var blast *chess.ExplosionResult
	if capture {
		var result chess.ExplosionResult
		next, result = ResolveExplosion(next, m.To)
		result.Captured = target
		if target.Kind == chess.King {
			result.KingDestroyed[target.Colour.Index()] = true
		}
		blast = &result
	}

	if piece.Kind == chess.Pawn || capture {
		next.HalfmoveClock = 0
	} else {
		next.HalfmoveClock++
	}
	if piece.Colour == chess.Black {
		next.MoveNumber++
	}
	next.ToMove = piece.Colour.Opposite()
	return next, blast
}

// MakeMove validates m against the legal moves of board and applies it.
// A promotion move must name its kind; use IsPromotion to detect the need
// for a choice before calling.
func MakeMove(board chess.Board, m chess.Move) (MoveOutcome, error) {
	if err := ValidateMove(board, m); err != nil {
		return MoveOutcome{}, err
	}

	mover := board.ToMove
	m.Capture = isCaptureOn(board, m)
	after, blast := Apply(board, m)
	return MoveOutcome{
		Before:    board,
		After:     after,
		Move:      m,
		Mover:     mover,
		Explosion: blast,
		Status:    Evaluate(after),
	}, nil
}

// ValidateMove checks m against board and returns a MoveError describing the
// first problem found, or nil when m is legal.
func ValidateMove(board chess.Board, m chess.Move) error {
	moveErr := func(err error) error {
		e := &errors.MoveError{Err: err, From: m.From.String(), To: m.To.String()}
		if m.Promotion != chess.NoKind {
			e.Promotion = m.Promotion.String()
		}
		return e
	}

	if !m.From.Valid() || !m.To.Valid() {
		return moveErr(errors.ErrInvalidSquare)
	}
	piece := board.Get(m.From)
	if piece.IsEmpty() {
		return moveErr(errors.ErrNoPieceAtSource)
	}
	if piece.Colour != board.ToMove {
		return moveErr(errors.ErrWrongSideToMove)
	}

	if !HasLegalSquares(board, m) {
		return moveErr(errors.Wrap(errors.ErrIllegalMove, IllegalReason(board, m)))
	}

	promotion := IsPromotion(board, m)
	switch {
	case promotion && m.Promotion == chess.NoKind:
		return moveErr(errors.Wrap(errors.ErrInvalidPromotion, "promotion kind required"))
	case promotion && !m.Promotion.IsPromotable():
		return moveErr(errors.ErrInvalidPromotion)
	case !promotion && m.Promotion != chess.NoKind:
		return moveErr(errors.Wrap(errors.ErrInvalidPromotion, "not a promotion move"))
	}
	return nil
}

// HasLegalSquares reports whether some legal move of board goes from m.From
// to m.To, whatever its promotion kind.
func HasLegalSquares(board chess.Board, m chess.Move) bool {
	for _, legal := range LegalMoves(board, m.From) {
		if legal.SameSquares(m) {
			return true
		}
	}
	return false
}

// IllegalReason explains why m is not in the legal move list of board.
func IllegalReason(board chess.Board, m chess.Move) string {
	piece := board.Get(m.From)
	shaped := false
	for _, pm := range PseudoMoves(board, m.From) {
		if pm.SameSquares(m) {
			shaped = true
			break
		}
	}
	if !shaped {
		return fmt.Sprintf("%s cannot move from %s to %s", piece.Kind, m.From, m.To)
	}
	if !bothKingsPresent(board) {
		return "a king has already been destroyed"
	}
	if isCaptureOn(board, m) && (piece.Kind == chess.King || ExposesKing(board, m.To, piece.Colour)) {
		return "own king would be destroyed by the explosion"
	}
	return "own king would be left in check"
}

func isCaptureOn(board chess.Board, m chess.Move) bool {
	piece := board.Get(m.From)
	target := board.Get(m.To)
	return !target.IsEmpty() && target.Colour != piece.Colour
}
