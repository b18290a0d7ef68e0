// Package errors provides sentinel errors and error types for the explosive
// chess engine. It defines the engine's error taxonomy and structured error
// types that preserve context while allowing inspection with errors.Is() and
// errors.As().
package errors

import (
	"errors"
	"fmt"
	"strings"

	pkgerrors "github.com/pkg/errors"
)

// Sentinel errors for the engine's error taxonomy.
// Use these with errors.Is() to check for specific error types.
var (
	// ErrInvalidSquare indicates a coordinate out of range or malformed notation.
	ErrInvalidSquare = errors.New("invalid square")

	// ErrNoPieceAtSource indicates a move from an empty square.
	ErrNoPieceAtSource = errors.New("no piece at source square")

	// ErrWrongSideToMove indicates a move of the opponent's piece.
	ErrWrongSideToMove = errors.New("wrong side to move")

	// ErrIllegalMove indicates a move that violates movement or
	// self-check/self-explosion rules.
	ErrIllegalMove = errors.New("illegal move")

	// ErrInvalidPromotion indicates a bad or missing promotion kind.
	ErrInvalidPromotion = errors.New("invalid promotion")

	// ErrNoLegalMoves indicates a search invoked on a position without moves.
	ErrNoLegalMoves = errors.New("no legal moves")

	// ErrInvalidFEN indicates a malformed snapshot string.
	ErrInvalidFEN = errors.New("invalid FEN string")

	// ErrInvalidPosition indicates a structurally impossible board.
	ErrInvalidPosition = errors.New("invalid position")

	// ErrGameOver indicates a move submitted after the game terminated.
	ErrGameOver = errors.New("game is over")

	// ErrPromotionPending indicates a move submitted while a promotion
	// choice is outstanding.
	ErrPromotionPending = errors.New("promotion choice pending")

	// ErrNoPromotionPending indicates a promotion choice with nothing to promote.
	ErrNoPromotionPending = errors.New("no promotion pending")

	// ErrStaleSearch indicates an AI result discarded because the board
	// changed while the search was running.
	ErrStaleSearch = errors.New("search result is stale")

	// ErrInvalidConfig indicates invalid configuration values.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrUnknownGame indicates a session id that does not exist.
	ErrUnknownGame = errors.New("unknown game")

	// ErrPoolStopped indicates work submitted to a stopped search pool.
	ErrPoolStopped = errors.New("search pool stopped")

	// ErrSessionLimit indicates a new game refused because too many are open.
	ErrSessionLimit = errors.New("too many open games")
)

// codes maps sentinels to the names reported to callers.
var codes = []struct {
	err  error
	code string
}{
	{ErrInvalidSquare, "InvalidSquare"},
	{ErrNoPieceAtSource, "NoPieceAtSource"},
	{ErrWrongSideToMove, "WrongSideToMove"},
	{ErrIllegalMove, "IllegalMove"},
	{ErrInvalidPromotion, "InvalidPromotion"},
	{ErrNoLegalMoves, "NoLegalMoves"},
	{ErrInvalidFEN, "InvalidFEN"},
	{ErrInvalidPosition, "InvalidPosition"},
	{ErrGameOver, "GameOver"},
	{ErrPromotionPending, "PromotionPending"},
	{ErrNoPromotionPending, "NoPromotionPending"},
	{ErrStaleSearch, "StaleSearch"},
	{ErrInvalidConfig, "InvalidConfig"},
	{ErrUnknownGame, "UnknownGame"},
	{ErrPoolStopped, "Unavailable"},
	{ErrSessionLimit, "Unavailable"},
}

// Code returns the taxonomy name for err, or "Internal" when err does not
// wrap a known sentinel. Code(nil) is "".
func Code(err error) string {
	if err == nil {
		return ""
	}
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return "Internal"
}

// MoveError wraps errors with move context: the squares involved, the
// promotion text supplied and the ply at which the move was attempted.
// It implements the error interface and supports unwrapping via errors.Is()
// and errors.As().
type MoveError struct {
	Err       error  // The underlying error
	From      string // Source square in algebraic notation (if known)
	To        string // Destination square in algebraic notation (if known)
	Promotion string // Promotion text supplied by the caller (if any)
	Ply       int    // Ply number where the error occurred (0 if not applicable)
}

// Error returns a formatted error message including all available context.
func (e *MoveError) Error() string {
	var parts []string

	if e.From != "" || e.To != "" {
		move := fmt.Sprintf("move %s-%s", orDash(e.From), orDash(e.To))
		if e.Promotion != "" {
			move += "=" + e.Promotion
		}
		parts = append(parts, move)
	}

	if e.Ply > 0 {
		parts = append(parts, fmt.Sprintf("ply %d", e.Ply))
	}

	context := strings.Join(parts, ", ")
	switch {
	case e.Err != nil && context != "":
		return fmt.Sprintf("%s: %v", context, e.Err)
	case e.Err != nil:
		return e.Err.Error()
	case context != "":
		return context
	}
	return "move error"
}

// Unwrap returns the underlying error, enabling errors.Is() and errors.As()
// to work through the MoveError wrapper.
func (e *MoveError) Unwrap() error {
	return e.Err
}

func orDash(s string) string {
	if s == "" {
		return "?"
	}
	return s
}

// Wrap adds context to an error while preserving the underlying error
// for inspection with errors.Is() and errors.As().
func Wrap(err error, context string) error {
	if err == nil {
		return nil
	}
	return pkgerrors.WithMessage(err, context)
}

// Wrapf adds formatted context to an error while preserving the underlying
// error for inspection with errors.Is() and errors.As().
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return pkgerrors.WithMessagef(err, format, args...)
}

// WithStack annotates err with the call stack at the point it was called.
// Used for invariant violations that should never reach a caller.
func WithStack(err error) error {
	return pkgerrors.WithStack(err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool { return errors.Is(err, target) }

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool { return errors.As(err, target) }
