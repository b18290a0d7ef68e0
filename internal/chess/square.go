package chess

import (
	"fmt"
	"strings"

	"golang.org/x/exp/constraints"

	"github.com/lgbarn/explosive-chess-go/internal/errors"
)

// Square indexes the board as rank*8+file. Rank 0 is algebraic rank '1'
// (White's home rank) and file 0 is the a-file.
type Square int8

// NoSquare marks an absent square.
const NoSquare Square = -1

// Coordinate characters for algebraic notation.
const (
	FileBase = 'a'
	RankBase = '1'
)

// SquareAt returns the square at rank/file, or false when off the board.
func SquareAt(rank, file int) (Square, bool) {
	if rank < 0 || rank >= BoardSize || file < 0 || file >= BoardSize {
		return NoSquare, false
	}
	return Square(rank*BoardSize + file), true
}

// MustSquare parses algebraic notation and panics on malformed input.
// Intended for fixtures and tables of constant squares.
func MustSquare(name string) Square {
	sq, err := ParseSquare(name)
	if err != nil {
		panic(err)
	}
	return sq
}

// ParseSquare parses algebraic notation such as "e4".
func ParseSquare(name string) (Square, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if len(name) != 2 {
		return NoSquare, fmt.Errorf("square %q: %w", name, errors.ErrInvalidSquare)
	}
	file := int(name[0]) - FileBase
	rank := int(name[1]) - RankBase
	sq, ok := SquareAt(rank, file)
	if !ok {
		return NoSquare, fmt.Errorf("square %q: %w", name, errors.ErrInvalidSquare)
	}
	return sq, nil
}

// Valid reports whether s lies on the board.
func (s Square) Valid() bool {
	return s >= 0 && s < NumSquares
}

// Rank returns the 0-based rank of s.
func (s Square) Rank() int {
	return int(s) / BoardSize
}

// File returns the 0-based file of s.
func (s Square) File() int {
	return int(s) % BoardSize
}

// String returns the algebraic name of s, e.g. "e4".
func (s Square) String() string {
	if !s.Valid() {
		return "-"
	}
	return string([]byte{byte(FileBase + s.File()), byte(RankBase + s.Rank())})
}

// Offset returns the square dr ranks and df files away from s.
func (s Square) Offset(dr, df int) (Square, bool) {
	return SquareAt(s.Rank()+dr, s.File()+df)
}

// Chebyshev returns max(|Δrank|, |Δfile|) between a and b.
func Chebyshev(a, b Square) int {
	return max(abs(a.Rank()-b.Rank()), abs(a.File()-b.File()))
}

// Adjacent reports whether b is within the explosion radius of a.
func Adjacent(a, b Square) bool {
	return Chebyshev(a, b) <= 1
}

func abs[T constraints.Signed](x T) T {
	if x < 0 {
		return -x
	}
	return x
}

// Neighbourhood returns center and every on-board square around it,
// in rank-then-file order.
func Neighbourhood(center Square) []Square {
	squares := make([]Square, 0, 9)
	for dr := -1; dr <= 1; dr++ {
		for df := -1; df <= 1; df++ {
			if sq, ok := center.Offset(dr, df); ok {
				squares = append(squares, sq)
			}
		}
	}
	return squares
}
