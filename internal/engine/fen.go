package engine

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/lgbarn/explosive-chess-go/internal/chess"
	"github.com/lgbarn/explosive-chess-go/internal/errors"
)

// InitialFEN is the snapshot of the standard starting position. Castling and
// en passant are not part of the variant, so both fields are always "-".
const InitialFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w - - 0 1"

// NewBoardFromFEN creates a board from a snapshot string. Between two and six
// fields are accepted; the castling and en passant fields are read past and
// ignored.
func NewBoardFromFEN(fen string) (chess.Board, error) {
	parts := strings.Fields(fen)
	if len(parts) < 2 || len(parts) > 6 {
		return chess.Board{}, fmt.Errorf("expected 2-6 fields, got %d: %w", len(parts), errors.ErrInvalidFEN)
	}

	board := chess.NewBoard()
	if err := parsePiecePositions(&board, parts[0]); err != nil {
		return chess.Board{}, err
	}
	if err := parseSideToMove(&board, parts[1]); err != nil {
		return chess.Board{}, err
	}
	if err := parseClocks(&board, parts); err != nil {
		return chess.Board{}, err
	}
	return board, nil
}

// parsePiecePositions parses the piece placement field. Rank 8 comes first.
func parsePiecePositions(board *chess.Board, positions string) error {
	rows := strings.Split(positions, "/")
	if len(rows) != chess.BoardSize {
		return fmt.Errorf("expected %d ranks, got %d: %w", chess.BoardSize, len(rows), errors.ErrInvalidFEN)
	}

	for i, row := range rows {
		rank := chess.BoardSize - 1 - i
		file := 0
		for j := 0; j < len(row); j++ {
			c := row[j]
			if c >= '1' && c <= '8' {
				file += int(c - '0')
				continue
			}
			piece, ok := chess.PieceFromLetter(c)
			if !ok {
				return fmt.Errorf("invalid piece character %q: %w", c, errors.ErrInvalidFEN)
			}
			sq, ok := chess.SquareAt(rank, file)
			if !ok {
				return fmt.Errorf("rank %d overflows: %w", rank+1, errors.ErrInvalidFEN)
			}
			board.Squares[sq] = piece
			file++
		}
		if file != chess.BoardSize {
			return fmt.Errorf("rank %d has %d files: %w", rank+1, file, errors.ErrInvalidFEN)
		}
	}
	return nil
}

func parseSideToMove(board *chess.Board, field string) error {
	switch field {
	case "w":
		board.ToMove = chess.White
	case "b":
		board.ToMove = chess.Black
	default:
		return fmt.Errorf("invalid side to move %q: %w", field, errors.ErrInvalidFEN)
	}
	return nil
}

// parseClocks parses the halfmove clock and fullmove number fields when present.
func parseClocks(board *chess.Board, parts []string) error {
	if len(parts) >= 5 {
		n, err := strconv.ParseUint(parts[4], 10, 32)
		if err != nil {
			return fmt.Errorf("halfmove clock %q: %w", parts[4], errors.ErrInvalidFEN)
		}
		board.HalfmoveClock = uint(n)
	}
	if len(parts) >= 6 {
		n, err := strconv.ParseUint(parts[5], 10, 32)
		if err != nil || n == 0 {
			return fmt.Errorf("move number %q: %w", parts[5], errors.ErrInvalidFEN)
		}
		board.MoveNumber = uint(n)
	}
	return nil
}

// BoardToFEN converts a board to its six-field snapshot string.
func BoardToFEN(board chess.Board) string {
	side := 'w'
	if board.ToMove == chess.Black {
		side = 'b'
	}
	return fmt.Sprintf("%s %c - - %d %d", Placement(board), side, board.HalfmoveClock, board.MoveNumber)
}

// Placement returns only the piece placement field of the snapshot.
func Placement(board chess.Board) string {
	var sb strings.Builder
	writePiecePositions(&sb, board)
	return sb.String()
}

func writePiecePositions(sb *strings.Builder, board chess.Board) {
	for rank := chess.BoardSize - 1; rank >= 0; rank-- {
		emptyCount := 0
		for file := 0; file < chess.BoardSize; file++ {
			sq, _ := chess.SquareAt(rank, file)
			piece := board.Get(sq)
			if piece.IsEmpty() {
				emptyCount++
				continue
			}
			if emptyCount > 0 {
				sb.WriteByte(byte('0' + emptyCount))
				emptyCount = 0
			}
			sb.WriteByte(piece.Letter())
		}
		if emptyCount > 0 {
			sb.WriteByte(byte('0' + emptyCount))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}
}

// ValidateBoard reports every structural problem with board at once: king
// counts, pawns on the first or last rank, and the side not to move being in
// check. A nil return means moves may be generated on the board.
func ValidateBoard(board chess.Board) error {
	var result *multierror.Error

	for _, c := range []chess.Colour{chess.White, chess.Black} {
		kings := board.Count(chess.Piece{Kind: chess.King, Colour: c})
		switch {
		case kings == 0:
			result = multierror.Append(result, fmt.Errorf("%s has no king: %w", c, errors.ErrInvalidPosition))
		case kings > 1:
			result = multierror.Append(result, fmt.Errorf("%s has %d kings: %w", c, kings, errors.ErrInvalidPosition))
		}
	}

	for file := 0; file < chess.BoardSize; file++ {
		for _, rank := range []int{0, chess.BoardSize - 1} {
			sq, _ := chess.SquareAt(rank, file)
			if board.Get(sq).Kind == chess.Pawn {
				result = multierror.Append(result, fmt.Errorf("pawn on %s: %w", sq, errors.ErrInvalidPosition))
			}
		}
	}

	waiting := board.ToMove.Opposite()
	if IsInCheck(board, waiting) {
		result = multierror.Append(result, fmt.Errorf("%s is in check but not to move: %w", waiting, errors.ErrInvalidPosition))
	}

	return result.ErrorOrNil()
}
