package chess

// Board is an immutable-by-convention snapshot of a position. It is a plain
// value: assigning or passing a Board copies it, and every helper that
// "changes" a board returns a new value.
type Board struct {
	// Squares holds the placement, indexed by Square.
	Squares [NumSquares]Piece

	// Who has the next move.
	ToMove Colour

	// The half-move clock since the last pawn move or capture.
	HalfmoveClock uint

	// The current full move number, starting at 1.
	MoveNumber uint
}

// backRank is the standard piece order from the a-file.
var backRank = [BoardSize]PieceKind{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

// NewBoard creates an empty board with White to move.
func NewBoard() Board {
	return Board{
		ToMove:     White,
		MoveNumber: 1,
	}
}

// InitialBoard returns the standard starting position.
func InitialBoard() Board {
	b := NewBoard()
	for file := 0; file < BoardSize; file++ {
		b.Squares[file] = W(backRank[file])
		b.Squares[BoardSize+file] = W(Pawn)
		b.Squares[6*BoardSize+file] = B(Pawn)
		b.Squares[7*BoardSize+file] = B(backRank[file])
	}
	return b
}

// Get returns the piece on sq, or NoPiece when sq is off the board.
func (b Board) Get(sq Square) Piece {
	if !sq.Valid() {
		return NoPiece
	}
	return b.Squares[sq]
}

// With returns a copy of b with p placed on sq.
func (b Board) With(sq Square, p Piece) Board {
	if sq.Valid() {
		b.Squares[sq] = p
	}
	return b
}

// Without returns a copy of b with sq emptied.
func (b Board) Without(sq Square) Board {
	return b.With(sq, NoPiece)
}

// KingSquare locates the king of colour c.
func (b Board) KingSquare(c Colour) (Square, bool) {
	king := Piece{Kind: King, Colour: c}
	for sq := Square(0); sq < NumSquares; sq++ {
		if b.Squares[sq] == king {
			return sq, true
		}
	}
	return NoSquare, false
}

// HasKing reports whether colour c still has a king.
func (b Board) HasKing(c Colour) bool {
	_, ok := b.KingSquare(c)
	return ok
}

// Occupied returns every square holding a piece of colour c, ranks then files.
func (b Board) Occupied(c Colour) []Square {
	squares := make([]Square, 0, 16)
	for sq := Square(0); sq < NumSquares; sq++ {
		p := b.Squares[sq]
		if !p.IsEmpty() && p.Colour == c {
			squares = append(squares, sq)
		}
	}
	return squares
}

// Count returns how many pieces matching p are on the board.
func (b Board) Count(p Piece) int {
	n := 0
	for _, q := range b.Squares {
		if q == p {
			n++
		}
	}
	return n
}

// Equal reports whether two boards are identical in every field.
func (b Board) Equal(other Board) bool {
	return b == other
}
