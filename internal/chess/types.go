// Package chess provides the core board model for explosive chess.
package chess

// Colour represents the colour of a piece or player.
type Colour int8

const (
	White Colour = iota
	Black
	// NoColour is used where a colour is absent, e.g. a drawn game's winner.
	NoColour Colour = -1
)

// String returns the string representation of a colour.
func (c Colour) String() string {
	switch c {
	case White:
		return "white"
	case Black:
		return "black"
	default:
		return "none"
	}
}

// Opposite returns the opposite colour.
func (c Colour) Opposite() Colour {
	if c == White {
		return Black
	}
	return White
}

// Index returns 0 for White and 1 for Black, for indexing per-colour arrays.
func (c Colour) Index() int {
	if c == Black {
		return 1
	}
	return 0
}

// Forward returns +1 for White, -1 for Black (pawn direction in ranks).
func (c Colour) Forward() int {
	if c == White {
		return 1
	}
	return -1
}

// PieceKind represents a chess piece type.
type PieceKind int8

const (
	NoKind PieceKind = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

// PromotionKinds lists the kinds a pawn may promote to, strongest first.
var PromotionKinds = [...]PieceKind{Queen, Rook, Bishop, Knight}

// String returns the string representation of a piece kind.
func (k PieceKind) String() string {
	names := []string{"none", "pawn", "knight", "bishop", "rook", "queen", "king"}
	if k >= 0 && int(k) < len(names) {
		return names[k]
	}
	return "unknown"
}

// Letter returns the single letter representation of a kind (uppercase).
func (k PieceKind) Letter() byte {
	letters := []byte{' ', 'P', 'N', 'B', 'R', 'Q', 'K'}
	if k >= 0 && int(k) < len(letters) {
		return letters[k]
	}
	return '?'
}

// IsPromotable reports whether a pawn may promote to k.
func (k PieceKind) IsPromotable() bool {
	switch k {
	case Knight, Bishop, Rook, Queen:
		return true
	default:
		return false
	}
}

// Piece is a (kind, colour) pair. The zero value is an empty square.
type Piece struct {
	Kind   PieceKind
	Colour Colour
}

// NoPiece is the empty square.
var NoPiece = Piece{}

// W creates a white piece.
func W(kind PieceKind) Piece {
	return Piece{Kind: kind, Colour: White}
}

// B creates a black piece.
func B(kind PieceKind) Piece {
	return Piece{Kind: kind, Colour: Black}
}

// IsEmpty reports whether p represents an empty square.
func (p Piece) IsEmpty() bool {
	return p.Kind == NoKind
}

// Letter returns the FEN letter for p: uppercase for White, lowercase for Black.
func (p Piece) Letter() byte {
	if p.IsEmpty() {
		return '.'
	}
	letter := p.Kind.Letter()
	if p.Colour == Black {
		letter += 'a' - 'A'
	}
	return letter
}

// String returns e.g. "white queen".
func (p Piece) String() string {
	if p.IsEmpty() {
		return "empty"
	}
	return p.Colour.String() + " " + p.Kind.String()
}

// KindFromLetter converts a piece letter (either case) to a kind.
func KindFromLetter(c byte) PieceKind {
	switch c {
	case 'K', 'k':
		return King
	case 'Q', 'q':
		return Queen
	case 'R', 'r':
		return Rook
	case 'N', 'n':
		return Knight
	case 'B', 'b':
		return Bishop
	case 'P', 'p':
		return Pawn
	default:
		return NoKind
	}
}

// PieceFromLetter converts a FEN letter to a piece; letter case selects the colour.
func PieceFromLetter(c byte) (Piece, bool) {
	kind := KindFromLetter(c)
	if kind == NoKind {
		return NoPiece, false
	}
	colour := White
	if c >= 'a' && c <= 'z' {
		colour = Black
	}
	return Piece{Kind: kind, Colour: colour}, true
}

// Constants for board dimensions.
const (
	BoardSize  = 8
	NumSquares = BoardSize * BoardSize
)
