package chess

// Move represents a single move. A Move is only meaningful relative to the
// Board it was generated from.
type Move struct {
	// Source square.
	From Square

	// Destination square.
	To Square

	// The kind promoted to (NoKind if not a promotion or not yet chosen).
	Promotion PieceKind

	// Whether the destination held an enemy piece when the move was generated.
	Capture bool
}

// String returns the move in UCI form, e.g. "e2e4" or "e7e8q".
func (m Move) String() string {
	s := m.From.String() + m.To.String()
	if m.Promotion != NoKind {
		s += string(m.Promotion.Letter() + ('a' - 'A'))
	}
	return s
}

// IsCapture returns true if this move is a capture and therefore detonates.
func (m Move) IsCapture() bool {
	return m.Capture
}

// SameSquares reports whether two moves share origin and destination,
// ignoring any promotion choice.
func (m Move) SameSquares(other Move) bool {
	return m.From == other.From && m.To == other.To
}

// ExplosionResult describes the outcome of one blast.
type ExplosionResult struct {
	// Center is the capture destination.
	Center Square

	// Captured is the piece that stood on Center before the capture.
	Captured Piece

	// Cleared lists every square emptied by the blast, ranks then files.
	Cleared []Square

	// Destroyed lists the pieces removed, aligned with Cleared.
	Destroyed []Piece

	// KingDestroyed is indexed by Colour.Index().
	KingDestroyed [2]bool
}

// KingLost reports whether colour c lost its king in the blast.
func (r *ExplosionResult) KingLost(c Colour) bool {
	if r == nil {
		return false
	}
	return r.KingDestroyed[c.Index()]
}

// GameStatus is the lifecycle state of a position.
type GameStatus int

const (
	InProgress GameStatus = iota
	Check
	Checkmate
	Stalemate
	KingDestroyed
)

// String returns the wire name of the status.
func (s GameStatus) String() string {
	switch s {
	case InProgress:
		return "in-progress"
	case Check:
		return "check"
	case Checkmate:
		return "checkmate"
	case Stalemate:
		return "stalemate"
	case KingDestroyed:
		return "king-destroyed"
	default:
		return "unknown"
	}
}

// IsTerminal reports whether no further moves are accepted.
func (s GameStatus) IsTerminal() bool {
	return s == Checkmate || s == Stalemate || s == KingDestroyed
}

// Status pairs a GameStatus with the winner, if any.
type Status struct {
	State  GameStatus
	Winner Colour
}

// Result returns the PGN-style result string for the status.
func (s Status) Result() string {
	if !s.State.IsTerminal() {
		return "*"
	}
	switch s.Winner {
	case White:
		return "1-0"
	case Black:
		return "0-1"
	default:
		return "1/2-1/2"
	}
}
