// Package game drives a game of explosive chess: a turn controller that
// sequences moves and promotion choices, and a session that serialises
// access to a controller and runs AI searches on a worker pool.
package game

import (
	"github.com/lgbarn/explosive-chess-go/internal/chess"
	"github.com/lgbarn/explosive-chess-go/internal/engine"
	"github.com/lgbarn/explosive-chess-go/internal/errors"
	"github.com/lgbarn/explosive-chess-go/internal/hashing"
)

// State is the controller's lifecycle state.
type State int

const (
	AwaitingMove State = iota
	AwaitingPromotionChoice
	Terminal
)

// String returns the wire name of s.
func (s State) String() string {
	switch s {
	case AwaitingMove:
		return "awaiting-move"
	case AwaitingPromotionChoice:
		return "awaiting-promotion"
	case Terminal:
		return "terminal"
	default:
		return "unknown"
	}
}

// MoveRecord is one applied move in the game history.
type MoveRecord struct {
	Ply       int
	Move      chess.Move
	Mover     chess.Colour
	Captured  chess.Piece    // Piece taken on the destination, if any
	Exploded  []chess.Square // Squares cleared by the blast
	Destroyed []chess.Piece  // Pieces removed by the blast, aligned with Exploded
	FEN       string         // Position after the move
	Hash      uint64         // Zobrist key of the position after the move
}

// MoveResult reports the effect of a submitted move or promotion choice.
type MoveResult struct {
	Board            chess.Board
	SideToMove       chess.Colour
	Status           chess.Status
	Exploded         []chess.Square
	Destroyed        []chess.Piece
	Move             chess.Move
	PromotionPending bool
}

// Controller sequences one game. It is not safe for concurrent use; see
// Session.
type Controller struct {
	start   chess.Board
	board   chess.Board
	state   State
	status  chess.Status
	history []MoveRecord

	// While a promotion choice is outstanding, board shows the pawn on the
	// far rank and before holds the position the move was made from.
	pending chess.Move
	before  chess.Board
}

// NewController creates a controller at the standard starting position.
func NewController() *Controller {
	c := &Controller{}
	c.Reset()
	return c
}

// NewControllerFromBoard creates a controller that continues from board.
// The board must pass engine.ValidateBoard.
func NewControllerFromBoard(board chess.Board) (*Controller, error) {
	if err := engine.ValidateBoard(board); err != nil {
		return nil, err
	}
	c := &Controller{}
	c.load(board)
	return c, nil
}

// Reset discards the game and starts again from the standard position.
func (c *Controller) Reset() {
	c.load(chess.InitialBoard())
}

func (c *Controller) load(board chess.Board) {
	c.start = board
	c.board = board
	c.before = chess.Board{}
	c.pending = chess.Move{}
	c.history = nil
	c.status = engine.Evaluate(board)
	c.state = AwaitingMove
	if c.status.State.IsTerminal() {
		c.state = Terminal
	}
}

// Start returns the position the game began from.
func (c *Controller) Start() chess.Board { return c.start }

// Board returns the displayed board.
func (c *Controller) Board() chess.Board { return c.board }

// State returns the lifecycle state.
func (c *Controller) State() State { return c.state }

// Status returns the status of the last completed position.
func (c *Controller) Status() chess.Status { return c.status }

// Ply returns the number of moves applied so far.
func (c *Controller) Ply() int { return len(c.history) }

// PendingMove returns the move awaiting a promotion choice.
func (c *Controller) PendingMove() (chess.Move, bool) {
	return c.pending, c.state == AwaitingPromotionChoice
}

// History returns a copy of the applied moves, oldest first.
func (c *Controller) History() []MoveRecord {
	out := make([]MoveRecord, len(c.history))
	copy(out, c.history)
	return out
}

// LegalMoves returns the legal moves of the piece on from. Nothing may move
// while a promotion choice is outstanding or after the game has ended.
func (c *Controller) LegalMoves(from chess.Square) []chess.Move {
	if c.state != AwaitingMove {
		return nil
	}
	return engine.LegalMoves(c.board, from)
}

// LegalDestinations is LegalMoves collapsed to distinct target squares.
func (c *Controller) LegalDestinations(from chess.Square) []chess.Square {
	if c.state != AwaitingMove {
		return nil
	}
	return engine.LegalDestinations(c.board, from)
}

// Submit plays from-to for the side to move. A promotion move submitted
// without a kind is parked: the pawn is shown on the far rank and the
// controller waits for Choose.
func (c *Controller) Submit(from, to chess.Square, promotion chess.PieceKind) (MoveResult, error) {
	m := chess.Move{From: from, To: to, Promotion: promotion}
	switch c.state {
	case Terminal:
		return MoveResult{}, c.moveError(errors.ErrGameOver, m)
	case AwaitingPromotionChoice:
		return MoveResult{}, c.moveError(errors.ErrPromotionPending, m)
	}

	if promotion == chess.NoKind && engine.IsPromotion(c.board, m) && engine.HasLegalSquares(c.board, m) {
		m.Capture = !c.board.Get(to).IsEmpty()
		c.before = c.board
		c.pending = m
		c.board = engine.MovePiece(c.before, m)
		c.state = AwaitingPromotionChoice
		return MoveResult{
			Board:            c.board,
			SideToMove:       c.before.ToMove,
			Status:           c.status,
			Move:             m,
			PromotionPending: true,
		}, nil
	}

	outcome, err := engine.MakeMove(c.board, m)
	if err != nil {
		return MoveResult{}, c.withPly(err)
	}
	return c.commit(outcome), nil
}

// Choose completes the outstanding promotion with kind. An unpromotable
// kind leaves the choice outstanding.
func (c *Controller) Choose(kind chess.PieceKind) (MoveResult, error) {
	if c.state != AwaitingPromotionChoice {
		return MoveResult{}, c.moveError(errors.ErrNoPromotionPending, chess.Move{From: chess.NoSquare, To: chess.NoSquare})
	}
	m := c.pending
	m.Promotion = kind
	if !kind.IsPromotable() {
		return MoveResult{}, c.moveError(errors.ErrInvalidPromotion, m)
	}

	outcome, err := engine.MakeMove(c.before, m)
	if err != nil {
		return MoveResult{}, c.withPly(err)
	}
	c.before = chess.Board{}
	c.pending = chess.Move{}
	return c.commit(outcome), nil
}

func (c *Controller) commit(outcome engine.MoveOutcome) MoveResult {
	c.board = outcome.After
	c.status = outcome.Status
	c.state = AwaitingMove
	if c.status.State.IsTerminal() {
		c.state = Terminal
	}

	record := MoveRecord{
		Ply:   len(c.history) + 1,
		Move:  outcome.Move,
		Mover: outcome.Mover,
		FEN:   engine.BoardToFEN(outcome.After),
		Hash:  hashing.GenerateZobristHash(outcome.After),
	}
	if blast := outcome.Explosion; blast != nil {
		record.Captured = blast.Captured
		record.Exploded = blast.Cleared
		record.Destroyed = blast.Destroyed
	}
	c.history = append(c.history, record)

	return MoveResult{
		Board:      c.board,
		SideToMove: c.board.ToMove,
		Status:     c.status,
		Exploded:   record.Exploded,
		Destroyed:  record.Destroyed,
		Move:       outcome.Move,
	}
}

func (c *Controller) moveError(err error, m chess.Move) error {
	e := &errors.MoveError{Err: err, Ply: len(c.history) + 1}
	if m.From.Valid() {
		e.From = m.From.String()
	}
	if m.To.Valid() {
		e.To = m.To.String()
	}
	if m.Promotion != chess.NoKind {
		e.Promotion = m.Promotion.String()
	}
	return e
}

// withPly stamps the current ply on engine move errors.
func (c *Controller) withPly(err error) error {
	var moveErr *errors.MoveError
	if errors.As(err, &moveErr) && moveErr.Ply == 0 {
		moveErr.Ply = len(c.history) + 1
	}
	return err
}
