package game

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/lgbarn/explosive-chess-go/internal/ai"
	"github.com/lgbarn/explosive-chess-go/internal/chess"
	"github.com/lgbarn/explosive-chess-go/internal/engine"
	"github.com/lgbarn/explosive-chess-go/internal/errors"
	"github.com/lgbarn/explosive-chess-go/internal/worker"
)

// Log verbosity levels.
const (
	LogQuiet = iota
	LogLifecycle
	LogMoves
)

// Snapshot is a consistent view of a session taken under its lock.
type Snapshot struct {
	ID               string
	Start            chess.Board // Position before the first move
	Board            chess.Board
	FEN              string
	State            State
	Status           chess.Status
	PromotionPending bool
	PendingMove      chess.Move
	History          []MoveRecord
	Generation       uint64
}

// AIResult is an applied AI move together with the search that chose it.
type AIResult struct {
	MoveResult
	Search ai.Result
}

// Session serialises every operation on one game. Concurrent callers queue
// on the session lock. AI searches run on a worker pool outside the lock
// and are committed only if the game has not changed in the meantime.
type Session struct {
	id       string
	pool     *worker.Pool
	fallback ai.Strategy
	timeout  time.Duration
	logger   *log.Logger
	verbose  int

	mu         sync.Mutex
	ctrl       *Controller
	generation uint64
	cancel     context.CancelFunc // Cancels the in-flight search, if any
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithFallback sets the strategy used when a search misses its deadline.
func WithFallback(strategy ai.Strategy) SessionOption {
	return func(s *Session) {
		s.fallback = strategy
	}
}

// WithSearchTimeout bounds every AI search. Zero means no bound.
func WithSearchTimeout(d time.Duration) SessionOption {
	return func(s *Session) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithLogger sets the lifecycle logger and its verbosity.
func WithLogger(logger *log.Logger, verbosity int) SessionOption {
	return func(s *Session) {
		s.logger = logger
		s.verbose = verbosity
	}
}

// NewSession creates a session at the standard starting position. AI
// searches are submitted to pool.
func NewSession(id string, pool *worker.Pool, opts ...SessionOption) *Session {
	return newSession(id, pool, NewController(), opts)
}

// NewSessionFromBoard creates a session that starts from board. A board
// that fails engine.ValidateBoard is rejected and no session is created.
func NewSessionFromBoard(id string, pool *worker.Pool, board chess.Board, opts ...SessionOption) (*Session, error) {
	ctrl, err := NewControllerFromBoard(board)
	if err != nil {
		return nil, errors.Wrapf(err, "game %s", id)
	}
	return newSession(id, pool, ctrl, opts), nil
}

func newSession(id string, pool *worker.Pool, ctrl *Controller, opts []SessionOption) *Session {
	s := &Session{
		id:   id,
		pool: pool,
		ctrl: ctrl,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logf(LogLifecycle, "game %s: created", id)
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// NewGame resets the session to the standard position, cancelling any
// running search.
func (s *Session) NewGame() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.mutated()
	s.ctrl.Reset()
	s.logf(LogLifecycle, "game %s: new game", s.id)
	return s.snapshot()
}

// LegalMoves returns the squares the piece on from may move to.
func (s *Session) LegalMoves(from string) ([]chess.Square, error) {
	sq, err := chess.ParseSquare(from)
	if err != nil {
		return nil, &errors.MoveError{Err: err, From: from}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctrl.LegalDestinations(sq), nil
}

// MakeMove plays from-to for the side to move. promotion may be empty, in
// which case a promotion move waits for ChoosePromotion.
func (s *Session) MakeMove(from, to, promotion string) (MoveResult, error) {
	m, err := parseMove(from, to, promotion)
	if err != nil {
		return MoveResult{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.ctrl.Submit(m.From, m.To, m.Promotion)
	if err != nil {
		return MoveResult{}, err
	}
	s.mutated()
	s.logMove(result)
	return result, nil
}

// ChoosePromotion completes an outstanding promotion.
func (s *Session) ChoosePromotion(kind string) (MoveResult, error) {
	k, err := engine.ParsePromotion(kind)
	if err != nil {
		return MoveResult{}, &errors.MoveError{Err: err, Promotion: kind}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.ctrl.Choose(k)
	if err != nil {
		return MoveResult{}, err
	}
	s.mutated()
	s.logMove(result)
	return result, nil
}

// AIMove searches the current position to depth and plays the move found.
// The search runs without holding the session lock. If the game changed
// while it ran, or the session cancelled it for a newer AIMove or Close, it
// fails with ErrStaleSearch. A search that misses its deadline falls back to
// the session's fallback strategy, whose result is marked Degraded.
func (s *Session) AIMove(ctx context.Context, depth int) (AIResult, error) {
	s.mu.Lock()
	if err := s.checkPlayable(); err != nil {
		s.mu.Unlock()
		return AIResult{}, err
	}
	board := s.ctrl.Board()
	gen := s.generation

	var searchCtx context.Context
	var cancel context.CancelFunc
	if s.timeout > 0 {
		searchCtx, cancel = context.WithTimeout(ctx, s.timeout)
	} else {
		searchCtx, cancel = context.WithCancel(ctx)
	}
	if s.cancel != nil {
		s.cancel()
	}
	s.cancel = cancel
	s.mu.Unlock()
	defer cancel()

	start := time.Now()
	search, err := s.runSearch(searchCtx, board, depth, gen)
	if errors.Is(err, context.DeadlineExceeded) && s.fallback != nil {
		s.logf(LogLifecycle, "game %s: search missed deadline after %v, using %s", s.id, time.Since(start), s.fallback.Name())
		search, err = s.fallback.BestMove(context.WithoutCancel(ctx), board, depth)
	}
	if errors.Is(err, context.Canceled) && ctx.Err() == nil {
		// The caller is still waiting, so the session cancelled it.
		err = errors.Wrapf(errors.ErrStaleSearch, "game %s: superseded", s.id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen {
		return AIResult{}, errors.Wrapf(errors.ErrStaleSearch, "game %s", s.id)
	}
	if err != nil {
		return AIResult{}, err
	}

	// A strategy may only answer with a fully specified legal move; a
	// promotion without a kind would otherwise be parked for a choice.
	if !engine.IsLegal(board, search.Move) {
		return AIResult{}, errors.WithStack(fmt.Errorf("game %s: %s chose %s: %w",
			s.id, search.Strategy, search.Move, errors.ErrIllegalMove))
	}
	result, err := s.ctrl.Submit(search.Move.From, search.Move.To, search.Move.Promotion)
	if err != nil {
		// The board is unchanged since the snapshot, so the engine rejecting
		// its own move is a defect.
		return AIResult{}, errors.WithStack(err)
	}
	s.mutated()
	s.logf(LogMoves, "game %s: %s chose %s (score %d, %d nodes, %v)",
		s.id, search.Strategy, search.Move, search.Score, search.Nodes, time.Since(start))
	s.logMove(result)
	return AIResult{MoveResult: result, Search: search}, nil
}

// runSearch runs one search on the pool and waits for its reply.
func (s *Session) runSearch(ctx context.Context, board chess.Board, depth int, gen uint64) (ai.Result, error) {
	if s.pool == nil {
		return ai.Result{}, errors.ErrPoolStopped
	}
	res, err := s.pool.Run(ctx, worker.WorkItem{Ctx: ctx, Board: board, Depth: depth, Generation: gen})
	if err != nil {
		return ai.Result{}, err
	}
	search, ok := res.Payload.(ai.Result)
	if !ok {
		return ai.Result{}, errors.WithStack(fmt.Errorf("unexpected search payload %T", res.Payload))
	}
	return search, nil
}

// GameStatus returns the status of the current position.
func (s *Session) GameStatus() chess.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctrl.Status()
}

// Snapshot returns the current state of the session.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// Close cancels any running search. The session stays readable.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.logf(LogLifecycle, "game %s: closed", s.id)
}

func (s *Session) snapshot() Snapshot {
	pending, ok := s.ctrl.PendingMove()
	return Snapshot{
		ID:               s.id,
		Start:            s.ctrl.Start(),
		Board:            s.ctrl.Board(),
		FEN:              engine.BoardToFEN(s.ctrl.Board()),
		State:            s.ctrl.State(),
		Status:           s.ctrl.Status(),
		PromotionPending: ok,
		PendingMove:      pending,
		History:          s.ctrl.History(),
		Generation:       s.generation,
	}
}

func (s *Session) checkPlayable() error {
	switch s.ctrl.State() {
	case Terminal:
		return &errors.MoveError{Err: errors.ErrGameOver, Ply: s.ctrl.Ply() + 1}
	case AwaitingPromotionChoice:
		return &errors.MoveError{Err: errors.ErrPromotionPending, Ply: s.ctrl.Ply() + 1}
	}
	return nil
}

// mutated invalidates any running search. Callers hold s.mu.
func (s *Session) mutated() {
	s.generation++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *Session) logMove(result MoveResult) {
	if result.PromotionPending {
		s.logf(LogMoves, "game %s: %s awaits promotion choice", s.id, result.Move)
		return
	}
	line := fmt.Sprintf("game %s: %s played, %s", s.id, result.Move, result.Status.State)
	if len(result.Exploded) > 0 {
		line += fmt.Sprintf(", blast cleared %d squares", len(result.Exploded))
	}
	s.logf(LogMoves, "%s", line)
}

func (s *Session) logf(level int, format string, args ...interface{}) {
	if s.logger == nil || s.verbose < level {
		return
	}
	s.logger.Printf(format, args...)
}

// parseMove converts algebraic input into a move. An empty promotion means
// none was given.
func parseMove(from, to, promotion string) (chess.Move, error) {
	moveErr := func(err error) error {
		return &errors.MoveError{Err: err, From: from, To: to, Promotion: promotion}
	}

	src, err := chess.ParseSquare(from)
	if err != nil {
		return chess.Move{}, moveErr(err)
	}
	dst, err := chess.ParseSquare(to)
	if err != nil {
		return chess.Move{}, moveErr(err)
	}
	m := chess.Move{From: src, To: dst}
	if strings.TrimSpace(promotion) != "" {
		kind, err := engine.ParsePromotion(promotion)
		if err != nil {
			return chess.Move{}, moveErr(err)
		}
		m.Promotion = kind
	}
	return m, nil
}
