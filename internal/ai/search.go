package ai

import (
	"context"
	"sort"

	"github.com/lgbarn/explosive-chess-go/internal/chess"
	"github.com/lgbarn/explosive-chess-go/internal/engine"
	"github.com/lgbarn/explosive-chess-go/internal/errors"
	"github.com/lgbarn/explosive-chess-go/internal/hashing"
)

// infinity bounds every reachable score.
const infinity = 2 * MateScore

// Result describes a chosen move.
type Result struct {
	Move           chess.Move
	Score          int // White-relative centipawns
	Depth          int
	Nodes          int
	BlastGain      int // Material swing of the move's blast for the mover
	WinProbability float32
	Strategy       string
	Degraded       bool // Chosen by the fallback strategy
	Trace          *Trace
}

// Strategy picks a move for the side to move on board.
type Strategy interface {
	Name() string
	BestMove(ctx context.Context, board chess.Board, depth int) (Result, error)
}

// Searcher is a minimax search with alpha-beta pruning. White maximises.
// A Searcher holds no per-search state and may be shared between goroutines.
type Searcher struct {
	cache      *hashing.ThreadSafeEvalCache
	traceLimit int
}

// Option configures a Searcher.
type Option func(*Searcher)

// WithCache shares an evaluation cache between searches.
func WithCache(cache *hashing.ThreadSafeEvalCache) Option {
	return func(s *Searcher) {
		s.cache = cache
	}
}

// WithTrace records up to limit nodes of every search in Result.Trace.
func WithTrace(limit int) Option {
	return func(s *Searcher) {
		if limit > 0 {
			s.traceLimit = limit
		}
	}
}

// NewSearcher creates a Searcher.
func NewSearcher(opts ...Option) *Searcher {
	s := &Searcher{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name implements Strategy.
func (s *Searcher) Name() string {
	return "minimax"
}

// child is a legal move together with the board it produces.
type child struct {
	move  chess.Move
	board chess.Board
	gain  int
}

// expand applies every move and orders the children by blast gain for the
// mover, best first. Quiet moves keep their generation order.
func expand(board chess.Board, moves []chess.Move) []child {
	mover := board.ToMove
	children := make([]child, len(moves))
	for i, m := range moves {
		next, blast := engine.Apply(board, m)
		children[i] = child{move: m, board: next, gain: blastGain(blast, mover)}
	}
	sort.SliceStable(children, func(i, j int) bool {
		return children[i].gain > children[j].gain
	})
	return children
}

// BestMove searches board to depth plies (clamped to [MinDepth, MaxDepth]).
// It fails with ErrNoLegalMoves when the side to move has no legal move and
// with ctx.Err() when ctx is done before the search completes. board is
// never modified.
func (s *Searcher) BestMove(ctx context.Context, board chess.Board, depth int) (Result, error) {
	depth = ClampDepth(depth)
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	moves := engine.AllLegalMoves(board)
	if len(moves) == 0 {
		return Result{}, errors.Wrap(errors.ErrNoLegalMoves, "search")
	}

	run := &search{ctx: ctx, cache: s.cache}
	root := -1
	if s.traceLimit > 0 {
		run.trace = NewTrace(s.traceLimit)
		root = run.trace.add(-1, chess.Move{From: chess.NoSquare, To: chess.NoSquare}, 0)
	}

	maximizing := board.ToMove == chess.White
	alpha, beta := -infinity, infinity
	children := expand(board, moves)
	best, bestScore := children[0], worst(maximizing)

	for _, c := range children {
		id := run.trace.add(root, c.move, 1)
		score, err := run.minimax(c.board, depth-1, 1, alpha, beta, id)
		if err != nil {
			return Result{}, err
		}
		run.trace.setScore(id, score)

		if (maximizing && score > bestScore) || (!maximizing && score < bestScore) {
			best, bestScore = c, score
		}
		if maximizing {
			alpha = max(alpha, score)
		} else {
			beta = min(beta, score)
		}
	}
	run.trace.setScore(root, bestScore)

	return Result{
		Move:           best.move,
		Score:          bestScore,
		Depth:          depth,
		Nodes:          run.nodes,
		BlastGain:      best.gain,
		WinProbability: WinProbability(bestScore),
		Strategy:       s.Name(),
		Trace:          run.trace,
	}, nil
}

// search holds the state of one BestMove call.
type search struct {
	ctx   context.Context
	cache *hashing.ThreadSafeEvalCache
	trace *Trace
	nodes int
}

func (r *search) minimax(board chess.Board, depth, ply, alpha, beta, parent int) (int, error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	r.nodes++

	if !board.HasKing(chess.White) || !board.HasKing(chess.Black) {
		return terminalScore(engine.Evaluate(board), ply), nil
	}
	if depth == 0 {
		return r.leaf(board, ply), nil
	}

	moves := engine.AllLegalMoves(board)
	if len(moves) == 0 {
		return noMovesScore(board, ply), nil
	}

	maximizing := board.ToMove == chess.White
	best := worst(maximizing)
	for _, c := range expand(board, moves) {
		id := r.trace.add(parent, c.move, ply+1)
		score, err := r.minimax(c.board, depth-1, ply+1, alpha, beta, id)
		if err != nil {
			return 0, err
		}
		r.trace.setScore(id, score)

		if maximizing {
			best = max(best, score)
			alpha = max(alpha, score)
		} else {
			best = min(best, score)
			beta = min(beta, score)
		}
		if beta <= alpha {
			break // Cutoff
		}
	}
	return best, nil
}

// leaf scores a depth-0 board that still has both kings.
func (r *search) leaf(board chess.Board, ply int) int {
	if !engine.HasLegalMoves(board) {
		return noMovesScore(board, ply)
	}
	if r.cache != nil {
		if score, ok := r.cache.Get(board); ok {
			return score
		}
	}
	score := StaticEval(board)
	if r.cache != nil {
		r.cache.Put(board, score)
	}
	return score
}

// noMovesScore scores checkmate or stalemate for the side to move.
func noMovesScore(board chess.Board, ply int) int {
	if engine.IsInCheck(board, board.ToMove) {
		return terminalScore(chess.Status{State: chess.Checkmate, Winner: board.ToMove.Opposite()}, ply)
	}
	return 0
}

func worst(maximizing bool) int {
	if maximizing {
		return -infinity
	}
	return infinity
}
