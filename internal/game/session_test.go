package game

import (
	"bytes"
	"context"
	"log"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lgbarn/explosive-chess-go/internal/ai"
	"github.com/lgbarn/explosive-chess-go/internal/chess"
	"github.com/lgbarn/explosive-chess-go/internal/engine"
	"github.com/lgbarn/explosive-chess-go/internal/errors"
	"github.com/lgbarn/explosive-chess-go/internal/testutil"
	"github.com/lgbarn/explosive-chess-go/internal/worker"
)

// blockingStrategy never finishes on its own: it reports that it started
// and then waits for its context.
type blockingStrategy struct {
	once    sync.Once
	started chan struct{}
}

func newBlockingStrategy() *blockingStrategy {
	return &blockingStrategy{started: make(chan struct{})}
}

func (b *blockingStrategy) Name() string { return "blocking" }

func (b *blockingStrategy) BestMove(ctx context.Context, board chess.Board, depth int) (ai.Result, error) {
	b.once.Do(func() { close(b.started) })
	<-ctx.Done()
	return ai.Result{}, ctx.Err()
}

func newPool(t *testing.T, strategy ai.Strategy) *worker.Pool {
	t.Helper()
	pool := NewSearchPool(strategy, worker.WithWorkers(2), worker.WithBufferSize(4))
	t.Cleanup(pool.Close)
	return pool
}

func boardFromFEN(t *testing.T, fen string) chess.Board {
	t.Helper()
	board, err := engine.NewBoardFromFEN(fen)
	require.NoError(t, err)
	return board
}

func TestSession_NewGame(t *testing.T) {
	s := NewSession("g1", nil)

	snap := s.Snapshot()
	assert.Equal(t, "g1", snap.ID)
	assert.Equal(t, engine.InitialFEN, snap.FEN)
	assert.Equal(t, AwaitingMove, snap.State)
	assert.Equal(t, uint64(0), snap.Generation)
	assert.False(t, snap.PromotionPending)

	_, err := s.MakeMove("e2", "e4", "")
	require.NoError(t, err)

	snap = s.NewGame()
	assert.Equal(t, engine.InitialFEN, snap.FEN)
	assert.Empty(t, snap.History)
	assert.Equal(t, uint64(2), snap.Generation)
}

func TestSession_LegalMoves(t *testing.T) {
	s := NewSession("g1", nil)

	squares, err := s.LegalMoves("g1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"f3", "h3"}, testutil.SquareNames(squares))

	squares, err = s.LegalMoves("e5")
	require.NoError(t, err)
	assert.Empty(t, squares)

	_, err = s.LegalMoves("z9")
	assert.Truef(t, errors.Is(err, errors.ErrInvalidSquare), "got %v", err)
}

func TestSession_MakeMoveInputErrors(t *testing.T) {
	tests := []struct {
		name                string
		from, to, promotion string
		want                error
	}{
		{"bad source", "i2", "e4", "", errors.ErrInvalidSquare},
		{"bad destination", "e2", "e9", "", errors.ErrInvalidSquare},
		{"bad promotion", "e2", "e4", "x", errors.ErrInvalidPromotion},
		{"illegal", "e2", "e5", "", errors.ErrIllegalMove},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSession("g1", nil)
			_, err := s.MakeMove(tt.from, tt.to, tt.promotion)
			assert.Truef(t, errors.Is(err, tt.want), "got %v", err)
			assert.Equal(t, uint64(0), s.Snapshot().Generation, "a rejected move must not change the game")
		})
	}
}

func TestSession_PromotionFlow(t *testing.T) {
	s, err := NewSessionFromBoard("g1", nil, boardFromFEN(t, testutil.BlackPromotionFEN))
	require.NoError(t, err)

	result, err := s.MakeMove("b2", "b1", "")
	require.NoError(t, err)
	assert.True(t, result.PromotionPending)

	snap := s.Snapshot()
	assert.True(t, snap.PromotionPending)
	assert.Equal(t, "b2b1", snap.PendingMove.String())

	_, err = s.AIMove(context.Background(), 1)
	assert.Truef(t, errors.Is(err, errors.ErrPromotionPending), "got %v", err)

	_, err = s.ChoosePromotion("king")
	assert.Truef(t, errors.Is(err, errors.ErrInvalidPromotion), "got %v", err)

	result, err = s.ChoosePromotion("n")
	require.NoError(t, err)
	assert.Equal(t, chess.B(chess.Knight), result.Board.Get(chess.MustSquare("b1")))
	assert.Equal(t, chess.White, result.SideToMove)

	_, err = s.ChoosePromotion("q")
	assert.Truef(t, errors.Is(err, errors.ErrNoPromotionPending), "got %v", err)
}

func TestSession_AIMove(t *testing.T) {
	pool := newPool(t, ai.NewSearcher())
	s, err := NewSessionFromBoard("g1", pool, boardFromFEN(t, testutil.QueenTakesKnightFEN))
	require.NoError(t, err)

	result, err := s.AIMove(context.Background(), 2)
	require.NoError(t, err)

	assert.Equal(t, "d1d7", result.Move.String())
	assert.Equal(t, chess.Status{State: chess.KingDestroyed, Winner: chess.White}, result.Status)
	assert.Equal(t, []string{"d7", "e8"}, testutil.SquareNames(result.Exploded))
	assert.Equal(t, "minimax", result.Search.Strategy)
	assert.False(t, result.Search.Degraded)
	assert.Equal(t, Terminal, s.Snapshot().State)

	_, err = s.AIMove(context.Background(), 2)
	assert.Truef(t, errors.Is(err, errors.ErrGameOver), "got %v", err)
}

func TestSession_AIMoveRespondsToPlayer(t *testing.T) {
	pool := newPool(t, ai.NewSearcher())
	s := NewSession("g1", pool)

	_, err := s.MakeMove("e2", "e4", "")
	require.NoError(t, err)

	result, err := s.AIMove(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, chess.Black, s.Snapshot().History[1].Mover)
	assert.Equal(t, chess.White, result.SideToMove)
	assert.Len(t, s.Snapshot().History, 2)
}

func TestSession_StaleSearchDiscarded(t *testing.T) {
	blocking := newBlockingStrategy()
	s := NewSession("g1", newPool(t, blocking))

	done := make(chan error, 1)
	go func() {
		_, err := s.AIMove(context.Background(), 3)
		done <- err
	}()

	<-blocking.started
	_, err := s.MakeMove("e2", "e4", "")
	require.NoError(t, err)

	select {
	case err := <-done:
		assert.Truef(t, errors.Is(err, errors.ErrStaleSearch), "got %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("AIMove did not return after the board changed")
	}

	snap := s.Snapshot()
	assert.Len(t, snap.History, 1, "the stale result must not be applied")
	assert.Equal(t, chess.Black, snap.Board.ToMove)
}

// fixedStrategy always answers with the same move.
type fixedStrategy struct{ move chess.Move }

func (f fixedStrategy) Name() string { return "fixed" }

func (f fixedStrategy) BestMove(ctx context.Context, board chess.Board, depth int) (ai.Result, error) {
	return ai.Result{Move: f.move, Strategy: f.Name()}, nil
}

func TestSession_AIMoveRejectsIncompleteMove(t *testing.T) {
	// b2b1 without a kind is not a complete move; it must not leave the
	// session waiting for a promotion choice nobody will make.
	pawnPush := chess.Move{From: chess.MustSquare("b2"), To: chess.MustSquare("b1")}
	s, err := NewSessionFromBoard("g1", newPool(t, fixedStrategy{move: pawnPush}), boardFromFEN(t, testutil.BlackPromotionFEN))
	require.NoError(t, err)

	_, err = s.AIMove(context.Background(), 1)
	assert.Truef(t, errors.Is(err, errors.ErrIllegalMove), "got %v", err)

	snap := s.Snapshot()
	assert.False(t, snap.PromotionPending)
	assert.Equal(t, AwaitingMove, snap.State)
	assert.Empty(t, snap.History)
}

func TestSession_NewerSearchSupersedes(t *testing.T) {
	blocking := newBlockingStrategy()
	s := NewSession("g1", newPool(t, blocking))

	first := make(chan error, 1)
	go func() {
		_, err := s.AIMove(context.Background(), 3)
		first <- err
	}()
	<-blocking.started

	ctx, cancel := context.WithCancel(context.Background())
	second := make(chan error, 1)
	go func() {
		_, err := s.AIMove(ctx, 3)
		second <- err
	}()

	select {
	case err := <-first:
		assert.Truef(t, errors.Is(err, errors.ErrStaleSearch), "got %v", err)
		assert.Equal(t, "StaleSearch", errors.Code(err))
	case <-time.After(5 * time.Second):
		t.Fatal("first AIMove did not return after a newer one started")
	}

	// The second caller gives up on its own; that is not a stale search.
	cancel()
	select {
	case err := <-second:
		assert.Truef(t, errors.Is(err, context.Canceled), "got %v", err)
		assert.Falsef(t, errors.Is(err, errors.ErrStaleSearch), "got %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("second AIMove did not return after its context was cancelled")
	}
	assert.Empty(t, s.Snapshot().History)
}

func TestSession_DeadlineFallback(t *testing.T) {
	s := NewSession("g1", newPool(t, newBlockingStrategy()),
		WithSearchTimeout(20*time.Millisecond),
		WithFallback(ai.NewRandom(1)))

	result, err := s.AIMove(context.Background(), 3)
	require.NoError(t, err)
	assert.True(t, result.Search.Degraded)
	assert.Equal(t, "random", result.Search.Strategy)
	assert.True(t, engine.IsLegal(chess.InitialBoard(), result.Search.Move))
	assert.Len(t, s.Snapshot().History, 1)
}

func TestSession_DeadlineWithoutFallback(t *testing.T) {
	s := NewSession("g1", newPool(t, newBlockingStrategy()), WithSearchTimeout(20*time.Millisecond))

	_, err := s.AIMove(context.Background(), 3)
	assert.Truef(t, errors.Is(err, context.DeadlineExceeded), "got %v", err)
	assert.Empty(t, s.Snapshot().History)
}

func TestSession_CloseCancelsSearch(t *testing.T) {
	blocking := newBlockingStrategy()
	s := NewSession("g1", newPool(t, blocking))

	done := make(chan error, 1)
	go func() {
		_, err := s.AIMove(context.Background(), 3)
		done <- err
	}()

	<-blocking.started
	s.Close()

	select {
	case err := <-done:
		assert.Truef(t, errors.Is(err, errors.ErrStaleSearch), "got %v", err)
		assert.Equal(t, "StaleSearch", errors.Code(err))
	case <-time.After(5 * time.Second):
		t.Fatal("AIMove did not return after Close")
	}
}

func TestNewSessionFromBoard(t *testing.T) {
	s, err := NewSessionFromBoard("g2", nil, boardFromFEN(t, "4k3/8/8/8/8/8/8/4K3 b - - 0 12"))
	require.NoError(t, err)
	snap := s.Snapshot()
	assert.Equal(t, "4k3/8/8/8/8/8/8/4K3 b - - 0 12", snap.FEN)
	assert.Equal(t, snap.Board, snap.Start)

	noBlackKing := testutil.PlaceBoard(chess.White, map[string]chess.Piece{"e1": chess.W(chess.King)})
	s, err = NewSessionFromBoard("g3", nil, noBlackKing)
	assert.Nil(t, s)
	assert.Truef(t, errors.Is(err, errors.ErrInvalidPosition), "got %v", err)
}

func TestSession_NoPool(t *testing.T) {
	s := NewSession("g1", nil)
	_, err := s.AIMove(context.Background(), 1)
	assert.Truef(t, errors.Is(err, errors.ErrPoolStopped), "got %v", err)
}

func TestSession_ConcurrentMovesSerialise(t *testing.T) {
	s := NewSession("g1", nil)

	var wg sync.WaitGroup
	var applied int32
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.MakeMove("e2", "e4", ""); err == nil {
				atomic.AddInt32(&applied, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), applied)
	assert.Len(t, s.Snapshot().History, 1)
	assert.Equal(t, chess.Status{State: chess.InProgress, Winner: chess.NoColour}, s.GameStatus())
}

func TestSession_Logging(t *testing.T) {
	var buf bytes.Buffer
	s := NewSession("g7", nil, WithLogger(log.New(&buf, "", 0), LogMoves))

	_, err := s.MakeMove("e2", "e4", "")
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "game g7: created")
	assert.Contains(t, buf.String(), "game g7: e2e4 played, in-progress")

	buf.Reset()
	quiet := NewSession("g8", nil, WithLogger(log.New(&buf, "", 0), LogQuiet))
	_, err = quiet.MakeMove("e2", "e4", "")
	require.NoError(t, err)
	assert.Empty(t, buf.String())
}
