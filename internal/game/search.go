package game

import (
	"github.com/lgbarn/explosive-chess-go/internal/ai"
	"github.com/lgbarn/explosive-chess-go/internal/worker"
)

// NewSearchPool starts a worker pool whose workers run strategy on each
// submitted board. The ai.Result travels in ProcessResult.Payload. Several
// sessions may share one pool; callers Close it when done.
func NewSearchPool(strategy ai.Strategy, opts ...worker.PoolOption) *worker.Pool {
	pool := worker.NewPool(func(item worker.WorkItem) worker.ProcessResult {
		result, err := strategy.BestMove(item.Context(), item.Board, item.Depth)
		return worker.ProcessResult{
			Generation: item.Generation,
			Payload:    result,
			Error:      err,
		}
	}, opts...)
	pool.Start()
	return pool
}
