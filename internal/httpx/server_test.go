package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lgbarn/explosive-chess-go/internal/config"
	"github.com/lgbarn/explosive-chess-go/internal/errors"
	"github.com/lgbarn/explosive-chess-go/internal/output"
	"github.com/lgbarn/explosive-chess-go/internal/testutil"
	"github.com/lgbarn/explosive-chess-go/internal/worker"
)

func newTestServer(t *testing.T, cfg *config.Config) *Server {
	t.Helper()
	if cfg == nil {
		cfg = config.NewConfigBuilder().WithWorkers(1, 4).Build()
	}
	srv := NewServer(cfg, nil)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		assert.NoError(t, srv.Close(ctx))
	})
	return srv
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func createGame(t *testing.T, h http.Handler, fen string) output.JSONSnapshot {
	t.Helper()
	body := ""
	if fen != "" {
		body = `{"fen":"` + fen + `"}`
	}
	rr := do(t, h, http.MethodPost, "/api/games", body)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return decode[output.JSONSnapshot](t, rr)
}

func TestCreateGame(t *testing.T) {
	h := newTestServer(t, nil).Handler()

	rr := do(t, h, http.MethodPost, "/api/games", "")
	require.Equal(t, http.StatusCreated, rr.Code)
	snap := decode[output.JSONSnapshot](t, rr)

	assert.Equal(t, "/api/games/"+snap.ID, rr.Header().Get("Location"))
	assert.Equal(t, "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w - - 0 1", snap.FEN)
	assert.Equal(t, "white", snap.SideToMove)
	assert.Equal(t, "in-progress", snap.Status)
	assert.Equal(t, "awaiting-move", snap.State)
	assert.Len(t, snap.Pieces, 32)
	assert.Empty(t, snap.History)

	other := createGame(t, h, "")
	assert.NotEqual(t, snap.ID, other.ID)
}

func TestCreateGame_FromFEN(t *testing.T) {
	h := newTestServer(t, nil).Handler()

	snap := createGame(t, h, testutil.BlackPromotionFEN)
	assert.Equal(t, testutil.BlackPromotionFEN, snap.FEN)
	assert.Equal(t, "black", snap.SideToMove)
}

func TestCreateGame_BadInput(t *testing.T) {
	h := newTestServer(t, nil).Handler()

	tests := []struct {
		name     string
		body     string
		wantCode int
		wantErr  string
	}{
		{"malformed json", `{"fen":`, http.StatusBadRequest, "BadRequest"},
		{"unknown field", `{"board":"x"}`, http.StatusBadRequest, "BadRequest"},
		{"bad fen", `{"fen":"not a board"}`, http.StatusBadRequest, "InvalidFEN"},
		{"missing king", `{"fen":"8/8/8/8/8/8/8/4K3 w - - 0 1"}`, http.StatusBadRequest, "InvalidPosition"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, h, http.MethodPost, "/api/games", tt.body)
			assert.Equal(t, tt.wantCode, rr.Code, rr.Body.String())
			assert.Equal(t, tt.wantErr, decode[output.JSONError](t, rr).Error)
		})
	}

	// Rejected boards leave no session behind.
	rr := do(t, h, http.MethodPost, "/api/games", "")
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.Equal(t, "/api/games/g1", rr.Header().Get("Location"))
}

func TestCreateGame_SessionLimit(t *testing.T) {
	cfg := config.NewConfigBuilder().WithWorkers(1, 4).WithMaxSessions(1).Build()
	h := newTestServer(t, cfg).Handler()

	createGame(t, h, "")
	rr := do(t, h, http.MethodPost, "/api/games", "")
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Equal(t, "Unavailable", decode[output.JSONError](t, rr).Error)
}

func TestBodyTooLarge(t *testing.T) {
	cfg := config.NewConfigBuilder().WithWorkers(1, 4).WithMaxBodyBytes(32).Build()
	h := newTestServer(t, cfg).Handler()

	rr := do(t, h, http.MethodPost, "/api/games", `{"fen":"`+strings.Repeat("8/", 40)+`"}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
	assert.Equal(t, "TooLarge", decode[output.JSONError](t, rr).Error)
}

func TestMove_KingDestroyed(t *testing.T) {
	h := newTestServer(t, nil).Handler()
	snap := createGame(t, h, testutil.QueenTakesKnightFEN)

	rr := do(t, h, http.MethodPost, "/api/games/"+snap.ID+"/move", `{"from":"d1","to":"d7"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	res := decode[output.JSONMoveResult](t, rr)

	assert.Equal(t, "king-destroyed", res.Status)
	assert.Equal(t, "white", res.Winner)
	assert.Equal(t, "1-0", res.Result)
	assert.Equal(t, "white", res.Move.Color)
	assert.Equal(t, "d1d7", res.Move.UCI)
	assert.ElementsMatch(t, []string{"d7", "e8"}, res.Exploded)
	assert.Equal(t, "8/8/8/8/8/8/8/4K3 b - - 0 1", res.FEN)

	rr = do(t, h, http.MethodPost, "/api/games/"+snap.ID+"/move", `{"from":"e1","to":"e2"}`)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "GameOver", decode[output.JSONError](t, rr).Error)
}

func TestMove_Errors(t *testing.T) {
	h := newTestServer(t, nil).Handler()
	snap := createGame(t, h, "")
	path := "/api/games/" + snap.ID + "/move"

	tests := []struct {
		name     string
		body     string
		wantCode int
		wantErr  string
	}{
		{"bad square", `{"from":"z9","to":"e4"}`, http.StatusBadRequest, "InvalidSquare"},
		{"empty source", `{"from":"e4","to":"e5"}`, http.StatusUnprocessableEntity, "NoPieceAtSource"},
		{"wrong side", `{"from":"e7","to":"e5"}`, http.StatusUnprocessableEntity, "WrongSideToMove"},
		{"illegal", `{"from":"e2","to":"e5"}`, http.StatusUnprocessableEntity, "IllegalMove"},
		{"bad promotion", `{"from":"e2","to":"e4","promotion":"king"}`, http.StatusBadRequest, "InvalidPromotion"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, h, http.MethodPost, path, tt.body)
			assert.Equal(t, tt.wantCode, rr.Code, rr.Body.String())
			je := decode[output.JSONError](t, rr)
			assert.Equal(t, tt.wantErr, je.Error)
			assert.NotEmpty(t, je.Message)
		})
	}

	// Nothing above changed the game.
	rr := do(t, h, http.MethodGet, "/api/games/"+snap.ID, "")
	assert.Equal(t, snap.FEN, decode[output.JSONSnapshot](t, rr).FEN)
}

func TestPromotionFlow(t *testing.T) {
	h := newTestServer(t, nil).Handler()
	snap := createGame(t, h, testutil.BlackPromotionFEN)
	base := "/api/games/" + snap.ID

	rr := do(t, h, http.MethodPost, base+"/promotion", `{"piece":"queen"}`)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "NoPromotionPending", decode[output.JSONError](t, rr).Error)

	rr = do(t, h, http.MethodPost, base+"/move", `{"from":"b2","to":"b1"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	res := decode[output.JSONMoveResult](t, rr)
	assert.True(t, res.PromotionPending)
	assert.Equal(t, "black", res.Move.Color)
	assert.Equal(t, "black", res.SideToMove)

	rr = do(t, h, http.MethodPost, base+"/move", `{"from":"e1","to":"e2"}`)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "PromotionPending", decode[output.JSONError](t, rr).Error)

	rr = do(t, h, http.MethodGet, base, "")
	pending := decode[output.JSONSnapshot](t, rr)
	assert.Equal(t, "awaiting-promotion", pending.State)
	require.NotNil(t, pending.PendingMove)
	assert.Equal(t, "b2b1", pending.PendingMove.UCI)

	rr = do(t, h, http.MethodPost, base+"/promotion", `{"piece":"king"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "InvalidPromotion", decode[output.JSONError](t, rr).Error)

	rr = do(t, h, http.MethodPost, base+"/promotion", `{"piece":"q"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	res = decode[output.JSONMoveResult](t, rr)
	assert.False(t, res.PromotionPending)
	assert.Equal(t, "check", res.Status)
	assert.Equal(t, "white", res.SideToMove)
	assert.Equal(t, "black", res.Move.Color)
	assert.Equal(t, "queen", res.Move.Promotion)
}

func TestLegalMoves(t *testing.T) {
	h := newTestServer(t, nil).Handler()
	snap := createGame(t, h, "")
	base := "/api/games/" + snap.ID + "/moves"

	rr := do(t, h, http.MethodGet, base+"?from=g1", "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	lm := decode[output.JSONLegalMoves](t, rr)
	assert.Equal(t, "g1", lm.From)
	assert.ElementsMatch(t, []string{"f3", "h3"}, lm.Destinations)

	rr = do(t, h, http.MethodGet, base+"?from=e4", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, decode[output.JSONLegalMoves](t, rr).Destinations)

	rr = do(t, h, http.MethodGet, base+"?from=k1", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAIMove(t *testing.T) {
	cfg := config.NewConfigBuilder().WithWorkers(1, 4).WithTraceLimit(100).Build()
	h := newTestServer(t, cfg).Handler()
	snap := createGame(t, h, testutil.QueenTakesKnightFEN)

	rr := do(t, h, http.MethodPost, "/api/games/"+snap.ID+"/ai", `{"depth":2}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	res := decode[output.JSONAIResult](t, rr)

	assert.Equal(t, "d1d7", res.Move.UCI)
	assert.Equal(t, "white", res.Move.Color)
	assert.Equal(t, "king-destroyed", res.Status)
	assert.Equal(t, "minimax", res.Search.Strategy)
	assert.Equal(t, 2, res.Search.Depth)
	assert.Equal(t, "medium", res.Search.Difficulty)
	assert.False(t, res.Search.Degraded)
	assert.Contains(t, res.Search.Trace, "digraph")
}

func TestAIMove_Difficulty(t *testing.T) {
	h := newTestServer(t, nil).Handler()
	snap := createGame(t, h, "")
	path := "/api/games/" + snap.ID + "/ai"

	rr := do(t, h, http.MethodPost, path, `{"difficulty":"easy"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	res := decode[output.JSONAIResult](t, rr)
	assert.Equal(t, 1, res.Search.Depth)
	assert.Equal(t, "black", res.SideToMove)

	rr = do(t, h, http.MethodPost, path, `{"difficulty":"brutal"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "InvalidConfig", decode[output.JSONError](t, rr).Error)
}

func TestAIMove_NoLegalMoves(t *testing.T) {
	h := newTestServer(t, nil).Handler()
	snap := createGame(t, h, testutil.StalemateFEN)

	rr := do(t, h, http.MethodPost, "/api/games/"+snap.ID+"/ai", "")
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "GameOver", decode[output.JSONError](t, rr).Error)
}

func TestNewGameAndStatus(t *testing.T) {
	h := newTestServer(t, nil).Handler()
	snap := createGame(t, h, testutil.CheckmateFEN)
	base := "/api/games/" + snap.ID

	rr := do(t, h, http.MethodGet, base+"/status", "")
	require.Equal(t, http.StatusOK, rr.Code)
	status := decode[output.JSONStatus](t, rr)
	assert.Equal(t, "checkmate", status.Status)
	assert.Equal(t, "white", status.Winner)

	rr = do(t, h, http.MethodPost, base+"/new", "")
	require.Equal(t, http.StatusOK, rr.Code)
	fresh := decode[output.JSONSnapshot](t, rr)
	assert.Equal(t, snap.ID, fresh.ID)
	assert.Equal(t, "in-progress", fresh.Status)
	assert.Greater(t, fresh.Generation, snap.Generation)
}

func TestAnalysis(t *testing.T) {
	h := newTestServer(t, nil).Handler()
	snap := createGame(t, h, testutil.QueenTakesKnightFEN)
	base := "/api/games/" + snap.ID

	rr := do(t, h, http.MethodPost, base+"/move", `{"from":"d1","to":"d7"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = do(t, h, http.MethodGet, base+"/analysis", "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	a := decode[output.JSONAnalysis](t, rr)
	assert.Equal(t, 1, a.Plies)
	assert.Equal(t, 3, a.BiggestBlast)
	assert.True(t, a.KingDestroyed)
}

func TestDeleteGame(t *testing.T) {
	h := newTestServer(t, nil).Handler()
	snap := createGame(t, h, "")
	base := "/api/games/" + snap.ID

	rr := do(t, h, http.MethodDelete, base, "")
	assert.Equal(t, http.StatusNoContent, rr.Code)

	for _, path := range []string{base, base + "/status"} {
		rr = do(t, h, http.MethodGet, path, "")
		assert.Equal(t, http.StatusNotFound, rr.Code, path)
		assert.Equal(t, "UnknownGame", decode[output.JSONError](t, rr).Error)
	}
}

func TestSecurityHeaders(t *testing.T) {
	h := newTestServer(t, nil).Handler()

	rr := do(t, h, http.MethodGet, "/api/games/missing", "")
	assert.Equal(t, apiCSP, rr.Header().Get("Content-Security-Policy"))
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
	assert.Contains(t, rr.Header().Get("Content-Type"), "application/json")
}

func TestHealthz(t *testing.T) {
	h := newTestServer(t, nil).Handler()

	rr := do(t, h, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", rr.Body.String())

	rr = do(t, h, http.MethodPost, "/healthz", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{context.DeadlineExceeded, http.StatusGatewayTimeout},
		{context.Canceled, http.StatusServiceUnavailable},
		{assert.AnError, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}

func TestCloseLogsCacheStats(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.NewConfigBuilder().WithWorkers(1, 4).WithVerbosity(config.Lifecycle).Build()
	srv := NewServer(cfg, log.New(&buf, "", 0))
	createGame(t, srv.Handler(), "")

	require.NoError(t, srv.Close(context.Background()))
	assert.Contains(t, buf.String(), "evaluation cache")
	assert.True(t, srv.pool.IsStopped(), "Close should stop the search pool")

	_, err := srv.pool.Run(context.Background(), worker.WorkItem{})
	assert.Truef(t, errors.Is(err, errors.ErrPoolStopped), "got %v", err)
}
