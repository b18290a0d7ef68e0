// Package httpx exposes explosive chess games over a JSON HTTP API.
package httpx

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/lgbarn/explosive-chess-go/internal/ai"
	"github.com/lgbarn/explosive-chess-go/internal/chess"
	"github.com/lgbarn/explosive-chess-go/internal/config"
	"github.com/lgbarn/explosive-chess-go/internal/engine"
	"github.com/lgbarn/explosive-chess-go/internal/errors"
	"github.com/lgbarn/explosive-chess-go/internal/game"
	"github.com/lgbarn/explosive-chess-go/internal/hashing"
	"github.com/lgbarn/explosive-chess-go/internal/output"
	"github.com/lgbarn/explosive-chess-go/internal/processing"
	"github.com/lgbarn/explosive-chess-go/internal/worker"
)

const apiCSP = "default-src 'none'; frame-ancestors 'none'; base-uri 'none'"

// Server owns the open games and the search pool they share.
type Server struct {
	cfg    *config.Config
	logger *log.Logger
	cache  *hashing.ThreadSafeEvalCache
	pool   *worker.Pool

	fallback ai.Strategy

	mu       sync.Mutex
	sessions map[string]*game.Session
	nextID   uint64

	srvMu sync.Mutex
	srv   *http.Server
}

// NewServer builds a Server and starts its search workers. logger may be
// nil. Close releases the workers.
func NewServer(cfg *config.Config, logger *log.Logger) *Server {
	cache := hashing.NewThreadSafeEvalCache(cfg.AI.CacheSize)
	searcher := ai.NewSearcher(ai.WithCache(cache), ai.WithTrace(cfg.AI.TraceLimit))
	s := &Server{
		cfg:      cfg,
		logger:   logger,
		cache:    cache,
		pool:     game.NewSearchPool(searcher, worker.WithWorkers(cfg.AI.Workers), worker.WithBufferSize(cfg.AI.QueueSize)),
		sessions: make(map[string]*game.Session),
	}
	if cfg.AI.Fallback {
		s.fallback = ai.NewRandom(cfg.AI.Seed)
	}
	return s
}

// Handler returns the HTTP handler serving the API.
func (s *Server) Handler() http.Handler {
	return s.routes()
}

// Listen serves the API on addr until Close is called.
func (s *Server) Listen(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       s.cfg.Server.ReadTimeout,
		WriteTimeout:      s.cfg.Server.WriteTimeout,
		IdleTimeout:       s.cfg.Server.IdleTimeout,
		MaxHeaderBytes:    1 << 16,
	}

	s.srvMu.Lock()
	s.srv = srv
	s.srvMu.Unlock()
	defer func() {
		s.srvMu.Lock()
		s.srv = nil
		s.srvMu.Unlock()
	}()

	s.logf(config.Lifecycle, "HTTP listening on %s", addr)
	err := srv.ListenAndServe()
	if err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close shuts the listener down gracefully, cancels every running search
// and stops the workers. All failures are reported together.
func (s *Server) Close(ctx context.Context) error {
	var result *multierror.Error

	s.srvMu.Lock()
	srv := s.srv
	s.srvMu.Unlock()
	if srv != nil {
		if err := srv.Shutdown(ctx); err != nil {
			result = multierror.Append(result, errors.Wrap(err, "http shutdown"))
		}
	}

	s.mu.Lock()
	for id, sess := range s.sessions {
		sess.Close()
		delete(s.sessions, id)
	}
	s.mu.Unlock()

	// Queued searches belong to closed sessions; answer them without searching.
	s.pool.Stop()
	done := make(chan struct{})
	go func() {
		s.pool.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		result = multierror.Append(result, errors.Wrap(ctx.Err(), "search pool shutdown"))
	}

	hits, misses := s.cache.Stats()
	ps := s.pool.Stats()
	s.logf(config.Lifecycle, "shut down; %d searches completed, %d abandoned, %d rejected; evaluation cache %d entries, %d hits, %d misses",
		ps.Completed, ps.Abandoned, ps.Rejected, s.cache.Len(), hits, misses)
	return result.ErrorOrNil()
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/games", s.withJSON(s.handleCreate))
	mux.HandleFunc("GET /api/games/{id}", s.withJSON(s.handleSnapshot))
	mux.HandleFunc("DELETE /api/games/{id}", s.withJSON(s.handleDelete))
	mux.HandleFunc("POST /api/games/{id}/new", s.withJSON(s.handleNewGame))
	mux.HandleFunc("GET /api/games/{id}/moves", s.withJSON(s.handleLegalMoves))
	mux.HandleFunc("POST /api/games/{id}/move", s.withJSON(s.handleMove))
	mux.HandleFunc("POST /api/games/{id}/promotion", s.withJSON(s.handlePromotion))
	mux.HandleFunc("POST /api/games/{id}/ai", s.withJSON(s.handleAI))
	mux.HandleFunc("GET /api/games/{id}/status", s.withJSON(s.handleStatus))
	mux.HandleFunc("GET /api/games/{id}/analysis", s.withJSON(s.handleAnalysis))

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

// ---- sessions ----

func (s *Server) create(board *chess.Board) (*game.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if limit := s.cfg.Server.MaxSessions; limit > 0 && len(s.sessions) >= limit {
		return nil, errors.Wrapf(errors.ErrSessionLimit, "limit %d", limit)
	}

	id := "g" + strconv.FormatUint(s.nextID+1, 10)
	opts := []game.SessionOption{
		game.WithSearchTimeout(s.cfg.AI.SearchTimeout),
		game.WithLogger(s.logger, s.cfg.Verbosity),
	}
	if s.fallback != nil {
		opts = append(opts, game.WithFallback(s.fallback))
	}
	var sess *game.Session
	if board == nil {
		sess = game.NewSession(id, s.pool, opts...)
	} else {
		var err error
		if sess, err = game.NewSessionFromBoard(id, s.pool, *board, opts...); err != nil {
			return nil, err
		}
	}
	s.nextID++
	s.sessions[id] = sess
	return sess, nil
}

func (s *Server) session(r *http.Request) (*game.Session, error) {
	id := r.PathValue("id")
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, errors.Wrapf(errors.ErrUnknownGame, "game %q", id)
	}
	return sess, nil
}

// ---- JSON helpers ----

func (s *Server) withJSON(h func(http.ResponseWriter, *http.Request)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		applyAPISecurityHeaders(w.Header())
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		if r.Body != nil && r.Body != http.NoBody {
			r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxBodyBytes)
		}
		h(w, r)
	}
}

func applyAPISecurityHeaders(h http.Header) {
	h.Set("Content-Security-Policy", apiCSP)
	h.Set("Cross-Origin-Opener-Policy", "same-origin")
	h.Set("X-Content-Type-Options", "nosniff")
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.WriteHeader(status)
	_ = output.WriteJSON(w, v, false)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	body := output.ErrorToJSON(err)
	switch {
	case stderrors.Is(err, context.DeadlineExceeded):
		body.Error = "Timeout"
	case status == http.StatusInternalServerError:
		s.logf(config.Lifecycle, "internal error: %+v", err)
	}
	writeJSON(w, status, body)
}

// statusFor maps an error to its HTTP status.
func statusFor(err error) int {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}
	if stderrors.Is(err, context.Canceled) {
		return http.StatusServiceUnavailable
	}
	switch errors.Code(err) {
	case "InvalidSquare", "InvalidPromotion", "InvalidFEN", "InvalidPosition", "InvalidConfig":
		return http.StatusBadRequest
	case "NoPieceAtSource", "WrongSideToMove", "IllegalMove":
		return http.StatusUnprocessableEntity
	case "GameOver", "PromotionPending", "NoPromotionPending", "StaleSearch", "NoLegalMoves":
		return http.StatusConflict
	case "UnknownGame":
		return http.StatusNotFound
	case "Unavailable":
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// decodeBody decodes an optional JSON body into v. An empty body leaves v
// untouched.
func decodeBody(r *http.Request, v interface{}) (status int, msg string) {
	if r.Body == nil || r.Body == http.NoBody {
		return 0, ""
	}
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if stderrors.Is(err, io.EOF) {
			return 0, ""
		}
		if isBodyTooLarge(err) {
			return http.StatusRequestEntityTooLarge, "request too large"
		}
		return http.StatusBadRequest, "invalid json"
	}
	return 0, ""
}

func isBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return stderrors.As(err, &maxErr)
}

func writeBadBody(w http.ResponseWriter, status int, msg string) {
	code := "BadRequest"
	if status == http.StatusRequestEntityTooLarge {
		code = "TooLarge"
	}
	writeJSON(w, status, output.JSONError{Error: code, Message: msg})
}

// moverOf returns the side that made the move reported in r.
func moverOf(r game.MoveResult) chess.Colour {
	if r.PromotionPending {
		return r.SideToMove
	}
	return r.SideToMove.Opposite()
}

func (s *Server) logf(level int, format string, args ...interface{}) {
	if s.logger == nil || s.cfg.Verbosity < level {
		return
	}
	s.logger.Printf(format, args...)
}

// ---- API: games ----

type createBody struct {
	FEN string `json:"fen"`
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var body createBody
	if status, msg := decodeBody(r, &body); status != 0 {
		writeBadBody(w, status, msg)
		return
	}

	var start *chess.Board
	if fen := strings.TrimSpace(body.FEN); fen != "" {
		board, err := engine.NewBoardFromFEN(fen)
		if err != nil {
			s.writeError(w, err)
			return
		}
		start = &board
	}

	sess, err := s.create(start)
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Location", "/api/games/"+sess.ID())
	writeJSON(w, http.StatusCreated, output.SnapshotToJSON(sess.Snapshot()))
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, output.SnapshotToJSON(sess.Snapshot()))
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.mu.Lock()
	delete(s.sessions, sess.ID())
	s.mu.Unlock()
	sess.Close()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, output.SnapshotToJSON(sess.NewGame()))
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, output.StatusToJSON(sess.GameStatus()))
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	snap := sess.Snapshot()
	analysis, err := processing.AnalyzeGame(snap.Start, snap.History)
	if err != nil {
		// The session only records moves the engine accepted.
		s.writeError(w, errors.WithStack(err))
		return
	}
	writeJSON(w, http.StatusOK, output.AnalysisToJSON(analysis))
}

// ---- API: moves ----

func (s *Server) handleLegalMoves(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	from := strings.TrimSpace(r.URL.Query().Get("from"))
	squares, err := sess.LegalMoves(from)
	if err != nil {
		s.writeError(w, err)
		return
	}
	resp := output.JSONLegalMoves{From: strings.ToLower(from), Destinations: make([]string, 0, len(squares))}
	for _, sq := range squares {
		resp.Destinations = append(resp.Destinations, sq.String())
	}
	writeJSON(w, http.StatusOK, resp)
}

type moveBody struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Promotion string `json:"promotion"`
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	var body moveBody
	if status, msg := decodeBody(r, &body); status != 0 {
		writeBadBody(w, status, msg)
		return
	}

	result, err := sess.MakeMove(body.From, body.To, body.Promotion)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, output.MoveResultToJSON(result, moverOf(result)))
}

type promotionBody struct {
	Piece string `json:"piece"`
}

func (s *Server) handlePromotion(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	var body promotionBody
	if status, msg := decodeBody(r, &body); status != 0 {
		writeBadBody(w, status, msg)
		return
	}

	result, err := sess.ChoosePromotion(body.Piece)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, output.MoveResultToJSON(result, moverOf(result)))
}

type aiBody struct {
	Depth      int    `json:"depth"`
	Difficulty string `json:"difficulty"`
}

// depth resolves the requested search depth: an explicit depth wins over a
// difficulty, and the configured difficulty applies when neither is given.
func (b aiBody) depth(def ai.Difficulty) (int, error) {
	switch {
	case b.Depth != 0:
		return ai.ClampDepth(b.Depth), nil
	case strings.TrimSpace(b.Difficulty) != "":
		d, err := ai.ParseDifficulty(b.Difficulty)
		if err != nil {
			return 0, err
		}
		return d.Depth(), nil
	}
	return def.Depth(), nil
}

func (s *Server) handleAI(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	var body aiBody
	if status, msg := decodeBody(r, &body); status != 0 {
		writeBadBody(w, status, msg)
		return
	}
	depth, err := body.depth(s.cfg.AI.Difficulty)
	if err != nil {
		s.writeError(w, err)
		return
	}

	result, err := sess.AIMove(r.Context(), depth)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, output.AIResultToJSON(result, moverOf(result.MoveResult)))
}
