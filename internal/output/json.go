package output

import (
	"encoding/json"
	"io"

	"github.com/lgbarn/explosive-chess-go/internal/ai"
	"github.com/lgbarn/explosive-chess-go/internal/chess"
	"github.com/lgbarn/explosive-chess-go/internal/engine"
	"github.com/lgbarn/explosive-chess-go/internal/errors"
	"github.com/lgbarn/explosive-chess-go/internal/game"
	"github.com/lgbarn/explosive-chess-go/internal/processing"
)

// JSONPiece is one occupied square.
type JSONPiece struct {
	Square string `json:"square"`
	Color  string `json:"color"` // "white" or "black"
	Kind   string `json:"kind"`
}

// JSONStatus is the status of a position.
type JSONStatus struct {
	Status string `json:"status"`           // in-progress, check, checkmate, stalemate, king-destroyed
	Winner string `json:"winner,omitempty"` // white or black; empty for draws and open games
	Result string `json:"result"`           // 1-0, 0-1, 1/2-1/2 or *
}

// JSONMove is one applied move.
type JSONMove struct {
	Ply       int      `json:"ply,omitempty"`
	Color     string   `json:"color"`
	UCI       string   `json:"uci"`
	From      string   `json:"from"`
	To        string   `json:"to"`
	Promotion string   `json:"promotion,omitempty"`
	Capture   bool     `json:"capture,omitempty"`
	Captured  string   `json:"captured,omitempty"`
	Exploded  []string `json:"exploded,omitempty"`
	Destroyed []string `json:"destroyed,omitempty"`
	FEN       string   `json:"fen,omitempty"`
}

// JSONBoard is a board position.
type JSONBoard struct {
	FEN        string      `json:"fen"`
	SideToMove string      `json:"sideToMove"`
	Pieces     []JSONPiece `json:"pieces"`
}

// JSONSnapshot is the full state of a game.
type JSONSnapshot struct {
	ID string `json:"id,omitempty"`
	JSONBoard
	JSONStatus
	State            string     `json:"state"`
	PromotionPending bool       `json:"promotionPending"`
	PendingMove      *JSONMove  `json:"pendingMove,omitempty"`
	History          []JSONMove `json:"history"`
	Generation       uint64     `json:"generation"`
}

// JSONMoveResult is the effect of one move or promotion choice.
type JSONMoveResult struct {
	JSONBoard
	JSONStatus
	Move             JSONMove `json:"move"`
	Exploded         []string `json:"exploded"`
	Destroyed        []string `json:"destroyed"`
	PromotionPending bool     `json:"promotionPending"`
}

// JSONSearch describes how an AI move was chosen.
type JSONSearch struct {
	Strategy       string  `json:"strategy"`
	Depth          int     `json:"depth"`
	Difficulty     string  `json:"difficulty,omitempty"` // Level matching Depth; empty for degraded moves
	Nodes          int     `json:"nodes"`
	Score          int     `json:"score"`
	BlastGain      int     `json:"blastGain"`
	WinProbability float32 `json:"winProbability"`
	Degraded       bool    `json:"degraded"`
	Trace          string  `json:"trace,omitempty"` // Graphviz DOT
}

// JSONAIResult is an applied AI move.
type JSONAIResult struct {
	JSONMoveResult
	Search JSONSearch `json:"search"`
}

// JSONLegalMoves lists the destinations of one piece.
type JSONLegalMoves struct {
	From         string   `json:"from"`
	Destinations []string `json:"destinations"`
}

// JSONAnalysis summarises a game history.
type JSONAnalysis struct {
	Plies           int  `json:"plies"`
	Captures        int  `json:"captures"`
	WhiteLost       int  `json:"whiteLost"`
	BlackLost       int  `json:"blackLost"`
	BiggestBlast    int  `json:"biggestBlast"`
	BiggestBlastPly int  `json:"biggestBlastPly,omitempty"`
	KingDestroyed   bool `json:"kingDestroyed"`
	FiftyMoveRule   bool `json:"fiftyMoveRule"`
	Repetition      bool `json:"repetition"`
	Underpromotion  bool `json:"underpromotion"`
}

// JSONError is the body of every failed request.
type JSONError struct {
	Error   string `json:"error"` // Taxonomy code, e.g. IllegalMove
	Message string `json:"message"`
}

// BoardToJSON converts a board.
func BoardToJSON(board chess.Board) JSONBoard {
	jb := JSONBoard{
		FEN:        engine.BoardToFEN(board),
		SideToMove: board.ToMove.String(),
		Pieces:     make([]JSONPiece, 0, chess.NumSquares),
	}
	for sq := chess.Square(0); sq < chess.NumSquares; sq++ {
		p := board.Get(sq)
		if p.IsEmpty() {
			continue
		}
		jb.Pieces = append(jb.Pieces, JSONPiece{Square: sq.String(), Color: p.Colour.String(), Kind: p.Kind.String()})
	}
	return jb
}

// StatusToJSON converts a status.
func StatusToJSON(status chess.Status) JSONStatus {
	js := JSONStatus{
		Status: status.State.String(),
		Result: status.Result(),
	}
	if status.Winner != chess.NoColour {
		js.Winner = status.Winner.String()
	}
	return js
}

// MoveToJSON converts a bare move made by mover.
func MoveToJSON(m chess.Move, mover chess.Colour) JSONMove {
	jm := JSONMove{
		Color:   mover.String(),
		UCI:     m.String(),
		Capture: m.IsCapture(),
	}
	if m.From.Valid() {
		jm.From = m.From.String()
	}
	if m.To.Valid() {
		jm.To = m.To.String()
	}
	if m.Promotion != chess.NoKind {
		jm.Promotion = m.Promotion.String()
	}
	return jm
}

// RecordToJSON converts a history entry.
func RecordToJSON(r game.MoveRecord) JSONMove {
	jm := MoveToJSON(r.Move, r.Mover)
	jm.Ply = r.Ply
	jm.Exploded = squareNames(r.Exploded)
	jm.Destroyed = pieceNames(r.Destroyed)
	jm.FEN = r.FEN
	if !r.Captured.IsEmpty() {
		jm.Captured = r.Captured.String()
	}
	return jm
}

// SnapshotToJSON converts a session snapshot.
func SnapshotToJSON(s game.Snapshot) JSONSnapshot {
	js := JSONSnapshot{
		ID:               s.ID,
		JSONBoard:        BoardToJSON(s.Board),
		JSONStatus:       StatusToJSON(s.Status),
		State:            s.State.String(),
		PromotionPending: s.PromotionPending,
		History:          make([]JSONMove, 0, len(s.History)),
		Generation:       s.Generation,
	}
	if s.PromotionPending {
		pending := MoveToJSON(s.PendingMove, s.Board.ToMove)
		js.PendingMove = &pending
	}
	for _, r := range s.History {
		js.History = append(js.History, RecordToJSON(r))
	}
	return js
}

// MoveResultToJSON converts the effect of a move. mover is the side that
// made it.
func MoveResultToJSON(r game.MoveResult, mover chess.Colour) JSONMoveResult {
	return JSONMoveResult{
		JSONBoard:        BoardToJSON(r.Board),
		JSONStatus:       StatusToJSON(r.Status),
		Move:             MoveToJSON(r.Move, mover),
		Exploded:         squareNames(r.Exploded),
		Destroyed:        pieceNames(r.Destroyed),
		PromotionPending: r.PromotionPending,
	}
}

// SearchToJSON converts search details. A failed DOT export omits the trace.
func SearchToJSON(r ai.Result) JSONSearch {
	js := JSONSearch{
		Strategy:       r.Strategy,
		Depth:          r.Depth,
		Nodes:          r.Nodes,
		Score:          r.Score,
		BlastGain:      r.BlastGain,
		WinProbability: r.WinProbability,
		Degraded:       r.Degraded,
	}
	if !r.Degraded && r.Depth > 0 {
		js.Difficulty = ai.DifficultyForDepth(r.Depth).String()
	}
	if r.Trace != nil {
		if dot, err := r.Trace.DOT(); err == nil {
			js.Trace = dot
		}
	}
	return js
}

// AIResultToJSON converts an applied AI move.
func AIResultToJSON(r game.AIResult, mover chess.Colour) JSONAIResult {
	return JSONAIResult{
		JSONMoveResult: MoveResultToJSON(r.MoveResult, mover),
		Search:         SearchToJSON(r.Search),
	}
}

// AnalysisToJSON converts a history analysis.
func AnalysisToJSON(a *processing.GameAnalysis) JSONAnalysis {
	return JSONAnalysis{
		Plies:           a.Plies,
		Captures:        a.Captures,
		WhiteLost:       a.Lost[chess.White.Index()],
		BlackLost:       a.Lost[chess.Black.Index()],
		BiggestBlast:    a.BiggestBlast,
		BiggestBlastPly: a.BiggestBlastPly,
		KingDestroyed:   a.KingDestroyed,
		FiftyMoveRule:   a.FiftyMoveTriggered(),
		Repetition:      a.RepetitionDetected(),
		Underpromotion:  a.UnderpromotionFound(),
	}
}

// ErrorToJSON converts an error to its wire form.
func ErrorToJSON(err error) JSONError {
	return JSONError{Error: errors.Code(err), Message: err.Error()}
}

// WriteJSON encodes v to w. HTML characters are left unescaped.
func WriteJSON(w io.Writer, v interface{}, indent bool) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

func squareNames(squares []chess.Square) []string {
	names := make([]string, 0, len(squares))
	for _, sq := range squares {
		names = append(names, sq.String())
	}
	return names
}

func pieceNames(pieces []chess.Piece) []string {
	names := make([]string, 0, len(pieces))
	for _, p := range pieces {
		names = append(names, p.String())
	}
	return names
}
