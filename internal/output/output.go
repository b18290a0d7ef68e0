// Package output renders boards, move lists and API payloads for explosive
// chess as text and JSON.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/lgbarn/explosive-chess-go/internal/chess"
	"github.com/lgbarn/explosive-chess-go/internal/game"
	"github.com/lgbarn/explosive-chess-go/internal/processing"
)

// OutputWriter handles formatted output with line length control.
type OutputWriter struct {
	w             io.Writer
	lineLength    int
	maxLineLength int
	needsSpace    bool
}

// NewOutputWriter creates a new output writer.
func NewOutputWriter(w io.Writer, maxLineLength int) *OutputWriter {
	if maxLineLength <= 0 {
		maxLineLength = 80
	}
	return &OutputWriter{
		w:             w,
		maxLineLength: maxLineLength,
	}
}

// Write writes a string, adding a space separator if needed.
func (o *OutputWriter) Write(s string) {
	if o.needsSpace && len(s) > 0 {
		if o.lineLength+1+len(s) > o.maxLineLength {
			fmt.Fprintln(o.w)
			o.lineLength = 0
			o.needsSpace = false
		} else {
			fmt.Fprint(o.w, " ")
			o.lineLength++
		}
	}

	fmt.Fprint(o.w, s)
	o.lineLength += len(s)
	o.needsSpace = true
}

// NewLine starts a new line.
func (o *OutputWriter) NewLine() {
	fmt.Fprintln(o.w)
	o.lineLength = 0
	o.needsSpace = false
}

// RenderBoard draws board with rank 8 at the top. Empty squares listed in
// marked are drawn as '*', other empty squares as '.'.
func RenderBoard(w io.Writer, board chess.Board, marked []chess.Square) {
	blast := make(map[chess.Square]bool, len(marked))
	for _, sq := range marked {
		blast[sq] = true
	}

	var sb strings.Builder
	for rank := chess.BoardSize - 1; rank >= 0; rank-- {
		sb.WriteByte(byte(chess.RankBase + rank))
		for file := 0; file < chess.BoardSize; file++ {
			sq, _ := chess.SquareAt(rank, file)
			p := board.Get(sq)
			sb.WriteByte(' ')
			switch {
			case !p.IsEmpty():
				sb.WriteByte(p.Letter())
			case blast[sq]:
				sb.WriteByte('*')
			default:
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	sb.WriteString(" ")
	for file := 0; file < chess.BoardSize; file++ {
		sb.WriteByte(' ')
		sb.WriteByte(byte(chess.FileBase + file))
	}
	sb.WriteByte('\n')
	fmt.Fprint(w, sb.String())
}

// FormatMove returns m in hyphenated long algebraic form: "e2-e4",
// "d1xd7", "a7xb8=Q".
func FormatMove(m chess.Move) string {
	sep := "-"
	if m.IsCapture() {
		sep = "x"
	}
	s := m.From.String() + sep + m.To.String()
	if m.Promotion != chess.NoKind {
		s += "=" + string(m.Promotion.Letter())
	}
	return s
}

// WriteMoveList writes history as numbered moves wrapped at maxLineLength,
// followed by result. Numbering starts at firstMove, the start position's
// move number. Exploding moves carry a "!" suffix. A history that starts
// with Black opens with "N...".
func WriteMoveList(w io.Writer, history []game.MoveRecord, firstMove uint, result string, maxLineLength int) {
	ow := NewOutputWriter(w, maxLineLength)
	number := firstMove
	if number == 0 {
		number = 1
	}
	for i, r := range history {
		switch {
		case r.Mover == chess.White:
			ow.Write(fmt.Sprintf("%d.", number))
		case i == 0:
			ow.Write(fmt.Sprintf("%d...", number))
		}
		move := FormatMove(r.Move)
		if len(r.Exploded) > 0 {
			move += "!"
		}
		ow.Write(move)
		if r.Mover == chess.Black {
			number++
		}
	}
	if result != "" {
		ow.Write(result)
	}
	ow.NewLine()
}

// WriteAnalysis writes a one-paragraph summary of a history analysis.
func WriteAnalysis(w io.Writer, a *processing.GameAnalysis) {
	fmt.Fprintf(w, "Plies: %d, captures: %d, pieces lost: white %d, black %d\n",
		a.Plies, a.Captures, a.Lost[chess.White.Index()], a.Lost[chess.Black.Index()])
	if a.BiggestBlast > 0 {
		fmt.Fprintf(w, "Biggest blast: %d pieces at ply %d\n", a.BiggestBlast, a.BiggestBlastPly)
	}
	var notes []string
	if a.RepetitionDetected() {
		notes = append(notes, "threefold repetition")
	}
	if a.FiftyMoveTriggered() {
		notes = append(notes, "fifty moves without capture or pawn move")
	}
	if a.UnderpromotionFound() {
		notes = append(notes, "underpromotion")
	}
	if len(notes) > 0 {
		fmt.Fprintf(w, "Notes: %s\n", strings.Join(notes, ", "))
	}
}
