package output

import (
	"fmt"
	"io"

	"github.com/lgbarn/explosive-chess-go/internal/chess"
	"github.com/lgbarn/explosive-chess-go/internal/game"
)

// TextWriter writes snapshots as a diagram, move list and status line.
type TextWriter struct {
	w             io.Writer
	maxLineLength int
}

// NewTextWriter creates a new text writer.
func NewTextWriter(w io.Writer, maxLineLength int) *TextWriter {
	return &TextWriter{
		w:             w,
		maxLineLength: maxLineLength,
	}
}

// WriteSnapshot writes s. The blast of the last move is marked on the
// diagram.
func (tw *TextWriter) WriteSnapshot(s game.Snapshot) error {
	RenderBoard(tw.w, s.Board, lastBlast(s))
	if len(s.History) > 0 {
		WriteMoveList(tw.w, s.History, s.Start.MoveNumber, s.Status.Result(), tw.maxLineLength)
	}
	line := fmt.Sprintf("%s to move, %s", s.Board.ToMove, s.Status.State)
	if s.PromotionPending {
		line += ", promotion pending on " + s.PendingMove.To.String()
	}
	_, err := fmt.Fprintf(tw.w, "%s\nFEN: %s\n", line, s.FEN)
	return err
}

// Close closes the text writer.
func (tw *TextWriter) Close() error {
	return nil
}

func lastBlast(s game.Snapshot) []chess.Square {
	if len(s.History) == 0 {
		return nil
	}
	return s.History[len(s.History)-1].Exploded
}
