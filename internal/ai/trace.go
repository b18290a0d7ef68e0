package ai

import (
	"strconv"

	"github.com/awalterschulze/gographviz"

	"github.com/lgbarn/explosive-chess-go/internal/chess"
	"github.com/lgbarn/explosive-chess-go/internal/errors"
)

const traceGraph = "search"

// TraceNode is one explored position. The root has Parent -1.
type TraceNode struct {
	ID     int
	Parent int
	Move   chess.Move
	Ply    int
	Score  int
	Scored bool
}

// Trace records the search tree up to a node limit. A nil *Trace records
// nothing, so the search calls it unconditionally.
type Trace struct {
	limit   int
	nodes   []TraceNode
	dropped int
}

// NewTrace creates a trace holding at most limit nodes.
func NewTrace(limit int) *Trace {
	return &Trace{limit: limit}
}

// add records a node under parent and returns its id, or -1 when the node
// is not recorded. Children of unrecorded nodes are not recorded either.
func (t *Trace) add(parent int, m chess.Move, ply int) int {
	if t == nil {
		return -1
	}
	if (len(t.nodes) > 0 && parent < 0) || len(t.nodes) >= t.limit {
		t.dropped++
		return -1
	}
	id := len(t.nodes)
	t.nodes = append(t.nodes, TraceNode{ID: id, Parent: parent, Move: m, Ply: ply})
	return id
}

func (t *Trace) setScore(id, score int) {
	if t == nil || id < 0 || id >= len(t.nodes) {
		return
	}
	t.nodes[id].Score = score
	t.nodes[id].Scored = true
}

// Nodes returns the recorded nodes in visiting order.
func (t *Trace) Nodes() []TraceNode {
	if t == nil {
		return nil
	}
	return t.nodes
}

// Dropped returns how many nodes were visited but not recorded.
func (t *Trace) Dropped() int {
	if t == nil {
		return 0
	}
	return t.dropped
}

// DOT renders the recorded tree in Graphviz format.
func (t *Trace) DOT() (string, error) {
	g := gographviz.NewGraph()
	if err := g.SetName(traceGraph); err != nil {
		return "", errors.Wrap(err, "trace graph")
	}
	if err := g.SetDir(true); err != nil {
		return "", errors.Wrap(err, "trace graph")
	}

	for _, n := range t.Nodes() {
		label := "root"
		if n.Parent >= 0 {
			label = n.Move.String()
		}
		if n.Scored {
			label += "\n" + strconv.Itoa(n.Score)
		}
		attrs := map[string]string{"label": strconv.Quote(label)}
		if err := g.AddNode(traceGraph, nodeName(n.ID), attrs); err != nil {
			return "", errors.Wrapf(err, "trace node %d", n.ID)
		}
		if n.Parent < 0 {
			continue
		}
		if err := g.AddEdge(nodeName(n.Parent), nodeName(n.ID), true, nil); err != nil {
			return "", errors.Wrapf(err, "trace edge %d", n.ID)
		}
	}
	return g.String(), nil
}

func nodeName(id int) string {
	return "n" + strconv.Itoa(id)
}
