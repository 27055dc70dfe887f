// Package history tracks how a single line of program source expands into
// zero or more program nodes, so a caller can trace a failing node back to
// the source line that produced it. A `db 1, 2, 3` line expands into three
// instruction nodes; a blank or comment-only line expands into none; a
// label followed by a statement on the same line produces the label node
// plus the statement's nodes; every other line produces exactly one node.
//
// Adapted from the teacher's internal/lineMap package and its
// expanding/contracting LineChange vocabulary, rebuilt from scratch because
// the original Instance.Update/changes pair never populated the change map it
// returned and Tracker.Track discarded the error New returns.
package history

// ChangeKind classifies how a source line relates to the nodes it produced.
type ChangeKind string

const (
	// KindUnchanged: the line produced exactly one node.
	KindUnchanged ChangeKind = "unchanged"
	// KindExpanding: the line produced more than one node (e.g. db/dw/dd/dq
	// with several comma-separated values, or a label with a statement).
	KindExpanding ChangeKind = "expanding"
	// KindContracting: the line produced no node (e.g. blank or comment-only).
	KindContracting ChangeKind = "contracting"
)

// LineChange records the node indices a single source line produced.
type LineChange struct {
	Line    int // 1-based source line number
	Kind    ChangeKind
	NodeIDs []int // indices into the Assembler's node list, in order
}

// Tracker accumulates LineChange records as a program is parsed. The zero
// value is ready to use.
type Tracker struct {
	changes []LineChange
	byNode  map[int]int // node index -> source line number
}

// Record registers that sourceLine produced the given node indices (possibly
// none). Call this once per source line, in source order.
func (t *Tracker) Record(sourceLine int, nodeIDs []int) {
	if t.byNode == nil {
		t.byNode = make(map[int]int)
	}

	kind := KindUnchanged
	switch {
	case len(nodeIDs) == 0:
		kind = KindContracting
	case len(nodeIDs) > 1:
		kind = KindExpanding
	}

	ids := append([]int(nil), nodeIDs...)
	t.changes = append(t.changes, LineChange{Line: sourceLine, Kind: kind, NodeIDs: ids})
	for _, id := range ids {
		t.byNode[id] = sourceLine
	}
}

// History returns every recorded LineChange, in source order.
func (t *Tracker) History() []LineChange {
	out := make([]LineChange, len(t.changes))
	copy(out, t.changes)
	return out
}

// LineFor returns the source line number that produced the given node index.
func (t *Tracker) LineFor(nodeIndex int) (int, bool) {
	line, ok := t.byNode[nodeIndex]
	return line, ok
}

// NodesFor returns the node indices produced by a given source line, or nil
// if that line was never recorded.
func (t *Tracker) NodesFor(sourceLine int) []int {
	for _, c := range t.changes {
		if c.Line == sourceLine {
			return c.NodeIDs
		}
	}
	return nil
}
