package history_test

import (
	"testing"

	"github.com/keurnel/x86asm/internal/history"
)

func TestTrackerRecordsExpandingAndContracting(t *testing.T) {
	var tr history.Tracker

	tr.Record(1, []int{0})          // mov eax, 1
	tr.Record(2, nil)               // blank line
	tr.Record(3, []int{1, 2, 3})    // db 1, 2, 3
	tr.Record(4, []int{4})          // nop

	changes := tr.History()
	if len(changes) != 4 {
		t.Fatalf("got %d changes, want 4", len(changes))
	}
	if changes[1].Kind != history.KindContracting {
		t.Errorf("line 2 kind = %v, want contracting", changes[1].Kind)
	}
	if changes[2].Kind != history.KindExpanding {
		t.Errorf("line 3 kind = %v, want expanding", changes[2].Kind)
	}
	if changes[0].Kind != history.KindUnchanged {
		t.Errorf("line 1 kind = %v, want unchanged", changes[0].Kind)
	}

	line, ok := tr.LineFor(2)
	if !ok || line != 3 {
		t.Errorf("LineFor(2) = (%d, %v), want (3, true)", line, ok)
	}

	nodes := tr.NodesFor(3)
	if len(nodes) != 3 || nodes[0] != 1 || nodes[2] != 3 {
		t.Errorf("NodesFor(3) = %v, want [1 2 3]", nodes)
	}

	if nodes := tr.NodesFor(99); nodes != nil {
		t.Errorf("NodesFor(99) = %v, want nil", nodes)
	}
}
