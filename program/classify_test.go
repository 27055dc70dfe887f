package program

import "testing"

func TestClassifyLineEmpty(t *testing.T) {
	nodes, err := classifyLine("   ", 1)
	if err != nil || nodes != nil {
		t.Errorf("got (%v, %v), want (nil, nil)", nodes, err)
	}
}

func TestClassifyLineComment(t *testing.T) {
	nodes, err := classifyLine("mov eax, ebx ; swap later", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(nodes) != 1 {
		t.Fatalf("got %d nodes, want 1", len(nodes))
	}
	ins, ok := nodes[0].(*InstructionNode)
	if !ok || ins.Text != "mov eax, ebx" {
		t.Errorf("got %+v, want trimmed instruction text", nodes[0])
	}
}

func TestClassifyLineMacro(t *testing.T) {
	nodes, err := classifyLine("#include foo.asm", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m, ok := nodes[0].(*MacroNode)
	if !ok || m.Text != "include foo.asm" {
		t.Errorf("got %+v", nodes[0])
	}
}

func TestClassifyLineLabelOnly(t *testing.T) {
	nodes, err := classifyLine("start:", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(nodes) != 1 {
		t.Fatalf("got %d nodes, want 1", len(nodes))
	}
	lbl, ok := nodes[0].(*LabelNode)
	if !ok || lbl.Name != "start" {
		t.Errorf("got %+v", nodes[0])
	}
}

func TestClassifyLineLabelWithInstruction(t *testing.T) {
	nodes, err := classifyLine("start: mov eax, 1", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(nodes) != 2 {
		t.Fatalf("got %d nodes, want 2", len(nodes))
	}
	if _, ok := nodes[0].(*LabelNode); !ok {
		t.Errorf("nodes[0] = %+v, want LabelNode", nodes[0])
	}
	ins, ok := nodes[1].(*InstructionNode)
	if !ok || ins.Text != "mov eax, 1" {
		t.Errorf("nodes[1] = %+v", nodes[1])
	}
}

func TestClassifyLineMultipleColonsIsError(t *testing.T) {
	if _, err := classifyLine("a: b: c", 1); err == nil {
		t.Error("expected an error for more than one ':'")
	}
}

func TestClassifyLineDataDirectiveExpands(t *testing.T) {
	nodes, err := classifyLine("db 1, 2, 3", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(nodes) != 3 {
		t.Fatalf("got %d nodes, want 3", len(nodes))
	}
	for i, want := range []string{"db 1", "db 2", "db 3"} {
		ins := nodes[i].(*InstructionNode)
		if ins.Text != want {
			t.Errorf("nodes[%d].Text = %q, want %q", i, ins.Text, want)
		}
	}
}

func TestClassifyLinePlainInstruction(t *testing.T) {
	nodes, err := classifyLine("mov eax, ebx", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(nodes) != 1 {
		t.Fatalf("got %d nodes, want 1", len(nodes))
	}
}
