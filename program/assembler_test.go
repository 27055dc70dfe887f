package program

import (
	"testing"

	"github.com/keurnel/x86asm/codec"
)

func TestAssemblerLabelAndLoop(t *testing.T) {
	a := New(codec.New())
	src := "start:\nmov eax, 1\njmp start\n"
	if err := a.ParseFile(src); err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if err := a.ProcessNodes(0); err != nil {
		t.Fatalf("ProcessNodes: %v", err)
	}
	got, err := a.Hexify()
	if err != nil {
		t.Fatalf("Hexify: %v", err)
	}
	want := "b801000000ebf9"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestAssemblerArithmeticOperand(t *testing.T) {
	a := New(codec.New())
	if err := a.ParseFile("mov eax, 2+3\n"); err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if err := a.ProcessNodes(0); err != nil {
		t.Fatalf("ProcessNodes: %v", err)
	}
	got, err := a.Hexify()
	if err != nil {
		t.Fatalf("Hexify: %v", err)
	}
	want := "b805000000"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestAssemblerDataDirectiveExpansion(t *testing.T) {
	a := New(codec.New())
	if err := a.ParseFile("db 0x1, 0x2, 0x3\n"); err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if err := a.ProcessNodes(0); err != nil {
		t.Fatalf("ProcessNodes: %v", err)
	}
	b, err := a.Assemble()
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if len(b) != 3 {
		t.Fatalf("got %d bytes, want 3", len(b))
	}
}

func TestAssemblerDuplicateLabelIsError(t *testing.T) {
	a := New(codec.New())
	src := "start:\nmov eax, 1\nstart:\nnop\n"
	if err := a.ParseFile(src); err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if err := a.ProcessNodes(0); err == nil {
		t.Error("expected a duplicate label error")
	}
}

func TestAssemblerHistoryTracksLineExpansion(t *testing.T) {
	a := New(codec.New())
	src := "start:\ndb 1, 2\nnop\n"
	if err := a.ParseFile(src); err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	changes := a.History()
	if len(changes) != 3 {
		t.Fatalf("got %d line changes, want 3", len(changes))
	}
	if changes[1].Kind != "expanding" {
		t.Errorf("line 2 kind = %v, want expanding", changes[1].Kind)
	}
}

func TestAssemblerBindAddressAbsolute(t *testing.T) {
	a := New(codec.New())
	a.BindAddress("entry", 0x400000)
	if err := a.ParseFile("call entry\n"); err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if err := a.ProcessNodes(0); err != nil {
		t.Fatalf("ProcessNodes: %v", err)
	}
	got, err := a.Hexify()
	if err != nil {
		t.Fatalf("Hexify: %v", err)
	}
	// A fixed-label target substitutes "dword [0xADDR]" even for a relative
	// mnemonic, which the near-indirect "call m32" form then matches.
	want := "ff1500004000"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
