package codec

import "testing"

func TestTokenizeLine(t *testing.T) {
	mnemonic, ops := tokenizeLine("  MOV   EAX, dword [EBX+0x10]  ")
	if mnemonic != "mov" {
		t.Errorf("mnemonic = %q, want mov", mnemonic)
	}
	want := []string{"eax", "dword [ebx+0x10]"}
	if len(ops) != len(want) {
		t.Fatalf("got %d operands, want %d: %v", len(ops), len(want), ops)
	}
	for i := range want {
		if ops[i] != want[i] {
			t.Errorf("operand %d = %q, want %q", i, ops[i], want[i])
		}
	}
}

func TestParseMemTokenRegisterPlusDisplacement(t *testing.T) {
	mem, ok := parseMemToken("dword [ebx+0x10]", 32)
	if !ok {
		t.Fatal("expected a match")
	}
	if !mem.HasReg || mem.Reg.Name != "ebx" {
		t.Errorf("reg = %+v, want ebx", mem.Reg)
	}
	if mem.Disp != 0x10 {
		t.Errorf("disp = %#x, want 0x10", mem.Disp)
	}
}

func TestParseMemTokenAbsolute(t *testing.T) {
	mem, ok := parseMemToken("dword [0x1000]", 32)
	if !ok {
		t.Fatal("expected a match")
	}
	if !mem.Absolute || mem.Disp != 0x1000 {
		t.Errorf("mem = %+v, want absolute 0x1000", mem)
	}
}

func TestParseMemTokenWidthMismatch(t *testing.T) {
	if _, ok := parseMemToken("word [ebx]", 32); ok {
		t.Error("width mismatch should not match")
	}
}

func TestMatchOperandsStrictRejectsNarrowerFit(t *testing.T) {
	patterns := []OperandPattern{{Kind: KindImm, Width: 32}}
	if _, ok := matchOperands(patterns, []string{"0x5"}, true); ok {
		t.Error("strict mode should reject an imm32 slot for a value that fits in 8 bits")
	}
	if _, ok := matchOperands(patterns, []string{"0x5"}, false); !ok {
		t.Error("lazy mode should accept it")
	}
}
