package codec_test

import (
	"encoding/hex"
	"testing"

	"github.com/keurnel/x86asm/codec"
)

func TestAssembleHexKnownForms(t *testing.T) {
	c := codec.New()
	tests := []struct {
		asm  string
		want string
	}{
		{"nop", "90"},
		{"push eax", "50"},
		{"pop ecx", "59"},
		{"mov eax, ecx", "89c8"},
		{"mov eax, 0x10", "b810000000"},
		{"add eax, ecx", "01c8"},
		{"xor eax, eax", "31c0"},
		{"ret", "c3"},
	}
	for _, tt := range tests {
		t.Run(tt.asm, func(t *testing.T) {
			got, err := c.AssembleHex(tt.asm)
			if err != nil {
				t.Fatalf("AssembleHex(%q) error: %v", tt.asm, err)
			}
			if got != tt.want {
				t.Errorf("AssembleHex(%q) = %q, want %q", tt.asm, got, tt.want)
			}
		})
	}
}

func TestAssembleNoMatch(t *testing.T) {
	c := codec.New()
	_, err := c.Assemble("frobnicate eax, ebx")
	if err == nil {
		t.Fatal("expected error for unmatched mnemonic")
	}
}

func TestAssembleSmallestPicksNarrowerImmediate(t *testing.T) {
	c := codec.New()
	b, ok := c.AssembleSmallest("add eax, 0x5")
	if !ok {
		t.Fatal("expected a match")
	}
	// 83 /0 ib: opcode, modrm, 1-byte immediate.
	if len(b) != 3 {
		t.Errorf("got %d bytes (% x), want the 3-byte imm8 form", len(b), b)
	}
}

func TestAssembleLazyAcceptsWiderImmediate(t *testing.T) {
	c := codec.New()
	b, ok := c.AssembleLazy("add eax, 0x5")
	if !ok || len(b) == 0 {
		t.Fatal("expected a lazy match")
	}
}

func TestDecodeRoundTrip(t *testing.T) {
	c := codec.New()
	cases := []string{"mov eax, ecx", "add eax, ecx", "xor eax, eax", "push eax", "ret", "nop"}
	for _, asm := range cases {
		t.Run(asm, func(t *testing.T) {
			b, err := c.Assemble(asm)
			if err != nil {
				t.Fatalf("Assemble(%q): %v", asm, err)
			}
			text, n, ok := c.Decode(b)
			if !ok {
				t.Fatalf("Decode(% x) did not match", b)
			}
			if n != len(b) {
				t.Errorf("Decode consumed %d bytes, want %d", n, len(b))
			}
			if text != asm {
				t.Errorf("Decode(% x) = %q, want %q", b, text, asm)
			}
		})
	}
}

func TestMemoryOperandEncoding(t *testing.T) {
	c := codec.New()
	// mov eax, dword [ebx] -> 8b 03
	got, err := c.AssembleHex("mov eax, dword [ebx]")
	if err != nil {
		t.Fatalf("AssembleHex: %v", err)
	}
	if got != "8b03" {
		t.Errorf("got %q, want %q", got, "8b03")
	}
}

func TestMemoryImmediateEncodingRoundTrip(t *testing.T) {
	c := codec.New()
	// mov byte [eax+0x48], 0x69: c6 /0 ib against a register-relative byte
	// operand, the spec's own "c6" disassembly example (disp8 0x48, imm8
	// 0x69, reg field 0).
	got, err := c.AssembleHex("mov byte [eax+0x48], 0x69")
	if err != nil {
		t.Fatalf("AssembleHex: %v", err)
	}
	want := "c6404869"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}

	b, err := hex.DecodeString(got)
	if err != nil {
		t.Fatalf("DecodeString: %v", err)
	}
	text, ok := c.Disassemble(b)
	if !ok {
		t.Fatalf("Disassemble(% x) did not match", b)
	}
	if text != "mov byte [eax+0x48], 0x69" {
		t.Errorf("Disassemble(% x) = %q", b, text)
	}

	text, ok = c.DisassembleHex(got)
	if !ok || text != "mov byte [eax+0x48], 0x69" {
		t.Errorf("DisassembleHex(%q) = %q, %v", got, text, ok)
	}

	// mov dword [ecx+0x10], 0x1000: c7 /0 id.
	got, err = c.AssembleHex("mov dword [ecx+0x10], 0x1000")
	if err != nil {
		t.Fatalf("AssembleHex: %v", err)
	}
	want = "c7411000100000"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestDisassembleHexInvalidInput(t *testing.T) {
	c := codec.New()
	if _, ok := c.DisassembleHex("abc"); ok {
		t.Error("expected ok == false for odd-length hex")
	}
}

func TestAbsoluteMemoryOperandEncoding(t *testing.T) {
	c := codec.New()
	got, err := c.AssembleHex("xchg dword [0x7b], eax")
	if err != nil {
		t.Fatalf("AssembleHex: %v", err)
	}
	// mod=00 rm=101 (reg field 0 from eax) + disp32(0x7b) little-endian,
	// per the literal encoding rule for absolute addressing.
	want := "87057b000000"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
