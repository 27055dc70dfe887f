package numeral_test

import (
	"testing"

	"github.com/keurnel/x86asm/internal/numeral"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"0x10", 16, true},
		{"10h", 16, true},
		{"1010b", 10, true},
		{"17o", 15, true},
		{"42", 42, true},
		{"-42", -42, true},
		{"+42", 42, true},
		{"0x11223344", 0x11223344, true},
		{"", 0, false},
		{"not-a-number", 0, false},
		{"0x", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := numeral.Parse(tt.in)
			if ok != tt.ok {
				t.Fatalf("Parse(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Errorf("Parse(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestFitsWidth(t *testing.T) {
	if !numeral.FitsWidth(255, 8) {
		t.Error("255 should fit in 8 bits (unsigned)")
	}
	if numeral.FitsWidth(256, 8) {
		t.Error("256 should not fit in 8 bits")
	}
	if !numeral.FitsWidth(-128, 8) {
		t.Error("-128 should fit in 8 bits (signed)")
	}
	if numeral.FitsWidth(-129, 8) {
		t.Error("-129 should not fit in 8 bits")
	}
}

func TestMinimalWidth(t *testing.T) {
	tests := map[int64]int{
		0:          8,
		255:        8,
		256:        16,
		65535:      16,
		65536:      32,
		-1:         8,
		-129:       16,
		4294967296: 64,
	}
	for v, want := range tests {
		if got := numeral.MinimalWidth(v); got != want {
			t.Errorf("MinimalWidth(%d) = %d, want %d", v, got, want)
		}
	}
}
