package codec

import (
	"strings"

	"github.com/keurnel/x86asm/registers"
)

// OperandKind classifies one slot of a template's operand pattern.
type OperandKind int

const (
	KindRegWidth  OperandKind = iota // rW: any register of width W
	KindLiteralReg                  // a specific register name, e.g. "eax"
	KindImm                          // immW
	KindRel                          // relW
	KindMem                          // mW
)

// OperandPattern is one slot of a template's operand list, e.g. "r32",
// "eax", "imm8", "rel32", "m32".
type OperandPattern struct {
	Kind  OperandKind
	Width int    // 8/16/32/64
	Name  string // register name, only set when Kind == KindLiteralReg
}

// parseOperandPattern recognises one whitespace/comma-separated token from
// a template's operand_pattern field.
func parseOperandPattern(tok string) (OperandPattern, bool) {
	tok = strings.ToLower(strings.TrimSpace(tok))
	if tok == "" {
		return OperandPattern{}, false
	}

	if w, ok := widthSuffix(tok, "r"); ok {
		return OperandPattern{Kind: KindRegWidth, Width: w}, true
	}
	if w, ok := widthSuffix(tok, "imm"); ok {
		return OperandPattern{Kind: KindImm, Width: w}, true
	}
	if w, ok := widthSuffix(tok, "rel"); ok {
		return OperandPattern{Kind: KindRel, Width: w}, true
	}
	if w, ok := widthSuffix(tok, "m"); ok {
		return OperandPattern{Kind: KindMem, Width: w}, true
	}
	if _, ok := registers.ByName(tok); ok {
		return OperandPattern{Kind: KindLiteralReg, Name: tok}, true
	}
	return OperandPattern{}, false
}

// widthSuffix reports whether tok is exactly prefix followed by one of the
// recognised widths (8/16/32/64), e.g. widthSuffix("imm32", "imm") -> 32, true.
func widthSuffix(tok, prefix string) (int, bool) {
	if !strings.HasPrefix(tok, prefix) {
		return 0, false
	}
	rest := tok[len(prefix):]
	switch rest {
	case "8":
		return 8, true
	case "16":
		return 16, true
	case "32":
		return 32, true
	case "64":
		return 64, true
	default:
		return 0, false
	}
}

// MemOperand is a parsed "[inner]" memory operand token.
type MemOperand struct {
	Width int

	HasReg bool
	Reg    registers.Register

	HasDisp bool
	Disp    int64

	// Absolute is true when the operand has no base register, only a
	// bare integer literal, e.g. "dword [0x1000]".
	Absolute bool
}

// splitTopLevelComma splits s on commas that are not nested inside
// brackets, mirroring the encoder's top-level operand split.
func splitTopLevelComma(s string) []string {
	var out []string
	depth := 0
	start := 0
	for i, c := range s {
		switch c {
		case '[':
			depth++
		case ']':
			depth--
		case ',':
			if depth == 0 {
				out = append(out, s[start:i])
				start = i + 1
			}
		}
	}
	out = append(out, s[start:])
	for i := range out {
		out[i] = strings.TrimSpace(out[i])
	}
	return out
}
