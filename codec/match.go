package codec

import (
	"strconv"
	"strings"

	"github.com/keurnel/x86asm/internal/numeral"
	"github.com/keurnel/x86asm/registers"
)

// tokenizeLine normalises an assembly line to lowercase, collapses
// whitespace, and splits it into a mnemonic and its operand tokens. Memory
// operands ("[...]") are kept whole even though they may contain arithmetic
// that itself looks like whitespace-separated tokens.
func tokenizeLine(text string) (mnemonic string, operands []string) {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return "", nil
	}
	fields := strings.Fields(text)
	mnemonic = fields[0]
	rest := strings.TrimSpace(text[len(fields[0]):])
	if rest == "" {
		return mnemonic, nil
	}
	for _, tok := range splitTopLevelComma(rest) {
		tok = strings.TrimSpace(tok)
		if tok != "" {
			operands = append(operands, tok)
		}
	}
	return mnemonic, operands
}

// parseMemToken parses a "width_name [inner]" token, where inner is a
// register name, an integer literal, or "register ± integer".
func parseMemToken(tok string, width int) (MemOperand, bool) {
	tok = strings.TrimSpace(tok)
	open := strings.IndexByte(tok, '[')
	close := strings.LastIndexByte(tok, ']')
	if open < 0 || close < 0 || close < open {
		return MemOperand{}, false
	}
	widthName := strings.TrimSpace(tok[:open])
	if widthName != registers.WidthName(width) {
		return MemOperand{}, false
	}
	inner := strings.TrimSpace(tok[open+1 : close])
	if inner == "" {
		return MemOperand{}, false
	}

	// register ± integer, or a bare register, or a bare integer literal.
	sign := -1
	for i, c := range inner {
		if c == '+' || c == '-' {
			sign = i
			break
		}
	}
	if sign < 0 {
		if v, ok := numeral.Parse(inner); ok {
			return MemOperand{Width: width, Absolute: true, HasDisp: true, Disp: v}, true
		}
		reg, ok := registers.ByName(inner)
		if !ok || reg.Width != 32 {
			return MemOperand{}, false
		}
		return MemOperand{Width: width, HasReg: true, Reg: reg}, true
	}

	regPart := strings.TrimSpace(inner[:sign])
	dispPart := strings.TrimSpace(inner[sign:])
	reg, ok := registers.ByName(regPart)
	if !ok || reg.Width != 32 {
		return MemOperand{}, false
	}
	v, ok := numeral.Parse(dispPart)
	if !ok {
		return MemOperand{}, false
	}
	return MemOperand{Width: width, HasReg: true, Reg: reg, HasDisp: true, Disp: v}, true
}

// matched is one resolved operand after a successful template match.
type matched struct {
	pattern OperandPattern
	reg     registers.Register
	mem     MemOperand
	imm     int64
}

// matchOperands checks operand tokens against a template's pattern list and
// returns the resolved operands on success. strict mode rejects an
// immediate/relative value that would fit a narrower declared width, so
// callers scanning for the smallest encoding don't accidentally widen it.
func matchOperands(patterns []OperandPattern, tokens []string, strict bool) ([]matched, bool) {
	if len(patterns) != len(tokens) {
		return nil, false
	}
	out := make([]matched, len(patterns))
	for i, pat := range patterns {
		tok := tokens[i]
		switch pat.Kind {
		case KindRegWidth:
			reg, ok := registers.ByName(tok)
			if !ok || reg.Width != pat.Width {
				return nil, false
			}
			out[i] = matched{pattern: pat, reg: reg}

		case KindLiteralReg:
			if tok != pat.Name {
				return nil, false
			}
			reg, ok := registers.ByName(pat.Name)
			if !ok {
				return nil, false
			}
			out[i] = matched{pattern: pat, reg: reg}

		case KindImm, KindRel:
			v, ok := numeral.Parse(tok)
			if !ok || !numeral.FitsWidth(v, pat.Width) {
				return nil, false
			}
			if strict && numeral.MinimalWidth(v) < pat.Width {
				return nil, false
			}
			out[i] = matched{pattern: pat, imm: v}

		case KindMem:
			mem, ok := parseMemToken(tok, pat.Width)
			if !ok {
				return nil, false
			}
			out[i] = matched{pattern: pat, mem: mem}

		default:
			return nil, false
		}
	}
	return out, true
}

// claimSlashR picks the rm-side and reg-side operand indices for a /r
// directive. A memory operand always takes the rm slot (a register cannot
// occupy it opposite a memory operand); when both operands are registers,
// the first not-yet-claimed one takes rm and the second takes reg, matching
// the store-direction opcodes used throughout the bundled template table.
func claimSlashR(patterns []OperandPattern, claimed []bool) (rmIdx, regIdx int, ok bool) {
	isRegKind := func(k OperandKind) bool { return k == KindRegWidth || k == KindLiteralReg }

	for i, p := range patterns {
		if !claimed[i] && p.Kind == KindMem {
			claimed[i] = true
			for j, q := range patterns {
				if !claimed[j] && isRegKind(q.Kind) {
					claimed[j] = true
					return i, j, true
				}
			}
			return 0, 0, false
		}
	}

	first := -1
	for i, p := range patterns {
		if claimed[i] || !isRegKind(p.Kind) {
			continue
		}
		if first < 0 {
			first = i
			continue
		}
		claimed[first] = true
		claimed[i] = true
		return first, i, true
	}
	return 0, 0, false
}

// formatImmediate renders a decoded immediate or relative value as the
// canonical "0x.." hex text used by the disassembler.
func formatImmediate(v int64) string {
	if v < 0 {
		return "-0x" + strconv.FormatInt(-v, 16)
	}
	return "0x" + strconv.FormatInt(v, 16)
}

// formatMem renders a decoded memory operand per §4.4's text forms.
func formatMem(m MemOperand) string {
	width := registers.WidthName(m.Width)
	switch {
	case m.Absolute:
		return width + " [" + formatImmediate(m.Disp) + "]"
	case m.HasDisp && m.Disp != 0:
		return width + " [" + m.Reg.Name + "+" + formatImmediate(m.Disp) + "]"
	default:
		return width + " [" + m.Reg.Name + "]"
	}
}
