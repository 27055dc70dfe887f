package program

import (
	"fmt"
	"strings"

	"github.com/keurnel/x86asm/internal/numeral"
)

// labelTarget is what a label name resolves to during substitution: either
// a position derived from code layout (an offset label, Fixed == false) or
// a caller-supplied absolute address (a fixed label, Fixed == true).
type labelTarget struct {
	Fixed bool
	Value int64
}

// isRelativeMnemonic reports whether an instruction's mnemonic takes a
// relative displacement operand: every jump (mnemonic begins with 'j') and
// call.
func isRelativeMnemonic(text string) bool {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(text)))
	if len(fields) == 0 {
		return false
	}
	m := fields[0]
	return strings.HasPrefix(m, "j") || m == "call"
}

// substituteLabels rewrites every whole-word occurrence of a known label
// name in text, per §4.7. thisPos/thisSize are the instruction node's own
// position and size, needed for a relative offset-label's displacement
// math.
func substituteLabels(text string, thisPos, thisSize, codeBase int64, targets map[string]labelTarget) string {
	relative := isRelativeMnemonic(text)
	for name, tgt := range targets {
		if !containsWholeWord(text, name) {
			continue
		}
		text = substituteWholeWord(text, name, formatLabelValue(tgt, thisPos, thisSize, codeBase, relative))
	}
	return text
}

func formatLabelValue(tgt labelTarget, thisPos, thisSize, codeBase int64, relative bool) string {
	if relative {
		if tgt.Fixed {
			return fmt.Sprintf("dword [0x%x]", uint32(tgt.Value))
		}
		value := tgt.Value - (thisPos + thisSize)
		return "0x" + formatTruncatedHex(value)
	}

	var value int64
	if tgt.Fixed {
		value = tgt.Value
	} else {
		value = tgt.Value + codeBase
	}
	return fmt.Sprintf("0x%x", uint32(value))
}

// formatTruncatedHex implements §4.7's magnitude-based truncation for a
// relative offset-label displacement: values below -32767 are treated as
// 32-bit, below -127 as 16-bit, negative as 8-bit, and non-negative values
// use their natural (smallest-fitting) width.
func formatTruncatedHex(value int64) string {
	var width int
	switch {
	case value < -32767:
		width = 32
	case value < -127:
		width = 16
	case value < 0:
		width = 8
	default:
		width = numeral.MinimalWidth(value)
	}

	switch width {
	case 8:
		return fmt.Sprintf("%x", uint8(value))
	case 16:
		return fmt.Sprintf("%x", uint16(value))
	default:
		return fmt.Sprintf("%x", uint32(value))
	}
}

// containsWholeWord reports whether name occurs in text at a whole-word
// boundary: the characters immediately adjacent to the match (if any) must
// not be alphanumeric, '_', '$', or '.'.
func containsWholeWord(text, name string) bool {
	return findWholeWord(text, name) >= 0
}

func findWholeWord(text, name string) int {
	if name == "" {
		return -1
	}
	start := 0
	for {
		idx := strings.Index(text[start:], name)
		if idx < 0 {
			return -1
		}
		pos := start + idx
		end := pos + len(name)
		if (pos == 0 || !isWordBoundaryChar(text[pos-1])) && (end == len(text) || !isWordBoundaryChar(text[end])) {
			return pos
		}
		start = pos + 1
	}
}

// substituteWholeWord replaces every whole-word occurrence of name in text
// with repl.
func substituteWholeWord(text, name, repl string) string {
	var b strings.Builder
	i := 0
	for i < len(text) {
		idx := findWholeWord(text[i:], name)
		if idx < 0 {
			b.WriteString(text[i:])
			break
		}
		b.WriteString(text[i : i+idx])
		b.WriteString(repl)
		i += idx + len(name)
	}
	return b.String()
}

func isWordBoundaryChar(c byte) bool {
	switch {
	case c >= '0' && c <= '9':
		return true
	case c >= 'a' && c <= 'z':
		return true
	case c >= 'A' && c <= 'Z':
		return true
	case c == '_' || c == '$' || c == '.':
		return true
	default:
		return false
	}
}
