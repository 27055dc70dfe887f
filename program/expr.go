package program

import (
	"regexp"
	"strconv"

	"github.com/keurnel/x86asm/internal/numeral"
)

// literalPattern matches one maximal integer literal in any of the four
// supported bases, without a sign; evaluateArithmetic tacks an optional
// leading sign on separately so "5+-3" parses as 5 + (-3).
const literalPattern = `(?:0[xX][0-9a-fA-F]+|[0-9a-fA-F]+[hH]|[01]+[bB]|[0-7]+[oO]|[0-9]+)`

var (
	mulPattern = regexp.MustCompile(`([+-]?` + literalPattern + `)\s*([*/%])\s*([+-]?` + literalPattern + `)`)
	addPattern = regexp.MustCompile(`([+-]?` + literalPattern + `)\s*([+-])\s*([+-]?` + literalPattern + `)`)
)

// evaluateArithmetic runs the two-sweep evaluator described in §4.6: every
// "* / %" occurrence is folded left to right until none remain, then every
// "+ -" occurrence. Returns the rewritten buffer and true on full success;
// on any malformed literal the original text is returned unchanged with ok
// == false, leaving the caller to log a per-node error.
func evaluateArithmetic(text string) (string, bool) {
	orig := text
	text, ok := sweep(text, mulPattern)
	if !ok {
		return orig, false
	}
	text, ok = sweep(text, addPattern)
	if !ok {
		return orig, false
	}
	return text, true
}

// sweep repeatedly applies pattern's leftmost match, replacing it with the
// computed decimal result, until no further match is found. A sign on the
// left operand that follows a literal or name (spaces aside) is that
// expression's binary operator, so it is left in place rather than folded
// into the operand.
func sweep(text string, pattern *regexp.Regexp) (string, bool) {
	for {
		loc := pattern.FindStringSubmatchIndex(text)
		if loc == nil {
			return text, true
		}
		start := loc[2]
		left := text[loc[2]:loc[3]]
		prev := start
		for prev > 0 && text[prev-1] == ' ' {
			prev--
		}
		if (left[0] == '+' || left[0] == '-') && prev > 0 && isWordBoundaryChar(text[prev-1]) {
			left = left[1:]
			start++
		}
		op := text[loc[4]:loc[5]]
		right := text[loc[6]:loc[7]]

		lv, ok := numeral.Parse(left)
		if !ok {
			return text, false
		}
		rv, ok := numeral.Parse(right)
		if !ok {
			return text, false
		}

		result, ok := applyOp(lv, op, rv)
		if !ok {
			return text, false
		}

		text = text[:start] + strconv.FormatInt(result, 10) + text[loc[1]:]
	}
}

func applyOp(l int64, op string, r int64) (int64, bool) {
	switch op {
	case "*":
		return l * r, true
	case "/":
		if r == 0 {
			return 0, false
		}
		return l / r, true // Go's / truncates toward zero, matching §4.6.
	case "%":
		if r == 0 {
			return 0, false
		}
		return l % r, true
	case "+":
		return l + r, true
	case "-":
		return l - r, true
	default:
		return 0, false
	}
}
