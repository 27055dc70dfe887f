package program

import (
	"fmt"
	"regexp"
	"strings"
)

var dataDirectivePrefix = regexp.MustCompile(`^d[bwdq]\b`)

// classifyLine turns one trimmed, comment-stripped source line into zero or
// more nodes, per §4.5's line classification:
//   - empty -> no nodes;
//   - "#..." -> a Macro node;
//   - contains ':' -> split once; left side is a Label, right side (if
//     non-empty) is classified recursively as a data directive or
//     instruction;
//   - "d[bwdq] v1, v2, ..." -> one Instruction node per value, sharing the
//     mnemonic prefix;
//   - otherwise -> a single Instruction node.
func classifyLine(raw string, lineNr int) ([]Node, error) {
	line := stripComment(raw)
	line = strings.TrimSpace(line)
	if line == "" {
		return nil, nil
	}

	if strings.HasPrefix(line, "#") {
		return []Node{&MacroNode{Text: strings.TrimSpace(line[1:]), LineNr: lineNr}}, nil
	}

	if strings.Contains(line, ":") {
		parts := strings.Split(line, ":")
		if len(parts) > 2 {
			return nil, fmt.Errorf("line %d: more than one ':' in %q", lineNr, raw)
		}
		name := strings.TrimSpace(parts[0])
		rest := strings.TrimSpace(parts[1])
		nodes := []Node{&LabelNode{Name: name, LineNr: lineNr}}
		if rest != "" {
			restNodes, err := classifyStatement(rest, lineNr)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, restNodes...)
		}
		return nodes, nil
	}

	return classifyStatement(line, lineNr)
}

// classifyStatement handles everything classifyLine delegates once the
// label and macro cases are ruled out: a data directive or a plain
// instruction.
func classifyStatement(stmt string, lineNr int) ([]Node, error) {
	lower := strings.ToLower(stmt)
	if loc := dataDirectivePrefix.FindStringIndex(lower); loc != nil {
		prefix := lower[:loc[1]]
		rest := strings.TrimSpace(stmt[loc[1]:])
		values := splitTopLevelComma(rest)
		nodes := make([]Node, 0, len(values))
		for _, v := range values {
			v = strings.TrimSpace(v)
			if v == "" {
				continue
			}
			nodes = append(nodes, &InstructionNode{Text: prefix + " " + v, LineNr: lineNr})
		}
		return nodes, nil
	}
	return []Node{&InstructionNode{Text: stmt, LineNr: lineNr}}, nil
}

// stripComment removes a "; ..." trailing comment before line
// classification; the codec's tokeniser does not strip comments itself.
func stripComment(line string) string {
	if idx := strings.IndexByte(line, ';'); idx >= 0 {
		return line[:idx]
	}
	return line
}

// splitTopLevelComma splits s on commas that are not nested inside
// brackets, matching the codec's own operand splitting rule.
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
	return out
}
