package codec

import (
	"fmt"
	"strings"

	"github.com/keurnel/x86asm/internal/diagnostics"
)

// Template is one parsed line of an instruction template resource: a
// mnemonic, the operand pattern it accepts, and the opcode descriptor that
// encodes/decodes it.
type Template struct {
	Mnemonic string
	Operands []OperandPattern
	Opcode   []Directive

	// Source is the original template line, kept for diagnostics.
	Source string
}

// parseTemplateLine parses one line of the form
// "mnemonic operand_pattern ; opcode_descriptor". Comment lines (# prefix)
// and blank lines return ok == false with a nil error; a malformed non-blank
// line returns an error so the caller can report it, per the parser being
// "total" (reject or never-match, never panic).
func parseTemplateLine(line string) (Template, bool, error) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return Template{}, false, nil
	}

	parts := strings.SplitN(trimmed, ";", 2)
	if len(parts) != 2 {
		return Template{}, false, fmt.Errorf("template line missing ';' separator: %q", line)
	}
	head := strings.TrimSpace(parts[0])
	opcodeField := strings.TrimSpace(parts[1])

	headFields := strings.Fields(head)
	if len(headFields) == 0 {
		return Template{}, false, fmt.Errorf("template line missing mnemonic: %q", line)
	}
	mnemonic := strings.ToLower(headFields[0])

	var operands []OperandPattern
	operandText := strings.TrimSpace(head[len(headFields[0]):])
	if operandText != "" {
		for _, tok := range splitTopLevelComma(operandText) {
			tok = strings.TrimSpace(tok)
			if tok == "" {
				continue
			}
			pat, ok := parseOperandPattern(tok)
			if !ok {
				return Template{}, false, fmt.Errorf("unrecognised operand pattern %q in %q", tok, line)
			}
			operands = append(operands, pat)
		}
	}

	directives, err := parseOpcodeDescriptor(opcodeField)
	if err != nil {
		return Template{}, false, fmt.Errorf("template %q: %w", line, err)
	}

	return Template{
		Mnemonic: mnemonic,
		Operands: operands,
		Opcode:   directives,
		Source:   line,
	}, true, nil
}

// parseTemplates parses every line of a template resource, skipping
// comments and blank lines. A malformed non-blank line is recorded on sink
// (nil-safe, so a caller that hasn't attached one yet gets silence) and
// skipped rather than aborting the load: the parser is total, per §4.2.
func parseTemplates(text string, sink *diagnostics.Sink) []Template {
	var out []Template
	for n, line := range strings.Split(text, "\n") {
		tpl, ok, err := parseTemplateLine(line)
		if err != nil {
			sink.Warning("parse", fmt.Sprintf("line %d: %v", n+1, err))
			continue
		}
		if ok {
			out = append(out, tpl)
		}
	}
	return out
}
