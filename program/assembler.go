package program

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/keurnel/x86asm/codec"
	"github.com/keurnel/x86asm/internal/diagnostics"
	"github.com/keurnel/x86asm/internal/history"
)

// Assembler consumes multi-line assembly source, classifies it into nodes,
// resolves labels and arithmetic across a two-pass encoding run, and
// delegates each instruction to a codec.Codec. Not safe to share across
// goroutines while ProcessNodes is running.
type Assembler struct {
	codec   *codec.Codec
	sink    *diagnostics.Sink
	history history.Tracker

	nodes []Node
}

// New builds an Assembler that delegates instruction encoding to c.
func New(c *codec.Codec) *Assembler {
	return &Assembler{codec: c}
}

// AttachSink wires a diagnostics sink that records parse, label, and
// sizing diagnostics. Passing nil detaches any previously attached sink.
func (a *Assembler) AttachSink(s *diagnostics.Sink) {
	a.sink = s
}

// ParseFile classifies every line of text into nodes, appended to the
// Assembler's node list in source order. A line that fails to classify is
// recorded on the sink and produces no node; parsing continues, and the
// first such error is returned once every line has been read. The empty
// fragment after a trailing newline is not counted as a line. Call this
// once before ProcessNodes.
func (a *Assembler) ParseFile(text string) error {
	lines := strings.Split(text, "\n")
	if n := len(lines); n > 1 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	var firstErr error
	for i, raw := range lines {
		lineNr := i + 1
		nodes, err := classifyLine(raw, lineNr)
		if err != nil {
			a.sink.Error("parse", err.Error())
			if firstErr == nil {
				firstErr = err
			}
		}
		for _, n := range nodes {
			if m, ok := n.(*MacroNode); ok {
				a.sink.Info("parse", fmt.Sprintf("line %d: macro %q is not expanded", m.LineNr, m.Text))
			}
		}
		start := len(a.nodes)
		a.nodes = append(a.nodes, nodes...)
		ids := make([]int, len(nodes))
		for j := range nodes {
			ids[j] = start + j
		}
		a.history.Record(lineNr, ids)
	}
	return firstErr
}

// BindAddress appends a fixed-address label binding: a name resolved to a
// caller-supplied absolute address rather than one derived from code
// layout. There is no textual syntax for this in program source; it exists
// for hosts that need to assemble against a known fixed entry point or
// external symbol.
func (a *Assembler) BindAddress(name string, value int64) {
	a.nodes = append(a.nodes, &AddressNode{Name: name, Value: value})
}

// Nodes returns the Assembler's current node list, in source order.
func (a *Assembler) Nodes() []Node {
	return a.nodes
}

// History returns the line-to-node mapping recorded by ParseFile.
func (a *Assembler) History() []history.LineChange {
	return a.history.History()
}

// ProcessNodes runs the three-pass encoding described in §4.5: a sizing
// pass with conservative placeholders, a first real encoding pass once
// label positions are known, and a size-stabilisation pass that re-encodes
// marked instructions against their now-accurate positions.
func (a *Assembler) ProcessNodes(codeBase int64) error {
	offsetLabels, addressLabels, err := a.collectLabels()
	if err != nil {
		a.sink.Error("labels", err.Error())
		return err
	}
	names := labelNames(offsetLabels, addressLabels)

	for _, n := range a.nodes {
		ins, ok := n.(*InstructionNode)
		if !ok {
			continue
		}
		for _, name := range names {
			if containsWholeWord(ins.Text, name) {
				ins.UsesLabel = true
				break
			}
		}
		ins.UsesArith = strings.ContainsAny(ins.Text, "+-*/%")
	}

	// Pass B: first encoding, positions from the conservative sizing pass.
	positions := a.computePositions()
	a.encodePass(positions, offsetLabels, addressLabels, codeBase, false)

	// Pass C: size stabilisation, positions from actual encoded sizes.
	positions = a.computePositions()
	a.encodePass(positions, offsetLabels, addressLabels, codeBase, true)

	return nil
}

// collectLabels walks the node list once, separating offset labels
// (LabelNode, resolved to a layout position) from fixed labels (AddressNode,
// resolved to a caller-supplied address), and reporting a name used by
// both, or defined twice, as an error.
func (a *Assembler) collectLabels() (offset map[string]int, address map[string]int64, err error) {
	offset = make(map[string]int)
	address = make(map[string]int64)
	for i, n := range a.nodes {
		switch v := n.(type) {
		case *LabelNode:
			if _, dup := offset[v.Name]; dup {
				return nil, nil, fmt.Errorf("line %d: duplicate label %q", v.LineNr, v.Name)
			}
			if _, dup := address[v.Name]; dup {
				return nil, nil, fmt.Errorf("line %d: duplicate label %q", v.LineNr, v.Name)
			}
			offset[v.Name] = i
		case *AddressNode:
			if _, dup := offset[v.Name]; dup {
				return nil, nil, fmt.Errorf("line %d: duplicate label %q", v.LineNr, v.Name)
			}
			if _, dup := address[v.Name]; dup {
				return nil, nil, fmt.Errorf("line %d: duplicate label %q", v.LineNr, v.Name)
			}
			address[v.Name] = v.Value
		}
	}
	return offset, address, nil
}

func labelNames(offset map[string]int, address map[string]int64) []string {
	names := make([]string, 0, len(offset)+len(address))
	for name := range offset {
		names = append(names, name)
	}
	for name := range address {
		names = append(names, name)
	}
	return names
}

// computePositions returns positions[i], the byte offset node i would
// occupy given every preceding node's current size() (the conservative
// estimate for an unprocessed instruction, or its real encoded length once
// processed).
func (a *Assembler) computePositions() []int64 {
	positions := make([]int64, len(a.nodes))
	var running int64
	for i, n := range a.nodes {
		positions[i] = running
		running += int64(n.size())
	}
	return positions
}

// encodePass re-encodes every instruction node (or, when onlyMarked is
// true, only those flagged UsesLabel/UsesArith) against positions,
// substituting labels and evaluating arithmetic first as needed. It
// reports "size changed" on any marked node whose encoded length differs
// from its previous encoding.
func (a *Assembler) encodePass(positions []int64, offsetLabels map[string]int, addressLabels map[string]int64, codeBase int64, onlyMarked bool) {
	for i, n := range a.nodes {
		ins, ok := n.(*InstructionNode)
		if !ok {
			continue
		}
		if onlyMarked && !(ins.UsesLabel || ins.UsesArith) {
			continue
		}

		text := ins.Text
		if ins.UsesLabel {
			targets := make(map[string]labelTarget, len(offsetLabels)+len(addressLabels))
			for name, idx := range offsetLabels {
				targets[name] = labelTarget{Value: positions[idx]}
			}
			for name, addr := range addressLabels {
				targets[name] = labelTarget{Fixed: true, Value: addr}
			}
			text = substituteLabels(text, positions[i], int64(ins.size()), codeBase, targets)
		}
		if ins.UsesArith {
			rewritten, ok := evaluateArithmetic(text)
			if !ok {
				a.sink.Error("arith", fmt.Sprintf("line %d: could not evaluate expression in %q", ins.LineNr, ins.Text))
				continue
			}
			text = rewritten
		}

		prevLen, hadPrev := -1, ins.Processed
		if hadPrev {
			prevLen = len(ins.Encoded)
		}

		encoded, err := a.codec.Assemble(text)
		if err != nil {
			a.sink.Error("encode", fmt.Sprintf("line %d: %v", ins.LineNr, err))
			continue
		}
		ins.Encoded = encoded
		ins.Processed = true

		if onlyMarked && hadPrev && prevLen != len(encoded) {
			ins.SizeChanged = true
			a.sink.Warning("sizing", fmt.Sprintf("line %d: size changed (%d -> %d bytes)", ins.LineNr, prevLen, len(encoded)))
		}
	}
}

// Assemble concatenates every processed instruction's encoded bytes, in
// source order. Label, Address, and Macro nodes contribute nothing.
func (a *Assembler) Assemble() ([]byte, error) {
	var out []byte
	for _, n := range a.nodes {
		ins, ok := n.(*InstructionNode)
		if !ok {
			continue
		}
		if !ins.Processed {
			return nil, fmt.Errorf("line %d: %q was never successfully encoded", ins.LineNr, ins.Text)
		}
		out = append(out, ins.Encoded...)
	}
	return out, nil
}

// Hexify is Assemble with the result rendered as lowercase hex.
func (a *Assembler) Hexify() (string, error) {
	b, err := a.Assemble()
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
