// Package program implements the multi-line assembler driver: it classifies
// program source into nodes, resolves labels and arithmetic across a
// two-pass encoding run, and delegates each instruction to a codec.Codec.
package program

// Node is the tagged union of what one source line can produce: a Label, a
// fixed Address binding, an Instruction, or a reserved Macro. Modelled as an
// interface with an unexported marker method rather than a sum type, since
// that is what a type switch over a closed set of concrete structs buys us
// here.
type Node interface {
	isNode()
	Line() int
	// size returns the node's contribution to code layout: its final
	// encoded length once processed, or the conservative four-byte
	// estimate used only during the first sizing pass.
	size() int
}

// conservativeSize is the placeholder every unprocessed Instruction
// contributes to Pass A's layout estimate.
const conservativeSize = 4

// LabelNode is a symbolic offset defined at the position it occupies in the
// node list: its resolved address is whatever position the assembler
// assigns it during processing.
type LabelNode struct {
	Name   string
	LineNr int
}

func (*LabelNode) isNode()     {}
func (n *LabelNode) Line() int { return n.LineNr }
func (*LabelNode) size() int   { return 0 }

// AddressNode binds a label name to a fixed absolute address supplied by
// the caller through Assembler.BindAddress, rather than one derived from
// code layout.
type AddressNode struct {
	Name   string
	Value  int64
	LineNr int
}

func (*AddressNode) isNode()     {}
func (n *AddressNode) Line() int { return n.LineNr }
func (*AddressNode) size() int   { return 0 }

// InstructionNode is one assembly statement (or one expanded element of a
// db/dw/dd/dq directive). Encoded bytes and Processed are populated by
// ProcessNodes; UsesLabel and UsesArith are populated during Pass A to
// avoid re-scanning text that doesn't need label or expression rewriting.
type InstructionNode struct {
	Text   string
	LineNr int

	UsesLabel     bool
	UsesArith     bool
	Processed     bool
	Encoded       []byte
	SizeChanged   bool
}

func (*InstructionNode) isNode()     {}
func (n *InstructionNode) Line() int { return n.LineNr }
func (n *InstructionNode) size() int {
	if n.Processed {
		return len(n.Encoded)
	}
	return conservativeSize
}

// MacroNode carries macro text verbatim; this driver never expands it, per
// the closed scope of trivial textual substitution — it is reserved for
// user code that post-processes the node list.
type MacroNode struct {
	Text   string
	LineNr int
}

func (*MacroNode) isNode()     {}
func (n *MacroNode) Line() int { return n.LineNr }
func (*MacroNode) size() int   { return 0 }
