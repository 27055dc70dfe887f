// Package codec implements the table-driven x86 instruction encoder and
// decoder: Instruction templates are parsed from a textual resource and
// matched against assembly text (to encode) or a byte stream (to decode).
package codec

import (
	"encoding/hex"
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/keurnel/x86asm/internal/diagnostics"
)

//go:embed templates/x86.tpl
var defaultTemplates string

// ErrNoMatch is returned by Assemble when no loaded template matches the
// given assembly text in either strict or lazy mode.
var ErrNoMatch = errors.New("codec: no template matched")

// Codec owns an ordered list of Instruction templates and matches assembly
// text or machine code against them. The zero value is not usable; build
// one with New.
type Codec struct {
	templates []Template
	sink      *diagnostics.Sink
}

// New builds a Codec loaded with the bundled default instruction table. Any
// malformed line in the bundled resource is skipped, not fatal, matching
// ParseFile's behaviour; there is no sink to record it against yet, so
// attach one and call ParseFile again to see what was dropped.
func New() *Codec {
	c := &Codec{}
	c.templates = parseTemplates(defaultTemplates, c.sink)
	return c
}

// AttachSink wires a diagnostics sink that records template parse and
// match-failure entries. Passing nil detaches any previously attached sink.
func (c *Codec) AttachSink(s *diagnostics.Sink) {
	c.sink = s
}

// ParseFile replaces the Codec's template list with the contents of the
// named resource file, read in full. Malformed lines are skipped and
// recorded on the attached sink rather than failing the load; only a
// missing or unreadable file is a hard error.
func (c *Codec) ParseFile(name string) error {
	data, err := os.ReadFile(name)
	if err != nil {
		return fmt.Errorf("codec: reading template file %s: %w", name, err)
	}
	tpls := parseTemplates(string(data), c.sink)
	c.templates = tpls
	c.sink.Info("parse", fmt.Sprintf("loaded %d templates from %s", len(tpls), name))
	return nil
}

// AssembleSmallest tries every template in strict mode and returns the
// shortest resulting encoding; if no template matches strictly it retries
// every template in lazy mode. Returns ok == false if nothing matches
// either way.
func (c *Codec) AssembleSmallest(text string) ([]byte, bool) {
	mnemonic, operands := tokenizeLine(text)
	if mnemonic == "" {
		return nil, false
	}

	var best []byte
	for _, t := range c.templates {
		if t.Mnemonic != mnemonic {
			continue
		}
		ops, ok := matchOperands(t.Operands, operands, true)
		if !ok {
			continue
		}
		bytes, err := t.encode(ops)
		if err != nil {
			c.sink.Warning("encode", fmt.Sprintf("%s: %v", t.Source, err))
			continue
		}
		if best == nil || len(bytes) < len(best) {
			best = bytes
		}
	}
	if best != nil {
		return best, true
	}
	return c.AssembleLazy(text)
}

// AssembleLazy returns the first template match, trying templates in
// insertion order, in lazy mode (any immediate width that fits is
// accepted, not only the narrowest).
func (c *Codec) AssembleLazy(text string) ([]byte, bool) {
	mnemonic, operands := tokenizeLine(text)
	if mnemonic == "" {
		return nil, false
	}
	for _, t := range c.templates {
		if t.Mnemonic != mnemonic {
			continue
		}
		ops, ok := matchOperands(t.Operands, operands, false)
		if !ok {
			continue
		}
		bytes, err := t.encode(ops)
		if err != nil {
			c.sink.Warning("encode", fmt.Sprintf("%s: %v", t.Source, err))
			continue
		}
		return bytes, true
	}
	c.sink.Trace("encode", fmt.Sprintf("no template matched %q", text))
	return nil, false
}

// Assemble is the top-level, fatal-on-failure entry point: it delegates to
// AssembleSmallest and turns a no-match result into ErrNoMatch.
func (c *Codec) Assemble(text string) ([]byte, error) {
	b, ok := c.AssembleSmallest(text)
	if !ok {
		c.sink.Error("encode", fmt.Sprintf("%q: %v", text, ErrNoMatch))
		return nil, fmt.Errorf("%q: %w", text, ErrNoMatch)
	}
	return b, nil
}

// AssembleHex is Assemble with the result rendered as lowercase hex.
func (c *Codec) AssembleHex(text string) (string, error) {
	b, err := c.Assemble(text)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// Decode tries every template in insertion order and returns the first
// successful decode along with the number of bytes it consumed. Ambiguity
// is resolved by template order: the catalogue author is expected to place
// more specific templates first.
func (c *Codec) Decode(data []byte) (text string, consumed int, ok bool) {
	for _, t := range c.templates {
		if text, n, ok := t.decode(data); ok {
			return text, n, true
		}
	}
	c.sink.Trace("decode", fmt.Sprintf("no template matched %d bytes", len(data)))
	return "", 0, false
}

// Disassemble decodes a single instruction from the start of data. It is
// Decode with the consumed-byte count dropped, for callers that only care
// about one instruction's text (the single-shot `disassemble` entry point).
func (c *Codec) Disassemble(data []byte) (string, bool) {
	text, _, ok := c.Decode(data)
	return text, ok
}

// DisassembleHex is Disassemble with the input read as hex text. An empty,
// odd-length or otherwise invalid hex string is a structural error: it is
// recorded on the sink and reported as ok == false, never a panic.
func (c *Codec) DisassembleHex(hexStr string) (string, bool) {
	if hexStr == "" {
		c.sink.Error("decode", "empty hex input")
		return "", false
	}
	data, err := hex.DecodeString(hexStr)
	if err != nil {
		c.sink.Error("decode", fmt.Sprintf("invalid hex input %q: %v", hexStr, err))
		return "", false
	}
	return c.Disassemble(data)
}
