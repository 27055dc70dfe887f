package codec

import (
	"encoding/binary"
	"strings"

	"github.com/keurnel/x86asm/registers"
)

// decode runs t's opcode descriptor in reverse against data, claiming
// operands with the same positional convention encode uses. Returns the
// formatted assembly text and the number of bytes consumed on success.
func (t Template) decode(data []byte) (string, int, bool) {
	ops := make([]matched, len(t.Operands))
	for i, p := range t.Operands {
		ops[i].pattern = p
	}
	claimed := make([]bool, len(t.Operands))

	claim := func(kinds ...OperandKind) (int, bool) {
		for i, p := range t.Operands {
			if claimed[i] {
				continue
			}
			for _, k := range kinds {
				if p.Kind == k {
					claimed[i] = true
					return i, true
				}
			}
		}
		return 0, false
	}

	pos := 0
	for _, d := range t.Opcode {
		switch d.Kind {
		case DirFixedByte:
			if pos >= len(data) || data[pos] != d.Byte {
				return "", 0, false
			}
			pos++

		case DirPlusReg:
			if pos >= len(data) {
				return "", 0, false
			}
			b := data[pos]
			if b&0xF8 != d.Byte {
				return "", 0, false
			}
			i, ok := claim(KindRegWidth, KindLiteralReg)
			if !ok {
				return "", 0, false
			}
			reg, ok := registers.ByEncoding(b&7, ops[i].pattern.Width)
			if !ok {
				return "", 0, false
			}
			ops[i].reg = reg
			pos++

		case DirSlashDigit:
			i, ok := claim(KindRegWidth, KindMem, KindLiteralReg)
			if !ok {
				return "", 0, false
			}
			dm, err := decodeModRM(data[pos:], ops[i].pattern.Width)
			if err != nil || dm.RegField != d.Digit {
				return "", 0, false
			}
			if (dm.Mem != nil) != (ops[i].pattern.Kind == KindMem) {
				return "", 0, false
			}
			if dm.Mem != nil {
				ops[i].mem = *dm.Mem
			} else {
				ops[i].reg = dm.RM
			}
			pos += dm.Consumed

		case DirSlashR:
			patterns := make([]OperandPattern, len(ops))
			for i, o := range ops {
				patterns[i] = o.pattern
			}
			rmIdx, regIdx, ok := claimSlashR(patterns, claimed)
			if !ok {
				return "", 0, false
			}
			dm, err := decodeModRM(data[pos:], ops[rmIdx].pattern.Width)
			if err != nil {
				return "", 0, false
			}
			if (dm.Mem != nil) != (ops[rmIdx].pattern.Kind == KindMem) {
				return "", 0, false
			}
			if dm.Mem != nil {
				ops[rmIdx].mem = *dm.Mem
			} else {
				ops[rmIdx].reg = dm.RM
			}
			reg, ok := registers.ByEncoding(dm.RegField, ops[regIdx].pattern.Width)
			if !ok {
				return "", 0, false
			}
			ops[regIdx].reg = reg
			pos += dm.Consumed

		case DirImm:
			i, ok := claim(KindImm)
			if !ok {
				return "", 0, false
			}
			n := d.Width / 8
			if pos+n > len(data) {
				return "", 0, false
			}
			ops[i].imm = readLE(data[pos:pos+n], d.Width)
			pos += n

		case DirRel:
			i, ok := claim(KindRel)
			if !ok {
				return "", 0, false
			}
			n := d.Width / 8
			if pos+n > len(data) {
				return "", 0, false
			}
			ops[i].imm = readLE(data[pos:pos+n], d.Width)
			pos += n

		default:
			return "", 0, false
		}
	}

	for i := range ops {
		if !claimed[i] {
			return "", 0, false
		}
	}

	toks := make([]string, len(ops))
	for i, op := range ops {
		switch op.pattern.Kind {
		case KindRegWidth, KindLiteralReg:
			toks[i] = op.reg.Name
		case KindMem:
			toks[i] = formatMem(op.mem)
		case KindImm, KindRel:
			toks[i] = formatImmediate(op.imm)
		}
	}

	text := t.Mnemonic
	if len(toks) > 0 {
		text += " " + strings.Join(toks, ", ")
	}
	return text, pos, true
}

// readLE reads a little-endian, sign-extended integer of the given bit width.
func readLE(b []byte, width int) int64 {
	switch width {
	case 8:
		return int64(int8(b[0]))
	case 16:
		return int64(int16(binary.LittleEndian.Uint16(b)))
	case 32:
		return int64(int32(binary.LittleEndian.Uint32(b)))
	case 64:
		return int64(binary.LittleEndian.Uint64(b))
	default:
		return 0
	}
}
