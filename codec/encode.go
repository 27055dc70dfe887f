package codec

import (
	"encoding/binary"
	"fmt"
)

// encode walks t's opcode descriptor against the operands matchOperands
// already resolved, emitting bytes in order. Each directive that needs an
// operand claims the first not-yet-claimed operand of the matching kind,
// left to right. The exception is "/r", which resolves its pair through
// claimSlashR: a memory operand always supplies rm, and only for two
// register operands does the first supply rm and the second reg.
func (t Template) encode(ops []matched) ([]byte, error) {
	claimed := make([]bool, len(ops))

	claimKind := func(kinds ...OperandKind) (int, bool) {
		for i, op := range ops {
			if claimed[i] {
				continue
			}
			for _, k := range kinds {
				if op.pattern.Kind == k {
					claimed[i] = true
					return i, true
				}
			}
		}
		return 0, false
	}

	var out []byte
	for _, d := range t.Opcode {
		switch d.Kind {
		case DirFixedByte:
			out = append(out, d.Byte)

		case DirPlusReg:
			i, ok := claimKind(KindRegWidth, KindLiteralReg)
			if !ok {
				return nil, fmt.Errorf("%s: +r directive with no register operand", t.Mnemonic)
			}
			out = append(out, d.Byte+byte(ops[i].reg.Enc))

		case DirSlashDigit:
			i, ok := claimKind(KindRegWidth, KindMem, KindLiteralReg)
			if !ok {
				return nil, fmt.Errorf("%s: /digit directive with no rm operand", t.Mnemonic)
			}
			enc, err := emitModRM(d.Digit, ops[i])
			if err != nil {
				return nil, err
			}
			out = append(out, enc...)

		case DirSlashR:
			patterns := make([]OperandPattern, len(ops))
			for i, o := range ops {
				patterns[i] = o.pattern
			}
			rmIdx, regIdx, ok := claimSlashR(patterns, claimed)
			if !ok {
				return nil, fmt.Errorf("%s: /r directive could not resolve rm/reg operands", t.Mnemonic)
			}
			enc, err := emitModRM(ops[regIdx].reg.Enc, ops[rmIdx])
			if err != nil {
				return nil, err
			}
			out = append(out, enc...)

		case DirImm:
			i, ok := claimKind(KindImm)
			if !ok {
				return nil, fmt.Errorf("%s: immediate directive with no imm operand", t.Mnemonic)
			}
			out = append(out, littleEndian(ops[i].imm, d.Width)...)

		case DirRel:
			i, ok := claimKind(KindRel)
			if !ok {
				return nil, fmt.Errorf("%s: relative directive with no rel operand", t.Mnemonic)
			}
			out = append(out, littleEndian(ops[i].imm, d.Width)...)

		default:
			return nil, fmt.Errorf("%s: unknown directive", t.Mnemonic)
		}
	}
	return out, nil
}

// emitModRM produces the ModR/M (+ SIB, + displacement) bytes for one
// operand, with regField as the reg-field value (either a fixed /digit or
// another operand's register encoding).
func emitModRM(regField byte, op matched) ([]byte, error) {
	switch op.pattern.Kind {
	case KindMem:
		enc, err := encodeMemModRM(regField, op.mem)
		if err != nil {
			return nil, err
		}
		out := append([]byte{enc.ModRM}, enc.SIB...)
		return append(out, enc.Disp...), nil
	default:
		enc := encodeRegModRM(regField, op.reg)
		return []byte{enc.ModRM}, nil
	}
}

func littleEndian(v int64, width int) []byte {
	switch width {
	case 8:
		return []byte{byte(v)}
	case 16:
		b := make([]byte, 2)
		binary.LittleEndian.PutUint16(b, uint16(v))
		return b
	case 32:
		b := make([]byte, 4)
		binary.LittleEndian.PutUint32(b, uint32(v))
		return b
	case 64:
		b := make([]byte, 8)
		binary.LittleEndian.PutUint64(b, uint64(v))
		return b
	default:
		return nil
	}
}
