package codec

import (
	"encoding/binary"
	"fmt"

	"github.com/keurnel/x86asm/registers"
)

// encodedModRM is the byte-level result of encoding one ModR/M (+ optional
// SIB, + optional displacement) operand.
type encodedModRM struct {
	ModRM byte
	SIB   []byte // present only when a SIB byte is required
	Disp  []byte // little-endian displacement, 1 or 4 bytes, or nil
}

func buildModRMByte(mod, reg, rm byte) byte {
	return mod<<6 | (reg&7)<<3 | (rm & 7)
}

// encodeRegModRM builds a register-direct ModR/M: mod=11, rm=rm.Enc.
func encodeRegModRM(regField byte, rm registers.Register) encodedModRM {
	return encodedModRM{ModRM: buildModRMByte(3, regField, byte(rm.Enc))}
}

// encodeMemModRM builds the ModR/M (and, where required, SIB) bytes for a
// memory operand, following the literal rules of §4.3: register-relative
// forms use mod=01/10 for disp8/disp32, [ebp] with zero displacement is
// forced into the disp8=0 form because mod=00/rm=101 is reserved, [esp]
// forces a SIB byte because esp's rm slot is hardware-reserved to signal
// "SIB follows", and an absolute operand uses mod=00/rm=101 with a disp32.
func encodeMemModRM(regField byte, mem MemOperand) (encodedModRM, error) {
	if !mem.HasReg {
		disp := make([]byte, 4)
		binary.LittleEndian.PutUint32(disp, uint32(mem.Disp))
		return encodedModRM{
			ModRM: buildModRMByte(0, regField, 5),
			Disp:  disp,
		}, nil
	}

	enc := byte(mem.Reg.Enc)

	if enc == 4 { // esp: SIB required regardless of displacement
		sib := byte(0<<6 | 4<<3 | 4) // no index, base=esp
		mod, disp := dispForValue(mem.Disp, false)
		return encodedModRM{
			ModRM: buildModRMByte(mod, regField, 4),
			SIB:   []byte{sib},
			Disp:  disp,
		}, nil
	}

	if enc == 5 { // ebp: mod=00 is reserved for absolute, force disp8=0
		mod, disp := dispForValue(mem.Disp, true)
		return encodedModRM{ModRM: buildModRMByte(mod, regField, 5), Disp: disp}, nil
	}

	mod, disp := dispForValue(mem.Disp, false)
	return encodedModRM{ModRM: buildModRMByte(mod, regField, enc), Disp: disp}, nil
}

// dispForValue picks mod and the displacement bytes for a plain
// register-relative operand. forceNonZero is set for ebp, whose mod=00
// slot is unavailable even when the displacement is zero.
func dispForValue(v int64, forceNonZero bool) (byte, []byte) {
	if v == 0 && !forceNonZero {
		return 0, nil
	}
	if v >= -128 && v <= 127 {
		return 1, []byte{byte(int8(v))}
	}
	disp := make([]byte, 4)
	binary.LittleEndian.PutUint32(disp, uint32(int32(v)))
	return 2, disp
}

// decodedModRM is what decodeModRM extracts from a byte stream.
type decodedModRM struct {
	RegField byte
	Mem      *MemOperand // nil when the operand is register-direct
	RM       registers.Register
	Consumed int // bytes consumed starting at the ModR/M byte
}

// decodeModRM reads a ModR/M byte (and any SIB/displacement it implies)
// from data, treating the non-reg operand as width bits wide. It accepts
// both the plain mod=00/rm=101 absolute form and the SIB-based
// no-base/disp32 absolute form, since externally produced code may use
// either.
func decodeModRM(data []byte, width int) (decodedModRM, error) {
	if len(data) < 1 {
		return decodedModRM{}, fmt.Errorf("truncated ModR/M")
	}
	b := data[0]
	mod := b >> 6
	regField := (b >> 3) & 7
	rm := b & 7
	consumed := 1

	if mod == 3 {
		reg, ok := registers.ByEncoding(rm, width)
		if !ok {
			return decodedModRM{}, fmt.Errorf("no register for encoding %d width %d", rm, width)
		}
		return decodedModRM{RegField: regField, RM: reg, Consumed: consumed}, nil
	}

	if rm == 4 {
		if len(data) < 2 {
			return decodedModRM{}, fmt.Errorf("truncated SIB byte")
		}
		sib := data[1]
		consumed++
		base := sib & 7
		if base == 5 && mod == 0 {
			if len(data) < consumed+4 {
				return decodedModRM{}, fmt.Errorf("truncated absolute displacement")
			}
			disp := int64(int32(binary.LittleEndian.Uint32(data[consumed:])))
			consumed += 4
			return decodedModRM{
				RegField: regField,
				Mem:      &MemOperand{Width: width, Absolute: true, HasDisp: true, Disp: disp},
				Consumed: consumed,
			}, nil
		}
		baseReg, ok := registers.ByEncoding(base, 32)
		if !ok {
			return decodedModRM{}, fmt.Errorf("no base register for SIB base %d", base)
		}
		disp, n, err := readDisp(data[consumed:], mod, base == 5)
		if err != nil {
			return decodedModRM{}, err
		}
		consumed += n
		return decodedModRM{
			RegField: regField,
			Mem:      &MemOperand{Width: width, HasReg: true, Reg: baseReg, HasDisp: disp != 0 || n > 0, Disp: disp},
			Consumed: consumed,
		}, nil
	}

	if mod == 0 && rm == 5 {
		if len(data) < consumed+4 {
			return decodedModRM{}, fmt.Errorf("truncated absolute displacement")
		}
		disp := int64(int32(binary.LittleEndian.Uint32(data[consumed:])))
		consumed += 4
		return decodedModRM{
			RegField: regField,
			Mem:      &MemOperand{Width: width, Absolute: true, HasDisp: true, Disp: disp},
			Consumed: consumed,
		}, nil
	}

	baseReg, ok := registers.ByEncoding(rm, 32)
	if !ok {
		return decodedModRM{}, fmt.Errorf("no base register for rm %d", rm)
	}
	disp, n, err := readDisp(data[consumed:], mod, false)
	if err != nil {
		return decodedModRM{}, err
	}
	consumed += n
	return decodedModRM{
		RegField: regField,
		Mem:      &MemOperand{Width: width, HasReg: true, Reg: baseReg, HasDisp: n > 0, Disp: disp},
		Consumed: consumed,
	}, nil
}

// readDisp reads the displacement implied by mod: none for mod=00 (unless
// forceDisp32, used for the ebp-as-SIB-base special case where mod=00
// still carries a disp32), disp8 for mod=01, disp32 for mod=10.
func readDisp(data []byte, mod byte, forceDisp32 bool) (int64, int, error) {
	switch {
	case mod == 0 && !forceDisp32:
		return 0, 0, nil
	case mod == 1:
		if len(data) < 1 {
			return 0, 0, fmt.Errorf("truncated disp8")
		}
		return int64(int8(data[0])), 1, nil
	case mod == 2 || (mod == 0 && forceDisp32):
		if len(data) < 4 {
			return 0, 0, fmt.Errorf("truncated disp32")
		}
		return int64(int32(binary.LittleEndian.Uint32(data))), 4, nil
	default:
		return 0, 0, fmt.Errorf("unexpected mod %d", mod)
	}
}
