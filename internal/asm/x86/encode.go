package x86

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/tinyrange/x86enc/internal/asm"
)

type rexState struct {
	w     bool
	r     bool
	x     bool
	b     bool
	force bool
}

func (r rexState) any() bool {
	return r.w || r.r || r.x || r.b || r.force
}

func (r rexState) prefix() byte {
	if !r.any() {
		return 0
	}
	p := byte(0x40)
	if r.w {
		p |= 0x08
	}
	if r.r {
		p |= 0x04
	}
	if r.x {
		p |= 0x02
	}
	if r.b {
		p |= 0x01
	}
	return p
}

// vexPrefix builds the two or three byte VEX prefix. vvvv is the register
// number of the extra source operand, 0 when there is none.
func vexPrefix(v Vex, rex rexState, vvvv byte) []byte {
	inv := func(b bool) byte {
		if b {
			return 0
		}
		return 1
	}
	var l byte
	if v.L == 256 {
		l = 1
	}
	w := v.W == VexW1 || (v.W == VexWIG && rex.w)
	tail := (^vvvv&0xF)<<3 | l<<2 | v.ppBits()
	if !rex.x && !rex.b && v.Map == 1 && !w {
		return []byte{0xC5, inv(rex.r)<<7 | tail}
	}
	var wb byte
	if w {
		wb = 1
	}
	return []byte{
		0xC4,
		inv(rex.r)<<7 | inv(rex.x)<<6 | inv(rex.b)<<5 | byte(v.Map),
		wb<<7 | tail,
	}
}

// regBits returns the field value and extension bit of a register operand.
func regBits(a Operand) (byte, bool) {
	switch v := a.(type) {
	case Reg:
		return v.code(), v.ID.ext()
	case SegReg:
		return byte(v), false
	case CtrlReg:
		return byte(v) & 7, v >= 8
	case DbgReg:
		return byte(v) & 7, false
	case TestReg:
		return byte(v) & 7, false
	case FpReg:
		return byte(v) & 7, false
	case SimdReg:
		return v.Num & 7, v.Num >= 8
	}
	panic(fmt.Sprintf("x86: %T is not a register", a))
}

var postLabelCounter uint64

func newPostLabel(name string) asm.Label {
	id := atomic.AddUint64(&postLabelCounter, 1)
	return asm.Label(fmt.Sprintf("__post_%s_%d", strings.ReplaceAll(name, ".", "_"), id))
}

// Encode produces every candidate encoding of inst with op in mode m. More
// than one buffer is returned only when a displacement is still symbolic;
// the shortest candidate comes first. Errors are *EncodeError values.
func Encode(m Mode, inst Instruction, op *Opcode) ([]*asm.Buffer, error) {
	out, err := encode(m, inst, op)
	if err != nil {
		return nil, &EncodeError{Inst: inst, Opcode: op, Err: err}
	}
	return out, nil
}

func encode(m Mode, inst Instruction, op *Opcode) ([]*asm.Buffer, error) {
	if err := m.validate(); err != nil {
		return nil, err
	}
	sz, err := op.match(m, inst)
	if err != nil {
		return nil, err
	}
	args := append([]Operand(nil), inst.Args...)

	base := op.Bytes()
	rex := rexState{w: sz.rexW}
	var (
		postponed []int
		highByte  bool
		vvvv      byte
	)
	noteReg := func(a Operand) {
		if r, ok := a.(Reg); ok && r.Size == 8 {
			highByte = highByte || r.High
			rex.force = rex.force || needsByteREX(r)
		}
	}
	for i, k := range op.args {
		a := args[i]
		if f, ok := k.field(); ok {
			loc, ok := op.fields[f]
			if !ok {
				panic(fmt.Sprintf("x86: opcode %s has a %s argument but no %s field", op.name, k, f))
			}
			num, ext := regBits(a)
			base[loc.Byte] |= (num & 7) << uint(loc.Bit)
			if ext {
				if loc.Bit == 3 {
					rex.r = true
				} else {
					rex.b = true
				}
			}
			noteReg(a)
			continue
		}
		switch {
		case k.implicit():
		case k == ArgVexVXMM || k == ArgVexVYMM || k == ArgVexVReg:
			num, ext := regBits(a)
			vvvv = num & 7
			if ext {
				vvvv |= 8
			}
		default:
			postponed = append(postponed, i)
		}
	}

	var regval byte
	if op.hasModRM() {
		regval = (base[len(base)-1] >> 3) & 7
		base = base[:len(base)-1]
	}

	// Symbolic branch targets become relative to the end of the
	// instruction, marked by a fresh label.
	var post asm.Label
	if op.Has(PropSetIP) && !strings.HasPrefix(op.name, "ret") && len(postponed) > 0 && postponed[0] == 0 {
		if imm, ok := args[0].(Immediate); ok && len(imm.Value.Labels()) > 0 {
			post = newPostLabel(op.name)
			args[0] = ImmExpr(imm.Value.Sub(asm.Sym(post)))
		}
	}

	// Trailing operands. Only a memory operand can fork the candidates.
	var tails [][]*asm.Buffer
	for _, i := range postponed {
		k, a := op.args[i], args[i]
		var parts []*asm.Buffer
		switch {
		case k.isModRM():
			switch v := a.(type) {
			case Indirect:
				mem, err := encodeIndirect(m, v, sz.adsz, regval)
				if err != nil {
					return nil, err
				}
				rex.x = rex.x || mem.rexX
				rex.b = rex.b || mem.rexB
				parts = mem.buffers()
			default:
				num, ext := regBits(a)
				rex.b = rex.b || ext
				noteReg(a)
				parts = []*asm.Buffer{asm.NewBuffer(encodeRegDirect(num, regval))}
			}
		default:
			buf, err := encodeTrailing(m, op, k, a, sz)
			if err != nil {
				return nil, err
			}
			parts = []*asm.Buffer{buf}
		}
		tails = append(tails, parts)
	}

	if highByte && rex.any() {
		return nil, addressingError("high byte register with a REX prefix")
	}

	head := asm.NewBuffer(inst.Prefixes.bytes()...)
	for _, a := range args {
		if mem, ok := a.(Indirect); ok && mem.hasSeg {
			head.Append(mem.seg.overridePrefix())
		}
	}
	if sz.pfx67 {
		head.Append(0x67)
	}
	// A mandatory 66 prefix doubles as the operand-size override.
	needPfx, hasNeedPfx := op.props[PropNeedPfx]
	if (sz.pfx66 || (op.Has(PropXMMX) && usesXMM(args))) && !(hasNeedPfx && needPfx == 0x66) {
		head.Append(0x66)
	}
	if hasNeedPfx {
		head.Append(byte(needPfx))
	}
	switch {
	case op.vex != nil:
		if m.Bits == 16 {
			return nil, addressingError("VEX encoding in 16-bit mode")
		}
		if (rex.r || rex.x || rex.b) && !m.Long() {
			return nil, addressingError("extended register in %d-bit mode", m.Bits)
		}
		head.Append(vexPrefix(*op.vex, rex, vvvv)...)
	case rex.any():
		if !m.Long() {
			return nil, addressingError("REX prefix needed in %d-bit mode", m.Bits)
		}
		head.Append(rex.prefix())
	}
	head.Append(base...)

	cands := []*asm.Buffer{head}
	for _, parts := range tails {
		next := make([]*asm.Buffer, 0, len(cands)*len(parts))
		for _, c := range cands {
			for j, p := range parts {
				out := c
				if j < len(parts)-1 {
					out = c.Clone()
				}
				out.AppendBuffer(p)
				next = append(next, out)
			}
		}
		cands = next
	}
	if post != "" {
		for _, c := range cands {
			c.Export(post, c.Len())
		}
	}
	return cands, nil
}

func usesXMM(args []Operand) bool {
	for _, a := range args {
		if r, ok := a.(SimdReg); ok && r.Size == 128 {
			return true
		}
	}
	return false
}

func immValue(a Operand) asm.Expression {
	imm, ok := a.(Immediate)
	if !ok {
		panic(fmt.Sprintf("x86: %T is not an immediate", a))
	}
	return imm.Value
}

// encodeTrailing encodes the non-ModRM operands appended after the opcode.
func encodeTrailing(m Mode, op *Opcode, k ArgKind, a Operand, sz sizing) (*asm.Buffer, error) {
	order := m.Order
	switch k {
	case ArgImm:
		t := asm.AnyInt(sz.opsz)
		// Long mode sign-extends both imm32 and rel32; there is no
		// address wrap for a relative target to fall back on.
		if sz.opsz == 64 || (m.Long() && op.Has(PropSetIP)) {
			t = asm.I32
		}
		return immValue(a).Encode(t, order)
	case ArgImm8:
		return immValue(a).Encode(asm.I8, order)
	case ArgUImm8:
		return immValue(a).Encode(asm.A8, order)
	case ArgUImm16:
		return immValue(a).Encode(asm.A16, order)
	case ArgUImm64:
		return immValue(a).Encode(asm.A64, order)
	case ArgMrmImm:
		return a.(Indirect).disp.Encode(asm.AnyInt(sz.adsz), order)
	case ArgFarPtr:
		fp := a.(FarPtr)
		width := sz.opsz
		if width == 64 {
			width = 32
		}
		out, err := fp.Offset.Encode(asm.AnyInt(width), order)
		if err != nil {
			return nil, err
		}
		sel, err := fp.Seg.Encode(asm.A16, order)
		if err != nil {
			return nil, err
		}
		out.AppendBuffer(sel)
		return out, nil
	case ArgI4XMM, ArgI4YMM:
		num, ext := regBits(a)
		if ext {
			num |= 8
		}
		return asm.NewBuffer(num << 4), nil
	}
	panic(fmt.Sprintf("x86: opcode %s: cannot encode %s operand", op.name, k))
}
