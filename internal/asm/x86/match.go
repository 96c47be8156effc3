package x86

import (
	"fmt"

	"github.com/tinyrange/x86enc/internal/asm"
)

// sizing is the operand and address size an instruction resolves to for a
// given opcode, with the prefixes those sizes require.
type sizing struct {
	opsz  int
	pfx66 bool
	rexW  bool
	adsz  int
	pfx67 bool
}

func operandWidth(a Operand) int {
	switch v := a.(type) {
	case Reg:
		return v.Size
	case Indirect:
		return v.size
	}
	return 0
}

func (o *Opcode) sizing(m Mode, args []Operand) (sizing, error) {
	var s sizing
	var err error
	if o.Has(PropWidening) {
		err = o.wideningSize(m, args, &s)
	} else {
		err = o.operandSize(m, args, &s)
	}
	if err != nil {
		return sizing{}, err
	}
	if err := o.addressSize(m, args, &s); err != nil {
		return sizing{}, err
	}
	return s, nil
}

// wideningSize handles movsx/movzx style opcodes: the destination sets the
// operand size, the source must have the width the opcode extends from.
func (o *Opcode) wideningSize(m Mode, args []Operand, s *sizing) error {
	if len(args) != 2 {
		return fmt.Errorf("%w: %s takes two operands", ErrMismatch, o.name)
	}
	dst := operandWidth(args[0])
	if dst != 16 && dst != 32 && dst != 64 {
		return widthError("%d-bit destination for %s", dst, o.name)
	}
	want, ok := o.props[PropArgSize]
	if !ok {
		want = 16
	}
	if src := operandWidth(args[1]); src != 0 && src != want {
		return widthError("%s extends a %d-bit source, got %d bits", o.name, want, src)
	}
	if dst <= want {
		return widthError("%s from %d to %d bits", o.name, want, dst)
	}
	s.opsz = dst
	return s.finish(m, o)
}

func (o *Opcode) operandSize(m Mode, args []Operand, s *sizing) error {
	byteForm := o.byteForm()
	argsz, hasArgsz := o.props[PropArgSize]
	opsz := 0
	declared := false
	for i, k := range o.args {
		if !k.sizesOperation() {
			continue
		}
		a := args[i]
		w := operandWidth(a)
		if w == 0 {
			continue
		}
		declared = true
		if _, mem := a.(Indirect); mem && hasArgsz && !byteForm {
			if w != argsz {
				return widthError("%d-bit memory operand, %s wants %d", w, o.name, argsz)
			}
			continue
		}
		switch {
		case byteForm && w != 8:
			return widthError("%d-bit operand for byte form of %s", w, o.name)
		case !byteForm && w == 8:
			return widthError("8-bit operand for %s", o.name)
		case opsz != 0 && w != opsz:
			return widthError("%d-bit and %d-bit operands", opsz, w)
		}
		opsz = w
	}
	if byteForm {
		// An operation whose width no operand declares takes the
		// context width, never the byte copy of a w-bit opcode.
		if o.narrow && !declared {
			return widthError("no operand gives the width of %s", o.name)
		}
		s.opsz = 8
		return nil
	}
	if p, ok := o.props[PropOpSize]; ok {
		if opsz != 0 && opsz != p {
			return widthError("%d-bit operand, %s is %d-bit", opsz, o.name, p)
		}
		opsz = p
	}
	if opsz == 0 {
		opsz = m.DefaultOpSize()
		if o.Has(PropAuto64) && m.Long() {
			opsz = 64
		}
	}
	s.opsz = opsz
	return s.finish(m, o)
}

func (s *sizing) finish(m Mode, o *Opcode) error {
	switch s.opsz {
	case 64:
		if !m.Long() {
			return widthError("64-bit operand in %d-bit mode", m.Bits)
		}
		if o.Has(PropNoOpSize64) {
			return widthError("%s has no 64-bit form", o.name)
		}
		s.rexW = !o.Has(PropAuto64)
	case 32:
		if o.Has(PropAuto64) && m.Long() {
			return widthError("%s has no 32-bit form in long mode", o.name)
		}
	}
	s.pfx66 = (m.Bits == 16 && s.opsz == 32) || (m.Bits != 16 && s.opsz == 16)
	return nil
}

func (o *Opcode) addressSize(m Mode, args []Operand, s *sizing) error {
	adsz := 0
	for _, a := range args {
		mem, ok := a.(Indirect)
		if !ok {
			continue
		}
		sz, err := mem.addrSize(0)
		if err != nil {
			return err
		}
		if sz != 0 {
			adsz = sz
		}
	}
	if p, ok := o.props[PropAddrSize]; ok {
		if adsz != 0 && adsz != p {
			return widthError("%d-bit address, %s is %d-bit", adsz, o.name, p)
		}
		adsz = p
	}
	if adsz == 0 {
		adsz = m.DefaultAddrSize()
	}
	switch {
	case m.Long() && adsz != 32 && adsz != 64,
		!m.Long() && adsz != 16 && adsz != 32:
		return addressingError("%d-bit address in %d-bit mode", adsz, m.Bits)
	}
	s.adsz = adsz
	s.pfx67 = adsz != m.DefaultAddrSize()
	return nil
}

// validGP reports whether r exists in mode m.
func validGP(m Mode, r Reg) bool {
	if r.ID == RIP {
		return false
	}
	if m.Long() {
		return true
	}
	return r.Size != 64 && !r.ID.ext() && !needsByteREX(r)
}

func validSimd(m Mode, r SimdReg, sizes ...int) bool {
	if r.Num >= 16 || (r.Num >= 8 && !m.Long()) {
		return false
	}
	if r.Size == 64 && r.Num >= 8 {
		return false
	}
	for _, s := range sizes {
		if r.Size == s {
			return true
		}
	}
	return false
}

// matchArg reports whether a is acceptable for argument kind k of o.
func (o *Opcode) matchArg(m Mode, k ArgKind, a Operand) bool {
	switch k {
	case ArgReg:
		r, ok := a.(Reg)
		return ok && validGP(m, r)
	case ArgRegEAX:
		r, ok := a.(Reg)
		return ok && r.ID == RAX && !r.High
	case ArgRegCL:
		r, ok := a.(Reg)
		return ok && r == Reg8(RCX)
	case ArgRegDX:
		r, ok := a.(Reg)
		return ok && r == Reg16(RDX)
	case ArgVexVReg:
		r, ok := a.(Reg)
		return ok && validGP(m, r) && r.Size >= 32

	case ArgModRM:
		switch v := a.(type) {
		case Reg:
			return !o.Has(PropModRMA) && validGP(m, v)
		case Indirect:
			return !o.Has(PropModRMR)
		}
		return false
	case ArgMrmImm:
		mem, ok := a.(Indirect)
		return ok && !mem.hasBase && !mem.hasIndex

	case ArgSeg2:
		s, ok := a.(SegReg)
		return ok && s < FS
	case ArgSeg2A:
		s, ok := a.(SegReg)
		return ok && s < FS && s != CS
	case ArgSeg3:
		s, ok := a.(SegReg)
		return ok && s <= GS
	case ArgSeg3A:
		s, ok := a.(SegReg)
		return ok && (s == FS || s == GS)

	case ArgEEEC:
		c, ok := a.(CtrlReg)
		return ok && (c < 8 || (m.Long() && c < 16))
	case ArgEEED:
		d, ok := a.(DbgReg)
		return ok && d < 8
	case ArgEEET:
		t, ok := a.(TestReg)
		return ok && t < 8

	case ArgRegFP:
		f, ok := a.(FpReg)
		return ok && f < 8
	case ArgRegFP0:
		f, ok := a.(FpReg)
		return ok && f == 0

	case ArgRegMMX, ArgModRMMMX, ArgRegXMM, ArgModRMXMM, ArgRegYMM, ArgModRMYMM:
		if k.isModRM() {
			if _, mem := a.(Indirect); mem {
				return !o.Has(PropModRMR)
			}
			if o.Has(PropModRMA) {
				return false
			}
		}
		r, ok := a.(SimdReg)
		if !ok {
			return false
		}
		switch k {
		case ArgRegMMX, ArgModRMMMX:
			if o.Has(PropXMMX) {
				return validSimd(m, r, 64, 128)
			}
			return validSimd(m, r, 64)
		case ArgRegXMM, ArgModRMXMM:
			return validSimd(m, r, 128)
		}
		return validSimd(m, r, 256)
	case ArgVexVXMM, ArgI4XMM:
		r, ok := a.(SimdReg)
		return ok && validSimd(m, r, 128)
	case ArgVexVYMM, ArgI4YMM:
		r, ok := a.(SimdReg)
		return ok && validSimd(m, r, 256)

	case ArgImm, ArgUImm64:
		_, ok := a.(Immediate)
		return ok
	case ArgImm8:
		return immFits(a, asm.I8)
	case ArgUImm8:
		return immFits(a, asm.A8)
	case ArgUImm16:
		return immFits(a, asm.A16)
	case ArgImmVal1, ArgImmVal3:
		imm, ok := a.(Immediate)
		if !ok {
			return false
		}
		v, known := imm.Value.Constant()
		return known && ((k == ArgImmVal1 && v == 1) || (k == ArgImmVal3 && v == 3))
	case ArgFarPtr:
		_, ok := a.(FarPtr)
		return ok
	}
	return false
}

// immFits accepts immediates that fit t or are not known yet.
func immFits(a Operand, t asm.IntType) bool {
	imm, ok := a.(Immediate)
	if !ok {
		return false
	}
	fits, known := imm.Value.InRange(t)
	return fits || !known
}

// match checks the operands of inst against o and resolves the sizes.
func (o *Opcode) match(m Mode, inst Instruction) (sizing, error) {
	if len(inst.Args) != len(o.args) {
		return sizing{}, fmt.Errorf("%w: %d operands, %s takes %d", ErrMismatch, len(inst.Args), o.name, len(o.args))
	}
	for i, k := range o.args {
		if !o.matchArg(m, k, inst.Args[i]) {
			return sizing{}, fmt.Errorf("%w: operand %d (%s) is not %s", ErrMismatch, i+1, inst.Args[i], k)
		}
	}
	if o.Has(PropXMMX) {
		simd := 0
		for _, a := range inst.Args {
			r, ok := a.(SimdReg)
			if !ok {
				continue
			}
			if simd != 0 && r.Size != simd {
				return sizing{}, widthError("mixed mm and xmm operands for %s", o.name)
			}
			simd = r.Size
		}
	}
	return o.sizing(m, inst.Args)
}

// Match reports whether inst can be encoded with o in mode m.
func (o *Opcode) Match(m Mode, inst Instruction) bool {
	_, err := o.match(m, inst)
	return err == nil
}
