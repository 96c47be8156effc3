package x86

import (
	"github.com/tinyrange/x86enc/internal/asm"
)

// memEncoding is one candidate encoding of a memory operand: the ModRM byte
// (reg field included), an optional SIB byte and the displacement.
type memEncoding struct {
	modrm byte
	sib   []byte
	disp  *asm.Buffer
}

func (e memEncoding) buffer() *asm.Buffer {
	out := asm.NewBuffer(e.modrm)
	out.Append(e.sib...)
	if e.disp != nil {
		out.AppendBuffer(e.disp)
	}
	return out
}

// memOperand is the result of encoding an Indirect operand: every candidate
// plus the REX extension bits it requires.
type memOperand struct {
	forms []memEncoding
	rexX  bool
	rexB  bool
}

func (m memOperand) buffers() []*asm.Buffer {
	out := make([]*asm.Buffer, len(m.forms))
	for i, f := range m.forms {
		out[i] = f.buffer()
	}
	return out
}

// encodeRegDirect is the register-direct (mod 11) form.
func encodeRegDirect(code, regval byte) byte {
	return 0xC0 | regval<<3 | code&7
}

// encodeIndirect encodes mem for the given address size. Constant
// displacements pick the shortest form; symbolic ones yield the disp8 form
// followed by the full-width form.
func encodeIndirect(m Mode, mem Indirect, adsz int, regval byte) (memOperand, error) {
	if adsz == 16 {
		return encodeIndirect16(m, mem, regval)
	}
	return encodeIndirect32(m, mem, regval)
}

type pair16 struct{ a, b RegID }

// rm16 maps the legal 16-bit base/index combinations to their r/m value.
var rm16 = map[pair16]byte{
	{RBX, RSI}: 0,
	{RBX, RDI}: 1,
	{RBP, RSI}: 2,
	{RBP, RDI}: 3,
	{RSI, 0xFF}: 4,
	{RDI, 0xFF}: 5,
	{RBP, 0xFF}: 6,
	{RBX, 0xFF}: 7,
}

func encodeIndirect16(m Mode, mem Indirect, regval byte) (memOperand, error) {
	order := m.Order
	if !mem.hasBase && !mem.hasIndex {
		disp, err := mem.disp.Encode(asm.A16, order)
		if err != nil {
			return memOperand{}, err
		}
		return memOperand{forms: []memEncoding{{modrm: 6 | regval<<3, disp: disp}}}, nil
	}

	var regs []RegID
	if mem.hasBase {
		regs = append(regs, mem.base.ID)
	}
	if mem.hasIndex {
		if mem.scale != 1 {
			return memOperand{}, addressingError("scaled index in 16-bit address %s", mem)
		}
		regs = append(regs, mem.index.ID)
	}
	key := pair16{a: regs[0], b: 0xFF}
	if len(regs) == 2 {
		key.b = regs[1]
		if key.a == RSI || key.a == RDI {
			key.a, key.b = key.b, key.a
		}
	}
	rm, ok := rm16[key]
	if !ok {
		return memOperand{}, addressingError("invalid 16-bit address %s", mem)
	}

	modrm := rm | regval<<3
	disp := mem.disp
	if disp.IsZero() && rm != 6 {
		return memOperand{forms: []memEncoding{{modrm: modrm}}}, nil
	}
	forms, err := dispForms(modrm, nil, disp, asm.A16, order)
	if err != nil {
		return memOperand{}, err
	}
	return memOperand{forms: forms}, nil
}

func encodeIndirect32(m Mode, mem Indirect, regval byte) (memOperand, error) {
	order := m.Order
	long := m.Long()
	var out memOperand

	wide := asm.A32
	if long {
		wide = asm.I32
	}

	if mem.hasBase && mem.base.ID == RIP {
		if !long {
			return memOperand{}, addressingError("%s outside long mode", mem.base)
		}
		if mem.hasIndex {
			return memOperand{}, addressingError("indexed %s-relative address", mem.base)
		}
		disp, err := mem.disp.Encode(asm.I32, order)
		if err != nil {
			return memOperand{}, err
		}
		out.forms = []memEncoding{{modrm: 5 | regval<<3, disp: disp}}
		return out, nil
	}
	if mem.hasIndex && mem.index.ID == RIP {
		return memOperand{}, addressingError("%s used as index", mem.index)
	}
	if !long && ((mem.hasBase && mem.base.ID.ext()) || (mem.hasIndex && mem.index.ID.ext())) {
		return memOperand{}, addressingError("extended register in %d-bit mode", m.Bits)
	}

	switch {
	case !mem.hasBase && !mem.hasIndex:
		if long {
			// mod 00 r/m 101 is rip-relative in long mode; absolute
			// addressing goes through a SIB byte with no base or index.
			disp, err := mem.disp.Encode(asm.I32, order)
			if err != nil {
				return memOperand{}, err
			}
			out.forms = []memEncoding{{modrm: 4 | regval<<3, sib: []byte{0x25}, disp: disp}}
			return out, nil
		}
		disp, err := mem.disp.Encode(asm.A32, order)
		if err != nil {
			return memOperand{}, err
		}
		out.forms = []memEncoding{{modrm: 5 | regval<<3, disp: disp}}
		return out, nil

	case !mem.hasBase && mem.scale != 1:
		if mem.index.code() == 4 && !mem.index.ID.ext() {
			return memOperand{}, addressingError("%s cannot be an index register", mem.index)
		}
		ss, err := scaleBits(mem.scale)
		if err != nil {
			return memOperand{}, err
		}
		disp, err := mem.disp.Encode(wide, order)
		if err != nil {
			return memOperand{}, err
		}
		out.rexX = mem.index.ID.ext()
		sib := ss<<6 | mem.index.code()<<3 | 5
		out.forms = []memEncoding{{modrm: 4 | regval<<3, sib: []byte{sib}, disp: disp}}
		return out, nil
	}

	var (
		modrm byte
		sib   []byte
		base  Reg
	)
	if !mem.hasIndex || !mem.hasBase {
		base = mem.base
		if !mem.hasBase {
			base = mem.index
		}
		modrm = base.code() | regval<<3
		if base.code() == 4 {
			sib = []byte{0x24}
		}
		out.rexB = base.ID.ext()
	} else {
		index := mem.index
		base = mem.base
		if mem.scale == 1 && ((index.code() == 4 && !index.ID.ext()) || base.code() == 5) {
			base, index = index, base
		}
		if index.code() == 4 && !index.ID.ext() {
			return memOperand{}, addressingError("%s cannot be an index register", index)
		}
		ss, err := scaleBits(mem.scale)
		if err != nil {
			return memOperand{}, err
		}
		modrm = 4 | regval<<3
		sib = []byte{ss<<6 | index.code()<<3 | base.code()}
		out.rexX = index.ID.ext()
		out.rexB = base.ID.ext()
	}

	if mem.disp.IsZero() && base.code() != 5 {
		out.forms = []memEncoding{{modrm: modrm, sib: sib}}
		return out, nil
	}
	forms, err := dispForms(modrm, sib, mem.disp, wide, order)
	if err != nil {
		return memOperand{}, err
	}
	out.forms = forms
	return out, nil
}

// dispForms picks mod 01 or mod 10 for a displacement. An unresolved value
// produces both forms, the disp8 one first.
func dispForms(modrm byte, sib []byte, disp asm.Expression, wide asm.IntType, order asm.Endianness) ([]memEncoding, error) {
	var forms []memEncoding
	fits, known := disp.InRange(asm.I8)
	if fits || !known {
		d, err := disp.Encode(asm.I8, order)
		if err != nil {
			return nil, err
		}
		forms = append(forms, memEncoding{modrm: modrm | 0x40, sib: sib, disp: d})
	}
	if !fits || !known {
		d, err := disp.Encode(wide, order)
		if err != nil {
			return nil, err
		}
		forms = append(forms, memEncoding{modrm: modrm | 0x80, sib: sib, disp: d})
	}
	return forms, nil
}

func scaleBits(scale uint8) (byte, error) {
	switch scale {
	case 1:
		return 0, nil
	case 2:
		return 1, nil
	case 4:
		return 2, nil
	case 8:
		return 3, nil
	}
	return 0, addressingError("invalid scale %d", scale)
}
