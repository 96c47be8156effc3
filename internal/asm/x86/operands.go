package x86

import (
	"fmt"
	"strings"

	"github.com/tinyrange/x86enc/internal/asm"
)

// Operand is a resolved instruction argument. The set of implementations is
// closed: Reg, SegReg, CtrlReg, DbgReg, TestReg, FpReg, SimdReg, Indirect,
// Immediate and FarPtr.
type Operand interface {
	fmt.Stringer
	isOperand()
}

func (Reg) isOperand()       {}
func (SegReg) isOperand()    {}
func (CtrlReg) isOperand()   {}
func (DbgReg) isOperand()    {}
func (TestReg) isOperand()   {}
func (FpReg) isOperand()     {}
func (SimdReg) isOperand()   {}
func (Indirect) isOperand()  {}
func (Immediate) isOperand() {}
func (FarPtr) isOperand()    {}

// Immediate is a constant or symbolic integer operand.
type Immediate struct {
	Value asm.Expression
}

func Imm(v int64) Immediate { return Immediate{Value: asm.Int(v)} }

// ImmLabel refers to the address of a label, e.g. a branch target.
func ImmLabel(l asm.Label) Immediate { return Immediate{Value: asm.Sym(l)} }

func ImmExpr(e asm.Expression) Immediate { return Immediate{Value: e} }

func (i Immediate) String() string { return i.Value.String() }

// FarPtr is a selector:offset pair for far jumps and calls.
type FarPtr struct {
	Seg    asm.Expression
	Offset asm.Expression
}

func (f FarPtr) String() string { return f.Seg.String() + ":" + f.Offset.String() }

// Indirect describes a memory operand: [seg: base + index*scale + disp].
type Indirect struct {
	base     Reg
	index    Reg
	scale    uint8
	hasBase  bool
	hasIndex bool
	disp     asm.Expression
	seg      SegReg
	hasSeg   bool
	size     int
	adsz     int
}

// Mem constructs a memory operand referencing [base].
func Mem(base Reg) Indirect {
	return Indirect{base: base, scale: 1, hasBase: true}
}

// MemIndex constructs a memory operand referencing [base + index*scale].
func MemIndex(base, index Reg, scale uint8) Indirect {
	if scale == 0 {
		scale = 1
	}
	return Indirect{base: base, index: index, scale: scale, hasBase: true, hasIndex: true}
}

// MemScaled constructs [index*scale + disp] without a base register.
func MemScaled(index Reg, scale uint8) Indirect {
	if scale == 0 {
		scale = 1
	}
	return Indirect{index: index, scale: scale, hasIndex: true}
}

// MemAbs constructs a displacement-only memory operand.
func MemAbs(disp asm.Expression) Indirect {
	return Indirect{scale: 1, disp: disp}
}

// WithDisp returns a copy of the memory operand using disp.
func (m Indirect) WithDisp(disp asm.Expression) Indirect {
	m.disp = disp
	return m
}

// WithOffset is WithDisp for constant displacements.
func (m Indirect) WithOffset(disp int64) Indirect {
	return m.WithDisp(asm.Int(disp))
}

// WithSeg adds a segment override.
func (m Indirect) WithSeg(s SegReg) Indirect {
	m.seg, m.hasSeg = s, true
	return m
}

// WithSize sets the width of the referenced data (byte ptr, word ptr ...).
func (m Indirect) WithSize(bits int) Indirect {
	m.size = bits
	return m
}

// WithAddrSize forces the address width of an operand with no registers.
func (m Indirect) WithAddrSize(bits int) Indirect {
	m.adsz = bits
	return m
}

func (m Indirect) Base() (Reg, bool)       { return m.base, m.hasBase }
func (m Indirect) Index() (Reg, bool)      { return m.index, m.hasIndex }
func (m Indirect) Scale() uint8            { return m.scale }
func (m Indirect) Disp() asm.Expression    { return m.disp }
func (m Indirect) Segment() (SegReg, bool) { return m.seg, m.hasSeg }
func (m Indirect) Size() int               { return m.size }

// addrSize returns the address width implied by the registers, or by the
// explicit setting, or fallback when neither says anything.
func (m Indirect) addrSize(fallback int) (int, error) {
	sz := 0
	if m.hasBase {
		sz = m.base.Size
	}
	if m.hasIndex {
		if sz != 0 && m.index.Size != sz {
			return 0, fmt.Errorf("%w: mixed %d-bit base and %d-bit index", ErrAddressing, sz, m.index.Size)
		}
		sz = m.index.Size
	}
	if sz == 0 {
		sz = m.adsz
	}
	if sz == 0 {
		sz = fallback
	}
	if sz == 8 {
		return 0, fmt.Errorf("%w: 8-bit register in address", ErrAddressing)
	}
	return sz, nil
}

func (m Indirect) String() string {
	var sb strings.Builder
	switch m.size {
	case 8:
		sb.WriteString("byte ptr ")
	case 16:
		sb.WriteString("word ptr ")
	case 32:
		sb.WriteString("dword ptr ")
	case 64:
		sb.WriteString("qword ptr ")
	case 80:
		sb.WriteString("tbyte ptr ")
	case 128:
		sb.WriteString("xmmword ptr ")
	case 256:
		sb.WriteString("ymmword ptr ")
	}
	if m.hasSeg {
		sb.WriteString(m.seg.String())
		sb.WriteByte(':')
	}
	sb.WriteByte('[')
	var parts []string
	if m.hasBase {
		parts = append(parts, m.base.String())
	}
	if m.hasIndex {
		if m.scale == 1 {
			parts = append(parts, m.index.String())
		} else {
			parts = append(parts, fmt.Sprintf("%s*%d", m.index, m.scale))
		}
	}
	if !m.disp.IsZero() || len(parts) == 0 {
		parts = append(parts, m.disp.String())
	}
	sb.WriteString(strings.Join(parts, "+"))
	sb.WriteByte(']')
	return sb.String()
}

// Prefix is a set of instruction prefixes requested by the front-end.
type Prefix uint8

const (
	PrefixLock Prefix = 1 << iota
	PrefixRep
	PrefixRepz
	PrefixRepnz
	PrefixHintTaken
	PrefixHintNotTaken
)

// bytes returns the legacy prefix bytes in emission order.
func (p Prefix) bytes() []byte {
	var out []byte
	if p&PrefixLock != 0 {
		out = append(out, 0xF0)
	}
	switch {
	case p&PrefixRepnz != 0:
		out = append(out, 0xF2)
	case p&(PrefixRep|PrefixRepz) != 0:
		out = append(out, 0xF3)
	}
	switch {
	case p&PrefixHintTaken != 0:
		out = append(out, 0x3E)
	case p&PrefixHintNotTaken != 0:
		out = append(out, 0x2E)
	}
	return out
}

// ParsePrefix maps an assembler prefix keyword to its flag.
func ParsePrefix(s string) (Prefix, error) {
	switch strings.ToLower(s) {
	case "lock":
		return PrefixLock, nil
	case "rep":
		return PrefixRep, nil
	case "repz", "repe":
		return PrefixRepz, nil
	case "repnz", "repne":
		return PrefixRepnz, nil
	case "jmp", "taken":
		return PrefixHintTaken, nil
	case "nojmp", "nottaken":
		return PrefixHintNotTaken, nil
	}
	return 0, fmt.Errorf("unknown prefix %q", s)
}

// Instruction is a mnemonic with resolved operands and prefix requests.
type Instruction struct {
	Mnemonic string
	Args     []Operand
	Prefixes Prefix
}

// Inst is a shorthand constructor.
func Inst(mnemonic string, args ...Operand) Instruction {
	return Instruction{Mnemonic: mnemonic, Args: args}
}

func (i Instruction) WithPrefix(p Prefix) Instruction {
	i.Prefixes |= p
	return i
}

func (i Instruction) String() string {
	var sb strings.Builder
	for _, kw := range []struct {
		p    Prefix
		name string
	}{{PrefixLock, "lock "}, {PrefixRep, "rep "}, {PrefixRepz, "repz "}, {PrefixRepnz, "repnz "}} {
		if i.Prefixes&kw.p != 0 {
			sb.WriteString(kw.name)
		}
	}
	sb.WriteString(i.Mnemonic)
	for n, a := range i.Args {
		if n == 0 {
			sb.WriteByte(' ')
		} else {
			sb.WriteString(", ")
		}
		sb.WriteString(a.String())
	}
	return sb.String()
}
