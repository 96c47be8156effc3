package x86

import (
	"fmt"
	"strconv"
	"strings"
)

// RegID numbers the general-purpose registers in hardware order.
type RegID uint8

const (
	RAX RegID = iota
	RCX
	RDX
	RBX
	RSP
	RBP
	RSI
	RDI
	R8
	R9
	R10
	R11
	R12
	R13
	R14
	R15
	// RIP is only valid as the base of a 64-bit memory operand.
	RIP
)

// code is the low three bits placed in a ModRM, SIB or opcode field.
func (id RegID) code() byte { return byte(id) & 7 }

// ext reports whether the register needs a REX/VEX extension bit.
func (id RegID) ext() bool { return id >= R8 && id <= R15 }

// Reg is a general-purpose register of a given width. High selects the
// legacy AH/CH/DH/BH byte registers (ids RAX..RBX).
type Reg struct {
	ID   RegID
	Size int
	High bool
}

func Reg64(id RegID) Reg { return Reg{ID: id, Size: 64} }
func Reg32(id RegID) Reg { return Reg{ID: id, Size: 32} }
func Reg16(id RegID) Reg { return Reg{ID: id, Size: 16} }
func Reg8(id RegID) Reg  { return Reg{ID: id, Size: 8} }

// Reg8High returns AH, CH, DH or BH for RAX..RBX.
func Reg8High(id RegID) Reg {
	if id > RBX {
		panic(fmt.Sprintf("x86.Reg8High: register %d has no high byte", id))
	}
	return Reg{ID: id, Size: 8, High: true}
}

// code is the value of the register in an encoding field. AH..BH share the
// encodings of SPL..DIL.
func (r Reg) code() byte {
	if r.High {
		return byte(r.ID) + 4
	}
	return r.ID.code()
}

// needsByteREX reports whether an 8-bit register is only reachable with a
// REX prefix present (SPL, BPL, SIL, DIL).
func needsByteREX(r Reg) bool {
	return r.Size == 8 && !r.High && r.ID >= RSP && r.ID <= RDI
}

var (
	gpNames64 = [...]string{"rax", "rcx", "rdx", "rbx", "rsp", "rbp", "rsi", "rdi"}
	gpNames32 = [...]string{"eax", "ecx", "edx", "ebx", "esp", "ebp", "esi", "edi"}
	gpNames16 = [...]string{"ax", "cx", "dx", "bx", "sp", "bp", "si", "di"}
	gpNames8  = [...]string{"al", "cl", "dl", "bl", "spl", "bpl", "sil", "dil"}
	gpNames8H = [...]string{"ah", "ch", "dh", "bh"}
)

func (r Reg) String() string {
	if r.ID == RIP {
		if r.Size == 32 {
			return "eip"
		}
		return "rip"
	}
	if r.High {
		return gpNames8H[r.ID]
	}
	if r.ID < R8 {
		switch r.Size {
		case 64:
			return gpNames64[r.ID]
		case 32:
			return gpNames32[r.ID]
		case 16:
			return gpNames16[r.ID]
		case 8:
			return gpNames8[r.ID]
		}
	}
	n := "r" + strconv.Itoa(int(r.ID))
	switch r.Size {
	case 32:
		return n + "d"
	case 16:
		return n + "w"
	case 8:
		return n + "b"
	}
	return n
}

// SegReg is a segment register: es, cs, ss, ds, fs, gs.
type SegReg uint8

const (
	ES SegReg = iota
	CS
	SS
	DS
	FS
	GS
)

var segNames = [...]string{"es", "cs", "ss", "ds", "fs", "gs"}

func (s SegReg) String() string {
	if int(s) < len(segNames) {
		return segNames[s]
	}
	return fmt.Sprintf("seg%d", uint8(s))
}

// overridePrefix is the legacy segment-override byte.
func (s SegReg) overridePrefix() byte {
	return [...]byte{0x26, 0x2E, 0x36, 0x3E, 0x64, 0x65}[s]
}

// CtrlReg identifies a control register (CR0..CR15).
type CtrlReg uint8

const (
	CR0 CtrlReg = 0
	CR2 CtrlReg = 2
	CR3 CtrlReg = 3
	CR4 CtrlReg = 4
	CR8 CtrlReg = 8
)

func (c CtrlReg) String() string { return "cr" + strconv.Itoa(int(c)) }

// DbgReg identifies a debug register (DR0..DR7).
type DbgReg uint8

func (d DbgReg) String() string { return "dr" + strconv.Itoa(int(d)) }

// TestReg identifies a 386/486 test register (TR3..TR7).
type TestReg uint8

func (t TestReg) String() string { return "tr" + strconv.Itoa(int(t)) }

// FpReg is an x87 stack register, ST(0)..ST(7).
type FpReg uint8

func (f FpReg) String() string { return "st(" + strconv.Itoa(int(f)) + ")" }

// SimdReg is an MMX (64), XMM (128) or YMM (256) register.
type SimdReg struct {
	Num  uint8
	Size int
}

func MM(n uint8) SimdReg  { return SimdReg{Num: n, Size: 64} }
func XMM(n uint8) SimdReg { return SimdReg{Num: n, Size: 128} }
func YMM(n uint8) SimdReg { return SimdReg{Num: n, Size: 256} }

func (s SimdReg) String() string {
	switch s.Size {
	case 64:
		return "mm" + strconv.Itoa(int(s.Num))
	case 256:
		return "ymm" + strconv.Itoa(int(s.Num))
	}
	return "xmm" + strconv.Itoa(int(s.Num))
}

// LookupRegister resolves an assembler register name. It returns nil and
// false for unknown names.
func LookupRegister(name string) (Operand, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i := range gpNames64 {
		id := RegID(i)
		switch name {
		case gpNames64[i]:
			return Reg64(id), true
		case gpNames32[i]:
			return Reg32(id), true
		case gpNames16[i]:
			return Reg16(id), true
		case gpNames8[i]:
			return Reg8(id), true
		}
	}
	for i, n := range gpNames8H {
		if name == n {
			return Reg8High(RegID(i)), true
		}
	}
	for i, n := range segNames {
		if name == n {
			return SegReg(i), true
		}
	}
	switch name {
	case "rip":
		return Reg64(RIP), true
	case "eip":
		return Reg32(RIP), true
	case "st":
		return FpReg(0), true
	}
	if strings.HasPrefix(name, "st(") && strings.HasSuffix(name, ")") {
		if n, ok := regNumber(name[3:len(name)-1], 7); ok {
			return FpReg(n), true
		}
		return nil, false
	}
	if strings.HasPrefix(name, "r") {
		rest := name[1:]
		size := 64
		switch {
		case strings.HasSuffix(rest, "d"):
			size, rest = 32, strings.TrimSuffix(rest, "d")
		case strings.HasSuffix(rest, "w"):
			size, rest = 16, strings.TrimSuffix(rest, "w")
		case strings.HasSuffix(rest, "b"):
			size, rest = 8, strings.TrimSuffix(rest, "b")
		}
		if n, ok := regNumber(rest, 15); ok && n >= 8 {
			return Reg{ID: RegID(n), Size: size}, true
		}
		return nil, false
	}
	for _, p := range []struct {
		prefix string
		limit  int
		build  func(n uint8) Operand
	}{
		{"xmm", 15, func(n uint8) Operand { return XMM(n) }},
		{"ymm", 15, func(n uint8) Operand { return YMM(n) }},
		{"mm", 7, func(n uint8) Operand { return MM(n) }},
		{"cr", 15, func(n uint8) Operand { return CtrlReg(n) }},
		{"dr", 7, func(n uint8) Operand { return DbgReg(n) }},
		{"tr", 7, func(n uint8) Operand { return TestReg(n) }},
	} {
		if strings.HasPrefix(name, p.prefix) {
			if n, ok := regNumber(name[len(p.prefix):], p.limit); ok {
				return p.build(uint8(n)), true
			}
			return nil, false
		}
	}
	return nil, false
}

func regNumber(s string, limit int) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 || n > limit {
		return 0, false
	}
	return n, true
}
