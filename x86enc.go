// Package x86enc encodes x86 instructions for 16, 32 and 64-bit targets.
// A Table holds every opcode form of a feature set; Table.Assemble turns a
// mnemonic with operands into candidate machine code, shortest first, with
// relocations for operands that depend on labels.
package x86enc

import (
	"github.com/tinyrange/x86enc/internal/asm"
	"github.com/tinyrange/x86enc/internal/asm/native"
	"github.com/tinyrange/x86enc/internal/asm/x86"
)

// -----------------------------------------------------------------------------
// Type Aliases - These re-export types from internal/asm and internal/asm/x86
// -----------------------------------------------------------------------------

// Mode is the target context: address and operand width plus byte order.
type Mode = x86.Mode

// Table is an immutable opcode table. It is safe for concurrent use.
type Table = x86.Table

// Opcode is one encoding form of a mnemonic.
type Opcode = x86.Opcode

// Instruction is a mnemonic with operands and prefix requests.
type Instruction = x86.Instruction

// Operand is a register, memory reference, immediate or far pointer.
type Operand = x86.Operand

type (
	Reg       = x86.Reg
	SegReg    = x86.SegReg
	FpReg     = x86.FpReg
	SimdReg   = x86.SimdReg
	Indirect  = x86.Indirect
	Immediate = x86.Immediate
	FarPtr    = x86.FarPtr
	Prefix    = x86.Prefix
)

// Profile is a YAML description of a target: width, byte order and features.
type Profile = x86.Profile

// Buffer is encoded code with its exported labels and pending relocations.
type Buffer = asm.Buffer

// Label names a position in a Buffer.
type Label = asm.Label

// Expression is an integer expression over labels.
type Expression = asm.Expression

// Relocation is a field of a Buffer waiting for label values.
type Relocation = asm.Relocation

// EncodeError reports why an instruction could not be encoded.
type EncodeError = x86.EncodeError

// Func is code loaded into executable memory of this process.
type Func = native.Func

// Target modes.
var (
	Mode16 = x86.Mode16
	Mode32 = x86.Mode32
	Mode64 = x86.Mode64
)

// Prefix requests.
const (
	PrefixLock         = x86.PrefixLock
	PrefixRep          = x86.PrefixRep
	PrefixRepz         = x86.PrefixRepz
	PrefixRepnz        = x86.PrefixRepnz
	PrefixHintTaken    = x86.PrefixHintTaken
	PrefixHintNotTaken = x86.PrefixHintNotTaken
)

// Sentinel errors. Use errors.Is on errors returned by Assemble and Encode.
var (
	ErrAddressing     = x86.ErrAddressing
	ErrWidthConflict  = x86.ErrWidthConflict
	ErrMismatch       = x86.ErrMismatch
	ErrNoCandidate    = x86.ErrNoCandidate
	ErrRange          = x86.ErrRange
	ErrUnknownFeature = x86.ErrUnknownFeature
	ErrDecode         = x86.ErrDecode
	ErrUnsupported    = native.ErrUnsupported
	ErrUnresolved     = native.ErrUnresolved
)

// -----------------------------------------------------------------------------
// Tables
// -----------------------------------------------------------------------------

// NewTable builds the opcode table for a 16, 32 or 64-bit target from the
// named feature families (all of them when none are given).
func NewTable(bits int, features ...string) (*Table, error) {
	m, err := x86.ModeFor(bits)
	if err != nil {
		return nil, err
	}
	return x86.BuildTable(m, features...)
}

// Features lists the feature family names NewTable accepts.
func Features() []string { return x86.Features() }

// Encode encodes inst with one specific opcode.
func Encode(m Mode, inst Instruction, op *Opcode) ([]*Buffer, error) {
	return x86.Encode(m, inst, op)
}

// LoadProfile reads a target profile from a YAML file.
func LoadProfile(path string) (*Profile, error) { return x86.LoadProfile(path) }

// HostProfile describes the running processor.
func HostProfile() *Profile { return x86.HostProfile() }

// -----------------------------------------------------------------------------
// Operands
// -----------------------------------------------------------------------------

// Inst builds an instruction.
func Inst(mnemonic string, args ...Operand) Instruction { return x86.Inst(mnemonic, args...) }

// Register resolves an assembler register name such as "eax", "r12d",
// "xmm3" or "st(1)".
func Register(name string) (Operand, bool) { return x86.LookupRegister(name) }

// Imm is a constant immediate.
func Imm(v int64) Immediate { return x86.Imm(v) }

// ImmLabel is an immediate holding the address of a label.
func ImmLabel(l Label) Immediate { return x86.ImmLabel(l) }

func ImmExpr(e Expression) Immediate { return x86.ImmExpr(e) }

// Mem references [base].
func Mem(base Reg) Indirect { return x86.Mem(base) }

// MemIndex references [base + index*scale].
func MemIndex(base, index Reg, scale uint8) Indirect { return x86.MemIndex(base, index, scale) }

func MemScaled(index Reg, scale uint8) Indirect { return x86.MemScaled(index, scale) }

// MemAbs references an absolute address.
func MemAbs(disp Expression) Indirect { return x86.MemAbs(disp) }

func Int(v int64) Expression { return asm.Int(v) }

func Sym(l Label) Expression { return asm.Sym(l) }

func NewBuffer(data ...byte) *Buffer { return asm.NewBuffer(data...) }

// -----------------------------------------------------------------------------
// Output
// -----------------------------------------------------------------------------

// Listing disassembles code for a target of the given width.
func Listing(code []byte, bits int) (string, error) { return x86.Listing(code, bits) }

// Load maps a 64-bit buffer into executable memory and binds its labels.
// It fails with ErrUnsupported on hosts other than linux/amd64.
func Load(code *Buffer) (*Func, error) { return native.Load(code) }
