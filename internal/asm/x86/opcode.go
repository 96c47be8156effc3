package x86

import (
	"fmt"
	"sort"
	"strings"
)

// Field names a bit range inside the opcode bytes.
type Field string

const (
	FieldW      Field = "w"
	FieldS      Field = "s"
	FieldD      Field = "d"
	FieldModRM  Field = "modrm"
	FieldReg    Field = "reg"
	FieldEEEC   Field = "eeec"
	FieldEEED   Field = "eeed"
	FieldEEET   Field = "eeet"
	FieldSeg2   Field = "seg2"
	FieldSeg2A  Field = "seg2A"
	FieldSeg3   Field = "seg3"
	FieldSeg3A  Field = "seg3A"
	FieldRegFP  Field = "regfp"
	FieldRegMMX Field = "regmmx"
	FieldRegXMM Field = "regxmm"
	FieldRegYMM Field = "regymm"
)

// Loc is the position of a field: byte index into the opcode and the bit
// shift of its lowest bit.
type Loc struct {
	Byte int
	Bit  int
}

// ArgKind is the operand class an opcode accepts at one position.
type ArgKind string

const (
	ArgImm      ArgKind = "i"
	ArgImm8     ArgKind = "i8"
	ArgUImm8    ArgKind = "u8"
	ArgUImm16   ArgKind = "u16"
	ArgUImm64   ArgKind = "u64"
	ArgReg      ArgKind = "reg"
	ArgSeg2     ArgKind = "seg2"
	ArgSeg2A    ArgKind = "seg2A"
	ArgSeg3     ArgKind = "seg3"
	ArgSeg3A    ArgKind = "seg3A"
	ArgEEEC     ArgKind = "eeec"
	ArgEEED     ArgKind = "eeed"
	ArgEEET     ArgKind = "eeet"
	ArgModRM    ArgKind = "modrm"
	ArgMrmImm   ArgKind = "mrm_imm"
	ArgFarPtr   ArgKind = "farptr"
	ArgImmVal1  ArgKind = "imm_val1"
	ArgImmVal3  ArgKind = "imm_val3"
	ArgRegCL    ArgKind = "reg_cl"
	ArgRegEAX   ArgKind = "reg_eax"
	ArgRegDX    ArgKind = "reg_dx"
	ArgRegFP    ArgKind = "regfp"
	ArgRegFP0   ArgKind = "regfp0"
	ArgModRMMMX ArgKind = "modrmmmx"
	ArgRegMMX   ArgKind = "regmmx"
	ArgModRMXMM ArgKind = "modrmxmm"
	ArgRegXMM   ArgKind = "regxmm"
	ArgModRMYMM ArgKind = "modrmymm"
	ArgRegYMM   ArgKind = "regymm"
	ArgVexVXMM  ArgKind = "vexvxmm"
	ArgVexVYMM  ArgKind = "vexvymm"
	ArgVexVReg  ArgKind = "vexvreg"
	ArgI4XMM    ArgKind = "i4xmm"
	ArgI4YMM    ArgKind = "i4ymm"
)

// isModRM reports whether the operand is encoded through the ModRM r/m part.
func (k ArgKind) isModRM() bool {
	switch k {
	case ArgModRM, ArgModRMMMX, ArgModRMXMM, ArgModRMYMM:
		return true
	}
	return false
}

// field returns the opcode field an embedded register argument is packed
// into, if any.
func (k ArgKind) field() (Field, bool) {
	switch k {
	case ArgReg, ArgSeg2, ArgSeg2A, ArgSeg3, ArgSeg3A, ArgEEEC, ArgEEED, ArgEEET,
		ArgRegFP, ArgRegMMX, ArgRegXMM, ArgRegYMM:
		return Field(k), true
	}
	return "", false
}

func (k ArgKind) implicit() bool {
	switch k {
	case ArgImmVal1, ArgImmVal3, ArgRegCL, ArgRegEAX, ArgRegDX, ArgRegFP0:
		return true
	}
	return false
}

// sizesOperation reports whether the operand width of this argument takes
// part in operand-size resolution.
func (k ArgKind) sizesOperation() bool {
	switch k {
	case ArgReg, ArgRegEAX, ArgModRM, ArgMrmImm:
		return true
	}
	return false
}

func (k ArgKind) simd() bool {
	switch k {
	case ArgModRMMMX, ArgRegMMX, ArgModRMXMM, ArgRegXMM, ArgModRMYMM, ArgRegYMM,
		ArgVexVXMM, ArgVexVYMM, ArgI4XMM, ArgI4YMM:
		return true
	}
	return false
}

// Prop is an opcode property. Flag properties carry the value 1.
type Prop string

const (
	PropStrOp       Prop = "strop"
	PropStrOpZ      Prop = "stropz"
	PropOpSize      Prop = "opsz"
	PropArgSize     Prop = "argsz"
	PropAddrSize    Prop = "adsz"
	PropSetIP       Prop = "setip"
	PropStopExec    Prop = "stopexec"
	PropSaveIP      Prop = "saveip"
	PropUnsignedImm Prop = "unsigned_imm"
	PropRandom      Prop = "random"
	PropNeedPfx     Prop = "needpfx"
	PropXMMX        Prop = "xmmx"
	PropModRMR      Prop = "modrmR"
	PropModRMA      Prop = "modrmA"

	// PropWidening marks movsx/movzx style opcodes whose operand size comes
	// from the destination alone.
	PropWidening Prop = "widening"
	// PropAuto64 marks opcodes defaulting to 64-bit operands in long mode.
	PropAuto64 Prop = "auto64"
	// PropNoOpSize64 marks opcodes that cannot take 64-bit operands.
	PropNoOpSize64 Prop = "noopsz64"
)

// VexW selects the VEX.W bit.
type VexW int8

const (
	VexWIG VexW = iota
	VexW0
	VexW1
)

// Vex describes the VEX prefix of an AVX opcode.
type Vex struct {
	L    int  // vector length, 128 or 256
	PP   byte // implied prefix: 0 none, 0x66, 0xF3, 0xF2
	Map  int  // 1 = 0F, 2 = 0F38, 3 = 0F3A
	W    VexW
	VReg int // argument index encoded in vvvv, -1 when unused
}

func (v Vex) ppBits() byte {
	switch v.PP {
	case 0x66:
		return 1
	case 0xF3:
		return 2
	case 0xF2:
		return 3
	}
	return 0
}

// Opcode is one encoding template. It is immutable once its table is built.
type Opcode struct {
	name   string
	bin    []byte
	fields map[Field]Loc
	args   []ArgKind
	props  map[Prop]int
	vex    *Vex
	// narrow marks the byte copy split off an opcode with a w bit.
	narrow bool
}

func (o *Opcode) Name() string { return o.name }

// Bytes returns a copy of the base opcode bytes.
func (o *Opcode) Bytes() []byte { return append([]byte(nil), o.bin...) }

// Args returns a copy of the accepted argument kinds.
func (o *Opcode) Args() []ArgKind { return append([]ArgKind(nil), o.args...) }

// Field returns the location of a field.
func (o *Opcode) Field(f Field) (Loc, bool) {
	l, ok := o.fields[f]
	return l, ok
}

// Fields returns the field names in sorted order.
func (o *Opcode) Fields() []Field {
	out := make([]Field, 0, len(o.fields))
	for f := range o.fields {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (o *Opcode) Has(p Prop) bool {
	_, ok := o.props[p]
	return ok
}

// Prop returns the value of a valued property.
func (o *Opcode) Prop(p Prop) (int, bool) {
	v, ok := o.props[p]
	return v, ok
}

// Vex returns the VEX description of AVX opcodes.
func (o *Opcode) Vex() (Vex, bool) {
	if o.vex == nil {
		return Vex{}, false
	}
	return *o.vex, true
}

func (o *Opcode) hasModRM() bool {
	for _, k := range o.args {
		if k.isModRM() {
			return true
		}
	}
	return false
}

// byteForm reports whether this is the 8-bit variant of an integer opcode,
// where every sized operand must be a byte.
func (o *Opcode) byteForm() bool {
	if sz, ok := o.props[PropArgSize]; !ok || sz != 8 || o.Has(PropWidening) {
		return false
	}
	for _, k := range o.args {
		if k.simd() {
			return false
		}
	}
	return true
}

func (o *Opcode) clone() *Opcode {
	dup := &Opcode{
		name:   o.name,
		bin:    append([]byte(nil), o.bin...),
		fields: make(map[Field]Loc, len(o.fields)),
		args:   append([]ArgKind(nil), o.args...),
		props:  make(map[Prop]int, len(o.props)),
		narrow: o.narrow,
	}
	for f, l := range o.fields {
		dup.fields[f] = l
	}
	for p, v := range o.props {
		dup.props[p] = v
	}
	if o.vex != nil {
		v := *o.vex
		dup.vex = &v
	}
	return dup
}

func (o *Opcode) String() string {
	var sb strings.Builder
	sb.WriteString(o.name)
	sb.WriteString(" [")
	for i, b := range o.bin {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%02X", b)
	}
	sb.WriteByte(']')
	if len(o.args) > 0 {
		names := make([]string, len(o.args))
		for i, a := range o.args {
			names[i] = string(a)
		}
		sb.WriteString(" ")
		sb.WriteString(strings.Join(names, ","))
	}
	if len(o.props) > 0 {
		keys := make([]string, 0, len(o.props))
		for p, v := range o.props {
			if v == 1 && p != PropOpSize && p != PropArgSize && p != PropAddrSize {
				keys = append(keys, string(p))
			} else {
				keys = append(keys, fmt.Sprintf("%s=%#x", p, v))
			}
		}
		sort.Strings(keys)
		sb.WriteString(" {")
		sb.WriteString(strings.Join(keys, " "))
		sb.WriteString("}")
	}
	if o.vex != nil {
		fmt.Fprintf(&sb, " vex.%d.%02X.m%d", o.vex.L, o.vex.PP, o.vex.Map)
	}
	return sb.String()
}

// Config holds the vocabulary an opcode table may use. It replaces class
// level state: each builder carries its own copy.
type Config struct {
	FieldMasks map[Field]byte
	ValidArgs  map[ArgKind]bool
	ValidProps map[Prop]bool
}

// DefaultConfig returns the x86 vocabulary.
func DefaultConfig() Config {
	cfg := Config{
		FieldMasks: map[Field]byte{
			FieldW: 1, FieldS: 1, FieldD: 1, FieldModRM: 0xC7,
			FieldReg: 7, FieldEEEC: 7, FieldEEED: 7, FieldEEET: 7,
			FieldSeg2: 3, FieldSeg2A: 3, FieldSeg3: 7, FieldSeg3A: 7,
			FieldRegFP: 7, FieldRegMMX: 7, FieldRegXMM: 7, FieldRegYMM: 7,
		},
		ValidArgs:  map[ArgKind]bool{},
		ValidProps: map[Prop]bool{},
	}
	for _, a := range []ArgKind{
		ArgImm, ArgImm8, ArgUImm8, ArgUImm16, ArgUImm64, ArgReg, ArgSeg2, ArgSeg2A,
		ArgSeg3, ArgSeg3A, ArgEEEC, ArgEEED, ArgEEET, ArgModRM, ArgMrmImm,
		ArgFarPtr, ArgImmVal1, ArgImmVal3, ArgRegCL, ArgRegEAX,
		ArgRegDX, ArgRegFP, ArgRegFP0, ArgModRMMMX, ArgRegMMX,
		ArgModRMXMM, ArgRegXMM, ArgModRMYMM, ArgRegYMM,
		ArgVexVXMM, ArgVexVYMM, ArgVexVReg, ArgI4XMM, ArgI4YMM,
	} {
		cfg.ValidArgs[a] = true
	}
	for _, p := range []Prop{
		PropStrOp, PropStrOpZ, PropOpSize, PropArgSize, PropAddrSize, PropSetIP,
		PropStopExec, PropSaveIP, PropUnsignedImm, PropRandom, PropNeedPfx,
		PropXMMX, PropModRMR, PropModRMA, PropWidening, PropAuto64, PropNoOpSize64,
	} {
		cfg.ValidProps[p] = true
	}
	return cfg
}
