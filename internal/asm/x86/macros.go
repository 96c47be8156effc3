package x86

// bin is shorthand for opcode byte literals in table definitions.
func bin(b ...byte) []byte { return b }

// aluOps defines the classic two-operand ALU group (add, or, adc ...):
// accumulator with immediate, reg/rm in both directions, and rm with a
// possibly sign-extended immediate.
func (b *Builder) aluOps(name string, num byte, imm string) {
	b.Op(name, bin(num<<3|4), HintNone, "reg_eax", imm).Field(FieldW, 0, 0).Add()
	b.Op(name, bin(num<<3), HintMRMW).Field(FieldD, 0, 1).Add()
	b.Op(name, bin(0x80), Ext(num), imm).Field(FieldW, 0, 0).Field(FieldS, 0, 1).Add()
}

// bitTestOps defines bt, btc, btr and bts.
func (b *Builder) bitTestOps(name string, num byte) {
	b.Op(name, bin(0x0F, 0xBA), Ext(4|num), "u8").Add()
	b.Op(name, bin(0x0F, 0xA3|num<<3), HintMRM).Reverse().Add()
}

// shiftOps defines the rotate and shift group: by one, by cl, by imm8.
func (b *Builder) shiftOps(name string, num byte) {
	b.Op(name, bin(0xD0), Ext(num), "imm_val1").Field(FieldW, 0, 0).Add()
	b.Op(name, bin(0xD2), Ext(num), "reg_cl").Field(FieldW, 0, 0).Add()
	b.Op(name, bin(0xC0), Ext(num), "u8").Field(FieldW, 0, 0).Add()
}

// condSuffixes lists the condition code names in tttn order.
var condSuffixes = [16][]string{
	{"o"}, {"no"}, {"b", "nae", "c"}, {"nb", "ae", "nc"},
	{"z", "e"}, {"nz", "ne"}, {"be", "na"}, {"nbe", "a"},
	{"s"}, {"ns"}, {"p", "pe"}, {"np", "po"},
	{"l", "nge"}, {"nl", "ge"}, {"le", "ng"}, {"nle", "g"},
}

// condOps defines one opcode per condition code, the tttn value or'ed into
// the opcode byte after any 0F escape. customize may be nil.
func (b *Builder) condOps(prefix string, code []byte, hint Hint, customize func(*Draft), tokens ...string) {
	for i, names := range condSuffixes {
		c := append([]byte(nil), code...)
		if c[0] == 0x0F {
			c[1] |= byte(i)
		} else {
			c[0] |= byte(i)
		}
		for _, n := range names {
			d := b.Op(prefix+n, c, hint, tokens...)
			if customize != nil {
				customize(d)
			}
			d.Add()
		}
	}
}

// stringOps defines the b/w/d forms of a string instruction. The q form is
// added by the long mode table.
func (b *Builder) stringOps(name string, code byte, kind Prop) {
	b.Op(name+"b", bin(code), HintNone).Set(kind).ArgSize(8).Add()
	b.Op(name+"w", bin(code|1), HintNone).Set(kind).OpSize(16).Add()
	b.Op(name+"d", bin(code|1), HintNone).Set(kind).OpSize(32).Add()
}

// fpuArith defines an x87 arithmetic op: m32fp, m64fp and the register
// forms in both directions.
func (b *Builder) fpuArith(name string, n byte) {
	b.Op(name, bin(0xD8, n<<3), HintModRMA, "regfp0").ArgSize(32).Add()
	b.Op(name, bin(0xDC, n<<3), HintModRMA, "regfp0").ArgSize(64).Add()
	b.Op(name, bin(0xD8, 0xC0|n<<3), HintRegFP).Field(FieldD, 0, 2).Add()
}

// fpuInt defines the m16int and m32int forms of an x87 integer op.
func (b *Builder) fpuInt(name string, n, n2 byte) {
	b.Op(name, bin(0xDE|n2, n<<3), HintModRMA, "regfp0").ArgSize(16).Add()
	b.Op(name, bin(0xDA|n2, n<<3), HintModRMA, "regfp0").ArgSize(32).Add()
}

// fpuIntLoad adds the m64int form on top of fpuInt.
func (b *Builder) fpuIntLoad(name string, n byte) {
	b.fpuInt(name, n, 1)
	b.Op(name, bin(0xDF, 0x28|n<<3), HintModRMA, "regfp0").ArgSize(64).Add()
}

// granularOps defines the b/w/d/q element size family of a packed op; the
// granularity is or'ed into the last escape-free opcode byte.
func (b *Builder) granularOps(lo, hi int, name string, code []byte, hint Hint, customize func(*Draft), tokens ...string) {
	off := 1
	if len(code) > 1 && (code[1] == 0x38 || code[1] == 0x3A) {
		off = 2
	}
	for gg := lo; gg <= hi; gg++ {
		c := append([]byte(nil), code...)
		c[off] |= byte(gg)
		d := b.Op(name+[]string{"b", "w", "d", "q"}[gg], c, hint, tokens...)
		if customize != nil {
			customize(d)
		}
		d.Add()
	}
}

// mmxShiftOps defines packed shifts by register and by immediate.
func (b *Builder) mmxShiftOps(lo, hi int, name string, val byte) {
	b.granularOps(lo, hi, name, bin(0x0F, 0xC0|val<<4), HintMRMMMX, nil)
	b.granularOps(lo, hi, name, bin(0x0F, 0x70, 0xC0|val<<4), HintNone,
		func(d *Draft) { d.Field(FieldRegMMX, 2, 0) }, "regmmx", "u8")
}

// packedSingle defines an xxxps op and its F3-prefixed xxxss scalar twin.
func (b *Builder) packedSingle(name string, code []byte, hint Hint, tokens ...string) {
	b.Op(name, code, hint, tokens...).Add()
	b.Op(name[:len(name)-2]+"ss", code, hint, tokens...).NeedPfx(0xF3).Add()
}

// packedDouble defines an xxxpd op (66) and its F2-prefixed xxxsd twin.
func (b *Builder) packedDouble(name string, code []byte, hint Hint, tokens ...string) {
	b.Op(name, code, hint, tokens...).NeedPfx(0x66).Add()
	b.Op(name[:len(name)-2]+"sd", code, hint, tokens...).NeedPfx(0xF2).Add()
}

// farReturnOps defines iret/retf style returns with explicit width forms.
func (b *Builder) farReturnOps(name string, code byte, tokens ...string) {
	tokens = append([]string{"stopexec", "setip"}, tokens...)
	b.Op(name+".i32", bin(code), HintNone, tokens...).OpSize(32).Add()
	b.Op(name+".i16", bin(code), HintNone, tokens...).OpSize(16).Add()
	b.Op(name, bin(code), HintNone, tokens...).Add()
}

// vexOp defines a VEX encoded op with an optional vvvv source at argument
// index vreg (-1 for none).
func (b *Builder) vexOp(name string, opcode byte, l int, pp byte, mapSel int, w VexW, vreg int, hint Hint, tokens ...string) {
	b.Vex(name, opcode, Vex{L: l, PP: pp, Map: mapSel, W: w, VReg: vreg}, hint, tokens...).Add()
}
