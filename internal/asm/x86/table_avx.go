package x86

// vexArith defines the VEX forms of a packed float op together with its
// scalar twins: ps, pd at both vector lengths, ss and sd at 128 bits only.
func (b *Builder) vexArith(name string, opcode byte, vreg int) {
	for _, l := range []int{128, 256} {
		hint := HintMRMXMM
		if l == 256 {
			hint = HintMRMYMM
		}
		b.vexOp(name+"ps", opcode, l, 0, 1, VexWIG, vreg, hint)
		b.vexOp(name+"pd", opcode, l, 0x66, 1, VexWIG, vreg, hint)
	}
	b.vexOp(name+"ss", opcode, 128, 0xF3, 1, VexWIG, vreg, HintMRMXMM)
	b.vexOp(name+"sd", opcode, 128, 0xF2, 1, VexWIG, vreg, HintMRMXMM)
}

// vexInt defines a 66-prefixed packed integer op at one vector length.
func (b *Builder) vexInt(name string, opcode byte, l, mapSel, vreg int, tokens ...string) {
	hint := HintMRMXMM
	if l == 256 {
		hint = HintMRMYMM
	}
	b.vexOp(name, opcode, l, 0x66, mapSel, VexWIG, vreg, hint, tokens...)
}

// vexMove defines a load form at opcode and the matching store at store.
func (b *Builder) vexMove(name string, load, store byte, pp byte, lengths ...int) {
	for _, l := range lengths {
		hint := HintMRMXMM
		if l == 256 {
			hint = HintMRMYMM
		}
		b.vexOp(name, load, l, pp, 1, VexWIG, -1, hint)
		b.Vex(name, store, Vex{L: l, PP: pp, Map: 1, VReg: -1}, hint).Reverse().Add()
	}
}

// avxIntOps lists the packed integer ops shared by AVX (128 bits) and
// AVX2 (256 bits).
var avxIntOps = []struct {
	name   string
	opcode byte
	mapSel int
}{
	{"vpaddb", 0xFC, 1}, {"vpaddw", 0xFD, 1}, {"vpaddd", 0xFE, 1}, {"vpaddq", 0xD4, 1},
	{"vpsubb", 0xF8, 1}, {"vpsubw", 0xF9, 1}, {"vpsubd", 0xFA, 1}, {"vpsubq", 0xFB, 1},
	{"vpcmpeqb", 0x74, 1}, {"vpcmpeqw", 0x75, 1}, {"vpcmpeqd", 0x76, 1},
	{"vpcmpgtb", 0x64, 1}, {"vpcmpgtw", 0x65, 1}, {"vpcmpgtd", 0x66, 1},
	{"vpand", 0xDB, 1}, {"vpandn", 0xDF, 1}, {"vpor", 0xEB, 1}, {"vpxor", 0xEF, 1},
	{"vpmullw", 0xD5, 1}, {"vpmaddwd", 0xF5, 1}, {"vpavgb", 0xE0, 1}, {"vpavgw", 0xE3, 1},
	{"vpunpcklbw", 0x60, 1}, {"vpunpcklwd", 0x61, 1}, {"vpunpckldq", 0x62, 1},
	{"vpunpckhbw", 0x68, 1}, {"vpunpckhwd", 0x69, 1}, {"vpunpckhdq", 0x6A, 1},
	{"vpshufb", 0x00, 2}, {"vpmulld", 0x40, 2}, {"vpcmpeqq", 0x29, 2},
}

// avxUnaryOps are packed integer ops without a vvvv operand.
var avxUnaryOps = []struct {
	name   string
	opcode byte
}{
	{"vpabsb", 0x1C}, {"vpabsw", 0x1D}, {"vpabsd", 0x1E},
}

func defineAVX(b *Builder) {
	b.vexArith("vadd", 0x58, 1)
	b.vexArith("vsub", 0x5C, 1)
	b.vexArith("vmul", 0x59, 1)
	b.vexArith("vdiv", 0x5E, 1)
	b.vexArith("vmin", 0x5D, 1)
	b.vexArith("vmax", 0x5F, 1)
	for _, l := range []int{128, 256} {
		hint := HintMRMXMM
		if l == 256 {
			hint = HintMRMYMM
		}
		for _, op := range []struct {
			name   string
			opcode byte
		}{{"vand", 0x54}, {"vandn", 0x55}, {"vor", 0x56}, {"vxor", 0x57}} {
			b.vexOp(op.name+"ps", op.opcode, l, 0, 1, VexWIG, 1, hint)
			b.vexOp(op.name+"pd", op.opcode, l, 0x66, 1, VexWIG, 1, hint)
		}
		b.vexOp("vsqrtps", 0x51, l, 0, 1, VexWIG, -1, hint)
		b.vexOp("vsqrtpd", 0x51, l, 0x66, 1, VexWIG, -1, hint)
		b.vexOp("vshufps", 0xC6, l, 0, 1, VexWIG, 1, hint, "u8")
		b.vexOp("vblendvps", 0x4A, l, 0x66, 3, VexW0, 1, hint, map[int]string{128: "i4xmm", 256: "i4ymm"}[l])
		b.vexOp("vblendvpd", 0x4B, l, 0x66, 3, VexW0, 1, hint, map[int]string{128: "i4xmm", 256: "i4ymm"}[l])
		b.Vex("vbroadcastss", 0x18, Vex{L: l, PP: 0x66, Map: 2, W: VexW0, VReg: -1}, hint, "modrmA").
			ReplaceArg(map[int]ArgKind{128: ArgModRMXMM, 256: ArgModRMYMM}[l], ArgModRM).ArgSize(32).Add()
	}
	b.vexMove("vmovaps", 0x28, 0x29, 0, 128, 256)
	b.vexMove("vmovapd", 0x28, 0x29, 0x66, 128, 256)
	b.vexMove("vmovups", 0x10, 0x11, 0, 128, 256)
	b.vexMove("vmovupd", 0x10, 0x11, 0x66, 128, 256)
	b.vexMove("vmovdqa", 0x6F, 0x7F, 0x66, 128, 256)
	b.vexMove("vmovdqu", 0x6F, 0x7F, 0xF3, 128, 256)

	b.Vex("vmovd", 0x6E, Vex{L: 128, PP: 0x66, Map: 1, W: VexW0, VReg: -1}, HintMRMXMM).
		ReplaceArg(ArgModRMXMM, ArgModRM).OpSize(32).Add()
	b.Vex("vmovd", 0x7E, Vex{L: 128, PP: 0x66, Map: 1, W: VexW0, VReg: -1}, HintMRMXMM).
		ReplaceArg(ArgModRMXMM, ArgModRM).Reverse().OpSize(32).Add()

	b.vexOp("vzeroupper", 0x77, 128, 0, 1, VexWIG, -1, HintNone)
	b.vexOp("vzeroall", 0x77, 256, 0, 1, VexWIG, -1, HintNone)

	for _, op := range avxIntOps {
		b.vexInt(op.name, op.opcode, 128, op.mapSel, 1)
	}
	for _, op := range avxUnaryOps {
		b.vexInt(op.name, op.opcode, 128, 2, -1)
	}
	b.vexInt("vmpsadbw", 0x42, 128, 3, 1, "u8")
	b.vexInt("vptest", 0x17, 128, 2, -1)
	b.vexInt("vptest", 0x17, 256, 2, -1)

	b.vexOp("vaesenc", 0xDC, 128, 0x66, 2, VexWIG, 1, HintMRMXMM)
	b.vexOp("vaesenclast", 0xDD, 128, 0x66, 2, VexWIG, 1, HintMRMXMM)
	b.vexOp("vaesdec", 0xDE, 128, 0x66, 2, VexWIG, 1, HintMRMXMM)
	b.vexOp("vaesdeclast", 0xDF, 128, 0x66, 2, VexWIG, 1, HintMRMXMM)
	b.vexOp("vpclmulqdq", 0x44, 128, 0x66, 3, VexWIG, 1, HintMRMXMM, "u8")
}

func defineAVX2(b *Builder) {
	for _, op := range avxIntOps {
		b.vexInt(op.name, op.opcode, 256, op.mapSel, 1)
	}
	for _, op := range avxUnaryOps {
		b.vexInt(op.name, op.opcode, 256, 2, -1)
	}
	b.vexInt("vmpsadbw", 0x42, 256, 3, 1, "u8")
	b.vexOp("vpermq", 0x00, 256, 0x66, 3, VexW1, -1, HintMRMYMM, "u8")
	b.vexOp("vpermpd", 0x01, 256, 0x66, 3, VexW1, -1, HintMRMYMM, "u8")
	b.vexOp("vperm2i128", 0x46, 256, 0x66, 3, VexW0, 1, HintMRMYMM, "u8")
	b.Vex("vpbroadcastd", 0x58, Vex{L: 128, PP: 0x66, Map: 2, W: VexW0, VReg: -1}, HintMRMXMM).Add()
	b.Vex("vpbroadcastd", 0x58, Vex{L: 256, PP: 0x66, Map: 2, W: VexW0, VReg: -1}, HintMRMYMM).
		ReplaceArg(ArgModRMYMM, ArgModRMXMM).Add()
}

// defineBMI1 adds the VEX encoded general purpose bit manipulation ops; the
// vvvv field holds a general purpose register.
func defineBMI1(b *Builder) {
	lz := Vex{L: 128, Map: 2, W: VexWIG, VReg: -1}
	b.Vex("andn", 0xF2, lz, HintMRM).InsertArg(1, ArgVexVReg).Add()
	for i, name := range []string{"blsr", "blsmsk", "blsi"} {
		b.Vex(name, 0xF3, lz, Ext(byte(i+1))).InsertArg(0, ArgVexVReg).Add()
	}
}
