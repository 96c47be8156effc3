package x86

import "regexp"

func definePentium(b *Builder) {
	b.Op("cmpxchg8b", bin(0x0F, 0xC7), Ext(1), "modrmA").OpSize(32).ArgSize(64).Add()

	// mmx
	b.Op("emms", bin(0x0F, 0x77), HintNone).Add()
	b.Op("movd", bin(0x0F, 0x6E), HintMRMMMX).Field(FieldD, 1, 4).
		SetArgs(ArgModRM, ArgRegMMX).OpSize(32).ArgSize(32).Add()
	b.Op("movq", bin(0x0F, 0x6F), HintMRMMMX).Field(FieldD, 1, 4).Reverse().ArgSize(64).Add()
	b.Op("packssdw", bin(0x0F, 0x6B), HintMRMMMX).Add()
	b.Op("packsswb", bin(0x0F, 0x63), HintMRMMMX).Add()
	b.Op("packuswb", bin(0x0F, 0x67), HintMRMMMX).Add()
	b.granularOps(0, 2, "padd", bin(0x0F, 0xFC), HintMRMMMX, nil)
	b.granularOps(0, 1, "padds", bin(0x0F, 0xEC), HintMRMMMX, nil)
	b.granularOps(0, 1, "paddus", bin(0x0F, 0xDC), HintMRMMMX, nil)
	b.Op("pand", bin(0x0F, 0xDB), HintMRMMMX).Add()
	b.Op("pandn", bin(0x0F, 0xDF), HintMRMMMX).Add()
	b.granularOps(0, 2, "pcmpeq", bin(0x0F, 0x74), HintMRMMMX, nil)
	b.granularOps(0, 2, "pcmpgt", bin(0x0F, 0x64), HintMRMMMX, nil)
	b.Op("pmaddwd", bin(0x0F, 0xF5), HintMRMMMX).Add()
	b.Op("pmulhuw", bin(0x0F, 0xE4), HintMRMMMX).Add()
	b.Op("pmulhw", bin(0x0F, 0xE5), HintMRMMMX).Add()
	b.Op("pmullw", bin(0x0F, 0xD5), HintMRMMMX).Add()
	b.Op("por", bin(0x0F, 0xEB), HintMRMMMX).Add()
	b.mmxShiftOps(1, 3, "psll", 3)
	b.mmxShiftOps(1, 2, "psra", 2)
	b.mmxShiftOps(1, 3, "psrl", 1)
	b.granularOps(0, 2, "psub", bin(0x0F, 0xF8), HintMRMMMX, nil)
	b.granularOps(0, 1, "psubs", bin(0x0F, 0xE8), HintMRMMMX, nil)
	b.granularOps(0, 1, "psubus", bin(0x0F, 0xD8), HintMRMMMX, nil)
	for i, sfx := range []string{"bw", "wd", "dq"} {
		b.Op("punpckh"+sfx, bin(0x0F, 0x68+byte(i)), HintMRMMMX).Add()
		b.Op("punpckl"+sfx, bin(0x0F, 0x60+byte(i)), HintMRMMMX).Add()
	}
	b.Op("pxor", bin(0x0F, 0xEF), HintMRMMMX).Add()
}

func defineP6(b *Builder) {
	b.condOps("cmov", bin(0x0F, 0x40), HintMRM, nil)
	for i, tt := range []string{"b", "e", "be", "u"} {
		b.Op("fcmov"+tt, bin(0xDA, 0xC0|byte(i)<<3), HintRegFP).Add()
		b.Op("fcmovn"+tt, bin(0xDB, 0xC0|byte(i)<<3), HintRegFP).Add()
	}
	b.Op("fcomi", bin(0xDB, 0xF0), HintRegFP).Add()
	b.Op("fxrstor", bin(0x0F, 0xAE, 1<<3), HintModRMA).Add()
	b.Op("fxsave", bin(0x0F, 0xAE, 0<<3), HintModRMA).Add()
	b.Op("sysenter", bin(0x0F, 0x34), HintNone).Add()
	b.Op("sysexit", bin(0x0F, 0x35), HintNone).Add()
	b.Op("syscall", bin(0x0F, 0x05), HintNone).Add()
	b.Op("sysret", bin(0x0F, 0x07), HintNone).Add()
}

// define3DNow adds the 3DNow! escape. The operation is selected by the
// trailing suffix byte, given as the immediate.
func define3DNow(b *Builder) {
	b.Op("3dnow", bin(0x0F, 0x0F), HintMRMMMX, "u8").Add()
	b.Op("femms", bin(0x0F, 0x0E), HintNone).Add()
	b.Op("prefetch", bin(0x0F, 0x0D, 0<<3), HintModRMA).Add()
	b.Op("prefetchw", bin(0x0F, 0x0D, 1<<3), HintModRMA).Add()
}

func defineSSE(b *Builder) {
	b.packedSingle("addps", bin(0x0F, 0x58), HintMRMXMM)
	b.Op("andnps", bin(0x0F, 0x55), HintMRMXMM).Add()
	b.Op("andps", bin(0x0F, 0x54), HintMRMXMM).Add()
	b.packedSingle("cmpps", bin(0x0F, 0xC2), HintMRMXMM, "u8")
	b.Op("comiss", bin(0x0F, 0x2F), HintMRMXMM).Add()

	b.Op("cvtpi2ps", bin(0x0F, 0x2A), HintMRMXMM).ReplaceArg(ArgModRMXMM, ArgModRMMMX).Add()
	b.Op("cvtps2pi", bin(0x0F, 0x2D), HintMRMMMX).ReplaceArg(ArgModRMMMX, ArgModRMXMM).Add()
	b.Op("cvtsi2ss", bin(0x0F, 0x2A), HintMRMXMM).ReplaceArg(ArgModRMXMM, ArgModRM).NeedPfx(0xF3).Add()
	b.Op("cvtss2si", bin(0x0F, 0x2D), HintMRM).ReplaceArg(ArgModRM, ArgModRMXMM).NeedPfx(0xF3).Add()
	b.Op("cvttps2pi", bin(0x0F, 0x2C), HintMRMMMX).ReplaceArg(ArgModRMMMX, ArgModRMXMM).Add()
	b.Op("cvttss2si", bin(0x0F, 0x2C), HintMRM).ReplaceArg(ArgModRM, ArgModRMXMM).NeedPfx(0xF3).Add()

	b.packedSingle("divps", bin(0x0F, 0x5E), HintMRMXMM)
	b.Op("ldmxcsr", bin(0x0F, 0xAE, 2<<3), HintModRMA).Add()
	b.packedSingle("maxps", bin(0x0F, 0x5F), HintMRMXMM)
	b.packedSingle("minps", bin(0x0F, 0x5D), HintMRMXMM)
	b.Op("movaps", bin(0x0F, 0x28), HintMRMXMM).Field(FieldD, 1, 0).Reverse().Add()
	b.Op("movhlps", bin(0x0F, 0x12), HintMRMXMM, "modrmR").Add()
	b.Op("movlps", bin(0x0F, 0x12), HintMRMXMM, "modrmA").Field(FieldD, 1, 0).Reverse().Add()
	b.Op("movlhps", bin(0x0F, 0x16), HintMRMXMM, "modrmR").Add()
	b.Op("movhps", bin(0x0F, 0x16), HintMRMXMM, "modrmA").Field(FieldD, 1, 0).Reverse().Add()
	b.Op("movmskps", bin(0x0F, 0x50, 0xC0), HintNone, "regxmm", "reg").
		Field(FieldReg, 2, 3).Field(FieldRegXMM, 2, 0).Reverse().Add()
	b.Op("movss", bin(0x0F, 0x10), HintMRMXMM).Field(FieldD, 1, 0).Reverse().NeedPfx(0xF3).Add()
	b.Op("movups", bin(0x0F, 0x10), HintMRMXMM).Field(FieldD, 1, 0).Reverse().Add()
	b.packedSingle("mulps", bin(0x0F, 0x59), HintMRMXMM)
	b.Op("orps", bin(0x0F, 0x56), HintMRMXMM).Add()
	b.packedSingle("rcpps", bin(0x0F, 0x53), HintMRMXMM)
	b.packedSingle("rsqrtps", bin(0x0F, 0x52), HintMRMXMM)
	b.Op("shufps", bin(0x0F, 0xC6), HintMRMXMM, "u8").Add()
	b.packedSingle("sqrtps", bin(0x0F, 0x51), HintMRMXMM)
	b.Op("stmxcsr", bin(0x0F, 0xAE, 3<<3), HintModRMA).Add()
	b.packedSingle("subps", bin(0x0F, 0x5C), HintMRMXMM)
	b.Op("ucomiss", bin(0x0F, 0x2E), HintMRMXMM).Add()
	b.Op("unpckhps", bin(0x0F, 0x15), HintMRMXMM).Add()
	b.Op("unpcklps", bin(0x0F, 0x14), HintMRMXMM).Add()
	b.Op("xorps", bin(0x0F, 0x57), HintMRMXMM).Add()

	// integer ops on mmx registers
	b.Op("pavgb", bin(0x0F, 0xE0), HintMRMMMX).Add()
	b.Op("pavgw", bin(0x0F, 0xE3), HintMRMMMX).Add()
	b.Op("pextrw", bin(0x0F, 0xC5, 0xC0), HintNone, "reg", "regmmx", "u8").
		Field(FieldReg, 2, 3).Field(FieldRegMMX, 2, 0).Add()
	b.Op("pinsrw", bin(0x0F, 0xC4, 0x00), HintNone, "regmmx", "modrm", "u8").
		Field(FieldModRM, 2, 0).Field(FieldRegMMX, 2, 3).ArgSize(16).Add()
	b.Op("pmaxsw", bin(0x0F, 0xEE), HintMRMMMX).Add()
	b.Op("pmaxub", bin(0x0F, 0xDE), HintMRMMMX).Add()
	b.Op("pminsw", bin(0x0F, 0xEA), HintMRMMMX).Add()
	b.Op("pminub", bin(0x0F, 0xDA), HintMRMMMX).Add()
	b.Op("pmovmskb", bin(0x0F, 0xD7, 0xC0), HintNone, "reg", "regmmx").
		Field(FieldReg, 2, 3).Field(FieldRegMMX, 2, 0).Add()
	b.Op("psadbw", bin(0x0F, 0xF6), HintMRMMMX).Add()
	b.Op("pshufw", bin(0x0F, 0x70), HintMRMMMX, "u8").Add()

	b.Op("maskmovq", bin(0x0F, 0xF7), HintMRMMMX, "modrmR").Add()
	b.Op("movntq", bin(0x0F, 0xE7), HintMRMMMX, "modrmA").Reverse().Add()
	b.Op("movntps", bin(0x0F, 0x2B), HintMRMXMM, "modrmA").Reverse().Add()
	b.Op("prefetcht0", bin(0x0F, 0x18, 1<<3), HintModRMA).Add()
	b.Op("prefetcht1", bin(0x0F, 0x18, 2<<3), HintModRMA).Add()
	b.Op("prefetcht2", bin(0x0F, 0x18, 3<<3), HintModRMA).Add()
	b.Op("prefetchnta", bin(0x0F, 0x18, 0<<3), HintModRMA).Add()
	b.Op("sfence", bin(0x0F, 0xAE, 0xF8), HintNone).Add()

	b.Op("nop", bin(0x0F, 0x1F), Ext(0)).Add()
}

// noXMMX lists the mmx-register opcodes that have no 66-prefixed xmm form.
var noXMMX = regexp.MustCompile(`^(?:mov(?:nt)?q|pshufw|cvt.*|maskmovq|movdq2q|movq2dq)$`)

func defineSSE2(b *Builder) {
	b.retag(func(op *Opcode) {
		if _, ok := op.fields[FieldRegMMX]; ok && !noXMMX.MatchString(op.name) {
			op.props[PropXMMX] = 1
		}
	})

	b.packedDouble("addpd", bin(0x0F, 0x58), HintMRMXMM)
	b.Op("andnpd", bin(0x0F, 0x55), HintMRMXMM).NeedPfx(0x66).Add()
	b.Op("andpd", bin(0x0F, 0x54), HintMRMXMM).NeedPfx(0x66).Add()
	b.packedDouble("cmppd", bin(0x0F, 0xC2), HintMRMXMM, "u8")
	b.Op("comisd", bin(0x0F, 0x2F), HintMRMXMM).NeedPfx(0x66).Add()

	b.Op("cvtpi2pd", bin(0x0F, 0x2A), HintMRMXMM).ReplaceArg(ArgModRMXMM, ArgModRMMMX).NeedPfx(0x66).Add()
	b.Op("cvtpd2pi", bin(0x0F, 0x2D), HintMRMMMX).ReplaceArg(ArgModRMMMX, ArgModRMXMM).NeedPfx(0x66).Add()
	b.Op("cvtsi2sd", bin(0x0F, 0x2A), HintMRMXMM).ReplaceArg(ArgModRMXMM, ArgModRM).NeedPfx(0xF2).Add()
	b.Op("cvtsd2si", bin(0x0F, 0x2D), HintMRM).ReplaceArg(ArgModRM, ArgModRMXMM).NeedPfx(0xF2).Add()
	b.Op("cvttpd2pi", bin(0x0F, 0x2C), HintMRMMMX).ReplaceArg(ArgModRMMMX, ArgModRMXMM).NeedPfx(0x66).Add()
	b.Op("cvttsd2si", bin(0x0F, 0x2C), HintMRM).ReplaceArg(ArgModRM, ArgModRMXMM).NeedPfx(0xF2).Add()

	b.Op("cvtpd2ps", bin(0x0F, 0x5A), HintMRMXMM).NeedPfx(0x66).Add()
	b.Op("cvtps2pd", bin(0x0F, 0x5A), HintMRMXMM).Add()
	b.Op("cvtsd2ss", bin(0x0F, 0x5A), HintMRMXMM).NeedPfx(0xF2).Add()
	b.Op("cvtss2sd", bin(0x0F, 0x5A), HintMRMXMM).NeedPfx(0xF3).Add()

	b.Op("cvtpd2dq", bin(0x0F, 0xE6), HintMRMXMM).NeedPfx(0xF2).Add()
	b.Op("cvttpd2dq", bin(0x0F, 0xE6), HintMRMXMM).NeedPfx(0x66).Add()
	b.Op("cvtdq2pd", bin(0x0F, 0xE6), HintMRMXMM).NeedPfx(0xF3).Add()
	b.Op("cvtps2dq", bin(0x0F, 0x5B), HintMRMXMM).NeedPfx(0x66).Add()
	b.Op("cvttps2dq", bin(0x0F, 0x5B), HintMRMXMM).NeedPfx(0xF3).Add()
	b.Op("cvtdq2ps", bin(0x0F, 0x5B), HintMRMXMM).Add()

	b.packedDouble("divpd", bin(0x0F, 0x5E), HintMRMXMM)
	b.packedDouble("maxpd", bin(0x0F, 0x5F), HintMRMXMM)
	b.packedDouble("minpd", bin(0x0F, 0x5D), HintMRMXMM)
	b.Op("movapd", bin(0x0F, 0x28), HintMRMXMM).Field(FieldD, 1, 0).Reverse().NeedPfx(0x66).Add()
	b.Op("movlpd", bin(0x0F, 0x12), HintMRMXMM, "modrmA").Field(FieldD, 1, 0).Reverse().NeedPfx(0x66).Add()
	b.Op("movhpd", bin(0x0F, 0x16), HintMRMXMM, "modrmA").Field(FieldD, 1, 0).Reverse().NeedPfx(0x66).Add()
	b.Op("movmskpd", bin(0x0F, 0x50, 0xC0), HintNone, "regxmm", "reg").
		Field(FieldReg, 2, 3).Field(FieldRegXMM, 2, 0).Reverse().NeedPfx(0x66).Add()
	b.Op("movsd", bin(0x0F, 0x10), HintMRMXMM).Field(FieldD, 1, 0).Reverse().NeedPfx(0xF2).Add()
	b.Op("movupd", bin(0x0F, 0x10), HintMRMXMM).Field(FieldD, 1, 0).Reverse().NeedPfx(0x66).Add()
	b.packedDouble("mulpd", bin(0x0F, 0x59), HintMRMXMM)
	b.Op("orpd", bin(0x0F, 0x56), HintMRMXMM).NeedPfx(0x66).Add()
	b.Op("shufpd", bin(0x0F, 0xC6), HintMRMXMM, "u8").NeedPfx(0x66).Add()
	b.packedDouble("sqrtpd", bin(0x0F, 0x51), HintMRMXMM)
	b.packedDouble("subpd", bin(0x0F, 0x5C), HintMRMXMM)
	b.Op("ucomisd", bin(0x0F, 0x2E), HintMRMXMM).NeedPfx(0x66).Add()
	b.Op("unpckhpd", bin(0x0F, 0x15), HintMRMXMM).NeedPfx(0x66).Add()
	b.Op("unpcklpd", bin(0x0F, 0x14), HintMRMXMM).NeedPfx(0x66).Add()
	b.Op("xorpd", bin(0x0F, 0x57), HintMRMXMM).NeedPfx(0x66).Add()

	b.Op("movdqa", bin(0x0F, 0x6F), HintMRMXMM).Field(FieldD, 1, 4).Reverse().NeedPfx(0x66).Add()
	b.Op("movdqu", bin(0x0F, 0x6F), HintMRMXMM).Field(FieldD, 1, 4).Reverse().NeedPfx(0xF3).Add()
	b.Op("movq2dq", bin(0x0F, 0xD6), HintMRMXMM, "modrmR").ReplaceArg(ArgModRMXMM, ArgModRMMMX).NeedPfx(0xF3).Add()
	b.Op("movdq2q", bin(0x0F, 0xD6), HintMRMMMX, "modrmR").ReplaceArg(ArgModRMMMX, ArgModRMXMM).NeedPfx(0xF2).Add()
	b.Op("movq", bin(0x0F, 0x7E), HintMRMXMM).NeedPfx(0xF3).Add()
	b.Op("movq", bin(0x0F, 0xD6), HintMRMXMM).Reverse().NeedPfx(0x66).Add()

	b.Op("paddq", bin(0x0F, 0xD4), HintMRMMMX, "xmmx").Add()
	b.Op("pmuludq", bin(0x0F, 0xF4), HintMRMMMX, "xmmx").Add()
	b.Op("pshuflw", bin(0x0F, 0x70), HintMRMXMM, "u8").NeedPfx(0xF2).Add()
	b.Op("pshufhw", bin(0x0F, 0x70), HintMRMXMM, "u8").NeedPfx(0xF3).Add()
	b.Op("pshufd", bin(0x0F, 0x70), HintMRMXMM, "u8").NeedPfx(0x66).Add()
	b.Op("pslldq", bin(0x0F, 0x73, 0xF8), HintNone, "regxmm", "u8").Field(FieldRegXMM, 2, 0).NeedPfx(0x66).Add()
	b.Op("psrldq", bin(0x0F, 0x73, 0xD8), HintNone, "regxmm", "u8").Field(FieldRegXMM, 2, 0).NeedPfx(0x66).Add()
	b.Op("psubq", bin(0x0F, 0xFB), HintMRMMMX, "xmmx").Add()
	b.Op("punpckhqdq", bin(0x0F, 0x6D), HintMRMXMM).NeedPfx(0x66).Add()
	b.Op("punpcklqdq", bin(0x0F, 0x6C), HintMRMXMM).NeedPfx(0x66).Add()

	b.Op("clflush", bin(0x0F, 0xAE, 7<<3), HintModRMA).Add()
	b.Op("maskmovdqu", bin(0x0F, 0xF7), HintMRMXMM, "modrmR").NeedPfx(0x66).Add()
	b.Op("movntpd", bin(0x0F, 0x2B), HintMRMXMM, "modrmA").Reverse().NeedPfx(0x66).Add()
	b.Op("movntdq", bin(0x0F, 0xE7), HintMRMXMM, "modrmA").Reverse().NeedPfx(0x66).Add()
	b.Op("movnti", bin(0x0F, 0xC3), HintMRMA).Reverse().Add()
	b.Op("pause", bin(0x90), HintNone).NeedPfx(0xF3).Add()
	b.Op("lfence", bin(0x0F, 0xAE, 0xE8), HintNone).Add()
	b.Op("mfence", bin(0x0F, 0xAE, 0xF0), HintNone).Add()
}

func defineSSE3(b *Builder) {
	b.Op("addsubpd", bin(0x0F, 0xD0), HintMRMXMM).NeedPfx(0x66).Add()
	b.Op("addsubps", bin(0x0F, 0xD0), HintMRMXMM).NeedPfx(0xF2).Add()
	b.Op("haddpd", bin(0x0F, 0x7C), HintMRMXMM).NeedPfx(0x66).Add()
	b.Op("haddps", bin(0x0F, 0x7C), HintMRMXMM).NeedPfx(0xF2).Add()
	b.Op("hsubpd", bin(0x0F, 0x7D), HintMRMXMM).NeedPfx(0x66).Add()
	b.Op("hsubps", bin(0x0F, 0x7D), HintMRMXMM).NeedPfx(0xF2).Add()

	b.Op("monitor", bin(0x0F, 0x01, 0xC8), HintNone).Add()
	b.Op("mwait", bin(0x0F, 0x01, 0xC9), HintNone).Add()

	b.Op("fisttp", bin(0xDF, 1<<3), HintModRMA).ArgSize(16).Add()
	b.Op("fisttp", bin(0xDB, 1<<3), HintModRMA).ArgSize(32).Add()
	b.Op("fisttp", bin(0xDD, 1<<3), HintModRMA).ArgSize(64).Add()
	b.Op("lddqu", bin(0x0F, 0xF0), HintMRMXMM, "modrmA").NeedPfx(0xF2).Add()
	b.Op("movddup", bin(0x0F, 0x12), HintMRMXMM).NeedPfx(0xF2).Add()
	b.Op("movshdup", bin(0x0F, 0x16), HintMRMXMM).NeedPfx(0xF3).Add()
	b.Op("movsldup", bin(0x0F, 0x12), HintMRMXMM).NeedPfx(0xF3).Add()
}

func defineSSSE3(b *Builder) {
	b.granularOps(0, 2, "pabs", bin(0x0F, 0x38, 0x1C), HintMRMMMX, nil, "xmmx")
	b.Op("palignr", bin(0x0F, 0x3A, 0x0F), HintMRMMMX, "u8", "xmmx").Add()
	for _, op := range []struct {
		name string
		code byte
	}{
		{"phaddd", 0x02}, {"phaddsw", 0x03}, {"phaddw", 0x01},
		{"phsubd", 0x06}, {"phsubsw", 0x07}, {"phsubw", 0x05},
		{"pmaddubsw", 0x04}, {"pmulhrsw", 0x0B}, {"pshufb", 0x00},
	} {
		b.Op(op.name, bin(0x0F, 0x38, op.code), HintMRMMMX, "xmmx").Add()
	}
	b.granularOps(0, 2, "psign", bin(0x0F, 0x38, 0x08), HintMRMMMX, nil, "xmmx")
}

// sse4Op is the common 66 0F 38/3A xx /r shape of SSE4 and AES-NI.
func (b *Builder) sse4Op(name string, escape, code byte, tokens ...string) *Draft {
	return b.Op(name, bin(0x0F, escape, code), HintMRMXMM, tokens...).NeedPfx(0x66)
}

func defineSSE41(b *Builder) {
	b.sse4Op("blendpd", 0x3A, 0x0D, "u8").Add()
	b.sse4Op("blendps", 0x3A, 0x0C, "u8").Add()
	b.sse4Op("blendvpd", 0x38, 0x15).Add()
	b.sse4Op("blendvps", 0x38, 0x14).Add()
	b.sse4Op("dppd", 0x3A, 0x41, "u8").Add()
	b.sse4Op("dpps", 0x3A, 0x40, "u8").Add()
	b.sse4Op("extractps", 0x3A, 0x17, "u8").SetArgs(ArgModRM, ArgRegXMM, ArgUImm8).ArgSize(32).Add()
	b.sse4Op("insertps", 0x3A, 0x21, "u8").Add()
	b.sse4Op("movntdqa", 0x38, 0x2A, "modrmA").Add()
	b.sse4Op("mpsadbw", 0x3A, 0x42, "u8").Add()
	b.sse4Op("packusdw", 0x38, 0x2B).Add()
	b.sse4Op("pblendvb", 0x38, 0x10).Add()
	b.sse4Op("pblendw", 0x3A, 0x0E, "u8").Add()
	b.sse4Op("pcmpeqq", 0x38, 0x29).Add()
	for i, sfx := range []string{"b", "w", "d"} {
		b.sse4Op("pextr"+sfx, 0x3A, 0x14+byte(i), "u8").SetArgs(ArgModRM, ArgRegXMM, ArgUImm8).ArgSize(8 << i).Add()
	}
	// pinsrw has been there since SSE at 0F C4.
	b.sse4Op("pinsrb", 0x3A, 0x20, "u8").ReplaceArg(ArgModRMXMM, ArgModRM).ArgSize(8).Add()
	b.sse4Op("pinsrd", 0x3A, 0x22, "u8").ReplaceArg(ArgModRMXMM, ArgModRM).ArgSize(32).Add()
	b.sse4Op("phminposuw", 0x38, 0x41).Add()
	for _, op := range []struct {
		name string
		code byte
	}{
		{"pminsb", 0x38}, {"pminsd", 0x39}, {"pminuw", 0x3A}, {"pminud", 0x3B},
		{"pmaxsb", 0x3C}, {"pmaxsd", 0x3D}, {"pmaxuw", 0x3E}, {"pmaxud", 0x3F},
		{"pmovsxbw", 0x20}, {"pmovsxbd", 0x21}, {"pmovsxbq", 0x22},
		{"pmovsxwd", 0x23}, {"pmovsxwq", 0x24}, {"pmovsxdq", 0x25},
		{"pmovzxbw", 0x30}, {"pmovzxbd", 0x31}, {"pmovzxbq", 0x32},
		{"pmovzxwd", 0x33}, {"pmovzxwq", 0x34}, {"pmovzxdq", 0x35},
		{"pmuldq", 0x28}, {"pmulld", 0x40}, {"ptest", 0x17},
	} {
		b.sse4Op(op.name, 0x38, op.code).Add()
	}
	b.sse4Op("roundps", 0x3A, 0x08, "u8").Add()
	b.sse4Op("roundpd", 0x3A, 0x09, "u8").Add()
	b.sse4Op("roundss", 0x3A, 0x0A, "u8").Add()
	b.sse4Op("roundsd", 0x3A, 0x0B, "u8").Add()
}

func defineSSE42(b *Builder) {
	b.Op("crc32", bin(0x0F, 0x38, 0xF0), HintMRM).NeedPfx(0xF2).Widening().ArgSize(8).Add()
	b.Op("crc32", bin(0x0F, 0x38, 0xF1), HintMRM).NeedPfx(0xF2).Add()
	b.sse4Op("pcmpestrm", 0x3A, 0x60, "u8").Add()
	b.sse4Op("pcmpestri", 0x3A, 0x61, "u8").Add()
	b.sse4Op("pcmpistrm", 0x3A, 0x62, "u8").Add()
	b.sse4Op("pcmpistri", 0x3A, 0x63, "u8").Add()
	b.sse4Op("pcmpgtq", 0x38, 0x37).Add()
	b.Op("popcnt", bin(0x0F, 0xB8), HintMRM).NeedPfx(0xF3).Add()
}

func defineAESNI(b *Builder) {
	b.sse4Op("aesdec", 0x38, 0xDE).Add()
	b.sse4Op("aesdeclast", 0x38, 0xDF).Add()
	b.sse4Op("aesenc", 0x38, 0xDC).Add()
	b.sse4Op("aesenclast", 0x38, 0xDD).Add()
	b.sse4Op("aesimc", 0x38, 0xDB).Add()
	b.sse4Op("aeskeygenassist", 0x3A, 0xDF, "u8").Add()
	b.sse4Op("pclmulqdq", 0x3A, 0x44, "u8").Add()
}

func defineVMX(b *Builder) {
	b.Op("vmcall", bin(0x0F, 0x01, 0xC1), HintNone).Add()
	b.Op("vmlaunch", bin(0x0F, 0x01, 0xC2), HintNone).Add()
	b.Op("vmresume", bin(0x0F, 0x01, 0xC3), HintNone).Add()
	b.Op("vmxoff", bin(0x0F, 0x01, 0xC4), HintNone).Add()
	b.Op("vmread", bin(0x0F, 0x78), HintMRM).Reverse().Auto64().Add()
	b.Op("vmwrite", bin(0x0F, 0x79), HintMRM).Auto64().Add()
	b.Op("vmclear", bin(0x0F, 0xC7, 6<<3), HintModRMA).ArgSize(64).NeedPfx(0x66).Add()
	b.Op("vmxon", bin(0x0F, 0xC7, 6<<3), HintModRMA).ArgSize(64).NeedPfx(0xF3).Add()
	b.Op("vmptrld", bin(0x0F, 0xC7, 6<<3), HintModRMA).ArgSize(64).Add()
	b.Op("vmptrst", bin(0x0F, 0xC7, 7<<3), HintModRMA).ArgSize(64).Add()
	b.Op("invept", bin(0x0F, 0x38, 0x80), HintMRMA).NeedPfx(0x66).Auto64().Add()
	b.Op("invvpid", bin(0x0F, 0x38, 0x81), HintMRMA).NeedPfx(0x66).Auto64().Add()

	b.Op("getsec", bin(0x0F, 0x37), HintNone).Add()

	b.Op("xgetbv", bin(0x0F, 0x01, 0xD0), HintNone).Add()
	b.Op("xsetbv", bin(0x0F, 0x01, 0xD1), HintNone).Add()
	b.Op("rdtscp", bin(0x0F, 0x01, 0xF9), HintNone).Add()
	b.Op("xrstor", bin(0x0F, 0xAE, 5<<3), HintModRMA).Add()
	b.Op("xsave", bin(0x0F, 0xAE, 4<<3), HintModRMA).Add()
}
