package x86

func define387(b *Builder) {
	simple := func(name string, code ...byte) {
		b.Op(name, code, HintNone).Add()
	}
	// st(i) ops accept both "op st(i)" and "op st(i), st".
	stackOp := func(name string, code ...byte) {
		b.Op(name, code, HintNone, "regfp").Field(FieldRegFP, len(code)-1, 0).Add()
		b.Op(name, code, HintRegFP).Add()
	}

	simple("f2xm1", 0xD9, 0xF0)
	simple("fabs", 0xD9, 0xE1)
	b.fpuArith("fadd", 0)
	stackOp("faddp", 0xDE, 0xC0)
	simple("faddp", 0xDE, 0xC1)
	b.Op("fbld", bin(0xDF, 4<<3), HintModRMA, "regfp0").ArgSize(80).Add()
	b.Op("fbstp", bin(0xDF, 6<<3), HintModRMA, "regfp0").ArgSize(80).Add()
	b.Op("fchs", bin(0xD9, 0xE0), HintNone, "regfp0").Add()
	simple("fnclex", 0xDB, 0xE2)
	b.fpuArith("fcom", 2)
	b.fpuArith("fcomp", 3)
	simple("fcompp", 0xDE, 0xD9)
	stackOp("fcomip", 0xDF, 0xF0)
	b.Op("fcos", bin(0xD9, 0xFF), HintNone, "regfp0").Add()
	simple("fdecstp", 0xD9, 0xF6)
	b.fpuArith("fdiv", 6)
	b.fpuArith("fdivr", 7)
	stackOp("fdivp", 0xDE, 0xF8)
	simple("fdivp", 0xDE, 0xF9)
	stackOp("fdivrp", 0xDE, 0xF0)
	simple("fdivrp", 0xDE, 0xF1)
	b.Op("ffree", bin(0xDD, 0xC0), HintNone, "regfp").Field(FieldRegFP, 1, 0).Add()
	for i, name := range []string{"fiadd", "fimul", "ficom", "ficomp", "fisub", "fisubr", "fidiv", "fidivr"} {
		b.fpuInt(name, byte(i), 0)
	}
	simple("fincstp", 0xD9, 0xF7)
	simple("fninit", 0xDB, 0xE3)
	b.fpuInt("fist", 2, 1)
	b.fpuIntLoad("fild", 0)
	b.fpuIntLoad("fistp", 3)
	b.Op("fld", bin(0xD9, 0<<3), HintModRMA, "regfp0").ArgSize(32).Add()
	b.Op("fld", bin(0xDD, 0<<3), HintModRMA, "regfp0").ArgSize(64).Add()
	b.Op("fld", bin(0xDB, 5<<3), HintModRMA, "regfp0").ArgSize(80).Add()
	stackOp("fld", 0xD9, 0xC0)

	b.Op("fldcw", bin(0xD9, 5<<3), HintModRMA).ArgSize(16).Add()
	b.Op("fldenv", bin(0xD9, 4<<3), HintModRMA).Add()
	simple("fld1", 0xD9, 0xE8)
	simple("fldl2t", 0xD9, 0xE9)
	simple("fldl2e", 0xD9, 0xEA)
	simple("fldpi", 0xD9, 0xEB)
	simple("fldlg2", 0xD9, 0xEC)
	simple("fldln2", 0xD9, 0xED)
	simple("fldz", 0xD9, 0xEE)
	b.fpuArith("fmul", 1)
	stackOp("fmulp", 0xDE, 0xC8)
	simple("fmulp", 0xDE, 0xC9)
	simple("fnop", 0xD9, 0xD0)
	simple("fpatan", 0xD9, 0xF3)
	simple("fprem", 0xD9, 0xF8)
	simple("fprem1", 0xD9, 0xF5)
	simple("fptan", 0xD9, 0xF2)
	simple("frndint", 0xD9, 0xFC)
	b.Op("frstor", bin(0xDD, 4<<3), HintModRMA).Add()
	b.Op("fnsave", bin(0xDD, 6<<3), HintModRMA).Add()
	b.Op("fnstcw", bin(0xD9, 7<<3), HintModRMA).ArgSize(16).Add()
	b.Op("fnstenv", bin(0xD9, 6<<3), HintModRMA).Add()
	simple("fnstsw", 0xDF, 0xE0)
	b.Op("fnstsw", bin(0xDD, 7<<3), HintModRMA).ArgSize(16).Add()
	simple("fscale", 0xD9, 0xFD)
	simple("fsin", 0xD9, 0xFE)
	simple("fsincos", 0xD9, 0xFB)
	simple("fsqrt", 0xD9, 0xFA)
	b.Op("fst", bin(0xD9, 2<<3), HintModRMA, "regfp0").ArgSize(32).Add()
	b.Op("fst", bin(0xDD, 2<<3), HintModRMA, "regfp0").ArgSize(64).Add()
	stackOp("fst", 0xDD, 0xD0)
	b.Op("fstp", bin(0xD9, 3<<3), HintModRMA, "regfp0").ArgSize(32).Add()
	b.Op("fstp", bin(0xDD, 3<<3), HintModRMA, "regfp0").ArgSize(64).Add()
	b.Op("fstp", bin(0xDB, 7<<3), HintModRMA, "regfp0").ArgSize(80).Add()
	stackOp("fstp", 0xDD, 0xD8)
	b.fpuArith("fsub", 4)
	stackOp("fsubp", 0xDE, 0xE8)
	simple("fsubp", 0xDE, 0xE9)
	b.fpuArith("fsubr", 5)
	stackOp("fsubrp", 0xDE, 0xE0)
	simple("fsubrp", 0xDE, 0xE1)
	simple("ftst", 0xD9, 0xE4)
	stackOp("fucom", 0xDD, 0xE0)
	stackOp("fucomp", 0xDD, 0xE8)
	simple("fucompp", 0xDA, 0xE9)
	stackOp("fucomi", 0xDB, 0xE8)
	simple("fxam", 0xD9, 0xE5)
	stackOp("fxch", 0xD9, 0xC8)
	simple("fxtract", 0xD9, 0xF4)
	simple("fyl2x", 0xD9, 0xF1)
	simple("fyl2xp1", 0xD9, 0xF9)

	// wait-prefixed forms
	simple("fclex", 0x9B, 0xDB, 0xE2)
	simple("finit", 0x9B, 0xDB, 0xE3)
	b.Op("fsave", bin(0x9B, 0xDD, 6<<3), HintModRMA).Add()
	b.Op("fstcw", bin(0x9B, 0xD9, 7<<3), HintModRMA).ArgSize(16).Add()
	b.Op("fstenv", bin(0x9B, 0xD9, 6<<3), HintModRMA).Add()
	simple("fstsw", 0x9B, 0xDF, 0xE0)
	b.Op("fstsw", bin(0x9B, 0xDD, 7<<3), HintModRMA).ArgSize(16).Add()
	simple("fwait", 0x9B)
}
