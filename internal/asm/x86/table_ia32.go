package x86

// define386Common registers the everyday integer instructions.
func define386Common(b *Builder) {
	b.aluOps("adc", 2, "i")
	b.aluOps("add", 0, "i")
	b.aluOps("and", 4, "u")
	b.Op("bswap", bin(0x0F, 0xC8), HintReg).Add()
	b.Op("call", bin(0xE8), HintNone, "stopexec", "setip", "i", "saveip").Add()
	b.Op("call", bin(0xFF), Ext(2), "stopexec", "setip", "saveip").Auto64().Add()
	b.Op("cbw", bin(0x98), HintNone).OpSize(16).Add()
	b.Op("cwde", bin(0x98), HintNone).OpSize(32).Add()
	b.Op("cwd", bin(0x99), HintNone).OpSize(16).Add()
	b.Op("cdq", bin(0x99), HintNone).OpSize(32).Add()
	b.aluOps("cmp", 7, "i")
	b.stringOps("cmps", 0xA6, PropStrOpZ)
	b.Op("dec", bin(0x48), HintReg).Not64().Add()
	b.Op("dec", bin(0xFE), Ext(1)).Field(FieldW, 0, 0).Add()
	b.Op("div", bin(0xF6), Ext(6)).Field(FieldW, 0, 0).Add()
	b.Op("enter", bin(0xC8), HintNone, "u16", "u8").Add()
	b.Op("idiv", bin(0xF6), Ext(7)).Field(FieldW, 0, 0).Add()
	b.Op("imul", bin(0xF6), Ext(5)).Field(FieldW, 0, 0).Add()
	b.Op("imul", bin(0x0F, 0xAF), HintMRM).Add()
	b.Op("imul", bin(0x69), HintMRM, "i").Field(FieldS, 0, 1).Add()
	b.Op("inc", bin(0x40), HintReg).Not64().Add()
	b.Op("inc", bin(0xFE), Ext(0)).Field(FieldW, 0, 0).Add()
	b.Op("int", bin(0xCC), HintNone, "imm_val3", "stopexec").Add()
	b.Op("int", bin(0xCD), HintNone, "u8").Add()
	b.condOps("j", bin(0x70), HintNone, nil, "setip", "i8")
	b.condOps("j", bin(0x0F, 0x80), HintNone, nil, "setip", "i")
	b.Op("jmp", bin(0xE9), HintNone, "setip", "i", "stopexec").Field(FieldS, 0, 1).Add()
	b.Op("jmp", bin(0xFF), Ext(4), "setip", "stopexec").Auto64().Add()
	b.Op("lea", bin(0x8D), HintMRMA).Add()
	b.Op("leave", bin(0xC9), HintNone).Add()
	b.stringOps("lods", 0xAC, PropStrOp)
	b.Op("loop", bin(0xE2), HintNone, "setip", "i8").Add()
	b.Op("loopz", bin(0xE1), HintNone, "setip", "i8").Add()
	b.Op("loope", bin(0xE1), HintNone, "setip", "i8").Add()
	b.Op("loopnz", bin(0xE0), HintNone, "setip", "i8").Add()
	b.Op("loopne", bin(0xE0), HintNone, "setip", "i8").Add()
	b.Op("mov", bin(0xA0), HintNone, "mrm_imm", "reg_eax").Field(FieldW, 0, 0).Field(FieldD, 0, 1).Add()
	b.Op("mov", bin(0x88), HintMRMW).Field(FieldD, 0, 1).Add()
	b.Op("mov", bin(0xB0), HintReg, "u").Field(FieldW, 0, 3).NoOpSize64().Add()
	b.Op("mov", bin(0xC6), Ext(0), "u").Field(FieldW, 0, 0).Add()
	b.stringOps("movs", 0xA4, PropStrOp)
	b.Op("movsx", bin(0x0F, 0xBE), HintMRMW).Widening().Add()
	b.Op("movzx", bin(0x0F, 0xB6), HintMRMW).Widening().Add()
	b.Op("mul", bin(0xF6), Ext(4)).Field(FieldW, 0, 0).Add()
	b.Op("neg", bin(0xF6), Ext(3)).Field(FieldW, 0, 0).Add()
	b.Op("nop", bin(0x90), HintNone).Add()
	b.Op("not", bin(0xF6), Ext(2)).Field(FieldW, 0, 0).Add()
	b.aluOps("or", 1, "u")
	b.Op("pop", bin(0x58), HintReg).Auto64().Add()
	b.Op("pop", bin(0x8F), Ext(0)).Auto64().Add()
	b.Op("push", bin(0x50), HintReg).Auto64().Add()
	b.Op("push", bin(0xFF), Ext(6)).Auto64().Add()
	b.Op("push", bin(0x68), HintNone, "u").Field(FieldS, 0, 1).Auto64().Add()
	b.Op("ret", bin(0xC3), HintNone, "stopexec", "setip").Add()
	b.Op("ret", bin(0xC2), HintNone, "stopexec", "u16", "setip").Add()
	b.shiftOps("rol", 0)
	b.shiftOps("ror", 1)
	b.shiftOps("sar", 7)
	b.aluOps("sbb", 3, "i")
	b.stringOps("scas", 0xAE, PropStrOpZ)
	b.condOps("set", bin(0x0F, 0x90), Ext(0), func(d *Draft) { d.ArgSize(8) })
	b.shiftOps("shl", 4)
	b.shiftOps("sal", 6)
	b.Op("shld", bin(0x0F, 0xA4), HintMRM, "u8").SetArgs(ArgModRM, ArgReg, ArgUImm8).Add()
	b.Op("shld", bin(0x0F, 0xA5), HintMRM, "reg_cl").SetArgs(ArgModRM, ArgReg, ArgRegCL).Add()
	b.shiftOps("shr", 5)
	b.Op("shrd", bin(0x0F, 0xAC), HintMRM, "u8").SetArgs(ArgModRM, ArgReg, ArgUImm8).Add()
	b.Op("shrd", bin(0x0F, 0xAD), HintMRM, "reg_cl").SetArgs(ArgModRM, ArgReg, ArgRegCL).Add()
	b.stringOps("stos", 0xAA, PropStrOp)
	b.aluOps("sub", 5, "i")
	b.Op("test", bin(0x84), HintMRMW).Add()
	b.Op("test", bin(0xA8), HintNone, "reg_eax", "u").Field(FieldW, 0, 0).Add()
	b.Op("test", bin(0xF6), Ext(0), "u").Field(FieldW, 0, 0).Add()
	b.Op("xchg", bin(0x90), HintReg, "reg_eax").Add()
	b.Op("xchg", bin(0x90), HintReg, "reg_eax").Reverse().Add()
	b.Op("xchg", bin(0x86), HintMRMW).Add()
	b.Op("xchg", bin(0x86), HintMRMW).Reverse().Add()
	b.aluOps("xor", 6, "u")
}

// define386 adds the rest of the 386 set: system, BCD, port I/O and far
// control transfers.
func define386(b *Builder) {
	b.Op("aaa", bin(0x37), HintNone).Not64().Add()
	b.Op("aad", bin(0xD5, 0x0A), HintNone).Not64().Add()
	b.Op("aam", bin(0xD4, 0x0A), HintNone).Not64().Add()
	b.Op("aas", bin(0x3F), HintNone).Not64().Add()
	b.Op("arpl", bin(0x63), HintMRM).ArgSize(16).Reverse().Not64().Add()
	b.Op("bound", bin(0x62), HintMRMA).Not64().Add()
	b.Op("bsf", bin(0x0F, 0xBC), HintMRM).Add()
	b.Op("tzcnt", bin(0x0F, 0xBC), HintMRM).NeedPfx(0xF3).Add()
	b.Op("bsr", bin(0x0F, 0xBD), HintMRM).Add()
	b.Op("lzcnt", bin(0x0F, 0xBD), HintMRM).NeedPfx(0xF3).Add()
	b.bitTestOps("bt", 0)
	b.bitTestOps("btc", 3)
	b.bitTestOps("btr", 2)
	b.bitTestOps("bts", 1)
	b.Op("call", bin(0x9A), HintNone, "stopexec", "setip", "farptr", "saveip").Not64().Add()
	b.Op("callf", bin(0x9A), HintNone, "stopexec", "setip", "farptr", "saveip").Not64().Add()
	b.Op("callf", bin(0xFF), Ext(3), "stopexec", "setip", "saveip").Set(PropModRMA).Add()
	b.Op("clc", bin(0xF8), HintNone).Add()
	b.Op("cld", bin(0xFC), HintNone).Add()
	b.Op("cli", bin(0xFA), HintNone).Add()
	b.Op("clts", bin(0x0F, 0x06), HintNone).Add()
	b.Op("cmc", bin(0xF5), HintNone).Add()
	b.Op("cmpxchg", bin(0x0F, 0xB0), HintMRMW).Reverse().Add()
	b.Op("cpuid", bin(0x0F, 0xA2), HintNone).Add()
	b.Op("daa", bin(0x27), HintNone).Not64().Add()
	b.Op("das", bin(0x2F), HintNone).Not64().Add()
	b.Op("hlt", bin(0xF4), HintNone, "stopexec").Add()
	b.Op("in", bin(0xE4), HintNone, "reg_eax", "u8").Field(FieldW, 0, 0).Add()
	b.Op("in", bin(0xEC), HintNone, "reg_eax", "reg_dx").Field(FieldW, 0, 0).Add()
	b.stringOps("ins", 0x6C, PropStrOp)
	b.Op("into", bin(0xCE), HintNone).Not64().Add()
	b.Op("invd", bin(0x0F, 0x08), HintNone).Add()
	b.Op("invlpg", bin(0x0F, 0x01, 7<<3), HintModRMA).Add()
	b.Op("invpcid", bin(0x0F, 0x38, 0x82), HintMRMA).NeedPfx(0x66).Add()
	b.Op("iretd", bin(0xCF), HintNone, "stopexec", "setip").OpSize(32).Add()
	b.farReturnOps("iret", 0xCF)
	b.Op("jcxz", bin(0xE3), HintNone, "setip", "i8").AddrSize(16).Add()
	b.Op("jecxz", bin(0xE3), HintNone, "setip", "i8").AddrSize(32).Add()
	b.Op("jmp", bin(0xEA), HintNone, "farptr", "setip", "stopexec").Not64().Add()
	b.Op("jmpf", bin(0xEA), HintNone, "farptr", "setip", "stopexec").Not64().Add()
	b.Op("jmpf", bin(0xFF), Ext(5), "stopexec", "setip").Set(PropModRMA).Add()
	b.Op("lahf", bin(0x9F), HintNone).Add()
	b.Op("lar", bin(0x0F, 0x02), HintMRM).Add()
	b.Op("lds", bin(0xC5), HintMRMA).Not64().Add()
	b.Op("les", bin(0xC4), HintMRMA).Not64().Add()
	b.Op("lfs", bin(0x0F, 0xB4), HintMRMA).Add()
	b.Op("lgs", bin(0x0F, 0xB5), HintMRMA).Add()
	b.Op("lgdt", bin(0x0F, 0x01), Ext(2)).Set(PropModRMA).Add()
	b.Op("lidt", bin(0x0F, 0x01, 3<<3), HintModRMA).Add()
	b.Op("lldt", bin(0x0F, 0x00), Ext(2)).ArgSize(16).Add()
	b.Op("lmsw", bin(0x0F, 0x01), Ext(6)).ArgSize(16).Add()
	b.Op("lsl", bin(0x0F, 0x03), HintMRM).Add()
	b.Op("lss", bin(0x0F, 0xB2), HintMRMA).Add()
	b.Op("ltr", bin(0x0F, 0x00), Ext(3)).ArgSize(16).Add()
	b.Op("mov", bin(0x0F, 0x20, 0xC0), HintReg, "eeec").Field(FieldD, 1, 1).Field(FieldEEEC, 2, 3).Reverse().Auto64().Add()
	b.Op("mov", bin(0x0F, 0x21, 0xC0), HintReg, "eeed").Field(FieldD, 1, 1).Field(FieldEEED, 2, 3).Reverse().Auto64().Add()
	b.Op("mov", bin(0x0F, 0x24, 0xC0), HintReg, "eeet").Field(FieldD, 1, 1).Field(FieldEEET, 2, 3).Reverse().Not64().Add()
	b.Op("mov", bin(0x8C), Ext(0), "seg3").Field(FieldD, 0, 1).Field(FieldSeg3, 1, 3).Reverse().Add()
	b.Op("movbe", bin(0x0F, 0x38, 0xF0), HintMRMA).Field(FieldD, 2, 0).Reverse().Add()
	b.Op("out", bin(0xE6), HintNone, "u8", "reg_eax").Field(FieldW, 0, 0).Add()
	b.Op("out", bin(0xEE), HintNone, "reg_dx", "reg_eax").Field(FieldW, 0, 0).Add()
	b.stringOps("outs", 0x6E, PropStrOp)
	b.Op("pop", bin(0x07), HintNone, "seg2A").Field(FieldSeg2A, 0, 3).Not64().Add()
	b.Op("pop", bin(0x0F, 0x81), HintNone, "seg3A").Field(FieldSeg3A, 1, 3).Add()
	b.Op("popa", bin(0x61), HintNone).OpSize(16).Not64().Add()
	b.Op("popad", bin(0x61), HintNone).OpSize(32).Not64().Add()
	b.Op("popf", bin(0x9D), HintNone).OpSize(16).Add()
	b.Op("popfd", bin(0x9D), HintNone).OpSize(32).Not64().Add()
	b.Op("push", bin(0x06), HintNone, "seg2").Field(FieldSeg2, 0, 3).Not64().Add()
	b.Op("push", bin(0x0F, 0x80), HintNone, "seg3A").Field(FieldSeg3A, 1, 3).Add()
	b.Op("pusha", bin(0x60), HintNone).OpSize(16).Not64().Add()
	b.Op("pushad", bin(0x60), HintNone).OpSize(32).Not64().Add()
	b.Op("pushf", bin(0x9C), HintNone).OpSize(16).Add()
	b.Op("pushfd", bin(0x9C), HintNone).OpSize(32).Not64().Add()
	b.shiftOps("rcl", 2)
	b.shiftOps("rcr", 3)
	b.Op("rdmsr", bin(0x0F, 0x32), HintNone).Add()
	b.Op("rdpmc", bin(0x0F, 0x33), HintNone).Add()
	b.Op("rdrand", bin(0x0F, 0xC7), Ext(6), "modrmR").Add()
	b.Op("rdtsc", bin(0x0F, 0x31), HintNone, "random").Add()
	b.farReturnOps("retf", 0xCB)
	b.farReturnOps("retf", 0xCA, "u16")
	b.Op("rsm", bin(0x0F, 0xAA), HintNone, "stopexec").Add()
	b.Op("sahf", bin(0x9E), HintNone).Add()
	b.Op("sgdt", bin(0x0F, 0x01, 0<<3), HintModRMA).Add()
	b.Op("sidt", bin(0x0F, 0x01, 1<<3), HintModRMA).Add()
	b.Op("sldt", bin(0x0F, 0x00), Ext(0)).Add()
	b.Op("smsw", bin(0x0F, 0x01), Ext(4)).Add()
	b.Op("stc", bin(0xF9), HintNone).Add()
	b.Op("std", bin(0xFD), HintNone).Add()
	b.Op("sti", bin(0xFB), HintNone).Add()
	b.Op("str", bin(0x0F, 0x00), Ext(1)).Add()
	b.Op("ud2", bin(0x0F, 0x0B), HintNone).Add()
	b.Op("verr", bin(0x0F, 0x00), Ext(4)).ArgSize(16).Add()
	b.Op("verw", bin(0x0F, 0x00), Ext(5)).ArgSize(16).Add()
	b.Op("wait", bin(0x9B), HintNone).Add()
	b.Op("wbinvd", bin(0x0F, 0x09), HintNone).Add()
	b.Op("wrmsr", bin(0x0F, 0x30), HintNone).Add()
	b.Op("xadd", bin(0x0F, 0xC0), HintMRMW).Reverse().Add()
	b.Op("xlat", bin(0xD7), HintNone).Add()

	// undocumented
	b.Op("aam", bin(0xD4), HintNone, "u8").Not64().Add()
	b.Op("aad", bin(0xD5), HintNone, "u8").Not64().Add()
	b.Op("setalc", bin(0xD6), HintNone).Not64().Add()
	b.Op("salc", bin(0xD6), HintNone).Not64().Add()
	b.Op("icebp", bin(0xF1), HintNone).Add()
	b.Op("ud0", bin(0x0F, 0xFF), HintNone).Add()
	b.Op("ud1", bin(0x0F, 0xB9), HintMRM).Add()
}
