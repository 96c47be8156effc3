package x86

// defineX64 adds the instructions that only exist in long mode. It is applied
// automatically to 64-bit tables, after every requested feature.
func defineX64(b *Builder) {
	b.Op("mov", bin(0xB8), HintReg, "u64").OpSize(64).Add()
	b.Op("movsxd", bin(0x63), HintMRM).Widening().ArgSize(32).Add()
	b.Op("cdqe", bin(0x98), HintNone).OpSize(64).Add()
	b.Op("cqo", bin(0x99), HintNone).OpSize(64).Add()
	b.Op("cmpxchg16b", bin(0x0F, 0xC7), Ext(1), "modrmA").OpSize(64).ArgSize(128).Add()
	b.Op("swapgs", bin(0x0F, 0x01, 0xF8), HintNone).Add()
	b.Op("iretq", bin(0xCF), HintNone, "stopexec", "setip").OpSize(64).Add()
	b.Op("retfq", bin(0xCB), HintNone, "stopexec", "setip").OpSize(64).Add()
	b.Op("sysretq", bin(0x0F, 0x07), HintNone).OpSize(64).Add()
	b.Op("jrcxz", bin(0xE3), HintNone, "setip", "i8").AddrSize(64).Add()
	b.Op("pushfq", bin(0x9C), HintNone).OpSize(64).Auto64().Add()
	b.Op("popfq", bin(0x9D), HintNone).OpSize(64).Auto64().Add()

	for _, op := range []struct {
		name string
		code byte
		kind Prop
	}{
		{"movsq", 0xA5, PropStrOp}, {"stosq", 0xAB, PropStrOp}, {"lodsq", 0xAD, PropStrOp},
		{"cmpsq", 0xA7, PropStrOpZ}, {"scasq", 0xAF, PropStrOpZ},
	} {
		b.Op(op.name, bin(op.code), HintNone).Set(op.kind).OpSize(64).Add()
	}

	// movq between general purpose and vector registers, REX.W 0F 6E/7E.
	b.Op("movq", bin(0x0F, 0x6E), HintMRMXMM).SetArgs(ArgModRM, ArgRegXMM).
		Field(FieldD, 1, 4).OpSize(64).NeedPfx(0x66).Add()
	b.Op("movq", bin(0x0F, 0x6E), HintMRMMMX).SetArgs(ArgModRM, ArgRegMMX).
		Field(FieldD, 1, 4).OpSize(64).Add()
	b.Vex("vmovq", 0x6E, Vex{L: 128, PP: 0x66, Map: 1, W: VexW1, VReg: -1}, HintMRMXMM).
		ReplaceArg(ArgModRMXMM, ArgModRM).OpSize(64).Add()
	b.Vex("vmovq", 0x7E, Vex{L: 128, PP: 0x66, Map: 1, W: VexW1, VReg: -1}, HintMRMXMM).
		ReplaceArg(ArgModRMXMM, ArgModRM).Reverse().OpSize(64).Add()
}
