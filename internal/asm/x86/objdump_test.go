package x86

import (
	"testing"

	"github.com/tinyrange/x86enc/internal/asm"
	"github.com/tinyrange/x86enc/internal/asm/testutil"
)

type sinkBuilder struct {
	t            *testing.T
	mode         Mode
	code         *asm.Buffer
	expectations []testutil.Expectation
}

func (b *sinkBuilder) add(name, mnemonic string, inst Instruction, contains ...string) {
	b.t.Helper()
	b.expectations = append(b.expectations, testutil.Expectation{
		Name:     name,
		Offset:   b.code.Len(),
		Mnemonic: mnemonic,
		Contains: contains,
	})
	b.code.AppendBuffer(assemble(b.t, b.mode, inst)[0])
}

func (b *sinkBuilder) verify() {
	b.t.Helper()
	lines := testutil.Disassemble(b.t, b.code.Bytes(), b.mode.Bits)
	testutil.VerifyExpectations(b.t, lines, b.expectations)
}

func TestKitchenSinkDisassembly32(t *testing.T) {
	b := &sinkBuilder{t: t, mode: Mode32, code: asm.NewBuffer()}
	b.add("mov_imm", "mov", Inst("mov", eax, Imm(1)), "eax,0x1")
	b.add("push_imm8", "push", Inst("push", Imm(0x10)), "0x10")
	b.add("push_imm32", "push", Inst("push", Imm(0x1000)), "0x1000")
	b.add("push_word", "pushw", Inst("push.i16", Imm(0x10)), "0x10")
	b.add("sib_store", "mov", Inst("mov", MemIndex(ebx, ecx, 4).WithOffset(0x10), eax), "[ebx+ecx*4+0x10],eax")
	b.add("mov_reg", "mov", Inst("mov", eax, ecx), "eax,ecx")
	b.add("disp8", "mov", Inst("mov", eax, Mem(ebx).WithOffset(0x10)), "[ebx+0x10]")
	b.add("disp32", "mov", Inst("mov", eax, Mem(ebx).WithOffset(0x1000)), "[ebx+0x1000]")
	b.add("ebp_base", "mov", Inst("mov", eax, Mem(ebp)), "[ebp+0x0]")
	b.add("esp_base", "mov", Inst("mov", eax, Mem(esp)), "[esp]")
	b.add("esp_swapped", "mov", Inst("mov", eax, MemIndex(ebx, esp, 1)), "[esp+ebx*1]")
	b.add("moffs", "mov", Inst("mov", eax, MemAbs(asm.Int(0x1234))), "ds:0x1234")
	b.add("movzx", "movzx", Inst("movzx", eax, Mem(ebx).WithSize(8)), "BYTE PTR [ebx]")
	b.add("imul3", "imul", Inst("imul", eax, ecx, Imm(10)), "eax,ecx,0xa")
	b.add("add_short", "add", Inst("add", eax, Imm(1)), "eax,0x1")
	b.add("add_al", "add", Inst("add", Reg8(RAX), Imm(1)), "al,0x1")
	b.add("shl1", "shl", Inst("shl", eax, Imm(1)), "eax,1")
	b.add("int3", "int3", Inst("int", Imm(3)))
	b.add("setz", "sete", Inst("setz", Reg8(RAX)), "al")
	b.add("cmovz", "cmove", Inst("cmovz", eax, ecx), "eax,ecx")
	b.add("far_jmp", "jmp", Inst("jmp", FarPtr{Seg: asm.Int(0x10), Offset: asm.Int(0x1000)}), "0x10:0x1000")
	b.add("rep_movsb", "rep", Inst("movsb").WithPrefix(PrefixRep), "movs", "BYTE PTR")
	b.add("cmpsw", "cmps", Inst("cmpsw"), "WORD PTR")
	b.add("prefix_order", "lock", Inst("add", Mem(ebx).WithSeg(FS).WithSize(16), Reg16(RAX)).WithPrefix(PrefixLock),
		"add WORD PTR fs:[ebx],ax")
	b.add("addps", "addps", Inst("addps", XMM(1), XMM(2)), "xmm1,xmm2")
	b.add("addss", "addss", Inst("addss", XMM(1), XMM(2)), "xmm1,xmm2")
	b.add("paddb_xmm", "paddb", Inst("paddb", XMM(0), XMM(1)), "xmm0,xmm1")
	b.add("paddb_mm", "paddb", Inst("paddb", MM(0), MM(1)), "mm0,mm1")
	b.add("pshufd", "pshufd", Inst("pshufd", XMM(0), XMM(1), Imm(0x1B)), "xmm0,xmm1,0x1b")
	b.add("fadd_to", "fadd", Inst("fadd", FpReg(3), FpReg(0)), "st(3),st")
	b.add("fld_reg", "fld", Inst("fld", FpReg(1)), "st(1)")
	b.add("fld_m64", "fld", Inst("fld", Mem(eax).WithSize(64)), "QWORD PTR [eax]")
	b.add("vaddps", "vaddps", Inst("vaddps", XMM(0), XMM(1), XMM(2)), "xmm0,xmm1,xmm2")
	b.add("vaddps_ymm", "vaddps", Inst("vaddps", YMM(0), YMM(1), YMM(2)), "ymm0,ymm1,ymm2")
	b.add("vpshufb", "vpshufb", Inst("vpshufb", XMM(0), XMM(1), XMM(2)), "xmm0,xmm1,xmm2")
	b.add("vzeroupper", "vzeroupper", Inst("vzeroupper"))
	b.add("andn", "andn", Inst("andn", eax, ebx, ecx), "eax,ebx,ecx")
	b.add("ret", "ret", Inst("ret"))
	b.verify()
}

func TestKitchenSinkDisassembly64(t *testing.T) {
	b := &sinkBuilder{t: t, mode: Mode64, code: asm.NewBuffer()}
	b.add("rex_b", "mov", Inst("mov", Reg64(R8), rax), "r8,rax")
	b.add("mov_imm32", "mov", Inst("mov", rax, Imm(1)), "rax,0x1")
	b.add("movabs", "movabs", Inst("mov", rax, Imm(0x123456789)), "rax,0x123456789")
	b.add("sil", "mov", Inst("mov", Reg8(RSI), Reg8(RAX)), "sil,al")
	b.add("push_r12", "push", Inst("push", Reg64(R12)), "r12")
	b.add("r12_index", "mov", Inst("mov", rax, MemIndex(rax, Reg64(R12), 4)), "[rax+r12*4]")
	b.add("r13_base", "mov", Inst("mov", eax, Mem(Reg64(R13))), "[r13+0x0]")
	b.add("r12_base", "mov", Inst("mov", eax, Mem(Reg64(R12))), "[r12]")
	b.add("absolute", "mov", Inst("mov", eax, MemAbs(asm.Int(0x10))), "ds:0x10")
	b.add("addr32", "mov", Inst("mov", eax, Mem(ebx)), "[ebx]")
	b.add("cdqe", "cdqe", Inst("cdqe"))
	b.add("cqo", "cqo", Inst("cqo"))
	b.add("movsxd", "movsxd", Inst("movsxd", rax, ecx), "rax,ecx")
	b.add("movq", "movq", Inst("movq", XMM(0), rax), "xmm0,rax")
	b.add("xmm8", "addps", Inst("addps", XMM(8), XMM(1)), "xmm8,xmm1")
	b.add("movsq", "movs", Inst("movsq"), "QWORD PTR")
	b.add("pushfq", "pushf", Inst("pushfq"))
	b.add("vex_r", "vaddps", Inst("vaddps", XMM(8), XMM(1), XMM(2)), "xmm8,xmm1,xmm2")
	b.add("vex_b", "vaddps", Inst("vaddps", XMM(0), XMM(1), XMM(10)), "xmm0,xmm1,xmm10")
	b.add("andn_w", "andn", Inst("andn", rax, Reg64(RBX), Reg64(RCX)), "rax,rbx,rcx")
	b.add("ret", "ret", Inst("ret"))
	b.verify()
}

func TestKitchenSinkDisassembly16(t *testing.T) {
	b := &sinkBuilder{t: t, mode: Mode16, code: asm.NewBuffer()}
	b.add("bx_si", "mov", Inst("mov", Reg16(RAX), MemIndex(Reg16(RBX), Reg16(RSI), 1)), "[bx+si]")
	b.add("bp", "mov", Inst("mov", Reg16(RAX), Mem(Reg16(RBP))), "[bp+0x0]")
	b.add("disp16", "mov", Inst("mov", Reg16(RAX), MemIndex(Reg16(RBX), Reg16(RSI), 1).WithOffset(0x1234)), "[bx+si+0x1234]")
	b.add("mov_ax", "mov", Inst("mov", Reg16(RAX), Imm(1)), "ax,0x1")
	b.add("mov_eax", "mov", Inst("mov", eax, Imm(1)), "eax,0x1")
	b.add("addr32", "mov", Inst("mov", Reg16(RAX), Mem(ebx)), "[ebx]")
	b.add("ret", "ret", Inst("ret"))
	b.verify()
}
