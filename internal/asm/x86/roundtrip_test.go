package x86

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/arch/x86/x86asm"

	"github.com/tinyrange/x86enc/internal/asm"
)

// TestDecodeRoundTrip feeds the shortest candidate back through an
// independent decoder. VEX forms are left out: x86asm does not decode them.
func TestDecodeRoundTrip(t *testing.T) {
	tests := []struct {
		mode Mode
		inst Instruction
		op   x86asm.Op
		args []x86asm.Arg
	}{
		{Mode32, Inst("mov", eax, Imm(1)), x86asm.MOV, []x86asm.Arg{x86asm.EAX, x86asm.Imm(1)}},
		{Mode32, Inst("mov", eax, ecx), x86asm.MOV, []x86asm.Arg{x86asm.EAX, x86asm.ECX}},
		{Mode32, Inst("mov", MemIndex(ebx, ecx, 4).WithOffset(0x10), eax), x86asm.MOV,
			[]x86asm.Arg{x86asm.Mem{Base: x86asm.EBX, Index: x86asm.ECX, Scale: 4, Disp: 0x10}, x86asm.EAX}},
		{Mode32, Inst("mov", eax, Mem(ebx).WithOffset(0x1000)), x86asm.MOV, nil},
		{Mode32, Inst("mov", eax, MemIndex(ebx, esp, 1)), x86asm.MOV,
			[]x86asm.Arg{x86asm.EAX, x86asm.Mem{Base: x86asm.ESP, Index: x86asm.EBX, Scale: 1}}},
		{Mode32, Inst("push", Imm(0x1000)), x86asm.PUSH, []x86asm.Arg{x86asm.Imm(0x1000)}},
		{Mode32, Inst("add", eax, Imm(1)), x86asm.ADD, []x86asm.Arg{x86asm.EAX, x86asm.Imm(1)}},
		{Mode32, Inst("imul", eax, ecx, Imm(10)), x86asm.IMUL, nil},
		{Mode32, Inst("movzx", eax, Reg8(RBX)), x86asm.MOVZX, []x86asm.Arg{x86asm.EAX, x86asm.BL}},
		{Mode32, Inst("shl", eax, Imm(1)), x86asm.SHL, nil},
		{Mode32, Inst("setz", Reg8(RAX)), x86asm.SETE, []x86asm.Arg{x86asm.AL}},
		{Mode32, Inst("cmovz", eax, ecx), x86asm.CMOVE, []x86asm.Arg{x86asm.EAX, x86asm.ECX}},
		{Mode32, Inst("lea", eax, MemIndex(eax, eax, 2)), x86asm.LEA, nil},
		{Mode32, Inst("xchg", eax, ecx), x86asm.XCHG, nil},
		{Mode32, Inst("int", Imm(0x80)), x86asm.INT, []x86asm.Arg{x86asm.Imm(0x80)}},
		{Mode32, Inst("ret"), x86asm.RET, nil},
		{Mode32, Inst("addps", XMM(1), XMM(2)), x86asm.ADDPS, []x86asm.Arg{x86asm.X1, x86asm.X2}},
		{Mode32, Inst("paddb", XMM(0), XMM(1)), x86asm.PADDB, []x86asm.Arg{x86asm.X0, x86asm.X1}},
		{Mode32, Inst("pshufd", XMM(0), XMM(1), Imm(0x1B)), x86asm.PSHUFD, nil},
		{Mode32, Inst("fadd", FpReg(0), FpReg(3)), x86asm.FADD, []x86asm.Arg{x86asm.F0, x86asm.F3}},
		{Mode32, Inst("fld", FpReg(1)), x86asm.FLD, nil},

		{Mode16, Inst("mov", Reg16(RAX), Imm(1)), x86asm.MOV, []x86asm.Arg{x86asm.AX, x86asm.Imm(1)}},
		{Mode16, Inst("mov", Reg16(RAX), MemIndex(Reg16(RBX), Reg16(RSI), 1)), x86asm.MOV, nil},

		{Mode64, Inst("mov", Reg64(R8), rax), x86asm.MOV, []x86asm.Arg{x86asm.R8, x86asm.RAX}},
		{Mode64, Inst("mov", rax, MemIndex(rax, Reg64(R12), 4)), x86asm.MOV,
			[]x86asm.Arg{x86asm.RAX, x86asm.Mem{Base: x86asm.RAX, Index: x86asm.R12, Scale: 4}}},
		{Mode64, Inst("mov", rax, Imm(0x123456789)), x86asm.MOV, []x86asm.Arg{x86asm.RAX, x86asm.Imm(0x123456789)}},
		{Mode64, Inst("push", Reg64(R12)), x86asm.PUSH, []x86asm.Arg{x86asm.R12}},
		{Mode64, Inst("movsxd", rax, ecx), x86asm.MOVSXD, []x86asm.Arg{x86asm.RAX, x86asm.ECX}},
		{Mode64, Inst("cdqe"), x86asm.CDQE, nil},
		{Mode64, Inst("cqo"), x86asm.CQO, nil},
		{Mode64, Inst("addps", XMM(8), XMM(1)), x86asm.ADDPS, []x86asm.Arg{x86asm.X8, x86asm.X1}},
		{Mode64, Inst("lea", rax, Mem(Reg64(RIP)).WithDisp(asm.Sym("data"))), x86asm.LEA, nil},
	}
	for _, tt := range tests {
		buf := assemble(t, tt.mode, tt.inst)[0]
		code := buf.Bytes()
		got, err := x86asm.Decode(code, tt.mode.Bits)
		if err != nil {
			t.Errorf("%s: decoding % x: %v", tt.inst, code, err)
			continue
		}
		if got.Op != tt.op {
			t.Errorf("%s: decoded op %s, want %s (% x)", tt.inst, got.Op, tt.op, code)
		}
		if got.Len != len(code) {
			t.Errorf("%s: decoded length %d, encoded %d (% x)", tt.inst, got.Len, len(code), code)
		}
		if tt.args == nil {
			continue
		}
		if diff := cmp.Diff(tt.args, got.Args[:len(tt.args)]); diff != "" {
			t.Errorf("%s: decoded operands (-want +got):\n%s", tt.inst, diff)
		}
	}
}

// TestTableDecodes encodes a register form of every two-register integer
// opcode in the table and checks that x86asm accepts it with the same
// length.
func TestTableDecodes(t *testing.T) {
	for _, m := range []Mode{Mode32, Mode64} {
		tbl := tableFor(t, m)
		checked := 0
		for _, op := range tbl.Opcodes() {
			if _, vex := op.Vex(); vex || !argsEqual(op.args, ArgModRM, ArgReg) {
				continue
			}
			// x86asm has no VMX support.
			if strings.HasPrefix(op.name, "vm") {
				continue
			}
			inst := Inst(op.name, ecx, Reg32(RDX))
			if op.byteForm() {
				inst = Inst(op.name, Reg8(RCX), Reg8(RDX))
			}
			bufs, err := Encode(m, inst, op)
			if err != nil {
				continue
			}
			code := bufs[0].Bytes()
			got, err := x86asm.Decode(code, m.Bits)
			if err != nil {
				t.Errorf("%s: %s encoded as % x does not decode: %v", m, op, code, err)
				continue
			}
			if got.Len != len(code) {
				t.Errorf("%s: %s encoded as % x decodes as %d bytes", m, op, code, got.Len)
			}
			checked++
		}
		if checked < 20 {
			t.Fatalf("%s: only %d opcodes checked", m, checked)
		}
	}
}
