package vectors

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tinyrange/x86enc/internal/asm"
	"github.com/tinyrange/x86enc/internal/asm/x86"
)

func runSuite(t *testing.T, path string) []Result {
	t.Helper()
	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load(%s): %v", path, err)
	}
	tbl, err := s.Profile.Table()
	if err != nil {
		t.Fatalf("building table for %s: %v", path, err)
	}
	return s.Run(tbl, nil)
}

func TestSuites(t *testing.T) {
	for _, path := range []string{"testdata/i386.yaml", "testdata/x86_64.yaml", "testdata/real.yaml"} {
		t.Run(filepath.Base(path), func(t *testing.T) {
			results := runSuite(t, path)
			if len(results) == 0 {
				t.Fatalf("no results")
			}
			for _, r := range Failures(results) {
				t.Errorf("%s: %s", r.Case.Title(), r.Problem)
			}
		})
	}
}

func TestSuiteReportsFailures(t *testing.T) {
	results := runSuite(t, "testdata/broken.yaml")
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	failed := Failures(results)
	if len(failed) != 2 {
		t.Fatalf("got %d failures, want 2", len(failed))
	}
	if !strings.Contains(failed[0].Problem, "b801000000") {
		t.Errorf("problem %q does not show the encoding", failed[0].Problem)
	}
	if !strings.Contains(failed[1].Problem, "want addressing error") {
		t.Errorf("problem %q does not name the expected error", failed[1].Problem)
	}
	if !results[2].Passed() {
		t.Errorf("nop case failed: %s", results[2].Problem)
	}
}

func TestRunCallback(t *testing.T) {
	s, err := Load("testdata/real.yaml")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	tbl, err := s.Profile.Table()
	if err != nil {
		t.Fatalf("Table: %v", err)
	}
	var seen []string
	s.Run(tbl, func(r Result) { seen = append(seen, r.Case.Title()) })
	if len(seen) != len(s.Cases) {
		t.Fatalf("callback ran %d times for %d cases", len(seen), len(s.Cases))
	}
	for i, title := range seen {
		if !strings.HasPrefix(title, "mov ") {
			t.Errorf("case %d titled %q, want the instruction text", i, title)
		}
	}
}

func TestOperandForms(t *testing.T) {
	const doc = `
name: forms
profile: {bits: 32}
cases:
  - inst: mov
    args: [eax, 0x10, target, {imm: -1}, {reg: ecx}, {label: eax}]
    expect: {error: mismatch}
`
	s, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	inst, err := s.Cases[0].Instruction()
	if err != nil {
		t.Fatalf("Instruction: %v", err)
	}
	want := []x86.Operand{
		x86.Reg32(x86.RAX),
		x86.Imm(0x10),
		x86.ImmLabel("target"),
		x86.Imm(-1),
		x86.Reg32(x86.RCX),
		x86.ImmLabel("eax"),
	}
	if len(inst.Args) != len(want) {
		t.Fatalf("got %d operands, want %d", len(inst.Args), len(want))
	}
	for i := range want {
		if inst.Args[i].String() != want[i].String() {
			t.Errorf("operand %d = %s, want %s", i, inst.Args[i], want[i])
		}
	}
}

func TestMemOperand(t *testing.T) {
	tests := []struct {
		mem  MemRef
		want x86.Indirect
	}{
		{MemRef{Base: "ebx"}, x86.Mem(x86.Reg32(x86.RBX)).WithDisp(asm.Int(0))},
		{MemRef{Base: "ebx", Index: "ecx", Scale: 4, Disp: 8},
			x86.MemIndex(x86.Reg32(x86.RBX), x86.Reg32(x86.RCX), 4).WithOffset(8)},
		{MemRef{Index: "esi", Scale: 2}, x86.MemScaled(x86.Reg32(x86.RSI), 2).WithDisp(asm.Int(0))},
		{MemRef{Disp: 0x10, Seg: "fs", Size: 16},
			x86.MemAbs(asm.Int(0x10)).WithSeg(x86.FS).WithSize(16)},
	}
	for _, tt := range tests {
		got, err := tt.mem.indirect()
		if err != nil {
			t.Fatalf("indirect(%+v): %v", tt.mem, err)
		}
		if got.String() != tt.want.String() || got.Size() != tt.want.Size() {
			t.Errorf("indirect(%+v) = %s, want %s", tt.mem, got, tt.want)
		}
	}

	if _, err := (MemRef{Base: "xmm0"}).indirect(); err == nil {
		t.Errorf("xmm0 accepted as a base register")
	}
	if _, err := (MemRef{Base: "eax", Seg: "eax"}).indirect(); err == nil {
		t.Errorf("eax accepted as a segment register")
	}
}

func TestLabelDisplacement(t *testing.T) {
	m, err := MemRef{Base: "ebx", Label: "data", Disp: 4}.indirect()
	if err != nil {
		t.Fatalf("indirect: %v", err)
	}
	if diff := cmp.Diff([]asm.Label{"data"}, m.Disp().Labels()); diff != "" {
		t.Fatalf("displacement labels (-want +got):\n%s", diff)
	}
	bound, ok := m.Disp().Bind(map[asm.Label]int64{"data": 0x100}).Constant()
	if !ok || bound != 0x104 {
		t.Fatalf("bound displacement = %#x, %v; want 0x104", bound, ok)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"no cases", "name: empty\nprofile: {bits: 32}\n", "no cases"},
		{"no instruction", "profile: {bits: 32}\ncases:\n  - {expect: {first: '90'}}\n", "no instruction"},
		{"no expectation", "profile: {bits: 32}\ncases:\n  - {inst: nop}\n", "expects nothing"},
		{"bad class", "profile: {bits: 32}\ncases:\n  - {inst: nop, expect: {error: boom}}\n", "unknown error class"},
		{"bad yaml", "cases: [", "parsing suite"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("Parse error=%v, want %q", err, tt.want)
			}
		})
	}
}

func TestBadOperand(t *testing.T) {
	c := Case{Inst: "mov", Args: []Operand{{Reg: "bogus"}}}
	if _, err := c.Instruction(); err == nil || !strings.Contains(err.Error(), "operand 1") {
		t.Fatalf("Instruction error=%v", err)
	}
	c = Case{Inst: "movsb", Prefixes: []string{"sometimes"}}
	if _, err := c.Instruction(); err == nil {
		t.Fatalf("unknown prefix accepted")
	}
	if _, err := (Operand{}).Operand(); err == nil {
		t.Fatalf("empty operand accepted")
	}
}

func TestProgramAssemble(t *testing.T) {
	p, err := LoadProgram("testdata/add.yaml")
	if err != nil {
		t.Fatalf("LoadProgram: %v", err)
	}
	buf, err := p.Assemble()
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	// jmp rel8 (2) + int3 (1), then the body.
	if off, ok := buf.ExportOffset("body"); !ok || off != 3 {
		t.Fatalf("body exported at %d, %v; want 3", off, ok)
	}
	if len(buf.Relocations()) != 1 {
		t.Fatalf("got %d relocations, want the jmp target", len(buf.Relocations()))
	}

	bound := buf.Clone()
	values := map[asm.Label]int64{}
	for l, off := range bound.Exports() {
		values[l] = int64(off)
	}
	if _, err := bound.Fixup(values); err != nil {
		t.Fatalf("Fixup: %v", err)
	}
	want := []byte{
		0xEB, 0x01, // jmp body
		0xCC,
		0x48, 0x89, 0xF8, // mov rax, rdi
		0x48, 0x01, 0xF0, // add rax, rsi
		0xC3,
	}
	if diff := cmp.Diff(want, bound.Bytes()); diff != "" {
		t.Fatalf("program bytes (-want +got):\n%s", diff)
	}
}

func TestProgramErrors(t *testing.T) {
	tbl, err := x86.BuildTable(x86.Mode64)
	if err != nil {
		t.Fatalf("BuildTable: %v", err)
	}
	dup := &Program{Code: []Step{{Label: "a"}, {Inst: "nop"}, {Label: "a"}}}
	if _, err := dup.AssembleWith(tbl); err == nil || !strings.Contains(err.Error(), "defined twice") {
		t.Fatalf("duplicate label error=%v", err)
	}
	bad := &Program{Code: []Step{{Inst: "aaa"}}}
	if _, err := bad.AssembleWith(tbl); !errors.Is(err, x86.ErrNoCandidate) {
		t.Fatalf("aaa in long mode error=%v", err)
	}
}
