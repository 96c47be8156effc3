package x86

import (
	"errors"
	"slices"
	"testing"
)

func TestBuildTableAllModes(t *testing.T) {
	for _, m := range []Mode{Mode16, Mode32, Mode64} {
		tbl := tableFor(t, m)
		if tbl.Len() < 500 {
			t.Errorf("%s: only %d opcodes", m, tbl.Len())
		}
		if tbl.Mode() != m {
			t.Errorf("table mode %s, want %s", tbl.Mode(), m)
		}
	}
}

func TestLongModeTable(t *testing.T) {
	t32 := tableFor(t, Mode32)
	t64 := tableFor(t, Mode64)
	for _, name := range []string{"aaa", "daa", "pusha", "into", "les", "salc"} {
		if len(t64.Lookup(name)) != 0 {
			t.Errorf("%s defined in long mode", name)
		}
		if len(t32.Lookup(name)) == 0 {
			t.Errorf("%s missing from the 32-bit table", name)
		}
	}
	for _, name := range []string{"movsxd", "swapgs", "cdqe", "cqo", "iretq", "jrcxz", "movsq"} {
		if len(t64.Lookup(name)) == 0 {
			t.Errorf("%s missing from the long mode table", name)
		}
		if len(t32.Lookup(name)) != 0 {
			t.Errorf("%s defined in 32-bit mode", name)
		}
	}
}

func TestFeatureSubsets(t *testing.T) {
	base, err := BuildTable(Mode32, "386")
	if err != nil {
		t.Fatalf("BuildTable(386): %v", err)
	}
	for _, name := range []string{"fadd", "emms", "addps", "vaddps"} {
		if len(base.Lookup(name)) != 0 {
			t.Errorf("386 table defines %s", name)
		}
	}
	if len(base.Lookup("mov")) == 0 {
		t.Fatalf("386 table lacks mov")
	}

	sse2, err := BuildTable(Mode32, "sse2")
	if err != nil {
		t.Fatalf("BuildTable(sse2): %v", err)
	}
	// Prerequisites come along: p6 gives cmov, 387 gives fadd.
	for _, name := range []string{"cmovz", "fadd", "addps", "addpd"} {
		if len(sse2.Lookup(name)) == 0 {
			t.Errorf("sse2 table lacks %s", name)
		}
	}
	if len(sse2.Lookup("vaddps")) != 0 {
		t.Errorf("sse2 table defines vaddps")
	}
	if sse2.Len() >= tableFor(t, Mode32).Len() {
		t.Errorf("sse2 table (%d) is not smaller than the full one", sse2.Len())
	}
}

func TestFeatureAppliedOnce(t *testing.T) {
	once, err := BuildTable(Mode32, "sse2")
	if err != nil {
		t.Fatalf("BuildTable: %v", err)
	}
	twice, err := BuildTable(Mode32, "sse2", "sse", "386", "sse2")
	if err != nil {
		t.Fatalf("BuildTable: %v", err)
	}
	if once.Len() != twice.Len() {
		t.Fatalf("repeated features changed the table: %d vs %d opcodes", once.Len(), twice.Len())
	}
}

func TestUnknownFeature(t *testing.T) {
	if _, err := BuildTable(Mode32, "sse9"); !errors.Is(err, ErrUnknownFeature) {
		t.Fatalf("BuildTable(sse9) error=%v, want ErrUnknownFeature", err)
	}
	if _, err := BuildTable(Mode{Bits: 8}); err == nil {
		t.Fatalf("BuildTable accepted an 8-bit mode")
	}
}

func TestFeaturesListed(t *testing.T) {
	names := Features()
	if !slices.IsSorted(names) {
		t.Fatalf("Features() not sorted: %v", names)
	}
	for _, want := range []string{"386", "sse2", "avx2", "bmi1", "all", "latest"} {
		if !slices.Contains(names, want) {
			t.Errorf("Features() lacks %s", want)
		}
	}
	// Every dependency is itself a registered feature.
	for name, f := range features {
		for _, d := range f.deps {
			if _, ok := features[d]; !ok {
				t.Errorf("%s depends on unknown feature %s", name, d)
			}
		}
	}
}

func TestFindCandidates(t *testing.T) {
	tbl := tableFor(t, Mode32)
	ops := tbl.FindCandidates(Inst("push", Imm(0x10)))
	var codes []byte
	for _, op := range ops {
		codes = append(codes, op.Bytes()[0])
	}
	if !slices.Equal(codes, []byte{0x68, 0x6A}) {
		t.Fatalf("push candidates % x, want 68 6a", codes)
	}
	if ops := tbl.FindCandidates(Inst("push", Reg64(RAX))); len(ops) != 0 {
		t.Fatalf("push rax matched %d opcodes in 32-bit mode", len(ops))
	}
}
