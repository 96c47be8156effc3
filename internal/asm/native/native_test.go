package native

import (
	"errors"
	"testing"

	"github.com/tinyrange/x86enc/internal/asm"
	"github.com/tinyrange/x86enc/internal/asm/x86"
)

func TestBindResolvesLocalLabels(t *testing.T) {
	code := asm.NewBuffer(0x48, 0xB8)
	target := asm.Sym("data").Add(asm.Int(2))
	field, err := target.Encode(asm.A64, asm.LittleEndian)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	code.AppendBuffer(field)
	code.Export("data", code.Len())
	code.Append(0xC3)

	bound, err := bind(code, 0x1000)
	if err != nil {
		t.Fatalf("bind: %v", err)
	}
	want := []byte{0x48, 0xB8, 0x0C, 0x10, 0, 0, 0, 0, 0, 0, 0xC3}
	if got := bound.Bytes(); string(got) != string(want) {
		t.Fatalf("bound code % x, want % x", got, want)
	}
	if len(code.Relocations()) != 1 {
		t.Fatalf("bind modified its input")
	}
}

func TestBindReportsMissingLabels(t *testing.T) {
	code := asm.NewBuffer()
	for _, l := range []asm.Label{"zeta", "alpha", "zeta"} {
		field, err := asm.Sym(l).Encode(asm.A32, asm.LittleEndian)
		if err != nil {
			t.Fatalf("Encode: %v", err)
		}
		code.AppendBuffer(field)
	}
	_, err := bind(code, 0)
	if !errors.Is(err, ErrUnresolved) {
		t.Fatalf("bind error=%v, want ErrUnresolved", err)
	}
	if got, want := err.Error(), "unresolved relocation: alpha, zeta"; got != want {
		t.Fatalf("error %q, want %q", got, want)
	}
}

func assemble64(t *testing.T, steps ...any) *asm.Buffer {
	t.Helper()
	tbl, err := x86.BuildTable(x86.Mode64)
	if err != nil {
		t.Fatalf("BuildTable: %v", err)
	}
	out := asm.NewBuffer()
	for _, s := range steps {
		switch s := s.(type) {
		case asm.Label:
			out.Export(s, out.Len())
		case x86.Instruction:
			bufs, err := tbl.Assemble(s)
			if err != nil {
				t.Fatalf("Assemble(%s): %v", s, err)
			}
			out.AppendBuffer(bufs[0])
		case []*asm.Buffer:
			out.AppendBuffer(s[len(s)-1])
		}
	}
	return out
}
