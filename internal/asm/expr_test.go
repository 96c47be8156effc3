package asm

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestExpressionReduce(t *testing.T) {
	a := Sym("a")
	tests := []struct {
		name  string
		expr  Expression
		want  int64
		known bool
	}{
		{"constant", Int(7), 7, true},
		{"sum", Int(3).Add(Int(4)), 7, true},
		{"product", Int(3).Mul(Int(-4)), -12, true},
		{"labels cancel", a.Add(Int(4)).Sub(a), 4, true},
		{"scaled labels cancel", a.Mul(Int(2)).Sub(a.Add(a)), 0, true},
		{"negation", Int(5).Neg(), -5, true},
		{"symbolic", a.Add(Int(1)), 0, false},
		{"symbolic product", a.Mul(a), 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, known := tt.expr.Reduce().Constant()
			if known != tt.known {
				t.Fatalf("Constant() known=%v, want %v (%s)", known, tt.known, tt.expr)
			}
			if known && got != tt.want {
				t.Fatalf("Constant()=%d, want %d", got, tt.want)
			}
		})
	}
}

func TestExpressionInRange(t *testing.T) {
	tests := []struct {
		expr  Expression
		typ   IntType
		fits  bool
		known bool
	}{
		{Int(127), I8, true, true},
		{Int(128), I8, false, true},
		{Int(-128), I8, true, true},
		{Int(255), U8, true, true},
		{Int(-1), U8, false, true},
		{Int(255), A8, true, true},
		{Int(-128), A8, true, true},
		{Int(0x1000), I8, false, true},
		{Int(0xFFFFFFFF), A32, true, true},
		{Int(0xFFFFFFFF), I32, false, true},
		{Sym("x"), I8, false, false},
	}
	for _, tt := range tests {
		fits, known := tt.expr.InRange(tt.typ)
		if fits != tt.fits || known != tt.known {
			t.Errorf("%s.InRange(%s)=(%v,%v), want (%v,%v)", tt.expr, tt.typ, fits, known, tt.fits, tt.known)
		}
	}
}

func TestExpressionEncode(t *testing.T) {
	buf, err := Int(0x1000).Encode(I32, LittleEndian)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if diff := cmp.Diff([]byte{0x00, 0x10, 0x00, 0x00}, buf.Bytes()); diff != "" {
		t.Fatalf("little endian bytes (-want +got):\n%s", diff)
	}

	buf, err = Int(0x1234).Encode(A16, BigEndian)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if diff := cmp.Diff([]byte{0x12, 0x34}, buf.Bytes()); diff != "" {
		t.Fatalf("big endian bytes (-want +got):\n%s", diff)
	}

	if _, err := Int(200).Encode(I8, LittleEndian); !errors.Is(err, ErrRange) {
		t.Fatalf("Encode(200, i8) error=%v, want ErrRange", err)
	}

	buf, err = Sym("target").Sub(Sym("here")).Encode(I32, LittleEndian)
	if err != nil {
		t.Fatalf("Encode symbolic: %v", err)
	}
	if diff := cmp.Diff([]byte{0, 0, 0, 0}, buf.Bytes()); diff != "" {
		t.Fatalf("placeholder bytes (-want +got):\n%s", diff)
	}
	relocs := buf.Relocations()
	if len(relocs) != 1 || relocs[0].Offset != 0 || relocs[0].Type != I32 {
		t.Fatalf("relocations=%+v, want one i32 field at 0", relocs)
	}
	if diff := cmp.Diff([]Label{"here", "target"}, relocs[0].Target.Labels()); diff != "" {
		t.Fatalf("relocation labels (-want +got):\n%s", diff)
	}
}

func TestExpressionBind(t *testing.T) {
	e := Sym("a").Sub(Sym("b")).Add(Int(2))
	partial := e.Bind(map[Label]int64{"a": 10})
	if _, ok := partial.Constant(); ok {
		t.Fatalf("partially bound %s reduced to a constant", partial)
	}
	v, ok := partial.Bind(map[Label]int64{"b": 4}).Constant()
	if !ok || v != 8 {
		t.Fatalf("fully bound value=%d,%v, want 8", v, ok)
	}
}

func TestIntTypeHelpers(t *testing.T) {
	if got := AnyInt(16); got != A16 {
		t.Fatalf("AnyInt(16)=%s", got)
	}
	if got := SignedInt(32); got != I32 {
		t.Fatalf("SignedInt(32)=%s", got)
	}
	if got := UnsignedInt(8); got != U8 {
		t.Fatalf("UnsignedInt(8)=%s", got)
	}
	if got := I64.Size(); got != 8 {
		t.Fatalf("I64.Size()=%d", got)
	}
}
