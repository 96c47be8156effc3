package asm

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestBufferAppendRebases(t *testing.T) {
	head := NewBuffer(0x90, 0x90)
	tail, err := Sym("x").Encode(I32, LittleEndian)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	tail.Export("end", tail.Len())

	head.AppendBuffer(tail)
	if got := head.Len(); got != 6 {
		t.Fatalf("Len()=%d, want 6", got)
	}
	if off, ok := head.ExportOffset("end"); !ok || off != 6 {
		t.Fatalf("ExportOffset(end)=%d,%v, want 6", off, ok)
	}
	relocs := head.Relocations()
	if len(relocs) != 1 || relocs[0].Offset != 2 {
		t.Fatalf("relocations=%+v, want one at offset 2", relocs)
	}

	// The appended buffer is copied, not shared.
	tail.Append(0xCC)
	if head.Len() != 6 {
		t.Fatalf("appending to the source changed the destination")
	}
}

func TestBufferCloneIsIndependent(t *testing.T) {
	b := NewBuffer(0x01)
	b.Export("start", 0)
	c := b.Clone()
	c.Append(0x02)
	c.OrAt(0, 0x80)
	if diff := cmp.Diff([]byte{0x01}, b.Bytes()); diff != "" {
		t.Fatalf("original changed (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]byte{0x81, 0x02}, c.Bytes()); diff != "" {
		t.Fatalf("clone bytes (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(map[Label]int{"start": 0}, c.Exports()); diff != "" {
		t.Fatalf("clone exports (-want +got):\n%s", diff)
	}
}

func TestBufferOrAtOutOfRangePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("OrAt past the end did not panic")
		}
	}()
	NewBuffer(0x00).OrAt(1, 0x01)
}

func TestBufferFixup(t *testing.T) {
	b := NewBuffer(0xE9)
	field, err := Sym("target").Sub(Sym("post")).Encode(I32, LittleEndian)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	b.AppendBuffer(field)

	n, err := b.Fixup(map[Label]int64{"post": 5})
	if err != nil || n != 0 {
		t.Fatalf("partial Fixup=(%d,%v), want (0,nil)", n, err)
	}
	n, err = b.Fixup(map[Label]int64{"target": 0x105})
	if err != nil || n != 1 {
		t.Fatalf("Fixup=(%d,%v), want (1,nil)", n, err)
	}
	if diff := cmp.Diff([]byte{0xE9, 0x00, 0x01, 0x00, 0x00}, b.Bytes()); diff != "" {
		t.Fatalf("patched bytes (-want +got):\n%s", diff)
	}
	if len(b.Relocations()) != 0 {
		t.Fatalf("relocation left after fixup: %+v", b.Relocations())
	}
}

func TestBufferFixupRange(t *testing.T) {
	b, err := Sym("t").Encode(I8, LittleEndian)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if _, err := b.Fixup(map[Label]int64{"t": 300}); !errors.Is(err, ErrRange) {
		t.Fatalf("Fixup error=%v, want ErrRange", err)
	}
}

func TestBufferFixupRelativeBounds(t *testing.T) {
	tests := []struct {
		typ    IntType
		lo, hi int64
	}{
		{I8, -0x80, 0x7F},
		{A16, -0x8000, 0xFFFF},
		{I32, -0x80000000, 0x7FFFFFFF},
		{A32, -0x80000000, 0xFFFFFFFF},
	}
	for _, tt := range tests {
		t.Run(tt.typ.String(), func(t *testing.T) {
			field, err := Sym("target").Sub(Sym("post")).Encode(tt.typ, LittleEndian)
			if err != nil {
				t.Fatalf("Encode: %v", err)
			}
			fixup := func(dist int64) error {
				_, err := field.Clone().Fixup(map[Label]int64{"post": 0x1000, "target": 0x1000 + dist})
				return err
			}
			for _, dist := range []int64{tt.lo, tt.hi} {
				if err := fixup(dist); err != nil {
					t.Fatalf("distance %#x: %v", dist, err)
				}
			}
			for _, dist := range []int64{tt.lo - 1, tt.hi + 1} {
				if err := fixup(dist); !errors.Is(err, ErrRange) {
					t.Fatalf("distance %#x: error=%v, want ErrRange", dist, err)
				}
			}
		})
	}
}
