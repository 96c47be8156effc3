package asm

import (
	"fmt"
	"sort"
)

// Relocation marks a field whose value depends on unresolved labels.
type Relocation struct {
	Offset int
	Target Expression
	Type   IntType
	Order  Endianness
}

// Buffer is an append-only byte sequence with an export table (label to
// offset) and a relocation table (offset to pending expression).
type Buffer struct {
	data    []byte
	exports map[Label]int
	relocs  map[int]Relocation
}

func NewBuffer(data ...byte) *Buffer {
	return &Buffer{data: append([]byte(nil), data...)}
}

// Bytes returns a copy of the encoded bytes.
func (b *Buffer) Bytes() []byte {
	return append([]byte(nil), b.data...)
}

func (b *Buffer) Len() int {
	return len(b.data)
}

func (b *Buffer) Append(data ...byte) {
	b.data = append(b.data, data...)
}

// AppendBuffer copies the contents of o onto the end of b. Exports and
// relocations of o are rebased by the current length of b.
func (b *Buffer) AppendBuffer(o *Buffer) {
	base := len(b.data)
	b.data = append(b.data, o.data...)
	for l, off := range o.exports {
		b.Export(l, base+off)
	}
	for off, r := range o.relocs {
		if b.relocs == nil {
			b.relocs = make(map[int]Relocation)
		}
		r.Offset = base + off
		b.relocs[base+off] = r
	}
}

// OrAt sets bits in an already emitted byte.
func (b *Buffer) OrAt(off int, v byte) {
	if off < 0 || off >= len(b.data) {
		panic(fmt.Sprintf("asm.Buffer.OrAt: offset %d outside buffer of %d bytes", off, len(b.data)))
	}
	b.data[off] |= v
}

// Export records label at offset off. Exporting the same label at two
// different offsets is a programming error.
func (b *Buffer) Export(label Label, off int) {
	if b.exports == nil {
		b.exports = make(map[Label]int)
	}
	if prev, ok := b.exports[label]; ok && prev != off {
		panic(fmt.Sprintf("asm.Buffer.Export: label %q already exported at %d", label, prev))
	}
	b.exports[label] = off
}

// Exports returns a copy of the export table.
func (b *Buffer) Exports() map[Label]int {
	out := make(map[Label]int, len(b.exports))
	for l, off := range b.exports {
		out[l] = off
	}
	return out
}

// ExportOffset looks up a single exported label.
func (b *Buffer) ExportOffset(label Label) (int, bool) {
	off, ok := b.exports[label]
	return off, ok
}

// Relocations returns the pending relocations ordered by offset.
func (b *Buffer) Relocations() []Relocation {
	out := make([]Relocation, 0, len(b.relocs))
	for _, r := range b.relocs {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Offset < out[j].Offset })
	return out
}

func (b *Buffer) Clone() *Buffer {
	out := &Buffer{}
	out.AppendBuffer(b)
	return out
}

// Fixup substitutes the given label values into every relocation. Fields
// that become constant are written in place and their relocation dropped;
// the rest keep a partially bound target. It returns the number of fields
// patched.
func (b *Buffer) Fixup(values map[Label]int64) (int, error) {
	patched := 0
	for off, r := range b.relocs {
		target := r.Target.Bind(values)
		v, ok := target.Constant()
		if !ok {
			r.Target = target
			b.relocs[off] = r
			continue
		}
		if !r.Type.Fits(v) {
			return patched, fmt.Errorf("relocation at %#x: %w", off, &RangeError{Value: v, Type: r.Type})
		}
		putInt(b.data[off:], r.Type, r.Order, v)
		delete(b.relocs, off)
		patched++
	}
	return patched, nil
}
