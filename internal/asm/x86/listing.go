package x86

import (
	"fmt"
	"strings"

	"golang.org/x/arch/x86/x86asm"
)

// Line is one decoded instruction of a listing.
type Line struct {
	Offset int
	Bytes  []byte
	Text   string
}

func (l Line) String() string {
	var hex strings.Builder
	for i, b := range l.Bytes {
		if i > 0 {
			hex.WriteByte(' ')
		}
		fmt.Fprintf(&hex, "%02x", b)
	}
	return fmt.Sprintf("%4x:  %-24s %s", l.Offset, hex.String(), l.Text)
}

// Disassemble decodes code as a sequence of instructions for a mode of the
// given width, in Intel syntax. Decoding stops at the first invalid byte
// sequence, which is reported together with the lines decoded so far.
func Disassemble(code []byte, bits int) ([]Line, error) {
	var out []Line
	for off := 0; off < len(code); {
		inst, err := x86asm.Decode(code[off:], bits)
		if err != nil {
			return out, fmt.Errorf("x86: decode at %#x: %w: %w", off, ErrDecode, err)
		}
		// x86asm reports a lone prefix or a cut-off instruction as a
		// one-byte pseudo instruction with no opcode.
		if inst.Op == 0 {
			return out, fmt.Errorf("x86: decode at %#x: %w: % x", off, ErrDecode, code[off:])
		}
		out = append(out, Line{
			Offset: off,
			Bytes:  append([]byte(nil), code[off:off+inst.Len]...),
			Text:   x86asm.IntelSyntax(inst, uint64(off), nil),
		})
		off += inst.Len
	}
	return out, nil
}

// Listing is Disassemble rendered one instruction per line.
func Listing(code []byte, bits int) (string, error) {
	lines, err := Disassemble(code, bits)
	var sb strings.Builder
	for _, l := range lines {
		sb.WriteString(l.String())
		sb.WriteByte('\n')
	}
	return sb.String(), err
}
