package x86

import (
	"errors"
	"strings"
	"testing"
)

func TestDisassemble(t *testing.T) {
	lines, err := Disassemble([]byte{0x90, 0xC3}, 32)
	if err != nil {
		t.Fatalf("Disassemble: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if lines[0].Text != "nop" || lines[1].Text != "ret" || lines[1].Offset != 1 {
		t.Fatalf("lines %+v", lines)
	}
}

func TestDisassembleTruncated(t *testing.T) {
	tests := []struct {
		name  string
		code  []byte
		bits  int
		lines int
	}{
		{"mov imm32", []byte{0x90, 0xB8, 0x01}, 32, 1},
		{"lone prefix", []byte{0xC3, 0x66}, 32, 1},
		{"modrm cut off", []byte{0x8B}, 32, 0},
		{"rex only", []byte{0x90, 0x90, 0x48}, 64, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines, err := Disassemble(tt.code, tt.bits)
			if !errors.Is(err, ErrDecode) {
				t.Fatalf("error=%v, want ErrDecode", err)
			}
			if len(lines) != tt.lines {
				t.Fatalf("got %d lines before the error, want %d: %+v", len(lines), tt.lines, lines)
			}
			for _, l := range lines {
				if strings.Contains(l.Text, "prefix(") {
					t.Fatalf("pseudo instruction listed: %q", l.Text)
				}
			}
		})
	}
}

func TestListingStopsAtTruncation(t *testing.T) {
	out, err := Listing([]byte{0x90, 0xB8, 0x01}, 32)
	if !errors.Is(err, ErrDecode) {
		t.Fatalf("error=%v, want ErrDecode", err)
	}
	if strings.Count(out, "\n") != 1 || !strings.HasSuffix(out, "nop\n") {
		t.Fatalf("listing:\n%s", out)
	}
}

func TestListingOfAssembledCode(t *testing.T) {
	var code []byte
	for _, inst := range []Instruction{
		Inst("mov", eax, Imm(1)),
		Inst("add", eax, ecx),
		Inst("ret"),
	} {
		code = append(code, assemble(t, Mode32, inst)[0].Bytes()...)
	}
	out, err := Listing(code, 32)
	if err != nil {
		t.Fatalf("Listing: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("listing:\n%s", out)
	}
	for i, want := range []string{"b8 01 00 00 00", "01 c8", "c3"} {
		if !strings.Contains(lines[i], want) {
			t.Errorf("line %d %q lacks %q", i, lines[i], want)
		}
	}
	if !strings.HasSuffix(lines[2], "ret") {
		t.Errorf("last line %q", lines[2])
	}
}
