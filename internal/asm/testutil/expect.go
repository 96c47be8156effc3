package testutil

import (
	"fmt"
	"testing"
)

// Expectation describes a single instruction that should appear in the
// disassembly output at a known offset.
type Expectation struct {
	Name     string
	Offset   int
	Mnemonic string
	Contains []string
}

func (e Expectation) match(line DisasmLine) error {
	if line.Offset != e.Offset {
		return fmt.Errorf("decoded at %#x, want %#x", line.Offset, e.Offset)
	}
	if e.Mnemonic != "" && line.Mnemonic != e.Mnemonic {
		return fmt.Errorf("mnemonic=%s, want %s", line.Mnemonic, e.Mnemonic)
	}
	for _, needle := range e.Contains {
		if !line.Contains(needle) {
			return fmt.Errorf("missing %q in %q", needle, line.Normalized)
		}
	}
	return nil
}

// VerifyExpectations walks the objdump output and ensures each expectation is
// satisfied in order. Since offsets are checked too, an instruction encoded
// with the wrong length shows up as a mismatch on the instruction after it.
func VerifyExpectations(t *testing.T, lines []DisasmLine, expect []Expectation) {
	t.Helper()
	if len(lines) != len(expect) {
		t.Errorf("objdump returned %d instructions, want %d", len(lines), len(expect))
	}
	for idx, exp := range expect {
		if idx >= len(lines) {
			t.Fatalf("instruction %q missing from objdump output", exp.Name)
		}
		line := lines[idx]
		if err := exp.match(line); err != nil {
			t.Fatalf("instruction %q mismatch at line %d: %v\nline: %s", exp.Name, idx, err, line.Text)
		}
	}
}
