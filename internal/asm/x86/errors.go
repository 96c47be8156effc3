package x86

import (
	"errors"
	"fmt"

	"github.com/tinyrange/x86enc/internal/asm"
)

var (
	// ErrAddressing reports a memory or register operand that has no valid
	// encoding in the current mode.
	ErrAddressing = errors.New("invalid addressing")
	// ErrWidthConflict reports operands whose widths disagree with each
	// other or with the opcode.
	ErrWidthConflict = errors.New("operand width conflict")
	// ErrMismatch reports operands that do not fit the opcode signature.
	ErrMismatch = errors.New("operands do not match opcode")
	// ErrNoCandidate is returned by Assemble when no opcode produced an
	// encoding.
	ErrNoCandidate = errors.New("no matching opcode")
	// ErrDecode is returned by Disassemble for bytes that do not form a
	// complete instruction.
	ErrDecode = errors.New("undecodable instruction")

	ErrUnknownToken = errors.New("unknown token")
	ErrUnknownField = errors.New("unknown field")
	ErrFieldRange   = errors.New("field outside opcode bytes")
	ErrFieldOverlap = errors.New("overlapping fields")
	ErrUnknownHint  = errors.New("unknown hint")

	// ErrRange aliases the constant range error of the asm package.
	ErrRange = asm.ErrRange
)

// EncodeError is returned for recoverable encoding failures. It unwraps to
// one of ErrAddressing, ErrWidthConflict, ErrMismatch or ErrRange.
type EncodeError struct {
	Inst   Instruction
	Opcode *Opcode
	Err    error
}

func (e *EncodeError) Error() string {
	if e.Opcode == nil {
		return fmt.Sprintf("encode %s: %v", e.Inst, e.Err)
	}
	return fmt.Sprintf("encode %s with %s: %v", e.Inst, e.Opcode, e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }

// TableError reports the first invalid opcode definition of a table.
type TableError struct {
	Feature string
	Opcode  string
	Err     error
}

func (e *TableError) Error() string {
	return fmt.Sprintf("x86: feature %q: opcode %q: %v", e.Feature, e.Opcode, e.Err)
}

func (e *TableError) Unwrap() error { return e.Err }

func widthError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrWidthConflict, fmt.Sprintf(format, args...))
}

func addressingError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrAddressing, fmt.Sprintf(format, args...))
}
