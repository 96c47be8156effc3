package x86

import (
	"fmt"

	"github.com/tinyrange/x86enc/internal/asm"
)

// Mode is the target context an instruction is encoded for.
type Mode struct {
	Bits  int
	Order asm.Endianness
}

var (
	Mode16 = Mode{Bits: 16, Order: asm.LittleEndian}
	Mode32 = Mode{Bits: 32, Order: asm.LittleEndian}
	Mode64 = Mode{Bits: 64, Order: asm.LittleEndian}
)

// ModeFor returns the little-endian mode of the given width.
func ModeFor(bits int) (Mode, error) {
	m := Mode{Bits: bits, Order: asm.LittleEndian}
	if err := m.validate(); err != nil {
		return Mode{}, err
	}
	return m, nil
}

func (m Mode) validate() error {
	switch m.Bits {
	case 16, 32, 64:
		return nil
	}
	return fmt.Errorf("x86: unsupported mode width %d", m.Bits)
}

// DefaultOpSize is 16 in real mode and 32 otherwise; long mode only
// reaches 64-bit operands through REX.W.
func (m Mode) DefaultOpSize() int {
	if m.Bits == 16 {
		return 16
	}
	return 32
}

func (m Mode) DefaultAddrSize() int {
	return m.Bits
}

// Long reports whether REX and the extended registers are available.
func (m Mode) Long() bool {
	return m.Bits == 64
}

func (m Mode) String() string {
	return fmt.Sprintf("x86-%d/%s", m.Bits, m.Order)
}
