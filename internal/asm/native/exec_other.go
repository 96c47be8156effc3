//go:build !(linux && amd64)

package native

import "github.com/tinyrange/x86enc/internal/asm"

// Func is a loaded code region. It cannot be created on this host.
type Func struct{}

// Load always fails with ErrUnsupported, after checking that code would
// bind.
func Load(code *asm.Buffer) (*Func, error) {
	if _, err := bind(code, 0); err != nil {
		return nil, err
	}
	return nil, ErrUnsupported
}

func (fn *Func) Entry() uintptr { return 0 }

func (fn *Func) Addr(label asm.Label) (uintptr, bool) { return 0, false }

func (fn *Func) Call(args ...any) uintptr { panic(ErrUnsupported) }

func (fn *Func) CallLabel(label asm.Label, args ...any) (uintptr, error) {
	return 0, ErrUnsupported
}

func (fn *Func) Release() error { return nil }
