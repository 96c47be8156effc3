//go:build linux && amd64

package native

import (
	"fmt"
	"log/slog"
	"reflect"
	"unsafe"

	"github.com/ebitengine/purego"
	"golang.org/x/sys/unix"

	"github.com/tinyrange/x86enc/internal/asm"
)

// Func is a loaded code region.
type Func struct {
	mem     []byte
	entry   uintptr
	exports map[asm.Label]int
}

// Load maps code into a fresh read-write region, binds its labels to their
// final addresses and then makes the region read-execute. The entry point is
// the start of the buffer.
func Load(code *asm.Buffer) (*Func, error) {
	size := code.Len()
	if size == 0 {
		return nil, fmt.Errorf("empty code")
	}

	pageSize := unix.Getpagesize()
	allocSize := ((size + pageSize - 1) / pageSize) * pageSize

	mem, err := unix.Mmap(-1, 0, allocSize, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, fmt.Errorf("mmap code region: %w", err)
	}
	release := true
	defer func() {
		if release {
			_ = unix.Munmap(mem)
		}
	}()

	base := uintptr(unsafe.Pointer(&mem[0]))
	bound, err := bind(code, base)
	if err != nil {
		return nil, err
	}
	copy(mem, bound.Bytes())

	if err := unix.Mprotect(mem, unix.PROT_READ|unix.PROT_EXEC); err != nil {
		return nil, fmt.Errorf("mprotect code region: %w", err)
	}
	release = false

	slog.Debug("native: code loaded", "base", fmt.Sprintf("%#x", base), "size", size)
	return &Func{mem: mem, entry: base, exports: bound.Exports()}, nil
}

// Entry returns the address of the first byte of the code.
func (fn *Func) Entry() uintptr {
	return fn.entry
}

// Addr returns the address an exported label was bound to.
func (fn *Func) Addr(label asm.Label) (uintptr, bool) {
	off, ok := fn.exports[label]
	if !ok {
		return 0, false
	}
	return fn.entry + uintptr(off), true
}

// Call executes the code with up to six integer or pointer arguments and
// returns rax.
func (fn *Func) Call(args ...any) uintptr {
	return fn.call(fn.entry, args)
}

// CallLabel is Call starting at an exported label.
func (fn *Func) CallLabel(label asm.Label, args ...any) (uintptr, error) {
	addr, ok := fn.Addr(label)
	if !ok {
		return 0, fmt.Errorf("label %q not exported", label)
	}
	return fn.call(addr, args), nil
}

func (fn *Func) call(addr uintptr, args []any) uintptr {
	if fn.mem == nil {
		panic("native.Func: call after Release")
	}
	if len(args) > maxArguments {
		panic(fmt.Sprintf("native call accepts at most %d arguments, got %d", maxArguments, len(args)))
	}
	buf := make([]uintptr, len(args))
	for idx, arg := range args {
		value, err := argValue(arg)
		if err != nil {
			panic(err)
		}
		buf[idx] = value
	}
	r1, _, _ := purego.SyscallN(addr, buf...)
	return r1
}

// Release unmaps the code. The Func must not be called afterwards.
func (fn *Func) Release() error {
	if fn.mem == nil {
		return nil
	}
	err := unix.Munmap(fn.mem)
	fn.mem = nil
	return err
}

func argValue(arg any) (uintptr, error) {
	switch v := arg.(type) {
	case nil:
		return 0, nil
	case uintptr:
		return v, nil
	case unsafe.Pointer:
		return uintptr(v), nil
	case int:
		return uintptr(v), nil
	case int8:
		return uintptr(uint8(v)), nil
	case int16:
		return uintptr(uint16(v)), nil
	case int32:
		return uintptr(uint32(v)), nil
	case int64:
		return uintptr(v), nil
	case uint:
		return uintptr(v), nil
	case uint8:
		return uintptr(v), nil
	case uint16:
		return uintptr(v), nil
	case uint32:
		return uintptr(v), nil
	case uint64:
		return uintptr(v), nil
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	}

	val := reflect.ValueOf(arg)
	switch val.Kind() {
	case reflect.Pointer, reflect.UnsafePointer:
		if val.IsNil() {
			return 0, nil
		}
		return uintptr(val.Pointer()), nil
	}

	return 0, fmt.Errorf("unsupported argument type %T", arg)
}
