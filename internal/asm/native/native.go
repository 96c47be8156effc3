// Package native loads encoded x86-64 code into executable memory of the
// current process and calls it with the System V calling convention.
package native

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/tinyrange/x86enc/internal/asm"
)

// ErrUnsupported is returned by Load on hosts that cannot run x86-64 code.
var ErrUnsupported = errors.New("native execution not supported on this host")

// ErrUnresolved is returned by Load when the buffer references labels it
// does not export.
var ErrUnresolved = errors.New("unresolved relocation")

const maxArguments = 6

var _ asm.NativeFunc = (*Func)(nil)

// bind resolves every relocation of code against its own exports placed at
// base. The input buffer is left untouched.
func bind(code *asm.Buffer, base uintptr) (*asm.Buffer, error) {
	out := code.Clone()
	values := make(map[asm.Label]int64)
	for l, off := range out.Exports() {
		values[l] = int64(base) + int64(off)
	}
	if _, err := out.Fixup(values); err != nil {
		return nil, err
	}
	if rest := out.Relocations(); len(rest) > 0 {
		seen := map[asm.Label]bool{}
		var names []string
		for _, r := range rest {
			for _, l := range r.Target.Labels() {
				if !seen[l] {
					seen[l] = true
					names = append(names, string(l))
				}
			}
		}
		sort.Strings(names)
		return nil, fmt.Errorf("%w: %s", ErrUnresolved, strings.Join(names, ", "))
	}
	return out, nil
}
