package x86

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/tinyrange/x86enc/internal/asm"
)

type feature struct {
	deps   []string
	define func(b *Builder)
}

// features maps a feature name to its definitions and prerequisites. Entries
// with no define function only pull in their dependencies.
var features = map[string]feature{
	"386_common": {define: define386Common},
	"386":        {deps: []string{"386_common"}, define: define386},
	"387":        {define: define387},
	"486":        {deps: []string{"386", "387"}},
	"pentium":    {deps: []string{"486"}, define: definePentium},
	"p6":         {deps: []string{"pentium"}, define: defineP6},
	"3dnow":      {deps: []string{"pentium"}, define: define3DNow},
	"sse":        {deps: []string{"p6"}, define: defineSSE},
	"sse2":       {deps: []string{"sse"}, define: defineSSE2},
	"sse3":       {deps: []string{"sse2"}, define: defineSSE3},
	"ssse3":      {deps: []string{"sse3"}, define: defineSSSE3},
	"sse41":      {deps: []string{"ssse3"}, define: defineSSE41},
	"sse42":      {deps: []string{"sse41"}, define: defineSSE42},
	"aesni":      {deps: []string{"sse2"}, define: defineAESNI},
	"avx":        {deps: []string{"sse42", "aesni"}, define: defineAVX},
	"avx2":       {deps: []string{"avx"}, define: defineAVX2},
	"bmi1":       {deps: []string{"386"}, define: defineBMI1},
	"vmx":        {deps: []string{"386"}, define: defineVMX},
	"all":        {deps: []string{"3dnow", "avx2", "bmi1", "vmx"}},
	"latest":     {deps: []string{"all"}},
}

// DefaultFeatures is the feature set used when none is requested.
var DefaultFeatures = []string{"all"}

// Features returns the known feature names, sorted.
func Features() []string {
	out := make([]string, 0, len(features))
	for n := range features {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// ErrUnknownFeature is returned by BuildTable for an unregistered name.
var ErrUnknownFeature = errors.New("unknown feature")

// Define applies the named features and their prerequisites, each exactly
// once, prerequisites first.
func (b *Builder) Define(names ...string) error {
	done := map[string]bool{}
	var visit func(name string, path []string) error
	visit = func(name string, path []string) error {
		if done[name] {
			return nil
		}
		f, ok := features[name]
		if !ok {
			return fmt.Errorf("x86: %w %q", ErrUnknownFeature, name)
		}
		for _, p := range path {
			if p == name {
				return fmt.Errorf("x86: feature cycle through %q", name)
			}
		}
		for _, d := range f.deps {
			if err := visit(d, append(path, name)); err != nil {
				return err
			}
		}
		done[name] = true
		if f.define != nil {
			b.apply(name, f.define)
		}
		return nil
	}
	for _, n := range names {
		if err := visit(n, nil); err != nil {
			return err
		}
	}
	return b.err
}

func (b *Builder) apply(name string, define func(*Builder)) {
	before := b.Len()
	b.feature = name
	define(b)
	b.feature = ""
	slog.Debug("x86: feature applied", "feature", name, "mode", b.mode.Bits, "opcodes", b.Len()-before)
}

// BuildTable builds the opcode table for m from the named features, or from
// DefaultFeatures when none are given. Long mode tables always include the
// 64-bit only instructions.
func BuildTable(m Mode, names ...string) (*Table, error) {
	if err := m.validate(); err != nil {
		return nil, err
	}
	if len(names) == 0 {
		names = DefaultFeatures
	}
	b := NewBuilder(m, DefaultConfig())
	if err := b.Define(names...); err != nil {
		return nil, err
	}
	if m.Long() {
		b.apply("x64", defineX64)
	}
	return b.Table()
}

// FindCandidates returns the opcodes of inst's mnemonic whose signature
// accepts its operands, in table order.
func (t *Table) FindCandidates(inst Instruction) []*Opcode {
	var out []*Opcode
	for _, op := range t.byName[inst.Mnemonic] {
		if op.Match(t.mode, inst) {
			out = append(out, op)
		}
	}
	return out
}

// Assemble encodes inst with every matching opcode and returns all candidate
// buffers, shortest first. Opcodes failing with a recoverable error are
// skipped; if none succeed the most specific error is returned wrapped with
// ErrNoCandidate. A plain signature mismatch only wins when every opcode
// failed that way.
func (t *Table) Assemble(inst Instruction) ([]*asm.Buffer, error) {
	ops := t.byName[inst.Mnemonic]
	if len(ops) == 0 {
		return nil, &EncodeError{Inst: inst, Err: fmt.Errorf("%w: unknown mnemonic %q", ErrNoCandidate, inst.Mnemonic)}
	}
	var (
		out     []*asm.Buffer
		lastErr error
	)
	for _, op := range ops {
		bufs, err := Encode(t.mode, inst, op)
		if err != nil {
			if lastErr == nil || !errors.Is(err, ErrMismatch) {
				lastErr = err
			}
			continue
		}
		out = append(out, bufs...)
	}
	if len(out) == 0 {
		return nil, &EncodeError{Inst: inst, Err: fmt.Errorf("%w: %w", ErrNoCandidate, lastErr)}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Len() < out[j].Len() })
	return out, nil
}
