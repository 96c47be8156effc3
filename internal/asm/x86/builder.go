package x86

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
)

type hintKind uint8

const (
	hintNone hintKind = iota
	hintMRM
	hintMRMW
	hintMRMA
	hintReg
	hintRegFP
	hintModRMA
	hintExt
	hintMRMMMX
	hintMRMXMM
	hintMRMYMM
)

// Hint tells the builder how the opcode bytes carry their register and
// ModRM arguments.
type Hint struct {
	kind hintKind
	ext  byte
}

var (
	HintNone = Hint{}
	// HintMRM appends a ModRM byte: reg field plus r/m operand.
	HintMRM = Hint{kind: hintMRM}
	// HintMRMW is HintMRM with a w bit in the last opcode byte.
	HintMRMW = Hint{kind: hintMRMW}
	// HintMRMA is HintMRM restricted to memory r/m operands.
	HintMRMA = Hint{kind: hintMRMA}
	// HintReg embeds a register in the low bits of the last opcode byte.
	HintReg = Hint{kind: hintReg}
	// HintRegFP embeds an x87 register in the last opcode byte.
	HintRegFP = Hint{kind: hintRegFP}
	// HintModRMA uses the last opcode byte as a memory-only ModRM byte.
	HintModRMA = Hint{kind: hintModRMA}
	HintMRMMMX = Hint{kind: hintMRMMMX}
	HintMRMXMM = Hint{kind: hintMRMXMM}
	HintMRMYMM = Hint{kind: hintMRMYMM}
)

// Ext appends a ModRM byte whose reg field is the opcode extension n.
func Ext(n byte) Hint {
	return Hint{kind: hintExt, ext: n}
}

// Builder accumulates opcode definitions for one target mode.
type Builder struct {
	mode    Mode
	cfg     Config
	front   []*Opcode
	ops     []*Opcode
	feature string
	err     error
}

func NewBuilder(m Mode, cfg Config) *Builder {
	return &Builder{mode: m, cfg: cfg}
}

func (b *Builder) Mode() Mode { return b.mode }

// Err returns the first definition error recorded so far.
func (b *Builder) Err() error { return b.err }

// Len returns the number of opcodes committed so far.
func (b *Builder) Len() int { return len(b.front) + len(b.ops) }

func (b *Builder) fail(name string, err error) {
	if b.err != nil {
		return
	}
	b.err = &TableError{Feature: b.feature, Opcode: name, Err: err}
}

// Draft is an opcode under construction. Update methods mutate the draft in
// place; Add validates it and commits it with all its variants.
type Draft struct {
	b     *Builder
	op    *Opcode
	not64 bool
	err   error
}

// Op starts a definition. Tokens are property names, argument kinds, or "u"
// for an immediate marked unsigned.
func (b *Builder) Op(name string, code []byte, hint Hint, tokens ...string) *Draft {
	op := &Opcode{
		name:   name,
		bin:    append([]byte(nil), code...),
		fields: map[Field]Loc{},
		props:  map[Prop]int{},
	}
	d := &Draft{b: b, op: op}
	if len(code) == 0 {
		d.err = fmt.Errorf("empty opcode")
		return d
	}

	var lead, tail []ArgKind
	n := len(op.bin)
	switch hint.kind {
	case hintNone:
	case hintMRM, hintMRMW, hintMRMA:
		op.fields[FieldReg] = Loc{Byte: n, Bit: 3}
		op.fields[FieldModRM] = Loc{Byte: n, Bit: 0}
		if hint.kind == hintMRMW {
			op.fields[FieldW] = Loc{Byte: n - 1, Bit: 0}
		}
		if hint.kind == hintMRMA {
			op.props[PropModRMA] = 1
		}
		lead = []ArgKind{ArgReg, ArgModRM}
		op.bin = append(op.bin, 0)
	case hintReg:
		op.fields[FieldReg] = Loc{Byte: n - 1, Bit: 0}
		lead = []ArgKind{ArgReg}
	case hintRegFP:
		op.fields[FieldRegFP] = Loc{Byte: n - 1, Bit: 0}
		lead = []ArgKind{ArgRegFP, ArgRegFP0}
	case hintModRMA:
		op.fields[FieldModRM] = Loc{Byte: n - 1, Bit: 0}
		op.props[PropModRMA] = 1
		tail = []ArgKind{ArgModRM}
	case hintExt:
		op.fields[FieldModRM] = Loc{Byte: n, Bit: 0}
		op.bin = append(op.bin, hint.ext<<3)
		lead = []ArgKind{ArgModRM}
	case hintMRMMMX, hintMRMXMM, hintMRMYMM:
		reg, rm := ArgRegMMX, ArgModRMMMX
		if hint.kind == hintMRMXMM {
			reg, rm = ArgRegXMM, ArgModRMXMM
		} else if hint.kind == hintMRMYMM {
			reg, rm = ArgRegYMM, ArgModRMYMM
		}
		op.fields[Field(reg)] = Loc{Byte: n, Bit: 3}
		op.fields[FieldModRM] = Loc{Byte: n, Bit: 0}
		lead = []ArgKind{reg, rm}
		op.bin = append(op.bin, 0)
	default:
		d.err = fmt.Errorf("%w %d", ErrUnknownHint, hint.kind)
		return d
	}

	op.args = append(op.args, lead...)
	for _, tok := range tokens {
		if tok == "u" {
			op.props[PropUnsignedImm] = 1
			tok = string(ArgImm)
		}
		switch {
		case b.cfg.ValidProps[Prop(tok)]:
			op.props[Prop(tok)] = 1
		case b.cfg.ValidArgs[ArgKind(tok)]:
			op.args = append(op.args, ArgKind(tok))
		default:
			if d.err == nil {
				d.err = fmt.Errorf("%w %q", ErrUnknownToken, tok)
			}
		}
	}
	op.args = append(op.args, tail...)
	return d
}

// Vex starts the definition of an AVX opcode. The vvvv operand, if any, is
// inserted at v.VReg.
func (b *Builder) Vex(name string, opcode byte, v Vex, hint Hint, tokens ...string) *Draft {
	d := b.Op(name, []byte{opcode}, hint, tokens...)
	vex := v
	d.op.vex = &vex
	if v.VReg >= 0 {
		kind := ArgVexVXMM
		if v.L == 256 {
			kind = ArgVexVYMM
		}
		d.InsertArg(v.VReg, kind)
	}
	return d
}

func (d *Draft) Field(f Field, byteIdx, bit int) *Draft {
	d.op.fields[f] = Loc{Byte: byteIdx, Bit: bit}
	return d
}

// NeedPfx marks a mandatory prefix byte.
func (d *Draft) NeedPfx(p byte) *Draft {
	d.op.props[PropNeedPfx] = int(p)
	return d
}

func (d *Draft) OpSize(bits int) *Draft {
	d.op.props[PropOpSize] = bits
	return d
}

func (d *Draft) ArgSize(bits int) *Draft {
	d.op.props[PropArgSize] = bits
	return d
}

func (d *Draft) AddrSize(bits int) *Draft {
	d.op.props[PropAddrSize] = bits
	return d
}

// Set adds a flag property.
func (d *Draft) Set(p Prop) *Draft {
	d.op.props[p] = 1
	return d
}

func (d *Draft) Widening() *Draft   { return d.Set(PropWidening) }
func (d *Draft) Auto64() *Draft     { return d.Set(PropAuto64) }
func (d *Draft) NoOpSize64() *Draft { return d.Set(PropNoOpSize64) }

// Not64 drops the opcode from long-mode tables.
func (d *Draft) Not64() *Draft {
	d.not64 = true
	return d
}

// Reverse reverses the argument order.
func (d *Draft) Reverse() *Draft {
	a := d.op.args
	for i, j := 0, len(a)-1; i < j; i, j = i+1, j-1 {
		a[i], a[j] = a[j], a[i]
	}
	return d
}

// ReplaceArg replaces the first argument of kind old.
func (d *Draft) ReplaceArg(old, repl ArgKind) *Draft {
	for i, a := range d.op.args {
		if a == old {
			d.op.args[i] = repl
			return d
		}
	}
	if d.err == nil {
		d.err = fmt.Errorf("no %q argument to replace", old)
	}
	return d
}

func (d *Draft) InsertArg(idx int, k ArgKind) *Draft {
	if idx < 0 || idx > len(d.op.args) {
		if d.err == nil {
			d.err = fmt.Errorf("argument index %d out of range", idx)
		}
		return d
	}
	args := append([]ArgKind(nil), d.op.args[:idx]...)
	args = append(args, k)
	d.op.args = append(args, d.op.args[idx:]...)
	return d
}

// SetArgs replaces the whole argument list.
func (d *Draft) SetArgs(kinds ...ArgKind) *Draft {
	d.op.args = append([]ArgKind(nil), kinds...)
	return d
}

// Add validates the draft and commits it together with its generated
// variants. Errors are recorded on the builder.
func (d *Draft) Add() {
	b := d.b
	if d.err != nil {
		b.fail(d.op.name, d.err)
		return
	}
	if d.not64 && b.mode.Long() {
		return
	}
	if err := b.validate(d.op); err != nil {
		b.fail(d.op.name, err)
		return
	}
	b.expand(d.op)
}

func (b *Builder) validate(op *Opcode) error {
	for p := range op.props {
		if !b.cfg.ValidProps[p] {
			return fmt.Errorf("%w: property %q", ErrUnknownToken, p)
		}
	}
	for _, a := range op.args {
		if !b.cfg.ValidArgs[a] {
			return fmt.Errorf("%w: argument %q", ErrUnknownToken, a)
		}
	}
	var used [16]byte
	for _, f := range op.Fields() {
		loc := op.fields[f]
		mask, ok := b.cfg.FieldMasks[f]
		if !ok {
			return fmt.Errorf("%w %q", ErrUnknownField, f)
		}
		if loc.Byte < 0 || loc.Byte >= len(op.bin) || loc.Byte >= len(used) {
			return fmt.Errorf("%w: %s at byte %d of %d", ErrFieldRange, f, loc.Byte, len(op.bin))
		}
		bits := uint(mask) << uint(loc.Bit)
		if loc.Bit < 0 || bits > 0xFF {
			return fmt.Errorf("%w: %s at bit %d", ErrFieldRange, f, loc.Bit)
		}
		if used[loc.Byte]&byte(bits) != 0 {
			return fmt.Errorf("%w: %s in byte %d", ErrFieldOverlap, f, loc.Byte)
		}
		used[loc.Byte] |= byte(bits)
	}
	return nil
}

type pendingOp struct {
	op      *Opcode
	fpSplit bool
}

// expand hardcodes the d, w and s bits and splits optional x87 operands,
// depth first, so that the table order follows definition order.
func (b *Builder) expand(op *Opcode) {
	stack := []pendingOp{{op: op}}
	push := func(ops ...pendingOp) {
		// Reversed so that ops[0] is handled next.
		for i := len(ops) - 1; i >= 0; i-- {
			stack = append(stack, ops[i])
		}
	}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		o := p.op

		if loc, ok := o.fields[FieldD]; ok {
			delete(o.fields, FieldD)
			rev := o.clone()
			reverseArgs(rev.args)
			o.bin[loc.Byte] |= 1 << loc.Bit
			push(pendingOp{op: rev}, pendingOp{op: o})
			continue
		}
		if loc, ok := o.fields[FieldW]; ok {
			delete(o.fields, FieldW)
			narrow := o.clone()
			narrow.props[PropArgSize] = 8
			narrow.narrow = true
			if b.mode.Long() {
				// w=0 s=1 is undefined in long mode.
				delete(narrow.fields, FieldS)
			}
			o.bin[loc.Byte] |= 1 << loc.Bit
			push(pendingOp{op: narrow}, pendingOp{op: o})
			continue
		}
		if loc, ok := o.fields[FieldS]; ok {
			delete(o.fields, FieldS)
			wide := o
			short := o.clone()
			short.bin[loc.Byte] |= 1 << loc.Bit
			for i, a := range short.args {
				if a == ArgImm {
					short.args[i] = ArgImm8
				}
			}
			wideNamed := wide.clone()
			wideNamed.name += ".i"
			shortNamed := short.clone()
			shortNamed.name += ".i8"
			push(pendingOp{op: wide}, pendingOp{op: short}, pendingOp{op: wideNamed}, pendingOp{op: shortNamed})
			continue
		}
		if !p.fpSplit && len(o.args) > 0 && o.args[0] == ArgRegFP0 {
			implicit := o.clone()
			implicit.args = removeArg(implicit.args, ArgRegFP0)
			push(pendingOp{op: implicit}, pendingOp{op: o, fpSplit: true})
			continue
		}
		b.insert(o)
	}
}

func (b *Builder) insert(op *Opcode) {
	if op.Has(PropNeedPfx) {
		b.front = append([]*Opcode{op}, b.front...)
	} else {
		b.ops = append(b.ops, op)
	}

	switch {
	case op.vex != nil:
	case argsEqual(op.args, ArgImm) || argsEqual(op.args, ArgFarPtr) || op.name == "ret":
		for _, sz := range []int{16, 32} {
			dup := op.clone()
			dup.name = fmt.Sprintf("%s.i%d", op.name, sz)
			dup.props[PropOpSize] = sz
			b.ops = append(b.ops, dup)
		}
	case op.Has(PropStrOp) || op.Has(PropStrOpZ) || containsArg(op.args, ArgMrmImm) ||
		strings.Contains(op.name, "loop") || strings.Contains(op.name, "xlat"):
		sizes := []int{16, 32}
		if b.mode.Long() {
			sizes = []int{32, 64}
		}
		for _, sz := range sizes {
			dup := op.clone()
			dup.name = fmt.Sprintf("%s.a%d", op.name, sz)
			dup.props[PropAddrSize] = sz
			b.ops = append(b.ops, dup)
		}
	}
}

// retag applies fn to every opcode committed so far.
func (b *Builder) retag(fn func(op *Opcode)) {
	for _, op := range b.front {
		fn(op)
	}
	for _, op := range b.ops {
		fn(op)
	}
}

// Table returns the finished table, or the first definition error.
func (b *Builder) Table() (*Table, error) {
	if b.err != nil {
		return nil, b.err
	}
	ops := make([]*Opcode, 0, b.Len())
	ops = append(ops, b.front...)
	ops = append(ops, b.ops...)
	slog.Debug("x86: table built", "mode", b.mode.Bits, "opcodes", len(ops))
	return newTable(b.mode, ops), nil
}

func reverseArgs(a []ArgKind) {
	for i, j := 0, len(a)-1; i < j; i, j = i+1, j-1 {
		a[i], a[j] = a[j], a[i]
	}
}

func removeArg(args []ArgKind, k ArgKind) []ArgKind {
	out := args[:0]
	for _, a := range args {
		if a != k {
			out = append(out, a)
		}
	}
	return out
}

func containsArg(args []ArgKind, k ArgKind) bool {
	for _, a := range args {
		if a == k {
			return true
		}
	}
	return false
}

func argsEqual(args []ArgKind, want ...ArgKind) bool {
	if len(args) != len(want) {
		return false
	}
	for i := range args {
		if args[i] != want[i] {
			return false
		}
	}
	return true
}

// Table is an ordered, read-only opcode list.
type Table struct {
	mode   Mode
	ops    []*Opcode
	byName map[string][]*Opcode
}

func newTable(m Mode, ops []*Opcode) *Table {
	t := &Table{mode: m, ops: ops, byName: make(map[string][]*Opcode)}
	for _, op := range ops {
		t.byName[op.name] = append(t.byName[op.name], op)
	}
	return t
}

func (t *Table) Mode() Mode { return t.mode }

func (t *Table) Len() int { return len(t.ops) }

// Opcodes returns the table in order.
func (t *Table) Opcodes() []*Opcode { return append([]*Opcode(nil), t.ops...) }

// Lookup returns the opcodes defined for a mnemonic, in table order.
func (t *Table) Lookup(name string) []*Opcode {
	return append([]*Opcode(nil), t.byName[name]...)
}

// Mnemonics returns every defined mnemonic, sorted.
func (t *Table) Mnemonics() []string {
	out := make([]string, 0, len(t.byName))
	for n := range t.byName {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
