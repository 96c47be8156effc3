package asm

import (
	"fmt"
	"sort"
	"strings"
)

type exprOp uint8

const (
	opConst exprOp = iota
	opLabel
	opAdd
	opSub
	opMul
	opNeg
)

type exprNode struct {
	op    exprOp
	val   int64
	label Label
	l, r  *exprNode
}

// Expression is an immutable integer expression over constants and labels.
// The zero value is the constant 0.
type Expression struct {
	n *exprNode
}

// Int returns a constant expression.
func Int(v int64) Expression {
	return Expression{n: &exprNode{op: opConst, val: v}}
}

// Sym returns an expression referring to the address of label.
func Sym(label Label) Expression {
	return Expression{n: &exprNode{op: opLabel, label: label}}
}

func (e Expression) node() *exprNode {
	if e.n == nil {
		return &exprNode{op: opConst}
	}
	return e.n
}

func combine(op exprOp, l, r Expression) Expression {
	return Expression{n: &exprNode{op: op, l: l.node(), r: r.node()}}
}

func (e Expression) Add(o Expression) Expression { return combine(opAdd, e, o) }
func (e Expression) Sub(o Expression) Expression { return combine(opSub, e, o) }
func (e Expression) Mul(o Expression) Expression { return combine(opMul, e, o) }

func (e Expression) Neg() Expression {
	return Expression{n: &exprNode{op: opNeg, l: e.node()}}
}

// linearForm is c + sum(terms[l] * l).
type linearForm struct {
	c     int64
	terms map[Label]int64
}

func (f linearForm) scale(k int64) linearForm {
	out := linearForm{c: f.c * k, terms: make(map[Label]int64, len(f.terms))}
	for l, v := range f.terms {
		if v*k != 0 {
			out.terms[l] = v * k
		}
	}
	return out
}

func (f linearForm) add(o linearForm) linearForm {
	out := linearForm{c: f.c + o.c, terms: make(map[Label]int64, len(f.terms)+len(o.terms))}
	for l, v := range f.terms {
		out.terms[l] = v
	}
	for l, v := range o.terms {
		if s := out.terms[l] + v; s != 0 {
			out.terms[l] = s
		} else {
			delete(out.terms, l)
		}
	}
	return out
}

// linear normalizes n, failing when n multiplies two symbolic terms.
func (n *exprNode) linear() (linearForm, bool) {
	switch n.op {
	case opConst:
		return linearForm{c: n.val}, true
	case opLabel:
		return linearForm{terms: map[Label]int64{n.label: 1}}, true
	case opNeg:
		f, ok := n.l.linear()
		if !ok {
			return linearForm{}, false
		}
		return f.scale(-1), true
	}
	l, ok := n.l.linear()
	if !ok {
		return linearForm{}, false
	}
	r, ok := n.r.linear()
	if !ok {
		return linearForm{}, false
	}
	switch n.op {
	case opAdd:
		return l.add(r), true
	case opSub:
		return l.add(r.scale(-1)), true
	case opMul:
		switch {
		case len(l.terms) == 0:
			return r.scale(l.c), true
		case len(r.terms) == 0:
			return l.scale(r.c), true
		}
		return linearForm{}, false
	}
	panic(fmt.Sprintf("asm: unknown expression operator %d", n.op))
}

func (f linearForm) expression() Expression {
	labels := make([]Label, 0, len(f.terms))
	for l := range f.terms {
		labels = append(labels, l)
	}
	sort.Slice(labels, func(i, j int) bool { return labels[i] < labels[j] })

	var acc *Expression
	for _, l := range labels {
		coef := f.terms[l]
		term := Sym(l)
		if coef != 1 && coef != -1 {
			mag := coef
			if mag < 0 {
				mag = -mag
			}
			term = Int(mag).Mul(term)
		}
		switch {
		case acc == nil && coef < 0:
			neg := term.Neg()
			acc = &neg
		case acc == nil:
			acc = &term
		case coef < 0:
			next := acc.Sub(term)
			acc = &next
		default:
			next := acc.Add(term)
			acc = &next
		}
	}
	switch {
	case acc == nil:
		return Int(f.c)
	case f.c == 0:
		return *acc
	case f.c < 0 && f.c != -f.c:
		return acc.Sub(Int(-f.c))
	default:
		return acc.Add(Int(f.c))
	}
}

// Reduce folds constants. Linear expressions are normalized so that labels
// cancel out, e.g. (a + 4) - a reduces to 4.
func (e Expression) Reduce() Expression {
	n := e.node()
	if f, ok := n.linear(); ok {
		return f.expression()
	}
	return Expression{n: n.fold()}
}

func (n *exprNode) fold() *exprNode {
	switch n.op {
	case opConst, opLabel:
		return n
	}
	out := &exprNode{op: n.op, l: n.l.fold()}
	if n.r != nil {
		out.r = n.r.fold()
	}
	if f, ok := out.linear(); ok {
		return f.expression().n
	}
	return out
}

// Constant returns the value of e if it reduces to a constant.
func (e Expression) Constant() (int64, bool) {
	f, ok := e.node().linear()
	if !ok || len(f.terms) != 0 {
		return 0, false
	}
	return f.c, true
}

// IsZero reports whether e reduces to the constant 0.
func (e Expression) IsZero() bool {
	v, ok := e.Constant()
	return ok && v == 0
}

// Labels returns the sorted, de-duplicated set of labels referenced by e.
func (e Expression) Labels() []Label {
	seen := map[Label]struct{}{}
	var walk func(*exprNode)
	walk = func(n *exprNode) {
		if n == nil {
			return
		}
		if n.op == opLabel {
			seen[n.label] = struct{}{}
		}
		walk(n.l)
		walk(n.r)
	}
	walk(e.n)
	out := make([]Label, 0, len(seen))
	for l := range seen {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Bind substitutes known label values and reduces the result.
func (e Expression) Bind(values map[Label]int64) Expression {
	var sub func(*exprNode) *exprNode
	sub = func(n *exprNode) *exprNode {
		if n == nil {
			return nil
		}
		if n.op == opLabel {
			if v, ok := values[n.label]; ok {
				return &exprNode{op: opConst, val: v}
			}
			return n
		}
		return &exprNode{op: n.op, val: n.val, label: n.label, l: sub(n.l), r: sub(n.r)}
	}
	return Expression{n: sub(e.node())}.Reduce()
}

// InRange reports whether e fits t. known is false when e is symbolic and
// the answer cannot be decided yet.
func (e Expression) InRange(t IntType) (fits, known bool) {
	v, ok := e.Constant()
	if !ok {
		return false, false
	}
	return t.Fits(v), true
}

// Encode returns a buffer holding e as a t-sized field. Constants are checked
// against the range of t; symbolic values are written as zero bytes with a
// relocation at offset 0.
func (e Expression) Encode(t IntType, order Endianness) (*Buffer, error) {
	r := e.Reduce()
	b := &Buffer{data: make([]byte, t.Size())}
	if v, ok := r.Constant(); ok {
		if !t.Fits(v) {
			return nil, &RangeError{Value: v, Type: t}
		}
		putInt(b.data, t, order, v)
		return b, nil
	}
	b.relocs = map[int]Relocation{0: {Offset: 0, Target: r, Type: t, Order: order}}
	return b, nil
}

func (e Expression) String() string {
	var sb strings.Builder
	e.node().format(&sb, 0)
	return sb.String()
}

func precedence(op exprOp) int {
	switch op {
	case opAdd, opSub:
		return 1
	case opMul:
		return 2
	case opNeg:
		return 3
	}
	return 4
}

func (n *exprNode) format(sb *strings.Builder, parent int) {
	p := precedence(n.op)
	if p < parent {
		sb.WriteByte('(')
		defer sb.WriteByte(')')
	}
	switch n.op {
	case opConst:
		fmt.Fprintf(sb, "%d", n.val)
	case opLabel:
		sb.WriteString(string(n.label))
	case opNeg:
		sb.WriteByte('-')
		n.l.format(sb, p)
	case opAdd:
		n.l.format(sb, p)
		sb.WriteString(" + ")
		n.r.format(sb, p)
	case opSub:
		n.l.format(sb, p)
		sb.WriteString(" - ")
		n.r.format(sb, p+1)
	case opMul:
		n.l.format(sb, p)
		sb.WriteString(" * ")
		n.r.format(sb, p+1)
	}
}
