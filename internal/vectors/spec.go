// Package vectors loads YAML encoding suites and checks them against an
// opcode table.
package vectors

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tinyrange/x86enc/internal/asm"
	"github.com/tinyrange/x86enc/internal/asm/x86"
)

// Suite is a list of encoding cases for one target profile.
type Suite struct {
	Name    string      `yaml:"name"`
	Profile x86.Profile `yaml:"profile"`
	Cases   []Case      `yaml:"cases"`
}

// Case is one instruction and what encoding it must produce.
type Case struct {
	Name     string    `yaml:"name"`
	Inst     string    `yaml:"inst"`
	Args     []Operand `yaml:"args"`
	Prefixes []string  `yaml:"prefixes"`
	Expect   Expect    `yaml:"expect"`
}

// Expect holds the expected outcome. Hex strings may contain spaces.
type Expect struct {
	// First is the shortest candidate.
	First string `yaml:"first"`
	// All lists every candidate, shortest first.
	All []string `yaml:"all"`
	// Error names the error class: addressing, width, range, mismatch or
	// no_candidate.
	Error string `yaml:"error"`
}

// Operand is an instruction operand. In YAML it is either a scalar (a
// register name, an integer, or a label) or a map with one of the fields set.
type Operand struct {
	Reg   string  `yaml:"reg,omitempty"`
	Imm   *int64  `yaml:"imm,omitempty"`
	Label string  `yaml:"label,omitempty"`
	Mem   *MemRef `yaml:"mem,omitempty"`
	Far   *FarRef `yaml:"far,omitempty"`
}

// MemRef describes a memory operand.
type MemRef struct {
	Base  string `yaml:"base"`
	Index string `yaml:"index"`
	Scale uint8  `yaml:"scale"`
	Disp  int64  `yaml:"disp"`
	Label string `yaml:"label"`
	Seg   string `yaml:"seg"`
	Size  int    `yaml:"size"`
	// AddrSize forces the address width of a register-less operand.
	AddrSize int `yaml:"addr_size"`
}

// FarRef is a selector:offset far pointer.
type FarRef struct {
	Seg int64 `yaml:"seg"`
	Off int64 `yaml:"off"`
}

type operandFields Operand

// UnmarshalYAML implements yaml.Unmarshaler for Operand.
func (o *Operand) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return value.Decode((*operandFields)(o))
	}
	if value.Tag == "!!int" {
		var v int64
		if err := value.Decode(&v); err != nil {
			return err
		}
		o.Imm = &v
		return nil
	}
	if _, ok := x86.LookupRegister(value.Value); ok {
		o.Reg = value.Value
		return nil
	}
	o.Label = value.Value
	return nil
}

// Operand converts the YAML form to an encoder operand.
func (o Operand) Operand() (x86.Operand, error) {
	switch {
	case o.Reg != "":
		r, ok := x86.LookupRegister(o.Reg)
		if !ok {
			return nil, fmt.Errorf("unknown register %q", o.Reg)
		}
		return r, nil
	case o.Imm != nil:
		return x86.Imm(*o.Imm), nil
	case o.Label != "":
		return x86.ImmLabel(asm.Label(o.Label)), nil
	case o.Mem != nil:
		return o.Mem.indirect()
	case o.Far != nil:
		return x86.FarPtr{Seg: asm.Int(o.Far.Seg), Offset: asm.Int(o.Far.Off)}, nil
	}
	return nil, errors.New("empty operand")
}

func gpRegister(name string) (x86.Reg, error) {
	op, ok := x86.LookupRegister(name)
	if !ok {
		return x86.Reg{}, fmt.Errorf("unknown register %q", name)
	}
	r, ok := op.(x86.Reg)
	if !ok {
		return x86.Reg{}, fmt.Errorf("%s is not a general purpose register", name)
	}
	return r, nil
}

func (m MemRef) indirect() (x86.Indirect, error) {
	var (
		mem x86.Indirect
		err error
	)
	switch {
	case m.Base != "" && m.Index != "":
		var base, index x86.Reg
		if base, err = gpRegister(m.Base); err != nil {
			return mem, err
		}
		if index, err = gpRegister(m.Index); err != nil {
			return mem, err
		}
		mem = x86.MemIndex(base, index, m.Scale)
	case m.Base != "":
		base, err := gpRegister(m.Base)
		if err != nil {
			return mem, err
		}
		mem = x86.Mem(base)
	case m.Index != "":
		index, err := gpRegister(m.Index)
		if err != nil {
			return mem, err
		}
		mem = x86.MemScaled(index, m.Scale)
	default:
		mem = x86.MemAbs(asm.Int(0))
	}

	disp := asm.Int(m.Disp)
	if m.Label != "" {
		disp = asm.Sym(asm.Label(m.Label)).Add(disp)
	}
	mem = mem.WithDisp(disp)
	if m.Seg != "" {
		op, ok := x86.LookupRegister(m.Seg)
		seg, isSeg := op.(x86.SegReg)
		if !ok || !isSeg {
			return mem, fmt.Errorf("unknown segment register %q", m.Seg)
		}
		mem = mem.WithSeg(seg)
	}
	if m.Size != 0 {
		mem = mem.WithSize(m.Size)
	}
	if m.AddrSize != 0 {
		mem = mem.WithAddrSize(m.AddrSize)
	}
	return mem, nil
}

// Instruction builds the encoder input for c.
func (c Case) Instruction() (x86.Instruction, error) {
	return instruction(c.Inst, c.Args, c.Prefixes)
}

func instruction(mnemonic string, args []Operand, prefixes []string) (x86.Instruction, error) {
	inst := x86.Inst(mnemonic)
	for i, a := range args {
		op, err := a.Operand()
		if err != nil {
			return x86.Instruction{}, fmt.Errorf("%s operand %d: %w", mnemonic, i+1, err)
		}
		inst.Args = append(inst.Args, op)
	}
	for _, p := range prefixes {
		pfx, err := x86.ParsePrefix(p)
		if err != nil {
			return x86.Instruction{}, fmt.Errorf("%s: %w", mnemonic, err)
		}
		inst = inst.WithPrefix(pfx)
	}
	return inst, nil
}

// Title is the case name, or the instruction when the case has none.
func (c Case) Title() string {
	if c.Name != "" {
		return c.Name
	}
	inst, err := c.Instruction()
	if err != nil {
		return c.Inst
	}
	return inst.String()
}

// Parse decodes a suite.
func Parse(data []byte) (*Suite, error) {
	var s Suite
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing suite: %w", err)
	}
	if len(s.Cases) == 0 {
		return nil, fmt.Errorf("suite %q has no cases", s.Name)
	}
	for i, c := range s.Cases {
		if c.Inst == "" {
			return nil, fmt.Errorf("suite %q: case %d has no instruction", s.Name, i+1)
		}
		if c.Expect.First == "" && len(c.Expect.All) == 0 && c.Expect.Error == "" {
			return nil, fmt.Errorf("suite %q: case %s expects nothing", s.Name, c.Title())
		}
		if c.Expect.Error != "" {
			if _, ok := errorClasses[c.Expect.Error]; !ok {
				return nil, fmt.Errorf("suite %q: case %s: unknown error class %q", s.Name, c.Title(), c.Expect.Error)
			}
		}
	}
	return &s, nil
}

// Load reads a suite from a YAML file.
func Load(path string) (*Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading suite file: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if s.Name == "" {
		s.Name = strings.TrimSuffix(path, ".yaml")
	}
	return s, nil
}
