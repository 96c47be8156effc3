package vectors

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tinyrange/x86enc/internal/asm"
	"github.com/tinyrange/x86enc/internal/asm/x86"
)

// Program is a straight-line list of labels and instructions that can be
// assembled into one buffer and, on a matching host, executed.
//
//	profile: {bits: 64}
//	args: [2, 3]
//	want: 5
//	code:
//	  - {inst: mov, args: [rax, rdi]}
//	  - {inst: add, args: [rax, rsi]}
//	  - {inst: ret}
type Program struct {
	Name    string      `yaml:"name"`
	Profile x86.Profile `yaml:"profile"`
	Args    []uint64    `yaml:"args"`
	Want    *uint64     `yaml:"want"`
	Code    []Step      `yaml:"code"`
}

// Step is either a label definition or an instruction.
type Step struct {
	Label    string    `yaml:"label"`
	Inst     string    `yaml:"inst"`
	Args     []Operand `yaml:"args"`
	Prefixes []string  `yaml:"prefixes"`
}

// LoadProgram reads a program from a YAML file.
func LoadProgram(path string) (*Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading program file: %w", err)
	}
	var p Program
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%s: parsing program: %w", path, err)
	}
	if len(p.Code) == 0 {
		return nil, fmt.Errorf("%s: program has no code", path)
	}
	return &p, nil
}

// Assemble encodes every step with its shortest candidate. Labels are
// exported at the offset of the following instruction; references between
// steps are left as relocations for the loader.
func (p *Program) Assemble() (*asm.Buffer, error) {
	tbl, err := p.Profile.Table()
	if err != nil {
		return nil, err
	}
	return p.AssembleWith(tbl)
}

// AssembleWith is Assemble with a prebuilt table.
func (p *Program) AssembleWith(tbl *x86.Table) (*asm.Buffer, error) {
	out := asm.NewBuffer()
	for i, s := range p.Code {
		if s.Label != "" {
			if _, dup := out.ExportOffset(asm.Label(s.Label)); dup {
				return nil, fmt.Errorf("step %d: label %q defined twice", i+1, s.Label)
			}
			out.Export(asm.Label(s.Label), out.Len())
		}
		if s.Inst == "" {
			continue
		}
		inst, err := instruction(s.Inst, s.Args, s.Prefixes)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
		buf, err := assembleFirst(tbl, inst)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
		out.AppendBuffer(buf)
	}
	return out, nil
}
