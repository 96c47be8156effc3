package x86

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tinyrange/x86enc/internal/asm"
)

// Profile describes an encoding target in YAML:
//
//	bits: 64
//	endian: little
//	features: [sse2, avx]
type Profile struct {
	Name     string   `yaml:"name,omitempty"`
	Bits     int      `yaml:"bits"`
	Endian   string   `yaml:"endian,omitempty"`
	Features []string `yaml:"features,omitempty"`
}

// ParseProfile decodes and validates a profile.
func ParseProfile(data []byte) (*Profile, error) {
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing profile: %w", err)
	}
	if _, err := p.Mode(); err != nil {
		return nil, err
	}
	for _, f := range p.Features {
		if _, ok := features[f]; !ok {
			return nil, fmt.Errorf("profile %q: %w %q", p.Name, ErrUnknownFeature, f)
		}
	}
	return &p, nil
}

// LoadProfile reads a profile from a YAML file.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading profile: %w", err)
	}
	p, err := ParseProfile(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Mode returns the target context of the profile. An empty endian field
// means little endian.
func (p *Profile) Mode() (Mode, error) {
	m, err := ModeFor(p.Bits)
	if err != nil {
		return Mode{}, err
	}
	if p.Endian != "" {
		order, err := asm.ParseEndianness(p.Endian)
		if err != nil {
			return Mode{}, err
		}
		m.Order = order
	}
	return m, nil
}

// Table builds the opcode table the profile describes.
func (p *Profile) Table() (*Table, error) {
	m, err := p.Mode()
	if err != nil {
		return nil, err
	}
	return BuildTable(m, p.Features...)
}

// Marshal encodes the profile as YAML.
func (p *Profile) Marshal() ([]byte, error) {
	return yaml.Marshal(p)
}
