package x86

import (
	"runtime"

	"golang.org/x/sys/cpu"

	"github.com/tinyrange/x86enc/internal/asm"
)

// HostFeatures returns the features the running processor supports, most
// capable last. It is nil on non-x86 hosts.
func HostFeatures() []string {
	if runtime.GOARCH != "amd64" && runtime.GOARCH != "386" {
		return nil
	}
	x := cpu.X86
	out := []string{"386", "387", "486", "pentium", "p6"}
	for _, f := range []struct {
		name string
		ok   bool
	}{
		{"sse", true}, // implied by sse2 on every host Go runs on
		{"sse2", x.HasSSE2},
		{"sse3", x.HasSSE3},
		{"ssse3", x.HasSSSE3},
		{"sse41", x.HasSSE41},
		{"sse42", x.HasSSE42},
		{"aesni", x.HasAES && x.HasPCLMULQDQ},
		{"avx", x.HasAVX && x.HasOSXSAVE},
		{"avx2", x.HasAVX2},
		{"bmi1", x.HasBMI1},
	} {
		if !f.ok {
			continue
		}
		// avx also needs aesni in the feature graph.
		if f.name == "avx" && !(x.HasAES && x.HasPCLMULQDQ) {
			continue
		}
		if f.name == "avx2" && !(x.HasAVX && x.HasOSXSAVE) {
			continue
		}
		out = append(out, f.name)
	}
	return out
}

// HostProfile describes the running process as a profile.
func HostProfile() *Profile {
	bits := 64
	if runtime.GOARCH == "386" {
		bits = 32
	}
	return &Profile{
		Name:     "host",
		Bits:     bits,
		Endian:   asm.LittleEndian.String(),
		Features: HostFeatures(),
	}
}
