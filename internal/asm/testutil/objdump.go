// Package testutil cross-checks encoded instructions against GNU objdump.
package testutil

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"testing"
)

// machineX86_64 is the ELF e_machine value for AMD64. objdump decodes the
// 16 and 32-bit modes from the same container when given -M i8086 or i386.
const machineX86_64 = 62

// DisasmLine represents a single instruction line emitted by objdump.
type DisasmLine struct {
	Offset     int
	Text       string
	Normalized string
	Mnemonic   string
}

// Contains reports whether the normalized instruction text contains the provided substring.
func (l DisasmLine) Contains(substr string) bool {
	return strings.Contains(l.Normalized, substr)
}

func modeOption(bits int) (string, error) {
	switch bits {
	case 16:
		return "i8086", nil
	case 32:
		return "i386", nil
	case 64:
		return "x86-64", nil
	}
	return "", fmt.Errorf("no objdump mode for %d-bit code", bits)
}

// Disassemble wraps code in a minimal ELF file and runs GNU objdump on it in
// Intel syntax, decoding for a mode of the given width. The test is skipped
// when objdump is not installed.
func Disassemble(t *testing.T, code []byte, bits int) []DisasmLine {
	t.Helper()
	mode, err := modeOption(bits)
	if err != nil {
		t.Fatal(err)
	}

	toolPath, err := exec.LookPath("objdump")
	if err != nil {
		t.Skipf("objdump not found: %v", err)
	}

	tmp, err := os.CreateTemp("", "x86enc-objdump-*.elf")
	if err != nil {
		t.Fatalf("create temp file: %v", err)
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()

	if _, err := tmp.Write(buildMinimalELF(code)); err != nil {
		t.Fatalf("write temp ELF: %v", err)
	}
	if err := tmp.Close(); err != nil {
		t.Fatalf("close temp ELF: %v", err)
	}

	cmd := exec.Command(toolPath, "-d", "--no-show-raw-insn", "-M", "intel,"+mode, tmp.Name())
	output, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("objdump failed: %v\n\n%s", err, output)
	}

	lines, err := parseObjdumpOutput(string(output))
	if err != nil {
		t.Fatalf("parse objdump output: %v", err)
	}
	if len(lines) == 0 {
		t.Fatalf("objdump produced no instructions:\n%s", output)
	}
	return lines
}

func buildMinimalELF(code []byte) []byte {
	const (
		elfHeaderSize = 64
		sectionCount  = 3 // null, .text, .shstrtab
		secHeaderSize = 64
		textAlign     = 16
	)

	textOffset := elfHeaderSize
	textPadded := align(textOffset+len(code), textAlign) - textOffset
	shstr := []byte("\x00.text\x00.shstrtab\x00")
	shstrOffset := textOffset + textPadded
	shstrPadded := align(len(shstr), 8)
	sectionOffset := shstrOffset + shstrPadded
	totalSize := sectionOffset + sectionCount*secHeaderSize

	buf := make([]byte, totalSize)
	copy(buf[textOffset:], code)
	copy(buf[shstrOffset:], shstr)

	copy(buf, []byte{0x7f, 'E', 'L', 'F', 2, 1, 1}) // 64-bit, little endian, version 1

	le := binary.LittleEndian
	le.PutUint16(buf[16:], 2) // ET_EXEC
	le.PutUint16(buf[18:], machineX86_64)
	le.PutUint32(buf[20:], 1)
	le.PutUint64(buf[40:], uint64(sectionOffset)) // e_shoff
	le.PutUint16(buf[52:], elfHeaderSize)
	le.PutUint16(buf[58:], secHeaderSize)
	le.PutUint16(buf[60:], sectionCount)
	le.PutUint16(buf[62:], 2) // e_shstrndx

	shdr := buf[sectionOffset:]

	text := shdr[secHeaderSize : 2*secHeaderSize]
	le.PutUint32(text[0:], 1)   // name: .text
	le.PutUint32(text[4:], 1)   // SHT_PROGBITS
	le.PutUint64(text[8:], 0x6) // SHF_ALLOC|SHF_EXECINSTR
	le.PutUint64(text[24:], uint64(textOffset))
	le.PutUint64(text[32:], uint64(len(code)))
	le.PutUint64(text[48:], textAlign)

	strtab := shdr[2*secHeaderSize : 3*secHeaderSize]
	le.PutUint32(strtab[0:], uint32(len("\x00.text\x00")))
	le.PutUint32(strtab[4:], 3) // SHT_STRTAB
	le.PutUint64(strtab[24:], uint64(shstrOffset))
	le.PutUint64(strtab[32:], uint64(len(shstr)))
	le.PutUint64(strtab[48:], 1)

	return buf
}

func parseObjdumpOutput(out string) ([]DisasmLine, error) {
	scanner := bufio.NewScanner(strings.NewReader(out))
	var lines []DisasmLine
	for scanner.Scan() {
		line := scanner.Text()
		colon := strings.IndexRune(line, ':')
		if colon == -1 {
			continue
		}
		var offset int
		if _, err := fmt.Sscanf(strings.TrimSpace(line[:colon]), "%x", &offset); err != nil {
			continue
		}
		text := strings.TrimSpace(line[colon+1:])
		if text == "" || strings.HasPrefix(text, "<") || strings.HasPrefix(text, ".") {
			continue
		}
		fields := strings.Fields(text)
		lines = append(lines, DisasmLine{
			Offset:     offset,
			Text:       text,
			Normalized: strings.Join(fields, " "),
			Mnemonic:   strings.ToLower(fields[0]),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanner error: %w", err)
	}
	return lines, nil
}

func align(value int, boundary int) int {
	if boundary <= 0 {
		return value
	}
	rem := value % boundary
	if rem == 0 {
		return value
	}
	return value + boundary - rem
}
