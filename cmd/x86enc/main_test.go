package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/tinyrange/x86enc/internal/asm/x86"
)

const testdata = "../../internal/vectors/testdata/"

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestTableCommand(t *testing.T) {
	out, err := execute(t, "table", "--bits", "32", "push")
	if err != nil {
		t.Fatalf("table: %v", err)
	}
	for _, want := range []string{"68  i", "6a  i8"} {
		if !strings.Contains(out, want) {
			t.Errorf("output lacks %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Errorf("colour written to a non-terminal")
	}

	if _, err := execute(t, "table", "--bits", "64", "aaa"); err == nil {
		t.Errorf("aaa listed in the long mode table")
	}
	if _, err := execute(t, "table", "--features", "sse9"); !errors.Is(err, x86.ErrUnknownFeature) {
		t.Errorf("unknown feature error=%v", err)
	}
}

func TestCheckCommand(t *testing.T) {
	out, err := execute(t, "check", testdata+"i386.yaml", testdata+"real.yaml")
	if err != nil {
		t.Fatalf("check: %v\n%s", err, out)
	}
	if !strings.Contains(out, "cases passed") || strings.Contains(out, "FAIL") {
		t.Fatalf("unexpected output:\n%s", out)
	}

	out, err = execute(t, "check", testdata+"broken.yaml")
	if !errors.Is(err, errChecksFailed) {
		t.Fatalf("check broken.yaml error=%v", err)
	}
	if got := strings.Count(out, "FAIL"); got != 2 {
		t.Fatalf("%d failures reported, want 2:\n%s", got, out)
	}
	if !strings.Contains(out, "1/3 cases passed") {
		t.Fatalf("summary missing:\n%s", out)
	}
}

func TestHostCommand(t *testing.T) {
	out, err := execute(t, "host")
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	p, err := x86.ParseProfile([]byte(out))
	if err != nil {
		t.Fatalf("host output is not a profile: %v\n%s", err, out)
	}
	var raw map[string]any
	if err := yaml.Unmarshal([]byte(out), &raw); err != nil || raw["name"] != "host" {
		t.Fatalf("host profile %v (%v)", raw, err)
	}
	if p.Bits != 32 && p.Bits != 64 {
		t.Fatalf("host bits %d", p.Bits)
	}
}

func TestAsmCommand(t *testing.T) {
	out, err := execute(t, "asm", testdata+"add.yaml")
	if err != nil {
		t.Fatalf("asm: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 5 {
		t.Fatalf("got %d listing lines, want 5:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[0], "eb 01") || !strings.Contains(lines[4], "ret") {
		t.Fatalf("unexpected listing:\n%s", out)
	}
}
