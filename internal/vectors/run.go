package vectors

import (
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/tinyrange/x86enc/internal/asm"
	"github.com/tinyrange/x86enc/internal/asm/x86"
)

var errorClasses = map[string]error{
	"addressing":   x86.ErrAddressing,
	"width":        x86.ErrWidthConflict,
	"range":        x86.ErrRange,
	"mismatch":     x86.ErrMismatch,
	"no_candidate": x86.ErrNoCandidate,
}

// Result is the outcome of one case.
type Result struct {
	Case Case
	// Got holds every candidate encoding in hex, shortest first.
	Got []string
	Err error
	// Problem is empty when the case passed.
	Problem string
}

func (r Result) Passed() bool { return r.Problem == "" }

// Run checks every case of s against tbl, calling each (if non-nil) after
// every case. The table must have been built for the suite profile.
func (s *Suite) Run(tbl *x86.Table, each func(Result)) []Result {
	out := make([]Result, 0, len(s.Cases))
	for _, c := range s.Cases {
		r := check(tbl, c)
		if !r.Passed() {
			slog.Debug("vector failed", "suite", s.Name, "case", c.Title(), "problem", r.Problem)
		}
		if each != nil {
			each(r)
		}
		out = append(out, r)
	}
	return out
}

// Failures returns the results that did not pass.
func Failures(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.Passed() {
			out = append(out, r)
		}
	}
	return out
}

func check(tbl *x86.Table, c Case) Result {
	r := Result{Case: c}
	inst, err := c.Instruction()
	if err != nil {
		r.Err = err
		r.Problem = err.Error()
		return r
	}
	bufs, err := tbl.Assemble(inst)
	r.Err = err
	for _, b := range bufs {
		r.Got = append(r.Got, hex.EncodeToString(b.Bytes()))
	}

	if c.Expect.Error != "" {
		want := errorClasses[c.Expect.Error]
		switch {
		case err == nil:
			r.Problem = fmt.Sprintf("encoded as %s, want %s error", strings.Join(r.Got, ", "), c.Expect.Error)
		case !errors.Is(err, want):
			r.Problem = fmt.Sprintf("error %v, want %s", err, c.Expect.Error)
		}
		return r
	}
	if err != nil {
		r.Problem = err.Error()
		return r
	}
	if c.Expect.First != "" && normalizeHex(c.Expect.First) != r.Got[0] {
		r.Problem = fmt.Sprintf("first candidate %s, want %s", r.Got[0], normalizeHex(c.Expect.First))
		return r
	}
	if len(c.Expect.All) > 0 {
		want := make([]string, len(c.Expect.All))
		for i, h := range c.Expect.All {
			want[i] = normalizeHex(h)
		}
		if !slices.Equal(want, r.Got) {
			r.Problem = fmt.Sprintf("candidates [%s], want [%s]", strings.Join(r.Got, " "), strings.Join(want, " "))
		}
	}
	return r
}

func normalizeHex(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), ""))
}

// assembleFirst encodes inst and returns its shortest candidate.
func assembleFirst(tbl *x86.Table, inst x86.Instruction) (*asm.Buffer, error) {
	bufs, err := tbl.Assemble(inst)
	if err != nil {
		return nil, err
	}
	return bufs[0], nil
}
