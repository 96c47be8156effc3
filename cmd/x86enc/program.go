package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/tinyrange/x86enc/internal/asm"
	"github.com/tinyrange/x86enc/internal/asm/native"
	"github.com/tinyrange/x86enc/internal/asm/x86"
	"github.com/tinyrange/x86enc/internal/vectors"
)

// bindAtZero resolves a program's labels as if it were loaded at address 0.
func bindAtZero(code *asm.Buffer) (*asm.Buffer, error) {
	out := code.Clone()
	values := map[asm.Label]int64{}
	for l, off := range out.Exports() {
		values[l] = int64(off)
	}
	if _, err := out.Fixup(values); err != nil {
		return nil, err
	}
	if rest := out.Relocations(); len(rest) > 0 {
		return nil, fmt.Errorf("unresolved reference to %s", rest[0].Target)
	}
	return out, nil
}

func newAsmCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "asm program.yaml",
		Short: "Assemble a program and print its listing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := vectors.LoadProgram(args[0])
			if err != nil {
				return err
			}
			code, err := p.Assemble()
			if err != nil {
				return err
			}
			bound, err := bindAtZero(code)
			if err != nil {
				return err
			}
			lines, err := x86.Disassemble(bound.Bytes(), p.Profile.Bits)
			w := cmd.OutOrStdout()
			for _, l := range lines {
				fmt.Fprintln(w, l)
			}
			return err
		},
	}
}

func newRunCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run program.yaml",
		Short: "Assemble a 64-bit program and call it in this process",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := vectors.LoadProgram(args[0])
			if err != nil {
				return err
			}
			if p.Profile.Bits != 64 {
				return fmt.Errorf("%s: only 64-bit programs can run natively", args[0])
			}
			code, err := p.Assemble()
			if err != nil {
				return err
			}
			fn, err := native.Load(code)
			if err != nil {
				return err
			}
			defer fn.Release()

			got := invoke(fn, p.Args)

			w := cmd.OutOrStdout()
			st := newStyler(w)
			fmt.Fprintf(w, "rax = %#x (%d)\n", got, got)
			if p.Want != nil && *p.Want != got {
				fmt.Fprintln(w, st.fail(fmt.Sprintf("want %#x", *p.Want)))
				return errChecksFailed
			}
			return nil
		},
	}
}

func invoke(fn asm.NativeFunc, args []uint64) uint64 {
	callArgs := make([]any, len(args))
	for i, a := range args {
		callArgs[i] = a
	}
	slog.Debug("calling program", "entry", fmt.Sprintf("%#x", fn.Entry()), "args", args)
	return uint64(fn.Call(callArgs...))
}
