package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tinyrange/x86enc/internal/asm/x86"
)

func newTableCommand() *cobra.Command {
	var target targetFlags
	cmd := &cobra.Command{
		Use:   "table [mnemonic...]",
		Short: "List the opcodes of a table",
		RunE: func(cmd *cobra.Command, args []string) error {
			tbl, err := target.table()
			if err != nil {
				return err
			}
			ops := tbl.Opcodes()
			if len(args) > 0 {
				ops = nil
				for _, name := range args {
					found := tbl.Lookup(name)
					if len(found) == 0 {
						return fmt.Errorf("no opcode named %q in %s table", name, tbl.Mode())
					}
					ops = append(ops, found...)
				}
			}
			return writeOpcodes(cmd, ops)
		},
	}
	target.register(cmd)
	return cmd
}

func writeOpcodes(cmd *cobra.Command, ops []*x86.Opcode) error {
	w := cmd.OutOrStdout()
	st := newStyler(w)
	width := 0
	for _, op := range ops {
		width = max(width, len(op.Name()))
	}
	for _, op := range ops {
		var args []string
		for _, a := range op.Args() {
			args = append(args, string(a))
		}
		var fields []string
		for _, f := range op.Fields() {
			loc, _ := op.Field(f)
			fields = append(fields, fmt.Sprintf("%s@%d.%d", f, loc.Byte, loc.Bit))
		}
		line := fmt.Sprintf("%s % x  %s", pad(op.Name(), width), op.Bytes(), strings.Join(args, ","))
		if len(fields) > 0 {
			line += "  " + st.dim(strings.Join(fields, " "))
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
