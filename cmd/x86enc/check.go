package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/tinyrange/x86enc/internal/vectors"
)

var errChecksFailed = errors.New("vector checks failed")

func newCheckCommand() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "check suite.yaml...",
		Short: "Run YAML encoding suites",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var suites []*vectors.Suite
			total := 0
			for _, path := range args {
				s, err := vectors.Load(path)
				if err != nil {
					return err
				}
				suites = append(suites, s)
				total += len(s.Cases)
			}

			bar := newBar(cmd.ErrOrStderr(), total)
			w := cmd.OutOrStdout()
			st := newStyler(w)
			failed := 0
			var reports []string
			for _, s := range suites {
				tbl, err := s.Profile.Table()
				if err != nil {
					return fmt.Errorf("suite %s: %w", s.Name, err)
				}
				bar.Describe(s.Name)
				results := s.Run(tbl, func(vectors.Result) { _ = bar.Add(1) })
				for _, r := range results {
					switch {
					case !r.Passed():
						failed++
						reports = append(reports, fmt.Sprintf("%s %s: %s: %s", st.fail("FAIL"), s.Name, r.Case.Title(), r.Problem))
					case verbose:
						reports = append(reports, fmt.Sprintf("%s %s: %s", st.pass("PASS"), s.Name, r.Case.Title()))
					}
				}
			}
			_ = bar.Finish()

			for _, line := range reports {
				fmt.Fprintln(w, line)
			}
			summary := fmt.Sprintf("%d/%d cases passed", total-failed, total)
			if failed > 0 {
				fmt.Fprintln(w, st.fail(summary))
				return errChecksFailed
			}
			fmt.Fprintln(w, st.pass(summary))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Also report passing cases")
	return cmd
}

func newBar(w io.Writer, total int) *progressbar.ProgressBar {
	visible := false
	if f, ok := w.(*os.File); ok {
		visible = term.IsTerminal(int(f.Fd()))
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetVisibility(visible),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}
