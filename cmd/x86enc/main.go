package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/x/ansi"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/tinyrange/x86enc/internal/asm/x86"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "x86enc: %v\n", err)
		os.Exit(1)
	}
}

// targetFlags selects the opcode table a command works on.
type targetFlags struct {
	bits     int
	features []string
	profile  string
}

func (f *targetFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.bits, "bits", 32, "Target mode (16, 32 or 64)")
	cmd.Flags().StringSliceVar(&f.features, "features", nil, "Feature families to include (default: all)")
	cmd.Flags().StringVar(&f.profile, "profile", "", "Profile YAML file; overrides --bits and --features")
}

func (f *targetFlags) table() (*x86.Table, error) {
	p := &x86.Profile{Bits: f.bits, Features: f.features}
	if f.profile != "" {
		var err error
		if p, err = x86.LoadProfile(f.profile); err != nil {
			return nil, err
		}
	}
	return p.Table()
}

func newRootCommand() *cobra.Command {
	var debug bool
	root := &cobra.Command{
		Use:           "x86enc",
		Short:         "Inspect and check the x86 opcode tables",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if debug {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	root.AddCommand(
		newTableCommand(),
		newCheckCommand(),
		newHostCommand(),
		newAsmCommand(),
		newRunCommand(),
	)
	return root
}

// styler colours output only when it goes to a terminal.
type styler struct {
	color bool
}

func newStyler(w io.Writer) styler {
	f, ok := w.(*os.File)
	return styler{color: ok && term.IsTerminal(int(f.Fd()))}
}

func (s styler) paint(style ansi.Style, text string) string {
	if !s.color {
		return text
	}
	return style.Styled(text)
}

func (s styler) pass(text string) string {
	return s.paint(ansi.Style{}.Bold().ForegroundColor(ansi.Green), text)
}

func (s styler) fail(text string) string {
	return s.paint(ansi.Style{}.Bold().ForegroundColor(ansi.Red), text)
}

func (s styler) dim(text string) string {
	return s.paint(ansi.Style{}.Faint(), text)
}

// pad right-pads text to width terminal cells, ignoring escape sequences.
func pad(text string, width int) string {
	if n := ansi.StringWidth(text); n < width {
		return text + fmt.Sprintf("%*s", width-n, "")
	}
	return text
}
