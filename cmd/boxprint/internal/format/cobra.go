package format

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Output flags shared by every boxprint command.
const (
	FlagOutput  = "output"
	FlagQuiet   = "quiet"
	FlagNoColor = "no-color"
)

// BindFlags registers the output flags read by FromCommand.
func BindFlags(flags *pflag.FlagSet) {
	flags.StringP(FlagOutput, "o", string(ModeTable), "Output format: table | json")
	flags.BoolP(FlagQuiet, "q", false, "Suppress summaries and warnings")
	flags.Bool(FlagNoColor, false, "Disable colored output (also NO_COLOR)")
}

// ValidateCommand rejects an unknown --output value.
func ValidateCommand(cmd *cobra.Command) error {
	mode, err := cmd.Flags().GetString(FlagOutput)
	if err != nil {
		return nil
	}
	return ValidateMode(strings.ToLower(mode))
}

// FromCommand builds a Formatter from the command's writers and output flags.
// Commands without the flags get table output with color, unless NO_COLOR
// is set.
func FromCommand(cmd *cobra.Command) Formatter {
	flags := cmd.Flags()

	mode := ModeTable
	if v, err := flags.GetString(FlagOutput); err == nil {
		mode = ParseMode(v)
	}
	quiet, _ := flags.GetBool(FlagQuiet)
	noColor, _ := flags.GetBool(FlagNoColor)
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		noColor = true
	}

	stdout := cmd.OutOrStdout()
	if stdout == nil {
		stdout = os.Stdout
	}
	stderr := cmd.ErrOrStderr()
	if stderr == nil {
		stderr = os.Stderr
	}

	return New(stdout, stderr, mode, quiet, !noColor)
}
