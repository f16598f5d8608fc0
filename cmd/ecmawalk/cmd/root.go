package cmd

import (
	"github.com/spf13/cobra"
)

// Version/GitCommit/BuildDate are overridden at link time via
// `-ldflags "-X .../cmd.Version=..."`, matching cmd/dwscript/cmd's
// version-stamping convention.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:     "ecmawalk",
	Short:   "Run and inspect programs against the ecmawalk evaluator core",
	Long:    "ecmawalk is a command-line front end for the ecmawalk tree-walking ECMAScript evaluator: it reads a typed-AST-as-JSON document (produced by an external lexer/parser/AST-builder) and runs it, dumps it, or reports the evaluator's effective configuration.",
	Version: Version,
}

// Execute runs the root command, returning the first error any
// subcommand's RunE reports.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate("ecmawalk version {{.Version}}\n")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose diagnostic output")
}
