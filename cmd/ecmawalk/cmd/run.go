package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/solarframe/ecmawalk/internal/diagnostic"
	"github.com/solarframe/ecmawalk/pkg/ecmawalk"
)

var (
	runConfigPath string
	runTrace      bool
)

var runCmd = &cobra.Command{
	Use:   "run [ast.json]",
	Short: "Evaluate a typed-AST-as-JSON document",
	Long:  "run decodes a JSON document shaped like internal/jsast's wire format (see internal/astio) and evaluates it as a program, printing the value Run returns (always undefined on success; statement completion values are not tracked).",
	Args:  cobra.ExactArgs(1),
	RunE:  runRun,
}

func init() {
	runCmd.Flags().StringVar(&runConfigPath, "config", "", "YAML evaluator-options file")
	runCmd.Flags().BoolVar(&runTrace, "trace", false, "print the global frame after evaluation")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}

	engine, err := newEngine()
	if err != nil {
		return err
	}

	result, err := engine.RunJSON(context.Background(), data)
	if err != nil {
		return fmt.Errorf("evaluating %s: %w", args[0], err)
	}
	fmt.Println(result.String())

	if runTrace || verbose {
		fmt.Fprintln(os.Stderr, "--- global frame ---")
		fmt.Fprintln(os.Stderr, diagnostic.FormatFrame(engine.Names(), engine.GlobalFrame()))
	}
	return nil
}

func newEngine() (*ecmawalk.Engine, error) {
	if runConfigPath == "" {
		return ecmawalk.New(), nil
	}
	data, err := os.ReadFile(runConfigPath)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", runConfigPath, err)
	}
	return ecmawalk.NewFromConfig(data)
}
