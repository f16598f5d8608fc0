package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/solarframe/ecmawalk/internal/options"
)

var optionsConfigPath string

var optionsCmd = &cobra.Command{
	Use:   "options",
	Short: "Print the effective evaluator configuration as YAML",
	Long:  "options resolves internal/options.Default() merged with an optional --config file and prints the effective settings, so an embedder can confirm what a given config file actually changes.",
	RunE:  runOptions,
}

func init() {
	optionsCmd.Flags().StringVar(&optionsConfigPath, "config", "", "YAML evaluator-options file to merge over the defaults")
	rootCmd.AddCommand(optionsCmd)
}

func runOptions(cmd *cobra.Command, args []string) error {
	opts := options.Default()
	if optionsConfigPath != "" {
		data, err := os.ReadFile(optionsConfigPath)
		if err != nil {
			return fmt.Errorf("reading config %s: %w", optionsConfigPath, err)
		}
		opts, err = options.Load(data)
		if err != nil {
			return fmt.Errorf("parsing config %s: %w", optionsConfigPath, err)
		}
	}
	out, err := options.Marshal(opts)
	if err != nil {
		return err
	}
	fmt.Print(string(out))
	return nil
}
