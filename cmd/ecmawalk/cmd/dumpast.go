package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/solarframe/ecmawalk/internal/astio"
)

var dumpPath string

var dumpASTCmd = &cobra.Command{
	Use:   "dump-ast [ast.json]",
	Short: "Re-emit a sub-path of an AST-as-JSON document",
	Long:  "dump-ast extracts one path of a JSON AST document (e.g. \"body.0.kind\") without unmarshaling the rest of the file, via internal/astio's gjson-backed path reader. With no --path, the whole document is echoed.",
	Args:  cobra.ExactArgs(1),
	RunE:  runDumpAST,
}

func init() {
	dumpASTCmd.Flags().StringVar(&dumpPath, "path", "", `gjson path to extract, e.g. "body.0.kind"`)
	rootCmd.AddCommand(dumpASTCmd)
}

func runDumpAST(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}
	if dumpPath == "" {
		fmt.Println(string(data))
		return nil
	}
	out, err := astio.ExtractPath(data, dumpPath)
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}
