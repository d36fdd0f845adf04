package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/teranos/docgraph/cmd/docgraph/commands"
	"github.com/teranos/docgraph/config"
	"github.com/teranos/docgraph/logger"
)

var rootCmd = &cobra.Command{
	Use:   "docgraph",
	Short: "docgraph - Documentation graph build pipeline",
	Long: `docgraph - Merge, canonicalize and resolve documentation graphs.

docgraph combines documentation records gathered by live inspection and
static parsing into one consistent graph: records describing the same
entity are merged, every value gets a canonical name, and class
variables are resolved along the inheritance hierarchy.

Available commands:
  build   - Run the full pipeline over one or two graph files
  lookup  - Look up a dotted name in a graph file
  version - Show version information

Examples:
  docgraph build --live inspected.json --static parsed.json --out merged.json
  docgraph lookup --graph merged.json epydoc.apidoc.APIDoc
  docgraph version --json`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbosity, _ := cmd.Flags().GetCount("verbose")
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if verbosity == 0 {
			verbosity = cfg.Verbosity
		}
		if err := logger.Initialize(cfg.JSONLogs, verbosity); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv, -vvv)")

	rootCmd.AddCommand(commands.BuildCmd)
	rootCmd.AddCommand(commands.LookupCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
