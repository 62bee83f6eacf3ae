// Command sourcemap-tool inspects, queries, composes, and serves
// Source Map v3 documents from the command line and over an LSP-style
// JSON-RPC stream.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MadAppGang/sourcemap/pkg/lsp"
)

var (
	cfg    config
	logger lsp.Logger
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(err.Error()))
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "sourcemap-tool",
		Short: "Inspect, query, and compose Source Map v3 documents",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := loadConfig()
			if err != nil {
				return fmt.Errorf("loading .sourcemaprc.toml: %w", err)
			}
			cfg = loaded

			if override, _ := cmd.Flags().GetString("log-level"); override != "" {
				cfg.LogLevel = override
			}
			logger = lsp.NewLogger(cfg.LogLevel, os.Stderr)
			return nil
		},
	}

	root.PersistentFlags().String("log-level", "", "override the configured log level (debug, info, warn, error)")

	root.AddCommand(
		newDecodeCmd(),
		newLookupCmd(),
		newReverseCmd(),
		newConcatCmd(),
		newServeCmd(),
	)
	return root
}
