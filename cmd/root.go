// Package cmd defines the CLI commands for the frontier-crawler executable.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "frontier-crawler",
		Short: "A polite, stateful web crawler with a REST control plane",
		Long: `frontier-crawler runs crawl tasks against a configurable URL frontier:
breadth-first, depth-first, priority, or big-site-first traversal with
robots.txt politeness, pause/resume control, and metadata extraction.`,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is built-in defaults + CRAWLER_* env)")
	cmd.AddCommand(newServeCmd())

	return cmd
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
