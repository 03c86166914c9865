// Package main provides the HTTP entry point for the formula sheet service.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	listenAddr  string
	defaultRows int
	defaultCols int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "sheetd",
		Short: "In-memory spreadsheet evaluation service",
		Long: `sheetd serves named in-memory sheets over HTTP: set, edit, read and
delete cells, resize sheets, and subscribe webhooks to cell changes.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if env := os.Getenv("LISTEN_ADDR"); env != "" && !cmd.Flags().Changed("listen") {
				listenAddr = env
			}
			return RunApp(listenAddr, defaultRows, defaultCols)
		},
	}

	rootCmd.Flags().StringVar(&listenAddr, "listen", ":8080", "Listen address (env LISTEN_ADDR)")
	rootCmd.Flags().IntVar(&defaultRows, "rows", 100, "Initial row count for new sheets")
	rootCmd.Flags().IntVar(&defaultCols, "cols", 26, "Initial column count for new sheets")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(HandleExitError(os.Stderr, err))
	}
}
