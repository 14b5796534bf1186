package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"slate/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "slate",
	Short: "Scala editor backend and new-file tooling",
	Long:  `Slate is a lightweight Scala editor backend: an LSP-style stdio server plus a terminal front end for creating Scala sources from templates.`,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		mode, _ := cmd.Flags().GetString("color")
		return applyColorMode(mode)
	},
}

func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(lspCmd)
	rootCmd.AddCommand(newCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().Bool("timings", false, "show timing information")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
