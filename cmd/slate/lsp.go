package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"slate/internal/lsp"
	"slate/internal/workspace"
)

var lspCmd = &cobra.Command{
	Use:          "lsp",
	Short:        "Run the slate editor backend over stdio",
	SilenceUsage: true,
	RunE:         runLSP,
}

func runLSP(cmd *cobra.Command, _ []string) error {
	cache, err := workspace.OpenLayoutCache("slate")
	if err != nil {
		// The cache is an optimization; run without it.
		fmt.Fprintf(os.Stderr, "lsp: layout cache unavailable: %v\n", err)
		cache = nil
	}
	server := lsp.NewServer(os.Stdin, os.Stdout, lsp.ServerOptions{Cache: cache})
	if err := server.Run(cmd.Context()); err != nil {
		if errors.Is(err, lsp.ErrExit) {
			return nil
		}
		if errors.Is(err, lsp.ErrExitWithoutShutdown) {
			return fmt.Errorf("lsp exit without shutdown")
		}
		return err
	}
	return nil
}
