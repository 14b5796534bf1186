package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"slate/internal/newfile"
	"slate/internal/observ"
	"slate/internal/scalapkg"
	"slate/internal/tui"
	"slate/internal/workspace"
)

var (
	newDir  string
	newKind string
	newName string
	newUI   string
)

func init() {
	newCmd.Flags().StringVar(&newDir, "dir", "", "target directory (defaults to the workspace root)")
	newCmd.Flags().StringVar(&newKind, "kind", "", "file kind: "+kindList())
	newCmd.Flags().StringVar(&newName, "name", "", "file/identifier name, may contain sub-path segments (sub/Foo)")
	newCmd.Flags().StringVar(&newUI, "ui", "auto", "interactive prompts (auto|on|off)")
}

var newCmd = &cobra.Command{
	Use:   "new",
	Short: "Create a new Scala source file from a template",
	Long: `Create a new Scala source file (class, case class, object, trait,
package object, worksheet, or script). Missing inputs are asked for
interactively; a package statement is inferred from the workspace's source
roots.`,
	SilenceUsage: true,
	RunE:         runNew,
}

func runNew(cmd *cobra.Command, _ []string) error {
	policy, err := parsePromptPolicy(newUI)
	if err != nil {
		return err
	}
	interactive := policy.allowsPrompts()
	if !interactive {
		if newKind == "" {
			return fmt.Errorf("--kind is required without an interactive terminal (one of %s)", kindList())
		}
		if kind, ok := newfile.ParseKind(newKind); ok && kind.NeedsName() && strings.TrimSpace(newName) == "" {
			return fmt.Errorf("--name is required without an interactive terminal")
		}
	}

	timer := observ.NewTimer()
	wsPhase := timer.Begin("workspace")
	dir := newDir
	if dir != "" {
		if dir, err = filepath.Abs(dir); err != nil {
			return err
		}
	}
	start := dir
	if start == "" {
		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		start = wd
	}
	cache, _ := workspace.OpenLayoutCache("slate")
	layout, ok := cache.Get(start)
	if !ok {
		layout, err = workspace.Resolve(cmd.Context(), start)
		if err != nil {
			return err
		}
		if err := cache.Put(layout, start); err != nil {
			fmt.Fprintf(os.Stderr, "layout cache write failed: %v\n", err)
		}
	}
	timer.End(wsPhase, layout.Root)

	out := cmd.OutOrStdout()
	if quiet, _ := cmd.Flags().GetBool("quiet"); quiet {
		out = io.Discard
	}

	provider := newfile.NewProvider(newfile.ProviderOptions{
		Client:  tui.NewClient(out),
		Headers: scalapkg.NewResolver(layout.SourceRoots),
		Root:    layout.Root,
	})

	createPhase := timer.Begin("create")
	created, err := provider.Create(cmd.Context(), newfile.Params{
		Path: dir,
		Kind: newKind,
		Name: newName,
	})
	note := "cancelled"
	switch {
	case err != nil:
		note = "failed"
	case created != nil:
		note = created.Path
	}
	timer.End(createPhase, note)

	if timings, _ := cmd.Flags().GetBool("timings"); timings {
		fmt.Fprint(os.Stderr, timer.Summary())
	}
	return err
}

func kindList() string {
	ids := make([]string, 0, len(newfile.Kinds()))
	for _, k := range newfile.Kinds() {
		ids = append(ids, k.ID())
	}
	return strings.Join(ids, "|")
}
