package tui

import (
	"context"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"

	"slate/internal/newfile"
)

var (
	errColor  = color.New(color.FgRed, color.Bold)
	pathColor = color.New(color.FgGreen)
)

// Client satisfies newfile.Client with terminal prompts. A terminal cannot
// drive an editor, so OpenFile degrades to printing the created location.
type Client struct {
	out io.Writer
}

// NewClient builds a terminal client writing human output to out.
func NewClient(out io.Writer) *Client {
	return &Client{out: out}
}

func (c *Client) PickOne(ctx context.Context, items []newfile.PickItem, placeHolder string) (string, bool, error) {
	model, err := runModel(ctx, newPickModel(placeHolder, items))
	if err != nil {
		return "", false, err
	}
	picked, ok := model.(pickModel)
	if !ok || picked.cancelled || picked.choice == "" {
		return "", false, nil
	}
	return picked.choice, true, nil
}

func (c *Client) Input(ctx context.Context, prompt string) (string, bool, error) {
	model, err := runModel(ctx, newInputModel(prompt))
	if err != nil {
		return "", false, err
	}
	entered, ok := model.(inputModel)
	if !ok || entered.cancelled || !entered.done {
		return "", false, nil
	}
	return entered.value, true, nil
}

func (c *Client) ShowErrorMessage(_ context.Context, message string) {
	errColor.Fprintln(c.out, message)
}

func (c *Client) OpenFile(_ context.Context, path string, pos newfile.Position) {
	fmt.Fprintf(c.out, "Created %s (cursor at %d:%d)\n",
		pathColor.Sprint(path), pos.Line+1, pos.Character+1)
}

func runModel(ctx context.Context, model tea.Model) (tea.Model, error) {
	p := tea.NewProgram(model, tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("prompt failed: %w", err)
	}
	return final, nil
}
