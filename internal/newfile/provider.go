// Package newfile implements the interactive "create new Scala file"
// workflow: resolve the target directory, kind and name (from arguments,
// the focused document, or editor prompts), render the file content from a
// fixed template set, write the file once, and ask the editor to open it
// with the cursor at the template's insertion point.
package newfile

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"
)

const (
	sourceExt         = ".scala"
	worksheetExt      = ".worksheet.sc"
	scriptExt         = ".sc"
	packageObjectFile = "package.scala"
)

var (
	// ErrAlreadyExists means the target path was present at check time.
	ErrAlreadyExists = errors.New("file already exists")
	// ErrMissingDirectory means a package object was requested without a
	// resolvable target directory.
	ErrMissingDirectory = errors.New("no target directory for package object")
)

// UnsupportedKindError reports an explicitly supplied kind identifier that
// matches none of the supported kinds. It signals a caller bug, so it is
// never surfaced as an editor notification.
type UnsupportedKindError struct {
	ID string
}

func (e *UnsupportedKindError) Error() string {
	return fmt.Sprintf("unsupported file kind %q", e.ID)
}

// PickItem is one entry of a single-selection prompt.
type PickItem struct {
	ID    string
	Label string
}

// Client is the editor-facing capability surface the workflow consumes.
// Prompt methods block until the user responds; ok=false means the user
// dismissed the prompt. At most one prompt is in flight at a time.
type Client interface {
	PickOne(ctx context.Context, items []PickItem, placeHolder string) (id string, ok bool, err error)
	Input(ctx context.Context, prompt string) (value string, ok bool, err error)
	ShowErrorMessage(ctx context.Context, message string)
	// OpenFile asks the editor to navigate to path with the cursor at pos.
	// Fire-and-forget: failures are the client's problem.
	OpenFile(ctx context.Context, path string, pos Position)
}

// HeaderResolver produces an optional package statement for a target path.
// An empty result means no header applies.
type HeaderResolver interface {
	HeaderFor(path string) string
}

// Params are the raw, all-optional inputs of one invocation.
type Params struct {
	// Path identifies the target directory: a directory is used directly,
	// a file stands for its parent. Empty falls back to the focused
	// document, then to the workspace root.
	Path string
	// Kind is a kind identifier (see Kind.ID). Empty triggers the
	// selection prompt.
	Kind string
	// Name is the file/identifier name, possibly with sub-path segments.
	// Blank triggers the input prompt for kinds that need a name.
	Name string
}

// Created describes a successfully written file.
type Created struct {
	Path   string
	Cursor Position
}

// Provider runs the create-new-file workflow. All collaborators are
// injected; a zero Provider is not usable.
type Provider struct {
	client  Client
	headers HeaderResolver
	fs      FS
	root    string
	focused func() string
	logf    func(format string, args ...any)
}

// ProviderOptions configures a Provider.
type ProviderOptions struct {
	Client  Client
	Headers HeaderResolver
	FS      FS
	// Root is the workspace root, used when no directory resolves.
	Root string
	// Focused returns the path of the currently focused document, or "".
	// Nil means no focus tracking (CLI mode).
	Focused func() string
	// Logf receives diagnostic log lines. Nil discards them.
	Logf func(format string, args ...any)
}

// NewProvider constructs a Provider.
func NewProvider(opts ProviderOptions) *Provider {
	fs := opts.FS
	if fs == nil {
		fs = OSFS()
	}
	focused := opts.Focused
	if focused == nil {
		focused = func() string { return "" }
	}
	logf := opts.Logf
	if logf == nil {
		logf = func(string, ...any) {}
	}
	return &Provider{
		client:  opts.Client,
		headers: opts.Headers,
		fs:      fs,
		root:    opts.Root,
		focused: focused,
		logf:    logf,
	}
}

// Create runs the full flow: resolve inputs, render content, write once,
// open the result. A nil Created with a nil error means the user cancelled
// a prompt; nothing was written and nothing was shown.
func (p *Provider) Create(ctx context.Context, params Params) (*Created, error) {
	dir := p.resolveDirectory(params.Path)

	kind, ok, err := p.resolveKind(ctx, params.Kind)
	if err != nil || !ok {
		return nil, err
	}

	// A package object has no meaningful default location, so bail out
	// before any name prompt could fire.
	if kind == KindPackageObject && dir == "" {
		return nil, ErrMissingDirectory
	}

	name, ok, err := p.resolveName(ctx, kind, params.Name)
	if err != nil || !ok {
		return nil, err
	}

	target := p.targetPath(dir, kind, name)
	header := ""
	if kind.hasPackageHeader() && p.headers != nil {
		header = p.headers.HeaderFor(target)
	}
	tmpl, err := renderTemplate(kind, lastSegment(name), header)
	if err != nil {
		return nil, err
	}

	if err := p.write(ctx, target, tmpl.Content); err != nil {
		return nil, err
	}
	p.logf("created %s (%s)", target, kind.ID())
	p.client.OpenFile(ctx, target, tmpl.Cursor)
	return &Created{Path: target, Cursor: tmpl.Cursor}, nil
}

// resolveDirectory maps the optional path argument to a target directory,
// falling back to the focused document's directory. Empty means unresolved;
// downstream steps substitute the workspace root.
func (p *Provider) resolveDirectory(arg string) string {
	if arg != "" {
		if p.fs.IsDir(arg) {
			return arg
		}
		if p.fs.Exists(arg) {
			return filepath.Dir(arg)
		}
		// Nonexistent explicit paths are taken as intended directories.
		return arg
	}
	if doc := p.focused(); doc != "" {
		return filepath.Dir(doc)
	}
	return ""
}

func (p *Provider) resolveKind(ctx context.Context, arg string) (Kind, bool, error) {
	if arg != "" {
		kind, ok := ParseKind(arg)
		if !ok {
			return 0, false, &UnsupportedKindError{ID: arg}
		}
		return kind, true, nil
	}
	items := make([]PickItem, 0, len(Kinds()))
	for _, k := range Kinds() {
		items = append(items, PickItem{ID: k.ID(), Label: k.Label()})
	}
	id, ok, err := p.client.PickOne(ctx, items, "Select the kind of file to create")
	if err != nil {
		return 0, false, err
	}
	if !ok {
		return 0, false, nil
	}
	kind, known := ParseKind(id)
	if !known {
		return 0, false, &UnsupportedKindError{ID: id}
	}
	return kind, true, nil
}

func (p *Provider) resolveName(ctx context.Context, kind Kind, arg string) (string, bool, error) {
	if !kind.NeedsName() {
		return "", true, nil
	}
	if trimmed := strings.TrimSpace(arg); trimmed != "" {
		return norm.NFC.String(trimmed), true, nil
	}
	value, ok, err := p.client.Input(ctx, fmt.Sprintf("Enter the name for the new %s", strings.ToLower(kind.Label())))
	if err != nil {
		return "", false, err
	}
	value = strings.TrimSpace(value)
	// A blank answer is indistinguishable from dismissing the prompt.
	if !ok || value == "" {
		return "", false, nil
	}
	return norm.NFC.String(value), true, nil
}

// targetPath composes the write target. Names may carry sub-path segments;
// they become nested directories under the base.
func (p *Provider) targetPath(dir string, kind Kind, name string) string {
	base := dir
	if base == "" {
		base = p.root
	}
	switch kind {
	case KindPackageObject:
		return filepath.Join(base, packageObjectFile)
	case KindWorksheet:
		return filepath.Join(base, filepath.FromSlash(name)+worksheetExt)
	case KindScript:
		return filepath.Join(base, filepath.FromSlash(name)+scriptExt)
	default:
		return filepath.Join(base, filepath.FromSlash(name)+sourceExt)
	}
}

// write performs the stat-then-write sequence. The check and the write are
// deliberately not one atomic operation; a concurrent external creation
// between them is an accepted race. The write itself runs off the calling
// goroutine so a protocol read loop is never blocked on disk.
func (p *Provider) write(ctx context.Context, target, content string) error {
	if p.fs.Exists(target) {
		err := fmt.Errorf("%w: %s", ErrAlreadyExists, target)
		p.logf("create aborted: %v", err)
		p.client.ShowErrorMessage(ctx, fmt.Sprintf("Cannot create file, %s already exists", target))
		return err
	}
	done := make(chan error, 1)
	go func() {
		done <- p.fs.WriteFile(target, []byte(content))
	}()
	var err error
	select {
	case err = <-done:
	case <-ctx.Done():
		err = ctx.Err()
	}
	if err != nil {
		p.logf("write failed: %v", err)
		p.client.ShowErrorMessage(ctx, fmt.Sprintf("Cannot create file %s: %v", target, err))
		return fmt.Errorf("write %s: %w", target, err)
	}
	return nil
}

// lastSegment reduces a possibly composite name to its final path segment,
// the declared identifier.
func lastSegment(name string) string {
	name = strings.TrimRight(name, "/"+string(os.PathSeparator))
	return path.Base(filepath.ToSlash(name))
}
