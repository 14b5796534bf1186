// Package lsp implements the slate editor backend: a JSON-RPC 2.0 server
// over stdio in the LSP style. Its one command surface is
// workspace/executeCommand with slate.newScalaFile, which drives the
// interactive new-file workflow against the connected editor.
package lsp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"fortio.org/safecast"

	"slate/internal/newfile"
	"slate/internal/scalapkg"
	"slate/internal/workspace"
)

// CommandNewScalaFile is the executeCommand identifier of the new-file flow.
const CommandNewScalaFile = "slate.newScalaFile"

var (
	// ErrExit signals a graceful shutdown after receiving "exit".
	ErrExit = errors.New("lsp exit")
	// ErrExitWithoutShutdown signals an "exit" without a preceding "shutdown".
	ErrExitWithoutShutdown = errors.New("lsp exit without shutdown")
)

// ServerOptions configures server behavior.
type ServerOptions struct {
	// Cache memoizes workspace layouts between runs. Nil disables caching.
	Cache *workspace.LayoutCache
	// Logf receives diagnostic log lines. Nil logs to stderr.
	Logf func(format string, args ...any)
}

// Server handles stdio JSON-RPC for the slate backend.
type Server struct {
	conn *conn

	mu                sync.Mutex
	provider          *newfile.Provider
	lastTouched       string
	shutdownRequested bool

	pendingMu sync.Mutex
	pending   map[string]chan *rpcMessage
	nextID    atomic.Int64

	cache    *workspace.LayoutCache
	logFn    func(format string, args ...any)
	runCtx   context.Context
	commands sync.WaitGroup
}

// NewServer constructs a server over the given transport.
func NewServer(in io.Reader, out io.Writer, opts ServerOptions) *Server {
	logFn := opts.Logf
	if logFn == nil {
		logFn = func(format string, args ...any) {
			fmt.Fprintf(os.Stderr, "lsp: "+format+"\n", args...)
		}
	}
	return &Server{
		conn:    newConn(in, out),
		pending: make(map[string]chan *rpcMessage),
		cache:   opts.Cache,
		logFn:   logFn,
	}
}

// Run serves requests until shutdown or EOF. Responses from the client are
// routed to in-flight server-side requests; everything else dispatches to a
// handler. Command executions run on their own goroutines so the loop stays
// free to deliver prompt answers.
func (s *Server) Run(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer func() {
		// Unblock prompt waits, then let in-flight commands wind down.
		cancel()
		s.commands.Wait()
	}()
	s.runCtx = runCtx
	for {
		payload, err := s.conn.read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		var msg rpcMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			s.logf("failed to parse message: %v", err)
			continue
		}
		if msg.isResponse() {
			s.routeResponse(&msg)
			continue
		}
		if msg.Method == "" {
			continue
		}
		if err := s.handleMessage(&msg); err != nil {
			return err
		}
	}
}

func (s *Server) handleMessage(msg *rpcMessage) error {
	switch msg.Method {
	case "initialize":
		return s.handleInitialize(msg)
	case "initialized":
		return nil
	case "shutdown":
		s.mu.Lock()
		s.shutdownRequested = true
		s.mu.Unlock()
		return s.sendResponse(msg.ID, nil)
	case "exit":
		s.mu.Lock()
		requested := s.shutdownRequested
		s.mu.Unlock()
		if requested {
			return ErrExit
		}
		return ErrExitWithoutShutdown
	case "textDocument/didOpen":
		return s.handleDidOpen(msg)
	case "textDocument/didChange":
		return s.handleDidChange(msg)
	case "textDocument/didClose":
		return s.handleDidClose(msg)
	case "workspace/executeCommand":
		return s.handleExecuteCommand(msg)
	default:
		if len(msg.ID) > 0 {
			return s.sendError(msg.ID, -32601, "method not found")
		}
		return nil
	}
}

func (s *Server) handleInitialize(msg *rpcMessage) error {
	var params initializeParams
	if len(msg.Params) > 0 {
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return s.sendError(msg.ID, -32602, "invalid params")
		}
	}
	root := ""
	if params.RootURI != "" {
		root = uriToPath(params.RootURI)
	}
	if root == "" && params.RootPath != "" {
		root = params.RootPath
	}
	if root == "" && len(params.WorkspaceFolders) > 0 {
		root = uriToPath(params.WorkspaceFolders[0].URI)
	}
	if root != "" {
		if abs, err := filepath.Abs(root); err == nil {
			root = abs
		}
	}

	layout := workspace.Layout{Root: root}
	if root != "" {
		if cached, ok := s.cache.Get(root); ok {
			layout = cached
		} else if resolved, err := workspace.Resolve(s.runCtx, root); err == nil {
			layout = resolved
			if err := s.cache.Put(layout, root); err != nil {
				s.logf("layout cache write failed: %v", err)
			}
		} else {
			s.logf("workspace resolve failed: %v", err)
		}
	}

	provider := newfile.NewProvider(newfile.ProviderOptions{
		Client:  &editorClient{server: s},
		Headers: scalapkg.NewResolver(layout.SourceRoots),
		Root:    layout.Root,
		Focused: s.focusedDocument,
		Logf:    s.logf,
	})

	s.mu.Lock()
	s.provider = provider
	s.mu.Unlock()

	result := initializeResult{
		Capabilities: serverCapabilities{
			TextDocumentSync: textDocumentSyncOptions{
				OpenClose: true,
				Change:    1,
			},
			ExecuteCommandProvider: executeCommandOptions{
				Commands: []string{CommandNewScalaFile},
			},
		},
	}
	return s.sendResponse(msg.ID, result)
}

func (s *Server) handleDidOpen(msg *rpcMessage) error {
	var params didOpenTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	s.touch(uriToPath(params.TextDocument.URI))
	return nil
}

func (s *Server) handleDidChange(msg *rpcMessage) error {
	var params didChangeTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	s.touch(uriToPath(params.TextDocument.URI))
	return nil
}

func (s *Server) handleDidClose(msg *rpcMessage) error {
	var params didCloseTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	path := uriToPath(params.TextDocument.URI)
	s.mu.Lock()
	if s.lastTouched == path {
		s.lastTouched = ""
	}
	s.mu.Unlock()
	return nil
}

func (s *Server) handleExecuteCommand(msg *rpcMessage) error {
	var params executeCommandParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return s.sendError(msg.ID, -32602, "invalid params")
	}
	if params.Command != CommandNewScalaFile {
		return s.sendError(msg.ID, -32602, fmt.Sprintf("unknown command %q", params.Command))
	}
	var args newFileArgs
	if len(params.Arguments) > 0 {
		if err := json.Unmarshal(params.Arguments[0], &args); err != nil {
			return s.sendError(msg.ID, -32602, "invalid command arguments")
		}
	}
	id := append(json.RawMessage(nil), msg.ID...)
	s.commands.Add(1)
	go s.runNewScalaFile(id, args)
	return nil
}

// runNewScalaFile executes one create-file invocation off the read loop.
// The response carries the created file, or null when the user cancelled.
func (s *Server) runNewScalaFile(id json.RawMessage, args newFileArgs) {
	defer s.commands.Done()

	s.mu.Lock()
	provider := s.provider
	s.mu.Unlock()
	if provider == nil {
		if err := s.sendError(id, -32603, "server not initialized"); err != nil {
			s.logf("send failed: %v", err)
		}
		return
	}

	created, err := provider.Create(s.runCtx, newfile.Params{
		Path: uriToPath(args.Directory),
		Kind: args.Kind,
		Name: args.Name,
	})
	switch {
	case err != nil:
		// -32803 RequestFailed: the operation itself failed; any
		// user-facing notification was already sent by the provider.
		if sendErr := s.sendError(id, -32803, err.Error()); sendErr != nil {
			s.logf("send failed: %v", sendErr)
		}
	case created == nil:
		if sendErr := s.sendResponse(id, nil); sendErr != nil {
			s.logf("send failed: %v", sendErr)
		}
	default:
		result := newFileResult{
			URI:    pathToURI(created.Path),
			Cursor: collapsedRange(created.Cursor),
		}
		if sendErr := s.sendResponse(id, result); sendErr != nil {
			s.logf("send failed: %v", sendErr)
		}
	}
}

func (s *Server) touch(path string) {
	if path == "" {
		return
	}
	s.mu.Lock()
	s.lastTouched = path
	s.mu.Unlock()
}

// focusedDocument approximates the editor's focused document with the most
// recently opened or changed one; LSP has no focus notification.
func (s *Server) focusedDocument() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastTouched
}

// request sends a server-to-client request and blocks until the matching
// response arrives or ctx is done.
func (s *Server) request(ctx context.Context, method string, params any) (*rpcMessage, error) {
	id := s.nextID.Add(1)
	key := strconv.FormatInt(id, 10)
	ch := make(chan *rpcMessage, 1)
	s.pendingMu.Lock()
	s.pending[key] = ch
	s.pendingMu.Unlock()
	defer func() {
		s.pendingMu.Lock()
		delete(s.pending, key)
		s.pendingMu.Unlock()
	}()

	msg := map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"method":  method,
		"params":  params,
	}
	if err := s.conn.write(msg); err != nil {
		return nil, err
	}
	select {
	case resp := <-ch:
		if resp.Error != nil {
			return nil, fmt.Errorf("%s: %s (code %d)", method, resp.Error.Message, resp.Error.Code)
		}
		return resp, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *Server) routeResponse(msg *rpcMessage) {
	key := strings.Trim(strings.TrimSpace(string(msg.ID)), `"`)
	s.pendingMu.Lock()
	ch, ok := s.pending[key]
	s.pendingMu.Unlock()
	if !ok {
		s.logf("dropping response with unknown id %s", key)
		return
	}
	select {
	case ch <- msg:
	default:
		s.logf("dropping duplicate response for id %s", key)
	}
}

// notify sends a notification (no id, no response expected).
func (s *Server) notify(method string, params any) error {
	return s.conn.write(map[string]any{
		"jsonrpc": "2.0",
		"method":  method,
		"params":  params,
	})
}

func (s *Server) sendResponse(id json.RawMessage, result any) error {
	return s.conn.write(map[string]any{
		"jsonrpc": "2.0",
		"id":      json.RawMessage(id),
		"result":  result,
	})
}

func (s *Server) sendError(id json.RawMessage, code int, message string) error {
	return s.conn.write(map[string]any{
		"jsonrpc": "2.0",
		"id":      json.RawMessage(id),
		"error": rpcError{
			Code:    code,
			Message: message,
		},
	})
}

func (s *Server) logf(format string, args ...any) {
	s.logFn(format, args...)
}

// collapsedRange builds an empty selection at pos.
func collapsedRange(pos newfile.Position) lspRange {
	p := position{
		Line:      clampUint32(pos.Line),
		Character: clampUint32(pos.Character),
	}
	return lspRange{Start: p, End: p}
}

func clampUint32(v int) uint32 {
	u, err := safecast.Conv[uint32](v)
	if err != nil {
		return 0
	}
	return u
}
