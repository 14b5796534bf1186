package lsp

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// testClient drives a Server over pipes the way an editor would.
type testClient struct {
	t      *testing.T
	conn   *conn
	runErr chan error

	messagesShown []string
	docsShown     []showDocumentParams
}

func startServer(t *testing.T) *testClient {
	t.Helper()
	srvIn, clientOut := io.Pipe()
	clientIn, srvOut := io.Pipe()
	// Logs are discarded: late fire-and-forget goroutines must not touch
	// testing.T after the test returns.
	server := NewServer(srvIn, srvOut, ServerOptions{Logf: func(string, ...any) {}})

	ctx, cancel := context.WithCancel(context.Background())
	runErr := make(chan error, 1)
	go func() {
		runErr <- server.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		clientOut.Close()
		clientIn.Close()
	})
	return &testClient{
		t:      t,
		conn:   newConn(clientIn, clientOut),
		runErr: runErr,
	}
}

func (c *testClient) send(msg any) {
	c.t.Helper()
	if err := c.conn.write(msg); err != nil {
		c.t.Fatalf("client write: %v", err)
	}
}

func (c *testClient) recv() *rpcMessage {
	c.t.Helper()
	payload, err := c.conn.read()
	if err != nil {
		c.t.Fatalf("client read: %v", err)
	}
	var msg rpcMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		c.t.Fatalf("client decode: %v", err)
	}
	return &msg
}

func (c *testClient) respond(id json.RawMessage, result any) {
	c.send(map[string]any{"jsonrpc": "2.0", "id": id, "result": result})
}

func (c *testClient) initialize(root string) initializeResult {
	c.t.Helper()
	c.send(map[string]any{
		"jsonrpc": "2.0",
		"id":      100,
		"method":  "initialize",
		"params":  initializeParams{RootURI: pathToURI(root)},
	})
	resp := c.waitResponse("100", nil)
	var result initializeResult
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		c.t.Fatalf("decode initialize result: %v", err)
	}
	return result
}

// prompts maps a server request method to the result the client answers
// with. Methods absent from the map fail the test.
type prompts map[string]any

// waitResponse pumps messages until the response with the wanted id
// arrives, answering prompt requests and recording notifications on the
// way.
func (c *testClient) waitResponse(wantID string, answers prompts) *rpcMessage {
	c.t.Helper()
	for range 32 {
		msg := c.recv()
		if msg.isResponse() {
			if string(msg.ID) == wantID {
				return msg
			}
			c.t.Fatalf("unexpected response id %s", msg.ID)
		}
		switch msg.Method {
		case "window/showMessage":
			var params showMessageParams
			if err := json.Unmarshal(msg.Params, &params); err != nil {
				c.t.Fatalf("decode showMessage: %v", err)
			}
			c.messagesShown = append(c.messagesShown, params.Message)
		case "window/showDocument":
			var params showDocumentParams
			if err := json.Unmarshal(msg.Params, &params); err != nil {
				c.t.Fatalf("decode showDocument: %v", err)
			}
			c.docsShown = append(c.docsShown, params)
			c.respond(msg.ID, map[string]bool{"success": true})
		default:
			answer, ok := answers[msg.Method]
			if !ok {
				c.t.Fatalf("unexpected request %q", msg.Method)
			}
			c.respond(msg.ID, answer)
		}
	}
	c.t.Fatal("no response after 32 messages")
	return nil
}

func (c *testClient) executeNewFile(id int, args newFileArgs, answers prompts) *rpcMessage {
	c.t.Helper()
	raw, err := json.Marshal(args)
	if err != nil {
		c.t.Fatalf("marshal args: %v", err)
	}
	c.send(map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"method":  "workspace/executeCommand",
		"params": executeCommandParams{
			Command:   CommandNewScalaFile,
			Arguments: []json.RawMessage{raw},
		},
	})
	return c.waitResponse(itoa(id), answers)
}

func itoa(v int) string {
	b, _ := json.Marshal(v)
	return string(b)
}

func (c *testClient) shutdownAndExit() {
	c.t.Helper()
	c.send(map[string]any{"jsonrpc": "2.0", "id": 900, "method": "shutdown"})
	c.waitResponse("900", nil)
	c.send(map[string]any{"jsonrpc": "2.0", "method": "exit"})
	select {
	case err := <-c.runErr:
		if !errors.Is(err, ErrExit) {
			c.t.Fatalf("Run = %v, want ErrExit", err)
		}
	case <-time.After(5 * time.Second):
		c.t.Fatal("server did not exit")
	}
}

func TestInitializeAdvertisesNewFileCommand(t *testing.T) {
	c := startServer(t)
	result := c.initialize(t.TempDir())
	cmds := result.Capabilities.ExecuteCommandProvider.Commands
	if len(cmds) != 1 || cmds[0] != CommandNewScalaFile {
		t.Fatalf("commands = %v", cmds)
	}
	c.shutdownAndExit()
}

func TestNewFileFlowWithPrompts(t *testing.T) {
	c := startServer(t)
	root := t.TempDir()
	c.initialize(root)

	resp := c.executeNewFile(101, newFileArgs{}, prompts{
		"slate/quickPick": quickPickResult{ItemID: "case-class"},
		"slate/inputBox":  inputBoxResult{Value: "Point"},
	})
	if resp.Error != nil {
		t.Fatalf("command failed: %+v", resp.Error)
	}
	var result newFileResult
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	path := filepath.Join(root, "Point.scala")
	if result.URI != pathToURI(path) {
		t.Fatalf("uri = %q, want %q", result.URI, pathToURI(path))
	}
	if result.Cursor.Start.Character != 23 || result.Cursor.Start.Line != 0 {
		t.Fatalf("cursor = %+v", result.Cursor)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read created file: %v", err)
	}
	if string(data) != "final case class Point()" {
		t.Fatalf("content = %q", data)
	}
	if len(c.messagesShown) != 0 {
		t.Fatalf("unexpected notifications: %v", c.messagesShown)
	}
	c.shutdownAndExit()
}

func TestNewFileCancelledIsNullResult(t *testing.T) {
	c := startServer(t)
	root := t.TempDir()
	c.initialize(root)

	resp := c.executeNewFile(102, newFileArgs{}, prompts{
		"slate/quickPick": quickPickResult{Cancelled: true},
	})
	if resp.Error != nil {
		t.Fatalf("cancel must not be an error: %+v", resp.Error)
	}
	if string(resp.Result) != "null" {
		t.Fatalf("result = %s, want null", resp.Result)
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("nothing may be written after cancel, found %d entries", len(entries))
	}
	if len(c.messagesShown) != 0 {
		t.Fatalf("cancel must be silent, got %v", c.messagesShown)
	}
	c.shutdownAndExit()
}

func TestNewFileAlreadyExistsNotifies(t *testing.T) {
	c := startServer(t)
	root := t.TempDir()
	existing := filepath.Join(root, "Point.scala")
	if err := os.WriteFile(existing, []byte("old"), 0o644); err != nil {
		t.Fatalf("write existing: %v", err)
	}
	c.initialize(root)

	resp := c.executeNewFile(103, newFileArgs{Kind: "case-class", Name: "Point"}, nil)
	if resp.Error == nil {
		t.Fatal("expected an error response")
	}
	if len(c.messagesShown) != 1 {
		t.Fatalf("notifications = %v, want exactly one", c.messagesShown)
	}
	data, _ := os.ReadFile(existing)
	if string(data) != "old" {
		t.Fatalf("existing file overwritten: %q", data)
	}
	c.shutdownAndExit()
}

func TestNewFileWithHeaderFromSourceRoot(t *testing.T) {
	c := startServer(t)
	root := t.TempDir()
	pkgDir := filepath.Join(root, "src", "main", "scala", "greet")
	if err := os.MkdirAll(pkgDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	c.initialize(root)

	resp := c.executeNewFile(104, newFileArgs{
		Directory: pathToURI(pkgDir),
		Kind:      "class",
		Name:      "Greeter",
	}, nil)
	if resp.Error != nil {
		t.Fatalf("command failed: %+v", resp.Error)
	}
	data, err := os.ReadFile(filepath.Join(pkgDir, "Greeter.scala"))
	if err != nil {
		t.Fatalf("read created file: %v", err)
	}
	want := "package greet\n\nclass Greeter {\n  \n}\n"
	if string(data) != want {
		t.Fatalf("content = %q, want %q", data, want)
	}
	c.shutdownAndExit()
}

func TestUnknownCommandIsAnError(t *testing.T) {
	c := startServer(t)
	c.initialize(t.TempDir())

	c.send(map[string]any{
		"jsonrpc": "2.0",
		"id":      105,
		"method":  "workspace/executeCommand",
		"params":  executeCommandParams{Command: "slate.doesNotExist"},
	})
	resp := c.waitResponse("105", nil)
	if resp.Error == nil {
		t.Fatal("expected an error for an unknown command")
	}
	c.shutdownAndExit()
}

func TestFocusedDocumentProvidesDirectory(t *testing.T) {
	c := startServer(t)
	root := t.TempDir()
	docDir := filepath.Join(root, "src", "main", "scala", "app")
	if err := os.MkdirAll(docDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	c.initialize(root)

	c.send(map[string]any{
		"jsonrpc": "2.0",
		"method":  "textDocument/didOpen",
		"params": didOpenTextDocumentParams{
			TextDocument: textDocumentItem{
				URI:        pathToURI(filepath.Join(docDir, "Main.scala")),
				LanguageID: "scala",
				Version:    1,
				Text:       "object Main",
			},
		},
	})

	resp := c.executeNewFile(106, newFileArgs{Kind: "trait", Name: "Api"}, nil)
	if resp.Error != nil {
		t.Fatalf("command failed: %+v", resp.Error)
	}
	data, err := os.ReadFile(filepath.Join(docDir, "Api.scala"))
	if err != nil {
		t.Fatalf("expected file next to the focused document: %v", err)
	}
	want := "package app\n\ntrait Api {\n  \n}\n"
	if string(data) != want {
		t.Fatalf("content = %q, want %q", data, want)
	}
	c.shutdownAndExit()
}
