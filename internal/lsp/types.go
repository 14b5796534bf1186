package lsp

import "encoding/json"

type rpcMessage struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

// isResponse reports whether the message answers one of our own requests.
func (m *rpcMessage) isResponse() bool {
	return m.Method == "" && len(m.ID) > 0
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type initializeParams struct {
	RootURI          string            `json:"rootUri,omitempty"`
	RootPath         string            `json:"rootPath,omitempty"`
	WorkspaceFolders []workspaceFolder `json:"workspaceFolders,omitempty"`
}

type workspaceFolder struct {
	URI  string `json:"uri"`
	Name string `json:"name"`
}

type textDocumentItem struct {
	URI        string `json:"uri"`
	LanguageID string `json:"languageId"`
	Version    int    `json:"version"`
	Text       string `json:"text"`
}

type textDocumentIdentifier struct {
	URI string `json:"uri"`
}

type didOpenTextDocumentParams struct {
	TextDocument textDocumentItem `json:"textDocument"`
}

type didChangeTextDocumentParams struct {
	TextDocument textDocumentIdentifier `json:"textDocument"`
}

type didCloseTextDocumentParams struct {
	TextDocument textDocumentIdentifier `json:"textDocument"`
}

type position struct {
	Line      uint32 `json:"line"`
	Character uint32 `json:"character"`
}

type lspRange struct {
	Start position `json:"start"`
	End   position `json:"end"`
}

type textDocumentSyncOptions struct {
	OpenClose bool `json:"openClose"`
	Change    int  `json:"change"`
}

type executeCommandOptions struct {
	Commands []string `json:"commands"`
}

type serverCapabilities struct {
	TextDocumentSync       textDocumentSyncOptions `json:"textDocumentSync"`
	ExecuteCommandProvider executeCommandOptions   `json:"executeCommandProvider"`
}

type initializeResult struct {
	Capabilities serverCapabilities `json:"capabilities"`
}

type executeCommandParams struct {
	Command   string            `json:"command"`
	Arguments []json.RawMessage `json:"arguments,omitempty"`
}

// newFileArgs is the single object argument of slate.newScalaFile. Every
// field is optional; missing pieces are prompted for.
type newFileArgs struct {
	// Directory is a file: URI identifying the target location, either a
	// directory or a file standing for its parent.
	Directory string `json:"directory,omitempty"`
	Name      string `json:"name,omitempty"`
	Kind      string `json:"kind,omitempty"`
}

// newFileResult answers a successful slate.newScalaFile invocation.
// A JSON null result means the user cancelled.
type newFileResult struct {
	URI    string   `json:"uri"`
	Cursor lspRange `json:"cursor"`
}

type showMessageParams struct {
	Type    int    `json:"type"`
	Message string `json:"message"`
}

const messageTypeError = 1

type showDocumentParams struct {
	URI       string    `json:"uri"`
	TakeFocus bool      `json:"takeFocus,omitempty"`
	Selection *lspRange `json:"selection,omitempty"`
}

type quickPickItem struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

type quickPickParams struct {
	Items       []quickPickItem `json:"items"`
	PlaceHolder string          `json:"placeHolder,omitempty"`
}

type quickPickResult struct {
	ItemID    string `json:"itemId,omitempty"`
	Cancelled bool   `json:"cancelled,omitempty"`
}

type inputBoxParams struct {
	Prompt string `json:"prompt"`
}

type inputBoxResult struct {
	Value     string `json:"value,omitempty"`
	Cancelled bool   `json:"cancelled,omitempty"`
}
