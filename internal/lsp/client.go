package lsp

import (
	"context"
	"encoding/json"

	"slate/internal/newfile"
)

// editorClient adapts the connected editor to the newfile.Client surface:
// prompts become slate/quickPick and slate/inputBox requests, notifications
// window/showMessage, navigation window/showDocument.
type editorClient struct {
	server *Server
}

func (c *editorClient) PickOne(ctx context.Context, items []newfile.PickItem, placeHolder string) (string, bool, error) {
	params := quickPickParams{
		Items:       make([]quickPickItem, 0, len(items)),
		PlaceHolder: placeHolder,
	}
	for _, item := range items {
		params.Items = append(params.Items, quickPickItem{ID: item.ID, Label: item.Label})
	}
	resp, err := c.server.request(ctx, "slate/quickPick", params)
	if err != nil {
		return "", false, err
	}
	var result quickPickResult
	if err := unmarshalResult(resp, &result); err != nil {
		return "", false, err
	}
	if result.Cancelled || result.ItemID == "" {
		return "", false, nil
	}
	return result.ItemID, true, nil
}

func (c *editorClient) Input(ctx context.Context, prompt string) (string, bool, error) {
	resp, err := c.server.request(ctx, "slate/inputBox", inputBoxParams{Prompt: prompt})
	if err != nil {
		return "", false, err
	}
	var result inputBoxResult
	if err := unmarshalResult(resp, &result); err != nil {
		return "", false, err
	}
	if result.Cancelled {
		return "", false, nil
	}
	return result.Value, true, nil
}

func (c *editorClient) ShowErrorMessage(_ context.Context, message string) {
	if err := c.server.notify("window/showMessage", showMessageParams{
		Type:    messageTypeError,
		Message: message,
	}); err != nil {
		c.server.logf("showMessage failed: %v", err)
	}
}

func (c *editorClient) OpenFile(ctx context.Context, path string, pos newfile.Position) {
	params := showDocumentParams{
		URI:       pathToURI(path),
		TakeFocus: true,
		Selection: &lspRange{
			Start: position{Line: clampUint32(pos.Line), Character: clampUint32(pos.Character)},
			End:   position{Line: clampUint32(pos.Line), Character: clampUint32(pos.Character)},
		},
	}
	// Fire-and-forget: the editor's answer does not gate the operation.
	go func() {
		if _, err := c.server.request(ctx, "window/showDocument", params); err != nil {
			c.server.logf("showDocument failed: %v", err)
		}
	}()
}

// unmarshalResult decodes a response result; a missing or null result
// counts as a cancelled prompt, which zero values already express.
func unmarshalResult(resp *rpcMessage, out any) error {
	if len(resp.Result) == 0 || string(resp.Result) == "null" {
		return nil
	}
	return json.Unmarshal(resp.Result, out)
}
