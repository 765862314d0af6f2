package comfy

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"

	"github.com/reusedev/comfy-hub/internal/modules/logs"
)

// WaitForPrompt subscribes to /ws and blocks until the server reports the
// prompt done: an "executing" message with a null node and a matching prompt
// id. Binary frames are preview images and are skipped. A connection failure
// is returned to the caller, which falls back to history polling.
func (c *Client) WaitForPrompt(ctx context.Context, promptID string, onProgress ProgressFunc) error {
	header := http.Header{}
	if c.token != "" {
		header.Set("Authorization", "Bearer "+c.token)
	}
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, c.wsURL(), header)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
			return fmt.Errorf("ws dial %s: status %d: %w", c.address, resp.StatusCode, err)
		}
		return fmt.Errorf("ws dial %s: %w", c.address, err)
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
			conn.Close()
		}
	}()

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("ws read: %w", err)
		}
		if msgType != websocket.TextMessage {
			continue
		}
		var msg wsMessage
		if err := jsoniter.Unmarshal(data, &msg); err != nil {
			logs.Logger.Warn().Err(err).Str("server", c.name).
				Str("frame", string(data)).Msg("undecodable ws frame")
			continue
		}
		switch msg.Type {
		case "executing":
			var d executingData
			if err := jsoniter.Unmarshal(msg.Data, &d); err != nil {
				continue
			}
			if d.Node == nil && d.PromptID == promptID {
				return nil
			}
		case "progress":
			var d progressData
			if err := jsoniter.Unmarshal(msg.Data, &d); err != nil {
				continue
			}
			if onProgress != nil && (d.PromptID == "" || d.PromptID == promptID) {
				onProgress(d.Value, d.Max)
			}
		case "execution_error":
			var d executionErrorData
			if err := jsoniter.Unmarshal(msg.Data, &d); err != nil {
				continue
			}
			if d.PromptID == promptID {
				return &ExecutionError{
					PromptID:         d.PromptID,
					NodeID:           d.NodeID,
					NodeType:         d.NodeType,
					ExceptionMessage: d.ExceptionMessage,
				}
			}
		}
	}
}
