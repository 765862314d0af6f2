package comfy

import (
	"errors"
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

var (
	// ErrNotFinished is returned by History while the prompt is still queued or running.
	ErrNotFinished = errors.New("prompt execution not finished")
	ErrNoImages    = errors.New("no images in prompt outputs")
)

// APIError carries a non-2xx response from a ComfyUI endpoint.
type APIError struct {
	StatusCode int
	Path       string
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("comfyui %s: status %d: %s", e.Path, e.StatusCode, e.Body)
}

// ExecutionError is a node failure reported over the websocket mid-run. The
// prompt is dead at that point, so no history polling can save it.
type ExecutionError struct {
	PromptID         string
	NodeID           string
	NodeType         string
	ExceptionMessage string
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("execution error in node %s (%s): %s", e.NodeID, e.NodeType, e.ExceptionMessage)
}

// QueueResult is the /prompt acknowledgement.
type QueueResult struct {
	PromptID   string                         `json:"prompt_id"`
	Number     int                            `json:"number"`
	NodeErrors map[string]jsoniter.RawMessage `json:"node_errors"`
}

// ImageRef locates one generated image on the server, as reported in history
// outputs. Its fields become the /view query parameters.
type ImageRef struct {
	Filename  string `json:"filename"`
	Subfolder string `json:"subfolder"`
	Type      string `json:"type"`
}

type NodeOutput struct {
	Images []ImageRef `json:"images"`
}

type HistoryStatus struct {
	StatusStr string `json:"status_str"`
	Completed bool   `json:"completed"`
}

type HistoryEntry struct {
	Outputs map[string]NodeOutput `json:"outputs"`
	Status  HistoryStatus         `json:"status"`
}

// GeneratedImage is one downloaded output image together with the run that
// produced it.
type GeneratedImage struct {
	Ref      ImageRef
	Data     []byte
	PromptID string
	Seed     int64
}

type QueueState struct {
	Running int
	Pending int
}

type SystemStats struct {
	System struct {
		OS             string `json:"os"`
		ComfyUIVersion string `json:"comfyui_version"`
		PythonVersion  string `json:"python_version"`
	} `json:"system"`
	Devices []struct {
		Name      string `json:"name"`
		Type      string `json:"type"`
		VRAMTotal int64  `json:"vram_total"`
		VRAMFree  int64  `json:"vram_free"`
	} `json:"devices"`
}

type wsMessage struct {
	Type string              `json:"type"`
	Data jsoniter.RawMessage `json:"data"`
}

type executingData struct {
	Node     *string `json:"node"` // null once the whole prompt is done
	PromptID string  `json:"prompt_id"`
}

type progressData struct {
	Value    int    `json:"value"`
	Max      int    `json:"max"`
	PromptID string `json:"prompt_id"`
}

type executionErrorData struct {
	PromptID         string `json:"prompt_id"`
	NodeID           string `json:"node_id"`
	NodeType         string `json:"node_type"`
	ExceptionMessage string `json:"exception_message"`
}
