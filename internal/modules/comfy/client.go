package comfy

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"

	"github.com/reusedev/comfy-hub/internal/consts"
	"github.com/reusedev/comfy-hub/internal/modules/http_client"
	"github.com/reusedev/comfy-hub/internal/modules/logs"
	"github.com/reusedev/comfy-hub/tools"
)

// Client talks to one ComfyUI server. Every client owns a random client id
// used both for /prompt submission and the /ws subscription, so execution
// events can be matched back to this client's prompts.
type Client struct {
	name         string
	address      string // host:port
	token        string
	tls          bool
	clientID     string
	pollInterval time.Duration
	http         *http_client.HttpClient
}

type Option func(*Client)

func WithName(name string) Option {
	return func(c *Client) { c.name = name }
}

// WithToken sets a bearer token for proxied deployments. Bare ComfyUI ignores it.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func WithTLS() Option {
	return func(c *Client) { c.tls = true }
}

func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) { c.http = http_client.NewWithTimeout(timeout) }
}

// WithPollInterval sets how often the history fallback polls.
func WithPollInterval(interval time.Duration) Option {
	return func(c *Client) { c.pollInterval = interval }
}

func New(address string, opts ...Option) *Client {
	c := &Client{
		name:         address,
		address:      address,
		clientID:     uuid.NewString(),
		pollInterval: 3 * time.Second,
		// 不设置会默认无超时，排队很久的 view/history 请求会一直挂着
		http: http_client.NewWithTimeout(6 * time.Minute),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Name() string     { return c.name }
func (c *Client) Address() string  { return c.address }
func (c *Client) ClientID() string { return c.clientID }

func (c *Client) baseURL() string {
	scheme := "http"
	if c.tls {
		scheme = "https"
	}
	return scheme + "://" + c.address
}

func (c *Client) wsURL() string {
	scheme := "ws"
	if c.tls {
		scheme = "wss"
	}
	return scheme + "://" + c.address + "/ws?clientId=" + c.clientID
}

// do issues one request and logs it the way the hub logs every upstream call.
// The caller owns the response body.
func (c *Client) do(method, path string, opts ...http_client.RequestOption) (*http.Response, error) {
	if c.token != "" {
		opts = append(opts, http_client.WithHeader("Authorization", "Bearer "+c.token))
	}
	req, err := c.http.NewRequest(method, tools.FullURL(c.baseURL(), path), opts...)
	if err != nil {
		return nil, err
	}
	reqAt := time.Now()
	resp, err := c.http.Do(req)
	respAt := time.Now()
	if err != nil {
		return nil, err
	}
	logs.Logger.Info().
		Str("server", c.name).
		Str("path", path).
		Str("method", method).
		Int("status_code", resp.StatusCode).
		Dur("req_consume_ms", respAt.Sub(reqAt)).
		Msg("comfyui request")
	return resp, nil
}

// readBody drains the response and converts a non-2xx status into *APIError.
func readBody(resp *http.Response, path string) ([]byte, error) {
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &APIError{StatusCode: resp.StatusCode, Path: path, Body: string(body)}
	}
	return body, nil
}

// QueuePrompt submits a workflow to /prompt and returns the server's
// acknowledgement. Populated node_errors means the graph was rejected.
func (c *Client) QueuePrompt(ctx context.Context, workflow Workflow) (*QueueResult, error) {
	payload := map[string]any{
		"prompt":    workflow,
		"client_id": c.clientID,
	}
	resp, err := c.do(http.MethodPost, "/prompt",
		http_client.WithContext(ctx),
		http_client.WithHeader("Content-Type", "application/json"),
		http_client.WithBody(payload),
	)
	if err != nil {
		return nil, err
	}
	body, err := readBody(resp, "/prompt")
	if err != nil {
		return nil, err
	}
	var ret QueueResult
	if err := jsoniter.Unmarshal(body, &ret); err != nil {
		return nil, fmt.Errorf("decode /prompt response: %w", err)
	}
	if len(ret.NodeErrors) != 0 {
		return nil, fmt.Errorf("workflow rejected: %s", string(body))
	}
	if ret.PromptID == "" {
		return nil, fmt.Errorf("no prompt_id in /prompt response: %s", string(body))
	}
	return &ret, nil
}

// History fetches /history/{promptID}. The endpoint answers with a map keyed
// by prompt id; a missing key means the prompt has not finished yet.
func (c *Client) History(ctx context.Context, promptID string) (*HistoryEntry, error) {
	path := "/history/" + promptID
	resp, err := c.do(http.MethodGet, path, http_client.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	body, err := readBody(resp, path)
	if err != nil {
		return nil, err
	}
	entries := map[string]HistoryEntry{}
	if err := jsoniter.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("decode history response: %w", err)
	}
	entry, ok := entries[promptID]
	if !ok {
		return nil, ErrNotFinished
	}
	return &entry, nil
}

// View downloads one output image's raw bytes.
func (c *Client) View(ctx context.Context, ref ImageRef) ([]byte, error) {
	resp, err := c.do(http.MethodGet, "/view",
		http_client.WithContext(ctx),
		http_client.WithQuery("filename", ref.Filename),
		http_client.WithQuery("subfolder", ref.Subfolder),
		http_client.WithQuery("type", ref.Type),
	)
	if err != nil {
		return nil, err
	}
	return readBody(resp, "/view")
}

// Checkpoints lists the checkpoint model files installed on the server, read
// from the CheckpointLoaderSimple node metadata.
func (c *Client) Checkpoints(ctx context.Context) ([]string, error) {
	path := "/object_info/" + consts.ClassCheckpointLoader
	resp, err := c.do(http.MethodGet, path, http_client.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	body, err := readBody(resp, path)
	if err != nil {
		return nil, err
	}
	var info map[string]struct {
		Input struct {
			Required map[string][]jsoniter.RawMessage `json:"required"`
		} `json:"input"`
	}
	if err := jsoniter.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("decode object_info response: %w", err)
	}
	node, ok := info[consts.ClassCheckpointLoader]
	if !ok {
		return nil, fmt.Errorf("no %s in object_info response", consts.ClassCheckpointLoader)
	}
	// ckpt_name metadata is [ [names...], {options...} ]
	raw, ok := node.Input.Required["ckpt_name"]
	if !ok || len(raw) == 0 {
		return nil, nil
	}
	var names []string
	if err := jsoniter.Unmarshal(raw[0], &names); err != nil {
		return nil, fmt.Errorf("decode ckpt_name list: %w", err)
	}
	return names, nil
}

// QueueState reports how many prompts the server is running and holding.
func (c *Client) QueueState(ctx context.Context) (*QueueState, error) {
	resp, err := c.do(http.MethodGet, "/queue", http_client.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	body, err := readBody(resp, "/queue")
	if err != nil {
		return nil, err
	}
	var s struct {
		Running []jsoniter.RawMessage `json:"queue_running"`
		Pending []jsoniter.RawMessage `json:"queue_pending"`
	}
	if err := jsoniter.Unmarshal(body, &s); err != nil {
		return nil, fmt.Errorf("decode queue response: %w", err)
	}
	return &QueueState{Running: len(s.Running), Pending: len(s.Pending)}, nil
}

// Interrupt aborts whatever the server is currently executing.
func (c *Client) Interrupt(ctx context.Context) error {
	resp, err := c.do(http.MethodPost, "/interrupt", http_client.WithContext(ctx))
	if err != nil {
		return err
	}
	_, err = readBody(resp, "/interrupt")
	return err
}

// SystemStats doubles as the health probe for /v1/servers.
func (c *Client) SystemStats(ctx context.Context) (*SystemStats, error) {
	resp, err := c.do(http.MethodGet, "/system_stats", http_client.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	body, err := readBody(resp, "/system_stats")
	if err != nil {
		return nil, err
	}
	var stats SystemStats
	if err := jsoniter.Unmarshal(body, &stats); err != nil {
		return nil, fmt.Errorf("decode system_stats response: %w", err)
	}
	return &stats, nil
}
