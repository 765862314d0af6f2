package comfy

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/reusedev/comfy-hub/internal/modules/logs"
)

func TestMain(m *testing.M) {
	logs.Logger = zerolog.New(io.Discard)
	os.Exit(m.Run())
}

// fakeComfy is an httptest stand-in for a ComfyUI server running one prompt.
type fakeComfy struct {
	promptID  string
	imageData []byte
	// historyAfter 次查询前 /history 返回空, 模拟执行中
	historyAfter int
	historyCalls int
	wsDown       bool // /ws 拒绝握手
	execError    bool // ws 推送 execution_error
	upgrader     websocket.Upgrader
}

func (f *fakeComfy) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/prompt", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(body), "client_id") {
			http.Error(w, "no client_id", http.StatusBadRequest)
			return
		}
		w.Write([]byte(`{"prompt_id": "` + f.promptID + `", "number": 1, "node_errors": {}}`))
	})
	mux.HandleFunc("/history/", func(w http.ResponseWriter, r *http.Request) {
		f.historyCalls++
		if f.historyCalls <= f.historyAfter {
			w.Write([]byte(`{}`))
			return
		}
		w.Write([]byte(`{"` + f.promptID + `": {
			"outputs": {"9": {"images": [{"filename": "ComfyUI_API_00001_.png", "subfolder": "", "type": "output"}]}},
			"status": {"status_str": "success", "completed": true}
		}}`))
	})
	mux.HandleFunc("/view", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("filename") == "" {
			http.Error(w, "no filename", http.StatusBadRequest)
			return
		}
		w.Write(f.imageData)
	})
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		if f.wsDown {
			http.Error(w, "ws unavailable", http.StatusInternalServerError)
			return
		}
		if r.URL.Query().Get("clientId") == "" {
			http.Error(w, "no clientId", http.StatusBadRequest)
			return
		}
		conn, err := f.upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		if f.execError {
			conn.WriteMessage(websocket.TextMessage,
				[]byte(`{"type": "execution_error", "data": {"prompt_id": "`+f.promptID+`", "node_id": "3", "node_type": "KSampler", "exception_message": "CUDA out of memory"}}`))
			conn.ReadMessage()
			return
		}
		conn.WriteMessage(websocket.BinaryMessage, []byte{0, 1, 2}) // preview frame
		conn.WriteMessage(websocket.TextMessage,
			[]byte(`{"type": "progress", "data": {"value": 10, "max": 20, "prompt_id": "`+f.promptID+`"}}`))
		conn.WriteMessage(websocket.TextMessage,
			[]byte(`{"type": "executing", "data": {"node": "3", "prompt_id": "`+f.promptID+`"}}`))
		conn.WriteMessage(websocket.TextMessage,
			[]byte(`{"type": "executing", "data": {"node": null, "prompt_id": "`+f.promptID+`"}}`))
		// 等客户端收完再断开
		conn.ReadMessage()
	})
	mux.HandleFunc("/object_info/CheckpointLoaderSimple", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"CheckpointLoaderSimple": {"input": {"required": {"ckpt_name": [["a.safetensors", "b.safetensors"], {}]}}}}`))
	})
	mux.HandleFunc("/queue", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"queue_running": [["x"]], "queue_pending": []}`))
	})
	mux.HandleFunc("/system_stats", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"system": {"os": "posix", "comfyui_version": "0.3.10"}, "devices": []}`))
	})
	return mux
}

func newFakeComfy(t *testing.T, opts ...Option) (*fakeComfy, *Client) {
	t.Helper()
	fake := &fakeComfy{
		promptID:  "b2c1e1de-0001-4e88-9f0a-7c62a1a4e6db",
		imageData: []byte("\x89PNG\r\n\x1a\nfakeimagedata"),
	}
	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)
	opts = append([]Option{WithName("test")}, opts...)
	return fake, New(strings.TrimPrefix(srv.URL, "http://"), opts...)
}

func TestQueuePrompt(t *testing.T) {
	_, client := newFakeComfy(t)
	wf, err := Text2Image(Text2ImageParams{PositivePrompt: "a cat", Checkpoint: "m"})
	if err != nil {
		t.Fatal(err)
	}
	ret, err := client.QueuePrompt(context.Background(), wf)
	if err != nil {
		t.Fatalf("queue prompt: %v", err)
	}
	if ret.PromptID == "" {
		t.Fatal("no prompt id")
	}
}

func TestQueuePromptRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"prompt_id": "", "node_errors": {"4": {"errors": []}}}`))
	}))
	defer srv.Close()
	client := New(strings.TrimPrefix(srv.URL, "http://"))
	wf, _ := Text2Image(Text2ImageParams{PositivePrompt: "x", Checkpoint: "missing.safetensors"})
	_, err := client.QueuePrompt(context.Background(), wf)
	if err == nil {
		t.Fatal("expected node_errors to fail the queue call")
	}
}

func TestHistoryNotFinished(t *testing.T) {
	fake, client := newFakeComfy(t)
	fake.historyAfter = 1
	_, err := client.History(context.Background(), fake.promptID)
	if !errors.Is(err, ErrNotFinished) {
		t.Fatalf("expected ErrNotFinished, got %v", err)
	}
}

func TestHistoryPoller(t *testing.T) {
	fake, client := newFakeComfy(t)
	fake.historyAfter = 2
	poller := NewHistoryPoller(client)
	poller.RequestInterval = 10 * time.Millisecond
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	entry, err := poller.Wait(ctx, fake.promptID)
	if err != nil {
		t.Fatalf("poll: %v", err)
	}
	if len(entry.Outputs) == 0 {
		t.Fatal("no outputs in polled history")
	}
	if fake.historyCalls < 3 {
		t.Fatalf("expected at least 3 history calls, got %d", fake.historyCalls)
	}
}

func TestGenerate(t *testing.T) {
	fake, client := newFakeComfy(t)
	var gotProgress bool
	images, err := client.Generate(context.Background(), Text2ImageParams{
		PositivePrompt: "a cat",
		Checkpoint:     "m.safetensors",
		OnProgress:     func(value, max int) { gotProgress = true },
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(images) != 1 {
		t.Fatalf("expected 1 image, got %d", len(images))
	}
	if string(images[0].Data) != string(fake.imageData) {
		t.Fatal("image bytes mismatch")
	}
	if images[0].PromptID != fake.promptID {
		t.Fatalf("prompt id mismatch: %s", images[0].PromptID)
	}
	if images[0].Ref.Filename != "ComfyUI_API_00001_.png" {
		t.Fatalf("ref filename mismatch: %s", images[0].Ref.Filename)
	}
	if !gotProgress {
		t.Fatal("progress callback never fired")
	}
}

func TestGenerateWebsocketDown(t *testing.T) {
	fake, client := newFakeComfy(t, WithPollInterval(10*time.Millisecond))
	fake.wsDown = true
	fake.historyAfter = 1
	images, err := client.Generate(context.Background(), Text2ImageParams{
		PositivePrompt: "a cat",
		Checkpoint:     "m.safetensors",
	})
	if err != nil {
		t.Fatalf("generate with ws down: %v", err)
	}
	if len(images) != 1 || string(images[0].Data) != string(fake.imageData) {
		t.Fatalf("fallback polling returned wrong images: %d", len(images))
	}
	if fake.historyCalls < 2 {
		t.Fatalf("expected history polling, got %d calls", fake.historyCalls)
	}
}

func TestGenerateExecutionError(t *testing.T) {
	fake, client := newFakeComfy(t)
	fake.execError = true
	_, err := client.Generate(context.Background(), Text2ImageParams{
		PositivePrompt: "a cat",
		Checkpoint:     "m.safetensors",
	})
	var exeErr *ExecutionError
	if !errors.As(err, &exeErr) {
		t.Fatalf("expected ExecutionError, got %v", err)
	}
	if exeErr.NodeID != "3" || exeErr.ExceptionMessage != "CUDA out of memory" {
		t.Fatalf("unexpected error detail: %+v", exeErr)
	}
	// 节点执行失败不应再回退轮询 history
	if fake.historyCalls != 0 {
		t.Fatalf("expected no history polling after execution error, got %d calls", fake.historyCalls)
	}
}

func TestGenerateToFile(t *testing.T) {
	fake, client := newFakeComfy(t)
	path := filepath.Join(t.TempDir(), "out", "generated.png")
	err := client.GenerateToFile(context.Background(), Text2ImageParams{
		PositivePrompt: "a cat",
		Checkpoint:     "m.safetensors",
	}, path)
	if err != nil {
		t.Fatalf("generate to file: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if string(data) != string(fake.imageData) {
		t.Fatal("saved bytes mismatch")
	}
}

func TestCheckpoints(t *testing.T) {
	_, client := newFakeComfy(t)
	names, err := client.Checkpoints(context.Background())
	if err != nil {
		t.Fatalf("checkpoints: %v", err)
	}
	if len(names) != 2 || names[0] != "a.safetensors" {
		t.Fatalf("unexpected checkpoint list: %v", names)
	}
}

func TestQueueState(t *testing.T) {
	_, client := newFakeComfy(t)
	state, err := client.QueueState(context.Background())
	if err != nil {
		t.Fatalf("queue state: %v", err)
	}
	if state.Running != 1 || state.Pending != 0 {
		t.Fatalf("unexpected queue state: %+v", state)
	}
}

func TestSystemStats(t *testing.T) {
	_, client := newFakeComfy(t)
	stats, err := client.SystemStats(context.Background())
	if err != nil {
		t.Fatalf("system stats: %v", err)
	}
	if stats.System.ComfyUIVersion != "0.3.10" {
		t.Fatalf("unexpected version: %s", stats.System.ComfyUIVersion)
	}
}
