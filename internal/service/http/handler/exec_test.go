package handler

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/reusedev/comfy-hub/internal/modules/comfy"
)

func TestInvokeRecord(t *testing.T) {
	t.Run("成功调用记录prompt_id", func(t *testing.T) {
		record := invokeRecord(7, "local", "b2c1e1de-0001-4e88-9f0a-7c62a1a4e6db", nil, 1500*time.Millisecond)
		if record.TaskId != 7 || record.ServerName != "local" {
			t.Fatalf("record identity mismatch: %+v", record)
		}
		if record.PromptId != "b2c1e1de-0001-4e88-9f0a-7c62a1a4e6db" {
			t.Fatalf("prompt_id not recorded: %q", record.PromptId)
		}
		if record.StatusCode != http.StatusOK || record.FailedRespBody != "" {
			t.Fatalf("success record carries failure info: %+v", record)
		}
		if record.DurationMs != 1500 {
			t.Fatalf("duration mismatch: %d", record.DurationMs)
		}
	})

	t.Run("接口错误记录状态码和响应体", func(t *testing.T) {
		cause := &comfy.APIError{StatusCode: http.StatusBadGateway, Path: "/prompt", Body: "upstream down"}
		record := invokeRecord(7, "local", "", cause, time.Second)
		if record.StatusCode != http.StatusBadGateway || record.FailedRespBody != "upstream down" {
			t.Fatalf("api error not recorded: %+v", record)
		}
		if record.PromptId != "" {
			t.Fatalf("failed attempt should have no prompt_id: %q", record.PromptId)
		}
	})

	t.Run("非接口错误记录错误信息", func(t *testing.T) {
		record := invokeRecord(7, "local", "", fmt.Errorf("ws dial refused"), time.Second)
		if record.StatusCode != 0 || record.FailedRespBody != "ws dial refused" {
			t.Fatalf("plain error not recorded: %+v", record)
		}
	})
}
