package handler

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/reusedev/comfy-hub/internal/modules/cache"
	"github.com/reusedev/comfy-hub/internal/modules/fleet"
	"github.com/reusedev/comfy-hub/internal/modules/logs"
	"github.com/reusedev/comfy-hub/internal/service/http/handler/response"
)

const healthProbeTimeout = 5 * time.Second

// Models aggregates installed checkpoints across every configured server.
// Per-server lists are cached so the endpoint stays cheap to poll.
func Models(c *gin.Context) {
	perServer := make(map[string][]string)
	merged := make(map[string]struct{})
	for _, client := range fleet.GManager.Clients() {
		key := "checkpoints_" + client.Name()
		names, err := cache.ModelCacheManager().GetValue(key)
		if err != nil || names == nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), healthProbeTimeout)
			names, err = client.Checkpoints(ctx)
			cancel()
			if err != nil {
				logs.Logger.Err(err).Str("server", client.Name()).Msg("list checkpoints")
				continue
			}
			_ = cache.ModelCacheManager().SetWithExpiration(key, names, 5*time.Minute)
		}
		perServer[client.Name()] = names
		for _, n := range names {
			merged[n] = struct{}{}
		}
	}
	all := make([]string, 0, len(merged))
	for n := range merged {
		all = append(all, n)
	}
	sort.Strings(all)
	c.JSON(http.StatusOK, response.SuccessWithData(gin.H{
		"models":  all,
		"servers": perServer,
	}))
}

type serverStatus struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Ok      bool   `json:"ok"`
	Version string `json:"version,omitempty"`
	Running int    `json:"running"`
	Pending int    `json:"pending"`
	Error   string `json:"error,omitempty"`
}

// Servers probes every backend's system_stats and queue.
func Servers(c *gin.Context) {
	ret := make([]serverStatus, 0)
	for _, client := range fleet.GManager.Clients() {
		status := serverStatus{Name: client.Name(), Address: client.Address()}
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthProbeTimeout)
		stats, err := client.SystemStats(ctx)
		if err == nil {
			status.Ok = true
			status.Version = stats.System.ComfyUIVersion
			if state, qErr := client.QueueState(ctx); qErr == nil {
				status.Running = state.Running
				status.Pending = state.Pending
			}
		} else {
			status.Error = err.Error()
		}
		cancel()
		ret = append(ret, status)
	}
	c.JSON(http.StatusOK, response.SuccessWithData(ret))
}
