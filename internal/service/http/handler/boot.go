package handler

import (
	"github.com/reusedev/comfy-hub/internal/modules/comfy"
	"github.com/reusedev/comfy-hub/internal/modules/dao"
	"github.com/reusedev/comfy-hub/internal/modules/logs"
	"github.com/reusedev/comfy-hub/internal/modules/queue"
)

// EnqueueUnfinishedTask requeues tasks a restart interrupted. The recorded
// seed is reused so the rerun produces the same image.
func EnqueueUnfinishedTask() {
	tasks, err := dao.UnfinishedTasks()
	if err != nil {
		logs.Logger.Err(err).Msg("query unfinished tasks")
		return
	}
	for _, task := range tasks {
		seed := task.Seed
		params := comfy.Text2ImageParams{
			PositivePrompt: task.Prompt,
			NegativePrompt: task.NegativePrompt,
			Checkpoint:     task.Checkpoint,
			Width:          task.Width,
			Height:         task.Height,
			Steps:          task.Steps,
			CFG:            task.CFG,
			Seed:           &seed,
			SamplerName:    task.Sampler,
			Scheduler:      task.Scheduler,
		}
		queue.ImageTaskQueue <- &generateTask{record: task, params: params}
	}
	if len(tasks) != 0 {
		logs.Logger.Info().Int("count", len(tasks)).Msg("requeued unfinished tasks")
	}
}
