package comfy

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/reusedev/comfy-hub/internal/modules/logs"
	"github.com/reusedev/comfy-hub/internal/modules/storage/local"
)

// Generate runs the embedded text2image workflow end to end: queue the
// prompt, wait for execution, then download every image the output nodes
// produced.
func (c *Client) Generate(ctx context.Context, params Text2ImageParams) ([]GeneratedImage, error) {
	if err := params.Normalize(); err != nil {
		return nil, err
	}
	workflow, err := Text2Image(params)
	if err != nil {
		return nil, err
	}
	queued, err := c.QueuePrompt(ctx, workflow)
	if err != nil {
		return nil, err
	}
	logs.Logger.Info().
		Str("server", c.name).
		Str("prompt_id", queued.PromptID).
		Int("queue_number", queued.Number).
		Int64("seed", *params.Seed).
		Msg("prompt queued")

	var entry *HistoryEntry
	waitErr := c.WaitForPrompt(ctx, queued.PromptID, params.OnProgress)
	if waitErr != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		var exeErr *ExecutionError
		if errors.As(waitErr, &exeErr) {
			return nil, waitErr
		}
		logs.Logger.Warn().Err(waitErr).Str("server", c.name).
			Str("prompt_id", queued.PromptID).
			Msg("websocket wait failed, falling back to history polling")
		entry, err = c.poller().Wait(ctx, queued.PromptID)
		if err != nil {
			return nil, err
		}
	} else {
		entry, err = c.History(ctx, queued.PromptID)
		if errors.Is(err, ErrNotFinished) {
			// 执行完成消息和 history 落盘之间偶有间隙
			entry, err = c.poller().Wait(ctx, queued.PromptID)
		}
		if err != nil {
			return nil, err
		}
	}

	images := make([]GeneratedImage, 0)
	for _, output := range entry.Outputs {
		for _, ref := range output.Images {
			data, err := c.View(ctx, ref)
			if err != nil {
				return nil, fmt.Errorf("fetch %s: %w", ref.Filename, err)
			}
			images = append(images, GeneratedImage{
				Ref:      ref,
				Data:     data,
				PromptID: queued.PromptID,
				Seed:     *params.Seed,
			})
		}
	}
	if len(images) == 0 {
		if entry.Status.StatusStr != "" {
			return nil, fmt.Errorf("%w: status %s", ErrNoImages, entry.Status.StatusStr)
		}
		return nil, ErrNoImages
	}
	return images, nil
}

// GenerateToFile generates and writes the first image to path.
func (c *Client) GenerateToFile(ctx context.Context, params Text2ImageParams, path string) error {
	images, err := c.Generate(ctx, params)
	if err != nil {
		return err
	}
	return local.SaveFile(bytes.NewReader(images[0].Data), path)
}
