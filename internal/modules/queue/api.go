package queue

import (
	"context"
	"sync"

	"github.com/reusedev/comfy-hub/internal/modules/logs"
)

var ImageTaskQueue = NewTaskQueue(100)
var closeOnce sync.Once

func exeImageTask(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()
	for {
		select {
		case task, ok := <-ImageTaskQueue:
			if !ok {
				return
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := task.Execute(ctx); err != nil {
					logs.Logger.Err(err).Msg("image task execute")
				}
			}()
		case <-ctx.Done():
			closeOnce.Do(func() {
				close(ImageTaskQueue)
				logs.Logger.Info().Msg("Image task queue closed")
			})
		}
	}
}

func InitImageTaskQueue(ctx context.Context, wg *sync.WaitGroup) {
	wg.Add(1)
	go exeImageTask(ctx, wg)
}
