package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/reusedev/comfy-hub/config"
	"github.com/reusedev/comfy-hub/internal/components/mysql"
	"github.com/reusedev/comfy-hub/internal/consts"
	"github.com/reusedev/comfy-hub/internal/modules/comfy"
	"github.com/reusedev/comfy-hub/internal/modules/fleet"
	"github.com/reusedev/comfy-hub/internal/modules/logs"
	"github.com/reusedev/comfy-hub/internal/modules/model"
	"github.com/reusedev/comfy-hub/internal/modules/storage/ali"
	"github.com/reusedev/comfy-hub/internal/modules/storage/local"
	"github.com/reusedev/comfy-hub/tools"
)

const (
	serverBanDuration = 10 * time.Minute
	compressQuality   = 80
)

// generateTask runs one queued generation: try each backend in
// order, record every attempt, store the outputs of the first that succeeds.
type generateTask struct {
	record model.Task
	params comfy.Text2ImageParams
}

func (t *generateTask) Execute(ctx context.Context) error {
	err := mysql.DB.Model(&model.Task{}).Where("id = ?", t.record.Id).
		Update("status", model.TaskStatusRunning.String()).Error
	if err != nil {
		return err
	}

	t.params.OnProgress = func(value, max int) {
		if max == 0 {
			return
		}
		progress := float32(value) / float32(max) * 100
		mysql.DB.Model(&model.Task{}).Where("id = ?", t.record.Id).
			Update("progress", progress)
	}

	var lastErr error
	next := fleet.GManager.GetServerIterator()
	for client := next(); client != nil; client = next() {
		logs.Logger.Info().Int("task_id", t.record.Id).Str("server", client.Name()).
			Msg("attempting generation")
		startAt := time.Now()
		images, err := client.Generate(ctx, t.params)
		var promptID string
		if err == nil && len(images) > 0 {
			promptID = images[0].PromptID
		}
		t.recordInvoke(client, promptID, err, time.Since(startAt))
		if err != nil {
			if ctx.Err() != nil {
				return t.fail(ctx.Err())
			}
			lastErr = err
			logs.Logger.Error().Err(err).Int("task_id", t.record.Id).
				Str("server", client.Name()).Msg("generation failed, trying next server")
			var apiErr *comfy.APIError
			if errors.As(err, &apiErr) && apiErr.StatusCode >= http.StatusInternalServerError {
				fleet.GManager.Ban(client.Name(), time.Now().Add(serverBanDuration))
			}
			continue
		}
		return t.succeed(client, images)
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no comfyui server available")
	}
	return t.fail(lastErr)
}

func (t *generateTask) recordInvoke(client *comfy.Client, promptID string, err error, duration time.Duration) {
	record := invokeRecord(t.record.Id, client.Name(), promptID, err, duration)
	if dbErr := mysql.DB.Model(&model.ServerInvokeHistory{}).Create(&record).Error; dbErr != nil {
		logs.Logger.Err(dbErr).Int("task_id", t.record.Id).Msg("create invoke history")
	}
}

func invokeRecord(taskID int, serverName, promptID string, err error, duration time.Duration) model.ServerInvokeHistory {
	record := model.ServerInvokeHistory{
		TaskId:     taskID,
		ServerName: serverName,
		PromptId:   promptID,
		StatusCode: http.StatusOK,
		DurationMs: duration.Milliseconds(),
	}
	if err != nil {
		record.StatusCode = 0
		record.FailedRespBody = err.Error()
		var apiErr *comfy.APIError
		if errors.As(err, &apiErr) {
			record.StatusCode = apiErr.StatusCode
			record.FailedRespBody = apiErr.Body
		}
	}
	return record
}

func (t *generateTask) succeed(client *comfy.Client, images []comfy.GeneratedImage) error {
	for _, img := range images {
		if err := t.storeOutput(client, img); err != nil {
			return t.fail(err)
		}
	}
	update := model.Task{
		Status:     model.TaskStatusSucceed.String(),
		Progress:   100,
		Seed:       images[0].Seed,
		PromptId:   images[0].PromptID,
		ServerName: client.Name(),
	}
	return mysql.DB.Model(&model.Task{}).Where("id = ?", t.record.Id).Updates(&update).Error
}

// storeOutput persists one generated image plus a compressed jpeg variant.
func (t *generateTask) storeOutput(client *comfy.Client, img comfy.GeneratedImage) error {
	if !config.GConfig.StorageEnabled {
		return nil
	}
	normal, err := t.storeBytes(img.Data, model.OutputImageTypeNormal, "")
	if err != nil {
		return err
	}
	normal.ServerFilename = img.Ref.Filename
	normal.ServerName = client.Name()
	if err := t.createImageRecords(normal); err != nil {
		return err
	}

	compressed, err := tools.ConvertAndCompressToJPEG(img.Data, compressQuality)
	if err != nil {
		// webp/png 解码失败不影响原图入库
		logs.Logger.Warn().Err(err).Int("task_id", t.record.Id).Msg("compress output image")
		return nil
	}
	ratio := fmt.Sprintf("%.2f", float64(len(compressed))/float64(len(img.Data)))
	record, err := t.storeBytes(compressed, model.OutputImageTypeCompressed, ratio)
	if err != nil {
		return err
	}
	record.ServerFilename = img.Ref.Filename
	record.ServerName = client.Name()
	return t.createImageRecords(record)
}

func (t *generateTask) storeBytes(b []byte, imgType model.OutputImageType, ratio string) (*model.OutputImage, error) {
	record := &model.OutputImage{
		StorageSupplierName: config.GConfig.StorageSupplier,
		Type:                imgType.String(),
		CompressionRatio:    ratio,
	}
	switch consts.StorageSupplier(config.GConfig.StorageSupplier) {
	case consts.StorageLocal:
		fName, err := local.SaveImage(b, config.GConfig.StorageDir)
		if err != nil {
			return nil, err
		}
		record.Path = fName
	case consts.StorageAliOSS:
		key, err := ali.OssClient.UploadImage(b)
		if err != nil {
			return nil, err
		}
		record.Key = key
		duration, _ := time.ParseDuration(config.GConfig.URLExpires)
		url, err := ali.OssClient.URL(key, duration)
		if err != nil {
			return nil, err
		}
		record.URL = url
	default:
		return nil, fmt.Errorf("unknown storage supplier %s", config.GConfig.StorageSupplier)
	}
	return record, nil
}

func (t *generateTask) createImageRecords(record *model.OutputImage) error {
	if err := mysql.DB.Model(&model.OutputImage{}).Create(record).Error; err != nil {
		return err
	}
	taskImage := model.TaskImage{
		TaskId:  t.record.Id,
		ImageId: record.Id,
		Type:    model.TaskImageTypeOutput.String(),
	}
	return mysql.DB.Model(&model.TaskImage{}).Create(&taskImage).Error
}

func (t *generateTask) fail(cause error) error {
	update := map[string]any{
		"status":        model.TaskStatusFailed.String(),
		"failed_reason": cause.Error(),
	}
	err := mysql.DB.Model(&model.Task{}).Where("id = ?", t.record.Id).Updates(update).Error
	if err != nil {
		return err
	}
	return cause
}
