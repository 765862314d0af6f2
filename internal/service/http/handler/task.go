package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/reusedev/comfy-hub/config"
	"github.com/reusedev/comfy-hub/internal/components/mysql"
	"github.com/reusedev/comfy-hub/internal/modules/comfy"
	"github.com/reusedev/comfy-hub/internal/modules/dao"
	"github.com/reusedev/comfy-hub/internal/modules/logs"
	"github.com/reusedev/comfy-hub/internal/modules/model"
	"github.com/reusedev/comfy-hub/internal/modules/queue"
	"github.com/reusedev/comfy-hub/internal/service/http/handler/request"
	"github.com/reusedev/comfy-hub/internal/service/http/handler/response"
)

func Generate(c *gin.Context) {
	form := request.GenerateTask{}
	err := c.ShouldBind(&form)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.ParamError)
		return
	}
	if err := form.Valid(); err != nil {
		c.JSON(http.StatusBadRequest, response.ParamErrorWithMessage(err.Error()))
		return
	}
	params := paramsFromForm(form)
	if params.Checkpoint == "" {
		c.JSON(http.StatusBadRequest, response.ParamErrorWithMessage("checkpoint is required and no default is configured"))
		return
	}
	if err := params.Normalize(); err != nil {
		c.JSON(http.StatusBadRequest, response.ParamErrorWithMessage(err.Error()))
		return
	}

	taskRecord := model.Task{
		TaskGroupId:    form.GroupId,
		Prompt:         params.PositivePrompt,
		NegativePrompt: params.NegativePrompt,
		Checkpoint:     params.Checkpoint,
		Width:          params.Width,
		Height:         params.Height,
		Steps:          params.Steps,
		CFG:            params.CFG,
		Seed:           *params.Seed,
		Sampler:        params.SamplerName,
		Scheduler:      params.Scheduler,
		Status:         model.TaskStatusQueued.String(),
	}
	err = mysql.DB.Model(&model.Task{}).Create(&taskRecord).Error
	if err != nil {
		logs.Logger.Err(err).Msg("create task record")
		c.JSON(http.StatusInternalServerError, response.InternalError)
		return
	}
	queue.ImageTaskQueue <- &generateTask{record: taskRecord, params: params}
	c.JSON(http.StatusOK, response.SuccessWithData(taskRecord))
}

func paramsFromForm(form request.GenerateTask) comfy.Text2ImageParams {
	defaults := config.GConfig.Defaults
	params := comfy.Text2ImageParams{
		PositivePrompt: form.Prompt,
		NegativePrompt: form.NegativePrompt,
		Checkpoint:     form.Checkpoint,
		Width:          form.Width,
		Height:         form.Height,
		Steps:          form.Steps,
		CFG:            form.CFG,
		Seed:           form.Seed,
		SamplerName:    form.Sampler,
		Scheduler:      form.Scheduler,
	}
	if params.Checkpoint == "" {
		params.Checkpoint = defaults.Checkpoint
	}
	if params.Width == 0 {
		params.Width = defaults.Width
	}
	if params.Height == 0 {
		params.Height = defaults.Height
	}
	if params.Steps == 0 {
		params.Steps = defaults.Steps
	}
	if params.CFG == 0 {
		params.CFG = defaults.CFG
	}
	if params.SamplerName == "" {
		params.SamplerName = defaults.Sampler
	}
	if params.Scheduler == "" {
		params.Scheduler = defaults.Scheduler
	}
	return params
}

type taskWithImages struct {
	model.Task
	Images []model.OutputImage `json:"images"`
}

func TaskQuery(c *gin.Context) {
	form := request.TaskQuery{}
	err := c.ShouldBind(&form)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.ParamError)
		return
	}
	if err := form.Valid(); err != nil {
		c.JSON(http.StatusBadRequest, response.ParamErrorWithMessage(err.Error()))
		return
	}
	var tasks []model.Task
	if form.Id > 0 {
		task, err := dao.TaskById(form.Id)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.ParamError)
			return
		}
		tasks = append(tasks, task)
	} else {
		tasks, err = dao.TasksByGroupId(form.GroupId)
		if err != nil {
			logs.Logger.Err(err).Msg("query tasks by group")
			c.JSON(http.StatusInternalServerError, response.InternalError)
			return
		}
	}
	ret := make([]taskWithImages, 0, len(tasks))
	for _, task := range tasks {
		images, err := dao.OutputImagesByTaskId(task.Id)
		if err != nil {
			logs.Logger.Err(err).Int("task_id", task.Id).Msg("query task images")
			c.JSON(http.StatusInternalServerError, response.InternalError)
			return
		}
		ret = append(ret, taskWithImages{Task: task, Images: images})
	}
	c.JSON(http.StatusOK, response.SuccessWithData(ret))
}
