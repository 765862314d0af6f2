package dao

import (
	"github.com/reusedev/comfy-hub/internal/components/mysql"
	"github.com/reusedev/comfy-hub/internal/modules/model"
)

func TaskById(id int) (model.Task, error) {
	var task model.Task
	err := mysql.DB.Model(&model.Task{}).Where("id = ?", id).First(&task).Error
	if err != nil {
		return model.Task{}, err
	}
	return task, nil
}

func TasksByGroupId(groupId string) ([]model.Task, error) {
	var tasks []model.Task
	err := mysql.DB.Model(&model.Task{}).Where("task_group_id = ?", groupId).Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// UnfinishedTasks returns tasks interrupted by a restart, to be requeued.
func UnfinishedTasks() ([]model.Task, error) {
	var tasks []model.Task
	err := mysql.DB.Model(&model.Task{}).
		Where("status IN ?", []string{model.TaskStatusQueued.String(), model.TaskStatusRunning.String()}).
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

func OutputImagesByTaskId(taskId int) ([]model.OutputImage, error) {
	var imageIds []int
	err := mysql.DB.Model(&model.TaskImage{}).
		Where("task_id = ? AND type = ?", taskId, model.TaskImageTypeOutput.String()).
		Pluck("image_id", &imageIds).Error
	if err != nil {
		return nil, err
	}
	if len(imageIds) == 0 {
		return nil, nil
	}
	var images []model.OutputImage
	err = mysql.DB.Model(&model.OutputImage{}).Where("id IN ?", imageIds).Find(&images).Error
	if err != nil {
		return nil, err
	}
	return images, nil
}
