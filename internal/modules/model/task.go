package model

import "time"

type Task struct {
	Id             int       `json:"id" gorm:"primaryKey"`
	TaskGroupId    string    `json:"task_group_id" gorm:"column:task_group_id;type:varchar(50)"`
	Prompt         string    `json:"prompt" gorm:"column:prompt;type:varchar(5000)"`
	NegativePrompt string    `json:"negative_prompt" gorm:"column:negative_prompt;type:varchar(5000)"`
	Checkpoint     string    `json:"checkpoint" gorm:"column:checkpoint;type:varchar(200)"`
	Width          int       `json:"width" gorm:"column:width;type:int"`
	Height         int       `json:"height" gorm:"column:height;type:int"`
	Steps          int       `json:"steps" gorm:"column:steps;type:int"`
	CFG            float64   `json:"cfg" gorm:"column:cfg;type:float"`
	Seed           int64     `json:"seed" gorm:"column:seed;type:bigint"`
	Sampler        string    `json:"sampler" gorm:"column:sampler;type:varchar(50)"`
	Scheduler      string    `json:"scheduler" gorm:"column:scheduler;type:varchar(50)"`
	PromptId       string    `json:"prompt_id" gorm:"column:prompt_id;type:varchar(50)"`
	ServerName     string    `json:"server_name" gorm:"column:server_name;type:varchar(50)"`
	Status         string    `json:"status" gorm:"column:status;type:enum('queued', 'running', 'succeed', 'failed')"`
	FailedReason   string    `json:"failed_reason" gorm:"column:failed_reason;type:varchar(1000)"`
	Progress       float32   `json:"progress" gorm:"column:progress;type:float"`
	CreatedAt      time.Time `json:"created_at" gorm:"column:created_at;type:datetime;not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt      time.Time `json:"updated_at" gorm:"column:updated_at;type:datetime;not null;default:CURRENT_TIMESTAMP"`
}

type TaskStatus string

const (
	TaskStatusQueued  TaskStatus = "queued"
	TaskStatusRunning TaskStatus = "running"
	TaskStatusSucceed TaskStatus = "succeed"
	TaskStatusFailed  TaskStatus = "failed"
)

func (t TaskStatus) String() string {
	return string(t)
}

// ServerInvokeHistory records one attempt against one backend, successful or
// not, so slow or flaky servers show up in the data.
type ServerInvokeHistory struct {
	Id             int       `json:"id" gorm:"primaryKey"`
	TaskId         int       `json:"task_id" gorm:"column:task_id;type:int"`
	ServerName     string    `json:"server_name" gorm:"column:server_name;type:varchar(50)"`
	PromptId       string    `json:"prompt_id" gorm:"column:prompt_id;type:varchar(50)"`
	StatusCode     int       `json:"status_code" gorm:"column:status_code;type:int"`
	FailedRespBody string    `json:"failed_resp_body" gorm:"column:failed_resp_body;type:varchar(2000)"`
	DurationMs     int64     `json:"duration_ms" gorm:"column:duration_ms;type:int"`
	CreatedAt      time.Time `json:"created_at" gorm:"column:created_at;type:datetime;not null;default:CURRENT_TIMESTAMP"`
}

type TaskImage struct {
	TaskId  int    `json:"task_id" gorm:"column:task_id;type:int;primaryKey"`
	ImageId int    `json:"image_id" gorm:"column:image_id;type:int;primaryKey"`
	Type    string `json:"type" gorm:"column:type;type:enum('input', 'output')"`
}

type TaskImageType string

const (
	TaskImageTypeInput  TaskImageType = "input"
	TaskImageTypeOutput TaskImageType = "output"
)

func (t TaskImageType) String() string {
	return string(t)
}
