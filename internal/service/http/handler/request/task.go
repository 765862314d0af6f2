package request

import "fmt"

type GenerateTask struct {
	GroupId        string  `form:"group_id" json:"group_id"`
	Prompt         string  `form:"prompt" json:"prompt"`
	NegativePrompt string  `form:"negative_prompt" json:"negative_prompt"`
	Checkpoint     string  `form:"checkpoint" json:"checkpoint"`
	Width          int     `form:"width" json:"width"`
	Height         int     `form:"height" json:"height"`
	Steps          int     `form:"steps" json:"steps"`
	CFG            float64 `form:"cfg" json:"cfg"`
	Seed           *int64  `form:"seed" json:"seed"`
	Sampler        string  `form:"sampler" json:"sampler"`
	Scheduler      string  `form:"scheduler" json:"scheduler"`
}

func (g *GenerateTask) Valid() error {
	if g.Prompt == "" {
		return fmt.Errorf("prompt is required")
	}
	if g.Width < 0 || g.Height < 0 {
		return fmt.Errorf("invalid size: %dx%d", g.Width, g.Height)
	}
	if g.Steps < 0 {
		return fmt.Errorf("invalid steps: %d", g.Steps)
	}
	if g.CFG < 0 {
		return fmt.Errorf("invalid cfg: %f", g.CFG)
	}
	return nil
}

type TaskQuery struct {
	Id      int    `form:"id"`
	GroupId string `form:"group_id"`
}

func (t *TaskQuery) Valid() error {
	if t.Id <= 0 && t.GroupId == "" {
		return fmt.Errorf("must fill id or group_id")
	}
	return nil
}
