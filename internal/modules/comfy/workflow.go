package comfy

import (
	"fmt"
	"math/rand"

	"github.com/reusedev/comfy-hub/internal/consts"
)

// Node ids of the embedded text2image workflow, in ComfyUI API format.
const (
	NodeKSampler         = "3"
	NodeCheckpointLoader = "4"
	NodeVAEDecode        = "8"
	NodeSaveImage        = "9"
	NodePositivePrompt   = "16"
	NodeNegativePrompt   = "40"
	NodeLatentImage      = "53"
)

type Node struct {
	Inputs    map[string]any `json:"inputs"`
	ClassType string         `json:"class_type"`
}

// Workflow is a ComfyUI prompt graph keyed by node id.
type Workflow map[string]Node

// link references output `index` of node `id` as a node input.
func link(id string, index int) []any {
	return []any{id, index}
}

// ProgressFunc receives sampler progress, value counting up to max.
type ProgressFunc func(value, max int)

// Seed pins the sampler seed. Leave Text2ImageParams.Seed nil for a random one.
func Seed(v int64) *int64 {
	return &v
}

type Text2ImageParams struct {
	PositivePrompt string
	NegativePrompt string
	Checkpoint     string // checkpoint file name, e.g. "model.safetensors"
	Width          int
	Height         int
	Steps          int
	CFG            float64
	Seed           *int64 // nil means a random seed
	SamplerName    string
	Scheduler      string
	Denoise        float64
	BatchSize      int
	FilenamePrefix string

	OnProgress ProgressFunc
}

// Normalize fills defaults and draws the seed, so the caller can observe the
// value actually used.
func (p *Text2ImageParams) Normalize() error {
	if p.PositivePrompt == "" {
		return fmt.Errorf("positive prompt is required")
	}
	if p.Checkpoint == "" {
		return fmt.Errorf("checkpoint is required")
	}
	if p.Width == 0 {
		p.Width = consts.DefaultWidth
	}
	if p.Height == 0 {
		p.Height = consts.DefaultHeight
	}
	if p.Width < 0 || p.Height < 0 {
		return fmt.Errorf("invalid size: %dx%d", p.Width, p.Height)
	}
	if p.Steps == 0 {
		p.Steps = consts.DefaultSteps
	}
	if p.Steps < 0 {
		return fmt.Errorf("invalid steps: %d", p.Steps)
	}
	if p.CFG == 0 {
		p.CFG = consts.DefaultCFG
	}
	if p.CFG < 0 {
		return fmt.Errorf("invalid cfg: %f", p.CFG)
	}
	if p.SamplerName == "" {
		p.SamplerName = consts.DefaultSampler
	}
	if p.Scheduler == "" {
		p.Scheduler = consts.DefaultScheduler
	}
	if p.Denoise == 0 {
		p.Denoise = 1
	}
	if p.BatchSize == 0 {
		p.BatchSize = 1
	}
	if p.FilenamePrefix == "" {
		p.FilenamePrefix = consts.DefaultFilenamePrefix
	}
	if p.Seed == nil {
		seed := rand.Int63n(consts.MaxRandomSeed)
		p.Seed = &seed
	}
	return nil
}

// Text2Image builds the seven-node generation graph: checkpoint loader, two
// CLIP text encodes, empty latent, ksampler, vae decode, save image. A fresh
// Workflow is built per call so callers may mutate the result freely.
func Text2Image(p Text2ImageParams) (Workflow, error) {
	if err := p.Normalize(); err != nil {
		return nil, err
	}
	return Workflow{
		NodeCheckpointLoader: {
			ClassType: consts.ClassCheckpointLoader,
			Inputs: map[string]any{
				"ckpt_name": p.Checkpoint,
			},
		},
		NodePositivePrompt: {
			ClassType: consts.ClassCLIPTextEncode,
			Inputs: map[string]any{
				"text": p.PositivePrompt,
				"clip": link(NodeCheckpointLoader, 1),
			},
		},
		NodeNegativePrompt: {
			ClassType: consts.ClassCLIPTextEncode,
			Inputs: map[string]any{
				"text": p.NegativePrompt,
				"clip": link(NodeCheckpointLoader, 1),
			},
		},
		NodeLatentImage: {
			ClassType: consts.ClassEmptyLatentImage,
			Inputs: map[string]any{
				"width":      p.Width,
				"height":     p.Height,
				"batch_size": p.BatchSize,
			},
		},
		NodeKSampler: {
			ClassType: consts.ClassKSampler,
			Inputs: map[string]any{
				"seed":         *p.Seed,
				"steps":        p.Steps,
				"cfg":          p.CFG,
				"sampler_name": p.SamplerName,
				"scheduler":    p.Scheduler,
				"denoise":      p.Denoise,
				"model":        link(NodeCheckpointLoader, 0),
				"positive":     link(NodePositivePrompt, 0),
				"negative":     link(NodeNegativePrompt, 0),
				"latent_image": link(NodeLatentImage, 0),
			},
		},
		NodeVAEDecode: {
			ClassType: consts.ClassVAEDecode,
			Inputs: map[string]any{
				"samples": link(NodeKSampler, 0),
				"vae":     link(NodeCheckpointLoader, 2),
			},
		},
		NodeSaveImage: {
			ClassType: consts.ClassSaveImage,
			Inputs: map[string]any{
				"filename_prefix": p.FilenamePrefix,
				"images":          link(NodeVAEDecode, 0),
			},
		},
	}, nil
}
