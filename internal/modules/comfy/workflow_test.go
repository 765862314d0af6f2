package comfy

import (
	"testing"

	"github.com/reusedev/comfy-hub/internal/consts"
)

func TestText2Image(t *testing.T) {
	t.Run("默认参数", func(t *testing.T) {
		wf, err := Text2Image(Text2ImageParams{
			PositivePrompt: "a cat",
			Checkpoint:     "model.safetensors",
		})
		if err != nil {
			t.Fatalf("构建失败: %v", err)
		}
		if len(wf) != 7 {
			t.Fatalf("期望7个节点, 实际 %d", len(wf))
		}
		sampler := wf[NodeKSampler]
		if sampler.ClassType != consts.ClassKSampler {
			t.Fatalf("节点 %s 类型错误: %s", NodeKSampler, sampler.ClassType)
		}
		if sampler.Inputs["steps"] != consts.DefaultSteps {
			t.Fatalf("期望默认 steps %d, 实际 %v", consts.DefaultSteps, sampler.Inputs["steps"])
		}
		if sampler.Inputs["cfg"] != consts.DefaultCFG {
			t.Fatalf("期望默认 cfg %v, 实际 %v", consts.DefaultCFG, sampler.Inputs["cfg"])
		}
		if sampler.Inputs["sampler_name"] != consts.DefaultSampler {
			t.Fatalf("期望默认 sampler %s, 实际 %v", consts.DefaultSampler, sampler.Inputs["sampler_name"])
		}
		latent := wf[NodeLatentImage]
		if latent.Inputs["width"] != consts.DefaultWidth || latent.Inputs["height"] != consts.DefaultHeight {
			t.Fatalf("期望默认尺寸 %dx%d, 实际 %vx%v", consts.DefaultWidth, consts.DefaultHeight,
				latent.Inputs["width"], latent.Inputs["height"])
		}
		seed, ok := sampler.Inputs["seed"].(int64)
		if !ok {
			t.Fatalf("seed 类型错误: %T", sampler.Inputs["seed"])
		}
		if seed < 0 || seed >= consts.MaxRandomSeed {
			t.Fatalf("随机 seed 越界: %d", seed)
		}
	})

	t.Run("固定seed和完整参数", func(t *testing.T) {
		seed := int64(42)
		wf, err := Text2Image(Text2ImageParams{
			PositivePrompt: "a futuristic neon-lit city street at night",
			NegativePrompt: "blurry, watermark",
			Checkpoint:     "playground-v2.5.safetensors",
			Width:          512,
			Height:         768,
			Steps:          25,
			CFG:            4.5,
			Seed:           &seed,
			SamplerName:    "dpmpp_2m",
			Scheduler:      "karras",
		})
		if err != nil {
			t.Fatalf("构建失败: %v", err)
		}
		sampler := wf[NodeKSampler]
		if sampler.Inputs["seed"] != int64(42) {
			t.Fatalf("期望 seed 42, 实际 %v", sampler.Inputs["seed"])
		}
		if sampler.Inputs["sampler_name"] != "dpmpp_2m" || sampler.Inputs["scheduler"] != "karras" {
			t.Fatalf("采样器参数未生效: %v / %v", sampler.Inputs["sampler_name"], sampler.Inputs["scheduler"])
		}
		if wf[NodeCheckpointLoader].Inputs["ckpt_name"] != "playground-v2.5.safetensors" {
			t.Fatalf("checkpoint 未生效: %v", wf[NodeCheckpointLoader].Inputs["ckpt_name"])
		}
		if wf[NodePositivePrompt].Inputs["text"] != "a futuristic neon-lit city street at night" {
			t.Fatalf("正向提示词未生效")
		}
		if wf[NodeNegativePrompt].Inputs["text"] != "blurry, watermark" {
			t.Fatalf("负向提示词未生效")
		}
	})

	t.Run("节点连线", func(t *testing.T) {
		wf, err := Text2Image(Text2ImageParams{PositivePrompt: "x", Checkpoint: "m"})
		if err != nil {
			t.Fatalf("构建失败: %v", err)
		}
		model, ok := wf[NodeKSampler].Inputs["model"].([]any)
		if !ok || len(model) != 2 || model[0] != NodeCheckpointLoader || model[1] != 0 {
			t.Fatalf("ksampler.model 连线错误: %v", wf[NodeKSampler].Inputs["model"])
		}
		vae, ok := wf[NodeVAEDecode].Inputs["vae"].([]any)
		if !ok || vae[0] != NodeCheckpointLoader || vae[1] != 2 {
			t.Fatalf("vae 连线错误: %v", wf[NodeVAEDecode].Inputs["vae"])
		}
		images, ok := wf[NodeSaveImage].Inputs["images"].([]any)
		if !ok || images[0] != NodeVAEDecode || images[1] != 0 {
			t.Fatalf("save_image 连线错误: %v", wf[NodeSaveImage].Inputs["images"])
		}
	})

	t.Run("非法参数", func(t *testing.T) {
		cases := []Text2ImageParams{
			{Checkpoint: "m"},                                          // no prompt
			{PositivePrompt: "x"},                                      // no checkpoint
			{PositivePrompt: "x", Checkpoint: "m", Width: -1},          // negative width
			{PositivePrompt: "x", Checkpoint: "m", Steps: -5},          // negative steps
			{PositivePrompt: "x", Checkpoint: "m", CFG: -1},            // negative cfg
			{PositivePrompt: "x", Checkpoint: "m", Height: -100},       // negative height
		}
		for _, p := range cases {
			if _, err := Text2Image(p); err == nil {
				t.Fatalf("期望参数校验失败, 但通过了: %+v", p)
			}
		}
	})

	t.Run("每次构建独立", func(t *testing.T) {
		p := Text2ImageParams{PositivePrompt: "x", Checkpoint: "m"}
		a, _ := Text2Image(p)
		b, _ := Text2Image(p)
		a[NodeCheckpointLoader].Inputs["ckpt_name"] = "mutated"
		if b[NodeCheckpointLoader].Inputs["ckpt_name"] == "mutated" {
			t.Fatalf("两次构建共享了节点输入")
		}
	})
}
