package consts

// ComfyUI node class types used by the embedded text2image workflow.
const (
	ClassCheckpointLoader = "CheckpointLoaderSimple"
	ClassCLIPTextEncode   = "CLIPTextEncode"
	ClassEmptyLatentImage = "EmptySD3LatentImage"
	ClassKSampler         = "KSampler"
	ClassVAEDecode        = "VAEDecode"
	ClassSaveImage        = "SaveImage"
)

const (
	DefaultWidth          = 1024
	DefaultHeight         = 1024
	DefaultSteps          = 20
	DefaultCFG            = 4.0
	DefaultSampler        = "euler"
	DefaultScheduler      = "sgm_uniform"
	DefaultFilenamePrefix = "ComfyUI_API"

	MaxRandomSeed = 1_000_000_000
)

type StorageSupplier string

const (
	StorageLocal  StorageSupplier = "local"
	StorageAliOSS StorageSupplier = "ali_oss"
)

func (s StorageSupplier) String() string {
	return string(s)
}
