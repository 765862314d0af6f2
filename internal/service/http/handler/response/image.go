package response

import jsoniter "github.com/json-iterator/go"

// GetImage is the image-lookup payload, also the cached form of a lookup.
type GetImage struct {
	Path string `json:"path"`
	URL  string `json:"url"`
}

func (g *GetImage) Encode() (string, error) {
	return jsoniter.MarshalToString(g)
}

// DecodeGetImage restores a cached lookup. Local-storage entries carry only a
// path, so the URL falls back to it.
func DecodeGetImage(data string) (*GetImage, error) {
	var result GetImage
	if err := jsoniter.UnmarshalFromString(data, &result); err != nil {
		return nil, err
	}
	if result.URL == "" {
		result.URL = result.Path
	}
	return &result, nil
}
