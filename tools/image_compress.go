package tools

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	"golang.org/x/image/webp"
)

func ConvertAndCompressToJPEG(srcData []byte, quality int) ([]byte, error) {
	imageType := DetectImageType(srcData)
	var img image.Image
	var err error
	switch imageType {
	case ImageTypePNG:
		img, err = png.Decode(bytes.NewReader(srcData))
	case ImageTypeJPEG:
		img, err = jpeg.Decode(bytes.NewReader(srcData))
	case ImageTypeWEBP:
		img, err = webp.Decode(bytes.NewReader(srcData))
	default:
		return nil, fmt.Errorf("unsupported image type: %s", imageType)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	options := jpeg.Options{
		Quality: quality,
	}
	ret := new(bytes.Buffer)
	err = jpeg.Encode(ret, img, &options)
	if err != nil {
		return nil, fmt.Errorf("failed to encode JPEG: %w", err)
	}
	return ret.Bytes(), nil
}
