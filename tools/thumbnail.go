package tools

import (
	"bytes"
	"io"

	"github.com/disintegration/imaging"
)

func ThumbnailBytes(b []byte, ratio float64, format imaging.Format) ([]byte, error) {
	r, err := Thumbnail(bytes.NewReader(b), ratio, format)
	if err != nil {
		return nil, err
	}
	return io.ReadAll(r)
}

func Thumbnail(r io.Reader, ratio float64, format imaging.Format) (io.Reader, error) {
	img, err := imaging.Decode(r)
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	width := int(float64(b.Dx()) * ratio)
	height := int(float64(b.Dy()) * ratio)
	thumbnail := imaging.Thumbnail(img, width, height, imaging.Lanczos)
	if thumbnail == nil {
		return nil, io.ErrUnexpectedEOF
	}
	var buf bytes.Buffer
	err = imaging.Encode(&buf, thumbnail, format)
	if err != nil {
		return nil, err
	}
	return &buf, nil
}
