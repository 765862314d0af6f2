package local

import (
	"bytes"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/reusedev/comfy-hub/tools"
)

func SaveFile(f io.Reader, path string) error {
	dir := filepath.Dir(path)
	err := os.MkdirAll(dir, 0770)
	if err != nil {
		return err
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	defer file.Close()
	_, err = io.Copy(file, f)
	if err != nil {
		return err
	}
	return nil
}

// SaveImage stores image bytes under dir with a generated name, extension
// taken from the detected format. Returns the path relative to dir.
func SaveImage(b []byte, dir string) (string, error) {
	fName := uuid.New().String() + "." + tools.DetectImageType(b).String()
	err := SaveFile(bytes.NewReader(b), filepath.Join(dir, fName))
	if err != nil {
		return "", err
	}
	return fName, nil
}

func DeleteFile(path string) error {
	return os.Remove(path)
}
