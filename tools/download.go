package tools

import (
	"fmt"
	"io"
	"mime"
	"net/http"
)

// GetOnlineImage downloads an image from a public or presigned URL. The file
// name comes from Content-Disposition when the server sends one.
func GetOnlineImage(url string) ([]byte, string, error) {
	resp, err := http.Get(url)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("download image: status code %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", err
	}
	var fName string
	if cd := resp.Header.Get("Content-Disposition"); cd != "" {
		if _, params, parseErr := mime.ParseMediaType(cd); parseErr == nil {
			fName = params["filename"]
		}
	}
	return data, fName, nil
}
