package tools

import "testing"

func TestDetectImageType(t *testing.T) {
	cases := []struct {
		name string
		data []byte
		want ImageType
	}{
		{"png", []byte("\x89PNG\r\n\x1a\n...."), ImageTypePNG},
		{"jpeg", []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00}, ImageTypeJPEG},
		{"webp", []byte("RIFF\x00\x00\x00\x00WEBPVP8 "), ImageTypeWEBP},
		{"unknown", []byte("GIF89a"), ImageTypeUnknown},
		{"empty", nil, ImageTypeUnknown},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := DetectImageType(c.data); got != c.want {
				t.Fatalf("expected %s, got %s", c.want, got)
			}
		})
	}
}

func TestFullURL(t *testing.T) {
	cases := []struct {
		base, path, want string
	}{
		{"http://127.0.0.1:8188", "/prompt", "http://127.0.0.1:8188/prompt"},
		{"http://127.0.0.1:8188/", "prompt", "http://127.0.0.1:8188/prompt"},
		{"http://127.0.0.1:8188", "", "http://127.0.0.1:8188"},
		{"", "/prompt", ""},
	}
	for _, c := range cases {
		if got := FullURL(c.base, c.path); got != c.want {
			t.Fatalf("FullURL(%q, %q) = %q, want %q", c.base, c.path, got, c.want)
		}
	}
}
