package imaging

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"golang.org/x/image/bmp"
)

func fill(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func createTestJPEG(w, h int) []byte {
	var buf bytes.Buffer
	jpeg.Encode(&buf, fill(w, h, color.RGBA{255, 0, 0, 255}), &jpeg.Options{Quality: 90})
	return buf.Bytes()
}

func createTestPNG(w, h int) []byte {
	var buf bytes.Buffer
	png.Encode(&buf, fill(w, h, color.RGBA{0, 0, 255, 255}))
	return buf.Bytes()
}

func createTestBMP(w, h int) []byte {
	var buf bytes.Buffer
	bmp.Encode(&buf, fill(w, h, color.RGBA{0, 255, 0, 255}))
	return buf.Bytes()
}

func TestCheckUpload(t *testing.T) {
	tests := []struct {
		name    string
		mime    string
		size    int64
		wantErr string
	}{
		{"photo.jpg", "image/jpeg", 1 << 20, ""},
		{"photo.jpg", "image/jpg", 1 << 20, ""},
		{"scan.bmp", "image/bmp", 2 << 20, ""},
		{"anim.gif", "image/gif", MaxUploadSize, ""},
		{"scan.bmp", "image/bmp", 11 << 20, "10MB"},
		{"doc.pdf", "application/pdf", 100, "Unsupported format"},
		{"vector.svg", "image/svg+xml", 100, "Unsupported format"},
		// Type is checked before size.
		{"huge.pdf", "application/pdf", 50 << 20, "Unsupported format"},
	}

	for _, tt := range tests {
		err := CheckUpload(tt.name, tt.mime, tt.size)
		if tt.wantErr == "" {
			if err != nil {
				t.Errorf("CheckUpload(%q, %q, %d) = %v, want nil", tt.name, tt.mime, tt.size, err)
			}
			continue
		}
		var uerr *UploadError
		if !errors.As(err, &uerr) {
			t.Errorf("CheckUpload(%q, %q, %d) = %v, want *UploadError", tt.name, tt.mime, tt.size, err)
			continue
		}
		if !strings.Contains(err.Error(), tt.wantErr) {
			t.Errorf("CheckUpload(%q) error %q does not mention %q", tt.name, err.Error(), tt.wantErr)
		}
		if !strings.HasPrefix(err.Error(), tt.name) {
			t.Errorf("CheckUpload(%q) error %q should name the file", tt.name, err.Error())
		}
	}
}

func TestProcessJPEG(t *testing.T) {
	data := createTestJPEG(100, 100)
	result, err := Process(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Process JPEG: %v", err)
	}
	if result.MIME != "image/jpeg" {
		t.Errorf("expected image/jpeg, got %s", result.MIME)
	}
	if len(result.Data) == 0 {
		t.Error("expected non-empty data")
	}
}

func TestProcessPNGStaysPNG(t *testing.T) {
	data := createTestPNG(100, 100)
	result, err := Process(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Process PNG: %v", err)
	}
	if result.MIME != "image/png" {
		t.Errorf("expected image/png, got %s", result.MIME)
	}
}

func TestProcessBMPReencodedAsPNG(t *testing.T) {
	data := createTestBMP(40, 30)
	result, err := Process(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Process BMP: %v", err)
	}
	if result.MIME != "image/png" {
		t.Errorf("expected image/png for BMP input, got %s", result.MIME)
	}

	img, err := png.Decode(bytes.NewReader(result.Data))
	if err != nil {
		t.Fatalf("decoding result: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 40 || b.Dy() != 30 {
		t.Errorf("expected 40x30, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestProcessGIF(t *testing.T) {
	var buf bytes.Buffer
	pal := image.NewPaletted(image.Rect(0, 0, 10, 10), []color.Color{color.Black, color.White})
	gif.Encode(&buf, pal, nil)

	result, err := Process(&buf)
	if err != nil {
		t.Fatalf("Process GIF: %v", err)
	}
	if result.MIME != "image/png" {
		t.Errorf("expected image/png for GIF input, got %s", result.MIME)
	}
}

func TestProcessDownscale(t *testing.T) {
	data := createTestJPEG(2400, 1200)
	result, err := Process(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Process large image: %v", err)
	}

	img, _, err := image.Decode(bytes.NewReader(result.Data))
	if err != nil {
		t.Fatalf("decoding result: %v", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() != MaxDimension || bounds.Dy() != MaxDimension/2 {
		t.Errorf("expected %dx%d, got %dx%d", MaxDimension, MaxDimension/2, bounds.Dx(), bounds.Dy())
	}
}

func TestProcessSmallImageNotUpscaled(t *testing.T) {
	data := createTestJPEG(50, 50)
	result, err := Process(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Process small image: %v", err)
	}

	img, _, err := image.Decode(bytes.NewReader(result.Data))
	if err != nil {
		t.Fatalf("decoding result: %v", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() != 50 || bounds.Dy() != 50 {
		t.Errorf("small image should not be resized: got %dx%d", bounds.Dx(), bounds.Dy())
	}
}

func TestProcessInvalidFormat(t *testing.T) {
	_, err := Process(bytes.NewReader([]byte("not an image")))
	var uerr *UploadError
	if !errors.As(err, &uerr) {
		t.Errorf("expected *UploadError for invalid format, got %v", err)
	}
}

func TestProcessOversized(t *testing.T) {
	data := make([]byte, MaxUploadSize+10)
	copy(data, createTestPNG(4, 4))
	_, err := Process(bytes.NewReader(data))
	if err == nil || !strings.Contains(err.Error(), "10MB") {
		t.Errorf("expected size error, got %v", err)
	}
}
