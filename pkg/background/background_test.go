package background

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/image/bmp"

	"github.com/matzehuels/blockfit/pkg/errors"
)

func checker(w, h int) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			if (x+y)%2 == 0 {
				img.Set(x, y, color.NRGBA{200, 30, 30, 255})
			} else {
				img.Set(x, y, color.NRGBA{30, 30, 200, 255})
			}
		}
	}
	return img
}

func TestDecodeFormats(t *testing.T) {
	src := checker(8, 6)
	encoders := map[string]func(*bytes.Buffer) error{
		"png":  func(b *bytes.Buffer) error { return png.Encode(b, src) },
		"jpeg": func(b *bytes.Buffer) error { return jpeg.Encode(b, src, nil) },
		"bmp":  func(b *bytes.Buffer) error { return bmp.Encode(b, src) },
	}
	for name, enc := range encoders {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := enc(&buf); err != nil {
				t.Fatalf("encode: %v", err)
			}
			img, err := Decode(&buf)
			if err != nil {
				t.Fatalf("Decode() error: %v", err)
			}
			if got := img.Bounds().Size(); got != (image.Point{8, 6}) {
				t.Errorf("Decode() size = %v, want 8x6", got)
			}
		})
	}
}

func TestDecodeFailure(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty", ""},
		{"garbage", "definitely not an image"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.data))
			if !errors.Is(err, errors.ErrCodeDecodeFailed) {
				t.Errorf("Decode() error = %v, want code %s", err, errors.ErrCodeDecodeFailed)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plan.png")
	var buf bytes.Buffer
	if err := png.Encode(&buf, checker(4, 4)); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err != nil {
		t.Errorf("Load() error: %v", err)
	}
	if _, err := Load(filepath.Join(dir, "missing.png")); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("Load(missing) error = %v, want code %s", err, errors.ErrCodeFileNotFound)
	}
}

func TestStretch(t *testing.T) {
	img := checker(10, 5)
	got := Stretch(img, 40, 40)
	if got.Bounds().Dx() != 40 || got.Bounds().Dy() != 40 {
		t.Errorf("Stretch() size = %v, want 40x40", got.Bounds().Size())
	}
	same := Stretch(img, 10, 5)
	if same.Bounds().Size() != (image.Point{10, 5}) {
		t.Errorf("Stretch(same) size = %v, want 10x5", same.Bounds().Size())
	}
	if !Stretch(img, 0, 10).Bounds().Empty() {
		t.Error("Stretch(0, 10) should be empty")
	}
}
