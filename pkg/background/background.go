// Package background decodes reference plan images and fits them to the
// editor canvas.
//
// PNG, JPEG, GIF, BMP, TIFF and WebP are accepted. JPEG EXIF orientation is
// applied on decode so phone photos of paper plans come out upright.
package background

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/matzehuels/blockfit/pkg/errors"
)

// MaxBytes bounds the size of an uploaded background image.
const MaxBytes = 64 << 20

// Decode reads an image from r.
func Decode(r io.Reader) (image.Image, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxBytes+1))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDecodeFailed, err, "read image")
	}
	if len(data) > MaxBytes {
		return nil, errors.New(errors.ErrCodeInvalidInput, "image larger than %d MiB", MaxBytes>>20)
	}
	if len(data) == 0 {
		return nil, errors.New(errors.ErrCodeDecodeFailed, "empty image")
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDecodeFailed, err, "decode image")
	}
	return img, nil
}

// Load opens and decodes the image file at path.
func Load(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "background %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeDecodeFailed, err, "open %s", path)
	}
	defer f.Close()
	return Decode(f)
}

// Stretch scales img to exactly w x h, ignoring its aspect ratio, the same
// way the canvas draws it.
func Stretch(img image.Image, w, h int) *image.NRGBA {
	if w <= 0 || h <= 0 {
		return image.NewNRGBA(image.Rect(0, 0, 0, 0))
	}
	b := img.Bounds()
	if b.Dx() == w && b.Dy() == h {
		return imaging.Clone(img)
	}
	return imaging.Resize(img, w, h, imaging.Linear)
}
