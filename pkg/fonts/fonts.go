// Package fonts provides the embedded label fonts used by the renderers.
//
// The Go font family ships inside golang.org/x/image, so labels render the
// same on every platform without system font lookup.
package fonts

import (
	"encoding/base64"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// FontFamily is the CSS font-family name used when the font is embedded in SVG.
const FontFamily = "Go"

// FallbackFontFamily provides fallback fonts for viewers that ignore @font-face.
const FallbackFontFamily = `'Go', 'Helvetica Neue', Arial, sans-serif`

var (
	parseOnce sync.Once
	regular   *truetype.Font
	bold      *truetype.Font
	parseErr  error

	facesMu sync.Mutex
	faces   = map[faceKey]font.Face{}
)

type faceKey struct {
	size float64
	bold bool
}

func parse() error {
	parseOnce.Do(func() {
		if regular, parseErr = truetype.Parse(goregular.TTF); parseErr != nil {
			return
		}
		bold, parseErr = truetype.Parse(gobold.TTF)
	})
	return parseErr
}

// RegularTTF returns the regular weight TTF data.
func RegularTTF() []byte {
	return goregular.TTF
}

// BoldTTF returns the bold weight TTF data.
func BoldTTF() []byte {
	return gobold.TTF
}

// Face returns a cached face of the given pixel size.
func Face(size float64, isBold bool) (font.Face, error) {
	if err := parse(); err != nil {
		return nil, err
	}
	facesMu.Lock()
	defer facesMu.Unlock()

	key := faceKey{size: size, bold: isBold}
	if f, ok := faces[key]; ok {
		return f, nil
	}
	ttf := regular
	if isBold {
		ttf = bold
	}
	f := truetype.NewFace(ttf, &truetype.Options{Size: size, DPI: 72, Hinting: font.HintingFull})
	faces[key] = f
	return f, nil
}

// Cache for base64-encoded fonts (computed once on first access).
var (
	boldBase64     string
	boldBase64Once sync.Once
)

// BoldTTFBase64 returns the bold TTF data as a base64 string for SVG
// @font-face embedding. The result is cached after first computation.
func BoldTTFBase64() string {
	boldBase64Once.Do(func() {
		boldBase64 = base64.StdEncoding.EncodeToString(gobold.TTF)
	})
	return boldBase64
}
