package render

const (
	fontHeightRatio = 0.6
	fontWidthRatio  = 0.85
	fontCharWidth   = 0.55
	fontSizeMin     = 8.0
	fontSizeMax     = 13.0
)

// LabelFontSize returns the label font size for a w x h block.
func LabelFontSize(w, h float64, label string) float64 {
	return fontSizeFor(w, h, len([]rune(label)))
}

func fontSizeFor(availWidth, availHeight float64, textLen int) float64 {
	n := max(1, textLen)
	byHeight := availHeight * fontHeightRatio
	byWidth := (availWidth * fontWidthRatio) / (float64(n) * fontCharWidth)
	size := min(fontSizeMax, min(byHeight, byWidth))
	if !(size >= fontSizeMin) {
		return fontSizeMin
	}
	return size
}

// TruncateLabel shortens label with ".." so it fits inside a block of width
// w at the given font size. At least three characters are always kept.
func TruncateLabel(label string, w, fontSize float64) string {
	runes := []rune(label)
	avail := w * fontWidthRatio / (fontSize * fontCharWidth)
	if !(avail < float64(len(runes))) {
		return label
	}
	maxChars := max(3, int(avail))
	if len(runes) <= maxChars {
		return label
	}
	return string(runes[:maxChars-2]) + ".."
}
