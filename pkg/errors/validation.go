package errors

import (
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"
)

// maxLabelRunes bounds block labels so they stay renderable.
const maxLabelRunes = 128

// ValidateLabel validates a block label typed by the user.
//
// Empty labels are allowed (the editor substitutes a default). Labels must
// not contain control characters and are limited to 128 runes.
func ValidateLabel(label string) error {
	if !utf8.ValidString(label) {
		return New(ErrCodeInvalidInput, "label is not valid UTF-8")
	}
	if utf8.RuneCountInString(label) > maxLabelRunes {
		return New(ErrCodeInvalidInput, "label too long (max %d characters)", maxLabelRunes)
	}
	for _, r := range label {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "label contains invalid control characters")
		}
	}
	return nil
}

// exportExtensions lists the output formats the exporters can write.
var exportExtensions = map[string]bool{".png": true, ".svg": true, ".json": true}

// ValidateOutputPath validates an export destination.
//
// Validation rules:
//   - Path cannot be empty
//   - No null bytes or control characters
//   - Extension must be .png, .svg or .json
func ValidateOutputPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "output path cannot be empty")
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "output path contains invalid characters")
		}
	}

	ext := strings.ToLower(filepath.Ext(path))
	if !exportExtensions[ext] {
		return New(ErrCodeInvalidFormat, "unsupported output extension %q (must be .png, .svg or .json)", ext)
	}

	return nil
}
