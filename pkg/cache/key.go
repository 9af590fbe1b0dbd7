package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Hash returns the hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// ExportKeyOpts lists the inputs of one export.
type ExportKeyOpts struct {
	Script     string `json:"script"`     // Hash of the script file
	Background string `json:"background"` // Hash of the background file, empty if none
	Settings   any    `json:"settings"`   // editor settings, JSON-encodable

	Format       string  `json:"format"`
	Scale        float64 `json:"scale,omitempty"`
	EmbedFont    bool    `json:"embed_font,omitempty"`
	NoBackground bool    `json:"no_background,omitempty"`
	Indent       bool    `json:"indent,omitempty"`
}

// ExportKey returns the cache key for an export. Equal inputs give equal
// keys.
func ExportKey(opts ExportKeyOpts) string {
	data, _ := json.Marshal(opts)
	return "export:" + Hash(data)
}
