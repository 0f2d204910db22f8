// Package checksum computes content fingerprints for entries.
package checksum

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/starford/orgblog/internal/models"
)

// Sum returns the hex-encoded MD5 digest of data.
// MD5 is fine here: the digest only detects edits, it protects nothing.
func Sum(data []byte) string {
	h := md5.Sum(data)
	return hex.EncodeToString(h[:])
}

type fingerprint struct {
	Title   string         `yaml:"title"`
	Content []models.Block `yaml:"content"`
}

// Entry fingerprints the title and the structured content of an entry.
// The raw source is not part of it, so markup reshuffling that parses to the
// same blocks keeps the checksum.
func Entry(title string, content []models.Block) (string, error) {
	data, err := yaml.Marshal(fingerprint{Title: title, Content: content})
	if err != nil {
		return "", fmt.Errorf("checksum: encode content: %w", err)
	}
	return Sum(data), nil
}
