package scanner

import (
	"path/filepath"
	"strings"
)

var imageExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
}

var videoExts = map[string]bool{
	".mp4": true,
	".mov": true,
}

var documentExts = map[string]bool{
	".md":       true,
	".markdown": true,
	".txt":      true,
	".pdf":      true,
}

// fingerprintFiles are captured only at the root, in this order.
var fingerprintFiles = []string{
	"package.json",
	"requirements.txt",
	"Dockerfile",
	"main.py",
	"index.html",
	"go.mod",
	"Cargo.toml",
	"pyproject.toml",
}

// ClassifyAsset reports the asset kind for a file name, if it is an asset.
func ClassifyAsset(name string) (AssetKind, bool) {
	ext := strings.ToLower(filepath.Ext(name))
	switch {
	case imageExts[ext]:
		return AssetImage, true
	case videoExts[ext]:
		return AssetVideo, true
	default:
		return "", false
	}
}

// IsAsset returns true if the file name carries a media asset extension.
func IsAsset(name string) bool {
	_, ok := ClassifyAsset(name)
	return ok
}

// IsContextDocument returns true if the file name is a context document.
func IsContextDocument(name string) bool {
	return documentExts[strings.ToLower(filepath.Ext(name))]
}

// FingerprintFiles returns the project marker file names.
func FingerprintFiles() []string {
	return append([]string(nil), fingerprintFiles...)
}

// truncateRunes returns at most n runes of s.
func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
