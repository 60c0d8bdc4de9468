package scanner

import (
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Filter determines whether files and directories are visited during a scan.
type Filter struct {
	skipDirs     map[string]bool
	skipPatterns []string
}

// NewFilter creates a Filter from directory names and doublestar patterns.
// Invalid patterns are dropped.
func NewFilter(skipDirectories, skipPatterns []string) *Filter {
	f := &Filter{skipDirs: make(map[string]bool, len(skipDirectories))}
	for _, name := range skipDirectories {
		name = strings.TrimSpace(name)
		if name != "" {
			f.skipDirs[name] = true
		}
	}
	for _, pattern := range skipPatterns {
		pattern = filepath.ToSlash(strings.TrimSpace(pattern))
		if pattern != "" && doublestar.ValidatePattern(pattern) {
			f.skipPatterns = append(f.skipPatterns, pattern)
		}
	}
	return f
}

// ShouldProcessDir returns true if the directory should be traversed.
// The name is matched exactly, wherever the directory appears.
func (f *Filter) ShouldProcessDir(name string) bool {
	return !f.skipDirs[name]
}

// ShouldProcessFile returns true if the root-relative path is not matched by
// any skip pattern.
func (f *Filter) ShouldProcessFile(relPath string) bool {
	relPath = filepath.ToSlash(relPath)
	for _, pattern := range f.skipPatterns {
		if matched, err := doublestar.Match(pattern, relPath); err == nil && matched {
			return false
		}
	}
	return true
}
