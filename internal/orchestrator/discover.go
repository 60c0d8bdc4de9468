package orchestrator

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// maxSuggestions caps DiscoverSystemRoots.
const maxSuggestions = 10

// projectMarkers are entries whose presence makes a directory look like a
// project worth learning from.
var projectMarkers = []string{"README.md", "package.json", ".git"}

// DiscoverSystemRoots suggests project directories under the home directory,
// Documents and Desktop that are not yet discovery roots. It has no side
// effects.
func (o *Orchestrator) DiscoverSystemRoots() []string {
	if o.home == "" {
		return []string{}
	}

	tracked := o.Roots()
	var found []string
	for _, base := range []string{
		o.home,
		filepath.Join(o.home, "Documents"),
		filepath.Join(o.home, "Desktop"),
	} {
		entries, err := os.ReadDir(base)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
				continue
			}
			dir := filepath.Join(base, entry.Name())
			if slices.Contains(tracked, dir) || slices.Contains(found, dir) {
				continue
			}
			if looksLikeProject(dir) {
				found = append(found, dir)
			}
		}
	}

	slices.Sort(found)
	if len(found) > maxSuggestions {
		found = found[:maxSuggestions]
	}
	if found == nil {
		found = []string{}
	}
	return found
}

func looksLikeProject(dir string) bool {
	for _, marker := range projectMarkers {
		if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
			return true
		}
	}
	return false
}
