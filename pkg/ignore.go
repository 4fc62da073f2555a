package dircachededup

import (
	"fmt"

	"github.com/bmatcuk/doublestar/v4"
)

// IgnoreManager decides which file names are never scan candidates.
// Patterns are doublestar globs matched against the file's base name.
type IgnoreManager struct {
	patterns []string
}

// NewIgnoreManager creates an ignore manager from glob patterns
func NewIgnoreManager(patterns []string) (*IgnoreManager, error) {
	im := &IgnoreManager{patterns: make([]string, 0, len(patterns))}
	for _, pattern := range patterns {
		if pattern == "" {
			continue
		}
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid exclude pattern: %s", pattern)
		}
		im.patterns = append(im.patterns, pattern)
	}
	return im, nil
}

// ShouldIgnore checks if a file name should be ignored. The sidecar and its
// temporary files are always ignored.
func (im *IgnoreManager) ShouldIgnore(name string) bool {
	if isSidecarName(name) {
		return true
	}
	if im == nil {
		return false
	}

	for _, pattern := range im.patterns {
		if ok, err := doublestar.Match(pattern, name); err == nil && ok {
			return true
		}
	}
	return false
}

// Patterns returns the active patterns
func (im *IgnoreManager) Patterns() []string {
	if im == nil {
		return nil
	}
	return append([]string(nil), im.patterns...)
}
