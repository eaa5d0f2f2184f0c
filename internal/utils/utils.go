// Package utils contains general helper functions used across docsnap.
package utils

import (
	"path/filepath"
	"strings"
)

// GitDirectoryName is the name of the Git repository directory.
const GitDirectoryName = ".git"

const (
	pathSegmentSeparator = "/"
	extensionSeparator   = "."
)

// DeduplicatePatterns removes duplicate patterns from a slice while preserving order.
// The first occurrence of each unique pattern is kept.
func DeduplicatePatterns(patterns []string) []string {
	encounteredPatterns := make(map[string]struct{})
	result := make([]string, 0, len(patterns))
	for _, pattern := range patterns {
		if _, exists := encounteredPatterns[pattern]; !exists {
			encounteredPatterns[pattern] = struct{}{}
			result = append(result, pattern)
		}
	}
	return result
}

// RelativePathOrSelf calculates the relative path from root to fullPath.
// Returns the cleaned fullPath if relative calculation fails.
// Returns "." if fullPath and root resolve to the same directory.
func RelativePathOrSelf(fullPath, root string) string {
	cleanPath := filepath.Clean(fullPath)
	absoluteRoot, err := filepath.Abs(root)
	if err != nil {
		return cleanPath
	}
	cleanAbsoluteRoot := filepath.Clean(absoluteRoot)

	if cleanPath == cleanAbsoluteRoot {
		return "."
	}

	relativePath, relErr := filepath.Rel(cleanAbsoluteRoot, cleanPath)
	if relErr != nil {
		return cleanPath
	}
	return filepath.ToSlash(relativePath)
}

// PathSegments splits a path into its non-empty forward-slash segments.
// Backslashes are normalized first so Windows-style paths split the same way.
func PathSegments(path string) []string {
	normalizedPath := strings.ReplaceAll(filepath.ToSlash(path), "\\", pathSegmentSeparator)
	rawSegments := strings.Split(normalizedPath, pathSegmentSeparator)
	segments := make([]string, 0, len(rawSegments))
	for _, segment := range rawSegments {
		if segment == "" || segment == "." {
			continue
		}
		segments = append(segments, segment)
	}
	return segments
}

// FileExtension returns the extension of the base name of path including the dot.
// Leading dots are not treated as extension separators, so ".html" has no
// extension while "bundle.min.js" has ".js".
func FileExtension(path string) string {
	baseName := filepath.Base(path)
	trimmedName := strings.TrimLeft(baseName, extensionSeparator)
	separatorIndex := strings.LastIndex(trimmedName, extensionSeparator)
	if separatorIndex < 0 {
		return ""
	}
	return trimmedName[separatorIndex:]
}
