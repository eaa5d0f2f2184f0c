package utils_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/temirov/docsnap/internal/utils"
)

// textFileName defines the name of the text file used in tests.
const textFileName = "sample.txt"

// TestDeduplicatePatterns verifies that DeduplicatePatterns removes duplicate patterns.
func TestDeduplicatePatterns(testingInstance *testing.T) {
	testCases := []struct {
		testName string
		patterns []string
		expected []string
	}{
		{
			testName: "removes duplicates",
			patterns: []string{"a", "b", "a"},
			expected: []string{"a", "b"},
		},
		{
			testName: "keeps unique",
			patterns: []string{"a", "b"},
			expected: []string{"a", "b"},
		},
	}
	for index, testCase := range testCases {
		actual := utils.DeduplicatePatterns(testCase.patterns)
		if len(actual) != len(testCase.expected) {
			testingInstance.Errorf("case %d (%s): expected length %d, got %d", index, testCase.testName, len(testCase.expected), len(actual))
			continue
		}
		for position, value := range actual {
			if value != testCase.expected[position] {
				testingInstance.Errorf("case %d (%s): expected %s at position %d, got %s", index, testCase.testName, testCase.expected[position], position, value)
			}
		}
	}
}

// TestRelativePathOrSelf verifies relative path calculations.
func TestRelativePathOrSelf(testingInstance *testing.T) {
	temporaryRoot := testingInstance.TempDir()
	subPath := filepath.Join(temporaryRoot, textFileName)
	creationError := os.WriteFile(subPath, []byte("content"), 0600)
	if creationError != nil {
		testingInstance.Fatalf("failed to create file: %v", creationError)
	}
	testCases := []struct {
		testName string
		fullPath string
		root     string
		expected string
	}{
		{
			testName: "root path returns dot",
			fullPath: temporaryRoot,
			root:     temporaryRoot,
			expected: ".",
		},
		{
			testName: "sub path returns relative",
			fullPath: subPath,
			root:     temporaryRoot,
			expected: textFileName,
		},
	}
	for index, testCase := range testCases {
		actual := utils.RelativePathOrSelf(testCase.fullPath, testCase.root)
		if actual != testCase.expected {
			testingInstance.Errorf("case %d (%s): expected %s, got %s", index, testCase.testName, testCase.expected, actual)
		}
	}
}

// TestPathSegments verifies path splitting and normalization.
func TestPathSegments(testingInstance *testing.T) {
	testCases := []struct {
		testName string
		path     string
		expected []string
	}{
		{testName: "nested path", path: "js/vendor/app.js", expected: []string{"js", "vendor", "app.js"}},
		{testName: "backslashes", path: `lib\mediapipe\face.js`, expected: []string{"lib", "mediapipe", "face.js"}},
		{testName: "dot prefix", path: "./index.html", expected: []string{"index.html"}},
		{testName: "root", path: ".", expected: []string{}},
	}
	for index, testCase := range testCases {
		actual := utils.PathSegments(testCase.path)
		if len(actual) != len(testCase.expected) {
			testingInstance.Errorf("case %d (%s): expected %v, got %v", index, testCase.testName, testCase.expected, actual)
			continue
		}
		for position, value := range actual {
			if value != testCase.expected[position] {
				testingInstance.Errorf("case %d (%s): expected %s at position %d, got %s", index, testCase.testName, testCase.expected[position], position, value)
			}
		}
	}
}

// TestFileExtension verifies extension extraction for ordinary and dot-prefixed names.
func TestFileExtension(testingInstance *testing.T) {
	testCases := []struct {
		testName string
		path     string
		expected string
	}{
		{testName: "simple", path: "index.html", expected: ".html"},
		{testName: "multiple dots", path: "css/heatmap.min.js", expected: ".js"},
		{testName: "dotfile without extension", path: ".html", expected: ""},
		{testName: "dotfile with extension", path: ".eslintrc.json", expected: ".json"},
		{testName: "no extension", path: "Makefile", expected: ""},
		{testName: "case preserved", path: "README.MD", expected: ".MD"},
	}
	for index, testCase := range testCases {
		actual := utils.FileExtension(testCase.path)
		if actual != testCase.expected {
			testingInstance.Errorf("case %d (%s): expected %q, got %q", index, testCase.testName, testCase.expected, actual)
		}
	}
}

// TestFormatGenerated verifies the report header timestamp layout.
func TestFormatGenerated(testingInstance *testing.T) {
	generatedAt := time.Date(2024, time.March, 5, 7, 8, 9, 0, time.Local)
	if formatted := utils.FormatGenerated(generatedAt); formatted != "2024-03-05 07:08:09" {
		testingInstance.Fatalf("unexpected timestamp %q", formatted)
	}
	if _, parseError := time.ParseInLocation(utils.GeneratedLayout, utils.FormatGenerated(time.Time{}), time.Local); parseError != nil {
		testingInstance.Fatalf("zero time must render the current time: %v", parseError)
	}
}
