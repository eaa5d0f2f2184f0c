// Package classifier decides which directories are pruned and how each file is treated in a report.
package classifier

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	gitignore "github.com/monochromegane/go-gitignore"

	"github.com/temirov/docsnap/internal/config"
	"github.com/temirov/docsnap/internal/types"
	"github.com/temirov/docsnap/internal/utils"
)

const (
	hiddenEntryPrefix = "."
	// GitignoreFileName is the ignore file read from the project root when enabled.
	GitignoreFileName = ".gitignore"

	errorLoadGitignoreFormat = "could not parse %s: %w"
)

// Classifier holds the fixed inclusion and exclusion sets of one report run.
// All methods are pure functions of their path argument.
type Classifier struct {
	excludedDirectories map[string]struct{}
	excludedFiles       map[string]struct{}
	opaqueDirectory     string
	categories          []types.Category
	categoryByExtension map[string]int
	reportRelativePath  string
	rootDirectory       string
	ignoreMatcher       gitignore.IgnoreMatcher
}

// New builds a Classifier from the resolved configuration.
func New(configuration config.ReportConfiguration) *Classifier {
	classifier := &Classifier{
		excludedDirectories: toSet(configuration.ExcludedDirectories),
		excludedFiles:       toSet(configuration.ExcludedFiles),
		opaqueDirectory:     configuration.OpaqueDirectory,
		categories:          configuration.Categories,
		categoryByExtension: make(map[string]int),
		reportRelativePath:  reportRelativePath(configuration),
		rootDirectory:       absoluteOrSelf(configuration.RootDirectory),
	}
	for categoryIndex, category := range configuration.Categories {
		for _, extension := range category.Extensions {
			if _, exists := classifier.categoryByExtension[extension]; !exists {
				classifier.categoryByExtension[extension] = categoryIndex
			}
		}
	}
	return classifier
}

// LoadGitignore reads the .gitignore at the project root. Ignored directories are
// then pruned and ignored files omitted. A missing file is not an error.
func (classifier *Classifier) LoadGitignore() error {
	gitignorePath := filepath.Join(classifier.rootDirectory, GitignoreFileName)
	matcher, loadError := gitignore.NewGitIgnore(gitignorePath, classifier.rootDirectory)
	if loadError != nil {
		if os.IsNotExist(loadError) {
			return nil
		}
		return fmt.Errorf(errorLoadGitignoreFormat, gitignorePath, loadError)
	}
	classifier.ignoreMatcher = matcher
	return nil
}

// IsExcludedDirectory reports whether the final segment of path names an excluded or hidden directory,
// or whether the loaded .gitignore ignores it. Relative paths are taken from the project root.
func (classifier *Classifier) IsExcludedDirectory(path string) bool {
	directoryName := filepath.Base(path)
	if _, excluded := classifier.excludedDirectories[directoryName]; excluded {
		return true
	}
	if strings.HasPrefix(directoryName, hiddenEntryPrefix) {
		return true
	}
	return classifier.isGitignored(path, true)
}

// IsExcludedFile reports whether the base name of path is a vendored library excluded by name.
func (classifier *Classifier) IsExcludedFile(path string) bool {
	_, excluded := classifier.excludedFiles[filepath.Base(path)]
	return excluded
}

// IsIncludableFile reports whether path has an allowed extension and is not excluded by name.
// Exclusion by name is checked first.
func (classifier *Classifier) IsIncludableFile(path string) bool {
	if classifier.IsExcludedFile(path) {
		return false
	}
	_, allowed := classifier.categoryByExtension[utils.FileExtension(path)]
	return allowed
}

// IsInOpaqueSubtree reports whether any segment of relativePath equals the opaque directory name.
// The path must be relative to the project root so that directories above the root never match.
func (classifier *Classifier) IsInOpaqueSubtree(relativePath string) bool {
	for _, segment := range utils.PathSegments(relativePath) {
		if segment == classifier.opaqueDirectory {
			return true
		}
	}
	return false
}

// Classify returns the treatment of the file at relativePath.
// The report file and gitignored files are always omitted. Otherwise opaque membership wins
// over name exclusion, which wins over extension inclusion.
func (classifier *Classifier) Classify(relativePath string) types.Classification {
	switch {
	case classifier.IsReportFile(relativePath), classifier.isGitignored(relativePath, false):
		return types.ClassificationOmitted
	case classifier.IsInOpaqueSubtree(relativePath):
		return types.ClassificationOpaque
	case classifier.IsExcludedFile(relativePath):
		return types.ClassificationExternal
	case classifier.IsIncludableFile(relativePath):
		return types.ClassificationIncludable
	default:
		return types.ClassificationOmitted
	}
}

// IsReportFile reports whether relativePath is the report being generated.
func (classifier *Classifier) IsReportFile(relativePath string) bool {
	return classifier.reportRelativePath != "" && filepath.ToSlash(relativePath) == classifier.reportRelativePath
}

// CategoryIndex returns the position of the category owning the extension of path.
func (classifier *Classifier) CategoryIndex(path string) (int, bool) {
	categoryIndex, found := classifier.categoryByExtension[utils.FileExtension(path)]
	return categoryIndex, found
}

// Categories returns the configured categories in declaration order.
func (classifier *Classifier) Categories() []types.Category {
	return classifier.categories
}

func (classifier *Classifier) isGitignored(path string, isDirectory bool) bool {
	if classifier.ignoreMatcher == nil {
		return false
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(classifier.rootDirectory, filepath.FromSlash(path))
	}
	return classifier.ignoreMatcher.Match(path, isDirectory)
}

func absoluteOrSelf(path string) string {
	absolutePath, absoluteError := filepath.Abs(path)
	if absoluteError != nil {
		return path
	}
	return absolutePath
}

func reportRelativePath(configuration config.ReportConfiguration) string {
	if configuration.OutputFileName == "" {
		return ""
	}
	absoluteRoot, rootError := filepath.Abs(configuration.RootDirectory)
	if rootError != nil {
		return ""
	}
	absoluteOutput, outputError := filepath.Abs(configuration.OutputPath())
	if outputError != nil {
		return ""
	}
	return utils.RelativePathOrSelf(absoluteOutput, absoluteRoot)
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, value := range values {
		set[value] = struct{}{}
	}
	return set
}
