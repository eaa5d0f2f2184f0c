package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/temirov/docsnap/internal/types"
)

const (
	configurationFileType = "yaml"

	// DefaultOutputFileName is the report written into the project root.
	DefaultOutputFileName = "project_documentation.txt"
	// DefaultProjectName labels the root line of the directory tree.
	DefaultProjectName = "webgazer-lab"
	// DefaultTitle is the project title written into the report header.
	DefaultTitle = "WEBGAZER LAB"
	// DefaultOpaqueDirectory names the subtree whose files are listed but never dumped.
	DefaultOpaqueDirectory = "mediapipe"
	// DefaultFallbackEncoding decodes files that are not valid UTF-8.
	DefaultFallbackEncoding = "latin-1"
	// DefaultTokenizerModel is used when token counting is enabled without a model.
	DefaultTokenizerModel = "gpt-4o"

	errorEmptyCategoriesMessage     = "at least one category is required"
	errorEmptyOpaqueDirectoryFormat = "opaque directory name must not be empty"
	errorCategoryNameFormat         = "category %d has no name"
	errorCategoryExtensionsFormat   = "category %q has no extensions"
	errorExtensionFormat            = "category %q: extension %q must start with '.'"
	errorDuplicateExtensionFormat   = "extension %q is assigned to both %q and %q"
	errorEmptyOutputMessage         = "output file name must not be empty"
)

// ReportConfiguration is the fully resolved configuration of one report run.
// It is built once at start-up and passed explicitly to every component.
type ReportConfiguration struct {
	RootDirectory       string
	OutputFileName      string
	ProjectName         string
	Title               string
	Organization        []string
	ExcludedDirectories []string
	ExcludedFiles       []string
	OpaqueDirectory     string
	RespectGitignore    bool
	Categories          []types.Category
	FallbackEncoding    string
	TokensEnabled       bool
	TokenModel          string
	Clipboard           bool
}

// DefaultReportConfiguration returns the built-in configuration.
func DefaultReportConfiguration() ReportConfiguration {
	return ReportConfiguration{
		RootDirectory:  ".",
		OutputFileName: DefaultOutputFileName,
		ProjectName:    DefaultProjectName,
		Title:          DefaultTitle,
		Organization: []string{
			"Eye Tracking Practice - UX/UI Laboratory",
			"Universidad Internacional SEK (UISEK) Ecuador",
		},
		ExcludedDirectories: []string{
			"node_modules",
			".git",
			"__pycache__",
			"dist",
			"build",
			".vscode",
			".idea",
		},
		ExcludedFiles: []string{
			"webgazer.js",
			"heatmap.js",
			"heatmap.min.js",
		},
		OpaqueDirectory: DefaultOpaqueDirectory,
		Categories: []types.Category{
			{Name: "HTML", Extensions: []string{".html"}},
			{Name: "CSS", Extensions: []string{".css"}},
			{Name: "JavaScript", Extensions: []string{".js"}},
			{Name: "Markdown", Extensions: []string{".md"}},
			{Name: "Configuration", Extensions: []string{".json", ".py"}},
		},
		FallbackEncoding: DefaultFallbackEncoding,
		TokenModel:       DefaultTokenizerModel,
	}
}

// Resolve overlays the loaded file configuration onto the built-in defaults.
func (config ApplicationConfiguration) Resolve(rootDirectory string) ReportConfiguration {
	resolved := DefaultReportConfiguration()
	if rootDirectory != "" {
		resolved.RootDirectory = rootDirectory
	}
	if config.Output != "" {
		resolved.OutputFileName = config.Output
	}
	if config.Project.Name != "" {
		resolved.ProjectName = config.Project.Name
	}
	if config.Project.Title != "" {
		resolved.Title = config.Project.Title
	}
	if config.Project.Organization != nil {
		resolved.Organization = append([]string{}, config.Project.Organization...)
	}
	if config.Paths.ExcludeDirectories != nil {
		resolved.ExcludedDirectories = append([]string{}, config.Paths.ExcludeDirectories...)
	}
	if config.Paths.ExcludeFiles != nil {
		resolved.ExcludedFiles = append([]string{}, config.Paths.ExcludeFiles...)
	}
	if config.Paths.OpaqueDirectory != "" {
		resolved.OpaqueDirectory = config.Paths.OpaqueDirectory
	}
	if config.Paths.Gitignore != nil {
		resolved.RespectGitignore = *config.Paths.Gitignore
	}
	if config.Categories != nil {
		resolved.Categories = cloneCategories(config.Categories)
	}
	if config.Encoding.Fallback != "" {
		resolved.FallbackEncoding = config.Encoding.Fallback
	}
	if config.Tokens.Enabled != nil {
		resolved.TokensEnabled = *config.Tokens.Enabled
	}
	if config.Tokens.Model != "" {
		resolved.TokenModel = config.Tokens.Model
	}
	if config.Clipboard != nil {
		resolved.Clipboard = *config.Clipboard
	}
	return resolved
}

// OutputPath returns the report location. A relative output file name is resolved against the root directory.
func (config ReportConfiguration) OutputPath() string {
	if filepath.IsAbs(config.OutputFileName) {
		return filepath.Clean(config.OutputFileName)
	}
	return filepath.Join(config.RootDirectory, config.OutputFileName)
}

// Validate reports configuration errors that would break the report invariants.
// Every extension must belong to exactly one category so that the summary total
// always equals the sum of the category counts.
func (config ReportConfiguration) Validate() error {
	if strings.TrimSpace(config.OutputFileName) == "" {
		return errors.New(errorEmptyOutputMessage)
	}
	if strings.TrimSpace(config.OpaqueDirectory) == "" {
		return errors.New(errorEmptyOpaqueDirectoryFormat)
	}
	if len(config.Categories) == 0 {
		return errors.New(errorEmptyCategoriesMessage)
	}
	owners := make(map[string]string)
	for index, category := range config.Categories {
		if strings.TrimSpace(category.Name) == "" {
			return fmt.Errorf(errorCategoryNameFormat, index)
		}
		if len(category.Extensions) == 0 {
			return fmt.Errorf(errorCategoryExtensionsFormat, category.Name)
		}
		for _, extension := range category.Extensions {
			if !strings.HasPrefix(extension, ".") || len(extension) < 2 {
				return fmt.Errorf(errorExtensionFormat, category.Name, extension)
			}
			if owner, exists := owners[extension]; exists && owner != category.Name {
				return fmt.Errorf(errorDuplicateExtensionFormat, extension, owner, category.Name)
			}
			owners[extension] = category.Name
		}
	}
	return nil
}
