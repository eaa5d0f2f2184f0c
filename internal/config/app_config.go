// Package config loads docsnap configuration files and resolves the settings of a report run.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/temirov/docsnap/internal/types"
	"github.com/temirov/docsnap/internal/utils"
)

// LoadOptions controls how application configuration is discovered.
type LoadOptions struct {
	WorkingDirectory string
	ExplicitFilePath string
}

// ApplicationConfiguration holds the values read from configuration files.
// Unset values are left zero so that later sources and defaults can fill them.
type ApplicationConfiguration struct {
	Output     string                `mapstructure:"output"`
	Project    ProjectConfiguration  `mapstructure:"project"`
	Paths      PathConfiguration     `mapstructure:"paths"`
	Categories []types.Category      `mapstructure:"categories"`
	Encoding   EncodingConfiguration `mapstructure:"encoding"`
	Tokens     TokenConfiguration    `mapstructure:"tokens"`
	Clipboard  *bool                 `mapstructure:"clipboard"`
}

// ProjectConfiguration describes the labels written into the report header.
type ProjectConfiguration struct {
	Name         string   `mapstructure:"name"`
	Title        string   `mapstructure:"title"`
	Organization []string `mapstructure:"organization"`
}

// PathConfiguration configures exclusion rules for path traversal.
type PathConfiguration struct {
	ExcludeDirectories []string `mapstructure:"exclude_directories"`
	ExcludeFiles       []string `mapstructure:"exclude_files"`
	OpaqueDirectory    string   `mapstructure:"opaque_directory"`
	Gitignore          *bool    `mapstructure:"gitignore"`
}

// EncodingConfiguration selects the fallback text encoding.
type EncodingConfiguration struct {
	Fallback string `mapstructure:"fallback"`
}

// TokenConfiguration controls token counting defaults.
type TokenConfiguration struct {
	Enabled *bool  `mapstructure:"enabled"`
	Model   string `mapstructure:"model"`
}

// LoadApplicationConfiguration loads configuration from global and local files.
func LoadApplicationConfiguration(options LoadOptions) (ApplicationConfiguration, error) {
	workingDirectory := options.WorkingDirectory
	if workingDirectory == "" {
		currentDirectory, err := os.Getwd()
		if err != nil {
			return ApplicationConfiguration{}, fmt.Errorf("determine working directory: %w", err)
		}
		workingDirectory = currentDirectory
	}

	var merged ApplicationConfiguration

	if homeDirectory, err := os.UserHomeDir(); err == nil && homeDirectory != "" {
		globalPath := filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName, utils.GlobalConfigFileName)
		globalConfig, loadErr := loadConfigurationFromPath(globalPath)
		if loadErr != nil {
			return ApplicationConfiguration{}, loadErr
		}
		merged = merged.Merge(globalConfig)
	}

	localPath := resolveLocalConfigPath(workingDirectory, options.ExplicitFilePath)
	if options.ExplicitFilePath != "" {
		if _, statErr := os.Stat(localPath); statErr != nil {
			return ApplicationConfiguration{}, fmt.Errorf("configuration file %s: %w", localPath, statErr)
		}
	}
	localConfig, loadErr := loadConfigurationFromPath(localPath)
	if loadErr != nil {
		return ApplicationConfiguration{}, loadErr
	}
	merged = merged.Merge(localConfig)

	merged.Paths.ExcludeDirectories = dedupeOrNil(merged.Paths.ExcludeDirectories)
	merged.Paths.ExcludeFiles = dedupeOrNil(merged.Paths.ExcludeFiles)

	return merged, nil
}

func resolveLocalConfigPath(workingDirectory, explicitPath string) string {
	if explicitPath != "" {
		if filepath.IsAbs(explicitPath) {
			return explicitPath
		}
		return filepath.Join(workingDirectory, explicitPath)
	}
	return filepath.Join(workingDirectory, utils.ConfigFileName)
}

func loadConfigurationFromPath(path string) (ApplicationConfiguration, error) {
	if path == "" {
		return ApplicationConfiguration{}, nil
	}
	info, statErr := os.Stat(path)
	if statErr != nil {
		if os.IsNotExist(statErr) {
			return ApplicationConfiguration{}, nil
		}
		return ApplicationConfiguration{}, fmt.Errorf("stat configuration %s: %w", path, statErr)
	}
	if info.IsDir() {
		return ApplicationConfiguration{}, fmt.Errorf("configuration path %s is a directory", path)
	}

	reader := viper.New()
	reader.SetConfigFile(path)
	reader.SetConfigType(configurationFileType)
	if readErr := reader.ReadInConfig(); readErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf("read configuration from %s: %w", path, readErr)
	}
	var config ApplicationConfiguration
	if decodeErr := reader.Unmarshal(&config); decodeErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf("decode configuration from %s: %w", path, decodeErr)
	}
	return config, nil
}

// Merge overlays override onto the receiver returning the combined configuration.
func (config ApplicationConfiguration) Merge(override ApplicationConfiguration) ApplicationConfiguration {
	result := config
	if override.Output != "" {
		result.Output = override.Output
	}
	result.Project = result.Project.merge(override.Project)
	result.Paths = result.Paths.merge(override.Paths)
	if override.Categories != nil {
		result.Categories = cloneCategories(override.Categories)
	}
	if override.Encoding.Fallback != "" {
		result.Encoding.Fallback = override.Encoding.Fallback
	}
	result.Tokens = result.Tokens.merge(override.Tokens)
	if override.Clipboard != nil {
		result.Clipboard = cloneBool(override.Clipboard)
	}
	return result
}

func (config ProjectConfiguration) merge(override ProjectConfiguration) ProjectConfiguration {
	result := config
	if override.Name != "" {
		result.Name = override.Name
	}
	if override.Title != "" {
		result.Title = override.Title
	}
	if override.Organization != nil {
		result.Organization = append([]string{}, override.Organization...)
	}
	return result
}

func (config PathConfiguration) merge(override PathConfiguration) PathConfiguration {
	result := config
	if override.ExcludeDirectories != nil {
		result.ExcludeDirectories = append([]string{}, utils.DeduplicatePatterns(override.ExcludeDirectories)...)
	}
	if override.ExcludeFiles != nil {
		result.ExcludeFiles = append([]string{}, utils.DeduplicatePatterns(override.ExcludeFiles)...)
	}
	if override.OpaqueDirectory != "" {
		result.OpaqueDirectory = override.OpaqueDirectory
	}
	if override.Gitignore != nil {
		result.Gitignore = cloneBool(override.Gitignore)
	}
	return result
}

func (config TokenConfiguration) merge(override TokenConfiguration) TokenConfiguration {
	result := config
	if override.Enabled != nil {
		result.Enabled = cloneBool(override.Enabled)
	}
	if override.Model != "" {
		result.Model = override.Model
	}
	return result
}

func cloneCategories(categories []types.Category) []types.Category {
	cloned := make([]types.Category, 0, len(categories))
	for _, category := range categories {
		cloned = append(cloned, types.Category{
			Name:       category.Name,
			Extensions: append([]string{}, category.Extensions...),
		})
	}
	return cloned
}

func dedupeOrNil(values []string) []string {
	if values == nil {
		return nil
	}
	return utils.DeduplicatePatterns(values)
}

func cloneBool(value *bool) *bool {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}
