// Package types defines every cross‑package data structure used by the docsnap CLI.
package types

const (
	// ClassificationIncludable marks a file whose content is extracted into a category block.
	ClassificationIncludable Classification = "includable"
	// ClassificationExternal marks a file excluded by name as a vendored library.
	ClassificationExternal Classification = "external"
	// ClassificationOpaque marks a file under the opaque subtree, listed by path only.
	ClassificationOpaque Classification = "opaque"
	// ClassificationOmitted marks a file that is neither listed nor extracted.
	ClassificationOmitted Classification = "omitted"
)

// Classification is the outcome of classifying a single file.
type Classification string

// Category is a named group of file extensions that forms one section of the report.
type Category struct {
	Name       string   `mapstructure:"name" yaml:"name"`
	Extensions []string `mapstructure:"extensions" yaml:"extensions"`
}

// FileRecord is a file discovered during traversal.
type FileRecord struct {
	AbsolutePath   string
	RelativePath   string
	Extension      string
	Classification Classification
}

// CategoryBucket holds the includable files assigned to one category in discovery order.
type CategoryBucket struct {
	Category Category
	Files    []FileRecord
}

// CategoryCount is the number of files rendered for one category.
type CategoryCount struct {
	Name  string
	Files int
}

// Summary captures aggregate information about a generated report.
type Summary struct {
	OutputPath    string
	TotalFiles    int
	OpaqueFiles   int
	FailedFiles   int
	Categories    []CategoryCount
	TotalTokens   int
	TokenModel    string
	TokensCounted bool
}
