package tree

import (
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/docsnap/internal/types"
	"github.com/temirov/docsnap/internal/utils"
)

const (
	// SectionTitle heads the directory listing block.
	SectionTitle = "PROJECT STRUCTURE"
	// TagExternalLibrary annotates files excluded by name.
	TagExternalLibrary = "[EXTERNAL LIBRARY]"
	// TagOpaque annotates files under the opaque subtree.
	TagOpaque = "[OPAQUE]"

	indentUnit        = "  "
	directorySuffix   = "/"
	lineSeparator     = "\n"
	tagSeparator      = " "
	sectionRuleSymbol = "="
)

// FileClassifier supplies the pruning rule and the per-file classification used in the listing.
type FileClassifier interface {
	DirectoryPruner
	Classify(relativePath string) types.Classification
}

// Renderer produces the indented directory listing of a project.
type Renderer struct {
	Classifier  FileClassifier
	ProjectName string
	Logger      *zap.Logger
}

// NewRenderer constructs a Renderer.
func NewRenderer(fileClassifier FileClassifier, projectName string, logger *zap.Logger) *Renderer {
	return &Renderer{Classifier: fileClassifier, ProjectName: projectName, Logger: logger}
}

// Lines walks root and returns one line per directory and per listed file.
// The root line carries the project name instead of the directory name.
// Omitted files produce no line.
func (renderer *Renderer) Lines(root string) ([]string, error) {
	var lines []string
	walkError := Walk(root, renderer.Classifier, renderer.Logger, func(directory Directory) error {
		directoryLabel := directory.Name
		if directory.IsRoot() {
			directoryLabel = renderer.ProjectName
		}
		lines = append(lines, indentation(directory.Depth)+directoryLabel+directorySuffix)

		fileIndentation := indentation(directory.Depth + 1)
		for _, fileName := range directory.Files {
			line, listed := renderer.fileLine(fileName, directory.FileRelativePath(fileName))
			if !listed {
				continue
			}
			lines = append(lines, fileIndentation+line)
		}
		return nil
	})
	if walkError != nil {
		return nil, walkError
	}
	return lines, nil
}

// Render returns the full listing block including its heading and a trailing empty line.
func (renderer *Renderer) Render(root string) (string, error) {
	lines, linesError := renderer.Lines(root)
	if linesError != nil {
		return "", linesError
	}
	block := make([]string, 0, len(lines)+5)
	block = append(block, utils.Rule(sectionRuleSymbol), SectionTitle, utils.Rule(sectionRuleSymbol), "")
	block = append(block, lines...)
	block = append(block, "")
	return strings.Join(block, lineSeparator), nil
}

func (renderer *Renderer) fileLine(fileName string, relativePath string) (string, bool) {
	switch renderer.Classifier.Classify(relativePath) {
	case types.ClassificationOpaque:
		return fileName + tagSeparator + TagOpaque, true
	case types.ClassificationExternal:
		return fileName + tagSeparator + TagExternalLibrary, true
	case types.ClassificationIncludable:
		return fileName, true
	default:
		return "", false
	}
}

func indentation(depth int) string {
	return strings.Repeat(indentUnit, depth)
}
