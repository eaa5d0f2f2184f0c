// Package report assembles the project documentation file: header, directory
// tree, per-category file contents, opaque listing and summary.
package report

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/temirov/docsnap/internal/classifier"
	"github.com/temirov/docsnap/internal/config"
	"github.com/temirov/docsnap/internal/extract"
	"github.com/temirov/docsnap/internal/tree"
	"github.com/temirov/docsnap/internal/types"
	"github.com/temirov/docsnap/internal/utils"
)

const (
	headerTitlePrefix     = "PROJECT DOCUMENTATION: "
	generatedPrefix       = "Generated: "
	fileContentsTitle     = "FILE CONTENTS"
	opaqueTitleFormat     = "OPAQUE FILES (%s, not included in detail)"
	opaqueItemPrefix      = "  - "
	summaryTitle          = "SUMMARY"
	totalFilesFormat      = "Total documented files: %d"
	opaqueFilesFormat     = "Opaque files (listed): %d"
	categoryCountFormat   = "%s: %d file(s)"
	estimatedTokensFormat = "Estimated tokens (%s): %d"

	majorRuleSymbol    = "="
	categoryRuleSymbol = "#"
	categoryPrefix     = "# "
	lineSeparator      = "\n"

	generatingMessage       = "Generating project documentation..."
	rootDirectoryFormat     = "Root directory: %s"
	outputFileFormat        = "Output file: %s"
	processingMessageFormat = "Processing: %s"
	writtenMessageFormat    = "Documentation generated successfully: %s"
	failedExtractionMessage = "Warning: file content replaced by error marker"

	errorCreateOutputFormat = "creating output file %s: %w"
	errorCloseOutputFormat  = "closing output file %s: %w"
	errorWriteReportFormat  = "writing report: %w"
	errorCollectFormat      = "collecting files: %w"
	errorTreeFormat         = "rendering directory tree: %w"
)

// Collection is the result of the classification pass over the project.
type Collection struct {
	// Buckets holds one entry per configured category in declaration order, including empty ones.
	Buckets []types.CategoryBucket
	// Opaque holds the relative paths of files under the opaque subtree in discovery order.
	Opaque []string
}

// Generator writes a complete report for one project root.
type Generator struct {
	Configuration config.ReportConfiguration
	Classifier    *classifier.Classifier
	Renderer      *tree.Renderer
	Extractor     *extract.Extractor
	Logger        *zap.Logger
	// Now supplies the header timestamp.
	Now func() time.Time
}

// NewGenerator wires a Generator from the resolved configuration.
func NewGenerator(configuration config.ReportConfiguration, fileClassifier *classifier.Classifier, extractor *extract.Extractor, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{
		Configuration: configuration,
		Classifier:    fileClassifier,
		Renderer:      tree.NewRenderer(fileClassifier, configuration.ProjectName, logger),
		Extractor:     extractor,
		Logger:        logger,
		Now:           time.Now,
	}
}

// Run creates the file at outputPath and writes the report into it.
// Failing to create the output file is fatal; every other failure is reported
// after the file has been closed.
func (generator *Generator) Run(outputPath string) (summary types.Summary, runError error) {
	generator.Logger.Info(generatingMessage)
	generator.Logger.Info(fmt.Sprintf(rootDirectoryFormat, generator.Configuration.RootDirectory))
	generator.Logger.Info(fmt.Sprintf(outputFileFormat, outputPath))

	outputFile, createError := os.Create(outputPath)
	if createError != nil {
		return types.Summary{}, fmt.Errorf(errorCreateOutputFormat, outputPath, createError)
	}
	defer func() {
		if closeError := outputFile.Close(); closeError != nil && runError == nil {
			runError = fmt.Errorf(errorCloseOutputFormat, outputPath, closeError)
		}
	}()

	summary, runError = generator.Generate(outputFile)
	summary.OutputPath = outputPath
	if runError != nil {
		return summary, runError
	}
	generator.Logger.Info(fmt.Sprintf(writtenMessageFormat, outputPath))
	return summary, nil
}

// Generate writes the report to writer and returns its summary.
func (generator *Generator) Generate(writer io.Writer) (types.Summary, error) {
	root := generator.Configuration.RootDirectory

	treeBlock, treeError := generator.Renderer.Render(root)
	if treeError != nil {
		return types.Summary{}, fmt.Errorf(errorTreeFormat, treeError)
	}
	collection, collectError := generator.Collect()
	if collectError != nil {
		return types.Summary{}, fmt.Errorf(errorCollectFormat, collectError)
	}

	bufferedWriter := bufio.NewWriter(writer)
	summary := types.Summary{TokenModel: generator.Configuration.TokenModel}

	io.WriteString(bufferedWriter, generator.header())
	io.WriteString(bufferedWriter, treeBlock+lineSeparator+lineSeparator)
	io.WriteString(bufferedWriter, joinLines(utils.Rule(majorRuleSymbol), fileContentsTitle, utils.Rule(majorRuleSymbol), "", "", ""))

	for _, bucket := range collection.Buckets {
		if len(bucket.Files) == 0 {
			continue
		}
		io.WriteString(bufferedWriter, categoryHeading(bucket.Category.Name))
		for _, record := range bucket.Files {
			generator.Logger.Info(fmt.Sprintf(processingMessageFormat, record.RelativePath))
			block := generator.Extractor.Extract(record.AbsolutePath)
			if block.Failed {
				summary.FailedFiles++
				generator.Logger.Warn(failedExtractionMessage, zap.String("path", record.RelativePath), zap.String("reason", block.Content))
			}
			if block.TokensCounted {
				summary.TotalTokens += block.Tokens
				summary.TokensCounted = true
			}
			io.WriteString(bufferedWriter, block.String())
		}
		summary.TotalFiles += len(bucket.Files)
		summary.Categories = append(summary.Categories, types.CategoryCount{Name: bucket.Category.Name, Files: len(bucket.Files)})
	}

	if len(collection.Opaque) > 0 {
		io.WriteString(bufferedWriter, generator.opaqueSection(collection.Opaque))
	}
	summary.OpaqueFiles = len(collection.Opaque)
	io.WriteString(bufferedWriter, summarySection(summary))

	if flushError := bufferedWriter.Flush(); flushError != nil {
		return summary, fmt.Errorf(errorWriteReportFormat, flushError)
	}
	return summary, nil
}

// Collect walks the project and partitions files into category buckets and the opaque list.
// Opaque membership is checked before includability, so an opaque file never reaches a bucket.
func (generator *Generator) Collect() (Collection, error) {
	categories := generator.Classifier.Categories()
	collection := Collection{Buckets: make([]types.CategoryBucket, len(categories))}
	for index, category := range categories {
		collection.Buckets[index].Category = category
	}

	walkError := tree.Walk(generator.Configuration.RootDirectory, generator.Classifier, generator.Logger, func(directory tree.Directory) error {
		for _, fileName := range directory.Files {
			relativePath := directory.FileRelativePath(fileName)
			switch generator.Classifier.Classify(relativePath) {
			case types.ClassificationOpaque:
				collection.Opaque = append(collection.Opaque, relativePath)
			case types.ClassificationIncludable:
				index, found := generator.Classifier.CategoryIndex(fileName)
				if !found {
					continue
				}
				collection.Buckets[index].Files = append(collection.Buckets[index].Files, types.FileRecord{
					AbsolutePath:   directory.FilePath(fileName),
					RelativePath:   relativePath,
					Extension:      utils.FileExtension(fileName),
					Classification: types.ClassificationIncludable,
				})
			}
		}
		return nil
	})
	if walkError != nil {
		return Collection{}, walkError
	}
	return collection, nil
}

func (generator *Generator) header() string {
	lines := []string{utils.Rule(majorRuleSymbol), headerTitlePrefix + generator.Configuration.Title}
	lines = append(lines, generator.Configuration.Organization...)
	lines = append(lines,
		utils.Rule(majorRuleSymbol),
		"",
		generatedPrefix+utils.FormatGenerated(generator.now()),
		"",
		"",
		"",
	)
	return joinLines(lines...)
}

func (generator *Generator) opaqueSection(opaquePaths []string) string {
	lines := []string{
		"",
		utils.Rule(majorRuleSymbol),
		fmt.Sprintf(opaqueTitleFormat, generator.Configuration.OpaqueDirectory),
		utils.Rule(majorRuleSymbol),
		"",
	}
	for _, opaquePath := range opaquePaths {
		lines = append(lines, opaqueItemPrefix+filepath.ToSlash(opaquePath))
	}
	lines = append(lines, "", "")
	return joinLines(lines...)
}

func (generator *Generator) now() time.Time {
	if generator.Now == nil {
		return time.Now()
	}
	return generator.Now()
}

func categoryHeading(name string) string {
	return joinLines("", utils.Rule(categoryRuleSymbol), categoryPrefix+strings.ToUpper(name), utils.Rule(categoryRuleSymbol), "", "", "")
}

func summarySection(summary types.Summary) string {
	lines := []string{
		"",
		utils.Rule(majorRuleSymbol),
		summaryTitle,
		utils.Rule(majorRuleSymbol),
		"",
		fmt.Sprintf(totalFilesFormat, summary.TotalFiles),
		fmt.Sprintf(opaqueFilesFormat, summary.OpaqueFiles),
	}
	for _, categoryCount := range summary.Categories {
		lines = append(lines, fmt.Sprintf(categoryCountFormat, categoryCount.Name, categoryCount.Files))
	}
	if summary.TokensCounted {
		lines = append(lines, fmt.Sprintf(estimatedTokensFormat, summary.TokenModel, summary.TotalTokens))
	}
	lines = append(lines, "")
	return joinLines(lines...)
}

// joinLines joins lines with newlines without adding a trailing one,
// so a final "" element yields exactly one terminating newline.
func joinLines(lines ...string) string {
	return strings.Join(lines, lineSeparator)
}
