// Package extract reads one source file and wraps its decoded text in a delimited block.
package extract

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/docsnap/internal/tokenizer"
	"github.com/temirov/docsnap/internal/utils"
)

const (
	// ErrorMarkerFormat replaces the content of a file that could not be read or decoded.
	ErrorMarkerFormat = "[ERROR READING FILE: %v]"
	// FileHeaderPrefix precedes the relative path in a block header.
	FileHeaderPrefix = "FILE: "

	blockRuleSymbol = "="
	lineSeparator   = "\n"
	windowsNewline  = "\r\n"
	carriageReturn  = "\r"

	warningTokenCountMessage = "Warning: failed to count tokens"
	errorFallbackFormat      = "fallback encoding: %w"
)

// Block is the extracted content of one file.
type Block struct {
	RelativePath string
	Content      string
	// Encoding names the decoder that produced Content; empty when Failed.
	Encoding      string
	Failed        bool
	Tokens        int
	TokensCounted bool
}

// String renders the block: rule, header, rule, empty line, content, two empty lines.
// Blocks concatenate without further separators.
func (block Block) String() string {
	return strings.Join([]string{
		utils.Rule(blockRuleSymbol),
		FileHeaderPrefix + block.RelativePath,
		utils.Rule(blockRuleSymbol),
		"",
		block.Content,
		"",
		"",
	}, lineSeparator)
}

// Extractor reads files below Root.
type Extractor struct {
	Root         string
	Primary      Decoder
	Fallback     Decoder
	TokenCounter tokenizer.Counter
	Logger       *zap.Logger
}

// NewExtractor builds an Extractor that decodes UTF-8 first and the named charmap second.
func NewExtractor(root string, fallbackEncoding string, tokenCounter tokenizer.Counter, logger *zap.Logger) (*Extractor, error) {
	fallbackDecoder, decoderError := NewCharmapDecoder(fallbackEncoding)
	if decoderError != nil {
		return nil, fmt.Errorf(errorFallbackFormat, decoderError)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{
		Root:         root,
		Primary:      UTF8Decoder{},
		Fallback:     fallbackDecoder,
		TokenCounter: tokenCounter,
		Logger:       logger,
	}, nil
}

// Extract reads and decodes the file at path. It never fails: a read error or
// content that neither decoder accepts becomes an inline error marker.
func (extractor *Extractor) Extract(path string) Block {
	block := Block{RelativePath: utils.RelativePathOrSelf(path, extractor.Root)}

	fileBytes, readError := os.ReadFile(path)
	if readError != nil {
		return markFailed(block, readError)
	}

	content, encodingName, decodeError := extractor.decode(fileBytes)
	if decodeError != nil {
		return markFailed(block, decodeError)
	}
	block.Content = normalizeNewlines(content)
	block.Encoding = encodingName

	if extractor.TokenCounter != nil {
		countResult, countError := tokenizer.CountText(extractor.TokenCounter, block.Content)
		if countError != nil {
			extractor.logger().Warn(warningTokenCountMessage, zap.String("path", block.RelativePath), zap.Error(countError))
		} else {
			block.Tokens = countResult.Tokens
			block.TokensCounted = countResult.Counted
		}
	}
	return block
}

func (extractor *Extractor) decode(data []byte) (string, string, error) {
	primary := extractor.Primary
	if primary == nil {
		primary = UTF8Decoder{}
	}
	content, primaryError := primary.Decode(data)
	if primaryError == nil {
		return content, primary.Name(), nil
	}
	if extractor.Fallback == nil {
		return "", "", primaryError
	}
	content, fallbackError := extractor.Fallback.Decode(data)
	if fallbackError != nil {
		return "", "", fallbackError
	}
	return content, extractor.Fallback.Name(), nil
}

func (extractor *Extractor) logger() *zap.Logger {
	if extractor.Logger == nil {
		return zap.NewNop()
	}
	return extractor.Logger
}

// normalizeNewlines turns CRLF and lone CR line endings into LF.
func normalizeNewlines(content string) string {
	if !strings.Contains(content, carriageReturn) {
		return content
	}
	return strings.ReplaceAll(strings.ReplaceAll(content, windowsNewline, lineSeparator), carriageReturn, lineSeparator)
}

func markFailed(block Block, cause error) Block {
	block.Content = fmt.Sprintf(ErrorMarkerFormat, cause)
	block.Failed = true
	return block
}
