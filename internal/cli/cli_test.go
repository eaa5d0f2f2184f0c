package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/docsnap/internal/tokenizer"
	"github.com/temirov/docsnap/internal/utils"
)

type recordingCopier struct {
	copied []string
	err    error
}

func (copier *recordingCopier) Copy(text string) error {
	if copier.err != nil {
		return copier.err
	}
	copier.copied = append(copier.copied, text)
	return nil
}

type wordCounter struct{}

func (wordCounter) Name() string { return "words" }

func (wordCounter) CountString(input string) (int, error) { return len(strings.Fields(input)), nil }

func fixedClock() time.Time {
	return time.Date(2024, time.January, 2, 3, 4, 5, 0, time.Local)
}

func writeProjectFile(t *testing.T, rootDirectory string, relativePath string, content string) {
	t.Helper()
	fullPath := filepath.Join(rootDirectory, filepath.FromSlash(relativePath))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(fullPath), err)
	}
	if err := os.WriteFile(fullPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", fullPath, err)
	}
}

func newProject(t *testing.T) string {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	rootDirectory := t.TempDir()
	writeProjectFile(t, rootDirectory, "index.html", "<h1>lab</h1>")
	writeProjectFile(t, rootDirectory, "js/main.js", "start()")
	writeProjectFile(t, rootDirectory, "js/webgazer.js", "vendored")
	writeProjectFile(t, rootDirectory, "mediapipe/vision.wasm", "\x00")
	return rootDirectory
}

func executeRoot(t *testing.T, dependencies Dependencies, arguments ...string) (string, error) {
	t.Helper()
	if dependencies.Now == nil {
		dependencies.Now = fixedClock
	}
	rootCommand := NewRootCommand(dependencies)
	var output bytes.Buffer
	rootCommand.SetOut(&output)
	rootCommand.SetErr(&output)
	rootCommand.SetArgs(normalizeArguments(arguments))
	executeErr := rootCommand.Execute()
	return output.String(), executeErr
}

func readReport(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report %s: %v", path, err)
	}
	return string(content)
}

func TestRootCommandWritesDefaultReport(t *testing.T) {
	rootDirectory := newProject(t)
	if _, err := executeRoot(t, Dependencies{}, rootDirectory); err != nil {
		t.Fatalf("execute: %v", err)
	}
	report := readReport(t, filepath.Join(rootDirectory, "project_documentation.txt"))
	for _, expected := range []string{
		"PROJECT DOCUMENTATION: WEBGAZER LAB\n",
		"Generated: 2024-01-02 03:04:05\n",
		"webgazer-lab/\n",
		"    webgazer.js [EXTERNAL LIBRARY]\n",
		"    vision.wasm [OPAQUE]\n",
		"FILE: index.html\n",
		"FILE: js/main.js\n",
		"  - mediapipe/vision.wasm\n",
		"Total documented files: 2\n",
	} {
		if !strings.Contains(report, expected) {
			t.Fatalf("report missing %q:\n%s", expected, report)
		}
	}
	if strings.Contains(report, "FILE: js/webgazer.js") {
		t.Fatalf("excluded library was extracted")
	}
}

func TestRootCommandOutputFlag(t *testing.T) {
	rootDirectory := newProject(t)
	outputPath := filepath.Join(t.TempDir(), "snapshot.txt")
	if _, err := executeRoot(t, Dependencies{}, rootDirectory, "-o", outputPath); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(readReport(t, outputPath), "FILE: index.html") {
		t.Fatalf("report not written to %s", outputPath)
	}
	if _, err := os.Stat(filepath.Join(rootDirectory, "project_documentation.txt")); !os.IsNotExist(err) {
		t.Fatalf("default report should not exist, stat error: %v", err)
	}
}

func TestRootCommandReadsLocalConfiguration(t *testing.T) {
	rootDirectory := newProject(t)
	writeProjectFile(t, rootDirectory, utils.ConfigFileName, `project:
  name: lab
  title: EYE LAB
  organization:
    - Example University
output: docs.txt
paths:
  opaque_directory: vendor
categories:
  - name: Scripts
    extensions: [".js"]
`)
	writeProjectFile(t, rootDirectory, "vendor/lib.js", "lib")
	if _, err := executeRoot(t, Dependencies{}, rootDirectory); err != nil {
		t.Fatalf("execute: %v", err)
	}
	report := readReport(t, filepath.Join(rootDirectory, "docs.txt"))
	for _, expected := range []string{
		"PROJECT DOCUMENTATION: EYE LAB\nExample University\n",
		"\nlab/\n",
		"# SCRIPTS\n",
		"OPAQUE FILES (vendor, not included in detail)",
		"  - vendor/lib.js\n",
		"Scripts: 1 file(s)\n",
	} {
		if !strings.Contains(report, expected) {
			t.Fatalf("report missing %q:\n%s", expected, report)
		}
	}
	if strings.Contains(report, "FILE: index.html") || strings.Contains(report, "vision.wasm") {
		t.Fatalf("files outside the configured categories leaked into the report:\n%s", report)
	}
}

func TestRootCommandExplicitConfigurationMustExist(t *testing.T) {
	rootDirectory := newProject(t)
	_, err := executeRoot(t, Dependencies{}, rootDirectory, "--config", filepath.Join(rootDirectory, "absent.yaml"))
	if err == nil {
		t.Fatalf("expected error for a missing configuration file")
	}
}

func TestRootCommandRejectsInvalidConfiguration(t *testing.T) {
	rootDirectory := newProject(t)
	writeProjectFile(t, rootDirectory, utils.ConfigFileName, `categories:
  - name: One
    extensions: [".js"]
  - name: Two
    extensions: [".js"]
`)
	_, err := executeRoot(t, Dependencies{}, rootDirectory)
	if err == nil || !strings.Contains(err.Error(), "invalid configuration") {
		t.Fatalf("expected invalid configuration error, got %v", err)
	}
	if _, statErr := os.Stat(filepath.Join(rootDirectory, "project_documentation.txt")); !os.IsNotExist(statErr) {
		t.Fatalf("no report should be written for an invalid configuration")
	}
}

func TestRootCommandCopiesReport(t *testing.T) {
	rootDirectory := newProject(t)
	copier := &recordingCopier{}
	if _, err := executeRoot(t, Dependencies{Copier: copier}, "--copy", rootDirectory); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if len(copier.copied) != 1 {
		t.Fatalf("expected one clipboard write, got %d", len(copier.copied))
	}
	if copier.copied[0] != readReport(t, filepath.Join(rootDirectory, "project_documentation.txt")) {
		t.Fatalf("clipboard content differs from the report")
	}
}

func TestRootCommandCopyFailure(t *testing.T) {
	rootDirectory := newProject(t)
	copier := &recordingCopier{err: errors.New("no clipboard")}
	_, err := executeRoot(t, Dependencies{Copier: copier}, rootDirectory, "--copy")
	if err == nil || !strings.Contains(err.Error(), "no clipboard") {
		t.Fatalf("expected clipboard error, got %v", err)
	}
}

func TestRootCommandTokens(t *testing.T) {
	rootDirectory := newProject(t)
	var requestedModel string
	counterFactory := func(configuration tokenizer.Config) (tokenizer.Counter, string, error) {
		requestedModel = configuration.Model
		return wordCounter{}, "words", nil
	}
	if _, err := executeRoot(t, Dependencies{NewCounter: counterFactory}, rootDirectory, "--tokens", "--model", "gpt-4"); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if requestedModel != "gpt-4" {
		t.Fatalf("expected model gpt-4, got %q", requestedModel)
	}
	report := readReport(t, filepath.Join(rootDirectory, "project_documentation.txt"))
	if !strings.HasSuffix(report, "Estimated tokens (words): 2\n") {
		t.Fatalf("missing token estimate:\n%s", report)
	}
}

func TestRootCommandWithoutTokensSkipsCounter(t *testing.T) {
	rootDirectory := newProject(t)
	counterFactory := func(tokenizer.Config) (tokenizer.Counter, string, error) {
		t.Fatalf("counter must not be created without --tokens")
		return nil, "", nil
	}
	if _, err := executeRoot(t, Dependencies{NewCounter: counterFactory}, rootDirectory); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if strings.Contains(readReport(t, filepath.Join(rootDirectory, "project_documentation.txt")), "Estimated tokens") {
		t.Fatalf("unexpected token estimate")
	}
}

func TestRootCommandRootValidation(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	missingRoot := filepath.Join(t.TempDir(), "absent")
	if _, err := executeRoot(t, Dependencies{}, missingRoot); err == nil || !strings.Contains(err.Error(), "does not exist") {
		t.Fatalf("expected missing path error, got %v", err)
	}
	filePath := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(filePath, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := executeRoot(t, Dependencies{}, filePath); err == nil || !strings.Contains(err.Error(), "not a directory") {
		t.Fatalf("expected not a directory error, got %v", err)
	}
}

func TestRootCommandVersion(t *testing.T) {
	output, err := executeRoot(t, Dependencies{}, "--version")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.HasPrefix(output, "docsnap version: ") {
		t.Fatalf("unexpected version output %q", output)
	}
}

func TestInitCommandWritesLocalConfiguration(t *testing.T) {
	workingDirectory := t.TempDir()
	changeWorkingDirectory(t, workingDirectory)

	output, err := executeRoot(t, Dependencies{}, "init")
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	configurationPath := filepath.Join(workingDirectory, utils.ConfigFileName)
	if !strings.Contains(output, configurationPath) {
		t.Fatalf("expected output to name %s, got %q", configurationPath, output)
	}
	if _, err := executeRoot(t, Dependencies{}, "init"); err == nil {
		t.Fatalf("expected error when the configuration already exists")
	}
	if _, err := executeRoot(t, Dependencies{}, "init", "--force"); err != nil {
		t.Fatalf("init --force: %v", err)
	}
}

func TestRootCommandGitignoreFlag(t *testing.T) {
	rootDirectory := newProject(t)
	writeProjectFile(t, rootDirectory, ".gitignore", "generated/\ndraft.md\n")
	writeProjectFile(t, rootDirectory, "generated/bundle.js", "bundle()")
	writeProjectFile(t, rootDirectory, "draft.md", "draft")

	if _, err := executeRoot(t, Dependencies{}, rootDirectory); err != nil {
		t.Fatalf("execute: %v", err)
	}
	withoutFlag := readReport(t, filepath.Join(rootDirectory, "project_documentation.txt"))
	if !strings.Contains(withoutFlag, "FILE: draft.md") || !strings.Contains(withoutFlag, "FILE: generated/bundle.js") {
		t.Fatalf(".gitignore must not apply by default:\n%s", withoutFlag)
	}

	if _, err := executeRoot(t, Dependencies{}, rootDirectory, "--gitignore"); err != nil {
		t.Fatalf("execute --gitignore: %v", err)
	}
	withFlag := readReport(t, filepath.Join(rootDirectory, "project_documentation.txt"))
	if strings.Contains(withFlag, "draft.md") || strings.Contains(withFlag, "generated/") {
		t.Fatalf("ignored paths leaked into the report:\n%s", withFlag)
	}
	if !strings.Contains(withFlag, "FILE: index.html") {
		t.Fatalf("expected remaining files to be documented:\n%s", withFlag)
	}
}

func TestRootCommandReportsReadErrors(t *testing.T) {
	rootDirectory := newProject(t)
	writeProjectFile(t, rootDirectory, utils.ConfigFileName, "encoding:\n  fallback: iso-8859-3\n")
	writeProjectFile(t, rootDirectory, "notes.md", "yen \xa5")

	observedCore, observedLogs := observer.New(zapcore.InfoLevel)
	if _, err := executeRoot(t, Dependencies{Logger: zap.New(observedCore)}, rootDirectory); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if observedLogs.FilterMessage("Files with read errors: 1").FilterLevelExact(zapcore.WarnLevel).Len() != 1 {
		t.Fatalf("missing read error summary, got %v", observedLogs.All())
	}
	if observedLogs.FilterMessage("Total files processed: 3").Len() != 1 {
		t.Fatalf("missing total line, got %v", observedLogs.All())
	}
}

func TestRootCommandOmitsReadErrorLineWhenClean(t *testing.T) {
	rootDirectory := newProject(t)
	observedCore, observedLogs := observer.New(zapcore.InfoLevel)
	if _, err := executeRoot(t, Dependencies{Logger: zap.New(observedCore)}, rootDirectory); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if observedLogs.FilterMessageSnippet("read errors").Len() != 0 {
		t.Fatalf("unexpected read error line: %v", observedLogs.All())
	}
}

// changeWorkingDirectory mirrors testing.T.Chdir for toolchains older than Go 1.24.
func changeWorkingDirectory(t *testing.T, directory string) {
	t.Helper()
	previousDirectory, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(directory); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Setenv("PWD", directory)
	t.Cleanup(func() {
		if err := os.Chdir(previousDirectory); err != nil {
			t.Fatalf("restore working directory: %v", err)
		}
	})
}
