// Package tree walks a project directory top-down and renders its indented listing.
package tree

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"go.uber.org/zap"
)

const (
	// errorReadRootFormat is used when the traversal root cannot be listed.
	errorReadRootFormat = "reading root directory %s: %w"
	// warningSkipDirectoryMessage is logged when a subdirectory cannot be listed.
	warningSkipDirectoryMessage = "Warning: skipping unreadable directory"
	// warningStatSymlinkMessage is logged when a symbolic link cannot be resolved.
	warningStatSymlinkMessage = "Warning: unable to resolve symbolic link"

	rootRelativePath = "."
)

// DirectoryPruner decides whether a directory and everything below it is skipped.
type DirectoryPruner interface {
	IsExcludedDirectory(path string) bool
}

// Directory is one directory reached by Walk.
type Directory struct {
	AbsolutePath string
	// RelativePath is slash separated and "." for the root.
	RelativePath string
	Name         string
	Depth        int
	// Files holds the base names of non-directory entries in lexicographic order.
	Files []string
}

// FilePath returns the absolute path of the named file in the directory.
func (directory Directory) FilePath(fileName string) string {
	return filepath.Join(directory.AbsolutePath, fileName)
}

// FileRelativePath returns the slash separated path of the named file relative to the walk root.
func (directory Directory) FileRelativePath(fileName string) string {
	if directory.RelativePath == rootRelativePath {
		return fileName
	}
	return path.Join(directory.RelativePath, fileName)
}

// IsRoot reports whether the directory is the walk root.
func (directory Directory) IsRoot() bool {
	return directory.Depth == 0
}

// VisitFunc is called once per reached directory, parents before children.
type VisitFunc func(directory Directory) error

// Walk visits root and every directory below it that the pruner keeps.
// Subdirectories are visited in lexicographic order after their parent.
// The root itself is never pruned. A subdirectory that cannot be listed is
// skipped with a warning, as if it had been pruned; an unreadable root is an error.
// Symbolic links to directories are not followed.
func Walk(root string, pruner DirectoryPruner, logger *zap.Logger, visit VisitFunc) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	absoluteRoot, absoluteError := filepath.Abs(root)
	if absoluteError != nil {
		return fmt.Errorf(errorReadRootFormat, root, absoluteError)
	}
	rootDirectory, listError := listDirectory(absoluteRoot, rootRelativePath, filepath.Base(absoluteRoot), 0, pruner, logger)
	if listError != nil {
		return fmt.Errorf(errorReadRootFormat, absoluteRoot, listError)
	}
	return walkListed(rootDirectory, pruner, logger, visit)
}

type listedDirectory struct {
	Directory
	subdirectories []string
}

func walkListed(current listedDirectory, pruner DirectoryPruner, logger *zap.Logger, visit VisitFunc) error {
	if visitError := visit(current.Directory); visitError != nil {
		return visitError
	}
	for _, subdirectoryName := range current.subdirectories {
		childPath := filepath.Join(current.AbsolutePath, subdirectoryName)
		childRelativePath := current.FileRelativePath(subdirectoryName)
		child, listError := listDirectory(childPath, childRelativePath, subdirectoryName, current.Depth+1, pruner, logger)
		if listError != nil {
			logger.Warn(warningSkipDirectoryMessage, zap.String("path", childPath), zap.Error(listError))
			continue
		}
		if walkError := walkListed(child, pruner, logger, visit); walkError != nil {
			return walkError
		}
	}
	return nil
}

func listDirectory(absolutePath, relativePath, name string, depth int, pruner DirectoryPruner, logger *zap.Logger) (listedDirectory, error) {
	directoryEntries, readError := os.ReadDir(absolutePath)
	if readError != nil {
		return listedDirectory{}, readError
	}
	listed := listedDirectory{
		Directory: Directory{
			AbsolutePath: absolutePath,
			RelativePath: relativePath,
			Name:         name,
			Depth:        depth,
		},
	}
	for _, directoryEntry := range directoryEntries {
		entryName := directoryEntry.Name()
		entryPath := filepath.Join(absolutePath, entryName)
		if directoryEntry.IsDir() {
			if pruner != nil && pruner.IsExcludedDirectory(entryPath) {
				continue
			}
			listed.subdirectories = append(listed.subdirectories, entryName)
			continue
		}
		if directoryEntry.Type()&fs.ModeSymlink != 0 {
			targetInfo, statError := os.Stat(entryPath)
			if statError != nil {
				logger.Warn(warningStatSymlinkMessage, zap.String("path", entryPath), zap.Error(statError))
			} else if targetInfo.IsDir() {
				continue
			}
		}
		listed.Files = append(listed.Files, entryName)
	}
	return listed, nil
}
