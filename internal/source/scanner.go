// Package source discovers PDF files awaiting ingestion.
package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ScannedFile represents a PDF found in the source directory.
type ScannedFile struct {
	Name    string // File name relative to the source root, forward slashes
	AbsPath string // Absolute file path
	Size    int64
}

// Scanner walks a source directory for PDF documents.
type Scanner struct {
	root string
}

// NewScanner creates a scanner over the given source directory.
func NewScanner(root string) (*Scanner, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("source directory %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("source path %s is not a directory", root)
	}
	return &Scanner{root: root}, nil
}

// Scan returns all PDF files under the source root, in walk order.
// Hidden directories are skipped.
func (s *Scanner) Scan(ctx context.Context) ([]ScannedFile, error) {
	var files []ScannedFile

	err := filepath.Walk(s.root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return fmt.Errorf("failed to access path %s: %w", path, err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if info.IsDir() {
			if strings.HasPrefix(info.Name(), ".") && path != s.root {
				return filepath.SkipDir
			}
			return nil
		}

		if !strings.EqualFold(filepath.Ext(path), ".pdf") {
			return nil
		}

		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return fmt.Errorf("failed to compute relative path for %s: %w", path, err)
		}

		files = append(files, ScannedFile{
			Name:    filepath.ToSlash(rel),
			AbsPath: path,
			Size:    info.Size(),
		})
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to scan source directory %s: %w", s.root, err)
	}

	return files, nil
}
