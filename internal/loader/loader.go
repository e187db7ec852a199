// Package loader reads documentation files from the local filesystem and
// hands them to the ingestion pipeline as raw documents.
package loader

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/refassist/refassist-cli/internal/core/domain"
	"github.com/refassist/refassist-cli/internal/core/ports/driven"
)

// Ensure Loader implements the interface.
var _ driven.DocumentLoader = (*Loader)(nil)

// SupportedExtensions lists the file types the loader accepts.
var SupportedExtensions = map[string]struct{}{
	".md":  {},
	".txt": {},
	".rst": {},
}

// Loader loads documents from a file or directory tree.
type Loader struct{}

// New creates a filesystem document loader.
func New() *Loader {
	return &Loader{}
}

// Load reads the file or directory at path. Directories are walked
// recursively; unsupported file types are skipped. Results are ordered by
// path so repeated loads of the same tree produce the same batch.
func (l *Loader) Load(ctx context.Context, path string) ([]domain.RawDocument, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: path %s does not exist", domain.ErrInvalidInput, path)
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	var docs []domain.RawDocument

	if !info.IsDir() {
		if !supported(path) {
			return nil, fmt.Errorf("%w: file type %s is not supported", domain.ErrInvalidInput, filepath.Ext(path))
		}
		doc, err := loadFile(path, info)
		if err != nil {
			return nil, err
		}
		return []domain.RawDocument{doc}, nil
	}

	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !supported(p) {
			return nil
		}
		fi, err := d.Info()
		if err != nil {
			return fmt.Errorf("stat %s: %w", p, err)
		}
		doc, err := loadFile(p, fi)
		if err != nil {
			return err
		}
		docs = append(docs, doc)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", path, err)
	}

	if len(docs) == 0 {
		return nil, fmt.Errorf("%w: no supported files found in %s", domain.ErrInvalidInput, path)
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].Path < docs[j].Path })

	return docs, nil
}

// supported reports whether the file extension is one the loader accepts.
func supported(path string) bool {
	_, ok := SupportedExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// loadFile reads one file into a raw document.
func loadFile(path string, info fs.FileInfo) (domain.RawDocument, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return domain.RawDocument{}, fmt.Errorf("read %s: %w", path, err)
	}

	modified := info.ModTime()
	return domain.RawDocument{
		Path:     path,
		Text:     string(content),
		Modified: &modified,
	}, nil
}
