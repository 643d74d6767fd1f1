// Package coursesrc fetches raw course documents for ingestion, from a
// local folder or from a GitHub/GitLab repository.
package coursesrc

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Document is one course file: its base name and full text.
type Document struct {
	Name    string
	Content string
}

// Fetcher lists every course document from one source.
type Fetcher interface {
	Documents(ctx context.Context) ([]Document, error)
}

// Folder reads course documents from a local directory. Only .txt and .md
// files are considered course material.
type Folder struct {
	dir string
}

func NewFolder(dir string) *Folder {
	return &Folder{dir: dir}
}

func (f *Folder) Documents(_ context.Context) ([]Document, error) {
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, fmt.Errorf("read course folder: %w", err)
	}

	var docs []Document
	for _, e := range entries {
		if e.IsDir() || !isCourseFile(e.Name()) {
			continue
		}
		data, err := os.ReadFile(filepath.Join(f.dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", e.Name(), err)
		}
		docs = append(docs, Document{Name: e.Name(), Content: string(data)})
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].Name < docs[j].Name })
	return docs, nil
}

func isCourseFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".txt", ".md":
		return true
	}
	return false
}
