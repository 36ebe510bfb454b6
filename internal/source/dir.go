package source

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/verdantscape/knowledge-engine/internal/knowledge"
)

// DirLoader reads every markdown file under a local directory. The document
// name is the path relative to the root with the extension stripped, so
// "docs/pricing-knowledge.md" becomes source "pricing-knowledge" and chunk
// IDs stay stable across rebuilds.
type DirLoader struct {
	root string
}

// NewDirLoader creates a loader rooted at dir.
func NewDirLoader(dir string) *DirLoader {
	return &DirLoader{root: dir}
}

// Load walks the directory and reads all .md files. A missing directory or
// an unreadable file is a descriptive error naming the offending path.
func (l *DirLoader) Load(ctx context.Context) ([]knowledge.Document, error) {
	var docs []knowledge.Document
	err := filepath.WalkDir(l.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".md") {
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read document %s: %w", path, err)
		}
		rel, err := filepath.Rel(l.root, path)
		if err != nil {
			rel = d.Name()
		}
		docs = append(docs, knowledge.Document{
			Name:    strings.TrimSuffix(filepath.ToSlash(rel), ".md"),
			Content: string(content),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("no markdown documents found under %s", l.root)
	}
	return docs, nil
}
