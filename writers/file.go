package writers

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Vector/vector-reviews-scraper/serpapi"
)

var _ PageWriter = (*FileWriter)(nil)

// FileWriter writes each document to its own file under dir, overwriting
// any previous file of the same name.
type FileWriter struct {
	dir string
}

func NewFileWriter(dir string) (*FileWriter, error) {
	if dir == "" {
		dir = "."
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	return &FileWriter{dir: dir}, nil
}

func (w *FileWriter) Dir() string {
	return w.dir
}

func (w *FileWriter) WriteInfo(_ context.Context, dataID string, doc serpapi.Document) error {
	return w.save(InfoFileName(dataID), doc)
}

func (w *FileWriter) WritePage(_ context.Context, page Page) error {
	return w.save(PageFileName(page.DataID, page.Index), page.Doc)
}

func (w *FileWriter) Close() error {
	return nil
}

func (w *FileWriter) save(name string, doc serpapi.Document) error {
	data, err := Encode(doc)
	if err != nil {
		return err
	}

	if err := os.WriteFile(filepath.Join(w.dir, name), data, 0o644); err != nil {
		return fmt.Errorf("error saving file %s: %w", name, err)
	}

	return nil
}
