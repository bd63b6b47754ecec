package writers

import (
	"context"

	"go.uber.org/multierr"

	"github.com/Vector/vector-reviews-scraper/serpapi"
)

var _ PageWriter = (*MultiWriter)(nil)

// MultiWriter hands every document to each writer in order. Writers are
// called one after the other, never concurrently, and a failing writer
// does not stop the ones after it.
type MultiWriter struct {
	writers []PageWriter
}

func NewMultiWriter(ws ...PageWriter) *MultiWriter {
	return &MultiWriter{writers: ws}
}

func (m *MultiWriter) WriteInfo(ctx context.Context, dataID string, doc serpapi.Document) error {
	var err error

	for _, w := range m.writers {
		err = multierr.Append(err, w.WriteInfo(ctx, dataID, doc))
	}

	return err
}

func (m *MultiWriter) WritePage(ctx context.Context, page Page) error {
	var err error

	for _, w := range m.writers {
		err = multierr.Append(err, w.WritePage(ctx, page))
	}

	return err
}

func (m *MultiWriter) Close() error {
	var err error

	for _, w := range m.writers {
		err = multierr.Append(err, w.Close())
	}

	return err
}
