package writers

import (
	"context"

	"github.com/Vector/vector-reviews-scraper/journal"
	"github.com/Vector/vector-reviews-scraper/serpapi"
)

type PageRecorder interface {
	RecordPage(ctx context.Context, runID string, rec journal.PageRecord) error
}

var _ PageWriter = (*JournalWriter)(nil)

// JournalWriter records every written page so an interrupted run can be
// told apart from a finished one.
type JournalWriter struct {
	recorder PageRecorder
	runID    string
}

func NewJournalWriter(recorder PageRecorder, runID string) *JournalWriter {
	return &JournalWriter{
		recorder: recorder,
		runID:    runID,
	}
}

// WriteInfo is a no-op: the info file duplicates page 0, which is recorded.
func (w *JournalWriter) WriteInfo(context.Context, string, serpapi.Document) error {
	return nil
}

func (w *JournalWriter) WritePage(ctx context.Context, page Page) error {
	return w.recorder.RecordPage(ctx, w.runID, journal.PageRecord{
		DataID:        page.DataID,
		PageIndex:     page.Index,
		FileName:      PageFileName(page.DataID, page.Index),
		NextPageToken: page.Doc.NextPageToken(),
	})
}

func (w *JournalWriter) Close() error {
	return nil
}
