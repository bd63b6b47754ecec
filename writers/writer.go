// Package writers persists fetched review pages. The file writer owns the
// on-disk contract:
//
//	<data_id>_info.json            first page of a place, written once
//	reviews_<data_id>_<index>.json every page, index starting at 0
package writers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/Vector/vector-reviews-scraper/serpapi"
)

// Page is one fetched reviews page.
type Page struct {
	DataID string
	Index  int
	Doc    serpapi.Document
}

type PageWriter interface {
	WriteInfo(ctx context.Context, dataID string, doc serpapi.Document) error
	WritePage(ctx context.Context, page Page) error
	Close() error
}

func InfoFileName(dataID string) string {
	return fmt.Sprintf("%s_info.json", dataID)
}

func PageFileName(dataID string, index int) string {
	return fmt.Sprintf("reviews_%s_%d.json", dataID, index)
}

// Encode serializes a document as UTF-8 JSON without escaping non-ASCII or
// HTML characters.
func Encode(doc serpapi.Document) ([]byte, error) {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}

	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
