package serpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Document is a raw SerpApi response. Fields are kept as returned so the
// document can be persisted verbatim.
type Document map[string]any

// DecodeDocument decodes a JSON object, keeping numbers as json.Number so
// they serialize back unchanged.
func DecodeDocument(data []byte) (Document, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode serpapi document: %w", err)
	}

	if doc == nil {
		return nil, fmt.Errorf("decode serpapi document: %w", ErrNotAnObject)
	}

	return doc, nil
}

// NextPageToken returns serpapi_pagination.next_page_token or "".
func (d Document) NextPageToken() string {
	return d.object("serpapi_pagination").str("next_page_token")
}

// PlaceResultsDataID returns place_results.data_id or "".
func (d Document) PlaceResultsDataID() string {
	return d.object("place_results").str("data_id")
}

// FirstLocalResultDataID returns local_results[0].data_id or "".
func (d Document) FirstLocalResultDataID() string {
	results, ok := d["local_results"].([]any)
	if !ok || len(results) == 0 {
		return ""
	}

	first, ok := results[0].(map[string]any)
	if !ok {
		return ""
	}

	return Document(first).str("data_id")
}

// ErrorMessage returns the top level "error" field SerpApi sets when a
// search produced nothing usable.
func (d Document) ErrorMessage() string {
	return d.str("error")
}

func (d Document) object(key string) Document {
	if d == nil {
		return nil
	}

	v, ok := d[key].(map[string]any)
	if !ok {
		return nil
	}

	return v
}

func (d Document) str(key string) string {
	if d == nil {
		return ""
	}

	v, _ := d[key].(string)

	return v
}
