package gmaps

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Vector/vector-reviews-scraper/serpapi"
	"github.com/Vector/vector-reviews-scraper/writers"
)

const (
	DefaultZoom     = 12
	DefaultLanguage = "en"
)

var ErrEmptyDataID = errors.New("data id must not be empty")

// Searcher is satisfied by *serpapi.Client.
type Searcher interface {
	Search(ctx context.Context, params serpapi.Params) (serpapi.Document, error)
}

type ReviewsFetcherOption func(*ReviewsFetcher)

func WithLogger(l *zap.Logger) ReviewsFetcherOption {
	return func(f *ReviewsFetcher) {
		if l != nil {
			f.log = l
		}
	}
}

func WithLanguage(lang string) ReviewsFetcherOption {
	return func(f *ReviewsFetcher) {
		if lang != "" {
			f.lang = lang
		}
	}
}

func WithZoom(zoom int) ReviewsFetcherOption {
	return func(f *ReviewsFetcher) {
		f.zoom = zoom
	}
}

// ReviewsFetcher resolves places to data ids and walks their review pages,
// handing every page to a writer as soon as it arrives.
type ReviewsFetcher struct {
	client Searcher
	writer writers.PageWriter
	log    *zap.Logger
	lang   string
	zoom   int
}

func NewReviewsFetcher(client Searcher, writer writers.PageWriter, opts ...ReviewsFetcherOption) *ReviewsFetcher {
	f := &ReviewsFetcher{
		client: client,
		writer: writer,
		log:    zap.NewNop(),
		lang:   DefaultLanguage,
		zoom:   DefaultZoom,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// ResolveDataID runs one google_maps search. It returns the place result's
// data id when there is one, otherwise the first local result's. ok is false
// when neither exists; that is not an error.
func (f *ReviewsFetcher) ResolveDataID(ctx context.Context, q PlaceQuery) (dataID string, ok bool, err error) {
	doc, err := f.client.Search(ctx, serpapi.Params{
		"engine": serpapi.EngineGoogleMaps,
		"q":      q.Query,
		"ll":     q.LL(f.zoom),
		"hl":     f.lang,
	})
	if err != nil {
		return "", false, fmt.Errorf("resolve data id for %q: %w", q.Query, err)
	}

	if id := doc.PlaceResultsDataID(); id != "" {
		return id, true, nil
	}

	if id := doc.FirstLocalResultDataID(); id != "" {
		return id, true, nil
	}

	return "", false, nil
}

// FetchReviews writes page 0 as the info document and then every page,
// starting at index 0, while the API returns a next page token. maxPages caps
// the number of pages fetched after page 0; nil means no cap. It returns the
// number of pages written.
func (f *ReviewsFetcher) FetchReviews(ctx context.Context, dataID string, maxPages *int) (int, error) {
	if dataID == "" {
		return 0, ErrEmptyDataID
	}

	log := f.log.With(zap.String("data_id", dataID))

	params := serpapi.Params{
		"engine":  serpapi.EngineGoogleMapsReviews,
		"data_id": dataID,
	}

	doc, err := f.client.Search(ctx, params)
	if err != nil {
		return 0, fmt.Errorf("fetch reviews page 0 of %s: %w", dataID, err)
	}

	if err := f.writer.WriteInfo(ctx, dataID, doc); err != nil {
		return 0, err
	}

	if err := f.writer.WritePage(ctx, writers.Page{DataID: dataID, Index: 0, Doc: doc}); err != nil {
		return 0, err
	}

	written := 1
	cnt := 0

	log.Debug("wrote reviews page", zap.Int("page", 0))

	for token := doc.NextPageToken(); token != "" && (maxPages == nil || cnt < *maxPages); token = doc.NextPageToken() {
		cnt++
		params["next_page_token"] = token

		doc, err = f.client.Search(ctx, params)
		if err != nil {
			return written, fmt.Errorf("fetch reviews page %d of %s: %w", cnt, dataID, err)
		}

		if err := f.writer.WritePage(ctx, writers.Page{DataID: dataID, Index: cnt, Doc: doc}); err != nil {
			return written, err
		}

		written++

		log.Debug("wrote reviews page", zap.Int("page", cnt))
	}

	log.Info("reviews fetched", zap.Int("pages", written))

	return written, nil
}
