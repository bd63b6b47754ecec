package filerunner_test

import (
	"context"
	"errors"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Vector/vector-reviews-scraper/gmaps"
	"github.com/Vector/vector-reviews-scraper/internal/testutils"
	"github.com/Vector/vector-reviews-scraper/journal"
	"github.com/Vector/vector-reviews-scraper/runner"
	"github.com/Vector/vector-reviews-scraper/runner/filerunner"
	"github.com/Vector/vector-reviews-scraper/serpapi"
)

const cafeURL = "https://maps.google.com/maps/place/Cafe+X/@35.0,139.0,12z/data=!1234"

func writeURLs(t *testing.T, dir string, urls ...string) string {
	t.Helper()

	p := filepath.Join(dir, "urls.txt")
	require.NoError(t, os.WriteFile(p, []byte(strings.Join(urls, "\n")+"\n"), 0o600))

	return p
}

func newConfig(t *testing.T, api *testutils.FakeSerpAPI, urls ...string) *runner.Config {
	t.Helper()

	dir := t.TempDir()

	cfg := &runner.Config{
		APIKey:    "secret",
		InputFile: writeURLs(t, dir, urls...),
		OutputDir: filepath.Join(dir, "out"),
		Endpoint:  api.URL,
		Zoom:      gmaps.DefaultZoom,
	}

	require.NoError(t, cfg.Validate())

	return cfg
}

func runFile(t *testing.T, cfg *runner.Config) error {
	t.Helper()

	r, err := filerunner.New(cfg, zap.NewNop())
	require.NoError(t, err)

	defer func() { require.NoError(t, r.Close(context.Background())) }()

	return r.Run(context.Background())
}

func outputFiles(t *testing.T, dir string) []string {
	t.Helper()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}

	return names
}

func TestNew_InvalidRunMode(t *testing.T) {
	_, err := filerunner.New(&runner.Config{RunMode: runner.RunModeQuery}, zap.NewNop())
	require.ErrorIs(t, err, runner.ErrInvalidRunMode)
}

func TestNew_MissingInputFile(t *testing.T) {
	cfg := &runner.Config{
		RunMode:   runner.RunModeFile,
		InputFile: filepath.Join(t.TempDir(), "missing.txt"),
	}

	_, err := filerunner.New(cfg, zap.NewNop())
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestRun_CafeExample(t *testing.T) {
	api := testutils.NewFakeSerpAPI(t)
	api.On(serpapi.EngineGoogleMaps, testutils.PlaceResult("ABC"))
	api.On(serpapi.EngineGoogleMapsReviews, testutils.ReviewPages(-1))

	cfg := newConfig(t, api, cafeURL)
	cfg.MaxPages = testutils.IntPtr(2)

	require.NoError(t, runFile(t, cfg))

	assert.ElementsMatch(t, []string{
		"ABC_info.json",
		"reviews_ABC_0.json",
		"reviews_ABC_1.json",
		"reviews_ABC_2.json",
	}, outputFiles(t, cfg.OutputDir))

	searches := api.Requests(serpapi.EngineGoogleMaps)
	require.Len(t, searches, 1)
	assert.Equal(t, "Cafe X", searches[0].Get("q"))
	assert.Equal(t, "@35.0,139.0,12z", searches[0].Get("ll"))
	assert.Equal(t, "en", searches[0].Get("hl"))

	reviews := api.Requests(serpapi.EngineGoogleMapsReviews)
	require.Len(t, reviews, 3)
	assert.Empty(t, reviews[0].Get("next_page_token"))
	assert.Equal(t, "page-1", reviews[1].Get("next_page_token"))
	assert.Equal(t, "page-2", reviews[2].Get("next_page_token"))

	info, err := os.ReadFile(filepath.Join(cfg.OutputDir, "ABC_info.json"))
	require.NoError(t, err)

	page0, err := os.ReadFile(filepath.Join(cfg.OutputDir, "reviews_ABC_0.json"))
	require.NoError(t, err)

	assert.Equal(t, string(info), string(page0))
	assert.Contains(t, string(page0), "美味しい")
}

func TestRun_InvalidURLSkipped(t *testing.T) {
	api := testutils.NewFakeSerpAPI(t)
	api.On(serpapi.EngineGoogleMaps, testutils.PlaceResult("ABC"))
	api.On(serpapi.EngineGoogleMapsReviews, testutils.ReviewPages(1))

	cfg := newConfig(t, api,
		"https://maps.google.com/maps/place/Cafe+X/@35.0,139.0,12z",
		cafeURL,
	)

	require.NoError(t, runFile(t, cfg))

	assert.ElementsMatch(t, []string{"ABC_info.json", "reviews_ABC_0.json"}, outputFiles(t, cfg.OutputDir))
	assert.Len(t, api.Requests(serpapi.EngineGoogleMaps), 1)
}

func TestRun_InvalidURLStrict(t *testing.T) {
	api := testutils.NewFakeSerpAPI(t)
	api.On(serpapi.EngineGoogleMaps, testutils.PlaceResult("ABC"))
	api.On(serpapi.EngineGoogleMapsReviews, testutils.ReviewPages(1))

	cfg := newConfig(t, api,
		"https://maps.google.com/maps/place/Cafe+X/@35.0,139.0,12z",
		cafeURL,
	)
	cfg.Strict = true

	err := runFile(t, cfg)
	require.ErrorIs(t, err, gmaps.ErrMissingDataParam)
	assert.Contains(t, err.Error(), "Cafe+X/@35.0,139.0,12z")

	assert.Empty(t, api.Requests(serpapi.EngineGoogleMaps))
}

func TestRun_NotFoundContinues(t *testing.T) {
	api := testutils.NewFakeSerpAPI(t)
	api.On(serpapi.EngineGoogleMaps, func(q url.Values) (int, any) {
		if q.Get("q") == "Nowhere" {
			return testutils.NoResults()(q)
		}

		return testutils.LocalResults("DEF", "GHI")(q)
	})
	api.On(serpapi.EngineGoogleMapsReviews, testutils.ReviewPages(2))

	cfg := newConfig(t, api,
		"https://maps.google.com/maps/place/Nowhere/@1.5,2.5,12z/data=!4m2",
		cafeURL,
	)

	require.NoError(t, runFile(t, cfg))

	assert.ElementsMatch(t, []string{
		"DEF_info.json",
		"reviews_DEF_0.json",
		"reviews_DEF_1.json",
	}, outputFiles(t, cfg.OutputDir))
	assert.Len(t, api.Requests(serpapi.EngineGoogleMaps), 2)
}

func TestRun_URLDataIDFallback(t *testing.T) {
	api := testutils.NewFakeSerpAPI(t)
	api.On(serpapi.EngineGoogleMaps, testutils.NoResults())
	api.On(serpapi.EngineGoogleMapsReviews, testutils.ReviewPages(1))

	const placeURL = "https://www.google.com/maps/place/Nowhere/@1.5,2.5,12z/data=!4m6!3m5!1s0x14e7:0xe541!8m2"

	cfg := newConfig(t, api, placeURL)

	require.NoError(t, runFile(t, cfg))
	assert.Empty(t, outputFiles(t, cfg.OutputDir))

	cfg.URLDataIDFallback = true

	require.NoError(t, runFile(t, cfg))
	assert.ElementsMatch(t, []string{
		"0x14e7:0xe541_info.json",
		"reviews_0x14e7:0xe541_0.json",
	}, outputFiles(t, cfg.OutputDir))
}

func TestRun_SkipDuplicates(t *testing.T) {
	api := testutils.NewFakeSerpAPI(t)
	api.On(serpapi.EngineGoogleMaps, testutils.PlaceResult("ABC"))
	api.On(serpapi.EngineGoogleMapsReviews, testutils.ReviewPages(1))

	cfg := newConfig(t, api, cafeURL, cafeURL)

	require.NoError(t, runFile(t, cfg))
	assert.Len(t, api.Requests(serpapi.EngineGoogleMapsReviews), 2)

	api2 := testutils.NewFakeSerpAPI(t)
	api2.On(serpapi.EngineGoogleMaps, testutils.PlaceResult("ABC"))
	api2.On(serpapi.EngineGoogleMapsReviews, testutils.ReviewPages(1))

	cfg.Endpoint = api2.URL
	cfg.SkipDuplicates = true

	require.NoError(t, runFile(t, cfg))
	assert.Len(t, api2.Requests(serpapi.EngineGoogleMaps), 2)
	assert.Len(t, api2.Requests(serpapi.EngineGoogleMapsReviews), 1)
}

func TestRun_TransportErrorAborts(t *testing.T) {
	api := testutils.NewFakeSerpAPI(t)
	api.On(serpapi.EngineGoogleMaps, testutils.PlaceResult("ABC"))
	api.On(serpapi.EngineGoogleMapsReviews, testutils.Status(500, "Internal error"))

	cfg := newConfig(t, api, cafeURL, cafeURL)

	err := runFile(t, cfg)

	var apiErr *serpapi.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 500, apiErr.StatusCode)

	assert.Len(t, api.Requests(serpapi.EngineGoogleMaps), 1)
}

func TestRun_Journal(t *testing.T) {
	api := testutils.NewFakeSerpAPI(t)
	api.On(serpapi.EngineGoogleMaps, testutils.PlaceResult("ABC"))
	api.On(serpapi.EngineGoogleMapsReviews, testutils.ReviewPages(3))

	cfg := newConfig(t, api, cafeURL)
	cfg.JournalDSN = filepath.Join(t.TempDir(), "journal.db")

	require.NoError(t, runFile(t, cfg))

	ctx := context.Background()

	j, err := journal.Open(ctx, cfg.JournalDSN)
	require.NoError(t, err)

	defer j.Close()

	runs, err := j.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "file", runs[0].Mode)
	assert.NotNil(t, runs[0].FinishedAt)
	assert.Empty(t, runs[0].Error)

	pages, err := j.Pages(ctx, runs[0].ID)
	require.NoError(t, err)
	require.Len(t, pages, 3)

	for i, p := range pages {
		assert.Equal(t, "ABC", p.DataID)
		assert.Equal(t, i, p.PageIndex)
	}

	assert.Equal(t, "page-1", pages[0].NextPageToken)
	assert.Empty(t, pages[2].NextPageToken)
}

type fakeUploader struct {
	mu   sync.Mutex
	keys []string
}

func (f *fakeUploader) Upload(_ context.Context, bucket, key string, body io.Reader) error {
	if _, err := io.ReadAll(body); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.keys = append(f.keys, bucket+"/"+key)

	return nil
}

func TestRun_S3Mirror(t *testing.T) {
	api := testutils.NewFakeSerpAPI(t)
	api.On(serpapi.EngineGoogleMaps, testutils.PlaceResult("ABC"))
	api.On(serpapi.EngineGoogleMapsReviews, testutils.ReviewPages(2))

	uploader := &fakeUploader{}

	cfg := newConfig(t, api, cafeURL)
	cfg.S3Bucket = "bucket"
	cfg.S3Prefix = "reviews"
	cfg.S3Uploader = uploader

	require.NoError(t, runFile(t, cfg))

	assert.Equal(t, []string{
		"bucket/reviews/ABC_info.json",
		"bucket/reviews/reviews_ABC_0.json",
		"bucket/reviews/reviews_ABC_1.json",
	}, uploader.keys)
	assert.Len(t, outputFiles(t, cfg.OutputDir), 3)
}
