package serpapi_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vector/vector-reviews-scraper/internal/testutils"
	"github.com/Vector/vector-reviews-scraper/serpapi"
)

func TestNew_RequiresKey(t *testing.T) {
	_, err := serpapi.New("")
	require.ErrorIs(t, err, serpapi.ErrMissingKey)
}

func TestClient_Search(t *testing.T) {
	fake := testutils.NewFakeSerpAPI(t)
	fake.On(serpapi.EngineGoogleMaps, testutils.PlaceResult("0xabc:0xdef"))

	client, err := serpapi.New("secret", serpapi.WithBaseURL(fake.URL))
	require.NoError(t, err)

	doc, err := client.Search(context.Background(), serpapi.Params{
		"engine": serpapi.EngineGoogleMaps,
		"q":      "Cafe X",
		"ll":     "@35,139,12z",
	})
	require.NoError(t, err)
	assert.Equal(t, "0xabc:0xdef", doc.PlaceResultsDataID())

	reqs := fake.Requests(serpapi.EngineGoogleMaps)
	require.Len(t, reqs, 1)
	assert.Equal(t, "secret", reqs[0].Get("api_key"))
	assert.Equal(t, "json", reqs[0].Get("output"))
	assert.Equal(t, "Cafe X", reqs[0].Get("q"))
	assert.Equal(t, "@35,139,12z", reqs[0].Get("ll"))
}

func TestClient_Search_APIError(t *testing.T) {
	fake := testutils.NewFakeSerpAPI(t)
	fake.On(serpapi.EngineGoogleMapsReviews, testutils.Status(http.StatusUnauthorized, "Invalid API key."))

	client, err := serpapi.New("bad", serpapi.WithBaseURL(fake.URL))
	require.NoError(t, err)

	_, err = client.Search(context.Background(), serpapi.Params{
		"engine":  serpapi.EngineGoogleMapsReviews,
		"data_id": "0x1:0x2",
	})
	require.Error(t, err)

	var apiErr *serpapi.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "Invalid API key.", apiErr.Message)
}

func TestClient_Search_ErrorBodyWithOK(t *testing.T) {
	fake := testutils.NewFakeSerpAPI(t)
	fake.On(serpapi.EngineGoogleMaps, testutils.NoResults())

	client, err := serpapi.New("secret", serpapi.WithBaseURL(fake.URL))
	require.NoError(t, err)

	doc, err := client.Search(context.Background(), serpapi.Params{"engine": serpapi.EngineGoogleMaps})
	require.NoError(t, err)
	assert.NotEmpty(t, doc.ErrorMessage())
	assert.Empty(t, doc.PlaceResultsDataID())
	assert.Empty(t, doc.FirstLocalResultDataID())
}

func TestClient_Search_Canceled(t *testing.T) {
	fake := testutils.NewFakeSerpAPI(t)
	fake.On(serpapi.EngineGoogleMaps, testutils.PlaceResult("0x1:0x2"))

	client, err := serpapi.New("secret", serpapi.WithBaseURL(fake.URL))
	require.NoError(t, err)

	_, err = client.Search(testutils.GetTimeoutContext(t), serpapi.Params{"engine": serpapi.EngineGoogleMaps})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
