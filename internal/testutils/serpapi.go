// Package testutils provides an in-process SerpApi stand-in and small
// helpers shared by the package tests.
package testutils

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
)

// Responder produces the status code and JSON body for one request.
type Responder func(q url.Values) (int, any)

// FakeSerpAPI serves /search.json and dispatches on the engine parameter.
type FakeSerpAPI struct {
	*httptest.Server

	mu       sync.Mutex
	handlers map[string]Responder
	requests []url.Values
}

func NewFakeSerpAPI(t testing.TB) *FakeSerpAPI {
	t.Helper()

	f := &FakeSerpAPI{
		handlers: make(map[string]Responder),
	}

	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.Server.Close)

	return f
}

// On registers the responder used for an engine.
func (f *FakeSerpAPI) On(engine string, r Responder) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.handlers[engine] = r
}

// Requests returns the query of every request made for engine, in order.
func (f *FakeSerpAPI) Requests(engine string) []url.Values {
	f.mu.Lock()
	defer f.mu.Unlock()

	var ans []url.Values

	for _, q := range f.requests {
		if q.Get("engine") == engine {
			ans = append(ans, q)
		}
	}

	return ans
}

func (f *FakeSerpAPI) serve(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/search.json" {
		http.NotFound(w, r)
		return
	}

	q := r.URL.Query()

	f.mu.Lock()
	f.requests = append(f.requests, q)
	handler, ok := f.handlers[q.Get("engine")]
	f.mu.Unlock()

	if q.Get("api_key") == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "Invalid API key."})
		return
	}

	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Unsupported engine."})
		return
	}

	status, body := handler(q)
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(body)
}

// PlaceResult answers a google_maps search with a place_results match.
func PlaceResult(dataID string) Responder {
	return func(q url.Values) (int, any) {
		return http.StatusOK, map[string]any{
			"search_parameters": map[string]any{"q": q.Get("q"), "ll": q.Get("ll")},
			"place_results": map[string]any{
				"title":   q.Get("q"),
				"data_id": dataID,
			},
		}
	}
}

// LocalResults answers a google_maps search with a ranked local_results list.
func LocalResults(dataIDs ...string) Responder {
	return func(q url.Values) (int, any) {
		results := make([]any, 0, len(dataIDs))
		for i, id := range dataIDs {
			results = append(results, map[string]any{
				"position": i + 1,
				"data_id":  id,
			})
		}

		return http.StatusOK, map[string]any{
			"search_parameters": map[string]any{"q": q.Get("q"), "ll": q.Get("ll")},
			"local_results":     results,
		}
	}
}

// NoResults answers like SerpApi does when a search matched nothing.
func NoResults() Responder {
	return func(url.Values) (int, any) {
		return http.StatusOK, map[string]any{
			"error": "Google hasn't returned any results for this query.",
		}
	}
}

// ReviewPages answers google_maps_reviews requests with total pages. Page i
// carries the token "page-<i+1>" except the last one. A negative total
// means every page has a token.
func ReviewPages(total int) Responder {
	return func(q url.Values) (int, any) {
		idx := 0

		if tok := q.Get("next_page_token"); tok != "" {
			n, err := strconv.Atoi(strings.TrimPrefix(tok, "page-"))
			if err != nil {
				return http.StatusBadRequest, map[string]any{"error": "bad token"}
			}

			idx = n
		}

		page := map[string]any{
			"search_metadata": map[string]any{"status": "Success"},
			"reviews": []any{
				map[string]any{
					"user":    map[string]any{"name": fmt.Sprintf("reviewer %d", idx)},
					"rating":  4.5,
					"snippet": "美味しい",
				},
			},
		}

		if idx == 0 {
			page["place_info"] = map[string]any{
				"title":   "Cafe X",
				"data_id": q.Get("data_id"),
			}
		}

		if total < 0 || idx+1 < total {
			page["serpapi_pagination"] = map[string]any{
				"next_page_token": fmt.Sprintf("page-%d", idx+1),
			}
		}

		return http.StatusOK, page
	}
}

// Status answers every request with the given status and error message.
func Status(code int, msg string) Responder {
	return func(url.Values) (int, any) {
		return code, map[string]any{"error": msg}
	}
}
