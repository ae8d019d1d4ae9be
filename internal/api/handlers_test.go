package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saycheese-hq/taaza-varthalu/internal/aggregator"
	"github.com/saycheese-hq/taaza-varthalu/internal/channels"
	"github.com/saycheese-hq/taaza-varthalu/internal/domain"
	"github.com/saycheese-hq/taaza-varthalu/pkg/providers"
)

// stubTrending serves fixed aggregation results and records the last
// alternative request.
type stubTrending struct {
	result    aggregator.Result
	err       error
	health    []aggregator.ProviderHealth
	providers []providers.Provider

	altRegion     string
	altCategories []string
}

func (s *stubTrending) Trending(context.Context) (aggregator.Result, error) { return s.result, s.err }
func (s *stubTrending) Alternative(_ context.Context, region string, categories []string) (aggregator.Result, error) {
	s.altRegion = region
	s.altCategories = categories
	return s.result, s.err
}
func (s *stubTrending) Health() []aggregator.ProviderHealth { return s.health }
func (s *stubTrending) Providers() []providers.Provider     { return s.providers }

// stubChannels serves a fixed channel set.
type stubChannels struct {
	chans     []channels.Channel
	refreshed time.Time
}

func (s *stubChannels) List(context.Context) ([]channels.Channel, error) { return s.chans, nil }
func (s *stubChannels) Get(_ context.Context, id string) (channels.Channel, error) {
	for _, ch := range s.chans {
		if ch.ID == id {
			return ch, nil
		}
	}
	return channels.Channel{}, channels.ErrChannelNotFound
}
func (s *stubChannels) Refresh(ctx context.Context) ([]channels.Channel, error) {
	return s.chans, nil
}
func (s *stubChannels) LastRefreshed() time.Time { return s.refreshed }

func sampleResult() aggregator.Result {
	return aggregator.Result{
		Timestamp: time.Now().UTC(),
		Region:    "telugu",
		Data: domain.CategorizedContent{
			Politics: []domain.ContentItem{{ID: "p1", Title: "Assembly passes budget", Source: "Eenadu"}},
			Cinema:   []domain.ContentItem{{ID: "c1", Title: "New release this friday", Source: "Sakshi"}},
		},
		Categories: []string{"politics", "cinema", "all"},
		Sources:    []string{"Eenadu", "Sakshi"},
	}
}

func doRequest(t *testing.T, s *Server, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHealthz(t *testing.T) {
	s := NewServer(&stubTrending{}, nil, nil, nil, false, nil)

	rec := doRequest(t, s, http.MethodGet, "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decodeBody(t, rec)["status"])
}

func TestTrendingEndpoint(t *testing.T) {
	s := NewServer(&stubTrending{result: sampleResult()}, nil, nil, nil, false, nil)

	rec := doRequest(t, s, http.MethodGet, "/api/trending/telugu")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "telugu", body["region"])

	data, ok := body["data"].(map[string]any)
	require.True(t, ok)
	assert.Len(t, data["politics"], 1)
	assert.Len(t, data["cinema"], 1)
}

func TestTrendingEndpointError(t *testing.T) {
	s := NewServer(&stubTrending{err: errors.New("boom")}, nil, nil, nil, false, nil)

	rec := doRequest(t, s, http.MethodGet, "/api/trending/telugu")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "failed to aggregate trending content", decodeBody(t, rec)["error"])
}

func TestAlternativeEndpoint(t *testing.T) {
	trending := &stubTrending{result: sampleResult()}
	s := NewServer(trending, nil, nil, nil, false, nil)

	rec := doRequest(t, s, http.MethodGet, "/api/trending/alternative?region=global&categories=politics,cinema")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "telugu", decodeBody(t, rec)["region"])

	assert.Equal(t, "global", trending.altRegion)
	assert.Equal(t, []string{"politics", "cinema"}, trending.altCategories)
}

func TestAlternativeEndpointDefaults(t *testing.T) {
	trending := &stubTrending{result: sampleResult()}
	s := NewServer(trending, nil, nil, nil, false, nil)

	rec := doRequest(t, s, http.MethodGet, "/api/trending/alternative")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Empty(t, trending.altRegion)
	assert.Nil(t, trending.altCategories)
}

func TestAlternativeEndpointError(t *testing.T) {
	s := NewServer(&stubTrending{err: errors.New("boom")}, nil, nil, nil, false, nil)

	rec := doRequest(t, s, http.MethodGet, "/api/trending/alternative")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "failed to aggregate alternative content", decodeBody(t, rec)["error"])
}

// fixedRejections backs the status endpoint's temporal section in tests.
type fixedRejections map[string]int

func (f fixedRejections) RejectionCounts() map[string]int { return f }

func TestStatusEndpoint(t *testing.T) {
	trending := &stubTrending{
		health: []aggregator.ProviderHealth{
			{ID: "eenadu", Healthy: true, Items: 12},
			{ID: "broken", Healthy: false, LastError: "timeout"},
		},
	}
	chanSvc := &stubChannels{refreshed: time.Now().UTC()}

	s := NewServer(trending, chanSvc, fixedRejections{"Eenadu": 3}, nil, false, nil)

	rec := doRequest(t, s, http.MethodGet, "/api/status")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "ok", body["status"])
	assert.Len(t, body["providers"], 2)

	rejections, ok := body["temporal_rejections"].(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 3, rejections["Eenadu"])

	assert.NotEmpty(t, body["channels_refreshed"])
}

func TestSourcesEndpointHidesHeaders(t *testing.T) {
	trending := &stubTrending{providers: []providers.Provider{
		{
			ID:       "reddit-nb",
			Name:     "r/Ni_Bondha",
			Type:     "reddit",
			Priority: domain.PriorityHigh,
			Headers:  map[string]string{"Authorization": "Bearer secret"},
		},
	}}
	s := NewServer(trending, nil, nil, nil, false, nil)

	rec := doRequest(t, s, http.MethodGet, "/api/sources")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.EqualValues(t, 1, body["count"])
	assert.NotContains(t, rec.Body.String(), "secret")
	assert.NotContains(t, rec.Body.String(), "Authorization")

	sources, ok := body["sources"].([]any)
	require.True(t, ok)
	entry := sources[0].(map[string]any)
	assert.Equal(t, "reddit-nb", entry["id"])
	assert.Equal(t, "high", entry["priority"])
	assert.Equal(t, true, entry["enabled"])
}

func TestChannelEndpoints(t *testing.T) {
	chanSvc := &stubChannels{chans: []channels.Channel{
		{ID: "UCa", Name: "NTV Telugu", Subscribers: 4560000},
	}}
	s := NewServer(&stubTrending{}, chanSvc, nil, nil, false, nil)

	rec := doRequest(t, s, http.MethodGet, "/api/channels")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decodeBody(t, rec)["count"])

	rec = doRequest(t, s, http.MethodGet, "/api/channels/UCa")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "NTV Telugu", decodeBody(t, rec)["name"])

	rec = doRequest(t, s, http.MethodGet, "/api/channels/missing")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "channel not found", decodeBody(t, rec)["error"])

	rec = doRequest(t, s, http.MethodPost, "/api/channels/refresh")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestChannelRoutesAbsentWithoutService(t *testing.T) {
	s := NewServer(&stubTrending{}, nil, nil, nil, false, nil)

	rec := doRequest(t, s, http.MethodGet, "/api/channels")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
