package providers

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saycheese-hq/taaza-varthalu/internal/domain"
)

func writeRoster(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "providers.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadRoster(t *testing.T) {
	path := writeRoster(t, `
providers:
  - id: eenadu
    name: Eenadu
    type: RSS
    source_url: "  https://example.com/feed  "
    priority: HIGH
    backup_urls:
      - " https://example.com/backup "
      - ""
  - id: reddit-nb
    type: reddit
    subreddit: Ni_Bondha
  - id: disabled-one
    type: rss
    source_url: https://example.com/other
    enabled: false
`)

	roster, err := LoadRoster(path)
	require.NoError(t, err)

	all := roster.All()
	require.Len(t, all, 3)

	eenadu := all[0]
	assert.Equal(t, "rss", eenadu.Type)
	assert.Equal(t, "https://example.com/feed", eenadu.SourceURL)
	assert.Equal(t, domain.PriorityHigh, eenadu.Priority)
	assert.Equal(t, []string{"https://example.com/backup"}, eenadu.BackupURLs)

	// Unset priority defaults to medium.
	assert.Equal(t, domain.PriorityMedium, all[1].Priority)

	enabled := roster.Enabled()
	require.Len(t, enabled, 2)
	for _, cfg := range enabled {
		assert.NotEqual(t, "disabled-one", cfg.ID)
	}
}

func TestLoadRosterRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"empty file", "providers: []\n"},
		{"missing id", "providers:\n  - type: rss\n    source_url: https://x\n"},
		{"missing source_url", "providers:\n  - id: x\n    type: rss\n"},
		{"missing subreddit", "providers:\n  - id: x\n    type: reddit\n"},
		{"unknown type", "providers:\n  - id: x\n    type: carrier-pigeon\n"},
		{"duplicate id", "providers:\n  - id: x\n    type: reddit\n    subreddit: a\n  - id: x\n    type: reddit\n    subreddit: b\n"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadRoster(writeRoster(t, tc.content))
			assert.Error(t, err)
		})
	}
}

func TestFetcherRegistrySelectsByType(t *testing.T) {
	client := &stubClient{}
	reg := DefaultFetcherRegistry(client)

	f, err := reg.FetcherFor(Provider{ID: "eenadu", Type: "rss"})
	require.NoError(t, err)
	assert.Equal(t, ProviderTypeRSS, f.ID())

	f, err = reg.FetcherFor(Provider{ID: "nb", Type: "reddit"})
	require.NoError(t, err)
	assert.Equal(t, ProviderTypeReddit, f.ID())

	_, err = reg.FetcherFor(Provider{ID: "x", Type: "telegram"})
	assert.Error(t, err)
}

func TestSourceNameFallsBackToID(t *testing.T) {
	assert.Equal(t, "Eenadu", Provider{ID: "eenadu", Name: "Eenadu"}.SourceName())
	assert.Equal(t, "eenadu", Provider{ID: "eenadu"}.SourceName())
}

func TestHeadersDropsEmptyPairs(t *testing.T) {
	cfg := Provider{Headers: map[string]string{
		"User-Agent": "SayCheese-TrendAggregator/1.0",
		"":           "nope",
		"X-Blank":    "   ",
	}}

	headers := Headers(cfg)
	require.Len(t, headers, 1)
	assert.Equal(t, "SayCheese-TrendAggregator/1.0", headers["User-Agent"])

	assert.Nil(t, Headers(Provider{}))
}
