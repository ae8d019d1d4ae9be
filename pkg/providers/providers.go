package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/saycheese-hq/taaza-varthalu/internal/domain"
	"github.com/saycheese-hq/taaza-varthalu/pkg/httpclient"
)

const (
	// Supported provider types.
	ProviderTypeRSS        = "rss"
	ProviderTypeReddit     = "reddit"
	ProviderTypeGoogleNews = "google-news"
	ProviderTypeYouTube    = "youtube-channels"
)

// HTTPClient is the transport contract fetchers depend on.
type HTTPClient = httpclient.Client

// Provider is a single content source declared in the roster file.
type Provider struct {
	ID         string            `json:"id" yaml:"id"`
	Name       string            `json:"name" yaml:"name"`
	Type       string            `json:"type" yaml:"type"`
	SourceURL  string            `json:"source_url" yaml:"source_url"`
	BackupURLs []string          `json:"backup_urls" yaml:"backup_urls"`
	Subreddit  string            `json:"subreddit" yaml:"subreddit"`
	Channels   []string          `json:"channels" yaml:"channels"`
	Priority   domain.Priority   `json:"priority" yaml:"priority"`
	Category   string            `json:"category" yaml:"category"`
	Enabled    *bool             `json:"enabled" yaml:"enabled"`
	Headers    map[string]string `json:"headers" yaml:"headers"`
	// RequestDelaySeconds throttles fetchers that hit the same host
	// repeatedly.
	RequestDelaySeconds int `json:"request_delay_seconds" yaml:"request_delay_seconds"`
}

// EnabledValue returns the enabled flag defaulting to true.
func (p Provider) EnabledValue() bool {
	if p.Enabled == nil {
		return true
	}
	return *p.Enabled
}

// SourceName returns the human-readable origin attached to fetched items.
func (p Provider) SourceName() string {
	if strings.TrimSpace(p.Name) != "" {
		return p.Name
	}
	return p.ID
}

// RequestDelay returns the configured inter-request delay.
func (p Provider) RequestDelay() time.Duration {
	if p.RequestDelaySeconds <= 0 {
		return 0
	}
	return time.Duration(p.RequestDelaySeconds) * time.Second
}

// Fetcher retrieves content items for providers of one type.
type Fetcher interface {
	ID() string
	Fetch(ctx context.Context, cfg Provider) ([]domain.ContentItem, error)
}

// rosterFile is the on-disk structure of the provider roster.
type rosterFile struct {
	Providers []Provider `json:"providers" yaml:"providers"`
}

// Roster holds the validated provider declarations loaded from config.
type Roster struct {
	providers []Provider
}

// LoadRoster loads the provider roster from a YAML or JSON file.
// Environment references in the file are expanded before decoding.
func LoadRoster(path string) (*Roster, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("providers file path is empty")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read providers file: %w", err)
	}

	expanded := []byte(os.ExpandEnv(string(raw)))

	var file rosterFile
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = json.Unmarshal(expanded, &file)
	default:
		err = yaml.Unmarshal(expanded, &file)
	}
	if err != nil {
		return nil, fmt.Errorf("decode providers file: %w", err)
	}
	if len(file.Providers) == 0 {
		return nil, errors.New("providers file contains no providers entries")
	}

	seen := make(map[string]struct{}, len(file.Providers))
	providers := make([]Provider, 0, len(file.Providers))
	for i, cfg := range file.Providers {
		cfg = sanitizeProvider(cfg)
		if err := validateProvider(cfg); err != nil {
			return nil, fmt.Errorf("providers[%d]: %w", i, err)
		}
		if _, dup := seen[cfg.ID]; dup {
			return nil, fmt.Errorf("duplicate provider id %q", cfg.ID)
		}
		seen[cfg.ID] = struct{}{}
		providers = append(providers, cfg)
	}

	return &Roster{providers: providers}, nil
}

// sanitizeProvider trims and normalizes the roster entry fields.
func sanitizeProvider(cfg Provider) Provider {
	cfg.ID = strings.TrimSpace(cfg.ID)
	cfg.Name = strings.TrimSpace(cfg.Name)
	cfg.Type = strings.ToLower(strings.TrimSpace(cfg.Type))
	cfg.SourceURL = strings.TrimSpace(cfg.SourceURL)
	cfg.Subreddit = strings.TrimSpace(cfg.Subreddit)
	cfg.Category = strings.ToLower(strings.TrimSpace(cfg.Category))

	switch domain.Priority(strings.ToLower(strings.TrimSpace(string(cfg.Priority)))) {
	case domain.PriorityHigh:
		cfg.Priority = domain.PriorityHigh
	case domain.PriorityLow:
		cfg.Priority = domain.PriorityLow
	default:
		cfg.Priority = domain.PriorityMedium
	}

	urls := make([]string, 0, len(cfg.BackupURLs))
	for _, u := range cfg.BackupURLs {
		if u = strings.TrimSpace(u); u != "" {
			urls = append(urls, u)
		}
	}
	cfg.BackupURLs = urls

	refs := make([]string, 0, len(cfg.Channels))
	for _, c := range cfg.Channels {
		if c = strings.TrimSpace(c); c != "" {
			refs = append(refs, c)
		}
	}
	cfg.Channels = refs

	return cfg
}

// validateProvider checks that required fields are present per type.
func validateProvider(cfg Provider) error {
	if cfg.ID == "" {
		return errors.New("id is required")
	}
	switch cfg.Type {
	case ProviderTypeRSS, ProviderTypeGoogleNews:
		if cfg.SourceURL == "" {
			return fmt.Errorf("source_url is required for provider %q", cfg.ID)
		}
	case ProviderTypeReddit:
		if cfg.Subreddit == "" {
			return fmt.Errorf("subreddit is required for provider %q", cfg.ID)
		}
	case ProviderTypeYouTube:
		// Channel roster comes from the channel directory.
	case "":
		return fmt.Errorf("type is required for provider %q", cfg.ID)
	default:
		return fmt.Errorf("type %q not supported for provider %q", cfg.Type, cfg.ID)
	}
	return nil
}

// All returns the declared providers.
func (r *Roster) All() []Provider {
	if r == nil {
		return nil
	}
	out := make([]Provider, len(r.providers))
	copy(out, r.providers)
	return out
}

// Enabled returns the providers that are switched on.
func (r *Roster) Enabled() []Provider {
	all := r.All()
	out := make([]Provider, 0, len(all))
	for _, cfg := range all {
		if cfg.EnabledValue() {
			out = append(out, cfg)
		}
	}
	return out
}

// Headers returns the HTTP headers a fetcher should send for the provider.
func Headers(cfg Provider) map[string]string {
	if len(cfg.Headers) == 0 {
		return nil
	}
	out := make(map[string]string, len(cfg.Headers))
	for k, v := range cfg.Headers {
		k = strings.TrimSpace(k)
		v = strings.TrimSpace(v)
		if k == "" || v == "" {
			continue
		}
		out[k] = v
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// DefaultHTTPClient returns a tuned HTTP client for provider fetchers.
func DefaultHTTPClient() HTTPClient { return httpclient.NewRestyClient(15 * time.Second) }
