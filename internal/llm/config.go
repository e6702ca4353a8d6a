package llm

import (
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// Provider kinds. Hosted goes through an OpenRouter-compatible API; local
// targets a self-hosted OpenAI-compatible endpoint.
const (
	ProviderOpenRouter = "openrouter"
	ProviderLocal      = "local"
)

const openRouterBaseURL = "https://openrouter.ai/api/v1"

// Config selects and parameterizes an LLM backend. The two provider kinds
// share one client; they differ only in base URL, credentials, and the
// identification headers the hosted API wants.
type Config struct {
	Provider    string `json:"provider"`
	APIKey      string `json:"-"`
	EndpointURL string `json:"endpoint_url,omitempty"`
	Model       string `json:"model"`
	SiteURL     string `json:"site_url,omitempty"`
	SiteName    string `json:"site_name,omitempty"`
}

// Timeouts bound each client operation independently. Analysis runs much
// longer than suggestion because it carries command output in the prompt.
type Timeouts struct {
	Suggest  time.Duration
	FollowUp time.Duration
	Analyze  time.Duration
	Connect  time.Duration
}

func DefaultTimeouts() Timeouts {
	return Timeouts{
		Suggest:  15 * time.Second,
		FollowUp: 20 * time.Second,
		Analyze:  2 * time.Minute,
		Connect:  10 * time.Second,
	}
}

func newCompleter(cfg Config) chatCompleter {
	oc := openai.DefaultConfig(cfg.APIKey)
	switch cfg.Provider {
	case ProviderLocal:
		oc.BaseURL = localBaseURL(cfg.EndpointURL)
	default:
		oc.BaseURL = cfg.EndpointURL
		if oc.BaseURL == "" {
			oc.BaseURL = openRouterBaseURL
		}
		oc.HTTPClient = &http.Client{
			Transport: &headerTransport{
				base: http.DefaultTransport,
				headers: map[string]string{
					"HTTP-Referer": valueOr(cfg.SiteURL, "https://github.com/mehdi-chebbi/k8s-chat"),
					"X-Title":      valueOr(cfg.SiteName, "k8s-chat"),
				},
			},
		}
	}
	return openai.NewClientWithConfig(oc)
}

func localBaseURL(endpoint string) string {
	endpoint = strings.TrimRight(endpoint, "/")
	if endpoint == "" {
		endpoint = "http://localhost:8080"
	}
	if !strings.HasSuffix(endpoint, "/v1") {
		endpoint += "/v1"
	}
	return endpoint
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

// headerTransport injects static headers on every request. The hosted API
// uses them to attribute traffic.
type headerTransport struct {
	base    http.RoundTripper
	headers map[string]string
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	for k, v := range t.headers {
		clone.Header.Set(k, v)
	}
	return t.base.RoundTrip(clone)
}
