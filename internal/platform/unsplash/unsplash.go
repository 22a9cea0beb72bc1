// Package unsplash fetches destination hero images from the Unsplash search
// API. Image lookup is decorative: the client never returns an error, it
// degrades to a fixed stock fallback so that a completed itinerary is never
// blocked on the image provider.
package unsplash

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/jmickel/wayfarer-api/internal/domain"
	"github.com/jmickel/wayfarer-api/internal/platform/logger"
)

const defaultBaseURL = "https://api.unsplash.com"

// defaultTimeout bounds each image lookup when no timeout is configured.
const defaultTimeout = 30 * time.Second

// FallbackImage is returned whenever the provider cannot supply a usable
// image: missing access key, network failure, non-200 status, or an empty
// result set.
var FallbackImage = domain.HeroImage{
	URL:          "https://images.unsplash.com/photo-1488646953014-85cb44e25828?w=800&q=80",
	Photographer: "Unsplash",
	Source:       "Unsplash",
}

// searchResponse mirrors the subset of the Unsplash search payload we read.
type searchResponse struct {
	Results []struct {
		URLs struct {
			Regular string `json:"regular"`
		} `json:"urls"`
		User struct {
			Name string `json:"name"`
		} `json:"user"`
	} `json:"results"`
}

// Client queries the Unsplash photo search API.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	baseURL    string
	accessKey  string
	timeout    time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL. Used by tests.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// NewClient creates an Unsplash client. An empty access key is allowed;
// every lookup then resolves to the fallback image without network traffic.
// If logger is nil, a default logger will be used.
func NewClient(accessKey string, logger *slog.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = slog.Default()
	}

	c := &Client{
		httpClient: http.DefaultClient,
		logger:     logger.With(slog.String("component", "unsplash_client")),
		baseURL:    defaultBaseURL,
		accessKey:  accessKey,
		timeout:    defaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchHeroImage returns a hero image for the destination. It never fails:
// any provider problem yields FallbackImage, keeping image acquisition an
// isolated failure domain from itinerary generation.
func (c *Client) FetchHeroImage(ctx context.Context, destination string) domain.HeroImage {
	log := logger.FromContextOrDefault(ctx, c.logger)

	if c.accessKey == "" {
		log.Debug("no unsplash access key configured, using fallback image")
		return FallbackImage
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	endpoint := fmt.Sprintf("%s/search/photos?query=%s&per_page=1&orientation=landscape",
		c.baseURL, url.QueryEscape(destination+" travel"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		log.Warn("failed to build unsplash request",
			slog.String("error", err.Error()),
			slog.String("destination", destination))
		return FallbackImage
	}
	req.Header.Set("Authorization", "Client-ID "+c.accessKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn("unsplash request failed, using fallback image",
			slog.String("error", err.Error()),
			slog.String("destination", destination))
		return FallbackImage
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.Warn("failed to close unsplash response body",
				slog.String("error", err.Error()))
		}
	}()

	if resp.StatusCode != http.StatusOK {
		log.Warn("unsplash returned non-200 status, using fallback image",
			slog.Int("status", resp.StatusCode),
			slog.String("destination", destination))
		return FallbackImage
	}

	var payload searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		log.Warn("failed to decode unsplash response, using fallback image",
			slog.String("error", err.Error()),
			slog.String("destination", destination))
		return FallbackImage
	}

	if len(payload.Results) == 0 || payload.Results[0].URLs.Regular == "" {
		log.Debug("no unsplash results for destination, using fallback image",
			slog.String("destination", destination))
		return FallbackImage
	}

	result := payload.Results[0]
	photographer := result.User.Name
	if photographer == "" {
		photographer = "Unsplash"
	}

	log.Debug("fetched hero image",
		slog.String("destination", destination),
		slog.String("photographer", photographer))

	return domain.HeroImage{
		URL:          result.URLs.Regular,
		Photographer: photographer,
		Source:       "Unsplash",
	}
}
