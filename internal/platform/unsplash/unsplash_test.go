package unsplash

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFetchHeroImageSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search/photos", r.URL.Path)
		assert.Equal(t, "Client-ID test-key", r.Header.Get("Authorization"))
		assert.Contains(t, r.URL.Query().Get("query"), "Kyoto")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"results": [
				{
					"urls": {"regular": "https://images.unsplash.com/photo-kyoto?w=1080"},
					"user": {"name": "Aiko Tanaka"}
				}
			]
		}`))
	}))
	defer server.Close()

	client := NewClient("test-key", nil, WithBaseURL(server.URL))

	image := client.FetchHeroImage(context.Background(), "Kyoto")
	assert.Equal(t, "https://images.unsplash.com/photo-kyoto?w=1080", image.URL)
	assert.Equal(t, "Aiko Tanaka", image.Photographer)
	assert.Equal(t, "Unsplash", image.Source)
}

func TestFetchHeroImageMissingAccessKey(t *testing.T) {
	client := NewClient("", nil)

	image := client.FetchHeroImage(context.Background(), "Kyoto")
	assert.Equal(t, FallbackImage, image)
}

func TestFetchHeroImageNon200Status(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client := NewClient("test-key", nil, WithBaseURL(server.URL))

	assert.Equal(t, FallbackImage, client.FetchHeroImage(context.Background(), "Kyoto"))
}

func TestFetchHeroImageEmptyResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results": []}`))
	}))
	defer server.Close()

	client := NewClient("test-key", nil, WithBaseURL(server.URL))

	assert.Equal(t, FallbackImage, client.FetchHeroImage(context.Background(), "Nowhere"))
}

func TestFetchHeroImageMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results": [`))
	}))
	defer server.Close()

	client := NewClient("test-key", nil, WithBaseURL(server.URL))

	assert.Equal(t, FallbackImage, client.FetchHeroImage(context.Background(), "Kyoto"))
}

func TestFetchHeroImageNetworkFailure(t *testing.T) {
	// Point at a server that is already closed.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := NewClient("test-key", nil, WithBaseURL(server.URL))

	assert.Equal(t, FallbackImage, client.FetchHeroImage(context.Background(), "Kyoto"))
}

func TestFetchHeroImageMissingPhotographerName(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"results": [{"urls": {"regular": "https://images.unsplash.com/photo-x"}, "user": {}}]
		}`))
	}))
	defer server.Close()

	client := NewClient("test-key", nil, WithBaseURL(server.URL))

	image := client.FetchHeroImage(context.Background(), "Kyoto")
	assert.Equal(t, "Unsplash", image.Photographer)
}

func TestFetchHeroImageRespectsTimeout(t *testing.T) {
	blocked := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-blocked
	}))
	defer server.Close()
	defer close(blocked)

	client := NewClient("test-key", nil,
		WithBaseURL(server.URL),
		WithTimeout(50*time.Millisecond))

	start := time.Now()
	image := client.FetchHeroImage(context.Background(), "Kyoto")
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Equal(t, FallbackImage, image)
}
