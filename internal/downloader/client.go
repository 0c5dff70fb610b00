package downloader

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/kkdai/youtube/v2"

	"github.com/tunepull/tunepull/internal/config"
)

const fetchTimeout = 3 * time.Minute

// MediaClient is the slice of the extraction library the pipeline needs.
// Decoupling from the concrete youtube.Client enables testing with stubs.
type MediaClient interface {
	GetVideoContext(ctx context.Context, url string) (*youtube.Video, error)
	GetPlaylistContext(ctx context.Context, url string) (*youtube.Playlist, error)
	GetStreamContext(ctx context.Context, video *youtube.Video, format *youtube.Format) (io.ReadCloser, int64, error)
}

// httpTransport honors the configured proxy for all outbound traffic.
func httpTransport(cfg config.Config) http.RoundTripper {
	if cfg.ProxyURL != "" {
		if proxyURL, err := url.Parse(cfg.ProxyURL); err == nil {
			return &http.Transport{Proxy: http.ProxyURL(proxyURL)}
		}
	}
	return http.DefaultTransport
}

// newHTTPClient builds the client used for side requests (thumbnails) so
// they go through the same proxy as the extraction traffic.
func newHTTPClient(cfg config.Config) *http.Client {
	return &http.Client{
		Timeout:   thumbnailFetchTimeout,
		Transport: httpTransport(cfg),
	}
}

// newClient builds a youtube.Client honoring the proxy and timeout settings.
func newClient(cfg config.Config) MediaClient {
	return &youtube.Client{
		HTTPClient: &http.Client{
			Timeout:   fetchTimeout,
			Transport: httpTransport(cfg),
		},
	}
}

// newClientFn is a seam so tests can substitute a stub client.
var newClientFn = newClient
