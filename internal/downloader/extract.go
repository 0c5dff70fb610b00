package downloader

import (
	"context"
	"fmt"
	"strings"

	"github.com/kkdai/youtube/v2"

	"github.com/tunepull/tunepull/internal/config"
)

// Extractor performs metadata-only queries through the extraction library.
// No media bytes are transferred.
type Extractor struct {
	client MediaClient
}

// NewExtractor builds an extractor from the configured HTTP settings.
func NewExtractor(cfg config.Config) *Extractor {
	return &Extractor{client: newClientFn(cfg)}
}

// Fetch resolves the URL and returns playlist metadata. Single videos come
// back as a one-entry playlist so the rest of the pipeline has one shape to
// deal with.
func (e *Extractor) Fetch(ctx context.Context, rawURL string) (*PlaylistInfo, error) {
	rawURL = ConvertMusicURL(strings.TrimSpace(rawURL))
	kind, err := Classify(rawURL)
	if err != nil {
		return nil, err
	}
	if kind == KindPlaylist {
		return e.FetchPlaylist(ctx, rawURL)
	}
	video, err := e.FetchVideo(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	return &PlaylistInfo{
		ID:          video.ID,
		Title:       video.Title,
		Uploader:    video.Uploader,
		Description: "Single video",
		URL:         rawURL,
		Kind:        KindVideo,
		Videos:      []VideoInfo{*video},
	}, nil
}

// FetchVideo queries metadata for a single video URL.
func (e *Extractor) FetchVideo(ctx context.Context, rawURL string) (*VideoInfo, error) {
	video, err := e.client.GetVideoContext(ctx, NormalizeYouTubeURL(rawURL))
	if err != nil {
		return nil, wrapExtractionError(err, "fetching video metadata")
	}
	info := videoInfoFrom(video)
	return &info, nil
}

// FetchPlaylist queries metadata for a playlist URL, preserving entry order.
func (e *Extractor) FetchPlaylist(ctx context.Context, rawURL string) (*PlaylistInfo, error) {
	playlist, err := e.client.GetPlaylistContext(ctx, rawURL)
	if err != nil {
		return nil, wrapExtractionError(err, "fetching playlist")
	}

	info := &PlaylistInfo{
		ID:          playlist.ID,
		Title:       playlist.Title,
		Uploader:    playlist.Author,
		Description: playlist.Description,
		URL:         rawURL,
		Kind:        KindPlaylist,
	}
	if info.Title == "" {
		info.Title = "Playlist"
	}
	for i, entry := range playlist.Videos {
		if entry == nil || entry.ID == "" {
			continue
		}
		info.Videos = append(info.Videos, VideoInfo{
			ID:            entry.ID,
			Title:         entryTitle(entry),
			DurationSec:   int(entry.Duration.Seconds()),
			Uploader:      entry.Author,
			ThumbnailURL:  bestThumbnailURL(entry.Thumbnails),
			PlaylistIndex: i + 1,
		})
	}
	return info, nil
}

func videoInfoFrom(video *youtube.Video) VideoInfo {
	return VideoInfo{
		ID:           video.ID,
		Title:        video.Title,
		DurationSec:  int(video.Duration.Seconds()),
		Uploader:     video.Author,
		ThumbnailURL: bestThumbnailURL(video.Thumbnails),
	}
}

func bestThumbnailURL(thumbnails youtube.Thumbnails) string {
	bestURL := ""
	var bestArea uint
	for _, thumb := range thumbnails {
		area := thumb.Width * thumb.Height
		if area >= bestArea {
			bestArea = area
			bestURL = thumb.URL
		}
	}
	return bestURL
}

func entryTitle(entry *youtube.PlaylistEntry) string {
	if entry == nil {
		return ""
	}
	if entry.Title != "" {
		return entry.Title
	}
	return entry.ID
}

// wrapExtractionError categorizes a library failure, flagging restricted
// content so the CLI can explain it instead of showing a bare HTTP error.
func wrapExtractionError(err error, action string) error {
	if err == nil {
		return nil
	}
	if isRestrictedAccess(err) {
		return wrapCategory(CategoryExtraction, fmt.Errorf("%s: restricted access: %w", action, err))
	}
	return wrapCategory(CategoryExtraction, fmt.Errorf("%s: %w", action, err))
}

func isRestrictedAccess(err error) bool {
	if err == nil {
		return false
	}
	message := strings.ToLower(err.Error())
	restrictedMarkers := []string{
		"private",
		"sign in",
		"login",
		"members only",
		"premium",
		"copyright",
		"video unavailable",
		"content unavailable",
		"age-restricted",
		"age restricted",
		"not available",
	}
	for _, marker := range restrictedMarkers {
		if strings.Contains(message, marker) {
			return true
		}
	}
	return false
}
