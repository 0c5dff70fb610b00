package downloader

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// Kind classifies a validated YouTube URL.
type Kind string

const (
	KindVideo    Kind = "video"
	KindPlaylist Kind = "playlist"
)

var (
	videoIDRegex    = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)
	playlistIDRegex = regexp.MustCompile(`^[A-Za-z0-9_-]{13,42}$`)
)

// Classify validates raw as a YouTube video or playlist URL without touching
// the network. Schemeless input is accepted the way browsers accept it.
func Classify(raw string) (Kind, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", wrapCategory(CategoryInvalidURL, fmt.Errorf("empty URL"))
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}

	parsed, err := url.Parse(trimmed)
	if err != nil {
		return "", wrapCategory(CategoryInvalidURL, fmt.Errorf("invalid URL: %w", err))
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return "", wrapCategory(CategoryInvalidURL, fmt.Errorf("invalid URL: missing scheme or host"))
	}
	switch strings.ToLower(parsed.Scheme) {
	case "http", "https":
	default:
		return "", wrapCategory(CategoryInvalidURL, fmt.Errorf("unsupported URL scheme: %s", parsed.Scheme))
	}

	host := normalizeHostname(parsed)
	switch host {
	case "youtube.com", "m.youtube.com", "music.youtube.com", "youtu.be":
	default:
		return "", wrapCategory(CategoryInvalidURL, fmt.Errorf("not a YouTube URL: %s", parsed.Host))
	}

	query := parsed.Query()

	// A list= parameter wins over watch?v= so that "video inside playlist"
	// links download the whole playlist.
	if list := query.Get("list"); list != "" && playlistIDRegex.MatchString(list) {
		return KindPlaylist, nil
	}
	if strings.HasPrefix(parsed.Path, "/playlist") {
		return "", wrapCategory(CategoryInvalidURL, fmt.Errorf("playlist URL missing list parameter"))
	}

	if host == "youtu.be" {
		if id := strings.Trim(parsed.Path, "/"); videoIDRegex.MatchString(id) {
			return KindVideo, nil
		}
		return "", wrapCategory(CategoryInvalidURL, fmt.Errorf("youtu.be URL missing video id"))
	}
	if v := query.Get("v"); v != "" && videoIDRegex.MatchString(v) {
		return KindVideo, nil
	}
	parts := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	if len(parts) == 2 && (parts[0] == "shorts" || parts[0] == "live") && videoIDRegex.MatchString(parts[1]) {
		return KindVideo, nil
	}

	return "", wrapCategory(CategoryInvalidURL, fmt.Errorf("unrecognized YouTube URL shape: %s", raw))
}

// normalizeHostname returns the normalized hostname from a URL:
// lowercase, with "www." prefix removed, and port stripped.
func normalizeHostname(parsed *url.URL) string {
	host := strings.ToLower(parsed.Hostname())
	return strings.TrimPrefix(host, "www.")
}

// ConvertMusicURL converts YouTube Music URLs to regular YouTube URLs.
func ConvertMusicURL(u string) string {
	parsed, err := url.Parse(u)
	if err != nil {
		return u
	}
	if normalizeHostname(parsed) != "music.youtube.com" {
		return u
	}

	parsed.Host = "www.youtube.com"

	// Drop share-tracking parameters that only YouTube Music appends.
	query := parsed.Query()
	delete(query, "si")
	parsed.RawQuery = query.Encode()

	return parsed.String()
}

// NormalizeYouTubeURL converts alternate YouTube URL forms (live/shorts/youtu.be) to watch?v=.
func NormalizeYouTubeURL(u string) string {
	parsed, err := url.Parse(u)
	if err != nil {
		return u
	}
	host := normalizeHostname(parsed)
	if host != "youtube.com" && host != "youtu.be" {
		return u
	}
	query := parsed.Query()
	if host == "youtu.be" {
		id := strings.Trim(parsed.Path, "/")
		if id != "" {
			query.Set("v", id)
			parsed.Host = "www.youtube.com"
			parsed.Path = "/watch"
			parsed.RawQuery = query.Encode()
		}
		return parsed.String()
	}

	parts := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	if len(parts) >= 2 && (parts[0] == "live" || parts[0] == "shorts") {
		if query.Get("v") == "" && parts[1] != "" {
			query.Set("v", parts[1])
		}
		parsed.Path = "/watch"
		parsed.RawQuery = query.Encode()
		return parsed.String()
	}
	return u
}

func watchURLForID(id string) string {
	if id == "" {
		return ""
	}
	return "https://www.youtube.com/watch?v=" + id
}
