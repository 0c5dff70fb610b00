package downloader

import "fmt"

// VideoInfo is the metadata the extractor gathers for one video. Immutable
// once fetched.
type VideoInfo struct {
	ID            string
	Title         string
	DurationSec   int
	Uploader      string
	ThumbnailURL  string
	PlaylistIndex int // 1-based position in the source playlist, 0 when standalone
}

// WatchURL returns the canonical watch URL for the video.
func (v VideoInfo) WatchURL() string {
	return watchURLForID(v.ID)
}

// FormatDuration renders the duration as h m s, or "unknown" when missing.
func (v VideoInfo) FormatDuration() string {
	return formatSeconds(v.DurationSec)
}

// PlaylistInfo is an ordered collection of videos plus playlist metadata.
// Single-video fetches are wrapped as a one-entry playlist. Read-only after
// creation.
type PlaylistInfo struct {
	ID          string
	Title       string
	Uploader    string
	Description string
	URL         string
	Kind        Kind
	Videos      []VideoInfo
}

// TotalDurationSec sums the known durations of all entries.
func (p *PlaylistInfo) TotalDurationSec() int {
	total := 0
	for _, v := range p.Videos {
		total += v.DurationSec
	}
	return total
}

// FormatTotalDuration renders the summed duration as hours and minutes.
func (p *PlaylistInfo) FormatTotalDuration() string {
	total := p.TotalDurationSec()
	if total <= 0 {
		return "unknown"
	}
	hours := total / 3600
	minutes := (total % 3600) / 60
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}

// Status is the per-item download outcome.
type Status string

const (
	StatusOK      Status = "ok"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// DownloadResult reports the outcome for one playlist item.
type DownloadResult struct {
	Item       VideoInfo
	Status     Status
	OutputPath string
	Bytes      int64
	SkipReason string
	Err        error
}

func formatSeconds(seconds int) string {
	if seconds <= 0 {
		return "unknown"
	}
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	secs := seconds % 60
	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, secs)
	}
	if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, secs)
	}
	return fmt.Sprintf("%ds", secs)
}
