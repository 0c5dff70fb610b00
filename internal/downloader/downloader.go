package downloader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/kkdai/youtube/v2"

	"github.com/tunepull/tunepull/internal/archive"
	"github.com/tunepull/tunepull/internal/config"
)

// DownloadArchive is the slice of the archive the pipeline needs. A nil
// archive disables history checks.
type DownloadArchive interface {
	Has(videoID string) (bool, error)
	Record(record archive.TrackRecord) error
}

// Downloader runs the download pipeline for one playlist: resolve the output
// path, stream the audio, transcode to MP3 and tag the result. Safe for use
// from a single goroutine.
type Downloader struct {
	cfg        config.Config
	client     MediaClient
	httpClient *http.Client
	archive    DownloadArchive
	sink       ProgressSink
}

// New builds a Downloader. archive may be nil when skip_downloaded is off.
func New(cfg config.Config, archive DownloadArchive, sink ProgressSink) *Downloader {
	return &Downloader{
		cfg:        cfg,
		client:     newClientFn(cfg),
		httpClient: newHTTPClient(cfg),
		archive:    archive,
		sink:       sink,
	}
}

// Summary aggregates the outcome of a batch download.
type Summary struct {
	Total   int
	OK      int
	Failed  int
	Skipped int
	Bytes   int64
	Results []DownloadResult
}

// DownloadAll processes every selected playlist entry in order. A failing
// item is reported and the batch continues; only cancellation and a full
// disk abort the run. The returned error, when non-nil, is the fatal cause.
func (d *Downloader) DownloadAll(ctx context.Context, playlist *PlaylistInfo) (Summary, error) {
	items := selectRange(playlist.Videos, d.cfg.DownloadStartIndex, d.cfg.DownloadEndIndex, d.cfg.MaxDownloads)

	summary := Summary{Total: len(items)}
	var fatal error

	for i, item := range items {
		if err := ctx.Err(); err != nil {
			fatal = err
			break
		}

		result := d.Download(ctx, item, playlist)
		summary.Results = append(summary.Results, result)
		switch result.Status {
		case StatusOK:
			summary.OK++
			summary.Bytes += result.Bytes
		case StatusSkipped:
			summary.Skipped++
		case StatusFailed:
			summary.Failed++
		}
		d.sink.EndItem(result)

		if result.Err != nil && isFatal(result.Err) {
			fatal = result.Err
			break
		}

		if d.cfg.SleepIntervalSeconds > 0 && i < len(items)-1 {
			if err := sleepWithContext(ctx, time.Duration(d.cfg.SleepIntervalSeconds)*time.Second); err != nil {
				fatal = err
				break
			}
		}
	}

	d.sink.Summary(summary.Total, summary.OK, summary.Failed, summary.Skipped, summary.Bytes)
	return summary, fatal
}

// Download runs the full pipeline for one item. All failures are captured in
// the result rather than returned, so batch callers decide what is fatal.
func (d *Downloader) Download(ctx context.Context, item VideoInfo, playlist *PlaylistInfo) DownloadResult {
	result := DownloadResult{Item: item}
	path := ResolvePath(d.cfg, item)

	// Skip checks come before any network traffic.
	if d.cfg.SkipDownloaded {
		if Exists(path) {
			result.Status = StatusSkipped
			result.OutputPath = path
			result.SkipReason = "file already exists"
			return result
		}
		if d.archive != nil {
			if seen, err := d.archive.Has(item.ID); err == nil && seen {
				result.Status = StatusSkipped
				result.OutputPath = path
				result.SkipReason = "already in download archive"
				return result
			}
		}
	} else if Exists(path) && !d.cfg.ForceOverwrites {
		renamed, err := nextAvailablePath(path)
		if err != nil {
			result.Status = StatusFailed
			result.Err = err
			return result
		}
		path = renamed
	}

	d.sink.BeginItem(item.PlaylistIndex, len(playlist.Videos), item.Title, 0)

	video, err := d.client.GetVideoContext(ctx, item.WatchURL())
	if err != nil {
		result.Status = StatusFailed
		result.Err = wrapExtractionError(err, "fetching video")
		return result
	}

	format, err := selectAudioFormat(video, d.cfg.AudioQuality)
	if err != nil {
		result.Status = StatusFailed
		result.Err = err
		return result
	}

	if err := os.MkdirAll(d.cfg.OutputDirectory, 0o755); err != nil {
		result.Status = StatusFailed
		result.Err = wrapCategory(CategoryFilesystem, err)
		return result
	}

	tempPath := path + ".tmp." + extForMimeType(format.MimeType)
	written, err := d.streamToFile(ctx, video, format, tempPath)
	if err != nil {
		os.Remove(tempPath)
		result.Status = StatusFailed
		result.Err = err
		return result
	}

	if err := transcodeFn(tempPath, path, d.cfg.AudioQuality); err != nil {
		os.Remove(tempPath)
		os.Remove(path)
		result.Status = StatusFailed
		result.Err = err
		return result
	}
	os.Remove(tempPath)

	if d.cfg.AddMetadata || d.cfg.EmbedThumbnail {
		tags := trackTags{
			Track:        item.PlaylistIndex,
			ThumbnailURL: item.ThumbnailURL,
		}
		if d.cfg.AddMetadata {
			tags.Title = item.Title
			tags.Artist = item.Uploader
			if playlist.Kind == KindPlaylist {
				tags.Album = playlist.Title
			}
		}
		if err := embedTagsFn(d.httpClient, tags, path, d.cfg.EmbedThumbnail); err != nil {
			d.sink.Log(LogWarn, fmt.Sprintf("tagging %s: %v", item.Title, err))
		}
	}

	if d.archive != nil {
		record := archive.TrackRecord{
			VideoID:       item.ID,
			Title:         item.Title,
			Uploader:      item.Uploader,
			FilePath:      path,
			SourceURL:     item.WatchURL(),
			Quality:       d.cfg.AudioQuality,
			FileSize:      written,
			PlaylistIndex: item.PlaylistIndex,
		}
		if playlist.Kind == KindPlaylist {
			record.PlaylistID = playlist.ID
			record.PlaylistTitle = playlist.Title
		}
		if err := d.archive.Record(record); err != nil {
			d.sink.Log(LogWarn, fmt.Sprintf("recording %s in archive: %v", item.ID, err))
		}
	}

	result.Status = StatusOK
	result.OutputPath = path
	result.Bytes = written
	return result
}

// streamToFile copies the selected stream into tempPath, reporting progress.
func (d *Downloader) streamToFile(ctx context.Context, video *youtube.Video, format *youtube.Format, tempPath string) (int64, error) {
	stream, size, err := d.client.GetStreamContext(ctx, video, format)
	if err != nil {
		return 0, wrapCategory(CategoryNetwork, fmt.Errorf("opening stream: %w", err))
	}
	defer stream.Close()

	out, err := os.Create(tempPath)
	if err != nil {
		return 0, wrapCategory(CategoryFilesystem, err)
	}
	defer out.Close()

	pw := newProgressWriter(size, d.sink)
	written, err := copyWithContext(ctx, io.MultiWriter(out, pw), stream)
	if err != nil {
		return written, wrapCategory(CategoryNetwork, fmt.Errorf("downloading stream: %w", err))
	}
	pw.Finish()

	if err := out.Sync(); err != nil {
		return written, wrapCategory(CategoryFilesystem, err)
	}
	return written, nil
}

// selectRange applies the 1-based inclusive start/end window, then the max
// downloads cap. Zero values leave the corresponding bound open.
func selectRange(videos []VideoInfo, start, end, max int) []VideoInfo {
	if start <= 0 {
		start = 1
	}
	if end <= 0 || end > len(videos) {
		end = len(videos)
	}
	if start > end {
		return nil
	}

	selected := videos[start-1 : end]
	if max > 0 && max < len(selected) {
		selected = selected[:max]
	}
	return selected
}

// isFatal reports whether the batch must stop. Running out of disk space
// would fail every remaining item the same way.
func isFatal(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, syscall.ENOSPC) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "no space left")
}

// extForMimeType maps a stream MIME type to a temp-file extension so ffmpeg
// can sniff the container.
func extForMimeType(mimeType string) string {
	mimeType = strings.ToLower(mimeType)
	switch {
	case strings.Contains(mimeType, "webm"):
		return "webm"
	case strings.Contains(mimeType, "mp4"):
		return "m4a"
	case strings.Contains(mimeType, "mpeg"):
		return "mp3"
	default:
		return "bin"
	}
}
