// Package cli implements the interactive terminal session: welcome screen,
// configuration setup, URL entry, playlist preview, confirmation and the
// download run itself.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tunepull/tunepull/internal/archive"
	"github.com/tunepull/tunepull/internal/config"
	"github.com/tunepull/tunepull/internal/downloader"
)

const (
	defaultConfigPath = "config.json"
	archiveFileName   = "archive.db"

	// urlAttempts bounds the re-prompt loop so a scripted stdin that only
	// produces garbage still terminates.
	urlAttempts = 5
)

// App holds the session state for one interactive run.
type App struct {
	cfg        config.Config
	configPath string
	prompt     *prompter
	out        io.Writer
}

// New wires an App to the given input and output streams.
func New(in io.Reader, out io.Writer) *App {
	return &App{
		configPath: defaultConfigPath,
		prompt:     newPrompter(in, out),
		out:        out,
	}
}

// Run executes the whole session and returns the process exit code.
func (a *App) Run(ctx context.Context) int {
	cfg, created, err := config.LoadOrInit(a.configPath)
	if err != nil {
		fmt.Fprintln(a.out, errorStyle.Render("Configuration error:"))
		fmt.Fprintln(a.out, err.Error())
		return downloader.ExitCode(wrapConfigErr(err))
	}
	a.cfg = cfg

	a.welcome()
	if created {
		fmt.Fprintln(a.out, dimStyle.Render("Created "+a.configPath+" with default settings."))
		fmt.Fprintln(a.out)
	}
	a.ffmpegInstructions()

	if err := a.configSetup(); err != nil {
		if errors.Is(err, io.EOF) {
			return 0
		}
		fmt.Fprintln(a.out, errorStyle.Render("Error: ")+err.Error())
		return downloader.ExitCode(err)
	}

	playlist, err := a.resolvePlaylist(ctx)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return 0
		}
		if !downloader.IsReported(err) {
			fmt.Fprintln(a.out, errorStyle.Render("Error: ")+err.Error())
		}
		return downloader.ExitCode(err)
	}
	if playlist == nil {
		a.goodbye()
		return 0
	}

	a.showPlaylist(playlist)

	confirmed, err := a.prompt.askBool("Start downloading now?", true)
	if err != nil && !errors.Is(err, io.EOF) {
		return 1
	}
	if !confirmed {
		fmt.Fprintln(a.out, panel("Cancelled", "No files were downloaded."))
		a.goodbye()
		return 0
	}

	code := a.runDownload(ctx, playlist)
	a.goodbye()
	return code
}

func (a *App) welcome() {
	fmt.Fprintln(a.out, bannerStyle.Render("TunePull — YouTube music downloader"))
	fmt.Fprintln(a.out, dimStyle.Render("Download videos and playlists as MP3."))
	fmt.Fprintln(a.out)
}

func (a *App) goodbye() {
	fmt.Fprintln(a.out)
	fmt.Fprintln(a.out, dimStyle.Render("Thanks for using TunePull. Enjoy your music!"))
}

// resolvePlaylist prompts for a URL until it validates and its metadata can
// be fetched. nil, nil means the user gave up.
func (a *App) resolvePlaylist(ctx context.Context) (*downloader.PlaylistInfo, error) {
	fmt.Fprintln(a.out, panel("Enter YouTube content",
		"Playlist URLs, video URLs and YouTube Music links are supported."))

	extractor := downloader.NewExtractor(a.cfg)

	var lastErr error
	for attempt := 0; attempt < urlAttempts; attempt++ {
		rawURL, err := a.prompt.ask("YouTube URL:")
		if err != nil {
			return nil, err
		}
		if rawURL == "" {
			fmt.Fprintln(a.out, warnStyle.Render("No URL provided."))
			lastErr = downloader.MarkReported(downloader.CategorizedError{
				Category: downloader.CategoryInvalidURL,
				Err:      errors.New("no url provided"),
			})
			continue
		}

		if _, err := downloader.Classify(downloader.ConvertMusicURL(rawURL)); err != nil {
			fmt.Fprintln(a.out, errorStyle.Render("Invalid URL: ")+err.Error())
			lastErr = downloader.MarkReported(err)
			continue
		}

		fmt.Fprintln(a.out, dimStyle.Render("Fetching metadata, this can take a moment for large playlists..."))
		playlist, err := extractor.Fetch(ctx, rawURL)
		if err != nil {
			fmt.Fprintln(a.out, errorStyle.Render("Extraction failed: ")+err.Error())
			lastErr = downloader.MarkReported(err)
			retry, perr := a.prompt.askBool("Try another URL?", true)
			if perr != nil || !retry {
				return nil, lastErr
			}
			continue
		}
		if len(playlist.Videos) == 0 {
			fmt.Fprintln(a.out, warnStyle.Render("That playlist has no downloadable entries."))
			lastErr = downloader.MarkReported(downloader.CategorizedError{
				Category: downloader.CategoryExtraction,
				Err:      errors.New("playlist has no entries"),
			})
			continue
		}
		return playlist, nil
	}
	return nil, lastErr
}

func (a *App) showPlaylist(playlist *downloader.PlaylistInfo) {
	lines := []string{
		field("Title", playlist.Title),
		field("Uploader", orUnknown(playlist.Uploader)),
		field("Videos", fmt.Sprintf("%d", len(playlist.Videos))),
		field("Duration", playlist.FormatTotalDuration()),
	}
	if desc := firstLine(playlist.Description); desc != "" {
		lines = append(lines, field("Description", truncateLine(desc, 80)))
	}
	fmt.Fprintln(a.out, panel("Playlist information", strings.Join(lines, "\n")))

	if len(playlist.Videos) > 1 {
		var sample strings.Builder
		limit := 3
		if len(playlist.Videos) < limit {
			limit = len(playlist.Videos)
		}
		for i := 0; i < limit; i++ {
			video := playlist.Videos[i]
			sample.WriteString(fmt.Sprintf("%d. %s (%s)\n", i+1, video.Title, video.FormatDuration()))
		}
		if rest := len(playlist.Videos) - limit; rest > 0 {
			sample.WriteString(dimStyle.Render(fmt.Sprintf("... and %d more", rest)))
		}
		fmt.Fprintln(a.out, panel("Sample videos", strings.TrimRight(sample.String(), "\n")))
	}
	fmt.Fprintln(a.out)
}

// runDownload executes the batch and reports the outcome.
func (a *App) runDownload(ctx context.Context, playlist *downloader.PlaylistInfo) int {
	fmt.Fprintln(a.out, panel("Starting download", strings.Join([]string{
		field("Destination", a.cfg.OutputDirectory),
		field("Quality", a.cfg.AudioQuality),
		field("Videos", fmt.Sprintf("%d", len(playlist.Videos))),
	}, "\n")))
	fmt.Fprintln(a.out)

	if err := os.MkdirAll(a.cfg.OutputDirectory, 0o755); err != nil {
		fmt.Fprintln(a.out, errorStyle.Render("Cannot create output directory: ")+err.Error())
		return 1
	}

	var store *archive.Archive
	if a.cfg.SkipDownloaded {
		var err error
		store, err = archive.Open(filepath.Join(a.cfg.OutputDirectory, archiveFileName))
		if err != nil {
			fmt.Fprintln(a.out, warnStyle.Render("Download archive unavailable: ")+err.Error())
		} else {
			defer store.Close()
			a.showHistory(store)
		}
	}

	level := downloader.ParseLogLevel(a.cfg.LogLevel)
	var sink downloader.ProgressSink
	var tui *tuiSink
	if a.cfg.DisplayProgressBar && isTerminal(os.Stderr) {
		tui = newTUISink(ctx, level)
		sink = tui
	} else {
		sink = downloader.NewPrinter(level, a.cfg.DisplayProgressBar)
	}

	var arch downloader.DownloadArchive
	if store != nil {
		arch = store
	}
	summary, fatal := downloader.New(a.cfg, arch, sink).DownloadAll(ctx, playlist)
	if tui != nil {
		tui.Stop()
	}

	if fatal != nil {
		fmt.Fprintln(a.out, errorStyle.Render("Download aborted: ")+fatal.Error())
		return downloader.ExitCode(fatal)
	}
	if summary.Total == 0 {
		fmt.Fprintln(a.out, warnStyle.Render("Nothing to download: the configured range selected no items."))
		return 0
	}
	if summary.OK > 0 || summary.Skipped == summary.Total {
		fmt.Fprintln(a.out, panel("Download complete",
			field("Files saved to", a.cfg.OutputDirectory)))
	}
	if summary.Failed > 0 && summary.OK == 0 {
		return 1
	}
	return 0
}

// showHistory summarizes the download archive before a run.
func (a *App) showHistory(store *archive.Archive) {
	count, err := store.Count()
	if err != nil || count == 0 {
		return
	}
	recent, err := store.List(3, 0)
	if err != nil {
		return
	}

	lines := []string{field("Tracks recorded", strconv.Itoa(count))}
	for _, record := range recent {
		title := record.Title
		if title == "" {
			title = record.VideoID
		}
		lines = append(lines, dimStyle.Render("- "+truncateLine(title, 60)))
	}
	fmt.Fprintln(a.out, panel("Download history", strings.Join(lines, "\n")))
}

func wrapConfigErr(err error) error {
	if downloader.CategoryOf(err) != "" {
		return err
	}
	return downloader.CategorizedError{Category: downloader.CategoryConfig, Err: err}
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

func orUnknown(value string) string {
	if value == "" {
		return "Unknown"
	}
	return value
}

func firstLine(text string) string {
	text = strings.TrimSpace(text)
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		return strings.TrimSpace(text[:idx])
	}
	return text
}
