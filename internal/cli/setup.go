package cli

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/tunepull/tunepull/internal/config"
	"github.com/tunepull/tunepull/internal/downloader"
)

// ffmpegInstructions prints install guidance when ffmpeg is missing from
// PATH. Downloads cannot finish without it.
func (a *App) ffmpegInstructions() {
	if downloader.FFmpegAvailable() {
		return
	}

	fmt.Fprintln(a.out, panel("FFmpeg required",
		"FFmpeg was not found in PATH. It handles the MP3 conversion;\n"+
			"downloads will fail without it."))

	var guide string
	switch runtime.GOOS {
	case "windows":
		guide = "1. Download a Windows build from https://ffmpeg.org\n" +
			"2. Extract it (e.g. C:\\ffmpeg)\n" +
			"3. Add the bin folder to PATH and restart the terminal"
	case "darwin":
		guide = "brew install ffmpeg"
	default:
		guide = "Debian/Ubuntu:  sudo apt install ffmpeg\n" +
			"Fedora:         sudo dnf install ffmpeg\n" +
			"Arch:           sudo pacman -S ffmpeg"
	}
	fmt.Fprintln(a.out, panel("Install guide", guide))
	fmt.Fprintln(a.out)
}

// configSetup walks the user through the settings that change most often and
// persists any edits back to the config file. Enter keeps the current value.
func (a *App) configSetup() error {
	fmt.Fprintln(a.out, panel("Configuration",
		"Customize your download preferences.\n"+
			dimStyle.Render("Press Enter to keep the current value.")))

	changed := false
	cfg := a.cfg

	currentProxy := cfg.ProxyURL
	if currentProxy == "" {
		currentProxy = "none"
	}
	proxy, err := a.prompt.askDefault("Proxy URL", currentProxy)
	if err != nil {
		return err
	}
	if strings.EqualFold(proxy, "none") {
		proxy = ""
	}
	if proxy != cfg.ProxyURL {
		trial := cfg
		trial.ProxyURL = proxy
		if verr := trial.Validate(); verr != nil {
			fmt.Fprintln(a.out, errorStyle.Render("Invalid proxy URL, keeping previous setting."))
		} else {
			cfg.ProxyURL = proxy
			changed = true
		}
	}

	dir, err := a.prompt.askDefault("Output directory", cfg.OutputDirectory)
	if err != nil {
		return err
	}
	if dir != "" && dir != cfg.OutputDirectory {
		cfg.OutputDirectory = dir
		changed = true
	}

	quality, err := a.prompt.askChoice("Audio quality",
		[]string{"64k", "128k", "192k", "256k", "320k"}, cfg.AudioQuality)
	if err != nil {
		return err
	}
	if quality != cfg.AudioQuality {
		cfg.AudioQuality = quality
		changed = true
	}

	start, err := a.prompt.askInt("Download start index (0 = from the beginning)", cfg.DownloadStartIndex)
	if err != nil {
		return err
	}
	end, err := a.prompt.askInt("Download end index (0 = to the end)", cfg.DownloadEndIndex)
	if err != nil {
		return err
	}
	maxDownloads, err := a.prompt.askInt("Max downloads (0 = no limit)", cfg.MaxDownloads)
	if err != nil {
		return err
	}
	if start != cfg.DownloadStartIndex || end != cfg.DownloadEndIndex || maxDownloads != cfg.MaxDownloads {
		trial := cfg
		trial.DownloadStartIndex = start
		trial.DownloadEndIndex = end
		trial.MaxDownloads = maxDownloads
		if verr := trial.Validate(); verr != nil {
			fmt.Fprintln(a.out, errorStyle.Render("Invalid range, keeping previous settings."))
		} else {
			cfg.DownloadStartIndex = start
			cfg.DownloadEndIndex = end
			cfg.MaxDownloads = maxDownloads
			changed = true
		}
	}

	showBar, err := a.prompt.askBool("Display progress bar?", cfg.DisplayProgressBar)
	if err != nil {
		return err
	}
	if showBar != cfg.DisplayProgressBar {
		cfg.DisplayProgressBar = showBar
		changed = true
	}

	if changed {
		if err := config.Save(cfg, a.configPath); err != nil {
			return err
		}
		a.cfg = cfg
		fmt.Fprintln(a.out, okStyle.Render("Settings saved."))
	}
	fmt.Fprintln(a.out)
	return nil
}
