package downloader

import (
	"fmt"
	"os/exec"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// FFmpegAvailable checks if ffmpeg is installed and accessible.
func FFmpegAvailable() bool {
	_, err := exec.LookPath("ffmpeg")
	return err == nil
}

// transcodeToMP3 extracts the audio track from inputPath and encodes it as
// MP3 at the given quality token ("320k" etc.).
func transcodeToMP3(inputPath, outputPath, quality string) error {
	if !FFmpegAvailable() {
		return wrapCategory(CategoryUnsupported, fmt.Errorf("ffmpeg not found in PATH"))
	}

	bitrate := strings.TrimSpace(strings.ToLower(quality))
	if bitrate == "" {
		bitrate = "320k"
	}

	kwargs := ffmpeg.KwArgs{
		"vn":     "",
		"acodec": "libmp3lame",
		"b:a":    bitrate,
	}

	err := ffmpeg.Input(inputPath).
		Output(outputPath, kwargs).
		OverWriteOutput().
		Silent(true).
		Run()
	if err != nil {
		return wrapCategory(CategoryUnsupported, fmt.Errorf("transcoding to mp3: %w", err))
	}
	return nil
}

// transcodeFn is a seam so tests can run the pipeline without ffmpeg.
var transcodeFn = transcodeToMP3
