package downloader

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/kkdai/youtube/v2"
)

// selectAudioFormat picks the best audio-only stream at or under the target
// bitrate. With nothing under target it takes the lowest above, and as a last
// resort the highest-bitrate audio stream of any kind.
func selectAudioFormat(video *youtube.Video, quality string) (*youtube.Format, error) {
	targetBitrate, err := parseAudioQuality(quality)
	if err != nil {
		return nil, wrapCategory(CategoryUnsupported, err)
	}

	candidates := make([]*youtube.Format, 0, len(video.Formats))
	for i := range video.Formats {
		format := &video.Formats[i]
		if format.AudioChannels == 0 {
			continue
		}
		if format.Width != 0 || format.Height != 0 {
			continue
		}
		candidates = append(candidates, format)
	}
	if len(candidates) == 0 {
		return nil, wrapCategory(CategoryUnsupported, errors.New("no audio-only formats available"))
	}

	var best *youtube.Format
	if targetBitrate > 0 {
		for _, f := range candidates {
			br := bitrateForFormat(f)
			if br == 0 || br > targetBitrate {
				continue
			}
			if best == nil || br > bitrateForFormat(best) {
				best = f
			}
		}
		// Nothing under target? fall back to the lowest above target.
		if best == nil {
			for _, f := range candidates {
				br := bitrateForFormat(f)
				if br == 0 {
					continue
				}
				if best == nil || br < bitrateForFormat(best) {
					best = f
				}
			}
		}
	}

	if best == nil {
		for _, f := range candidates {
			if best == nil || bitrateForFormat(f) > bitrateForFormat(best) {
				best = f
			}
		}
	}
	return best, nil
}

// parseAudioQuality turns a config token like "320k" into a bits-per-second
// target. Empty means "best available".
func parseAudioQuality(q string) (int, error) {
	q = strings.TrimSpace(strings.ToLower(q))
	if q == "" || q == "best" {
		return 0, nil
	}
	hasK := strings.HasSuffix(q, "k")
	q = strings.TrimSuffix(q, "k")
	value, err := strconv.Atoi(q)
	if err != nil {
		return 0, fmt.Errorf("invalid audio quality %q (expected like 320k)", q)
	}
	if hasK || value < 1000 {
		value *= 1000
	}
	return value, nil
}

func bitrateForFormat(f *youtube.Format) int {
	if f.Bitrate > 0 {
		return f.Bitrate
	}
	if f.AverageBitrate > 0 {
		return f.AverageBitrate
	}
	return 0
}
