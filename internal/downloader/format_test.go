package downloader

import (
	"testing"

	"github.com/kkdai/youtube/v2"
)

func audioOnly(bitrate int) youtube.Format {
	return youtube.Format{MimeType: `audio/webm; codecs="opus"`, Bitrate: bitrate, AudioChannels: 2}
}

func TestSelectAudioFormatPrefersUnderTarget(t *testing.T) {
	video := &youtube.Video{Formats: []youtube.Format{
		audioOnly(64000),
		audioOnly(128000),
		audioOnly(256000),
		{MimeType: "video/mp4", Bitrate: 4000000, AudioChannels: 2, Width: 1920, Height: 1080},
	}}

	format, err := selectAudioFormat(video, "192k")
	if err != nil {
		t.Fatalf("selectAudioFormat: %v", err)
	}
	if format.Bitrate != 128000 {
		t.Fatalf("expected the best stream under 192k, got %d", format.Bitrate)
	}
}

func TestSelectAudioFormatFallsBackAboveTarget(t *testing.T) {
	video := &youtube.Video{Formats: []youtube.Format{
		audioOnly(256000),
		audioOnly(160000),
	}}

	format, err := selectAudioFormat(video, "64k")
	if err != nil {
		t.Fatalf("selectAudioFormat: %v", err)
	}
	if format.Bitrate != 160000 {
		t.Fatalf("expected lowest stream above target, got %d", format.Bitrate)
	}
}

func TestSelectAudioFormatRejectsVideoOnly(t *testing.T) {
	video := &youtube.Video{Formats: []youtube.Format{
		{MimeType: "video/mp4", Bitrate: 4000000, Width: 1920, Height: 1080},
	}}

	_, err := selectAudioFormat(video, "320k")
	if err == nil {
		t.Fatalf("expected error when no audio streams exist")
	}
	if CategoryOf(err) != CategoryUnsupported {
		t.Fatalf("expected unsupported category, got %q", CategoryOf(err))
	}
}

func TestParseAudioQuality(t *testing.T) {
	cases := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"320k", 320000, false},
		{"64K", 64000, false},
		{"128", 128000, false},
		{"", 0, false},
		{"best", 0, false},
		{"loud", 0, true},
	}
	for _, tc := range cases {
		got, err := parseAudioQuality(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("parseAudioQuality(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("parseAudioQuality(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("parseAudioQuality(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}
