package downloader

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tunepull/tunepull/internal/config"
)

func TestResolvePathAppliesTemplate(t *testing.T) {
	cfg := config.Default()
	cfg.OutputDirectory = "out"
	cfg.OutputFilenameTmpl = "%(playlist_index)s - %(title)s.%(ext)s"

	item := VideoInfo{ID: "dQw4w9WgXcQ", Title: "Song", PlaylistIndex: 1}
	got := ResolvePath(cfg, item)
	want := filepath.Join("out", "1 - Song.mp3")
	if got != want {
		t.Fatalf("ResolvePath = %q, want %q", got, want)
	}
}

func TestResolvePathStandaloneVideoDropsIndexPrefix(t *testing.T) {
	cfg := config.Default()
	cfg.OutputDirectory = "out"

	item := VideoInfo{ID: "dQw4w9WgXcQ", Title: "Song"}
	got := ResolvePath(cfg, item)
	want := filepath.Join("out", "Song.mp3")
	if got != want {
		t.Fatalf("ResolvePath = %q, want %q", got, want)
	}
}

func TestResolvePathSanitizesTitle(t *testing.T) {
	cfg := config.Default()
	cfg.OutputDirectory = "out"

	item := VideoInfo{ID: "dQw4w9WgXcQ", Title: `A/B\C:D?E`, PlaylistIndex: 3}
	got := ResolvePath(cfg, item)
	base := filepath.Base(got)
	for _, forbidden := range []string{"/", "\\", ":", "?"} {
		if strings.Contains(base, forbidden) {
			t.Fatalf("resolved name %q still contains %q", base, forbidden)
		}
	}
}

func TestResolvePathExtraTokens(t *testing.T) {
	cfg := config.Default()
	cfg.OutputDirectory = "out"
	cfg.OutputFilenameTmpl = "%(uploader)s - %(title)s [%(id)s].%(ext)s"

	item := VideoInfo{ID: "dQw4w9WgXcQ", Title: "Song", Uploader: "Artist"}
	got := ResolvePath(cfg, item)
	want := filepath.Join("out", "Artist - Song [dQw4w9WgXcQ].mp3")
	if got != want {
		t.Fatalf("ResolvePath = %q, want %q", got, want)
	}
}

func TestResolvePathEmptyTitleFallsBackToID(t *testing.T) {
	cfg := config.Default()
	cfg.OutputDirectory = "out"
	cfg.OutputFilenameTmpl = "%(title)s.%(ext)s"

	item := VideoInfo{ID: "dQw4w9WgXcQ"}
	got := ResolvePath(cfg, item)
	want := filepath.Join("out", "dQw4w9WgXcQ.mp3")
	if got != want {
		t.Fatalf("ResolvePath = %q, want %q", got, want)
	}
}

func TestNextAvailablePath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Song.mp3")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	got, err := nextAvailablePath(path)
	if err != nil {
		t.Fatalf("nextAvailablePath: %v", err)
	}
	want := filepath.Join(dir, "Song (1).mp3")
	if got != want {
		t.Fatalf("nextAvailablePath = %q, want %q", got, want)
	}

	if err := os.WriteFile(want, []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, err = nextAvailablePath(path)
	if err != nil {
		t.Fatalf("nextAvailablePath: %v", err)
	}
	if got != filepath.Join(dir, "Song (2).mp3") {
		t.Fatalf("nextAvailablePath = %q, want Song (2).mp3", got)
	}
}

func TestExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.mp3")
	if Exists(path) {
		t.Fatalf("Exists should be false before create")
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if !Exists(path) {
		t.Fatalf("Exists should be true after create")
	}
	if Exists(dir) {
		t.Fatalf("Exists should be false for directories")
	}
}
