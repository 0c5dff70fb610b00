package archive

import (
	"path/filepath"
	"testing"
)

func openTestArchive(t *testing.T) *Archive {
	t.Helper()
	a, err := Open(filepath.Join(t.TempDir(), "archive.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func TestRecordAndHas(t *testing.T) {
	a := openTestArchive(t)

	seen, err := a.Has("dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("Has: %v", err)
	}
	if seen {
		t.Fatalf("fresh archive should not contain the video")
	}

	err = a.Record(TrackRecord{
		VideoID:  "dQw4w9WgXcQ",
		Title:    "Song",
		Uploader: "Artist",
		FilePath: "out/1 - Song.mp3",
		Quality:  "320k",
		FileSize: 1234,
	})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}

	seen, err = a.Has("dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("Has: %v", err)
	}
	if !seen {
		t.Fatalf("recorded video should be found")
	}
}

func TestRecordUpsertsByVideoID(t *testing.T) {
	a := openTestArchive(t)

	if err := a.Record(TrackRecord{VideoID: "dQw4w9WgXcQ", Title: "Old"}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := a.Record(TrackRecord{VideoID: "dQw4w9WgXcQ", Title: "New", FileSize: 99}); err != nil {
		t.Fatalf("Record (update): %v", err)
	}

	count, err := a.Count()
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected one row after upsert, got %d", count)
	}

	records, err := a.List(10, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 1 || records[0].Title != "New" || records[0].FileSize != 99 {
		t.Fatalf("expected updated record, got %+v", records)
	}
}

func TestListPagination(t *testing.T) {
	a := openTestArchive(t)

	ids := []string{"aaaaaaaaaaa", "bbbbbbbbbbb", "ccccccccccc"}
	for _, id := range ids {
		if err := a.Record(TrackRecord{VideoID: id, Title: id}); err != nil {
			t.Fatalf("Record(%s): %v", id, err)
		}
	}

	page, err := a.List(2, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("expected 2 records on first page, got %d", len(page))
	}

	rest, err := a.List(2, 2)
	if err != nil {
		t.Fatalf("List offset: %v", err)
	}
	if len(rest) != 1 {
		t.Fatalf("expected 1 record on second page, got %d", len(rest))
	}
}

func TestNilArchiveIsSafe(t *testing.T) {
	var a *Archive
	if err := a.Close(); err != nil {
		t.Fatalf("Close on nil: %v", err)
	}
	if _, err := a.Has("dQw4w9WgXcQ"); err == nil {
		t.Fatalf("Has on nil should error")
	}
	if err := a.Record(TrackRecord{VideoID: "x"}); err == nil {
		t.Fatalf("Record on nil should error")
	}
}
