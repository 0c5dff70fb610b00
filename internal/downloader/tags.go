package downloader

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	id3v2 "github.com/bogem/id3v2/v2"
)

const thumbnailFetchTimeout = 30 * time.Second

// trackTags is what gets embedded into the finished MP3.
type trackTags struct {
	Title        string
	Artist       string
	Album        string
	Track        int
	ThumbnailURL string
}

// embedTags writes ID3v2 frames into the MP3 at outputPath. Thumbnail
// embedding failures are soft: the tags that could be written stay written.
// client carries the configured proxy; nil falls back to a default client.
func embedTags(client *http.Client, tags trackTags, outputPath string, withThumbnail bool) error {
	tag, err := id3v2.Open(outputPath, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("opening mp3 for tagging: %w", err)
	}
	defer tag.Close()

	if tags.Title != "" {
		tag.SetTitle(tags.Title)
	}
	if tags.Artist != "" {
		tag.SetArtist(tags.Artist)
	}
	if tags.Album != "" {
		tag.SetAlbum(tags.Album)
	}
	if tags.Track != 0 {
		tag.AddTextFrame(tag.CommonID("Track number/Position in set"), tag.DefaultEncoding(), strconv.Itoa(tags.Track))
	}

	if withThumbnail && tags.ThumbnailURL != "" {
		if art, mime, err := fetchThumbnail(client, tags.ThumbnailURL); err == nil {
			tag.AddAttachedPicture(id3v2.PictureFrame{
				Encoding:    id3v2.EncodingUTF8,
				MimeType:    mime,
				PictureType: id3v2.PTFrontCover,
				Picture:     art,
			})
		}
	}

	if err := tag.Save(); err != nil {
		return fmt.Errorf("saving mp3 tags: %w", err)
	}
	return nil
}

func fetchThumbnail(client *http.Client, url string) ([]byte, string, error) {
	if client == nil {
		client = &http.Client{Timeout: thumbnailFetchTimeout}
	}
	resp, err := client.Get(url)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("unexpected response %d fetching thumbnail", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return nil, "", err
	}

	mime := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(mime, "image/") {
		mime = "image/jpeg"
	}
	return data, mime, nil
}

// embedTagsFn is a seam so tests can skip real ID3 writes.
var embedTagsFn = embedTags
