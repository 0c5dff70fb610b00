package downloader

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/tunepull/tunepull/internal/config"
)

const outputExt = "mp3"

var invalidPathChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1F]`)

// ResolvePath applies the configured filename template to one item and joins
// the result with the output directory. Template tokens use the
// "%(name)s" substitution shape: playlist_index, title, ext, id, uploader.
func ResolvePath(cfg config.Config, item VideoInfo) string {
	template := cfg.OutputFilenameTmpl
	if template == "" {
		template = config.Default().OutputFilenameTmpl
	}

	index := ""
	if item.PlaylistIndex > 0 {
		index = strconv.Itoa(item.PlaylistIndex)
	}
	replacer := strings.NewReplacer(
		"%(playlist_index)s", index,
		"%(title)s", sanitizeFilename(item.Title),
		"%(ext)s", outputExt,
		"%(id)s", sanitizeFilename(item.ID),
		"%(uploader)s", sanitizeFilename(item.Uploader),
	)
	name := strings.TrimSpace(replacer.Replace(template))

	// A standalone video has no playlist index; drop the dangling separator
	// a "%(playlist_index)s - " style template leaves behind.
	name = strings.TrimPrefix(name, "- ")
	name = strings.TrimSpace(name)

	if filepath.Ext(name) == "" {
		name += "." + outputExt
	}
	if strings.TrimSuffix(name, "."+outputExt) == "" {
		name = sanitizeFilename(item.ID) + "." + outputExt
	}
	return filepath.Join(cfg.OutputDirectory, name)
}

// Exists reports whether path names an existing file.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// nextAvailablePath finds the first "name (N).ext" variant not yet on disk.
func nextAvailablePath(path string) (string, error) {
	dir := filepath.Dir(path)
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	name := strings.TrimSuffix(base, ext)

	for i := 1; i < 10000; i++ {
		candidate := filepath.Join(dir, fmt.Sprintf("%s (%d)%s", name, i, ext))
		if _, err := os.Stat(candidate); err != nil {
			if os.IsNotExist(err) {
				return candidate, nil
			}
			return "", wrapCategory(CategoryFilesystem, err)
		}
	}
	return "", wrapCategory(CategoryFilesystem, fmt.Errorf("unable to find available filename for %s", path))
}

func sanitizeFilename(name string) string {
	clean := invalidPathChars.ReplaceAllString(name, "-")
	clean = strings.TrimSpace(clean)
	return clean
}
