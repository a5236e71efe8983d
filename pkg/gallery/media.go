package gallery

import (
	"regexp"
	"strings"

	"github.com/tcsclub/gallery-server/pkg/s"
)

const genericBinaryMime = "application/octet-stream"

var videoExtension = regexp.MustCompile(`(?i)\.(mp4|mov|avi|webm)$`)

// NormalizeFile maps a raw descriptor to a client-facing media item, or
// reports false for files the gallery should not display. Src and Thumbnail
// are same-origin proxy paths so the output is stable no matter which
// strategy produced the descriptor.
func NormalizeFile(f s.FileDescriptor) (s.MediaItem, bool) {
	if f.ID == "" {
		return s.MediaItem{}, false
	}

	var mediaType string
	switch {
	case strings.HasPrefix(f.MimeType, "video/"):
		mediaType = s.MediaTypeVideo
	case strings.HasPrefix(f.MimeType, "image/"):
		mediaType = s.MediaTypePhoto
	case f.MimeType == "" || f.MimeType == genericBinaryMime:
		// Scraper fallback case: type unknown. Default to photo so the file
		// still shows up, reclassify by filename when it looks like a video.
		mediaType = s.MediaTypePhoto
		if videoExtension.MatchString(f.Name) {
			mediaType = s.MediaTypeVideo
		}
	default:
		// Explicit non-media (documents, archives...) never reaches the grid.
		return s.MediaItem{}, false
	}

	caption := f.Name
	if caption == "" {
		caption = "Untitled"
	}

	return s.MediaItem{
		ID:        f.ID,
		MediaType: mediaType,
		Src:       "/api/media/" + f.ID,
		Thumbnail: "/api/thumbnail/" + f.ID,
		Caption:   caption,
		Date:      f.CreatedTime,
	}, true
}
