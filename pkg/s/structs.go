package s

// FileDescriptor is the raw shape of one Drive file, produced either by the
// authenticated listing API (complete) or by the HTML scraper (best-effort,
// ThumbnailLink/Size usually absent).
type FileDescriptor struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	MimeType      string `json:"mimeType"`
	ThumbnailLink string `json:"thumbnailLink,omitempty"`
	WebViewLink   string `json:"webViewLink,omitempty"`
	CreatedTime   string `json:"createdTime,omitempty"` // RFC 3339
	Size          int64  `json:"size,omitempty"`
}

const (
	MediaTypePhoto = "photo"
	MediaTypeVideo = "video"
)

// MediaItem is the normalized, client-facing unit. Src/Thumbnail are
// same-origin proxy paths, never raw Drive URLs.
type MediaItem struct {
	ID        string `json:"id"`
	MediaType string `json:"mediaType"`
	Src       string `json:"src"`
	Thumbnail string `json:"thumbnail"`
	Caption   string `json:"caption"`
	Date      string `json:"date,omitempty"`
}

type SourceResult struct {
	Label    string      `json:"label"`
	FolderID string      `json:"folderId,omitempty"`
	Items    []MediaItem `json:"items"`
	Error    *string     `json:"error"`
}

type Section struct {
	Title   string         `json:"title"`
	Sources []SourceResult `json:"sources"`
}

// GalleryPayload is the /api/gallery response. The full shape carries
// Sections and FetchedAt; the degraded fallback shape carries only Items.
type GalleryPayload struct {
	Sections  []Section   `json:"sections,omitempty"`
	FetchedAt string      `json:"fetchedAt,omitempty"`
	Items     []MediaItem `json:"items,omitempty"`
}
