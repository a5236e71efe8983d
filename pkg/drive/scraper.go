package drive

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tcsclub/gallery-server/pkg/s"
)

// Drive serves a script-free page to non-browser agents, so the scraper has
// to look like a real browser to get the inline page-state JSON at all.
const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

const (
	maxNameLength   = 150
	laxThreshold    = 5
	placeholderName = "Untitled Media"
	genericMime     = "application/octet-stream"
)

// The patterns target tuples embedded in Drive's inline page-state JS. There
// is no documented contract for that markup, so they are ordered from most to
// least specific and all treated as best-effort.
var (
	// ["ID","Name","MimeType"
	strictTriplePattern = regexp.MustCompile(`\["([a-zA-Z0-9_-]{25,})"\s*,\s*"([^"]+?)"\s*,\s*"([^"]+?)"`)
	// ["ID","Name",<anything>,"MimeType" - layout variant with an extra field
	wildcardTuplePattern = regexp.MustCompile(`\["([a-zA-Z0-9_-]{25,})"\s*,\s*"([^"]+?)"\s*,[^,]*,\s*"([^"]+?)"`)
	// escaped-quote variant, restricted to media-ish mime prefixes
	laxEscapedPattern = regexp.MustCompile(`\\?"([a-zA-Z0-9_-]{25,})\\?",\\?"([^"]+?)\\?",\\?"(video/|image/|application/)`)
	// old data attribute markup, ID only
	dataIDPattern = regexp.MustCompile(`data-id=\\?"([a-zA-Z0-9_-]{25,})\\?"`)
)

// scrapeStrategy is a pure pass over the fetched HTML. seen carries IDs
// already claimed by earlier strategies (and the folder's own ID) so every
// file appears at most once regardless of pattern overlap.
type scrapeStrategy struct {
	name  string
	apply func(html string, seen map[string]bool) []s.FileDescriptor
	// skip suppresses the strategy when earlier ones found enough items
	skip func(found int) bool
}

var scrapeStrategies = []scrapeStrategy{
	{
		name: "strict-triple",
		apply: func(html string, seen map[string]bool) []s.FileDescriptor {
			var files []s.FileDescriptor
			for _, m := range strictTriplePattern.FindAllStringSubmatch(html, -1) {
				id, name, mime := m[1], m[2], m[3]
				if seen[id] || len(name) > maxNameLength || !strings.Contains(mime, "/") {
					continue
				}
				seen[id] = true
				files = append(files, s.FileDescriptor{ID: id, Name: name, MimeType: mime})
			}
			return files
		},
	},
	{
		name: "wildcard-tuple",
		apply: func(html string, seen map[string]bool) []s.FileDescriptor {
			var files []s.FileDescriptor
			for _, m := range wildcardTuplePattern.FindAllStringSubmatch(html, -1) {
				id, name, mime := m[1], m[2], m[3]
				if seen[id] || !strings.Contains(mime, "/") {
					continue
				}
				seen[id] = true
				files = append(files, s.FileDescriptor{ID: id, Name: name, MimeType: mime})
			}
			return files
		},
	},
	{
		name: "lax-escaped",
		skip: func(found int) bool { return found >= laxThreshold },
		apply: func(html string, seen map[string]bool) []s.FileDescriptor {
			var files []s.FileDescriptor
			for _, m := range laxEscapedPattern.FindAllStringSubmatch(html, -1) {
				id, name, prefix := m[1], m[2], m[3]
				if seen[id] {
					continue
				}
				seen[id] = true
				// Only the mime prefix survives the escaping, restore a generic subtype.
				files = append(files, s.FileDescriptor{ID: id, Name: name, MimeType: prefix + "octet-stream"})
			}
			return files
		},
	},
	{
		name: "data-id",
		skip: func(found int) bool { return found > 0 },
		apply: func(html string, seen map[string]bool) []s.FileDescriptor {
			var files []s.FileDescriptor
			for _, m := range dataIDPattern.FindAllStringSubmatch(html, -1) {
				id := m[1]
				if seen[id] {
					continue
				}
				seen[id] = true
				files = append(files, s.FileDescriptor{ID: id, Name: placeholderName, MimeType: genericMime})
			}
			return files
		},
	},
}

// ExtractFiles runs the scrape strategies in order over the folder page HTML.
// The folder's own ID is excluded up front since it matches the same patterns.
func ExtractFiles(html, folderID string) []s.FileDescriptor {
	seen := map[string]bool{folderID: true}
	files := make([]s.FileDescriptor, 0)
	for _, strat := range scrapeStrategies {
		if strat.skip != nil && strat.skip(len(files)) {
			continue
		}
		files = append(files, strat.apply(html, seen)...)
	}
	return files
}

// Scraper recovers folder listings from the public Drive folder page when the
// API path is unavailable.
type Scraper struct {
	client  *http.Client
	baseURL string
}

func NewScraper() *Scraper {
	return &Scraper{
		client:  &http.Client{Timeout: 20 * time.Second},
		baseURL: "https://drive.google.com",
	}
}

func (sc *Scraper) FetchFolder(ctx context.Context, folderID string) ([]s.FileDescriptor, error) {
	pageURL := sc.baseURL + "/drive/folders/" + folderID

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", browserUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := sc.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("access failed (%w), folder might be private", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("access failed (request failed: %d), folder might be private", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("access failed (%w), folder might be private", err)
	}

	files := ExtractFiles(string(body), folderID)
	log.Debug().Str("folder_id", folderID).Int("items", len(files)).Msg("Scraped public folder page")
	return files, nil
}
