package drive

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tcsclub/gallery-server/pkg/cache"
	"github.com/tcsclub/gallery-server/pkg/e"
	"github.com/tcsclub/gallery-server/pkg/metrics"
	"github.com/tcsclub/gallery-server/pkg/retry"
	"github.com/tcsclub/gallery-server/pkg/s"
)

const (
	StrategyAPI    = "api"
	StrategyScrape = "scrape"

	// Short TTL: tolerate upstream folder edits while bounding request volume.
	folderCacheTTL = 2 * time.Minute

	listPageSize = 100
	// Safety cap so a pathological folder can't stall a gallery request.
	maxListPages = 6

	listMaxRetries = 3
	listRetryDelay = time.Second
)

// Lister resolves a folder ID to its file descriptors, preferring the
// authenticated API and falling back to scraping the public folder page.
type Lister struct {
	client  *Client
	scraper *Scraper
	store   *cache.Store
}

func NewLister(client *Client, scraper *Scraper, store *cache.Store) *Lister {
	return &Lister{client: client, scraper: scraper, store: store}
}

type listing struct {
	files    []s.FileDescriptor
	strategy string
}

// List returns the folder's files and the strategy that produced them.
// An empty folder is a successful empty list; an error means neither strategy
// could determine any items, so callers can tell "empty" from "broken".
func (l *Lister) List(ctx context.Context, folderID string) ([]s.FileDescriptor, string, error) {
	key := "folder:" + folderID
	if v, ok := l.store.Get(key); ok {
		metrics.CacheRequest("folder", "hit")
		cached := v.(listing)
		return cached.files, cached.strategy, nil
	}
	metrics.CacheRequest("folder", "miss")

	if l.client.Capability() != CapNone {
		files, err := l.listViaAPI(ctx, folderID)
		if err == nil {
			metrics.ListingOutcome(StrategyAPI, "ok")
			l.store.Set(key, listing{files: files, strategy: StrategyAPI}, folderCacheTTL)
			return files, StrategyAPI, nil
		}
		// Permission loss on one folder shouldn't degrade folders that remain
		// scrapable, so any API failure falls through to the scraper.
		metrics.ListingOutcome(StrategyAPI, "error")
		log.Warn().Err(err).Str("folder_id", folderID).Msg("Drive API listing failed, trying public scrape")
	}

	files, err := l.scraper.FetchFolder(ctx, folderID)
	if err != nil {
		metrics.ListingOutcome(StrategyScrape, "error")
		return nil, "", fmt.Errorf("%w: folder %s: %v", e.ErrFolderUnavailable, folderID, err)
	}
	metrics.ListingOutcome(StrategyScrape, "ok")
	l.store.Set(key, listing{files: files, strategy: StrategyScrape}, folderCacheTTL)
	return files, StrategyScrape, nil
}

func (l *Lister) listViaAPI(ctx context.Context, folderID string) ([]s.FileDescriptor, error) {
	query := fmt.Sprintf("'%s' in parents and trashed=false", folderID)

	files := make([]s.FileDescriptor, 0)
	pageToken := ""
	for page := 0; page < maxListPages; page++ {
		call := l.client.svc.Files.List().
			Q(query).
			Fields("nextPageToken, files(id, name, mimeType, thumbnailLink, webViewLink, createdTime, size)").
			PageSize(listPageSize).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		var res *fileListResult
		err := retry.Do(ctx, listMaxRetries, listRetryDelay, func() error {
			apiRes, err := call.Do()
			if err != nil {
				return err
			}
			res = &fileListResult{apiRes.NextPageToken, nil}
			for _, f := range apiRes.Files {
				res.files = append(res.files, s.FileDescriptor{
					ID:            f.Id,
					Name:          f.Name,
					MimeType:      f.MimeType,
					ThumbnailLink: f.ThumbnailLink,
					WebViewLink:   f.WebViewLink,
					CreatedTime:   f.CreatedTime,
					Size:          f.Size,
				})
			}
			return nil
		})
		if err != nil {
			return nil, err
		}

		files = append(files, res.files...)
		if res.nextPageToken == "" {
			return files, nil
		}
		pageToken = res.nextPageToken
	}

	log.Warn().Str("folder_id", folderID).Int("pages", maxListPages).Msg("Hit listing page cap, truncating folder")
	return files, nil
}

type fileListResult struct {
	nextPageToken string
	files         []s.FileDescriptor
}
