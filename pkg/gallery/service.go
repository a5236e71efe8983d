package gallery

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog/log"
	"github.com/tcsclub/gallery-server/pkg/cache"
	"github.com/tcsclub/gallery-server/pkg/drive"
	"github.com/tcsclub/gallery-server/pkg/metrics"
	"github.com/tcsclub/gallery-server/pkg/s"
)

const payloadCacheTTL = time.Minute

// Lister is the folder listing seam, satisfied by drive.Lister.
type Lister interface {
	List(ctx context.Context, folderID string) ([]s.FileDescriptor, string, error)
}

// Service assembles the gallery payload from the configured sources.
type Service struct {
	configPath string
	lister     Lister
	store      *cache.Store
	now        func() time.Time
}

func NewService(configPath string, lister Lister, store *cache.Store) *Service {
	return &Service{
		configPath: configPath,
		lister:     lister,
		store:      store,
		now:        time.Now,
	}
}

// Assemble builds the full gallery payload. It never fails: configuration
// problems or a total upstream outage degrade to the static fallback shape.
func (svc *Service) Assemble(ctx context.Context) s.GalleryPayload {
	cfg, hash, err := LoadConfig(svc.configPath)
	if err != nil {
		metrics.SourceError("config")
		log.Error().Err(err).Str("path", svc.configPath).Msg("Failed to load gallery config, serving fallback data")
		return s.GalleryPayload{Items: FallbackItems()}
	}

	cacheKey := "gallery:" + hash
	if v, ok := svc.store.Get(cacheKey); ok {
		metrics.CacheRequest("gallery", "hit")
		return v.(s.GalleryPayload)
	}
	metrics.CacheRequest("gallery", "miss")

	// Fan out across every source of every section; one source failing must
	// never abort its siblings, so each failure lands in its own Error field.
	sections := make([]s.Section, len(cfg.Sections))
	var wg sync.WaitGroup
	for i, sectionCfg := range cfg.Sections {
		sections[i] = s.Section{
			Title:   sectionCfg.Title,
			Sources: make([]s.SourceResult, len(sectionCfg.Sources)),
		}
		for j, sourceCfg := range sectionCfg.Sources {
			wg.Add(1)
			go func(i, j int, sourceCfg SourceConfig) {
				defer wg.Done()
				sections[i].Sources[j] = svc.resolveSource(ctx, sourceCfg)
			}(i, j, sourceCfg)
		}
	}
	wg.Wait()

	if !anyItems(sections) {
		var merr *multierror.Error
		for _, section := range sections {
			for _, source := range section.Sources {
				if source.Error != nil {
					merr = multierror.Append(merr, fmt.Errorf("%s: %s", source.Label, *source.Error))
				}
			}
		}
		log.Warn().Err(merr.ErrorOrNil()).Msg("No items found in configured folders, serving fallback data")
		return s.GalleryPayload{
			Sections: []s.Section{{
				Title: "Gallery",
				Sources: []s.SourceResult{{
					Label: "Featured Events (Fallback)",
					Items: FallbackItems(),
				}},
			}},
		}
	}

	payload := s.GalleryPayload{
		Sections:  sections,
		FetchedAt: svc.now().UTC().Format(time.RFC3339),
	}
	svc.store.Set(cacheKey, payload, payloadCacheTTL)
	return payload
}

func (svc *Service) resolveSource(ctx context.Context, src SourceConfig) s.SourceResult {
	if src.Type != SourceTypeDriveFolder {
		metrics.SourceError("unsupported-source-type")
		return s.SourceResult{Label: src.Label, Items: []s.MediaItem{}, Error: strPtr("unsupported-source-type")}
	}

	folderID := drive.ResolveID(src.FolderURL)
	if folderID == "" {
		metrics.SourceError("invalid-folder-url")
		return s.SourceResult{Label: src.Label, Items: []s.MediaItem{}, Error: strPtr("invalid-folder-url")}
	}

	files, strategy, err := svc.lister.List(ctx, folderID)
	if err != nil {
		metrics.SourceError("listing")
		log.Warn().Err(err).Str("label", src.Label).Str("folder_id", folderID).Msg("Source listing failed")
		return s.SourceResult{Label: src.Label, Items: []s.MediaItem{}, Error: strPtr(err.Error())}
	}

	items := make([]s.MediaItem, 0, len(files))
	for _, f := range files {
		if item, ok := NormalizeFile(f); ok {
			items = append(items, item)
		}
	}

	log.Debug().Str("label", src.Label).Str("strategy", strategy).Int("items", len(items)).Msg("Source resolved")
	return s.SourceResult{Label: src.Label, FolderID: folderID, Items: items}
}

func anyItems(sections []s.Section) bool {
	for _, section := range sections {
		for _, source := range section.Sources {
			if len(source.Items) > 0 {
				return true
			}
		}
	}
	return false
}

func strPtr(v string) *string {
	return &v
}
