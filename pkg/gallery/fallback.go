package gallery

import "github.com/tcsclub/gallery-server/pkg/s"

// Static fallback shown when nothing could be fetched from any configured
// folder. The gallery never surfaces a hard failure to visitors.
var fallbackFileIDs = []struct {
	id      string
	caption string
}{
	{"1Rva5X11M8EWTVvxSd1jd1BQ1FC_WV5r9", "Workshop Session"},
	{"1ZvYsfoGoEgEicRqc376dC6LqBCuw3N1j", "Technical Seminar"},
	{"1O6MRmP4AIJR7xLonRF7Mc2Vl3e3MeNNt", "Innovation Lab"},
	{"1ShZQrAL9GMVhZDRBM75UX7sv_iqdkkFW", "Project Demo"},
	{"1ZH7b4GG5pcAbf-gkju3P5U3ryWaz7wc_", "Coding Competition"},
	{"1Ak8m-BG9fJn21FqnJ2y1QtCgOAFRIUbb", "Tech Talk"},
}

func FallbackItems() []s.MediaItem {
	items := make([]s.MediaItem, 0, len(fallbackFileIDs))
	for _, f := range fallbackFileIDs {
		items = append(items, s.MediaItem{
			ID:        f.id,
			MediaType: s.MediaTypePhoto,
			Src:       "/api/media/" + f.id,
			Thumbnail: "/api/thumbnail/" + f.id,
			Caption:   f.caption,
		})
	}
	return items
}
