package drive

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestResolveID(t *testing.T) {
	const id = "1Rva5X11M8EWTVvxSd1jd1BQ1FC_WV5r9"

	tables := []struct {
		name string
		raw  string
		want string
	}{
		{"folders url", "https://drive.google.com/drive/folders/" + id, id},
		{"folders url with query", "https://drive.google.com/drive/folders/" + id + "?usp=sharing", id},
		{"open url with id param", "https://drive.google.com/open?id=" + id, id},
		{"file d url", "https://drive.google.com/file/d/" + id + "/view", id},
		{"bare id", id, id},
		{"short token", "https://drive.google.com/drive/folders/abc123", ""},
		{"no token at all", "https://example.com/gallery", ""},
		{"empty", "", ""},
		{"bare id too short", "abc123", ""},
	}

	for _, table := range tables {
		t.Run(table.name, func(t *testing.T) {
			got := ResolveID(table.raw)
			if diff := cmp.Diff(table.want, got); diff != "" {
				t.Errorf("ResolveID(%q) mismatch (-want +got):\n%s", table.raw, diff)
			}
		})
	}
}

func TestResolveIDSameCanonicalIDAcrossShapes(t *testing.T) {
	const id = "1ZvYsfoGoEgEicRqc376dC6LqBCuw3N1j"
	shapes := []string{
		"https://drive.google.com/drive/folders/" + id,
		"https://drive.google.com/open?id=" + id,
		"https://drive.google.com/file/d/" + id + "/view?usp=sharing",
		id,
	}

	for _, shape := range shapes {
		if got := ResolveID(shape); got != id {
			t.Errorf("ResolveID(%q) = %q, want %q", shape, got, id)
		}
	}
}
