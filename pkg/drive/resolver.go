package drive

import "regexp"

// Drive IDs are 25+ character tokens of [A-Za-z0-9_-]. The URL pattern covers
// the folder/file URL shapes Drive hands out: /folders/ID, ?id=ID, /d/ID,
// root/ID and drive/ID.
var (
	urlIDPattern  = regexp.MustCompile(`(?:/folders/|id=|/d/|root/|drive/)([a-zA-Z0-9_-]{25,})`)
	bareIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{25,}$`)
)

// ResolveID extracts a Drive folder or file ID from a URL or a raw ID string.
// It returns "" when no Drive-style token can be located; callers must treat
// that as "unsupported/invalid source", not as an empty folder.
func ResolveID(raw string) string {
	if raw == "" {
		return ""
	}
	if m := urlIDPattern.FindStringSubmatch(raw); m != nil {
		return m[1]
	}
	if bareIDPattern.MatchString(raw) {
		return raw
	}
	return ""
}
