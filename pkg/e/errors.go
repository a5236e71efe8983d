package e

import "errors"

var (
	ErrFolderUnavailable = errors.New("folder unavailable")
	ErrNoCredentials     = errors.New("no credentials")
	ErrUpstreamHTML      = errors.New("upstream returned html instead of media")
	ErrUpstreamFetch     = errors.New("upstream fetch failed")
	ErrNotFound          = errors.New("not found")
)
