package drive

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tcsclub/gallery-server/pkg/e"
	"github.com/tcsclub/gallery-server/pkg/metrics"
	"github.com/tcsclub/gallery-server/pkg/retry"
	"github.com/tcsclub/gallery-server/pkg/utils"
	driveapi "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
)

const (
	streamMaxRetries = 3
	streamRetryDelay = time.Second
)

var thumbnailSizeSuffix = regexp.MustCompile(`=s\d+$`)

// Streamer proxies the bytes of one Drive file to a client, via the
// authenticated API when possible and via public mirror URLs otherwise.
type Streamer struct {
	client *Client

	// follows redirects, used against the image mirror
	mirrorClient *http.Client
	// no automatic redirects, the uc download path follows one hop manually
	downloadClient *http.Client

	imageMirrorBase string
	downloadBase    string
}

func NewStreamer(client *Client) *Streamer {
	return &Streamer{
		client:       client,
		mirrorClient: &http.Client{Timeout: 60 * time.Second},
		downloadClient: &http.Client{
			Timeout: 60 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		imageMirrorBase: "https://lh3.googleusercontent.com",
		downloadBase:    "https://drive.google.com",
	}
}

// Stream writes the file's bytes to w, honoring rangeHeader when the
// authenticated path knows the file size. Headers are only written once a
// byte source is committed, so a failed strategy can still fall through.
// Returned errors map to e.ErrUpstreamHTML / e.ErrNotFound (confirmed
// unservable) or e.ErrUpstreamFetch (transport failure).
func (st *Streamer) Stream(ctx context.Context, fileID, rangeHeader string, w http.ResponseWriter) error {
	if st.client.Capability() != CapNone {
		err := st.streamViaAPI(ctx, fileID, rangeHeader, w)
		if err == nil {
			metrics.StreamOutcome("api", "ok")
			return nil
		}
		metrics.StreamOutcome("api", "error")
		log.Warn().Err(err).Str("file_id", fileID).Msg("Drive API stream failed, trying public mirrors")
	}

	err := st.streamPublic(ctx, fileID, w)
	if err != nil {
		metrics.StreamOutcome("public", "error")
		return err
	}
	metrics.StreamOutcome("public", "ok")
	return nil
}

func (st *Streamer) streamViaAPI(ctx context.Context, fileID, rangeHeader string, w http.ResponseWriter) error {
	meta, err := st.metadata(ctx, fileID, "size, mimeType, name")
	if err != nil {
		return err
	}

	mime := meta.MimeType
	if mime == "" {
		mime = "application/octet-stream"
	}

	call := st.client.svc.Files.Get(fileID).Context(ctx)

	byteRange, ranged := ByteRange{}, false
	if rangeHeader != "" && meta.Size > 0 {
		byteRange, ranged = ParseRangeHeader(rangeHeader, meta.Size)
	}
	if ranged {
		call.Header().Set("Range", fmt.Sprintf("bytes=%d-%d", byteRange.Start, byteRange.End))
	}

	resp, err := call.Download()
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	header := w.Header()
	header.Set("Content-Type", mime)
	if meta.Name != "" {
		header.Set("Content-Disposition", fmt.Sprintf(`inline; filename="%s"`, utils.SanitizeFilename(meta.Name)))
	}

	if ranged {
		header.Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", byteRange.Start, byteRange.End, meta.Size))
		header.Set("Accept-Ranges", "bytes")
		header.Set("Content-Length", strconv.FormatInt(byteRange.Length(), 10))
		w.WriteHeader(http.StatusPartialContent)
	} else {
		if meta.Size > 0 {
			header.Set("Content-Length", strconv.FormatInt(meta.Size, 10))
		}
		w.WriteHeader(http.StatusOK)
	}

	if _, err := io.Copy(w, resp.Body); err != nil {
		// Headers are already committed, usually the client went away.
		log.Debug().Err(err).Str("file_id", fileID).Msg("Stream copy interrupted")
	}
	return nil
}

func (st *Streamer) metadata(ctx context.Context, fileID string, fields googleapi.Field) (*driveapi.File, error) {
	var meta *driveapi.File
	err := retry.Do(ctx, streamMaxRetries, streamRetryDelay, func() error {
		var err error
		meta, err = st.client.svc.Files.Get(fileID).Fields(fields).Context(ctx).Do()
		return err
	})
	return meta, err
}

// publicFetchState tracks the public fallback's progress. Modelling it as an
// explicit machine keeps "never serve HTML as media" a transition guard
// instead of a buried conditional.
type publicFetchState int

const (
	stateResolving publicFetchState = iota
	stateFollowingRedirect
	stateSniffing
	stateStreaming
	stateFailed
)

func (st *Streamer) streamPublic(ctx context.Context, fileID string, w http.ResponseWriter) error {
	// Fast path: the image mirror serves public images directly.
	mirrorURL := st.imageMirrorBase + "/d/" + fileID + "=w1000"
	if resp, err := st.get(ctx, st.mirrorClient, mirrorURL); err == nil {
		if resp.StatusCode >= 200 && resp.StatusCode < 400 {
			defer resp.Body.Close()
			return pipeUpstream(resp, w)
		}
		resp.Body.Close()
	}

	resp, err := st.fetchDownload(ctx, fileID)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return pipeUpstream(resp, w)
}

// fetchDownload walks the uc?export=download path:
// resolving -> followingRedirect -> sniffing -> streaming | failed.
func (st *Streamer) fetchDownload(ctx context.Context, fileID string) (*http.Response, error) {
	ucURL := st.downloadBase + "/uc?export=download&id=" + fileID

	var resp *http.Response
	var failure error
	state := stateResolving

	for {
		switch state {
		case stateResolving:
			var err error
			if resp, err = st.get(ctx, st.downloadClient, ucURL); err != nil {
				failure = fmt.Errorf("%w: %v", e.ErrUpstreamFetch, err)
				state = stateFailed
				break
			}
			switch {
			case resp.StatusCode == http.StatusFound || resp.StatusCode == http.StatusSeeOther:
				state = stateFollowingRedirect
			case resp.StatusCode >= 200 && resp.StatusCode < 400:
				state = stateSniffing
			default:
				resp.Body.Close()
				failure = fmt.Errorf("%w: download url answered %d", e.ErrNotFound, resp.StatusCode)
				state = stateFailed
			}

		case stateFollowingRedirect:
			location := resp.Header.Get("Location")
			resp.Body.Close()
			if location == "" {
				failure = fmt.Errorf("%w: redirect without location", e.ErrNotFound)
				state = stateFailed
				break
			}
			var err error
			if resp, err = st.get(ctx, st.mirrorClient, location); err != nil {
				failure = fmt.Errorf("%w: %v", e.ErrUpstreamFetch, err)
				state = stateFailed
				break
			}
			state = stateSniffing

		case stateSniffing:
			if strings.Contains(resp.Header.Get("Content-Type"), "text/html") {
				// Interstitial virus-scan page, not the file's bytes.
				resp.Body.Close()
				log.Warn().Str("file_id", fileID).Msg("Got HTML instead of media, likely a virus scan interstitial")
				failure = e.ErrUpstreamHTML
				state = stateFailed
				break
			}
			state = stateStreaming

		case stateStreaming:
			return resp, nil

		case stateFailed:
			return nil, failure
		}
	}
}

func (st *Streamer) get(ctx context.Context, client *http.Client, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	return client.Do(req)
}

func pipeUpstream(from *http.Response, w http.ResponseWriter) error {
	if ct := from.Header.Get("Content-Type"); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	if cl := from.Header.Get("Content-Length"); cl != "" {
		w.Header().Set("Content-Length", cl)
	}
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, from.Body); err != nil {
		log.Debug().Err(err).Msg("Public stream copy interrupted")
	}
	return nil
}

// ThumbnailURL returns an upstream-generated thumbnail URL for a redirect,
// preferring Drive's own thumbnail link downsized for faster loads.
func (st *Streamer) ThumbnailURL(ctx context.Context, fileID string) (string, error) {
	if st.client.Capability() == CapNone {
		return "", e.ErrNoCredentials
	}

	meta, err := st.metadata(ctx, fileID, "thumbnailLink, mimeType")
	if err != nil {
		return "", err
	}

	if meta.ThumbnailLink != "" {
		return thumbnailSizeSuffix.ReplaceAllString(meta.ThumbnailLink, "=s400"), nil
	}
	if strings.HasPrefix(meta.MimeType, "video/") {
		return st.downloadBase + "/thumbnail?id=" + fileID + "&sz=w400", nil
	}
	return "", e.ErrNotFound
}
