package drive

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/tcsclub/gallery-server/pkg/e"
	driveapi "google.golang.org/api/drive/v3"
)

// driveFileServer fakes the two API calls the streamer makes: a metadata get
// and an alt=media download that honors Range.
func driveFileServer(t *testing.T, meta driveapi.File, content []byte) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("alt") != "media" {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(meta)
			return
		}

		body := content
		status := http.StatusOK
		if rangeHeader := r.Header.Get("Range"); rangeHeader != "" {
			byteRange, ok := ParseRangeHeader(rangeHeader, int64(len(content)))
			if !ok {
				t.Errorf("upstream got unparsable range %q", rangeHeader)
			} else {
				body = content[byteRange.Start : byteRange.End+1]
				status = http.StatusPartialContent
			}
		}
		w.Header().Set("Content-Type", meta.MimeType)
		w.WriteHeader(status)
		_, _ = w.Write(body)
	}))
}

func TestStreamRangedRequest(t *testing.T) {
	content := make([]byte, 1000)
	for i := range content {
		content[i] = byte(i % 251)
	}
	server := driveFileServer(t, driveapi.File{Size: 1000, MimeType: "video/mp4", Name: "clip.mp4"}, content)
	defer server.Close()

	streamer := NewStreamer(newTestService(t, server))
	w := httptest.NewRecorder()

	if err := streamer.Stream(context.Background(), fileID1, "bytes=100-199", w); err != nil {
		t.Fatalf("Stream() error: %v", err)
	}

	if diff := cmp.Diff(http.StatusPartialContent, w.Code); diff != "" {
		t.Errorf("status mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff("bytes 100-199/1000", w.Header().Get("Content-Range")); diff != "" {
		t.Errorf("Content-Range mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff("bytes", w.Header().Get("Accept-Ranges")); diff != "" {
		t.Errorf("Accept-Ranges mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff("100", w.Header().Get("Content-Length")); diff != "" {
		t.Errorf("Content-Length mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(content[100:200], w.Body.Bytes()); diff != "" {
		t.Errorf("body mismatch (-want +got):\n%s", diff)
	}
}

func TestStreamFullRequest(t *testing.T) {
	content := []byte(strings.Repeat("x", 1000))
	server := driveFileServer(t, driveapi.File{Size: 1000, MimeType: "image/jpeg", Name: `photo "1".jpg`}, content)
	defer server.Close()

	streamer := NewStreamer(newTestService(t, server))
	w := httptest.NewRecorder()

	if err := streamer.Stream(context.Background(), fileID1, "", w); err != nil {
		t.Fatalf("Stream() error: %v", err)
	}

	if diff := cmp.Diff(http.StatusOK, w.Code); diff != "" {
		t.Errorf("status mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(1000, w.Body.Len()); diff != "" {
		t.Errorf("body length mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff("image/jpeg", w.Header().Get("Content-Type")); diff != "" {
		t.Errorf("Content-Type mismatch (-want +got):\n%s", diff)
	}
	// Embedded quotes must be stripped from the filename parameter.
	if diff := cmp.Diff(`inline; filename="photo 1.jpg"`, w.Header().Get("Content-Disposition")); diff != "" {
		t.Errorf("Content-Disposition mismatch (-want +got):\n%s", diff)
	}
}

func TestStreamUnsatisfiableRangeServedInFull(t *testing.T) {
	content := []byte(strings.Repeat("x", 100))
	server := driveFileServer(t, driveapi.File{Size: 100, MimeType: "image/jpeg", Name: "a.jpg"}, content)
	defer server.Close()

	streamer := NewStreamer(newTestService(t, server))
	w := httptest.NewRecorder()

	if err := streamer.Stream(context.Background(), fileID1, "bytes=500-600", w); err != nil {
		t.Fatalf("Stream() error: %v", err)
	}
	if diff := cmp.Diff(http.StatusOK, w.Code); diff != "" {
		t.Errorf("status mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(100, w.Body.Len()); diff != "" {
		t.Errorf("body length mismatch (-want +got):\n%s", diff)
	}
}

func publicStreamer(mirror, download *httptest.Server) *Streamer {
	streamer := NewStreamer(&Client{cap: CapNone})
	streamer.imageMirrorBase = mirror.URL
	streamer.downloadBase = download.URL
	return streamer
}

func TestStreamPublicImageMirrorFastPath(t *testing.T) {
	mirror := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write([]byte("jpegbytes"))
	}))
	defer mirror.Close()
	download := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("download path must not be hit when the mirror answers")
	}))
	defer download.Close()

	streamer := publicStreamer(mirror, download)
	w := httptest.NewRecorder()

	if err := streamer.Stream(context.Background(), fileID1, "", w); err != nil {
		t.Fatalf("Stream() error: %v", err)
	}
	if diff := cmp.Diff("jpegbytes", w.Body.String()); diff != "" {
		t.Errorf("body mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff("image/jpeg", w.Header().Get("Content-Type")); diff != "" {
		t.Errorf("Content-Type mismatch (-want +got):\n%s", diff)
	}
}

func TestStreamPublicFollowsOneRedirectHop(t *testing.T) {
	final := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "video/mp4")
		_, _ = w.Write([]byte("moviebytes"))
	}))
	defer final.Close()

	mirror := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer mirror.Close()

	download := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, final.URL+"/resolved", http.StatusFound)
	}))
	defer download.Close()

	streamer := publicStreamer(mirror, download)
	w := httptest.NewRecorder()

	if err := streamer.Stream(context.Background(), fileID1, "", w); err != nil {
		t.Fatalf("Stream() error: %v", err)
	}
	if diff := cmp.Diff("moviebytes", w.Body.String()); diff != "" {
		t.Errorf("body mismatch (-want +got):\n%s", diff)
	}
}

func TestStreamPublicRejectsInterstitialHTML(t *testing.T) {
	mirror := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer mirror.Close()

	download := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<html>Google Drive can't scan this file for viruses</html>"))
	}))
	defer download.Close()

	streamer := publicStreamer(mirror, download)
	w := httptest.NewRecorder()

	err := streamer.Stream(context.Background(), fileID1, "", w)
	if !errors.Is(err, e.ErrUpstreamHTML) {
		t.Fatalf("expected ErrUpstreamHTML, got %v", err)
	}
	// Nothing must have been committed to the response.
	if diff := cmp.Diff(0, w.Body.Len()); diff != "" {
		t.Errorf("body must be empty on rejection (-want +got):\n%s", diff)
	}
}

func TestThumbnailURLDownsizesDriveThumbnail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"thumbnailLink":"https://lh3.googleusercontent.com/abc=s220","mimeType":"image/jpeg"}`))
	}))
	defer server.Close()

	streamer := NewStreamer(newTestService(t, server))

	url, err := streamer.ThumbnailURL(context.Background(), fileID1)
	if err != nil {
		t.Fatalf("ThumbnailURL() error: %v", err)
	}
	if diff := cmp.Diff("https://lh3.googleusercontent.com/abc=s400", url); diff != "" {
		t.Errorf("url mismatch (-want +got):\n%s", diff)
	}
}

func TestThumbnailURLVideoWithoutThumbnail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"mimeType":"video/mp4"}`))
	}))
	defer server.Close()

	streamer := NewStreamer(newTestService(t, server))
	streamer.downloadBase = "https://drive.google.com"

	url, err := streamer.ThumbnailURL(context.Background(), fileID1)
	if err != nil {
		t.Fatalf("ThumbnailURL() error: %v", err)
	}
	want := "https://drive.google.com/thumbnail?id=" + fileID1 + "&sz=w400"
	if diff := cmp.Diff(want, url); diff != "" {
		t.Errorf("url mismatch (-want +got):\n%s", diff)
	}
}

func TestThumbnailURLNoCredentials(t *testing.T) {
	streamer := NewStreamer(&Client{cap: CapNone})
	if _, err := streamer.ThumbnailURL(context.Background(), fileID1); !errors.Is(err, e.ErrNoCredentials) {
		t.Fatalf("expected ErrNoCredentials, got %v", err)
	}
}
