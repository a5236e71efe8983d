package web

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/tcsclub/gallery-server/pkg/e"
	"github.com/tcsclub/gallery-server/pkg/s"
)

// GalleryService assembles the gallery payload, satisfied by gallery.Service.
type GalleryService interface {
	Assemble(ctx context.Context) s.GalleryPayload
}

// MediaBackend proxies file bytes and thumbnail locations, satisfied by
// drive.Streamer.
type MediaBackend interface {
	Stream(ctx context.Context, fileID, rangeHeader string, w http.ResponseWriter) error
	ThumbnailURL(ctx context.Context, fileID string) (string, error)
}

type Handlers struct {
	Gallery GalleryService
	Media   MediaBackend
	Debug   bool
}

// GetGallery always answers 200: assembly degrades to fallback content
// internally, never to an error status.
func (h *Handlers) GetGallery(c *gin.Context) {
	c.JSON(http.StatusOK, h.Gallery.Assemble(c.Request.Context()))
}

func (h *Handlers) StreamMedia(c *gin.Context) {
	fileID := c.Param("id")
	if fileID == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
		return
	}

	err := h.Media.Stream(c.Request.Context(), fileID, c.GetHeader("Range"), c.Writer)
	if err == nil {
		return
	}

	log.Warn().Err(err).Str("file_id", fileID).Msg("Failed to stream media")
	if c.Writer.Written() {
		// Upstream died mid-stream, the status is already on the wire.
		return
	}
	if errors.Is(err, e.ErrUpstreamHTML) || errors.Is(err, e.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
	} else {
		c.JSON(http.StatusBadGateway, gin.H{"error": "upstream fetch failed"})
	}
}

// Thumbnail redirects to an upstream-generated thumbnail when one exists,
// saving proxy bandwidth, and otherwise falls through to the full stream.
func (h *Handlers) Thumbnail(c *gin.Context) {
	fileID := c.Param("id")
	if fileID == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
		return
	}

	if url, err := h.Media.ThumbnailURL(c.Request.Context(), fileID); err == nil {
		c.Header("Cache-Control", "public, max-age=3600")
		c.Redirect(http.StatusFound, url)
		return
	}

	h.StreamMedia(c)
}
