package controller

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/png"

	"github.com/eonplay/eonplay/bus"
	"github.com/eonplay/eonplay/key"
	"github.com/eonplay/eonplay/util"
	"github.com/nfnt/resize"
	"github.com/samber/lo"
)

const (
	thumbnailCacheLimit = 100
	thumbnailEvictCount = 20
)

// Placeholder is a 1x1 PNG returned when a frame cannot be extracted.
const Placeholder = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR42mNkYAAAAAYAAjCB0C8AAAAASUVORK5CYII="

// thumbnailCache maps positions to base64 PNG blobs, evicting the oldest
// entries in batches once it grows past its limit.
type thumbnailCache struct {
	blobs map[int64]string
	order []int64
}

func newThumbnailCache() *thumbnailCache {
	return &thumbnailCache{blobs: make(map[int64]string)}
}

func (t *thumbnailCache) get(ms int64) (string, bool) {
	blob, ok := t.blobs[ms]
	return blob, ok
}

func (t *thumbnailCache) put(ms int64, blob string) {
	if _, ok := t.blobs[ms]; !ok {
		t.order = append(t.order, ms)
	}
	t.blobs[ms] = blob

	if len(t.blobs) <= thumbnailCacheLimit {
		return
	}

	evicted := t.order[:thumbnailEvictCount]
	for _, old := range evicted {
		delete(t.blobs, old)
	}
	t.order = lo.Drop(t.order, thumbnailEvictCount)
}

func (t *thumbnailCache) len() int {
	return len(t.blobs)
}

func (t *thumbnailCache) clear() {
	t.blobs = make(map[int64]string)
	t.order = nil
}

// GenerateSeekThumbnail returns a base64 PNG of the frame at ms. It returns
// "" when thumbnails are disabled, the media has no video or no frame could
// be produced and placeholders are off.
func (c *Controller) GenerateSeekThumbnail(ms int64) string {
	if !c.settings.GetBool(key.PlaybackThumbnails) || !c.loaded("thumbnail") {
		return ""
	}
	if !c.engine.HasVideo() {
		return ""
	}

	ms = util.Max(ms, 0)
	if d := c.engine.Duration(); d > 0 {
		ms = util.Min(ms, d)
	}

	blob, ok := c.thumbs.get(ms)
	if !ok {
		blob = c.renderThumbnail(ms)
		if blob == "" {
			return ""
		}
		c.thumbs.put(ms, blob)
	}

	c.publish(bus.SeekThumbnailGenerated,
		bus.KeyPosition, ms,
		bus.KeyBlob, blob,
	)
	return blob
}

func (c *Controller) renderThumbnail(ms int64) string {
	frame := c.engine.VideoFrame(ms)
	if frame == "" {
		if c.settings.GetBool(key.PlaybackThumbnailPlaceholder) {
			return Placeholder
		}
		return ""
	}

	width := c.settings.GetInt(key.PlaybackThumbnailWidth)
	scaled, err := scaleFrame(frame, uint(util.Max(width, 1)))
	if err != nil {
		c.logger.WithError(err).Debug("keeping unscaled frame")
		return frame
	}
	return scaled
}

// scaleFrame shrinks a base64 PNG so that it fits width, keeping the aspect ratio.
func scaleFrame(frame string, width uint) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(frame)
	if err != nil {
		return "", err
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return "", err
	}

	if uint(img.Bounds().Dx()) <= width {
		return frame, nil
	}

	thumb := resize.Thumbnail(width, width, img, resize.Lanczos3)

	var buf bytes.Buffer
	if err := png.Encode(&buf, thumb); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// ThumbnailCacheSize returns the number of cached thumbnails.
func (c *Controller) ThumbnailCacheSize() int {
	return c.thumbs.len()
}

func (c *Controller) ClearThumbnailCache() {
	c.thumbs.clear()
}
