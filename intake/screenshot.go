package intake

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"path/filepath"
	"slices"

	"github.com/eonplay/eonplay/bus"
	"github.com/eonplay/eonplay/filesystem"
	"github.com/eonplay/eonplay/key"
	"github.com/eonplay/eonplay/util"
	"github.com/samber/lo"
	"github.com/spf13/cast"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

var (
	ErrNoVideo           = errors.New("media has no video")
	ErrNoFrame           = errors.New("no frame available at this position")
	ErrUnsupportedFormat = errors.New("unsupported screenshot format")
)

const screenshotLayout = "20060102_150405"

type encoder func(w io.Writer, img image.Image) error

var encoders = map[string]encoder{
	"png":  png.Encode,
	"jpg":  encodeJPEG,
	"jpeg": encodeJPEG,
	"bmp":  bmp.Encode,
	"tiff": encodeTIFF,
}

func encodeJPEG(w io.Writer, img image.Image) error {
	return jpeg.Encode(w, img, &jpeg.Options{Quality: 95})
}

func encodeTIFF(w io.Writer, img image.Image) error {
	return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
}

// SupportedScreenshotFormats lists the formats that have an encoder.
func SupportedScreenshotFormats() []string {
	formats := lo.Keys(encoders)
	slices.Sort(formats)
	return formats
}

// CaptureScreenshot saves the frame at the current position.
func (i *Intake) CaptureScreenshot(outputPath string) (string, error) {
	var ms int64
	if i.engine != nil {
		ms = i.engine.Position()
	}
	return i.CaptureScreenshotAt(ms, outputPath)
}

// CaptureScreenshotAt saves the frame at ms to outputPath, or to an
// automatically named file in the screenshot directory when outputPath is
// empty. It returns the path written.
func (i *Intake) CaptureScreenshotAt(ms int64, outputPath string) (string, error) {
	path, err := i.captureScreenshot(ms, outputPath)
	if err != nil {
		i.logger.WithError(err).Error("screenshot failed")
		i.publish(bus.ScreenshotFailed, bus.KeyMessage, err.Error())
		return "", err
	}

	i.logger.WithField("path", path).Info("screenshot saved")
	i.publish(bus.ScreenshotCaptured,
		bus.KeyPath, path,
		bus.KeyPosition, ms,
	)
	return path, nil
}

func (i *Intake) captureScreenshot(ms int64, outputPath string) (string, error) {
	switch {
	case i.engine == nil:
		return "", ErrNoBackend
	case !i.engine.HasVideo():
		return "", ErrNoVideo
	}

	path := outputPath
	if path == "" {
		path = i.screenshotPath()
	}

	format := util.Ext(path)
	encode, ok := encoders[format]
	if !ok || !i.formatAllowed(format) {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	blob := i.engine.VideoFrame(ms)
	if blob == "" {
		return "", ErrNoFrame
	}

	raw, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return "", fmt.Errorf("decode frame: %w", err)
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("decode frame: %w", err)
	}

	fs := filesystem.API()
	if err := fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("create screenshot directory: %w", err)
	}

	var buf bytes.Buffer
	if err := encode(&buf, img); err != nil {
		return "", fmt.Errorf("encode %s: %w", format, err)
	}
	if err := fs.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("write screenshot: %w", err)
	}
	return path, nil
}

func (i *Intake) screenshotPath() string {
	base := "screenshot"
	if i.origin != "" {
		if stem := util.SanitizeFilename(util.FileStem(i.origin)); stem != "" {
			base = stem
		}
	}

	format := i.settings.GetString(key.ScreenshotFormat)
	if format == "" {
		format = "png"
	}

	name := fmt.Sprintf("%s_Screenshot_%s.%s", base, i.now().Format(screenshotLayout), format)
	return filepath.Join(i.settings.GetString(key.ScreenshotDir), name)
}

// formatAllowed checks format against the configured list. An empty list allows every encoder.
func (i *Intake) formatAllowed(format string) bool {
	allowed := cast.ToStringSlice(i.settings.Get(key.ScreenshotFormats))
	return len(allowed) == 0 || lo.Contains(allowed, format)
}
