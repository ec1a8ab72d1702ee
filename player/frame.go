package player

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"

	"github.com/eonplay/eonplay/where"
	"github.com/samber/lo"
)

const frameTimeout = 5 * time.Second

// GrabFrame decodes the single frame at ms of origin and returns it as a
// base64-encoded PNG. It runs a separate mpv instance so the playing stream
// is not disturbed.
func GrabFrame(binary, origin string, ms int64) (string, error) {
	target, err := SanitizeOrigin(origin)
	if err != nil {
		return "", err
	}
	if binary == "" {
		binary = "mpv"
	}

	dir, err := os.MkdirTemp(where.Temp(), "frame-*")
	if err != nil {
		return "", fmt.Errorf("frame dir: %w", err)
	}
	defer os.RemoveAll(dir)

	ctx, cancel := context.WithTimeout(context.Background(), frameTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, binary,
		"--config=no",
		"--load-scripts=no",
		"--ytdl=no",
		"--terminal=no",
		"--audio=no",
		"--sub=no",
		"--hr-seek=yes",
		"--frames=1",
		"--start="+strconv.FormatFloat(float64(ms)/1000, 'f', 3, 64),
		"--vo=image",
		"--vo-image-format=png",
		"--vo-image-outdir="+dir,
		"--",
		target,
	)
	cmd.SysProcAttr = sysProcAttr()

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("grab frame: %w", err)
	}

	matches, _ := filepath.Glob(filepath.Join(dir, "*.png"))
	path, ok := lo.First(matches)
	if !ok {
		return "", fmt.Errorf("grab frame: no image written")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("grab frame: %w", err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}
