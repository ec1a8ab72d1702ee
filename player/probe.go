package player

import (
	"context"
	"crypto/rand"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/eonplay/eonplay/constant"
	"github.com/eonplay/eonplay/log"
	"github.com/eonplay/eonplay/media"
)

const (
	probeAttempts = 50
	probeInterval = 100 * time.Millisecond
)

// Prober reads descriptive metadata with a non-decoding mpv instance.
type Prober struct {
	Binary string
}

// Probe opens path without decoding and polls its properties for at most
// probeAttempts intervals. On timeout it returns what it has gathered with
// a nil error.
func (p Prober) Probe(ctx context.Context, path string) (*media.Info, error) {
	target, err := SanitizeOrigin(path)
	if err != nil {
		return nil, err
	}

	binary := p.Binary
	if binary == "" {
		binary = "mpv"
	}

	randomBytes := make([]byte, 4)
	if _, err := rand.Read(randomBytes); err != nil {
		return nil, fmt.Errorf("generate socket name: %w", err)
	}
	socketPath := filepath.Join(os.TempDir(), fmt.Sprintf("%s-probe-%x.sock", constant.App, randomBytes))
	defer os.Remove(socketPath)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cmd := exec.CommandContext(ctx, binary,
		"--config=no",
		"--load-scripts=no",
		"--ytdl=no",
		"--terminal=no",
		"--idle=no",
		"--pause=yes",
		"--keep-open=yes",
		"--vo=null",
		"--ao=null",
		"--input-ipc-server="+socketPath,
		"--",
		target,
	)
	cmd.SysProcAttr = sysProcAttr()
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", binary, err)
	}

	exited := make(chan struct{})
	go func() {
		_ = cmd.Wait()
		close(exited)
	}()
	defer func() {
		_, _ = doSendCommand(socketPath, []any{"quit"})
		select {
		case <-exited:
		case <-time.After(time.Second):
			_ = killProcess(cmd)
		}
	}()

	info := &media.Info{Origin: path}
	for attempt := 0; attempt < probeAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return finishProbe(info, path), nil
		case <-exited:
			return finishProbe(info, path), fmt.Errorf("probe %s: decoder exited", path)
		case <-time.After(probeInterval):
		}

		if readProbe(socketPath, info) {
			return finishProbe(info, path), nil
		}
	}

	log.For("player").WithField("path", path).Warn("metadata probe timed out; returning partial info")
	return finishProbe(info, path), nil
}

func finishProbe(info *media.Info, path string) *media.Info {
	info.IsValid = info.DurationMs > 0 && (info.HasVideo || info.HasAudio)
	info.Normalize()
	return info
}

// readProbe fills info from the probe instance and reports whether the
// properties needed for a complete record have arrived.
func readProbe(socketPath string, info *media.Info) bool {
	get := func(name string) any {
		v, err := doSendCommand(socketPath, []any{"get_property", name})
		if err != nil {
			return nil
		}
		return v
	}

	if f, ok := asFloat(get("duration")); ok {
		info.DurationMs = secondsToMs(f)
	}
	if s, ok := get("file-format").(string); ok {
		info.Format = s
	}
	if s, ok := get("media-title").(string); ok && info.Title == "" {
		info.Title = s
	}

	tracks, _ := get("track-list").([]any)
	for _, t := range tracks {
		track, ok := t.(map[string]any)
		if !ok {
			continue
		}
		codec, _ := track["codec"].(string)
		switch track["type"] {
		case "video":
			if albumart, _ := track["albumart"].(bool); albumart {
				continue
			}
			info.HasVideo = true
			info.VideoCodec = codec
			if w, ok := asFloat(track["demux-w"]); ok {
				info.Width = int(w)
			}
			if h, ok := asFloat(track["demux-h"]); ok {
				info.Height = int(h)
			}
			if fps, ok := asFloat(track["demux-fps"]); ok {
				info.FrameRate = fps
			}
		case "audio":
			info.HasAudio = true
			info.AudioCodec = codec
			if c, ok := asFloat(track["demux-channel-count"]); ok {
				info.Channels = int(c)
			}
			if sr, ok := asFloat(track["demux-samplerate"]); ok {
				info.SampleRate = int(sr)
			}
		}
	}

	if info.HasVideo {
		if w, ok := asFloat(get("video-params/w")); ok && info.Width == 0 {
			info.Width = int(w)
		}
		if h, ok := asFloat(get("video-params/h")); ok && info.Height == 0 {
			info.Height = int(h)
		}
		if fps, ok := asFloat(get("container-fps")); ok && info.FrameRate == 0 {
			info.FrameRate = fps
		}
		if br, ok := asFloat(get("video-bitrate")); ok {
			info.VideoBitrate = int(br / 1000)
		}
	}
	if info.HasAudio {
		if br, ok := asFloat(get("audio-bitrate")); ok {
			info.AudioBitrate = int(br / 1000)
		}
	}

	return info.DurationMs > 0 && len(tracks) > 0
}
