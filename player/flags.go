package player

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/eonplay/eonplay/hwaccel"
	"github.com/eonplay/eonplay/media"
)

// Cache sizes in seconds.
const (
	localCacheSecs   = 1
	networkCacheSecs = 3
)

// Flags returns the decoder initialization flags merged with the hardware
// acceleration flags of caps.
func Flags(caps hwaccel.Capabilities) []string {
	flags := []string{
		"--idle=yes",
		"--keep-open=yes",
		"--keep-open-pause=no",
		"--pause=yes",

		// no network metadata lookups
		"--ytdl=no",

		// no embedded scripting or user config
		"--load-scripts=no",
		"--config=no",
		"--osc=no",

		// no title or overlay rendering
		"--osd-level=0",
		"--sub-auto=no",
		"--osd-bar=no",

		// dummy interface
		"--input-terminal=no",
		"--input-default-bindings=no",
		"--terminal=no",

		fmt.Sprintf("--cache-secs=%d", localCacheSecs),
		fmt.Sprintf("--demuxer-readahead-secs=%d", localCacheSecs),
		fmt.Sprintf("--network-timeout=%d", networkCacheSecs),
	}

	return append(flags, caps.MpvFlags()...)
}

// SanitizeOrigin validates that origin is safe to hand to the decoder.
// URLs must use an allowlisted scheme; anything else is treated as a local path.
func SanitizeOrigin(origin string) (string, error) {
	o := strings.TrimSpace(origin)
	if o == "" {
		return "", fmt.Errorf("empty origin")
	}

	if strings.ContainsAny(o, "\x00\n\r") {
		return "", fmt.Errorf("invalid control characters in origin")
	}

	// a leading dash would be parsed as a flag
	if strings.HasPrefix(o, "-") {
		return "", fmt.Errorf("origin must not start with '-'")
	}

	if strings.Contains(o, "://") {
		u, err := url.Parse(o)
		if err != nil {
			return "", fmt.Errorf("invalid URL: %w", err)
		}
		if !media.IsSupportedScheme(u.Scheme) {
			return "", fmt.Errorf("unsupported URL scheme: %s", u.Scheme)
		}
		return o, nil
	}

	return filepath.Clean(o), nil
}

func isNetworkOrigin(origin string) bool {
	u, err := url.Parse(origin)
	return err == nil && u.Scheme != "" && !strings.EqualFold(u.Scheme, "file") && strings.Contains(origin, "://")
}
