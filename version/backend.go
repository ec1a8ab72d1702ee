package version

import (
	"fmt"
	"regexp"
)

// MinimumBackend is the oldest mpv release whose IPC reports every property the player observes.
const MinimumBackend = "0.33.0"

var mpvRelease = regexp.MustCompile(`\bmpv v?(\d+\.\d+(?:\.\d+)?)`)

// BackendRelease extracts the release from the first line of `mpv --version`.
// Development builds without a release number are not recognised.
func BackendRelease(line string) (string, bool) {
	m := mpvRelease.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// BackendSupported reports whether the banner names a release at or above MinimumBackend.
func BackendSupported(line string) (bool, error) {
	release, ok := BackendRelease(line)
	if !ok {
		return false, fmt.Errorf("unrecognised backend version %q", line)
	}

	cmp, err := Compare(release, MinimumBackend)
	if err != nil {
		return false, err
	}
	return cmp >= 0, nil
}
