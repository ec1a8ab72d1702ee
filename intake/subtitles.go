package intake

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/eonplay/eonplay/filesystem"
	"github.com/eonplay/eonplay/media"
	"github.com/eonplay/eonplay/util"
	"github.com/samber/lo"
)

// SubtitleSearchLimit bounds the sidecar search.
const SubtitleSearchLimit = 2 * time.Second

// subtitleDirs are searched next to the media directory itself.
var subtitleDirs = []string{"Subtitles", "Subs", "subtitles", "subs"}

// AutoDetectSubtitles finds sidecar subtitles for mediaPath. A file matches
// when its name without extension equals the media's, or extends it after a
// '.', '_' or '-'.
func (i *Intake) AutoDetectSubtitles(mediaPath string) []string {
	dir := filepath.Dir(mediaPath)
	stem := util.FileStem(mediaPath)
	if stem == "" {
		return nil
	}

	dirs := append([]string{dir}, lo.Map(subtitleDirs, func(d string, _ int) string {
		return filepath.Join(dir, d)
	})...)

	deadline := time.Now().Add(SubtitleSearchLimit)
	var found []string

	for _, d := range dirs {
		if time.Now().After(deadline) {
			i.logger.WithField("path", mediaPath).Warn("subtitle search timed out")
			break
		}

		entries, err := filesystem.API().ReadDir(d)
		if err != nil {
			continue
		}

		for _, entry := range entries {
			if entry.IsDir() || !media.IsSubtitleExt(util.Ext(entry.Name())) {
				continue
			}
			if matchesStem(util.FileStem(entry.Name()), stem) {
				found = append(found, filepath.Join(d, entry.Name()))
			}
		}
	}

	return lo.Uniq(found)
}

func matchesStem(name, stem string) bool {
	if name == stem {
		return true
	}
	rest, ok := strings.CutPrefix(name, stem)
	return ok && rest != "" && strings.ContainsRune("._-", rune(rest[0]))
}
