package intake

import (
	"net/url"
	"strings"

	"github.com/eonplay/eonplay/media"
	"github.com/eonplay/eonplay/util"
	"github.com/samber/lo"
)

// DropData is what a host surface received from a drag and drop or paste.
type DropData struct {
	URLs []string
	Text string
}

// candidates returns the origins carried by d. Text is only consulted when there are no URLs.
func (d DropData) candidates() []string {
	if len(d.URLs) > 0 {
		return d.URLs
	}
	return lo.FilterMap(strings.Split(d.Text, "\n"), func(line string, _ int) (string, bool) {
		line = strings.TrimSpace(line)
		return line, line != ""
	})
}

// dropTarget classifies a dropped origin. Local files come back as paths.
func dropTarget(origin string) (target string, local bool, ok bool) {
	u, err := url.Parse(origin)
	if err != nil {
		return "", false, false
	}

	switch scheme := strings.ToLower(u.Scheme); {
	case scheme == "file":
		return u.Path, true, true
	case scheme == "" || len(scheme) == 1:
		// plain path, or a windows drive letter
		return origin, true, true
	case media.IsSupportedScheme(scheme):
		return origin, false, true
	default:
		return "", false, false
	}
}

// CanHandleMimeData reports whether any dropped origin is a supported local
// file or a URL with a supported scheme.
func (i *Intake) CanHandleMimeData(d DropData) bool {
	return lo.SomeBy(d.candidates(), func(origin string) bool {
		target, local, ok := dropTarget(origin)
		if !ok {
			return false
		}
		if local {
			return media.IsMediaExt(util.Ext(target))
		}
		return true
	})
}

// ProcessDroppedMedia loads every dropped origin in turn and partitions them
// into those the engine accepted and those that failed.
func (i *Intake) ProcessDroppedMedia(d DropData) (processed, failed []string) {
	for _, origin := range d.candidates() {
		target, local, ok := dropTarget(origin)

		var loaded bool
		switch {
		case ok && local:
			loaded = i.LoadMediaFile(target)
		case ok:
			loaded = i.LoadMediaURL(target)
		default:
			// reported through the url validation failure
			loaded = i.LoadMediaURL(origin)
		}

		if loaded {
			processed = append(processed, origin)
		} else {
			failed = append(failed, origin)
		}
	}
	return processed, failed
}
