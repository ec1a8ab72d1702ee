package intake

import (
	"context"
	"net/url"
	"path"
	"time"

	"github.com/dhowden/tag"
	"github.com/eonplay/eonplay/filesystem"
	"github.com/eonplay/eonplay/media"
	"github.com/eonplay/eonplay/util"
	"github.com/sirupsen/logrus"
)

// cachedInfo is keyed by path and tagged with the file's modification time
// and size so that rewrites invalidate it.
type cachedInfo struct {
	modTime time.Time
	size    int64
	info    media.Info
}

// ExtractMediaInfo returns what is known about the file at path. It never
// returns nil: a missing file yields an invalid info and a prober timeout
// yields whatever was read so far.
func (i *Intake) ExtractMediaInfo(ctx context.Context, path string) *media.Info {
	stat, err := filesystem.API().Stat(path)
	if err != nil {
		i.logger.WithField("path", path).WithError(err).Warn("cannot stat media")
		return &media.Info{Origin: path}
	}

	i.mu.Lock()
	cached, ok := i.infos[path]
	i.mu.Unlock()
	if ok && cached.size == stat.Size() && cached.modTime.Equal(stat.ModTime()) {
		info := cached.info
		return &info
	}

	info := &media.Info{}
	if i.prober != nil {
		probed, err := i.prober.Probe(ctx, path)
		if err != nil {
			i.logger.WithField("path", path).WithError(err).Warn("probe failed")
		}
		if probed != nil {
			info = probed
		}
	}

	info.Origin = path
	info.FileSize = stat.Size()
	if info.Format == "" {
		info.Format = util.Ext(path)
	}

	readTags(i.logger.WithField("path", path), path, info)
	if info.Title == "" {
		info.Title = util.FileStem(path)
	}

	info.IsValid = info.DurationMs > 0 && (info.HasVideo || info.HasAudio)
	info.Normalize()

	i.mu.Lock()
	i.infos[path] = cachedInfo{modTime: stat.ModTime(), size: stat.Size(), info: *info}
	i.mu.Unlock()

	return info
}

// readTags fills title, artist and album from embedded tags when present.
// Malformed or truncated tags are skipped.
func readTags(logger *logrus.Entry, path string, info *media.Info) {
	defer func() {
		if r := recover(); r != nil {
			logger.WithField("panic", r).Warn("unreadable tags")
		}
	}()

	f, err := filesystem.API().Open(path)
	if err != nil {
		return
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return
	}

	if t := m.Title(); t != "" {
		info.Title = t
	}
	if a := m.Artist(); a != "" {
		info.Artist = a
	} else if a := m.AlbumArtist(); a != "" {
		info.Artist = a
	}
	if a := m.Album(); a != "" {
		info.Album = a
	}
	if !info.HasAudio && !info.HasVideo && m.FileType() != tag.UnknownFileType {
		info.HasAudio = true
	}
}

func titleFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	if base := path.Base(u.Path); base != "." && base != "/" && base != "" {
		if unescaped, err := url.PathUnescape(base); err == nil {
			return unescaped
		}
		return base
	}
	return u.Host
}
