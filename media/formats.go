package media

import (
	"strings"

	"github.com/eonplay/eonplay/util"
	"github.com/samber/lo"
)

var (
	VideoExtensions = []string{
		"mp4", "m4v", "avi", "mkv", "mov", "wmv", "flv", "webm", "3gp", "3g2", "asf", "rm", "rmvb",
		"ogv", "vob", "ts", "mts", "m2ts", "mxf", "roq", "f4v", "f4p", "f4a", "f4b",
	}

	AudioExtensions = []string{
		"mp3", "wav", "flac", "aac", "ogg", "m4a", "wma", "opus", "ape", "wv", "tta", "ac3", "dts",
		"amr", "au", "ra", "3ga", "spx", "gsm", "aiff", "aifc", "caf", "w64", "rf64", "sf", "ircam",
		"voc", "pvf", "htk", "sds", "avr", "sdr", "mpc", "mpp", "mp+",
	}

	PlaylistExtensions = []string{
		"m3u", "m3u8", "pls", "wpl", "xspf", "wvx", "wmx", "wax", "asx", "rm", "ram", "rv", "rmp", "rmx",
	}

	SubtitleExtensions = lo.Uniq([]string{
		"srt", "ass", "ssa", "sub", "idx", "vtt", "sbv", "psb", "jss", "sami", "rt", "ttml", "dfxp",
		"sub", "pjs", "mpl2", "mks", "usf", "lrc", "sf",
	})

	Schemes = []string{
		"http", "https", "ftp", "ftps", "rtsp", "rtmp", "rtmps", "mms", "mmsh", "mmst", "file",
		"udp", "tcp", "rtp", "hls", "dash", "icecast", "shoutcast",
	}
)

var (
	videoSet    = lo.Keyify(VideoExtensions)
	audioSet    = lo.Keyify(AudioExtensions)
	playlistSet = lo.Keyify(PlaylistExtensions)
	subtitleSet = lo.Keyify(SubtitleExtensions)
	schemeSet   = lo.Keyify(Schemes)
)

func has(set map[string]struct{}, ext string) bool {
	_, ok := set[strings.ToLower(strings.TrimPrefix(ext, "."))]
	return ok
}

func IsVideoExt(ext string) bool    { return has(videoSet, ext) }
func IsAudioExt(ext string) bool    { return has(audioSet, ext) }
func IsPlaylistExt(ext string) bool { return has(playlistSet, ext) }
func IsSubtitleExt(ext string) bool { return has(subtitleSet, ext) }

// IsMediaExt reports whether ext is a playable video, audio or playlist extension.
func IsMediaExt(ext string) bool {
	return IsVideoExt(ext) || IsAudioExt(ext) || IsPlaylistExt(ext)
}

// IsMediaPath reports whether path carries a playable extension.
func IsMediaPath(path string) bool {
	return IsMediaExt(util.Ext(path))
}

// IsSupportedScheme reports whether scheme is an accepted URL scheme.
func IsSupportedScheme(scheme string) bool {
	return has(schemeSet, scheme)
}
