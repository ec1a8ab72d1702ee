package intake

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/eonplay/eonplay/config"
	"github.com/eonplay/eonplay/filesystem"
	"github.com/eonplay/eonplay/key"
	"github.com/eonplay/eonplay/media"
	"github.com/eonplay/eonplay/util"
	"github.com/gabriel-vasile/mimetype"
	"github.com/samber/lo"
)

var ErrInvalidURL = errors.New("invalid url")

const (
	headerSize = 16

	// sniffSize is how much of a file mimetype gets to look at.
	sniffSize = 512
)

// tsPacket is the length of an mpeg transport stream packet.
const tsPacket = 188

// signature is a container magic at offset. When forms is set, the four
// bytes at offset 8 must be one of them.
type signature struct {
	offset int
	magic  []byte
	forms  []string
}

var signatures = []signature{
	{offset: 4, magic: []byte("ftyp")},                                  // mp4, mov, m4a, 3gp
	{offset: 0, magic: []byte{0x1a, 0x45, 0xdf, 0xa3}},                  // matroska, webm
	{offset: 0, magic: []byte("RIFF"), forms: []string{"AVI ", "WAVE"}}, // avi, wav
	{offset: 0, magic: []byte("ID3")},                                   // mp3 with tags
	{offset: 0, magic: []byte("fLaC")},                                  // flac
	{offset: 0, magic: []byte("OggS")},                                  // ogg, opus, ogv
	{offset: 0, magic: []byte{0x30, 0x26, 0xb2, 0x75}},                  // asf, wmv, wma
	{offset: 0, magic: []byte("FLV")},                                   // flv
	{offset: 0, magic: []byte(".RMF")},                                  // real media
	{offset: 0, magic: []byte{0x00, 0x00, 0x01, 0xba}},                  // mpeg program stream, vob
	{offset: 0, magic: []byte{0x00, 0x00, 0x01, 0xb3}},                  // mpeg video
	{offset: 0, magic: []byte("FORM"), forms: []string{"AIFF", "AIFC"}}, // aiff
	{offset: 0, magic: []byte("caff")},                                  // core audio
	{offset: 0, magic: []byte("MAC ")},                                  // monkey's audio
	{offset: 0, magic: []byte("wvpk")},                                  // wavpack
	{offset: 0, magic: []byte("#!AMR")},                                 // amr
	{offset: 0, magic: []byte(".snd")},                                  // au
	{offset: 0, magic: []byte("MPCK")},                                  // musepack
	{offset: 0, magic: []byte{0x06, 0x0e, 0x2b, 0x34}},                  // mxf
	{offset: 0, magic: []byte{0x0b, 0x77}},                              // ac3
	{offset: 0, magic: []byte{0x7f, 0xfe, 0x80, 0x01}},                  // dts
}

func (s signature) matches(header []byte) bool {
	end := s.offset + len(s.magic)
	if len(header) < end || !bytes.Equal(header[s.offset:end], s.magic) {
		return false
	}
	if len(s.forms) == 0 {
		return true
	}
	return len(header) >= 12 && lo.Contains(s.forms, string(header[8:12]))
}

// suspicious lists content types that never belong in a media file.
var suspicious = []string{
	"application/pdf",
	"application/zip",
	"application/x-elf",
	"application/x-mach-binary",
	"application/vnd.microsoft.portable-executable",
	"application/x-msdownload",
	"text/html",
	"application/x-sh",
}

// matchesSignature reports whether content starts like a known media
// container. Only the first headerSize bytes are compared against the
// signature table; a transport stream needs a second sync byte one packet in.
func matchesSignature(content []byte) bool {
	header := content[:min(len(content), headerSize)]
	if lo.SomeBy(signatures, func(s signature) bool { return s.matches(header) }) {
		return true
	}

	switch {
	case len(header) >= 2 && header[0] == 0xff && header[1]&0xe0 == 0xe0:
		// mpeg audio frame sync
		return true
	case len(content) > tsPacket && content[0] == 0x47 && content[tsPacket] == 0x47:
		// mpeg transport stream sync bytes
		return true
	}
	return false
}

// looksDangerous reports whether the content is clearly something other than media.
func looksDangerous(content []byte) (string, bool) {
	for mt := mimetype.Detect(content); mt != nil; mt = mt.Parent() {
		if lo.SomeBy(suspicious, mt.Is) || strings.HasPrefix(mt.String(), "image/") {
			return mt.String(), true
		}
	}
	return "", false
}

// ValidateMediaFile vets a local file before it may be handed to the engine.
// Checks run in order: presence, readability, size, extension, emptiness, header.
func (i *Intake) ValidateMediaFile(path string) media.ValidationResult {
	if strings.TrimSpace(path) == "" {
		return media.FileNotFound
	}

	stat, err := filesystem.API().Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return media.FileNotFound
	case err != nil:
		return media.AccessDenied
	case stat.IsDir():
		return media.FileNotFound
	}

	if stat.Size() > i.maxFileSize() {
		return media.FileTooLarge
	}

	ext := util.Ext(path)
	if !media.IsMediaExt(ext) {
		return media.UnsupportedFormat
	}

	if stat.Size() == 0 {
		return media.CorruptedFile
	}

	if media.IsPlaylistExt(ext) && !media.IsVideoExt(ext) && !media.IsAudioExt(ext) {
		return media.Valid
	}

	content, err := filesystem.ReadHeader(path, sniffSize)
	switch {
	case errors.Is(err, fs.ErrPermission):
		return media.AccessDenied
	case err != nil:
		return media.CorruptedFile
	}

	if matchesSignature(content) {
		return media.Valid
	}
	if detected, bad := looksDangerous(content); bad {
		i.logger.WithField("path", path).WithField("detected", detected).Warn("content does not match its extension")
		return media.SecurityRisk
	}
	return media.Valid
}

func (i *Intake) maxFileSize() int64 {
	if n := i.settings.GetInt64(key.IntakeMaxFileSize); n > 0 {
		return n
	}
	return config.DefaultMaxFileSize
}

// ValidationErrorMessage describes why path failed validation.
func (i *Intake) ValidationErrorMessage(path string, result media.ValidationResult) string {
	name := filepath.Base(path)

	switch result {
	case media.Valid:
		return ""
	case media.UnsupportedFormat:
		ext := strings.ToUpper(util.Ext(path))
		if ext == "" {
			return fmt.Sprintf("Unsupported file format: %s has no extension", name)
		}
		return fmt.Sprintf("Unsupported file format: %s files cannot be played", ext)
	case media.FileNotFound:
		return fmt.Sprintf("File not found: %s", path)
	case media.FileTooLarge:
		limit := humanize.IBytes(uint64(i.maxFileSize()))
		if stat, err := filesystem.API().Stat(path); err == nil {
			return fmt.Sprintf("File too large: %s is %s, the limit is %s", name, humanize.IBytes(uint64(stat.Size())), limit)
		}
		return fmt.Sprintf("File too large: the limit is %s", limit)
	case media.AccessDenied:
		return fmt.Sprintf("Access denied: %s cannot be read", path)
	case media.CorruptedFile:
		return fmt.Sprintf("Corrupted file: %s is empty or unreadable", name)
	case media.SecurityRisk:
		return fmt.Sprintf("Security risk: the content of %s does not look like %s media", name, strings.ToUpper(util.Ext(path)))
	default:
		return fmt.Sprintf("Cannot open %s", name)
	}
}

// ValidateMediaURL checks a URL against the scheme allowlist. file:// URLs
// are converted to local paths and validated as files; the returned origin
// is the value to hand to the engine.
func (i *Intake) ValidateMediaURL(raw string) (origin string, local bool, err error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false, fmt.Errorf("%w: empty", ErrInvalidURL)
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", false, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}

	scheme := strings.ToLower(u.Scheme)
	switch {
	case scheme == "":
		return "", false, fmt.Errorf("%w: %q has no scheme", ErrInvalidURL, raw)
	case !media.IsSupportedScheme(scheme):
		return "", false, fmt.Errorf("%w: scheme %q is not supported", ErrInvalidURL, scheme)
	case scheme == "file":
		path := filepath.FromSlash(u.Path)
		if result := i.ValidateMediaFile(path); result != media.Valid {
			return path, true, fmt.Errorf("%w: %s", ErrInvalidURL, i.ValidationErrorMessage(path, result))
		}
		return path, true, nil
	case u.Host == "":
		return "", false, fmt.Errorf("%w: %q has no host", ErrInvalidURL, raw)
	}

	return raw, false, nil
}
