package mediatypes

import (
	"path"
	"strings"
)

// DefaultExtension is used when a file name carries no usable extension.
const DefaultExtension = "mp4"

// Container describes an accepted source container.
type Container struct {
	Extension string
	MimeType  string
}

// Containers lists the source containers the converter accepts, keyed by
// sanitized extension.
var Containers = map[string]Container{
	"mp4":  {Extension: "mp4", MimeType: "video/mp4"},
	"m4v":  {Extension: "m4v", MimeType: "video/mp4"},
	"mov":  {Extension: "mov", MimeType: "video/quicktime"},
	"webm": {Extension: "webm", MimeType: "video/webm"},
}

// mimeAliases maps declared upload content types to an accepted container.
var mimeAliases = map[string]string{
	"video/mp4":       "mp4",
	"video/x-m4v":     "m4v",
	"video/quicktime": "mov",
	"video/webm":      "webm",
}

// SanitizeExtension returns the lowercase alphanumeric extension of filename,
// or DefaultExtension when nothing usable remains.
func SanitizeExtension(filename string) string {
	base := filename
	if i := strings.LastIndexAny(base, `/\`); i >= 0 {
		base = base[i+1:]
	}

	i := strings.LastIndexByte(base, '.')
	if i < 0 {
		return DefaultExtension
	}

	var b strings.Builder
	for _, r := range strings.ToLower(base[i+1:]) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return DefaultExtension
	}
	return b.String()
}

// Detect resolves the container for an upload from its file name, falling
// back to the declared content type. ok is false for anything that is not an
// accepted video container.
func Detect(filename, declared string) (Container, bool) {
	if c, ok := Containers[SanitizeExtension(filename)]; ok && path.Ext(filename) != "" {
		return c, true
	}

	mime := strings.ToLower(strings.TrimSpace(declared))
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}
	if ext, ok := mimeAliases[mime]; ok {
		return Containers[ext], true
	}
	return Container{}, false
}

// IsVideo reports whether a declared content type is any video type.
func IsVideo(declared string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(declared)), "video/")
}
