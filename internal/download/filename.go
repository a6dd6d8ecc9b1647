package download

import (
	"fmt"
	"mime"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

const DefaultExt = "jpg"

var contentTypeExts = map[string]string{
	"image/jpeg":      "jpg",
	"image/jpg":       "jpg",
	"image/png":       "png",
	"image/gif":       "gif",
	"image/webp":      "webp",
	"video/mp4":       "mp4",
	"video/quicktime": "mov",
}

var (
	whitespaceRe  = regexp.MustCompile(`\s+`)
	illegalRe     = regexp.MustCompile(`[\\/:*?"<>|]`)
	underscoresRe = regexp.MustCompile(`_+`)
	trailingExtRe = regexp.MustCompile(`\.[A-Za-z0-9]{1,5}$`)
)

// ExtFromContentType maps a Content-Type header value to a file extension.
// It returns "" for absent or unknown types.
func ExtFromContentType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType, _, _ = strings.Cut(contentType, ";")
	}
	return contentTypeExts[strings.ToLower(strings.TrimSpace(mediaType))]
}

// SplitExtFromURL returns the last path segment of rawURL ("" for a trailing
// slash or empty path) and its lower-case extension without the dot.
func SplitExtFromURL(rawURL string) (base, ext string) {
	p := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		p = u.Path
	}

	base = p[strings.LastIndex(p, "/")+1:]
	if strings.TrimLeft(base, ".") == "" {
		return base, ""
	}
	ext = strings.ToLower(strings.TrimPrefix(path.Ext(base), "."))
	return base, ext
}

// SanitizeFilename collapses whitespace, replaces characters that are illegal
// in filenames with '_' and collapses runs of '_'. It is idempotent.
func SanitizeFilename(name string) string {
	name = strings.TrimSpace(whitespaceRe.ReplaceAllString(name, " "))
	name = illegalRe.ReplaceAllString(name, "_")
	name = underscoresRe.ReplaceAllString(name, "_")
	if name == "" {
		return "file"
	}
	return name
}

// WithExt makes name end in ".ext", replacing a different short extension.
func WithExt(name, ext string) string {
	if strings.HasSuffix(strings.ToLower(name), "."+ext) {
		return name
	}
	return trailingExtRe.ReplaceAllString(name, "") + "." + ext
}

// UniqueFilepath returns dir/base, or dir/root_N.ext for the smallest N >= 1
// that does not exist yet. Leading dots belong to the root, so ".jpg"
// becomes ".jpg_1".
func UniqueFilepath(dir, base string) string {
	ext := filepath.Ext(strings.TrimLeft(base, "."))
	root := strings.TrimSuffix(base, ext)

	candidate := filepath.Join(dir, base)
	for i := 1; exists(candidate); i++ {
		candidate = filepath.Join(dir, fmt.Sprintf("%s_%d%s", root, i, ext))
	}
	return candidate
}

// exists is true only for a successful stat. Any other error (a name that is
// too long, a permission problem) surfaces when the file is created.
func exists(p string) bool {
	_, err := os.Lstat(p)
	return err == nil
}

// EnsureDir creates dir and its parents. An existing directory is not an error.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		if info, statErr := os.Stat(dir); statErr == nil && info.IsDir() {
			return nil
		}
		return &FSError{Path: dir, Err: errors.Wrap(err, "create directory")}
	}
	return nil
}
