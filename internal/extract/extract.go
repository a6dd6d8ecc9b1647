// Package extract finds candidate media URLs in raw pin page text.
//
// The page is never parsed as HTML or JSON. URLs are picked out of the text
// wherever they appear: attributes, inline scripts, embedded JSON blobs.
package extract

import (
	"strings"

	"github.com/dlclark/regexp2"
)

// MediaKind is the inferred kind of a candidate URL.
type MediaKind string

const (
	KindImage MediaKind = "image"
	KindVideo MediaKind = "video"
)

func (k MediaKind) String() string {
	return string(k)
}

// AssetHost is the CDN domain pin media is served from.
const AssetHost = "pinimg.com"

var (
	ImageExts = []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}
	VideoExts = []string{".mp4"}
)

// Candidate is a URL that plausibly points at a downloadable asset.
type Candidate struct {
	URL    string
	Kind   MediaKind
	Format string // lower-case extension without the dot
}

// Candidates holds the deduplicated image and video URLs found on one page,
// each in first-seen order.
type Candidates struct {
	Images []Candidate
	Videos []Candidate
}

func (c Candidates) Empty() bool {
	return len(c.Images) == 0 && len(c.Videos) == 0
}

var (
	assetURLRe = regexp2.MustCompile(`https?://[a-z0-9.-]*pinimg\.com[^\s"'<>)]+`, regexp2.IgnoreCase)

	// name/property must come before content, matching how pinterest renders them.
	metaRe = regexp2.MustCompile(
		`<meta[^>]+(?:name|property)=(?:"|')([^"']+)(?:"|')[^>]+content=(?:"|')([^"']+)(?:"|')`,
		regexp2.IgnoreCase,
	)
)

var (
	videoMetaPrefixes = []string{"og:video"}
	imageMetaPrefixes = []string{"og:image", "twitter:image"}
)

// Extract scans page for asset-host URLs and social preview meta tags.
func Extract(page string) Candidates {
	var images, videos []string

	for _, u := range findAll(assetURLRe, page, 0) {
		switch {
		case IsImageCandidate(u):
			images = append(images, u)
		case IsVideoCandidate(u):
			videos = append(videos, u)
		}
	}

	for _, kv := range findMeta(page) {
		key, val := strings.ToLower(kv[0]), kv[1]
		switch {
		case hasAnyPrefix(key, videoMetaPrefixes) && IsVideoCandidate(val):
			videos = append(videos, val)
		case hasAnyPrefix(key, imageMetaPrefixes) && IsImageCandidate(val):
			images = append(images, val)
		}
	}

	return Candidates{
		Images: toCandidates(dedup(images), KindImage),
		Videos: toCandidates(dedup(videos), KindVideo),
	}
}

// IsImageCandidate reports whether u ends in a known image extension.
// The check is a literal suffix match: a query string after the extension
// means no match.
func IsImageCandidate(u string) bool {
	return extOf(u, ImageExts) != ""
}

// IsVideoCandidate reports whether u ends in a known video extension.
func IsVideoCandidate(u string) bool {
	return extOf(u, VideoExts) != ""
}

func extOf(u string, exts []string) string {
	lower := strings.ToLower(u)
	for _, ext := range exts {
		if strings.HasSuffix(lower, ext) {
			return ext
		}
	}
	return ""
}

func findAll(re *regexp2.Regexp, s string, group int) []string {
	var out []string
	m, err := re.FindStringMatch(s)
	for err == nil && m != nil {
		out = append(out, m.GroupByNumber(group).String())
		m, err = re.FindNextMatch(m)
	}
	return out
}

func findMeta(s string) [][2]string {
	var out [][2]string
	m, err := metaRe.FindStringMatch(s)
	for err == nil && m != nil {
		out = append(out, [2]string{m.GroupByNumber(1).String(), m.GroupByNumber(2).String()})
		m, err = metaRe.FindNextMatch(m)
	}
	return out
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

func dedup(urls []string) []string {
	seen := make(map[string]struct{}, len(urls))
	out := urls[:0]
	for _, u := range urls {
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}

func toCandidates(urls []string, kind MediaKind) []Candidate {
	exts := ImageExts
	if kind == KindVideo {
		exts = VideoExts
	}

	out := make([]Candidate, 0, len(urls))
	for _, u := range urls {
		out = append(out, Candidate{
			URL:    u,
			Kind:   kind,
			Format: strings.TrimPrefix(extOf(u, exts), "."),
		})
	}
	return out
}
