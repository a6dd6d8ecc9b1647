// Package rank scores candidate URLs and selects the asset to download.
package rank

import (
	"strconv"
	"strings"

	"github.com/dlclark/regexp2"

	"github.com/tdh8316/Pindown/internal/extract"
)

const (
	originalsBonus = 10_000
	jpegBonus      = 50
	pngBonus       = 25
	mp4Bonus       = 1_000
)

var (
	// Declared width, e.g. /736x/ or /1200x/.
	widthRe = regexp2.MustCompile(`/([0-9]{2,5})x/`, regexp2.None)
	// Resolution tag, e.g. 720p or V_1080P.
	resolutionRe = regexp2.MustCompile(`([0-9]{3,4})p`, regexp2.IgnoreCase)
)

// ScoreImage rates an image URL. Higher is better; only meaningful relative
// to other candidates from the same page.
func ScoreImage(u string) int {
	score := 0
	if strings.Contains(u, "/originals/") {
		score += originalsBonus
	}
	score += firstNumber(widthRe, u)

	lower := strings.ToLower(u)
	switch {
	case strings.HasSuffix(lower, ".jpg"), strings.HasSuffix(lower, ".jpeg"):
		score += jpegBonus
	case strings.HasSuffix(lower, ".png"):
		score += pngBonus
	}
	return score
}

// ScoreVideo rates a video URL, preferring progressive mp4 over playlists.
func ScoreVideo(u string) int {
	score := 0
	if strings.HasSuffix(strings.ToLower(u), ".mp4") {
		score += mp4Bonus
	}
	score += firstNumber(resolutionRe, u)
	return score
}

// Score dispatches on the candidate's kind.
func Score(c extract.Candidate) int {
	if c.Kind == extract.KindVideo {
		return ScoreVideo(c.URL)
	}
	return ScoreImage(c.URL)
}

func firstNumber(re *regexp2.Regexp, s string) int {
	m, err := re.FindStringMatch(s)
	if err != nil || m == nil {
		return 0
	}
	n, err := strconv.Atoi(m.GroupByNumber(1).String())
	if err != nil {
		return 0
	}
	return n
}
