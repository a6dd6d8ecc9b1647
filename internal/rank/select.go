package rank

import (
	"sort"

	"github.com/tdh8316/Pindown/internal/extract"
)

type Scored struct {
	extract.Candidate
	Score int
}

// Selection is the best image and best video found on one page. Either may be nil.
type Selection struct {
	Image *extract.Candidate
	Video *extract.Candidate
}

// Pick returns the asset to download: the video if there is one, else the image.
func (s Selection) Pick() (extract.Candidate, bool) {
	if s.Video != nil {
		return *s.Video, true
	}
	if s.Image != nil {
		return *s.Image, true
	}
	return extract.Candidate{}, false
}

// Rank scores cs and sorts them best first. Equal scores keep their input order.
func Rank(cs []extract.Candidate) []Scored {
	out := make([]Scored, len(cs))
	for i, c := range cs {
		out[i] = Scored{Candidate: c, Score: Score(c)}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}

func Select(c extract.Candidates) Selection {
	var sel Selection
	if ranked := Rank(c.Images); len(ranked) > 0 {
		best := ranked[0].Candidate
		sel.Image = &best
	}
	if ranked := Rank(c.Videos); len(ranked) > 0 {
		best := ranked[0].Candidate
		sel.Video = &best
	}
	return sel
}
