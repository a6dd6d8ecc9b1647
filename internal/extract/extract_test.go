package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func urls(cs []Candidate) []string {
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.URL)
	}
	return out
}

func TestExtract_SingleOriginal(t *testing.T) {
	page := "https://i.pinimg.com/originals/ab/cd/ef/image123.jpg"

	got := Extract(page)

	assert.Equal(t, []string{page}, urls(got.Images))
	assert.Empty(t, got.Videos)
	require.Len(t, got.Images, 1)
	assert.Equal(t, KindImage, got.Images[0].Kind)
	assert.Equal(t, "jpg", got.Images[0].Format)
}

func TestExtract_PartitionsByExtension(t *testing.T) {
	page := `
<img src="https://i.pinimg.com/236x/aa/bb/cc/small.png">
<script>{"url":"https://v1.pinimg.com/videos/mc/720p/aa/bb/clip.mp4","hls":"https://v1.pinimg.com/videos/mc/hls/aa/bb/clip.m3u8"}</script>
<a href='https://i.pinimg.com/564x/aa/bb/cc/anim.GIF'>x</a>
(https://s.pinimg.com/webapp/style.css)
`
	got := Extract(page)

	assert.Equal(t, []string{
		"https://i.pinimg.com/236x/aa/bb/cc/small.png",
		"https://i.pinimg.com/564x/aa/bb/cc/anim.GIF",
	}, urls(got.Images))
	assert.Equal(t, []string{"https://v1.pinimg.com/videos/mc/720p/aa/bb/clip.mp4"}, urls(got.Videos))
	assert.Equal(t, "gif", got.Images[1].Format)
	assert.Equal(t, "mp4", got.Videos[0].Format)
}

func TestExtract_TerminatesAtDelimiters(t *testing.T) {
	tests := []struct {
		name string
		page string
		want string
	}{
		{"double quote", `src="https://i.pinimg.com/originals/a.jpg"`, "https://i.pinimg.com/originals/a.jpg"},
		{"single quote", `src='https://i.pinimg.com/originals/b.png'`, "https://i.pinimg.com/originals/b.png"},
		{"paren", `url(https://i.pinimg.com/originals/c.webp)`, "https://i.pinimg.com/originals/c.webp"},
		{"angle", `<https://i.pinimg.com/originals/d.jpeg>`, "https://i.pinimg.com/originals/d.jpeg"},
		{"whitespace", "https://i.pinimg.com/originals/e.jpg\nnext", "https://i.pinimg.com/originals/e.jpg"},
		{"upper scheme", `HTTPS://I.PINIMG.COM/originals/f.JPG`, "HTTPS://I.PINIMG.COM/originals/f.JPG"},
		{"plain http", `http://i.pinimg.com/originals/g.jpg`, "http://i.pinimg.com/originals/g.jpg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, []string{tt.want}, urls(Extract(tt.page).Images))
		})
	}
}

func TestExtract_IgnoresOtherHosts(t *testing.T) {
	got := Extract(`<img src="https://example.com/originals/a.jpg"> <img src="https://i.imgur.com/x.jpg">`)
	assert.Empty(t, got.Images)
}

func TestExtract_QueryStringBreaksSuffixMatch(t *testing.T) {
	got := Extract(`"https://i.pinimg.com/originals/a.jpg?w=600"`)
	assert.True(t, got.Empty())
}

func TestExtract_DedupPreservesFirstSeenOrder(t *testing.T) {
	page := `
"https://i.pinimg.com/736x/b.jpg"
"https://i.pinimg.com/236x/a.jpg"
"https://i.pinimg.com/736x/b.jpg"
<meta property="og:image" content="https://i.pinimg.com/236x/a.jpg">
<meta property="og:image" content="https://i.pinimg.com/474x/c.jpg">
`
	got := Extract(page)

	assert.Equal(t, []string{
		"https://i.pinimg.com/736x/b.jpg",
		"https://i.pinimg.com/236x/a.jpg",
		"https://i.pinimg.com/474x/c.jpg",
	}, urls(got.Images))
}

func TestExtract_NoDuplicates(t *testing.T) {
	page := ""
	for i := 0; i < 5; i++ {
		page += `"https://i.pinimg.com/originals/a.jpg" "https://v.pinimg.com/v/a.mp4" `
		page += `<meta name="og:video" content="https://v.pinimg.com/v/a.mp4">`
	}

	got := Extract(page)

	for _, list := range [][]Candidate{got.Images, got.Videos} {
		seen := map[string]bool{}
		for _, c := range list {
			assert.False(t, seen[c.URL], "duplicate %s", c.URL)
			seen[c.URL] = true
		}
	}
	assert.Len(t, got.Images, 1)
	assert.Len(t, got.Videos, 1)
}

func TestExtract_MetaTags(t *testing.T) {
	page := `
<meta property="og:video:secure_url" content="https://cdn.example.net/v/clip.mp4">
<meta name="twitter:image:src" content="https://cdn.example.net/i/pic.png">
<meta property="OG:IMAGE" content='https://cdn.example.net/i/big.jpg'>
<meta property="og:image" content="https://cdn.example.net/i/page.html">
<meta property="og:video" content="https://cdn.example.net/i/poster.jpg">
<meta property="og:description" content="https://cdn.example.net/i/desc.jpg">
<meta content="https://cdn.example.net/i/reversed.jpg" property="og:image">
`
	got := Extract(page)

	assert.Equal(t, []string{
		"https://cdn.example.net/i/pic.png",
		"https://cdn.example.net/i/big.jpg",
	}, urls(got.Images))
	assert.Equal(t, []string{"https://cdn.example.net/v/clip.mp4"}, urls(got.Videos))
}

func TestExtract_Empty(t *testing.T) {
	got := Extract("<html><body>nothing to see</body></html>")
	assert.True(t, got.Empty())
	assert.True(t, Extract("").Empty())
}

func TestCandidateClassification(t *testing.T) {
	tests := []struct {
		url   string
		image bool
		video bool
	}{
		{"https://i.pinimg.com/a.jpg", true, false},
		{"https://i.pinimg.com/a.JPEG", true, false},
		{"https://i.pinimg.com/a.png", true, false},
		{"https://i.pinimg.com/a.gif", true, false},
		{"https://i.pinimg.com/a.webp", true, false},
		{"https://v.pinimg.com/a.mp4", false, true},
		{"https://v.pinimg.com/a.MP4", false, true},
		{"https://v.pinimg.com/a.m3u8", false, false},
		{"https://i.pinimg.com/a.jpg?x=1", false, false},
		{"https://i.pinimg.com/jpg", false, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.image, IsImageCandidate(tt.url), "IsImageCandidate(%q)", tt.url)
		assert.Equal(t, tt.video, IsVideoCandidate(tt.url), "IsVideoCandidate(%q)", tt.url)
		assert.False(t, IsImageCandidate(tt.url) && IsVideoCandidate(tt.url))
	}
}
