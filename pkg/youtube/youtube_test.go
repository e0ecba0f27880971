package youtube

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractID(t *testing.T) {
	cases := map[string]string{
		"https://www.youtube.com/watch?v=dQw4w9WgXcQ":               "dQw4w9WgXcQ",
		"https://youtu.be/dQw4w9WgXcQ?t=10":                         "dQw4w9WgXcQ",
		"https://www.youtube.com/embed/dQw4w9WgXcQ":                 "dQw4w9WgXcQ",
		"https://www.youtube.com/v/dQw4w9WgXcQ":                     "dQw4w9WgXcQ",
		"https://www.youtube.com/watch?feature=share&v=dQw4w9WgXcQ": "dQw4w9WgXcQ",
		"https://www.youtube.com/watch?v=short":                     "",
		"":                                                          "",
	}
	for raw, want := range cases {
		assert.Equal(t, want, ExtractID(raw), raw)
	}
}

func TestValidate(t *testing.T) {
	assert.Equal(t, MsgNoURL, Validate("   ", "").Error)
	assert.Equal(t, MsgNotYouTube, Validate("https://vimeo.com/123", "").Error)
	assert.Equal(t, MsgNoVideoID, Validate("https://www.youtube.com/channel/abc", "").Error)

	info := Validate("https://youtu.be/dQw4w9WgXcQ", "https://dance.example.com")
	assert.True(t, info.Valid)
	assert.Equal(t, "dQw4w9WgXcQ", info.VideoID)
	assert.Equal(t, "https://www.youtube.com/embed/dQw4w9WgXcQ?enablejsapi=1&modestbranding=1&origin=https%3A%2F%2Fdance.example.com&rel=0", info.EmbedURL)
	assert.Equal(t, "https://img.youtube.com/vi/dQw4w9WgXcQ/hqdefault.jpg", info.ThumbnailURL)
}

func TestThumbnailQuality(t *testing.T) {
	assert.Equal(t, "https://img.youtube.com/vi/abc/default.jpg", Thumbnail("abc", QualityDefault))
	assert.Equal(t, "https://img.youtube.com/vi/abc/maxresdefault.jpg", Thumbnail("abc", QualityMax))
	assert.Equal(t, "https://img.youtube.com/vi/abc/hqdefault.jpg", Thumbnail("abc", "bogus"))
}
