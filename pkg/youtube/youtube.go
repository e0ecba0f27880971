// Package youtube recognises YouTube video links and builds embed and
// thumbnail URLs for them.
package youtube

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// Validation messages surfaced to clients.
const (
	MsgNoURL      = "No URL provided"
	MsgNotYouTube = "Not a valid YouTube URL"
	MsgNoVideoID  = "Could not extract video ID from URL"
)

const (
	videoIDLength   = 11
	embedBaseURL    = "https://www.youtube.com/embed/"
	thumbnailFormat = "https://img.youtube.com/vi/%s/%sdefault.jpg"
)

// Thumbnail qualities accepted by img.youtube.com.
const (
	QualityDefault = ""
	QualityHigh    = "hq"
	QualityMedium  = "mq"
	QualitySD      = "sd"
	QualityMax     = "maxres"
)

var patterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/|youtube\.com/embed/)([^&\n?#]+)`),
	regexp.MustCompile(`youtube\.com/v/([^&\n?#]+)`),
	regexp.MustCompile(`youtube\.com/watch\?.*v=([^&\n?#]+)`),
}

// VideoInfo is the result of validating a link.
type VideoInfo struct {
	VideoID      string `json:"video_id,omitempty"`
	Valid        bool   `json:"valid"`
	Error        string `json:"error,omitempty"`
	EmbedURL     string `json:"embed_url,omitempty"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
}

// ExtractID returns the 11 character video id or "" when none is found.
func ExtractID(raw string) string {
	if raw == "" {
		return ""
	}
	for _, pattern := range patterns {
		match := pattern.FindStringSubmatch(raw)
		if len(match) > 1 && len(match[1]) == videoIDLength {
			return match[1]
		}
	}
	return ""
}

// Validate checks that raw is a YouTube link carrying a video id. origin is
// forwarded to the embed URL and may be empty.
func Validate(raw, origin string) VideoInfo {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return VideoInfo{Error: MsgNoURL}
	}
	if !strings.Contains(raw, "youtube.com") && !strings.Contains(raw, "youtu.be") {
		return VideoInfo{Error: MsgNotYouTube}
	}
	id := ExtractID(raw)
	if id == "" {
		return VideoInfo{Error: MsgNoVideoID}
	}
	return VideoInfo{
		VideoID:      id,
		Valid:        true,
		EmbedURL:     EmbedURL(id, origin),
		ThumbnailURL: Thumbnail(id, QualityHigh),
	}
}

// EmbedURL builds the iframe URL for a video id.
func EmbedURL(videoID, origin string) string {
	params := url.Values{}
	params.Set("rel", "0")
	params.Set("modestbranding", "1")
	params.Set("enablejsapi", "1")
	if origin != "" {
		params.Set("origin", origin)
	}
	return embedBaseURL + videoID + "?" + params.Encode()
}

// Thumbnail returns the still image URL for the given quality.
func Thumbnail(videoID, quality string) string {
	switch quality {
	case QualityDefault, QualityHigh, QualityMedium, QualitySD, QualityMax:
	default:
		quality = QualityHigh
	}
	return fmt.Sprintf(thumbnailFormat, videoID, quality)
}
