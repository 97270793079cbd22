package downloader

import (
	"context"
	"net/url"
	"strings"

	"github.com/kkdai/youtube/v2"
)

// allowedHosts is the supported-platform allow-list. Anything else is
// rejected before a single extractor call is made.
var allowedHosts = map[string]struct{}{
	"youtube.com":       {},
	"www.youtube.com":   {},
	"m.youtube.com":     {},
	"music.youtube.com": {},
	"youtu.be":          {},
}

// ValidateURL checks that the input is a well-formed URL on a supported
// platform. Returns a *ValidationError otherwise.
func ValidateURL(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return &ValidationError{Detail: "URL is required."}
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return &ValidationError{Detail: "Invalid video URL."}
	}
	if _, ok := allowedHosts[strings.ToLower(u.Hostname())]; !ok {
		return &ValidationError{Detail: "Invalid or unsupported video URL."}
	}
	return nil
}

// Metadata is the preview a client sees before picking a format.
type Metadata struct {
	Title     string `json:"title"`
	Uploader  string `json:"uploader"`
	Duration  int    `json:"duration"`
	Thumbnail string `json:"thumbnail,omitempty"`
}

// Resolver fetches video metadata without downloading any media. Stateless;
// it never touches the job registry.
type Resolver struct {
	client youtube.Client
}

func NewResolver() *Resolver {
	return &Resolver{}
}

func (r *Resolver) Resolve(ctx context.Context, rawURL string) (*Metadata, error) {
	if err := ValidateURL(rawURL); err != nil {
		return nil, err
	}

	video, err := r.client.GetVideoContext(ctx, rawURL)
	if err != nil {
		return nil, sourceUnavailable(err)
	}

	return &Metadata{
		Title:     video.Title,
		Uploader:  video.Author,
		Duration:  int(video.Duration.Seconds()),
		Thumbnail: largestThumbnail(video),
	}, nil
}

func largestThumbnail(video *youtube.Video) string {
	best := ""
	bestWidth := uint(0)
	for _, t := range video.Thumbnails {
		if best == "" || t.Width > bestWidth {
			best = t.URL
			bestWidth = t.Width
		}
	}
	return best
}
