package downloader

import (
	"context"

	"github.com/kkdai/youtube/v2"

	"videosnatch-server/internal/models"
)

// DirectResult is a redirect-able media URL the client can fetch itself, so
// the bytes never pass through this server.
type DirectResult struct {
	URL      string `json:"directUrl"`
	Filename string `json:"filename"`
	MIME     string `json:"mimeType"`
}

// FastPath probes for a direct stream URL that needs no server-side
// processing. It is a cheap, untracked probe: it never touches the job
// registry, and any failure just means the caller falls back to the worker.
type FastPath struct {
	client youtube.Client
}

func NewFastPath() *FastPath {
	return &FastPath{}
}

func (p *FastPath) TryDirectURL(ctx context.Context, target models.VideoTarget) (*DirectResult, bool) {
	if target.Format == "mp3" {
		// mp3 always needs a transcode; never direct.
		return nil, false
	}

	video, err := p.client.GetVideoContext(ctx, target.URL)
	if err != nil {
		return nil, false
	}

	var format *youtube.Format
	switch target.Format {
	case "m4a":
		format = findM4AFormat(video.Formats)
	default:
		format = findProgressiveFormat(video.Formats, target.MaxHeight)
	}
	if format == nil {
		return nil, false
	}

	streamURL, err := p.client.GetStreamURLContext(ctx, video, format)
	if err != nil || streamURL == "" {
		return nil, false
	}

	name := SanitizeFilename(video.Title, fallbackName(target.Format))
	return &DirectResult{
		URL:      streamURL,
		Filename: name + "." + Extension(target.Format),
		MIME:     MIMEType(target.Format),
	}, true
}
