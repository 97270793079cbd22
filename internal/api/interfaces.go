package api

import (
	"context"
	"io"

	"videosnatch-server/internal/downloader"
	"videosnatch-server/internal/models"
)

// The handler depends on these small interfaces so tests can substitute
// fakes for the extractor-backed implementations.

type MetadataResolver interface {
	Resolve(ctx context.Context, url string) (*downloader.Metadata, error)
}

type DirectURLProber interface {
	TryDirectURL(ctx context.Context, target models.VideoTarget) (*downloader.DirectResult, bool)
}

type DownloadEngine interface {
	Run(ctx context.Context, target models.VideoTarget, jobID string, progress downloader.ProgressFunc) (*downloader.FilePayload, error)
}

type AudioStreamer interface {
	OpenAudioStream(ctx context.Context, target models.VideoTarget) (io.ReadCloser, string, error)
}
