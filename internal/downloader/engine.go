package downloader

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/kkdai/youtube/v2"
	"golang.org/x/sync/errgroup"

	"videosnatch-server/internal/models"
)

// ProgressFunc receives coarse progress updates as the worker advances.
type ProgressFunc func(status models.Status, percentage int, message string)

// FilePayload is the produced file: path on disk, a header-safe filename and
// the MIME type of the container. The caller owns the file and removes it
// after serving.
type FilePayload struct {
	Path     string
	Filename string
	MIME     string
}

// Engine performs server-side fetch and mux/transcode, invoked only after
// the fast path declines. The one long-running operation in the service:
// tens of seconds to minutes.
type Engine struct {
	client   youtube.Client
	tempDir  string
	slots    chan struct{}
	lookPath func(string) (string, error)
}

func NewEngine(tempDir string, maxConcurrent int) *Engine {
	return &Engine{
		tempDir:  tempDir,
		slots:    make(chan struct{}, maxConcurrent),
		lookPath: exec.LookPath,
	}
}

// Run fetches the target and produces a file, reporting progress through the
// callback. Percentages during fetch are capped at 99; the caller marks the
// job complete at 100 once the response is on its way.
func (e *Engine) Run(ctx context.Context, target models.VideoTarget, jobID string, progress ProgressFunc) (*FilePayload, error) {
	select {
	case e.slots <- struct{}{}:
		defer func() { <-e.slots }()
	case <-ctx.Done():
		return nil, &TransferError{Detail: "Download cancelled.", Err: ctx.Err()}
	}

	if _, err := e.lookPath("ffmpeg"); err != nil {
		return nil, &ToolUnavailableError{Tool: "ffmpeg"}
	}

	video, err := e.client.GetVideoContext(ctx, target.URL)
	if err != nil {
		return nil, sourceUnavailable(err)
	}

	progress(models.StatusDownloading, 0, "")

	if target.Format == "mp3" || target.Format == "m4a" {
		return e.runAudio(ctx, video, target, jobID, progress)
	}
	return e.runVideo(ctx, video, target, jobID, progress)
}

func (e *Engine) runVideo(ctx context.Context, video *youtube.Video, target models.VideoTarget, jobID string, progress ProgressFunc) (*FilePayload, error) {
	videoFormat := findVideoFormat(video.Formats, target.MaxHeight)
	audioFormat := findAudioFormat(video.Formats)
	if videoFormat == nil || audioFormat == nil {
		return nil, sourceUnavailable(fmt.Errorf("no usable formats for %s", video.ID))
	}

	videoTemp := filepath.Join(e.tempDir, fmt.Sprintf("v_%s.mp4", jobID))
	audioTemp := filepath.Join(e.tempDir, fmt.Sprintf("a_%s.m4a", jobID))
	outPath := filepath.Join(e.tempDir, fmt.Sprintf("%s.mp4", jobID))
	defer os.Remove(videoTemp)
	defer os.Remove(audioTemp)

	track := newByteTracker(videoFormat.ContentLength+audioFormat.ContentLength, func(pct int) {
		progress(models.StatusDownloading, pct, "")
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return e.fetchStream(gctx, video, videoFormat, videoTemp, track)
	})
	g.Go(func() error {
		return e.fetchStream(gctx, video, audioFormat, audioTemp, track)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	progress(models.StatusProcessing, 99, "")

	if err := e.runFFmpeg(ctx, "-y", "-hide_banner", "-loglevel", "error",
		"-i", videoTemp, "-i", audioTemp, "-c", "copy", outPath); err != nil {
		return nil, err
	}
	if err := checkOutput(outPath); err != nil {
		return nil, err
	}

	name := SanitizeFilename(video.Title, fallbackName(target.Format))
	height := parseHeight(videoFormat.QualityLabel)
	filename := fmt.Sprintf("%s_%dp.mp4", name, height)
	if height == 0 {
		filename = name + ".mp4"
	}

	return &FilePayload{Path: outPath, Filename: filename, MIME: MIMEType(target.Format)}, nil
}

func (e *Engine) runAudio(ctx context.Context, video *youtube.Video, target models.VideoTarget, jobID string, progress ProgressFunc) (*FilePayload, error) {
	audioFormat := findAudioFormat(video.Formats)
	if audioFormat == nil {
		return nil, sourceUnavailable(fmt.Errorf("no audio format for %s", video.ID))
	}

	srcTemp := filepath.Join(e.tempDir, fmt.Sprintf("a_%s.src", jobID))
	outPath := filepath.Join(e.tempDir, fmt.Sprintf("%s.%s", jobID, Extension(target.Format)))
	defer os.Remove(srcTemp)

	track := newByteTracker(audioFormat.ContentLength, func(pct int) {
		progress(models.StatusDownloading, pct, "")
	})
	if err := e.fetchStream(ctx, video, audioFormat, srcTemp, track); err != nil {
		return nil, err
	}

	progress(models.StatusProcessing, 99, "")

	args := []string{"-y", "-hide_banner", "-loglevel", "error", "-i", srcTemp, "-vn"}
	if target.Format == "mp3" {
		bitrate := target.AudioBitrate
		if bitrate <= 0 {
			bitrate = 192
		}
		args = append(args, "-codec:a", "libmp3lame", "-b:a", strconv.Itoa(bitrate)+"k")
	} else {
		args = append(args, "-c:a", "copy")
	}
	args = append(args, outPath)

	if err := e.runFFmpeg(ctx, args...); err != nil {
		return nil, err
	}
	if err := checkOutput(outPath); err != nil {
		return nil, err
	}

	name := SanitizeFilename(video.Title, fallbackName(target.Format))
	return &FilePayload{
		Path:     outPath,
		Filename: name + "." + Extension(target.Format),
		MIME:     MIMEType(target.Format),
	}, nil
}

// OpenAudioStream returns the best m4a audio stream for direct relay to the
// client, plus a suggested filename. Used by the stream-audio endpoint;
// nothing is written to disk and no job is tracked.
func (e *Engine) OpenAudioStream(ctx context.Context, target models.VideoTarget) (io.ReadCloser, string, error) {
	video, err := e.client.GetVideoContext(ctx, target.URL)
	if err != nil {
		return nil, "", sourceUnavailable(err)
	}

	format := findM4AFormat(video.Formats)
	if format == nil {
		format = findAudioFormat(video.Formats)
	}
	if format == nil {
		return nil, "", sourceUnavailable(fmt.Errorf("no audio format for %s", video.ID))
	}

	stream, _, err := e.client.GetStreamContext(ctx, video, format)
	if err != nil {
		return nil, "", &TransferError{Detail: "Could not open the audio stream.", Err: err}
	}

	name := SanitizeFilename(video.Title, "audio") + ".m4a"
	return stream, name, nil
}

func (e *Engine) fetchStream(ctx context.Context, video *youtube.Video, format *youtube.Format, path string, track func(int)) error {
	stream, _, err := e.client.GetStreamContext(ctx, video, format)
	if err != nil {
		return &TransferError{Detail: "Could not fetch media from the source.", Err: err}
	}
	defer stream.Close()

	file, err := os.Create(path)
	if err != nil {
		return &TransferError{Detail: "Could not write the download to disk.", Err: err}
	}
	defer file.Close()

	buf := make([]byte, 32*1024)
	for {
		n, err := stream.Read(buf)
		if n > 0 {
			if _, werr := file.Write(buf[:n]); werr != nil {
				return &TransferError{Detail: "Could not write the download to disk.", Err: werr}
			}
			track(n)
		}
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return &TransferError{Detail: "The source connection was interrupted.", Err: err}
		}
	}
}

func (e *Engine) runFFmpeg(ctx context.Context, args ...string) error {
	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return &TransferError{
			Detail: "Media processing failed. Please try again.",
			Err:    fmt.Errorf("ffmpeg: %s", string(out)),
		}
	}
	return nil
}

func checkOutput(path string) error {
	info, err := os.Stat(path)
	if err != nil || info.Size() == 0 {
		return &TransferError{Detail: "No output file was produced.", Err: err}
	}
	return nil
}

// newByteTracker converts byte counts into percentage callbacks, capped at
// 99 so 100 is only ever reported alongside the terminal complete status.
// Safe for concurrent use by the parallel video and audio fetches.
func newByteTracker(totalBytes int64, onPct func(int)) func(int) {
	var mu sync.Mutex
	var current int64
	lastPct := -1

	return func(n int) {
		mu.Lock()
		defer mu.Unlock()
		current += int64(n)
		if totalBytes <= 0 {
			return
		}
		pct := int(float64(current) / float64(totalBytes) * 100)
		if pct > 99 {
			pct = 99
		}
		if pct != lastPct {
			lastPct = pct
			onPct(pct)
		}
	}
}
