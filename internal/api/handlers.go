package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"videosnatch-server/internal/config"
	"videosnatch-server/internal/downloader"
	"videosnatch-server/internal/jobs"
	"videosnatch-server/internal/models"
)

type Handler struct {
	Registry *jobs.Registry
	Resolver MetadataResolver
	FastPath DirectURLProber
	Engine   DownloadEngine
	Streamer AudioStreamer
	Cfg      *config.Config
}

func NewHandler(registry *jobs.Registry, resolver MetadataResolver, fastPath DirectURLProber, engine DownloadEngine, streamer AudioStreamer, cfg *config.Config) *Handler {
	return &Handler{
		Registry: registry,
		Resolver: resolver,
		FastPath: fastPath,
		Engine:   engine,
		Streamer: streamer,
		Cfg:      cfg,
	}
}

// Metadata handles GET /api/metadata?url=
func (h *Handler) Metadata(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeDetail(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	rawURL := r.URL.Query().Get("url")
	// Validate before the resolver so garbage input never costs an
	// extractor round trip.
	if err := downloader.ValidateURL(rawURL); err != nil {
		writeError(w, err)
		return
	}

	meta, err := h.Resolver.Resolve(r.Context(), rawURL)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, meta)
}

// GetDownloadURL handles POST /api/get-download-url. A declined probe is a
// 200 with success=false: the client falls back to the server download.
func (h *Handler) GetDownloadURL(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeDetail(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	target, err := h.parseTarget(r, []string{"mp4", "m4a", "mp3"})
	if err != nil {
		writeError(w, err)
		return
	}

	result, ok := h.FastPath.TryDirectURL(r.Context(), *target)
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{
			"success": false,
			"message": "Direct download not available, using server download.",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"directUrl": result.URL,
		"filename":  result.Filename,
		"mimeType":  result.MIME,
	})
}

// Download handles POST /api/download: runs the worker under the
// client-generated download_id and answers with the file itself.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeDetail(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	target, err := h.parseTarget(r, []string{"mp4", "mp3", "m4a"})
	if err != nil {
		writeError(w, err)
		return
	}

	downloadID := strings.TrimSpace(r.PostFormValue("download_id"))
	if downloadID == "" {
		downloadID = uuid.New().String()
	}

	h.Registry.Create(downloadID)

	payload, err := h.Engine.Run(r.Context(), *target, downloadID, func(status models.Status, pct int, msg string) {
		h.Registry.Update(downloadID, status, pct, msg)
	})
	if err != nil {
		// The registry reaches error before the HTTP response, so an
		// open progress subscription observes the terminal state too.
		// Keep the last-known percentage; a subscriber must never see
		// it regress.
		job, _ := h.Registry.Get(downloadID)
		h.Registry.Update(downloadID, models.StatusError, job.Percentage, err.Error())
		log.Printf("download %s failed: %v", downloadID, err)
		writeError(w, err)
		return
	}
	h.Registry.Update(downloadID, models.StatusComplete, 100, "")

	defer os.Remove(payload.Path)

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", payload.Filename))
	w.Header().Set("Content-Type", payload.MIME)
	w.Header().Set("X-Download-ID", downloadID)
	http.ServeFile(w, r, payload.Path)
}

// StreamAudio handles POST /api/stream-audio: relays an m4a audio stream
// directly. mp3 needs a transcode, so it gets a 501 and the client falls
// back to /api/download.
func (h *Handler) StreamAudio(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeDetail(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	rawURL := r.PostFormValue("url")
	if err := downloader.ValidateURL(rawURL); err != nil {
		writeError(w, err)
		return
	}

	format := r.PostFormValue("format")
	if format == "" {
		format = "m4a"
	}
	switch format {
	case "m4a":
	case "mp3":
		writeDetail(w, http.StatusNotImplemented, "Streaming not available for MP3. Using standard download.")
		return
	default:
		writeDetail(w, http.StatusBadRequest, "Format must be 'mp3' or 'm4a' for audio streaming.")
		return
	}

	stream, filename, err := h.Streamer.OpenAudioStream(r.Context(), models.VideoTarget{URL: rawURL, Format: format})
	if err != nil {
		writeError(w, err)
		return
	}
	defer stream.Close()

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Type", downloader.MIMEType(format))
	w.Header().Set("Cache-Control", "no-cache")

	if _, err := io.Copy(w, stream); err != nil {
		// Headers are gone; nothing to do but log.
		log.Printf("stream-audio aborted: %v", err)
	}
}

func (h *Handler) parseTarget(r *http.Request, formats []string) (*models.VideoTarget, error) {
	rawURL := r.PostFormValue("url")
	if err := downloader.ValidateURL(rawURL); err != nil {
		return nil, err
	}

	format := r.PostFormValue("format")
	if format == "" {
		format = "mp4"
	}
	allowed := false
	for _, f := range formats {
		if f == format {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, &downloader.ValidationError{
			Detail: fmt.Sprintf("Format must be one of: %s.", strings.Join(formats, ", ")),
		}
	}

	target := &models.VideoTarget{URL: rawURL, Format: format}

	if raw := r.PostFormValue("quality"); raw != "" {
		q, err := strconv.Atoi(raw)
		if err != nil || q <= 0 {
			return nil, &downloader.ValidationError{Detail: "Quality must be a positive integer."}
		}
		target.MaxHeight = q
	}
	if raw := r.PostFormValue("audio_quality"); raw != "" {
		q, err := strconv.Atoi(raw)
		if err != nil || q <= 0 {
			return nil, &downloader.ValidationError{Detail: "Audio quality must be a positive integer."}
		}
		target.AudioBitrate = q
	}

	return target, nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

// writeError maps the error taxonomy to HTTP statuses. Every Error() string
// in the taxonomy is user-safe.
func writeError(w http.ResponseWriter, err error) {
	var (
		validation  *downloader.ValidationError
		unavailable *downloader.SourceUnavailableError
		tool        *downloader.ToolUnavailableError
		transfer    *downloader.TransferError
	)
	switch {
	case errors.As(err, &validation):
		writeDetail(w, http.StatusBadRequest, validation.Error())
	case errors.As(err, &unavailable):
		writeDetail(w, http.StatusBadRequest, unavailable.Error())
	case errors.As(err, &tool):
		writeDetail(w, http.StatusInternalServerError, tool.Error())
	case errors.As(err, &transfer):
		writeDetail(w, http.StatusBadGateway, transfer.Error())
	default:
		writeDetail(w, http.StatusInternalServerError, "An unexpected error occurred. Please try again.")
	}
}
