package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"videosnatch-server/internal/models"
)

// Progress handles GET /api/progress/{download_id}: a one-way SSE stream of
// job updates. The subscription usually arrives concurrently with the
// download POST, so the job is allowed a grace window to appear; if it never
// does (fast path won the race, or the id is bogus), the stream emits a
// single timeout event and closes. That is a normal outcome, not an error.
func (h *Handler) Progress(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/progress/")
	if id == "" || strings.Contains(id, "/") {
		writeDetail(w, http.StatusBadRequest, "download id required")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	rc := http.NewResponseController(w)

	job, ok := h.Registry.Await(r.Context(), id, h.Cfg.SubscribeGrace)
	if !ok {
		if r.Context().Err() != nil {
			// Client went away while we were waiting.
			return
		}
		writeEvent(w, rc, models.ProgressEvent{Status: models.StatusTimeout})
		return
	}

	last := models.ProgressEvent{Status: job.Status, Percentage: job.Percentage, Message: job.Message}
	writeEvent(w, rc, last)
	if job.Status.Terminal() {
		return
	}

	ticker := time.NewTicker(h.Cfg.ProgressPoll)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			job, ok := h.Registry.Get(id)
			if !ok {
				// Expired mid-stream; terminate rather than hang.
				writeEvent(w, rc, models.ProgressEvent{Status: models.StatusTimeout, Percentage: last.Percentage})
				return
			}
			event := models.ProgressEvent{Status: job.Status, Percentage: job.Percentage, Message: job.Message}
			if event != last {
				writeEvent(w, rc, event)
				last = event
			}
			if job.Status.Terminal() {
				return
			}
		}
	}
}

func writeEvent(w http.ResponseWriter, rc *http.ResponseController, event models.ProgressEvent) {
	data, _ := json.Marshal(event)
	fmt.Fprintf(w, "data: %s\n\n", data)
	rc.Flush()
}
