package api

import (
	"net/http"

	"videosnatch-server/internal/config"
)

// NewRouter sets up routes and applies the global middleware
func NewRouter(h *Handler, cfg *config.Config) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/metadata", h.Metadata)
	mux.HandleFunc("/api/get-download-url", h.GetDownloadURL)
	mux.HandleFunc("/api/download", h.Download)
	mux.HandleFunc("/api/stream-audio", h.StreamAudio)
	mux.HandleFunc("/api/progress/", h.Progress)

	var handler http.Handler = mux
	handler = RateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst)(handler)
	handler = CORSMiddleware(cfg.AllowedOrigins)(handler)
	return handler
}
