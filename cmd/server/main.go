package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"videosnatch-server/internal/api"
	"videosnatch-server/internal/config"
	"videosnatch-server/internal/downloader"
	"videosnatch-server/internal/jobs"
	"videosnatch-server/internal/server"

	"github.com/joho/godotenv"
)

func main() {
	godotenv.Load()
	cfg := config.Load()

	if err := server.PrepareFilesystem(cfg); err != nil {
		log.Fatalf("error preparing filesystem: %v", err)
	}

	registry := jobs.NewRegistry(cfg.JobTTL)
	janitor := jobs.NewJanitor(registry, cfg.TempDir, cfg.SweepInterval)
	janitor.Start()

	engine := downloader.NewEngine(cfg.TempDir, cfg.MaxConcurrentJobs)
	handler := api.NewHandler(registry, downloader.NewResolver(), downloader.NewFastPath(), engine, engine, cfg)
	router := api.NewRouter(handler, cfg)

	srv := &http.Server{
		Addr:    cfg.Port,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("videosnatch server listening on %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
	janitor.Stop()
}
