package jobs

import (
	"log"
	"os"
	"path/filepath"
	"time"
)

// Janitor periodically expires old registry entries and removes stale files
// from the temp directory. Files younger than the registry TTL are left
// alone: they may belong to a download still in flight.
type Janitor struct {
	registry *Registry
	tempDir  string
	interval time.Duration
	stop     chan struct{}
	done     chan struct{}
}

func NewJanitor(registry *Registry, tempDir string, interval time.Duration) *Janitor {
	return &Janitor{
		registry: registry,
		tempDir:  tempDir,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (j *Janitor) Start() {
	go func() {
		defer close(j.done)
		ticker := time.NewTicker(j.interval)
		defer ticker.Stop()

		for {
			select {
			case <-j.stop:
				return
			case <-ticker.C:
				j.sweep()
			}
		}
	}()
}

func (j *Janitor) Stop() {
	close(j.stop)
	<-j.done
}

func (j *Janitor) sweep() {
	if n := j.registry.Expire(); n > 0 {
		log.Printf("janitor: expired %d jobs, %d remaining", n, j.registry.Len())
	}
	j.cleanTemp()
}

func (j *Janitor) cleanTemp() {
	entries, err := os.ReadDir(j.tempDir)
	if err != nil {
		log.Printf("janitor: cannot read temp dir: %v", err)
		return
	}

	cutoff := time.Now().Add(-j.registry.ttl)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			path := filepath.Join(j.tempDir, entry.Name())
			if err := os.Remove(path); err != nil {
				log.Printf("janitor: cannot remove %s: %v", path, err)
			}
		}
	}
}
