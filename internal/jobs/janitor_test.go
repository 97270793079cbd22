package jobs

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestJanitor_SweepRemovesOnlyStaleTempFiles(t *testing.T) {
	dir := t.TempDir()

	stale := filepath.Join(dir, "v_old.mp4")
	fresh := filepath.Join(dir, "v_new.mp4")
	for _, path := range []string{stale, fresh} {
		if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	old := time.Now().Add(-20 * time.Minute)
	if err := os.Chtimes(stale, old, old); err != nil {
		t.Fatal(err)
	}

	registry := NewRegistry(10 * time.Minute)
	j := NewJanitor(registry, dir, time.Minute)
	j.sweep()

	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Error("stale temp file was not removed")
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Error("fresh temp file must be left alone, it may belong to an active download")
	}
}

func TestJanitor_SweepExpiresRegistryJobs(t *testing.T) {
	registry := NewRegistry(10 * time.Minute)
	base := time.Now()
	registry.now = func() time.Time { return base }
	registry.Create("abandoned")

	registry.now = func() time.Time { return base.Add(15 * time.Minute) }

	j := NewJanitor(registry, t.TempDir(), time.Minute)
	j.sweep()

	if _, ok := registry.Get("abandoned"); ok {
		t.Error("abandoned job survived the sweep")
	}
}
