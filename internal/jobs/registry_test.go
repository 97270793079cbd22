package jobs

import (
	"context"
	"testing"
	"time"

	"videosnatch-server/internal/models"
)

func TestRegistry_CreateIsIdempotent(t *testing.T) {
	r := NewRegistry(10 * time.Minute)

	first := r.Create("job-1")
	r.Update("job-1", models.StatusDownloading, 40, "")
	second := r.Create("job-1")

	if second.Status != models.StatusDownloading || second.Percentage != 40 {
		t.Errorf("second Create returned %+v, expected the existing entry unchanged", second)
	}
	if first.ID != second.ID {
		t.Errorf("ids differ: %s vs %s", first.ID, second.ID)
	}
	if r.Len() != 1 {
		t.Errorf("Len() = %d, expected 1", r.Len())
	}
}

func TestRegistry_PercentageNeverRegresses(t *testing.T) {
	r := NewRegistry(10 * time.Minute)
	r.Create("job-1")

	r.Update("job-1", models.StatusDownloading, 60, "")
	r.Update("job-1", models.StatusDownloading, 25, "")

	job, ok := r.Get("job-1")
	if !ok {
		t.Fatal("job not found")
	}
	if job.Percentage != 60 {
		t.Errorf("Percentage = %d, expected regression clamped to 60", job.Percentage)
	}
}

func TestRegistry_ForwardOnlyTransitions(t *testing.T) {
	r := NewRegistry(10 * time.Minute)
	r.Create("job-1")

	r.Update("job-1", models.StatusProcessing, 90, "")
	r.Update("job-1", models.StatusDownloading, 95, "")

	job, _ := r.Get("job-1")
	if job.Status != models.StatusProcessing {
		t.Errorf("Status = %s, expected backward transition ignored", job.Status)
	}
}

func TestRegistry_TerminalStatesAreFinal(t *testing.T) {
	r := NewRegistry(10 * time.Minute)
	r.Create("job-1")

	r.Update("job-1", models.StatusComplete, 100, "")
	r.Update("job-1", models.StatusDownloading, 10, "")
	r.Update("job-1", models.StatusError, 0, "late failure")

	job, _ := r.Get("job-1")
	if job.Status != models.StatusComplete || job.Percentage != 100 {
		t.Errorf("job = %+v, expected complete/100 to stick", job)
	}
}

func TestRegistry_ErrorKeepsReportedPercentage(t *testing.T) {
	r := NewRegistry(10 * time.Minute)
	r.Create("job-1")

	r.Update("job-1", models.StatusDownloading, 70, "")
	r.Update("job-1", models.StatusError, 70, "connection lost")

	job, _ := r.Get("job-1")
	if job.Status != models.StatusError || job.Percentage != 70 || job.Message != "connection lost" {
		t.Errorf("job = %+v, expected error at last-known percentage", job)
	}
}

func TestRegistry_CompletePinsPercentageTo100(t *testing.T) {
	r := NewRegistry(10 * time.Minute)
	r.Create("job-1")

	r.Update("job-1", models.StatusComplete, 42, "")

	job, _ := r.Get("job-1")
	if job.Percentage != 100 {
		t.Errorf("Percentage = %d, expected complete to pin 100", job.Percentage)
	}
}

func TestRegistry_UpdateUnknownJobIsNoop(t *testing.T) {
	r := NewRegistry(10 * time.Minute)

	r.Update("ghost", models.StatusDownloading, 50, "")

	if _, ok := r.Get("ghost"); ok {
		t.Error("Update must not create jobs")
	}
}

func TestRegistry_ExpireRemovesOldJobs(t *testing.T) {
	r := NewRegistry(10 * time.Minute)

	base := time.Now()
	r.now = func() time.Time { return base }
	r.Create("old")
	r.Update("old", models.StatusComplete, 100, "")

	r.now = func() time.Time { return base.Add(5 * time.Minute) }
	r.Create("fresh")

	r.now = func() time.Time { return base.Add(11 * time.Minute) }
	removed := r.Expire()

	if removed != 1 {
		t.Errorf("Expire() removed %d, expected 1", removed)
	}
	if _, ok := r.Get("old"); ok {
		t.Error("expired job still present")
	}
	if _, ok := r.Get("fresh"); !ok {
		t.Error("fresh job was removed")
	}
}

func TestRegistry_AwaitTimesOutForUnknownJob(t *testing.T) {
	r := NewRegistry(10 * time.Minute)

	start := time.Now()
	_, ok := r.Await(context.Background(), "never-created", 250*time.Millisecond)
	elapsed := time.Since(start)

	if ok {
		t.Error("Await reported a job that was never created")
	}
	if elapsed < 200*time.Millisecond || elapsed > 2*time.Second {
		t.Errorf("Await returned after %v, expected roughly the grace window", elapsed)
	}
}

func TestRegistry_AwaitSeesLateCreate(t *testing.T) {
	r := NewRegistry(10 * time.Minute)

	go func() {
		time.Sleep(150 * time.Millisecond)
		r.Create("late")
	}()

	job, ok := r.Await(context.Background(), "late", 2*time.Second)
	if !ok {
		t.Fatal("Await missed a job created inside the grace window")
	}
	if job.ID != "late" || job.Status != models.StatusPending {
		t.Errorf("job = %+v, expected fresh pending job", job)
	}
}

func TestRegistry_AwaitStopsOnContextCancel(t *testing.T) {
	r := NewRegistry(10 * time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	_, ok := r.Await(ctx, "never", 5*time.Second)
	if ok {
		t.Error("Await returned a job after cancellation")
	}
	if time.Since(start) > time.Second {
		t.Error("Await did not stop promptly on cancellation")
	}
}
