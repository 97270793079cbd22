package models

import (
	"time"
)

// Status is the lifecycle state of a download job.
type Status string

const (
	StatusPending     Status = "pending"
	StatusDownloading Status = "downloading"
	StatusProcessing  Status = "processing"
	StatusComplete    Status = "complete"
	StatusError       Status = "error"
	StatusTimeout     Status = "timeout"
)

var statusRank = map[Status]int{
	StatusPending:     0,
	StatusDownloading: 1,
	StatusProcessing:  2,
	StatusComplete:    3,
}

// Terminal reports whether no further transitions are allowed from s.
func (s Status) Terminal() bool {
	return s == StatusComplete || s == StatusError || s == StatusTimeout
}

// CanAdvanceTo reports whether a transition from s to next is allowed.
// Transitions are forward-only; error and timeout are reachable from any
// non-terminal state.
func (s Status) CanAdvanceTo(next Status) bool {
	if s.Terminal() {
		return false
	}
	if next == StatusError || next == StatusTimeout {
		return true
	}
	return statusRank[next] >= statusRank[s]
}

// Job: the tracked state of one download attempt. The ID is generated by the
// client so the download request and the progress subscription can correlate
// without waiting for each other.
type Job struct {
	ID         string    `json:"id"`
	Status     Status    `json:"status"`
	Percentage int       `json:"percentage"`
	Message    string    `json:"message,omitempty"`
	CreatedAt  time.Time `json:"-"`
}

// ProgressEvent is one frame on the progress stream.
type ProgressEvent struct {
	Status     Status `json:"status"`
	Percentage int    `json:"percentage"`
	Message    string `json:"message,omitempty"`
}

// VideoTarget is one resolved download request. Built per request from form
// input and discarded with the response; never persisted.
type VideoTarget struct {
	URL          string
	Format       string // "mp4", "mp3" or "m4a"
	MaxHeight    int    // max video height, 0 = best available
	AudioBitrate int    // mp3 bitrate in kbps
}
