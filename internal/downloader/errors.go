package downloader

import (
	"fmt"
)

// The error types below are classified where they are produced; handlers map
// them to HTTP statuses without inspecting message text. Every Error() string
// is safe to show to a user; raw extractor or tool output stays in the
// wrapped cause.

// ValidationError reports request input that can never succeed as given.
type ValidationError struct {
	Detail string
}

func (e *ValidationError) Error() string { return e.Detail }

// SourceUnavailableError reports a platform-side failure: the video is
// removed, private, geo-blocked or the extractor cannot reach it.
type SourceUnavailableError struct {
	Detail string
	Err    error
}

func (e *SourceUnavailableError) Error() string { return e.Detail }
func (e *SourceUnavailableError) Unwrap() error { return e.Err }

func sourceUnavailable(err error) *SourceUnavailableError {
	return &SourceUnavailableError{
		Detail: "Video is unavailable, private, or region-restricted.",
		Err:    err,
	}
}

// ToolUnavailableError reports a missing server-side dependency. Fixable by
// the operator, not the user.
type ToolUnavailableError struct {
	Tool string
}

func (e *ToolUnavailableError) Error() string {
	return fmt.Sprintf("%s is required for this format but is not installed on the server.", e.Tool)
}

// TransferError reports a mid-stream fetch or processing failure. The job
// must be resubmitted with a fresh id; there is no automatic retry.
type TransferError struct {
	Detail string
	Err    error
}

func (e *TransferError) Error() string { return e.Detail }
func (e *TransferError) Unwrap() error { return e.Err }
