package downloader

import (
	"errors"
	"testing"
)

func TestValidateURL(t *testing.T) {
	tests := []struct {
		url   string
		valid bool
	}{
		{"https://youtu.be/dQw4w9WgXcQ", true},
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", true},
		{"https://m.youtube.com/watch?v=dQw4w9WgXcQ", true},
		{"https://music.youtube.com/watch?v=abc", true},
		{"http://youtube.com/watch?v=abc", true},
		{"https://example.com/not-a-video", false},
		{"https://vimeo.com.evil.com/123", false},
		{"ftp://youtube.com/watch", false},
		{"not a url at all", false},
		{"", false},
		{"   ", false},
	}

	for _, test := range tests {
		err := ValidateURL(test.url)
		if test.valid && err != nil {
			t.Errorf("ValidateURL(%q) = %v, expected nil", test.url, err)
		}
		if !test.valid {
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Errorf("ValidateURL(%q) = %v, expected *ValidationError", test.url, err)
			}
		}
	}
}

func TestErrorMessagesAreUserSafe(t *testing.T) {
	cause := errors.New("youtube: sig decipher failed at /internal/path/cipher.go:42")

	err := sourceUnavailable(cause)
	if msg := err.Error(); msg != "Video is unavailable, private, or region-restricted." {
		t.Errorf("unexpected user message: %q", msg)
	}
	if !errors.Is(err, cause) {
		t.Error("wrapped cause must stay reachable for logging")
	}

	tool := &ToolUnavailableError{Tool: "ffmpeg"}
	if msg := tool.Error(); msg != "ffmpeg is required for this format but is not installed on the server." {
		t.Errorf("unexpected tool message: %q", msg)
	}
}
