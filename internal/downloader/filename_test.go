package downloader

import (
	"strings"
	"testing"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		title    string
		fallback string
		expected string
	}{
		{"Never Gonna Give You Up", "video", "Never_Gonna_Give_You_Up"},
		{"a/b\\c:d", "video", "a_b_c_d"},
		{"tabs\tand\nnewlines", "video", "tabs_and_newlines"},
		{"___already___separated___", "video", "already_separated"},
		{"日本語タイトル", "audio", "audio"},
		{"", "video", "video"},
		{"mixed 日本語 title", "video", "mixed_title"},
		{"keep-dashes-and-words", "video", "keep-dashes-and-words"},
	}

	for _, test := range tests {
		got := SanitizeFilename(test.title, test.fallback)
		if got != test.expected {
			t.Errorf("SanitizeFilename(%q) = %q, expected %q", test.title, got, test.expected)
		}
	}
}

func TestSanitizeFilename_CapsLength(t *testing.T) {
	long := strings.Repeat("a", 300)
	got := SanitizeFilename(long, "video")
	if len(got) > 100 {
		t.Errorf("len = %d, expected at most 100", len(got))
	}
}

func TestMIMEType(t *testing.T) {
	tests := []struct {
		format   string
		expected string
	}{
		{"mp4", "video/mp4"},
		{"mp3", "audio/mpeg"},
		{"m4a", "audio/mp4"},
	}

	for _, test := range tests {
		if got := MIMEType(test.format); got != test.expected {
			t.Errorf("MIMEType(%s) = %s, expected %s", test.format, got, test.expected)
		}
	}
}

func TestExtension(t *testing.T) {
	tests := []struct {
		format   string
		expected string
	}{
		{"mp4", "mp4"},
		{"mp3", "mp3"},
		{"m4a", "m4a"},
	}

	for _, test := range tests {
		if got := Extension(test.format); got != test.expected {
			t.Errorf("Extension(%s) = %s, expected %s", test.format, got, test.expected)
		}
	}
}
