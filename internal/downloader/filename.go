package downloader

import (
	"regexp"
	"strings"
)

const maxFilenameLen = 100

var underscoreRuns = regexp.MustCompile(`_+`)

// SanitizeFilename turns a video title into a name safe for a
// Content-Disposition header: ASCII only, no path separators or control
// characters. Falls back to the given name when nothing usable remains.
func SanitizeFilename(title, fallback string) string {
	mapped := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-':
			return r
		case r == ' ', r == '_', r == '.':
			return '_'
		default:
			return '_'
		}
	}, title)

	mapped = underscoreRuns.ReplaceAllString(mapped, "_")
	mapped = strings.Trim(mapped, "_")
	if len(mapped) > maxFilenameLen {
		mapped = mapped[:maxFilenameLen]
		mapped = strings.TrimRight(mapped, "_")
	}
	if mapped == "" {
		return fallback
	}
	return mapped
}

// MIMEType returns the content type for a produced container.
func MIMEType(format string) string {
	switch format {
	case "mp3":
		return "audio/mpeg"
	case "m4a":
		return "audio/mp4"
	default:
		return "video/mp4"
	}
}

// Extension returns the output file extension for a format.
func Extension(format string) string {
	switch format {
	case "mp3", "m4a":
		return format
	default:
		return "mp4"
	}
}

func fallbackName(format string) string {
	if format == "mp3" || format == "m4a" {
		return "audio"
	}
	return "video"
}
