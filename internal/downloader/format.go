package downloader

import (
	"strconv"
	"strings"

	"github.com/kkdai/youtube/v2"
)

// parseHeight extracts the pixel height from a quality label like "1080p60".
func parseHeight(label string) int {
	digits := ""
	for _, c := range label {
		if c >= '0' && c <= '9' {
			digits += string(c)
		} else if digits != "" {
			break
		}
	}
	if digits == "" {
		return 0
	}
	val, _ := strconv.Atoi(digits)
	return val
}

// findVideoFormat picks the video stream closest to maxHeight without going
// over. maxHeight 0 means best available.
func findVideoFormat(formats youtube.FormatList, maxHeight int) *youtube.Format {
	var best *youtube.Format
	for _, f := range formats {
		if !strings.Contains(f.MimeType, "video") || f.QualityLabel == "" {
			continue
		}
		h := parseHeight(f.QualityLabel)
		if maxHeight > 0 && h > maxHeight {
			continue
		}
		if best == nil || h > parseHeight(best.QualityLabel) {
			temp := f
			best = &temp
		}
	}
	if best != nil {
		return best
	}
	// Nothing under the cap; fall back to the smallest stream available.
	for _, f := range formats {
		if !strings.Contains(f.MimeType, "video") || f.QualityLabel == "" {
			continue
		}
		if best == nil || parseHeight(f.QualityLabel) < parseHeight(best.QualityLabel) {
			temp := f
			best = &temp
		}
	}
	return best
}

// findProgressiveFormat picks a muxed audio+video stream within maxHeight.
// Progressive streams can be handed straight to the client without a
// server-side mux, which is what makes the fast path fast.
func findProgressiveFormat(formats youtube.FormatList, maxHeight int) *youtube.Format {
	var best *youtube.Format
	for _, f := range formats {
		if !strings.Contains(f.MimeType, "video/mp4") || f.AudioChannels == 0 {
			continue
		}
		h := parseHeight(f.QualityLabel)
		if maxHeight > 0 && h > maxHeight {
			continue
		}
		if best == nil || h > parseHeight(best.QualityLabel) {
			temp := f
			best = &temp
		}
	}
	return best
}

// findAudioFormat picks the best audio-only stream, preferring mp4 audio so
// the transcode step stays a cheap remux when possible.
func findAudioFormat(formats youtube.FormatList) *youtube.Format {
	var best *youtube.Format
	for _, f := range formats {
		if !strings.Contains(f.MimeType, "audio") {
			continue
		}
		if best == nil ||
			(strings.Contains(f.MimeType, "mp4") && !strings.Contains(best.MimeType, "mp4")) ||
			(strings.Contains(f.MimeType, "mp4") == strings.Contains(best.MimeType, "mp4") && f.Bitrate > best.Bitrate) {
			temp := f
			best = &temp
		}
	}
	return best
}

// findM4AFormat picks an audio stream that is already mp4 audio, or nothing.
// Only such streams are eligible for the direct m4a fast path.
func findM4AFormat(formats youtube.FormatList) *youtube.Format {
	var best *youtube.Format
	for _, f := range formats {
		if !strings.Contains(f.MimeType, "audio/mp4") {
			continue
		}
		if best == nil || f.Bitrate > best.Bitrate {
			temp := f
			best = &temp
		}
	}
	return best
}
