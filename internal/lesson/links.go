package lesson

import (
	"net/url"
	"strings"
)

const (
	imageBaseURL       = "https://loremflickr.com/800/400/"
	simulatedVideoBase = "https://www.youtube.com/results?search_query="
)

// ImageFor derives the illustrative image reference for a title. Whitespace
// runs become "+" keyword separators. The reference is built locally; the
// image service is only contacted when something displays it.
func ImageFor(title string) Image {
	return Image{URL: imageBaseURL + keywords(title, "+", url.PathEscape)}
}

// SimulatedVideo returns the placeholder video reference used when no real
// video generator is available. It is deterministic per title.
func SimulatedVideo(title string) Video {
	return Video{
		URL:    simulatedVideoBase + keywords(title, "%20", url.QueryEscape),
		Source: VideoSimulated,
	}
}

func keywords(title, sep string, escape func(string) string) string {
	fields := strings.Fields(title)
	for i, f := range fields {
		fields[i] = escape(f)
	}
	return strings.Join(fields, sep)
}
