package pipeline

import (
	"strings"

	"github.com/couchcryptid/buoy-data-ingest/internal/domain"
)

// LocateHeader scans the decoded lines, within the format's bounded window,
// for the first line matching any configured header marker set. The window
// keeps the scan cheap and avoids matching a spurious occurrence deep inside
// a malformed data block; export preambles vary in length between firmware
// releases, so the header is found by content, never by fixed offset.
func LocateHeader(text DecodedText, f Format) (int, error) {
	window := f.HeaderWindow
	if window > len(text.Lines) {
		window = len(text.Lines)
	}

	for i := 0; i < window; i++ {
		if isHeaderLine(text.Lines[i], f.HeaderMarkers) {
			return i, nil
		}
	}
	return 0, &domain.HeaderNotFoundError{Window: f.HeaderWindow}
}

// isHeaderLine reports whether a line contains every token of any marker set.
func isHeaderLine(line string, markerSets [][]string) bool {
	lower := strings.ToLower(line)
	for _, set := range markerSets {
		all := len(set) > 0
		for _, token := range set {
			if !strings.Contains(lower, strings.ToLower(token)) {
				all = false
				break
			}
		}
		if all {
			return true
		}
	}
	return false
}
