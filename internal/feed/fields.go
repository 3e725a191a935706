package feed

import (
	"fmt"
	"strings"

	"github.com/couchcryptid/openwater-etl/internal/domain"
)

// extractTitle returns the text strictly between the title delimiters.
func extractTitle(line string, l domain.Layout) (string, error) {
	i := strings.Index(line, l.TitleOpen)
	if i < 0 {
		return "", fmt.Errorf("title: %w %q", domain.ErrMissingLandmark, l.TitleOpen)
	}
	rest := line[i+len(l.TitleOpen):]
	j := strings.Index(rest, l.TitleClose)
	if j < 0 {
		return "", fmt.Errorf("title: %w %q", domain.ErrMissingLandmark, l.TitleClose)
	}
	return rest[:j], nil
}

// extractDate returns the text after the date marker with the fixed-length
// closing suffix removed. Trailing whitespace on the line is ignored.
func extractDate(line string, l domain.Layout) (string, error) {
	i := strings.Index(line, l.DateOpen)
	if i < 0 {
		return "", fmt.Errorf("date: %w %q", domain.ErrMissingLandmark, l.DateOpen)
	}
	rest := strings.TrimRight(line[i+len(l.DateOpen):], " \t\r")
	if len(rest) < l.DateSuffixLen {
		return "", fmt.Errorf("date: %w: %q", domain.ErrShortField, rest)
	}
	return rest[:len(rest)-l.DateSuffixLen], nil
}

// extractTemperature returns the fixed-width window after the temperature
// marker. Everything past the window is discarded, e.g. "55.2 F" -> "55.2"
// and "100.4 F" -> "100.".
func extractTemperature(line string, l domain.Layout) (string, error) {
	i := strings.Index(line, l.TempMarker)
	if i < 0 {
		return "", fmt.Errorf("temperature: %w %q", domain.ErrMissingLandmark, l.TempMarker)
	}
	return temperatureWindow(line[i+len(l.TempMarker):], l.TempWidth)
}

func temperatureWindow(s string, width int) (string, error) {
	r := []rune(strings.TrimSpace(s))
	if len(r) < width {
		return "", fmt.Errorf("temperature: %w: %q", domain.ErrShortField, string(r))
	}
	return string(r[:width]), nil
}
