package domain

import (
	"fmt"
	"html"
	"math"
	"strconv"
	"strings"
)

const (
	cdataOpen  = "<![CDATA["
	cdataClose = "]]>"
)

// BuildReading validates the raw fields of one record and returns a typed
// Reading. The temperature is kept in Fahrenheit as published.
func BuildReading(raw RawRecord) (Reading, error) {
	location := normalizeLocation(raw.Location)
	if location == "" {
		return Reading{}, &ParseError{Field: "location", Value: raw.Location, Err: ErrEmptyLocation}
	}

	temp, err := parseTemperature(raw.Temp)
	if err != nil {
		return Reading{}, err
	}

	return Reading{
		Location:     location,
		Published:    strings.TrimSpace(raw.Date),
		TemperatureF: temp,
	}, nil
}

// normalizeLocation trims whitespace and markup wrappers from a station label,
// e.g. "  <![CDATA[Lewes, DE]]> " -> "Lewes, DE", and decodes HTML entities.
func normalizeLocation(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, cdataOpen) && strings.HasSuffix(s, cdataClose) {
		s = s[len(cdataOpen) : len(s)-len(cdataClose)]
	}
	return strings.TrimSpace(html.UnescapeString(s))
}

// parseTemperature parses a finite decimal such as "55.2" or "-1.5".
func parseTemperature(s string) (float64, error) {
	s = strings.TrimSpace(s)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, &ParseError{Field: "temperature", Value: s, Err: fmt.Errorf("%w: %w", ErrInvalidTemperature, err)}
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &ParseError{Field: "temperature", Value: s, Err: ErrInvalidTemperature}
	}
	return v, nil
}
