package domain

import "time"

// RawRecord holds the unvalidated field text extracted for one feed record.
type RawRecord struct {
	// Line is the 1-based line of the record-start landmark. Parsers without
	// line information use the item's 1-based position instead.
	Line     int
	Location string
	Date     string
	Temp     string
}

// Reading is one station's water temperature as published in the feed.
type Reading struct {
	Location     string  `json:"location"`
	Published    string  `json:"published"`
	TemperatureF float64 `json:"temperature_f"`
}

// In returns the reading's temperature in the given unit.
func (r Reading) In(u Unit) float64 {
	if u == Celsius {
		return ToCelsius(r.TemperatureF)
	}
	return r.TemperatureF
}

// Notification is a rendered report addressed to one recipient.
type Notification struct {
	Recipient   string    `json:"recipient"`
	Name        string    `json:"name"`
	From        string    `json:"from"`
	Subject     string    `json:"subject"`
	HTMLBody    string    `json:"html_body"`
	TextBody    string    `json:"text_body"`
	Unit        Unit      `json:"unit"`
	Readings    int       `json:"readings"`
	GeneratedAt time.Time `json:"generated_at"`
}
